package telemetry

import (
	"log/slog"

	"github.com/pthm-cable/biome/traits"
)

// DailyPopulationStats holds births, deaths and populations for one day.
type DailyPopulationStats struct {
	Day       int   `csv:"day"`
	StartTick int64 `csv:"start_tick"`
	EndTick   int64 `csv:"end_tick"`

	Plants  int `csv:"plants"`
	Animals int `csv:"animals"`
	Eggs    int `csv:"eggs"`
	Species int `csv:"species"`

	PlantBirths  int `csv:"plant_births"`
	AnimalBirths int `csv:"animal_births"`
	PlantDeaths  int `csv:"plant_deaths"`
	AnimalDeaths int `csv:"animal_deaths"`
	EggsLaid     int `csv:"eggs_laid"`
	EggsHatched  int `csv:"eggs_hatched"`
	EggsFailed   int `csv:"eggs_failed"`

	DeathsAge         int `csv:"deaths_age"`
	DeathsStarvation  int `csv:"deaths_starvation"`
	DeathsDehydration int `csv:"deaths_dehydration"`
	DeathsPredation   int `csv:"deaths_predation"`
	DeathsFire        int `csv:"deaths_fire"`
	DeathsGrazed      int `csv:"deaths_grazed"`
	DeathsExposure    int `csv:"deaths_exposure"`

	AnimalEnergyMean float64 `csv:"animal_energy_mean"`
	AnimalEnergyP10  float64 `csv:"animal_energy_p10"`
	AnimalEnergyP50  float64 `csv:"animal_energy_p50"`
	AnimalEnergyP90  float64 `csv:"animal_energy_p90"`
	RainCoverage     float64 `csv:"rain"`
	ActiveFires      int     `csv:"fires"`
}

// DeathsBy returns the tally for one cause.
func (s *DailyPopulationStats) DeathsBy(c traits.DeathCause) int {
	switch c {
	case traits.CauseAge:
		return s.DeathsAge
	case traits.CauseStarvation:
		return s.DeathsStarvation
	case traits.CauseDehydration:
		return s.DeathsDehydration
	case traits.CausePredation:
		return s.DeathsPredation
	case traits.CauseFire:
		return s.DeathsFire
	case traits.CauseGrazed:
		return s.DeathsGrazed
	case traits.CauseExposure:
		return s.DeathsExposure
	}
	return 0
}

func (s *DailyPopulationStats) addDeath(c traits.DeathCause) {
	switch c {
	case traits.CauseAge:
		s.DeathsAge++
	case traits.CauseStarvation:
		s.DeathsStarvation++
	case traits.CauseDehydration:
		s.DeathsDehydration++
	case traits.CausePredation:
		s.DeathsPredation++
	case traits.CauseFire:
		s.DeathsFire++
	case traits.CauseGrazed:
		s.DeathsGrazed++
	case traits.CauseExposure:
		s.DeathsExposure++
	}
}

// LogValue implements slog.LogValuer for structured logging.
func (s DailyPopulationStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("day", s.Day),
		slog.Int64("end_tick", s.EndTick),
		slog.Int("plants", s.Plants),
		slog.Int("animals", s.Animals),
		slog.Int("eggs", s.Eggs),
		slog.Int("species", s.Species),
		slog.Int("plant_births", s.PlantBirths),
		slog.Int("animal_births", s.AnimalBirths),
		slog.Int("plant_deaths", s.PlantDeaths),
		slog.Int("animal_deaths", s.AnimalDeaths),
		slog.Int("deaths_predation", s.DeathsPredation),
		slog.Int("deaths_starvation", s.DeathsStarvation),
		slog.Int("deaths_fire", s.DeathsFire),
		slog.Float64("animal_energy_mean", s.AnimalEnergyMean),
		slog.Float64("rain", s.RainCoverage),
		slog.Int("fires", s.ActiveFires),
	)
}

// PopulationDiagnostics is the running day plus completed day history.
type PopulationDiagnostics struct {
	Current       DailyPopulationStats
	History       []DailyPopulationStats // Oldest first
	TotalBirths   int
	TotalDeaths   int
	DeathsByCause [traits.NumCauses]int
}

// Diagnostics accumulates births and deaths and rolls them over daily.
type Diagnostics struct {
	cur        DailyPopulationStats
	history    []DailyPopulationStats
	maxHistory int
	births     int
	deaths     int
	byCause    [traits.NumCauses]int
}

// NewDiagnostics creates diagnostics keeping maxHistory completed days.
func NewDiagnostics(maxHistory int) *Diagnostics {
	return &Diagnostics{maxHistory: max(1, maxHistory)}
}

// RecordBirth counts a birth or hatch.
func (d *Diagnostics) RecordBirth(lt traits.LifeType) {
	if lt == traits.Plant {
		d.cur.PlantBirths++
	} else {
		d.cur.AnimalBirths++
	}
	d.births++
}

// RecordDeath counts a death by cause.
func (d *Diagnostics) RecordDeath(lt traits.LifeType, cause traits.DeathCause) {
	if lt == traits.Plant {
		d.cur.PlantDeaths++
	} else {
		d.cur.AnimalDeaths++
	}
	d.cur.addDeath(cause)
	d.byCause[cause]++
	d.deaths++
}

// RecordEggLaid counts a laid egg.
func (d *Diagnostics) RecordEggLaid() { d.cur.EggsLaid++ }

// RecordEggResolved counts an egg that hatched or failed.
func (d *Diagnostics) RecordEggResolved(hatched bool) {
	if hatched {
		d.cur.EggsHatched++
	} else {
		d.cur.EggsFailed++
	}
}

// Rollover closes the current day with the given end-of-day snapshot and
// starts the next one. It returns the closed day.
func (d *Diagnostics) Rollover(end DailyPopulationStats) DailyPopulationStats {
	closed := d.cur
	closed.EndTick = end.EndTick
	closed.Plants = end.Plants
	closed.Animals = end.Animals
	closed.Eggs = end.Eggs
	closed.Species = end.Species
	closed.AnimalEnergyMean = end.AnimalEnergyMean
	closed.AnimalEnergyP10 = end.AnimalEnergyP10
	closed.AnimalEnergyP50 = end.AnimalEnergyP50
	closed.AnimalEnergyP90 = end.AnimalEnergyP90
	closed.RainCoverage = end.RainCoverage
	closed.ActiveFires = end.ActiveFires

	d.history = append(d.history, closed)
	if len(d.history) > d.maxHistory {
		d.history = d.history[len(d.history)-d.maxHistory:]
	}
	d.cur = DailyPopulationStats{Day: closed.Day + 1, StartTick: closed.EndTick}
	return closed
}

// Snapshot returns a copy of the running state.
func (d *Diagnostics) Snapshot() PopulationDiagnostics {
	h := make([]DailyPopulationStats, len(d.history))
	copy(h, d.history)
	return PopulationDiagnostics{
		Current:       d.cur,
		History:       h,
		TotalBirths:   d.births,
		TotalDeaths:   d.deaths,
		DeathsByCause: d.byCause,
	}
}
