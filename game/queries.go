package game

import (
	"slices"

	"github.com/pthm-cable/biome/genetics"
	"github.com/pthm-cable/biome/systems"
	"github.com/pthm-cable/biome/telemetry"
	"github.com/pthm-cable/biome/traits"
)

// EntitySnapshot is a copy of one organism's state.
type EntitySnapshot struct {
	ID         uint32
	ParentID   uint32
	X, Y       int
	Genome     genetics.Genome
	Alleles    genetics.Alleles
	Energy     float64
	Hydration  float64
	Age        int
	Alive      bool
	Adult      bool
	BirthTick  int64
	ReproState traits.ReproState
	ReproTimer int
	Readiness  float64 // Zero for plants
	Starvation float64
	DietShift  genetics.DietShift
	Biome      traits.Biome
	OnFire     bool
}

// Counts is the population at the current tick.
type Counts struct {
	Total   int
	Plants  int
	Animals int
	Eggs    int
}

// WeatherState describes rain, fire and time of day.
type WeatherState struct {
	Tick          int64
	IsDay         bool
	RainCoverage  float64
	Cells         []systems.RainCell
	ActiveFires   int
	LastLightning int64 // -1 before the first strike
}

// WorldStats summarises the world and its population.
type WorldStats struct {
	Seed          int64
	Width, Height int
	Tick          int64
	Day           int
	IsDay         bool
	Terrain       systems.TerrainStats
	Counts        Counts
	Capacity      int
	Species       int
	ActiveFires   int
	RainCoverage  float64
	MutationCount int
}

// EnvMaps are per-tile copies of the environment layers, row-major.
type EnvMaps struct {
	Width, Height int
	Biome         []traits.Biome
	Water         []bool
	WaterDist     []int32
	Moisture      []float64
	Temperature   []float64
	Elevation     []float64
	FireTTL       []int16
	Rain          []float64
}

// Tick returns the number of completed steps.
func (s *Simulation) Tick() int64 { return s.tick }

// Inspect returns the organism at (x, y).
func (s *Simulation) Inspect(x, y int) (EntitySnapshot, bool) {
	if !s.initialized {
		return EntitySnapshot{}, false
	}
	i := s.occ.At(x, y)
	if i < 0 {
		return EntitySnapshot{}, false
	}
	return s.snapshot(i), true
}

func (s *Simulation) snapshot(i int) EntitySnapshot {
	st := s.store
	tile := s.terrain.Index(int(st.X[i]), int(st.Y[i]))
	snap := EntitySnapshot{
		ID:         st.ID[i],
		ParentID:   st.ParentID[i],
		X:          int(st.X[i]),
		Y:          int(st.Y[i]),
		Genome:     st.Genome[i],
		Alleles:    st.Alleles[i],
		Energy:     st.Energy[i],
		Hydration:  st.Hydration[i],
		Age:        int(st.Age[i]),
		Alive:      st.Alive(i),
		Adult:      st.Adult[i],
		BirthTick:  st.BirthTick[i],
		ReproState: st.ReproState[i],
		ReproTimer: int(st.ReproTimer[i]),
		Starvation: st.Starvation[i],
		DietShift:  st.DietShift[i],
		Biome:      s.terrain.Biome[tile],
		OnFire:     s.fire.Burning(tile),
	}
	if st.Genome[i].LifeType == traits.Animal {
		var v view
		s.scan(i, &v)
		snap.Readiness = s.readiness(i, &v)
	}
	return snap
}

// Counts returns the live population.
func (s *Simulation) Counts() Counts {
	if !s.initialized {
		return Counts{}
	}
	return Counts{
		Total:   s.numPlants + s.numAnimals,
		Plants:  s.numPlants,
		Animals: s.numAnimals,
		Eggs:    s.eggs.count,
	}
}

// SpeciesStats returns the last species scan, largest first.
func (s *Simulation) SpeciesStats() []telemetry.SpeciesStats {
	if !s.initialized {
		return nil
	}
	return s.species.Stats()
}

// SpeciesDetails returns extended statistics for species id, trying the
// hinted life type first.
func (s *Simulation) SpeciesDetails(id int, lifeTypeHint traits.LifeType) (telemetry.SpeciesDetails, bool) {
	if !s.initialized {
		return telemetry.SpeciesDetails{}, false
	}
	return s.species.Details(id, lifeTypeHint, s.mutations, s.cfg.Analytics.RecentEvents)
}

// PopulationDiagnostics returns the running day and completed day history.
func (s *Simulation) PopulationDiagnostics() telemetry.PopulationDiagnostics {
	if !s.initialized {
		return telemetry.PopulationDiagnostics{}
	}
	return s.diag.Snapshot()
}

// MutationLog returns recorded mutation events, newest first.
func (s *Simulation) MutationLog() []telemetry.MutationEvent {
	if !s.initialized {
		return nil
	}
	return s.mutations.Events()
}

// MutationsSince returns mutation events at or after tick, oldest first.
func (s *Simulation) MutationsSince(tick int64) []telemetry.MutationEvent {
	if !s.initialized {
		return nil
	}
	return s.mutations.Since(tick)
}

// WeatherState returns the current weather.
func (s *Simulation) WeatherState() WeatherState {
	if !s.initialized {
		return WeatherState{LastLightning: -1}
	}
	cells := make([]systems.RainCell, len(s.weather.Cells))
	copy(cells, s.weather.Cells)
	return WeatherState{
		Tick:          s.tick,
		IsDay:         s.isDay,
		RainCoverage:  s.weather.Coverage(),
		Cells:         cells,
		ActiveFires:   s.fire.Count(),
		LastLightning: s.weather.LastLightning,
	}
}

// WorldStats returns a summary of the world.
func (s *Simulation) WorldStats() WorldStats {
	if !s.initialized {
		return WorldStats{}
	}
	return WorldStats{
		Seed:          s.seed,
		Width:         s.width,
		Height:        s.height,
		Tick:          s.tick,
		Day:           int(s.tick / int64(s.cfg.World.DayTicks)),
		IsDay:         s.isDay,
		Terrain:       s.terrain.Stats(),
		Counts:        s.Counts(),
		Capacity:      s.store.Cap(),
		Species:       s.species.Count(),
		ActiveFires:   s.fire.Count(),
		RainCoverage:  s.weather.Coverage(),
		MutationCount: s.mutations.Len(),
	}
}

// EnvMaps returns copies of the per-tile environment layers.
func (s *Simulation) EnvMaps() EnvMaps {
	if !s.initialized {
		return EnvMaps{}
	}
	t := s.terrain
	m := EnvMaps{
		Width:       t.Width,
		Height:      t.Height,
		Biome:       append([]traits.Biome(nil), t.Biome...),
		Water:       append([]bool(nil), t.Water...),
		WaterDist:   append([]int32(nil), t.WaterDist...),
		Moisture:    append([]float64(nil), t.Moisture...),
		Temperature: append([]float64(nil), t.Temperature...),
		Elevation:   append([]float64(nil), t.Elevation...),
		FireTTL:     append([]int16(nil), s.fire.TTL...),
		Rain:        make([]float64, len(t.Biome)),
	}
	for i := range m.Rain {
		x, y := t.XY(i)
		m.Rain[i] = s.weather.RainAt(x, y)
	}
	return m
}

// Bookmarks returns notable days detected so far, oldest first.
func (s *Simulation) Bookmarks() []telemetry.Bookmark {
	return slices.Clone(s.marks)
}
