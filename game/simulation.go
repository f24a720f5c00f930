package game

import (
	"fmt"
	"log/slog"
	"math/rand"

	"github.com/pthm-cable/biome/config"
	"github.com/pthm-cable/biome/genetics"
	"github.com/pthm-cable/biome/systems"
	"github.com/pthm-cable/biome/telemetry"
	"github.com/pthm-cable/biome/traits"
)

// Simulation holds the complete ecosystem state. It is not safe for
// concurrent use; callers serialize access.
type Simulation struct {
	cfg    *config.Config
	logger *slog.Logger
	rng    *rand.Rand
	seed   int64

	width, height int
	terrain       *systems.Terrain
	store         *systems.EntityStore
	occ           *systems.OccupancyGrid
	weather       *systems.Weather
	fire          *systems.Fire
	eggs          *eggSystem

	tuning     config.BehaviorTuning
	policy     genetics.SpeciesPolicy
	gestations map[int]gestation // Keyed by the mother's slot

	// State
	tick        int64
	step        uint64 // Serial of the running or last step
	stepping    bool
	isDay       bool
	accumulator float64
	numPlants   int
	numAnimals  int
	initialized bool

	species   *telemetry.SpeciesTracker
	mutations *telemetry.MutationLog
	diag      *telemetry.Diagnostics
	perf      *telemetry.PerfCollector
	bookmarks *telemetry.BookmarkDetector
	marks     []telemetry.Bookmark

	// Callbacks for headless runners
	dayCallback     func(telemetry.DailyPopulationStats)
	speciesCallback func(tick int64, stats []telemetry.SpeciesStats)

	// Scratch buffers reused across ticks
	v       view
	samples []telemetry.Sample
	weights []float64
	cands   []int
}

// New creates an empty simulation. Call Init before stepping.
// A nil logger discards log output.
func New(cfg *config.Config, logger *slog.Logger) *Simulation {
	if cfg == nil {
		cfg = config.Default()
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Simulation{
		cfg:    cfg,
		logger: logger,
		tuning: cfg.Behavior,
		perf:   telemetry.NewPerfCollector(120),
		policy: genetics.SpeciesPolicy{
			Compatible: cfg.Reproduction.CompatibleDistance,
			Divergent:  cfg.Reproduction.DivergentDistance,
			Max:        cfg.Mutation.SpeciesMax,
			OffsetMax:  cfg.Mutation.SpeciesOffsetMax,
		},
	}
}

// Init generates a world and seeds founders. Dimensions are clamped to the
// configured range. It replaces any previous state.
func (s *Simulation) Init(seed int64, plants, animals, width, height int) error {
	cfg := s.cfg
	width, height = cfg.ClampSize(width), cfg.ClampSize(height)

	store, err := systems.NewEntityStore(cfg.Population.Capacity)
	if err != nil {
		return fmt.Errorf("initializing simulation: %w", err)
	}

	s.seed = seed
	s.rng = rand.New(rand.NewSource(seed))
	s.width, s.height = width, height
	s.terrain = systems.GenerateTerrain(cfg.World, seed, width, height)
	s.store = store
	s.occ = systems.NewOccupancyGrid(width, height)
	s.weather = systems.NewWeather(cfg.Weather, seed, width, height)
	s.fire = systems.NewFire(cfg.Fire, s.terrain)
	s.eggs = newEggSystem()
	s.gestations = make(map[int]gestation)

	s.tick = 0
	s.step = 0
	s.accumulator = 0
	s.numPlants, s.numAnimals = 0, 0
	s.isDay = true

	s.species = telemetry.NewSpeciesTracker()
	s.mutations = telemetry.NewMutationLog(cfg.Mutation.LogSize)
	s.diag = telemetry.NewDiagnostics(cfg.Analytics.HistoryDays)
	s.bookmarks = telemetry.NewBookmarkDetector(cfg.Analytics.HistoryDays)
	s.marks = s.marks[:0]

	s.spawnFounders(traits.Plant, plants)
	s.spawnFounders(traits.Animal, animals)
	s.initialized = true
	s.refreshSpecies()

	s.logger.Info("simulation initialized",
		"seed", seed,
		"width", width,
		"height", height,
		"plants", s.numPlants,
		"animals", s.numAnimals,
	)
	return nil
}

// Reseed re-initializes with a new seed, keeping the current dimensions and
// founder counts.
func (s *Simulation) Reseed(seed int64, plants, animals int) error {
	w, h := s.width, s.height
	if !s.initialized {
		w, h = s.cfg.World.MinSize, s.cfg.World.MinSize
	}
	return s.Init(seed, plants, animals, w, h)
}

// Seed returns the seed of the current world.
func (s *Simulation) Seed() int64 { return s.seed }

// Config returns the configuration the simulation runs with.
func (s *Simulation) Config() *config.Config { return s.cfg }

// SetDayCallback registers fn to receive each closed day.
func (s *Simulation) SetDayCallback(fn func(telemetry.DailyPopulationStats)) {
	s.dayCallback = fn
}

// SetSpeciesCallback registers fn to receive each species scan.
func (s *Simulation) SetSpeciesCallback(fn func(tick int64, stats []telemetry.SpeciesStats)) {
	s.speciesCallback = fn
}

// StepOnce advances the world by exactly one tick.
func (s *Simulation) StepOnce() {
	if !s.initialized {
		return
	}
	s.step++
	s.stepping = true
	s.perf.StartTick()

	s.perf.StartPhase(telemetry.PhaseEnvironment)
	s.updateEnvironment()
	s.perf.StartPhase(telemetry.PhaseFire)
	s.fire.Step(s.rng, s.weather, s)

	s.perf.StartPhase(telemetry.PhaseSweep)
	s.sweep()
	s.perf.StartPhase(telemetry.PhaseStates)
	s.advanceStates()
	s.perf.StartPhase(telemetry.PhaseEggs)
	s.updateEggs()

	s.perf.StartPhase(telemetry.PhaseAnalytics)
	if s.tick%int64(s.cfg.Analytics.SpeciesInterval) == 0 {
		s.refreshSpecies()
	}

	s.tick++
	s.stepping = false

	if s.tick%int64(s.cfg.World.DayTicks) == 0 {
		s.rolloverDay()
	}
	s.perf.EndTick()
}

// PerfStats returns step timing over the recent window.
func (s *Simulation) PerfStats() telemetry.PerfStats { return s.perf.Stats() }

// StepTime advances the world by the ticks owed for deltaSeconds of wall
// time. The backlog is capped; excess ticks are dropped. It reports whether
// any tick ran.
func (s *Simulation) StepTime(deltaSeconds float64) bool {
	if !s.initialized || deltaSeconds <= 0 {
		return false
	}
	s.accumulator += deltaSeconds * s.cfg.Runner.TicksPerSecond
	n := int(s.accumulator)
	if n <= 0 {
		return false
	}
	if limit := s.cfg.Runner.MaxCatchUp; limit > 0 && n > limit {
		s.logger.Warn("tick backlog dropped", "owed", n, "ran", limit)
		n = limit
		s.accumulator = 0
	} else {
		s.accumulator -= float64(n)
	}
	for k := 0; k < n; k++ {
		s.StepOnce()
	}
	return true
}

// sweep runs the per-entity update over every live slot, starting from a
// rotating offset so no slot always acts first.
func (s *Simulation) sweep() {
	n := s.store.Len()
	if n == 0 {
		return
	}
	start := int((uint64(s.tick) * 2654435761) % uint64(n))
	for k := 0; k < n; k++ {
		i := start + k
		if i >= n {
			i -= n
		}
		if !s.store.Alive(i) || s.store.BornStep[i] == s.step {
			continue
		}
		s.updateEntity(i)
	}
}

// updateEntity applies aging, fire, metabolism, behaviour and death checks
// to slot i.
func (s *Simulation) updateEntity(i int) {
	st := s.store
	st.Age[i]++
	g := &st.Genome[i]
	if !st.Adult[i] && int(st.Age[i]) >= g.MaturityAge {
		st.Adult[i] = true
	}

	tile := s.terrain.Index(int(st.X[i]), int(st.Y[i]))
	burning := s.fire.Burning(tile)
	if burning {
		s.burn(i)
	}

	if g.LifeType == traits.Plant {
		s.updatePlant(i, tile)
	} else {
		s.updateAnimal(i, tile, burning)
	}

	if st.Alive(i) {
		s.checkDeath(i)
	}
}

// checkDeath removes slot i if it has run out of age, energy or water.
func (s *Simulation) checkDeath(i int) {
	st := s.store
	g := &st.Genome[i]
	st.Energy[i] = clamp01(st.Energy[i])
	st.Hydration[i] = clamp01(st.Hydration[i])

	tile := s.terrain.Index(int(st.X[i]), int(st.Y[i]))
	burning := s.fire.Burning(tile)
	switch {
	case int(st.Age[i]) > g.MaxAge:
		s.kill(i, traits.CauseAge)
	case st.Energy[i] <= 0:
		if burning {
			s.kill(i, traits.CauseFire)
		} else {
			s.kill(i, traits.CauseStarvation)
		}
	case st.Hydration[i] <= 0:
		if burning {
			s.kill(i, traits.CauseFire)
		} else {
			s.kill(i, traits.CauseDehydration)
		}
	case g.LifeType == traits.Animal &&
		s.tempStress(tile, g.TemperatureTolerance) >= s.cfg.Metabolism.ExposureLimit &&
		s.rng.Float64() < 0.01:
		s.kill(i, traits.CauseExposure)
	}
}

// advanceStates is the second pass: gestation and cooldown timers, diet
// penalties and parental care. Transitions made earlier this step are not
// advanced until the next one.
func (s *Simulation) advanceStates() {
	st := s.store
	n := st.Len()
	for i := 0; i < n; i++ {
		if !st.Alive(i) || st.BornStep[i] == s.step {
			continue
		}
		if st.DietPenalty[i] > 0 {
			st.DietPenalty[i]--
			if st.DietPenalty[i] == 0 {
				st.DietShift[i] = genetics.NoShift
			}
		}
		if st.ReproStep[i] == s.step {
			continue
		}
		switch st.ReproState[i] {
		case traits.Gestating:
			st.ReproTimer[i]--
			if st.ReproTimer[i] <= 0 {
				s.completeGestation(i)
			}
		case traits.Cooldown:
			st.ReproTimer[i]--
			if st.ReproTimer[i] <= 0 {
				st.ReproState[i] = traits.Ready
				st.ReproTimer[i] = 0
			}
			s.provideCare(i)
		}
	}
}
