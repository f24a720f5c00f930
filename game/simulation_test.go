package game

import (
	"errors"
	"math/rand"
	"slices"
	"testing"

	"github.com/pthm-cable/biome/config"
	"github.com/pthm-cable/biome/genetics"
	"github.com/pthm-cable/biome/systems"
	"github.com/pthm-cable/biome/traits"
)

func newSim(t *testing.T, cfg *config.Config, seed int64, plants, animals int) *Simulation {
	t.Helper()
	if cfg == nil {
		cfg = config.Default()
	}
	s := New(cfg, nil)
	if err := s.Init(seed, plants, animals, 120, 120); err != nil {
		t.Fatalf("Init: %v", err)
	}
	return s
}

// landPatch finds a tile whose square neighbourhood of radius r is all land.
func landPatch(t *testing.T, s *Simulation, r int) (int, int) {
	t.Helper()
	tr := s.terrain
	for y := r; y < tr.Height-r; y++ {
		for x := r; x < tr.Width-r; x++ {
			ok := true
			for dy := -r; dy <= r && ok; dy++ {
				for dx := -r; dx <= r && ok; dx++ {
					ok = !tr.Water[tr.Index(x+dx, y+dy)]
				}
			}
			if ok {
				return x, y
			}
		}
	}
	t.Fatal("no land patch found")
	return 0, 0
}

func animalGenome(class traits.Class, activity traits.Activity) genetics.Genome {
	return genetics.Genome{
		LifeType:             traits.Animal,
		Species:              5,
		Class:                class,
		Diet:                 traits.Herbivore,
		ReproMode:            traits.Sexual,
		Activity:             activity,
		PreferredBiome:       traits.Grassland,
		Hostility:            0.2,
		Speed:                0.5,
		Size:                 0.5,
		Vision:               0.5,
		Fertility:            0.5,
		MaturityAge:          genetics.MinMaturityAge,
		MaxAge:               genetics.MaxMaxAge,
		Camouflage:           0.5,
		Sociality:            0.5,
		TemperatureTolerance: 1,
		MutationRate:         0.05,
	}
}

// checkInvariants verifies the store, occupancy grid and egg cap agree.
func checkInvariants(t *testing.T, s *Simulation) {
	t.Helper()
	st := s.store
	live := 0
	for i := 0; i < st.Len(); i++ {
		if !st.Alive(i) {
			continue
		}
		live++
		g := &st.Genome[i]
		if st.Energy[i] < 0 || st.Energy[i] > 1 || st.Hydration[i] < 0 || st.Hydration[i] > 1 {
			t.Fatalf("slot %d vitals out of range: e=%v h=%v", i, st.Energy[i], st.Hydration[i])
		}
		x, y := int(st.X[i]), int(st.Y[i])
		if s.occ.At(x, y) != i {
			t.Fatalf("slot %d not on its occupancy cell", i)
		}
		water := s.terrain.Water[s.terrain.Index(x, y)]
		switch g.LifeType {
		case traits.Plant:
			if g.Speed != 0 || g.Vision != 0 || g.Diet != traits.Photosynthesis || g.Class != traits.ClassNone {
				t.Fatalf("plant slot %d has animal traits: %+v", i, g)
			}
		case traits.Animal:
			if g.Diet == traits.Photosynthesis || g.Class == traits.ClassNone || g.SeedSpread != 0 {
				t.Fatalf("animal slot %d has plant traits: %+v", i, g)
			}
			if !g.Class.CanEnter(water) {
				t.Fatalf("animal slot %d (%s) on forbidden tile", i, g.Class)
			}
		}
	}
	occupied := 0
	for _, c := range s.occ.Cells() {
		if c >= 0 {
			occupied++
		}
	}
	c := s.Counts()
	if live != st.Live() || live != st.LiveBits() || live != occupied || live != c.Total {
		t.Fatalf("live=%d store=%d bits=%d occupied=%d counts=%d", live, st.Live(), st.LiveBits(), occupied, c.Total)
	}
	if c.Eggs > s.cfg.Eggs.Max {
		t.Fatalf("eggs %d over cap %d", c.Eggs, s.cfg.Eggs.Max)
	}
	for i, ttl := range s.fire.TTL {
		if ttl > 0 && s.terrain.Water[i] {
			t.Fatalf("water tile %d burning", i)
		}
	}
}

func TestInitClampsDimensions(t *testing.T) {
	s := New(config.Default(), nil)
	if err := s.Init(42, 100, 20, 50, 5000); err != nil {
		t.Fatal(err)
	}
	ws := s.WorldStats()
	if ws.Width != 120 || ws.Height != 2048 {
		t.Errorf("dimensions = %dx%d, want 120x2048", ws.Width, ws.Height)
	}
	c := s.Counts()
	if c.Plants == 0 || c.Plants > 100 || c.Animals > 20 {
		t.Errorf("founders = %+v", c)
	}
	checkInvariants(t, s)
}

func TestInitCapacityError(t *testing.T) {
	cfg := config.Default()
	cfg.Population.Capacity = 0
	s := New(cfg, nil)
	err := s.Init(1, 10, 10, 120, 120)
	if !errors.Is(err, systems.ErrCapacity) {
		t.Fatalf("Init error = %v, want ErrCapacity", err)
	}
	s.StepOnce()
	if s.Tick() != 0 {
		t.Error("uninitialized simulation advanced")
	}
}

func TestScenarioLongRun(t *testing.T) {
	s := New(config.Default(), nil)
	if err := s.Init(42, 100, 20, 50, 50); err != nil {
		t.Fatal(err)
	}
	for k := 0; k < 1000; k++ {
		s.StepOnce()
		if k%100 == 0 {
			checkInvariants(t, s)
		}
	}
	if s.Tick() != 1000 {
		t.Errorf("Tick = %d, want 1000", s.Tick())
	}
	if c := s.Counts(); c.Total > 120000 {
		t.Errorf("population %d over capacity", c.Total)
	}
	checkInvariants(t, s)

	if got := len(s.PopulationDiagnostics().History); got != 0 {
		t.Errorf("history after 1000 ticks = %d days, want 0", got)
	}
	for k := 0; k < 200; k++ {
		s.StepOnce()
	}
	if got := len(s.PopulationDiagnostics().History); got != 1 {
		t.Errorf("history after first day = %d, want 1", got)
	}
}

type fingerprint struct {
	tick       int64
	counts     Counts
	cells      []int32
	energy     []float64
	hydration  []float64
	age        []int32
	genomes    []genetics.Genome
	alleles    []genetics.Alleles
	reproState []traits.ReproState
	reproTimer []int32
	env        EnvMaps
	fireTTL    []int16
	species    int
	events     int
	eggs       []EggData
}

// fingerprintOf copies every live slot and environment layer of s. Dead
// slots are left zero so stale values cannot differ between runs.
func fingerprintOf(s *Simulation) fingerprint {
	st := s.store
	n := st.Len()
	fp := fingerprint{
		tick:       s.Tick(),
		counts:     s.Counts(),
		cells:      slices.Clone(s.occ.Cells()),
		energy:     make([]float64, n),
		hydration:  make([]float64, n),
		age:        make([]int32, n),
		genomes:    make([]genetics.Genome, n),
		alleles:    make([]genetics.Alleles, n),
		reproState: make([]traits.ReproState, n),
		reproTimer: make([]int32, n),
		env:        s.EnvMaps(),
		fireTTL:    slices.Clone(s.fire.TTL),
		species:    len(s.SpeciesStats()),
		events:     len(s.MutationLog()),
		eggs:       s.Eggs(),
	}
	for i := 0; i < n; i++ {
		if !st.Alive(i) {
			continue
		}
		fp.energy[i] = st.Energy[i]
		fp.hydration[i] = st.Hydration[i]
		fp.age[i] = st.Age[i]
		fp.genomes[i] = st.Genome[i]
		fp.alleles[i] = st.Alleles[i]
		fp.reproState[i] = st.ReproState[i]
		fp.reproTimer[i] = st.ReproTimer[i]
	}
	return fp
}

func TestDeterminism(t *testing.T) {
	run := func() fingerprint {
		s := newSim(t, nil, 7, 400, 120)
		for k := 0; k < 400; k++ {
			s.StepOnce()
		}
		return fingerprintOf(s)
	}
	a, b := run(), run()
	if a.tick != b.tick || a.counts != b.counts || a.species != b.species || a.events != b.events {
		t.Fatalf("runs diverged: %+v vs %+v", a.counts, b.counts)
	}

	checks := []struct {
		name  string
		equal bool
	}{
		{"occupancy", slices.Equal(a.cells, b.cells)},
		{"energy", slices.Equal(a.energy, b.energy)},
		{"hydration", slices.Equal(a.hydration, b.hydration)},
		{"age", slices.Equal(a.age, b.age)},
		{"genomes", slices.Equal(a.genomes, b.genomes)},
		{"alleles", slices.Equal(a.alleles, b.alleles)},
		{"repro state", slices.Equal(a.reproState, b.reproState)},
		{"repro timer", slices.Equal(a.reproTimer, b.reproTimer)},
		{"biome", slices.Equal(a.env.Biome, b.env.Biome)},
		{"moisture", slices.Equal(a.env.Moisture, b.env.Moisture)},
		{"water distance", slices.Equal(a.env.WaterDist, b.env.WaterDist)},
		{"rain", slices.Equal(a.env.Rain, b.env.Rain)},
		{"fire", slices.Equal(a.fireTTL, b.fireTTL)},
		{"eggs", slices.Equal(a.eggs, b.eggs)},
	}
	for _, c := range checks {
		if !c.equal {
			t.Errorf("%s diverged between runs", c.name)
		}
	}
}

func TestReseedChangesWorld(t *testing.T) {
	s := newSim(t, nil, 1, 50, 10)
	before := s.EnvMaps()
	if err := s.Reseed(2, 50, 10); err != nil {
		t.Fatal(err)
	}
	after := s.EnvMaps()
	if s.Tick() != 0 || s.Seed() != 2 {
		t.Errorf("reseed state: tick %d seed %d", s.Tick(), s.Seed())
	}
	if slices.Equal(before.Elevation, after.Elevation) {
		t.Error("reseed produced identical terrain")
	}
}

func TestPlaceAndInspect(t *testing.T) {
	s := newSim(t, nil, 3, 0, 0)
	x, y := landPatch(t, s, 1)

	g := genetics.Genome{
		LifeType:    traits.Plant,
		Species:     9,
		Speed:       0.7,
		Vision:      0.4,
		Size:        0.6,
		Fertility:   0.5,
		MaturityAge: 500,
		MaxAge:      8000,
		SeedSpread:  0.3,
	}
	before := s.Counts().Total
	if !s.Place(x, y, g, 0.8) {
		t.Fatal("Place on empty land failed")
	}
	if got := s.Counts().Total - before; got != 1 {
		t.Errorf("total grew by %d, want 1", got)
	}
	snap, ok := s.Inspect(x, y)
	if !ok {
		t.Fatal("Inspect found nothing")
	}
	if !snap.Alive || snap.Adult {
		t.Errorf("placed plant alive=%v adult=%v, want alive juvenile", snap.Alive, snap.Adult)
	}
	if snap.Age != 0 || snap.Genome.LifeType != traits.Plant || snap.Genome.Species != 9 {
		t.Errorf("snapshot = %+v", snap)
	}
	if snap.Genome.Speed != 0 || snap.Genome.Vision != 0 || snap.Genome.Diet != traits.Photosynthesis {
		t.Errorf("plant not normalized: %+v", snap.Genome)
	}
	if snap.Energy != 0.8 {
		t.Errorf("energy = %v", snap.Energy)
	}

	if s.Place(x, y, g, 0.8) {
		t.Error("Place onto occupied tile succeeded")
	}
	if s.Place(-1, 0, g, 0.8) || s.Place(0, s.height, g, 0.8) {
		t.Error("Place out of bounds succeeded")
	}
	if _, ok := s.Inspect(-1, -1); ok {
		t.Error("Inspect out of bounds returned a snapshot")
	}
	checkInvariants(t, s)
}

func TestGestationCycle(t *testing.T) {
	cfg := config.Default()
	cfg.Weather.LightningChance = 0
	// Permanent daylight keeps the nocturnal pair asleep and in place.
	cfg.Derived.DaylightTicks = cfg.World.DayTicks
	s := newSim(t, cfg, 11, 0, 0)
	x, y := landPatch(t, s, 1)

	g := animalGenome(traits.Mammal, traits.Nocturnal)
	if !s.Place(x, y, g, 1) || !s.Place(x+1, y, g, 1) {
		t.Fatal("placing parents failed")
	}
	mi, fi := s.occ.At(x, y), s.occ.At(x+1, y)
	st := s.store
	for _, i := range []int{mi, fi} {
		st.Adult[i] = true
	}

	s.mate(mi, fi)
	if st.ReproState[mi] != traits.Gestating || st.ReproState[fi] != traits.Cooldown {
		t.Fatalf("states after mating: mother %s father %s", st.ReproState[mi], st.ReproState[fi])
	}
	rec := s.gestations[mi]
	if rec.fatherID != st.ID[fi] {
		t.Fatalf("gestation father = %d, want %d", rec.fatherID, st.ID[fi])
	}
	want := s.gestationTicks(st.Genome[mi].Size)
	if int(st.ReproTimer[mi]) != want || rec.duration != want {
		t.Fatalf("gestation timer = %d, want %d", st.ReproTimer[mi], want)
	}

	before := s.Counts().Animals
	for k := 1; k <= want; k++ {
		for _, i := range []int{mi, fi} {
			st.Energy[i], st.Hydration[i] = 1, 1
		}
		s.StepOnce()
		if k < want && st.ReproState[mi] != traits.Gestating {
			t.Fatalf("gestation ended early at step %d", k)
		}
	}
	if st.ReproState[mi] != traits.Cooldown {
		t.Fatalf("mother state after %d steps = %s, want cooldown", want, st.ReproState[mi])
	}
	if got := s.Counts().Animals - before; got != rec.litter {
		t.Errorf("litter placed = %d, want %d", got, rec.litter)
	}
	if _, ok := s.gestations[mi]; ok {
		t.Error("gestation record not cleared")
	}
	checkInvariants(t, s)
}

func TestMiscarriageWithoutRoom(t *testing.T) {
	cfg := config.Default()
	cfg.Weather.LightningChance = 0
	cfg.Derived.DaylightTicks = cfg.World.DayTicks
	s := newSim(t, cfg, 5, 0, 0)
	x, y := landPatch(t, s, 2)

	g := animalGenome(traits.Mammal, traits.Nocturnal)
	s.Place(x, y, g, 1)
	for _, d := range systems.Neighbors8 {
		s.Place(x+d[0], y+d[1], g, 1)
	}
	mi := s.occ.At(x, y)
	fi := s.occ.At(x+1, y)
	s.store.Adult[mi], s.store.Adult[fi] = true, true
	s.mate(mi, fi)
	s.store.ReproTimer[mi] = 1

	before := s.Counts().Animals
	s.StepOnce()
	if s.Counts().Animals != before {
		t.Errorf("births despite a full neighbourhood")
	}
	if s.store.ReproState[mi] != traits.Cooldown {
		t.Errorf("mother state = %s, want cooldown", s.store.ReproState[mi])
	}
	if s.store.ReproTimer[mi] < int32(float64(traits.Mammal.Cooldown())*(1-cfg.Reproduction.CooldownJitter)*cfg.Reproduction.MiscarriageCooldown)-1 {
		t.Errorf("miscarriage cooldown %d not extended", s.store.ReproTimer[mi])
	}
}

func TestClutchRespectsEggCap(t *testing.T) {
	cfg := config.Default()
	cfg.Eggs.Max = 2
	s := newSim(t, cfg, 13, 0, 0)
	x, y := landPatch(t, s, 4)

	g := animalGenome(traits.Bird, traits.Diurnal)
	s.Place(x, y, g, 1)
	s.Place(x+1, y, g, 1)
	mi, fi := s.occ.At(x, y), s.occ.At(x+1, y)
	s.mate(mi, fi)

	eggs := s.Eggs()
	if len(eggs) != 2 || s.Counts().Eggs != 2 {
		t.Fatalf("eggs laid = %d, want cap of 2", len(eggs))
	}
	for _, e := range eggs {
		if e.MotherID != s.store.ID[mi] || e.FatherID != s.store.ID[fi] {
			t.Errorf("egg parents = %d/%d", e.MotherID, e.FatherID)
		}
		if e.MaxIncubation != traits.Bird.Incubation() || e.Incubation != 0 {
			t.Errorf("egg incubation = %d/%d", e.Incubation, e.MaxIncubation)
		}
		if s.terrain.Water[s.terrain.Index(e.X, e.Y)] {
			t.Error("bird egg laid in water")
		}
	}
	if s.store.ReproState[mi] != traits.Cooldown || s.store.ReproState[fi] != traits.Cooldown {
		t.Error("egg layers should both enter cooldown")
	}

	s.mate(mi, fi)
	if s.Counts().Eggs != 2 {
		t.Error("eggs laid past the cap")
	}
}

func TestResolveHatch(t *testing.T) {
	tests := []struct {
		name      string
		roll      float64
		viability float64
		want      bool
	}{
		{"below minimum never hatches", 0.0, 0.25, false},
		{"at minimum never hatches", 0.0, 0.3, false},
		{"roll under viability", 0.5, 0.8, true},
		{"roll over viability", 0.85, 0.8, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := resolveHatch(tt.roll, tt.viability, 0.3); got != tt.want {
				t.Errorf("resolveHatch(%v, %v) = %v, want %v", tt.roll, tt.viability, got, tt.want)
			}
		})
	}

	rng := rand.New(rand.NewSource(1))
	const n = 20000
	hatched := 0
	for k := 0; k < n; k++ {
		if resolveHatch(rng.Float64(), 0.8, 0.3) {
			hatched++
		}
	}
	if rate := float64(hatched) / n; rate < 0.77 || rate > 0.83 {
		t.Errorf("hatch rate at viability 0.8 = %v", rate)
	}
}

func TestSpeciationIsLogged(t *testing.T) {
	cfg := config.Default()
	cfg.Mutation.SpeciationDistance = -1
	s := newSim(t, cfg, 17, 0, 0)
	x, y := landPatch(t, s, 1)

	mother := animalGenome(traits.Reptile, traits.Diurnal)
	ma := genetics.Encode(&mother)
	child, _ := s.offspring(&mother, &ma, nil, nil, false)
	if child.Species == mother.Species {
		t.Fatal("strong mutation kept the parent species")
	}
	s.recordLineage(&mother, &child, 99, genetics.NoShift, x, y)

	log := s.MutationLog()
	if len(log) != 1 {
		t.Fatalf("mutation log has %d events, want 1", len(log))
	}
	ev := log[0]
	if ev.ParentSpecies != mother.Species || ev.NewSpecies != child.Species || ev.EntityID != 99 {
		t.Errorf("event = %+v", ev)
	}
	if ev.Context == "" || ev.LifeType != "animal" {
		t.Errorf("event context = %q life type %q", ev.Context, ev.LifeType)
	}
}

func TestLineageThresholds(t *testing.T) {
	cfg := config.Default()
	cfg.Mutation.SpeciationDistance = 2
	s := newSim(t, cfg, 19, 0, 0)
	x, y := landPatch(t, s, 1)

	parent := animalGenome(traits.Mammal, traits.Diurnal)
	child := parent
	child.Size = 0.9
	s.recordLineage(&parent, &child, 1, genetics.NoShift, x, y)
	if len(s.MutationLog()) != 0 {
		t.Fatal("small change was logged")
	}

	child.Diet = traits.Omnivore
	s.recordLineage(&parent, &child, 2, genetics.SupplementalCarnivory, x, y)
	log := s.MutationLog()
	if len(log) != 1 || log[0].Cause != genetics.SupplementalCarnivory.String() {
		t.Fatalf("diet shift not logged: %+v", log)
	}
	if log[0].Speciated() {
		t.Error("diet shift below the distance threshold changed species")
	}
}

func TestStepTimeCatchUp(t *testing.T) {
	cfg := config.Default()
	cfg.Runner.TicksPerSecond = 30
	cfg.Runner.MaxCatchUp = 5
	s := newSim(t, cfg, 23, 20, 5)

	if !s.StepTime(10) || s.Tick() != 5 {
		t.Fatalf("after large delta tick = %d, want capped 5", s.Tick())
	}
	if s.StepTime(0.01) {
		t.Error("fractional tick ran a step")
	}
	if !s.StepTime(0.05) || s.Tick() != 6 {
		t.Errorf("accumulated delta tick = %d, want 6", s.Tick())
	}
	if s.StepTime(-1) {
		t.Error("negative delta ran a step")
	}
}

func TestLightningNeverBurnsWater(t *testing.T) {
	cfg := config.Default()
	cfg.Weather.LightningChance = 1
	cfg.Fire.DrynessThreshold = 0
	s := newSim(t, cfg, 29, 2000, 50)
	for k := 0; k < 150; k++ {
		s.StepOnce()
	}
	checkInvariants(t, s)
	if s.WeatherState().LastLightning < 0 {
		t.Error("no lightning with certain strikes")
	}
}

func TestBehaviorTuning(t *testing.T) {
	s := newSim(t, nil, 31, 0, 0)
	s.SetBehaviorTuning(map[string]float64{"fear_weight": 10, "plant_bite_amount": 0.2, "bogus": 1})
	vals := s.BehaviorTuning()
	if vals["fear_weight"] != 3 || vals["plant_bite_amount"] != 0.2 {
		t.Errorf("tuning after set = %v", vals)
	}
	if _, ok := vals["bogus"]; ok {
		t.Error("unknown key stored")
	}
	s.ResetBehaviorTuning()
	if s.Tuning() != s.Config().Behavior {
		t.Error("reset did not restore configured tuning")
	}
}

func TestQueriesAfterSteps(t *testing.T) {
	s := newSim(t, nil, 37, 300, 60)
	for k := 0; k < 120; k++ {
		s.StepOnce()
	}
	ws := s.WorldStats()
	if ws.Tick != 120 || ws.Counts != s.Counts() || ws.Capacity != 120000 {
		t.Errorf("world stats = %+v", ws)
	}
	m := s.EnvMaps()
	if len(m.Biome) != m.Width*m.Height || len(m.FireTTL) != len(m.Biome) || len(m.Rain) != len(m.Biome) {
		t.Error("env map sizes inconsistent")
	}
	stats := s.SpeciesStats()
	if len(stats) == 0 {
		t.Fatal("no species after scan")
	}
	lt := traits.Animal
	if stats[0].LifeType == "plant" {
		lt = traits.Plant
	}
	if d, ok := s.SpeciesDetails(stats[0].Species, lt); !ok || d.Population != stats[0].Population {
		t.Errorf("details for top species = %+v, %v", d, ok)
	}
	if ps := s.PerfStats(); ps.AvgTickDuration <= 0 {
		t.Error("perf collector not fed")
	}
}
