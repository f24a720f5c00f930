package telemetry

import (
	"sort"

	"github.com/pthm-cable/biome/genetics"
	"github.com/pthm-cable/biome/traits"
)

// SpeciesKey identifies a species within one life type. Plants and animals
// share the id space, so the life type is part of the key.
type SpeciesKey struct {
	Species  int
	LifeType traits.LifeType
}

// Sample is one live entity as seen by a species scan.
type Sample struct {
	Key      SpeciesKey
	Class    traits.Class
	Diet     traits.Diet
	Activity traits.Activity
	Biome    traits.Biome // Biome of the tile the entity stands on
	Age      int32
	Energy   float64
	Traits   [genetics.NumTraits]float64
}

// SpeciesStats aggregates one species at the last scan.
type SpeciesStats struct {
	Tick       int64  `csv:"tick"`
	Species    int    `csv:"species"`
	LifeType   string `csv:"life_type"`
	Population int    `csv:"population"`
	Class      string `csv:"class"`
	Diet       string `csv:"diet"`
	Activity   string `csv:"activity"`

	MeanSize       float64 `csv:"mean_size"`
	MeanSpeed      float64 `csv:"mean_speed"`
	MeanHostility  float64 `csv:"mean_hostility"`
	MeanVision     float64 `csv:"mean_vision"`
	MeanFertility  float64 `csv:"mean_fertility"`
	MeanCamouflage float64 `csv:"mean_camouflage"`
	MeanEnergy     float64 `csv:"mean_energy"`
	DeathsTotal    int     `csv:"deaths"`

	MeanTraits  [genetics.NumTraits]float64 `csv:"-"`
	BiomeCounts [traits.NumBiomes]int       `csv:"-"`
	Deaths      [traits.NumCauses]int       `csv:"-"`
}

// SpeciesDetails extends SpeciesStats with spread, history and recent events.
type SpeciesDetails struct {
	SpeciesStats
	TraitStdDev    [genetics.NumTraits]float64
	MeanAge        float64
	FirstSeen      int64
	PeakPopulation int
	RecentEvents   []MutationEvent
}

type speciesHistory struct {
	firstSeen int64
	peak      int
	stdDev    [genetics.NumTraits]float64
	meanAge   float64
}

// SpeciesTracker recomputes species statistics from full scans and keeps
// cause-of-death tallies between scans.
type SpeciesTracker struct {
	stats   []SpeciesStats
	index   map[SpeciesKey]int
	history map[SpeciesKey]*speciesHistory
	deaths  map[SpeciesKey]*[traits.NumCauses]int

	// scratch reused between scans
	groups map[SpeciesKey][]int
	column []float64
}

// NewSpeciesTracker creates an empty tracker.
func NewSpeciesTracker() *SpeciesTracker {
	return &SpeciesTracker{
		index:   make(map[SpeciesKey]int),
		history: make(map[SpeciesKey]*speciesHistory),
		deaths:  make(map[SpeciesKey]*[traits.NumCauses]int),
		groups:  make(map[SpeciesKey][]int),
	}
}

// RecordDeath tallies a death for key.
func (t *SpeciesTracker) RecordDeath(key SpeciesKey, cause traits.DeathCause) {
	d, ok := t.deaths[key]
	if !ok {
		d = new([traits.NumCauses]int)
		t.deaths[key] = d
	}
	d[cause]++
}

// Recompute rebuilds every species statistic from samples.
func (t *SpeciesTracker) Recompute(tick int64, samples []Sample) {
	for k, v := range t.groups {
		t.groups[k] = v[:0]
	}
	for i := range samples {
		k := samples[i].Key
		t.groups[k] = append(t.groups[k], i)
	}

	keys := make([]SpeciesKey, 0, len(t.groups))
	for k, idx := range t.groups {
		if len(idx) == 0 {
			delete(t.groups, k)
			continue
		}
		keys = append(keys, k)
	}

	t.stats = t.stats[:0]
	for _, k := range keys {
		t.stats = append(t.stats, t.aggregate(tick, k, samples, t.groups[k]))
	}
	sort.Slice(t.stats, func(a, b int) bool {
		sa, sb := &t.stats[a], &t.stats[b]
		if sa.Population != sb.Population {
			return sa.Population > sb.Population
		}
		if sa.Species != sb.Species {
			return sa.Species < sb.Species
		}
		return sa.LifeType < sb.LifeType
	})
	clear(t.index)
	for i := range t.stats {
		s := &t.stats[i]
		t.index[keyOf(s)] = i
	}
}

func keyOf(s *SpeciesStats) SpeciesKey {
	lt := traits.Plant
	if s.LifeType == traits.Animal.String() {
		lt = traits.Animal
	}
	return SpeciesKey{Species: s.Species, LifeType: lt}
}

func (t *SpeciesTracker) aggregate(tick int64, k SpeciesKey, samples []Sample, idx []int) SpeciesStats {
	s := SpeciesStats{
		Tick:       tick,
		Species:    k.Species,
		LifeType:   k.LifeType.String(),
		Population: len(idx),
	}

	var classes [traits.NumClasses]int
	var diets [traits.NumDiets]int
	var acts [traits.NumActivities]int
	var ageSum, energySum float64
	for _, i := range idx {
		sm := &samples[i]
		classes[sm.Class]++
		diets[sm.Diet]++
		acts[sm.Activity]++
		s.BiomeCounts[sm.Biome]++
		ageSum += float64(sm.Age)
		energySum += sm.Energy
	}
	s.Class = traits.Class(argmax(classes[:])).String()
	s.Diet = traits.Diet(argmax(diets[:])).String()
	s.Activity = traits.Activity(argmax(acts[:])).String()
	s.MeanEnergy = energySum / float64(len(idx))

	h, ok := t.history[k]
	if !ok {
		h = &speciesHistory{firstSeen: tick}
		t.history[k] = h
	}
	h.peak = max(h.peak, len(idx))
	h.meanAge = ageSum / float64(len(idx))

	for tr := genetics.Trait(0); tr < genetics.NumTraits; tr++ {
		t.column = t.column[:0]
		for _, i := range idx {
			t.column = append(t.column, samples[i].Traits[tr])
		}
		s.MeanTraits[tr], h.stdDev[tr] = MeanStd(t.column)
	}
	s.MeanSize = s.MeanTraits[genetics.Size]
	s.MeanSpeed = s.MeanTraits[genetics.Speed]
	s.MeanHostility = s.MeanTraits[genetics.Hostility]
	s.MeanVision = s.MeanTraits[genetics.Vision]
	s.MeanFertility = s.MeanTraits[genetics.Fertility]
	s.MeanCamouflage = s.MeanTraits[genetics.Camouflage]

	if d, ok := t.deaths[k]; ok {
		s.Deaths = *d
		for _, n := range d {
			s.DeathsTotal += n
		}
	}
	return s
}

func argmax(counts []int) int {
	best := 0
	for i, c := range counts {
		if c > counts[best] {
			best = i
		}
	}
	return best
}

// Stats returns the last scan, largest population first.
func (t *SpeciesTracker) Stats() []SpeciesStats {
	out := make([]SpeciesStats, len(t.stats))
	copy(out, t.stats)
	return out
}

// Count returns the number of species alive at the last scan.
func (t *SpeciesTracker) Count() int { return len(t.stats) }

// Details returns the extended view of species id. The hinted life type is
// tried first, then the other.
func (t *SpeciesTracker) Details(id int, hint traits.LifeType, log *MutationLog, recent int) (SpeciesDetails, bool) {
	other := traits.Animal
	if hint == traits.Animal {
		other = traits.Plant
	}
	for _, lt := range []traits.LifeType{hint, other} {
		k := SpeciesKey{Species: id, LifeType: lt}
		i, ok := t.index[k]
		if !ok {
			continue
		}
		h := t.history[k]
		d := SpeciesDetails{
			SpeciesStats:   t.stats[i],
			TraitStdDev:    h.stdDev,
			MeanAge:        h.meanAge,
			FirstSeen:      h.firstSeen,
			PeakPopulation: h.peak,
		}
		if log != nil {
			d.RecentEvents = log.ForSpecies(id, recent)
		}
		return d, true
	}
	return SpeciesDetails{}, false
}
