package game

import (
	"github.com/pthm-cable/biome/genetics"
	"github.com/pthm-cable/biome/telemetry"
	"github.com/pthm-cable/biome/traits"
)

func speciesKey(g *genetics.Genome) telemetry.SpeciesKey {
	return telemetry.SpeciesKey{Species: g.Species, LifeType: g.LifeType}
}

// refreshSpecies rescans every live entity into species statistics.
func (s *Simulation) refreshSpecies() {
	st := s.store
	samples := s.samples[:0]
	for i := 0; i < st.Len(); i++ {
		if !st.Alive(i) {
			continue
		}
		g := &st.Genome[i]
		sm := telemetry.Sample{
			Key:      speciesKey(g),
			Class:    g.Class,
			Diet:     g.Diet,
			Activity: g.Activity,
			Biome:    s.terrain.Biome[s.terrain.Index(int(st.X[i]), int(st.Y[i]))],
			Age:      st.Age[i],
			Energy:   st.Energy[i],
		}
		for t := genetics.Trait(0); t < genetics.NumTraits; t++ {
			sm.Traits[t] = g.Value(t)
		}
		samples = append(samples, sm)
	}
	s.samples = samples
	s.species.Recompute(s.tick, samples)

	if s.speciesCallback != nil {
		s.speciesCallback(s.tick, s.species.Stats())
	}
}

// animalEnergies collects the energy of every live animal.
func (s *Simulation) animalEnergies() []float64 {
	st := s.store
	out := make([]float64, 0, s.numAnimals)
	for i := 0; i < st.Len(); i++ {
		if st.Alive(i) && st.Genome[i].LifeType == traits.Animal {
			out = append(out, st.Energy[i])
		}
	}
	return out
}

// Bookmarks beyond this many are dropped oldest first.
const maxBookmarks = 256

// rolloverDay closes the running day in the diagnostics and hands it to the
// day callback.
func (s *Simulation) rolloverDay() {
	mean, p10, p50, p90 := telemetry.ComputeEnergyStats(s.animalEnergies())
	closed := s.diag.Rollover(telemetry.DailyPopulationStats{
		EndTick:          s.tick,
		Plants:           s.numPlants,
		Animals:          s.numAnimals,
		Eggs:             s.eggs.count,
		Species:          s.species.Count(),
		AnimalEnergyMean: mean,
		AnimalEnergyP10:  p10,
		AnimalEnergyP50:  p50,
		AnimalEnergyP90:  p90,
		RainCoverage:     s.weather.Coverage(),
		ActiveFires:      s.fire.Count(),
	})

	s.logger.Debug("day complete", "stats", closed)
	for _, b := range s.bookmarks.Check(closed) {
		s.logger.Info("bookmark", "bookmark", b)
		if len(s.marks) == maxBookmarks {
			s.marks = append(s.marks[:0], s.marks[1:]...)
		}
		s.marks = append(s.marks, b)
	}
	if s.dayCallback != nil {
		s.dayCallback(closed)
	}
}
