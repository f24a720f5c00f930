package game

import (
	"github.com/pthm-cable/biome/genetics"
	"github.com/pthm-cable/biome/traits"
)

// founderSpecies returns the starting species id for a founder. Founders of
// one life type share an id per biome, and animals also split by class.
func founderSpecies(g *genetics.Genome, biome traits.Biome) int {
	if g.LifeType == traits.Plant {
		return 1 + int(biome)
	}
	return 16 + int(g.Class)*8 + int(g.Diet)
}

// spawnFounders seeds n organisms of life type lt on random suitable tiles.
// Founders that find no tile within the attempt budget are skipped.
func (s *Simulation) spawnFounders(lt traits.LifeType, n int) {
	cfg := s.cfg.Population
	t := s.terrain
	for k := 0; k < n; k++ {
		class := traits.ClassNone
		if lt == traits.Animal {
			if s.rng.Float64() < cfg.AquaticFraction {
				class = traits.Fish
			} else {
				class = traits.AnimalClasses[1+s.rng.Intn(len(traits.AnimalClasses)-1)]
			}
		}

		x, y, ok := -1, -1, false
		for a := 0; a < cfg.SpawnAttempts && !ok; a++ {
			x, y = s.rng.Intn(s.width), s.rng.Intn(s.height)
			if !s.occ.Empty(x, y) {
				continue
			}
			water := t.Water[t.Index(x, y)]
			if lt == traits.Plant {
				ok = !water
			} else {
				ok = class.CanEnter(water) && (!class.Aquatic() || water)
			}
		}
		if !ok {
			continue
		}

		biome := t.Biome[t.Index(x, y)]
		g, a := genetics.Founder(s.rng, lt, class, biome, 0)
		g.Species = founderSpecies(&g, biome)
		i, placed := s.spawn(x, y, &g, &a, cfg.InitialEnergy, cfg.InitialHydration, 0)
		if !placed {
			return
		}
		// Stagger founder ages so the first generation does not mature in lockstep.
		s.store.Age[i] = int32(s.rng.Intn(2 * g.MaturityAge))
		s.store.Adult[i] = int(s.store.Age[i]) >= g.MaturityAge
	}
}

// spawn allocates a slot at (x, y) for a fully formed genome. It fails when
// the tile is taken or the store is full.
func (s *Simulation) spawn(x, y int, g *genetics.Genome, a *genetics.Alleles, energy, hydration float64, parentID uint32) (int, bool) {
	if !s.occ.Empty(x, y) {
		return -1, false
	}
	st := s.store
	i, ok := st.Alloc()
	if !ok {
		return -1, false
	}
	st.ParentID[i] = parentID
	st.X[i], st.Y[i] = int32(x), int32(y)
	st.Genome[i] = *g
	st.Alleles[i] = *a
	st.Energy[i] = clamp01(energy)
	st.Hydration[i] = clamp01(hydration)
	st.BirthTick[i] = s.tick
	st.BornStep[i] = s.step
	if !s.stepping {
		// Created between steps: eligible for the next step.
		st.BornStep[i] = 0
	}
	s.occ.Set(x, y, i)

	if g.LifeType == traits.Plant {
		s.numPlants++
	} else {
		s.numAnimals++
	}
	return i, true
}

// kill removes slot i and records the death.
func (s *Simulation) kill(i int, cause traits.DeathCause) {
	st := s.store
	if !st.Alive(i) {
		return
	}
	g := &st.Genome[i]
	s.diag.RecordDeath(g.LifeType, cause)
	s.species.RecordDeath(speciesKey(g), cause)

	s.occ.Clear(int(st.X[i]), int(st.Y[i]))
	delete(s.gestations, i)
	if g.LifeType == traits.Plant {
		s.numPlants--
	} else {
		s.numAnimals--
	}
	st.Free(i)
}

// moveTo relocates slot i to an empty tile.
func (s *Simulation) moveTo(i, x, y int) {
	st := s.store
	s.occ.Clear(int(st.X[i]), int(st.Y[i]))
	st.X[i], st.Y[i] = int32(x), int32(y)
	s.occ.Set(x, y, i)
}

// Place inserts an organism at (x, y) with the given genome and energy. The
// genome is normalized for its life type. It fails when the tile is out of
// bounds or occupied, or the store is full.
func (s *Simulation) Place(x, y int, g genetics.Genome, energy float64) bool {
	if !s.initialized || !s.terrain.InBounds(x, y) {
		return false
	}
	g.MaturityAge = min(max(g.MaturityAge, genetics.MinMaturityAge), genetics.MaxMaturityAge)
	g.MaxAge = min(max(g.MaxAge, genetics.MinMaxAge), genetics.MaxMaxAge)
	a := genetics.Encode(&g)
	genetics.Normalize(&g, &a)
	water := s.terrain.Water[s.terrain.Index(x, y)]
	if (g.LifeType == traits.Plant && water) || (g.LifeType == traits.Animal && !g.Class.CanEnter(water)) {
		return false
	}
	_, ok := s.spawn(x, y, &g, &a, energy, s.cfg.Population.InitialHydration, 0)
	return ok
}

// HasFuel reports whether a plant stands within radius of (x, y).
func (s *Simulation) HasFuel(x, y, radius int) bool {
	st := s.store
	for dy := -radius; dy <= radius; dy++ {
		for dx := -radius; dx <= radius; dx++ {
			j := s.occ.At(x+dx, y+dy)
			if j >= 0 && st.Genome[j].LifeType == traits.Plant {
				return true
			}
		}
	}
	return false
}
