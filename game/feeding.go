package game

import (
	"github.com/pthm-cable/biome/systems"
	"github.com/pthm-cable/biome/traits"
)

// drink tops up hydration when animal i stands on or next to water.
func (s *Simulation) drink(i int) {
	st := s.store
	t := s.terrain
	tile := t.Index(int(st.X[i]), int(st.Y[i]))
	if t.WaterDist[tile] > 1 || st.Hydration[i] >= 0.9 {
		return
	}
	st.Hydration[i] = clamp01(st.Hydration[i] + s.cfg.Metabolism.DrinkAmount)
}

// feed lets animal i graze or hunt an adjacent target. Hungry animals always
// try; sated ones only opportunistically.
func (s *Simulation) feed(i int, v *view) {
	st := s.store
	g := &st.Genome[i]
	cfg := s.cfg.Feeding
	if st.Energy[i] >= cfg.Satiation {
		return
	}
	hunger := (1 - st.Energy[i]) * s.tuning.HungerWeight
	if hunger <= cfg.DriveThreshold && s.rng.Float64() >= s.tuning.OpportunisticFeedChance {
		return
	}

	if g.Diet.EatsMeat() {
		if j := s.adjacent(i, v.prey); j >= 0 {
			s.attack(i, j)
			return
		}
	}
	if g.Diet.EatsPlants() {
		if j := s.adjacent(i, v.plants); j >= 0 {
			s.graze(i, j)
		}
	}
}

// adjacent returns the first live candidate touching i, or -1.
func (s *Simulation) adjacent(i int, cands []int) int {
	st := s.store
	x, y := int(st.X[i]), int(st.Y[i])
	for _, j := range cands {
		if st.Alive(j) && chebyshev(int(st.X[j])-x, int(st.Y[j])-y) <= 1 {
			return j
		}
	}
	return -1
}

// graze transfers a bite of plant j to animal i. The plant dies when its
// energy falls to the death threshold.
func (s *Simulation) graze(i, j int) {
	st := s.store
	cfg := s.cfg.Feeding
	bite := min(s.tuning.PlantBiteAmount, st.Energy[j])
	gain := bite * cfg.PlantDigestion
	if st.Genome[i].Diet == traits.Omnivore {
		gain *= cfg.OmnivorePlantRate
	}
	st.Energy[j] -= bite
	st.Energy[i] = clamp01(st.Energy[i] + gain)
	st.PlantFeed[i]++
	if st.Energy[j] <= cfg.PlantDeathEnergy {
		s.kill(j, traits.CauseGrazed)
	}
}

// attack resolves a predation attempt of i on j.
func (s *Simulation) attack(i, j int) {
	st := s.store
	cfg := s.cfg.Feeding
	a, p := &st.Genome[i], &st.Genome[j]
	chance := 0.25 + 0.5*a.Hostility + 0.5*(a.Size-p.Size) - 0.2*(p.Camouflage+p.Speed)
	if s.rng.Float64() >= clamp01(chance) {
		st.Energy[i] -= cfg.AttackFailPenalty
		return
	}
	gain := st.Energy[j] * (0.5 + p.Size) * s.tuning.AttackEnergyGain * cfg.MeatDigestion
	st.Energy[i] = clamp01(st.Energy[i] + gain)
	st.PreyFeed[i]++
	s.kill(j, traits.CausePredation)
}

// freeNeighbors collects empty neighbours of (x, y) passable for class c.
func (s *Simulation) freeNeighbors(x, y int, c traits.Class, out []int) []int {
	t := s.terrain
	out = out[:0]
	for _, d := range systems.Neighbors8 {
		nx, ny := x+d[0], y+d[1]
		if !s.occ.Empty(nx, ny) || !c.CanEnter(t.Water[t.Index(nx, ny)]) {
			continue
		}
		out = append(out, t.Index(nx, ny))
	}
	return out
}
