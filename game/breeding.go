package game

import (
	"math"

	"github.com/pthm-cable/biome/genetics"
	"github.com/pthm-cable/biome/traits"
)

// gestation is an internal pregnancy. The father's genome is copied so the
// litter survives his death.
type gestation struct {
	fatherID      uint32
	father        genetics.Genome
	fatherAlleles genetics.Alleles
	litter        int
	duration      int
}

// tryReproduce rolls for reproduction of a ready adult animal.
func (s *Simulation) tryReproduce(i int, v *view) {
	st := s.store
	g := &st.Genome[i]
	cfg := s.cfg.Reproduction
	if !st.Adult[i] || st.ReproState[i] != traits.Ready {
		return
	}
	if s.readiness(i, v) < s.tuning.ReproReadinessThreshold || s.rng.Float64() >= cfg.AttemptChance {
		return
	}

	if g.ReproMode == traits.Asexual {
		if s.rng.Float64() < cfg.BaseFertility+g.Fertility*g.Fertility {
			s.mate(i, -1)
		}
		return
	}
	j := s.bestMate(i, v)
	if j < 0 {
		return
	}
	if s.rng.Float64() < cfg.BaseFertility+g.Fertility*st.Genome[j].Fertility {
		s.mate(i, j)
	}
}

// bestMate scores visible ready mates and returns the best, or -1.
func (s *Simulation) bestMate(i int, v *view) int {
	st := s.store
	g := &st.Genome[i]
	x, y := int(st.X[i]), int(st.Y[i])
	best, bestScore := -1, 0.0
	for _, j := range v.mates {
		if !st.Alive(j) || st.ReproState[j] != traits.Ready {
			continue
		}
		o := &st.Genome[j]
		dist := genetics.Distance(g, o)
		if dist > s.cfg.Reproduction.DivergentDistance*2 {
			continue
		}
		score := (1 - math.Abs(g.Size-o.Size)) +
			(st.Energy[j]+st.Hydration[j])/2 +
			o.Fertility +
			(1 - dist) +
			1/(1+float64(chebyshev(int(st.X[j])-x, int(st.Y[j])-y)))
		if o.Activity == g.Activity {
			score += 0.5
		}
		if o.PreferredBiome == g.PreferredBiome {
			score += 0.25
		}
		if score > bestScore {
			best, bestScore = j, score
		}
	}
	return best
}

// mate commits a successful mating of mother i with father j. Asexual
// reproduction passes j < 0. Egg layers lay a clutch; others gestate.
func (s *Simulation) mate(i, j int) {
	st := s.store
	if st.Genome[i].Class.LaysEggs() {
		s.layClutch(i, j)
		s.enterCooldown(i, 1)
		if j >= 0 {
			s.enterCooldown(j, 1)
		}
		return
	}
	s.startGestation(i, j)
	if j >= 0 {
		s.enterCooldown(j, 1)
	}
}

// enterCooldown puts i into a jittered cooldown scaled by factor.
func (s *Simulation) enterCooldown(i int, factor float64) {
	st := s.store
	jitter := 1 + s.cfg.Reproduction.CooldownJitter*(2*s.rng.Float64()-1)
	st.ReproState[i] = traits.Cooldown
	st.ReproTimer[i] = int32(max(1, math.Round(float64(st.Genome[i].Class.Cooldown())*factor*jitter)))
	st.ReproStep[i] = s.step
	st.LastRepro[i] = s.tick
}

// gestationTicks is the pregnancy length for a body size.
func (s *Simulation) gestationTicks(size float64) int {
	cfg := s.cfg.Reproduction
	return cfg.GestationBase + int(math.Round(size*float64(cfg.GestationSizeScale)))
}

// litterSize shrinks with body size.
func (s *Simulation) litterSize(size float64) int {
	return 1 + int(math.Round((1-size)*float64(s.cfg.Reproduction.MaxLitter-1)))
}

// startGestation begins a pregnancy for mother i.
func (s *Simulation) startGestation(i, j int) {
	st := s.store
	g := &st.Genome[i]
	rec := gestation{
		father:        *g,
		fatherAlleles: st.Alleles[i],
		litter:        s.litterSize(g.Size),
		duration:      s.gestationTicks(g.Size),
	}
	if j >= 0 {
		rec.fatherID = st.ID[j]
		rec.father = st.Genome[j]
		rec.fatherAlleles = st.Alleles[j]
	}
	s.gestations[i] = rec
	st.ReproState[i] = traits.Gestating
	st.ReproTimer[i] = int32(rec.duration)
	st.ReproStep[i] = s.step
	st.LastRepro[i] = s.tick
}

// completeGestation births the litter of mother i into free neighbouring
// tiles. With no free tile the pregnancy miscarries and the mother enters an
// extended cooldown.
func (s *Simulation) completeGestation(i int) {
	st := s.store
	cfg := s.cfg.Reproduction
	rec, ok := s.gestations[i]
	delete(s.gestations, i)
	if !ok {
		s.enterCooldown(i, 1)
		return
	}

	mother := st.Genome[i]
	motherAlleles := st.Alleles[i]
	x, y := int(st.X[i]), int(st.Y[i])
	free := s.freeNeighbors(x, y, mother.Class, s.cands)
	s.cands = free

	placed := 0
	for k := 0; k < rec.litter && k < len(free); k++ {
		pick := k + s.rng.Intn(len(free)-k)
		free[k], free[pick] = free[pick], free[k]
		cx, cy := s.terrain.XY(free[k])

		child, alleles := s.offspring(&mother, &motherAlleles, &rec.father, &rec.fatherAlleles, rec.fatherID != 0)
		if c, ok := s.spawn(cx, cy, &child, &alleles, cfg.BirthEnergy, cfg.BirthHydration, st.ID[i]); ok {
			s.diag.RecordBirth(traits.Animal)
			s.recordLineage(&mother, &child, st.ID[c], st.DietShift[i], cx, cy)
			placed++
		}
	}

	if placed == 0 {
		s.logger.Debug("miscarriage", "id", st.ID[i], "species", mother.Species, "litter", rec.litter)
		st.Energy[i] = clamp01(st.Energy[i] - cfg.MiscarriageLoss)
		s.enterCooldown(i, cfg.MiscarriageCooldown)
		return
	}
	st.Energy[i] = clamp01(st.Energy[i] - cfg.ParentCost*float64(placed)/float64(rec.litter))
	st.DietShift[i] = genetics.NoShift
	s.enterCooldown(i, 1)
}

// offspring builds a child genome from a mother and, for sexual
// reproduction, a father. The child's species is inherited and reassigned
// when the child strays too far from its mother.
func (s *Simulation) offspring(mother *genetics.Genome, ma *genetics.Alleles, father *genetics.Genome, fa *genetics.Alleles, sexual bool) (genetics.Genome, genetics.Alleles) {
	jitter := s.cfg.Mutation.Jitter
	var alleles genetics.Alleles
	child := *mother
	if sexual {
		alleles = genetics.Recombine(s.rng, ma, fa, jitter)
		child.Species = s.policy.MateSpecies(s.rng, mother.Species, father.Species, genetics.Distance(mother, father))
	} else {
		alleles = genetics.Clone(s.rng, ma, jitter)
	}
	genetics.Decode(&alleles, &child)
	genetics.Mutate(s.rng, &child, s.cfg.Mutation.CategoricalChance)
	genetics.Normalize(&child, &alleles)

	if genetics.Distance(mother, &child) > s.cfg.Mutation.SpeciationDistance {
		child.Species = s.policy.Mutant(s.rng, mother.Species)
	}
	return child, alleles
}

// seedPlant lets an adult plant cast a seed nearby. Seeding is braked as
// plants outnumber animals and blocked in crowded patches.
func (s *Simulation) seedPlant(i, tile int) {
	st := s.store
	cfg := s.cfg.Reproduction
	g := &st.Genome[i]
	if st.Energy[i] < cfg.PlantMinEnergy || st.Hydration[i] < cfg.PlantMinHydration {
		return
	}
	ratio := float64(s.numPlants) / float64(max(1, s.numAnimals))
	brake := 1 / (1 + ratio/cfg.PlantBrakeRatio)
	if s.rng.Float64() >= cfg.PlantSeedChance*(0.5+g.Fertility)*brake {
		return
	}

	x, y := int(st.X[i]), int(st.Y[i])
	if s.plantsNear(x, y, cfg.PlantCrowdRadius) >= s.terrain.Biome[tile].Props().PlantCap {
		return
	}

	r := 1 + int(math.Round(g.SeedSpread*float64(cfg.PlantSeedRadius)))
	t := s.terrain
	for attempt := 0; attempt < 4; attempt++ {
		nx := x + s.rng.Intn(2*r+1) - r
		ny := y + s.rng.Intn(2*r+1) - r
		if !s.occ.Empty(nx, ny) || t.Water[t.Index(nx, ny)] {
			continue
		}
		parent := *g
		child, alleles := s.offspring(&parent, &st.Alleles[i], nil, nil, false)
		c, ok := s.spawn(nx, ny, &child, &alleles, cfg.BirthEnergy*0.8, cfg.BirthHydration, st.ID[i])
		if !ok {
			return
		}
		st.Energy[i] -= cfg.PlantSeedCost
		s.diag.RecordBirth(traits.Plant)
		s.recordLineage(&parent, &child, st.ID[c], genetics.NoShift, nx, ny)
		return
	}
}

// plantsNear counts plants within radius of (x, y).
func (s *Simulation) plantsNear(x, y, radius int) int {
	n := 0
	for dy := -radius; dy <= radius; dy++ {
		for dx := -radius; dx <= radius; dx++ {
			if j := s.occ.At(x+dx, y+dy); j >= 0 && s.store.Genome[j].LifeType == traits.Plant {
				n++
			}
		}
	}
	return n
}
