package game

import (
	"math"

	"github.com/pthm-cable/biome/genetics"
	"github.com/pthm-cable/biome/systems"
	"github.com/pthm-cable/biome/traits"
)

// tempStress returns how far tile temperature lies outside what an organism
// with the given tolerance handles, in [0,1].
func (s *Simulation) tempStress(tile int, tolerance float64) float64 {
	dev := math.Abs(s.terrain.Temperature[tile]-0.5) * 2
	return clamp01((dev - 0.8*tolerance) / (1 - 0.6*tolerance))
}

// burn applies one tick of fire damage to slot i.
func (s *Simulation) burn(i int) {
	st := s.store
	cfg := s.cfg.Fire
	if st.Genome[i].LifeType == traits.Plant {
		st.Energy[i] -= cfg.PlantDamage
		st.Hydration[i] -= cfg.HydrationDamage * 1.5
		return
	}
	st.Energy[i] -= cfg.AnimalDamage
	st.Hydration[i] -= cfg.HydrationDamage
}

// updatePlant runs photosynthesis, water uptake, upkeep and seeding.
func (s *Simulation) updatePlant(i, tile int) {
	st := s.store
	cfg := s.cfg.Metabolism
	g := &st.Genome[i]
	t := s.terrain
	props := t.Biome[tile].Props()
	moisture := t.Moisture[tile]
	x, y := int(st.X[i]), int(st.Y[i])
	rain := s.weather.RainAt(x, y)

	if s.isDay {
		stress := s.tempStress(tile, g.TemperatureTolerance)
		st.Energy[i] += cfg.PlantGain * props.PlantRegen * (0.4 + 0.6*moisture) * (1 - 0.5*stress)
	}
	st.Hydration[i] += cfg.PlantWaterGain*math.Max(moisture, rain) - cfg.PlantWaterDrain*props.HydrationDrain
	st.Energy[i] -= cfg.PlantCost * (0.5 + g.Size)

	if s.isDay && st.Adult[i] {
		s.seedPlant(i, tile)
	}
}

// updateAnimal runs metabolism and, if awake, behaviour for animal slot i.
func (s *Simulation) updateAnimal(i, tile int, burning bool) {
	st := s.store
	cfg := s.cfg.Metabolism
	g := &st.Genome[i]
	props := s.terrain.Biome[tile].Props()
	stress := s.tempStress(tile, g.TemperatureTolerance)
	awake := g.Activity.Awake(s.isDay)

	rate := 1.0
	if !awake {
		rate = 0.5
	}
	st.Energy[i] -= cfg.AnimalCost * (0.5 + g.Size) * s.tuning.AnimalMetabolism * rate
	st.Energy[i] -= cfg.TemperatureCost * stress
	st.Hydration[i] -= (cfg.HydrationDrain*props.HydrationDrain + cfg.TemperatureCost*stress) * rate
	if st.ReproState[i] == traits.Gestating {
		up := s.cfg.Reproduction.GestationUpkeep
		st.Energy[i] -= up
		st.Hydration[i] -= up
	}

	if st.Energy[i] < cfg.HungryBelow {
		st.Starvation[i] = clamp01(st.Starvation[i] + cfg.StarvationGain)
	} else {
		st.Starvation[i] = clamp01(st.Starvation[i] - cfg.StarvationDecay)
	}
	st.PlantFeed[i] *= 0.995
	st.PreyFeed[i] *= 0.995

	if burning {
		s.fleeFire(i)
		return
	}
	if !awake {
		s.drink(i)
		return
	}

	s.scan(i, &s.v)
	s.move(i, &s.v)
	s.drink(i)
	s.feed(i, &s.v)
	if st.Alive(i) {
		s.driftDiet(i, &s.v)
		s.tryReproduce(i, &s.v)
	}
}

// fleeFire steps animal i down the water gradient, away from burning tiles.
func (s *Simulation) fleeFire(i int) {
	st := s.store
	x, y := int(st.X[i]), int(st.Y[i])
	dx, dy := s.terrain.WaterGradient(x, y)
	if dx == 0 && dy == 0 {
		d := systems.Neighbors8[s.rng.Intn(len(systems.Neighbors8))]
		dx, dy = d[0], d[1]
	}
	s.tryStep(i, x+dx, y+dy)
}

// driftDiet lets hunger and local food availability shift the diet of i.
func (s *Simulation) driftDiet(i int, v *view) {
	st := s.store
	g := &st.Genome[i]
	f := genetics.Forage{Plants: len(v.plants), Prey: len(v.prey), Starvation: st.Starvation[i]}
	diet, shift := genetics.DriftDiet(s.rng, g, f, s.cfg.Mutation.DietDriftChance)
	if shift == genetics.NoShift {
		return
	}
	s.logger.Debug("diet shift",
		"id", st.ID[i],
		"species", g.Species,
		"from", g.Diet.String(),
		"to", diet.String(),
		"kind", shift.String(),
	)
	g.Diet = diet
	st.DietShift[i] = shift
	st.DietPenalty[i] = int32(s.cfg.Reproduction.DietShiftTicks)
}
