package game

import (
	"fmt"

	"github.com/pthm-cable/biome/genetics"
	"github.com/pthm-cable/biome/telemetry"
	"github.com/pthm-cable/biome/traits"
)

// Trait changes smaller than this are left out of mutation events.
const deltaFloor = 0.02

// recordLineage logs a mutation event for a child placed at (x, y) when it
// strayed past the speciation distance or its parent's diet was forced to
// shift. The child's species was already assigned by offspring.
func (s *Simulation) recordLineage(parent, child *genetics.Genome, childID uint32, shift genetics.DietShift, x, y int) {
	dist := genetics.Distance(parent, child)
	speciated := dist > s.cfg.Mutation.SpeciationDistance
	if !speciated && shift == genetics.NoShift {
		return
	}

	deltas := genetics.Deltas(parent, child, deltaFloor)
	td := make([]telemetry.TraitDelta, len(deltas))
	for k, d := range deltas {
		td[k] = telemetry.TraitDelta{Trait: d.Trait.String(), From: d.From, To: d.To}
	}

	cause := "genetic_drift"
	if !speciated {
		cause = shift.String()
	} else if parent.Diet != child.Diet || shift != genetics.NoShift {
		cause = "diet_change"
	}

	ev := telemetry.MutationEvent{
		Tick:          s.tick,
		ParentSpecies: parent.Species,
		NewSpecies:    child.Species,
		EntityID:      childID,
		LifeType:      child.LifeType.String(),
		Distance:      dist,
		Cause:         cause,
		Context:       s.ecologicalContext(child, deltas, shift, x, y),
		Summary:       telemetry.SummarizeDeltas(td),
		Deltas:        td,
	}
	s.mutations.Add(ev)
	s.logger.Debug("mutation",
		"tick", ev.Tick,
		"parent_species", ev.ParentSpecies,
		"new_species", ev.NewSpecies,
		"distance", ev.Distance,
		"cause", ev.Cause,
		"context", ev.Context,
	)
}

// ecologicalContext names the local pressure most likely behind a change,
// judged from the dominant trait delta and the birth site.
func (s *Simulation) ecologicalContext(child *genetics.Genome, deltas []genetics.Delta, shift genetics.DietShift, x, y int) string {
	t := s.terrain
	tile := t.Index(x, y)
	biome := t.Biome[tile]

	if shift != genetics.NoShift {
		return fmt.Sprintf("food scarcity pushed diet toward %s in %s", child.Diet, biome)
	}
	if len(deltas) == 0 {
		return fmt.Sprintf("categorical change in %s", biome)
	}

	d := deltas[0]
	dir := "up"
	if d.To < d.From {
		dir = "down"
	}
	predators := s.predatorsNear(x, y, 4, child.Species)
	stress := s.tempStress(tile, child.TemperatureTolerance)

	var driver string
	switch {
	case (d.Trait == genetics.Speed || d.Trait == genetics.Camouflage) && predators > 0:
		driver = "predator pressure"
	case d.Trait == genetics.TemperatureTolerance && stress > 0.3:
		driver = "thermal stress"
	case (d.Trait == genetics.Size || d.Trait == genetics.Hostility) && child.Diet.EatsMeat():
		driver = "prey competition"
	case d.Trait == genetics.Vision || d.Trait == genetics.SeedSpread:
		driver = "foraging range"
	case t.WaterDist[tile] > 15:
		driver = "arid range far from water"
	case s.plantsNear(x, y, 3) >= biome.Props().PlantCap:
		driver = "crowding"
	default:
		driver = "drift"
	}
	return fmt.Sprintf("%s %s: %s in %s", d.Trait, dir, driver, biome)
}

// predatorsNear counts carnivores of other species within radius of (x, y).
func (s *Simulation) predatorsNear(x, y, radius, species int) int {
	n := 0
	for dy := -radius; dy <= radius; dy++ {
		for dx := -radius; dx <= radius; dx++ {
			j := s.occ.At(x+dx, y+dy)
			if j < 0 {
				continue
			}
			g := &s.store.Genome[j]
			if g.LifeType == traits.Animal && g.Diet.EatsMeat() && g.Species != species {
				n++
			}
		}
	}
	return n
}
