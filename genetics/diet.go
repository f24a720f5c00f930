package genetics

import (
	"math/rand"

	"github.com/pthm-cable/biome/traits"
)

// DietShift classifies a diet transition.
type DietShift uint8

const (
	NoShift DietShift = iota
	// AdaptiveShift is a move toward the locally available food source.
	AdaptiveShift
	// SupplementalCarnivory is a herbivore taking up meat under starvation.
	SupplementalCarnivory
)

func (d DietShift) String() string {
	switch d {
	case AdaptiveShift:
		return "adaptive_diet_shift"
	case SupplementalCarnivory:
		return "supplemental_carnivory"
	}
	return "none"
}

// Forage describes local food availability around an animal.
type Forage struct {
	Plants     int     // Edible plants in vision
	Prey       int     // Smaller animals in vision
	Starvation float64 // Accumulated starvation stress in [0,1]
}

// DriftDiet returns g's next diet and the kind of shift. The transition is
// probabilistic and gated by the class carnivory gate.
func DriftDiet(rng *rand.Rand, g *Genome, f Forage, chance float64) (traits.Diet, DietShift) {
	if g.LifeType != traits.Animal {
		return g.Diet, NoShift
	}
	p := chance * (1 + 4*f.Starvation)
	if rng.Float64() >= p {
		return g.Diet, NoShift
	}
	gate := g.Class.Gate()
	canHunt := gate.Admits(g.Size, g.Vision, g.Hostility)

	switch g.Diet {
	case traits.Herbivore:
		if f.Plants == 0 && f.Prey > 0 && f.Starvation > 0.5 && canHunt {
			return traits.Omnivore, SupplementalCarnivory
		}
	case traits.Omnivore:
		if f.Plants == 0 && f.Prey >= 2 && canHunt {
			return traits.Carnivore, AdaptiveShift
		}
		if f.Prey == 0 && f.Plants > 0 {
			return traits.Herbivore, AdaptiveShift
		}
	case traits.Carnivore:
		if f.Prey == 0 && f.Plants > 0 && f.Starvation > 0.3 {
			return traits.Omnivore, AdaptiveShift
		}
	}
	return g.Diet, NoShift
}
