package genetics

import (
	"math"
	"math/rand"

	"github.com/pthm-cable/biome/traits"
)

// Recombine builds offspring alleles from two parents: for each trait one allele
// is drawn from each parent at random, then mutated at that parent's own rate.
func Recombine(rng *rand.Rand, a, b *Alleles, jitter int) Alleles {
	rateA, rateB := a.Phenotype(MutationRate), b.Phenotype(MutationRate)
	var child Alleles
	for t := Trait(0); t < NumTraits; t++ {
		child[t][0] = mutateAllele(rng, a[t][rng.Intn(2)], rateA, jitter)
		child[t][1] = mutateAllele(rng, b[t][rng.Intn(2)], rateB, jitter)
	}
	return child
}

// Clone builds offspring alleles from a single parent, drawing both alleles
// from its pair before mutation.
func Clone(rng *rand.Rand, a *Alleles, jitter int) Alleles {
	rate := a.Phenotype(MutationRate)
	var child Alleles
	for t := Trait(0); t < NumTraits; t++ {
		child[t][0] = mutateAllele(rng, a[t][rng.Intn(2)], rate, jitter)
		child[t][1] = mutateAllele(rng, a[t][rng.Intn(2)], rate, jitter)
	}
	return child
}

func mutateAllele(rng *rand.Rand, v uint8, rate float64, jitter int) uint8 {
	if jitter <= 0 || rng.Float64() >= rate {
		return v
	}
	n := int(v) + rng.Intn(2*jitter+1) - jitter
	if n < 0 {
		n = 0
	} else if n > 255 {
		n = 255
	}
	return uint8(n)
}

// distanceTraits are the quantitative traits compared by Distance.
var distanceTraits = [...]Trait{
	Hostility, Speed, Size, Vision, Fertility,
	MaturityAge, MaxAge, Camouflage, Sociality, TemperatureTolerance,
}

// Categorical mismatch penalties added to the trait distance.
const (
	activityPenalty = 0.05
	dietPenalty     = 0.08
	classPenalty    = 0.25
	biomePenalty    = 0.04
)

// Distance returns a genome distance, roughly in [0,1].
func Distance(a, b *Genome) float64 {
	var sum float64
	for _, t := range distanceTraits {
		sum += math.Abs(a.Value(t) - b.Value(t))
	}
	d := sum / float64(len(distanceTraits))
	if a.Activity != b.Activity {
		d += activityPenalty
	}
	if a.Diet != b.Diet {
		d += dietPenalty
	}
	if a.Class != b.Class {
		d += classPenalty
	}
	if a.PreferredBiome != b.PreferredBiome {
		d += biomePenalty
	}
	return math.Min(d, 1)
}

// Delta is the change of one trait from parent to child.
type Delta struct {
	Trait Trait
	From  float64
	To    float64
}

// Deltas lists trait changes larger than minChange, largest first.
func Deltas(parent, child *Genome, minChange float64) []Delta {
	var out []Delta
	for t := Trait(0); t < NumTraits; t++ {
		from, to := parent.Value(t), child.Value(t)
		if math.Abs(to-from) > minChange {
			out = append(out, Delta{Trait: t, From: from, To: to})
		}
	}
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && math.Abs(out[j].To-out[j].From) > math.Abs(out[j-1].To-out[j-1].From); j-- {
			out[j], out[j-1] = out[j-1], out[j]
		}
	}
	return out
}

// SpeciesPolicy holds the thresholds for species id inheritance.
type SpeciesPolicy struct {
	Compatible float64 // Mate distance below which either parent id may pass on
	Divergent  float64 // Mate distance above which a new id is derived
	Max        int     // Size of the species id space
	OffsetMax  int     // Largest random offset for strong mutations
}

// MateSpecies picks the offspring species from two parents given their distance.
func (p SpeciesPolicy) MateSpecies(rng *rand.Rand, a, b int, dist float64) int {
	switch {
	case dist < p.Compatible:
		if rng.Intn(2) == 0 {
			return a
		}
		return b
	case dist > p.Divergent:
		return (max(a, b) + 1) % p.Max
	}
	return a
}

// Mutant derives a new species id for a strongly mutated offspring.
// Ids wrap modulo Max and may collide with unrelated existing species.
func (p SpeciesPolicy) Mutant(rng *rand.Rand, parent int) int {
	span := max(1, min(p.OffsetMax, p.Max-1))
	return (parent + 1 + rng.Intn(span)) % p.Max
}

// Mutate flips categorical fields with a small chance. Activity and preferred
// biome are the only categoricals that drift through birth.
func Mutate(rng *rand.Rand, g *Genome, chance float64) {
	if g.LifeType != traits.Animal {
		return
	}
	if rng.Float64() < chance {
		g.Activity = traits.Activity(rng.Intn(int(traits.NumActivities)))
	}
	if rng.Float64() < chance && !g.Class.Aquatic() {
		g.PreferredBiome = traits.LandBiomes[rng.Intn(len(traits.LandBiomes))]
	}
}
