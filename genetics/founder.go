package genetics

import (
	"math/rand"

	"github.com/pthm-cable/biome/traits"
)

// alleleRange is the founder allele interval per trait.
type alleleRange struct{ lo, hi int }

var plantRanges = [NumTraits]alleleRange{
	Hostility:            {0, 20},
	Size:                 {40, 200},
	Fertility:            {80, 220},
	MaturityAge:          {20, 90},
	MaxAge:               {60, 200},
	Camouflage:           {0, 60},
	Sociality:            {40, 200},
	TemperatureTolerance: {60, 220},
	SeedSpread:           {40, 220},
	MutationRate:         {8, 30},
}

var animalRanges = [NumTraits]alleleRange{
	Hostility:            {20, 200},
	Speed:                {60, 220},
	Size:                 {40, 220},
	Vision:               {60, 220},
	Fertility:            {80, 220},
	MaturityAge:          {20, 100},
	MaxAge:               {80, 220},
	Camouflage:           {20, 200},
	Sociality:            {20, 220},
	TemperatureTolerance: {60, 220},
	MutationRate:         {8, 30},
}

// Founder creates a random seed organism. Animals get a random class unless
// class is non-zero, a random diet and activity.
func Founder(rng *rand.Rand, lt traits.LifeType, class traits.Class, biome traits.Biome, species int) (Genome, Alleles) {
	g := Genome{LifeType: lt, Species: species, PreferredBiome: biome}
	ranges := &plantRanges
	if lt == traits.Animal {
		ranges = &animalRanges
		if class == traits.ClassNone {
			class = traits.AnimalClasses[rng.Intn(len(traits.AnimalClasses))]
		}
		g.Class = class
		g.Diet = traits.Herbivore + traits.Diet(rng.Intn(3))
		g.ReproMode = traits.Sexual
		if class == traits.Insect && rng.Intn(3) == 0 {
			g.ReproMode = traits.Asexual
		}
		g.Activity = traits.Activity(rng.Intn(int(traits.NumActivities)))
	}

	var a Alleles
	for t := Trait(0); t < NumTraits; t++ {
		r := ranges[t]
		for k := 0; k < 2; k++ {
			a[t][k] = uint8(r.lo + rng.Intn(r.hi-r.lo+1))
		}
	}
	Decode(&a, &g)
	Normalize(&g, &a)
	return g, a
}
