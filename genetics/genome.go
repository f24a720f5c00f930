// Package genetics implements diploid trait storage, recombination, mutation
// and genome comparison.
package genetics

import (
	"math"

	"github.com/pthm-cable/biome/traits"
)

// Trait indexes a quantitative heritable trait.
type Trait uint8

const (
	Hostility Trait = iota
	Speed
	Size
	Vision
	Fertility
	MaturityAge
	MaxAge
	Camouflage
	Sociality
	TemperatureTolerance
	SeedSpread
	MutationRate
	NumTraits
)

func (t Trait) String() string {
	switch t {
	case Hostility:
		return "hostility"
	case Speed:
		return "speed"
	case Size:
		return "size"
	case Vision:
		return "vision"
	case Fertility:
		return "fertility"
	case MaturityAge:
		return "maturity_age"
	case MaxAge:
		return "max_age"
	case Camouflage:
		return "camouflage"
	case Sociality:
		return "sociality"
	case TemperatureTolerance:
		return "temperature_tolerance"
	case SeedSpread:
		return "seed_spread"
	case MutationRate:
		return "mutation_rate"
	}
	return "unknown"
}

// Age traits decode to tick ranges.
const (
	MinMaturityAge = 300
	MaxMaturityAge = 3000
	MinMaxAge      = 4000
	MaxMaxAge      = 30000
)

// Alleles holds two 8-bit alleles per trait.
type Alleles [NumTraits][2]uint8

// Phenotype returns the additive diploid expression of t in [0,1].
func (a *Alleles) Phenotype(t Trait) float64 {
	return (float64(a[t][0]) + float64(a[t][1])) / 2 / 255
}

// Genome is the decoded heritable description of an organism.
type Genome struct {
	LifeType       traits.LifeType
	Species        int
	Class          traits.Class
	Diet           traits.Diet
	ReproMode      traits.ReproMode
	Activity       traits.Activity
	PreferredBiome traits.Biome

	Hostility            float64
	Speed                float64
	Size                 float64
	Vision               float64
	Fertility            float64
	MaturityAge          int
	MaxAge               int
	Camouflage           float64
	Sociality            float64
	TemperatureTolerance float64
	SeedSpread           float64
	MutationRate         float64
}

func lerpTicks(p float64, lo, hi int) int {
	return lo + int(math.Round(p*float64(hi-lo)))
}

func unlerpTicks(v, lo, hi int) float64 {
	if v <= lo {
		return 0
	}
	if v >= hi {
		return 1
	}
	return float64(v-lo) / float64(hi-lo)
}

// Decode fills g's quantitative fields from a. Categorical fields are untouched.
func Decode(a *Alleles, g *Genome) {
	g.Hostility = a.Phenotype(Hostility)
	g.Speed = a.Phenotype(Speed)
	g.Size = a.Phenotype(Size)
	g.Vision = a.Phenotype(Vision)
	g.Fertility = a.Phenotype(Fertility)
	g.MaturityAge = lerpTicks(a.Phenotype(MaturityAge), MinMaturityAge, MaxMaturityAge)
	g.MaxAge = lerpTicks(a.Phenotype(MaxAge), MinMaxAge, MaxMaxAge)
	g.Camouflage = a.Phenotype(Camouflage)
	g.Sociality = a.Phenotype(Sociality)
	g.TemperatureTolerance = a.Phenotype(TemperatureTolerance)
	g.SeedSpread = a.Phenotype(SeedSpread)
	g.MutationRate = a.Phenotype(MutationRate)
}

// Value returns the phenotype of t in [0,1], normalising age traits.
func (g *Genome) Value(t Trait) float64 {
	switch t {
	case Hostility:
		return g.Hostility
	case Speed:
		return g.Speed
	case Size:
		return g.Size
	case Vision:
		return g.Vision
	case Fertility:
		return g.Fertility
	case MaturityAge:
		return unlerpTicks(g.MaturityAge, MinMaturityAge, MaxMaturityAge)
	case MaxAge:
		return unlerpTicks(g.MaxAge, MinMaxAge, MaxMaxAge)
	case Camouflage:
		return g.Camouflage
	case Sociality:
		return g.Sociality
	case TemperatureTolerance:
		return g.TemperatureTolerance
	case SeedSpread:
		return g.SeedSpread
	case MutationRate:
		return g.MutationRate
	}
	return 0
}

// Encode returns homozygous alleles that decode to g's phenotypes.
func Encode(g *Genome) Alleles {
	var a Alleles
	for t := Trait(0); t < NumTraits; t++ {
		v := uint8(math.Round(clamp01(g.Value(t)) * 255))
		a[t][0], a[t][1] = v, v
	}
	return a
}

// Normalize zeroes traits that do not apply to g's life type and fixes the
// diet invariant. Both g and a are updated so they stay consistent.
func Normalize(g *Genome, a *Alleles) {
	if g.LifeType == traits.Plant {
		g.Speed, g.Vision = 0, 0
		a[Speed] = [2]uint8{}
		a[Vision] = [2]uint8{}
		g.Diet = traits.Photosynthesis
		g.Class = traits.ClassNone
		return
	}
	g.SeedSpread = 0
	a[SeedSpread] = [2]uint8{}
	if g.Diet == traits.Photosynthesis {
		g.Diet = traits.Herbivore
	}
	if g.Class == traits.ClassNone {
		g.Class = traits.Mammal
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
