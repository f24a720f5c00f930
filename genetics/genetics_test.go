package genetics

import (
	"math"
	"math/rand"
	"testing"

	"github.com/pthm-cable/biome/traits"
)

func TestPhenotypeAveragesAlleles(t *testing.T) {
	tests := []struct {
		name string
		a, b uint8
		want float64
	}{
		{"zero", 0, 0, 0},
		{"full", 255, 255, 1},
		{"half", 0, 255, 0.5},
		{"mixed", 51, 102, 76.5 / 255},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var a Alleles
			a[Size] = [2]uint8{tt.a, tt.b}
			if got := a.Phenotype(Size); math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("Phenotype = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDecodeAgeRanges(t *testing.T) {
	var a Alleles
	var g Genome
	Decode(&a, &g)
	if g.MaturityAge != MinMaturityAge || g.MaxAge != MinMaxAge {
		t.Errorf("zero alleles decode to maturity %d max age %d", g.MaturityAge, g.MaxAge)
	}
	a[MaturityAge] = [2]uint8{255, 255}
	a[MaxAge] = [2]uint8{255, 255}
	Decode(&a, &g)
	if g.MaturityAge != MaxMaturityAge || g.MaxAge != MaxMaxAge {
		t.Errorf("full alleles decode to maturity %d max age %d", g.MaturityAge, g.MaxAge)
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	g, _ := Founder(rng, traits.Animal, traits.Mammal, traits.Forest, 1)
	a := Encode(&g)
	var back Genome
	Decode(&a, &back)
	for tr := Trait(0); tr < NumTraits; tr++ {
		if math.Abs(back.Value(tr)-g.Value(tr)) > 1.0/255 {
			t.Errorf("%v: %v round-tripped to %v", tr, g.Value(tr), back.Value(tr))
		}
	}
}

func TestNormalize(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	for i := 0; i < 50; i++ {
		p, pa := Founder(rng, traits.Plant, traits.ClassNone, traits.Grassland, 0)
		if p.Speed != 0 || p.Vision != 0 || p.Diet != traits.Photosynthesis {
			t.Fatalf("plant founder violates invariant: %+v", p)
		}
		if pa.Phenotype(Speed) != 0 || pa.Phenotype(Vision) != 0 {
			t.Fatalf("plant alleles not zeroed")
		}
		an, _ := Founder(rng, traits.Animal, traits.ClassNone, traits.Grassland, 1)
		if an.Diet == traits.Photosynthesis || an.SeedSpread != 0 || an.Class == traits.ClassNone {
			t.Fatalf("animal founder violates invariant: %+v", an)
		}
	}

	g := Genome{LifeType: traits.Animal, Diet: traits.Photosynthesis}
	var a Alleles
	a[SeedSpread] = [2]uint8{100, 100}
	Normalize(&g, &a)
	if g.Diet == traits.Photosynthesis || a.Phenotype(SeedSpread) != 0 {
		t.Errorf("Normalize left animal with diet %v seed alleles %v", g.Diet, a[SeedSpread])
	}
}

func TestRecombineDrawsFromBothParents(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	var a, b Alleles
	for tr := Trait(0); tr < NumTraits; tr++ {
		a[tr] = [2]uint8{10, 20}
		b[tr] = [2]uint8{200, 210}
	}
	// mutation rate 0: no jitter regardless of setting
	a[MutationRate] = [2]uint8{}
	b[MutationRate] = [2]uint8{}
	for i := 0; i < 100; i++ {
		c := Recombine(rng, &a, &b, 12)
		for tr := Trait(0); tr < NumTraits; tr++ {
			if tr == MutationRate {
				continue
			}
			if c[tr][0] != 10 && c[tr][0] != 20 {
				t.Fatalf("allele 0 of %v = %d, not from parent a", tr, c[tr][0])
			}
			if c[tr][1] != 200 && c[tr][1] != 210 {
				t.Fatalf("allele 1 of %v = %d, not from parent b", tr, c[tr][1])
			}
		}
	}
}

func TestCloneStaysWithinParent(t *testing.T) {
	rng := rand.New(rand.NewSource(2))
	var a Alleles
	for tr := Trait(0); tr < NumTraits; tr++ {
		a[tr] = [2]uint8{40, 60}
	}
	a[MutationRate] = [2]uint8{}
	c := Clone(rng, &a, 12)
	for tr := Trait(0); tr < NumTraits; tr++ {
		if tr == MutationRate {
			continue
		}
		for k := 0; k < 2; k++ {
			if c[tr][k] != 40 && c[tr][k] != 60 {
				t.Fatalf("clone allele %v[%d] = %d", tr, k, c[tr][k])
			}
		}
	}
}

func TestMutationClampsAndBounds(t *testing.T) {
	rng := rand.New(rand.NewSource(5))
	for i := 0; i < 1000; i++ {
		lo := mutateAllele(rng, 2, 1, 12)
		hi := mutateAllele(rng, 250, 1, 12)
		if lo > 14 {
			t.Fatalf("mutation of 2 produced %d", lo)
		}
		if hi < 238 {
			t.Fatalf("mutation of 250 produced %d", hi)
		}
	}
	if got := mutateAllele(rng, 100, 0, 12); got != 100 {
		t.Errorf("rate 0 mutated allele to %d", got)
	}
}

func TestDistance(t *testing.T) {
	rng := rand.New(rand.NewSource(9))
	g, _ := Founder(rng, traits.Animal, traits.Mammal, traits.Forest, 1)
	if d := Distance(&g, &g); d != 0 {
		t.Errorf("self distance = %v", d)
	}
	h := g
	h.Class = traits.Bird
	if d := Distance(&g, &h); math.Abs(d-classPenalty) > 1e-9 {
		t.Errorf("class mismatch distance = %v, want %v", d, classPenalty)
	}
	h = g
	h.Diet = traits.Carnivore
	if g.Diet == traits.Carnivore {
		h.Diet = traits.Herbivore
	}
	h.Activity = (g.Activity + 1) % traits.NumActivities
	if d := Distance(&g, &h); math.Abs(d-(dietPenalty+activityPenalty)) > 1e-9 {
		t.Errorf("diet+activity distance = %v", d)
	}
}

func TestSpeciesPolicy(t *testing.T) {
	p := SpeciesPolicy{Compatible: 0.06, Divergent: 0.3, Max: 100, OffsetMax: 10}
	rng := rand.New(rand.NewSource(11))

	seen := map[int]bool{}
	for i := 0; i < 200; i++ {
		seen[p.MateSpecies(rng, 4, 7, 0.01)] = true
	}
	if !seen[4] || !seen[7] || len(seen) != 2 {
		t.Errorf("compatible mates produced ids %v", seen)
	}
	if got := p.MateSpecies(rng, 4, 99, 0.5); got != 0 {
		t.Errorf("divergent wraparound = %d, want 0", got)
	}
	if got := p.MateSpecies(rng, 4, 7, 0.1); got != 4 {
		t.Errorf("intermediate distance = %d, want first parent", got)
	}
	for i := 0; i < 200; i++ {
		id := p.Mutant(rng, 95)
		if id == 95 || id < 0 || id >= 100 {
			t.Fatalf("Mutant(95) = %d", id)
		}
	}
}

func TestDriftDiet(t *testing.T) {
	g := Genome{LifeType: traits.Animal, Class: traits.Mammal, Diet: traits.Herbivore,
		Size: 0.9, Vision: 0.9, Hostility: 0.9}

	tests := []struct {
		name  string
		diet  traits.Diet
		f     Forage
		want  traits.Diet
		shift DietShift
	}{
		{"starving herbivore hunts", traits.Herbivore, Forage{Plants: 0, Prey: 2, Starvation: 1}, traits.Omnivore, SupplementalCarnivory},
		{"fed herbivore stays", traits.Herbivore, Forage{Plants: 3, Prey: 2, Starvation: 1}, traits.Herbivore, NoShift},
		{"omnivore without prey grazes", traits.Omnivore, Forage{Plants: 2, Starvation: 1}, traits.Herbivore, AdaptiveShift},
		{"omnivore among prey hunts", traits.Omnivore, Forage{Prey: 3, Starvation: 1}, traits.Carnivore, AdaptiveShift},
		{"carnivore without prey", traits.Carnivore, Forage{Plants: 1, Starvation: 1}, traits.Omnivore, AdaptiveShift},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rng := rand.New(rand.NewSource(1))
			g.Diet = tt.diet
			// chance 1 with starvation 1 always passes the roll
			got, shift := DriftDiet(rng, &g, tt.f, 1)
			if got != tt.want || shift != tt.shift {
				t.Errorf("DriftDiet = %v/%v, want %v/%v", got, shift, tt.want, tt.shift)
			}
		})
	}

	weak := g
	weak.Size = 0.1
	weak.Diet = traits.Herbivore
	if d, _ := DriftDiet(rand.New(rand.NewSource(1)), &weak, Forage{Prey: 3, Starvation: 1}, 1); d != traits.Herbivore {
		t.Errorf("gate should block carnivory for small animal, got %v", d)
	}
}

func TestDeltasSorted(t *testing.T) {
	p := Genome{Size: 0.5, Speed: 0.5, Vision: 0.5}
	c := Genome{Size: 0.9, Speed: 0.45, Vision: 0.6}
	d := Deltas(&p, &c, 0.01)
	if len(d) < 3 {
		t.Fatalf("got %d deltas", len(d))
	}
	if d[0].Trait != Size || d[1].Trait != Vision {
		t.Errorf("deltas not sorted by magnitude: %+v", d)
	}
}
