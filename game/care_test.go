package game

import (
	"math"
	"testing"

	"github.com/pthm-cable/biome/config"
	"github.com/pthm-cable/biome/traits"
)

func TestParentalCareFeedsOwnYoung(t *testing.T) {
	cfg := config.Default()
	cfg.Weather.LightningChance = 0
	s := newSim(t, cfg, 43, 0, 0)
	x, y := landPatch(t, s, 3)

	g := animalGenome(traits.Mammal, traits.Nocturnal)
	for _, p := range [][2]int{{x, y}, {x + 1, y}, {x + 3, y + 3}, {x - 3, y - 3}} {
		if !s.Place(p[0], p[1], g, 1) {
			t.Fatalf("placing at %v failed", p)
		}
	}
	st := s.store
	mi, fi := s.occ.At(x, y), s.occ.At(x+1, y)
	stranger, grown := s.occ.At(x+3, y+3), s.occ.At(x-3, y-3)
	st.Adult[mi], st.Adult[fi] = true, true

	s.mate(mi, fi)
	s.completeGestation(mi)

	var young []int
	for i := 0; i < st.Len(); i++ {
		if st.Alive(i) && st.ParentID[i] == st.ID[mi] {
			young = append(young, i)
		}
	}
	if len(young) == 0 {
		t.Fatal("no litter born")
	}
	st.ParentID[grown] = st.ID[mi]
	st.Adult[grown] = true

	st.Energy[mi], st.Hydration[mi] = 0.9, 0.9
	others := append([]int{fi, stranger, grown}, young...)
	for _, j := range others {
		st.Energy[j], st.Hydration[j] = 0.5, 0.5
	}

	s.provideCare(mi)

	amount := cfg.Care.Transfer * traits.Mammal.CareIntensity()
	fed := 0
	for _, j := range young {
		switch {
		case math.Abs(st.Energy[j]-(0.5+amount)) < 1e-12 && math.Abs(st.Hydration[j]-(0.5+amount)) < 1e-12:
			fed++
		case st.Energy[j] != 0.5 || st.Hydration[j] != 0.5:
			t.Errorf("juvenile %d got e=%v h=%v", j, st.Energy[j], st.Hydration[j])
		}
	}
	if want := min(len(young), maxCareRecipients); fed != want {
		t.Errorf("fed %d juveniles, want %d", fed, want)
	}

	paid := float64(fed) * amount * cfg.Care.Cost
	if math.Abs(st.Energy[mi]-(0.9-paid)) > 1e-12 || math.Abs(st.Hydration[mi]-(0.9-paid)) > 1e-12 {
		t.Errorf("mother e=%v h=%v, want %v", st.Energy[mi], st.Hydration[mi], 0.9-paid)
	}
	for name, j := range map[string]int{"father": fi, "stranger juvenile": stranger, "grown child": grown} {
		if st.Energy[j] != 0.5 || st.Hydration[j] != 0.5 {
			t.Errorf("%s received care: e=%v h=%v", name, st.Energy[j], st.Hydration[j])
		}
	}
}

func TestCareStopsWhenParentIsSpent(t *testing.T) {
	s := newSim(t, nil, 47, 0, 0)
	x, y := landPatch(t, s, 1)

	g := animalGenome(traits.Mammal, traits.Nocturnal)
	s.Place(x, y, g, 1)
	s.Place(x+1, y, g, 1)
	st := s.store
	pi, ci := s.occ.At(x, y), s.occ.At(x+1, y)
	st.ParentID[ci] = st.ID[pi]

	amount := s.cfg.Care.Transfer * traits.Mammal.CareIntensity()
	st.Energy[pi], st.Hydration[pi] = amount, 1
	st.Energy[ci], st.Hydration[ci] = 0.5, 0.5

	s.provideCare(pi)
	if st.Energy[ci] != 0.5 || st.Energy[pi] != amount {
		t.Errorf("spent parent still fed: parent %v child %v", st.Energy[pi], st.Energy[ci])
	}
}
