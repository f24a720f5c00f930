package game

import (
	"testing"

	"github.com/pthm-cable/biome/config"
	"github.com/pthm-cable/biome/genetics"
	"github.com/pthm-cable/biome/traits"
)

func TestDietDriftFromScan(t *testing.T) {
	tests := []struct {
		name       string
		diet       traits.Diet
		food       traits.LifeType
		wantPlants int
		wantPrey   int
		wantDiet   traits.Diet
		wantShift  genetics.DietShift
	}{
		{"starving herbivore beside prey", traits.Herbivore, traits.Animal, 0, 2, traits.Omnivore, genetics.SupplementalCarnivory},
		{"starving carnivore beside plants", traits.Carnivore, traits.Plant, 2, 0, traits.Omnivore, genetics.AdaptiveShift},
		{"omnivore with only prey", traits.Omnivore, traits.Animal, 0, 2, traits.Carnivore, genetics.AdaptiveShift},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default()
			cfg.Mutation.DietDriftChance = 1
			s := newSim(t, cfg, 41, 0, 0)
			x, y := landPatch(t, s, 1)

			hunter := animalGenome(traits.Mammal, traits.Diurnal)
			hunter.Diet = tt.diet
			hunter.Size, hunter.Vision, hunter.Hostility = 0.9, 0.9, 0.9
			if !s.Place(x, y, hunter, 0.1) {
				t.Fatal("placing hunter failed")
			}

			food := animalGenome(traits.Insect, traits.Diurnal)
			food.Species = 6
			food.Size = 0.2
			if tt.food == traits.Plant {
				food = genetics.Genome{LifeType: traits.Plant, Species: 2, Size: 0.5, Fertility: 0.5, MaturityAge: 500, MaxAge: 8000}
			}
			for _, dx := range []int{-1, 1} {
				if !s.Place(x+dx, y, food, 0.5) {
					t.Fatal("placing food failed")
				}
			}

			st := s.store
			i := s.occ.At(x, y)
			st.Starvation[i] = 1

			var v view
			s.scan(i, &v)
			if len(v.plants) != tt.wantPlants || len(v.prey) != tt.wantPrey {
				t.Fatalf("view plants=%d prey=%d, want %d/%d", len(v.plants), len(v.prey), tt.wantPlants, tt.wantPrey)
			}
			if tt.diet == traits.Herbivore && s.pickFood(i, &v, 1) >= 0 {
				t.Error("herbivore picked prey as food")
			}

			s.driftDiet(i, &v)
			if st.Genome[i].Diet != tt.wantDiet || st.DietShift[i] != tt.wantShift {
				t.Fatalf("diet %s shift %s, want %s %s", st.Genome[i].Diet, st.DietShift[i], tt.wantDiet, tt.wantShift)
			}
			if st.DietPenalty[i] <= 0 {
				t.Error("diet shift did not start the reproduction penalty")
			}
			if tt.wantShift == genetics.SupplementalCarnivory && s.pickFood(i, &v, 1) < 0 {
				t.Error("omnivore ignores visible prey")
			}
		})
	}
}
