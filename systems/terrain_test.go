package systems

import (
	"math"
	"slices"
	"testing"

	"github.com/pthm-cable/biome/config"
	"github.com/pthm-cable/biome/traits"
)

func testWorld(t *testing.T, seed int64, w, h int) *Terrain {
	t.Helper()
	return GenerateTerrain(config.Default().World, seed, w, h)
}

func TestValueNoiseRangeAndDeterminism(t *testing.T) {
	a, b := NewValueNoise(42), NewValueNoise(42)
	for i := 0; i < 500; i++ {
		x, y := float64(i)*0.37, float64(i)*0.91
		va, vb := a.FBM(x, y, 4), b.FBM(x, y, 4)
		if va != vb {
			t.Fatalf("noise not deterministic at (%v,%v)", x, y)
		}
		if va < 0 || va >= 1 {
			t.Fatalf("FBM(%v,%v) = %v out of range", x, y, va)
		}
	}
	// lattice points reproduce the hash exactly
	if got, want := a.Noise2D(3, 5), a.hash(3, 5); got != want {
		t.Errorf("Noise2D at lattice = %v, want %v", got, want)
	}
}

func TestGenerateTerrainDeterministic(t *testing.T) {
	a := testWorld(t, 42, 120, 120)
	b := testWorld(t, 42, 120, 120)
	if !slices.Equal(a.Biome, b.Biome) || !slices.Equal(a.Water, b.Water) ||
		!slices.Equal(a.WaterDist, b.WaterDist) || !slices.Equal(a.Moisture, b.Moisture) {
		t.Fatal("same seed produced different terrain")
	}
	c := testWorld(t, 43, 120, 120)
	if slices.Equal(a.Elevation, c.Elevation) {
		t.Error("different seeds produced identical elevation")
	}
}

func TestTerrainInvariants(t *testing.T) {
	cfg := config.Default().World
	for _, seed := range []int64{1, 7, 42, 99} {
		tr := GenerateTerrain(cfg, seed, 160, 130)
		for i, b := range tr.Biome {
			if b == traits.Ocean && !tr.Water[i] {
				t.Fatalf("seed %d: ocean tile %d is not water", seed, i)
			}
			if tr.Water[i] && b == traits.Desert {
				t.Fatalf("seed %d: water tile %d is desert", seed, i)
			}
			if tr.Water[i] != (tr.WaterDist[i] == 0) {
				t.Fatalf("seed %d: tile %d water=%v dist=%d", seed, i, tr.Water[i], tr.WaterDist[i])
			}
			if tr.WaterDist[i] >= 0 {
				want := math.Max(0, 1-float64(tr.WaterDist[i])/cfg.MoistureRange)
				if math.Abs(tr.Moisture[i]-want) > 1e-12 {
					t.Fatalf("seed %d: moisture %v want %v", seed, tr.Moisture[i], want)
				}
			}
			if tr.Temperature[i] < 0 || tr.Temperature[i] > 1 {
				t.Fatalf("seed %d: temperature %v out of range", seed, tr.Temperature[i])
			}
		}
		s := tr.Stats()
		if s.BiomeTiles[traits.Ocean] == 0 {
			t.Errorf("seed %d: radial falloff produced no ocean", seed)
		}
	}
}

func TestBFSDistanceIsChebyshev(t *testing.T) {
	const w, h = 9, 7
	dist := bfsDistance(w, h, func(i int) bool { return i == 3*w+4 })
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			want := max(absInt(x-4), absInt(y-3))
			if got := int(dist[y*w+x]); got != want {
				t.Fatalf("dist(%d,%d) = %d, want %d", x, y, got, want)
			}
		}
	}
}

func TestSmoothNeverTouchesOcean(t *testing.T) {
	tr := &Terrain{Width: 3, Height: 3, Biome: make([]traits.Biome, 9), Water: make([]bool, 9)}
	for i := range tr.Biome {
		tr.Biome[i] = traits.Forest
	}
	tr.Biome[4] = traits.Ocean
	tr.Water[4] = true
	tr.Biome[0] = traits.Desert
	tr.smooth()
	if tr.Biome[4] != traits.Ocean {
		t.Errorf("ocean overwritten with %v", tr.Biome[4])
	}
	for i, b := range tr.Biome {
		if i != 4 && b == traits.Ocean {
			t.Errorf("smoothing created ocean at %d", i)
		}
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name      string
		e, tp, hu float64
		want      traits.Biome
	}{
		{"below sea", 0.2, 0.5, 0.5, traits.Ocean},
		{"cold", 0.6, 0.2, 0.5, traits.Tundra},
		{"arid", 0.6, 0.8, 0.2, traits.Desert},
		{"wet lowland", 0.38, 0.5, 0.8, traits.Wetlands},
		{"humid upland", 0.7, 0.5, 0.6, traits.Forest},
		{"temperate", 0.6, 0.5, 0.4, traits.Grassland},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := classify(tt.e, tt.tp, tt.hu, 0.34); got != tt.want {
				t.Errorf("classify = %v, want %v", got, tt.want)
			}
		})
	}
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
