package systems

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/pthm-cable/biome/config"
	"github.com/pthm-cable/biome/traits"
)

func TestNewEntityStoreCapacity(t *testing.T) {
	tests := []struct {
		name     string
		capacity int
		wantErr  bool
	}{
		{"zero", 0, true},
		{"negative", -5, true},
		{"huge", maxStoreCapacity + 1, true},
		{"normal", 128, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewEntityStore(tt.capacity)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrCapacity) {
				t.Errorf("err = %v, want ErrCapacity", err)
			}
		})
	}
}

func TestEntityStoreAllocFree(t *testing.T) {
	s, err := NewEntityStore(4)
	if err != nil {
		t.Fatal(err)
	}
	var got []int
	for k := 0; k < 4; k++ {
		i, ok := s.Alloc()
		if !ok {
			t.Fatalf("alloc %d failed", k)
		}
		got = append(got, i)
	}
	if _, ok := s.Alloc(); ok {
		t.Fatal("alloc beyond capacity succeeded")
	}
	if s.Live() != 4 || s.LiveBits() != 4 {
		t.Fatalf("live = %d bits = %d", s.Live(), s.LiveBits())
	}

	s.Energy[got[1]] = 0.9
	s.Free(got[1])
	s.Free(got[1]) // double free is a no-op
	if s.Alive(got[1]) || s.Live() != 3 {
		t.Fatalf("free did not clear slot: alive=%v live=%d", s.Alive(got[1]), s.Live())
	}

	i, ok := s.Alloc()
	if !ok || i != got[1] {
		t.Fatalf("realloc = %d,%v want reused slot %d", i, ok, got[1])
	}
	if s.Energy[i] != 0 || s.ReproState[i] != traits.Ready {
		t.Error("reused slot not reset")
	}
	if s.ID[i] == s.ID[got[0]] {
		t.Error("reused slot kept a stale id")
	}
	if s.Len() != 4 {
		t.Errorf("Len = %d, want 4", s.Len())
	}
}

func TestOccupancyGrid(t *testing.T) {
	g := NewOccupancyGrid(5, 4)
	if !g.Empty(2, 2) || g.At(2, 2) != -1 {
		t.Fatal("new grid not empty")
	}
	g.Set(2, 2, 7)
	if g.At(2, 2) != 7 || g.Empty(2, 2) {
		t.Fatal("Set did not claim tile")
	}
	if g.Empty(-1, 0) || g.Empty(5, 0) || g.At(0, 4) != -1 {
		t.Error("out of bounds tiles must be neither empty nor occupied")
	}
	g.Clear(2, 2)
	if !g.Empty(2, 2) {
		t.Error("Clear did not free tile")
	}
}

type fuelEverywhere struct{}

func (fuelEverywhere) HasFuel(x, y, radius int) bool { return true }

func TestFireNeverOnWater(t *testing.T) {
	cfg := config.Default()
	tr := GenerateTerrain(cfg.World, 5, 120, 120)
	w := NewWeather(cfg.Weather, 5, tr.Width, tr.Height)
	f := NewFire(cfg.Fire, tr)
	rng := rand.New(rand.NewSource(5))

	// ignite every flammable tile we can, then run the automaton
	for i := range tr.Biome {
		x, y := tr.XY(i)
		f.Ignite(x, y, 0, fuelEverywhere{})
	}
	for tick := int64(0); tick < 200; tick++ {
		w.Update(tick)
		f.Step(rng, w, fuelEverywhere{})
		for i, ttl := range f.TTL {
			if tr.Water[i] && ttl != 0 {
				t.Fatalf("tick %d: water tile %d has ttl %d", tick, i, ttl)
			}
			if ttl < 0 {
				t.Fatalf("negative ttl at %d", i)
			}
		}
	}
}

func TestFireBurnsOut(t *testing.T) {
	cfg := config.Default()
	tr := &Terrain{Width: 3, Height: 1,
		Biome:    []traits.Biome{traits.Tundra, traits.Grassland, traits.Tundra},
		Water:    make([]bool, 3),
		Moisture: make([]float64, 3),
	}
	w := NewWeather(config.WeatherConfig{}, 1, 3, 1)
	f := NewFire(cfg.Fire, tr)
	if !f.Ignite(1, 0, 0, fuelEverywhere{}) {
		t.Fatal("dry grassland with fuel did not ignite")
	}
	if f.Ignite(0, 0, 0, fuelEverywhere{}) {
		t.Fatal("tundra ignited")
	}
	rng := rand.New(rand.NewSource(1))
	for k := 0; k < cfg.Fire.TTL; k++ {
		f.Step(rng, w, fuelEverywhere{})
	}
	if f.Count() != 0 || f.Burning(1) {
		t.Errorf("fire still burning after ttl: count=%d", f.Count())
	}
}

func TestWeatherRainBounds(t *testing.T) {
	cfg := config.Default()
	w := NewWeather(cfg.Weather, 11, 200, 150)
	rng := rand.New(rand.NewSource(11))
	for tick := int64(0); tick < 5000; tick += 97 {
		w.Update(tick)
		for y := 0; y < 150; y += 13 {
			for x := 0; x < 200; x += 13 {
				if r := w.RainAt(x, y); r < 0 || r > 1 {
					t.Fatalf("rain %v out of range", r)
				}
			}
		}
		if c := w.Coverage(); c < 0 || c > 1 {
			t.Fatalf("coverage %v out of range", c)
		}
		w.Strike(rng, tick)
	}
	if w.LastLightning < -1 {
		t.Errorf("LastLightning = %d", w.LastLightning)
	}
}
