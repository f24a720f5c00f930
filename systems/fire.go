package systems

import (
	"math/rand"

	"github.com/pthm-cable/biome/config"
)

// FuelSource reports whether plant fuel lies within radius of a tile.
type FuelSource interface {
	HasFuel(x, y, radius int) bool
}

// Fire is a probabilistic cellular automaton over tile time-to-live counters.
// Only burning tiles are visited each tick.
type Fire struct {
	cfg     config.FireConfig
	terrain *Terrain
	TTL     []int16
	active  []int32
	scratch []int32
}

// NewFire creates an extinguished fire layer for t.
func NewFire(cfg config.FireConfig, t *Terrain) *Fire {
	return &Fire{
		cfg:     cfg,
		terrain: t,
		TTL:     make([]int16, len(t.Biome)),
	}
}

// Burning reports whether tile i is on fire.
func (f *Fire) Burning(i int) bool { return f.TTL[i] > 0 }

// Count returns the number of burning tiles.
func (f *Fire) Count() int { return len(f.active) }

// Active returns the burning tile indices.
func (f *Fire) Active() []int32 { return f.active }

// Dryness returns how readily tile i burns under the given rain.
func (f *Fire) Dryness(i int, rain float64) float64 {
	props := f.terrain.Biome[i].Props()
	return clamp01((1-f.terrain.Moisture[i])*0.6 + props.BaseDryness*0.4 - rain*0.8)
}

// flammable reports whether tile i can hold fire at all.
func (f *Fire) flammable(i int) bool {
	return !f.terrain.Water[i] && f.terrain.Biome[i].Props().Flammable
}

// Ignite starts a lightning fire at (x, y) if the tile is flammable, fueled,
// not burning and dry enough.
func (f *Fire) Ignite(x, y int, rain float64, fuel FuelSource) bool {
	i := f.terrain.Index(x, y)
	if !f.flammable(i) || f.TTL[i] > 0 {
		return false
	}
	if f.Dryness(i, rain) < f.cfg.DrynessThreshold || !fuel.HasFuel(x, y, f.cfg.FuelRadius) {
		return false
	}
	f.TTL[i] = int16(f.cfg.TTL)
	f.active = append(f.active, int32(i))
	return true
}

// Step decays every burning tile and lets it spread to up to MaxSpread
// random neighbours. Tiles ignited this tick are not processed until the next.
func (f *Fire) Step(rng *rand.Rand, w *Weather, fuel FuelSource) {
	t := f.terrain
	next := f.scratch[:0]
	for _, ii := range f.active {
		i := int(ii)
		if f.TTL[i] <= 0 {
			continue
		}
		x, y := t.XY(i)
		rain := w.RainAt(x, y)

		for k := 0; k < f.cfg.MaxSpread; k++ {
			d := Neighbors8[rng.Intn(len(Neighbors8))]
			nx, ny := x+d[0], y+d[1]
			if !t.InBounds(nx, ny) {
				continue
			}
			j := t.Index(nx, ny)
			if !f.flammable(j) || f.TTL[j] > 0 {
				continue
			}
			nrain := w.RainAt(nx, ny)
			p := t.Biome[j].Props().BaseSpread * (0.5 + f.Dryness(j, nrain)) * (1 - 0.8*nrain)
			if rng.Float64() >= p || !fuel.HasFuel(nx, ny, 1) {
				continue
			}
			f.TTL[j] = int16(f.cfg.TTL)
			next = append(next, int32(j))
		}

		decay := 1 + int(rain*float64(f.cfg.RainDecay)+0.5)
		f.TTL[i] -= int16(decay)
		if f.TTL[i] > 0 {
			next = append(next, ii)
		} else {
			f.TTL[i] = 0
		}
	}
	f.scratch = f.active[:0]
	f.active = next
}
