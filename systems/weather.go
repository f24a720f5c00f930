package systems

import (
	"math"
	"math/rand"

	"github.com/pthm-cable/biome/config"
)

// RainCell is one moving circular rain region.
type RainCell struct {
	X, Y   float64
	Radius float64
}

type cellPhase struct {
	x, y, r float64
}

// Weather drives rain cells from smooth periodic functions of the tick.
type Weather struct {
	cfg           config.WeatherConfig
	width, height int
	phases        []cellPhase
	Cells         []RainCell
	LastLightning int64
}

// NewWeather creates the weather model. Cell phases come from the weather seed.
func NewWeather(cfg config.WeatherConfig, seed int64, width, height int) *Weather {
	rng := rand.New(rand.NewSource(seed ^ 0x5deece66d))
	w := &Weather{
		cfg:           cfg,
		width:         width,
		height:        height,
		phases:        make([]cellPhase, cfg.RainCells),
		Cells:         make([]RainCell, cfg.RainCells),
		LastLightning: -1,
	}
	for i := range w.phases {
		w.phases[i] = cellPhase{
			x: rng.Float64() * 2 * math.Pi,
			y: rng.Float64() * 2 * math.Pi,
			r: rng.Float64() * 2 * math.Pi,
		}
	}
	w.Update(0)
	return w
}

// Update moves the rain cells to their position at tick.
func (w *Weather) Update(tick int64) {
	period := w.cfg.Period
	if period <= 0 {
		period = 1
	}
	phase := 2 * math.Pi * float64(tick) / period
	side := math.Min(float64(w.width), float64(w.height))
	for i, p := range w.phases {
		fi := float64(i)
		w.Cells[i] = RainCell{
			X:      float64(w.width) * (0.5 + 0.4*math.Sin(phase*(0.6+0.15*fi)+p.x)),
			Y:      float64(w.height) * (0.5 + 0.4*math.Cos(phase*(0.5+0.1*fi)+p.y)),
			Radius: side * (w.cfg.RadiusMin + (w.cfg.RadiusMax-w.cfg.RadiusMin)*(0.5+0.5*math.Sin(phase/0.7+p.r))),
		}
	}
}

// RainAt returns rain coverage at a tile in [0,1].
func (w *Weather) RainAt(x, y int) float64 {
	var sum float64
	for _, c := range w.Cells {
		if c.Radius <= 0 {
			continue
		}
		dx, dy := float64(x)-c.X, float64(y)-c.Y
		d := math.Sqrt(dx*dx + dy*dy)
		if d < c.Radius {
			sum += 1 - d/c.Radius
		}
	}
	return clamp01(sum)
}

// Coverage returns the mean rain over a sparse sample of the map.
func (w *Weather) Coverage() float64 {
	const step = 8
	var sum float64
	n := 0
	for y := step / 2; y < w.height; y += step {
		for x := step / 2; x < w.width; x += step {
			sum += w.RainAt(x, y)
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

// Strike rolls for lightning. On success it returns a point inside a rain cell.
func (w *Weather) Strike(rng *rand.Rand, tick int64) (int, int, bool) {
	if len(w.Cells) == 0 || rng.Float64() >= w.cfg.LightningChance {
		return 0, 0, false
	}
	c := w.Cells[rng.Intn(len(w.Cells))]
	ang := rng.Float64() * 2 * math.Pi
	r := c.Radius * math.Sqrt(rng.Float64())
	x := int(c.X + r*math.Cos(ang))
	y := int(c.Y + r*math.Sin(ang))
	if x < 0 || y < 0 || x >= w.width || y >= w.height {
		return 0, 0, false
	}
	w.LastLightning = tick
	return x, y, true
}
