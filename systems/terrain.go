package systems

import (
	"math"
	"math/rand"

	"github.com/pthm-cable/biome/config"
	"github.com/pthm-cable/biome/traits"
)

// Neighbors8 are the offsets of the 8-neighbourhood.
var Neighbors8 = [8][2]int{
	{-1, -1}, {0, -1}, {1, -1},
	{-1, 0}, {1, 0},
	{-1, 1}, {0, 1}, {1, 1},
}

// Terrain holds the per-tile environment fields built at seed time.
type Terrain struct {
	Width, Height int

	Elevation   []float64
	Temperature []float64
	Humidity    []float64
	Biome       []traits.Biome
	Water       []bool
	WaterDist   []int32
	Moisture    []float64
}

// TerrainStats summarises the generated world.
type TerrainStats struct {
	Tiles        int
	WaterTiles   int
	BiomeTiles   [traits.NumBiomes]int
	MeanMoisture float64
	MeanTemp     float64
}

// Index returns the flat index of (x, y).
func (t *Terrain) Index(x, y int) int { return y*t.Width + x }

// XY returns the coordinates of a flat index.
func (t *Terrain) XY(i int) (int, int) { return i % t.Width, i / t.Width }

// InBounds reports whether (x, y) lies on the map.
func (t *Terrain) InBounds(x, y int) bool {
	return x >= 0 && y >= 0 && x < t.Width && y < t.Height
}

// GenerateTerrain builds a world deterministically from seed.
func GenerateTerrain(cfg config.WorldConfig, seed int64, width, height int) *Terrain {
	n := width * height
	t := &Terrain{
		Width:       width,
		Height:      height,
		Elevation:   make([]float64, n),
		Temperature: make([]float64, n),
		Humidity:    make([]float64, n),
		Biome:       make([]traits.Biome, n),
		Water:       make([]bool, n),
		WaterDist:   make([]int32, n),
		Moisture:    make([]float64, n),
	}
	rng := rand.New(rand.NewSource(seed*31 + 7))

	t.generateFields(cfg, seed)
	for i := range t.Biome {
		t.Biome[i] = classify(t.Elevation[i], t.Temperature[i], t.Humidity[i], cfg.SeaLevel)
		t.Water[i] = t.Biome[i] == traits.Ocean
	}
	t.carveRivers(cfg, rng)
	for pass := 0; pass < cfg.LakePasses; pass++ {
		t.promoteLakes(cfg.LakeNeighbors)
	}
	t.reconcile(cfg)
	for pass := 0; pass < cfg.SmoothingPasses; pass++ {
		t.smooth()
	}
	t.computeMoisture(cfg.MoistureRange)
	for i, b := range t.Biome {
		t.Temperature[i] = clamp01(t.Temperature[i] + b.Props().Temperature)
	}
	return t
}

func (t *Terrain) generateFields(cfg config.WorldConfig, seed int64) {
	elev := NewValueNoise(seed)
	temp := NewValueNoise(seed + 1)
	hum := NewValueNoise(seed + 2)

	cx, cy := float64(t.Width)/2, float64(t.Height)/2
	for y := 0; y < t.Height; y++ {
		for x := 0; x < t.Width; x++ {
			i := t.Index(x, y)
			fx, fy := float64(x), float64(y)

			dx, dy := (fx-cx)/cx, (fy-cy)/cy
			r := math.Sqrt(dx*dx + dy*dy)
			e := elev.FBM(fx*cfg.ElevationScale, fy*cfg.ElevationScale, cfg.Octaves)
			e -= cfg.FalloffStrength * smoothstep(clamp01((r-0.5)/0.5))
			t.Elevation[i] = e

			lat := 1 - math.Abs(fy/float64(t.Height)-0.5)*2
			tv := 0.65*temp.FBM(fx*cfg.ClimateScale, fy*cfg.ClimateScale, cfg.Octaves) + 0.35*lat
			tv -= math.Max(0, e-cfg.SeaLevel) * 0.3
			t.Temperature[i] = clamp01(tv)
			t.Humidity[i] = hum.FBM(fx*cfg.ClimateScale, fy*cfg.ClimateScale, cfg.Octaves)
		}
	}
}

// classify maps the climate fields of one tile to a biome.
func classify(elevation, temperature, humidity, seaLevel float64) traits.Biome {
	if elevation < seaLevel {
		return traits.Ocean
	}
	aridity := temperature*1.05 - humidity
	switch {
	case temperature < 0.3:
		return traits.Tundra
	case aridity > 0.3:
		return traits.Desert
	case humidity > 0.62 && elevation < seaLevel+0.1:
		return traits.Wetlands
	case humidity > 0.5:
		return traits.Forest
	}
	return traits.Grassland
}

// carveRivers walks greedily downhill from high, humid seed tiles.
func (t *Terrain) carveRivers(cfg config.WorldConfig, rng *rand.Rand) {
	n := len(t.Elevation)
	for r := 0; r < cfg.RiverCount; r++ {
		best, bestScore := -1, math.Inf(-1)
		for s := 0; s < cfg.RiverSamples; s++ {
			i := rng.Intn(n)
			if t.Water[i] {
				continue
			}
			score := t.Elevation[i] + 0.5*t.Humidity[i]
			if score > bestScore {
				best, bestScore = i, score
			}
		}
		if best < 0 {
			continue
		}
		t.walkRiver(best, cfg, rng)
	}
}

func (t *Terrain) walkRiver(start int, cfg config.WorldConfig, rng *rand.Rand) {
	cur := start
	for step := 0; step < cfg.RiverMaxLength; step++ {
		t.Water[cur] = true
		if t.Elevation[cur] < cfg.SeaLevel {
			return
		}
		x, y := t.XY(cur)
		next, low := -1, t.Elevation[cur]
		for _, d := range Neighbors8 {
			nx, ny := x+d[0], y+d[1]
			if !t.InBounds(nx, ny) {
				continue
			}
			j := t.Index(nx, ny)
			v := t.Elevation[j] + rng.Float64()*0.004
			if v < low {
				next, low = j, v
			}
		}
		if next < 0 {
			t.fillBasin(cur)
			return
		}
		if t.Water[next] {
			return
		}
		cur = next
	}
}

// fillBasin floods the neighbours of a river's terminal local minimum.
func (t *Terrain) fillBasin(center int) {
	x, y := t.XY(center)
	limit := t.Elevation[center] + 0.02
	for _, d := range Neighbors8 {
		nx, ny := x+d[0], y+d[1]
		if t.InBounds(nx, ny) && t.Elevation[t.Index(nx, ny)] < limit {
			t.Water[t.Index(nx, ny)] = true
		}
	}
}

func (t *Terrain) waterNeighbors(x, y int) int {
	count := 0
	for _, d := range Neighbors8 {
		nx, ny := x+d[0], y+d[1]
		if t.InBounds(nx, ny) && t.Water[t.Index(nx, ny)] {
			count++
		}
	}
	return count
}

// promoteLakes turns land tiles mostly surrounded by water into water.
func (t *Terrain) promoteLakes(minNeighbors int) {
	var promote []int
	for y := 0; y < t.Height; y++ {
		for x := 0; x < t.Width; x++ {
			i := t.Index(x, y)
			if !t.Water[i] && t.waterNeighbors(x, y) >= minNeighbors {
				promote = append(promote, i)
			}
		}
	}
	for _, i := range promote {
		t.Water[i] = true
	}
}

// reconcile fixes biome and water mismatches after carving.
func (t *Terrain) reconcile(cfg config.WorldConfig) {
	wasDesert := make([]bool, len(t.Biome))
	for i, b := range t.Biome {
		wasDesert[i] = b == traits.Desert
		if b == traits.Ocean {
			t.Water[i] = true
		}
	}

	inland := bfsDistance(t.Width, t.Height, func(i int) bool {
		return t.Water[i] && t.Biome[i] != traits.Ocean
	})
	for i := range t.Biome {
		if t.Biome[i] == traits.Ocean {
			continue
		}
		if d := inland[i]; d >= 0 && d < 8 {
			t.Humidity[i] = clamp01(t.Humidity[i] + 0.25*(1-float64(d)/8))
		}
		t.Biome[i] = classify(math.Max(t.Elevation[i], cfg.SeaLevel), t.Temperature[i], t.Humidity[i], cfg.SeaLevel)
	}

	all := bfsDistance(t.Width, t.Height, func(i int) bool { return t.Water[i] })
	for i := range t.Biome {
		if t.Biome[i] == traits.Ocean {
			continue
		}
		if wasDesert[i] && int(all[i]) >= cfg.InteriorDesertAt {
			t.Biome[i] = traits.Desert
		}
		if t.Biome[i] == traits.Desert && (t.Water[i] || all[i] <= 1) {
			t.Biome[i] = traits.Grassland
		}
	}
}

// smooth applies one majority-vote pass. Ocean tiles are never overwritten and
// never created; river and lake tiles keep their biome.
func (t *Terrain) smooth() {
	next := make([]traits.Biome, len(t.Biome))
	copy(next, t.Biome)
	for y := 0; y < t.Height; y++ {
		for x := 0; x < t.Width; x++ {
			i := t.Index(x, y)
			if t.Biome[i] == traits.Ocean || t.Water[i] {
				continue
			}
			var votes [traits.NumBiomes]int
			for _, d := range Neighbors8 {
				nx, ny := x+d[0], y+d[1]
				if !t.InBounds(nx, ny) {
					continue
				}
				votes[t.Biome[t.Index(nx, ny)]]++
			}
			best, bestVotes := t.Biome[i], votes[t.Biome[i]]
			for b := traits.Biome(0); b < traits.NumBiomes; b++ {
				if b == traits.Ocean {
					continue
				}
				if votes[b] > bestVotes {
					best, bestVotes = b, votes[b]
				}
			}
			if best == traits.Desert && t.waterNeighbors(x, y) > 0 {
				continue
			}
			if bestVotes >= 5 {
				next[i] = best
			}
		}
	}
	t.Biome = next
}

// computeMoisture floods distance-to-water from every water tile.
func (t *Terrain) computeMoisture(rangeTiles float64) {
	t.WaterDist = bfsDistance(t.Width, t.Height, func(i int) bool { return t.Water[i] })
	for i, d := range t.WaterDist {
		if d < 0 {
			t.Moisture[i] = 0
			continue
		}
		t.Moisture[i] = clamp01(1 - float64(d)/rangeTiles)
	}
}

// bfsDistance runs a multi-source breadth-first flood over the
// 8-neighbourhood. Unreachable tiles get -1.
func bfsDistance(width, height int, source func(int) bool) []int32 {
	n := width * height
	dist := make([]int32, n)
	queue := make([]int32, 0, n)
	for i := 0; i < n; i++ {
		if source(i) {
			dist[i] = 0
			queue = append(queue, int32(i))
		} else {
			dist[i] = -1
		}
	}
	for head := 0; head < len(queue); head++ {
		i := int(queue[head])
		x, y := i%width, i/width
		for _, d := range Neighbors8 {
			nx, ny := x+d[0], y+d[1]
			if nx < 0 || ny < 0 || nx >= width || ny >= height {
				continue
			}
			j := ny*width + nx
			if dist[j] >= 0 {
				continue
			}
			dist[j] = dist[i] + 1
			queue = append(queue, int32(j))
		}
	}
	return dist
}

// Stats summarises the terrain.
func (t *Terrain) Stats() TerrainStats {
	s := TerrainStats{Tiles: len(t.Biome)}
	for i, b := range t.Biome {
		s.BiomeTiles[b]++
		if t.Water[i] {
			s.WaterTiles++
		}
		s.MeanMoisture += t.Moisture[i]
		s.MeanTemp += t.Temperature[i]
	}
	if s.Tiles > 0 {
		s.MeanMoisture /= float64(s.Tiles)
		s.MeanTemp /= float64(s.Tiles)
	}
	return s
}

// WaterGradient returns the neighbour step that most reduces distance to water,
// or (0, 0) if none does.
func (t *Terrain) WaterGradient(x, y int) (int, int) {
	best := t.WaterDist[t.Index(x, y)]
	bx, by := 0, 0
	for _, d := range Neighbors8 {
		nx, ny := x+d[0], y+d[1]
		if !t.InBounds(nx, ny) {
			continue
		}
		if v := t.WaterDist[t.Index(nx, ny)]; v >= 0 && (best < 0 || v < best) {
			best, bx, by = v, d[0], d[1]
		}
	}
	return bx, by
}
