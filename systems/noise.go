package systems

import "math"

// ValueNoise generates coherent noise by smoothly interpolating a seeded
// coordinate hash between integer lattice points.
type ValueNoise struct {
	seed uint32
}

// NewValueNoise creates a value noise generator.
func NewValueNoise(seed int64) *ValueNoise {
	return &ValueNoise{seed: uint32(seed) ^ uint32(seed>>32)}
}

// hash returns a lattice value in [0,1).
func (n *ValueNoise) hash(x, y int) float64 {
	h := uint32(x)*374761393 + uint32(y)*668265263 + n.seed*2246822519
	h = (h ^ (h >> 13)) * 1274126177
	h ^= h >> 16
	return float64(h) / 4294967296.0
}

// Noise2D returns a noise value in [0,1) for 2D coordinates.
func (n *ValueNoise) Noise2D(x, y float64) float64 {
	x0, y0 := math.Floor(x), math.Floor(y)
	ix, iy := int(x0), int(y0)
	u := smoothstep(x - x0)
	v := smoothstep(y - y0)

	top := lerp(u, n.hash(ix, iy), n.hash(ix+1, iy))
	bottom := lerp(u, n.hash(ix, iy+1), n.hash(ix+1, iy+1))
	return lerp(v, top, bottom)
}

// FBM sums octaves of noise with halving amplitude and doubling frequency,
// normalised back to [0,1).
func (n *ValueNoise) FBM(x, y float64, octaves int) float64 {
	if octaves < 1 {
		octaves = 1
	}
	var sum, norm float64
	amp, freq := 1.0, 1.0
	for o := 0; o < octaves; o++ {
		sum += amp * n.Noise2D(x*freq+float64(o)*17.31, y*freq-float64(o)*9.73)
		norm += amp
		amp *= 0.5
		freq *= 2
	}
	return sum / norm
}

func smoothstep(t float64) float64 {
	return t * t * (3 - 2*t)
}

func lerp(t, a, b float64) float64 {
	return a + t*(b-a)
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
