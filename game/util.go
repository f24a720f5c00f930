package game

import "math/rand"

// clamp01 limits v to [0,1].
func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// sign returns -1, 0 or 1.
func sign(v int) int {
	switch {
	case v < 0:
		return -1
	case v > 0:
		return 1
	}
	return 0
}

// chebyshev is the king-move distance of an offset.
func chebyshev(dx, dy int) int {
	if dx < 0 {
		dx = -dx
	}
	if dy < 0 {
		dy = -dy
	}
	return max(dx, dy)
}

// roulette picks an index with probability proportional to its weight.
// It returns -1 when no weight is positive.
func roulette(rng *rand.Rand, weights []float64) int {
	var total float64
	for _, w := range weights {
		if w > 0 {
			total += w
		}
	}
	if total <= 0 {
		return -1
	}
	r := rng.Float64() * total
	last := -1
	for k, w := range weights {
		if w <= 0 {
			continue
		}
		last = k
		if r < w {
			return k
		}
		r -= w
	}
	return last
}
