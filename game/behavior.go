package game

import (
	"math"

	"github.com/pthm-cable/biome/systems"
	"github.com/pthm-cable/biome/traits"
)

// view is what an animal perceives within its vision radius this tick.
// Slices hold store slots and are reused between animals.
type view struct {
	radius  int
	plants  []int // Visible plants, whatever the diet
	prey    []int // Smaller animals of other species, whatever the diet
	mates   []int // Ready adults of the same class
	kin     int   // Same-species animals
	threats int   // Larger hostile carnivores
	threat  int   // Nearest threat slot, or -1
}

// motives are the competing drives of an animal, each roughly in [0,3].
type motives struct {
	thirst, hunger, mate, fear, habitat float64
}

func (m motives) strongest() float64 {
	return max(m.thirst, m.hunger, m.mate, m.fear, m.habitat)
}

// visionRadius maps the vision trait to a tile radius.
func (s *Simulation) visionRadius(vision float64) int {
	lo, hi := s.cfg.Feeding.MinVisionRadius, s.cfg.Feeding.MaxVisionRadius
	return lo + int(math.Round(vision*float64(hi-lo)))
}

// scan fills v with the surroundings of animal i. Food lists ignore diet so
// diet drift can see what it is missing; feeding applies the diet.
func (s *Simulation) scan(i int, v *view) {
	st := s.store
	g := &st.Genome[i]
	x, y := int(st.X[i]), int(st.Y[i])
	r := s.visionRadius(g.Vision)

	v.radius = r
	v.plants = v.plants[:0]
	v.prey = v.prey[:0]
	v.mates = v.mates[:0]
	v.kin, v.threats, v.threat = 0, 0, -1
	threatDist := math.MaxInt

	ratio := s.cfg.Feeding.PreySizeRatio
	for dy := -r; dy <= r; dy++ {
		for dx := -r; dx <= r; dx++ {
			j := s.occ.At(x+dx, y+dy)
			if j < 0 || j == i {
				continue
			}
			o := &st.Genome[j]
			if o.LifeType == traits.Plant {
				v.plants = append(v.plants, j)
				continue
			}
			if o.Species == g.Species {
				v.kin++
			}
			if o.Class == g.Class && o.ReproMode == traits.Sexual && st.Adult[j] && st.ReproState[j] == traits.Ready {
				v.mates = append(v.mates, j)
			}
			if o.Species == g.Species {
				continue
			}
			if o.Size < g.Size*ratio {
				v.prey = append(v.prey, j)
			}
			if o.Diet.EatsMeat() && o.Size > g.Size && o.Hostility > 0.3 {
				v.threats++
				if d := chebyshev(dx, dy); d < threatDist {
					threatDist, v.threat = d, j
				}
			}
		}
	}
}

// computeMotives derives drive strengths for animal i from its state and view.
func (s *Simulation) computeMotives(i int, v *view) motives {
	st := s.store
	g := &st.Genome[i]
	tn := &s.tuning
	t := s.terrain
	tile := t.Index(int(st.X[i]), int(st.Y[i]))

	var m motives
	m.thirst = (1 - st.Hydration[i]) * tn.ThirstWeight
	if st.Energy[i] < s.cfg.Feeding.Satiation {
		m.hunger = (1 - st.Energy[i]) * tn.HungerWeight
	}
	if st.Adult[i] && st.ReproState[i] == traits.Ready {
		if r := s.readiness(i, v); r >= tn.ReproReadinessThreshold {
			m.mate = r * tn.MateWeight
		}
	}
	if v.threats > 0 {
		m.fear = math.Min(3, float64(v.threats)*0.35*(1-0.5*g.Hostility)*tn.FearWeight)
	}
	m.habitat = s.habitatCost(g.PreferredBiome, g.TemperatureTolerance, tile)
	return m
}

// habitatCost scores how unsuitable a tile is for an animal.
func (s *Simulation) habitatCost(preferred traits.Biome, tolerance float64, tile int) float64 {
	t := s.terrain
	c := s.tempStress(tile, tolerance) * 0.5
	if t.Biome[tile] != preferred && !t.Water[tile] {
		c += 0.5
	}
	if d := t.WaterDist[tile]; d > 0 {
		c += clamp01(float64(d)/30) * 0.3
	}
	return c
}

// move picks a step for animal i by drive priority: flee, water, habitat,
// food, mate, then a random walk.
func (s *Simulation) move(i int, v *view) {
	st := s.store
	g := &st.Genome[i]
	t := s.terrain
	x, y := int(st.X[i]), int(st.Y[i])
	tile := t.Index(x, y)
	m := s.computeMotives(i, v)

	boost := math.Min(m.strongest()*0.5, s.tuning.MotiveMoveBoostCap)
	p := g.Class.BaseSpeed()*t.Biome[tile].Props().Movement*(0.5+g.Speed) + boost
	if s.rng.Float64() >= clamp01(p) {
		return
	}

	thr := s.cfg.Feeding.DriveThreshold
	dx, dy := 0, 0
	switch {
	case m.fear > thr && v.threat >= 0:
		dx = -sign(int(st.X[v.threat]) - x)
		dy = -sign(int(st.Y[v.threat]) - y)
	case m.thirst > thr && t.WaterDist[tile] > 1:
		dx, dy = t.WaterGradient(x, y)
	case m.habitat > 0.4:
		dx, dy = s.habitatStep(i, x, y)
	case m.hunger > thr:
		if j := s.pickFood(i, v, m.hunger); j >= 0 {
			dx, dy = s.approach(x, y, j)
		}
	case m.mate > thr:
		if j := s.bestMate(i, v); j >= 0 {
			dx, dy = s.approach(x, y, j)
		}
	}
	if dx == 0 && dy == 0 {
		d := systems.Neighbors8[s.rng.Intn(len(systems.Neighbors8))]
		dx, dy = d[0], d[1]
	}
	if s.tryStep(i, x+dx, y+dy) {
		st.Energy[i] -= s.cfg.Metabolism.MoveCost * (0.5 + g.Size)
	}
}

// approach returns the step from (x, y) toward slot j, or (0, 0) when
// already adjacent.
func (s *Simulation) approach(x, y, j int) (int, int) {
	tx, ty := int(s.store.X[j]), int(s.store.Y[j])
	if chebyshev(tx-x, ty-y) <= 1 {
		return 0, 0
	}
	return sign(tx - x), sign(ty - y)
}

// habitatStep returns the neighbour step that most lowers habitat cost.
func (s *Simulation) habitatStep(i, x, y int) (int, int) {
	g := &s.store.Genome[i]
	t := s.terrain
	best := s.habitatCost(g.PreferredBiome, g.TemperatureTolerance, t.Index(x, y))
	bx, by := 0, 0
	for _, d := range systems.Neighbors8 {
		nx, ny := x+d[0], y+d[1]
		if !t.InBounds(nx, ny) || !g.Class.CanEnter(t.Water[t.Index(nx, ny)]) {
			continue
		}
		if c := s.habitatCost(g.PreferredBiome, g.TemperatureTolerance, t.Index(nx, ny)); c < best {
			best, bx, by = c, d[0], d[1]
		}
	}
	return bx, by
}

// tryStep moves i to (x, y) if the tile is free and passable for its class.
func (s *Simulation) tryStep(i, x, y int) bool {
	t := s.terrain
	if !s.occ.Empty(x, y) {
		return false
	}
	if !s.store.Genome[i].Class.CanEnter(t.Water[t.Index(x, y)]) {
		return false
	}
	s.moveTo(i, x, y)
	return true
}

// pickFood chooses a visible food target by roulette over drive-weighted,
// distance-discounted value. It returns -1 when nothing is in view.
func (s *Simulation) pickFood(i int, v *view, drive float64) int {
	st := s.store
	x, y := int(st.X[i]), int(st.Y[i])
	cands := s.cands[:0]
	w := s.weights[:0]
	add := func(j int, value float64) {
		d := chebyshev(int(st.X[j])-x, int(st.Y[j])-y)
		cands = append(cands, j)
		w = append(w, drive*value/float64(max(1, d)))
	}
	diet := st.Genome[i].Diet
	if diet.EatsPlants() {
		for _, j := range v.plants {
			add(j, st.Energy[j])
		}
	}
	if diet.EatsMeat() {
		for _, j := range v.prey {
			add(j, st.Energy[j]*(0.5+st.Genome[j].Size))
		}
	}
	s.cands, s.weights = cands, w
	k := roulette(s.rng, w)
	if k < 0 {
		return -1
	}
	return cands[k]
}

// readiness scores how prepared animal i is to reproduce, in [0,1].
func (s *Simulation) readiness(i int, v *view) float64 {
	st := s.store
	g := &st.Genome[i]
	tile := s.terrain.Index(int(st.X[i]), int(st.Y[i]))

	energy := clamp01((st.Energy[i] - 0.4) / 0.5)
	water := clamp01((st.Hydration[i] - 0.35) / 0.5)
	safety := 1 / (1 + float64(v.threats))
	suit := 1 - 0.7*s.tempStress(tile, g.TemperatureTolerance)
	if s.terrain.Biome[tile] != g.PreferredBiome {
		suit *= 0.6
	}
	social := 0.8 + 0.4*g.Sociality*math.Min(1, float64(v.kin)/3)

	r := clamp01(energy * water * safety * suit * social)
	if st.DietPenalty[i] > 0 {
		r *= s.cfg.Reproduction.DietShiftPenalty
	}
	return r
}
