package game

import (
	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/biome/components"
	"github.com/pthm-cable/biome/genetics"
	"github.com/pthm-cable/biome/traits"
)

// eggSystem keeps incubating eggs as ECS entities, apart from the organism
// store, so clutches never compete with organisms for store capacity.
type eggSystem struct {
	world  *ecs.World
	mapper *ecs.Map2[components.Position, components.Egg]
	filter *ecs.Filter2[components.Position, components.Egg]
	count  int
	nextID uint32
	remove []ecs.Entity
}

func newEggSystem() *eggSystem {
	world := ecs.NewWorld()
	return &eggSystem{
		world:  world,
		mapper: ecs.NewMap2[components.Position, components.Egg](world),
		filter: ecs.NewFilter2[components.Position, components.Egg](world),
	}
}

// add creates an egg entity at (x, y).
func (e *eggSystem) add(x, y int, egg *components.Egg) {
	e.nextID++
	egg.ID = e.nextID
	pos := components.Position{X: int32(x), Y: int32(y)}
	e.mapper.NewEntity(&pos, egg)
	e.count++
}

// EggData is a read-only view of one incubating egg.
type EggData struct {
	ID            uint32
	X, Y          int
	MotherID      uint32
	FatherID      uint32
	Genome        genetics.Genome
	Alleles       genetics.Alleles
	Incubation    int
	MaxIncubation int
	Viability     float64
	DietShift     bool
}

// Eggs returns every incubating egg.
func (s *Simulation) Eggs() []EggData {
	if !s.initialized {
		return nil
	}
	out := make([]EggData, 0, s.eggs.count)
	q := s.eggs.filter.Query()
	for q.Next() {
		pos, egg := q.Get()
		out = append(out, EggData{
			ID:            egg.ID,
			X:             int(pos.X),
			Y:             int(pos.Y),
			MotherID:      egg.MotherID,
			FatherID:      egg.FatherID,
			Genome:        egg.Genome,
			Alleles:       egg.Alleles,
			Incubation:    int(egg.Incubation),
			MaxIncubation: int(egg.MaxIncubation),
			Viability:     egg.Viability,
			DietShift:     egg.DietShift != genetics.NoShift,
		})
	}
	return out
}

// layClutch places a clutch of eggs for mother i near her, in water or on
// land as her class requires. Eggs beyond the global cap are not laid.
func (s *Simulation) layClutch(i, j int) {
	st := s.store
	cfg := s.cfg
	mother := st.Genome[i]
	motherAlleles := st.Alleles[i]
	father, fatherAlleles := mother, motherAlleles
	var fatherID uint32
	if j >= 0 {
		father, fatherAlleles, fatherID = st.Genome[j], st.Alleles[j], st.ID[j]
	}
	x, y := int(st.X[i]), int(st.Y[i])
	health := (st.Energy[i] + st.Hydration[i]) / 2

	laid := 0
	for k := 0; k < mother.Class.ClutchSize(); k++ {
		if s.eggs.count >= cfg.Eggs.Max {
			break
		}
		ex, ey, ok := s.eggSite(x, y, mother.Class.WaterEggs())
		if !ok {
			break
		}
		child, alleles := s.offspring(&mother, &motherAlleles, &father, &fatherAlleles, j >= 0)
		egg := components.Egg{
			MotherID:      st.ID[i],
			FatherID:      fatherID,
			Genome:        child,
			Alleles:       alleles,
			Parent:        mother,
			MaxIncubation: int32(mother.Class.Incubation()),
			Viability:     clamp01(0.5 + 0.5*health),
			DietShift:     st.DietShift[i],
			LaidTick:      s.tick,
		}
		s.eggs.add(ex, ey, &egg)
		s.diag.RecordEggLaid()
		laid++
	}
	if laid > 0 {
		st.Energy[i] = clamp01(st.Energy[i] - cfg.Reproduction.ParentCost*0.5)
		st.DietShift[i] = genetics.NoShift
	}
}

// eggSite finds a tile within the site radius of (x, y) whose water flag
// matches and that no organism occupies.
func (s *Simulation) eggSite(x, y int, water bool) (int, int, bool) {
	t := s.terrain
	r := max(1, s.cfg.Eggs.SiteRadius)
	for attempt := 0; attempt < 4*r; attempt++ {
		nx := x + s.rng.Intn(2*r+1) - r
		ny := y + s.rng.Intn(2*r+1) - r
		if !s.occ.Empty(nx, ny) || t.Water[t.Index(nx, ny)] != water {
			continue
		}
		return nx, ny, true
	}
	return 0, 0, false
}

// updateEggs incubates every egg. Eggs lose viability under stress, may be
// eaten by adjacent predators and hatch or fail at full incubation.
func (s *Simulation) updateEggs() {
	e := s.eggs
	cfg := s.cfg.Eggs
	t := s.terrain
	e.remove = e.remove[:0]

	q := e.filter.Query()
	for q.Next() {
		pos, egg := q.Get()
		x, y := int(pos.X), int(pos.Y)
		tile := t.Index(x, y)

		egg.Incubation++
		stress := s.tempStress(tile, egg.Genome.TemperatureTolerance)
		if !t.Water[tile] && t.Moisture[tile] < 0.2 {
			stress += 0.5 * (0.2 - t.Moisture[tile]) / 0.2
		}
		egg.Viability = clamp01(egg.Viability - cfg.StressDecay*stress)

		if s.eggPredated(x, y, egg.Genome.Species) {
			s.diag.RecordEggResolved(false)
			e.remove = append(e.remove, q.Entity())
			continue
		}
		if egg.Incubation >= egg.MaxIncubation {
			s.diag.RecordEggResolved(s.hatch(x, y, egg))
			e.remove = append(e.remove, q.Entity())
		}
	}

	for _, ent := range e.remove {
		e.world.RemoveEntity(ent)
		e.count--
	}
}

// eggPredated rolls for destruction by carnivores next to the egg. A
// successful predator gains a little energy.
func (s *Simulation) eggPredated(x, y, species int) bool {
	st := s.store
	pred := -1
	n := 0
	for dy := -1; dy <= 1; dy++ {
		for dx := -1; dx <= 1; dx++ {
			j := s.occ.At(x+dx, y+dy)
			if j < 0 {
				continue
			}
			g := &st.Genome[j]
			if g.LifeType == traits.Animal && g.Diet.EatsMeat() && g.Species != species {
				n++
				pred = j
			}
		}
	}
	if n == 0 || s.rng.Float64() >= s.cfg.Eggs.PredationChance*float64(n) {
		return false
	}
	st.Energy[pred] = clamp01(st.Energy[pred] + 0.05)
	return true
}

// resolveHatch decides whether an egg of the given viability hatches.
func resolveHatch(roll, viability, minViability float64) bool {
	return viability > minViability && roll < viability
}

// hatch turns a fully incubated egg into an organism on its tile or a free
// neighbour. It reports whether a child was placed.
func (s *Simulation) hatch(x, y int, egg *components.Egg) bool {
	cfg := s.cfg
	if !resolveHatch(s.rng.Float64(), egg.Viability, cfg.Eggs.MinHatchViability) {
		return false
	}
	t := s.terrain
	class := egg.Genome.Class
	cx, cy := x, y
	if !s.occ.Empty(x, y) || !class.CanEnter(t.Water[t.Index(x, y)]) {
		free := s.freeNeighbors(x, y, class, s.cands)
		s.cands = free
		if len(free) == 0 {
			return false
		}
		cx, cy = t.XY(free[s.rng.Intn(len(free))])
	}

	c, ok := s.spawn(cx, cy, &egg.Genome, &egg.Alleles, cfg.Eggs.HatchEnergy, cfg.Reproduction.BirthHydration, egg.MotherID)
	if !ok {
		return false
	}
	s.diag.RecordBirth(traits.Animal)
	s.recordLineage(&egg.Parent, &egg.Genome, s.store.ID[c], egg.DietShift, cx, cy)
	return true
}
