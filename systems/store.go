package systems

import (
	"errors"
	"fmt"
	"math/bits"

	"github.com/pthm-cable/biome/genetics"
	"github.com/pthm-cable/biome/traits"
)

// ErrCapacity is returned when the backing storage cannot be allocated.
var ErrCapacity = errors.New("entity store capacity")

// maxStoreCapacity bounds a single store allocation.
const maxStoreCapacity = 1 << 22

// EntityStore is a fixed-capacity structure-of-arrays arena. Slots are
// addressed by dense indices, freed on death and reused last-in first-out.
// Dead slots stay in place and are skipped by iteration.
type EntityStore struct {
	capacity int
	high     int // One past the highest slot ever used
	live     int
	alive    []uint64
	free     []int32
	nextID   uint32

	ID       []uint32
	ParentID []uint32
	X, Y     []int32
	Genome   []genetics.Genome
	Alleles  []genetics.Alleles

	Energy     []float64
	Hydration  []float64
	Age        []int32
	Adult      []bool
	BirthTick  []int64
	ReproState []traits.ReproState
	ReproTimer []int32
	LastRepro  []int64

	PlantFeed   []float64 // Decaying history of successful grazing
	PreyFeed    []float64 // Decaying history of successful hunts
	Starvation  []float64 // Accumulated starvation stress in [0,1]
	DietPenalty []int32   // Ticks left in the post diet-shift readiness penalty
	DietShift   []genetics.DietShift

	// Step serials of the last birth and reproductive transition. An entity
	// whose mark equals the running step is skipped until the next step.
	BornStep  []uint64
	ReproStep []uint64
}

// NewEntityStore allocates a store for capacity entities.
func NewEntityStore(capacity int) (*EntityStore, error) {
	if capacity <= 0 || capacity > maxStoreCapacity {
		return nil, fmt.Errorf("allocating %d slots: %w", capacity, ErrCapacity)
	}
	return &EntityStore{
		capacity:    capacity,
		alive:       make([]uint64, (capacity+63)/64),
		free:        make([]int32, 0, 1024),
		ID:          make([]uint32, capacity),
		ParentID:    make([]uint32, capacity),
		X:           make([]int32, capacity),
		Y:           make([]int32, capacity),
		Genome:      make([]genetics.Genome, capacity),
		Alleles:     make([]genetics.Alleles, capacity),
		Energy:      make([]float64, capacity),
		Hydration:   make([]float64, capacity),
		Age:         make([]int32, capacity),
		Adult:       make([]bool, capacity),
		BirthTick:   make([]int64, capacity),
		ReproState:  make([]traits.ReproState, capacity),
		ReproTimer:  make([]int32, capacity),
		LastRepro:   make([]int64, capacity),
		PlantFeed:   make([]float64, capacity),
		PreyFeed:    make([]float64, capacity),
		Starvation:  make([]float64, capacity),
		DietPenalty: make([]int32, capacity),
		DietShift:   make([]genetics.DietShift, capacity),
		BornStep:    make([]uint64, capacity),
		ReproStep:   make([]uint64, capacity),
	}, nil
}

// Cap returns the hard capacity.
func (s *EntityStore) Cap() int { return s.capacity }

// Len returns the iteration bound: every live slot is below it.
func (s *EntityStore) Len() int { return s.high }

// Live returns the number of live entities.
func (s *EntityStore) Live() int { return s.live }

// Alive reports whether slot i holds a live entity.
func (s *EntityStore) Alive(i int) bool {
	if i < 0 || i >= s.high {
		return false
	}
	return s.alive[i>>6]&(1<<(uint(i)&63)) != 0
}

// Alloc claims a slot and resets its fields. It returns false at capacity.
func (s *EntityStore) Alloc() (int, bool) {
	var i int
	switch {
	case len(s.free) > 0:
		i = int(s.free[len(s.free)-1])
		s.free = s.free[:len(s.free)-1]
	case s.high < s.capacity:
		i = s.high
		s.high++
	default:
		return -1, false
	}
	s.nextID++
	s.reset(i)
	s.ID[i] = s.nextID
	s.alive[i>>6] |= 1 << (uint(i) & 63)
	s.live++
	return i, true
}

// Free releases slot i. Freeing a dead slot is a no-op.
func (s *EntityStore) Free(i int) {
	if !s.Alive(i) {
		return
	}
	s.alive[i>>6] &^= 1 << (uint(i) & 63)
	s.free = append(s.free, int32(i))
	s.live--
}

func (s *EntityStore) reset(i int) {
	s.ParentID[i] = 0
	s.X[i], s.Y[i] = 0, 0
	s.Genome[i] = genetics.Genome{}
	s.Alleles[i] = genetics.Alleles{}
	s.Energy[i], s.Hydration[i] = 0, 0
	s.Age[i] = 0
	s.Adult[i] = false
	s.BirthTick[i] = 0
	s.ReproState[i] = traits.Ready
	s.ReproTimer[i] = 0
	s.LastRepro[i] = 0
	s.PlantFeed[i], s.PreyFeed[i] = 0, 0
	s.Starvation[i] = 0
	s.DietPenalty[i] = 0
	s.DietShift[i] = genetics.NoShift
	s.BornStep[i], s.ReproStep[i] = 0, 0
}

// LiveBits returns the number of set liveness bits. It always equals Live.
func (s *EntityStore) LiveBits() int {
	n := 0
	for _, w := range s.alive {
		n += bits.OnesCount64(w)
	}
	return n
}

// OccupancyGrid maps each tile to the owning entity index, or -1.
type OccupancyGrid struct {
	width, height int
	cells         []int32
}

// NewOccupancyGrid creates an empty grid.
func NewOccupancyGrid(width, height int) *OccupancyGrid {
	g := &OccupancyGrid{width: width, height: height, cells: make([]int32, width*height)}
	for i := range g.cells {
		g.cells[i] = -1
	}
	return g
}

// At returns the entity index at (x, y), or -1.
func (g *OccupancyGrid) At(x, y int) int {
	if x < 0 || y < 0 || x >= g.width || y >= g.height {
		return -1
	}
	return int(g.cells[y*g.width+x])
}

// Empty reports whether (x, y) is on the map and unoccupied.
func (g *OccupancyGrid) Empty(x, y int) bool {
	if x < 0 || y < 0 || x >= g.width || y >= g.height {
		return false
	}
	return g.cells[y*g.width+x] < 0
}

// Set claims (x, y) for entity i.
func (g *OccupancyGrid) Set(x, y, i int) { g.cells[y*g.width+x] = int32(i) }

// Clear empties (x, y).
func (g *OccupancyGrid) Clear(x, y int) { g.cells[y*g.width+x] = -1 }

// Cells exposes the raw grid for snapshot comparison.
func (g *OccupancyGrid) Cells() []int32 { return g.cells }
