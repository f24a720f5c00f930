package traits

// LaysEggs reports whether the class reproduces through external eggs.
func (c Class) LaysEggs() bool {
	switch c {
	case Fish, Bird, Reptile, Amphibian, Insect:
		return true
	}
	return false
}

// Aquatic classes cannot leave water.
func (c Class) Aquatic() bool { return c == Fish }

// Amphibious classes may enter water as well as land.
func (c Class) Amphibious() bool { return c == Amphibian || c == Bird }

// CanEnter reports whether the class may occupy a tile with the given water flag.
func (c Class) CanEnter(water bool) bool {
	if c.Aquatic() {
		return water
	}
	if water {
		return c.Amphibious()
	}
	return true
}

// WaterEggs reports whether the class lays its eggs in water.
func (c Class) WaterEggs() bool { return c == Fish || c == Amphibian }

// ClutchSize is the number of eggs laid per mating.
func (c Class) ClutchSize() int {
	switch c {
	case Fish:
		return 6
	case Bird:
		return 3
	case Reptile:
		return 4
	case Amphibian:
		return 5
	case Insect:
		return 8
	}
	return 0
}

// Incubation is the egg incubation time in ticks.
func (c Class) Incubation() int {
	switch c {
	case Fish:
		return 300
	case Bird:
		return 600
	case Reptile:
		return 700
	case Amphibian:
		return 400
	case Insect:
		return 200
	}
	return 0
}

// Cooldown is the base post-reproduction cooldown in ticks.
func (c Class) Cooldown() int {
	switch c {
	case Mammal:
		return 900
	case Fish:
		return 500
	case Bird:
		return 700
	case Reptile:
		return 800
	case Amphibian:
		return 600
	case Insect:
		return 300
	}
	return 600
}

// CareIntensity scales the energy trickle from parents to juveniles.
func (c Class) CareIntensity() float64 {
	switch c {
	case Mammal:
		return 1.0
	case Bird:
		return 0.8
	case Reptile:
		return 0.15
	case Amphibian:
		return 0.1
	case Fish:
		return 0.1
	}
	return 0
}

// BaseSpeed is the per-tick move probability before motive boosts.
func (c Class) BaseSpeed() float64 {
	switch c {
	case Fish:
		return 0.55
	case Mammal:
		return 0.5
	case Bird:
		return 0.65
	case Reptile:
		return 0.35
	case Amphibian:
		return 0.4
	case Insect:
		return 0.6
	}
	return 0
}

// CarnivoryGate is the minimum size, vision and hostility phenotype
// an animal of this class needs before its diet may drift to carnivory.
type CarnivoryGate struct {
	Size, Vision, Hostility float64
}

// Gate returns the class carnivory gate.
func (c Class) Gate() CarnivoryGate {
	switch c {
	case Mammal:
		return CarnivoryGate{0.45, 0.3, 0.4}
	case Bird:
		return CarnivoryGate{0.4, 0.5, 0.35}
	case Reptile:
		return CarnivoryGate{0.4, 0.25, 0.45}
	case Fish:
		return CarnivoryGate{0.35, 0.3, 0.4}
	case Amphibian:
		return CarnivoryGate{0.3, 0.25, 0.35}
	case Insect:
		return CarnivoryGate{0.2, 0.2, 0.5}
	}
	return CarnivoryGate{1, 1, 1}
}

// Admits reports whether the phenotype clears the gate.
func (g CarnivoryGate) Admits(size, vision, hostility float64) bool {
	return size >= g.Size && vision >= g.Vision && hostility >= g.Hostility
}
