// Package traits defines the categorical attributes of organisms and the
// per-class tables that drive their life cycle.
package traits

// LifeType separates plants from animals.
type LifeType uint8

const (
	Plant LifeType = iota
	Animal
)

func (l LifeType) String() string {
	switch l {
	case Plant:
		return "plant"
	case Animal:
		return "animal"
	}
	return "unknown"
}

// Class is an animal body plan. Plants carry ClassNone.
type Class uint8

const (
	ClassNone Class = iota
	Fish
	Mammal
	Bird
	Reptile
	Amphibian
	Insect
	NumClasses
)

// AnimalClasses lists every class an animal can have.
var AnimalClasses = []Class{Fish, Mammal, Bird, Reptile, Amphibian, Insect}

func (c Class) String() string {
	switch c {
	case ClassNone:
		return "none"
	case Fish:
		return "fish"
	case Mammal:
		return "mammal"
	case Bird:
		return "bird"
	case Reptile:
		return "reptile"
	case Amphibian:
		return "amphibian"
	case Insect:
		return "insect"
	}
	return "unknown"
}

// Diet is what an organism feeds on.
type Diet uint8

const (
	Photosynthesis Diet = iota
	Herbivore
	Omnivore
	Carnivore
	NumDiets
)

func (d Diet) String() string {
	switch d {
	case Photosynthesis:
		return "photosynthesis"
	case Herbivore:
		return "herbivore"
	case Omnivore:
		return "omnivore"
	case Carnivore:
		return "carnivore"
	}
	return "unknown"
}

// EatsPlants reports whether the diet includes grazing.
func (d Diet) EatsPlants() bool { return d == Herbivore || d == Omnivore }

// EatsMeat reports whether the diet includes predation.
func (d Diet) EatsMeat() bool { return d == Carnivore || d == Omnivore }

// ReproMode is sexual or asexual reproduction.
type ReproMode uint8

const (
	Asexual ReproMode = iota
	Sexual
)

func (r ReproMode) String() string {
	if r == Sexual {
		return "sexual"
	}
	return "asexual"
}

// Activity is the daily activity cycle.
type Activity uint8

const (
	Diurnal Activity = iota
	Nocturnal
	Cathemeral
	NumActivities
)

func (a Activity) String() string {
	switch a {
	case Diurnal:
		return "diurnal"
	case Nocturnal:
		return "nocturnal"
	case Cathemeral:
		return "cathemeral"
	}
	return "unknown"
}

// Awake reports whether the cycle is active at the given time of day.
func (a Activity) Awake(isDay bool) bool {
	switch a {
	case Diurnal:
		return isDay
	case Nocturnal:
		return !isDay
	}
	return true
}

// ReproState is the reproduction state machine position.
type ReproState uint8

const (
	Ready ReproState = iota
	Gestating
	Cooldown
)

func (r ReproState) String() string {
	switch r {
	case Ready:
		return "ready"
	case Gestating:
		return "gestating"
	case Cooldown:
		return "cooldown"
	}
	return "unknown"
}

// DeathCause attributes a death for diagnostics.
type DeathCause uint8

const (
	CauseAge DeathCause = iota
	CauseStarvation
	CauseDehydration
	CausePredation
	CauseFire
	CauseGrazed
	CauseExposure
	NumCauses
)

func (c DeathCause) String() string {
	switch c {
	case CauseAge:
		return "age"
	case CauseStarvation:
		return "starvation"
	case CauseDehydration:
		return "dehydration"
	case CausePredation:
		return "predation"
	case CauseFire:
		return "fire"
	case CauseGrazed:
		return "grazed"
	case CauseExposure:
		return "exposure"
	}
	return "unknown"
}
