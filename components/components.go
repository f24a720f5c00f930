// Package components defines ECS components for the simulation.
package components

import (
	"github.com/pthm-cable/biome/genetics"
)

// Position represents an egg's tile position.
type Position struct {
	X, Y int32
}

// Egg holds an externally incubated offspring.
type Egg struct {
	ID       uint32
	MotherID uint32
	FatherID uint32 // Zero for asexual clutches

	// Offspring genome and its encoded allele pairs
	Genome  genetics.Genome
	Alleles genetics.Alleles

	// Parent genome the offspring is compared against at hatch
	Parent genetics.Genome

	Incubation    int32 // Ticks incubated so far
	MaxIncubation int32
	Viability     float64 // [0,1], decays under temperature/moisture stress

	DietShift genetics.DietShift // Set when the mother's diet was forced to shift
	LaidTick  int64
}
