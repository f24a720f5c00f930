// Package main provides CMA-ES optimization for biome simulation parameters.
package main

import (
	"github.com/pthm-cable/biome/config"
)

// ParamSpec defines a single optimizable parameter.
type ParamSpec struct {
	Name    string  // Human-readable name
	Path    string  // Config path for logging
	Min     float64 // Lower bound
	Max     float64 // Upper bound
	Default float64 // Default value

	get func(*config.Config) float64
	set func(*config.Config, float64)
}

// ParamVector holds the set of all optimizable parameters.
type ParamVector struct {
	Specs []ParamSpec
}

// NewParamVector creates the standard set of optimizable parameters: every
// behavior tuning weight plus the reproduction and metabolism constants that
// most affect population balance. Defaults come from base.
func NewParamVector(base *config.Config) *ParamVector {
	pv := &ParamVector{}
	for _, name := range config.TuningNames() {
		r := config.TuningRanges[name]
		pv.Specs = append(pv.Specs, ParamSpec{
			Name: name,
			Path: "behavior." + name,
			Min:  r.Min,
			Max:  r.Max,
			get: func(c *config.Config) float64 {
				v, _ := c.Behavior.Get(name)
				return v
			},
			set: func(c *config.Config, v float64) { c.Behavior.Set(name, v) },
		})
	}

	pv.Specs = append(pv.Specs,
		ParamSpec{
			Name: "attempt_chance", Path: "reproduction.attempt_chance", Min: 0.01, Max: 0.5,
			get: func(c *config.Config) float64 { return c.Reproduction.AttemptChance },
			set: func(c *config.Config, v float64) { c.Reproduction.AttemptChance = v },
		},
		ParamSpec{
			Name: "plant_seed_chance", Path: "reproduction.plant_seed_chance", Min: 0.001, Max: 0.1,
			get: func(c *config.Config) float64 { return c.Reproduction.PlantSeedChance },
			set: func(c *config.Config, v float64) { c.Reproduction.PlantSeedChance = v },
		},
		ParamSpec{
			Name: "plant_brake_ratio", Path: "reproduction.plant_brake_ratio", Min: 1, Max: 40,
			get: func(c *config.Config) float64 { return c.Reproduction.PlantBrakeRatio },
			set: func(c *config.Config, v float64) { c.Reproduction.PlantBrakeRatio = v },
		},
		ParamSpec{
			Name: "parent_cost", Path: "reproduction.parent_cost", Min: 0.05, Max: 0.5,
			get: func(c *config.Config) float64 { return c.Reproduction.ParentCost },
			set: func(c *config.Config, v float64) { c.Reproduction.ParentCost = v },
		},
		ParamSpec{
			Name: "plant_gain", Path: "metabolism.plant_gain", Min: 0.001, Max: 0.05,
			get: func(c *config.Config) float64 { return c.Metabolism.PlantGain },
			set: func(c *config.Config, v float64) { c.Metabolism.PlantGain = v },
		},
		ParamSpec{
			Name: "meat_digestion", Path: "feeding.meat_digestion", Min: 0.2, Max: 1,
			get: func(c *config.Config) float64 { return c.Feeding.MeatDigestion },
			set: func(c *config.Config, v float64) { c.Feeding.MeatDigestion = v },
		},
	)

	for i := range pv.Specs {
		s := &pv.Specs[i]
		s.Default = clampRange(s.get(base), s.Min, s.Max)
	}
	return pv
}

// Dim returns the number of parameters.
func (pv *ParamVector) Dim() int {
	return len(pv.Specs)
}

// DefaultVector returns the default parameter values as a slice.
func (pv *ParamVector) DefaultVector() []float64 {
	v := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		v[i] = spec.Default
	}
	return v
}

// Normalize converts raw parameter values to [0,1] range.
func (pv *ParamVector) Normalize(raw []float64) []float64 {
	normalized := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		normalized[i] = (raw[i] - spec.Min) / (spec.Max - spec.Min)
	}
	return normalized
}

// Denormalize converts [0,1] values back to raw parameter values.
func (pv *ParamVector) Denormalize(normalized []float64) []float64 {
	raw := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		raw[i] = spec.Min + normalized[i]*(spec.Max-spec.Min)
	}
	return raw
}

// Clamp ensures all values are within bounds.
func (pv *ParamVector) Clamp(v []float64) []float64 {
	clamped := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		clamped[i] = clampRange(v[i], spec.Min, spec.Max)
	}
	return clamped
}

// ApplyToConfig applies parameter values to a Config struct.
func (pv *ParamVector) ApplyToConfig(cfg *config.Config, values []float64) {
	for i, v := range pv.Clamp(values) {
		pv.Specs[i].set(cfg, v)
	}
}

// ExtractFromConfig extracts current parameter values from a Config struct.
func (pv *ParamVector) ExtractFromConfig(cfg *config.Config) []float64 {
	v := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		v[i] = spec.get(cfg)
	}
	return v
}

func clampRange(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
