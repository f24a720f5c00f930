package config

import "sort"

// BehaviorTuning is the runtime-adjustable set of weights that drive motive
// scoring and the feeding/reproduction thresholds.
type BehaviorTuning struct {
	ThirstWeight            float64 `yaml:"thirst_weight" toml:"thirst_weight"`
	HungerWeight            float64 `yaml:"hunger_weight" toml:"hunger_weight"`
	MateWeight              float64 `yaml:"mate_weight" toml:"mate_weight"`
	FearWeight              float64 `yaml:"fear_weight" toml:"fear_weight"`
	MotiveMoveBoostCap      float64 `yaml:"motive_move_boost_cap" toml:"motive_move_boost_cap"`
	OpportunisticFeedChance float64 `yaml:"opportunistic_feed_chance" toml:"opportunistic_feed_chance"`
	ReproReadinessThreshold float64 `yaml:"repro_readiness_threshold" toml:"repro_readiness_threshold"`
	AnimalMetabolism        float64 `yaml:"animal_metabolism" toml:"animal_metabolism"`
	PlantBiteAmount         float64 `yaml:"plant_bite_amount" toml:"plant_bite_amount"`
	AttackEnergyGain        float64 `yaml:"attack_energy_gain" toml:"attack_energy_gain"`
}

// TuningRange is the valid interval for one tuning parameter.
type TuningRange struct {
	Min, Max float64
}

// TuningRanges lists the valid range of every tuning parameter by name.
var TuningRanges = map[string]TuningRange{
	"thirst_weight":             {0, 3},
	"hunger_weight":             {0, 3},
	"mate_weight":               {0, 3},
	"fear_weight":               {0, 3},
	"motive_move_boost_cap":     {0, 1},
	"opportunistic_feed_chance": {0, 1},
	"repro_readiness_threshold": {0, 1},
	"animal_metabolism":         {0.1, 3},
	"plant_bite_amount":         {0.01, 0.5},
	"attack_energy_gain":        {0.05, 1},
}

// TuningNames returns the tuning parameter names in sorted order.
func TuningNames() []string {
	names := make([]string, 0, len(TuningRanges))
	for name := range TuningRanges {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (b *BehaviorTuning) field(name string) *float64 {
	switch name {
	case "thirst_weight":
		return &b.ThirstWeight
	case "hunger_weight":
		return &b.HungerWeight
	case "mate_weight":
		return &b.MateWeight
	case "fear_weight":
		return &b.FearWeight
	case "motive_move_boost_cap":
		return &b.MotiveMoveBoostCap
	case "opportunistic_feed_chance":
		return &b.OpportunisticFeedChance
	case "repro_readiness_threshold":
		return &b.ReproReadinessThreshold
	case "animal_metabolism":
		return &b.AnimalMetabolism
	case "plant_bite_amount":
		return &b.PlantBiteAmount
	case "attack_energy_gain":
		return &b.AttackEnergyGain
	}
	return nil
}

// Set writes one named parameter, clamped to its range.
// Unknown names are ignored and reported as false.
func (b *BehaviorTuning) Set(name string, v float64) bool {
	f := b.field(name)
	if f == nil {
		return false
	}
	r := TuningRanges[name]
	*f = clamp(v, r.Min, r.Max)
	return true
}

// Get returns one named parameter.
func (b *BehaviorTuning) Get(name string) (float64, bool) {
	f := b.field(name)
	if f == nil {
		return 0, false
	}
	return *f, true
}

// Values returns all parameters keyed by name.
func (b BehaviorTuning) Values() map[string]float64 {
	out := make(map[string]float64, len(TuningRanges))
	for name := range TuningRanges {
		out[name] = *b.field(name)
	}
	return out
}

// Apply writes every known key in values, clamping each.
func (b *BehaviorTuning) Apply(values map[string]float64) {
	for name, v := range values {
		b.Set(name, v)
	}
}

// Clamp forces every parameter into its range.
func (b *BehaviorTuning) Clamp() {
	for name, r := range TuningRanges {
		f := b.field(name)
		*f = clamp(*f, r.Min, r.Max)
	}
}
