// Package config provides configuration loading and access for the simulation.
package config

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds all simulation configuration parameters.
type Config struct {
	World        WorldConfig        `yaml:"world" toml:"world"`
	Population   PopulationConfig   `yaml:"population" toml:"population"`
	Metabolism   MetabolismConfig   `yaml:"metabolism" toml:"metabolism"`
	Behavior     BehaviorTuning     `yaml:"behavior" toml:"behavior"`
	Feeding      FeedingConfig      `yaml:"feeding" toml:"feeding"`
	Reproduction ReproductionConfig `yaml:"reproduction" toml:"reproduction"`
	Eggs         EggConfig          `yaml:"eggs" toml:"eggs"`
	Care         CareConfig         `yaml:"care" toml:"care"`
	Mutation     MutationConfig     `yaml:"mutation" toml:"mutation"`
	Weather      WeatherConfig      `yaml:"weather" toml:"weather"`
	Fire         FireConfig         `yaml:"fire" toml:"fire"`
	Analytics    AnalyticsConfig    `yaml:"analytics" toml:"analytics"`
	Runner       RunnerConfig       `yaml:"runner" toml:"runner"`
	Telemetry    TelemetryConfig    `yaml:"telemetry" toml:"telemetry"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-" toml:"-"`
}

// WorldConfig holds terrain generation parameters.
type WorldConfig struct {
	MinSize          int     `yaml:"min_size" toml:"min_size"` // Width/height clamp lower bound
	MaxSize          int     `yaml:"max_size" toml:"max_size"` // Width/height clamp upper bound
	SeaLevel         float64 `yaml:"sea_level" toml:"sea_level"`
	ElevationScale   float64 `yaml:"elevation_scale" toml:"elevation_scale"` // Noise frequency for elevation
	ClimateScale     float64 `yaml:"climate_scale" toml:"climate_scale"`     // Noise frequency for temperature/humidity
	Octaves          int     `yaml:"octaves" toml:"octaves"`
	FalloffStrength  float64 `yaml:"falloff_strength" toml:"falloff_strength"` // Radial edge lowering, 0 disables
	RiverCount       int     `yaml:"river_count" toml:"river_count"`
	RiverSamples     int     `yaml:"river_samples" toml:"river_samples"` // Candidate tiles scored per river seed
	RiverMaxLength   int     `yaml:"river_max_length" toml:"river_max_length"`
	LakeNeighbors    int     `yaml:"lake_neighbors" toml:"lake_neighbors"` // Water neighbours needed to promote a basin
	LakePasses       int     `yaml:"lake_passes" toml:"lake_passes"`
	SmoothingPasses  int     `yaml:"smoothing_passes" toml:"smoothing_passes"`
	MoistureRange    float64 `yaml:"moisture_range" toml:"moisture_range"` // moisture = 1 - distance/range
	InteriorDesertAt int     `yaml:"interior_desert_at" toml:"interior_desert_at"` // Water distance at which deserts are re-admitted
	DayTicks         int     `yaml:"day_ticks" toml:"day_ticks"`
	DaylightFraction float64 `yaml:"daylight_fraction" toml:"daylight_fraction"`
}

// PopulationConfig holds store and seeding parameters.
type PopulationConfig struct {
	Capacity         int     `yaml:"capacity" toml:"capacity"`             // Hard entity cap
	SpawnAttempts    int     `yaml:"spawn_attempts" toml:"spawn_attempts"` // Random tile tries per founder
	InitialEnergy    float64 `yaml:"initial_energy" toml:"initial_energy"`
	InitialHydration float64 `yaml:"initial_hydration" toml:"initial_hydration"`
	AquaticFraction  float64 `yaml:"aquatic_fraction" toml:"aquatic_fraction"` // Share of founders seeded as fish
}

// MetabolismConfig holds per-tick energy and hydration flows.
type MetabolismConfig struct {
	PlantCost        float64 `yaml:"plant_cost" toml:"plant_cost"`
	PlantGain        float64 `yaml:"plant_gain" toml:"plant_gain"`       // Photosynthesis at full regen and daylight
	PlantWaterGain   float64 `yaml:"plant_water_gain" toml:"plant_water_gain"` // Hydration uptake at moisture 1
	PlantWaterDrain  float64 `yaml:"plant_water_drain" toml:"plant_water_drain"`
	AnimalCost       float64 `yaml:"animal_cost" toml:"animal_cost"`   // Base cost, scaled by size and tuning
	MoveCost         float64 `yaml:"move_cost" toml:"move_cost"`
	HydrationDrain   float64 `yaml:"hydration_drain" toml:"hydration_drain"`
	TemperatureCost  float64 `yaml:"temperature_cost" toml:"temperature_cost"` // Extra drain at full temperature stress
	DrinkAmount      float64 `yaml:"drink_amount" toml:"drink_amount"`
	StarvationGain   float64 `yaml:"starvation_gain" toml:"starvation_gain"`
	StarvationDecay  float64 `yaml:"starvation_decay" toml:"starvation_decay"`
	HungryBelow      float64 `yaml:"hungry_below" toml:"hungry_below"` // Energy below which starvation stress builds
	ExposureLimit    float64 `yaml:"exposure_limit" toml:"exposure_limit"` // Temperature stress that kills outright
}

// FeedingConfig holds herbivory and predation constants.
type FeedingConfig struct {
	PlantDigestion    float64 `yaml:"plant_digestion" toml:"plant_digestion"`
	MeatDigestion     float64 `yaml:"meat_digestion" toml:"meat_digestion"`
	OmnivorePlantRate float64 `yaml:"omnivore_plant_rate" toml:"omnivore_plant_rate"` // Digestion multiplier for omnivore grazing
	AttackFailPenalty float64 `yaml:"attack_fail_penalty" toml:"attack_fail_penalty"`
	PlantDeathEnergy  float64 `yaml:"plant_death_energy" toml:"plant_death_energy"` // Grazed plants at or below this die
	DriveThreshold    float64 `yaml:"drive_threshold" toml:"drive_threshold"`       // Minimum drive for target search
	Satiation         float64 `yaml:"satiation" toml:"satiation"`
	PreySizeRatio     float64 `yaml:"prey_size_ratio" toml:"prey_size_ratio"` // Prey must be smaller than attacker * this
	MaxVisionRadius   int     `yaml:"max_vision_radius" toml:"max_vision_radius"`
	MinVisionRadius   int     `yaml:"min_vision_radius" toml:"min_vision_radius"`
}

// ReproductionConfig holds readiness, mating, gestation and seeding parameters.
type ReproductionConfig struct {
	BaseFertility       float64 `yaml:"base_fertility" toml:"base_fertility"` // rng < base + fi*fj
	AttemptChance       float64 `yaml:"attempt_chance" toml:"attempt_chance"`
	GestationBase       int     `yaml:"gestation_base" toml:"gestation_base"`
	GestationSizeScale  int     `yaml:"gestation_size_scale" toml:"gestation_size_scale"`
	GestationUpkeep     float64 `yaml:"gestation_upkeep" toml:"gestation_upkeep"`
	MaxLitter           int     `yaml:"max_litter" toml:"max_litter"`
	CooldownJitter      float64 `yaml:"cooldown_jitter" toml:"cooldown_jitter"`
	MiscarriageCooldown float64 `yaml:"miscarriage_cooldown" toml:"miscarriage_cooldown"` // Cooldown multiplier
	MiscarriageLoss     float64 `yaml:"miscarriage_loss" toml:"miscarriage_loss"`
	BirthEnergy         float64 `yaml:"birth_energy" toml:"birth_energy"`
	BirthHydration      float64 `yaml:"birth_hydration" toml:"birth_hydration"`
	ParentCost          float64 `yaml:"parent_cost" toml:"parent_cost"`
	DietShiftTicks      int     `yaml:"diet_shift_ticks" toml:"diet_shift_ticks"`
	DietShiftPenalty    float64 `yaml:"diet_shift_penalty" toml:"diet_shift_penalty"` // Readiness multiplier while penalised
	CompatibleDistance  float64 `yaml:"compatible_distance" toml:"compatible_distance"`
	DivergentDistance   float64 `yaml:"divergent_distance" toml:"divergent_distance"`

	PlantSeedChance   float64 `yaml:"plant_seed_chance" toml:"plant_seed_chance"`
	PlantMinEnergy    float64 `yaml:"plant_min_energy" toml:"plant_min_energy"`
	PlantMinHydration float64 `yaml:"plant_min_hydration" toml:"plant_min_hydration"`
	PlantSeedCost     float64 `yaml:"plant_seed_cost" toml:"plant_seed_cost"`
	PlantSeedRadius   int     `yaml:"plant_seed_radius" toml:"plant_seed_radius"` // Radius at seed spread 1
	PlantCrowdRadius  int     `yaml:"plant_crowd_radius" toml:"plant_crowd_radius"`
	PlantBrakeRatio   float64 `yaml:"plant_brake_ratio" toml:"plant_brake_ratio"` // Plant:animal ratio that halves seeding
}

// EggConfig holds external incubation parameters.
type EggConfig struct {
	Max               int     `yaml:"max" toml:"max"`
	MinHatchViability float64 `yaml:"min_hatch_viability" toml:"min_hatch_viability"`
	StressDecay       float64 `yaml:"stress_decay" toml:"stress_decay"` // Viability lost per tick at full stress
	PredationChance   float64 `yaml:"predation_chance" toml:"predation_chance"` // Per adjacent predator per tick
	SiteRadius        int     `yaml:"site_radius" toml:"site_radius"`
	HatchEnergy       float64 `yaml:"hatch_energy" toml:"hatch_energy"`
}

// CareConfig holds parental care parameters.
type CareConfig struct {
	Radius   int     `yaml:"radius" toml:"radius"`
	Transfer float64 `yaml:"transfer" toml:"transfer"` // Energy/hydration given per tick at intensity 1
	Cost     float64 `yaml:"cost" toml:"cost"`         // Fraction of the transfer paid by the parent
}

// MutationConfig holds mutation, speciation and diet drift parameters.
type MutationConfig struct {
	Jitter             int     `yaml:"jitter" toml:"jitter"` // Max allele perturbation
	SpeciationDistance float64 `yaml:"speciation_distance" toml:"speciation_distance"`
	SpeciesMax         int     `yaml:"species_max" toml:"species_max"`
	SpeciesOffsetMax   int     `yaml:"species_offset_max" toml:"species_offset_max"`
	LogSize            int     `yaml:"log_size" toml:"log_size"`
	DietDriftChance    float64 `yaml:"diet_drift_chance" toml:"diet_drift_chance"`
	CategoricalChance  float64 `yaml:"categorical_chance" toml:"categorical_chance"` // Activity/biome flip per birth
}

// WeatherConfig holds rain cell and lightning parameters.
type WeatherConfig struct {
	RainCells       int     `yaml:"rain_cells" toml:"rain_cells"`
	RadiusMin       float64 `yaml:"radius_min" toml:"radius_min"` // As a fraction of the shorter map side
	RadiusMax       float64 `yaml:"radius_max" toml:"radius_max"`
	Period          float64 `yaml:"period" toml:"period"` // Ticks for one drift cycle
	LightningChance float64 `yaml:"lightning_chance" toml:"lightning_chance"`
}

// FireConfig holds fire automaton parameters.
type FireConfig struct {
	TTL              int     `yaml:"ttl" toml:"ttl"`
	RainDecay        int     `yaml:"rain_decay" toml:"rain_decay"` // Extra TTL decay under full rain
	MaxSpread        int     `yaml:"max_spread" toml:"max_spread"`
	DrynessThreshold float64 `yaml:"dryness_threshold" toml:"dryness_threshold"`
	FuelRadius       int     `yaml:"fuel_radius" toml:"fuel_radius"`
	PlantDamage      float64 `yaml:"plant_damage" toml:"plant_damage"`
	AnimalDamage     float64 `yaml:"animal_damage" toml:"animal_damage"`
	HydrationDamage  float64 `yaml:"hydration_damage" toml:"hydration_damage"`
}

// AnalyticsConfig holds species statistics and diagnostics parameters.
type AnalyticsConfig struct {
	SpeciesInterval int `yaml:"species_interval" toml:"species_interval"` // Ticks between full species scans
	HistoryDays     int `yaml:"history_days" toml:"history_days"`
	RecentEvents    int `yaml:"recent_events" toml:"recent_events"` // Mutation events kept in species details
}

// RunnerConfig holds wall-clock stepping parameters.
type RunnerConfig struct {
	TicksPerSecond float64 `yaml:"ticks_per_second" toml:"ticks_per_second"`
	MaxCatchUp     int     `yaml:"max_catch_up" toml:"max_catch_up"`
}

// TelemetryConfig holds headless output parameters.
type TelemetryConfig struct {
	StatsInterval int `yaml:"stats_interval" toml:"stats_interval"` // Ticks between species CSV rows (0 = daily)
}

// DerivedConfig holds values computed from the loaded config.
type DerivedConfig struct {
	DaylightTicks int     // DayTicks * DaylightFraction
	TickSeconds   float64 // 1 / TicksPerSecond
}

// Default returns the embedded default configuration.
func Default() *Config {
	cfg, err := Load("")
	if err != nil {
		panic(fmt.Sprintf("config: embedded defaults are invalid: %v", err))
	}
	return cfg
}

// Load loads configuration from a YAML or TOML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if path != "" {
		if err := cfg.merge(path); err != nil {
			return nil, err
		}
	}

	cfg.computeDerived()
	return cfg, nil
}

// merge overlays a user file onto cfg. Only keys present in the file are overwritten.
func (c *Config) merge(path string) error {
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		if _, err := toml.DecodeFile(path, c); err != nil {
			return fmt.Errorf("parsing config file: %w", err)
		}
		return nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parsing config file: %w", err)
	}
	return nil
}

// computeDerived calculates values derived from loaded config and clamps
// values that have a fixed valid range.
func (c *Config) computeDerived() {
	if c.World.MinSize < 1 {
		c.World.MinSize = 1
	}
	if c.World.MaxSize < c.World.MinSize {
		c.World.MaxSize = c.World.MinSize
	}
	if c.World.DayTicks < 2 {
		c.World.DayTicks = 2
	}
	c.World.DaylightFraction = clamp(c.World.DaylightFraction, 0, 1)
	c.Derived.DaylightTicks = int(float64(c.World.DayTicks) * c.World.DaylightFraction)

	if c.Runner.TicksPerSecond <= 0 {
		c.Runner.TicksPerSecond = 30
	}
	c.Derived.TickSeconds = 1 / c.Runner.TicksPerSecond

	if c.Mutation.SpeciesMax < 2 {
		c.Mutation.SpeciesMax = 2
	}
	if c.Mutation.LogSize < 1 {
		c.Mutation.LogSize = 1
	}
	if c.Analytics.SpeciesInterval < 1 {
		c.Analytics.SpeciesInterval = 1
	}
	c.Behavior.Clamp()
}

// ClampSize clamps a requested world dimension to the configured range.
func (c *Config) ClampSize(n int) int {
	if n < c.World.MinSize {
		return c.World.MinSize
	}
	if n > c.World.MaxSize {
		return c.World.MaxSize
	}
	return n
}

// Clone returns a deep copy of the configuration.
func (c *Config) Clone() *Config {
	cp := *c
	return &cp
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
