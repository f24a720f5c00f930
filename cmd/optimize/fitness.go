package main

import (
	"math"
	"sync"

	"github.com/pthm-cable/biome/config"
	"github.com/pthm-cable/biome/game"
	"github.com/pthm-cable/biome/telemetry"
)

// WorldSpec is the founding population and map size for each run.
type WorldSpec struct {
	Plants, Animals int
	Width, Height   int
}

// FitnessEvaluator runs headless simulations and computes fitness.
type FitnessEvaluator struct {
	params     *ParamVector
	maxTicks   int64
	seeds      []int64
	baseConfig *config.Config
	world      WorldSpec

	mu          sync.Mutex
	lastQuality float64 // quality from most recent Evaluate call
}

// NewFitnessEvaluator creates a new evaluator.
func NewFitnessEvaluator(params *ParamVector, maxTicks int64, seeds []int64, baseCfg *config.Config, world WorldSpec) *FitnessEvaluator {
	return &FitnessEvaluator{
		params:     params,
		maxTicks:   maxTicks,
		seeds:      seeds,
		baseConfig: baseCfg,
		world:      world,
	}
}

// LastQuality returns the quality score from the most recent evaluation.
func (fe *FitnessEvaluator) LastQuality() float64 {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	return fe.lastQuality
}

// Minimum viable population: if either kingdom stays below this for
// extinctionGraceTicks consecutive ticks, the run counts as collapsed.
const (
	minViablePop         = 5
	extinctionGraceTicks = 1200 // one default day
	warmupTicks          = 600
)

// runResult holds the results from a single simulation run.
type runResult struct {
	survivalTicks int64                            // ticks before collapse (or maxTicks if survived)
	days          []telemetry.DailyPopulationStats // collected via the day callback
	species       []telemetry.SpeciesStats         // last species scan
}

// seedResult holds the result from one seed evaluation.
type seedResult struct {
	fitness float64
	quality float64
}

// Evaluate computes fitness for a parameter vector (lower = better).
// Fitness is negative survival ticks scaled by ecosystem quality.
func (fe *FitnessEvaluator) Evaluate(x []float64) float64 {
	results := make([]seedResult, len(fe.seeds))
	var wg sync.WaitGroup

	for i, seed := range fe.seeds {
		wg.Add(1)
		go func(idx int, s int64) {
			defer wg.Done()
			result := fe.runSimulation(x, s)
			quality := computeQuality(result)
			results[idx] = seedResult{
				fitness: -(float64(result.survivalTicks) * (1.0 + 0.2*quality)),
				quality: quality,
			}
		}(i, seed)
	}
	wg.Wait()

	var totalFitness, totalQuality float64
	for _, r := range results {
		totalFitness += r.fitness
		totalQuality += r.quality
	}
	n := float64(len(fe.seeds))

	fe.mu.Lock()
	fe.lastQuality = totalQuality / n
	fe.mu.Unlock()

	return totalFitness / n
}

// runSimulation executes a single headless simulation run.
// Runs until collapse or maxTicks, whichever comes first.
func (fe *FitnessEvaluator) runSimulation(x []float64, seed int64) *runResult {
	cfg := fe.baseConfig.Clone()
	fe.params.ApplyToConfig(cfg, x)

	result := &runResult{}
	sim := game.New(cfg, nil)
	sim.SetDayCallback(func(d telemetry.DailyPopulationStats) {
		result.days = append(result.days, d)
	})
	if err := sim.Init(seed, fe.world.Plants, fe.world.Animals, fe.world.Width, fe.world.Height); err != nil {
		return result
	}

	var plantsBelow, animalsBelow int
	for sim.Tick() < fe.maxTicks {
		sim.StepOnce()

		tick := sim.Tick()
		if tick < warmupTicks {
			continue
		}
		c := sim.Counts()

		if c.Plants == 0 || c.Animals == 0 {
			result.survivalTicks = tick
			result.species = sim.SpeciesStats()
			return result
		}

		plantsBelow = belowFor(c.Plants, plantsBelow)
		animalsBelow = belowFor(c.Animals, animalsBelow)
		if plantsBelow >= extinctionGraceTicks || animalsBelow >= extinctionGraceTicks {
			result.survivalTicks = tick
			result.species = sim.SpeciesStats()
			return result
		}
	}

	result.survivalTicks = fe.maxTicks
	result.species = sim.SpeciesStats()
	return result
}

func belowFor(pop, ticks int) int {
	if pop < minViablePop {
		return ticks + 1
	}
	return 0
}

// Quality component weights.
const (
	qualityWeightDiversity = 0.35
	qualityWeightStability = 0.25
	qualityWeightEnergy    = 0.25
	qualityWeightTrophic   = 0.15

	qualityWarmupDays = 1 // skip first N days
)

// computeQuality computes ecosystem quality in [0, 1] from daily stats and
// the final species scan.
func computeQuality(r *runResult) float64 {
	if len(r.days) <= qualityWarmupDays {
		return 0
	}
	valid := r.days[qualityWarmupDays:]

	animals := make([]float64, 0, len(valid))
	plants := make([]float64, 0, len(valid))
	var energySum, trophicSum float64
	var count int
	for _, d := range valid {
		if d.Animals < minViablePop || d.Plants < minViablePop {
			continue
		}
		animals = append(animals, float64(d.Animals))
		plants = append(plants, float64(d.Plants))

		energySum += math.Exp(-math.Pow((d.AnimalEnergyP50-0.55)/0.2, 2))

		ratio := float64(d.Plants) / float64(d.Animals)
		logErr := math.Log(ratio / 8.0)
		trophicSum += math.Exp(-logErr * logErr)
		count++
	}
	if count == 0 {
		return 0
	}

	stabilityScore := 0.0
	if len(animals) >= 2 {
		cvA, cvP := cv(animals), cv(plants)
		stabilityScore = math.Exp(-(cvA*cvA + cvP*cvP))
	}

	quality := qualityWeightDiversity*diversity(r.species) +
		qualityWeightStability*stabilityScore +
		qualityWeightEnergy*energySum/float64(count) +
		qualityWeightTrophic*trophicSum/float64(count)
	return clamp01(quality)
}

// diversity is the Shannon evenness of animal species populations.
func diversity(stats []telemetry.SpeciesStats) float64 {
	var pops []float64
	var total float64
	for _, s := range stats {
		if s.LifeType != "animal" || s.Population == 0 {
			continue
		}
		pops = append(pops, float64(s.Population))
		total += float64(s.Population)
	}
	if len(pops) < 2 {
		return 0
	}
	var h float64
	for _, p := range pops {
		q := p / total
		h -= q * math.Log(q)
	}
	return h / math.Log(float64(len(pops)))
}

// cv computes the coefficient of variation (std/mean) for a slice of values.
func cv(values []float64) float64 {
	mean, std := telemetry.MeanStd(values)
	if mean == 0 {
		return 0
	}
	return std / mean
}

// clamp01 clamps x to [0, 1].
func clamp01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}
