// Package main searches behavior tuning and balance parameters with CMA-ES
// for settings that keep a diverse ecosystem alive.
package main

import (
	"encoding/csv"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gonum.org/v1/gonum/optimize"

	"github.com/pthm-cable/biome/config"
)

type options struct {
	configPath string
	outputDir  string
	maxTicks   int64
	seeds      int
	maxEvals   int
	population int
	world      WorldSpec
}

func main() {
	var opts options
	var size int
	flag.StringVar(&opts.configPath, "config", "", "Base config YAML or TOML file (empty = use defaults)")
	flag.Int64Var(&opts.maxTicks, "ticks", 24000, "Maximum simulation duration in ticks per run")
	flag.IntVar(&opts.seeds, "seeds", 3, "Number of seeds per evaluation")
	flag.IntVar(&opts.maxEvals, "max-evals", 200, "Maximum number of evaluations")
	flag.IntVar(&opts.population, "population", 0, "CMA-ES population size (0 = auto)")
	flag.StringVar(&opts.outputDir, "output", "", "Output directory for results")
	flag.IntVar(&opts.world.Plants, "plants", 1500, "Founding plants per run")
	flag.IntVar(&opts.world.Animals, "animals", 300, "Founding animals per run")
	flag.IntVar(&size, "size", 160, "World width and height per run")
	flag.Parse()
	opts.world.Width, opts.world.Height = size, size

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, nil)))
	if err := run(opts); err != nil {
		slog.Error("optimize failed", "error", err)
		os.Exit(1)
	}
}

func run(opts options) error {
	if opts.outputDir == "" {
		return errors.New("-output is required")
	}
	if err := os.MkdirAll(opts.outputDir, 0755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}
	base, err := config.Load(opts.configPath)
	if err != nil {
		return err
	}

	params := NewParamVector(base)
	seeds := make([]int64, opts.seeds)
	for i := range seeds {
		seeds[i] = int64(i*1000 + 42)
	}
	evaluator := NewFitnessEvaluator(params, opts.maxTicks, seeds, base, opts.world)

	elog, err := newEvalLog(filepath.Join(opts.outputDir, "optimize_log.csv"), params)
	if err != nil {
		return err
	}
	defer elog.Close()

	pop := opts.population
	if pop == 0 {
		pop = 4 + 3*params.Dim()/2
	}
	slog.Info("starting CMA-ES",
		"params", params.Dim(),
		"population", pop,
		"max_evals", opts.maxEvals,
		"seeds", opts.seeds,
		"ticks", opts.maxTicks,
	)

	start := time.Now()
	problem := optimize.Problem{
		Func: func(x []float64) float64 {
			p := params.Clamp(params.Denormalize(x))
			fitness := evaluator.Evaluate(p)
			quality := evaluator.LastQuality()
			n := elog.Record(p, fitness, quality)

			elapsed := time.Since(start)
			eta := time.Duration(opts.maxEvals-n) * (elapsed / time.Duration(n))
			slog.Info("eval",
				"n", n,
				"survived", -fitness/(1+0.2*quality),
				"quality", quality,
				"best", elog.bestFitness,
				"elapsed", elapsed.Round(time.Second).String(),
				"eta", eta.Round(time.Second).String(),
			)
			return fitness
		},
	}
	method := &optimize.CmaEsChol{InitStepSize: 0.3, Population: pop}
	settings := &optimize.Settings{FuncEvaluations: opts.maxEvals}

	result, err := optimize.Minimize(problem, params.Normalize(params.DefaultVector()), settings, method)
	if err != nil {
		slog.Warn("optimization ended early", "error", err)
	}
	best := elog.best
	if best == nil && result != nil {
		best = params.Clamp(params.Denormalize(result.X))
	}
	if best == nil {
		return errors.New("no evaluation completed")
	}

	for i, spec := range params.Specs {
		slog.Info("best parameter", "name", spec.Name, "path", spec.Path, "value", best[i])
	}
	cfg := base.Clone()
	params.ApplyToConfig(cfg, best)
	out := filepath.Join(opts.outputDir, "best_config.yaml")
	if err := cfg.WriteYAML(out); err != nil {
		return err
	}
	slog.Info("done",
		"evals", elog.n,
		"best_fitness", elog.bestFitness,
		"took", time.Since(start).Round(time.Second).String(),
		"config", out,
	)
	return nil
}

// evalLog appends one CSV row per evaluation and remembers the best one.
// Columns follow the parameter vector, so the header is built at runtime.
type evalLog struct {
	f *os.File
	w *csv.Writer

	n           int
	best        []float64
	bestFitness float64
}

func newEvalLog(path string, params *ParamVector) (*evalLog, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("creating eval log: %w", err)
	}
	header := []string{"eval", "fitness", "quality"}
	for _, spec := range params.Specs {
		header = append(header, spec.Name)
	}
	l := &evalLog{f: f, w: csv.NewWriter(f), bestFitness: 1e18}
	if err := l.w.Write(header); err != nil {
		f.Close()
		return nil, fmt.Errorf("writing eval log header: %w", err)
	}
	return l, nil
}

// Record logs one evaluation and returns the evaluation count.
func (l *evalLog) Record(p []float64, fitness, quality float64) int {
	l.n++
	if fitness < l.bestFitness {
		l.bestFitness = fitness
		l.best = p
	}
	row := []string{
		strconv.Itoa(l.n),
		strconv.FormatFloat(fitness, 'f', 3, 64),
		strconv.FormatFloat(quality, 'f', 4, 64),
	}
	for _, v := range p {
		row = append(row, strconv.FormatFloat(v, 'f', 6, 64))
	}
	l.w.Write(row)
	l.w.Flush()
	if err := l.w.Error(); err != nil {
		slog.Warn("eval log write failed", "error", err)
	}
	return l.n
}

func (l *evalLog) Close() error {
	l.w.Flush()
	return l.f.Close()
}
