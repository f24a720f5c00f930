package main

import (
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/pthm-cable/biome/config"
	"github.com/pthm-cable/biome/game"
	"github.com/pthm-cable/biome/telemetry"
)

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Path to a YAML or TOML config (empty = use defaults)")
	seed := flag.Int64("seed", 0, "RNG seed (0 = time-based)")
	plants := flag.Int("plants", 3000, "Founding plants")
	animals := flag.Int("animals", 600, "Founding animals")
	width := flag.Int("width", 256, "World width in tiles")
	height := flag.Int("height", 256, "World height in tiles")
	maxTicks := flag.Int64("max-ticks", 0, "Stop after N ticks (0 = unlimited)")
	outputDir := flag.String("output-dir", "", "Output directory for CSV logs and config snapshot")
	logStats := flag.Bool("log-stats", false, "Log daily stats via slog")
	statsInterval := flag.Int("stats-interval", -1, "Ticks between species CSV rows (-1 = use config, 0 = daily)")
	realtime := flag.Bool("realtime", false, "Pace ticks to wall-clock time")

	flag.Parse()

	// Set up slog (JSON to stdout for structured logging)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if *statsInterval >= 0 {
		cfg.Telemetry.StatsInterval = *statsInterval
	}

	rngSeed := *seed
	if rngSeed == 0 {
		rngSeed = time.Now().UnixNano()
	}

	om, err := telemetry.NewOutputManager(*outputDir)
	if err != nil {
		slog.Error("failed to create output", "error", err)
		os.Exit(1)
	}
	defer om.Close()
	if err := om.WriteConfig(cfg); err != nil {
		slog.Error("failed to write config snapshot", "error", err)
	}

	sim := game.New(cfg, logger)
	rec := &recorder{sim: sim, om: om, interval: int64(cfg.Telemetry.StatsInterval), logStats: *logStats}
	sim.SetDayCallback(rec.day)
	sim.SetSpeciesCallback(rec.species)

	if err := sim.Init(rngSeed, *plants, *animals, *width, *height); err != nil {
		slog.Error("failed to initialize simulation", "error", err)
		os.Exit(1)
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt)

	slog.Info("starting simulation",
		"seed", rngSeed,
		"max_ticks", *maxTicks,
		"realtime", *realtime,
		"output_dir", om.Dir(),
	)

	start := time.Now()
	last := start
	ticker := time.NewTicker(time.Duration(cfg.Derived.TickSeconds * float64(time.Second)))
	defer ticker.Stop()

run:
	for *maxTicks <= 0 || sim.Tick() < *maxTicks {
		select {
		case <-stop:
			slog.Info("interrupted", "tick", sim.Tick())
			break run
		default:
		}

		if *realtime {
			now := <-ticker.C
			sim.StepTime(now.Sub(last).Seconds())
			last = now
			continue
		}
		sim.StepOnce()
	}

	rec.flushMutations(sim.Tick())
	printSummary(sim, time.Since(start))
}

// recorder feeds day and species callbacks into CSV output.
type recorder struct {
	sim      *game.Simulation
	om       *telemetry.OutputManager
	interval int64 // Ticks between species rows, 0 = daily
	logStats bool

	lastSpecies  int64
	lastMutation int64
}

func (r *recorder) day(day telemetry.DailyPopulationStats) {
	perf := r.sim.PerfStats()
	if r.logStats {
		slog.Info("day", "stats", day, "perf", perf)
	}
	if err := r.om.WriteDaily(day); err != nil {
		slog.Error("failed to write daily stats", "error", err)
	}
	if err := r.om.WritePerf(perf, day.EndTick); err != nil {
		slog.Error("failed to write perf stats", "error", err)
	}
	r.flushMutations(day.EndTick)
	var marks []telemetry.Bookmark
	for _, b := range r.sim.Bookmarks() {
		if b.Tick == day.EndTick {
			marks = append(marks, b)
		}
	}
	if err := r.om.WriteBookmarks(marks); err != nil {
		slog.Error("failed to write bookmarks", "error", err)
	}
	if r.interval == 0 {
		if err := r.om.WriteSpecies(r.sim.SpeciesStats()); err != nil {
			slog.Error("failed to write species stats", "error", err)
		}
	}
}

func (r *recorder) species(tick int64, stats []telemetry.SpeciesStats) {
	if r.interval <= 0 || tick-r.lastSpecies < r.interval {
		return
	}
	r.lastSpecies = tick
	if err := r.om.WriteSpecies(stats); err != nil {
		slog.Error("failed to write species stats", "error", err)
	}
}

// flushMutations writes events logged since the previous flush.
func (r *recorder) flushMutations(tick int64) {
	if err := r.om.WriteMutations(r.sim.MutationsSince(r.lastMutation)); err != nil {
		slog.Error("failed to write mutations", "error", err)
	}
	r.lastMutation = tick
}

func printSummary(sim *game.Simulation, elapsed time.Duration) {
	p := message.NewPrinter(language.English)
	ws := sim.WorldStats()

	water := 0.0
	if ws.Terrain.Tiles > 0 {
		water = float64(ws.Terrain.WaterTiles) / float64(ws.Terrain.Tiles) * 100
	}
	p.Printf("\nseed %d, %dx%d tiles (%.1f%% water)\n", ws.Seed, ws.Width, ws.Height, water)
	p.Printf("ran %d ticks (%d days) in %s\n", ws.Tick, ws.Day, elapsed.Round(time.Millisecond))
	p.Printf("population %d: %d plants, %d animals, %d eggs\n",
		ws.Counts.Total, ws.Counts.Plants, ws.Counts.Animals, ws.Counts.Eggs)
	p.Printf("%d species, %d mutation events\n", ws.Species, ws.MutationCount)

	stats := sim.SpeciesStats()
	for i, s := range stats {
		if i == 10 {
			break
		}
		p.Printf("  #%-5d %-6s %-9s %-11s %8d\n", s.Species, s.LifeType, s.Class, s.Diet, s.Population)
	}
}
