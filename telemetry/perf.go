package telemetry

import (
	"log/slog"
	"time"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Phase is one stage of a simulation step.
type Phase int

const (
	PhaseEnvironment Phase = iota
	PhaseFire
	PhaseSweep
	PhaseStates
	PhaseEggs
	PhaseAnalytics
	NumPhases
)

var phaseNames = [NumPhases]string{"environment", "fire", "sweep", "states", "eggs", "analytics"}

func (p Phase) String() string {
	if p < 0 || p >= NumPhases {
		return "unknown"
	}
	return phaseNames[p]
}

// stepTiming is the wall time of one step, split by phase.
type stepTiming struct {
	total  time.Duration
	phases [NumPhases]time.Duration
}

// PerfCollector times steps and keeps the last window of them. Recording a
// step does not allocate.
type PerfCollector struct {
	ring   []stepTiming
	next   int
	filled int

	cur   stepTiming
	start time.Time
	mark  time.Time
	phase Phase // Running phase, or -1
}

// NewPerfCollector returns a collector averaging over window steps.
func NewPerfCollector(window int) *PerfCollector {
	if window < 1 {
		window = 60
	}
	return &PerfCollector{ring: make([]stepTiming, window), phase: -1}
}

// StartTick begins timing a step.
func (p *PerfCollector) StartTick() {
	p.start = time.Now()
	p.mark = p.start
	p.cur = stepTiming{}
	p.phase = -1
}

// StartPhase closes the running phase and opens ph.
func (p *PerfCollector) StartPhase(ph Phase) {
	p.closePhase(time.Now())
	p.phase = ph
}

func (p *PerfCollector) closePhase(now time.Time) {
	if p.phase >= 0 {
		p.cur.phases[p.phase] += now.Sub(p.mark)
	}
	p.mark = now
}

// EndTick closes the step and stores it in the window.
func (p *PerfCollector) EndTick() {
	now := time.Now()
	p.closePhase(now)
	p.phase = -1
	p.cur.total = now.Sub(p.start)

	p.ring[p.next] = p.cur
	p.next = (p.next + 1) % len(p.ring)
	p.filled = min(p.filled+1, len(p.ring))
}

// PerfStats summarises the timing window.
type PerfStats struct {
	AvgTickDuration time.Duration
	MinTickDuration time.Duration
	MaxTickDuration time.Duration
	TicksPerSecond  float64

	PhaseAvg [NumPhases]time.Duration
	PhasePct [NumPhases]float64 // Share of the average step, in percent
}

// Stats aggregates the recorded window.
func (p *PerfCollector) Stats() PerfStats {
	var ps PerfStats
	if p.filled == 0 {
		return ps
	}

	totals := make([]float64, p.filled)
	for i, s := range p.ring[:p.filled] {
		totals[i] = float64(s.total)
		for ph, d := range s.phases {
			ps.PhaseAvg[ph] += d
		}
	}
	avg := stat.Mean(totals, nil)
	ps.AvgTickDuration = time.Duration(avg)
	ps.MinTickDuration = time.Duration(floats.Min(totals))
	ps.MaxTickDuration = time.Duration(floats.Max(totals))
	if avg > 0 {
		ps.TicksPerSecond = float64(time.Second) / avg
	}

	for ph := range ps.PhaseAvg {
		ps.PhaseAvg[ph] /= time.Duration(p.filled)
		if avg > 0 {
			ps.PhasePct[ph] = float64(ps.PhaseAvg[ph]) / avg * 100
		}
	}
	return ps
}

// LogValue implements slog.LogValuer. Phases under 0.1% are left out.
func (s PerfStats) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.Int64("avg_tick_us", s.AvgTickDuration.Microseconds()),
		slog.Int64("max_tick_us", s.MaxTickDuration.Microseconds()),
		slog.Float64("ticks_per_sec", s.TicksPerSecond),
	}
	for ph, pct := range s.PhasePct {
		if pct > 0.1 {
			attrs = append(attrs, slog.Float64(Phase(ph).String()+"_pct", float64(int(pct*10))/10))
		}
	}
	return slog.GroupValue(attrs...)
}

// PerfStatsCSV is one perf.csv row.
type PerfStatsCSV struct {
	Tick           int64   `csv:"tick"`
	AvgTickUS      int64   `csv:"avg_tick_us"`
	MinTickUS      int64   `csv:"min_tick_us"`
	MaxTickUS      int64   `csv:"max_tick_us"`
	TicksPerSec    float64 `csv:"ticks_per_sec"`
	EnvironmentPct float64 `csv:"environment_pct"`
	FirePct        float64 `csv:"fire_pct"`
	SweepPct       float64 `csv:"sweep_pct"`
	StatesPct      float64 `csv:"states_pct"`
	EggsPct        float64 `csv:"eggs_pct"`
	AnalyticsPct   float64 `csv:"analytics_pct"`
}

// ToCSV flattens s into a row stamped with tick.
func (s PerfStats) ToCSV(tick int64) PerfStatsCSV {
	return PerfStatsCSV{
		Tick:           tick,
		AvgTickUS:      s.AvgTickDuration.Microseconds(),
		MinTickUS:      s.MinTickDuration.Microseconds(),
		MaxTickUS:      s.MaxTickDuration.Microseconds(),
		TicksPerSec:    s.TicksPerSecond,
		EnvironmentPct: s.PhasePct[PhaseEnvironment],
		FirePct:        s.PhasePct[PhaseFire],
		SweepPct:       s.PhasePct[PhaseSweep],
		StatesPct:      s.PhasePct[PhaseStates],
		EggsPct:        s.PhasePct[PhaseEggs],
		AnalyticsPct:   s.PhasePct[PhaseAnalytics],
	}
}
