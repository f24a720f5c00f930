package telemetry

import (
	"testing"
	"time"
)

func TestPerfCollectorPhases(t *testing.T) {
	pc := NewPerfCollector(10)
	for i := 0; i < 5; i++ {
		pc.StartTick()
		pc.StartPhase(PhaseEggs)
		time.Sleep(10 * time.Microsecond)
		pc.StartPhase(PhaseSweep)
		time.Sleep(2 * time.Millisecond)
		pc.EndTick()
	}

	stats := pc.Stats()
	if stats.AvgTickDuration <= 0 || stats.TicksPerSecond <= 0 {
		t.Fatalf("stats = %+v", stats)
	}
	if stats.MinTickDuration > stats.AvgTickDuration || stats.AvgTickDuration > stats.MaxTickDuration {
		t.Errorf("min/avg/max out of order: %v %v %v", stats.MinTickDuration, stats.AvgTickDuration, stats.MaxTickDuration)
	}
	if stats.PhaseAvg[PhaseSweep] < 2*time.Millisecond {
		t.Errorf("sweep average %v below the slept time", stats.PhaseAvg[PhaseSweep])
	}
	if stats.PhaseAvg[PhaseFire] != 0 {
		t.Errorf("untimed phase has %v", stats.PhaseAvg[PhaseFire])
	}
	if stats.PhasePct[PhaseSweep] <= stats.PhasePct[PhaseEggs] {
		t.Errorf("sweep %v%% not above eggs %v%%", stats.PhasePct[PhaseSweep], stats.PhasePct[PhaseEggs])
	}

	row := stats.ToCSV(42)
	if row.Tick != 42 || row.SweepPct != stats.PhasePct[PhaseSweep] {
		t.Errorf("ToCSV = %+v", row)
	}
}

func TestPerfCollectorWindow(t *testing.T) {
	pc := NewPerfCollector(3)
	for i := 0; i < 3; i++ {
		pc.StartTick()
		pc.StartPhase(PhaseSweep)
		time.Sleep(5 * time.Millisecond)
		pc.EndTick()
	}
	// Fast steps push the slow ones out of the window.
	for i := 0; i < 3; i++ {
		pc.StartTick()
		pc.StartPhase(PhaseSweep)
		pc.EndTick()
	}
	if got := pc.Stats().MaxTickDuration; got >= 5*time.Millisecond {
		t.Errorf("max after window rolled = %v", got)
	}
}

func TestPerfCollectorEmpty(t *testing.T) {
	stats := NewPerfCollector(0).Stats()
	if stats.AvgTickDuration != 0 || stats.TicksPerSecond != 0 {
		t.Errorf("empty stats = %+v", stats)
	}
}

func TestPhaseString(t *testing.T) {
	tests := []struct {
		phase Phase
		want  string
	}{
		{PhaseEnvironment, "environment"},
		{PhaseAnalytics, "analytics"},
		{NumPhases, "unknown"},
		{-1, "unknown"},
	}
	for _, tt := range tests {
		if got := tt.phase.String(); got != tt.want {
			t.Errorf("Phase(%d) = %q, want %q", int(tt.phase), got, tt.want)
		}
	}
}
