package game

import "github.com/pthm-cable/biome/config"

// BehaviorTuning returns the live tuning values keyed by name.
func (s *Simulation) BehaviorTuning() map[string]float64 {
	return s.tuning.Values()
}

// SetBehaviorTuning overwrites the named tuning values, clamped to their
// documented ranges. Unknown names are ignored.
func (s *Simulation) SetBehaviorTuning(values map[string]float64) {
	s.tuning.Apply(values)
	s.logger.Info("behavior tuning updated", "values", values)
}

// ResetBehaviorTuning restores the configured tuning.
func (s *Simulation) ResetBehaviorTuning() {
	s.tuning = s.cfg.Behavior
}

// Tuning returns a copy of the live tuning struct.
func (s *Simulation) Tuning() config.BehaviorTuning { return s.tuning }
