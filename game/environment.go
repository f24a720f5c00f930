package game

import (
	"github.com/pthm-cable/biome/systems"
)

var _ systems.FuelSource = (*Simulation)(nil)

// updateEnvironment advances the day cycle and weather, and rolls for a
// lightning strike that may ignite a fire.
func (s *Simulation) updateEnvironment() {
	cfg := s.cfg
	s.isDay = s.tick%int64(cfg.World.DayTicks) < int64(cfg.Derived.DaylightTicks)
	s.weather.Update(s.tick)

	x, y, ok := s.weather.Strike(s.rng, s.tick)
	if !ok {
		return
	}
	if s.fire.Ignite(x, y, s.weather.RainAt(x, y), s) {
		s.logger.Debug("lightning fire", "tick", s.tick, "x", x, "y", y)
	}
}

// IsDay reports whether the current tick falls in daylight.
func (s *Simulation) IsDay() bool { return s.isDay }
