package sensor

import (
	"fmt"
	"math/rand"

	"weatherstation/internal/reading"
)

// Sim is a software Device for development and tests: a slow random walk
// around typical indoor conditions.
type Sim struct {
	rng   *rand.Rand
	temp  float64
	press float64
	hum   float64
}

// NewSim returns a simulated device seeded with seed (0 picks defaults
// deterministic enough for dev use).
func NewSim(seed int64) *Sim {
	return &Sim{
		rng:   rand.New(rand.NewSource(seed)),
		temp:  23.4,
		press: 101.325,
		hum:   45.1,
	}
}

func (s *Sim) Ready() bool { return true }

// Fetch nudges each channel by a small random step, clamped to plausible
// ranges.
func (s *Sim) Fetch() error {
	s.temp = clamp(s.temp+s.rng.Float64()*0.4-0.2, -10, 45)
	s.press = clamp(s.press+s.rng.Float64()*0.1-0.05, 95, 106)
	s.hum = clamp(s.hum+s.rng.Float64()*1.0-0.5, 5, 95)
	return nil
}

func (s *Sim) Channel(ch Channel) (reading.Value, error) {
	switch ch {
	case ChannelTemperature:
		return reading.FromFloat(s.temp), nil
	case ChannelPressure:
		return reading.FromFloat(s.press), nil
	case ChannelHumidity:
		return reading.FromFloat(s.hum), nil
	default:
		return reading.Value{}, fmt.Errorf("unknown channel %d", ch)
	}
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
