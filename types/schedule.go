package types

import (
	"fmt"
	"math"
)

type DecayMode int

const (
	DecayLinear DecayMode = iota
	DecayExponential
)

// Schedule maps an episode index to an exploration rate. Pure function
// of the index, monotonically non-increasing from Initial to Final
// over Episodes.
type Schedule struct {
	Initial  float64
	Final    float64
	Episodes int
	Mode     DecayMode
}

func (s Schedule) Validate() error {
	if s.Initial < 0 || s.Initial > 1 || s.Final < 0 || s.Final > 1 {
		return fmt.Errorf("%w: epsilon bounds must lie in [0,1], got %f..%f", ErrMalformedConfig, s.Initial, s.Final)
	}
	if s.Final > s.Initial {
		return fmt.Errorf("%w: final epsilon %f above initial %f", ErrMalformedConfig, s.Final, s.Initial)
	}
	if s.Episodes <= 0 {
		return fmt.Errorf("%w: schedule needs a positive episode count", ErrMalformedConfig)
	}
	return nil
}

// At returns the exploration rate for the given episode, clamped to
// [Final, Initial].
func (s Schedule) At(episode int) float64 {
	if episode <= 0 {
		return s.Initial
	}
	if episode >= s.Episodes-1 {
		return s.Final
	}
	progress := float64(episode) / float64(s.Episodes-1)
	switch s.Mode {
	case DecayExponential:
		if s.Initial == 0 {
			return 0
		}
		// per-episode factor that lands on Final at the last episode
		floor := s.Final
		if floor <= 0 {
			floor = 1e-3
		}
		eps := s.Initial * math.Pow(floor/s.Initial, progress)
		if eps < s.Final {
			eps = s.Final
		}
		return eps
	default:
		return s.Initial + (s.Final-s.Initial)*progress
	}
}
