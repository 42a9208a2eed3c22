package tts

import "sync"

// Speech rate bounds accepted by the synthesis model.
const (
	MinRate = 0.5
	MaxRate = 2.0
)

// rateSteps are the discrete positions used by Increase/Decrease.
var rateSteps = []float64{0.5, 0.75, 1.0, 1.25, 1.5, 1.75, 2.0}

// speedController manages the playback rate multiplier.
type speedController struct {
	mu   sync.RWMutex
	rate float64
}

func newSpeedController() *speedController {
	return &speedController{rate: 1.0}
}

// Rate returns the current multiplier.
func (s *speedController) Rate() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.rate
}

// Set stores a multiplier, rejecting values outside [MinRate, MaxRate].
func (s *speedController) Set(rate float64) error {
	if rate < MinRate || rate > MaxRate {
		return ErrRateOutOfRange
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rate = rate
	return nil
}

// Increase moves to the next faster step and returns the new rate.
func (s *speedController) Increase() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, step := range rateSteps {
		if step > s.rate {
			s.rate = step
			break
		}
	}
	return s.rate
}

// Decrease moves to the next slower step and returns the new rate.
func (s *speedController) Decrease() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := len(rateSteps) - 1; i >= 0; i-- {
		if rateSteps[i] < s.rate {
			s.rate = rateSteps[i]
			break
		}
	}
	return s.rate
}

// ClampRate forces a rate into the accepted range.
func ClampRate(rate float64) float64 {
	if rate < MinRate {
		return MinRate
	}
	if rate > MaxRate {
		return MaxRate
	}
	return rate
}
