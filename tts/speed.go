package tts

import (
	"fmt"
	"math"
	"strconv"
	"sync"
)

// Speed selector presets.
var (
	DefaultSpeedSteps = []float64{0.75, 1.0, 1.25, 1.5, 2.0}
	DefaultSpeed      = 1.0
	MinSpeed          = 0.5
	MaxSpeed          = 2.0
)

// SpeedSelector holds the user-facing rate choice. Moving the selection
// always lands on one of a fixed set of discrete steps, but a configured rate
// between steps is kept exactly until the user first changes it.
type SpeedSelector struct {
	mu    sync.RWMutex
	steps []float64
	rate  float64
}

// stepTolerance absorbs float noise when comparing a rate with a step.
const stepTolerance = 0.001

// NewSpeedSelector creates a selector holding the configured rate. An out of
// range rate selects DefaultSpeed.
func NewSpeedSelector(rate float64) *SpeedSelector {
	s := &SpeedSelector{steps: DefaultSpeedSteps, rate: DefaultSpeed}
	if validRate(rate) {
		s.rate = rate
	}
	return s
}

// Speed returns the selected rate.
func (s *SpeedSelector) Speed() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.rate
}

// Set selects the step nearest to rate.
func (s *SpeedSelector) Set(rate float64) error {
	if !validRate(rate) {
		return fmt.Errorf("%w: %.2f out of range [%.2f, %.2f]", ErrInvalidRate, rate, MinSpeed, MaxSpeed)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.rate = s.steps[s.nearest(rate)]
	return nil
}

// Next moves to the first step faster than the selected rate.
func (s *SpeedSelector) Next() (float64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, step := range s.steps {
		if step > s.rate+stepTolerance {
			s.rate = step
			return step, true
		}
	}
	return s.rate, false
}

// Previous moves to the first step slower than the selected rate.
func (s *SpeedSelector) Previous() (float64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := len(s.steps) - 1; i >= 0; i-- {
		if step := s.steps[i]; step < s.rate-stepTolerance {
			s.rate = step
			return step, true
		}
	}
	return s.rate, false
}

// Steps returns a copy of the available steps.
func (s *SpeedSelector) Steps() []float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()

	steps := make([]float64, len(s.steps))
	copy(steps, s.steps)
	return steps
}

// Format renders the selected rate, e.g. "1.25x".
func (s *SpeedSelector) Format() string {
	return FormatSpeed(s.Speed())
}

// FormatSpeed renders a rate with the shortest representation, e.g. "1x".
func FormatSpeed(rate float64) string {
	return strconv.FormatFloat(rate, 'f', -1, 64) + "x"
}

func validRate(rate float64) bool {
	return !math.IsNaN(rate) && rate >= MinSpeed && rate <= MaxSpeed
}

func (s *SpeedSelector) nearest(rate float64) int {
	idx := 0
	minDiff := math.MaxFloat64
	for i, step := range s.steps {
		if diff := math.Abs(step - rate); diff < minDiff {
			minDiff = diff
			idx = i
		}
	}
	return idx
}
