// Package playback models the simulated position of a video being watched.
package playback

import "math"

// Percent maps elapsed seconds to a whole completion percentage in [0,100].
// A non-positive duration is treated as already complete.
func Percent(elapsed, duration float64) int {
	if duration <= 0 {
		return 100
	}
	p := math.Floor(100 * elapsed / duration)
	switch {
	case p < 0:
		return 0
	case p > 100:
		return 100
	default:
		return int(p)
	}
}

// State is the playback position of one run. It only moves forward.
type State struct {
	duration float64
	stride   float64 // simulated seconds per step
	steps    int
}

// NewState starts a run at position zero. Each step advances the simulated
// position by interval*speed seconds.
func NewState(duration, speed, interval float64) *State {
	return &State{
		duration: duration,
		stride:   interval * speed,
	}
}

// Elapsed returns the simulated seconds watched so far.
func (s *State) Elapsed() float64 {
	// steps*stride rather than a running sum, so error does not build up
	return float64(s.steps) * s.stride
}

// Percent returns the current completion percentage.
func (s *State) Percent() int {
	return Percent(s.Elapsed(), s.duration)
}

// Complete reports whether the percentage has reached 100.
func (s *State) Complete() bool {
	return s.Percent() >= 100
}

// Watching reports whether the simulated position is still short of the end.
func (s *State) Watching() bool {
	return s.Elapsed() < s.duration
}

// Advance moves the position forward by one step.
func (s *State) Advance() {
	s.steps++
}

// Steps returns how many times the position has advanced.
func (s *State) Steps() int {
	return s.steps
}

// Duration returns the nominal video length in seconds.
func (s *State) Duration() float64 {
	return s.duration
}

// MaxIterations bounds the number of loop iterations for a run.
func MaxIterations(duration, speed, interval float64) int {
	stride := interval * speed
	if stride <= 0 {
		return 0
	}
	return int(math.Floor(duration/stride)) + 1
}
