// package scheduler decides, once per rendered frame, whether a simulation step is due.
// Steps are decoupled from the display refresh so the automaton evolves at its own configurable rate.
package scheduler

import (
	"fmt"
	"strings"
	"time"
)

// Policy selects how the cadence threshold is measured.
type Policy int

const (
	// PolicyTime steps when at least Cadence of wall-clock time has passed since the last step.
	PolicyTime Policy = iota
	// PolicyFrames steps on every frame whose ordinal is a multiple of the frame cadence.
	PolicyFrames
)

// String implements fmt.Stringer.
func (p Policy) String() string {
	switch p {
	case PolicyTime:
		return "time"
	case PolicyFrames:
		return "frames"
	default:
		return fmt.Sprintf("Policy(%d)", int(p))
	}
}

// ParsePolicy converts a policy name as produced by String back into a Policy.
//
// Parameters:
//   - s: "time" or "frames", case insensitive
//
// Returns:
//   - Policy: the parsed policy
//   - error: an error if the name is not recognized
func ParsePolicy(s string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "time":
		return PolicyTime, nil
	case "frames", "frame", "count":
		return PolicyFrames, nil
	default:
		return 0, fmt.Errorf("unknown cadence policy %q", s)
	}
}

// Scheduler is the step cadence gate.
// It is owned by the frame loop goroutine and is not safe for concurrent use.
type Scheduler interface {
	// Policy returns the configured cadence policy.
	Policy() Policy

	// Reset sets the baseline for the time policy and zeroes the frame counter.
	// The frame loop calls it once when it enters the running state.
	Reset(now time.Time)

	// Due is consulted exactly once per rendered frame. When it reports true the caller runs one
	// simulation step and the scheduler has already moved its baseline.
	Due(now time.Time) bool

	// Frames returns the number of frames observed since the last Reset.
	Frames() uint64
}

type scheduler struct {
	policy       Policy
	interval     time.Duration
	frameCadence uint64

	last   time.Time
	frames uint64
}

var _ Scheduler = &scheduler{}

func (s *scheduler) Policy() Policy {
	return s.policy
}

func (s *scheduler) Reset(now time.Time) {
	s.last = now
	s.frames = 0
}

func (s *scheduler) Due(now time.Time) bool {
	s.frames++

	switch s.policy {
	case PolicyFrames:
		return s.frames%s.frameCadence == 0
	default:
		if s.last.IsZero() {
			s.last = now
		}
		if now.Sub(s.last) >= s.interval {
			s.last = now
			return true
		}
		return false
	}
}

func (s *scheduler) Frames() uint64 {
	return s.frames
}
