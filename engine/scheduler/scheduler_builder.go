package scheduler

import "time"

const (
	// DefaultInterval is the time cadence used when none is configured.
	DefaultInterval = 200 * time.Millisecond
	// DefaultFrameCadence is the frame cadence used when none is configured.
	DefaultFrameCadence = 8
)

// SchedulerBuilderOption is a functional option for configuring a Scheduler.
type SchedulerBuilderOption func(*scheduler)

// NewScheduler creates a Scheduler. Without options it uses the time policy at DefaultInterval.
//
// Parameters:
//   - options: variadic list of SchedulerBuilderOption
//
// Returns:
//   - Scheduler: the configured scheduler
func NewScheduler(options ...SchedulerBuilderOption) Scheduler {
	s := &scheduler{
		policy:       PolicyTime,
		interval:     DefaultInterval,
		frameCadence: DefaultFrameCadence,
	}

	for _, option := range options {
		option(s)
	}

	return s
}

// WithInterval selects the time policy with the given minimum spacing between steps.
// A non-positive interval makes every frame due.
//
// Parameters:
//   - d: the step interval
//
// Returns:
//   - SchedulerBuilderOption: option function that sets the time cadence
func WithInterval(d time.Duration) SchedulerBuilderOption {
	return func(s *scheduler) {
		s.policy = PolicyTime
		s.interval = max(d, 0)
	}
}

// WithFrameCadence selects the frame policy, stepping once every n frames.
// Values below 1 are treated as 1.
//
// Parameters:
//   - n: frames per step
//
// Returns:
//   - SchedulerBuilderOption: option function that sets the frame cadence
func WithFrameCadence(n int) SchedulerBuilderOption {
	return func(s *scheduler) {
		s.policy = PolicyFrames
		s.frameCadence = uint64(max(n, 1))
	}
}
