package automaton

import "time"

// WritePredicate decides whether a kernel invocation writes anything at all.
// It is evaluated once per invocation, never per cell.
type WritePredicate func(elapsed time.Duration) bool

// Always returns a WritePredicate that never suppresses writes.
//
// Returns:
//   - WritePredicate: a predicate that is always true
func Always() WritePredicate {
	return func(time.Duration) bool { return true }
}

// BurstWindow returns a WritePredicate that only allows writes during the first window of every cycle.
// Outside the window the kernel returns without touching the next generation.
// A non-positive window or cycle, or a window at least as long as the cycle, degenerates to Always.
//
// Parameters:
//   - window: how long writes are allowed at the start of each cycle
//   - cycle: the cycle length
//
// Returns:
//   - WritePredicate: the burst throttle predicate
func BurstWindow(window, cycle time.Duration) WritePredicate {
	if window <= 0 || cycle <= 0 || window >= cycle {
		return Always()
	}
	return func(elapsed time.Duration) bool {
		phase := elapsed % cycle
		if phase < 0 {
			phase += cycle
		}
		return phase < window
	}
}
