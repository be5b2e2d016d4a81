package engine

import (
	"log/slog"
	"time"

	"github.com/Carmen-Shannon/oxy-life/engine/device"
	"github.com/Carmen-Shannon/oxy-life/engine/grid"
	"github.com/Carmen-Shannon/oxy-life/engine/profiler"
	"github.com/Carmen-Shannon/oxy-life/engine/scheduler"
	"github.com/Carmen-Shannon/oxy-life/engine/window"
)

// EngineBuilderOption is a functional option for configuring an Engine.
// Use the With* functions to create options that are applied directly to the engine instance.
type EngineBuilderOption func(*engine)

// WithDevice sets the device frames are stepped and drawn on. The engine closes it when Run returns.
//
// Parameters:
//   - d: the device, sized for the engine's grid
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithDevice(d device.Device) EngineBuilderOption {
	return func(e *engine) {
		e.device = d
	}
}

// WithState sets the grid instead of allocating one from the configuration.
// The GPU device is built against a grid, so the same grid must be passed here.
//
// Parameters:
//   - s: the grid
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithState(s grid.State) EngineBuilderOption {
	return func(e *engine) {
		e.state = s
	}
}

// WithWindow sets the host window. Its input callbacks are routed into the engine and Run pumps its
// message loop.
//
// Parameters:
//   - w: a pre-configured Window instance
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithWindow(w window.Window) EngineBuilderOption {
	return func(e *engine) {
		e.window = w
	}
}

// WithScheduler replaces the scheduler built from the configuration.
//
// Parameters:
//   - s: the cadence gate
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithScheduler(s scheduler.Scheduler) EngineBuilderOption {
	return func(e *engine) {
		if s != nil {
			e.scheduler = s
		}
	}
}

// WithLogger overrides the package logger for this engine.
//
// Parameters:
//   - l: the logger, nil is ignored
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithLogger(l *slog.Logger) EngineBuilderOption {
	return func(e *engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithClock sets the time source used by Run and Start.
//
// Parameters:
//   - now: returns the current time
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithClock(now func() time.Time) EngineBuilderOption {
	return func(e *engine) {
		if now != nil {
			e.clock = now
		}
	}
}

// WithProfiling enables or disables performance profiling output.
//
// Parameters:
//   - enabled: if true, enables performance profiling
//   - interval: the reporting window, 0 keeps the default
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithProfiling(enabled bool, interval time.Duration) EngineBuilderOption {
	return func(e *engine) {
		e.profilingEnabled = enabled
		if interval > 0 {
			e.profiler = profiler.NewProfiler(e.logger, interval)
		}
	}
}

// WithRenderFrameLimit sets an optional render frame rate cap in frames per second.
// Pass 0 to uncap the render loop (default).
//
// Parameters:
//   - fps: maximum render frames per second (0 = uncapped)
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithRenderFrameLimit(fps float64) EngineBuilderOption {
	return func(e *engine) {
		if fps <= 0 {
			e.renderFrameLimit = 0
			return
		}
		e.renderFrameLimit = time.Duration(float64(time.Second) / fps)
	}
}

// WithMaxFrames stops Run after n frames. 0 runs until Quit or the window closes.
//
// Parameters:
//   - n: the frame count
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithMaxFrames(n uint64) EngineBuilderOption {
	return func(e *engine) {
		e.maxFrames = n
	}
}

// WithFrameCallback registers a function called after every completed frame on the frame goroutine.
//
// Parameters:
//   - fn: receives the frame result
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithFrameCallback(fn func(FrameResult)) EngineBuilderOption {
	return func(e *engine) {
		e.onFrame = fn
	}
}
