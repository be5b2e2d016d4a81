package engine

import (
	"errors"

	"github.com/Carmen-Shannon/oxy-life/engine/renderer"
)

// Startup failures. Each is fatal for the process and is never retried.
var (
	// ErrGPUUnsupported means the host offers no GPU surface at all.
	ErrGPUUnsupported = renderer.ErrGPUUnsupported
	// ErrNoAdapter means no adapter or device could be acquired.
	ErrNoAdapter = renderer.ErrNoAdapter
	// ErrSurfaceConfiguration means the presentable surface could not be bound.
	ErrSurfaceConfiguration = renderer.ErrSurfaceConfiguration
	// ErrKernelCompilation means the step kernel or the cell shaders failed to build.
	ErrKernelCompilation = renderer.ErrPipelineCompilation
	// ErrInvalidConfig is returned by Config.Validate.
	ErrInvalidConfig = errors.New("invalid configuration")
)

var (
	// ErrNotStarted is returned by Frame before Start.
	ErrNotStarted = errors.New("engine not started")
	// ErrAlreadyStarted is returned by a second call to Start.
	ErrAlreadyStarted = errors.New("engine already started")
	// ErrNoDevice is returned by Start when no device was configured.
	ErrNoDevice = errors.New("engine has no device")
)
