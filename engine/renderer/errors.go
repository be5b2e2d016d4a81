package renderer

import "errors"

// Startup failures. Each is fatal for the process and never retried.
var (
	// ErrGPUUnsupported is returned when the host cannot provide a WebGPU instance or surface.
	ErrGPUUnsupported = errors.New("webgpu is not supported on this host")

	// ErrNoAdapter is returned when no adapter or device can be acquired.
	ErrNoAdapter = errors.New("no compatible gpu adapter")

	// ErrSurfaceConfiguration is returned when the presentable surface cannot be configured.
	ErrSurfaceConfiguration = errors.New("surface configuration failed")

	// ErrPipelineCompilation is returned when a shader module or pipeline cannot be created.
	ErrPipelineCompilation = errors.New("pipeline compilation failed")
)

// Frame recording failures.
var (
	// ErrSurfaceUnavailable is returned by BeginFrame while the surface has a zero extent,
	// e.g. when the window is minimized. Callers skip the frame.
	ErrSurfaceUnavailable = errors.New("surface has no presentable extent")

	// ErrFrameState is returned when frame recording calls arrive out of order.
	ErrFrameState = errors.New("frame recording out of order")

	// ErrPipelineNotFound is returned when a pipeline key has not been registered.
	ErrPipelineNotFound = errors.New("pipeline not registered")
)
