package engine

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-life/engine/device"
	"github.com/Carmen-Shannon/oxy-life/engine/grid"
	"github.com/Carmen-Shannon/oxy-life/engine/renderer"
)

// OpenGPU brings up the windowed GPU device: renderer, compiled kernels, cell buffers and bind groups.
// Failures carry one of the startup sentinels, so errors.Is distinguishes ErrGPUUnsupported,
// ErrNoAdapter, ErrSurfaceConfiguration and ErrKernelCompilation.
//
// Parameters:
//   - cfg: a validated configuration
//   - host: the window the surface is created from
//   - state: the grid the device is bound to; pass the same grid to WithState
//
// Returns:
//   - device.Device: the GPU device
//   - error: a wrapped startup error
func OpenGPU(cfg *Config, host renderer.SurfaceSource, state grid.State) (device.Device, error) {
	r, err := renderer.NewRenderer(renderer.BackendTypeWGPU, host, cfg.RendererOptions()...)
	if err != nil {
		return nil, fmt.Errorf("open renderer: %w", err)
	}

	logger := Logger()
	d, err := device.NewGPU(r, state, cfg.Kernel(logger),
		device.WithGPUPolicy(cfg.Policy()),
		device.WithGPULogger(logger),
	)
	if err != nil {
		r.Release()
		return nil, fmt.Errorf("open gpu device: %w", err)
	}
	return d, nil
}

// OpenSoftware builds the headless device rendering at the configured window size.
//
// Parameters:
//   - cfg: a validated configuration
//
// Returns:
//   - device.Software: the software device
//   - error: an error if the sizes are invalid
func OpenSoftware(cfg *Config) (device.Software, error) {
	w, h := cfg.WindowSize()
	logger := Logger()
	d, err := device.NewSoftware(cfg.GridSize(), w, h, cfg.Kernel(logger),
		device.WithSoftwarePolicy(cfg.Policy()),
		device.WithSoftwareLogger(logger),
	)
	if err != nil {
		return nil, fmt.Errorf("open software device: %w", err)
	}
	return d, nil
}
