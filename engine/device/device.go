// package device hides where a generation is stepped and drawn. The GPU device records the step
// kernel and the instanced cell draw into one command batch per frame; the software device runs the
// CPU kernel and rasterizes the same instanced quads into an offscreen image.
package device

import (
	"errors"
	"fmt"
	"time"

	"github.com/Carmen-Shannon/oxy-life/common"
	"github.com/Carmen-Shannon/oxy-life/engine/automaton"
	"github.com/Carmen-Shannon/oxy-life/engine/grid"
)

// ErrSizeMismatch is returned when a grid state does not match the size the device was built for.
var ErrSizeMismatch = errors.New("grid size does not match device")

// Device steps and draws a grid. A frame is BeginFrame, at most one Step, then Render.
// The frame loop swaps generations between Step and Render, so Render always draws the
// generation that is current after the step.
type Device interface {
	// Name identifies the implementation in logs.
	Name() string

	// Size returns the grid dimensions the device was built for.
	Size() common.GridSize

	// Upload replaces the device copy of both generations with the host state.
	// Called after the host seeds or clears the grid.
	//
	// Parameters:
	//   - state: the host grid
	//
	// Returns:
	//   - error: ErrSizeMismatch or a transfer error
	Upload(state grid.State) error

	// BeginFrame opens a frame.
	//
	// Returns:
	//   - error: renderer.ErrSurfaceUnavailable when the frame should be skipped, or a device error
	BeginFrame() error

	// Step advances state's current generation into its next generation.
	//
	// Parameters:
	//   - state: the grid whose Current generation is read and Next generation written
	//   - inv: the pointer snapshot and elapsed time for this step
	//
	// Returns:
	//   - bool: false if the write predicate suppressed the step; the caller must not swap
	//   - error: a device error
	Step(state grid.State, inv automaton.Invocation) (bool, error)

	// Render draws state's current generation and finishes the frame.
	//
	// Parameters:
	//   - state: the grid to draw
	//   - elapsed: time since the frame loop started, for shading
	//
	// Returns:
	//   - error: a device error
	Render(state grid.State, elapsed time.Duration) error

	// Resize adapts the output to a new framebuffer size. The grid is unaffected.
	//
	// Parameters:
	//   - width: the new width in pixels
	//   - height: the new height in pixels
	//
	// Returns:
	//   - error: a surface error
	Resize(width, height int) error

	// Close releases the kernel and every device resource.
	Close()
}

func checkSize(want common.GridSize, state grid.State) error {
	if got := state.Size(); got != want {
		return fmt.Errorf("%w: device %dx%d, grid %dx%d", ErrSizeMismatch, want.Width, want.Height, got.Width, got.Height)
	}
	return nil
}
