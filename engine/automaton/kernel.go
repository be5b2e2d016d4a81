// package automaton implements the per-cell life rule, toroidal neighbor addressing and the paint
// override. The WGSL kernel in assets/life_step.wgsl is the GPU form of the same procedure; Kernel is the
// CPU form, fanned out over tile rows on a worker pool.
package automaton

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/Carmen-Shannon/oxy-life/common"
	"github.com/Carmen-Shannon/oxy-life/engine/grid"
	"github.com/Carmen-Shannon/oxy-life/engine/input"
)

// DefaultTileSize is the edge length of the square block of cells handled by one workgroup.
const DefaultTileSize = 8

// Invocation carries the per-step inputs that do not live in the grid.
type Invocation struct {
	// Pointer is the snapshot taken at the start of the frame.
	Pointer input.State
	// Elapsed is the time since the frame loop started, used by the write predicate.
	Elapsed time.Duration
}

// Kernel advances a generation by one step.
type Kernel interface {
	// TileSize returns the workgroup edge length.
	//
	// Returns:
	//   - int: cells per tile along each axis
	TileSize() int

	// Workgroups returns the dispatch grid needed to cover a grid of the given size.
	//
	// Parameters:
	//   - size: the grid dimensions
	//
	// Returns:
	//   - uint32: workgroups along x, ceil(width / tile)
	//   - uint32: workgroups along y, ceil(height / tile)
	Workgroups(size common.GridSize) (uint32, uint32)

	// WriteEnabled reports whether an invocation at the given elapsed time writes at all.
	//
	// Parameters:
	//   - elapsed: time since the frame loop started
	//
	// Returns:
	//   - bool: false when the write predicate suppresses this invocation
	WriteEnabled(elapsed time.Duration) bool

	// PaintCopiesCurrent reports whether unpainted cells copy their current value while painting.
	//
	// Returns:
	//   - bool: true if the copy-through paint policy is enabled
	PaintCopiesCurrent() bool

	// FillUniforms writes the kernel-owned fields of the shared uniform block.
	//
	// Parameters:
	//   - u: the uniform block to update
	//   - size: the grid dimensions
	//   - inv: the invocation inputs for this frame
	FillUniforms(u *GPUSimUniforms, size common.GridSize, inv Invocation)

	// Step reads cur and writes next for every cell. The two must be distinct generations.
	// Cells are evaluated in tile rows on the worker pool and Step returns after all of them finish.
	//
	// Parameters:
	//   - cur: the current generation
	//   - next: the next generation, same length as cur
	//   - inv: the invocation inputs for this step
	//
	// Returns:
	//   - bool: false if the write predicate suppressed the invocation and next was left untouched
	//   - error: an error if the buffers do not match the grid
	Step(cur grid.View, next []uint32, inv Invocation) (bool, error)

	// Close stops the worker pool.
	Close()
}

type kernel struct {
	tileSize    int
	workers     int
	paintCopies bool
	writeGate   WritePredicate
	logger      *slog.Logger

	// pool persists across steps so a step never pays goroutine spawn cost.
	// Nil when workers <= 1, in which case Step runs inline.
	pool worker.DynamicWorkerPool
}

var _ Kernel = &kernel{}

func (k *kernel) TileSize() int {
	return k.tileSize
}

func (k *kernel) Workgroups(size common.GridSize) (uint32, uint32) {
	return common.CeilDiv(size.Width, k.tileSize), common.CeilDiv(size.Height, k.tileSize)
}

func (k *kernel) WriteEnabled(elapsed time.Duration) bool {
	return k.writeGate(elapsed)
}

func (k *kernel) PaintCopiesCurrent() bool {
	return k.paintCopies
}

func (k *kernel) FillUniforms(u *GPUSimUniforms, size common.GridSize, inv Invocation) {
	u.Grid = [2]float32{float32(size.Width), float32(size.Height)}
	u.Pointer = [2]float32{inv.Pointer.X, inv.Pointer.Y}
	u.Pressed = inv.Pointer.Pressed
	u.WriteEnabled = boolToU32(k.WriteEnabled(inv.Elapsed))
	u.PaintCopies = boolToU32(k.paintCopies)
}

func (k *kernel) Step(cur grid.View, next []uint32, inv Invocation) (bool, error) {
	size := cur.Size()
	if cur.Len() != size.Cells() || len(next) != size.Cells() {
		return false, fmt.Errorf("automaton: buffer length mismatch: current %d, next %d, grid %dx%d", cur.Len(), len(next), size.Width, size.Height)
	}
	if !k.WriteEnabled(inv.Elapsed) {
		return false, nil
	}

	ctx := cellContext{
		painting:    inv.Pointer.Painting(),
		paintCopies: k.paintCopies,
	}
	if ctx.painting {
		ctx.paintX, ctx.paintY = inv.Pointer.Target(size)
	}

	_, tileRows := k.Workgroups(size)
	if k.pool == nil || tileRows <= 1 {
		k.stepRows(cur, next, ctx, 0, size.Height)
		return true, nil
	}

	// Each task owns a disjoint band of rows in next, so no synchronization beyond the barrier is needed.
	var wg sync.WaitGroup
	for ty := range int(tileRows) {
		y0 := ty * k.tileSize
		y1 := min(y0+k.tileSize, size.Height)
		wg.Add(1)
		k.pool.SubmitTask(worker.Task{
			ID: ty,
			Do: func() (any, error) {
				defer wg.Done()
				k.stepRows(cur, next, ctx, y0, y1)
				return nil, nil
			},
		})
	}
	wg.Wait()
	return true, nil
}

func (k *kernel) Close() {
	if k.pool != nil {
		k.pool.Stop()
		k.pool = nil
	}
}

// stepRows evaluates every cell in rows [y0, y1).
func (k *kernel) stepRows(cur grid.View, next []uint32, ctx cellContext, y0, y1 int) {
	size := cur.Size()
	for y := y0; y < y1; y++ {
		for x := range size.Width {
			if v, ok := evaluateCell(cur, x, y, ctx); ok {
				next[size.Index(x, y)] = v
			}
		}
	}
}
