// package input holds the pointer state consumed by the automaton kernel.
// Host event callbacks write it; the frame loop reads one snapshot per frame.
package input

import (
	"math"
	"sync/atomic"

	"github.com/Carmen-Shannon/oxy-life/common"
)

// State is an immutable pointer snapshot.
// X and Y are normalized device coordinates with +Y pointing up. Pressed is the host button bitmask.
type State struct {
	X       float32
	Y       float32
	Pressed uint32
}

// Painting reports whether the primary button bit is held.
func (s State) Painting() bool {
	return s.Pressed&common.MouseButtonPrimary != 0
}

// Target maps the pointer position onto a grid cell.
// The mapping is floor((p + 1) / 2 * extent) per axis, wrapped so out-of-canvas positions
// still resolve to a valid cell.
//
// Parameters:
//   - size: the grid dimensions
//
// Returns:
//   - int: the target column in [0, Width)
//   - int: the target row in [0, Height)
func (s State) Target(size common.GridSize) (int, int) {
	return targetAxis(s.X, size.Width), targetAxis(s.Y, size.Height)
}

func targetAxis(p float32, extent int) int {
	v := math.Floor((float64(p) + 1) / 2 * float64(extent))
	return common.Wrap(int(v), extent)
}

// Pointer is a single-writer, single-reader pointer snapshot.
// All methods are safe to call concurrently.
type Pointer interface {
	// Move recomputes the normalized position from raw pixel coordinates and the canvas extent.
	// Y is flipped so the top edge maps to +1.
	Move(px, py float64, width, height int)

	// SetButtons replaces the pressed bitmask with the host's current button state.
	SetButtons(mask uint32)

	// Press sets the given button bits.
	Press(bits uint32)

	// Release clears the given button bits.
	Release(bits uint32)

	// ContextMenu is called when the host would open a context menu.
	// It always reports true, meaning the event was handled and the menu must be suppressed.
	ContextMenu() bool

	// Snapshot returns the current pointer state.
	Snapshot() State
}

type pointer struct {
	// pos packs the float32 bits of X (high word) and Y (low word) so one load yields a consistent pair.
	pos     atomic.Uint64
	pressed atomic.Uint32
}

var _ Pointer = &pointer{}

// NewPointer creates a Pointer resting at the canvas origin (NDC 0, 0) with no buttons pressed.
//
// Returns:
//   - Pointer: the new pointer
func NewPointer() Pointer {
	p := &pointer{}
	p.store(0, 0)
	return p
}

func (p *pointer) Move(px, py float64, width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	x := px/float64(width)*2 - 1
	y := 1 - py/float64(height)*2
	p.store(float32(x), float32(y))
}

func (p *pointer) SetButtons(mask uint32) {
	p.pressed.Store(mask)
}

func (p *pointer) Press(bits uint32) {
	p.pressed.Or(bits)
}

func (p *pointer) Release(bits uint32) {
	p.pressed.And(^bits)
}

func (p *pointer) ContextMenu() bool {
	return true
}

func (p *pointer) Snapshot() State {
	packed := p.pos.Load()
	return State{
		X:       math.Float32frombits(uint32(packed >> 32)),
		Y:       math.Float32frombits(uint32(packed)),
		Pressed: p.pressed.Load(),
	}
}

func (p *pointer) store(x, y float32) {
	p.pos.Store(uint64(math.Float32bits(x))<<32 | uint64(math.Float32bits(y)))
}
