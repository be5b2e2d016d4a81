// package grid owns the two generations of cell state that the automaton steps between.
package grid

import (
	"fmt"
	"math/rand/v2"

	"github.com/Carmen-Shannon/oxy-life/common"
)

// Generation identifies one half of the packed cell arena.
type Generation int

const (
	GenerationA Generation = iota
	GenerationB
)

// Other returns the generation that is not g.
//
// Returns:
//   - Generation: the opposite half of the arena
func (g Generation) Other() Generation {
	return 1 - g
}

// String implements fmt.Stringer.
func (g Generation) String() string {
	switch g {
	case GenerationA:
		return "A"
	case GenerationB:
		return "B"
	default:
		return fmt.Sprintf("Generation(%d)", int(g))
	}
}

const (
	CellDead  uint32 = 0
	CellAlive uint32 = 1
)

// View is a read-only window over one generation.
// It is a thin wrapper over the arena half so reads stay allocation free.
type View struct {
	size  common.GridSize
	cells []uint32
}

// Size returns the grid dimensions the view covers.
func (v View) Size() common.GridSize {
	return v.size
}

// Len returns the number of cells in the view.
func (v View) Len() int {
	return len(v.cells)
}

// At returns the raw cell value at the flat index i.
func (v View) At(i int) uint32 {
	return v.cells[i]
}

// Alive reports whether the cell at (x, y) is alive. Coordinates wrap toroidally.
//
// Parameters:
//   - x: the column, any integer
//   - y: the row, any integer
//
// Returns:
//   - bool: true if the wrapped cell holds a non-zero value
func (v View) Alive(x, y int) bool {
	x = common.Wrap(x, v.size.Width)
	y = common.Wrap(y, v.size.Height)
	return v.cells[v.size.Index(x, y)] != CellDead
}

// Population counts the alive cells in the view.
func (v View) Population() int {
	n := 0
	for _, c := range v.cells {
		if c != CellDead {
			n++
		}
	}
	return n
}

// Bytes returns the generation as a little-endian byte view for GPU upload.
// The returned slice aliases the arena and must not be retained across steps.
func (v View) Bytes() []byte {
	return common.SliceToBytes(v.cells)
}

// State is the double-buffered grid.
// Both generations live in one packed arena of 2*width*height slots; generation A occupies the
// first half and generation B the second. Which half is current is derived from the step counter.
type State interface {
	// Size returns the fixed grid dimensions.
	Size() common.GridSize

	// Step returns the number of executed simulation steps.
	Step() uint64

	// Current returns the generation that is read this step and rendered this frame.
	Current() Generation

	// Next returns the generation that the kernel writes this step.
	Next() Generation

	// Read returns an immutable view of the given generation.
	Read(g Generation) View

	// Write returns a mutable slice over the given generation.
	Write(g Generation) []uint32

	// Pair returns the current generation for reading and the next generation for writing.
	// The two never alias.
	Pair() (View, []uint32)

	// Swap exchanges the current and next roles and increments the step counter.
	Swap()

	// Seed fills both generations with the same random pattern where each cell is alive with probability p.
	Seed(rng *rand.Rand, p float64)

	// Clear kills every cell in both generations.
	Clear()

	// Arena returns the packed backing store (generation A followed by generation B).
	Arena() []uint32
}

type state struct {
	size  common.GridSize
	arena []uint32
	step  uint64
}

var _ State = &state{}

// NewState allocates a grid with both generations dead.
// The arena is never resized after this call.
//
// Parameters:
//   - size: the grid dimensions, both must be positive
//
// Returns:
//   - State: the new grid
//   - error: an error if either dimension is not positive
func NewState(size common.GridSize) (State, error) {
	if size.Width <= 0 || size.Height <= 0 {
		return nil, fmt.Errorf("grid size must be positive, got %dx%d", size.Width, size.Height)
	}
	return &state{
		size:  size,
		arena: make([]uint32, 2*size.Cells()),
	}, nil
}

func (s *state) Size() common.GridSize {
	return s.size
}

func (s *state) Step() uint64 {
	return s.step
}

func (s *state) Current() Generation {
	return Generation(s.step % 2)
}

func (s *state) Next() Generation {
	return s.Current().Other()
}

func (s *state) Read(g Generation) View {
	return View{size: s.size, cells: s.half(g)}
}

func (s *state) Write(g Generation) []uint32 {
	return s.half(g)
}

func (s *state) Pair() (View, []uint32) {
	cur := s.Current()
	return s.Read(cur), s.Write(cur.Other())
}

func (s *state) Swap() {
	s.step++
}

func (s *state) Seed(rng *rand.Rand, p float64) {
	a := s.half(GenerationA)
	b := s.half(GenerationB)
	for i := range a {
		v := CellDead
		if rng.Float64() < p {
			v = CellAlive
		}
		a[i] = v
		b[i] = v
	}
}

func (s *state) Clear() {
	clear(s.arena)
}

func (s *state) Arena() []uint32 {
	return s.arena
}

// half slices one generation out of the packed arena.
func (s *state) half(g Generation) []uint32 {
	n := s.size.Cells()
	off := int(g&1) * n
	return s.arena[off : off+n : off+n]
}
