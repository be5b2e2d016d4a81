package automaton

import (
	"github.com/Carmen-Shannon/oxy-life/engine/grid"
)

// NextState applies the survival rule to one cell.
// Exactly two alive neighbors keep the current state, exactly three produce a live cell,
// and every other count produces a dead cell.
//
// Parameters:
//   - current: the cell's value in the current generation
//   - neighbors: the number of alive cells among its eight toroidal neighbors
//
// Returns:
//   - uint32: the cell's value in the next generation
func NextState(current uint32, neighbors int) uint32 {
	switch neighbors {
	case 2:
		return current
	case 3:
		return grid.CellAlive
	default:
		return grid.CellDead
	}
}

// CountNeighbors counts the alive cells among the eight toroidal neighbors of (x, y).
// Neighbor coordinates are biased by the grid extent before the modulo so the same expression
// covers interior and edge cells.
//
// Parameters:
//   - cur: the generation being read
//   - x: the column in [0, Width)
//   - y: the row in [0, Height)
//
// Returns:
//   - int: the number of alive neighbors in [0, 8]
func CountNeighbors(cur grid.View, x, y int) int {
	size := cur.Size()
	w, h := size.Width, size.Height
	left, right := (x+w-1)%w, (x+1)%w
	down, up := (y+h-1)%h, (y+1)%h

	n := 0
	for _, i := range [8]int{
		size.Index(right, up),
		size.Index(right, y),
		size.Index(right, down),
		size.Index(x, down),
		size.Index(left, down),
		size.Index(left, y),
		size.Index(left, up),
		size.Index(x, up),
	} {
		if cur.At(i) != grid.CellDead {
			n++
		}
	}
	return n
}

// cellContext is the per-invocation state shared by every cell evaluation.
type cellContext struct {
	painting    bool
	paintX      int
	paintY      int
	paintCopies bool
}

// evaluateCell computes the next-generation value for one cell and whether it should be written.
// While painting only the target cell is written, unless paintCopies asks unpainted cells to carry
// their current value forward.
func evaluateCell(cur grid.View, x, y int, ctx cellContext) (uint32, bool) {
	i := cur.Size().Index(x, y)
	if ctx.painting {
		if x == ctx.paintX && y == ctx.paintY {
			return grid.CellAlive, true
		}
		if ctx.paintCopies {
			return cur.At(i), true
		}
		return 0, false
	}
	return NextState(cur.At(i), CountNeighbors(cur, x, y)), true
}
