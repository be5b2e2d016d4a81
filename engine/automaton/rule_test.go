package automaton

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-life/common"
	"github.com/Carmen-Shannon/oxy-life/engine/grid"
)

func TestNextState(t *testing.T) {
	for n := 0; n <= 8; n++ {
		for _, cur := range []uint32{grid.CellDead, grid.CellAlive} {
			got := NextState(cur, n)
			var want uint32
			switch n {
			case 2:
				want = cur
			case 3:
				want = grid.CellAlive
			default:
				want = grid.CellDead
			}
			if got != want {
				t.Errorf("NextState(%d, %d) = %d, want %d", cur, n, got, want)
			}
		}
	}
}

func TestCountNeighborsWrapsToOppositeEdge(t *testing.T) {
	s, err := grid.NewState(common.GridSize{Width: 8, Height: 8})
	if err != nil {
		t.Fatal(err)
	}
	size := s.Size()
	cells := s.Write(grid.GenerationA)
	cells[size.Index(0, 4)] = grid.CellAlive
	cur := s.Read(grid.GenerationA)

	// (7, 4)'s +1 neighbor in x is (0, 4).
	if got := CountNeighbors(cur, 7, 4); got != 1 {
		t.Errorf("CountNeighbors(7, 4) = %d, want 1", got)
	}
	if got := CountNeighbors(cur, 6, 4); got != 0 {
		t.Errorf("CountNeighbors(6, 4) = %d, want 0", got)
	}

	// Corner wraps on both axes.
	clear(cells)
	cells[size.Index(7, 7)] = grid.CellAlive
	if got := CountNeighbors(cur, 0, 0); got != 1 {
		t.Errorf("CountNeighbors(0, 0) with (7, 7) alive = %d, want 1", got)
	}
}

func TestCountNeighborsFullBoard(t *testing.T) {
	s, err := grid.NewState(common.GridSize{Width: 3, Height: 3})
	if err != nil {
		t.Fatal(err)
	}
	for i := range s.Write(grid.GenerationA) {
		s.Write(grid.GenerationA)[i] = grid.CellAlive
	}
	cur := s.Read(grid.GenerationA)
	for y := range 3 {
		for x := range 3 {
			if got := CountNeighbors(cur, x, y); got != 8 {
				t.Errorf("CountNeighbors(%d, %d) = %d, want 8", x, y, got)
			}
		}
	}
}
