package automaton

import (
	"math/rand/v2"
	"testing"
	"time"

	"github.com/Carmen-Shannon/oxy-life/common"
	"github.com/Carmen-Shannon/oxy-life/engine/grid"
	"github.com/Carmen-Shannon/oxy-life/engine/input"
)

func newGrid(t *testing.T, w, h int) grid.State {
	t.Helper()
	s, err := grid.NewState(common.GridSize{Width: w, Height: h})
	if err != nil {
		t.Fatalf("NewState: %v", err)
	}
	return s
}

func newKernel(t *testing.T, options ...KernelBuilderOption) Kernel {
	t.Helper()
	k := NewKernel(options...)
	t.Cleanup(k.Close)
	return k
}

// step runs one kernel invocation and swaps, failing the test on error.
func step(t *testing.T, k Kernel, s grid.State, inv Invocation) {
	t.Helper()
	cur, next := s.Pair()
	if _, err := k.Step(cur, next, inv); err != nil {
		t.Fatalf("Step: %v", err)
	}
	s.Swap()
}

func aliveSet(s grid.State) map[[2]int]bool {
	v := s.Read(s.Current())
	out := make(map[[2]int]bool)
	for i := range v.Len() {
		if v.At(i) != grid.CellDead {
			x, y := v.Size().Coord(i)
			out[[2]int{x, y}] = true
		}
	}
	return out
}

func expectAlive(t *testing.T, s grid.State, want ...[2]int) {
	t.Helper()
	got := aliveSet(s)
	if len(got) != len(want) {
		t.Fatalf("step %d: alive = %v, want %v", s.Step(), got, want)
	}
	for _, c := range want {
		if !got[c] {
			t.Fatalf("step %d: cell %v not alive, alive = %v", s.Step(), c, got)
		}
	}
}

func TestBlinkerOscillation(t *testing.T) {
	for _, workers := range []int{1, 4} {
		s := newGrid(t, 16, 16)
		k := newKernel(t, WithWorkers(workers))
		cells := s.Write(s.Current())
		size := s.Size()
		cells[size.Index(7, 8)] = grid.CellAlive
		cells[size.Index(8, 8)] = grid.CellAlive
		cells[size.Index(9, 8)] = grid.CellAlive

		step(t, k, s, Invocation{})
		expectAlive(t, s, [2]int{8, 7}, [2]int{8, 8}, [2]int{8, 9})

		step(t, k, s, Invocation{})
		expectAlive(t, s, [2]int{7, 8}, [2]int{8, 8}, [2]int{9, 8})
	}
}

func TestBlinkerAcrossSeam(t *testing.T) {
	s := newGrid(t, 8, 8)
	k := newKernel(t, WithWorkers(1))
	cells := s.Write(s.Current())
	size := s.Size()
	cells[size.Index(7, 3)] = grid.CellAlive
	cells[size.Index(0, 3)] = grid.CellAlive
	cells[size.Index(1, 3)] = grid.CellAlive

	step(t, k, s, Invocation{})
	expectAlive(t, s, [2]int{0, 2}, [2]int{0, 3}, [2]int{0, 4})
}

func TestEmptyBoardStaysEmpty(t *testing.T) {
	s := newGrid(t, 24, 24)
	k := newKernel(t, WithWorkers(3))
	for range 10 {
		step(t, k, s, Invocation{Elapsed: time.Second})
	}
	if pop := s.Read(s.Current()).Population(); pop != 0 {
		t.Fatalf("empty board grew %d cells", pop)
	}
}

func TestPaintOverride(t *testing.T) {
	s := newGrid(t, 8, 8)
	k := newKernel(t, WithWorkers(1))
	size := s.Size()

	// Next generation holds a sentinel pattern that must survive untouched.
	next := s.Write(s.Next())
	for i := range next {
		next[i] = uint32(i%2) * grid.CellAlive
	}
	before := append([]uint32(nil), next...)

	// A full current board would kill every cell under the normal rule.
	for i := range s.Write(s.Current()) {
		s.Write(s.Current())[i] = grid.CellAlive
	}

	ptr := input.State{X: -0.5, Y: 0.5, Pressed: common.MouseButtonPrimary}
	tx, ty := ptr.Target(size)
	if tx != 2 || ty != 6 {
		t.Fatalf("Target = (%d, %d), want (2, 6)", tx, ty)
	}

	cur, next := s.Pair()
	wrote, err := k.Step(cur, next, Invocation{Pointer: ptr})
	if err != nil || !wrote {
		t.Fatalf("Step = %v, %v", wrote, err)
	}

	target := size.Index(tx, ty)
	for i := range next {
		if i == target {
			if next[i] != grid.CellAlive {
				t.Errorf("painted cell %d not alive", i)
			}
			continue
		}
		if next[i] != before[i] {
			t.Errorf("unpainted cell %d changed from %d to %d", i, before[i], next[i])
		}
	}
}

func TestPaintCopiesCurrent(t *testing.T) {
	s := newGrid(t, 8, 8)
	k := newKernel(t, WithWorkers(1), WithPaintCopiesCurrent(true))
	s.Seed(rand.New(rand.NewPCG(3, 4)), 0.4)
	clear(s.Write(s.Next()))

	ptr := input.State{X: 0, Y: 0, Pressed: common.MouseButtonPrimary}
	cur, next := s.Pair()
	if _, err := k.Step(cur, next, Invocation{Pointer: ptr}); err != nil {
		t.Fatal(err)
	}

	target := s.Size().Index(ptr.Target(s.Size()))
	for i := range next {
		want := cur.At(i)
		if i == target {
			want = grid.CellAlive
		}
		if next[i] != want {
			t.Errorf("cell %d = %d, want %d", i, next[i], want)
		}
	}
}

func TestSecondaryButtonDoesNotPaint(t *testing.T) {
	s := newGrid(t, 8, 8)
	k := newKernel(t, WithWorkers(1))
	ptr := input.State{Pressed: common.MouseButtonSecondary}
	step(t, k, s, Invocation{Pointer: ptr})
	if pop := s.Read(s.Current()).Population(); pop != 0 {
		t.Fatalf("secondary button painted %d cells", pop)
	}
}

func TestWritePredicateSuppressesStep(t *testing.T) {
	s := newGrid(t, 8, 8)
	k := newKernel(t, WithWorkers(1), WithWritePredicate(BurstWindow(32*time.Millisecond, 500*time.Millisecond)))
	next := s.Write(s.Next())
	next[5] = 7

	cur, next := s.Pair()
	wrote, err := k.Step(cur, next, Invocation{Elapsed: 100 * time.Millisecond})
	if err != nil {
		t.Fatal(err)
	}
	if wrote {
		t.Fatal("Step wrote outside the burst window")
	}
	if next[5] != 7 {
		t.Fatalf("suppressed step touched next generation")
	}

	wrote, err = k.Step(cur, next, Invocation{Elapsed: 510 * time.Millisecond})
	if err != nil || !wrote {
		t.Fatalf("Step inside burst window = %v, %v", wrote, err)
	}
	if next[5] != grid.CellDead {
		t.Fatal("step inside burst window did not apply the rule")
	}
}

func TestParallelMatchesSerial(t *testing.T) {
	sizes := []common.GridSize{{Width: 64, Height: 64}, {Width: 37, Height: 29}, {Width: 9, Height: 100}}
	for _, size := range sizes {
		serial := newGrid(t, size.Width, size.Height)
		parallel := newGrid(t, size.Width, size.Height)
		rng := rand.New(rand.NewPCG(uint64(size.Width), uint64(size.Height)))
		serial.Seed(rng, 0.35)
		copy(parallel.Arena(), serial.Arena())

		ks := newKernel(t, WithWorkers(1))
		kp := newKernel(t, WithWorkers(6))
		for range 8 {
			step(t, ks, serial, Invocation{})
			step(t, kp, parallel, Invocation{})
		}

		a := serial.Read(serial.Current())
		b := parallel.Read(parallel.Current())
		for i := range a.Len() {
			if a.At(i) != b.At(i) {
				x, y := size.Coord(i)
				t.Fatalf("%dx%d: cell (%d, %d) serial=%d parallel=%d", size.Width, size.Height, x, y, a.At(i), b.At(i))
			}
		}
	}
}

func TestStepRejectsMismatchedBuffers(t *testing.T) {
	s := newGrid(t, 8, 8)
	k := newKernel(t, WithWorkers(1))
	if _, err := k.Step(s.Read(s.Current()), make([]uint32, 3), Invocation{}); err == nil {
		t.Fatal("Step accepted a short next buffer")
	}
}

func TestWorkgroups(t *testing.T) {
	k := newKernel(t, WithWorkers(1))
	tests := []struct {
		size   common.GridSize
		wx, wy uint32
	}{
		{common.GridSize{Width: 64, Height: 64}, 8, 8},
		{common.GridSize{Width: 65, Height: 8}, 9, 1},
		{common.GridSize{Width: 1, Height: 1}, 1, 1},
	}
	for _, tt := range tests {
		wx, wy := k.Workgroups(tt.size)
		if wx != tt.wx || wy != tt.wy {
			t.Errorf("Workgroups(%v) = (%d, %d), want (%d, %d)", tt.size, wx, wy, tt.wx, tt.wy)
		}
	}
}

func TestFillUniforms(t *testing.T) {
	k := newKernel(t, WithWorkers(1), WithPaintCopiesCurrent(true), WithWritePredicate(func(time.Duration) bool { return false }))
	var u GPUSimUniforms
	k.FillUniforms(&u, common.GridSize{Width: 32, Height: 16}, Invocation{
		Pointer: input.State{X: 0.25, Y: -0.75, Pressed: 3},
	})
	if u.Grid != [2]float32{32, 16} || u.Pointer != [2]float32{0.25, -0.75} {
		t.Errorf("grid/pointer = %v/%v", u.Grid, u.Pointer)
	}
	if u.Pressed != 3 || u.WriteEnabled != 0 || u.PaintCopies != 1 {
		t.Errorf("pressed=%d write=%d copies=%d", u.Pressed, u.WriteEnabled, u.PaintCopies)
	}
}
