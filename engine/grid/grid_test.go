package grid

import (
	"math/rand/v2"
	"testing"

	"github.com/Carmen-Shannon/oxy-life/common"
)

func newTestState(t *testing.T, w, h int) State {
	t.Helper()
	s, err := NewState(common.GridSize{Width: w, Height: h})
	if err != nil {
		t.Fatalf("NewState(%d, %d): %v", w, h, err)
	}
	return s
}

func TestNewStateRejectsEmptyGrid(t *testing.T) {
	for _, size := range []common.GridSize{{Width: 0, Height: 8}, {Width: 8, Height: 0}, {Width: -1, Height: 4}} {
		if _, err := NewState(size); err == nil {
			t.Errorf("NewState(%v) returned nil error", size)
		}
	}
}

func TestArenaLayout(t *testing.T) {
	s := newTestState(t, 4, 3)
	if got := len(s.Arena()); got != 24 {
		t.Fatalf("arena length = %d, want 24", got)
	}

	s.Write(GenerationB)[0] = CellAlive
	if s.Arena()[12] != CellAlive {
		t.Fatal("generation B should start at offset width*height")
	}
	if s.Read(GenerationA).Population() != 0 {
		t.Fatal("write to generation B leaked into generation A")
	}
}

func TestSwapAlternatesRoles(t *testing.T) {
	s := newTestState(t, 8, 8)

	for step := uint64(0); step < 5; step++ {
		if s.Step() != step {
			t.Fatalf("Step() = %d, want %d", s.Step(), step)
		}
		want := Generation(step % 2)
		if s.Current() != want {
			t.Fatalf("step %d: Current() = %v, want %v", step, s.Current(), want)
		}
		if s.Next() == s.Current() {
			t.Fatalf("step %d: current and next alias", step)
		}
		s.Swap()
	}
}

func TestPairNeverAliases(t *testing.T) {
	s := newTestState(t, 4, 4)

	for range 3 {
		cur, next := s.Pair()
		for i := range next {
			next[i] = CellAlive
		}
		if cur.Population() != 0 {
			t.Fatalf("writes through next were visible through current at step %d", s.Step())
		}
		for i := range next {
			next[i] = CellDead
		}
		s.Swap()
	}
}

func TestSeedFillsBothGenerations(t *testing.T) {
	s := newTestState(t, 32, 32)
	s.Seed(rand.New(rand.NewPCG(1, 2)), 0.5)

	a := s.Read(GenerationA)
	b := s.Read(GenerationB)
	pop := a.Population()
	if pop == 0 || pop == a.Len() {
		t.Fatalf("seeded population %d is degenerate", pop)
	}
	for i := range a.Len() {
		if a.At(i) != b.At(i) {
			t.Fatalf("generations differ at %d after seeding", i)
		}
	}
}

func TestSeedProbabilityExtremes(t *testing.T) {
	s := newTestState(t, 8, 8)
	rng := rand.New(rand.NewPCG(7, 7))

	s.Seed(rng, 0)
	if got := s.Read(GenerationA).Population(); got != 0 {
		t.Errorf("p=0 population = %d, want 0", got)
	}
	s.Seed(rng, 1)
	if got := s.Read(GenerationB).Population(); got != 64 {
		t.Errorf("p=1 population = %d, want 64", got)
	}

	s.Clear()
	if got := s.Read(GenerationA).Population() + s.Read(GenerationB).Population(); got != 0 {
		t.Errorf("Clear left %d cells alive", got)
	}
}

func TestViewAliveWraps(t *testing.T) {
	s := newTestState(t, 8, 8)
	cells := s.Write(GenerationA)
	cells[s.Size().Index(0, 3)] = CellAlive

	v := s.Read(GenerationA)
	tests := []struct {
		x, y int
		want bool
	}{
		{0, 3, true},
		{8, 3, true},
		{-8, 3, true},
		{0, 11, true},
		{7, 3, false},
		{1, 3, false},
	}
	for _, tt := range tests {
		if got := v.Alive(tt.x, tt.y); got != tt.want {
			t.Errorf("Alive(%d, %d) = %v, want %v", tt.x, tt.y, got, tt.want)
		}
	}
}
