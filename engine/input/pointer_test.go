package input

import (
	"math"
	"sync"
	"testing"

	"github.com/Carmen-Shannon/oxy-life/common"
)

func approx(a, b float32) bool {
	return math.Abs(float64(a-b)) < 1e-6
}

func TestMoveNormalizesAndFlipsY(t *testing.T) {
	tests := []struct {
		name   string
		px, py float64
		wantX  float32
		wantY  float32
	}{
		{"top left", 0, 0, -1, 1},
		{"bottom right", 100, 100, 1, -1},
		{"center", 50, 50, 0, 0},
		{"quarter", 25, 75, -0.5, -0.5},
		{"outside canvas", 150, -50, 2, 2},
	}

	p := NewPointer()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p.Move(tt.px, tt.py, 100, 100)
			s := p.Snapshot()
			if !approx(s.X, tt.wantX) || !approx(s.Y, tt.wantY) {
				t.Errorf("Move(%v, %v) = (%v, %v), want (%v, %v)", tt.px, tt.py, s.X, s.Y, tt.wantX, tt.wantY)
			}
		})
	}
}

func TestMoveIgnoresEmptyCanvas(t *testing.T) {
	p := NewPointer()
	p.Move(10, 10, 100, 100)
	before := p.Snapshot()
	p.Move(5, 5, 0, 100)
	if p.Snapshot() != before {
		t.Error("Move with zero width should be ignored")
	}
}

func TestButtons(t *testing.T) {
	p := NewPointer()
	if p.Snapshot().Painting() {
		t.Fatal("new pointer should not be painting")
	}

	p.Press(common.MouseButtonSecondary)
	if p.Snapshot().Painting() {
		t.Error("secondary button must not start painting")
	}
	p.Press(common.MouseButtonPrimary)
	if got := p.Snapshot().Pressed; got != common.MouseButtonPrimary|common.MouseButtonSecondary {
		t.Errorf("Pressed = %b, want 11", got)
	}
	p.Release(common.MouseButtonSecondary)
	if got := p.Snapshot().Pressed; got != common.MouseButtonPrimary {
		t.Errorf("Pressed = %b, want 1", got)
	}
	p.SetButtons(0)
	if p.Snapshot().Painting() {
		t.Error("SetButtons(0) should clear painting")
	}
}

func TestContextMenuSuppressed(t *testing.T) {
	if !NewPointer().ContextMenu() {
		t.Error("ContextMenu should report the event as handled")
	}
}

func TestTarget(t *testing.T) {
	size := common.GridSize{Width: 8, Height: 8}
	tests := []struct {
		name         string
		x, y         float32
		wantX, wantY int
	}{
		{"bottom left corner", -1, -1, 0, 0},
		{"center", 0, 0, 4, 4},
		{"just inside top right", 0.999, 0.999, 7, 7},
		{"right edge wraps", 1, 0, 0, 4},
		{"left of canvas wraps", -1.25, 0, 7, 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gx, gy := State{X: tt.x, Y: tt.y}.Target(size)
			if gx != tt.wantX || gy != tt.wantY {
				t.Errorf("Target(%v, %v) = (%d, %d), want (%d, %d)", tt.x, tt.y, gx, gy, tt.wantX, tt.wantY)
			}
		})
	}
}

func TestSnapshotIsConsistentUnderConcurrentMoves(t *testing.T) {
	p := NewPointer()
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := range 10000 {
			// Both corners satisfy X == -Y, as does the origin.
			if i%2 == 0 {
				p.Move(0, 0, 100, 100)
			} else {
				p.Move(100, 100, 100, 100)
			}
		}
	}()
	for range 10000 {
		s := p.Snapshot()
		if s.X != -s.Y {
			t.Fatalf("torn snapshot (%v, %v)", s.X, s.Y)
		}
	}
	wg.Wait()
}
