package device

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-life/common"
	"github.com/Carmen-Shannon/oxy-life/engine/grid"
	"github.com/Carmen-Shannon/oxy-life/engine/shading"
)

func newState(t *testing.T, w, h int) grid.State {
	t.Helper()
	s, err := grid.NewState(common.GridSize{Width: w, Height: h})
	if err != nil {
		t.Fatalf("NewState: %v", err)
	}
	return s
}

func TestSingleAliveCellDrawsOneQuad(t *testing.T) {
	tests := []struct {
		name   string
		w, h   int
		x0, y0 int
	}{
		{name: "origin", w: 4, h: 4, x0: 0, y0: 0},
		{name: "interior", w: 8, h: 6, x0: 3, y0: 2},
		{name: "top right", w: 5, h: 7, x0: 4, y0: 6},
	}

	const width, height = 400, 280
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newState(t, tt.w, tt.h)
			s.Write(s.Current())[s.Size().Index(tt.x0, tt.y0)] = grid.CellAlive

			quads := InstanceQuads(s.Read(s.Current()), width, height)
			if len(quads) != tt.w*tt.h {
				t.Fatalf("got %d quads, want %d", len(quads), tt.w*tt.h)
			}

			var live []InstanceQuad
			for _, q := range quads {
				if !q.Degenerate() {
					live = append(live, q)
				}
			}
			if len(live) != 1 {
				t.Fatalf("got %d non-degenerate quads, want 1", len(live))
			}
			q := live[0]
			if q.Col != tt.x0 || q.Row != tt.y0 {
				t.Fatalf("live quad at (%d,%d), want (%d,%d)", q.Col, q.Row, tt.x0, tt.y0)
			}

			// Row 0 sits at the bottom of the framebuffer.
			lo, hi := shading.CellBounds(tt.x0, tt.y0, s.Size())
			left, bottom := shading.NDCToPixel(lo, width, height)
			right, top := shading.NDCToPixel(hi, width, height)
			const eps = 1e-3
			if q.Min[0] < left-eps || q.Max[0] > right+eps || q.Min[1] < top-eps || q.Max[1] > bottom+eps {
				t.Fatalf("quad [%v..%v] escapes cell pixels x[%v..%v] y[%v..%v]", q.Min, q.Max, left, right, top, bottom)
			}
			c := q.Center()
			if d := c[0] - (left+right)/2; d > eps || d < -eps {
				t.Fatalf("quad center x = %v, want %v", c[0], (left+right)/2)
			}
			if d := c[1] - (top+bottom)/2; d > eps || d < -eps {
				t.Fatalf("quad center y = %v, want %v", c[1], (top+bottom)/2)
			}
		})
	}
}

func TestDeadGridIsAllDegenerate(t *testing.T) {
	s := newState(t, 6, 6)
	for _, q := range InstanceQuads(s.Read(s.Current()), 120, 120) {
		if !q.Degenerate() {
			t.Fatalf("instance %d not degenerate in a dead grid", q.Instance)
		}
	}
}
