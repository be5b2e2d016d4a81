package device

import (
	"bytes"
	"errors"
	"image/png"
	"testing"
	"time"

	"github.com/Carmen-Shannon/oxy-life/common"
	"github.com/Carmen-Shannon/oxy-life/engine/automaton"
	"github.com/Carmen-Shannon/oxy-life/engine/grid"
	"github.com/Carmen-Shannon/oxy-life/engine/renderer"
)

func newSoftware(t *testing.T, s grid.State, width, height int, options ...automaton.KernelBuilderOption) Software {
	t.Helper()
	d, err := NewSoftware(s.Size(), width, height, automaton.NewKernel(options...))
	if err != nil {
		t.Fatalf("NewSoftware: %v", err)
	}
	t.Cleanup(d.Close)
	return d
}

func alive(s grid.State) map[[2]int]bool {
	v := s.Read(s.Current())
	out := map[[2]int]bool{}
	for y := range s.Size().Height {
		for x := range s.Size().Width {
			if v.Alive(x, y) {
				out[[2]int{x, y}] = true
			}
		}
	}
	return out
}

func setAlive(s grid.State, cells ...[2]int) {
	cur := s.Write(s.Current())
	for _, c := range cells {
		cur[s.Size().Index(c[0], c[1])] = grid.CellAlive
	}
}

func TestNewSoftwareRejectsBadInput(t *testing.T) {
	k := automaton.NewKernel()
	defer k.Close()
	tests := []struct {
		name          string
		size          common.GridSize
		width, height int
		kernel        automaton.Kernel
	}{
		{name: "empty grid", size: common.GridSize{}, width: 10, height: 10, kernel: k},
		{name: "empty image", size: common.GridSize{Width: 2, Height: 2}, width: 0, height: 10, kernel: k},
		{name: "nil kernel", size: common.GridSize{Width: 2, Height: 2}, width: 10, height: 10},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewSoftware(tt.size, tt.width, tt.height, tt.kernel); err == nil {
				t.Fatal("expected an error")
			}
		})
	}
}

func TestSoftwareStepsBlinker(t *testing.T) {
	s := newState(t, 5, 5)
	setAlive(s, [2]int{1, 2}, [2]int{2, 2}, [2]int{3, 2})
	d := newSoftware(t, s, 50, 50, automaton.WithWorkers(1))

	vertical := map[[2]int]bool{{2, 1}: true, {2, 2}: true, {2, 3}: true}
	horizontal := alive(s)
	for i := range 4 {
		written, err := d.Step(s, automaton.Invocation{})
		if err != nil {
			t.Fatalf("Step %d: %v", i, err)
		}
		if !written {
			t.Fatalf("Step %d reported suppressed", i)
		}
		s.Swap()

		want := vertical
		if i%2 == 1 {
			want = horizontal
		}
		got := alive(s)
		if len(got) != len(want) {
			t.Fatalf("step %d: got %v, want %v", i, got, want)
		}
		for c := range want {
			if !got[c] {
				t.Fatalf("step %d: cell %v dead, want alive", i, c)
			}
		}
	}
}

func TestSoftwareSuppressedStep(t *testing.T) {
	s := newState(t, 4, 4)
	setAlive(s, [2]int{1, 1})
	d := newSoftware(t, s, 40, 40, automaton.WithWritePredicate(func(time.Duration) bool { return false }))

	next := append([]uint32(nil), s.Write(s.Next())...)
	written, err := d.Step(s, automaton.Invocation{})
	if err != nil {
		t.Fatalf("Step: %v", err)
	}
	if written {
		t.Fatal("Step reported a write under a closed predicate")
	}
	for i, v := range s.Write(s.Next()) {
		if v != next[i] {
			t.Fatalf("next generation cell %d changed to %d", i, v)
		}
	}
}

func TestSoftwareRenderPaintsLiveCell(t *testing.T) {
	const width, height = 80, 80
	s := newState(t, 4, 4)
	setAlive(s, [2]int{2, 0})
	d := newSoftware(t, s, width, height)

	if err := d.BeginFrame(); err != nil {
		t.Fatalf("BeginFrame: %v", err)
	}
	if err := d.Render(s, 0); err != nil {
		t.Fatalf("Render: %v", err)
	}

	var drawn []InstanceQuad
	for _, q := range d.Quads() {
		if !q.Degenerate() {
			drawn = append(drawn, q)
		}
	}
	if len(drawn) != 1 {
		t.Fatalf("drew %d quads, want 1", len(drawn))
	}

	img := d.Image()
	bg := renderer.DefaultClearColor
	c := drawn[0].Center()
	r, g, b, _ := img.At(int(c[0]), int(c[1])).RGBA()
	br, bgc, bb := uint32(bg[0]*0xffff), uint32(bg[1]*0xffff), uint32(bg[2]*0xffff)
	if near16(r, br) && near16(g, bgc) && near16(b, bb) {
		t.Fatalf("pixel at live cell center (%v) is the clear color", c)
	}
	// Cell (2,0) is in the bottom half, so the top-left corner stays clear.
	r, g, b, _ = img.At(1, 1).RGBA()
	if !near16(r, br) || !near16(g, bgc) || !near16(b, bb) {
		t.Fatalf("pixel (1,1) = %d,%d,%d, want the clear color", r, g, b)
	}
}

func near16(a, b uint32) bool {
	d := int(a) - int(b)
	return d < 0x300 && d > -0x300
}

func TestSoftwareSizeMismatch(t *testing.T) {
	s := newState(t, 4, 4)
	d := newSoftware(t, s, 40, 40)
	other := newState(t, 5, 4)

	if _, err := d.Step(other, automaton.Invocation{}); !errors.Is(err, ErrSizeMismatch) {
		t.Fatalf("Step error = %v, want ErrSizeMismatch", err)
	}
	if err := d.Render(other, 0); !errors.Is(err, ErrSizeMismatch) {
		t.Fatalf("Render error = %v, want ErrSizeMismatch", err)
	}
	if err := d.Upload(other); !errors.Is(err, ErrSizeMismatch) {
		t.Fatalf("Upload error = %v, want ErrSizeMismatch", err)
	}
}

func TestSoftwareEncodePNG(t *testing.T) {
	s := newState(t, 3, 3)
	setAlive(s, [2]int{1, 1})
	d := newSoftware(t, s, 30, 20)
	if err := d.Render(s, time.Second); err != nil {
		t.Fatalf("Render: %v", err)
	}

	var buf bytes.Buffer
	if err := d.EncodePNG(&buf); err != nil {
		t.Fatalf("EncodePNG: %v", err)
	}
	img, err := png.Decode(&buf)
	if err != nil {
		t.Fatalf("png.Decode: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 30 || b.Dy() != 20 {
		t.Fatalf("decoded bounds %v, want 30x20", b)
	}
}

func TestSoftwareResize(t *testing.T) {
	s := newState(t, 3, 3)
	d := newSoftware(t, s, 30, 30)
	if err := d.Resize(0, 10); err == nil {
		t.Fatal("Resize(0, 10) succeeded")
	}
	if err := d.Resize(60, 45); err != nil {
		t.Fatalf("Resize: %v", err)
	}
	if err := d.Render(s, 0); err != nil {
		t.Fatalf("Render: %v", err)
	}
	if b := d.Image().Bounds(); b.Dx() != 60 || b.Dy() != 45 {
		t.Fatalf("image bounds %v, want 60x45", b)
	}
}
