package device

import (
	"context"
	"fmt"
	"image"
	"io"
	"log/slog"
	"time"

	"github.com/Carmen-Shannon/oxy-life/common"
	"github.com/Carmen-Shannon/oxy-life/engine/automaton"
	"github.com/Carmen-Shannon/oxy-life/engine/grid"
	"github.com/Carmen-Shannon/oxy-life/engine/shading"
	"github.com/gogpu/gg"
)

// Software is a Device that steps on the CPU kernel and rasterizes the instanced cell quads
// with gg. The last rendered frame can be read back as an image or PNG.
type Software interface {
	Device

	// Image returns the last rendered frame.
	Image() image.Image

	// Quads returns the instance quads of the last rendered frame, dead cells included.
	Quads() []InstanceQuad

	// SavePNG writes the last rendered frame to path.
	//
	// Parameters:
	//   - path: the output file
	//
	// Returns:
	//   - error: an encoding or file error
	SavePNG(path string) error

	// EncodePNG writes the last rendered frame as PNG to w.
	//
	// Parameters:
	//   - w: the destination
	//
	// Returns:
	//   - error: an encoding error
	EncodePNG(w io.Writer) error
}

type software struct {
	size   common.GridSize
	kernel automaton.Kernel
	policy shading.Policy
	clear  common.Color
	logger *slog.Logger

	width, height int
	dc            *gg.Context
	quads         []InstanceQuad
}

var _ Software = &software{}

func (s *software) Name() string {
	return "software"
}

func (s *software) Size() common.GridSize {
	return s.size
}

func (s *software) Upload(state grid.State) error {
	// The host state is the only copy.
	return checkSize(s.size, state)
}

func (s *software) BeginFrame() error {
	return nil
}

func (s *software) Step(state grid.State, inv automaton.Invocation) (bool, error) {
	if err := checkSize(s.size, state); err != nil {
		return false, err
	}
	cur, next := state.Pair()
	return s.kernel.Step(cur, next, inv)
}

func (s *software) Render(state grid.State, elapsed time.Duration) error {
	if err := checkSize(s.size, state); err != nil {
		return err
	}
	view := state.Read(state.Current())

	s.dc.ClearWithColor(toRGBA(s.clear))
	s.quads = InstanceQuads(view, s.width, s.height)
	drawn := 0
	for _, q := range s.quads {
		if q.Degenerate() {
			continue
		}
		c := s.policy.Color(q.Col, q.Row, s.size, elapsed)
		s.dc.SetRGBA(float64(c[0]), float64(c[1]), float64(c[2]), float64(c[3]))
		for t := 0; t < len(q.Vertices); t += 3 {
			s.dc.MoveTo(q.Vertices[t][0], q.Vertices[t][1])
			s.dc.LineTo(q.Vertices[t+1][0], q.Vertices[t+1][1])
			s.dc.LineTo(q.Vertices[t+2][0], q.Vertices[t+2][1])
			s.dc.ClosePath()
		}
		if err := s.dc.Fill(); err != nil {
			return fmt.Errorf("software: fill cell (%d, %d): %w", q.Col, q.Row, err)
		}
		drawn++
	}
	s.logger.LogAttrs(context.Background(), slog.LevelDebug, "software frame",
		slog.Uint64("step", state.Step()),
		slog.Int("drawn", drawn),
	)
	return nil
}

func (s *software) Resize(width, height int) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("software: invalid size %dx%d", width, height)
	}
	if err := s.dc.Resize(width, height); err != nil {
		return err
	}
	s.width, s.height = width, height
	return nil
}

func (s *software) Close() {
	s.kernel.Close()
	if s.dc != nil {
		_ = s.dc.Close()
	}
}

func (s *software) Image() image.Image {
	return s.dc.Image()
}

func (s *software) Quads() []InstanceQuad {
	return s.quads
}

func (s *software) SavePNG(path string) error {
	return s.dc.SavePNG(path)
}

func (s *software) EncodePNG(w io.Writer) error {
	return s.dc.EncodePNG(w)
}

func toRGBA(c common.Color) gg.RGBA {
	return gg.RGBA{R: float64(c[0]), G: float64(c[1]), B: float64(c[2]), A: float64(c[3])}
}
