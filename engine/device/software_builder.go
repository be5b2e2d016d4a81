package device

import (
	"fmt"
	"log/slog"

	"github.com/Carmen-Shannon/oxy-life/common"
	"github.com/Carmen-Shannon/oxy-life/engine/automaton"
	"github.com/Carmen-Shannon/oxy-life/engine/renderer"
	"github.com/Carmen-Shannon/oxy-life/engine/shading"
	"github.com/gogpu/gg"
)

// SoftwareBuilderOption is a functional option applied to the software device during NewSoftware.
type SoftwareBuilderOption func(*software)

// NewSoftware builds a software device for a grid of the given size rendering into a
// width x height image. It takes ownership of the kernel and closes it on error.
//
// Parameters:
//   - size: the grid dimensions
//   - width: the image width in pixels
//   - height: the image height in pixels
//   - kernel: the CPU step kernel
//   - options: variadic list of SoftwareBuilderOption functions
//
// Returns:
//   - Software: the device
//   - error: an error if any dimension is not positive or the kernel is nil
func NewSoftware(size common.GridSize, width, height int, kernel automaton.Kernel, options ...SoftwareBuilderOption) (Software, error) {
	if kernel == nil {
		return nil, fmt.Errorf("software: nil kernel")
	}
	if size.Width <= 0 || size.Height <= 0 {
		kernel.Close()
		return nil, fmt.Errorf("software: invalid grid %dx%d", size.Width, size.Height)
	}
	if width <= 0 || height <= 0 {
		kernel.Close()
		return nil, fmt.Errorf("software: invalid image %dx%d", width, height)
	}
	s := &software{
		size:   size,
		kernel: kernel,
		policy: shading.Static{},
		clear:  renderer.DefaultClearColor,
		logger: slog.New(slog.DiscardHandler),
		width:  width,
		height: height,
	}
	for _, opt := range options {
		opt(s)
	}
	s.dc = gg.NewContext(width, height)
	return s, nil
}

// WithSoftwarePolicy sets the shading policy used for cell colors. Defaults to shading.Static.
//
// Parameters:
//   - p: the shading policy
//
// Returns:
//   - SoftwareBuilderOption: option function to apply
func WithSoftwarePolicy(p shading.Policy) SoftwareBuilderOption {
	return func(s *software) {
		if p != nil {
			s.policy = p
		}
	}
}

// WithSoftwareClearColor sets the background color.
//
// Parameters:
//   - c: the RGBA background color
//
// Returns:
//   - SoftwareBuilderOption: option function to apply
func WithSoftwareClearColor(c common.Color) SoftwareBuilderOption {
	return func(s *software) {
		s.clear = c
	}
}

// WithSoftwareLogger sets the logger for per-frame debug output.
//
// Parameters:
//   - l: the logger; nil keeps the discard logger
//
// Returns:
//   - SoftwareBuilderOption: option function to apply
func WithSoftwareLogger(l *slog.Logger) SoftwareBuilderOption {
	return func(s *software) {
		if l != nil {
			s.logger = l
		}
	}
}
