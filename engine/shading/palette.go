package shading

import (
	"math"
	"time"

	"github.com/Carmen-Shannon/oxy-life/common"
	"github.com/Carmen-Shannon/oxy-life/engine/automaton"
)

// DefaultPalette returns the nine keyframe colors cycled by the palette policy.
//
// Returns:
//   - [automaton.PaletteSize]common.Color: the keyframes in cycle order
func DefaultPalette() [automaton.PaletteSize]common.Color {
	return [automaton.PaletteSize]common.Color{
		{0.94, 0.33, 0.31, 1}, // coral
		{0.98, 0.60, 0.20, 1}, // orange
		{0.99, 0.85, 0.21, 1}, // yellow
		{0.55, 0.83, 0.29, 1}, // lime
		{0.16, 0.71, 0.48, 1}, // green
		{0.13, 0.69, 0.84, 1}, // cyan
		{0.26, 0.45, 0.90, 1}, // blue
		{0.55, 0.34, 0.87, 1}, // violet
		{0.89, 0.36, 0.71, 1}, // magenta
	}
}

// Palette cycles through a fixed ring of keyframe colors, blending linearly between neighbors.
// The color depends only on elapsed time.
type Palette struct {
	colors         [automaton.PaletteSize]common.Color
	keyframeLength time.Duration
}

var _ Policy = &Palette{}

// NewPalette creates a Palette policy. A non-positive keyframe length falls back to DefaultKeyframeLength.
//
// Parameters:
//   - colors: the keyframe ring
//   - keyframeLength: dwell time per keyframe
//
// Returns:
//   - *Palette: the palette policy
func NewPalette(colors [automaton.PaletteSize]common.Color, keyframeLength time.Duration) *Palette {
	if keyframeLength <= 0 {
		keyframeLength = DefaultKeyframeLength
	}
	return &Palette{colors: colors, keyframeLength: keyframeLength}
}

// KeyframeLength returns the dwell time per keyframe.
func (p *Palette) KeyframeLength() time.Duration {
	return p.keyframeLength
}

// At returns the blended palette color at the given elapsed time.
// The keyframe index is floor(elapsed / keyframeLength) mod len and the blend factor is its fractional part.
//
// Parameters:
//   - elapsed: time since the frame loop started
//
// Returns:
//   - common.Color: the interpolated color
func (p *Palette) At(elapsed time.Duration) common.Color {
	t := float64(elapsed) / float64(p.keyframeLength)
	whole := math.Floor(t)
	n := len(p.colors)
	idx := common.Wrap(int(whole), n)
	next := (idx + 1) % n
	return p.colors[idx].Mix(p.colors[next], float32(t-whole))
}

func (p *Palette) Mode() automaton.ShadingMode {
	return automaton.ShadingPalette
}

func (p *Palette) Color(_, _ int, _ common.GridSize, elapsed time.Duration) common.Color {
	return p.At(elapsed)
}

func (p *Palette) FillUniforms(u *automaton.GPUSimUniforms, elapsed time.Duration) {
	u.Shading = uint32(automaton.ShadingPalette)
	u.Time = float32(elapsed.Seconds())
	u.KeyframeLength = float32(p.keyframeLength.Seconds())
	u.PaletteLen = uint32(len(p.colors))
	u.Palette = p.colors
}
