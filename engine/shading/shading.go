package shading

import (
	"fmt"
	"strings"
	"time"

	"github.com/Carmen-Shannon/oxy-life/common"
	"github.com/Carmen-Shannon/oxy-life/engine/automaton"
)

// DefaultKeyframeLength is how long the palette dwells between adjacent keyframes.
const DefaultKeyframeLength = 500 * time.Millisecond

// Policy computes the fragment color of a cell.
// Implementations never read or mutate simulation state.
type Policy interface {
	// Mode returns the uniform-block selector for this policy.
	Mode() automaton.ShadingMode

	// Color returns the color of grid cell (col, row) at the given elapsed time.
	//
	// Parameters:
	//   - col: the column
	//   - row: the row
	//   - size: the grid dimensions
	//   - elapsed: time since the frame loop started
	//
	// Returns:
	//   - common.Color: the fragment color
	Color(col, row int, size common.GridSize, elapsed time.Duration) common.Color

	// FillUniforms writes the shading-owned fields of the shared uniform block.
	//
	// Parameters:
	//   - u: the uniform block to update
	//   - elapsed: time since the frame loop started
	FillUniforms(u *automaton.GPUSimUniforms, elapsed time.Duration)
}

// ParseMode converts a shading name into its mode.
//
// Parameters:
//   - s: "static" or "palette", case insensitive
//
// Returns:
//   - automaton.ShadingMode: the parsed mode
//   - error: an error if the name is not recognized
func ParseMode(s string) (automaton.ShadingMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "static", "gradient", "position":
		return automaton.ShadingStatic, nil
	case "palette", "keyframe", "time":
		return automaton.ShadingPalette, nil
	default:
		return 0, fmt.Errorf("unknown shading mode %q", s)
	}
}

// NewPolicy builds the policy for a mode. The keyframe length only applies to ShadingPalette.
//
// Parameters:
//   - mode: the shading mode
//   - keyframeLength: dwell time per palette entry
//
// Returns:
//   - Policy: the shading policy
func NewPolicy(mode automaton.ShadingMode, keyframeLength time.Duration) Policy {
	if mode == automaton.ShadingPalette {
		return NewPalette(DefaultPalette(), keyframeLength)
	}
	return Static{}
}

// Static shades each cell with a gradient of its normalized grid position.
type Static struct{}

var _ Policy = Static{}

func (Static) Mode() automaton.ShadingMode {
	return automaton.ShadingStatic
}

func (Static) Color(col, row int, size common.GridSize, _ time.Duration) common.Color {
	cx := float32(col) / float32(size.Width)
	cy := float32(row) / float32(size.Height)
	return common.Color{cx, cy, 1 - cx, 1}
}

func (Static) FillUniforms(u *automaton.GPUSimUniforms, elapsed time.Duration) {
	u.Shading = uint32(automaton.ShadingStatic)
	u.Time = float32(elapsed.Seconds())
}
