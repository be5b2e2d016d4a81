// package common contains common types that are used throughout this engine. They are not interface-wrapped structs, just plain structs that express
// commonly used data-types.
package common

// GridSize is the fixed width × height of the simulated grid in cells.
type GridSize struct {
	Width  int
	Height int
}

// Cells returns the number of cells in one generation.
//
// Returns:
//   - int: Width * Height
func (g GridSize) Cells() int {
	return g.Width * g.Height
}

// Index returns the row-major slot for cell (x, y). Coordinates are not wrapped.
//
// Parameters:
//   - x: column in [0, Width)
//   - y: row in [0, Height)
//
// Returns:
//   - int: y*Width + x
func (g GridSize) Index(x, y int) int {
	return y*g.Width + x
}

// Coord decomposes a row-major slot back into (col, row).
//
// Parameters:
//   - index: the flat cell index
//
// Returns:
//   - int: the column (index mod Width)
//   - int: the row (index div Width)
func (g GridSize) Coord(index int) (int, int) {
	return index % g.Width, index / g.Width
}

// Color is a linear RGBA color with components in [0, 1].
// Laid out as a vec4<f32> so palettes can be uploaded verbatim.
type Color [4]float32

// Mix linearly interpolates between c and o by t component-wise.
//
// Parameters:
//   - o: the color at t = 1
//   - t: interpolation factor in [0, 1]
//
// Returns:
//   - Color: the interpolated color
func (c Color) Mix(o Color, t float32) Color {
	var out Color
	for i := range c {
		out[i] = Lerp(c[i], o[i], t)
	}
	return out
}
