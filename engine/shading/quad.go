// package shading holds the host-side model of the instanced cell renderer: the quad geometry,
// the per-instance transform that collapses dead cells, and the two fragment color policies.
// assets/cells.wgsl is the GPU form of the same math.
package shading

import (
	"github.com/Carmen-Shannon/oxy-life/common"
)

// QuadInset is the half extent of the quad in cell space. Values below 1 leave a gap between cells.
const QuadInset float32 = 0.8

// VerticesPerQuad is the vertex count of one cell quad, two triangles without an index buffer.
const VerticesPerQuad = 6

// Quad returns the six corners of the unit cell quad as two counter-clockwise triangles.
//
// Returns:
//   - []GPUQuadVertex: the quad vertices
func Quad() []GPUQuadVertex {
	s := QuadInset
	return []GPUQuadVertex{
		{Pos: [2]float32{-s, -s}},
		{Pos: [2]float32{s, -s}},
		{Pos: [2]float32{s, s}},

		{Pos: [2]float32{-s, -s}},
		{Pos: [2]float32{s, s}},
		{Pos: [2]float32{-s, s}},
	}
}

// InstanceCell decomposes an instance index into its grid cell.
//
// Parameters:
//   - instance: the instance index in [0, Width*Height)
//   - size: the grid dimensions
//
// Returns:
//   - int: the column, instance mod Width
//   - int: the row, instance div Width
func InstanceCell(instance int, size common.GridSize) (int, int) {
	return size.Coord(instance)
}

// Transform places one quad vertex of an instance into normalized device space.
// The local vertex is scaled by the cell state so a dead cell collapses onto its cell center,
// then offset so the whole grid covers [-1, 1] on both axes exactly once. Row 0 is at the bottom.
//
// Parameters:
//   - v: the local quad vertex
//   - instance: the instance index
//   - size: the grid dimensions
//   - state: the cell value, 0 or 1
//
// Returns:
//   - [2]float32: the vertex position in NDC
func Transform(v GPUQuadVertex, instance int, size common.GridSize, state uint32) [2]float32 {
	col, row := InstanceCell(instance, size)
	gw, gh := float32(size.Width), float32(size.Height)
	s := float32(state)
	return [2]float32{
		(v.Pos[0]*s+1)/gw - 1 + float32(col)/gw*2,
		(v.Pos[1]*s+1)/gh - 1 + float32(row)/gh*2,
	}
}

// CellBounds returns the NDC rectangle that grid cell (col, row) occupies.
//
// Parameters:
//   - col: the column
//   - row: the row
//   - size: the grid dimensions
//
// Returns:
//   - [2]float32: the lower-left corner in NDC
//   - [2]float32: the upper-right corner in NDC
func CellBounds(col, row int, size common.GridSize) ([2]float32, [2]float32) {
	gw, gh := float32(size.Width), float32(size.Height)
	lo := [2]float32{float32(col)/gw*2 - 1, float32(row)/gh*2 - 1}
	hi := [2]float32{float32(col+1)/gw*2 - 1, float32(row+1)/gh*2 - 1}
	return lo, hi
}

// NDCToPixel converts a normalized device coordinate to framebuffer pixels with y pointing down.
//
// Parameters:
//   - p: the NDC position
//   - width: the framebuffer width in pixels
//   - height: the framebuffer height in pixels
//
// Returns:
//   - float64: the pixel x coordinate
//   - float64: the pixel y coordinate
func NDCToPixel(p [2]float32, width, height int) (float64, float64) {
	return (float64(p[0]) + 1) / 2 * float64(width), (1 - float64(p[1])) / 2 * float64(height)
}
