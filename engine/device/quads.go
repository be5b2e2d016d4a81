package device

import (
	"github.com/Carmen-Shannon/oxy-life/engine/grid"
	"github.com/Carmen-Shannon/oxy-life/engine/shading"
)

// InstanceQuad is one instance of the cell quad after the vertex stage, in framebuffer pixels.
type InstanceQuad struct {
	// Instance is the instance index, row-major over the grid.
	Instance int
	// Col and Row locate the instance's grid cell.
	Col, Row int
	// Vertices are the six transformed quad corners, two triangles.
	Vertices [shading.VerticesPerQuad][2]float64
	// Min and Max bound the quad, y pointing down.
	Min, Max [2]float64
}

// Degenerate reports whether the quad collapsed to zero area, which is how dead cells vanish.
func (q InstanceQuad) Degenerate() bool {
	return q.Max[0] <= q.Min[0] || q.Max[1] <= q.Min[1]
}

// Center returns the midpoint of the quad's bounds.
func (q InstanceQuad) Center() [2]float64 {
	return [2]float64{(q.Min[0] + q.Max[0]) / 2, (q.Min[1] + q.Max[1]) / 2}
}

// InstanceQuads runs the cell vertex stage on the host for every instance of view.
//
// Parameters:
//   - view: the generation to draw
//   - width: the framebuffer width in pixels
//   - height: the framebuffer height in pixels
//
// Returns:
//   - []InstanceQuad: one quad per cell, dead cells included as degenerate quads
func InstanceQuads(view grid.View, width, height int) []InstanceQuad {
	size := view.Size()
	quad := shading.Quad()
	out := make([]InstanceQuad, view.Len())
	for i := range out {
		q := InstanceQuad{Instance: i}
		q.Col, q.Row = shading.InstanceCell(i, size)
		state := view.At(i)
		for j, v := range quad {
			px, py := shading.NDCToPixel(shading.Transform(v, i, size, state), width, height)
			q.Vertices[j] = [2]float64{px, py}
			if j == 0 {
				q.Min, q.Max = q.Vertices[j], q.Vertices[j]
				continue
			}
			q.Min = [2]float64{min(q.Min[0], px), min(q.Min[1], py)}
			q.Max = [2]float64{max(q.Max[0], px), max(q.Max[1], py)}
		}
		out[i] = q
	}
	return out
}
