package shading

import (
	_ "embed"
	"encoding/binary"
	"math"
	"unsafe"
)

// GPUQuadVertexSource is the canonical WGSL definition of the QuadVertex struct.
// Matches GPUQuadVertex layout exactly (8 bytes).
//
//go:embed assets/quad_vertex.wgsl
var GPUQuadVertexSource string

// GPUCellsSource is the WGSL render program that draws one instanced quad per cell.
//
//go:embed assets/cells.wgsl
var GPUCellsSource string

// GPUQuadVertex is one corner of the per-cell quad as uploaded to the vertex buffer.
type GPUQuadVertex struct {
	Pos [2]float32 // offset 0: local position in [-1, 1] cell space (vec2f)
}

// Size returns the size of the GPUQuadVertex struct in bytes.
//
// Returns:
//   - int: the struct size in bytes (8)
func (g *GPUQuadVertex) Size() int {
	return int(unsafe.Sizeof(*g))
}

// MarshalQuad serializes a vertex list into a byte buffer suitable for GPU upload.
//
// Parameters:
//   - vertices: the vertices to serialize
//
// Returns:
//   - []byte: the serialized byte buffer
func MarshalQuad(vertices []GPUQuadVertex) []byte {
	const stride = 8
	buf := make([]byte, len(vertices)*stride)
	for i, v := range vertices {
		binary.LittleEndian.PutUint32(buf[i*stride:], math.Float32bits(v.Pos[0]))
		binary.LittleEndian.PutUint32(buf[i*stride+4:], math.Float32bits(v.Pos[1]))
	}
	return buf
}
