package automaton

import (
	_ "embed"
	"encoding/binary"
	"math"
	"unsafe"

	"github.com/Carmen-Shannon/oxy-life/common"
)

// PaletteSize is the fixed number of keyframe colors carried in the uniform block.
const PaletteSize = 9

// GPUSimUniformsSource is the canonical WGSL definition of the SimUniforms struct.
// Matches GPUSimUniforms layout exactly (192 bytes, WGSL uniform aligned).
//
//go:embed assets/sim_uniforms.wgsl
var GPUSimUniformsSource string

// GPULifeStepSource is the WGSL compute kernel that advances one generation.
// It must be run through the shader pre-processor with WORKGROUP_SIZE bound to the tile size.
//
//go:embed assets/life_step.wgsl
var GPULifeStepSource string

// ShadingMode selects the fragment color policy carried in the uniform block.
type ShadingMode uint32

const (
	// ShadingStatic colors cells by a gradient of their normalized grid position.
	ShadingStatic ShadingMode = iota
	// ShadingPalette cycles through the keyframe palette over time.
	ShadingPalette
)

// GPUSimUniforms is the GPU-aligned representation of the shared simulation uniform buffer.
// The compute kernel reads the grid, pointer and write fields; the render pipeline reads the grid,
// time and shading fields. Size: 192 bytes.
type GPUSimUniforms struct {
	Grid           [2]float32                // offset   0: grid width and height in cells (vec2f)
	Pointer        [2]float32                // offset   8: pointer position in NDC (vec2f)
	Time           float32                   // offset  16: elapsed seconds since start
	KeyframeLength float32                   // offset  20: seconds per palette keyframe
	Pressed        uint32                    // offset  24: pointer button bitmask
	WriteEnabled   uint32                    // offset  28: 0 when the write predicate suppressed this step
	Shading        uint32                    // offset  32: ShadingMode
	PaintCopies    uint32                    // offset  36: 1 when unpainted cells copy current into next
	PaletteLen     uint32                    // offset  40: number of valid palette entries
	_pad           uint32                    // offset  44: padding to 16-byte palette alignment
	Palette        [PaletteSize]common.Color // offset  48: keyframe colors (array<vec4f, 9>)
}

// Size returns the size of the GPUSimUniforms struct in bytes.
//
// Returns:
//   - int: the struct size in bytes (192)
func (g *GPUSimUniforms) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the GPUSimUniforms struct into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: the serialized byte buffer
func (g *GPUSimUniforms) Marshal() []byte {
	buf := make([]byte, g.Size())
	putF32 := func(off int, v float32) {
		binary.LittleEndian.PutUint32(buf[off:], math.Float32bits(v))
	}
	putF32(0, g.Grid[0])
	putF32(4, g.Grid[1])
	putF32(8, g.Pointer[0])
	putF32(12, g.Pointer[1])
	putF32(16, g.Time)
	putF32(20, g.KeyframeLength)
	binary.LittleEndian.PutUint32(buf[24:], g.Pressed)
	binary.LittleEndian.PutUint32(buf[28:], g.WriteEnabled)
	binary.LittleEndian.PutUint32(buf[32:], g.Shading)
	binary.LittleEndian.PutUint32(buf[36:], g.PaintCopies)
	binary.LittleEndian.PutUint32(buf[40:], g.PaletteLen)
	binary.LittleEndian.PutUint32(buf[44:], 0) // _pad
	for i, c := range g.Palette {
		for j := range 4 {
			putF32(48+i*16+j*4, c[j])
		}
	}
	return buf
}

func boolToU32(b bool) uint32 {
	if b {
		return 1
	}
	return 0
}
