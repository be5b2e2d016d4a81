package automaton

import (
	"encoding/binary"
	"math"
	"testing"
)

func TestGPUSimUniformsLayout(t *testing.T) {
	u := GPUSimUniforms{
		Grid:           [2]float32{64, 32},
		Pointer:        [2]float32{-1, 1},
		Time:           2.5,
		KeyframeLength: 0.5,
		Pressed:        1,
		WriteEnabled:   1,
		Shading:        uint32(ShadingPalette),
		PaintCopies:    0,
		PaletteLen:     PaletteSize,
	}
	u.Palette[8] = [4]float32{0.1, 0.2, 0.3, 0.4}

	if u.Size() != 192 {
		t.Fatalf("Size() = %d, want 192", u.Size())
	}
	buf := u.Marshal()
	if len(buf) != 192 {
		t.Fatalf("len(Marshal()) = %d, want 192", len(buf))
	}

	f32 := func(off int) float32 { return math.Float32frombits(binary.LittleEndian.Uint32(buf[off:])) }
	u32 := func(off int) uint32 { return binary.LittleEndian.Uint32(buf[off:]) }

	if f32(4) != 32 || f32(8) != -1 || f32(16) != 2.5 || f32(20) != 0.5 {
		t.Error("float fields at wrong offsets")
	}
	if u32(24) != 1 || u32(32) != uint32(ShadingPalette) || u32(40) != PaletteSize {
		t.Error("integer fields at wrong offsets")
	}
	if f32(48+8*16) != 0.1 || f32(48+8*16+12) != 0.4 {
		t.Error("last palette entry at wrong offset")
	}
}
