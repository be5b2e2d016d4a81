package bind_group_provider

import (
	"testing"

	"github.com/cogentcore/webgpu/wgpu"
)

func TestSharedBindings(t *testing.T) {
	// Zero-value buffers stand in for GPU handles; ownership tracking never dereferences them.
	cellsA, cellsB := &wgpu.Buffer{}, &wgpu.Buffer{}

	p := NewBindGroupProvider("compute a->b",
		WithSharedBuffer(1, cellsA),
		WithSharedBuffer(2, cellsB),
	)
	if p.Label() != "compute a->b" {
		t.Errorf("Label() = %q", p.Label())
	}
	if p.Buffer(1) != cellsA || p.Buffer(2) != cellsB {
		t.Fatal("shared buffers not bound at their bindings")
	}
	if !p.Shared(1) || !p.Shared(2) {
		t.Error("bindings 1 and 2 should be shared")
	}
	if p.Shared(0) {
		t.Error("binding 0 has no buffer and should not be shared")
	}
	if len(p.Buffers()) != 2 {
		t.Errorf("Buffers() has %d entries, want 2", len(p.Buffers()))
	}
}

func TestOwnedBufferReplacesShared(t *testing.T) {
	borrowed, owned := &wgpu.Buffer{}, &wgpu.Buffer{}

	tests := []struct {
		name   string
		p      BindGroupProvider
		apply  func(BindGroupProvider)
		shared bool
	}{
		{"option order", NewBindGroupProvider("p", WithSharedBuffer(0, borrowed), WithBuffer(0, owned)), nil, false},
		{"set after share", NewBindGroupProvider("p", WithSharedBuffer(0, borrowed)), func(p BindGroupProvider) { p.SetBuffer(0, owned) }, false},
		{"share after own", NewBindGroupProvider("p", WithBuffer(0, owned), WithSharedBuffer(0, borrowed)), nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.apply != nil {
				tt.apply(tt.p)
			}
			if got := tt.p.Shared(0); got != tt.shared {
				t.Errorf("Shared(0) = %v, want %v", got, tt.shared)
			}
		})
	}
}

func TestEmptyProvider(t *testing.T) {
	p := NewBindGroupProvider("empty")
	if p.BindGroup() != nil || p.BindGroupLayout() != nil || p.VertexBuffer() != nil {
		t.Error("new provider should hold no GPU objects")
	}
	if p.VertexCount() != 0 {
		t.Errorf("VertexCount() = %d", p.VertexCount())
	}
	p.Release()
}

func TestBufferWriteLen(t *testing.T) {
	w := BufferWrite{Binding: 0, Data: make([]byte, 192)}
	if w.Len() != 192 {
		t.Errorf("Len() = %d", w.Len())
	}
}
