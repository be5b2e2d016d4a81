package renderer

import (
	"errors"
	"testing"

	"github.com/Carmen-Shannon/oxy-life/engine/automaton"
	"github.com/Carmen-Shannon/oxy-life/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-life/engine/renderer/shader"
	"github.com/Carmen-Shannon/oxy-life/engine/shading"
	"github.com/cogentcore/webgpu/wgpu"
)

func TestMergeBindGroupLayoutsCellsShader(t *testing.T) {
	vs, err := shader.NewShader("cells", shader.ShaderTypeVertex, shading.GPUCellsSource)
	if err != nil {
		t.Fatal(err)
	}
	fs, err := shader.NewShader("cells", shader.ShaderTypeFragment, shading.GPUCellsSource)
	if err != nil {
		t.Fatal(err)
	}

	merged := mergeBindGroupLayouts(vs.BindGroupLayoutDescriptors(), fs.BindGroupLayoutDescriptors())
	if len(merged) != 1 {
		t.Fatalf("merged %d groups, want 1", len(merged))
	}
	entries := merged[0].Entries
	if len(entries) != 2 {
		t.Fatalf("group 0 has %d entries, want 2", len(entries))
	}
	both := wgpu.ShaderStageVertex | wgpu.ShaderStageFragment
	for _, e := range entries {
		if e.Visibility != both {
			t.Errorf("binding %d visibility = %v, want vertex|fragment", e.Binding, e.Visibility)
		}
	}
	if entries[0].Binding != 0 || entries[1].Binding != 1 {
		t.Errorf("entries not sorted by binding: %d, %d", entries[0].Binding, entries[1].Binding)
	}
}

func TestMergeBindGroupLayoutsDisjoint(t *testing.T) {
	entry := func(binding uint32, vis wgpu.ShaderStage) wgpu.BindGroupLayoutEntry {
		return wgpu.BindGroupLayoutEntry{
			Binding:    binding,
			Visibility: vis,
			Buffer:     wgpu.BufferBindingLayout{Type: wgpu.BufferBindingTypeUniform},
		}
	}
	vertex := map[int]wgpu.BindGroupLayoutDescriptor{
		0: {Entries: []wgpu.BindGroupLayoutEntry{entry(1, wgpu.ShaderStageVertex)}},
	}
	fragment := map[int]wgpu.BindGroupLayoutDescriptor{
		0: {Entries: []wgpu.BindGroupLayoutEntry{entry(0, wgpu.ShaderStageFragment)}},
		1: {Entries: []wgpu.BindGroupLayoutEntry{entry(0, wgpu.ShaderStageFragment)}},
	}

	merged := mergeBindGroupLayouts(vertex, fragment)
	if len(merged) != 2 {
		t.Fatalf("merged %d groups, want 2", len(merged))
	}
	g0 := merged[0].Entries
	if len(g0) != 2 || g0[0].Visibility != wgpu.ShaderStageFragment || g0[1].Visibility != wgpu.ShaderStageVertex {
		t.Errorf("group 0 = %+v", g0)
	}
	if len(merged[1].Entries) != 1 {
		t.Errorf("group 1 = %+v", merged[1].Entries)
	}
}

type nilSurface struct{}

func (nilSurface) SurfaceDescriptor() *wgpu.SurfaceDescriptor { return nil }
func (nilSurface) Width() int                                 { return 64 }
func (nilSurface) Height() int                                { return 64 }

func TestNewRendererWithoutSurface(t *testing.T) {
	tests := []struct {
		name string
		host SurfaceSource
	}{
		{"no host", nil},
		{"no descriptor", nilSurface{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := NewRenderer(BackendTypeWGPU, tt.host)
			if r != nil {
				t.Error("renderer returned alongside an error")
			}
			if !errors.Is(err, ErrGPUUnsupported) {
				t.Errorf("err = %v, want ErrGPUUnsupported", err)
			}
		})
	}
}

func TestPresentModeString(t *testing.T) {
	if PresentModeVSync.String() != "vsync" || PresentModeUncapped.String() != "uncapped" {
		t.Errorf("String() = %q / %q", PresentModeVSync, PresentModeUncapped)
	}
	for _, m := range []PresentMode{PresentModeVSync, PresentModeUncapped} {
		got, err := ParsePresentMode(m.String())
		if err != nil || got != m {
			t.Errorf("ParsePresentMode(%q) = %v, %v", m, got, err)
		}
	}
	if _, err := ParsePresentMode("triple"); err == nil {
		t.Error("ParsePresentMode(\"triple\") succeeded")
	}
}

func TestPipelineLayoutsCompute(t *testing.T) {
	cs, err := shader.NewShader("life_step", shader.ShaderTypeCompute, automaton.GPULifeStepSource,
		shader.WithPreProcessor(shader.NewPreProcessor(shader.WithConstant("WORKGROUP_SIZE", 8))))
	if err != nil {
		t.Fatal(err)
	}
	p := pipeline.NewPipeline("life_step", pipeline.PipelineTypeCompute, pipeline.WithComputeShader(cs))
	layouts := pipelineLayouts(p)
	if len(layouts) != 1 || len(layouts[0].Entries) != 3 {
		t.Fatalf("compute layouts = %+v", layouts)
	}
}
