package device

import (
	"errors"
	"testing"

	"github.com/Carmen-Shannon/oxy-life/engine/renderer/pipeline"
)

func TestCompileShadersResolveBindings(t *testing.T) {
	cs, vs, fs, err := compileShaders(8)
	if err != nil {
		t.Fatalf("compileShaders: %v", err)
	}
	if got := cs.WorkgroupSize(); got != [3]uint32{8, 8, 1} {
		t.Fatalf("workgroup size = %v, want [8 8 1]", got)
	}

	step, err := resolveStepBindings(cs)
	if err != nil {
		t.Fatalf("resolveStepBindings: %v", err)
	}
	if step != (stepBindings{group: 0, sim: 0, in: 1, out: 2}) {
		t.Fatalf("step bindings = %+v", step)
	}

	draw, err := resolveDrawBindings(vs)
	if err != nil {
		t.Fatalf("resolveDrawBindings: %v", err)
	}
	if draw != (drawBindings{group: 0, sim: 0, cells: 1}) {
		t.Fatalf("draw bindings = %+v", draw)
	}

	for _, p := range newPipelines(cs, vs, fs) {
		if err := p.Validate(); err != nil {
			t.Fatalf("pipeline %q: %v", p.PipelineKey(), err)
		}
	}
}

func TestResolveStepBindingsRequiresCellsOut(t *testing.T) {
	// The render shader reads cells but never writes them.
	_, vs, _, err := compileShaders(8)
	if err != nil {
		t.Fatalf("compileShaders: %v", err)
	}
	if _, err := resolveStepBindings(vs); err == nil {
		t.Fatal("resolveStepBindings accepted a shader without cells_out")
	}
}

func TestNewPipelinesMissingShader(t *testing.T) {
	cs, _, _, err := compileShaders(4)
	if err != nil {
		t.Fatalf("compileShaders: %v", err)
	}
	p := newPipelines(cs, nil, nil)[1]
	if p.Type() != pipeline.PipelineTypeRender {
		t.Fatalf("second pipeline type = %s, want render", p.Type())
	}
	if err := p.Validate(); !errors.Is(err, pipeline.ErrMissingShader) {
		t.Fatalf("Validate = %v, want ErrMissingShader", err)
	}
}

func TestNewGPURejectsNilInputs(t *testing.T) {
	if _, err := NewGPU(nil, nil, nil); err == nil {
		t.Fatal("NewGPU(nil, nil, nil) succeeded")
	}
}
