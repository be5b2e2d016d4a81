package device

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Carmen-Shannon/oxy-life/common"
	"github.com/Carmen-Shannon/oxy-life/engine/automaton"
	"github.com/Carmen-Shannon/oxy-life/engine/grid"
	"github.com/Carmen-Shannon/oxy-life/engine/renderer"
	"github.com/Carmen-Shannon/oxy-life/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/oxy-life/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-life/engine/renderer/shader"
	"github.com/Carmen-Shannon/oxy-life/engine/shading"
	"github.com/cogentcore/webgpu/wgpu"
)

const (
	lifeStepPipelineKey = "life_step"
	cellsPipelineKey    = "cells"
)

// gpu keeps both generations in device storage buffers. The host grid only tracks roles and
// the step counter; cells are never read back.
type gpu struct {
	size     common.GridSize
	renderer renderer.Renderer
	kernel   automaton.Kernel
	policy   shading.Policy
	logger   *slog.Logger

	uniforms   automaton.GPUSimUniforms
	workgroups [3]uint32

	simBuffer *wgpu.Buffer
	cells     [2]*wgpu.Buffer

	// compute[g] reads generation g and writes g.Other(); render[g] reads generation g.
	compute [2]bind_group_provider.BindGroupProvider
	render  [2]bind_group_provider.BindGroupProvider
	quad    bind_group_provider.BindGroupProvider

	step stepBindings
	draw drawBindings
}

var _ Device = &gpu{}

// bindings resolved from shader annotations.
type stepBindings struct {
	group, sim, in, out int
}

type drawBindings struct {
	group, sim, cells int
}

func (d *gpu) Name() string {
	return "gpu"
}

func (d *gpu) Size() common.GridSize {
	return d.size
}

func (d *gpu) Upload(state grid.State) error {
	if err := checkSize(d.size, state); err != nil {
		return err
	}
	// Both compute providers share the cell buffers, so one provider addresses either generation.
	p := d.compute[grid.GenerationA]
	in, out := d.step.in, d.step.out
	d.renderer.WriteBuffers([]bind_group_provider.BufferWrite{
		{Provider: p, Binding: in, Data: state.Read(grid.GenerationA).Bytes()},
		{Provider: p, Binding: out, Data: state.Read(grid.GenerationB).Bytes()},
	})
	return nil
}

func (d *gpu) BeginFrame() error {
	return d.renderer.BeginFrame()
}

func (d *gpu) Step(state grid.State, inv automaton.Invocation) (bool, error) {
	if err := checkSize(d.size, state); err != nil {
		return false, err
	}
	d.kernel.FillUniforms(&d.uniforms, d.size, inv)
	written := d.uniforms.WriteEnabled == 1

	// Dispatch even when suppressed; the kernel honors write_enabled.
	if err := d.renderer.DispatchCompute(lifeStepPipelineKey, d.compute[state.Current()], d.workgroups); err != nil {
		return false, err
	}
	return written, nil
}

func (d *gpu) Render(state grid.State, elapsed time.Duration) error {
	if err := checkSize(d.size, state); err != nil {
		return err
	}
	d.policy.FillUniforms(&d.uniforms, elapsed)
	// Queue writes land before the frame's batch executes, so the step and the draw see the same block.
	d.renderer.WriteBuffers([]bind_group_provider.BufferWrite{
		{Provider: d.render[grid.GenerationA], Binding: d.draw.sim, Data: d.uniforms.Marshal()},
	})

	cur := state.Current()
	if err := d.renderer.DrawCall(cellsPipelineKey, d.quad, uint32(d.size.Cells()), []bind_group_provider.BindGroupProvider{d.render[cur]}); err != nil {
		return err
	}
	if err := d.renderer.EndFrame(); err != nil {
		return err
	}
	d.renderer.Present()

	d.logger.LogAttrs(context.Background(), slog.LevelDebug, "gpu frame",
		slog.Uint64("step", state.Step()),
		slog.String("generation", cur.String()),
	)
	return nil
}

func (d *gpu) Resize(width, height int) error {
	return d.renderer.Resize(width, height)
}

func (d *gpu) Close() {
	d.kernel.Close()
	d.releaseResources()
	d.renderer.Release()
}

// releaseResources frees bind groups and buffers but leaves the renderer alive.
func (d *gpu) releaseResources() {
	for _, p := range append(d.compute[:], d.render[:]...) {
		if p != nil {
			p.Release()
		}
	}
	d.compute = [2]bind_group_provider.BindGroupProvider{}
	d.render = [2]bind_group_provider.BindGroupProvider{}
	if d.quad != nil {
		d.quad.Release()
		d.quad = nil
	}
	for i, b := range d.cells {
		if b != nil {
			b.Release()
			d.cells[i] = nil
		}
	}
	if d.simBuffer != nil {
		d.simBuffer.Release()
		d.simBuffer = nil
	}
}

// compileShaders builds the step kernel with the tile size baked in and the cell render shaders.
func compileShaders(tile int) (cs, vs, fs shader.Shader, err error) {
	pp := shader.NewPreProcessor(shader.WithConstant("WORKGROUP_SIZE", uint32(tile)))
	if cs, err = shader.NewShader(lifeStepPipelineKey, shader.ShaderTypeCompute, automaton.GPULifeStepSource, shader.WithPreProcessor(pp)); err != nil {
		return nil, nil, nil, err
	}
	if vs, err = shader.NewShader(cellsPipelineKey, shader.ShaderTypeVertex, shading.GPUCellsSource); err != nil {
		return nil, nil, nil, err
	}
	if fs, err = shader.NewShader(cellsPipelineKey, shader.ShaderTypeFragment, shading.GPUCellsSource); err != nil {
		return nil, nil, nil, err
	}
	return cs, vs, fs, nil
}

// declared looks up an annotation and returns its group and binding.
func declared(s shader.Shader, arg shader.AnnotationArg) (int, int, error) {
	a, ok := s.Declaration(arg)
	if !ok || a.Group == nil || a.Binding == nil {
		return 0, 0, fmt.Errorf("%s shader %q does not declare %s", s.ShaderType(), s.Key(), arg)
	}
	return *a.Group, *a.Binding, nil
}

func resolveStepBindings(cs shader.Shader) (stepBindings, error) {
	var b stepBindings
	var g [3]int
	var err error
	if g[0], b.sim, err = declared(cs, shader.AnnotationArgSimUniforms); err != nil {
		return b, err
	}
	if g[1], b.in, err = declared(cs, shader.AnnotationArgCellsIn); err != nil {
		return b, err
	}
	if g[2], b.out, err = declared(cs, shader.AnnotationArgCellsOut); err != nil {
		return b, err
	}
	if g[0] != g[1] || g[1] != g[2] {
		return b, fmt.Errorf("step kernel bindings span groups %v", g)
	}
	b.group = g[0]
	return b, nil
}

func resolveDrawBindings(vs shader.Shader) (drawBindings, error) {
	var b drawBindings
	var g [2]int
	var err error
	if g[0], b.sim, err = declared(vs, shader.AnnotationArgSimUniforms); err != nil {
		return b, err
	}
	if g[1], b.cells, err = declared(vs, shader.AnnotationArgCellsIn); err != nil {
		return b, err
	}
	if g[0] != g[1] {
		return b, fmt.Errorf("cell shader bindings span groups %v", g)
	}
	b.group = g[0]
	return b, nil
}

// newPipelines pairs the compiled shaders with their pipelines.
func newPipelines(cs, vs, fs shader.Shader) []pipeline.Pipeline {
	return []pipeline.Pipeline{
		pipeline.NewPipeline(lifeStepPipelineKey, pipeline.PipelineTypeCompute, pipeline.WithShaders(cs)),
		pipeline.NewPipeline(cellsPipelineKey, pipeline.PipelineTypeRender, pipeline.WithShaders(vs, fs)),
	}
}
