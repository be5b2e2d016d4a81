package device

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/Carmen-Shannon/oxy-life/engine/automaton"
	"github.com/Carmen-Shannon/oxy-life/engine/grid"
	"github.com/Carmen-Shannon/oxy-life/engine/renderer"
	"github.com/Carmen-Shannon/oxy-life/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/oxy-life/engine/shading"
	"github.com/cogentcore/webgpu/wgpu"
)

// GPUBuilderOption is a functional option for configuring a GPU device.
type GPUBuilderOption func(*gpu)

// WithGPUPolicy sets the color policy written into the uniform block every frame.
//
// Parameters:
//   - p: the shading policy, nil is ignored
//
// Returns:
//   - GPUBuilderOption: a function that applies the policy to a gpu device
func WithGPUPolicy(p shading.Policy) GPUBuilderOption {
	return func(d *gpu) {
		if p != nil {
			d.policy = p
		}
	}
}

// WithGPULogger sets the logger used for per-frame debug output.
//
// Parameters:
//   - l: the logger, nil is ignored
//
// Returns:
//   - GPUBuilderOption: a function that applies the logger to a gpu device
func WithGPULogger(l *slog.Logger) GPUBuilderOption {
	return func(d *gpu) {
		if l != nil {
			d.logger = l
		}
	}
}

// NewGPU compiles the step kernel and the cell shaders, uploads both generations of state and
// builds one bind group per generation role. The device takes ownership of r and kernel and releases
// them on Close. On error the kernel is closed and r is left to the caller.
//
// Parameters:
//   - r: an initialized renderer bound to the window surface
//   - state: the initial grid; both halves are uploaded
//   - kernel: supplies the tile size, write predicate and paint policy
//   - options: optional GPUBuilderOption functions
//
// Returns:
//   - Device: the ready device
//   - error: renderer.ErrPipelineCompilation if a shader fails to build, or the resource error
func NewGPU(r renderer.Renderer, state grid.State, kernel automaton.Kernel, options ...GPUBuilderOption) (Device, error) {
	if r == nil || state == nil || kernel == nil {
		return nil, errors.New("device: renderer, state and kernel are required")
	}
	d := &gpu{
		size:     state.Size(),
		renderer: r,
		kernel:   kernel,
		policy:   shading.Static{},
		logger:   slog.New(slog.DiscardHandler),
	}
	for _, opt := range options {
		opt(d)
	}
	if err := d.init(state); err != nil {
		d.releaseResources()
		kernel.Close()
		return nil, err
	}
	return d, nil
}

func (d *gpu) init(state grid.State) error {
	cs, vs, fs, err := compileShaders(d.kernel.TileSize())
	if err != nil {
		return fmt.Errorf("%w: %w", renderer.ErrPipelineCompilation, err)
	}
	if d.step, err = resolveStepBindings(cs); err != nil {
		return fmt.Errorf("%w: %w", renderer.ErrPipelineCompilation, err)
	}
	if d.draw, err = resolveDrawBindings(vs); err != nil {
		return fmt.Errorf("%w: %w", renderer.ErrPipelineCompilation, err)
	}
	if err := d.renderer.RegisterPipelines(newPipelines(cs, vs, fs)...); err != nil {
		return err
	}

	d.kernel.FillUniforms(&d.uniforms, d.size, automaton.Invocation{})
	d.policy.FillUniforms(&d.uniforms, 0)
	wx, wy := d.kernel.Workgroups(d.size)
	d.workgroups = [3]uint32{wx, wy, 1}

	if d.simBuffer, err = d.renderer.CreateBuffer("Sim Uniforms", wgpu.BufferUsageUniform, d.uniforms.Marshal()); err != nil {
		return err
	}
	for _, g := range []grid.Generation{grid.GenerationA, grid.GenerationB} {
		label := "Cells " + g.String()
		if d.cells[g], err = d.renderer.CreateBuffer(label, wgpu.BufferUsageStorage, state.Read(g).Bytes()); err != nil {
			return err
		}
	}

	stepLayout, err := d.renderer.LayoutDescriptor(lifeStepPipelineKey, d.step.group)
	if err != nil {
		return err
	}
	drawLayout, err := d.renderer.LayoutDescriptor(cellsPipelineKey, d.draw.group)
	if err != nil {
		return err
	}
	for _, g := range []grid.Generation{grid.GenerationA, grid.GenerationB} {
		d.compute[g] = bind_group_provider.NewBindGroupProvider("Life Step "+g.String(),
			bind_group_provider.WithSharedBuffer(d.step.sim, d.simBuffer),
			bind_group_provider.WithSharedBuffer(d.step.in, d.cells[g]),
			bind_group_provider.WithSharedBuffer(d.step.out, d.cells[g.Other()]),
		)
		if err := d.renderer.InitBindGroup(d.compute[g], stepLayout, nil, nil); err != nil {
			return err
		}
		d.render[g] = bind_group_provider.NewBindGroupProvider("Cells "+g.String(),
			bind_group_provider.WithSharedBuffer(d.draw.sim, d.simBuffer),
			bind_group_provider.WithSharedBuffer(d.draw.cells, d.cells[g]),
		)
		if err := d.renderer.InitBindGroup(d.render[g], drawLayout, nil, nil); err != nil {
			return err
		}
	}

	d.quad = bind_group_provider.NewBindGroupProvider("Cell Quad")
	quad := shading.Quad()
	return d.renderer.InitVertexBuffer(d.quad, shading.MarshalQuad(quad), len(quad))
}
