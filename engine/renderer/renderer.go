package renderer

import (
	"fmt"
	"sync"

	"github.com/Carmen-Shannon/oxy-life/common"
	"github.com/Carmen-Shannon/oxy-life/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/oxy-life/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-life/engine/renderer/shader"
	"github.com/cogentcore/webgpu/wgpu"
)

// renderer is the implementation of the Renderer interface.
type renderer struct {
	mu *sync.Mutex

	pipelineCache map[string]pipeline.Pipeline

	backendType RendererBackendType
	backend     RendererBackend

	// Pre-creation config collected from builder options
	forceFallbackAdapter bool
	presentMode          PresentMode
	msaa                 MSAASampleCount
	clearColor           common.Color
}

// Renderer is the GPU layer the cell field is drawn through.
//
// It keeps a cache of compiled pipelines, allocates buffers and bind groups, and records each
// frame as a single command batch: zero or one compute dispatch followed by one render pass.
// Because both passes share one encoder and one submission, the render pass always observes
// the compute pass's writes.
type Renderer interface {
	// Pipeline retrieves the cached Pipeline associated with the given key.
	// If the Pipeline does not exist, this will return nil.
	//
	// Parameters:
	//   - key: the unique identifier for the Pipeline to retrieve
	//
	// Returns:
	//   - pipeline.Pipeline: the Pipeline associated with the key, or nil if not found
	Pipeline(key string) pipeline.Pipeline

	// Pipelines retrieves the entire cache of Pipelines.
	//
	// Returns:
	//   - map[string]pipeline.Pipeline: a map of pipeline keys to their corresponding Pipeline objects
	Pipelines() map[string]pipeline.Pipeline

	// RegisterPipelines validates and compiles one or more pipelines via the backend, then caches
	// them by PipelineKey. Pipelines whose keys are already registered are skipped.
	//
	// Parameters:
	//   - pipelines: the Pipelines to register
	//
	// Returns:
	//   - error: ErrPipelineCompilation wrapped with the cause if creation fails
	RegisterPipelines(pipelines ...pipeline.Pipeline) error

	// LayoutDescriptor returns the bind group layout a registered pipeline was compiled against.
	// Render pipelines report the vertex and fragment layouts merged, with visibility ORed, so bind
	// groups created from it are compatible with the pipeline layout.
	//
	// Parameters:
	//   - pipelineKey: the registered pipeline
	//   - group: the bind group index
	//
	// Returns:
	//   - wgpu.BindGroupLayoutDescriptor: the layout for the group
	//   - error: ErrPipelineNotFound if the key or group is unknown
	LayoutDescriptor(pipelineKey string, group int) (wgpu.BindGroupLayoutDescriptor, error)

	// Resize reconfigures the surface for a new framebuffer size.
	// A zero extent parks the surface until the next non-zero resize.
	//
	// Parameters:
	//   - width: the new width of the surface in pixels
	//   - height: the new height of the surface in pixels
	//
	// Returns:
	//   - error: ErrSurfaceConfiguration wrapped with the cause on failure
	Resize(width, height int) error

	// SetPresentMode sets the surface present mode. A call to Resize is required for the new
	// mode to take effect.
	//
	// Parameters:
	//   - mode: the PresentMode to use
	SetPresentMode(mode PresentMode)

	// CreateBuffer allocates a GPU buffer and uploads its initial contents.
	// CopyDst is always added to usage so the buffer can be rewritten later.
	//
	// Parameters:
	//   - label: debug label for the buffer
	//   - usage: buffer usage flags
	//   - data: initial contents; the buffer size is len(data)
	//
	// Returns:
	//   - *wgpu.Buffer: the created buffer
	//   - error: an error if creation fails or data is empty
	CreateBuffer(label string, usage wgpu.BufferUsage, data []byte) (*wgpu.Buffer, error)

	// InitVertexBuffer uploads non-indexed vertex data and stores the resulting buffer on the provider.
	//
	// Parameters:
	//   - provider: the BindGroupProvider to store the created buffer on
	//   - vertexData: the raw vertex data bytes to upload to the GPU
	//   - vertexCount: the number of vertices drawn per instance
	//
	// Returns:
	//   - error: an error if buffer creation fails
	InitVertexBuffer(provider bind_group_provider.BindGroupProvider, vertexData []byte, vertexCount int) error

	// InitBindGroup creates any missing buffers and the bind group described by descriptor, and
	// stores them on the provider. Buffers already present on the provider (owned or shared) are
	// bound as they are.
	//
	// Parameters:
	//   - provider: the BindGroupProvider to store the created bind group on
	//   - descriptor: the layout descriptor defining the bind group entries
	//   - bufferUsageOverrides: additional buffer usage flags keyed by binding index (nil safe)
	//   - bufferSizeOverrides: custom buffer sizes keyed by binding index (nil safe)
	//
	// Returns:
	//   - error: an error if bind group creation fails
	InitBindGroup(provider bind_group_provider.BindGroupProvider, descriptor wgpu.BindGroupLayoutDescriptor, bufferUsageOverrides map[int]wgpu.BufferUsage, bufferSizeOverrides map[int]uint64) error

	// WriteBuffers writes all staged buffer writes to the GPU queue.
	// Queue writes are ordered before the next submitted frame.
	//
	// Parameters:
	//   - writes: a slice of BufferWrite structs describing the data to write
	WriteBuffers(writes []bind_group_provider.BufferWrite)

	// BeginFrame acquires the next swapchain texture and opens the frame's command encoder.
	// Must be paired with EndFrame.
	//
	// Returns:
	//   - error: ErrSurfaceUnavailable while the surface is parked, or an acquisition error
	BeginFrame() error

	// DispatchCompute encodes a compute pass into the current frame. It must precede every
	// DrawCall of the frame.
	//
	// Parameters:
	//   - pipelineKey: the unique identifier for the cached compute Pipeline to use
	//   - computeProvider: the BindGroupProvider whose BindGroup is set at group 0
	//   - workGroupCount: the number of workgroups to dispatch in the x, y, and z dimensions
	//
	// Returns:
	//   - error: ErrPipelineNotFound or ErrFrameState
	DispatchCompute(pipelineKey string, computeProvider bind_group_provider.BindGroupProvider, workGroupCount [3]uint32) error

	// DrawCall encodes a non-indexed instanced draw into the frame's render pass, opening the
	// pass on first use.
	//
	// Parameters:
	//   - pipelineKey: the unique identifier for the cached render Pipeline to use
	//   - meshProvider: the BindGroupProvider holding the vertex buffer
	//   - instanceCount: the number of instances to draw
	//   - bindGroups: BindGroupProviders set at groups 0..n-1
	//
	// Returns:
	//   - error: ErrPipelineNotFound or ErrFrameState
	DrawCall(pipelineKey string, meshProvider bind_group_provider.BindGroupProvider, instanceCount uint32, bindGroups []bind_group_provider.BindGroupProvider) error

	// EndFrame closes the render pass (clearing the target if nothing was drawn), finishes the
	// encoder and submits the batch.
	//
	// Returns:
	//   - error: ErrFrameState if no frame is open, or the encoder error
	EndFrame() error

	// Present presents the surface to the display and releases the swapchain texture.
	// Must be called once per frame after EndFrame.
	Present()

	// Release drops every cached pipeline and the device objects.
	Release()
}

var _ Renderer = &renderer{}

// NewRenderer creates a Renderer bound to the given host surface and configures the surface
// to the host's current size.
//
// Parameters:
//   - backendType: the type of rendering backend to use (e.g., WGPU)
//   - host: the window providing the surface descriptor and framebuffer size
//   - options: variadic list of RendererBuilderOption functions to configure the Renderer
//
// Returns:
//   - Renderer: the ready renderer
//   - error: ErrGPUUnsupported, ErrNoAdapter or ErrSurfaceConfiguration, wrapped with the cause
func NewRenderer(backendType RendererBackendType, host SurfaceSource, options ...RendererBuilderOption) (Renderer, error) {
	r := &renderer{
		mu:            &sync.Mutex{},
		pipelineCache: make(map[string]pipeline.Pipeline),
		backendType:   backendType,
		presentMode:   PresentModeVSync,
		msaa:          MSAAOff,
		clearColor:    DefaultClearColor,
	}

	// Options first so the fallback adapter flag is known before the adapter request.
	for _, opt := range options {
		opt(r)
	}

	if host == nil {
		return nil, fmt.Errorf("%w: no host window", ErrGPUUnsupported)
	}

	var err error
	switch backendType {
	case BackendTypeWGPU:
		fallthrough
	default:
		r.backend, err = newWGPURendererBackend(host.SurfaceDescriptor(), r.forceFallbackAdapter, r.msaa, r.clearColor)
	}
	if err != nil {
		return nil, err
	}

	r.backend.SetPresentMode(r.presentMode)
	if err := r.backend.ConfigureSurface(host.Width(), host.Height()); err != nil {
		r.backend.Release()
		return nil, err
	}
	return r, nil
}

func (r *renderer) Resize(width, height int) error {
	return r.backend.ConfigureSurface(width, height)
}

func (r *renderer) SetPresentMode(mode PresentMode) {
	r.backend.SetPresentMode(mode)
}

func (r *renderer) Pipeline(key string) pipeline.Pipeline {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.pipelineCache[key]
}

func (r *renderer) Pipelines() map[string]pipeline.Pipeline {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.pipelineCache
}

func (r *renderer) RegisterPipelines(pipelines ...pipeline.Pipeline) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range pipelines {
		key := p.PipelineKey()
		if _, exists := r.pipelineCache[key]; exists {
			continue
		}
		if err := p.Validate(); err != nil {
			return fmt.Errorf("%w: %w", ErrPipelineCompilation, err)
		}
		var err error
		switch p.Type() {
		case pipeline.PipelineTypeCompute:
			err = r.backend.RegisterComputePipeline(p)
		case pipeline.PipelineTypeRender:
			err = r.backend.RegisterRenderPipeline(p)
		}
		if err != nil {
			return fmt.Errorf("%w: %s pipeline %q: %w", ErrPipelineCompilation, p.Type(), key, err)
		}
		r.pipelineCache[key] = p
	}
	return nil
}

func (r *renderer) LayoutDescriptor(pipelineKey string, group int) (wgpu.BindGroupLayoutDescriptor, error) {
	r.mu.Lock()
	p, exists := r.pipelineCache[pipelineKey]
	r.mu.Unlock()
	if !exists {
		return wgpu.BindGroupLayoutDescriptor{}, fmt.Errorf("%w: %q", ErrPipelineNotFound, pipelineKey)
	}

	desc, ok := pipelineLayouts(p)[group]
	if !ok {
		return wgpu.BindGroupLayoutDescriptor{}, fmt.Errorf("%w: %q has no bind group %d", ErrPipelineNotFound, pipelineKey, group)
	}
	return desc, nil
}

// pipelineLayouts returns the per-group layouts of a pipeline as the backend compiles them.
func pipelineLayouts(p pipeline.Pipeline) map[int]wgpu.BindGroupLayoutDescriptor {
	if p.Type() == pipeline.PipelineTypeCompute {
		return p.Shader(shader.ShaderTypeCompute).BindGroupLayoutDescriptors()
	}
	return mergeBindGroupLayouts(
		p.Shader(shader.ShaderTypeVertex).BindGroupLayoutDescriptors(),
		p.Shader(shader.ShaderTypeFragment).BindGroupLayoutDescriptors(),
	)
}

func (r *renderer) CreateBuffer(label string, usage wgpu.BufferUsage, data []byte) (*wgpu.Buffer, error) {
	return r.backend.CreateBuffer(label, usage, data)
}

func (r *renderer) InitVertexBuffer(provider bind_group_provider.BindGroupProvider, vertexData []byte, vertexCount int) error {
	return r.backend.InitVertexBuffer(provider, vertexData, vertexCount)
}

func (r *renderer) InitBindGroup(provider bind_group_provider.BindGroupProvider, descriptor wgpu.BindGroupLayoutDescriptor, bufferUsageOverrides map[int]wgpu.BufferUsage, bufferSizeOverrides map[int]uint64) error {
	return r.backend.InitBindGroup(provider, descriptor, bufferUsageOverrides, bufferSizeOverrides)
}

func (r *renderer) WriteBuffers(writes []bind_group_provider.BufferWrite) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.backend.WriteBuffers(writes)
}

func (r *renderer) BeginFrame() error {
	return r.backend.BeginFrame()
}

func (r *renderer) DispatchCompute(pipelineKey string, computeProvider bind_group_provider.BindGroupProvider, workGroupCount [3]uint32) error {
	r.mu.Lock()
	p, exists := r.pipelineCache[pipelineKey]
	r.mu.Unlock()

	if !exists || p.Type() != pipeline.PipelineTypeCompute {
		return fmt.Errorf("%w: compute %q", ErrPipelineNotFound, pipelineKey)
	}
	return r.backend.DispatchCompute(p, computeProvider, workGroupCount)
}

func (r *renderer) DrawCall(pipelineKey string, meshProvider bind_group_provider.BindGroupProvider, instanceCount uint32, bindGroups []bind_group_provider.BindGroupProvider) error {
	r.mu.Lock()
	p, exists := r.pipelineCache[pipelineKey]
	r.mu.Unlock()

	if !exists || p.Type() != pipeline.PipelineTypeRender {
		return fmt.Errorf("%w: render %q", ErrPipelineNotFound, pipelineKey)
	}
	return r.backend.DrawCall(p, meshProvider, instanceCount, bindGroups)
}

func (r *renderer) EndFrame() error {
	return r.backend.EndFrame()
}

func (r *renderer) Present() {
	r.backend.Present()
}

func (r *renderer) Release() {
	r.mu.Lock()
	for key, p := range r.pipelineCache {
		p.Release()
		delete(r.pipelineCache, key)
	}
	r.mu.Unlock()
	r.backend.Release()
}
