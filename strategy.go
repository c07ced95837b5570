package gfx

import "log/slog"

// This file declares the contracts a backend implements. The root package
// validates every argument before calling into a strategy, so
// implementations may assume well-formed input.

// Backend creates device strategies for one native graphics API.
type Backend interface {
	// Name returns the registry name, e.g. "gl" or "wgpu".
	Name() string
	// Adapters enumerates the adapters the backend can drive.
	Adapters() []AdapterDesc
	// CreateDevice opens a device on desc.Adapter.
	CreateDevice(desc DeviceDesc) (DeviceStrategy, error)
}

// AdapterDesc describes one GPU as reported by a backend.
type AdapterDesc struct {
	Name        string
	Description string
	VendorID    uint32
	DeviceID    uint32
	// Profiles lists every profile the adapter can satisfy.
	Profiles           []GraphicsProfile
	DisplayModes       []DisplayMode
	CurrentDisplayMode DisplayMode
	// Default marks the adapter the backend would pick on its own.
	Default bool
}

// DisplayMode is one resolution and format an output can drive.
type DisplayMode struct {
	Width, Height int
	Format        SurfaceFormat
}

// DeviceDesc carries everything a backend needs to open a device.
type DeviceDesc struct {
	Adapter               AdapterDesc
	Profile               GraphicsProfile
	PreferHalfPixelOffset bool
	Presentation          PresentationParameters
	Logger                *slog.Logger
	// LossHandler is called by the backend when the native device becomes
	// invalid. It may be called from any goroutine and must not be called
	// more than once per loss.
	LossHandler func()
}

// DeviceStrategy is the native half of a GraphicsDevice.
type DeviceStrategy interface {
	Capabilities() GraphicsCapabilities
	Context() ContextStrategy

	// ResetPresentation applies new back-buffer settings in place.
	ResetPresentation(pp PresentationParameters) error
	// Present shows the back buffer.
	Present() error
	// ReadBackBuffer copies rect of the back buffer into dst as tightly
	// packed rows, top row first.
	ReadBackBuffer(rect Rectangle, dst []byte) error
	// Restore rebuilds the native device after a loss. Every object created
	// before the call is invalid afterwards.
	Restore() error
	Dispose()

	CreateTexture(desc TextureDesc) (TextureStrategy, error)
	CreateRenderTarget(desc RenderTargetDesc) (RenderTargetStrategy, error)
	CreateBuffer(desc BufferDesc) (BufferStrategy, error)
	CreateConstantBuffer(desc ConstantBufferDesc) (ConstantBufferStrategy, error)
	CreateShader(desc ShaderDesc) (ShaderStrategy, error)
	CreateBlendState(desc BlendDesc) (StateStrategy, error)
	CreateDepthStencilState(desc DepthStencilDesc) (StateStrategy, error)
	CreateRasterizerState(desc RasterizerDesc) (StateStrategy, error)
	CreateSamplerState(desc SamplerDesc) (StateStrategy, error)
	CreateOcclusionQuery() (QueryStrategy, error)
}

// ContextStrategy is the hot path: it receives already-resolved state and
// issues native calls. GraphicsContext only calls it for state that changed.
type ContextStrategy interface {
	// SetRenderTargets binds targets, or the back buffer when targets is empty.
	SetRenderTargets(targets []RenderTargetStrategy) error
	SetViewport(vp Viewport)
	SetScissorRectangle(r Rectangle)
	SetShaders(vs, ps ShaderStrategy) error
	SetConstantBuffer(stage ShaderStage, slot int, cb ConstantBufferStrategy)
	SetVertexBuffers(streams []VertexStream) error
	SetIndexBuffer(ib BufferStrategy, size IndexElementSize)
	SetTexture(stage ShaderStage, slot int, tex TextureStrategy)
	SetSampler(stage ShaderStage, slot int, s StateStrategy)
	SetBlendState(s StateStrategy, factor Color)
	SetDepthStencilState(s StateStrategy, referenceStencil int)
	SetRasterizerState(s StateStrategy)

	Clear(options ClearOptions, color Vector4, depth float32, stencil int) error
	Draw(prim PrimitiveType, startVertex, vertexCount int) error
	DrawIndexed(prim PrimitiveType, baseVertex, startIndex, indexCount int) error
	DrawInstanced(prim PrimitiveType, baseVertex, startIndex, indexCount, baseInstance, instanceCount int) error
	// Flush submits pending work and blocks until the GPU has consumed it.
	Flush() error
}

// VertexStream is one resolved vertex buffer binding.
type VertexStream struct {
	Buffer      BufferStrategy
	Declaration *VertexDeclaration
	// Offset is the first vertex of the stream.
	Offset int
	// InstanceFrequency is 0 for per-vertex data, otherwise the number of
	// instances drawn per element.
	InstanceFrequency int
}

// TextureKind distinguishes texture shapes.
type TextureKind int

const (
	TextureKind2D TextureKind = iota
	TextureKind3D
	TextureKindCube
)

// TextureDesc describes a texture to create.
type TextureDesc struct {
	Kind       TextureKind
	Width      int
	Height     int
	Depth      int // 3D only
	ArraySize  int // 2D arrays; 1 otherwise
	LevelCount int
	Format     SurfaceFormat
}

// TextureRegion addresses a box inside one mip level of one slice.
type TextureRegion struct {
	Level int
	// Slice is the array index for 2D arrays and the face for cube maps.
	Slice                int
	X, Y, Z              int
	Width, Height, Depth int
}

// TextureStrategy is the native half of a texture.
type TextureStrategy interface {
	SetData(region TextureRegion, data []byte) error
	GetData(region TextureRegion, data []byte) error
	Dispose()
}

// RenderTargetDesc describes a renderable 2D texture.
type RenderTargetDesc struct {
	TextureDesc
	DepthFormat      DepthFormat
	MultiSampleCount int
	Usage            RenderTargetUsage
}

// RenderTargetStrategy is a texture the context can draw into.
type RenderTargetStrategy interface {
	TextureStrategy
	// Resolve makes rendered content visible to sampling and GetData:
	// multisample resolve and mip generation.
	Resolve() error
}

// BufferKind distinguishes vertex and index buffers.
type BufferKind int

const (
	BufferKindVertex BufferKind = iota
	BufferKindIndex
)

// BufferDesc describes a vertex or index buffer.
type BufferDesc struct {
	Kind      BufferKind
	Size      int
	Usage     BufferUsage
	Dynamic   bool
	IndexSize IndexElementSize
}

// BufferStrategy is the native half of a vertex or index buffer.
type BufferStrategy interface {
	SetData(offset int, data []byte, options SetDataOptions) error
	GetData(offset int, data []byte) error
	Dispose()
}

// ConstantBufferDesc describes a constant buffer.
type ConstantBufferDesc struct {
	Name string
	Size int
}

// ConstantBufferStrategy receives the shadow copy of a constant buffer.
// Upload is called with the context lock held.
type ConstantBufferStrategy interface {
	Upload(data []byte) error
	Dispose()
}

// ShaderDesc describes a shader to compile.
type ShaderDesc struct {
	Stage ShaderStage
	// Code is backend specific: GLSL for gl, WGSL for wgpu.
	Code []byte
	// EntryPoint names the function to run. Empty selects "main" for GLSL
	// and "vs_main" or "fs_main" for WGSL.
	EntryPoint      string
	Attributes      []ShaderAttribute
	Samplers        []ShaderSampler
	ConstantBuffers []ShaderConstantBuffer
}

// ShaderAttribute maps a vertex input of a vertex shader to a semantic.
type ShaderAttribute struct {
	Name       string
	Usage      VertexElementUsage
	UsageIndex int
	// Location is the explicit input location, used by backends without
	// name lookup.
	Location int
}

// ShaderSampler maps a sampler or texture variable to a slot.
type ShaderSampler struct {
	Name string
	Slot int
	Kind TextureKind
}

// ShaderConstantBuffer maps a uniform block to a slot.
type ShaderConstantBuffer struct {
	Name string
	Slot int
	Size int
}

// ShaderStrategy is a compiled shader.
type ShaderStrategy interface {
	Dispose()
}

// StateStrategy is a native fixed-function state object.
type StateStrategy interface {
	Dispose()
}

// QueryStrategy is a native occlusion query.
type QueryStrategy interface {
	Begin() error
	End() error
	// Result reports the number of samples that passed and whether the
	// result is available yet. It never blocks.
	Result() (pixels int, ok bool, err error)
	Dispose()
}
