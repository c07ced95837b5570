package gfx

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

// fakeBackend is an in-memory backend that records every native call.
type fakeBackend struct {
	name     string
	adapters []AdapterDesc
	caps     GraphicsCapabilities
	devices  []*fakeDevice
	// failCreate makes CreateDevice fail.
	failCreate error
}

func (b *fakeBackend) Name() string            { return b.name }
func (b *fakeBackend) Adapters() []AdapterDesc { return b.adapters }

func (b *fakeBackend) CreateDevice(desc DeviceDesc) (DeviceStrategy, error) {
	if b.failCreate != nil {
		return nil, b.failCreate
	}
	d := &fakeDevice{backend: b, desc: desc, caps: b.caps, pp: desc.Presentation}
	d.ctx = &fakeContext{dev: d}
	b.devices = append(b.devices, d)
	return d, nil
}

// fakeCaps is a HiDef-class device with every optional feature.
func fakeCaps() GraphicsCapabilities {
	return GraphicsCapabilities{
		SupportsNonPowerOfTwo:     true,
		SupportsTextureArrays:     true,
		SupportsVertexTextures:    true,
		SupportsInstancing:        true,
		SupportsBaseInstance:      true,
		SupportsOcclusionQuery:    true,
		SupportsFloatTextures:     true,
		SupportsHalfFloatTextures: true,
		SupportsSRgb:              true,
		SupportsSeparateBlend:     true,
		SupportsDxt1:              true,
		SupportsS3tc:              true,
		SupportsPvrtc:             true,
		SupportsEtc1:              true,
		MaxTextureSize:            16384,
		MaxTextureSlots:           16,
		MaxVertexTextureSlots:     4,
		MaxVertexBufferSlots:      8,
		MaxConstantBufferSlots:    14,
		MaxRenderTargets:          4,
		MaxMultiSampleCount:       8,
		MaxVertexAttributes:       16,
		MaxConstantBufferVectors:  4096,
	}
}

// newFakeBackend registers a fresh fake backend under a unique name.
func newFakeBackend(t *testing.T, caps GraphicsCapabilities) *fakeBackend {
	t.Helper()
	name := "fake-" + strings.ReplaceAll(t.Name(), "/", "-")
	b := &fakeBackend{
		name: name,
		caps: caps,
		adapters: []AdapterDesc{{
			Name:     "Fake Adapter",
			Profiles: ProfilesUpTo(FL11_1),
			Default:  true,
			CurrentDisplayMode: DisplayMode{
				Width: 1920, Height: 1080, Format: SurfaceFormatColor,
			},
		}},
	}
	RegisterBackend(name, func() Backend { return b })
	t.Cleanup(func() { UnregisterBackend(name) })
	return b
}

// newTestDevice opens a HiDef device with an 800x600 back buffer on a fresh
// fake backend.
func newTestDevice(t *testing.T, opts ...DeviceOption) (*GraphicsDevice, *fakeDevice) {
	t.Helper()
	return newTestDeviceCaps(t, HiDef, fakeCaps(), opts...)
}

func newTestDeviceCaps(t *testing.T, profile GraphicsProfile, caps GraphicsCapabilities,
	opts ...DeviceOption) (*GraphicsDevice, *fakeDevice) {
	t.Helper()
	b := newFakeBackend(t, caps)
	adapters, err := AdaptersFor(b.name)
	if err != nil {
		t.Fatalf("AdaptersFor() error = %v", err)
	}
	pp := DefaultPresentationParameters()
	pp.BackBufferWidth, pp.BackBufferHeight = 800, 600
	dev, err := NewGraphicsDevice(adapters[0], profile, false, pp, opts...)
	if err != nil {
		t.Fatalf("NewGraphicsDevice() error = %v", err)
	}
	t.Cleanup(dev.Dispose)
	return dev, b.devices[len(b.devices)-1]
}

type fakeDevice struct {
	backend *fakeBackend
	desc    DeviceDesc
	caps    GraphicsCapabilities
	pp      PresentationParameters
	ctx     *fakeContext

	presents   int
	restores   int
	resets     int
	disposed   bool
	restoreErr error
	// shaderErr makes CreateShader fail with a compile log.
	shaderErr string
	// renderTargetErr makes CreateRenderTarget fail.
	renderTargetErr error
	// stateErr makes every state object creation fail.
	stateErr error

	textures     []*fakeTexture
	buffers      []*fakeBuffer
	cbuffers     []*fakeConstantBuffer
	states       []*fakeState
	queries      []*fakeQuery
	shaders      int
	lastReadback Rectangle
}

func (d *fakeDevice) Capabilities() GraphicsCapabilities { return d.caps }
func (d *fakeDevice) Context() ContextStrategy           { return d.ctx }

func (d *fakeDevice) ResetPresentation(pp PresentationParameters) error {
	d.pp = pp
	d.resets++
	return nil
}

func (d *fakeDevice) Present() error {
	d.presents++
	return nil
}

func (d *fakeDevice) ReadBackBuffer(rect Rectangle, dst []byte) error {
	d.lastReadback = rect
	for i := range dst {
		dst[i] = byte(i)
	}
	return nil
}

func (d *fakeDevice) Restore() error {
	if d.restoreErr != nil {
		return d.restoreErr
	}
	d.restores++
	return nil
}

func (d *fakeDevice) Dispose() { d.disposed = true }

// lose simulates the backend reporting a device loss.
func (d *fakeDevice) lose() { d.desc.LossHandler() }

func (d *fakeDevice) CreateTexture(desc TextureDesc) (TextureStrategy, error) {
	t := newFakeTexture(desc)
	d.textures = append(d.textures, t)
	return t, nil
}

func (d *fakeDevice) CreateRenderTarget(desc RenderTargetDesc) (RenderTargetStrategy, error) {
	if d.renderTargetErr != nil {
		return nil, d.renderTargetErr
	}
	t := newFakeTexture(desc.TextureDesc)
	t.rt = &desc
	d.textures = append(d.textures, t)
	return t, nil
}

func (d *fakeDevice) CreateBuffer(desc BufferDesc) (BufferStrategy, error) {
	b := &fakeBuffer{desc: desc, data: make([]byte, desc.Size)}
	d.buffers = append(d.buffers, b)
	return b, nil
}

func (d *fakeDevice) CreateConstantBuffer(desc ConstantBufferDesc) (ConstantBufferStrategy, error) {
	cb := &fakeConstantBuffer{desc: desc}
	d.cbuffers = append(d.cbuffers, cb)
	return cb, nil
}

func (d *fakeDevice) CreateShader(desc ShaderDesc) (ShaderStrategy, error) {
	if d.shaderErr != "" {
		return nil, &BackendError{Backend: "fake", Op: "compile shader", Log: d.shaderErr}
	}
	d.shaders++
	return &fakeState{kind: "shader", desc: desc.Stage}, nil
}

func (d *fakeDevice) newState(kind string, desc any) (StateStrategy, error) {
	if d.stateErr != nil {
		return nil, d.stateErr
	}
	s := &fakeState{kind: kind, desc: desc}
	d.states = append(d.states, s)
	return s, nil
}

func (d *fakeDevice) CreateBlendState(desc BlendDesc) (StateStrategy, error) {
	return d.newState("blend", desc)
}

func (d *fakeDevice) CreateDepthStencilState(desc DepthStencilDesc) (StateStrategy, error) {
	return d.newState("depth", desc)
}

func (d *fakeDevice) CreateRasterizerState(desc RasterizerDesc) (StateStrategy, error) {
	return d.newState("raster", desc)
}

func (d *fakeDevice) CreateSamplerState(desc SamplerDesc) (StateStrategy, error) {
	return d.newState("sampler", desc)
}

func (d *fakeDevice) CreateOcclusionQuery() (QueryStrategy, error) {
	q := &fakeQuery{pixels: 1234, pollsUntilReady: 2}
	d.queries = append(d.queries, q)
	return q, nil
}

// fakeTexture stores every mip level of every slice at full size for
// uncompressed formats. Compressed uploads are stored per region.
type fakeTexture struct {
	desc       TextureDesc
	rt         *RenderTargetDesc
	levels     map[[2]int][]byte
	compressed map[TextureRegion][]byte
	sets       []TextureRegion
	resolves   int
	disposed   bool
}

func newFakeTexture(desc TextureDesc) *fakeTexture {
	return &fakeTexture{
		desc:       desc,
		levels:     make(map[[2]int][]byte),
		compressed: make(map[TextureRegion][]byte),
	}
}

func (t *fakeTexture) level(level, slice int) ([]byte, int, int) {
	w := max(t.desc.Width>>level, 1)
	h := max(t.desc.Height>>level, 1)
	d := max(t.desc.Depth>>level, 1)
	key := [2]int{level, slice}
	buf, ok := t.levels[key]
	if !ok {
		buf = make([]byte, w*h*d*t.desc.Format.Size())
		t.levels[key] = buf
	}
	return buf, w, h
}

func (t *fakeTexture) copyRegion(r TextureRegion, data []byte, write bool) {
	if t.desc.Format.IsCompressed() {
		if write {
			t.compressed[r] = append([]byte(nil), data...)
		} else {
			copy(data, t.compressed[r])
		}
		return
	}
	buf, w, h := t.level(r.Level, r.Slice)
	size := t.desc.Format.Size()
	row := r.Width * size
	i := 0
	for z := r.Z; z < r.Z+r.Depth; z++ {
		for y := r.Y; y < r.Y+r.Height; y++ {
			off := ((z*h+y)*w + r.X) * size
			if write {
				copy(buf[off:off+row], data[i:i+row])
			} else {
				copy(data[i:i+row], buf[off:off+row])
			}
			i += row
		}
	}
}

func (t *fakeTexture) SetData(r TextureRegion, data []byte) error {
	t.sets = append(t.sets, r)
	t.copyRegion(r, data, true)
	return nil
}

func (t *fakeTexture) GetData(r TextureRegion, data []byte) error {
	t.copyRegion(r, data, false)
	return nil
}

func (t *fakeTexture) Resolve() error {
	t.resolves++
	return nil
}

func (t *fakeTexture) Dispose() { t.disposed = true }

type fakeSet struct {
	offset, size int
	opts         SetDataOptions
}

type fakeBuffer struct {
	desc     BufferDesc
	data     []byte
	sets     []fakeSet
	disposed bool
}

func (b *fakeBuffer) SetData(offset int, data []byte, opts SetDataOptions) error {
	if offset+len(data) > len(b.data) {
		return fmt.Errorf("write of %d bytes at %d overflows %d", len(data), offset, len(b.data))
	}
	b.sets = append(b.sets, fakeSet{offset, len(data), opts})
	copy(b.data[offset:], data)
	return nil
}

func (b *fakeBuffer) GetData(offset int, data []byte) error {
	copy(data, b.data[offset:])
	return nil
}

func (b *fakeBuffer) Dispose() { b.disposed = true }

type fakeConstantBuffer struct {
	desc     ConstantBufferDesc
	uploads  int
	last     []byte
	disposed bool
}

func (cb *fakeConstantBuffer) Upload(data []byte) error {
	cb.uploads++
	cb.last = append(cb.last[:0], data...)
	return nil
}

func (cb *fakeConstantBuffer) Dispose() { cb.disposed = true }

type fakeState struct {
	kind     string
	desc     any
	disposed bool
}

func (s *fakeState) Dispose() { s.disposed = true }

type fakeQuery struct {
	pixels          int
	pollsUntilReady int
	polls           int
	begins, ends    int
	disposed        bool
}

func (q *fakeQuery) Begin() error { q.begins++; q.polls = 0; return nil }
func (q *fakeQuery) End() error   { q.ends++; return nil }

func (q *fakeQuery) Result() (int, bool, error) {
	q.polls++
	if q.polls < q.pollsUntilReady {
		return 0, false, nil
	}
	return q.pixels, true, nil
}

func (q *fakeQuery) Dispose() { q.disposed = true }

// fakeContext records native calls in order.
type fakeContext struct {
	dev   *fakeDevice
	calls []string

	targets  []RenderTargetStrategy
	viewport Viewport
	scissor  Rectangle
	vs, ps   ShaderStrategy
	streams  []VertexStream
	index    BufferStrategy
	textures map[[2]int]TextureStrategy
	samplers map[[2]int]StateStrategy
	cbuffers map[[2]int]ConstantBufferStrategy
	blend    StateStrategy
	factor   Color
	depth    StateStrategy
	stencil  int
	raster   StateStrategy

	draws    []string
	clears   int
	flushes  int
	failDraw error
}

func (c *fakeContext) record(call string) { c.calls = append(c.calls, call) }

// reset forgets recorded calls.
func (c *fakeContext) reset() { c.calls = nil }

// count returns how many recorded calls start with prefix.
func (c *fakeContext) count(prefix string) int {
	n := 0
	for _, call := range c.calls {
		if strings.HasPrefix(call, prefix) {
			n++
		}
	}
	return n
}

func (c *fakeContext) SetRenderTargets(targets []RenderTargetStrategy) error {
	c.record("targets")
	c.targets = append(c.targets[:0], targets...)
	return nil
}

func (c *fakeContext) SetViewport(vp Viewport) {
	c.record("viewport")
	c.viewport = vp
}

func (c *fakeContext) SetScissorRectangle(r Rectangle) {
	c.record("scissor")
	c.scissor = r
}

func (c *fakeContext) SetShaders(vs, ps ShaderStrategy) error {
	c.record("shaders")
	c.vs, c.ps = vs, ps
	return nil
}

func (c *fakeContext) SetConstantBuffer(stage ShaderStage, slot int, cb ConstantBufferStrategy) {
	c.record(fmt.Sprintf("cbuffer %s %d", stage, slot))
	if c.cbuffers == nil {
		c.cbuffers = make(map[[2]int]ConstantBufferStrategy)
	}
	c.cbuffers[[2]int{int(stage), slot}] = cb
}

func (c *fakeContext) SetVertexBuffers(streams []VertexStream) error {
	c.record("vertices")
	c.streams = append(c.streams[:0], streams...)
	return nil
}

func (c *fakeContext) SetIndexBuffer(ib BufferStrategy, size IndexElementSize) {
	c.record("indices")
	c.index = ib
}

func (c *fakeContext) SetTexture(stage ShaderStage, slot int, tex TextureStrategy) {
	c.record(fmt.Sprintf("texture %s %d", stage, slot))
	if c.textures == nil {
		c.textures = make(map[[2]int]TextureStrategy)
	}
	c.textures[[2]int{int(stage), slot}] = tex
}

func (c *fakeContext) SetSampler(stage ShaderStage, slot int, s StateStrategy) {
	c.record(fmt.Sprintf("sampler %s %d", stage, slot))
	if c.samplers == nil {
		c.samplers = make(map[[2]int]StateStrategy)
	}
	c.samplers[[2]int{int(stage), slot}] = s
}

func (c *fakeContext) SetBlendState(s StateStrategy, factor Color) {
	c.record("blend")
	c.blend, c.factor = s, factor
}

func (c *fakeContext) SetDepthStencilState(s StateStrategy, ref int) {
	c.record("depth")
	c.depth, c.stencil = s, ref
}

func (c *fakeContext) SetRasterizerState(s StateStrategy) {
	c.record("raster")
	c.raster = s
}

func (c *fakeContext) Clear(options ClearOptions, color Vector4, depth float32, stencil int) error {
	c.record("clear")
	c.clears++
	return nil
}

func (c *fakeContext) Draw(prim PrimitiveType, start, count int) error {
	if c.failDraw != nil {
		return c.failDraw
	}
	c.record("draw")
	c.draws = append(c.draws, fmt.Sprintf("draw %s %d %d", prim, start, count))
	return nil
}

func (c *fakeContext) DrawIndexed(prim PrimitiveType, baseVertex, startIndex, indexCount int) error {
	c.record("draw")
	c.draws = append(c.draws, fmt.Sprintf("indexed %s %d %d %d", prim, baseVertex, startIndex, indexCount))
	return nil
}

func (c *fakeContext) DrawInstanced(prim PrimitiveType, baseVertex, startIndex, indexCount, baseInstance,
	instanceCount int) error {
	c.record("draw")
	c.draws = append(c.draws, fmt.Sprintf("instanced %s %d %d %d %d %d",
		prim, baseVertex, startIndex, indexCount, baseInstance, instanceCount))
	return nil
}

func (c *fakeContext) Flush() error {
	c.flushes++
	return nil
}

// errIs fails the test unless errors.Is(err, target).
func errIs(t *testing.T, err, target error) {
	t.Helper()
	if !errors.Is(err, target) {
		t.Fatalf("error = %v, want %v", err, target)
	}
}

// testShaders creates and binds a trivial vertex and pixel shader pair.
func testShaders(t *testing.T, dev *GraphicsDevice) (*Shader, *Shader) {
	t.Helper()
	vs, err := NewShader(dev, ShaderDesc{
		Stage: ShaderStageVertex,
		Code:  []byte("void main() {}"),
		Attributes: []ShaderAttribute{
			{Name: "position", Usage: VertexElementUsagePosition},
			{Name: "color", Usage: VertexElementUsageColor, Location: 1},
		},
	})
	if err != nil {
		t.Fatalf("NewShader(vertex) error = %v", err)
	}
	ps, err := NewShader(dev, ShaderDesc{
		Stage:    ShaderStagePixel,
		Code:     []byte("void main() {}"),
		Samplers: []ShaderSampler{{Name: "tex", Slot: 0}},
	})
	if err != nil {
		t.Fatalf("NewShader(pixel) error = %v", err)
	}
	ctx := dev.Context()
	if err := ctx.SetVertexShader(vs); err != nil {
		t.Fatal(err)
	}
	if err := ctx.SetPixelShader(ps); err != nil {
		t.Fatal(err)
	}
	return vs, ps
}

// testVertexBuffer returns a vertex buffer of n VertexPositionColor.
func testVertexBuffer(t *testing.T, dev *GraphicsDevice, n int) *VertexBuffer {
	t.Helper()
	vb, err := NewVertexBuffer(dev, VertexPositionColorDeclaration, n, BufferUsageNone)
	if err != nil {
		t.Fatalf("NewVertexBuffer() error = %v", err)
	}
	return vb
}
