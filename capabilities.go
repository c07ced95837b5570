package gfx

// GraphicsCapabilities describes what the backend behind a device can do.
// It is queried once at device creation and after every recovery.
type GraphicsCapabilities struct {
	SupportsNonPowerOfTwo     bool
	SupportsTextureArrays     bool
	SupportsVertexTextures    bool
	SupportsInstancing        bool
	SupportsBaseInstance      bool
	SupportsOcclusionQuery    bool
	SupportsFloatTextures     bool
	SupportsHalfFloatTextures bool
	SupportsSRgb              bool
	SupportsDepthClamp        bool
	SupportsSeparateBlend     bool
	SupportsTextureAnisotropy bool

	SupportsDxt1  bool
	SupportsS3tc  bool
	SupportsPvrtc bool
	SupportsEtc1  bool
	SupportsEtc2  bool
	SupportsAtitc bool

	MaxTextureSize           int
	MaxTextureSlots          int
	MaxVertexTextureSlots    int
	MaxVertexBufferSlots     int
	MaxConstantBufferSlots   int
	MaxRenderTargets         int
	MaxMultiSampleCount      int
	MaxTextureAnisotropy     int
	MaxVertexAttributes      int
	MaxConstantBufferVectors int
}

// Slot limits enforced by the collections regardless of backend.
const (
	maxTextureSlots        = 16
	maxVertexTextureSlots  = 4
	maxConstantBufferSlots = 16
	maxVertexBufferSlots   = 16
	maxRenderTargets       = 8
)

// clamp limits c to what the profile and the collections allow.
func (c GraphicsCapabilities) clamp(profile GraphicsProfile) GraphicsCapabilities {
	limit := profile.MaxTextureSize()
	if c.MaxTextureSize <= 0 || c.MaxTextureSize > limit {
		c.MaxTextureSize = limit
	}
	c.MaxTextureSlots = clampSlots(c.MaxTextureSlots, maxTextureSlots)
	c.MaxConstantBufferSlots = clampSlots(c.MaxConstantBufferSlots, maxConstantBufferSlots)
	c.MaxVertexBufferSlots = clampSlots(c.MaxVertexBufferSlots, maxVertexBufferSlots)
	c.MaxRenderTargets = clampSlots(c.MaxRenderTargets, maxRenderTargets)
	if c.SupportsVertexTextures {
		c.MaxVertexTextureSlots = clampSlots(c.MaxVertexTextureSlots, maxVertexTextureSlots)
	} else {
		c.MaxVertexTextureSlots = 0
	}
	if profile == Reach {
		c.SupportsTextureArrays = false
		c.SupportsFloatTextures = false
		c.SupportsHalfFloatTextures = false
	}
	return c
}

func clampSlots(n, limit int) int {
	if n <= 0 || n > limit {
		return limit
	}
	return n
}
