package gl

import (
	"fmt"
	"strings"

	"github.com/gogpu/gfx"
)

// Version is a parsed GL_VERSION string.
type Version struct {
	Major, Minor int
	// ES is set for OpenGL ES contexts.
	ES bool
}

// ParseVersion parses GL_VERSION strings such as "4.6.0 NVIDIA 535.54" or
// "OpenGL ES 3.2 Mesa 23.0".
func ParseVersion(s string) (Version, error) {
	var v Version
	rest := strings.TrimSpace(s)
	if after, ok := strings.CutPrefix(rest, "OpenGL ES"); ok {
		v.ES = true
		// "OpenGL ES-CM 1.1" and "OpenGL ES-CL" profiles carry a suffix.
		if i := strings.IndexByte(after, ' '); i >= 0 {
			after = after[i:]
		}
		rest = strings.TrimSpace(after)
	}
	if _, err := fmt.Sscanf(rest, "%d.%d", &v.Major, &v.Minor); err != nil {
		return Version{}, fmt.Errorf("gl: unrecognized GL_VERSION %q", s)
	}
	return v, nil
}

// AtLeast reports whether v is major.minor or newer.
func (v Version) AtLeast(major, minor int) bool {
	return v.Major > major || (v.Major == major && v.Minor >= minor)
}

func (v Version) String() string {
	if v.ES {
		return fmt.Sprintf("OpenGL ES %d.%d", v.Major, v.Minor)
	}
	return fmt.Sprintf("OpenGL %d.%d", v.Major, v.Minor)
}

// Extensions is the set of GL_EXTENSIONS names.
type Extensions map[string]bool

// ParseExtensions splits a space separated GL_EXTENSIONS string.
func ParseExtensions(s string) Extensions {
	exts := make(Extensions)
	for _, name := range strings.Fields(s) {
		exts[name] = true
	}
	return exts
}

// Any reports whether at least one of names is present.
func (e Extensions) Any(names ...string) bool {
	for _, n := range names {
		if e[n] {
			return true
		}
	}
	return false
}

// MaxProfile returns the highest profile a context of version v with the
// given texture size limit can satisfy.
func MaxProfile(v Version, maxTextureSize int) gfx.GraphicsProfile {
	var p gfx.GraphicsProfile
	switch {
	case v.ES && v.AtLeast(3, 2):
		p = gfx.FL10_1
	case v.ES && v.AtLeast(3, 0):
		p = gfx.HiDef
	case v.ES:
		p = gfx.Reach
	case v.AtLeast(4, 3):
		p = gfx.FL11_1
	case v.AtLeast(4, 0):
		p = gfx.FL11_0
	case v.AtLeast(3, 3):
		p = gfx.FL10_1
	case v.AtLeast(3, 2):
		p = gfx.FL10_0
	case v.AtLeast(3, 0):
		p = gfx.HiDef
	default:
		p = gfx.Reach
	}
	for p > gfx.Reach && maxTextureSize < p.MaxTextureSize() {
		p--
	}
	return p
}

// queryCapabilities fills the capabilities of the current context.
func queryCapabilities(f *EntryPoints, v Version, exts Extensions) gfx.GraphicsCapabilities {
	core3 := v.AtLeast(3, 0)
	c := gfx.GraphicsCapabilities{
		SupportsNonPowerOfTwo: core3 || exts.Any("GL_ARB_texture_non_power_of_two", "GL_OES_texture_npot"),
		SupportsTextureArrays: (core3 || exts["GL_EXT_texture_array"]) && f.FramebufferTextureLayer != nil &&
			f.TexImage3D != nil,
		SupportsInstancing:     f.Instancing(),
		SupportsBaseInstance:   f.Instancing() && f.DrawElementsInstancedBaseInstance != nil,
		SupportsOcclusionQuery: f.Queries(),
		SupportsFloatTextures:  core3 || exts.Any("GL_ARB_texture_float", "GL_OES_texture_float"),
		SupportsHalfFloatTextures: core3 ||
			exts.Any("GL_ARB_half_float_pixel", "GL_OES_texture_half_float"),
		SupportsSRgb:              core3 || exts.Any("GL_EXT_texture_sRGB", "GL_EXT_sRGB"),
		SupportsDepthClamp:        !v.ES && (v.AtLeast(3, 2) || exts["GL_ARB_depth_clamp"]),
		SupportsSeparateBlend:     true,
		SupportsTextureAnisotropy: exts.Any("GL_EXT_texture_filter_anisotropic", "GL_ARB_texture_filter_anisotropic"),

		SupportsDxt1:  exts.Any("GL_EXT_texture_compression_dxt1", "GL_OES_texture_compression_S3TC"),
		SupportsS3tc:  exts.Any("GL_EXT_texture_compression_s3tc", "GL_OES_texture_compression_S3TC"),
		SupportsPvrtc: exts["GL_IMG_texture_compression_pvrtc"],
		SupportsEtc1:  exts["GL_OES_compressed_ETC1_RGB8_texture"],
		SupportsEtc2:  (v.ES && core3) || v.AtLeast(4, 3) || exts["GL_ARB_ES3_compatibility"],
		SupportsAtitc: exts.Any("GL_ATI_texture_compression_atitc", "GL_AMD_compressed_ATC_texture"),

		MaxTextureSize:        f.GetInteger(MAX_TEXTURE_SIZE),
		MaxTextureSlots:       f.GetInteger(MAX_TEXTURE_IMAGE_UNITS),
		MaxVertexTextureSlots: f.GetInteger(MAX_VERTEX_TEXTURE_IMAGE_UNITS),
		MaxVertexAttributes:   f.GetInteger(MAX_VERTEX_ATTRIBS),
		MaxVertexBufferSlots:  f.GetInteger(MAX_VERTEX_ATTRIBS),
		// Constant buffers are emulated with uniform arrays.
		MaxConstantBufferSlots:   16,
		MaxConstantBufferVectors: f.GetInteger(MAX_VERTEX_UNIFORM_VECTORS),
		MaxRenderTargets:         1,
		MaxTextureAnisotropy:     1,
	}
	c.SupportsVertexTextures = c.MaxVertexTextureSlots > 0
	if f.DrawBuffers != nil {
		c.MaxRenderTargets = max(1, f.GetInteger(MAX_DRAW_BUFFERS))
	}
	if f.RenderbufferStorageMultisample != nil && f.BlitFramebuffer != nil {
		c.MaxMultiSampleCount = f.GetInteger(MAX_SAMPLES)
	}
	if c.SupportsTextureAnisotropy {
		c.MaxTextureAnisotropy = max(1, f.GetInteger(MAX_TEXTURE_MAX_ANISOTROPY_EXT))
	}
	return c
}
