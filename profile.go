package gfx

import (
	"fmt"
	"strings"
)

// GraphicsProfile is an ordered capability tier. A device is created for one
// profile and keeps it for its whole lifetime.
type GraphicsProfile int

const (
	// Reach is the most portable tier: 2048 texture limit, power-of-two
	// restrictions on mipmapped and compressed textures, no float formats.
	Reach GraphicsProfile = iota
	// HiDef allows 4096 textures, float formats and non-power-of-two mips.
	HiDef
	// FL10_0 corresponds to Direct3D feature level 10.0.
	FL10_0
	// FL10_1 corresponds to Direct3D feature level 10.1.
	FL10_1
	// FL11_0 corresponds to Direct3D feature level 11.0.
	FL11_0
	// FL11_1 corresponds to Direct3D feature level 11.1.
	FL11_1
)

var profileNames = [...]string{"Reach", "HiDef", "FL10_0", "FL10_1", "FL11_0", "FL11_1"}

// String returns the profile name as used in error messages.
func (p GraphicsProfile) String() string {
	if p < 0 || int(p) >= len(profileNames) {
		return fmt.Sprintf("GraphicsProfile(%d)", int(p))
	}
	return profileNames[p]
}

// Valid reports whether p is one of the declared profiles.
func (p GraphicsProfile) Valid() bool {
	return p >= Reach && p <= FL11_1
}

// ParseProfile parses a profile name, ignoring case.
func ParseProfile(s string) (GraphicsProfile, error) {
	for i, name := range profileNames {
		if strings.EqualFold(s, name) {
			return GraphicsProfile(i), nil
		}
	}
	return Reach, argError("profile", "unknown graphics profile %q", s)
}

// MaxTextureSize returns the largest Texture2D width or height allowed.
func (p GraphicsProfile) MaxTextureSize() int {
	switch p {
	case Reach:
		return 2048
	case HiDef:
		return 4096
	case FL10_0, FL10_1:
		return 8192
	default:
		return 16384
	}
}

// MaxTextureCubeSize returns the largest TextureCube edge allowed.
func (p GraphicsProfile) MaxTextureCubeSize() int {
	if p == Reach {
		return 512
	}
	return p.MaxTextureSize()
}

// MaxVolumeExtent returns the largest Texture3D dimension allowed.
// Reach has no volume textures and returns 0.
func (p GraphicsProfile) MaxVolumeExtent() int {
	switch p {
	case Reach:
		return 0
	case HiDef:
		return 256
	default:
		return 2048
	}
}

// SupportsFormat reports whether textures of format f may be created under p.
func (p GraphicsProfile) SupportsFormat(f SurfaceFormat) bool {
	if p != Reach {
		return true
	}
	switch f {
	case SurfaceFormatRgba1010102, SurfaceFormatRg32, SurfaceFormatRgba64,
		SurfaceFormatAlpha8, SurfaceFormatSingle, SurfaceFormatVector2,
		SurfaceFormatVector4, SurfaceFormatHalfSingle, SurfaceFormatHalfVector2,
		SurfaceFormatHalfVector4, SurfaceFormatHdrBlendable:
		return false
	}
	return true
}

// NeedsRecreate reports whether moving from the current profile to next
// requires disposing and recreating the device instead of a Reset.
func NeedsRecreate(current, next GraphicsProfile) bool {
	return current != next
}

func isPowerOfTwo(v int) bool {
	return v > 0 && v&(v-1) == 0
}
