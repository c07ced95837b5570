package gl

import (
	"testing"

	"github.com/gogpu/gfx"
)

func TestParseVersion(t *testing.T) {
	tests := []struct {
		in      string
		want    Version
		wantErr bool
	}{
		{"4.6.0 NVIDIA 535.54", Version{Major: 4, Minor: 6}, false},
		{"3.3.0 softgl", Version{Major: 3, Minor: 3}, false},
		{"OpenGL ES 3.2 Mesa 23.0", Version{Major: 3, Minor: 2, ES: true}, false},
		{"OpenGL ES-CM 1.1", Version{Major: 1, Minor: 1, ES: true}, false},
		{"  2.1 Metal - 83  ", Version{Major: 2, Minor: 1}, false},
		{"", Version{}, true},
		{"OpenGL ES", Version{}, true},
		{"WebGL", Version{}, true},
	}
	for _, tt := range tests {
		got, err := ParseVersion(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseVersion(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseVersion(%q) = %+v, want %+v", tt.in, got, tt.want)
		}
	}
}

func TestVersionAtLeast(t *testing.T) {
	v := Version{Major: 3, Minor: 2}
	if !v.AtLeast(3, 2) || !v.AtLeast(2, 9) || v.AtLeast(3, 3) || v.AtLeast(4, 0) {
		t.Errorf("AtLeast on %v is inconsistent", v)
	}
	if s := (Version{Major: 3, ES: true}).String(); s != "OpenGL ES 3.0" {
		t.Errorf("String() = %q", s)
	}
}

func TestMaxProfile(t *testing.T) {
	tests := []struct {
		v       Version
		maxSize int
		want    gfx.GraphicsProfile
	}{
		{Version{Major: 2, Minor: 1}, 4096, gfx.Reach},
		{Version{Major: 3, Minor: 0}, 8192, gfx.HiDef},
		{Version{Major: 3, Minor: 2}, 8192, gfx.FL10_0},
		{Version{Major: 3, Minor: 3}, 8192, gfx.FL10_1},
		{Version{Major: 4, Minor: 1}, 16384, gfx.FL11_0},
		{Version{Major: 4, Minor: 6}, 16384, gfx.FL11_1},
		{Version{Major: 2, ES: true}, 2048, gfx.Reach},
		{Version{Major: 3, ES: true}, 4096, gfx.HiDef},
		{Version{Major: 3, Minor: 2, ES: true}, 8192, gfx.FL10_1},
		// The texture size limit lowers the profile.
		{Version{Major: 4, Minor: 6}, 8192, gfx.FL10_1},
		{Version{Major: 3, Minor: 3}, 4096, gfx.HiDef},
		{Version{Major: 3, Minor: 3}, 1024, gfx.Reach},
	}
	for _, tt := range tests {
		if got := MaxProfile(tt.v, tt.maxSize); got != tt.want {
			t.Errorf("MaxProfile(%v, %d) = %v, want %v", tt.v, tt.maxSize, got, tt.want)
		}
	}
}

func TestParseExtensions(t *testing.T) {
	exts := ParseExtensions("  GL_ARB_depth_clamp\tGL_EXT_sRGB\n GL_KHR_debug ")
	if len(exts) != 3 {
		t.Fatalf("ParseExtensions() = %v, want 3 names", exts)
	}
	if !exts["GL_EXT_sRGB"] || exts["GL_ARB_robustness"] {
		t.Errorf("ParseExtensions() = %v", exts)
	}
	if !exts.Any("GL_OES_depth24", "GL_KHR_debug") {
		t.Error("Any() = false, want true")
	}
	if exts.Any() || exts.Any("GL_OES_depth24") {
		t.Error("Any() = true, want false")
	}
	if len(ParseExtensions("")) != 0 {
		t.Error("empty GL_EXTENSIONS is not empty")
	}
}
