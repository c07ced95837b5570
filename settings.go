package gfx

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
)

// Settings is the user-facing device configuration, usually loaded from a
// TOML file:
//
//	backend = "gl"
//	profile = "HiDef"
//	width = 1280
//	height = 720
//	vsync = true
type Settings struct {
	// Backend is the registry name. Empty selects the default adapter.
	Backend string `toml:"backend"`
	// Adapter selects an adapter by name within the backend.
	Adapter          string `toml:"adapter"`
	Profile          string `toml:"profile"`
	Width            int    `toml:"width"`
	Height           int    `toml:"height"`
	Format           string `toml:"format"`
	DepthFormat      string `toml:"depth_format"`
	MultiSampleCount int    `toml:"multisample"`
	FullScreen       bool   `toml:"fullscreen"`
	VSync            bool   `toml:"vsync"`
	HalfPixelOffset  bool   `toml:"half_pixel_offset"`
}

// DefaultSettings returns an 800x480 HiDef configuration with vsync.
func DefaultSettings() Settings {
	return Settings{
		Profile:     HiDef.String(),
		Width:       DefaultBackBufferWidth,
		Height:      DefaultBackBufferHeight,
		Format:      SurfaceFormatColor.String(),
		DepthFormat: DepthFormatDepth24.String(),
		VSync:       true,
	}
}

// LoadSettings decodes TOML from r over DefaultSettings. Unknown keys are
// an error.
func LoadSettings(r io.Reader) (Settings, error) {
	s := DefaultSettings()
	dec := toml.NewDecoder(r).DisallowUnknownFields()
	if err := dec.Decode(&s); err != nil {
		return Settings{}, fmt.Errorf("gfx: decode settings: %w", err)
	}
	return s, nil
}

// LoadSettingsFile reads settings from a TOML file.
func LoadSettingsFile(path string) (Settings, error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return Settings{}, fmt.Errorf("gfx: open settings: %w", err)
	}
	defer func() { _ = f.Close() }()
	return LoadSettings(f)
}

// Environment variables read by ApplyEnv.
const (
	EnvBackend = "GFX_BACKEND"
	EnvProfile = "GFX_PROFILE"
	EnvVSync   = "GFX_VSYNC"
	EnvWidth   = "GFX_WIDTH"
	EnvHeight  = "GFX_HEIGHT"
)

// ApplyEnv overrides s from the process environment and the given .env
// files. The process environment wins over the files. Missing files are
// ignored.
func (s *Settings) ApplyEnv(files ...string) error {
	vars := make(map[string]string)
	for _, file := range files {
		m, err := godotenv.Read(file)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return fmt.Errorf("gfx: read %s: %w", file, err)
		}
		for k, v := range m {
			vars[k] = v
		}
	}
	lookup := func(key string) (string, bool) {
		if v, ok := os.LookupEnv(key); ok {
			return v, true
		}
		v, ok := vars[key]
		return v, ok
	}

	if v, ok := lookup(EnvBackend); ok {
		s.Backend = strings.TrimSpace(v)
	}
	if v, ok := lookup(EnvProfile); ok {
		s.Profile = strings.TrimSpace(v)
	}
	if v, ok := lookup(EnvVSync); ok {
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return argError(EnvVSync, "not a boolean: %q", v)
		}
		s.VSync = b
	}
	for _, e := range []struct {
		key string
		dst *int
	}{{EnvWidth, &s.Width}, {EnvHeight, &s.Height}} {
		v, ok := lookup(e.key)
		if !ok {
			continue
		}
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return argError(e.key, "not an integer: %q", v)
		}
		*e.dst = n
	}
	return nil
}

// GraphicsProfile parses the configured profile. Empty means HiDef.
func (s Settings) GraphicsProfile() (GraphicsProfile, error) {
	if s.Profile == "" {
		return HiDef, nil
	}
	return ParseProfile(s.Profile)
}

// Presentation converts s to presentation parameters and validates them
// against the configured profile.
func (s Settings) Presentation() (PresentationParameters, error) {
	profile, err := s.GraphicsProfile()
	if err != nil {
		return PresentationParameters{}, err
	}
	pp := DefaultPresentationParameters()
	if s.Width != 0 {
		pp.BackBufferWidth = s.Width
	}
	if s.Height != 0 {
		pp.BackBufferHeight = s.Height
	}
	if s.Format != "" {
		if pp.BackBufferFormat, err = ParseSurfaceFormat(s.Format); err != nil {
			return PresentationParameters{}, err
		}
	}
	if s.DepthFormat != "" {
		if pp.DepthStencilFormat, err = ParseDepthFormat(s.DepthFormat); err != nil {
			return PresentationParameters{}, err
		}
	}
	pp.MultiSampleCount = s.MultiSampleCount
	pp.IsFullScreen = s.FullScreen
	pp.PresentationInterval = PresentIntervalImmediate
	if s.VSync {
		pp.PresentationInterval = PresentIntervalOne
	}
	if err := pp.Validate(profile); err != nil {
		return PresentationParameters{}, err
	}
	return pp, nil
}
