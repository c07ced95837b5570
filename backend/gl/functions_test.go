package gl_test

import (
	"errors"
	"slices"
	"testing"

	"github.com/gogpu/gfx/backend/gl"
	"github.com/gogpu/gfx/backend/gl/softgl"
)

// renamed serves ctx's entry points, hiding the names in hidden and
// exposing each value of aliases under its key.
func renamed(ctx *softgl.Context, hidden []string, aliases map[string]string) gl.Loader {
	return gl.LoaderFunc(func(name string) any {
		if slices.Contains(hidden, name) {
			return nil
		}
		if real, ok := aliases[name]; ok {
			return ctx.ProcAddress(real)
		}
		return ctx.ProcAddress(name)
	})
}

func TestLoadEntryPoints(t *testing.T) {
	ctx := softgl.New(softgl.Config{Width: 1, Height: 1})
	f, err := gl.LoadEntryPoints(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if !f.Instancing() || !f.Queries() {
		t.Errorf("Instancing() = %v, Queries() = %v, want both", f.Instancing(), f.Queries())
	}
	if f.GetGraphicsResetStatus == nil || f.GetTexImage == nil {
		t.Error("optional entry points of a desktop context not resolved")
	}
}

func TestLoadEntryPointsAliases(t *testing.T) {
	ctx := softgl.New(softgl.Config{Width: 1, Height: 1})
	l := renamed(ctx,
		[]string{"glGenFramebuffers", "glClearDepth", "glDrawBuffers", "glBeginQuery"},
		map[string]string{
			"glGenFramebuffersEXT": "glGenFramebuffers",
			"glClearDepthf":        "glClearDepth",
			"glDrawBuffersARB":     "glDrawBuffers",
			"glBeginQueryARB":      "glBeginQuery",
		})
	f, err := gl.LoadEntryPoints(l)
	if err != nil {
		t.Fatal(err)
	}
	if f.GenFramebuffer == nil || f.ClearDepth == nil || f.DrawBuffers == nil {
		t.Error("aliased entry points not resolved")
	}
	if !f.Queries() {
		t.Error("Queries() = false with glBeginQueryARB available")
	}
}

func TestLoadEntryPointsMissing(t *testing.T) {
	ctx := softgl.New(softgl.Config{Width: 1, Height: 1})
	_, err := gl.LoadEntryPoints(renamed(ctx, []string{"glClear", "glDrawArrays"}, nil))
	var missing *gl.MissingEntryPointsError
	if !errors.As(err, &missing) {
		t.Fatalf("LoadEntryPoints() = %v, want MissingEntryPointsError", err)
	}
	if !slices.Equal(missing.Names, []string{"glClear", "glDrawArrays"}) {
		t.Errorf("Names = %v", missing.Names)
	}
}

func TestLoadEntryPointsOptional(t *testing.T) {
	ctx := softgl.New(softgl.Config{Width: 1, Height: 1, OmitInstancing: true})
	f, err := gl.LoadEntryPoints(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if f.Instancing() {
		t.Error("Instancing() = true without instanced entry points")
	}
	if !slices.Contains(f.Missing, "glDrawElementsInstanced") {
		t.Errorf("Missing = %v, want glDrawElementsInstanced", f.Missing)
	}
}
