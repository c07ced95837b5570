// Package gfx provides a backend-neutral graphics device layer for Go.
//
// # Overview
//
// gfx presents one stable API (GraphicsDevice, buffers, shaders, textures,
// render targets, state objects) and dispatches every native operation to a
// backend selected at device creation. Backends implement the strategy
// interfaces declared in this package and register themselves by name, the
// same way database/sql drivers do.
//
// # Quick Start
//
//	import (
//	    "github.com/gogpu/gfx"
//	    _ "github.com/gogpu/gfx/backend/gl/softgl"
//	)
//
//	adapter := gfx.DefaultAdapter()
//	pp := gfx.DefaultPresentationParameters()
//	dev, err := gfx.NewGraphicsDevice(adapter, gfx.HiDef, false, pp)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer dev.Dispose()
//
//	tex, _ := gfx.NewTexture2D(dev, 100, 100, false, gfx.SurfaceFormatColor)
//	_ = gfx.SetTextureData(tex, pixels)
//
// # Backends
//
//   - backend/gl: OpenGL over a table of entry points resolved by name
//   - backend/gl/softgl: a headless pure-Go GL used for tests and tooling
//   - backend/wgpu: the gogpu/wgpu HAL (Vulkan, Metal, DX12, GLES, noop)
//
// # State application
//
// GraphicsContext records state changes and applies them lazily, right before
// a draw, in a fixed order: render targets, viewport and scissor, shaders,
// constant buffers, vertex and index buffers, textures and samplers, then
// fixed-function state. Texture, sampler and constant-buffer bindings are
// tracked per slot in bitmasks, so slots that did not change since the last
// draw never reach the backend.
//
// # Device loss
//
// Backends whose native context can vanish report it through a callback. The
// device moves Active -> Lost, then Recover moves it through Recreating back to
// Active. Resources recreate their native objects lazily on next use and
// report IsContentLost; content is never re-uploaded automatically.
//
// # Threading
//
// A device and its context are single-writer. Callers serialize access. The
// only internal lock is the context lock held during constant-buffer upload.
package gfx
