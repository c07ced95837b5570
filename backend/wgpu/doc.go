// Package wgpu implements the gfx device strategies on the gogpu/wgpu HAL.
//
// Importing the package registers two backends:
//
//   - "wgpu" opens the first native HAL backend linked into the binary
//     (Vulkan, Metal, DX12, then GL).
//   - "wgpu-noop" opens the HAL noop backend. It accepts every call and
//     renders nothing, which makes it useful for tests of code built on gfx.
//
// A device created by the host application is used through
// NewExternalBackend. The provider must expose its HAL objects:
//
//	type halProvider interface {
//	    HalDevice() any // hal.Device
//	    HalQueue() any  // hal.Queue
//	}
//
// # Back buffer
//
// The back buffer is an offscreen texture. Present submits the recorded
// frame and waits for it, after which ReadBackBuffer returns its content.
//
// # Shaders
//
// Shader code is WGSL. Every module is validated with naga before it reaches
// the HAL, and compile errors surface as a *gfx.BackendError whose Log holds
// the naga diagnostic. Vertex inputs use @location(n) matching
// ShaderAttribute.Location. Resources are laid out in four bind groups:
//
//	@group(0) @binding(slot)       vertex stage uniform blocks
//	@group(1) @binding(slot)       pixel stage uniform blocks
//	@group(2) @binding(2*slot)     pixel stage texture
//	@group(2) @binding(2*slot+1)   pixel stage sampler
//	@group(3) @binding(2*slot)     vertex stage texture
//	@group(3) @binding(2*slot+1)   vertex stage sampler
//
// Entry points default to "vs_main" and "fs_main".
package wgpu
