package wgpu

import (
	"encoding/binary"
	"hash"
	"hash/fnv"
	"sync"
	"sync/atomic"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// pipelineCache stores render pipelines indexed by a hash of their
// descriptor.
//
// Pipeline creation involves shader compilation and validation, and gfx
// state is applied per draw, so nearly every draw would create a pipeline
// without it. The cache is safe for concurrent use and counts hits and
// misses.
type pipelineCache struct {
	mu      sync.RWMutex
	entries map[uint64]*pipelineEntry

	hits   atomic.Uint64
	misses atomic.Uint64
}

type pipelineEntry struct {
	pipeline hal.RenderPipeline
	vs, ps   *shader
}

func newPipelineCache() *pipelineCache {
	return &pipelineCache{entries: make(map[uint64]*pipelineEntry)}
}

// getOrCreate returns the cached pipeline for desc, creating it on a miss.
// vs and ps are the shaders whose modules desc refers to.
func (c *pipelineCache) getOrCreate(dev hal.Device, vs, ps *shader,
	desc *hal.RenderPipelineDescriptor) (hal.RenderPipeline, error) {
	key := hashPipeline(vs, ps, desc)

	c.mu.RLock()
	if e, ok := c.entries[key]; ok {
		c.mu.RUnlock()
		c.hits.Add(1)
		return e.pipeline, nil
	}
	c.mu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.entries[key]; ok {
		c.hits.Add(1)
		return e.pipeline, nil
	}
	c.misses.Add(1)
	p, err := dev.CreateRenderPipeline(desc)
	if err != nil {
		return nil, err
	}
	c.entries[key] = &pipelineEntry{pipeline: p, vs: vs, ps: ps}
	return p, nil
}

// stats returns the number of cache hits and misses.
func (c *pipelineCache) stats() (hits, misses uint64) {
	return c.hits.Load(), c.misses.Load()
}

// hitRate returns the share of lookups served from the cache, 0 when there
// were none.
func (c *pipelineCache) hitRate() float64 {
	hits, misses := c.stats()
	if hits+misses == 0 {
		return 0
	}
	return float64(hits) / float64(hits+misses)
}

func (c *pipelineCache) size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// evict removes the pipelines built from s and returns them for
// destruction.
func (c *pipelineCache) evict(s *shader) []hal.RenderPipeline {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []hal.RenderPipeline
	for k, e := range c.entries {
		if e.vs == s || e.ps == s {
			out = append(out, e.pipeline)
			delete(c.entries, k)
		}
	}
	return out
}

// destroyAll destroys every cached pipeline and empties the cache.
func (c *pipelineCache) destroyAll(dev hal.Device) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, e := range c.entries {
		dev.DestroyRenderPipeline(e.pipeline)
	}
	c.entries = make(map[uint64]*pipelineEntry)
	c.hits.Store(0)
	c.misses.Store(0)
}

// hashPipeline computes an FNV-1a hash over every descriptor field the
// context sets. Layouts are identified by the shader pair, which owns them.
func hashPipeline(vs, ps *shader, desc *hal.RenderPipelineDescriptor) uint64 {
	h := fnv.New64a()

	hashWriteUint64(h, vs.id)
	hashWriteUint64(h, vs.hash)
	hashWriteString(h, desc.Vertex.EntryPoint)
	hashWriteUint64(h, ps.id)
	hashWriteUint64(h, ps.hash)
	if desc.Fragment != nil {
		hashWriteString(h, desc.Fragment.EntryPoint)
	}

	hashWriteUint32(h, uint32(len(desc.Vertex.Buffers)))
	for i := range desc.Vertex.Buffers {
		layout := &desc.Vertex.Buffers[i]
		hashWriteUint64(h, layout.ArrayStride)
		hashWriteUint32(h, uint32(layout.StepMode))
		hashWriteUint32(h, uint32(len(layout.Attributes)))
		for j := range layout.Attributes {
			attr := &layout.Attributes[j]
			hashWriteUint32(h, attr.ShaderLocation)
			hashWriteUint32(h, uint32(attr.Format))
			hashWriteUint64(h, attr.Offset)
		}
	}

	hashWriteUint32(h, uint32(desc.Primitive.Topology))
	hashWriteUint32(h, uint32(desc.Primitive.FrontFace))
	hashWriteUint32(h, uint32(desc.Primitive.CullMode))

	if desc.Fragment != nil {
		hashWriteUint32(h, uint32(len(desc.Fragment.Targets)))
		for i := range desc.Fragment.Targets {
			t := &desc.Fragment.Targets[i]
			hashWriteUint32(h, uint32(t.Format))
			hashWriteUint32(h, uint32(t.WriteMask))
			hashBlend(h, t.Blend)
		}
	}

	if ds := desc.DepthStencil; ds != nil {
		hashWriteBool(h, true)
		hashWriteUint32(h, uint32(ds.Format))
		hashWriteBool(h, ds.DepthWriteEnabled)
		hashWriteUint32(h, uint32(ds.DepthCompare))
		for _, f := range []hal.StencilFaceState{ds.StencilFront, ds.StencilBack} {
			hashWriteUint32(h, uint32(f.Compare))
			hashWriteUint32(h, uint32(f.FailOp))
			hashWriteUint32(h, uint32(f.DepthFailOp))
			hashWriteUint32(h, uint32(f.PassOp))
		}
		hashWriteUint32(h, ds.StencilReadMask)
		hashWriteUint32(h, ds.StencilWriteMask)
	} else {
		hashWriteBool(h, false)
	}

	hashWriteUint32(h, desc.Multisample.Count)
	hashWriteUint64(h, desc.Multisample.Mask)

	return h.Sum64()
}

func hashBlend(h hash.Hash64, b *gputypes.BlendState) {
	if b == nil {
		hashWriteBool(h, false)
		return
	}
	hashWriteBool(h, true)
	hashWriteUint32(h, uint32(b.Color.SrcFactor))
	hashWriteUint32(h, uint32(b.Color.DstFactor))
	hashWriteUint32(h, uint32(b.Color.Operation))
	hashWriteUint32(h, uint32(b.Alpha.SrcFactor))
	hashWriteUint32(h, uint32(b.Alpha.DstFactor))
	hashWriteUint32(h, uint32(b.Alpha.Operation))
}

func hashBytes(data []byte) uint64 {
	h := fnv.New64a()
	_, _ = h.Write(data)
	return h.Sum64()
}

func hashWriteUint32(h hash.Hash64, v uint32) {
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], v)
	_, _ = h.Write(buf[:])
}

func hashWriteUint64(h hash.Hash64, v uint64) {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], v)
	_, _ = h.Write(buf[:])
}

func hashWriteString(h hash.Hash64, s string) {
	hashWriteUint32(h, uint32(len(s)))
	_, _ = h.Write([]byte(s))
}

func hashWriteBool(h hash.Hash64, v bool) {
	if v {
		_, _ = h.Write([]byte{1})
	} else {
		_, _ = h.Write([]byte{0})
	}
}
