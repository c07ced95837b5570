package softgl

import (
	"math"

	"github.com/gogpu/gfx/backend/gl"
)

// opaqueBlack is returned for units without a usable texture.
var opaqueBlack = rgba{0, 0, 0, 1}

// sample filters the base level of the texture bound to target on unit at
// uv. Only the magnification filter is honoured.
func (c *Context) sample(unit int, target gl.Enum, uv [2]float32) rgba {
	if unit < 0 || unit >= maxTextureUnits {
		return opaqueBlack
	}
	t := c.textures[c.st.units[unit][target]]
	if t == nil || t.target != target {
		return opaqueBlack
	}
	l := t.level(max(t.baseLevel, 0))
	if l == nil || l.layers[0].compressed() {
		return opaqueBlack
	}
	im := l.layers[0]
	u, v := uv[0]*float32(im.w), uv[1]*float32(im.h)
	if t.magFilter == gl.NEAREST {
		return texel(im, floor(u), floor(v), t.wrap)
	}
	u, v = u-0.5, v-0.5
	x, y := floor(u), floor(v)
	fx, fy := u-float32(x), v-float32(y)
	t00, t10 := texel(im, x, y, t.wrap), texel(im, x+1, y, t.wrap)
	t01, t11 := texel(im, x, y+1, t.wrap), texel(im, x+1, y+1, t.wrap)
	var out rgba
	for i := range 4 {
		top := t00[i] + (t10[i]-t00[i])*fx
		bot := t01[i] + (t11[i]-t01[i])*fx
		out[i] = top + (bot-top)*fy
	}
	return out
}

func floor(v float32) int { return int(math.Floor(float64(v))) }

// texel reads (x, y) after applying the wrap modes. Coordinates outside a
// CLAMP_TO_BORDER image read transparent black.
func texel(im *image, x, y int, wrap [3]gl.Enum) rgba {
	xi, okx := wrapCoord(x, im.w, wrap[0])
	yi, oky := wrapCoord(y, im.h, wrap[1])
	if !okx || !oky {
		return rgba{}
	}
	return im.at(xi, yi)
}

func wrapCoord(i, n int, mode gl.Enum) (int, bool) {
	switch mode {
	case gl.REPEAT:
		return (i%n + n) % n, true
	case gl.MIRRORED_REPEAT:
		m := (i%(2*n) + 2*n) % (2 * n)
		if m >= n {
			m = 2*n - 1 - m
		}
		return m, true
	case gl.CLAMP_TO_BORDER:
		return i, i >= 0 && i < n
	}
	return min(max(i, 0), n-1), true
}

// downsample fills dst with a 2x2 box filter of a and b averaged together.
// Odd edges reuse the last row or column.
func downsample(dst, a, b *image) {
	for dy := 0; dy < dst.h; dy++ {
		for dx := 0; dx < dst.w; dx++ {
			sx, sy := dx*2, dy*2
			var sum rgba
			for _, src := range [2]*image{a, b} {
				x1, y1 := min(sx+1, src.w-1), min(sy+1, src.h-1)
				x0, y0 := min(sx, src.w-1), min(sy, src.h-1)
				for _, p := range [4]rgba{src.at(x0, y0), src.at(x1, y0), src.at(x0, y1), src.at(x1, y1)} {
					for i := range 4 {
						sum[i] += p[i]
					}
				}
			}
			for i := range 4 {
				sum[i] /= 8
			}
			dst.set(dx, dy, sum)
		}
	}
}
