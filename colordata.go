package gfx

// packedVector is a texel type that converts to a normalized colour.
type packedVector interface {
	ToVector4() Vector4
}

// GetColorData reads level 0 and converts every texel to Color.
// Compressed and floating-point vector formats are not supported.
func (t *Texture2D) GetColorData() ([]Color, error) {
	n := t.Width() * t.Height()
	switch t.Format() {
	case SurfaceFormatColor:
		out := make([]Color, n)
		if err := GetTextureData(t, out); err != nil {
			return nil, err
		}
		return out, nil
	case SurfaceFormatSingle:
		raw := make([]float32, n)
		if err := GetTextureData(t, raw); err != nil {
			return nil, err
		}
		out := make([]Color, n)
		for i, v := range raw {
			out[i] = NewColorRGB(v, v, v)
		}
		return out, nil
	case SurfaceFormatAlpha8:
		return readColors[Alpha8](t, n)
	case SurfaceFormatBgr565:
		return readColors[Bgr565](t, n)
	case SurfaceFormatBgra4444:
		return readColors[Bgra4444](t, n)
	case SurfaceFormatBgra5551:
		return readColors[Bgra5551](t, n)
	case SurfaceFormatHalfSingle:
		return readColors[HalfSingle](t, n)
	case SurfaceFormatHalfVector2:
		return readColors[HalfVector2](t, n)
	case SurfaceFormatHalfVector4:
		return readColors[HalfVector4](t, n)
	case SurfaceFormatNormalizedByte2:
		return readColors[NormalizedByte2](t, n)
	case SurfaceFormatNormalizedByte4:
		return readColors[NormalizedByte4](t, n)
	case SurfaceFormatRg32:
		return readColors[Rg32](t, n)
	case SurfaceFormatRgba64:
		return readColors[Rgba64](t, n)
	case SurfaceFormatRgba1010102:
		return readColors[Rgba1010102](t, n)
	default:
		return nil, notSupported("format", "Texture surface format not supported: %s", t.Format())
	}
}

func readColors[P packedVector](t Texture2DResource, n int) ([]Color, error) {
	raw := make([]P, n)
	if err := GetTextureData(t, raw); err != nil {
		return nil, err
	}
	out := make([]Color, n)
	for i, p := range raw {
		out[i] = NewColorFromVector4(p.ToVector4())
	}
	return out, nil
}
