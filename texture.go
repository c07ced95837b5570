package gfx

// Texture is the part shared by every texture kind.
type Texture struct {
	resource
	desc     TextureDesc
	strategy TextureStrategy
	// create builds the native object; render targets replace it.
	create func(dev *GraphicsDevice) (TextureStrategy, error)
}

func (t *Texture) init(dev *GraphicsDevice, desc TextureDesc, kind string, self tracked) error {
	t.desc = desc
	if t.create == nil {
		t.create = func(dev *GraphicsDevice) (TextureStrategy, error) {
			return dev.strategy.CreateTexture(t.desc)
		}
	}
	s, err := t.create(dev)
	if err != nil {
		return dev.wrap("create "+kind, err)
	}
	t.strategy = s
	t.attach(dev, self, kind)
	dev.log.Debug("gfx: texture created", "kind", kind,
		"width", desc.Width, "height", desc.Height, "levels", desc.LevelCount, "format", desc.Format.String())
	return nil
}

func (t *Texture) texture() *Texture { return t }

// Format returns the texel format.
func (t *Texture) Format() SurfaceFormat { return t.desc.Format }

// LevelCount returns the number of mip levels.
func (t *Texture) LevelCount() int { return t.desc.LevelCount }

// Kind returns the texture shape.
func (t *Texture) Kind() TextureKind { return t.desc.Kind }

// levelSize returns the dimensions of mip level.
func (t *Texture) levelSize(level int) (w, h, d int) {
	return max(t.desc.Width>>level, 1), max(t.desc.Height>>level, 1), max(t.desc.Depth>>level, 1)
}

func (t *Texture) native() (TextureStrategy, error) {
	stale, err := t.check()
	if err != nil {
		return nil, err
	}
	if stale {
		s, err := t.create(t.device)
		if err != nil {
			return nil, t.device.wrap("recreate "+t.kind, err)
		}
		t.strategy = s
		t.recreated()
	}
	return t.strategy, nil
}

func (t *Texture) release() {
	if t.strategy != nil && t.current() {
		t.strategy.Dispose()
	}
	t.strategy = nil
}

func (t *Texture) setRegion(region TextureRegion, data []byte) error {
	n, err := t.native()
	if err != nil {
		return err
	}
	if err := n.SetData(region, data); err != nil {
		return t.device.wrap("set texture data", err)
	}
	t.contentLost = false
	return nil
}

func (t *Texture) getRegion(region TextureRegion, data []byte) error {
	n, err := t.native()
	if err != nil {
		return err
	}
	if err := n.GetData(region, data); err != nil {
		return t.device.wrap("get texture data", err)
	}
	return nil
}

// CalculateMipLevels returns the length of the full mip chain for a
// texture of the given size. Pass 0 for unused dimensions.
func CalculateMipLevels(width, height, depth int) int {
	size := max(width, height, depth)
	levels := 1
	for size > 1 {
		size >>= 1
		levels++
	}
	return levels
}

// checkElementSize validates the size of the element type against the
// texel or block size of format.
func checkElementSize(elem int, format SurfaceFormat) error {
	fSize := format.Size()
	if elem == 0 || elem > fSize || fSize%elem != 0 {
		return argError("T", "type T is of an invalid size (%d bytes) for the %s format (%d bytes)", elem, format, fSize)
	}
	return nil
}

// checkTextureData applies the data checks shared by every texture kind,
// in order: nil data, element size, index window.
func checkTextureData(dataLen int, isNil bool, elem int, format SurfaceFormat, startIndex, elementCount int) error {
	if isNil {
		return argError("data", "must not be nil")
	}
	if err := checkElementSize(elem, format); err != nil {
		return err
	}
	if startIndex < 0 || startIndex >= dataLen {
		return argError("startIndex", "must be at least zero and smaller than data length %d, got %d", dataLen, startIndex)
	}
	if dataLen < startIndex+elementCount {
		return argError("data", "the data array is too small: %d elements from index %d need length %d, got %d",
			elementCount, startIndex, startIndex+elementCount, dataLen)
	}
	return nil
}

// checkByteSize compares the element span with the bytes the region needs.
func checkByteSize(elementCount, elem, want int) error {
	if elementCount*elem != want {
		return argError("elementCount", "elementCount * sizeof(T) is %d, but the data size is %d", elementCount*elem, want)
	}
	return nil
}

// blockRegion rounds rect to whole blocks of format and returns the region
// and its byte size. levelW and levelH are the mip level dimensions.
func blockRegion(format SurfaceFormat, rect Rectangle, levelW, levelH int) (Rectangle, int) {
	if !format.IsCompressed() {
		return rect, rect.Width * rect.Height * format.Size()
	}
	bw, bh := format.BlockSize()
	rw := (rect.Width + bw - 1) &^ (bw - 1)
	rh := (rect.Height + bh - 1) &^ (bh - 1)
	size := format.byteCount(rw, rh)
	out := Rectangle{X: rect.X &^ (bw - 1), Y: rect.Y &^ (bh - 1), Width: rw, Height: rh}
	// The last mip levels are smaller than one block. The region keeps the
	// level size while the data still covers a full block.
	if rect.Width < bw && levelW < bw {
		out.Width = levelW
	}
	if rect.Height < bh && levelH < bh {
		out.Height = levelH
	}
	return out, size
}
