package gfx

// Texture2D is a 2D texture, optionally an array of equally sized slices.
type Texture2D struct {
	Texture
	// target is set when the texture is the colour half of a render target.
	target *RenderTarget2D
}

// Texture2DResource is implemented by *Texture2D and *RenderTarget2D, the
// types accepted by the 2D data functions.
type Texture2DResource interface {
	TextureResource
	texture2D() *Texture2D
}

func (t *Texture2D) texture() *Texture {
	if t == nil {
		return nil
	}
	return &t.Texture
}

func (t *Texture2D) texture2D() *Texture2D { return t }

// NewTexture2D creates a 2D texture. With mipmap set the full mip chain is
// allocated.
func NewTexture2D(dev *GraphicsDevice, width, height int, mipmap bool, format SurfaceFormat) (*Texture2D, error) {
	return NewTexture2DArray(dev, width, height, mipmap, format, 1)
}

// NewTexture2DArray creates an array of arraySize 2D slices. Arrays larger
// than one slice need SupportsTextureArrays.
func NewTexture2DArray(dev *GraphicsDevice, width, height int, mipmap bool, format SurfaceFormat, arraySize int) (*Texture2D, error) {
	desc, err := texture2DDesc(dev, width, height, mipmap, format, arraySize)
	if err != nil {
		return nil, err
	}
	t := &Texture2D{}
	if err := t.init(dev, desc, "Texture2D", t); err != nil {
		return nil, err
	}
	return t, nil
}

// texture2DDesc validates creation arguments in a fixed order: device,
// profile size limit, Reach power-of-two rules, Reach formats, positive
// size, texture arrays, device format support.
func texture2DDesc(dev *GraphicsDevice, width, height int, mipmap bool, format SurfaceFormat, arraySize int) (TextureDesc, error) {
	if dev == nil {
		return TextureDesc{}, argError("graphicsDevice", "must not be nil")
	}
	if err := dev.checkUsable(); err != nil {
		return TextureDesc{}, err
	}
	profile := dev.profile
	if limit := profile.MaxTextureSize(); width > limit || height > limit {
		param := "width"
		if width <= limit {
			param = "height"
		}
		return TextureDesc{}, notSupported(param, "%s profile supports a maximum Texture2D size of %d", profile, limit)
	}
	if !format.Valid() {
		return TextureDesc{}, argError("format", "unknown surface format %d", int(format))
	}
	pow2 := isPowerOfTwo(width) && isPowerOfTwo(height)
	if profile == Reach && mipmap && !pow2 {
		return TextureDesc{}, notSupported("mipmap", "Reach profile requires mipmapped Texture2D sizes to be powers of two")
	}
	if profile == Reach && format.IsCompressed() && !pow2 {
		return TextureDesc{}, notSupported("format", "Reach profile requires compressed Texture2D sizes to be powers of two")
	}
	if !profile.SupportsFormat(format) {
		return TextureDesc{}, notSupported("format", "%s profile does not support Texture2D format %s", profile, format)
	}
	if width <= 0 {
		return TextureDesc{}, argError("width", "texture width must be greater than zero")
	}
	if height <= 0 {
		return TextureDesc{}, argError("height", "texture height must be greater than zero")
	}
	if arraySize > 1 && !dev.caps.SupportsTextureArrays {
		return TextureDesc{}, notSupported("arraySize", "texture arrays are not supported on this graphics device")
	}
	if arraySize < 1 {
		return TextureDesc{}, argError("arraySize", "must be at least 1, got %d", arraySize)
	}
	if !format.supportedBy(&dev.caps) {
		return TextureDesc{}, notSupported("format", "this graphics device does not support the %s format", format)
	}
	if mipmap && !pow2 && !dev.caps.SupportsNonPowerOfTwo {
		return TextureDesc{}, notSupported("mipmap", "this graphics device requires mipmapped textures to be powers of two")
	}
	levels := 1
	if mipmap {
		levels = CalculateMipLevels(width, height, 0)
	}
	return TextureDesc{
		Kind:       TextureKind2D,
		Width:      width,
		Height:     height,
		Depth:      1,
		ArraySize:  arraySize,
		LevelCount: levels,
		Format:     format,
	}, nil
}

// Width returns the width of level 0 in texels.
func (t *Texture2D) Width() int { return t.desc.Width }

// Height returns the height of level 0 in texels.
func (t *Texture2D) Height() int { return t.desc.Height }

// ArraySize returns the number of slices, 1 for a plain texture.
func (t *Texture2D) ArraySize() int { return t.desc.ArraySize }

// Bounds returns the texture rectangle at level 0.
func (t *Texture2D) Bounds() Rectangle {
	return Rectangle{Width: t.desc.Width, Height: t.desc.Height}
}

// region validates a data access and returns the native region and the
// number of bytes it covers. Checks run in a fixed order so the reported
// parameter is deterministic: level, array slice, rectangle, data, element
// size, start index, data length, byte size.
func (t *Texture2D) region(level, arraySlice int, rect *Rectangle, dataLen int, isNil bool,
	elem, startIndex, elementCount int) (TextureRegion, error) {
	if level < 0 || level >= t.desc.LevelCount {
		return TextureRegion{}, argError("level", "must be smaller than the number of levels in this texture (%d), got %d",
			t.desc.LevelCount, level)
	}
	if arraySlice > 0 && !t.device.caps.SupportsTextureArrays {
		return TextureRegion{}, notSupported("arraySlice", "texture arrays are not supported on this graphics device")
	}
	if arraySlice < 0 || arraySlice >= t.desc.ArraySize {
		return TextureRegion{}, argError("arraySlice", "must be smaller than the array size of this texture (%d) and not negative, got %d",
			t.desc.ArraySize, arraySlice)
	}
	lw, lh, _ := t.levelSize(level)
	bounds := Rectangle{Width: lw, Height: lh}
	r := bounds
	if rect != nil {
		r = *rect
	}
	if !bounds.Contains(r) || r.Width <= 0 || r.Height <= 0 {
		return TextureRegion{}, argError("rect", "rectangle %v must be inside the texture bounds %dx%d at level %d",
			r, lw, lh, level)
	}
	if err := checkTextureData(dataLen, isNil, elem, t.desc.Format, startIndex, elementCount); err != nil {
		return TextureRegion{}, err
	}
	r, size := blockRegion(t.desc.Format, r, lw, lh)
	if err := checkByteSize(elementCount, elem, size); err != nil {
		return TextureRegion{}, err
	}
	return TextureRegion{
		Level:  level,
		Slice:  arraySlice,
		X:      r.X,
		Y:      r.Y,
		Width:  r.Width,
		Height: r.Height,
		Depth:  1,
	}, nil
}

// SetTextureData replaces level 0 of slice 0 with data.
func SetTextureData[T any](t Texture2DResource, data []T) error {
	return SetTextureDataRegion(t, 0, 0, nil, data, 0, len(data))
}

// SetTextureDataRegion writes elementCount elements of data, starting at
// startIndex, into rect of one level and array slice. A nil rect covers the
// whole level. Compressed formats round rect to whole blocks.
func SetTextureDataRegion[T any](t Texture2DResource, level, arraySlice int, rect *Rectangle, data []T,
	startIndex, elementCount int) error {
	tex := t.texture2D()
	if tex == nil {
		return argError("texture", "must not be nil")
	}
	if tex.IsDisposed() {
		return invalidDisposed("Texture2D")
	}
	region, err := tex.region(level, arraySlice, rect, len(data), data == nil, sizeOf[T](), startIndex, elementCount)
	if err != nil {
		return err
	}
	return tex.setRegion(region, asBytes(data[startIndex:startIndex+elementCount]))
}

// GetTextureData reads level 0 of slice 0 into data.
func GetTextureData[T any](t Texture2DResource, data []T) error {
	return GetTextureDataRegion(t, 0, 0, nil, data, 0, len(data))
}

// GetTextureDataRegion reads rect of one level and array slice into data.
func GetTextureDataRegion[T any](t Texture2DResource, level, arraySlice int, rect *Rectangle, data []T,
	startIndex, elementCount int) error {
	tex := t.texture2D()
	if tex == nil {
		return argError("texture", "must not be nil")
	}
	if tex.IsDisposed() {
		return invalidDisposed("Texture2D")
	}
	region, err := tex.region(level, arraySlice, rect, len(data), data == nil, sizeOf[T](), startIndex, elementCount)
	if err != nil {
		return err
	}
	if tex.target != nil {
		if err := tex.target.prepareRead(); err != nil {
			return err
		}
	}
	return tex.getRegion(region, asBytes(data[startIndex:startIndex+elementCount]))
}
