package gfx

// TextureCube is a cube map of six square faces.
type TextureCube struct {
	Texture
}

func (t *TextureCube) texture() *Texture {
	if t == nil {
		return nil
	}
	return &t.Texture
}

// NewTextureCube creates a cube map with faces of size x size texels.
func NewTextureCube(dev *GraphicsDevice, size int, mipmap bool, format SurfaceFormat) (*TextureCube, error) {
	if dev == nil {
		return nil, argError("graphicsDevice", "must not be nil")
	}
	if err := dev.checkUsable(); err != nil {
		return nil, err
	}
	profile := dev.profile
	if limit := profile.MaxTextureCubeSize(); size > limit {
		return nil, notSupported("size", "%s profile supports a maximum TextureCube size of %d", profile, limit)
	}
	if profile == Reach && !isPowerOfTwo(size) {
		return nil, notSupported("size", "Reach profile requires TextureCube sizes to be powers of two")
	}
	if !format.Valid() {
		return nil, argError("format", "unknown surface format %d", int(format))
	}
	if !profile.SupportsFormat(format) {
		return nil, notSupported("format", "%s profile does not support TextureCube format %s", profile, format)
	}
	if size <= 0 {
		return nil, argError("size", "cube size must be greater than zero")
	}
	if !format.supportedBy(&dev.caps) {
		return nil, notSupported("format", "this graphics device does not support the %s format", format)
	}
	levels := 1
	if mipmap {
		levels = CalculateMipLevels(size, size, 0)
	}
	t := &TextureCube{}
	desc := TextureDesc{
		Kind:       TextureKindCube,
		Width:      size,
		Height:     size,
		Depth:      1,
		ArraySize:  6,
		LevelCount: levels,
		Format:     format,
	}
	if err := t.init(dev, desc, "TextureCube", t); err != nil {
		return nil, err
	}
	return t, nil
}

// Size returns the edge length of a face at level 0.
func (t *TextureCube) Size() int { return t.desc.Width }

func (t *TextureCube) region(face CubeMapFace, level int, rect *Rectangle, dataLen int, isNil bool,
	elem, startIndex, elementCount int) (TextureRegion, error) {
	if face < CubeMapFacePositiveX || face > CubeMapFaceNegativeZ {
		return TextureRegion{}, argError("face", "unknown cube map face %d", int(face))
	}
	if level < 0 || level >= t.desc.LevelCount {
		return TextureRegion{}, argError("level", "must be smaller than the number of levels in this texture (%d), got %d",
			t.desc.LevelCount, level)
	}
	lw, lh, _ := t.levelSize(level)
	bounds := Rectangle{Width: lw, Height: lh}
	r := bounds
	if rect != nil {
		r = *rect
	}
	if !bounds.Contains(r) || r.Width <= 0 || r.Height <= 0 {
		return TextureRegion{}, argError("rect", "rectangle %v must be inside the face bounds %dx%d at level %d",
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
		Slice:  int(face),
		X:      r.X,
		Y:      r.Y,
		Width:  r.Width,
		Height: r.Height,
		Depth:  1,
	}, nil
}

// SetTextureCubeData replaces level 0 of face with data.
func SetTextureCubeData[T any](t *TextureCube, face CubeMapFace, data []T) error {
	return SetTextureCubeDataRegion(t, face, 0, nil, data, 0, len(data))
}

// SetTextureCubeDataRegion writes elementCount elements into rect of one
// face and level.
func SetTextureCubeDataRegion[T any](t *TextureCube, face CubeMapFace, level int, rect *Rectangle, data []T,
	startIndex, elementCount int) error {
	if t.IsDisposed() {
		return invalidDisposed("TextureCube")
	}
	region, err := t.region(face, level, rect, len(data), data == nil, sizeOf[T](), startIndex, elementCount)
	if err != nil {
		return err
	}
	return t.setRegion(region, asBytes(data[startIndex:startIndex+elementCount]))
}

// GetTextureCubeData reads level 0 of face into data.
func GetTextureCubeData[T any](t *TextureCube, face CubeMapFace, data []T) error {
	return GetTextureCubeDataRegion(t, face, 0, nil, data, 0, len(data))
}

// GetTextureCubeDataRegion reads rect of one face and level into data.
func GetTextureCubeDataRegion[T any](t *TextureCube, face CubeMapFace, level int, rect *Rectangle, data []T,
	startIndex, elementCount int) error {
	if t.IsDisposed() {
		return invalidDisposed("TextureCube")
	}
	region, err := t.region(face, level, rect, len(data), data == nil, sizeOf[T](), startIndex, elementCount)
	if err != nil {
		return err
	}
	return t.getRegion(region, asBytes(data[startIndex:startIndex+elementCount]))
}
