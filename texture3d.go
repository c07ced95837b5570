package gfx

// Texture3D is a volume texture. Reach devices have none.
type Texture3D struct {
	Texture
}

func (t *Texture3D) texture() *Texture {
	if t == nil {
		return nil
	}
	return &t.Texture
}

// Box is a volume inside a mip level, with exclusive right, bottom and back.
type Box struct {
	Left, Top, Front    int
	Right, Bottom, Back int
}

// NewTexture3D creates a volume texture.
func NewTexture3D(dev *GraphicsDevice, width, height, depth int, mipmap bool, format SurfaceFormat) (*Texture3D, error) {
	if dev == nil {
		return nil, argError("graphicsDevice", "must not be nil")
	}
	if err := dev.checkUsable(); err != nil {
		return nil, err
	}
	profile := dev.profile
	if profile == Reach {
		return nil, notSupported("", "Reach profile does not support Texture3D")
	}
	if limit := profile.MaxVolumeExtent(); width > limit || height > limit || depth > limit {
		return nil, notSupported("width", "%s profile supports a maximum Texture3D size of %d", profile, limit)
	}
	if width <= 0 {
		return nil, argError("width", "texture width must be greater than zero")
	}
	if height <= 0 {
		return nil, argError("height", "texture height must be greater than zero")
	}
	if depth <= 0 {
		return nil, argError("depth", "texture depth must be greater than zero")
	}
	if !format.Valid() {
		return nil, argError("format", "unknown surface format %d", int(format))
	}
	if format.IsCompressed() {
		return nil, notSupported("format", "compressed formats are not supported for Texture3D")
	}
	if !format.supportedBy(&dev.caps) {
		return nil, notSupported("format", "this graphics device does not support the %s format", format)
	}
	levels := 1
	if mipmap {
		levels = CalculateMipLevels(width, height, depth)
	}
	t := &Texture3D{}
	desc := TextureDesc{
		Kind:       TextureKind3D,
		Width:      width,
		Height:     height,
		Depth:      depth,
		ArraySize:  1,
		LevelCount: levels,
		Format:     format,
	}
	if err := t.init(dev, desc, "Texture3D", t); err != nil {
		return nil, err
	}
	return t, nil
}

func (t *Texture3D) Width() int  { return t.desc.Width }
func (t *Texture3D) Height() int { return t.desc.Height }
func (t *Texture3D) Depth() int  { return t.desc.Depth }

func (t *Texture3D) region(level int, box *Box, dataLen int, isNil bool, elem, startIndex, elementCount int) (TextureRegion, error) {
	if level < 0 || level >= t.desc.LevelCount {
		return TextureRegion{}, argError("level", "must be smaller than the number of levels in this texture (%d), got %d",
			t.desc.LevelCount, level)
	}
	lw, lh, ld := t.levelSize(level)
	b := Box{Right: lw, Bottom: lh, Back: ld}
	if box != nil {
		b = *box
	}
	if b.Left < 0 || b.Top < 0 || b.Front < 0 || b.Right > lw || b.Bottom > lh || b.Back > ld ||
		b.Right <= b.Left || b.Bottom <= b.Top || b.Back <= b.Front {
		return TextureRegion{}, argError("box", "box %v must be inside the texture bounds %dx%dx%d at level %d",
			b, lw, lh, ld, level)
	}
	if err := checkTextureData(dataLen, isNil, elem, t.desc.Format, startIndex, elementCount); err != nil {
		return TextureRegion{}, err
	}
	w, h, d := b.Right-b.Left, b.Bottom-b.Top, b.Back-b.Front
	if err := checkByteSize(elementCount, elem, w*h*d*t.desc.Format.Size()); err != nil {
		return TextureRegion{}, err
	}
	return TextureRegion{Level: level, X: b.Left, Y: b.Top, Z: b.Front, Width: w, Height: h, Depth: d}, nil
}

// SetTexture3DData replaces level 0 with data.
func SetTexture3DData[T any](t *Texture3D, data []T) error {
	return SetTexture3DDataRegion(t, 0, nil, data, 0, len(data))
}

// SetTexture3DDataRegion writes elementCount elements into box of level.
// A nil box covers the whole level.
func SetTexture3DDataRegion[T any](t *Texture3D, level int, box *Box, data []T, startIndex, elementCount int) error {
	if t.IsDisposed() {
		return invalidDisposed("Texture3D")
	}
	region, err := t.region(level, box, len(data), data == nil, sizeOf[T](), startIndex, elementCount)
	if err != nil {
		return err
	}
	return t.setRegion(region, asBytes(data[startIndex:startIndex+elementCount]))
}

// GetTexture3DData reads level 0 into data.
func GetTexture3DData[T any](t *Texture3D, data []T) error {
	return GetTexture3DDataRegion(t, 0, nil, data, 0, len(data))
}

// GetTexture3DDataRegion reads box of level into data.
func GetTexture3DDataRegion[T any](t *Texture3D, level int, box *Box, data []T, startIndex, elementCount int) error {
	if t.IsDisposed() {
		return invalidDisposed("Texture3D")
	}
	region, err := t.region(level, box, len(data), data == nil, sizeOf[T](), startIndex, elementCount)
	if err != nil {
		return err
	}
	return t.getRegion(region, asBytes(data[startIndex:startIndex+elementCount]))
}
