package gfx

import (
	"errors"
	"testing"
)

// wantArg checks the class and reported parameter of an argument error.
func wantArg(t *testing.T, err, class error, param string) {
	t.Helper()
	var ae *ArgumentError
	if !errors.As(err, &ae) {
		t.Fatalf("error = %v, want *ArgumentError", err)
	}
	if !errors.Is(err, class) || ae.Param != param {
		t.Fatalf("error = %v (param %q), want %v for %q", err, ae.Param, class, param)
	}
}

func TestNewTexture2DValidation(t *testing.T) {
	noExtras := fakeCaps()
	noExtras.SupportsTextureArrays = false
	noExtras.SupportsFloatTextures = false
	noExtras.SupportsNonPowerOfTwo = false
	hidef, _ := newTestDeviceCaps(t, HiDef, noExtras)

	tests := []struct {
		name   string
		w, h   int
		mipmap bool
		format SurfaceFormat
		array  int
		class  error
		param  string
	}{
		{"width over limit", 4097, 4, false, SurfaceFormatColor, 1, ErrNotSupported, "width"},
		{"height over limit", 4, 4097, false, SurfaceFormatColor, 1, ErrNotSupported, "height"},
		{"size before format", 5000, 4, false, SurfaceFormat(-1), 1, ErrNotSupported, "width"},
		{"unknown format", 4, 4, false, SurfaceFormat(200), 1, ErrInvalidArgument, "format"},
		{"zero width", 0, 4, false, SurfaceFormatColor, 1, ErrInvalidArgument, "width"},
		{"negative height", 4, -1, false, SurfaceFormatColor, 1, ErrInvalidArgument, "height"},
		{"array without support", 4, 4, false, SurfaceFormatColor, 2, ErrNotSupported, "arraySize"},
		{"zero array size", 4, 4, false, SurfaceFormatColor, 0, ErrInvalidArgument, "arraySize"},
		{"float without support", 4, 4, false, SurfaceFormatVector4, 1, ErrNotSupported, "format"},
		{"npot mipmap", 100, 60, true, SurfaceFormatColor, 1, ErrNotSupported, "mipmap"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewTexture2DArray(hidef, tt.w, tt.h, tt.mipmap, tt.format, tt.array)
			wantArg(t, err, tt.class, tt.param)
		})
	}

	_, err := NewTexture2D(hidef, 4097, 4, false, SurfaceFormatColor)
	if want := "gfx: width: HiDef profile supports a maximum Texture2D size of 4096"; err.Error() != want {
		t.Errorf("message = %q, want %q", err.Error(), want)
	}
	_, err = NewTexture2D(nil, 4, 4, false, SurfaceFormatColor)
	wantArg(t, err, ErrInvalidArgument, "graphicsDevice")
	if tex, err := NewTexture2D(hidef, 100, 60, false, SurfaceFormatColor); err != nil || tex.LevelCount() != 1 {
		t.Errorf("npot without mipmap: %v", err)
	}
}

func TestNewTexture2DReach(t *testing.T) {
	reach, _ := newTestDeviceCaps(t, Reach, fakeCaps())
	tests := []struct {
		name   string
		w, h   int
		mipmap bool
		format SurfaceFormat
		param  string
	}{
		{"over 2048", 2049, 2, false, SurfaceFormatColor, "width"},
		{"npot mipmap", 100, 64, true, SurfaceFormatColor, "mipmap"},
		{"npot compressed", 100, 64, false, SurfaceFormatDxt1, "format"},
		{"hidef format", 4, 4, false, SurfaceFormatSingle, "format"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewTexture2D(reach, tt.w, tt.h, tt.mipmap, tt.format)
			wantArg(t, err, ErrNotSupported, tt.param)
		})
	}
	if reach.Capabilities().SupportsTextureArrays {
		t.Error("Reach should not report texture arrays")
	}
	if _, err := NewTexture2D(reach, 100, 60, false, SurfaceFormatColor); err != nil {
		t.Errorf("Reach npot without mipmap: %v", err)
	}
}

func TestCalculateMipLevels(t *testing.T) {
	tests := []struct{ w, h, d, want int }{
		{1, 1, 0, 1},
		{256, 64, 0, 9},
		{100, 60, 0, 7},
		{4, 4, 16, 5},
	}
	for _, tt := range tests {
		if got := CalculateMipLevels(tt.w, tt.h, tt.d); got != tt.want {
			t.Errorf("CalculateMipLevels(%d, %d, %d) = %d, want %d", tt.w, tt.h, tt.d, got, tt.want)
		}
	}
}

func TestTexture2DDataRoundTrip(t *testing.T) {
	dev, fd := newTestDevice(t)
	tex, err := NewTexture2D(dev, 4, 4, true, SurfaceFormatColor)
	if err != nil {
		t.Fatal(err)
	}
	if tex.LevelCount() != 3 || tex.Bounds() != (Rectangle{Width: 4, Height: 4}) {
		t.Fatalf("levels %d bounds %v", tex.LevelCount(), tex.Bounds())
	}

	patch := []Color{Red, Lime, Blue, White}
	rect := &Rectangle{X: 1, Y: 2, Width: 2, Height: 2}
	if err := SetTextureDataRegion(tex, 0, 0, rect, patch, 0, 4); err != nil {
		t.Fatalf("SetTextureDataRegion() error = %v", err)
	}
	all := make([]Color, 16)
	if err := GetTextureData(tex, all); err != nil {
		t.Fatal(err)
	}
	want := map[int]Color{9: Red, 10: Lime, 13: Blue, 14: White}
	for i, c := range all {
		if c != want[i] {
			t.Errorf("texel %d = %v, want %v", i, c, want[i])
		}
	}

	// Byte-sized elements address the same storage.
	raw := make([]byte, 2*2*4)
	if err := GetTextureDataRegion(tex, 0, 0, rect, raw, 0, len(raw)); err != nil {
		t.Fatal(err)
	}
	if raw[0] != 255 || raw[5] != 255 || raw[10] != 255 {
		t.Errorf("raw bytes = %v", raw)
	}

	level2 := []Color{CornflowerBlue}
	if err := SetTextureDataRegion(tex, 2, 0, nil, level2, 0, 1); err != nil {
		t.Fatalf("level 2: %v", err)
	}
	last := fd.textures[0].sets[len(fd.textures[0].sets)-1]
	if last.Level != 2 || last.Width != 1 || last.Height != 1 {
		t.Errorf("native region = %+v", last)
	}

	// startIndex and elementCount select a window of the slice.
	padded := []Color{Black, Red, Lime, Blue, White, Black}
	if err := SetTextureDataRegion(tex, 0, 0, rect, padded, 1, 4); err != nil {
		t.Fatal(err)
	}
	got := make([]Color, 4)
	_ = GetTextureDataRegion(tex, 0, 0, rect, got, 0, 4)
	if got[0] != Red || got[3] != White {
		t.Errorf("window round trip = %v", got)
	}
}

func TestTexture2DDataValidation(t *testing.T) {
	dev, _ := newTestDevice(t)
	tex, _ := NewTexture2D(dev, 4, 4, false, SurfaceFormatColor)
	full := make([]Color, 16)

	tests := []struct {
		name  string
		err   error
		class error
		param string
	}{
		{"level", SetTextureDataRegion(tex, 1, 0, nil, full, 0, 16), ErrInvalidArgument, "level"},
		{"array slice", SetTextureDataRegion(tex, 0, 1, nil, full, 0, 16), ErrInvalidArgument, "arraySlice"},
		{"rect outside", SetTextureDataRegion(tex, 0, 0, &Rectangle{X: 3, Width: 2, Height: 1}, full, 0, 2),
			ErrInvalidArgument, "rect"},
		{"empty rect", SetTextureDataRegion(tex, 0, 0, &Rectangle{Width: 0, Height: 1}, full, 0, 0),
			ErrInvalidArgument, "rect"},
		{"nil data", SetTextureData[Color](tex, nil), ErrInvalidArgument, "data"},
		{"element size", SetTextureData(tex, make([]uint64, 8)), ErrInvalidArgument, "T"},
		{"odd element size", SetTextureData(tex, make([][3]byte, 16)), ErrInvalidArgument, "T"},
		{"start index", SetTextureDataRegion(tex, 0, 0, nil, full, 16, 0), ErrInvalidArgument, "startIndex"},
		{"data too small", SetTextureDataRegion(tex, 0, 0, nil, full, 4, 16), ErrInvalidArgument, "data"},
		{"byte size", SetTextureDataRegion(tex, 0, 0, nil, full, 0, 15), ErrInvalidArgument, "elementCount"},
		{"level before data", SetTextureDataRegion[Color](tex, 5, 0, nil, nil, 0, 0), ErrInvalidArgument, "level"},
		{"get byte size", GetTextureData(tex, make([]Color, 17)), ErrInvalidArgument, "elementCount"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wantArg(t, tt.err, tt.class, tt.param)
		})
	}

	var none *Texture2D
	wantArg(t, SetTextureData(none, full), ErrInvalidArgument, "texture")
	tex.Dispose()
	errIs(t, GetTextureData(tex, full), ErrDisposed)
}

func TestTexture2DArraySlices(t *testing.T) {
	dev, fd := newTestDevice(t)
	tex, err := NewTexture2DArray(dev, 2, 2, false, SurfaceFormatColor, 3)
	if err != nil {
		t.Fatal(err)
	}
	if tex.ArraySize() != 3 || fd.textures[0].desc.ArraySize != 3 {
		t.Fatalf("ArraySize() = %d", tex.ArraySize())
	}
	reds := []Color{Red, Red, Red, Red}
	if err := SetTextureDataRegion(tex, 0, 2, nil, reds, 0, 4); err != nil {
		t.Fatal(err)
	}
	got := make([]Color, 4)
	_ = GetTextureDataRegion(tex, 0, 1, nil, got, 0, 4)
	if got[0] != Transparent {
		t.Errorf("slice 1 = %v, want untouched", got)
	}
	_ = GetTextureDataRegion(tex, 0, 2, nil, got, 0, 4)
	if got[3] != Red {
		t.Errorf("slice 2 = %v, want red", got)
	}
	wantArg(t, SetTextureDataRegion(tex, 0, 3, nil, reds, 0, 4), ErrInvalidArgument, "arraySlice")
}

func TestCompressedTexture2D(t *testing.T) {
	dev, fd := newTestDevice(t)
	tex, err := NewTexture2D(dev, 8, 8, true, SurfaceFormatDxt1)
	if err != nil {
		t.Fatal(err)
	}
	if tex.LevelCount() != 4 {
		t.Fatalf("LevelCount() = %d, want 4", tex.LevelCount())
	}
	// Four 4x4 blocks of 8 bytes.
	level0 := make([]byte, 32)
	for i := range level0 {
		level0[i] = byte(i)
	}
	if err := SetTextureData(tex, level0); err != nil {
		t.Fatalf("level 0: %v", err)
	}
	wantArg(t, SetTextureData(tex, make([]byte, 16)), ErrInvalidArgument, "elementCount")

	// The 1x1 level still takes a whole block.
	if err := SetTextureDataRegion(tex, 3, 0, nil, make([]byte, 8), 0, 8); err != nil {
		t.Fatalf("level 3: %v", err)
	}
	r := fd.textures[0].sets[1]
	if r.Level != 3 || r.Width != 1 || r.Height != 1 {
		t.Errorf("level 3 region = %+v, want 1x1", r)
	}

	// Sub-rectangles snap to block boundaries.
	if err := SetTextureDataRegion(tex, 0, 0, &Rectangle{X: 5, Y: 1, Width: 2, Height: 2}, make([]byte, 8), 0, 8); err != nil {
		t.Fatalf("sub-rect: %v", err)
	}
	if r := fd.textures[0].sets[2]; r.X != 4 || r.Y != 0 || r.Width != 4 || r.Height != 4 {
		t.Errorf("snapped region = %+v", r)
	}

	back := make([]byte, 32)
	if err := GetTextureData(tex, back); err != nil {
		t.Fatal(err)
	}
	if back[31] != 31 {
		t.Errorf("compressed round trip lost data: %v", back)
	}
	wantArg(t, SetTextureData(tex, make([]uint64, 3)), ErrInvalidArgument, "elementCount")
}

func TestTexture3D(t *testing.T) {
	reach, _ := newTestDeviceCaps(t, Reach, fakeCaps())
	_, err := NewTexture3D(reach, 4, 4, 4, false, SurfaceFormatColor)
	errIs(t, err, ErrNotSupported)

	dev, _ := newTestDevice(t)
	_, err = NewTexture3D(dev, 257, 4, 4, false, SurfaceFormatColor)
	wantArg(t, err, ErrNotSupported, "width")
	_, err = NewTexture3D(dev, 4, 4, 0, false, SurfaceFormatColor)
	wantArg(t, err, ErrInvalidArgument, "depth")
	_, err = NewTexture3D(dev, 4, 4, 4, false, SurfaceFormatDxt5)
	wantArg(t, err, ErrNotSupported, "format")

	vol, err := NewTexture3D(dev, 4, 2, 8, true, SurfaceFormatAlpha8)
	if err != nil {
		t.Fatal(err)
	}
	if vol.LevelCount() != 4 || vol.Depth() != 8 {
		t.Fatalf("levels %d depth %d", vol.LevelCount(), vol.Depth())
	}
	box := &Box{Left: 1, Top: 0, Front: 6, Right: 3, Bottom: 2, Back: 8}
	data := []uint8{1, 2, 3, 4, 5, 6, 7, 8}
	if err := SetTexture3DDataRegion(vol, 0, box, data, 0, 8); err != nil {
		t.Fatalf("SetTexture3DDataRegion() error = %v", err)
	}
	all := make([]uint8, 4*2*8)
	if err := GetTexture3DData(vol, all); err != nil {
		t.Fatal(err)
	}
	// z=7, y=1, x=2 is the last element written.
	if got := all[(7*2+1)*4+2]; got != 8 {
		t.Errorf("texel (2,1,7) = %d, want 8", got)
	}
	if all[0] != 0 {
		t.Error("texel outside the box changed")
	}
	wantArg(t, SetTexture3DDataRegion(vol, 0, &Box{Right: 5, Bottom: 1, Back: 1}, data, 0, 5),
		ErrInvalidArgument, "box")
	wantArg(t, SetTexture3DDataRegion(vol, 0, &Box{Right: 2, Bottom: 1, Back: 1}, data, 0, 3),
		ErrInvalidArgument, "elementCount")
}

func TestTextureCube(t *testing.T) {
	reach, _ := newTestDeviceCaps(t, Reach, fakeCaps())
	_, err := NewTextureCube(reach, 1024, false, SurfaceFormatColor)
	wantArg(t, err, ErrNotSupported, "size")
	_, err = NewTextureCube(reach, 48, false, SurfaceFormatColor)
	wantArg(t, err, ErrNotSupported, "size")

	dev, fd := newTestDevice(t)
	cube, err := NewTextureCube(dev, 8, true, SurfaceFormatColor)
	if err != nil {
		t.Fatal(err)
	}
	if cube.Size() != 8 || cube.LevelCount() != 4 || fd.textures[0].desc.ArraySize != 6 {
		t.Fatalf("cube desc = %+v", fd.textures[0].desc)
	}
	face := make([]Color, 64)
	for i := range face {
		face[i] = Red
	}
	if err := SetTextureCubeData(cube, CubeMapFaceNegativeY, face); err != nil {
		t.Fatal(err)
	}
	got := make([]Color, 64)
	_ = GetTextureCubeData(cube, CubeMapFacePositiveY, got)
	if got[0] != Transparent {
		t.Error("writing one face changed another")
	}
	_ = GetTextureCubeData(cube, CubeMapFaceNegativeY, got)
	if got[63] != Red {
		t.Error("face round trip failed")
	}
	wantArg(t, SetTextureCubeData(cube, CubeMapFace(6), face), ErrInvalidArgument, "face")
	wantArg(t, SetTextureCubeDataRegion(cube, CubeMapFacePositiveX, 1, nil, face, 0, 64),
		ErrInvalidArgument, "elementCount")
	if err := SetTextureCubeDataRegion(cube, CubeMapFacePositiveX, 1, nil, face, 0, 16); err != nil {
		t.Errorf("level 1: %v", err)
	}
}

func TestRenderTargetValidation(t *testing.T) {
	dev, fd := newTestDevice(t)
	_, err := NewRenderTarget2D(dev, 8, 8, false, SurfaceFormatDxt1, DepthFormatNone, 0, RenderTargetUsageDiscardContents)
	wantArg(t, err, ErrNotSupported, "format")
	_, err = NewRenderTarget2D(dev, 8, 8, false, SurfaceFormatColor, DepthFormat(9), 0, RenderTargetUsageDiscardContents)
	wantArg(t, err, ErrInvalidArgument, "depthFormat")
	_, err = NewBackBufferRenderTarget2D(dev, 0, false, SurfaceFormatColor, DepthFormatNone, 0,
		RenderTargetUsageDiscardContents)
	wantArg(t, err, ErrInvalidArgument, "scale")

	rt, err := NewRenderTarget2D(dev, 8, 8, false, SurfaceFormatColor, DepthFormatDepth24Stencil8, 3,
		RenderTargetUsagePreserveContents)
	if err != nil {
		t.Fatal(err)
	}
	if rt.MultiSampleCount() != 2 || rt.Scale() != 0 || rt.RenderTargetUsage() != RenderTargetUsagePreserveContents {
		t.Errorf("target = msaa %d scale %g usage %v", rt.MultiSampleCount(), rt.Scale(), rt.RenderTargetUsage())
	}
	native := fd.textures[len(fd.textures)-1]
	if native.rt == nil || native.rt.DepthFormat != DepthFormatDepth24Stencil8 || native.rt.MultiSampleCount != 2 {
		t.Errorf("native desc = %+v", native.rt)
	}
}

func TestRenderTargetGetDataResolves(t *testing.T) {
	dev, fd, ctx := drawSetup(t)
	rt, _ := NewRenderTarget2D(dev, 4, 4, false, SurfaceFormatColor, DepthFormatNone, 4,
		RenderTargetUsageDiscardContents)
	native := fd.textures[len(fd.textures)-1]
	_ = ctx.SetRenderTarget(rt)
	drawOnce(t, ctx)
	_ = ctx.SetRenderTarget(nil)
	flushes := fd.ctx.flushes

	data := make([]Color, 16)
	if err := GetTextureData(rt, data); err != nil {
		t.Fatalf("GetTextureData(rt) error = %v", err)
	}
	if native.resolves != 1 || fd.ctx.flushes != flushes+1 {
		t.Errorf("resolves %d flushes %d, want 1 and %d", native.resolves, fd.ctx.flushes, flushes+1)
	}
	// Already resolved: the next draw has nothing left to resolve.
	drawOnce(t, ctx)
	if native.resolves != 1 {
		t.Errorf("resolves = %d after the next draw, want 1", native.resolves)
	}
}

func TestRenderTargetContentLostClearsOnDraw(t *testing.T) {
	dev, fd, ctx := drawSetup(t)
	rt, _ := NewRenderTarget2D(dev, 4, 4, false, SurfaceFormatColor, DepthFormatNone, 0,
		RenderTargetUsageDiscardContents)
	fd.lose()
	if err := dev.Recover(); err != nil {
		t.Fatal(err)
	}
	// Recreated lazily on the first bind.
	_ = ctx.SetRenderTarget(rt)
	if err := ctx.Clear(ClearTarget, Vector4{}, 1, 0); err != nil {
		t.Fatal(err)
	}
	if rt.ContentLost() {
		t.Error("a target bound for drawing holds fresh contents")
	}
	_ = ctx.SetRenderTarget(nil)

	fd.lose()
	_ = dev.Recover()
	data := make([]Color, 16)
	if err := GetTextureData(rt, data); err != nil {
		t.Fatal(err)
	}
	if !rt.ContentLost() {
		t.Error("a target recreated for reading should report lost contents")
	}
}
