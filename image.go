package gfx

import (
	"errors"
	"image"
	"io"

	"github.com/gogpu/gfx/internal/codec"
)

// ImageFormatError reports an image stream that could not be decoded or a
// texture that could not be encoded. It matches both ErrImageFormat and
// ErrInvalidOperation.
type ImageFormatError struct {
	// Kind is the detected stream type, "unknown" when nothing matched.
	Kind string
	Err  error
}

func (e *ImageFormatError) Error() string {
	return "gfx: this image format is not supported (" + e.Kind + "): " + e.Err.Error()
}

func (e *ImageFormatError) Unwrap() []error {
	return []error{ErrImageFormat, ErrInvalidOperation, e.Err}
}

func imageError(err error) error {
	var de *codec.DecodeError
	if errors.As(err, &de) {
		return &ImageFormatError{Kind: de.Kind, Err: de.Err}
	}
	return &ImageFormatError{Kind: "unknown", Err: err}
}

// FromStream decodes a PNG, JPEG, GIF, BMP, TIFF or WebP image into a new
// Color texture without mipmaps. Colour values are not premultiplied.
func FromStream(dev *GraphicsDevice, r io.Reader) (*Texture2D, error) {
	if dev == nil {
		return nil, argError("graphicsDevice", "must not be nil")
	}
	if r == nil {
		return nil, argError("stream", "must not be nil")
	}
	img, _, err := codec.Decode(r)
	if err != nil {
		return nil, imageError(err)
	}
	b := img.Bounds()
	t, err := NewTexture2D(dev, b.Dx(), b.Dy(), false, SurfaceFormatColor)
	if err != nil {
		return nil, err
	}
	if err := SetTextureData(t, img.Pix); err != nil {
		t.Dispose()
		return nil, err
	}
	return t, nil
}

// Reload decodes r into the existing texture, typically after a device
// loss. The image must have the texture's size and the texture must use the
// Color format.
func (t *Texture2D) Reload(r io.Reader) error {
	if t.IsDisposed() {
		return invalidDisposed("Texture2D")
	}
	if t.Format() != SurfaceFormatColor {
		return invalidOp("Reload requires the Color format, texture is %s", t.Format())
	}
	img, _, err := codec.Decode(r)
	if err != nil {
		return imageError(err)
	}
	if b := img.Bounds(); b.Dx() != t.Width() || b.Dy() != t.Height() {
		return argError("stream", "image is %dx%d, texture is %dx%d", b.Dx(), b.Dy(), t.Width(), t.Height())
	}
	return SetTextureData(t, img.Pix)
}

// SaveAsPng encodes level 0 as PNG scaled to width x height.
func (t *Texture2D) SaveAsPng(w io.Writer, width, height int) error {
	img, err := t.scaledImage(width, height)
	if err != nil {
		return err
	}
	if err := codec.EncodePNG(w, img); err != nil {
		return imageError(err)
	}
	return nil
}

// SaveAsJpeg encodes level 0 as JPEG scaled to width x height.
func (t *Texture2D) SaveAsJpeg(w io.Writer, width, height int) error {
	img, err := t.scaledImage(width, height)
	if err != nil {
		return err
	}
	if err := codec.EncodeJPEG(w, img, 90); err != nil {
		return imageError(err)
	}
	return nil
}

func (t *Texture2D) scaledImage(width, height int) (*image.NRGBA, error) {
	if width <= 0 || height <= 0 {
		return nil, argError("width", "image size must be positive, got %dx%d", width, height)
	}
	colors, err := t.GetColorData()
	if err != nil {
		return nil, err
	}
	img := image.NewNRGBA(image.Rect(0, 0, t.Width(), t.Height()))
	for i, c := range colors {
		img.Pix[i*4+0] = c.R
		img.Pix[i*4+1] = c.G
		img.Pix[i*4+2] = c.B
		img.Pix[i*4+3] = c.A
	}
	return codec.Scale(img, width, height), nil
}
