// Package codec decodes and encodes the image streams behind texture
// loading and saving.
//
// Decoding sniffs the stream before handing it to a decoder, so failures
// name the detected kind even when no decoder is registered for it.
package codec

import (
	"bufio"
	"errors"
	"fmt"
	"image"
	"image/draw"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"

	"github.com/h2non/filetype"
	"golang.org/x/image/bmp"
	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/tiff"
	"golang.org/x/image/webp"
)

// Codec errors.
var (
	// ErrUnsupportedFormat is returned when the stream is not an image
	// format any decoder understands.
	ErrUnsupportedFormat = errors.New("codec: unsupported format")

	// ErrEmptyData is returned when the stream has no bytes.
	ErrEmptyData = errors.New("codec: empty data")
)

// Format identifies an encoded image format.
type Format int

const (
	FormatUnknown Format = iota
	FormatPNG
	FormatJPEG
	FormatGIF
	FormatBMP
	FormatTIFF
	FormatWebP
)

func (f Format) String() string {
	switch f {
	case FormatPNG:
		return "png"
	case FormatJPEG:
		return "jpeg"
	case FormatGIF:
		return "gif"
	case FormatBMP:
		return "bmp"
	case FormatTIFF:
		return "tiff"
	case FormatWebP:
		return "webp"
	default:
		return "unknown"
	}
}

// sniffLen is the header length filetype needs for every image matcher.
const sniffLen = 262

// DecodeError reports a stream that could not be decoded.
type DecodeError struct {
	// Kind is the detected type, e.g. "png" or "application/pdf".
	Kind string
	Err  error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("codec: decode %s: %v", e.Kind, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// Sniff detects the format from the first bytes of a stream. The MIME type
// is returned for streams that are not a supported image.
func Sniff(head []byte) (Format, string) {
	kind, err := filetype.Match(head)
	if err != nil || kind == filetype.Unknown {
		return FormatUnknown, "unknown"
	}
	switch kind.Extension {
	case "png":
		return FormatPNG, "png"
	case "jpg":
		return FormatJPEG, "jpeg"
	case "gif":
		return FormatGIF, "gif"
	case "bmp":
		return FormatBMP, "bmp"
	case "tif":
		return FormatTIFF, "tiff"
	case "webp":
		return FormatWebP, "webp"
	}
	return FormatUnknown, kind.MIME.Value
}

// Decode reads one image from r and converts it to non-premultiplied RGBA.
func Decode(r io.Reader) (*image.NRGBA, Format, error) {
	br := bufio.NewReaderSize(r, sniffLen*2)
	head, err := br.Peek(sniffLen)
	if len(head) == 0 {
		if err == nil || errors.Is(err, io.EOF) {
			return nil, FormatUnknown, ErrEmptyData
		}
		return nil, FormatUnknown, fmt.Errorf("codec: read: %w", err)
	}
	format, kind := Sniff(head)
	var img image.Image
	switch format {
	case FormatPNG:
		img, err = png.Decode(br)
	case FormatJPEG:
		img, err = jpeg.Decode(br)
	case FormatGIF:
		img, err = gif.Decode(br)
	case FormatBMP:
		img, err = bmp.Decode(br)
	case FormatTIFF:
		img, err = tiff.Decode(br)
	case FormatWebP:
		img, err = webp.Decode(br)
	default:
		return nil, FormatUnknown, &DecodeError{Kind: kind, Err: ErrUnsupportedFormat}
	}
	if err != nil {
		return nil, format, &DecodeError{Kind: kind, Err: err}
	}
	return ToNRGBA(img), format, nil
}

// ToNRGBA converts img to a tightly packed NRGBA image with origin (0, 0).
func ToNRGBA(img image.Image) *image.NRGBA {
	b := img.Bounds()
	if n, ok := img.(*image.NRGBA); ok && b.Min == (image.Point{}) && n.Stride == 4*b.Dx() {
		return n
	}
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)
	return dst
}

// Scale resizes img to width x height with bilinear filtering. The image is
// returned unchanged when it already has that size.
func Scale(img *image.NRGBA, width, height int) *image.NRGBA {
	if img.Bounds().Dx() == width && img.Bounds().Dy() == height {
		return img
	}
	dst := image.NewNRGBA(image.Rect(0, 0, width, height))
	xdraw.BiLinear.Scale(dst, dst.Bounds(), img, img.Bounds(), xdraw.Src, nil)
	return dst
}

// EncodePNG writes img as PNG.
func EncodePNG(w io.Writer, img image.Image) error {
	if err := png.Encode(w, img); err != nil {
		return fmt.Errorf("codec: encode PNG: %w", err)
	}
	return nil
}

// EncodeJPEG writes img as JPEG with the given quality (1-100).
func EncodeJPEG(w io.Writer, img image.Image, quality int) error {
	quality = min(max(quality, 1), 100)
	if err := jpeg.Encode(w, img, &jpeg.Options{Quality: quality}); err != nil {
		return fmt.Errorf("codec: encode JPEG: %w", err)
	}
	return nil
}
