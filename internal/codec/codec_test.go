package codec

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/gif"
	"testing"

	"golang.org/x/image/bmp"
)

func testImage() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, 4, 3))
	for y := range 3 {
		for x := range 4 {
			img.SetNRGBA(x, y, color.NRGBA{R: uint8(x * 60), G: uint8(y * 80), B: 10, A: 255})
		}
	}
	return img
}

func TestDecodeRoundTrip(t *testing.T) {
	src := testImage()
	tests := []struct {
		name   string
		encode func(*bytes.Buffer) error
		want   Format
	}{
		{"png", func(b *bytes.Buffer) error { return EncodePNG(b, src) }, FormatPNG},
		{"bmp", func(b *bytes.Buffer) error { return bmp.Encode(b, src) }, FormatBMP},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			if err := tt.encode(&buf); err != nil {
				t.Fatalf("encode: %v", err)
			}
			img, format, err := Decode(&buf)
			if err != nil {
				t.Fatalf("Decode() error = %v", err)
			}
			if format != tt.want {
				t.Errorf("Decode() format = %v, want %v", format, tt.want)
			}
			if img.Bounds() != src.Bounds() {
				t.Fatalf("bounds = %v, want %v", img.Bounds(), src.Bounds())
			}
			for y := range 3 {
				for x := range 4 {
					if got, want := img.NRGBAAt(x, y), src.NRGBAAt(x, y); got != want {
						t.Errorf("pixel (%d,%d) = %v, want %v", x, y, got, want)
					}
				}
			}
		})
	}
}

func TestDecodeGIF(t *testing.T) {
	pal := image.NewPaletted(image.Rect(0, 0, 2, 2), color.Palette{color.Black, color.White})
	pal.SetColorIndex(1, 1, 1)
	var buf bytes.Buffer
	if err := gif.Encode(&buf, pal, nil); err != nil {
		t.Fatal(err)
	}
	img, format, err := Decode(&buf)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if format != FormatGIF {
		t.Errorf("format = %v, want gif", format)
	}
	if got := img.NRGBAAt(1, 1); got != (color.NRGBA{255, 255, 255, 255}) {
		t.Errorf("pixel = %v, want white", got)
	}
}

func TestDecodeErrors(t *testing.T) {
	if _, _, err := Decode(bytes.NewReader(nil)); !errors.Is(err, ErrEmptyData) {
		t.Errorf("empty: error = %v, want ErrEmptyData", err)
	}

	_, _, err := Decode(bytes.NewReader([]byte("this is plain text, not an image")))
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("text: error = %v, want ErrUnsupportedFormat", err)
	}

	// A PNG signature followed by garbage is detected but fails to decode.
	bad := append([]byte("\x89PNG\r\n\x1a\n"), bytes.Repeat([]byte{0xAB}, 64)...)
	_, format, err := Decode(bytes.NewReader(bad))
	var de *DecodeError
	if !errors.As(err, &de) {
		t.Fatalf("truncated png: error = %v, want *DecodeError", err)
	}
	if de.Kind != "png" || format != FormatPNG {
		t.Errorf("DecodeError.Kind = %q, format = %v, want png", de.Kind, format)
	}
}

func TestScale(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 8, 8))
	for i := range src.Pix {
		src.Pix[i] = 200
		if i%4 == 3 {
			src.Pix[i] = 255
		}
	}
	if got := Scale(src, 8, 8); got != src {
		t.Error("Scale() to the same size should return the source")
	}
	dst := Scale(src, 4, 2)
	if b := dst.Bounds(); b.Dx() != 4 || b.Dy() != 2 {
		t.Fatalf("Scale() bounds = %v, want 4x2", b)
	}
	if got := dst.NRGBAAt(1, 1); got != (color.NRGBA{200, 200, 200, 255}) {
		t.Errorf("Scale() pixel = %v, want uniform grey", got)
	}
}

func TestEncodeJPEGClampsQuality(t *testing.T) {
	var buf bytes.Buffer
	if err := EncodeJPEG(&buf, testImage(), 500); err != nil {
		t.Fatalf("EncodeJPEG() error = %v", err)
	}
	if f, _ := Sniff(buf.Bytes()); f != FormatJPEG {
		t.Errorf("Sniff() = %v, want jpeg", f)
	}
}
