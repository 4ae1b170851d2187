// Package reader decodes raw image bytes into pixel buffers for analysis
// and rendering. PNG, JPEG, and GIF are handled by the standard library;
// WebP, BMP, and TIFF come from golang.org/x/image.
package reader

import (
	"bytes"
	"fmt"
	"image"
	"image/draw"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/kraftysprouts/pinmaker/format"
)

// ErrUnsupportedFormat is returned when the input bytes are not one of the
// supported raster formats.
var ErrUnsupportedFormat = fmt.Errorf("reader: unsupported image format")

// Decode decodes image bytes into an image.Image. The format is sniffed
// from magic bytes before decoding so corrupt or unsupported inputs fail
// fast with ErrUnsupportedFormat.
func Decode(data []byte) (image.Image, format.Format, error) {
	f := format.Sniff(data)
	if f == format.Unknown {
		return nil, format.Unknown, ErrUnsupportedFormat
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, f, fmt.Errorf("decode %s image: %w", f, err)
	}
	return img, f, nil
}

// ToRGBA converts any image to *image.RGBA, copying pixels when necessary.
func ToRGBA(img image.Image) *image.RGBA {
	if rgba, ok := img.(*image.RGBA); ok {
		return rgba
	}
	bounds := img.Bounds()
	rgba := image.NewRGBA(bounds)
	draw.Draw(rgba, bounds, img, bounds.Min, draw.Src)
	return rgba
}

// Downsample returns a nearest-neighbor reduced copy of img whose longest
// side is at most maxSide. Images already within the bound are copied
// unchanged. Sampling is by fixed stride, so the result is deterministic.
func Downsample(img image.Image, maxSide int) *image.RGBA {
	bounds := img.Bounds()
	w := bounds.Dx()
	h := bounds.Dy()
	if maxSide <= 0 || (w <= maxSide && h <= maxSide) {
		return ToRGBA(img)
	}

	scale := float64(maxSide) / float64(max(w, h))
	dw := max(1, int(float64(w)*scale))
	dh := max(1, int(float64(h)*scale))

	dst := image.NewRGBA(image.Rect(0, 0, dw, dh))
	for y := 0; y < dh; y++ {
		sy := bounds.Min.Y + y*h/dh
		for x := 0; x < dw; x++ {
			sx := bounds.Min.X + x*w/dw
			dst.Set(x, y, img.At(sx, sy))
		}
	}
	return dst
}
