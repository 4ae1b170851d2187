package format

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSniff(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want Format
	}{
		{"png", []byte{0x89, 'P', 'N', 'G', 0x0d, 0x0a, 0x1a, 0x0a, 0x00}, PNG},
		{"jpeg", []byte{0xff, 0xd8, 0xff, 0xe0}, JPEG},
		{"gif", []byte("GIF89a"), GIF},
		{"bmp", []byte("BM\x00\x00"), BMP},
		{"webp", []byte("RIFF\x00\x00\x00\x00WEBPVP8 "), WebP},
		{"riff but not webp", []byte("RIFF\x00\x00\x00\x00WAVEfmt "), Unknown},
		{"tiff little endian", []byte{'I', 'I', 0x2a, 0x00}, TIFF},
		{"tiff big endian", []byte{'M', 'M', 0x00, 0x2a}, TIFF},
		{"empty", nil, Unknown},
		{"garbage", []byte("not an image"), Unknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Sniff(tt.data))
		})
	}
}

func TestDetectPath(t *testing.T) {
	tests := []struct {
		path string
		want Format
	}{
		{"photo.png", PNG},
		{"photo.JPG", JPEG},
		{"photo.jpeg", JPEG},
		{"anim.gif", GIF},
		{"scan.tif", TIFF},
		{"pic.webp", WebP},
		{"note.txt", Unknown},
		{"noext", Unknown},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, DetectPath(tt.path))
		})
	}
}

func TestFormatStrings(t *testing.T) {
	assert.Equal(t, "PNG", PNG.String())
	assert.Equal(t, ".jpg", JPEG.Extension())
	assert.Equal(t, "image/webp", WebP.MIME())
	assert.Equal(t, "application/octet-stream", Unknown.MIME())
}
