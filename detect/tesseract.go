package detect

import (
	"context"
	"image"
	"sync"

	"github.com/kraftysprouts/pinmaker/ocr"
)

// TesseractRecognizer adapts an ocr.Client to the Recognizer interface.
// The underlying engine is stateful, so calls are serialized with a mutex;
// the client itself is created once and shared.
type TesseractRecognizer struct {
	mu     sync.Mutex
	client *ocr.Client
}

// NewTesseractRecognizer wraps an OCR client.
func NewTesseractRecognizer(client *ocr.Client) *TesseractRecognizer {
	return &TesseractRecognizer{client: client}
}

// Recognize runs word-level OCR on the image.
func (r *TesseractRecognizer) Recognize(ctx context.Context, img image.Image) ([]ocr.Word, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.client.Words(img)
}
