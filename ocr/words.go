package ocr

import "errors"

// ErrOCRNotEnabled is returned when OCR functions are called but OCR support
// was not compiled in. Rebuild with -tags ocr to enable OCR support.
var ErrOCRNotEnabled = errors.New("OCR support not enabled; rebuild with -tags ocr")

// Word is one raw word-level detection: the recognized text, its bounding
// box in source image pixels, and the engine confidence normalized to [0,1].
type Word struct {
	Text       string
	X, Y       float64
	Width      float64
	Height     float64
	Confidence float64
}
