package detect

import (
	"context"
	"errors"
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kraftysprouts/pinmaker/model"
	"github.com/kraftysprouts/pinmaker/ocr"
)

type fakeRecognizer struct {
	words []ocr.Word
	err   error
}

func (f *fakeRecognizer) Recognize(_ context.Context, _ image.Image) ([]ocr.Word, error) {
	return f.words, f.err
}

func whiteCanvas(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, color.RGBA{R: 255, G: 255, B: 255, A: 255})
		}
	}
	return img
}

func word(text string, x, y, w, h, conf float64) ocr.Word {
	return ocr.Word{Text: text, X: x, Y: y, Width: w, Height: h, Confidence: conf}
}

func TestDetectFiltersLowConfidence(t *testing.T) {
	rec := &fakeRecognizer{words: []ocr.Word{
		word("keep", 10, 10, 60, 20, 0.9),
		word("drop", 10, 50, 60, 20, 0.3),
		word("  ", 10, 90, 60, 20, 0.9),
	}}

	elements, err := New(rec).Detect(context.Background(), whiteCanvas(400, 200))
	require.NoError(t, err)
	require.Len(t, elements, 1)
	assert.Equal(t, "keep", elements[0].Text)
}

func TestDetectMergesWordsOnLine(t *testing.T) {
	// Three words on one line with small gaps, one word far below.
	rec := &fakeRecognizer{words: []ocr.Word{
		word("Hello", 10, 10, 50, 20, 0.95),
		word("wide", 65, 10, 40, 20, 0.90),
		word("world", 110, 12, 50, 18, 0.85),
		word("footer", 10, 150, 60, 20, 0.80),
	}}

	elements, err := New(rec).Detect(context.Background(), whiteCanvas(400, 200))
	require.NoError(t, err)
	require.Len(t, elements, 2)

	assert.Equal(t, "Hello wide world", elements[0].Text)
	assert.InDelta(t, 0.9, elements[0].Confidence, 1e-9)
	assert.Equal(t, "footer", elements[1].Text)
}

func TestDetectDoesNotMergeAcrossWideGap(t *testing.T) {
	// Same line but separated by far more than the gap threshold.
	rec := &fakeRecognizer{words: []ocr.Word{
		word("left", 10, 10, 40, 20, 0.9),
		word("right", 300, 10, 40, 20, 0.9),
	}}

	elements, err := New(rec).Detect(context.Background(), whiteCanvas(400, 200))
	require.NoError(t, err)
	assert.Len(t, elements, 2)
}

func TestDetectFontSizeClamped(t *testing.T) {
	rec := &fakeRecognizer{words: []ocr.Word{
		word("tiny", 10, 10, 30, 6, 0.9),
		word("huge", 10, 100, 600, 400, 0.9),
	}}

	elements, err := New(rec).Detect(context.Background(), whiteCanvas(800, 600))
	require.NoError(t, err)
	require.Len(t, elements, 2)
	assert.Equal(t, 12.0, elements[0].FontSize)
	assert.Equal(t, 128.0, elements[1].FontSize)
}

func TestDetectAlignment(t *testing.T) {
	rec := &fakeRecognizer{words: []ocr.Word{
		word("centered", 150, 10, 100, 20, 0.9),
		word("left", 5, 50, 40, 20, 0.9),
		word("right", 350, 90, 45, 20, 0.9),
	}}

	elements, err := New(rec).Detect(context.Background(), whiteCanvas(400, 200))
	require.NoError(t, err)
	require.Len(t, elements, 3)
	assert.Equal(t, model.AlignCenter, elements[0].Alignment)
	assert.Equal(t, model.AlignLeft, elements[1].Alignment)
	assert.Equal(t, model.AlignRight, elements[2].Alignment)
}

func TestDetectPropagatesRecognizerError(t *testing.T) {
	boom := errors.New("engine crashed")
	rec := &fakeRecognizer{err: boom}

	_, err := New(rec).Detect(context.Background(), whiteCanvas(100, 100))
	assert.ErrorIs(t, err, boom)
}

func TestDetectNilRecognizer(t *testing.T) {
	_, err := New(nil).Detect(context.Background(), whiteCanvas(100, 100))
	assert.ErrorIs(t, err, ocr.ErrOCRNotEnabled)
}

func TestDetectDeterministic(t *testing.T) {
	// Out-of-order words with 5px gaps, inside the merge threshold for
	// 20px-tall text.
	rec := &fakeRecognizer{words: []ocr.Word{
		word("b", 55, 10, 40, 20, 0.9),
		word("a", 10, 10, 40, 20, 0.9),
		word("c", 100, 10, 40, 20, 0.9),
	}}

	d := New(rec)
	first, err := d.Detect(context.Background(), whiteCanvas(400, 100))
	require.NoError(t, err)
	second, err := d.Detect(context.Background(), whiteCanvas(400, 100))
	require.NoError(t, err)
	assert.Equal(t, first, second)
	require.Len(t, first, 1)
	assert.Equal(t, "a b c", first[0].Text)
}
