package analysis

import (
	"context"
	"errors"
	"image"
	"image/color"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kraftysprouts/pinmaker/detect"
	"github.com/kraftysprouts/pinmaker/model"
	"github.com/kraftysprouts/pinmaker/ocr"
	pkgerrors "github.com/kraftysprouts/pinmaker/pkg/errors"
	"github.com/kraftysprouts/pinmaker/store"
)

type fakeRecognizer struct {
	words []ocr.Word
	err   error
	block bool
}

func (f *fakeRecognizer) Recognize(ctx context.Context, _ image.Image) ([]ocr.Word, error) {
	if f.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	return f.words, f.err
}

func testImage(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, color.RGBA{R: 240, G: 240, B: 240, A: 255})
		}
	}
	return img
}

func newTestOrchestrator(rec *fakeRecognizer) (*Orchestrator, *store.Memory) {
	st := store.NewMemory()
	var r detect.Recognizer
	if rec != nil {
		r = rec
	}
	return New(r, st, nil, DefaultConfig()), st
}

func TestAnalyzeFullPipeline(t *testing.T) {
	rec := &fakeRecognizer{words: []ocr.Word{
		{Text: "Big", X: 100, Y: 50, Width: 80, Height: 40, Confidence: 0.9},
		{Text: "Sale", X: 190, Y: 50, Width: 90, Height: 40, Confidence: 0.8},
	}}
	o, _ := newTestOrchestrator(rec)

	res, err := o.Analyze(context.Background(), testImage(600, 900))
	require.NoError(t, err)

	assert.NotEmpty(t, res.ID)
	assert.Equal(t, model.StatusSucceeded, res.Stages.Text)
	assert.Equal(t, model.StatusSucceeded, res.Stages.Color)
	assert.Equal(t, model.StatusSucceeded, res.Stages.Layout)

	require.Len(t, res.TextElements, 1)
	assert.Equal(t, "text_0", res.TextElements[0].ID)
	assert.Equal(t, "Big Sale", res.TextElements[0].Text)

	assert.Equal(t, 600, res.Info.Width)
	assert.Equal(t, 900, res.Info.Height)
	assert.Equal(t, model.OrientationPortrait, res.Info.Orientation)
	assert.True(t, res.Info.PinOptimal) // 600x900 is 2:3

	assert.GreaterOrEqual(t, res.Confidence, 0.0)
	assert.LessOrEqual(t, res.Confidence, 1.0)
	assert.False(t, res.CreatedAt.IsZero())
}

func TestAnalyzePartialFailure(t *testing.T) {
	rec := &fakeRecognizer{err: errors.New("engine unavailable")}
	o, _ := newTestOrchestrator(rec)

	res, err := o.Analyze(context.Background(), testImage(400, 400))
	require.NoError(t, err, "one failed stage must not fail the analysis")

	assert.Equal(t, model.StatusFailed, res.Stages.Text)
	assert.Equal(t, model.StatusSucceeded, res.Stages.Color)
	assert.Equal(t, model.StatusSucceeded, res.Stages.Layout)
	assert.Empty(t, res.TextElements)
	assert.NotEmpty(t, res.Palette.Colors)
	assert.GreaterOrEqual(t, res.Confidence, 0.0)
	assert.LessOrEqual(t, res.Confidence, 1.0)
}

func TestAnalyzeNoTextFoundIsPartial(t *testing.T) {
	// The recognizer runs fine but sees no words: the stage is partial,
	// not failed, and the rest of the pipeline proceeds.
	o, _ := newTestOrchestrator(&fakeRecognizer{})

	res, err := o.Analyze(context.Background(), testImage(400, 600))
	require.NoError(t, err)

	assert.Equal(t, model.StatusPartial, res.Stages.Text)
	assert.Equal(t, model.StatusSucceeded, res.Stages.Color)
	assert.Empty(t, res.TextElements)
	assert.GreaterOrEqual(t, res.Confidence, 0.0)
	assert.LessOrEqual(t, res.Confidence, 1.0)
}

func TestAnalyzePopulatesBackground(t *testing.T) {
	o, _ := newTestOrchestrator(&fakeRecognizer{})

	res, err := o.Analyze(context.Background(), testImage(300, 450))
	require.NoError(t, err)

	// The uniform light canvas classifies as a solid background in the
	// canvas color.
	assert.Equal(t, model.BackgroundSolid, res.Background.Kind)
	assert.InDelta(t, 240, float64(res.Background.Color.R), 2)
	assert.InDelta(t, 240, float64(res.Background.Color.G), 2)
	assert.InDelta(t, 240, float64(res.Background.Color.B), 2)
}

func TestAnalyzeNilRecognizer(t *testing.T) {
	o, _ := newTestOrchestrator(nil)

	res, err := o.Analyze(context.Background(), testImage(300, 300))
	require.NoError(t, err)
	assert.Equal(t, model.StatusFailed, res.Stages.Text)
	assert.Equal(t, model.StatusSucceeded, res.Stages.Color)
}

func TestAnalyzeTimeout(t *testing.T) {
	rec := &fakeRecognizer{block: true}
	st := store.NewMemory()
	cfg := DefaultConfig()
	cfg.Timeout = 50 * time.Millisecond
	o := New(rec, st, nil, cfg)

	_, err := o.Analyze(context.Background(), testImage(200, 200))
	var timeoutErr *pkgerrors.AnalysisTimeoutError
	assert.ErrorAs(t, err, &timeoutErr)
}

func TestAnalyzePersistsAndGet(t *testing.T) {
	o, _ := newTestOrchestrator(&fakeRecognizer{})

	res, err := o.Analyze(context.Background(), testImage(320, 240))
	require.NoError(t, err)

	got, err := o.Get(context.Background(), res.ID)
	require.NoError(t, err)
	assert.Equal(t, res.ID, got.ID)
	assert.Equal(t, res.Info, got.Info)
	assert.Equal(t, res.Stages, got.Stages)
}

func TestGetUnknownAnalysis(t *testing.T) {
	o, _ := newTestOrchestrator(nil)

	_, err := o.Get(context.Background(), "nope")
	var notFound *pkgerrors.AnalysisNotFoundError
	assert.ErrorAs(t, err, &notFound)
}

func TestAnalyzeRetentionExpiry(t *testing.T) {
	st := store.NewMemory()
	cfg := DefaultConfig()
	cfg.Retention = time.Minute
	o := New(nil, st, nil, cfg)

	res, err := o.Analyze(context.Background(), testImage(100, 100))
	require.NoError(t, err)

	// Simulate the retention window passing.
	require.NoError(t, st.Delete(context.Background(), "analysis/"+res.ID))

	_, err = o.Get(context.Background(), res.ID)
	var notFound *pkgerrors.AnalysisNotFoundError
	assert.ErrorAs(t, err, &notFound)
}

func TestAggregateConfidenceWeighting(t *testing.T) {
	o, _ := newTestOrchestrator(nil)

	res := &model.AnalysisResult{
		Stages: model.StageFlags{
			Text:   model.StatusFailed,
			Color:  model.StatusSucceeded,
			Layout: model.StatusSucceeded,
		},
		Layout: model.Layout{Confidence: 0.5},
	}

	// Color contributes 1.0 at weight 0.2, layout 0.5 at weight 0.3.
	got := o.aggregateConfidence(res)
	assert.InDelta(t, (0.2*1.0+0.3*0.5)/0.5, got, 1e-9)
}

func TestDescribeImage(t *testing.T) {
	tests := []struct {
		name        string
		w, h        int
		orientation model.Orientation
		pinOptimal  bool
	}{
		{"square", 500, 500, model.OrientationSquare, false},
		{"pin 2:3", 1000, 1500, model.OrientationPortrait, true},
		{"pin 9:16", 1080, 1920, model.OrientationPortrait, true},
		{"landscape", 1920, 1080, model.OrientationLandscape, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info := describeImage(image.NewRGBA(image.Rect(0, 0, tt.w, tt.h)))
			assert.Equal(t, tt.w, info.Width)
			assert.Equal(t, tt.h, info.Height)
			assert.Equal(t, tt.orientation, info.Orientation)
			assert.Equal(t, tt.pinOptimal, info.PinOptimal)
		})
	}
}
