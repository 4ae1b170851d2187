package layout

import (
	"context"
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kraftysprouts/pinmaker/model"
)

func fill(img *image.RGBA, x0, y0, x1, y1 int, c color.RGBA) {
	for y := y0; y < y1; y++ {
		for x := x0; x < x1; x++ {
			img.SetRGBA(x, y, c)
		}
	}
}

func TestAnalyzeUniformImage(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 200, 200))
	fill(img, 0, 0, 200, 200, color.RGBA{R: 200, G: 200, B: 200, A: 255})

	lay, err := New().Analyze(context.Background(), img, nil)
	require.NoError(t, err)

	// One merged region covering everything classifies as centered.
	assert.Equal(t, model.LayoutCentered, lay.Type)
	require.Len(t, lay.Regions, 1)
	assert.Equal(t, model.RoleBody, lay.Regions[0].Role)
	assert.InDelta(t, 0.9, lay.Confidence, 1e-9)
}

func TestAnalyzeGrid(t *testing.T) {
	// Four strongly-contrasting quadrants tile the canvas as a 2x2 grid.
	img := image.NewRGBA(image.Rect(0, 0, 200, 200))
	fill(img, 0, 0, 100, 100, color.RGBA{R: 220, A: 255})
	fill(img, 100, 0, 200, 100, color.RGBA{G: 220, A: 255})
	fill(img, 0, 100, 100, 200, color.RGBA{B: 220, A: 255})
	fill(img, 100, 100, 200, 200, color.RGBA{R: 220, G: 220, A: 255})

	lay, err := New().Analyze(context.Background(), img, nil)
	require.NoError(t, err)

	assert.Equal(t, model.LayoutGrid, lay.Type)
	assert.Equal(t, 2, lay.GridRows)
	assert.Equal(t, 2, lay.GridCols)
	assert.Len(t, lay.Regions, 4)
}

func TestAnalyzeTypeTotality(t *testing.T) {
	// Whatever the pixels, the analyzer must return one of the four types.
	images := []*image.RGBA{
		image.NewRGBA(image.Rect(0, 0, 50, 50)),
		image.NewRGBA(image.Rect(0, 0, 1, 1)),
	}
	noise := image.NewRGBA(image.Rect(0, 0, 100, 100))
	for y := 0; y < 100; y++ {
		for x := 0; x < 100; x++ {
			noise.SetRGBA(x, y, color.RGBA{R: uint8(x * 31 % 251), G: uint8(y * 17 % 251), B: uint8((x + y) * 13 % 251), A: 255})
		}
	}
	images = append(images, noise)

	valid := map[model.LayoutType]bool{
		model.LayoutFreeform:   true,
		model.LayoutGrid:       true,
		model.LayoutCentered:   true,
		model.LayoutAsymmetric: true,
	}
	for _, img := range images {
		lay, err := New().Analyze(context.Background(), img, nil)
		require.NoError(t, err)
		assert.True(t, valid[lay.Type], "unexpected layout type %v", lay.Type)
		assert.GreaterOrEqual(t, lay.Confidence, 0.0)
		assert.LessOrEqual(t, lay.Confidence, 1.0)
	}
}

func TestAnalyzeHeaderRole(t *testing.T) {
	// A dark band across the top of a light canvas becomes a header.
	img := image.NewRGBA(image.Rect(0, 0, 200, 200))
	fill(img, 0, 0, 200, 200, color.RGBA{R: 240, G: 240, B: 240, A: 255})
	fill(img, 0, 0, 200, 30, color.RGBA{R: 30, G: 30, B: 90, A: 255})

	lay, err := New().Analyze(context.Background(), img, nil)
	require.NoError(t, err)

	var hasHeader bool
	for _, r := range lay.Regions {
		if r.Role == model.RoleHeader {
			hasHeader = true
		}
	}
	assert.True(t, hasHeader, "expected a header region, got %+v", lay.Regions)
}

func TestAnalyzeDeterministic(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 160, 160))
	fill(img, 0, 0, 160, 160, color.RGBA{R: 250, G: 250, B: 250, A: 255})
	fill(img, 20, 20, 140, 80, color.RGBA{R: 50, G: 90, B: 200, A: 255})

	a := New()
	first, err := a.Analyze(context.Background(), img, nil)
	require.NoError(t, err)
	second, err := a.Analyze(context.Background(), img, nil)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestAnalyzeCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New().Analyze(ctx, image.NewRGBA(image.Rect(0, 0, 10, 10)), nil)
	assert.ErrorIs(t, err, context.Canceled)
}
