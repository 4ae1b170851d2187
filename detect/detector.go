// Package detect locates and transcribes text in raster images, turning raw
// word-level recognitions into merged, styled text elements.
package detect

import (
	"context"
	"image"
	"math"
	"sort"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/kraftysprouts/pinmaker/model"
	"github.com/kraftysprouts/pinmaker/ocr"
)

// Recognizer is the capability that produces raw word detections for an
// image. Implementations must be safe for concurrent use.
type Recognizer interface {
	Recognize(ctx context.Context, img image.Image) ([]ocr.Word, error)
}

// Config holds the tunable thresholds of the detector.
type Config struct {
	// MinConfidence drops raw detections below this confidence to bound
	// false positives.
	MinConfidence float64

	// LineOverlap is the minimum vertical overlap ratio for two detections
	// to be considered part of the same line.
	LineOverlap float64

	// GapFactor scales the estimated font size into the maximum horizontal
	// gap allowed when merging adjacent detections.
	GapFactor float64

	// FontSizeRatio maps bounding-box height to estimated font size.
	FontSizeRatio float64

	// MinFontSize and MaxFontSize clamp the estimate.
	MinFontSize float64
	MaxFontSize float64
}

// DefaultConfig returns the default detector configuration.
func DefaultConfig() Config {
	return Config{
		MinConfidence: 0.5,
		LineOverlap:   0.5,
		GapFactor:     0.6,
		FontSizeRatio: 0.7,
		MinFontSize:   12,
		MaxFontSize:   128,
	}
}

// Detector turns raw recognitions into logical text elements.
type Detector struct {
	rec Recognizer
	cfg Config
}

// New creates a Detector with the default configuration.
func New(rec Recognizer) *Detector {
	return NewWithConfig(rec, DefaultConfig())
}

// NewWithConfig creates a Detector with a custom configuration.
func NewWithConfig(rec Recognizer, cfg Config) *Detector {
	return &Detector{rec: rec, cfg: cfg}
}

// Detect recognizes text in img and returns merged text elements ordered
// top-to-bottom, left-to-right. Element IDs are left empty; the caller
// assigns them. Returns an error when the underlying capability fails.
func (d *Detector) Detect(ctx context.Context, img image.Image) ([]model.TextElement, error) {
	if d.rec == nil {
		return nil, ocr.ErrOCRNotEnabled
	}

	words, err := d.rec.Recognize(ctx, img)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	filtered := make([]ocr.Word, 0, len(words))
	for _, w := range words {
		text := strings.TrimSpace(norm.NFC.String(w.Text))
		if text == "" || w.Confidence < d.cfg.MinConfidence {
			continue
		}
		w.Text = text
		filtered = append(filtered, w)
	}

	lines := d.mergeLines(filtered)

	elements := make([]model.TextElement, 0, len(lines))
	for _, ln := range lines {
		elements = append(elements, d.buildElement(ln, img))
	}
	return elements, nil
}

// line accumulates words merged into one logical text run.
type line struct {
	words []ocr.Word
	bbox  model.BBox
}

func wordBBox(w ocr.Word) model.BBox {
	return model.NewBBox(w.X, w.Y, w.Width, w.Height)
}

// mergeLines groups adjacent detections into logical lines: two detections
// merge when their vertical overlap exceeds the threshold and the horizontal
// gap between them is small relative to the estimated font size.
func (d *Detector) mergeLines(words []ocr.Word) []line {
	sorted := make([]ocr.Word, len(words))
	copy(sorted, words)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Y != sorted[j].Y {
			return sorted[i].Y < sorted[j].Y
		}
		return sorted[i].X < sorted[j].X
	})

	var lines []line
	for _, w := range sorted {
		wb := wordBBox(w)
		merged := false
		for i := range lines {
			ln := &lines[i]
			if wb.VerticalOverlap(ln.bbox) < d.cfg.LineOverlap {
				continue
			}
			maxGap := d.cfg.GapFactor * d.estimateFontSize(ln.bbox.Height)
			if wb.HorizontalGap(ln.bbox) > maxGap {
				continue
			}
			ln.words = append(ln.words, w)
			ln.bbox = ln.bbox.Union(wb)
			merged = true
			break
		}
		if !merged {
			lines = append(lines, line{words: []ocr.Word{w}, bbox: wb})
		}
	}

	sort.SliceStable(lines, func(i, j int) bool {
		if lines[i].bbox.Y != lines[j].bbox.Y {
			return lines[i].bbox.Y < lines[j].bbox.Y
		}
		return lines[i].bbox.X < lines[j].bbox.X
	})
	return lines
}

func (d *Detector) estimateFontSize(height float64) float64 {
	size := height * d.cfg.FontSizeRatio
	return math.Max(d.cfg.MinFontSize, math.Min(d.cfg.MaxFontSize, size))
}

func (d *Detector) buildElement(ln line, img image.Image) model.TextElement {
	sort.SliceStable(ln.words, func(i, j int) bool {
		return ln.words[i].X < ln.words[j].X
	})

	parts := make([]string, 0, len(ln.words))
	var confSum float64
	for _, w := range ln.words {
		parts = append(parts, w.Text)
		confSum += w.Confidence
	}

	textColor, bold := sampleInk(img, ln.bbox)

	return model.TextElement{
		Text:       strings.Join(parts, " "),
		BBox:       ln.bbox,
		Confidence: confSum / float64(len(ln.words)),
		FontSize:   d.estimateFontSize(ln.bbox.Height),
		Weight:     weightOf(bold),
		Color:      textColor,
		Alignment:  alignmentOf(ln.bbox, img),
	}
}

func weightOf(bold bool) model.FontWeight {
	if bold {
		return model.WeightBold
	}
	return model.WeightNormal
}

// alignmentOf classifies the element's horizontal position relative to the
// image: centered when its center sits within 5% of the image center,
// right-aligned when its right edge hugs the right margin.
func alignmentOf(bbox model.BBox, img image.Image) model.Alignment {
	bounds := img.Bounds()
	width := float64(bounds.Dx())
	if width == 0 {
		return model.AlignLeft
	}

	center := bbox.Center().X - float64(bounds.Min.X)
	if math.Abs(center-width/2) < width*0.05 {
		return model.AlignCenter
	}
	rightMargin := width - (bbox.Right() - float64(bounds.Min.X))
	leftMargin := bbox.Left() - float64(bounds.Min.X)
	if rightMargin < leftMargin/2 {
		return model.AlignRight
	}
	return model.AlignLeft
}

// sampleInk estimates the text color and weight inside bbox. The most
// frequent posterized color is assumed to be the background; the runner-up
// is the ink. A high ink fraction relative to the box area suggests a heavy
// (bold) face.
func sampleInk(img image.Image, bbox model.BBox) (model.Color, bool) {
	bounds := img.Bounds()
	x0 := bounds.Min.X + int(bbox.X)
	y0 := bounds.Min.Y + int(bbox.Y)
	x1 := bounds.Min.X + int(bbox.Right())
	y1 := bounds.Min.Y + int(bbox.Bottom())
	x0 = max(x0, bounds.Min.X)
	y0 = max(y0, bounds.Min.Y)
	x1 = min(x1, bounds.Max.X)
	y1 = min(y1, bounds.Max.Y)
	if x1 <= x0 || y1 <= y0 {
		return model.Color{}, false
	}

	type bucket struct {
		count   int
		r, g, b uint64
	}
	hist := make(map[uint16]*bucket)
	total := 0
	for y := y0; y < y1; y++ {
		for x := x0; x < x1; x++ {
			r, g, b, _ := img.At(x, y).RGBA()
			r8 := uint8(r >> 8)
			g8 := uint8(g >> 8)
			b8 := uint8(b >> 8)
			key := uint16(r8>>4)<<8 | uint16(g8>>4)<<4 | uint16(b8>>4)
			bk := hist[key]
			if bk == nil {
				bk = &bucket{}
				hist[key] = bk
			}
			bk.count++
			bk.r += uint64(r8)
			bk.g += uint64(g8)
			bk.b += uint64(b8)
			total++
		}
	}
	if total == 0 {
		return model.Color{}, false
	}

	keys := make([]uint16, 0, len(hist))
	for k := range hist {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if hist[keys[i]].count != hist[keys[j]].count {
			return hist[keys[i]].count > hist[keys[j]].count
		}
		return keys[i] < keys[j]
	})

	avg := func(bk *bucket) model.Color {
		n := uint64(bk.count)
		return model.Color{
			R: uint8(bk.r / n),
			G: uint8(bk.g / n),
			B: uint8(bk.b / n),
		}
	}

	background := avg(hist[keys[0]])
	if len(keys) == 1 {
		// Uniform box: fall back to the inverse of the background.
		ink := model.Color{R: ^background.R, G: ^background.G, B: ^background.B}
		return ink, false
	}

	ink := avg(hist[keys[1]])
	inkFraction := float64(total-hist[keys[0]].count) / float64(total)
	return ink, inkFraction > 0.30
}
