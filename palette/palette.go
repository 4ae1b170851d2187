// Package palette extracts ranked color palettes from images and classifies
// their harmony and temperature. Extraction is deterministic for a fixed
// image and palette size.
package palette

import (
	"context"
	"image"
	"math"
	"sort"

	"github.com/kraftysprouts/pinmaker/model"
	"github.com/kraftysprouts/pinmaker/reader"
)

// Config holds the tunable parameters of the analyzer.
type Config struct {
	// MaxColors bounds the palette size.
	MaxColors int

	// SampleSide bounds the longest side of the downsampled copy the
	// quantization runs on.
	SampleSide int

	// MinBrightness and MaxBrightness mask out near-black and near-white
	// pixels so the palette reflects the design colors, not vignettes or
	// paper white. When the mask removes everything, the full pixel set is
	// used instead.
	MinBrightness float64
	MaxBrightness float64
}

// DefaultConfig returns the default analyzer configuration.
func DefaultConfig() Config {
	return Config{
		MaxColors:     8,
		SampleSide:    96,
		MinBrightness: 20,
		MaxBrightness: 235,
	}
}

// Analyzer extracts color palettes.
type Analyzer struct {
	cfg Config
}

// New creates an Analyzer with the default configuration.
func New() *Analyzer {
	return NewWithConfig(DefaultConfig())
}

// NewWithConfig creates an Analyzer with a custom configuration.
func NewWithConfig(cfg Config) *Analyzer {
	if cfg.MaxColors <= 0 {
		cfg.MaxColors = DefaultConfig().MaxColors
	}
	if cfg.SampleSide <= 0 {
		cfg.SampleSide = DefaultConfig().SampleSide
	}
	return &Analyzer{cfg: cfg}
}

type bucket struct {
	key     uint16
	count   int
	r, g, b uint64
}

// Analyze extracts the dominant color and ranked palette of img via color
// quantization on a downsampled copy, then classifies harmony and
// temperature.
func (a *Analyzer) Analyze(ctx context.Context, img image.Image) (model.ColorPalette, error) {
	if err := ctx.Err(); err != nil {
		return model.ColorPalette{}, err
	}

	sample := reader.Downsample(img, a.cfg.SampleSide)
	buckets := a.quantize(sample, true)
	if len(buckets) == 0 {
		// Everything was masked out; fall back to the unmasked pixels.
		buckets = a.quantize(sample, false)
	}

	sort.Slice(buckets, func(i, j int) bool {
		if buckets[i].count != buckets[j].count {
			return buckets[i].count > buckets[j].count
		}
		return buckets[i].key < buckets[j].key
	})

	total := 0
	for _, b := range buckets {
		total += b.count
	}

	n := min(a.cfg.MaxColors, len(buckets))
	entries := make([]model.PaletteEntry, 0, n)
	for _, b := range buckets[:n] {
		cnt := uint64(b.count)
		entries = append(entries, model.PaletteEntry{
			Color: model.Color{
				R: uint8(b.r / cnt),
				G: uint8(b.g / cnt),
				B: uint8(b.b / cnt),
			},
			Frequency: float64(b.count) / float64(total),
		})
	}

	p := model.ColorPalette{Colors: entries}
	if len(entries) > 0 {
		p.Dominant = entries[0].Color
	}
	p.Harmony = classifyHarmony(entries)
	p.Temperature = classifyTemperature(p.Dominant)
	return p, nil
}

// quantize posterizes pixels to 4 bits per channel and accumulates them into
// frequency buckets. With mask set, near-black and near-white pixels are
// skipped.
func (a *Analyzer) quantize(img *image.RGBA, mask bool) []*bucket {
	hist := make(map[uint16]*bucket)
	bounds := img.Bounds()
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			c := img.RGBAAt(x, y)
			if mask {
				mean := (float64(c.R) + float64(c.G) + float64(c.B)) / 3
				if mean < a.cfg.MinBrightness || mean > a.cfg.MaxBrightness {
					continue
				}
			}
			key := uint16(c.R>>4)<<8 | uint16(c.G>>4)<<4 | uint16(c.B>>4)
			bk := hist[key]
			if bk == nil {
				bk = &bucket{key: key}
				hist[key] = bk
			}
			bk.count++
			bk.r += uint64(c.R)
			bk.g += uint64(c.G)
			bk.b += uint64(c.B)
		}
	}

	out := make([]*bucket, 0, len(hist))
	for _, b := range hist {
		out = append(out, b)
	}
	return out
}

// hueDistance returns the angular distance between two hues in [0,180].
func hueDistance(a, b float64) float64 {
	d := math.Abs(a - b)
	if d > 180 {
		d = 360 - d
	}
	return d
}

// classifyHarmony buckets the pairwise hue distances of the saturated
// palette entries into the four harmony categories. Thresholds: hues within
// 15 degrees are monochromatic, within 40 analogous; a pair 150-210 degrees
// apart is complementary; a spread near 120 degrees is triadic.
func classifyHarmony(entries []model.PaletteEntry) model.Harmony {
	var hues []float64
	for _, e := range entries {
		if e.Color.Saturation() < 0.15 {
			continue // grays carry no hue information
		}
		hues = append(hues, e.Color.Hue())
	}
	if len(hues) < 2 {
		return model.HarmonyMonochromatic
	}

	maxDist := 0.0
	complementary := false
	triadic := false
	for i := 0; i < len(hues); i++ {
		for j := i + 1; j < len(hues); j++ {
			d := hueDistance(hues[i], hues[j])
			maxDist = math.Max(maxDist, d)
			if d >= 150 {
				complementary = true
			}
			if d >= 100 && d < 140 {
				triadic = true
			}
		}
	}

	switch {
	case maxDist < 15:
		return model.HarmonyMonochromatic
	case maxDist < 40:
		return model.HarmonyAnalogous
	case complementary:
		return model.HarmonyComplementary
	case triadic:
		return model.HarmonyTriadic
	default:
		return model.HarmonyAnalogous
	}
}

// classifyTemperature applies the hue-range rule: warm for 0-60 and 300-360
// degrees, cool for 180-300, neutral otherwise (including gray colors).
func classifyTemperature(c model.Color) model.Temperature {
	if c.Saturation() < 0.1 {
		return model.TemperatureNeutral
	}
	h := c.Hue()
	switch {
	case h < 60 || h >= 300:
		return model.TemperatureWarm
	case h >= 180 && h < 300:
		return model.TemperatureCool
	default:
		return model.TemperatureNeutral
	}
}
