package palette

import (
	"image"
	"sort"

	"github.com/kraftysprouts/pinmaker/model"
	"github.com/kraftysprouts/pinmaker/reader"
)

// Background variance thresholds separating solid, gradient, and patterned
// backgrounds, calibrated on 8-bit grayscale variance.
const (
	solidVarianceMax    = 1000
	gradientVarianceMax = 5000
)

// AnalyzeBackground estimates the background color from pixels sampled along
// the image edges and classifies the background complexity from the overall
// grayscale variance.
func AnalyzeBackground(img image.Image) model.BackgroundInfo {
	sample := reader.Downsample(img, 128)
	bounds := sample.Bounds()
	w := bounds.Dx()
	h := bounds.Dy()
	if w == 0 || h == 0 {
		return model.BackgroundInfo{}
	}

	band := max(1, min(w, h)/10)

	var edge []model.Color
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			onEdge := x < bounds.Min.X+band || x >= bounds.Max.X-band ||
				y < bounds.Min.Y+band || y >= bounds.Max.Y-band
			if !onEdge {
				continue
			}
			c := sample.RGBAAt(x, y)
			edge = append(edge, model.Color{R: c.R, G: c.G, B: c.B})
		}
	}

	// Median of per-channel edge samples resists outliers from content that
	// touches the border.
	bg := medianColor(edge)

	var sum, sumSq float64
	n := 0
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			c := sample.RGBAAt(x, y)
			gray := 0.299*float64(c.R) + 0.587*float64(c.G) + 0.114*float64(c.B)
			sum += gray
			sumSq += gray * gray
			n++
		}
	}
	mean := sum / float64(n)
	variance := sumSq/float64(n) - mean*mean

	kind := model.BackgroundSolid
	switch {
	case variance >= gradientVarianceMax:
		kind = model.BackgroundPattern
	case variance >= solidVarianceMax:
		kind = model.BackgroundGradient
	}

	return model.BackgroundInfo{Color: bg, Kind: kind, Variance: variance}
}

func medianColor(colors []model.Color) model.Color {
	if len(colors) == 0 {
		return model.Color{}
	}
	rs := make([]int, len(colors))
	gs := make([]int, len(colors))
	bs := make([]int, len(colors))
	for i, c := range colors {
		rs[i] = int(c.R)
		gs[i] = int(c.G)
		bs[i] = int(c.B)
	}
	sort.Ints(rs)
	sort.Ints(gs)
	sort.Ints(bs)
	mid := len(colors) / 2
	return model.Color{R: uint8(rs[mid]), G: uint8(gs[mid]), B: uint8(bs[mid])}
}
