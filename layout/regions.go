package layout

import (
	"image"

	"github.com/kraftysprouts/pinmaker/model"
	"github.com/kraftysprouts/pinmaker/reader"
)

// DetectImageRegions derives pictorial regions from a layout: merged regions
// with high internal variance and no overlapping text are likely photos or
// illustrations. Classification is heuristic:
//
//   - small regions in the top corners classify as logos
//   - other small regions classify as icons
//   - high-variance regions classify as photos
//   - everything else classifies as illustrations
//
// Element IDs are left empty; the caller assigns them.
func DetectImageRegions(img image.Image, lay model.Layout, texts []model.TextElement) []model.ImageRegion {
	bounds := img.Bounds()
	width := float64(bounds.Dx())
	height := float64(bounds.Dy())
	if width == 0 || height == 0 {
		return nil
	}
	canvas := width * height

	sample := reader.Downsample(img, 128)

	var out []model.ImageRegion
	for _, region := range lay.Regions {
		if overlapsText(region.BBox, texts) {
			continue
		}
		relArea := region.BBox.Area() / canvas
		if relArea < 0.01 || relArea > 0.95 {
			continue
		}

		variance := regionVariance(sample, region.BBox, width, height)
		if variance < solidVariance {
			continue // flat fill, part of the background
		}

		kind := model.RegionIllustration
		confidence := 0.5
		switch {
		case relArea < 0.05 && inTopCorner(region.BBox, width, height):
			kind = model.RegionLogo
			confidence = 0.6
		case relArea < 0.05:
			kind = model.RegionIcon
			confidence = 0.55
		case variance > photoVariance:
			kind = model.RegionPhoto
			confidence = 0.7
		}

		out = append(out, model.ImageRegion{
			BBox:       region.BBox,
			Kind:       kind,
			Confidence: confidence,
		})
	}
	return out
}

// Variance thresholds for region classification on 8-bit grayscale.
const (
	solidVariance = 200
	photoVariance = 2000
)

func overlapsText(bbox model.BBox, texts []model.TextElement) bool {
	for _, t := range texts {
		if t.BBox.OverlapRatio(bbox) > 0.5 {
			return true
		}
	}
	return false
}

func inTopCorner(bbox model.BBox, width, height float64) bool {
	c := bbox.Center()
	inTop := c.Y < height*0.2
	inSide := c.X < width*0.25 || c.X > width*0.75
	return inTop && inSide
}

// regionVariance computes grayscale variance of the sampled pixels covered
// by bbox (given in source-image coordinates).
func regionVariance(sample *image.RGBA, bbox model.BBox, srcW, srcH float64) float64 {
	bounds := sample.Bounds()
	sw := float64(bounds.Dx())
	sh := float64(bounds.Dy())

	x0 := bounds.Min.X + int(bbox.Left()/srcW*sw)
	x1 := bounds.Min.X + int(bbox.Right()/srcW*sw)
	y0 := bounds.Min.Y + int(bbox.Top()/srcH*sh)
	y1 := bounds.Min.Y + int(bbox.Bottom()/srcH*sh)
	x0 = max(x0, bounds.Min.X)
	y0 = max(y0, bounds.Min.Y)
	x1 = min(x1, bounds.Max.X)
	y1 = min(y1, bounds.Max.Y)
	if x1 <= x0 || y1 <= y0 {
		return 0
	}

	var sum, sumSq float64
	n := 0
	for y := y0; y < y1; y++ {
		for x := x0; x < x1; x++ {
			c := sample.RGBAAt(x, y)
			gray := 0.299*float64(c.R) + 0.587*float64(c.G) + 0.114*float64(c.B)
			sum += gray
			sumSq += gray * gray
			n++
		}
	}
	mean := sum / float64(n)
	return sumSq/float64(n) - mean*mean
}
