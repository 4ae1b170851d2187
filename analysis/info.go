package analysis

import (
	"image"
	"math"

	"github.com/kraftysprouts/pinmaker/model"
)

// pinRatios are width/height ratios favored for vertical pins.
var pinRatios = []float64{2.0 / 3.0, 1.0 / 1.5, 9.0 / 16.0}

const pinRatioTolerance = 0.05

// describeImage summarizes the source image dimensions, orientation, and
// whether its aspect ratio is already pin-optimal.
func describeImage(img image.Image) model.ImageInfo {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()

	info := model.ImageInfo{Width: w, Height: h}
	if h > 0 {
		info.AspectRatio = float64(w) / float64(h)
	}

	switch {
	case w > h:
		info.Orientation = model.OrientationLandscape
	case h > w:
		info.Orientation = model.OrientationPortrait
	default:
		info.Orientation = model.OrientationSquare
	}

	for _, r := range pinRatios {
		if math.Abs(info.AspectRatio-r) <= pinRatioTolerance {
			info.PinOptimal = true
			break
		}
	}
	return info
}
