package model

import (
	"fmt"
	"strings"
	"time"
)

// StageStatus is the outcome of one analyzer stage.
type StageStatus int

const (
	StatusSucceeded StageStatus = iota
	StatusPartial
	StatusFailed
)

func (s StageStatus) String() string {
	switch s {
	case StatusPartial:
		return "partial"
	case StatusFailed:
		return "failed"
	default:
		return "succeeded"
	}
}

// StageFlags records the per-stage outcome of one analysis run.
type StageFlags struct {
	Text   StageStatus `json:"text"`
	Color  StageStatus `json:"color"`
	Layout StageStatus `json:"layout"`
}

// AllFailed reports whether every stage failed.
func (f StageFlags) AllFailed() bool {
	return f.Text == StatusFailed && f.Color == StatusFailed && f.Layout == StatusFailed
}

// Orientation of the source image.
type Orientation int

const (
	OrientationSquare Orientation = iota
	OrientationPortrait
	OrientationLandscape
)

func (o Orientation) String() string {
	switch o {
	case OrientationPortrait:
		return "portrait"
	case OrientationLandscape:
		return "landscape"
	default:
		return "square"
	}
}

// ImageInfo carries basic facts about the source image.
type ImageInfo struct {
	Width       int         `json:"width"`
	Height      int         `json:"height"`
	AspectRatio float64     `json:"aspect_ratio"`
	Orientation Orientation `json:"orientation"`

	// PinOptimal reports whether the aspect ratio is close to one of the
	// 2:3, 1:1.5, or 9:16 ratios favored for vertical pins.
	PinOptimal bool `json:"pin_optimal"`
}

// BackgroundKind classifies the background complexity.
type BackgroundKind int

const (
	BackgroundSolid BackgroundKind = iota
	BackgroundGradient
	BackgroundPattern
)

func (k BackgroundKind) String() string {
	switch k {
	case BackgroundGradient:
		return "gradient"
	case BackgroundPattern:
		return "pattern"
	default:
		return "solid"
	}
}

// BackgroundInfo describes the background sampled from the image edges.
type BackgroundInfo struct {
	Color    Color          `json:"color"`
	Kind     BackgroundKind `json:"kind"`
	Variance float64        `json:"variance"`
}

// AnalysisResult is the structured output of running all analyzer stages on
// one source image. It is created once, never mutated, and evicted from the
// store after a retention window: treat the ID as ephemeral.
type AnalysisResult struct {
	ID           string         `json:"id"`
	Info         ImageInfo      `json:"info"`
	TextElements []TextElement  `json:"text_elements"`
	ImageRegions []ImageRegion  `json:"image_regions"`
	Palette      ColorPalette   `json:"palette"`
	Layout       Layout         `json:"layout"`
	Background   BackgroundInfo `json:"background"`
	Stages       StageFlags     `json:"stages"`
	Confidence   float64        `json:"confidence"` // aggregate, [0,1]
	CreatedAt    time.Time      `json:"created_at"`
}

// Element returns the text element with the given id, if present.
func (r *AnalysisResult) Element(id string) (*TextElement, bool) {
	for i := range r.TextElements {
		if r.TextElements[i].ID == id {
			return &r.TextElements[i], true
		}
	}
	return nil, false
}

// Summary returns a short human-readable description of the analysis.
func (r *AnalysisResult) Summary() string {
	var parts []string
	parts = append(parts, fmt.Sprintf("Image: %dx%d (%s orientation)",
		r.Info.Width, r.Info.Height, r.Info.Orientation))

	if len(r.Palette.Colors) > 0 {
		first := r.Palette.Colors[0]
		parts = append(parts, fmt.Sprintf("Primary color: %s (%.1f%%)",
			first.Color.Hex(), first.Frequency*100))
	}

	if len(r.TextElements) > 0 {
		words := 0
		for _, el := range r.TextElements {
			words += len(strings.Fields(el.Text))
		}
		parts = append(parts, fmt.Sprintf("Contains text: %d words detected", words))
	} else {
		parts = append(parts, "No readable text detected")
	}

	parts = append(parts, fmt.Sprintf("Layout: %s", r.Layout.Type))
	return strings.Join(parts, ". ") + "."
}
