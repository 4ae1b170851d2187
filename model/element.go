package model

// FontWeight represents an estimated font weight.
type FontWeight int

const (
	WeightNormal FontWeight = iota
	WeightBold
)

func (w FontWeight) String() string {
	if w == WeightBold {
		return "bold"
	}
	return "normal"
}

// Alignment represents horizontal text alignment.
type Alignment int

const (
	AlignLeft Alignment = iota
	AlignCenter
	AlignRight
)

func (a Alignment) String() string {
	switch a {
	case AlignCenter:
		return "center"
	case AlignRight:
		return "right"
	default:
		return "left"
	}
}

// TextElement is one logical piece of recognized text: a word, line, or
// merged run of adjacent words. Immutable once produced by analysis.
type TextElement struct {
	ID         string     `json:"id"`
	Text       string     `json:"text"`
	BBox       BBox       `json:"bbox"`
	Confidence float64    `json:"confidence"` // [0,1]
	FontSize   float64    `json:"font_size"`  // estimated from bbox height
	Weight     FontWeight `json:"weight"`
	Color      Color      `json:"color"`
	Alignment  Alignment  `json:"alignment"`
}

// RegionKind is the heuristic classification of a non-text image region.
type RegionKind int

const (
	RegionPhoto RegionKind = iota
	RegionIllustration
	RegionLogo
	RegionIcon
)

func (k RegionKind) String() string {
	switch k {
	case RegionIllustration:
		return "illustration"
	case RegionLogo:
		return "logo"
	case RegionIcon:
		return "icon"
	default:
		return "photo"
	}
}

// ImageRegion is a detected pictorial region of the source image.
type ImageRegion struct {
	ID          string     `json:"id"`
	BBox        BBox       `json:"bbox"`
	Kind        RegionKind `json:"kind"`
	Confidence  float64    `json:"confidence"`
	Description string     `json:"description,omitempty"`
}
