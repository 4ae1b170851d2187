package model

// Harmony classifies the relationship pattern of a palette's hues.
type Harmony int

const (
	HarmonyMonochromatic Harmony = iota
	HarmonyAnalogous
	HarmonyComplementary
	HarmonyTriadic
)

func (h Harmony) String() string {
	switch h {
	case HarmonyAnalogous:
		return "analogous"
	case HarmonyComplementary:
		return "complementary"
	case HarmonyTriadic:
		return "triadic"
	default:
		return "monochromatic"
	}
}

// Temperature classifies the overall warmth of a palette.
type Temperature int

const (
	TemperatureNeutral Temperature = iota
	TemperatureWarm
	TemperatureCool
)

func (t Temperature) String() string {
	switch t {
	case TemperatureWarm:
		return "warm"
	case TemperatureCool:
		return "cool"
	default:
		return "neutral"
	}
}

// PaletteEntry is one ranked palette color with its share of sampled pixels.
type PaletteEntry struct {
	Color     Color   `json:"color"`
	Frequency float64 `json:"frequency"` // fraction in (0,1]
}

// ColorPalette is the extracted color summary of an image. Colors is ordered
// by descending frequency; Dominant always equals Colors[0].Color when the
// palette is non-empty.
type ColorPalette struct {
	Dominant    Color          `json:"dominant"`
	Colors      []PaletteEntry `json:"colors"`
	Harmony     Harmony        `json:"harmony"`
	Temperature Temperature    `json:"temperature"`
}
