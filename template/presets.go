package template

import "github.com/kraftysprouts/pinmaker/model"

// StylePreset is a named set of visual defaults applied at synthesis time.
// Presets fill in attributes the analysis could not recover, such as the
// font family, and provide fallback colors when a stage failed.
type StylePreset struct {
	Name            string
	BackgroundColor model.Color
	PrimaryColor    model.Color
	SecondaryColor  model.Color
	TextColor       model.Color
	FontFamily      string
	BorderRadius    float64
	Padding         float64
}

var presets = map[string]StylePreset{
	"modern": {
		Name:            "modern",
		BackgroundColor: model.Color{R: 0xff, G: 0xff, B: 0xff},
		PrimaryColor:    model.Color{R: 0x21, G: 0x96, B: 0xf3},
		SecondaryColor:  model.Color{R: 0xff, G: 0xc1, B: 0x07},
		TextColor:       model.Color{R: 0x33, G: 0x33, B: 0x33},
		FontFamily:      "Arial",
		BorderRadius:    8,
		Padding:         20,
	},
	"minimal": {
		Name:            "minimal",
		BackgroundColor: model.Color{R: 0xf8, G: 0xf9, B: 0xfa},
		PrimaryColor:    model.Color{R: 0x6c, G: 0x75, B: 0x7d},
		SecondaryColor:  model.Color{R: 0xe9, G: 0xec, B: 0xef},
		TextColor:       model.Color{R: 0x21, G: 0x25, B: 0x29},
		FontFamily:      "Helvetica",
		BorderRadius:    0,
		Padding:         30,
	},
	"vibrant": {
		Name:            "vibrant",
		BackgroundColor: model.Color{R: 0xff, G: 0x6b, B: 0x6b},
		PrimaryColor:    model.Color{R: 0x4e, G: 0xcd, B: 0xc4},
		SecondaryColor:  model.Color{R: 0x45, G: 0xb7, B: 0xd1},
		TextColor:       model.Color{R: 0xff, G: 0xff, B: 0xff},
		FontFamily:      "Impact",
		BorderRadius:    15,
		Padding:         15,
	},
}

// PresetNames lists the available style presets.
func PresetNames() []string {
	return []string{"minimal", "modern", "vibrant"}
}

// Preset returns the named style preset, falling back to "modern" for
// unknown names.
func Preset(name string) StylePreset {
	if p, ok := presets[name]; ok {
		return p
	}
	return presets["modern"]
}
