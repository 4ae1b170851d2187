// Package stock resolves stock image search terms to concrete images for
// preview rendering. Image bindings of the form "search:<term>" are looked
// up through a Searcher; the bundled static searcher produces deterministic
// synthetic images so previews remain reproducible without network access.
package stock

import (
	"context"
	"image"

	"github.com/kraftysprouts/pinmaker/model"
)

// Searcher finds a representative image for a free-text search term, sized
// to the given dimensions. Implementations should return a nil image with
// no error when the term matches nothing, so callers can fall back to a
// placeholder.
type Searcher interface {
	Search(ctx context.Context, term string, width, height int) (image.Image, error)
}

// palettes maps well-known search themes to the fill colors used by the
// static searcher. Terms outside this table hash onto it.
var palettes = map[string][2]model.Color{
	"nature":   {{R: 0x3a, G: 0x6b, B: 0x35}, {R: 0xa8, G: 0xc6, B: 0x86}},
	"food":     {{R: 0xc0, G: 0x5c, B: 0x2e}, {R: 0xf2, G: 0xd0, B: 0xa4}},
	"travel":   {{R: 0x1f, G: 0x6f, B: 0x8b}, {R: 0xe8, G: 0xdd, B: 0xb5}},
	"fashion":  {{R: 0x8b, G: 0x3a, B: 0x62}, {R: 0xe7, G: 0xc6, B: 0xd6}},
	"business": {{R: 0x2b, G: 0x3a, B: 0x55}, {R: 0xc9, G: 0xd3, B: 0xe0}},
	"abstract": {{R: 0x5b, G: 0x2c, B: 0x6f}, {R: 0xd7, G: 0xb9, B: 0xe4}},
}
