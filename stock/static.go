package stock

import (
	"context"
	"hash/fnv"
	"image"
	"image/color"
	"sort"
	"strings"

	"golang.org/x/time/rate"

	"github.com/kraftysprouts/pinmaker/model"
)

// StaticSearcher serves deterministic synthetic images keyed by search
// term. The same term and dimensions always produce the same pixels, which
// keeps preview output byte-stable across runs. A rate limiter bounds how
// fast callers may issue searches, matching the shape of a real stock API
// client.
type StaticSearcher struct {
	limiter *rate.Limiter
}

// NewStaticSearcher returns a searcher allowing up to perSecond searches
// per second with a small burst. perSecond <= 0 disables limiting.
func NewStaticSearcher(perSecond float64) *StaticSearcher {
	var lim *rate.Limiter
	if perSecond > 0 {
		lim = rate.NewLimiter(rate.Limit(perSecond), 5)
	}
	return &StaticSearcher{limiter: lim}
}

// Search renders a synthetic gradient image themed by term. It blocks on
// the rate limiter and honors ctx cancellation while waiting.
func (s *StaticSearcher) Search(ctx context.Context, term string, width, height int) (image.Image, error) {
	if s.limiter != nil {
		if err := s.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}
	if width <= 0 || height <= 0 {
		return nil, nil
	}

	top, bottom := themeColors(term)
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		t := float64(y) / float64(max(height-1, 1))
		c := color.RGBA{
			R: lerp(top.R, bottom.R, t),
			G: lerp(top.G, bottom.G, t),
			B: lerp(top.B, bottom.B, t),
			A: 0xff,
		}
		for x := 0; x < width; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	return img, nil
}

// themeColors picks the gradient pair for a term. Known themes match by
// substring; anything else hashes onto the theme table so unknown terms
// still vary.
func themeColors(term string) (model.Color, model.Color) {
	lower := strings.ToLower(strings.TrimSpace(term))

	names := make([]string, 0, len(palettes))
	for name := range palettes {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		if strings.Contains(lower, name) {
			p := palettes[name]
			return p[0], p[1]
		}
	}

	h := fnv.New32a()
	h.Write([]byte(lower))
	p := palettes[names[int(h.Sum32())%len(names)]]
	return p[0], p[1]
}

func lerp(a, b uint8, t float64) uint8 {
	return uint8(float64(a) + (float64(b)-float64(a))*t)
}
