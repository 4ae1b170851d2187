// Package preview rasterizes templates with sample content bound into
// their placeholders. Rendering is deterministic: the same template
// version, bindings, and options always produce byte-identical output,
// which makes previews cacheable by a composite key.
package preview

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"image"
	"sort"
	"strings"
	"time"

	"github.com/gogpu/gg"
	ggtext "github.com/gogpu/gg/text"
	xdraw "golang.org/x/image/draw"

	"github.com/kraftysprouts/pinmaker/format"
	"github.com/kraftysprouts/pinmaker/internal/logger"
	"github.com/kraftysprouts/pinmaker/model"
	pkgerrors "github.com/kraftysprouts/pinmaker/pkg/errors"
	"github.com/kraftysprouts/pinmaker/stock"
	"github.com/kraftysprouts/pinmaker/store"
	"github.com/kraftysprouts/pinmaker/template"
)

// Binding maps element ids to sample values. Text elements take literal
// strings; image elements take either "#rrggbb" for a solid fill or
// "search:<term>" to resolve a stock image.
type Binding map[string]string

// Options control one render.
type Options struct {
	Format  format.Format
	Quality int // JPEG only, 1-100
	Width   int
	Height  int
}

// DefaultOptions renders PNG at the template's own dimensions.
func DefaultOptions() Options {
	return Options{Format: format.PNG, Quality: 85}
}

// Artifact is one rendered preview.
type Artifact struct {
	ID     string        `json:"id"`
	Format format.Format `json:"format"`
	Width  int           `json:"width"`
	Height int           `json:"height"`
	Data   []byte        `json:"-"`
}

// Renderer rasterizes templates. It is safe for concurrent use; the font
// source and stock searcher are shared read-only.
type Renderer struct {
	store  store.Store
	stock  stock.Searcher
	fonts  *ggtext.FontSource
	log    *logger.Logger
	now    func() time.Time
	expiry time.Duration
}

// NewRenderer returns a renderer caching artifacts in st. fonts may be nil,
// in which case text is positioned but not drawn; searcher may be nil, in
// which case stock bindings degrade to the neutral placeholder.
func NewRenderer(st store.Store, searcher stock.Searcher, fonts *ggtext.FontSource, log *logger.Logger) *Renderer {
	if log == nil {
		log = logger.Discard()
	}
	return &Renderer{
		store:  st,
		stock:  searcher,
		fonts:  fonts,
		log:    log,
		now:    time.Now,
		expiry: 24 * time.Hour,
	}
}

// Render rasterizes the template with the given bindings. Identical
// (template version, bindings, options) inputs return the cached artifact.
func (r *Renderer) Render(ctx context.Context, t *model.Template, bindings Binding, opts Options) (*Artifact, error) {
	if opts.Width <= 0 || opts.Height <= 0 {
		opts.Width, opts.Height = t.Width, t.Height
	}
	if opts.Quality <= 0 || opts.Quality > 100 {
		opts.Quality = 85
	}
	if opts.Format != format.PNG && opts.Format != format.JPEG {
		return nil, pkgerrors.NewInvalidInputError(
			fmt.Sprintf("unsupported preview format %s", opts.Format), nil)
	}

	id := artifactID(t, bindings, opts)
	if data, err := r.store.Get(ctx, artifactKey(id)); err == nil {
		return &Artifact{ID: id, Format: opts.Format, Width: opts.Width, Height: opts.Height, Data: data}, nil
	}

	data, err := r.rasterize(ctx, t, bindings, opts)
	if err != nil {
		return nil, pkgerrors.NewRenderFailureError(t.ID, err)
	}

	if err := r.store.Put(ctx, artifactKey(id), data, r.expiry); err != nil {
		return nil, err
	}
	r.log.WithFields(map[string]any{
		"template_id": t.ID,
		"artifact_id": id,
		"format":      opts.Format.String(),
		"bytes":       len(data),
	}).Info("preview rendered")
	return &Artifact{ID: id, Format: opts.Format, Width: opts.Width, Height: opts.Height, Data: data}, nil
}

// Fetch returns a previously rendered artifact by id.
func (r *Renderer) Fetch(ctx context.Context, id string) ([]byte, error) {
	data, err := r.store.Get(ctx, artifactKey(id))
	if err != nil {
		if err == store.ErrNotFound {
			return nil, pkgerrors.NewArtifactNotFoundError(id)
		}
		return nil, err
	}
	return data, nil
}

func (r *Renderer) rasterize(ctx context.Context, t *model.Template, bindings Binding, opts Options) ([]byte, error) {
	dc := gg.NewContext(opts.Width, opts.Height)
	sx := float64(opts.Width) / float64(t.Width)
	sy := float64(opts.Height) / float64(t.Height)

	elements := template.EffectiveElements(t.Elements, t.Overrides)
	sort.SliceStable(elements, func(i, j int) bool {
		return zRank(elements[i].Kind) < zRank(elements[j].Kind)
	})

	for _, el := range elements {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		box := scaledBox(el.BBox, sx, sy)
		switch el.Kind {
		case model.KindBackground:
			r.drawBackground(ctx, dc, el, opts, bindings)
		case model.KindImage:
			r.drawImage(ctx, dc, el, box, bindings)
		case model.KindText:
			r.drawText(dc, el, box, sy, bindings)
		}
	}

	var buf bytes.Buffer
	switch opts.Format {
	case format.JPEG:
		if err := dc.EncodeJPEG(&buf, opts.Quality); err != nil {
			return nil, err
		}
	default:
		if err := dc.EncodePNG(&buf); err != nil {
			return nil, err
		}
	}
	return buf.Bytes(), nil
}

func (r *Renderer) drawBackground(ctx context.Context, dc *gg.Context, el model.TemplateElement, opts Options, bindings Binding) {
	full := model.BBox{Width: float64(opts.Width), Height: float64(opts.Height)}
	if el.Placeholder != "" {
		r.drawImage(ctx, dc, el, full, bindings)
		return
	}
	c := el.Style.Color
	dc.SetRGB(float64(c.R)/255, float64(c.G)/255, float64(c.B)/255)
	dc.DrawRectangle(0, 0, float64(opts.Width), float64(opts.Height))
	dc.Fill()
}

// drawImage paints an image element from its binding. A "#rrggbb" value is
// a solid fill, "search:<term>" resolves a stock image, and anything
// missing or unresolvable falls back to a neutral dashed placeholder so
// the render never fails on content.
func (r *Renderer) drawImage(ctx context.Context, dc *gg.Context, el model.TemplateElement, box model.BBox, bindings Binding) {
	value := bindings[el.ID]

	if c, err := model.ParseHex(value); err == nil && value != "" {
		dc.SetRGB(float64(c.R)/255, float64(c.G)/255, float64(c.B)/255)
		fillBox(dc, box, el.Style.BorderRadius)
		return
	}

	if term, ok := strings.CutPrefix(value, "search:"); ok && r.stock != nil {
		img, err := r.stock.Search(ctx, term, int(box.Width), int(box.Height))
		if err == nil && img != nil {
			r.blitImage(dc, img, box)
			return
		}
		if err != nil {
			r.log.WithFields(map[string]any{"term": term, "error": err.Error()}).Warn("stock search failed")
		}
	}

	placeholderBox(dc, box)
}

func (r *Renderer) blitImage(dc *gg.Context, img image.Image, box model.BBox) {
	w, h := int(box.Width), int(box.Height)
	if w <= 0 || h <= 0 {
		return
	}
	scaled := image.NewRGBA(image.Rect(0, 0, w, h))
	xdraw.BiLinear.Scale(scaled, scaled.Bounds(), img, img.Bounds(), xdraw.Over, nil)
	dc.DrawImage(gg.ImageBufFromImage(scaled), box.X, box.Y)
}

func (r *Renderer) drawText(dc *gg.Context, el model.TemplateElement, box model.BBox, sy float64, bindings Binding) {
	content := bindings[el.ID]
	if content == "" {
		content = el.Content
	}
	if content == "" {
		content = defaultTextContent
	}

	if r.fonts != nil {
		size := el.Style.FontSize * sy
		if size <= 0 {
			size = 16
		}
		dc.SetFont(r.fonts.Face(size))
	}

	c := el.Style.Color
	dc.SetRGB(float64(c.R)/255, float64(c.G)/255, float64(c.B)/255)

	switch el.Style.Alignment {
	case model.AlignCenter:
		dc.DrawStringAnchored(content, box.X+box.Width/2, box.Bottom(), 0.5, 0)
	case model.AlignRight:
		dc.DrawStringAnchored(content, box.Right(), box.Bottom(), 1, 0)
	default:
		dc.DrawString(content, box.X, box.Bottom())
	}
}

// placeholderBox draws the neutral fallback for missing image content: a
// light gray fill with a dashed border.
func placeholderBox(dc *gg.Context, box model.BBox) {
	dc.SetRGB(0.85, 0.85, 0.85)
	dc.DrawRectangle(box.X, box.Y, box.Width, box.Height)
	dc.Fill()

	dc.SetRGB(0.6, 0.6, 0.6)
	dc.SetLineWidth(2)
	dc.SetDash(6, 4)
	dc.DrawRectangle(box.X+1, box.Y+1, box.Width-2, box.Height-2)
	dc.Stroke()
	dc.ClearDash()
}

func fillBox(dc *gg.Context, box model.BBox, radius float64) {
	if radius > 0 {
		dc.DrawRoundedRectangle(box.X, box.Y, box.Width, box.Height, radius)
	} else {
		dc.DrawRectangle(box.X, box.Y, box.Width, box.Height)
	}
	dc.Fill()
}

func scaledBox(b model.BBox, sx, sy float64) model.BBox {
	return model.BBox{X: b.X * sx, Y: b.Y * sy, Width: b.Width * sx, Height: b.Height * sy}
}

func zRank(k model.ElementKind) int {
	switch k {
	case model.KindBackground:
		return 0
	case model.KindImage:
		return 1
	default:
		return 2
	}
}

// SubstituteDocument returns the template's vector document with every
// placeholder token replaced by its bound value, falling back to element
// content and then the per-kind default. Useful for inspecting what a
// render will show without rasterizing.
func SubstituteDocument(t *model.Template, bindings Binding) string {
	doc := t.Document
	for _, el := range template.EffectiveElements(t.Elements, t.Overrides) {
		if el.Placeholder == "" {
			continue
		}
		value := bindings[el.ID]
		if value == "" {
			value = el.Content
		}
		if value == "" && el.Kind == model.KindText {
			value = defaultTextContent
		}
		doc = strings.ReplaceAll(doc, el.Placeholder, value)
	}
	return doc
}

// artifactID derives the cache key from everything that affects the output
// bytes.
func artifactID(t *model.Template, bindings Binding, opts Options) string {
	h := sha256.New()
	fmt.Fprintf(h, "%s|%d|%d|%d|%d|%d\n", t.ID, t.Version, opts.Format, opts.Quality, opts.Width, opts.Height)

	keys := make([]string, 0, len(bindings))
	for k := range bindings {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	enc := json.NewEncoder(h)
	for _, k := range keys {
		_ = enc.Encode([2]string{k, bindings[k]})
	}
	return hex.EncodeToString(h.Sum(nil)[:16])
}

func artifactKey(id string) string {
	return "preview/" + id
}
