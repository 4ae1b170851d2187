// Package template turns analysis results into versioned, addressable
// templates and applies customizations to them. Templates are event
// sourced: the base elements of version 0 never change, edits accumulate
// as override records, and the vector document is always regenerated by
// replaying overrides onto the base.
package template

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/kraftysprouts/pinmaker/internal/logger"
	"github.com/kraftysprouts/pinmaker/model"
	pkgerrors "github.com/kraftysprouts/pinmaker/pkg/errors"
	"github.com/kraftysprouts/pinmaker/store"
)

// AnalysisSource provides persisted analysis results by id.
type AnalysisSource interface {
	Get(ctx context.Context, id string) (*model.AnalysisResult, error)
}

// imageBackgroundShare is the canvas fraction above which a detected image
// region becomes the template background instead of a solid fill.
const imageBackgroundShare = 0.60

// SynthesizeOptions control template synthesis.
type SynthesizeOptions struct {
	// Style names a preset; unknown names fall back to "modern".
	Style string

	// Width and Height set the template canvas. Zero keeps the source
	// image dimensions.
	Width  int
	Height int
}

// Synthesizer builds version 0 templates from analysis results.
type Synthesizer struct {
	analyses AnalysisSource
	store    store.Store
	log      *logger.Logger
	newID    func() string
	now      func() time.Time
}

// NewSynthesizer returns a synthesizer reading analyses from src and
// persisting templates to st.
func NewSynthesizer(src AnalysisSource, st store.Store, log *logger.Logger) *Synthesizer {
	if log == nil {
		log = logger.Discard()
	}
	return &Synthesizer{
		analyses: src,
		store:    st,
		log:      log,
		newID:    func() string { return uuid.NewString() },
		now:      time.Now,
	}
}

// Synthesize builds a template from the analysis with the given id. Every
// text element and image region becomes an addressable template element
// with a placeholder token; a background element is synthesized from the
// dominant color or, when a single image region dominates the canvas, from
// that region. Returns AnalysisNotFoundError when the analysis has expired
// or never existed.
func (s *Synthesizer) Synthesize(ctx context.Context, analysisID string, opts SynthesizeOptions) (*model.Template, error) {
	res, err := s.analyses.Get(ctx, analysisID)
	if err != nil {
		return nil, err
	}

	preset := Preset(opts.Style)
	width, height := opts.Width, opts.Height
	if width <= 0 || height <= 0 {
		width, height = res.Info.Width, res.Info.Height
	}
	sx := scale(width, res.Info.Width)
	sy := scale(height, res.Info.Height)

	t := &model.Template{
		ID:        s.newID(),
		Version:   0,
		BasedOn:   analysisID,
		Width:     width,
		Height:    height,
		CreatedAt: s.now(),
	}

	t.Elements = append(t.Elements, s.backgroundElement(res, preset, width, height))

	for i, te := range res.TextElements {
		id := fmt.Sprintf("text_%d", i)
		el := model.TemplateElement{
			ID:          id,
			Kind:        model.KindText,
			BBox:        scaleBBox(te.BBox, sx, sy),
			Placeholder: token(id),
			SourceID:    te.ID,
			Content:     te.Text,
			Style: model.Style{
				Color:      te.Color,
				FontFamily: preset.FontFamily,
				FontSize:   te.FontSize * sy,
				FontWeight: te.Weight,
				Alignment:  te.Alignment,
			},
		}
		if res.Stages.Text != model.StatusSucceeded || (el.Style.Color == model.Color{}) {
			el.Style.Color = preset.TextColor
		}
		t.Elements = append(t.Elements, el)
	}

	canvasArea := float64(res.Info.Width * res.Info.Height)
	for i, ir := range res.ImageRegions {
		if canvasArea > 0 && ir.BBox.Area()/canvasArea > imageBackgroundShare {
			continue // already the background
		}
		id := fmt.Sprintf("image_%d", i)
		t.Elements = append(t.Elements, model.TemplateElement{
			ID:          id,
			Kind:        model.KindImage,
			BBox:        scaleBBox(ir.BBox, sx, sy),
			Placeholder: token(id),
			SourceID:    ir.ID,
			Style: model.Style{
				Color:        preset.SecondaryColor,
				BorderRadius: preset.BorderRadius,
				Fit:          model.FitCover,
			},
		})
	}

	t.Document = GenerateDocument(t, t.Elements)

	if err := persist(ctx, s.store, t); err != nil {
		return nil, err
	}
	s.log.WithFields(map[string]any{
		"template_id": t.ID,
		"analysis_id": analysisID,
		"elements":    len(t.Elements),
		"style":       preset.Name,
	}).Info("template synthesized")
	return t, nil
}

// backgroundElement synthesizes the background. A dominating image region
// yields an image-backed background; otherwise the dominant palette color
// (or the preset's background when color analysis failed) fills the canvas.
func (s *Synthesizer) backgroundElement(res *model.AnalysisResult, preset StylePreset, width, height int) model.TemplateElement {
	el := model.TemplateElement{
		ID:   "background",
		Kind: model.KindBackground,
		BBox: model.BBox{X: 0, Y: 0, Width: float64(width), Height: float64(height)},
	}

	canvasArea := float64(res.Info.Width * res.Info.Height)
	for _, ir := range res.ImageRegions {
		if canvasArea > 0 && ir.BBox.Area()/canvasArea > imageBackgroundShare {
			el.Placeholder = token("background")
			el.SourceID = ir.ID
			el.Style.Fit = model.FitCover
			return el
		}
	}

	if res.Stages.Color == model.StatusSucceeded {
		el.Style.Color = res.Palette.Dominant
	} else {
		el.Style.Color = preset.BackgroundColor
	}
	return el
}

// Get retrieves the latest version of a template.
func (s *Synthesizer) Get(ctx context.Context, id string) (*model.Template, error) {
	return load(ctx, s.store, templateKey(id), id)
}

// GetVersion retrieves a specific template version.
func (s *Synthesizer) GetVersion(ctx context.Context, id string, version int) (*model.Template, error) {
	return load(ctx, s.store, versionKey(id, version), id)
}

func token(id string) string {
	return "{{" + id + "}}"
}

func scale(target, source int) float64 {
	if source <= 0 {
		return 1
	}
	return float64(target) / float64(source)
}

func scaleBBox(b model.BBox, sx, sy float64) model.BBox {
	return model.BBox{X: b.X * sx, Y: b.Y * sy, Width: b.Width * sx, Height: b.Height * sy}
}

func templateKey(id string) string {
	return "template/" + id
}

func versionKey(id string, version int) string {
	return fmt.Sprintf("template/%s@v%d", id, version)
}

// persist writes the template under both its latest key and its version
// key. Templates do not expire.
func persist(ctx context.Context, st store.Store, t *model.Template) error {
	data, err := json.Marshal(t)
	if err != nil {
		return fmt.Errorf("encode template %s: %w", t.ID, err)
	}
	if err := st.Put(ctx, versionKey(t.ID, t.Version), data, 0); err != nil {
		return fmt.Errorf("persist template %s v%d: %w", t.ID, t.Version, err)
	}
	if err := st.Put(ctx, templateKey(t.ID), data, 0); err != nil {
		return fmt.Errorf("persist template %s: %w", t.ID, err)
	}
	return nil
}

func load(ctx context.Context, st store.Store, key, id string) (*model.Template, error) {
	data, err := st.Get(ctx, key)
	if err != nil {
		if err == store.ErrNotFound {
			return nil, pkgerrors.NewTemplateNotFoundError(id)
		}
		return nil, err
	}
	var t model.Template
	if err := json.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("decode template %s: %w", key, err)
	}
	return &t, nil
}
