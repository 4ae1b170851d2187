// Package analysis coordinates the image analysis pipeline. The text and
// color stages run concurrently; the layout stage runs after both, since
// region role assignment anchors on detected text. Individual stage
// failures degrade the result rather than failing the whole analysis.
package analysis

import (
	"context"
	"encoding/json"
	"fmt"
	"image"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/kraftysprouts/pinmaker/detect"
	"github.com/kraftysprouts/pinmaker/internal/logger"
	"github.com/kraftysprouts/pinmaker/layout"
	"github.com/kraftysprouts/pinmaker/model"
	"github.com/kraftysprouts/pinmaker/palette"
	pkgerrors "github.com/kraftysprouts/pinmaker/pkg/errors"
	"github.com/kraftysprouts/pinmaker/store"
)

// ConfidenceWeights controls how stage confidences combine into the
// aggregate score. Weights are relative; they are normalized over the
// stages that actually ran.
type ConfidenceWeights struct {
	Text   float64
	Color  float64
	Layout float64
}

// DefaultConfidenceWeights weighs text detection highest since downstream
// template synthesis depends most on it. Color extraction is deterministic
// and always fully confident when it runs.
func DefaultConfidenceWeights() ConfidenceWeights {
	return ConfidenceWeights{Text: 0.5, Color: 0.2, Layout: 0.3}
}

// Config holds orchestrator settings.
type Config struct {
	// Timeout bounds a single analysis run end to end.
	Timeout time.Duration

	// Retention is how long persisted analysis results remain
	// retrievable.
	Retention time.Duration

	Weights ConfidenceWeights
}

// DefaultConfig returns the standard orchestrator configuration.
func DefaultConfig() Config {
	return Config{
		Timeout:   120 * time.Second,
		Retention: 24 * time.Hour,
		Weights:   DefaultConfidenceWeights(),
	}
}

// Orchestrator runs the analysis pipeline and persists results.
type Orchestrator struct {
	cfg      Config
	detector *detect.Detector
	colors   *palette.Analyzer
	layouts  *layout.Analyzer
	store    store.Store
	log      *logger.Logger
	newID    func() string
	now      func() time.Time
}

// New returns an orchestrator with default stage configurations. The
// detector's recognizer may be nil, in which case the text stage is
// recorded as failed and analysis proceeds on the remaining stages.
func New(rec detect.Recognizer, st store.Store, log *logger.Logger, cfg Config) *Orchestrator {
	if log == nil {
		log = logger.Discard()
	}
	return &Orchestrator{
		cfg:      cfg,
		detector: detect.New(rec),
		colors:   palette.New(),
		layouts:  layout.New(),
		store:    st,
		log:      log,
		newID:    func() string { return uuid.NewString() },
		now:      time.Now,
	}
}

type textOutcome struct {
	elements []model.TextElement
	err      error
}

type colorOutcome struct {
	palette    model.ColorPalette
	background model.BackgroundInfo
	err        error
}

// Analyze runs the full pipeline over img and persists the result. The
// returned error is an AnalysisTimeoutError when the configured deadline
// elapses, and non-nil only when every stage fails or the run is cut short.
func (o *Orchestrator) Analyze(ctx context.Context, img image.Image) (*model.AnalysisResult, error) {
	ctx, cancel := context.WithTimeout(ctx, o.cfg.Timeout)
	defer cancel()

	start := o.now()
	res := &model.AnalysisResult{
		ID:        o.newID(),
		Info:      describeImage(img),
		CreatedAt: start,
	}

	var (
		wg    sync.WaitGroup
		text  textOutcome
		color colorOutcome
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		text.elements, text.err = o.detector.Detect(ctx, img)
	}()
	go func() {
		defer wg.Done()
		color.palette, color.err = o.colors.Analyze(ctx, img)
		if color.err == nil {
			color.background = palette.AnalyzeBackground(img)
		}
	}()
	wg.Wait()

	if err := o.checkDeadline(ctx); err != nil {
		return nil, err
	}

	switch {
	case text.err != nil:
		res.Stages.Text = model.StatusFailed
		o.log.WithFields(map[string]any{"error": text.err.Error()}).Warn("text detection failed")
	case len(text.elements) == 0:
		// The stage ran but found nothing to work with.
		res.Stages.Text = model.StatusPartial
	default:
		res.Stages.Text = model.StatusSucceeded
		res.TextElements = text.elements
	}

	if color.err != nil {
		res.Stages.Color = model.StatusFailed
		o.log.WithFields(map[string]any{"error": color.err.Error()}).Warn("color analysis failed")
	} else {
		res.Stages.Color = model.StatusSucceeded
		res.Palette = color.palette
		res.Background = color.background
	}

	lay, layErr := o.layouts.Analyze(ctx, img, res.TextElements)
	if err := o.checkDeadline(ctx); err != nil {
		return nil, err
	}
	if layErr != nil {
		res.Stages.Layout = model.StatusFailed
		o.log.WithFields(map[string]any{"error": layErr.Error()}).Warn("layout analysis failed")
	} else {
		res.Stages.Layout = model.StatusSucceeded
		res.Layout = lay
		res.ImageRegions = layout.DetectImageRegions(img, lay, res.TextElements)
	}

	if res.Stages.AllFailed() {
		return nil, fmt.Errorf("analysis failed: text=%v color=%v layout=%v", text.err, color.err, layErr)
	}

	assignElementIDs(res)
	res.Confidence = o.aggregateConfidence(res)

	if err := o.persist(ctx, res); err != nil {
		return nil, err
	}

	o.log.WithFields(map[string]any{
		"analysis_id": res.ID,
		"elements":    len(res.TextElements),
		"regions":     len(res.ImageRegions),
		"layout":      res.Layout.Type.String(),
		"elapsed":     o.now().Sub(start).String(),
	}).Info("analysis complete")
	return res, nil
}

// Get retrieves a previously persisted analysis result.
func (o *Orchestrator) Get(ctx context.Context, id string) (*model.AnalysisResult, error) {
	data, err := o.store.Get(ctx, analysisKey(id))
	if err != nil {
		if err == store.ErrNotFound {
			return nil, pkgerrors.NewAnalysisNotFoundError(id)
		}
		return nil, err
	}
	var res model.AnalysisResult
	if err := json.Unmarshal(data, &res); err != nil {
		return nil, fmt.Errorf("decode analysis %s: %w", id, err)
	}
	return &res, nil
}

func (o *Orchestrator) checkDeadline(ctx context.Context) error {
	switch ctx.Err() {
	case context.DeadlineExceeded:
		return pkgerrors.NewAnalysisTimeoutError(o.cfg.Timeout)
	case context.Canceled:
		return ctx.Err()
	}
	return nil
}

func (o *Orchestrator) persist(ctx context.Context, res *model.AnalysisResult) error {
	data, err := json.Marshal(res)
	if err != nil {
		return fmt.Errorf("encode analysis %s: %w", res.ID, err)
	}
	if err := o.store.Put(ctx, analysisKey(res.ID), data, o.cfg.Retention); err != nil {
		return fmt.Errorf("persist analysis %s: %w", res.ID, err)
	}
	return nil
}

// aggregateConfidence combines per-stage confidences using the configured
// weights, normalized over the stages that did not fail. The color stage
// contributes full confidence since quantization has no uncertainty; a
// partial text stage contributes the neutral 0.5.
func (o *Orchestrator) aggregateConfidence(res *model.AnalysisResult) float64 {
	var sum, weight float64

	if res.Stages.Text != model.StatusFailed {
		sum += o.cfg.Weights.Text * meanTextConfidence(res.TextElements)
		weight += o.cfg.Weights.Text
	}
	if res.Stages.Color == model.StatusSucceeded {
		sum += o.cfg.Weights.Color * 1.0
		weight += o.cfg.Weights.Color
	}
	if res.Stages.Layout == model.StatusSucceeded {
		sum += o.cfg.Weights.Layout * res.Layout.Confidence
		weight += o.cfg.Weights.Layout
	}

	if weight == 0 {
		return 0
	}
	return sum / weight
}

func meanTextConfidence(elems []model.TextElement) float64 {
	if len(elems) == 0 {
		return 0.5
	}
	var sum float64
	for _, e := range elems {
		sum += e.Confidence
	}
	return sum / float64(len(elems))
}

// assignElementIDs gives every detected element a stable positional id.
// Text and image regions are numbered independently in detection order.
func assignElementIDs(res *model.AnalysisResult) {
	for i := range res.TextElements {
		res.TextElements[i].ID = fmt.Sprintf("text_%d", i)
	}
	for i := range res.ImageRegions {
		res.ImageRegions[i].ID = fmt.Sprintf("image_%d", i)
	}
}

func analysisKey(id string) string {
	return "analysis/" + id
}
