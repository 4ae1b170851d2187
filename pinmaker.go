// Package pinmaker turns source images into editable, regenerable design
// templates. An image is analyzed for text, color, and layout; the result
// is synthesized into a versioned template of addressable elements;
// templates accept partial customizations and render deterministic
// previews with sample content.
//
// Basic usage:
//
//	svc, err := pinmaker.New()
//	if err != nil {
//	    // handle error
//	}
//	defer svc.Close()
//
//	res, err := svc.AnalyzeImage(ctx, imageBytes)
//	tpl, err := svc.GenerateTemplate(ctx, res.ID, pinmaker.TemplateOptions{Style: "modern"})
//	tpl, err = svc.UpdateTemplate(ctx, tpl.ID, pinmaker.Mutation{
//	    "text_0": {"content": "New Title"},
//	})
//	art, err := svc.GeneratePreview(ctx, tpl.ID, nil, pinmaker.PreviewOptions{})
package pinmaker

import (
	"context"
	"errors"
	"time"

	ggtext "github.com/gogpu/gg/text"

	"github.com/kraftysprouts/pinmaker/analysis"
	"github.com/kraftysprouts/pinmaker/internal/logger"
	"github.com/kraftysprouts/pinmaker/internal/pool"
	"github.com/kraftysprouts/pinmaker/model"
	pkgerrors "github.com/kraftysprouts/pinmaker/pkg/errors"
	"github.com/kraftysprouts/pinmaker/preview"
	"github.com/kraftysprouts/pinmaker/reader"
	"github.com/kraftysprouts/pinmaker/stock"
	"github.com/kraftysprouts/pinmaker/store"
	"github.com/kraftysprouts/pinmaker/template"
)

// Mutation is re-exported for callers of UpdateTemplate.
type Mutation = template.Mutation

// TemplateOptions is re-exported for callers of GenerateTemplate.
type TemplateOptions = template.SynthesizeOptions

// PreviewOptions is re-exported for callers of GeneratePreview.
type PreviewOptions = preview.Options

// Binding is re-exported for callers of GeneratePreview.
type Binding = preview.Binding

// retryBackoff is the pause before the single internal retry after a
// transient capacity rejection.
const retryBackoff = 50 * time.Millisecond

// Service is the top-level entry point. Detection and rendering resources
// are initialized once and shared read-only across concurrent requests.
type Service struct {
	log          *logger.Logger
	store        store.Store
	ownsStore    bool
	pool         *pool.Pool
	orchestrator *analysis.Orchestrator
	synthesizer  *template.Synthesizer
	mutator      *template.Mutator
	renderer     *preview.Renderer
	janitor      *store.Janitor
}

// New creates a Service. With no options it runs fully in memory with no
// OCR engine attached.
func New(opts ...Option) (*Service, error) {
	s := defaultSettings()
	for _, opt := range opts {
		opt(&s)
	}

	log := s.log
	if log == nil {
		log = logger.Discard()
	}

	st := s.store
	ownsStore := false
	if st == nil {
		st = store.NewMemory()
		ownsStore = true
	}

	var fonts *ggtext.FontSource
	if s.fontFile != "" {
		var err error
		fonts, err = ggtext.NewFontSourceFromFile(s.fontFile)
		if err != nil {
			return nil, pkgerrors.NewInvalidInputError("load font file", err)
		}
	}

	searcher := s.searcher
	if searcher == nil {
		searcher = stock.NewStaticSearcher(10)
	}

	orch := analysis.New(s.recognizer, st, log, analysis.Config{
		Timeout:   s.timeout,
		Retention: s.retention,
		Weights:   s.weights,
	})

	svc := &Service{
		log:          log,
		store:        st,
		ownsStore:    ownsStore,
		pool:         pool.New(s.workers, s.queueDepth),
		orchestrator: orch,
		synthesizer:  template.NewSynthesizer(orch, st, log),
		mutator:      template.NewMutator(st, log),
		renderer:     preview.NewRenderer(st, searcher, fonts, log),
	}

	if sw, ok := st.(store.Sweeper); ok && s.sweepSpec != "" {
		j, err := store.NewJanitor(sw, s.sweepSpec, func(removed int, err error) {
			if err != nil {
				log.WithFields(map[string]any{"error": err.Error()}).Warn("retention sweep failed")
			} else if removed > 0 {
				log.WithFields(map[string]any{"removed": removed}).Debug("retention sweep")
			}
		})
		if err != nil {
			return nil, err
		}
		svc.janitor = j
		j.Start()
	}
	return svc, nil
}

// AnalyzeImage decodes and analyzes an image, returning the persisted
// analysis result. Undecodable input fails immediately with
// InvalidInputError; a full worker queue is retried once internally before
// surfacing ResourceExhaustedError.
func (s *Service) AnalyzeImage(ctx context.Context, data []byte) (*model.AnalysisResult, error) {
	if len(data) == 0 {
		return nil, pkgerrors.NewInvalidInputError("empty image data", nil)
	}
	img, _, err := reader.Decode(data)
	if err != nil {
		return nil, pkgerrors.NewInvalidInputError("decode image", err)
	}

	var res *model.AnalysisResult
	err = s.submit(ctx, func(ctx context.Context) error {
		var runErr error
		res, runErr = s.orchestrator.Analyze(ctx, img)
		return runErr
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

// GetAnalysis retrieves a persisted analysis result by id.
func (s *Service) GetAnalysis(ctx context.Context, analysisID string) (*model.AnalysisResult, error) {
	return s.orchestrator.Get(ctx, analysisID)
}

// GenerateTemplate synthesizes a version 0 template from an analysis.
func (s *Service) GenerateTemplate(ctx context.Context, analysisID string, opts TemplateOptions) (*model.Template, error) {
	return s.synthesizer.Synthesize(ctx, analysisID, opts)
}

// GetTemplate retrieves the latest version of a template.
func (s *Service) GetTemplate(ctx context.Context, templateID string) (*model.Template, error) {
	return s.synthesizer.Get(ctx, templateID)
}

// GetTemplateVersion retrieves a specific template version.
func (s *Service) GetTemplateVersion(ctx context.Context, templateID string, version int) (*model.Template, error) {
	return s.synthesizer.GetVersion(ctx, templateID, version)
}

// UpdateTemplate applies a mutation to the latest template version,
// producing and persisting the next version. The mutation is atomic:
// any stale element reference rejects the whole request.
func (s *Service) UpdateTemplate(ctx context.Context, templateID string, m Mutation) (*model.Template, error) {
	return s.mutator.Update(ctx, templateID, m)
}

// GeneratePreview renders the latest version of a template with the given
// bindings. Render work runs on the shared worker pool with backpressure.
func (s *Service) GeneratePreview(ctx context.Context, templateID string, bindings Binding, opts PreviewOptions) (*preview.Artifact, error) {
	t, err := s.synthesizer.Get(ctx, templateID)
	if err != nil {
		return nil, err
	}

	var art *preview.Artifact
	err = s.submit(ctx, func(ctx context.Context) error {
		var renderErr error
		art, renderErr = s.renderer.Render(ctx, t, bindings, opts)
		return renderErr
	})
	if err != nil {
		return nil, err
	}
	return art, nil
}

// FetchArtifact returns the raw bytes of a rendered preview.
func (s *Service) FetchArtifact(ctx context.Context, artifactID string) ([]byte, error) {
	return s.renderer.Fetch(ctx, artifactID)
}

// submit runs fn on the worker pool, retrying once with backoff when the
// queue is momentarily full before surfacing ResourceExhaustedError.
func (s *Service) submit(ctx context.Context, fn func(ctx context.Context) error) error {
	err := s.pool.Do(ctx, fn)
	if !errors.Is(err, pool.ErrQueueFull) {
		return err
	}

	select {
	case <-time.After(retryBackoff):
	case <-ctx.Done():
		return ctx.Err()
	}

	err = s.pool.Do(ctx, fn)
	if errors.Is(err, pool.ErrQueueFull) {
		return pkgerrors.NewResourceExhaustedError(s.pool.QueueDepth())
	}
	return err
}

// Close releases the worker pool, the retention janitor, and the store if
// the service created it.
func (s *Service) Close() error {
	if s.janitor != nil {
		s.janitor.Stop()
	}
	s.pool.Close()
	if s.ownsStore {
		return s.store.Close()
	}
	return nil
}
