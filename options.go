package pinmaker

import (
	"runtime"
	"time"

	"github.com/kraftysprouts/pinmaker/analysis"
	"github.com/kraftysprouts/pinmaker/detect"
	"github.com/kraftysprouts/pinmaker/internal/logger"
	"github.com/kraftysprouts/pinmaker/stock"
	"github.com/kraftysprouts/pinmaker/store"
)

// Option configures a Service.
type Option func(*settings)

type settings struct {
	log        *logger.Logger
	store      store.Store
	recognizer detect.Recognizer
	searcher   stock.Searcher
	fontFile   string
	workers    int
	queueDepth int
	timeout    time.Duration
	retention  time.Duration
	weights    analysis.ConfidenceWeights
	sweepSpec  string
}

func defaultSettings() settings {
	return settings{
		workers:    runtime.GOMAXPROCS(0),
		queueDepth: 32,
		timeout:    120 * time.Second,
		retention:  24 * time.Hour,
		weights:    analysis.DefaultConfidenceWeights(),
		sweepSpec:  "@every 1h",
	}
}

// WithLogger sets the logger. The default discards all output.
func WithLogger(log *logger.Logger) Option {
	return func(s *settings) { s.log = log }
}

// WithStore sets the artifact store. The default is an in-memory store.
func WithStore(st store.Store) Option {
	return func(s *settings) { s.store = st }
}

// WithRecognizer sets the OCR engine used by text detection. Without one
// the text stage is recorded as failed and analysis degrades gracefully.
func WithRecognizer(rec detect.Recognizer) Option {
	return func(s *settings) { s.recognizer = rec }
}

// WithSearcher sets the stock image searcher for preview bindings of the
// form "search:<term>". The default serves deterministic synthetic images.
func WithSearcher(sr stock.Searcher) Option {
	return func(s *settings) { s.searcher = sr }
}

// WithFontFile sets the TrueType font used to draw preview text. Without
// one, text elements are laid out but not painted.
func WithFontFile(path string) Option {
	return func(s *settings) { s.fontFile = path }
}

// WithWorkers sets the worker pool size for analysis and rendering.
func WithWorkers(n int) Option {
	return func(s *settings) { s.workers = n }
}

// WithQueueDepth sets the backpressure threshold. Submissions beyond it
// are rejected with ResourceExhaustedError after one internal retry.
func WithQueueDepth(n int) Option {
	return func(s *settings) { s.queueDepth = n }
}

// WithTimeout bounds one analysis run end to end.
func WithTimeout(d time.Duration) Option {
	return func(s *settings) { s.timeout = d }
}

// WithRetention sets how long analysis results stay retrievable.
func WithRetention(d time.Duration) Option {
	return func(s *settings) { s.retention = d }
}

// WithConfidenceWeights sets the stage weights for aggregate confidence.
func WithConfidenceWeights(w analysis.ConfidenceWeights) Option {
	return func(s *settings) { s.weights = w }
}

// WithSweepSchedule sets the cron expression for store retention sweeps.
// An empty schedule disables sweeping.
func WithSweepSchedule(spec string) Option {
	return func(s *settings) { s.sweepSpec = spec }
}
