package template

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/kraftysprouts/pinmaker/internal/logger"
	"github.com/kraftysprouts/pinmaker/model"
	pkgerrors "github.com/kraftysprouts/pinmaker/pkg/errors"
	"github.com/kraftysprouts/pinmaker/store"
)

// Mutation is a sparse update request: element id to field to new value.
type Mutation map[string]map[string]string

// Mutator applies mutations to templates. Concurrent updates against the
// same template id serialize on a per-template lock so the version sequence
// stays consistent; updates to different templates proceed independently.
type Mutator struct {
	store store.Store
	log   *logger.Logger
	now   func() time.Time

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewMutator returns a mutator persisting template versions to st.
func NewMutator(st store.Store, log *logger.Logger) *Mutator {
	if log == nil {
		log = logger.Discard()
	}
	return &Mutator{
		store: st,
		log:   log,
		now:   time.Now,
		locks: make(map[string]*sync.Mutex),
	}
}

func (m *Mutator) lockFor(id string) *sync.Mutex {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.locks[id]
	if !ok {
		l = &sync.Mutex{}
		m.locks[id] = l
	}
	return l
}

// Update applies mutation to the latest version of the template and
// persists the resulting version. The whole mutation is validated before
// any override is recorded: a single missing element id rejects the entire
// request with StaleElementReferenceError and leaves the stored template
// untouched. On success the version increments by one and the document is
// regenerated from the base elements plus the full cumulative override
// list.
func (m *Mutator) Update(ctx context.Context, templateID string, mutation Mutation) (*model.Template, error) {
	if len(mutation) == 0 {
		return nil, pkgerrors.NewInvalidInputError("empty mutation", nil)
	}

	lock := m.lockFor(templateID)
	lock.Lock()
	defer lock.Unlock()

	t, err := load(ctx, m.store, templateKey(templateID), templateID)
	if err != nil {
		return nil, err
	}

	pending, err := m.validate(t, mutation)
	if err != nil {
		return nil, err
	}

	next := t.Clone()
	next.Version++
	next.CreatedAt = m.now()
	for i := range pending {
		pending[i].Version = next.Version
	}
	next.Overrides = append(next.Overrides, pending...)
	next.Document = GenerateDocument(next, EffectiveElements(next.Elements, next.Overrides))

	if err := persist(ctx, m.store, next); err != nil {
		return nil, err
	}
	m.log.WithFields(map[string]any{
		"template_id": templateID,
		"version":     next.Version,
		"overrides":   len(pending),
	}).Info("template updated")
	return next, nil
}

// validate checks every (target, field, value) triple up front and returns
// the override records in deterministic order. Missing targets are
// collected so the error names all of them at once. Duplicate (target,
// field) pairs within one mutation cannot occur since the request is a
// nested map; map iteration order is hidden by sorting.
func (m *Mutator) validate(t *model.Template, mutation Mutation) ([]model.Override, error) {
	targets := make([]string, 0, len(mutation))
	for target := range mutation {
		targets = append(targets, target)
	}
	sort.Strings(targets)

	var missing []string
	for _, target := range targets {
		if !t.HasElement(target) {
			missing = append(missing, target)
		}
	}
	if len(missing) > 0 {
		return nil, pkgerrors.NewStaleElementReferenceError(t.ID, missing)
	}

	var pending []model.Override
	for _, target := range targets {
		fields := make([]string, 0, len(mutation[target]))
		for field := range mutation[target] {
			fields = append(fields, field)
		}
		sort.Strings(fields)

		for _, field := range fields {
			ov := model.Override{Target: target, Field: CanonicalField(field), Value: mutation[target][field]}
			if err := validateOverride(t, ov); err != nil {
				return nil, err
			}
			pending = append(pending, ov)
		}
	}
	return pending, nil
}
