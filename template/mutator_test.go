package template

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kraftysprouts/pinmaker/model"
	pkgerrors "github.com/kraftysprouts/pinmaker/pkg/errors"
	"github.com/kraftysprouts/pinmaker/store"
)

func synthesized(t *testing.T) (*model.Template, *store.Memory) {
	t.Helper()
	s, st := newTestSynthesizer(sampleAnalysis("an-1"))
	tpl, err := s.Synthesize(context.Background(), "an-1", SynthesizeOptions{Style: "modern"})
	require.NoError(t, err)
	return tpl, st
}

func TestUpdateAppliesOverrides(t *testing.T) {
	tpl, st := synthesized(t)
	m := NewMutator(st, nil)

	next, err := m.Update(context.Background(), tpl.ID, Mutation{
		"text_0": {"content": "New Title", "color": "#ff0000"},
	})
	require.NoError(t, err)

	assert.Equal(t, 1, next.Version)
	require.Len(t, next.Overrides, 2)
	for _, ov := range next.Overrides {
		assert.Equal(t, "text_0", ov.Target)
		assert.Equal(t, 1, ov.Version)
	}

	// The base elements stay untouched; the effective state reflects the
	// overrides.
	base, _ := next.Element("text_0")
	assert.Equal(t, "Summer Sale", base.Content)

	effective := EffectiveElements(next.Elements, next.Overrides)
	for _, el := range effective {
		if el.ID == "text_0" {
			assert.Equal(t, "New Title", el.Content)
			assert.Equal(t, model.Color{R: 0xff}, el.Style.Color)
		}
	}
}

func TestUpdateAcceptsTextFieldAlias(t *testing.T) {
	tpl, st := synthesized(t)
	m := NewMutator(st, nil)

	next, err := m.Update(context.Background(), tpl.ID, Mutation{
		"text_0": {"text": "New Title"},
	})
	require.NoError(t, err)

	require.Len(t, next.Overrides, 1)
	assert.Equal(t, "content", next.Overrides[0].Field, "aliases are stored under the canonical name")

	effective := EffectiveElements(next.Elements, next.Overrides)
	for _, el := range effective {
		if el.ID == "text_0" {
			assert.Equal(t, "New Title", el.Content)
		}
	}
}

func TestUpdateIdempotentReapply(t *testing.T) {
	tpl, st := synthesized(t)
	m := NewMutator(st, nil)

	mutation := Mutation{
		"text_0": {"content": "New Title", "color": "#ff0000"},
	}
	v1, err := m.Update(context.Background(), tpl.ID, mutation)
	require.NoError(t, err)
	v2, err := m.Update(context.Background(), tpl.ID, mutation)
	require.NoError(t, err)

	// Re-applying the same mutation only advances the version; the
	// effective state and the generated document do not change.
	assert.Equal(t, v1.Version+1, v2.Version)
	assert.Equal(t, v1.Document, v2.Document)
	assert.Equal(t,
		EffectiveElements(v1.Elements, v1.Overrides),
		EffectiveElements(v2.Elements, v2.Overrides))
}

func TestUpdateRegeneratesDocumentFromBase(t *testing.T) {
	tpl, st := synthesized(t)
	m := NewMutator(st, nil)

	next, err := m.Update(context.Background(), tpl.ID, Mutation{
		"text_0": {"color": "#00ff00"},
	})
	require.NoError(t, err)

	assert.Contains(t, next.Document, "#00ff00")
	assert.Contains(t, next.Document, "{{text_0}}", "placeholders survive regeneration")

	// Regenerating from base plus overrides is pure: doing it again gives
	// the identical document.
	again := GenerateDocument(next, EffectiveElements(next.Elements, next.Overrides))
	assert.Equal(t, next.Document, again)
}

func TestUpdateAccumulatesAcrossVersions(t *testing.T) {
	tpl, st := synthesized(t)
	m := NewMutator(st, nil)

	_, err := m.Update(context.Background(), tpl.ID, Mutation{"text_0": {"content": "First"}})
	require.NoError(t, err)
	v2, err := m.Update(context.Background(), tpl.ID, Mutation{"text_1": {"content": "Second"}})
	require.NoError(t, err)

	assert.Equal(t, 2, v2.Version)
	require.Len(t, v2.Overrides, 2)

	effective := EffectiveElements(v2.Elements, v2.Overrides)
	got := map[string]string{}
	for _, el := range effective {
		got[el.ID] = el.Content
	}
	assert.Equal(t, "First", got["text_0"])
	assert.Equal(t, "Second", got["text_1"])
}

func TestUpdateStaleElementAtomic(t *testing.T) {
	tpl, st := synthesized(t)
	m := NewMutator(st, nil)

	before, err := st.Get(context.Background(), "template/"+tpl.ID)
	require.NoError(t, err)

	// One valid and one stale target: nothing may be applied.
	_, err = m.Update(context.Background(), tpl.ID, Mutation{
		"text_0": {"content": "changed"},
		"ghost":  {"content": "x"},
	})
	var stale *pkgerrors.StaleElementReferenceError
	require.ErrorAs(t, err, &stale)
	assert.Equal(t, []string{"ghost"}, stale.ElementIDs)

	after, err := st.Get(context.Background(), "template/"+tpl.ID)
	require.NoError(t, err)
	assert.Equal(t, before, after, "stored template must be unchanged after a rejected mutation")
}

func TestUpdateInvalidField(t *testing.T) {
	tpl, st := synthesized(t)
	m := NewMutator(st, nil)

	_, err := m.Update(context.Background(), tpl.ID, Mutation{
		"text_0": {"rotation": "45"},
	})
	var invalid *pkgerrors.InvalidInputError
	assert.ErrorAs(t, err, &invalid)
}

func TestUpdateInvalidValue(t *testing.T) {
	tpl, st := synthesized(t)
	m := NewMutator(st, nil)

	tests := []Mutation{
		{"text_0": {"color": "not-a-color"}},
		{"text_0": {"font_size": "-5"}},
		{"text_0": {"font_weight": "heavy"}},
		{"text_0": {"alignment": "justified"}},
	}
	for _, mutation := range tests {
		_, err := m.Update(context.Background(), tpl.ID, mutation)
		var invalid *pkgerrors.InvalidInputError
		assert.ErrorAs(t, err, &invalid)
	}
}

func TestUpdateEmptyMutation(t *testing.T) {
	tpl, st := synthesized(t)
	m := NewMutator(st, nil)

	_, err := m.Update(context.Background(), tpl.ID, Mutation{})
	var invalid *pkgerrors.InvalidInputError
	assert.ErrorAs(t, err, &invalid)
}

func TestUpdateUnknownTemplate(t *testing.T) {
	m := NewMutator(store.NewMemory(), nil)

	_, err := m.Update(context.Background(), "ghost", Mutation{"text_0": {"content": "x"}})
	var notFound *pkgerrors.TemplateNotFoundError
	assert.ErrorAs(t, err, &notFound)
}

func TestUpdateConcurrentSerializes(t *testing.T) {
	tpl, st := synthesized(t)
	m := NewMutator(st, nil)

	const n = 8
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func() {
			defer wg.Done()
			_, err := m.Update(context.Background(), tpl.ID, Mutation{
				"text_0": {"content": "concurrent"},
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	latest, err := load(context.Background(), st, "template/"+tpl.ID, tpl.ID)
	require.NoError(t, err)
	assert.Equal(t, n, latest.Version, "every update must land on a distinct version")
	assert.Len(t, latest.Overrides, n)
}

func TestValidFields(t *testing.T) {
	for _, field := range []string{"content", "text", "color", "font_family", "font_size", "font_weight", "alignment", "border_radius"} {
		assert.True(t, ValidField(field), field)
	}
	assert.False(t, ValidField("rotation"))
	assert.Equal(t, "content", CanonicalField("text"))
	assert.Equal(t, "color", CanonicalField("color"))
}

func TestEffectiveElementsPure(t *testing.T) {
	tpl, _ := synthesized(t)

	overrides := []model.Override{{Target: "text_0", Field: "content", Value: "X"}}
	_ = EffectiveElements(tpl.Elements, overrides)

	base, _ := tpl.Element("text_0")
	assert.Equal(t, "Summer Sale", base.Content, "base elements must never be mutated")
}

func TestGenerateDocumentZOrder(t *testing.T) {
	tpl, _ := synthesized(t)

	doc := GenerateDocument(tpl, tpl.Elements)
	bgIdx := strings.Index(doc, `id="background"`)
	imgIdx := strings.Index(doc, `id="image_0"`)
	textIdx := strings.Index(doc, `id="text_0"`)
	require.NotEqual(t, -1, bgIdx)
	require.NotEqual(t, -1, imgIdx)
	require.NotEqual(t, -1, textIdx)
	assert.Less(t, bgIdx, imgIdx)
	assert.Less(t, imgIdx, textIdx)
}
