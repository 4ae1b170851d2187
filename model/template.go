package model

import "time"

// ElementKind is the kind of a template element.
type ElementKind int

const (
	KindText ElementKind = iota
	KindImage
	KindBackground
)

func (k ElementKind) String() string {
	switch k {
	case KindImage:
		return "image"
	case KindBackground:
		return "background"
	default:
		return "text"
	}
}

// FitMode controls how bound image content fills its region.
type FitMode int

const (
	FitCover FitMode = iota
	FitContain
	FitFill
)

func (f FitMode) String() string {
	switch f {
	case FitContain:
		return "contain"
	case FitFill:
		return "fill"
	default:
		return "cover"
	}
}

// Style holds the visual attributes of a template element.
type Style struct {
	Color        Color      `json:"color"`
	FontFamily   string     `json:"font_family,omitempty"`
	FontSize     float64    `json:"font_size,omitempty"`
	FontWeight   FontWeight `json:"font_weight,omitempty"`
	Alignment    Alignment  `json:"alignment,omitempty"`
	BorderRadius float64    `json:"border_radius,omitempty"`
	Fit          FitMode    `json:"fit,omitempty"`
}

// TemplateElement is one addressable element of a template. Its ID is stable
// across template versions and independent of the source analysis ids;
// SourceID cross-references the originating analysis element when there is
// one ("" for synthesized elements such as the background).
type TemplateElement struct {
	ID          string      `json:"id"`
	Kind        ElementKind `json:"kind"`
	BBox        BBox        `json:"bbox"`
	Style       Style       `json:"style"`
	Content     string      `json:"content,omitempty"` // default sample content
	Placeholder string      `json:"placeholder"`       // opaque token, e.g. {{text_1}}
	SourceID    string      `json:"source_id,omitempty"`
}

// Override is one recorded field-level customization of a template element.
// Overrides accumulate across versions; replay order is insertion order with
// last-write-wins per (Target, Field).
type Override struct {
	Target  string `json:"target"`
	Field   string `json:"field"`
	Value   string `json:"value"`
	Version int    `json:"version"` // version at which the override was applied
}

// Template is a versioned, addressable, editable document derived from an
// AnalysisResult. Elements holds the immutable base (version 0) elements;
// the element state at the current version is the base plus the replay of
// all Overrides. A Template value is immutable per version: mutation
// produces a new version sharing the same ID lineage.
type Template struct {
	ID        string            `json:"id"`
	Version   int               `json:"version"`
	BasedOn   string            `json:"based_on"` // analysis id
	Width     int               `json:"width"`
	Height    int               `json:"height"`
	Elements  []TemplateElement `json:"elements"`
	Overrides []Override        `json:"overrides,omitempty"`
	Document  string            `json:"document"` // generated vector document
	CreatedAt time.Time         `json:"created_at"`
}

// Element returns the base element with the given id, if present.
func (t *Template) Element(id string) (*TemplateElement, bool) {
	for i := range t.Elements {
		if t.Elements[i].ID == id {
			return &t.Elements[i], true
		}
	}
	return nil, false
}

// HasElement reports whether the template has a base element with the id.
func (t *Template) HasElement(id string) bool {
	_, ok := t.Element(id)
	return ok
}

// Clone returns a deep copy of the template.
func (t *Template) Clone() *Template {
	cp := *t
	cp.Elements = make([]TemplateElement, len(t.Elements))
	copy(cp.Elements, t.Elements)
	cp.Overrides = make([]Override, len(t.Overrides))
	copy(cp.Overrides, t.Overrides)
	return &cp
}
