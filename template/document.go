package template

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/kraftysprouts/pinmaker/model"
	pkgerrors "github.com/kraftysprouts/pinmaker/pkg/errors"
)

// Fields accepted by overrides, keyed by name. Each entry applies a parsed
// value to an element.
var overrideFields = map[string]func(*model.TemplateElement, string) error{
	"content": func(el *model.TemplateElement, v string) error {
		el.Content = v
		return nil
	},
	"color": func(el *model.TemplateElement, v string) error {
		c, err := model.ParseHex(v)
		if err != nil {
			return err
		}
		el.Style.Color = c
		return nil
	},
	"font_family": func(el *model.TemplateElement, v string) error {
		el.Style.FontFamily = v
		return nil
	},
	"font_size": func(el *model.TemplateElement, v string) error {
		size, err := strconv.ParseFloat(v, 64)
		if err != nil || size <= 0 {
			return fmt.Errorf("invalid font size %q", v)
		}
		el.Style.FontSize = size
		return nil
	},
	"font_weight": func(el *model.TemplateElement, v string) error {
		switch v {
		case "normal":
			el.Style.FontWeight = model.WeightNormal
		case "bold":
			el.Style.FontWeight = model.WeightBold
		default:
			return fmt.Errorf("invalid font weight %q", v)
		}
		return nil
	},
	"alignment": func(el *model.TemplateElement, v string) error {
		switch v {
		case "left":
			el.Style.Alignment = model.AlignLeft
		case "center":
			el.Style.Alignment = model.AlignCenter
		case "right":
			el.Style.Alignment = model.AlignRight
		default:
			return fmt.Errorf("invalid alignment %q", v)
		}
		return nil
	},
	"border_radius": func(el *model.TemplateElement, v string) error {
		r, err := strconv.ParseFloat(v, 64)
		if err != nil || r < 0 {
			return fmt.Errorf("invalid border radius %q", v)
		}
		el.Style.BorderRadius = r
		return nil
	},
}

// fieldAliases maps accepted alternate field names onto the canonical name
// stored in override records. "text" is the conventional name for a text
// element's content.
var fieldAliases = map[string]string{
	"text": "content",
}

// CanonicalField resolves a field alias to its stored field name. Unknown
// fields pass through unchanged.
func CanonicalField(field string) string {
	if canonical, ok := fieldAliases[field]; ok {
		return canonical
	}
	return field
}

// ValidField reports whether field is an overridable element attribute,
// either by its canonical name or an accepted alias.
func ValidField(field string) bool {
	_, ok := overrideFields[CanonicalField(field)]
	return ok
}

// EffectiveElements replays the override list onto a copy of the base
// elements and returns the result. It is a pure function of its inputs:
// the base slice is never modified and no state outside the arguments is
// consulted. Overrides targeting unknown elements or fields are skipped;
// validation happens at mutation time, so replay never fails.
func EffectiveElements(base []model.TemplateElement, overrides []model.Override) []model.TemplateElement {
	out := make([]model.TemplateElement, len(base))
	copy(out, base)

	index := make(map[string]int, len(out))
	for i, el := range out {
		index[el.ID] = i
	}

	for _, ov := range overrides {
		i, ok := index[ov.Target]
		if !ok {
			continue
		}
		apply, ok := overrideFields[ov.Field]
		if !ok {
			continue
		}
		_ = apply(&out[i], ov.Value)
	}
	return out
}

// validateOverride checks target existence and field/value validity without
// applying anything, so a failing mutation leaves no trace.
func validateOverride(t *model.Template, ov model.Override) error {
	if !t.HasElement(ov.Target) {
		return pkgerrors.NewStaleElementReferenceError(t.ID, []string{ov.Target})
	}
	apply, ok := overrideFields[ov.Field]
	if !ok {
		return pkgerrors.NewInvalidInputError(fmt.Sprintf("unknown field %q", ov.Field), nil)
	}
	var scratch model.TemplateElement
	if el, ok := t.Element(ov.Target); ok {
		scratch = *el
	}
	if err := apply(&scratch, ov.Value); err != nil {
		return pkgerrors.NewInvalidInputError(fmt.Sprintf("field %q: %v", ov.Field, err), nil)
	}
	return nil
}

// GenerateDocument renders the vector document for a template at a given
// effective element state. The output depends only on the template
// dimensions and the element slice, so regenerating from base plus replayed
// overrides always yields the same document.
func GenerateDocument(t *model.Template, elements []model.TemplateElement) string {
	var b strings.Builder
	fmt.Fprintf(&b, `<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">`,
		t.Width, t.Height, t.Width, t.Height)
	b.WriteByte('\n')

	// Backgrounds first, then images, then text, so z-order is stable
	// regardless of element slice order.
	ordered := make([]model.TemplateElement, len(elements))
	copy(ordered, elements)
	sort.SliceStable(ordered, func(i, j int) bool {
		return zRank(ordered[i].Kind) < zRank(ordered[j].Kind)
	})

	for _, el := range ordered {
		switch el.Kind {
		case model.KindBackground:
			writeBackground(&b, t, el)
		case model.KindImage:
			writeImage(&b, el)
		case model.KindText:
			writeText(&b, el)
		}
	}

	b.WriteString("</svg>\n")
	return b.String()
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

func writeBackground(b *strings.Builder, t *model.Template, el model.TemplateElement) {
	if el.Placeholder != "" && el.Content == "" {
		// Image-backed background keeps its placeholder for binding.
		fmt.Fprintf(b, `  <image id=%q x="0" y="0" width="%d" height="%d" href=%q preserveAspectRatio="xMidYMid slice"/>`,
			el.ID, t.Width, t.Height, el.Placeholder)
		b.WriteByte('\n')
		return
	}
	fmt.Fprintf(b, `  <rect id=%q x="0" y="0" width="%d" height="%d" fill=%q/>`,
		el.ID, t.Width, t.Height, el.Style.Color.Hex())
	b.WriteByte('\n')
}

func writeImage(b *strings.Builder, el model.TemplateElement) {
	fmt.Fprintf(b, `  <image id=%q x="%.1f" y="%.1f" width="%.1f" height="%.1f" href=%q preserveAspectRatio=%q`,
		el.ID, el.BBox.X, el.BBox.Y, el.BBox.Width, el.BBox.Height, el.Placeholder, fitAttr(el.Style.Fit))
	if el.Style.BorderRadius > 0 {
		fmt.Fprintf(b, ` rx="%.1f"`, el.Style.BorderRadius)
	}
	b.WriteString("/>\n")
}

func writeText(b *strings.Builder, el model.TemplateElement) {
	x, anchor := textAnchor(el)
	fmt.Fprintf(b, `  <text id=%q x="%.1f" y="%.1f" font-family=%q font-size="%.1f" font-weight=%q fill=%q text-anchor=%q>%s</text>`,
		el.ID, x, el.BBox.Bottom(), el.Style.FontFamily, el.Style.FontSize,
		weightAttr(el.Style.FontWeight), el.Style.Color.Hex(), anchor, escapeXML(el.Placeholder))
	b.WriteByte('\n')
}

func textAnchor(el model.TemplateElement) (float64, string) {
	switch el.Style.Alignment {
	case model.AlignCenter:
		return el.BBox.X + el.BBox.Width/2, "middle"
	case model.AlignRight:
		return el.BBox.X + el.BBox.Width, "end"
	default:
		return el.BBox.X, "start"
	}
}

func weightAttr(w model.FontWeight) string {
	if w == model.WeightBold {
		return "bold"
	}
	return "normal"
}

func fitAttr(f model.FitMode) string {
	switch f {
	case model.FitContain:
		return "xMidYMid meet"
	case model.FitFill:
		return "none"
	default:
		return "xMidYMid slice"
	}
}

func escapeXML(s string) string {
	r := strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")
	return r.Replace(s)
}
