package block

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// SchemaMismatchError reports a payload that violates its kind's schema.
type SchemaMismatchError struct {
	Kind   Kind
	Field  string
	Reason string
}

func (e *SchemaMismatchError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("schema mismatch: %s: %s", e.Kind, e.Reason)
	}
	return fmt.Sprintf("schema mismatch: %s.%s: %s", e.Kind, e.Field, e.Reason)
}

// Numeric bounds enforced by coercion.
const (
	MinGridColumns  = 1
	MaxGridColumns  = 4
	MinProductCount = 1
	MaxProductCount = 12
	DefaultCount    = 4
	MaxSpacerHeight = 400
)

// Decode coerces a loosely-typed payload into the schema of kind. The returned
// payload is always usable; a non-nil error means the input violated the
// schema (wrong type, or a required field missing) and should be rejected by
// callers that need strict input, such as generation.
func Decode(kind Kind, raw map[string]any) (Payload, error) {
	return decode(kind, raw, true)
}

// Merge shallow-merges partial over the fields of p. Fields absent from
// partial keep their current value. Required fields may be blank while a
// block is being edited; type errors are still reported.
func Merge(kind Kind, p Payload, partial map[string]any) (Payload, error) {
	merged := ToMap(p)
	for k, v := range partial {
		merged[k] = v
	}
	return decode(kind, merged, false)
}

// Validate checks that b carries a known kind and a payload that satisfies it.
func Validate(b Block) error {
	if !IsKnown(b.Kind) {
		return &SchemaMismatchError{Kind: b.Kind, Reason: "unknown kind"}
	}
	if b.Data == nil {
		return &SchemaMismatchError{Kind: b.Kind, Reason: "missing payload"}
	}
	if b.Data.payloadKind() != b.Kind {
		return &SchemaMismatchError{Kind: b.Kind, Reason: fmt.Sprintf("payload is %s", b.Data.payloadKind())}
	}
	_, err := decode(b.Kind, ToMap(b.Data), true)
	return err
}

func decode(kind Kind, raw map[string]any, strict bool) (Payload, error) {
	if raw == nil {
		raw = map[string]any{}
	}
	d := &decoder{kind: kind, raw: raw, strict: strict}
	var p Payload
	switch kind {
	case KindHero:
		p = HeroData{
			Title:           d.required("title"),
			Subtitle:        d.str("subtitle"),
			CTAText:         d.str("ctaText"),
			CTALink:         d.str("ctaLink"),
			BackgroundImage: d.str("backgroundImage"),
		}
	case KindText:
		p = TextData{
			Content: d.required("content"),
			Align:   Align(d.enum("align", string(AlignLeft), string(AlignLeft), string(AlignCenter), string(AlignRight))),
		}
	case KindGrid:
		g := GridData{
			Title:   d.str("title"),
			Columns: d.integer("columns", 3, MinGridColumns, MaxGridColumns),
			Items:   []GridItem{},
		}
		for i, item := range d.list("items") {
			sub := d.child(fmt.Sprintf("items[%d]", i), item)
			g.Items = append(g.Items, GridItem{
				Title:       sub.str("title"),
				Description: sub.str("description"),
				Image:       sub.str("image"),
			})
		}
		p = g
	case KindTestimonial:
		t := TestimonialData{Title: d.str("title"), Items: []TestimonialItem{}}
		for i, item := range d.list("items") {
			sub := d.child(fmt.Sprintf("items[%d]", i), item)
			t.Items = append(t.Items, TestimonialItem{
				Quote:  sub.required("quote"),
				Author: sub.str("author"),
				Role:   sub.str("role"),
				Avatar: sub.str("avatar"),
			})
		}
		p = t
	case KindProductRow:
		category := strings.TrimSpace(d.str("category"))
		if category == "" {
			category = AllCategories
		}
		p = ProductRowData{
			Title:    d.str("title"),
			Category: category,
			Count:    d.integer("count", DefaultCount, MinProductCount, MaxProductCount),
		}
	case KindImage:
		p = ImageData{
			Src:     d.required("src"),
			Alt:     d.str("alt"),
			Caption: d.str("caption"),
		}
	case KindSpacer:
		p = SpacerData{Height: d.integer("height", 48, 0, MaxSpacerHeight)}
	default:
		return UnknownData{Fields: raw}, nil
	}
	if d.err != nil {
		return p, d.err
	}
	return p, nil
}

// decoder reads fields out of a loose map, remembering the first violation.
type decoder struct {
	kind   Kind
	prefix string
	raw    map[string]any
	strict bool
	err    *SchemaMismatchError
	parent *decoder
}

func (d *decoder) child(prefix string, raw map[string]any) *decoder {
	return &decoder{kind: d.kind, prefix: prefix + ".", raw: raw, strict: d.strict, parent: d}
}

func (d *decoder) fail(field, reason string) {
	root := d
	for root.parent != nil {
		root = root.parent
	}
	if root.err == nil {
		root.err = &SchemaMismatchError{Kind: d.kind, Field: d.prefix + field, Reason: reason}
	}
}

func (d *decoder) str(key string) string {
	v, ok := d.raw[key]
	if !ok || v == nil {
		return ""
	}
	switch val := v.(type) {
	case string:
		return strings.TrimSpace(val)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case bool:
		return strconv.FormatBool(val)
	case json.Number:
		return val.String()
	default:
		d.fail(key, fmt.Sprintf("expected string, got %T", v))
		return ""
	}
}

func (d *decoder) required(key string) string {
	s := d.str(key)
	if s == "" && d.strict {
		d.fail(key, "required")
	}
	return s
}

func (d *decoder) enum(key, def string, allowed ...string) string {
	s := strings.ToLower(d.str(key))
	for _, a := range allowed {
		if s == a {
			return s
		}
	}
	return def
}

func (d *decoder) integer(key string, def, lo, hi int) int {
	v, ok := d.raw[key]
	if !ok || v == nil {
		return def
	}
	var n int
	switch val := v.(type) {
	case float64:
		n = int(math.Round(val))
	case int:
		n = val
	case int64:
		n = int(val)
	case json.Number:
		f, err := val.Float64()
		if err != nil {
			d.fail(key, "expected number")
			return def
		}
		n = int(math.Round(f))
	case string:
		trimmed := strings.TrimSpace(val)
		if trimmed == "" {
			return def
		}
		f, err := strconv.ParseFloat(trimmed, 64)
		if err != nil {
			d.fail(key, fmt.Sprintf("expected number, got %q", val))
			return def
		}
		n = int(math.Round(f))
	default:
		d.fail(key, fmt.Sprintf("expected number, got %T", v))
		return def
	}
	return min(max(n, lo), hi)
}

func (d *decoder) list(key string) []map[string]any {
	v, ok := d.raw[key]
	if !ok || v == nil {
		return nil
	}
	var items []any
	switch val := v.(type) {
	case []any:
		items = val
	case []map[string]any:
		out := make([]map[string]any, len(val))
		copy(out, val)
		return out
	default:
		d.fail(key, fmt.Sprintf("expected list, got %T", v))
		return nil
	}
	out := make([]map[string]any, 0, len(items))
	for i, item := range items {
		m, ok := item.(map[string]any)
		if !ok {
			d.fail(fmt.Sprintf("%s[%d]", key, i), fmt.Sprintf("expected object, got %T", item))
			continue
		}
		out = append(out, m)
	}
	return out
}
