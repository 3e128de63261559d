package catalog

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// ── Transformer ────────────────────────────────────────────
// Transformers modify records between source and mapping. Each returns the
// (possibly modified) record and whether to keep it.

type Transformer interface {
	Transform(Record) (Record, bool)
}

// TransformerFunc adapts a plain function to the Transformer interface.
type TransformerFunc func(Record) (Record, bool)

func (f TransformerFunc) Transform(r Record) (Record, bool) { return f(r) }

// TransformConfig is a declarative transform definition.
type TransformConfig struct {
	Type   string         `json:"type" yaml:"type"` // filter | rename | select | cast | sort | limit | price | map_values
	Config map[string]any `json:"config" yaml:"config"`
}

// ── Built-in Transforms ────────────────────────────────────

// FilterTransform drops records whose field fails the comparison. Records
// missing the field are dropped too.
type FilterTransform struct {
	Field string
	Op    string // eq | neq | gt | gte | lt | lte | contains
	Value any
}

var filterOps = map[string]func(v, want any) bool{
	"eq":       func(v, want any) bool { return fmt.Sprint(v) == fmt.Sprint(want) },
	"neq":      func(v, want any) bool { return fmt.Sprint(v) != fmt.Sprint(want) },
	"contains": func(v, want any) bool { return strings.Contains(fmt.Sprint(v), fmt.Sprint(want)) },
	"gt":       func(v, want any) bool { return compareValues(v, want) > 0 },
	"gte":      func(v, want any) bool { return compareValues(v, want) >= 0 },
	"lt":       func(v, want any) bool { return compareValues(v, want) < 0 },
	"lte":      func(v, want any) bool { return compareValues(v, want) <= 0 },
}

func (t *FilterTransform) Transform(r Record) (Record, bool) {
	v, ok := r.Data[t.Field]
	if !ok {
		return r, false
	}
	match, known := filterOps[t.Op]
	if !known {
		return r, true
	}
	return r, match(v, t.Value)
}

// RenameTransform renames fields in a record.
type RenameTransform struct {
	Mapping map[string]string // old name -> new name
}

func (t *RenameTransform) Transform(r Record) (Record, bool) {
	for from, to := range t.Mapping {
		if v, ok := r.Data[from]; ok {
			delete(r.Data, from)
			r.Data[to] = v
		}
	}
	return r, true
}

// SelectTransform keeps only the listed fields.
type SelectTransform struct {
	Fields []string
}

func (t *SelectTransform) Transform(r Record) (Record, bool) {
	filtered := make(map[string]any, len(t.Fields))
	for _, f := range t.Fields {
		if v, ok := r.Data[f]; ok {
			filtered[f] = v
		}
	}
	r.Data = filtered
	return r, true
}

// DedupeTransform drops records repeating a value of Key.
type DedupeTransform struct {
	Key  string
	seen map[string]bool
}

func NewDedupeTransform(key string) *DedupeTransform {
	return &DedupeTransform{Key: key, seen: make(map[string]bool)}
}

func (t *DedupeTransform) Transform(r Record) (Record, bool) {
	v := fmt.Sprint(r.Data[t.Key])
	if t.seen[v] {
		return r, false
	}
	t.seen[v] = true
	return r, true
}

// LimitTransform caps the number of records.
type LimitTransform struct {
	Count int
	seen  int
}

func (t *LimitTransform) Transform(r Record) (Record, bool) {
	t.seen++
	return r, t.seen <= t.Count
}

// CastTransform converts a field's value to number, string or bool.
type CastTransform struct {
	Field string
	To    string
}

func (t *CastTransform) Transform(r Record) (Record, bool) {
	v, ok := r.Data[t.Field]
	if !ok {
		return r, true
	}
	switch t.To {
	case "number":
		r.Data[t.Field] = toFloat(v)
	case "string":
		r.Data[t.Field] = fmt.Sprint(v)
	case "bool":
		r.Data[t.Field] = toBool(v)
	}
	return r, true
}

// SortTransform orders the collected records by a field. It is applied by
// the engine after streaming, so Transform passes records through.
type SortTransform struct {
	Field     string
	Direction string // asc | desc
}

func (t *SortTransform) Transform(r Record) (Record, bool) { return r, true }

// PriceTransform normalizes a price string such as "R$ 1.299,90" or
// "$1,299.90" into a number. Unparseable prices drop the record unless Keep
// is set, in which case the field is removed.
type PriceTransform struct {
	Field string
	Keep  bool
}

func (t *PriceTransform) Transform(r Record) (Record, bool) {
	v, ok := r.Data[t.Field]
	if !ok {
		return r, true
	}
	if f, ok := toFloatSafe(v); ok {
		r.Data[t.Field] = f
		return r, true
	}
	price, ok := parsePrice(fmt.Sprint(v))
	if !ok {
		delete(r.Data, t.Field)
		return r, t.Keep
	}
	r.Data[t.Field] = price
	return r, true
}

// MapValuesTransform rewrites a field's value through a lookup table, for
// instance source category names onto menu category names. Values missing
// from the table are replaced by Default when set.
type MapValuesTransform struct {
	Field   string
	Values  map[string]string
	Default string
}

func (t *MapValuesTransform) Transform(r Record) (Record, bool) {
	v, ok := r.Data[t.Field]
	if !ok {
		return r, true
	}
	key := strings.ToLower(strings.TrimSpace(fmt.Sprint(v)))
	if mapped, ok := t.Values[key]; ok {
		r.Data[t.Field] = mapped
	} else if t.Default != "" {
		r.Data[t.Field] = t.Default
	}
	return r, true
}

// ApplyTransformers runs a chain of transformers on a record.
func ApplyTransformers(r Record, ts []Transformer) (Record, bool) {
	for _, t := range ts {
		var keep bool
		r, keep = t.Transform(r)
		if !keep {
			return r, false
		}
	}
	return r, true
}

// applyBatchSort sorts records by the first SortTransform of the chain.
func applyBatchSort(records []Record, ts []Transformer) []Record {
	for _, t := range ts {
		st, ok := t.(*SortTransform)
		if !ok || st.Field == "" {
			continue
		}
		dir := 1
		if st.Direction == "desc" {
			dir = -1
		}
		sorted := slices.Clone(records)
		slices.SortStableFunc(sorted, func(a, b Record) int {
			return compareValues(a.Data[st.Field], b.Data[st.Field]) * dir
		})
		return sorted
	}
	return records
}

// buildTransformers converts declarative configs into transformers. Unknown
// or incomplete configs are reported as errors.
func buildTransformers(configs []TransformConfig, dedupeKey string) ([]Transformer, error) {
	var ts []Transformer
	for i, tc := range configs {
		switch tc.Type {
		case "filter":
			field, _ := tc.Config["field"].(string)
			op, _ := tc.Config["op"].(string)
			if field == "" || op == "" {
				return nil, fmt.Errorf("transform %d: filter needs field and op", i)
			}
			ts = append(ts, &FilterTransform{Field: field, Op: op, Value: tc.Config["value"]})

		case "rename":
			mapping, ok := tc.Config["mapping"].(map[string]any)
			if !ok {
				return nil, fmt.Errorf("transform %d: rename needs a mapping", i)
			}
			m := make(map[string]string, len(mapping))
			for k, v := range mapping {
				m[k] = fmt.Sprint(v)
			}
			ts = append(ts, &RenameTransform{Mapping: m})

		case "select":
			fields, ok := tc.Config["fields"].([]any)
			if !ok {
				return nil, fmt.Errorf("transform %d: select needs fields", i)
			}
			ff := make([]string, len(fields))
			for j, f := range fields {
				ff[j] = fmt.Sprint(f)
			}
			ts = append(ts, &SelectTransform{Fields: ff})

		case "cast":
			field, _ := tc.Config["field"].(string)
			to, _ := tc.Config["to"].(string)
			if field == "" || to == "" {
				return nil, fmt.Errorf("transform %d: cast needs field and to", i)
			}
			ts = append(ts, &CastTransform{Field: field, To: to})

		case "sort":
			field, _ := tc.Config["field"].(string)
			direction, _ := tc.Config["direction"].(string)
			if direction == "" {
				direction = "asc"
			}
			if field == "" {
				return nil, fmt.Errorf("transform %d: sort needs a field", i)
			}
			ts = append(ts, &SortTransform{Field: field, Direction: direction})

		case "limit":
			count, ok := toFloatSafe(tc.Config["count"])
			if !ok || count <= 0 {
				return nil, fmt.Errorf("transform %d: limit needs a positive count", i)
			}
			ts = append(ts, &LimitTransform{Count: int(count)})

		case "price":
			field, _ := tc.Config["field"].(string)
			if field == "" {
				return nil, fmt.Errorf("transform %d: price needs a field", i)
			}
			keep, _ := tc.Config["keep_invalid"].(bool)
			ts = append(ts, &PriceTransform{Field: field, Keep: keep})

		case "map_values":
			field, _ := tc.Config["field"].(string)
			values, ok := tc.Config["values"].(map[string]any)
			if field == "" || !ok {
				return nil, fmt.Errorf("transform %d: map_values needs field and values", i)
			}
			m := make(map[string]string, len(values))
			for k, v := range values {
				m[strings.ToLower(strings.TrimSpace(k))] = fmt.Sprint(v)
			}
			def, _ := tc.Config["default"].(string)
			ts = append(ts, &MapValuesTransform{Field: field, Values: m, Default: def})

		default:
			return nil, fmt.Errorf("transform %d: unknown type %q", i, tc.Type)
		}
	}

	// Dedupe always runs last.
	if dedupeKey != "" {
		ts = append(ts, NewDedupeTransform(dedupeKey))
	}
	return ts, nil
}

// ── Helpers ────────────────────────────────────────────────

func compareValues(a, b any) int {
	fa, aOk := toFloatSafe(a)
	fb, bOk := toFloatSafe(b)
	if aOk && bOk {
		switch {
		case fa < fb:
			return -1
		case fa > fb:
			return 1
		}
		return 0
	}
	return strings.Compare(fmt.Sprint(a), fmt.Sprint(b))
}

func toFloatSafe(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		return f, err == nil
	default:
		return 0, false
	}
}

func toFloat(v any) float64 {
	f, _ := toFloatSafe(v)
	return f
}

// toPrice is toFloat with a fallback to formatted price strings.
func toPrice(v any) float64 {
	if f, ok := toFloatSafe(v); ok || v == nil {
		return f
	}
	f, _ := parsePrice(fmt.Sprint(v))
	return f
}

// parsePrice reads a price written with either decimal convention. The last
// of '.' or ',' is the decimal separator when followed by one or two digits.
func parsePrice(s string) (float64, bool) {
	digits := strings.Map(func(r rune) rune {
		switch {
		case r >= '0' && r <= '9', r == '.', r == ',', r == '-':
			return r
		}
		return -1
	}, s)
	if digits == "" {
		return 0, false
	}
	sep := strings.LastIndexAny(digits, ".,")
	if sep >= 0 && len(digits)-sep-1 <= 2 {
		whole := strings.NewReplacer(".", "", ",", "").Replace(digits[:sep])
		digits = whole + "." + digits[sep+1:]
	} else {
		digits = strings.NewReplacer(".", "", ",", "").Replace(digits)
	}
	f, err := strconv.ParseFloat(digits, 64)
	return f, err == nil
}

func toBool(v any) bool {
	switch b := v.(type) {
	case bool:
		return b
	case string:
		switch strings.ToLower(strings.TrimSpace(b)) {
		case "true", "yes", "1":
			return true
		}
		return false
	default:
		f, ok := toFloatSafe(v)
		return ok && f != 0
	}
}
