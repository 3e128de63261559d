package catalog

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// ── Record ─────────────────────────────────────────────────
// Every source emits Records; the field mapping turns them into products.

// Record is a single row read from a source. Nested objects are flattened
// into dotted keys, so a mapping can name "price.amount".
type Record struct {
	Data map[string]any `json:"data"`
}

// recordsAt locates the record list inside a decoded JSON document. path is
// dot-separated and may index arrays ("data.pages.0.items"); an empty path
// means the document itself.
func recordsAt(doc any, path string) ([]Record, error) {
	node := doc
	if path != "" {
		for _, part := range strings.Split(path, ".") {
			next, ok := child(node, part)
			if !ok {
				return nil, fmt.Errorf("data path %q: no %q", path, part)
			}
			node = next
		}
	}

	switch v := node.(type) {
	case []any:
		records := make([]Record, 0, len(v))
		for _, item := range v {
			if obj, ok := item.(map[string]any); ok {
				records = append(records, newRecord(obj))
			}
		}
		return records, nil
	case map[string]any:
		return []Record{newRecord(v)}, nil
	case nil:
		return nil, nil
	default:
		return nil, fmt.Errorf("data path %q: expected array or object, got %T", path, node)
	}
}

func child(node any, key string) (any, bool) {
	switch v := node.(type) {
	case map[string]any:
		c, ok := v[key]
		return c, ok
	case []any:
		i, err := strconv.Atoi(key)
		if err != nil || i < 0 || i >= len(v) {
			return nil, false
		}
		return v[i], true
	}
	return nil, false
}

func newRecord(obj map[string]any) Record {
	data := make(map[string]any, len(obj))
	flattenInto(data, "", obj)
	return Record{Data: data}
}

// flattenInto copies scalars under their dotted key. Arrays stay as JSON
// text since no product attribute is a list.
func flattenInto(dst map[string]any, prefix string, obj map[string]any) {
	for k, v := range obj {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		switch val := v.(type) {
		case map[string]any:
			flattenInto(dst, key, val)
		case []any:
			b, _ := json.Marshal(val)
			dst[key] = string(b)
		default:
			dst[key] = val
		}
	}
}
