package generate

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"pagebuilder/internal/block"
	"pagebuilder/internal/compose"
)

// parseCandidates accepts a JSON array of blocks, an object with a "blocks"
// array, or a single block object. Markdown code fences are stripped first.
func parseCandidates(raw []byte) ([]any, error) {
	s := strings.TrimSpace(string(raw))
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		s = strings.TrimSuffix(strings.TrimSpace(s), "```")
		s = strings.TrimSpace(s)
	}
	if s == "" {
		return nil, errors.New("empty response")
	}
	var v any
	if err := json.Unmarshal([]byte(s), &v); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	switch t := v.(type) {
	case []any:
		return t, nil
	case map[string]any:
		if list, ok := t["blocks"].([]any); ok {
			return list, nil
		}
		return []any{t}, nil
	default:
		return nil, fmt.Errorf("unexpected response of type %T", v)
	}
}

// toBlock validates one candidate and mints it a fresh id. When want is set,
// a candidate without a kind is read as a bare payload of that kind.
func toBlock(candidate any, want block.Kind) (block.Block, block.Kind, error) {
	m, ok := candidate.(map[string]any)
	if !ok {
		return block.Block{}, "", fmt.Errorf("expected object, got %T", candidate)
	}

	kind := want
	if k, ok := m["kind"].(string); ok && k != "" {
		kind = block.Kind(strings.ToLower(strings.TrimSpace(k)))
	} else if k, ok := m["type"].(string); ok && k != "" {
		kind = block.Kind(strings.ToLower(strings.TrimSpace(k)))
	}
	if kind == "" {
		return block.Block{}, "", errors.New("missing kind")
	}
	if !block.IsKnown(kind) {
		return block.Block{}, kind, fmt.Errorf("unknown kind %q", kind)
	}
	if want != "" && kind != want {
		return block.Block{}, kind, fmt.Errorf("expected kind %s", want)
	}

	var data map[string]any
	switch d := m["data"].(type) {
	case map[string]any:
		data = d
	case nil:
		data = make(map[string]any, len(m))
		for k, v := range m {
			if k != "id" && k != "kind" && k != "type" {
				data[k] = v
			}
		}
	default:
		return block.Block{}, kind, fmt.Errorf("data: expected object, got %T", d)
	}

	payload, err := block.Decode(kind, data)
	if err != nil {
		return block.Block{}, kind, err
	}
	return block.Block{ID: compose.NewID(), Kind: kind, Data: payload}, kind, nil
}
