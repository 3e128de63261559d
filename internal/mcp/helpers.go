package mcpserver

import (
	"encoding/json"
	"fmt"
	"strings"
)

func boolPtr(v bool) *bool { return &v }

// getInt reads a numeric argument, which JSON delivers as float64.
func getInt(args map[string]any, key string, fallback int) int {
	if v, ok := args[key].(float64); ok {
		return int(v)
	}
	return fallback
}

func requireString(args map[string]any, key string) (string, error) {
	v, _ := args[key].(string)
	if strings.TrimSpace(v) == "" {
		return "", fmt.Errorf("%s is required", key)
	}
	return v, nil
}

// getObject reads an argument that is either a JSON object or a string
// holding one.
func getObject(args map[string]any, key string) (map[string]any, error) {
	switch v := args[key].(type) {
	case map[string]any:
		return v, nil
	case string:
		var out map[string]any
		if err := json.Unmarshal([]byte(v), &out); err != nil {
			return nil, fmt.Errorf("%s: invalid JSON object: %w", key, err)
		}
		return out, nil
	case nil:
		return nil, fmt.Errorf("%s is required", key)
	default:
		return nil, fmt.Errorf("%s: expected an object, got %T", key, v)
	}
}

func splitIDs(s string) []string {
	var ids []string
	for _, part := range strings.Split(s, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			ids = append(ids, trimmed)
		}
	}
	return ids
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
