package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// ── HTTP Source ─────────────────────────────────────────────
// Fetches products from a JSON REST endpoint.

type httpSource struct {
	client *http.Client
}

func (s *httpSource) Spec() SourceSpec {
	return SourceSpec{
		Type:  "http",
		Label: "HTTP API",
		ConfigFields: []ConfigField{
			{Key: "url", Label: "URL", Required: true, Help: "Full URL to fetch"},
			{Key: "method", Label: "Method", Options: []string{"GET", "POST"}, Default: "GET"},
			{Key: "headers", Label: "Headers", Help: "Header map, e.g. {Authorization: Bearer xxx}"},
			{Key: "body", Label: "Body", Help: "Request body (for POST)"},
			{Key: "dataPath", Label: "Data Path", Help: "Dot-separated path to the array in the response"},
		},
	}
}

func (s *httpSource) Read(ctx context.Context, cfg SourceConfig) (<-chan Record, <-chan error) {
	return streamFrom(ctx, func() ([]Record, error) { return s.fetch(ctx, cfg) })
}

func (s *httpSource) fetch(ctx context.Context, cfg SourceConfig) ([]Record, error) {
	url, _ := cfg["url"].(string)
	if url == "" {
		return nil, errors.New("url is required")
	}
	method, _ := cfg["method"].(string)
	if method == "" {
		method = http.MethodGet
	}

	var bodyReader io.Reader
	if body, ok := cfg["body"].(string); ok && body != "" {
		bodyReader = strings.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	for k, v := range headerMap(cfg["headers"]) {
		req.Header.Set(k, v)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("http %d: %s", resp.StatusCode, string(body))
	}

	var doc any
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		return nil, fmt.Errorf("parse json: %w", err)
	}
	dataPath, _ := cfg["dataPath"].(string)
	return recordsAt(doc, dataPath)
}

// headerMap accepts headers as a map (YAML config) or a JSON object string.
func headerMap(v any) map[string]string {
	out := make(map[string]string)
	switch h := v.(type) {
	case map[string]any:
		for k, val := range h {
			out[k] = fmt.Sprint(val)
		}
	case map[string]string:
		for k, val := range h {
			out[k] = val
		}
	case string:
		if h != "" {
			_ = json.Unmarshal([]byte(h), &out)
		}
	}
	return out
}
