package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
)

// ── JSON File Source ────────────────────────────────────────

type jsonFileSource struct{}

func (s *jsonFileSource) Spec() SourceSpec {
	return SourceSpec{
		Type:  "json_file",
		Label: "JSON File",
		ConfigFields: []ConfigField{
			{Key: "filePath", Label: "File Path", Required: true, Help: "Path to a JSON document or a JSON Lines feed"},
			{Key: "format", Label: "Format", Options: []string{"json", "jsonl"}, Default: "json"},
			{Key: "dataPath", Label: "Data Path", Help: "Dot-separated path to the product array, e.g. 'data.items'"},
		},
	}
}

func (s *jsonFileSource) Read(ctx context.Context, cfg SourceConfig) (<-chan Record, <-chan error) {
	return streamFrom(ctx, func() ([]Record, error) { return readJSONFile(cfg) })
}

func readJSONFile(cfg SourceConfig) ([]Record, error) {
	path, _ := cfg["filePath"].(string)
	if path == "" {
		return nil, errors.New("filePath is required")
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open json: %w", err)
	}
	defer f.Close()

	dataPath, _ := cfg["dataPath"].(string)
	if format, _ := cfg["format"].(string); format == "jsonl" {
		return readJSONLines(f, dataPath)
	}

	var doc any
	if err := json.NewDecoder(f).Decode(&doc); err != nil {
		return nil, fmt.Errorf("parse json: %w", err)
	}
	return recordsAt(doc, dataPath)
}

// readJSONLines reads one document per line, each yielding its records.
func readJSONLines(r io.Reader, dataPath string) ([]Record, error) {
	dec := json.NewDecoder(r)
	var records []Record
	for n := 1; ; n++ {
		var doc any
		err := dec.Decode(&doc)
		if errors.Is(err, io.EOF) {
			return records, nil
		}
		if err != nil {
			return nil, fmt.Errorf("parse json line %d: %w", n, err)
		}
		recs, err := recordsAt(doc, dataPath)
		if err != nil {
			return nil, fmt.Errorf("json line %d: %w", n, err)
		}
		records = append(records, recs...)
	}
}
