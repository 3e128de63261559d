package catalog

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// ── CSV File Source ─────────────────────────────────────────

type csvFileSource struct{}

func (s *csvFileSource) Spec() SourceSpec {
	return SourceSpec{
		Type:  "csv_file",
		Label: "CSV File",
		ConfigFields: []ConfigField{
			{Key: "filePath", Label: "File Path", Required: true, Help: "Path to the CSV file"},
			{Key: "delimiter", Label: "Delimiter", Default: ",", Help: "Single character separating columns"},
			{Key: "hasHeader", Label: "Has Header", Options: []string{"true", "false"}, Default: "true", Help: "First row holds the column names"},
			{Key: "columns", Label: "Columns", Help: "Comma-separated column names, overriding the header"},
		},
	}
}

// Read streams one record per row. Rows shorter than the header leave the
// trailing columns unset and empty cells are nil.
func (s *csvFileSource) Read(ctx context.Context, cfg SourceConfig) (<-chan Record, <-chan error) {
	out := make(chan Record, 100)
	errCh := make(chan error, 1)

	go func() {
		defer close(out)
		defer close(errCh)
		if err := streamCSV(ctx, cfg, out); err != nil {
			errCh <- err
		}
	}()
	return out, errCh
}

func streamCSV(ctx context.Context, cfg SourceConfig, out chan<- Record) error {
	path, _ := cfg["filePath"].(string)
	if path == "" {
		return errors.New("filePath is required")
	}
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open csv: %w", err)
	}
	defer f.Close()

	r, err := newCSVReader(f, cfg)
	if err != nil {
		return err
	}

	first, err := r.Read()
	if errors.Is(err, io.EOF) {
		return errors.New("empty csv file")
	}
	if err != nil {
		return fmt.Errorf("read csv header: %w", err)
	}

	columns := csvColumns(cfg, first)
	if !csvHasHeader(cfg) {
		if !sendRow(ctx, out, columns, first) {
			return nil
		}
	}

	for line := 2; ; line++ {
		row, err := r.Read()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("read csv line %d: %w", line, err)
		}
		if !sendRow(ctx, out, columns, row) {
			return nil
		}
	}
}

func newCSVReader(rd io.Reader, cfg SourceConfig) (*csv.Reader, error) {
	r := csv.NewReader(rd)
	r.LazyQuotes = true
	r.TrimLeadingSpace = true
	r.FieldsPerRecord = -1
	if delim, _ := cfg["delimiter"].(string); delim != "" {
		if delim == `\t` {
			delim = "\t"
		}
		runes := []rune(delim)
		if len(runes) != 1 {
			return nil, fmt.Errorf("delimiter must be a single character, got %q", delim)
		}
		r.Comma = runes[0]
	}
	return r, nil
}

func csvHasHeader(cfg SourceConfig) bool {
	switch h := cfg["hasHeader"].(type) {
	case bool:
		return h
	case string:
		return !strings.EqualFold(strings.TrimSpace(h), "false")
	}
	return true
}

// csvColumns names the columns from the explicit list, the header row, or
// positionally as col_1, col_2 and so on.
func csvColumns(cfg SourceConfig, first []string) []string {
	if list, _ := cfg["columns"].(string); list != "" {
		cols := strings.Split(list, ",")
		for i := range cols {
			cols[i] = strings.TrimSpace(cols[i])
		}
		return cols
	}
	cols := make([]string, len(first))
	for i := range first {
		if csvHasHeader(cfg) {
			cols[i] = strings.TrimSpace(strings.TrimPrefix(first[i], "\ufeff"))
		} else {
			cols[i] = "col_" + strconv.Itoa(i+1)
		}
	}
	return cols
}

// sendRow reports false once ctx is cancelled.
func sendRow(ctx context.Context, out chan<- Record, columns, row []string) bool {
	data := make(map[string]any, len(columns))
	for i, name := range columns {
		if i < len(row) && name != "" {
			data[name] = inferCSVValue(row[i])
		}
	}
	select {
	case out <- Record{Data: data}:
		return true
	case <-ctx.Done():
		return false
	}
}

// inferCSVValue parses a cell as a number or bool when it looks like one.
func inferCSVValue(s string) any {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	switch strings.ToLower(s) {
	case "true", "yes":
		return true
	case "false", "no":
		return false
	}
	return s
}
