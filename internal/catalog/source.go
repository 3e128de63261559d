// Package catalog imports products from files, HTTP endpoints and external
// databases into the product store.
package catalog

import (
	"cmp"
	"context"
	"fmt"
	"net/http"
	"slices"
	"time"

	"pagebuilder/internal/dbclient"
)

// ── Source ──────────────────────────────────────────────────
// A Source extracts records from an external system.

// SourceConfig is an opaque configuration map parsed per source type.
type SourceConfig map[string]any

// ConfigField describes a single configuration input for a source.
type ConfigField struct {
	Key      string   `json:"key"`
	Label    string   `json:"label"`
	Required bool     `json:"required"`
	Options  []string `json:"options,omitempty"`
	Default  string   `json:"default,omitempty"`
	Help     string   `json:"help,omitempty"`
}

// SourceSpec describes a source type and its configuration inputs.
type SourceSpec struct {
	Type         string        `json:"type"`
	Label        string        `json:"label"`
	ConfigFields []ConfigField `json:"configFields"`
}

// Source is implemented by every record source.
type Source interface {
	Spec() SourceSpec

	// Read streams records into a channel that is closed when reading ends
	// or ctx is cancelled. A read error is sent on the error channel
	// (buffered size 1).
	Read(ctx context.Context, cfg SourceConfig) (<-chan Record, <-chan error)
}

// RowsProvider runs read queries against a named database connection.
type RowsProvider interface {
	Rows(ctx context.Context, connectionID, query string, limit int) (*dbclient.Rows, error)
}

// ── Registry ───────────────────────────────────────────────

// Registry resolves sources by type.
type Registry struct {
	sources map[string]Source
}

// NewRegistry registers the file and HTTP sources, and the database source
// when rows is non-nil.
func NewRegistry(rows RowsProvider) *Registry {
	r := &Registry{sources: make(map[string]Source)}
	r.Register(&jsonFileSource{})
	r.Register(&csvFileSource{})
	r.Register(&httpSource{client: &http.Client{Timeout: 30 * time.Second}})
	if rows != nil {
		r.Register(&databaseSource{rows: rows})
	}
	return r
}

func (r *Registry) Register(s Source) {
	r.sources[s.Spec().Type] = s
}

// Get returns a registered source by type.
func (r *Registry) Get(typ string) (Source, error) {
	s, ok := r.sources[typ]
	if !ok {
		return nil, fmt.Errorf("unknown source type: %q", typ)
	}
	return s, nil
}

// Specs returns the specs of all registered sources ordered by type.
func (r *Registry) Specs() []SourceSpec {
	specs := make([]SourceSpec, 0, len(r.sources))
	for _, s := range r.sources {
		specs = append(specs, s.Spec())
	}
	slices.SortFunc(specs, func(a, b SourceSpec) int { return cmp.Compare(a.Type, b.Type) })
	return specs
}

// emitAll sends records to out until done or ctx is cancelled.
func emitAll(ctx context.Context, out chan<- Record, records []Record) {
	for _, rec := range records {
		select {
		case out <- rec:
		case <-ctx.Done():
			return
		}
	}
}

// streamFrom runs load on a goroutine and streams its records.
func streamFrom(ctx context.Context, load func() ([]Record, error)) (<-chan Record, <-chan error) {
	out := make(chan Record, 100)
	errCh := make(chan error, 1)

	go func() {
		defer close(out)
		defer close(errCh)

		records, err := load()
		if err != nil {
			errCh <- err
			return
		}
		emitAll(ctx, out, records)
	}()

	return out, errCh
}
