package catalog

import (
	"context"
	"errors"
	"fmt"
	"time"

	"pagebuilder/internal/domain"
)

// ── Job ────────────────────────────────────────────────────
// Orchestrates: source.Read → transform chain → field mapping → product store.

// WriteMode determines how imported products reach the store.
type WriteMode string

const (
	WriteReplace WriteMode = "replace" // delete every product, insert fresh
	WriteUpsert  WriteMode = "upsert"  // insert or update by id
)

const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Job is a declarative catalog import.
type Job struct {
	Name       string            `json:"name" yaml:"name"`
	Source     string            `json:"source" yaml:"source"`
	Config     SourceConfig      `json:"config" yaml:"config"`
	Transforms []TransformConfig `json:"transforms,omitempty" yaml:"transforms"`
	Mapping    FieldMapping      `json:"mapping" yaml:"mapping"`
	Mode       WriteMode         `json:"mode" yaml:"mode"`
	DedupeKey  string            `json:"dedupeKey,omitempty" yaml:"dedupe_key"`
	Schedule   string            `json:"schedule,omitempty" yaml:"schedule"`    // cron expression
	WatchPath  string            `json:"watchPath,omitempty" yaml:"watch_path"` // re-import when this file changes
}

// Validate checks the fields the engine relies on.
func (j *Job) Validate() error {
	if j.Name == "" {
		return errors.New("job name is required")
	}
	if j.Source == "" {
		return fmt.Errorf("job %s: source is required", j.Name)
	}
	switch j.Mode {
	case "", WriteReplace, WriteUpsert:
	default:
		return fmt.Errorf("job %s: unknown mode %q", j.Name, j.Mode)
	}
	return nil
}

// Result is the outcome of running an import job.
type Result struct {
	Job         string        `json:"job"`
	Status      string        `json:"status"`
	RowsRead    int           `json:"rowsRead"`
	RowsWritten int           `json:"rowsWritten"`
	Skipped     []string      `json:"skipped,omitempty"`
	Duration    time.Duration `json:"duration"`
	Error       string        `json:"error,omitempty"`
}

// ── Engine ─────────────────────────────────────────────────

// Engine runs import jobs using a source registry and a product store.
type Engine struct {
	Sources  *Registry
	Products domain.ProductStore
}

// Run executes job end-to-end. Records that cannot be mapped are skipped and
// listed in the result; a run with nothing to write fails without touching
// the store.
func (e *Engine) Run(ctx context.Context, job *Job) (*Result, error) {
	start := time.Now()
	result := &Result{Job: job.Name}
	fail := func(err error) (*Result, error) {
		result.Status = StatusError
		result.Error = err.Error()
		result.Duration = time.Since(start)
		return result, err
	}

	products, err := e.collect(ctx, job, result)
	if err != nil {
		return fail(err)
	}
	if len(products) == 0 {
		return fail(errors.New("no products to import"))
	}

	if job.Mode == WriteUpsert {
		err = e.Products.UpsertProducts(products)
	} else {
		err = e.Products.ReplaceProducts(products)
	}
	if err != nil {
		return fail(fmt.Errorf("write: %w", err))
	}

	result.Status = StatusSuccess
	result.RowsWritten = len(products)
	result.Duration = time.Since(start)
	return result, nil
}

// Preview runs the read, transform and mapping phases and returns up to
// limit products without writing.
func (e *Engine) Preview(ctx context.Context, job *Job, limit int) ([]domain.Product, error) {
	products, err := e.collect(ctx, job, &Result{Job: job.Name})
	if err != nil {
		return nil, err
	}
	if limit > 0 && len(products) > limit {
		products = products[:limit]
	}
	return products, nil
}

func (e *Engine) collect(ctx context.Context, job *Job, result *Result) ([]domain.Product, error) {
	if err := job.Validate(); err != nil {
		return nil, err
	}
	source, err := e.Sources.Get(job.Source)
	if err != nil {
		return nil, err
	}
	transformers, err := buildTransformers(job.Transforms, job.DedupeKey)
	if err != nil {
		return nil, err
	}

	readCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	recCh, errCh := source.Read(readCtx, job.Config)

	var records []Record
	for rec := range recCh {
		result.RowsRead++
		if transformed, keep := ApplyTransformers(rec, transformers); keep {
			records = append(records, transformed)
		}
	}
	if err := <-errCh; err != nil {
		return nil, fmt.Errorf("read: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	records = applyBatchSort(records, transformers)

	products := make([]domain.Product, 0, len(records))
	seen := make(map[int]bool, len(records))
	for i, rec := range records {
		p, err := job.Mapping.ToProduct(rec)
		if err == nil && p.ID == 0 && job.Mode == WriteUpsert {
			err = errors.New("upsert needs an id")
		}
		if err == nil && p.ID != 0 && seen[p.ID] {
			err = fmt.Errorf("duplicate id %d", p.ID)
		}
		if err != nil {
			result.Skipped = append(result.Skipped, fmt.Sprintf("record %d: %v", i, err))
			continue
		}
		if p.ID != 0 {
			seen[p.ID] = true
		}
		products = append(products, p)
	}
	assignIDs(products, seen)
	return products, nil
}

// assignIDs gives products without an id the next free ids in record order,
// so later records count as newer.
func assignIDs(products []domain.Product, used map[int]bool) {
	next := 1
	for i := range products {
		if products[i].ID != 0 {
			continue
		}
		for used[next] {
			next++
		}
		products[i].ID = next
		used[next] = true
	}
}
