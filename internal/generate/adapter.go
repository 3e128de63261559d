package generate

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"pagebuilder/internal/block"
	"pagebuilder/internal/guard"
)

// Provider is the external text-generation service. It returns raw JSON
// describing one block or a list of blocks.
type Provider interface {
	Generate(ctx context.Context, prompt string, hint Hint) ([]byte, error)
}

// ProviderFunc adapts a function to Provider.
type ProviderFunc func(ctx context.Context, prompt string, hint Hint) ([]byte, error)

func (f ProviderFunc) Generate(ctx context.Context, prompt string, hint Hint) ([]byte, error) {
	return f(ctx, prompt, hint)
}

// Adapter validates provider output into blocks. Requests are de-duplicated
// per target, usually the id of the page or layout the result is merged into.
type Adapter struct {
	provider Provider
	logger   *zap.Logger
	inFlight guard.Guard
}

func NewAdapter(provider Provider, logger *zap.Logger) *Adapter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Adapter{provider: provider, logger: logger}
}

// Option configures a single generation request.
type Option func(*request)

type request struct {
	apply func(*Result) error
}

// WithApply merges the validated batch into its target before the target is
// released, so no second request for it can start until the merge is done.
// An apply error fails the request.
func WithApply(fn func(*Result) error) Option {
	return func(r *request) { r.apply = fn }
}

// GenerateBlock asks for a single block of kind. Only the first valid
// candidate is kept.
func (a *Adapter) GenerateBlock(ctx context.Context, target, prompt string, kind block.Kind, opts ...Option) (*Result, error) {
	if !block.IsKnown(kind) {
		return nil, &GenerationError{Target: target, Reason: "unknown kind " + string(kind)}
	}
	return a.run(ctx, target, prompt, Hint{Kind: kind, Schema: schemaFor(kind)}, opts)
}

// GeneratePage asks for an ordered sequence of blocks of any kind.
func (a *Adapter) GeneratePage(ctx context.Context, target, prompt string, opts ...Option) (*Result, error) {
	return a.run(ctx, target, prompt, Hint{Schema: schemaFor()}, opts)
}

// GenerateFromRows asks for blocks whose content is drawn from rows.
func (a *Adapter) GenerateFromRows(ctx context.Context, target, prompt string, rows []map[string]any, opts ...Option) (*Result, error) {
	if len(rows) == 0 {
		return nil, &GenerationError{Target: target, Reason: "no grounding rows"}
	}
	return a.run(ctx, target, prompt, Hint{Schema: schemaFor(), Rows: rows}, opts)
}

// InFlight reports whether target has a request outstanding.
func (a *Adapter) InFlight(target string) bool {
	return a.inFlight.Running(target)
}

// Wait blocks until outstanding requests finish or ctx is done.
func (a *Adapter) Wait(ctx context.Context) {
	a.inFlight.WaitAll(ctx)
}

func (a *Adapter) run(ctx context.Context, target, prompt string, hint Hint, opts []Option) (*Result, error) {
	var req request
	for _, opt := range opts {
		opt(&req)
	}

	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return nil, &GenerationError{Target: target, Reason: "empty prompt"}
	}
	if !a.inFlight.TryLock(target) {
		return nil, ErrGenerationInFlight
	}
	defer a.inFlight.Unlock(target)

	log := a.logger.With(zap.String("target", target), zap.String("kind", string(hint.Kind)))
	log.Debug("generation requested", zap.Int("rows", len(hint.Rows)))

	raw, err := a.provider.Generate(ctx, prompt, hint)
	if err != nil {
		log.Warn("provider failed", zap.Error(err))
		return nil, &GenerationError{Target: target, Reason: "provider failed", Err: err}
	}
	candidates, err := parseCandidates(raw)
	if err != nil {
		log.Warn("unusable provider output", zap.Error(err))
		return nil, &GenerationError{Target: target, Reason: "unusable output", Err: err}
	}

	res := &Result{Target: target}
	for i, c := range candidates {
		b, kind, err := toBlock(c, hint.Kind)
		if err != nil {
			res.Rejected = append(res.Rejected, Rejection{Index: i, Kind: kind, Reason: err.Error(), Err: err})
			log.Debug("block rejected", zap.Int("index", i), zap.Error(err))
			continue
		}
		res.Blocks = append(res.Blocks, b)
	}
	if len(res.Blocks) == 0 {
		log.Warn("no usable blocks", zap.Int("rejected", len(res.Rejected)))
		return nil, &GenerationError{Target: target, Reason: "no usable blocks", Rejected: res.Rejected}
	}
	if hint.Kind != "" {
		res.Blocks = res.Blocks[:1]
	}
	if req.apply != nil {
		if err := req.apply(res); err != nil {
			log.Warn("merge failed", zap.Error(err))
			return nil, fmt.Errorf("merge generated blocks into %s: %w", target, err)
		}
	}
	log.Info("generation complete", zap.Int("blocks", len(res.Blocks)), zap.Int("rejected", len(res.Rejected)))
	return res, nil
}

func schemaFor(kinds ...block.Kind) map[block.Kind][]block.FieldSpec {
	if len(kinds) == 0 {
		kinds = block.Kinds()
	}
	out := make(map[block.Kind][]block.FieldSpec, len(kinds))
	for _, k := range kinds {
		out[k] = block.Fields(k)
	}
	return out
}
