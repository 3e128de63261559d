// Package generate turns free-text prompts into schema-valid blocks through an
// external text-generation provider.
package generate

import (
	"errors"
	"fmt"

	"pagebuilder/internal/block"
)

// ErrGenerationInFlight is returned when a request arrives for a target that
// already has one outstanding.
var ErrGenerationInFlight = errors.New("generation already in flight for target")

// Hint tells the provider what shape of output is expected.
type Hint struct {
	// Kind is the single block kind requested, or empty for a page.
	Kind block.Kind `json:"kind,omitempty"`
	// Schema describes the accepted fields per kind.
	Schema map[block.Kind][]block.FieldSpec `json:"schema"`
	// Rows are pre-resolved data values the output must be grounded on.
	Rows []map[string]any `json:"rows,omitempty"`
}

// Rejection records a candidate block dropped during validation.
type Rejection struct {
	Index  int        `json:"index"`
	Kind   block.Kind `json:"kind,omitempty"`
	Reason string     `json:"reason"`
	Err    error      `json:"-"`
}

func (r Rejection) Error() string {
	if r.Kind == "" {
		return fmt.Sprintf("block %d: %v", r.Index, r.Err)
	}
	return fmt.Sprintf("block %d (%s): %v", r.Index, r.Kind, r.Err)
}

// GenerationError reports a request that produced nothing usable. Existing
// composition state is never touched when it is returned.
type GenerationError struct {
	Target   string
	Reason   string
	Err      error
	Rejected []Rejection
}

func (e *GenerationError) Error() string {
	msg := fmt.Sprintf("generate %s: %s", e.Target, e.Reason)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	if len(e.Rejected) > 0 {
		msg += fmt.Sprintf(" (%d blocks rejected)", len(e.Rejected))
	}
	return msg
}

func (e *GenerationError) Unwrap() error { return e.Err }

// Result is a validated batch. Every block carries a freshly minted id.
type Result struct {
	Target   string        `json:"target"`
	Blocks   []block.Block `json:"blocks"`
	Rejected []Rejection   `json:"rejected,omitempty"`
}

// Apply returns a new sequence with the whole batch appended to seq.
func (r *Result) Apply(seq []block.Block) []block.Block {
	return r.ApplyAt(seq, len(seq))
}

// ApplyAt returns a new sequence with the whole batch inserted at index,
// clamped to the bounds of seq. seq itself is not modified.
func (r *Result) ApplyAt(seq []block.Block, index int) []block.Block {
	index = max(0, min(index, len(seq)))
	out := make([]block.Block, 0, len(seq)+len(r.Blocks))
	for _, b := range seq[:index] {
		out = append(out, b.Clone())
	}
	for _, b := range r.Blocks {
		out = append(out, b.Clone())
	}
	for _, b := range seq[index:] {
		out = append(out, b.Clone())
	}
	return out
}
