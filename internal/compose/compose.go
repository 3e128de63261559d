// Package compose holds the pure editing operations over an ordered block
// sequence. Every function returns a new slice and leaves its input intact;
// persisting the result is an explicit, separate step taken by the caller.
package compose

import (
	"errors"
	"fmt"

	"github.com/google/uuid"

	"pagebuilder/internal/block"
)

// ErrBlockNotFound is returned when an id does not match any block.
var ErrBlockNotFound = errors.New("block not found")

// Direction selects the neighbor Move swaps with.
type Direction int

const (
	Up Direction = iota
	Down
)

func (d Direction) String() string {
	if d == Up {
		return "up"
	}
	return "down"
}

// ParseDirection accepts "up" or "down".
func ParseDirection(s string) (Direction, error) {
	switch s {
	case "up":
		return Up, nil
	case "down":
		return Down, nil
	default:
		return Up, fmt.Errorf("invalid direction %q (want up or down)", s)
	}
}

// NewID mints a block identity.
func NewID() string {
	return uuid.New().String()
}

// Add appends a block of kind with a fresh id and the kind's default payload.
func Add(seq []block.Block, kind block.Kind) ([]block.Block, block.Block) {
	b := block.New(NewID(), kind)
	out := make([]block.Block, 0, len(seq)+1)
	out = append(out, seq...)
	out = append(out, b)
	return out, b
}

// Update shallow-merges partial into the payload of the block with id.
func Update(seq []block.Block, id string, partial map[string]any) ([]block.Block, error) {
	i := IndexOf(seq, id)
	if i < 0 {
		return seq, fmt.Errorf("update %s: %w", id, ErrBlockNotFound)
	}
	data, err := block.Merge(seq[i].Kind, seq[i].Data, partial)
	if err != nil {
		return seq, fmt.Errorf("update %s: %w", id, err)
	}
	out := clone(seq)
	out[i].Data = data
	return out, nil
}

// Remove deletes the block with id, keeping the order of the rest.
func Remove(seq []block.Block, id string) []block.Block {
	out := make([]block.Block, 0, len(seq))
	for _, b := range seq {
		if b.ID != id {
			out = append(out, b)
		}
	}
	return out
}

// Move swaps the block at index with its neighbor in dir. Moving past either
// end, or an index out of range, is a no-op.
func Move(seq []block.Block, index int, dir Direction) []block.Block {
	out := clone(seq)
	target := index - 1
	if dir == Down {
		target = index + 1
	}
	if index < 0 || index >= len(out) || target < 0 || target >= len(out) {
		return out
	}
	out[index], out[target] = out[target], out[index]
	return out
}

// Reorder removes the block at source and re-inserts it at target, shifting
// the blocks in between by one. This is the drag-and-drop semantic and is
// deliberately different from Move's swap.
func Reorder(seq []block.Block, source, target int) []block.Block {
	out := clone(seq)
	if source < 0 || source >= len(out) || target < 0 || target >= len(out) || source == target {
		return out
	}
	moved := out[source]
	out = append(out[:source], out[source+1:]...)
	out = append(out[:target], append([]block.Block{moved}, out[target:]...)...)
	return out
}

// Insert places b at index, clamped to the sequence bounds.
func Insert(seq []block.Block, index int, b block.Block) []block.Block {
	index = min(max(index, 0), len(seq))
	out := make([]block.Block, 0, len(seq)+1)
	out = append(out, seq[:index]...)
	out = append(out, b)
	out = append(out, seq[index:]...)
	return out
}

// CloneBlock deep-copies b under a fresh id.
func CloneBlock(b block.Block) block.Block {
	c := b.Clone()
	c.ID = NewID()
	return c
}

// CloneAll deep-copies every block of seq under fresh ids.
func CloneAll(seq []block.Block) []block.Block {
	out := make([]block.Block, len(seq))
	for i, b := range seq {
		out[i] = CloneBlock(b)
	}
	return out
}

// IndexOf returns the position of id in seq, or -1.
func IndexOf(seq []block.Block, id string) int {
	for i, b := range seq {
		if b.ID == id {
			return i
		}
	}
	return -1
}

// IDs lists the block ids of seq in order.
func IDs(seq []block.Block) []string {
	ids := make([]string, len(seq))
	for i, b := range seq {
		ids[i] = b.ID
	}
	return ids
}

func clone(seq []block.Block) []block.Block {
	out := make([]block.Block, len(seq))
	copy(out, seq)
	return out
}
