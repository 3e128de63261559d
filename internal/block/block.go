package block

import (
	"encoding/json"
	"fmt"
)

// Block is one typed content unit of a composition.
type Block struct {
	ID   string
	Kind Kind
	Data Payload
}

// New returns a block of the given kind holding its default payload.
func New(id string, kind Kind) Block {
	return Block{ID: id, Kind: kind, Data: DefaultPayload(kind)}
}

// Clone returns a deep copy of b. The id is kept; callers that need a new
// identity assign it themselves.
func (b Block) Clone() Block {
	if b.Data != nil {
		b.Data = b.Data.clone()
	}
	return b
}

type wireBlock struct {
	ID   string          `json:"id"`
	Kind Kind            `json:"kind"`
	Data json.RawMessage `json:"data"`
}

func (b Block) MarshalJSON() ([]byte, error) {
	data := b.Data
	if data == nil {
		data = DefaultPayload(b.Kind)
	}
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("marshal %s payload: %w", b.Kind, err)
	}
	return json.Marshal(wireBlock{ID: b.ID, Kind: b.Kind, Data: raw})
}

// UnmarshalJSON decodes leniently: stored payloads that no longer satisfy the
// schema are coerced as far as possible instead of failing the whole load.
func (b *Block) UnmarshalJSON(raw []byte) error {
	var w wireBlock
	if err := json.Unmarshal(raw, &w); err != nil {
		return fmt.Errorf("unmarshal block: %w", err)
	}
	fields := map[string]any{}
	if len(w.Data) > 0 && string(w.Data) != "null" {
		if err := json.Unmarshal(w.Data, &fields); err != nil {
			return fmt.Errorf("unmarshal block %s data: %w", w.ID, err)
		}
	}
	data, _ := decode(w.Kind, fields, false)
	b.ID = w.ID
	b.Kind = w.Kind
	b.Data = data
	return nil
}
