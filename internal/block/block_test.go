package block_test

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pagebuilder/internal/block"
)

func TestDefaultPayload_ValidForEveryKind(t *testing.T) {
	for _, k := range block.Kinds() {
		b := block.New("b-"+string(k), k)
		assert.NoError(t, block.Validate(b), "default payload for %s", k)
		assert.NotEmpty(t, block.Fields(k), "fields for %s", k)
	}
}

func TestDefaultPayload_UnknownKindIsEmpty(t *testing.T) {
	p := block.DefaultPayload("carousel")
	u, ok := p.(block.UnknownData)
	require.True(t, ok, "expected UnknownData, got %T", p)
	assert.Empty(t, u.Fields)
	assert.Nil(t, block.Fields("carousel"))
}

func TestDecode_CoercesLooseTypes(t *testing.T) {
	p, err := block.Decode(block.KindProductRow, map[string]any{
		"title":    "Deals",
		"category": "  Shoes ",
		"count":    "7",
	})
	require.NoError(t, err)
	row := p.(block.ProductRowData)
	assert.Equal(t, "Shoes", row.Category)
	assert.Equal(t, 7, row.Count)
}

func TestDecode_ClampsRanges(t *testing.T) {
	tests := []struct {
		name string
		kind block.Kind
		raw  map[string]any
		want block.Payload
	}{
		{"count above max", block.KindProductRow, map[string]any{"count": 99.0}, block.ProductRowData{Category: "All", Count: block.MaxProductCount}},
		{"count below min", block.KindProductRow, map[string]any{"count": -3.0}, block.ProductRowData{Category: "All", Count: block.MinProductCount}},
		{"missing count", block.KindProductRow, map[string]any{}, block.ProductRowData{Category: "All", Count: block.DefaultCount}},
		{"spacer too tall", block.KindSpacer, map[string]any{"height": 1000.0}, block.SpacerData{Height: block.MaxSpacerHeight}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := block.Decode(tt.kind, tt.raw)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDecode_RejectsMismatches(t *testing.T) {
	tests := []struct {
		name  string
		kind  block.Kind
		raw   map[string]any
		field string
	}{
		{"hero without title", block.KindHero, map[string]any{"subtitle": "x"}, "title"},
		{"text content object", block.KindText, map[string]any{"content": map[string]any{"a": 1}}, "content"},
		{"count not numeric", block.KindProductRow, map[string]any{"count": "lots"}, "count"},
		{"items not a list", block.KindGrid, map[string]any{"items": "a,b"}, "items"},
		{"testimonial quote missing", block.KindTestimonial, map[string]any{"items": []any{map[string]any{"author": "x"}}}, "items[0].quote"},
		{"image without src", block.KindImage, map[string]any{"alt": "x"}, "src"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := block.Decode(tt.kind, tt.raw)
			var mismatch *block.SchemaMismatchError
			require.True(t, errors.As(err, &mismatch), "expected SchemaMismatchError, got %v", err)
			assert.Equal(t, tt.field, mismatch.Field)
			assert.Equal(t, tt.kind, mismatch.Kind)
		})
	}
}

func TestDecode_AbsentItemsYieldEmptyList(t *testing.T) {
	p, err := block.Decode(block.KindGrid, map[string]any{"title": "x"})
	require.NoError(t, err)
	assert.Empty(t, p.(block.GridData).Items)
}

func TestMerge_KeepsUnspecifiedFields(t *testing.T) {
	hero := block.HeroData{Title: "Old", Subtitle: "Keep me", CTAText: "Go"}
	merged, err := block.Merge(block.KindHero, hero, map[string]any{"title": "New"})
	require.NoError(t, err)
	assert.Equal(t, block.HeroData{Title: "New", Subtitle: "Keep me", CTAText: "Go"}, merged)
}

func TestMerge_AllowsBlankRequiredWhileEditing(t *testing.T) {
	merged, err := block.Merge(block.KindHero, block.HeroData{Title: "Old"}, map[string]any{"title": ""})
	require.NoError(t, err)
	assert.Equal(t, "", merged.(block.HeroData).Title)
}

func TestValidate_UnknownKind(t *testing.T) {
	err := block.Validate(block.Block{ID: "x", Kind: "carousel", Data: block.UnknownData{}})
	var mismatch *block.SchemaMismatchError
	require.ErrorAs(t, err, &mismatch)
	assert.Equal(t, "unknown kind", mismatch.Reason)
}

func TestValidate_PayloadKindMismatch(t *testing.T) {
	err := block.Validate(block.Block{ID: "x", Kind: block.KindHero, Data: block.SpacerData{Height: 10}})
	assert.Error(t, err)
}

func TestBlockJSON_RoundTrip(t *testing.T) {
	in := block.Block{ID: "b1", Kind: block.KindGrid, Data: block.GridData{
		Title: "Grid", Columns: 2, Items: []block.GridItem{{Title: "One"}},
	}}
	raw, err := json.Marshal(in)
	require.NoError(t, err)

	var out block.Block
	require.NoError(t, json.Unmarshal(raw, &out))
	assert.Equal(t, in, out)
}

func TestBlockJSON_UnknownKindSurvives(t *testing.T) {
	raw := []byte(`{"id":"b9","kind":"carousel","data":{"slides":[1,2,3]}}`)
	var b block.Block
	require.NoError(t, json.Unmarshal(raw, &b))
	assert.Equal(t, block.Kind("carousel"), b.Kind)

	out, err := json.Marshal(b)
	require.NoError(t, err)
	assert.JSONEq(t, string(raw), string(out))
}

func TestBlockJSON_LenientOnStoredMismatch(t *testing.T) {
	var b block.Block
	require.NoError(t, json.Unmarshal([]byte(`{"id":"h","kind":"hero","data":{"subtitle":"no title"}}`), &b))
	assert.Equal(t, "no title", b.Data.(block.HeroData).Subtitle)
}

func TestClone_DeepCopiesItems(t *testing.T) {
	orig := block.Block{ID: "g", Kind: block.KindGrid, Data: block.GridData{Items: []block.GridItem{{Title: "a"}}}}
	cp := orig.Clone()
	cp.Data.(block.GridData).Items[0].Title = "changed"
	assert.Equal(t, "a", orig.Data.(block.GridData).Items[0].Title)
}
