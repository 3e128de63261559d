package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePrice(t *testing.T) {
	tests := []struct {
		in   string
		want float64
		ok   bool
	}{
		{"12", 12, true},
		{"$1,299.90", 1299.90, true},
		{"R$ 1.299,90", 1299.90, true},
		{"1.299", 1299, true},
		{"1,5", 1.5, true},
		{"€ 7", 7, true},
		{"n/a", 0, false},
		{"", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := parsePrice(tt.in)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.InDelta(t, tt.want, got, 0.001)
			}
		})
	}
}

func TestFilterTransform_Ops(t *testing.T) {
	rec := func() Record { return Record{Data: map[string]any{"cost": "30", "name": "Desk lamp"}} }
	tests := []struct {
		op    string
		field string
		value any
		keep  bool
	}{
		{"eq", "cost", 30, true},
		{"neq", "cost", 30, false},
		{"gt", "cost", 29.5, true},
		{"gte", "cost", "30", true},
		{"lt", "cost", 30, false},
		{"lte", "cost", 30, true},
		{"contains", "name", "lamp", true},
		{"eq", "missing", "x", false},
		{"unknown", "cost", 1, true},
	}
	for _, tt := range tests {
		t.Run(tt.op+"/"+tt.field, func(t *testing.T) {
			_, keep := (&FilterTransform{Field: tt.field, Op: tt.op, Value: tt.value}).Transform(rec())
			assert.Equal(t, tt.keep, keep)
		})
	}
}

func TestBuildTransformers_CatalogTypes(t *testing.T) {
	ts, err := buildTransformers([]TransformConfig{
		{Type: "price", Config: map[string]any{"field": "cost"}},
		{Type: "map_values", Config: map[string]any{
			"field":   "dept",
			"values":  map[string]any{"Eletro": "Electronics"},
			"default": "Other",
		}},
	}, "")
	require.NoError(t, err)
	require.Len(t, ts, 2)

	r, keep := ApplyTransformers(Record{Data: map[string]any{"cost": "R$ 10,50", "dept": " eletro "}}, ts)
	require.True(t, keep)
	assert.InDelta(t, 10.5, r.Data["cost"], 0.001)
	assert.Equal(t, "Electronics", r.Data["dept"])

	r, keep = ApplyTransformers(Record{Data: map[string]any{"cost": 3, "dept": "Garden"}}, ts)
	require.True(t, keep)
	assert.Equal(t, float64(3), r.Data["cost"])
	assert.Equal(t, "Other", r.Data["dept"])

	_, keep = ApplyTransformers(Record{Data: map[string]any{"cost": "free", "dept": "Garden"}}, ts)
	assert.False(t, keep)

	_, err = buildTransformers([]TransformConfig{{Type: "map_values", Config: map[string]any{"field": "dept"}}}, "")
	assert.Error(t, err)
	_, err = buildTransformers([]TransformConfig{{Type: "price", Config: map[string]any{}}}, "")
	assert.Error(t, err)
}
