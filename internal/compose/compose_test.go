package compose_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pagebuilder/internal/block"
	"pagebuilder/internal/compose"
)

func seq(ids ...string) []block.Block {
	out := make([]block.Block, len(ids))
	for i, id := range ids {
		out[i] = block.New(id, block.KindText)
	}
	return out
}

func TestAdd_AppendsDefaultWithFreshID(t *testing.T) {
	in := seq("a")
	out, added := compose.Add(in, block.KindHero)

	require.Len(t, out, 2)
	assert.Len(t, in, 1, "input must not change")
	assert.Equal(t, added.ID, out[1].ID)
	assert.NotEmpty(t, added.ID)
	assert.NotEqual(t, "a", added.ID)
	assert.Equal(t, block.DefaultPayload(block.KindHero), added.Data)
}

func TestUpdate_ShallowMerge(t *testing.T) {
	in := []block.Block{{ID: "h", Kind: block.KindHero, Data: block.HeroData{Title: "T", Subtitle: "S"}}}
	out, err := compose.Update(in, "h", map[string]any{"subtitle": "New"})
	require.NoError(t, err)

	assert.Equal(t, block.HeroData{Title: "T", Subtitle: "New"}, out[0].Data)
	assert.Equal(t, block.HeroData{Title: "T", Subtitle: "S"}, in[0].Data, "input must not change")
}

func TestUpdate_UnknownID(t *testing.T) {
	_, err := compose.Update(seq("a"), "zzz", map[string]any{"content": "x"})
	assert.True(t, errors.Is(err, compose.ErrBlockNotFound))
}

func TestUpdate_TypeMismatchLeavesSequence(t *testing.T) {
	in := []block.Block{block.New("p", block.KindProductRow)}
	out, err := compose.Update(in, "p", map[string]any{"count": "many"})
	var mismatch *block.SchemaMismatchError
	require.ErrorAs(t, err, &mismatch)
	assert.Equal(t, in, out)
}

func TestRemove_PreservesOrder(t *testing.T) {
	out := compose.Remove(seq("a", "b", "c", "d"), "b")
	assert.Equal(t, []string{"a", "c", "d"}, compose.IDs(out))
}

func TestMove_SwapsNeighbors(t *testing.T) {
	assert.Equal(t, []string{"b", "a", "c"}, compose.IDs(compose.Move(seq("a", "b", "c"), 1, compose.Up)))
	assert.Equal(t, []string{"a", "c", "b"}, compose.IDs(compose.Move(seq("a", "b", "c"), 1, compose.Down)))
}

func TestMove_BoundariesAreNoops(t *testing.T) {
	in := seq("a", "b", "c")
	assert.Equal(t, compose.IDs(in), compose.IDs(compose.Move(in, 0, compose.Up)))
	assert.Equal(t, compose.IDs(in), compose.IDs(compose.Move(in, 2, compose.Down)))
	assert.Equal(t, compose.IDs(in), compose.IDs(compose.Move(in, 7, compose.Up)))
	assert.Equal(t, compose.IDs(in), compose.IDs(compose.Move(in, -1, compose.Down)))
}

func TestMove_SwapIsSelfInverse(t *testing.T) {
	orig := seq("a", "b", "c", "d", "e")
	for i := 1; i < len(orig); i++ {
		moved := compose.Move(orig, i, compose.Up)
		restored := compose.Move(moved, i-1, compose.Down)
		assert.Equal(t, compose.IDs(orig), compose.IDs(restored), "index %d", i)
	}
}

func TestReorder_InsertionSemantic(t *testing.T) {
	out := compose.Reorder(seq("A", "B", "C", "D"), 0, 2)
	assert.Equal(t, []string{"B", "C", "A", "D"}, compose.IDs(out))
}

func TestReorder_DiffersFromMove(t *testing.T) {
	in := seq("A", "B", "C", "D")
	assert.Equal(t, []string{"D", "A", "B", "C"}, compose.IDs(compose.Reorder(in, 3, 0)))
	assert.Equal(t, []string{"A", "B", "D", "C"}, compose.IDs(compose.Move(in, 3, compose.Up)))
}

func TestReorder_OutOfRangeIsNoop(t *testing.T) {
	in := seq("A", "B")
	assert.Equal(t, []string{"A", "B"}, compose.IDs(compose.Reorder(in, 0, 5)))
	assert.Equal(t, []string{"A", "B"}, compose.IDs(compose.Reorder(in, -1, 1)))
}

func TestInsert_ClampsIndex(t *testing.T) {
	b := block.New("x", block.KindSpacer)
	assert.Equal(t, []string{"x", "a"}, compose.IDs(compose.Insert(seq("a"), -4, b)))
	assert.Equal(t, []string{"a", "x"}, compose.IDs(compose.Insert(seq("a"), 9, b)))
	assert.Equal(t, []string{"a", "x", "b"}, compose.IDs(compose.Insert(seq("a", "b"), 1, b)))
}

func TestCloneAll_FreshIDsDeepCopy(t *testing.T) {
	in := []block.Block{{ID: "g", Kind: block.KindGrid, Data: block.GridData{Items: []block.GridItem{{Title: "x"}}}}}
	out := compose.CloneAll(in)

	require.Len(t, out, 1)
	assert.NotEqual(t, "g", out[0].ID)
	out[0].Data.(block.GridData).Items[0].Title = "y"
	assert.Equal(t, "x", in[0].Data.(block.GridData).Items[0].Title)
}

func TestParseDirection(t *testing.T) {
	d, err := compose.ParseDirection("down")
	require.NoError(t, err)
	assert.Equal(t, compose.Down, d)
	_, err = compose.ParseDirection("sideways")
	assert.Error(t, err)
}
