package mcpserver

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"pagebuilder/internal/block"
	"pagebuilder/internal/domain"
	"pagebuilder/internal/generate"
	"pagebuilder/internal/render"
	"pagebuilder/internal/service"
	"pagebuilder/internal/storage"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	return newGeneratingServer(t, nil)
}

func newGeneratingServer(t *testing.T, provider generate.Provider) *Server {
	t.Helper()
	db, err := storage.New(filepath.Join(t.TempDir(), "mcp.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	log := zap.NewNop()
	emitter := &service.MockEmitter{}
	pageStore := storage.NewPageStore(db)
	layoutStore := storage.NewLayoutStore(db)
	products := storage.NewProductStore(db)
	var gen *generate.Adapter
	if provider != nil {
		gen = generate.NewAdapter(provider, log)
	}
	pages := service.NewPageService(pageStore, layoutStore, gen, emitter, log)

	return New(Deps{
		Logger:     log,
		Pages:      pages,
		Layouts:    service.NewLayoutService(layoutStore, pageStore, emitter, log),
		Library:    service.NewLibraryService(storage.NewSavedBlockStore(db), pages),
		Categories: service.NewCategoryService(storage.NewCategoryStore(db), products, log),
		Renderer:   render.New(products),
	}, "test")
}

func call(args map[string]any) mcp.CallToolRequest {
	var req mcp.CallToolRequest
	req.Params.Arguments = args
	return req
}

func resultText(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	require.NotNil(t, res)
	require.Len(t, res.Content, 1)
	text, ok := res.Content[0].(mcp.TextContent)
	require.True(t, ok, "expected text content, got %T", res.Content[0])
	return text.Text
}

func decodeResult[T any](t *testing.T, res *mcp.CallToolResult) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &out))
	return out
}

func TestCreatePage_SetsActivePage(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()

	res, err := s.handleCreatePage(ctx, call(map[string]any{"title": "Summer Sale"}))
	require.NoError(t, err)
	p := decodeResult[domain.Page](t, res)
	assert.Equal(t, "summer-sale", p.Slug)

	pid, err := s.resolvePageID(map[string]any{})
	require.NoError(t, err)
	assert.Equal(t, p.ID, pid)
}

func TestResolvePageID_NoActivePage(t *testing.T) {
	s := newTestServer(t)
	_, err := s.resolvePageID(map[string]any{})
	assert.Error(t, err)
}

func TestBlockTools_EditActivePage(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()

	_, err := s.handleCreatePage(ctx, call(map[string]any{"title": "Launch"}))
	require.NoError(t, err)

	res, err := s.handleAddBlock(ctx, call(map[string]any{"kind": "hero"}))
	require.NoError(t, err)
	res, err = s.handleAddBlock(ctx, call(map[string]any{"kind": "text"}))
	require.NoError(t, err)
	res, err = s.handleAddBlock(ctx, call(map[string]any{"kind": "spacer", "index": float64(0)}))
	require.NoError(t, err)
	seq := decodeResult[[]blockSummary](t, res)
	require.Len(t, seq, 3)
	assert.Equal(t, []block.Kind{block.KindSpacer, block.KindHero, block.KindText},
		[]block.Kind{seq[0].Kind, seq[1].Kind, seq[2].Kind})

	heroID := seq[1].ID
	_, err = s.handleUpdateBlock(ctx, call(map[string]any{
		"blockId": heroID,
		"data":    `{"title": "Launch week"}`,
	}))
	require.NoError(t, err)

	res, err = s.handleMoveBlock(ctx, call(map[string]any{"blockId": heroID, "direction": "up"}))
	require.NoError(t, err)
	seq = decodeResult[[]blockSummary](t, res)
	assert.Equal(t, heroID, seq[0].ID)

	res, err = s.handleDuplicateBlock(ctx, call(map[string]any{"blockId": heroID}))
	require.NoError(t, err)
	seq = decodeResult[[]blockSummary](t, res)
	require.Len(t, seq, 4)
	assert.Equal(t, block.KindHero, seq[1].Kind)
	assert.NotEqual(t, heroID, seq[1].ID)

	res, err = s.handleRemoveBlock(ctx, call(map[string]any{"blockIds": seq[1].ID + ", " + seq[2].ID}))
	require.NoError(t, err)
	seq = decodeResult[[]blockSummary](t, res)
	assert.Len(t, seq, 2)

	res, err = s.handleRenderPage(ctx, call(map[string]any{}))
	require.NoError(t, err)
	assert.Contains(t, resultText(t, res), "Launch week")
}

func TestRemoveBlock_UnknownIDLeavesPageUntouched(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()

	_, err := s.handleCreatePage(ctx, call(map[string]any{"title": "Launch"}))
	require.NoError(t, err)
	res, err := s.handleAddBlock(ctx, call(map[string]any{"kind": "text"}))
	require.NoError(t, err)
	seq := decodeResult[[]blockSummary](t, res)

	_, err = s.handleRemoveBlock(ctx, call(map[string]any{"blockIds": seq[0].ID + ",missing"}))
	require.Error(t, err)

	pid, _ := s.resolvePageID(map[string]any{})
	p, err := s.pages.GetPage(pid)
	require.NoError(t, err)
	assert.Len(t, p.Blocks, 1)
}

func TestAddBlock_UnknownKind(t *testing.T) {
	s := newTestServer(t)
	_, err := s.handleAddBlock(context.Background(), call(map[string]any{"kind": "carousel"}))
	assert.ErrorContains(t, err, "unknown block kind")
}

func TestDeletePage_ClearsActivePage(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()

	res, err := s.handleCreatePage(ctx, call(map[string]any{"title": "Temp"}))
	require.NoError(t, err)
	p := decodeResult[domain.Page](t, res)

	_, err = s.handleDeletePage(ctx, call(map[string]any{"pageId": p.ID}))
	require.NoError(t, err)
	_, err = s.resolvePageID(map[string]any{})
	assert.Error(t, err)
}

func TestPageResource(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()

	res, err := s.handleCreatePage(ctx, call(map[string]any{"title": "Resource"}))
	require.NoError(t, err)
	p := decodeResult[domain.Page](t, res)
	_, err = s.handleAddBlock(ctx, call(map[string]any{"kind": "hero"}))
	require.NoError(t, err)

	var req mcp.ReadResourceRequest
	req.Params.URI = pageURIPrefix + p.ID + pageHTMLSuffix
	contents, err := s.handlePageResource(ctx, req)
	require.NoError(t, err)
	require.Len(t, contents, 1)
	html := contents[0].(mcp.TextResourceContents)
	assert.Equal(t, "text/html", html.MIMEType)
	assert.Contains(t, html.Text, "Welcome to our store")

	req.Params.URI = pageURIPrefix + p.ID
	contents, err = s.handlePageResource(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, "application/json", contents[0].(mcp.TextResourceContents).MIMEType)
}

func TestParsePageURI(t *testing.T) {
	cases := []struct {
		uri    string
		id     string
		asHTML bool
	}{
		{"pages://page/abc", "abc", false},
		{"pages://page/abc/html", "abc", true},
		{"pages://page/", "", false},
		{"pages://page/a/b", "", false},
		{"notes://page/abc", "", false},
	}
	for _, c := range cases {
		id, asHTML := parsePageURI(c.uri)
		assert.Equal(t, c.id, id, c.uri)
		assert.Equal(t, c.asHTML, asHTML, c.uri)
	}
}

func TestOptionalToolsNotRegistered(t *testing.T) {
	s := newTestServer(t)
	tools := s.mcp.ListTools()
	assert.Contains(t, tools, "add_block")
	assert.Contains(t, tools, "curate_categories")
	assert.NotContains(t, tools, "query_rows")
	assert.NotContains(t, tools, "run_import")
	assert.NotContains(t, tools, "generate_from_rows")
}

func TestSaveCategory_CreateThenUpdate(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()

	res, err := s.handleSaveCategory(ctx, call(map[string]any{
		"category": map[string]any{"name": "Shoes", "iconKey": "shoe"},
	}))
	require.NoError(t, err)
	created := decodeResult[domain.CategoryDetail](t, res)
	require.NotEmpty(t, created.ID)

	_, err = s.handleSaveCategory(ctx, call(map[string]any{
		"category": `{"name": "Bags"}`,
	}))
	require.NoError(t, err)

	_, err = s.handleSaveCategory(ctx, call(map[string]any{
		"category": map[string]any{"id": created.ID, "name": "Sneakers", "promoText": "New in"},
	}))
	require.NoError(t, err)

	cats, err := s.categories.ListCategories()
	require.NoError(t, err)
	require.Len(t, cats, 2)
	assert.Equal(t, "Sneakers", cats[0].Name)
	assert.Equal(t, "New in", cats[0].PromoText)
	assert.Equal(t, "Bags", cats[1].Name)

	_, err = s.handleSaveCategory(ctx, call(map[string]any{"category": map[string]any{"name": "  "}}))
	assert.Error(t, err)

	_, err = s.handleDeleteCategory(ctx, call(map[string]any{"categoryId": created.ID}))
	require.NoError(t, err)
	cats, err = s.categories.ListCategories()
	require.NoError(t, err)
	assert.Len(t, cats, 1)
}

func TestGenerateBlocks_ReportsRejectionReasons(t *testing.T) {
	provider := generate.ProviderFunc(func(context.Context, string, generate.Hint) ([]byte, error) {
		return []byte(`[
			{"kind": "text", "data": {"content": "Fresh arrivals"}},
			{"kind": "text", "data": {"content": ""}}
		]`), nil
	})
	s := newGeneratingServer(t, provider)
	ctx := context.Background()

	_, err := s.handleCreatePage(ctx, call(map[string]any{"title": "Launch"}))
	require.NoError(t, err)

	res, err := s.handleGenerateBlocks(ctx, call(map[string]any{"prompt": "new season"}))
	require.NoError(t, err)

	var reply struct {
		Inserted []blockSummary `json:"inserted"`
		Rejected []struct {
			Index  int    `json:"index"`
			Kind   string `json:"kind"`
			Reason string `json:"reason"`
		} `json:"rejected"`
	}
	require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &reply))
	require.Len(t, reply.Inserted, 1)
	require.Len(t, reply.Rejected, 1)
	assert.Equal(t, 1, reply.Rejected[0].Index)
	assert.Equal(t, "text", reply.Rejected[0].Kind)
	assert.Contains(t, reply.Rejected[0].Reason, "content")
}
