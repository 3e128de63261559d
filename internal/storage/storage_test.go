package storage_test

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pagebuilder/internal/block"
	"pagebuilder/internal/domain"
	"pagebuilder/internal/storage"
)

func openDB(t *testing.T) *storage.DB {
	t.Helper()
	db, err := storage.New(filepath.Join(t.TempDir(), "pagebuilder.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestPageStore_RoundTripKeepsBlockOrder(t *testing.T) {
	s := storage.NewPageStore(openDB(t))

	p := &domain.Page{
		ID:    "p1",
		Title: "Home",
		Slug:  "home",
		Blocks: []block.Block{
			block.New("b1", block.KindHero),
			block.New("b2", block.KindProductRow),
			{ID: "b3", Kind: "carousel", Data: block.UnknownData{Fields: map[string]any{"speed": float64(3)}}},
		},
	}
	require.NoError(t, s.CreatePage(p))
	assert.Equal(t, domain.PageDraft, p.Status)

	got, err := s.GetPage("p1")
	require.NoError(t, err)
	require.Len(t, got.Blocks, 3)
	assert.Equal(t, []string{"b1", "b2", "b3"}, []string{got.Blocks[0].ID, got.Blocks[1].ID, got.Blocks[2].ID})
	assert.Equal(t, block.DefaultPayload(block.KindHero), got.Blocks[0].Data)
	assert.Equal(t, block.Kind("carousel"), got.Blocks[2].Kind)

	bySlug, err := s.GetPageBySlug("home")
	require.NoError(t, err)
	assert.Equal(t, "p1", bySlug.ID)
}

func TestPageStore_UpdateReplacesBlocks(t *testing.T) {
	s := storage.NewPageStore(openDB(t))
	p := &domain.Page{ID: "p1", Title: "Home", Slug: "home", Blocks: []block.Block{block.New("a", block.KindText), block.New("b", block.KindSpacer)}}
	require.NoError(t, s.CreatePage(p))
	created := p.UpdatedAt

	time.Sleep(2 * time.Millisecond)
	p.Blocks = []block.Block{p.Blocks[1], p.Blocks[0]}
	p.Status = domain.PagePublished
	require.NoError(t, s.UpdatePage(p))
	assert.True(t, p.UpdatedAt.After(created))

	got, err := s.GetPage("p1")
	require.NoError(t, err)
	assert.Equal(t, domain.PagePublished, got.Status)
	assert.Equal(t, "b", got.Blocks[0].ID)
	assert.Equal(t, "a", got.Blocks[1].ID)
}

func TestPageStore_NotFound(t *testing.T) {
	s := storage.NewPageStore(openDB(t))

	_, err := s.GetPage("missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.ErrorIs(t, s.UpdatePage(&domain.Page{ID: "missing", Slug: "x"}), domain.ErrNotFound)
	assert.ErrorIs(t, s.DeletePage("missing"), domain.ErrNotFound)
}

func TestPageStore_SlugIsUnique(t *testing.T) {
	s := storage.NewPageStore(openDB(t))
	require.NoError(t, s.CreatePage(&domain.Page{ID: "p1", Title: "A", Slug: "same"}))
	assert.Error(t, s.CreatePage(&domain.Page{ID: "p2", Title: "B", Slug: "same"}))
}

func TestPageStore_DeleteAndList(t *testing.T) {
	s := storage.NewPageStore(openDB(t))
	require.NoError(t, s.CreatePage(&domain.Page{ID: "p1", Title: "A", Slug: "a", Blocks: []block.Block{block.New("x", block.KindText)}}))
	require.NoError(t, s.CreatePage(&domain.Page{ID: "p2", Title: "B", Slug: "b"}))

	require.NoError(t, s.DeletePage("p1"))
	pages, err := s.ListPages()
	require.NoError(t, err)
	require.Len(t, pages, 1)
	assert.Equal(t, "p2", pages[0].ID)
	assert.Empty(t, pages[0].Blocks)
}

func defaults(t *testing.T, s *storage.LayoutStore) []string {
	t.Helper()
	layouts, err := s.ListLayouts()
	require.NoError(t, err)
	var ids []string
	for _, l := range layouts {
		if l.IsDefault {
			ids = append(ids, l.ID)
		}
	}
	return ids
}

func TestLayoutStore_SetDefaultIsExclusive(t *testing.T) {
	s := storage.NewLayoutStore(openDB(t))
	for _, id := range []string{"l1", "l2", "l3"} {
		require.NoError(t, s.CreateLayout(&domain.Layout{ID: id, Name: id}))
		time.Sleep(time.Millisecond)
	}

	for _, id := range []string{"l2", "l1", "l3", "l3", "l2"} {
		require.NoError(t, s.SetDefaultLayout(id))
		assert.Equal(t, []string{id}, defaults(t, s))
	}

	def, err := s.GetDefaultLayout()
	require.NoError(t, err)
	assert.Equal(t, "l2", def.ID)

	assert.ErrorIs(t, s.SetDefaultLayout("missing"), domain.ErrNotFound)
	assert.Equal(t, []string{"l2"}, defaults(t, s))
}

func TestLayoutStore_CreateAsDefaultClearsOthers(t *testing.T) {
	s := storage.NewLayoutStore(openDB(t))
	require.NoError(t, s.CreateLayout(&domain.Layout{ID: "l1", Name: "one", IsDefault: true}))
	require.NoError(t, s.CreateLayout(&domain.Layout{ID: "l2", Name: "two", IsDefault: true}))
	assert.Equal(t, []string{"l2"}, defaults(t, s))
}

func TestLayoutStore_DeleteDefaultPromotesOldest(t *testing.T) {
	s := storage.NewLayoutStore(openDB(t))
	for _, id := range []string{"l1", "l2", "l3"} {
		require.NoError(t, s.CreateLayout(&domain.Layout{ID: id, Name: id}))
		time.Sleep(time.Millisecond)
	}
	require.NoError(t, s.SetDefaultLayout("l1"))

	require.NoError(t, s.DeleteLayout("l1"))
	assert.Equal(t, []string{"l2"}, defaults(t, s))

	require.NoError(t, s.DeleteLayout("l3"))
	assert.Equal(t, []string{"l2"}, defaults(t, s))

	require.NoError(t, s.DeleteLayout("l2"))
	_, err := s.GetDefaultLayout()
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestLayoutStore_UpdateKeepsDefaultFlag(t *testing.T) {
	s := storage.NewLayoutStore(openDB(t))
	l := &domain.Layout{ID: "l1", Name: "one", IsDefault: true}
	require.NoError(t, s.CreateLayout(l))

	l.IsDefault = false
	l.Name = "renamed"
	l.Blocks = []block.Block{block.New("h", block.KindHero)}
	require.NoError(t, s.UpdateLayout(l))
	assert.True(t, l.IsDefault)

	got, err := s.GetLayout("l1")
	require.NoError(t, err)
	assert.Equal(t, "renamed", got.Name)
	assert.Len(t, got.Blocks, 1)
}

func TestSavedBlockStore(t *testing.T) {
	s := storage.NewSavedBlockStore(openDB(t))
	require.NoError(t, s.CreateSavedBlock(&domain.SavedBlock{ID: "s2", Name: "Promo", Category: "Marketing", Block: block.New("b", block.KindHero)}))
	require.NoError(t, s.CreateSavedBlock(&domain.SavedBlock{ID: "s1", Name: "Gap", Category: "Layout", Block: block.New("c", block.KindSpacer)}))

	list, err := s.ListSavedBlocks()
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Layout", list[0].Category)

	got, err := s.GetSavedBlock("s2")
	require.NoError(t, err)
	assert.Equal(t, block.KindHero, got.Block.Kind)

	require.NoError(t, s.DeleteSavedBlock("s2"))
	_, err = s.GetSavedBlock("s2")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCategoryStore_OrderAndReorder(t *testing.T) {
	s := storage.NewCategoryStore(openDB(t))
	for _, name := range []string{"Books", "Toys", "Garden"} {
		c := &domain.CategoryDetail{ID: "id-" + name, Name: name,
			Highlights:    []domain.Highlight{{Title: name + " picks"}},
			SubCategories: []domain.SubCategory{{Title: "All", Items: []string{"a", "b"}}},
		}
		require.NoError(t, s.CreateCategory(c))
	}

	list, err := s.ListCategories()
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "Books", list[0].Name)
	assert.Equal(t, []string{"a", "b"}, list[0].SubCategories[0].Items)

	require.NoError(t, s.ReorderCategories([]string{"id-Garden", "id-Books"}))
	list, err = s.ListCategories()
	require.NoError(t, err)
	assert.Equal(t, []string{"Garden", "Books", "Toys"}, []string{list[0].Name, list[1].Name, list[2].Name})

	assert.ErrorIs(t, s.ReorderCategories([]string{"missing"}), domain.ErrNotFound)

	c, err := s.GetCategory("id-Toys")
	require.NoError(t, err)
	c.PromoText = "50% off"
	require.NoError(t, s.UpdateCategory(c))
	c, err = s.GetCategory("id-Toys")
	require.NoError(t, err)
	assert.Equal(t, "50% off", c.PromoText)
}

func TestProductStore(t *testing.T) {
	s := storage.NewProductStore(openDB(t))
	require.NoError(t, s.ReplaceProducts([]domain.Product{
		{ID: 3, Name: "Laptop", Category: "Electronics", Price: 900, FlashSale: true},
		{ID: 1, Name: "Phone", Category: "Electronics", Price: 300, Sold: 7},
		{ID: 2, Name: "Shirt", Category: "Fashion", Price: 20},
	}))

	all, err := s.Products()
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, 1, all[0].ID)
	assert.True(t, all[2].FlashSale)

	elec, err := s.ProductsByCategory("Electronics", 1)
	require.NoError(t, err)
	require.Len(t, elec, 1)
	assert.Equal(t, "Phone", elec[0].Name)

	none, err := s.ProductsByCategory("Unknown", 4)
	require.NoError(t, err)
	assert.Empty(t, none)

	require.NoError(t, s.UpsertProducts([]domain.Product{{ID: 2, Name: "Shirt", Category: "Fashion", Price: 15}, {ID: 4, Name: "Hat", Category: "Fashion"}}))
	fashion, err := s.ProductsByCategory("Fashion", 0)
	require.NoError(t, err)
	require.Len(t, fashion, 2)
	assert.InDelta(t, 15.0, fashion[0].Price, 0.001)

	require.NoError(t, s.ReplaceProducts(nil))
	all, err = s.Products()
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestImportRunStore(t *testing.T) {
	s := storage.NewImportRunStore(openDB(t))
	start := time.Now()
	for i := 0; i < 3; i++ {
		require.NoError(t, s.CreateImportRun(&domain.ImportRun{
			JobName:    "nightly",
			StartedAt:  start.Add(time.Duration(i) * time.Minute),
			FinishedAt: start.Add(time.Duration(i)*time.Minute + time.Second),
			Status:     "success",
			RowsRead:   i,
		}))
	}
	runs, err := s.ListImportRuns("nightly", 2)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, 2, runs[0].RowsRead)
}
