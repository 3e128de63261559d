package render_test

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"pagebuilder/internal/block"
	"pagebuilder/internal/domain"
	"pagebuilder/internal/render"
)

func catalog() domain.StaticProducts {
	return domain.StaticProducts{
		{ID: 1, Name: "Phone", Category: "Electronics", Price: 300},
		{ID: 2, Name: "Shirt", Category: "Fashion", Price: 20, Discount: 10},
		{ID: 3, Name: "Laptop", Category: "Electronics", Price: 900, FlashSale: true},
		{ID: 4, Name: "Shoes", Category: "Fashion", Price: 60},
		{ID: 5, Name: "Tablet", Category: "Electronics", Price: 400},
	}
}

type failingProducts struct{}

func (failingProducts) Products() ([]domain.Product, error) { return nil, errors.New("db down") }
func (failingProducts) ProductsByCategory(string, int) ([]domain.Product, error) {
	return nil, errors.New("db down")
}

func productIDs(n *render.Node) []string {
	var ids []string
	for _, p := range n.FindAll("product") {
		ids = append(ids, p.Attrs["data-product-id"])
	}
	return ids
}

func TestRender_DefaultPayloadForEveryKind(t *testing.T) {
	r := render.New(catalog())
	for _, k := range block.Kinds() {
		n := r.Render(block.New("b1", k))
		require.NotNil(t, n, "kind %s", k)
		assert.Equal(t, "b1", n.Attrs["data-block-id"])
		assert.Equal(t, string(k), n.Attrs["data-kind"])
	}
}

func TestRender_UnknownKindRendersNothing(t *testing.T) {
	r := render.New(catalog())
	assert.Nil(t, r.Render(block.New("x", "carousel")))

	nodes := r.RenderPage([]block.Block{block.New("a", block.KindText), block.New("x", "carousel"), block.New("b", block.KindSpacer)})
	assert.Len(t, nodes, 2)
}

func TestRender_UnknownKindLogsAtDebug(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	r := render.New(catalog(), render.WithLogger(zap.New(core)))
	assert.Nil(t, r.Render(block.New("x", "carousel")))

	entries := logs.FilterMessage("unknown block kind skipped").All()
	require.Len(t, entries, 1)
	assert.Equal(t, zapcore.DebugLevel, entries[0].Level)
	assert.Equal(t, "carousel", entries[0].ContextMap()["kind"])
	assert.Equal(t, "x", entries[0].ContextMap()["id"])
}

func TestRender_ProductRowAllTruncatesInStoreOrder(t *testing.T) {
	r := render.New(catalog())
	b := block.Block{ID: "p", Kind: block.KindProductRow, Data: block.ProductRowData{Category: block.AllCategories, Count: 2}}
	assert.Equal(t, []string{"1", "2"}, productIDs(r.Render(b)))
}

func TestRender_ProductRowFiltersByCategory(t *testing.T) {
	r := render.New(catalog())
	b := block.Block{ID: "p", Kind: block.KindProductRow, Data: block.ProductRowData{Category: "Electronics", Count: 12}}
	assert.Equal(t, []string{"1", "3", "5"}, productIDs(r.Render(b)))
}

func TestRender_ProductRowDefaultsCount(t *testing.T) {
	r := render.New(catalog())
	b := block.Block{ID: "p", Kind: block.KindProductRow, Data: block.ProductRowData{}}
	assert.Len(t, productIDs(r.Render(b)), block.DefaultCount)
}

func TestRender_ProductRowEmptyCategoryNamesIt(t *testing.T) {
	r := render.New(catalog())
	b := block.Block{ID: "p", Kind: block.KindProductRow, Data: block.ProductRowData{Category: "Unknown", Count: 4}}
	n := r.Render(b)
	assert.Empty(t, productIDs(n))
	empty := n.Find("empty-state")
	require.NotNil(t, empty)
	assert.Contains(t, empty.Text, "Unknown")
}

func TestRender_ProductRowLookupFailure(t *testing.T) {
	r := render.New(failingProducts{})
	n := r.Render(block.New("p", block.KindProductRow))
	require.NotNil(t, n.Find("error-state"))
	assert.Equal(t, render.DefaultMessages.ProductsUnavailable, n.Find("error-state").Text)
}

func TestRender_AbsentItemsRenderZeroEntries(t *testing.T) {
	r := render.New(catalog())

	grid := r.Render(block.Block{ID: "g", Kind: block.KindGrid, Data: block.GridData{Title: "Empty"}})
	require.NotNil(t, grid)
	assert.Empty(t, grid.FindAll("grid-item"))

	quotes := r.Render(block.Block{ID: "t", Kind: block.KindTestimonial, Data: block.TestimonialData{}})
	require.NotNil(t, quotes)
	assert.Empty(t, quotes.FindAll("testimonial"))
}

func TestRender_CustomMessages(t *testing.T) {
	r := render.New(catalog(), render.WithMessages(render.Messages{NoProducts: "Nada en %s"}))
	n := r.Render(block.Block{ID: "p", Kind: block.KindProductRow, Data: block.ProductRowData{Category: "Toys"}})
	assert.Equal(t, "Nada en Toys", n.Find("empty-state").Text)
}

func TestHTML_EscapesContent(t *testing.T) {
	r := render.New(catalog())
	n := r.Render(block.Block{ID: "h", Kind: block.KindHero, Data: block.HeroData{Title: `<script>alert("x")</script>`}})

	var buf bytes.Buffer
	require.NoError(t, render.HTML(n).Render(context.Background(), &buf))
	out := buf.String()
	assert.NotContains(t, out, "<script>")
	assert.Contains(t, out, "&lt;script&gt;")
	assert.Contains(t, out, `data-kind="hero"`)
}

func TestRender_UnsafeURLsAreReplaced(t *testing.T) {
	r := render.New(catalog())
	hero := r.Render(block.Block{ID: "h", Kind: block.KindHero, Data: block.HeroData{
		Title: "Sale", CTAText: "Shop", CTALink: "javascript:alert(1)",
	}})
	cta := hero.Find("hero-cta")
	require.NotNil(t, cta)
	assert.Equal(t, render.FailedURL, cta.Attrs["href"])

	img := r.Render(block.Block{ID: "i", Kind: block.KindImage, Data: block.ImageData{Src: " JavaScript:alert(1)", Alt: "x"}})
	require.Len(t, img.Children, 1)
	assert.Equal(t, render.FailedURL, img.Children[0].Attrs["src"])

	grid := r.Render(block.Block{ID: "g", Kind: block.KindGrid, Data: block.GridData{Items: []block.GridItem{
		{Title: "a", Image: "data:text/html;base64,PHNjcmlwdD4="},
		{Title: "b", Image: "/img/b.png"},
	}}})
	items := grid.FindAll("grid-item")
	require.Len(t, items, 2)
	assert.Equal(t, render.FailedURL, items[0].Children[0].Attrs["src"])
	assert.Equal(t, "/img/b.png", items[1].Children[0].Attrs["src"])
}

func TestRender_SafeURLsAreKept(t *testing.T) {
	r := render.New(catalog())
	for _, link := range []string{"https://shop.example/sale", "http://shop.example", "mailto:sales@shop.example", "/sale", "#top"} {
		hero := r.Render(block.Block{ID: "h", Kind: block.KindHero, Data: block.HeroData{Title: "Sale", CTAText: "Shop", CTALink: link}})
		assert.Equal(t, link, hero.Find("hero-cta").Attrs["href"], link)
	}
}

func TestRender_HeroBackgroundCannotBreakOutOfURL(t *testing.T) {
	r := render.New(catalog())

	ok := r.Render(block.Block{ID: "h", Kind: block.KindHero, Data: block.HeroData{Title: "Sale", BackgroundImage: "https://cdn.example/bg.jpg"}})
	assert.Equal(t, `background-image:url("https://cdn.example/bg.jpg");`, ok.Attrs["style"])

	for _, bg := range []string{
		"x);background:url(https://evil.example/track",
		`x") ;color:red`,
		"javascript:alert(1)",
		"https://cdn.example/a b.jpg",
	} {
		n := r.Render(block.Block{ID: "h", Kind: block.KindHero, Data: block.HeroData{Title: "Sale", BackgroundImage: bg}})
		_, styled := n.Attrs["style"]
		assert.False(t, styled, bg)

		var buf bytes.Buffer
		require.NoError(t, render.HTML(n).Render(context.Background(), &buf))
		assert.NotContains(t, buf.String(), "evil.example", bg)
	}
}
