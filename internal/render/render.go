// Package render turns blocks into render trees. Rendering is pure apart from
// product lookups through the injected ProductQuery, and never fails: problems
// become explicit substitute messages in the tree.
package render

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/a-h/templ"
	"go.uber.org/zap"

	"pagebuilder/internal/block"
	"pagebuilder/internal/domain"
)

// Messages holds the user-visible substitute texts.
type Messages struct {
	// NoProducts is formatted with the requested category name.
	NoProducts          string
	ProductsUnavailable string
	FlashSale           string
}

// DefaultMessages is the English message set.
var DefaultMessages = Messages{
	NoProducts:          "No products found in %q.",
	ProductsUnavailable: "Products are unavailable right now.",
	FlashSale:           "Flash sale",
}

// Renderer dispatches blocks to their per-kind render functions.
type Renderer struct {
	products domain.ProductQuery
	messages Messages
	logger   *zap.Logger
}

type Option func(*Renderer)

func WithMessages(m Messages) Option {
	return func(r *Renderer) { r.messages = m }
}

func WithLogger(l *zap.Logger) Option {
	return func(r *Renderer) { r.logger = l }
}

// New creates a Renderer reading products from products.
func New(products domain.ProductQuery, opts ...Option) *Renderer {
	r := &Renderer{products: products, messages: DefaultMessages, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Render returns the tree for b, or nil for kinds this build does not know.
func (r *Renderer) Render(b block.Block) *Node {
	var n *Node
	switch d := b.Data.(type) {
	case block.HeroData:
		n = r.hero(d)
	case block.TextData:
		n = r.text(d)
	case block.GridData:
		n = r.grid(d)
	case block.TestimonialData:
		n = r.testimonial(d)
	case block.ProductRowData:
		n = r.productRow(d)
	case block.ImageData:
		n = r.image(d)
	case block.SpacerData:
		n = r.spacer(d)
	default:
		r.logger.Debug("unknown block kind skipped", zap.String("id", b.ID), zap.String("kind", string(b.Kind)))
		return nil
	}
	if n.Attrs == nil {
		n.Attrs = map[string]string{}
	}
	n.Attrs["data-block-id"] = b.ID
	n.Attrs["data-kind"] = string(b.Kind)
	return n
}

// RenderPage renders blocks in order, dropping unknown kinds.
func (r *Renderer) RenderPage(blocks []block.Block) []*Node {
	out := make([]*Node, 0, len(blocks))
	for _, b := range blocks {
		if n := r.Render(b); n != nil {
			out = append(out, n)
		}
	}
	return out
}

func (r *Renderer) hero(d block.HeroData) *Node {
	attrs := class("block block-hero")
	if style := backgroundStyle(d.BackgroundImage); style != "" {
		attrs["style"] = style
	}
	var subtitle, cta *Node
	if d.Subtitle != "" {
		subtitle = text("p", d.Subtitle, class("hero-subtitle"))
	}
	if d.CTAText != "" {
		link := d.CTALink
		if link == "" {
			link = "#"
		}
		cta = text("a", d.CTAText, map[string]string{"class": "hero-cta", "href": safeURL(link)})
	}
	return el("section", attrs, text("h1", d.Title, class("hero-title")), subtitle, cta)
}

func (r *Renderer) text(d block.TextData) *Node {
	align := d.Align
	if align == "" {
		align = block.AlignLeft
	}
	n := el("div", map[string]string{"class": "block block-text", "data-align": string(align)})
	for _, para := range strings.Split(d.Content, "\n\n") {
		if p := strings.TrimSpace(para); p != "" {
			n.Children = append(n.Children, text("p", p, nil))
		}
	}
	return n
}

func (r *Renderer) grid(d block.GridData) *Node {
	columns := d.Columns
	if columns == 0 {
		columns = 3
	}
	items := el("div", map[string]string{"class": "grid-items", "data-columns": strconv.Itoa(columns)})
	for _, item := range d.Items {
		var img, desc *Node
		if item.Image != "" {
			img = &Node{Tag: "img", Attrs: map[string]string{"src": safeURL(item.Image), "alt": item.Title}}
		}
		if item.Description != "" {
			desc = text("p", item.Description, nil)
		}
		items.Children = append(items.Children, el("article", class("grid-item"), img, text("h3", item.Title, nil), desc))
	}
	return el("section", class("block block-grid"), heading(d.Title), items)
}

func (r *Renderer) testimonial(d block.TestimonialData) *Node {
	list := el("div", class("testimonials"))
	for _, item := range d.Items {
		var footer *Node
		if item.Author != "" {
			cite := item.Author
			if item.Role != "" {
				cite += ", " + item.Role
			}
			footer = el("footer", nil, text("cite", cite, nil))
		}
		var avatar *Node
		if item.Avatar != "" {
			avatar = &Node{Tag: "img", Attrs: map[string]string{"class": "avatar", "src": safeURL(item.Avatar), "alt": item.Author}}
		}
		list.Children = append(list.Children, el("blockquote", class("testimonial"), avatar, text("p", item.Quote, nil), footer))
	}
	return el("section", class("block block-testimonial"), heading(d.Title), list)
}

// ProductRowItems resolves the products a product row shows: the catalog
// filtered to d.Category (AllCategories disables the filter), truncated to
// d.Count in store order.
func ProductRowItems(products domain.ProductQuery, d block.ProductRowData) ([]domain.Product, error) {
	count := d.Count
	if count <= 0 {
		count = block.DefaultCount
	}
	category := d.Category
	if category == "" {
		category = block.AllCategories
	}
	if category == block.AllCategories {
		all, err := products.Products()
		if err != nil {
			return nil, fmt.Errorf("list products: %w", err)
		}
		return all[:min(count, len(all))], nil
	}
	items, err := products.ProductsByCategory(category, count)
	if err != nil {
		return nil, fmt.Errorf("list products in %s: %w", category, err)
	}
	return items[:min(count, len(items))], nil
}

func (r *Renderer) productRow(d block.ProductRowData) *Node {
	section := el("section", class("block block-product-row"), heading(d.Title))
	if r.products == nil {
		section.Children = append(section.Children, text("p", r.messages.ProductsUnavailable, class("error-state")))
		return section
	}
	items, err := ProductRowItems(r.products, d)
	if err != nil {
		r.logger.Warn("product row lookup failed", zap.String("category", d.Category), zap.Error(err))
		section.Children = append(section.Children, text("p", r.messages.ProductsUnavailable, class("error-state")))
		return section
	}
	if len(items) == 0 {
		category := d.Category
		if category == "" {
			category = block.AllCategories
		}
		section.Children = append(section.Children, text("p", fmt.Sprintf(r.messages.NoProducts, category), class("empty-state")))
		return section
	}
	row := el("div", class("products"))
	for _, p := range items {
		row.Children = append(row.Children, r.productCard(p))
	}
	section.Children = append(section.Children, row)
	return section
}

func (r *Renderer) productCard(p domain.Product) *Node {
	var img, badge, was *Node
	if p.Image != "" {
		img = &Node{Tag: "img", Attrs: map[string]string{"src": safeURL(p.Image), "alt": p.Name}}
	}
	if p.FlashSale {
		badge = text("span", r.messages.FlashSale, class("badge badge-flash"))
	}
	price := p.Price
	if p.Discount > 0 {
		was = text("s", formatPrice(p.Price), class("price-was"))
		price = p.Price * (1 - p.Discount/100)
	}
	return el("article", map[string]string{"class": "product", "data-product-id": strconv.Itoa(p.ID)},
		img, badge, text("h3", p.Name, nil), was, text("span", formatPrice(price), class("price")))
}

func (r *Renderer) image(d block.ImageData) *Node {
	var caption *Node
	if d.Caption != "" {
		caption = text("figcaption", d.Caption, nil)
	}
	return el("figure", class("block block-image"),
		&Node{Tag: "img", Attrs: map[string]string{"src": safeURL(d.Src), "alt": d.Alt}}, caption)
}

func (r *Renderer) spacer(d block.SpacerData) *Node {
	return &Node{Tag: "div", Attrs: map[string]string{
		"class":       "block block-spacer",
		"style":       fmt.Sprintf("height:%dpx", d.Height),
		"aria-hidden": "true",
	}}
}

// FailedURL replaces links and image sources that are neither relative nor
// http, https or mailto.
const FailedURL = string(templ.FailedSanitizationURL)

func safeURL(s string) string {
	s = strings.TrimSpace(s)
	if templ.URL(s) == templ.FailedSanitizationURL {
		return FailedURL
	}
	u, err := url.Parse(s)
	if err != nil {
		return FailedURL
	}
	switch strings.ToLower(u.Scheme) {
	case "", "http", "https", "mailto":
		return s
	}
	return FailedURL
}

// backgroundStyle returns the hero background declaration, or "" when src
// is empty or cannot be placed inside url("...") as a single safe URL.
func backgroundStyle(src string) string {
	if strings.TrimSpace(src) == "" {
		return ""
	}
	u := safeURL(src)
	if u == FailedURL || strings.ContainsAny(u, "\"'(),\\;<> \t\r\n") {
		return ""
	}
	return string(templ.SanitizeCSS("background-image", `url("`+u+`")`))
}

func heading(title string) *Node {
	if title == "" {
		return nil
	}
	return text("h2", title, nil)
}

func formatPrice(v float64) string {
	return "$" + strconv.FormatFloat(v, 'f', 2, 64)
}
