package curation

import (
	"fmt"

	"go.uber.org/zap"

	"pagebuilder/internal/domain"
)

// NoneID is the active id when the filtered list is empty.
const NoneID = "none"

// Keys understood by HandleKey, named as browsers report them.
const (
	KeyArrowDown = "ArrowDown"
	KeyArrowUp   = "ArrowUp"
	KeyHome      = "Home"
	KeyEnd       = "End"
)

// Messages holds the texts shown when no category matches the mode.
type Messages struct {
	// EmptyTitle is formatted with the mode name.
	EmptyTitle string
	EmptyBody  string
}

var DefaultMessages = Messages{
	EmptyTitle: "No categories match %q",
	EmptyBody:  "Try another filter to browse the catalog.",
}

// Tab is one entry of the rendered tab list. Only the active tab has
// TabIndex 0, the rest are -1 so sequential Tab traversal lands on it alone.
type Tab struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	IconKey  string `json:"iconKey"`
	Active   bool   `json:"active"`
	Focused  bool   `json:"focused"`
	TabIndex int    `json:"tabIndex"`
}

// Detail is the content of the detail panel. Exactly one of Category or the
// empty-state fields is set.
type Detail struct {
	Category *domain.CategoryDetail `json:"category,omitempty"`
	Empty    bool                   `json:"empty"`
	Title    string                 `json:"title,omitempty"`
	Message  string                 `json:"message,omitempty"`
}

// Engine holds the curation state of one category menu. It is not safe for
// concurrent use.
type Engine struct {
	categories []domain.CategoryDetail
	products   []domain.Product
	messages   Messages
	logger     *zap.Logger

	mode     Mode
	list     []Entry
	activeID string
	focus    int
}

type Option func(*Engine)

func WithMessages(m Messages) Option {
	return func(e *Engine) { e.messages = m }
}

func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// New builds an engine in ModeAll with the first category active.
func New(categories []domain.CategoryDetail, products domain.ProductQuery, opts ...Option) (*Engine, error) {
	e := &Engine{messages: DefaultMessages, logger: zap.NewNop(), mode: ModeAll}
	for _, opt := range opts {
		opt(e)
	}
	if err := e.Reload(categories, products); err != nil {
		return nil, err
	}
	return e, nil
}

// Reload replaces the categories and product snapshot, keeping the mode and
// the active category when it is still listed.
func (e *Engine) Reload(categories []domain.CategoryDetail, products domain.ProductQuery) error {
	all, err := products.Products()
	if err != nil {
		return fmt.Errorf("load products: %w", err)
	}
	e.categories = SortByPosition(categories)
	e.products = all
	e.apply()
	return nil
}

// SetMode switches the filter mode and re-establishes the selection.
func (e *Engine) SetMode(m Mode) {
	if m == e.mode {
		return
	}
	e.mode = m
	e.apply()
	e.logger.Debug("curation mode changed", zap.String("mode", string(m)),
		zap.Int("categories", len(e.list)), zap.String("active", e.activeID))
}

func (e *Engine) apply() {
	e.list = Rank(e.categories, e.products, e.mode)
	if idx := e.indexOf(e.activeID); idx >= 0 {
		e.focus = idx
		return
	}
	if len(e.list) == 0 {
		e.activeID = NoneID
		e.focus = -1
		return
	}
	e.activeID = e.list[0].Category.ID
	e.focus = 0
}

func (e *Engine) indexOf(id string) int {
	for i, entry := range e.list {
		if entry.Category.ID == id {
			return i
		}
	}
	return -1
}

func (e *Engine) Mode() Mode       { return e.mode }
func (e *Engine) ActiveID() string { return e.activeID }

// FocusIndex is the focused position in List, or -1 when the list is empty.
func (e *Engine) FocusIndex() int { return e.focus }

// List returns the filtered, ordered entries.
func (e *Engine) List() []Entry {
	out := make([]Entry, len(e.list))
	copy(out, e.list)
	return out
}

// Activate selects id, as on hover or focus. Ids not in the list are ignored.
func (e *Engine) Activate(id string) bool {
	idx := e.indexOf(id)
	if idx < 0 {
		return false
	}
	e.activeID = id
	e.focus = idx
	return true
}

// HandleKey moves focus for a navigation key and activates the newly focused
// category. It reports whether the key was handled.
func (e *Engine) HandleKey(key string) bool {
	n := len(e.list)
	if n == 0 {
		return false
	}
	cur := max(e.focus, 0)
	switch key {
	case KeyArrowDown:
		cur = (cur + 1) % n
	case KeyArrowUp:
		cur = (cur - 1 + n) % n
	case KeyHome:
		cur = 0
	case KeyEnd:
		cur = n - 1
	default:
		return false
	}
	e.focus = cur
	e.activeID = e.list[cur].Category.ID
	return true
}

// Tabs returns the tab list with roving tabindex applied.
func (e *Engine) Tabs() []Tab {
	tabs := make([]Tab, len(e.list))
	for i, entry := range e.list {
		active := entry.Category.ID == e.activeID
		tabs[i] = Tab{
			ID:       entry.Category.ID,
			Name:     entry.Category.Name,
			IconKey:  entry.Category.IconKey,
			Active:   active,
			Focused:  i == e.focus,
			TabIndex: -1,
		}
		if active {
			tabs[i].TabIndex = 0
		}
	}
	return tabs
}

// Detail returns the panel for the active category, or the empty state.
func (e *Engine) Detail() Detail {
	if idx := e.indexOf(e.activeID); idx >= 0 {
		c := e.list[idx].Category
		return Detail{Category: &c}
	}
	return Detail{
		Empty:   true,
		Title:   fmt.Sprintf(e.messages.EmptyTitle, e.mode),
		Message: e.messages.EmptyBody,
	}
}
