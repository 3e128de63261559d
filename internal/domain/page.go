package domain

import (
	"time"

	"pagebuilder/internal/block"
)

type PageStatus string

const (
	PageDraft     PageStatus = "draft"
	PagePublished PageStatus = "published"
)

// Page is a sluggable composition of blocks with a publish status.
type Page struct {
	ID        string        `json:"id"`
	Title     string        `json:"title"`
	Slug      string        `json:"slug"`
	Blocks    []block.Block `json:"blocks"`
	Status    PageStatus    `json:"status"`
	CreatedAt time.Time     `json:"createdAt"`
	UpdatedAt time.Time     `json:"updatedAt"`
}

// Layout is a reusable block composition. At most one layout is the default.
type Layout struct {
	ID          string        `json:"id"`
	Name        string        `json:"name"`
	Description string        `json:"description"`
	Blocks      []block.Block `json:"blocks"`
	IsDefault   bool          `json:"isDefault"`
	CreatedAt   time.Time     `json:"createdAt"`
	UpdatedAt   time.Time     `json:"updatedAt"`
}

// SavedBlock is a library entry holding an independent block snapshot.
type SavedBlock struct {
	ID        string      `json:"id"`
	Name      string      `json:"name"`
	Category  string      `json:"category"`
	Block     block.Block `json:"block"`
	CreatedAt time.Time   `json:"createdAt"`
}

// PageStore persists pages. Implementations return snapshots; mutating a
// returned Page never changes stored state.
type PageStore interface {
	CreatePage(p *Page) error
	GetPage(id string) (*Page, error)
	GetPageBySlug(slug string) (*Page, error)
	ListPages() ([]Page, error)
	UpdatePage(p *Page) error
	DeletePage(id string) error
}

type LayoutStore interface {
	CreateLayout(l *Layout) error
	GetLayout(id string) (*Layout, error)
	// GetDefaultLayout returns ErrNotFound when no layout is the default.
	GetDefaultLayout() (*Layout, error)
	ListLayouts() ([]Layout, error)
	UpdateLayout(l *Layout) error
	// DeleteLayout promotes the oldest remaining layout when id was the default.
	DeleteLayout(id string) error
	// SetDefaultLayout marks id as the default and clears the flag on every
	// other layout in one transaction.
	SetDefaultLayout(id string) error
}

type SavedBlockStore interface {
	CreateSavedBlock(sb *SavedBlock) error
	GetSavedBlock(id string) (*SavedBlock, error)
	ListSavedBlocks() ([]SavedBlock, error)
	DeleteSavedBlock(id string) error
}
