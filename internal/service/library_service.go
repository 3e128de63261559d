package service

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"pagebuilder/internal/block"
	"pagebuilder/internal/compose"
	"pagebuilder/internal/domain"
)

// DefaultLibraryCategory groups saved blocks saved without a category.
const DefaultLibraryCategory = "General"

// LibraryGroup is one category of the block library.
type LibraryGroup struct {
	Category string              `json:"category"`
	Blocks   []domain.SavedBlock `json:"blocks"`
}

// LibraryService keeps independent snapshots of blocks for reuse.
type LibraryService struct {
	saved domain.SavedBlockStore
	pages *PageService
}

func NewLibraryService(saved domain.SavedBlockStore, pages *PageService) *LibraryService {
	return &LibraryService{saved: saved, pages: pages}
}

// SaveBlock stores a copy of b. Later edits to b never reach the snapshot.
func (s *LibraryService) SaveBlock(name, category string, b block.Block) (*domain.SavedBlock, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		name = b.Kind.Label()
	}
	category = strings.TrimSpace(category)
	if category == "" {
		category = DefaultLibraryCategory
	}
	if !block.IsKnown(b.Kind) {
		return nil, fmt.Errorf("save block: unknown kind %q", b.Kind)
	}
	sb := &domain.SavedBlock{
		ID:       compose.NewID(),
		Name:     name,
		Category: category,
		Block:    compose.CloneBlock(b),
	}
	if err := s.saved.CreateSavedBlock(sb); err != nil {
		return nil, fmt.Errorf("save block: %w", err)
	}
	return sb, nil
}

// SaveBlockFromPage snapshots one block of a stored page.
func (s *LibraryService) SaveBlockFromPage(pageID, blockID, name, category string) (*domain.SavedBlock, error) {
	p, err := s.pages.GetPage(pageID)
	if err != nil {
		return nil, err
	}
	i := compose.IndexOf(p.Blocks, blockID)
	if i < 0 {
		return nil, fmt.Errorf("block %s: %w", blockID, domain.ErrNotFound)
	}
	return s.SaveBlock(name, category, p.Blocks[i])
}

func (s *LibraryService) ListSavedBlocks() ([]domain.SavedBlock, error) {
	return s.saved.ListSavedBlocks()
}

// Grouped returns the library grouped by category, both sorted by name.
func (s *LibraryService) Grouped() ([]LibraryGroup, error) {
	all, err := s.saved.ListSavedBlocks()
	if err != nil {
		return nil, err
	}
	byCat := make(map[string][]domain.SavedBlock)
	for _, sb := range all {
		byCat[sb.Category] = append(byCat[sb.Category], sb)
	}
	groups := make([]LibraryGroup, 0, len(byCat))
	for cat, blocks := range byCat {
		slices.SortStableFunc(blocks, func(a, b domain.SavedBlock) int { return cmp.Compare(a.Name, b.Name) })
		groups = append(groups, LibraryGroup{Category: cat, Blocks: blocks})
	}
	slices.SortFunc(groups, func(a, b LibraryGroup) int { return cmp.Compare(a.Category, b.Category) })
	return groups, nil
}

// Instantiate returns a fresh copy of a saved block with a new id.
func (s *LibraryService) Instantiate(id string) (block.Block, error) {
	sb, err := s.saved.GetSavedBlock(id)
	if err != nil {
		return block.Block{}, err
	}
	return compose.CloneBlock(sb.Block), nil
}

// InsertIntoPage instantiates a saved block into a page at index. A
// negative index appends.
func (s *LibraryService) InsertIntoPage(ctx context.Context, savedID, pageID string, index int) (*domain.Page, block.Block, error) {
	b, err := s.Instantiate(savedID)
	if err != nil {
		return nil, block.Block{}, err
	}
	p, err := s.pages.Edit(ctx, pageID, func(seq []block.Block) ([]block.Block, error) {
		if index < 0 {
			index = len(seq)
		}
		return compose.Insert(seq, index, b), nil
	})
	if err != nil {
		return nil, block.Block{}, err
	}
	return p, b, nil
}

func (s *LibraryService) DeleteSavedBlock(id string) error {
	if id == "" {
		return errors.New("delete saved block: id is required")
	}
	return s.saved.DeleteSavedBlock(id)
}
