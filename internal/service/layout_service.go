package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"pagebuilder/internal/block"
	"pagebuilder/internal/compose"
	"pagebuilder/internal/domain"
)

// ─────────────────────────────────────────────────────────────
// Layout Service: reusable page templates
// ─────────────────────────────────────────────────────────────

type LayoutService struct {
	layouts domain.LayoutStore
	pages   domain.PageStore
	emitter EventEmitter
	logger  *zap.Logger
}

func NewLayoutService(layouts domain.LayoutStore, pages domain.PageStore, emitter EventEmitter, logger *zap.Logger) *LayoutService {
	return &LayoutService{layouts: layouts, pages: pages, emitter: emitter, logger: logger}
}

// CreateLayout stores a layout. Passing makeDefault clears the flag on
// every other layout.
func (s *LayoutService) CreateLayout(ctx context.Context, name, description string, blocks []block.Block, makeDefault bool) (*domain.Layout, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errors.New("create layout: name is required")
	}
	if blocks == nil {
		blocks = []block.Block{}
	}
	l := &domain.Layout{
		ID:          compose.NewID(),
		Name:        name,
		Description: description,
		Blocks:      blocks,
		IsDefault:   makeDefault,
	}
	if err := s.layouts.CreateLayout(l); err != nil {
		return nil, fmt.Errorf("create layout: %w", err)
	}
	s.logger.Info("layout created", zap.String("id", l.ID), zap.Bool("default", l.IsDefault))
	if l.IsDefault {
		s.emitter.Emit(ctx, EventLayoutDefaultChanged, l.ID)
	}
	return l, nil
}

// CreateLayoutFromPage snapshots the blocks of a page under fresh ids.
func (s *LayoutService) CreateLayoutFromPage(ctx context.Context, pageID, name, description string, makeDefault bool) (*domain.Layout, error) {
	p, err := s.pages.GetPage(pageID)
	if err != nil {
		return nil, fmt.Errorf("load page: %w", err)
	}
	return s.CreateLayout(ctx, name, description, compose.CloneAll(p.Blocks), makeDefault)
}

func (s *LayoutService) GetLayout(id string) (*domain.Layout, error) {
	return s.layouts.GetLayout(id)
}

// DefaultLayout returns nil without error when no layout is the default.
func (s *LayoutService) DefaultLayout() (*domain.Layout, error) {
	l, err := s.layouts.GetDefaultLayout()
	if errors.Is(err, domain.ErrNotFound) {
		return nil, nil
	}
	return l, err
}

func (s *LayoutService) ListLayouts() ([]domain.Layout, error) {
	return s.layouts.ListLayouts()
}

// UpdateLayout saves name, description and blocks. The default flag only
// changes through SetDefault.
func (s *LayoutService) UpdateLayout(l *domain.Layout) error {
	if strings.TrimSpace(l.Name) == "" {
		return errors.New("update layout: name is required")
	}
	if err := s.layouts.UpdateLayout(l); err != nil {
		return fmt.Errorf("update layout: %w", err)
	}
	return nil
}

// Edit applies fn to the blocks of a layout and saves the result.
func (s *LayoutService) Edit(id string, fn func([]block.Block) ([]block.Block, error)) (*domain.Layout, error) {
	l, err := s.layouts.GetLayout(id)
	if err != nil {
		return nil, err
	}
	blocks, err := fn(l.Blocks)
	if err != nil {
		return nil, err
	}
	l.Blocks = blocks
	if err := s.UpdateLayout(l); err != nil {
		return nil, err
	}
	return l, nil
}

// DeleteLayout removes a layout. When it was the default the oldest
// remaining layout takes over.
func (s *LayoutService) DeleteLayout(ctx context.Context, id string) error {
	l, err := s.layouts.GetLayout(id)
	if err != nil {
		return err
	}
	if err := s.layouts.DeleteLayout(id); err != nil {
		return fmt.Errorf("delete layout: %w", err)
	}
	if !l.IsDefault {
		return nil
	}
	next, err := s.DefaultLayout()
	if err != nil {
		return fmt.Errorf("load default layout: %w", err)
	}
	var nextID string
	if next != nil {
		nextID = next.ID
	}
	s.logger.Info("default layout deleted", zap.String("id", id), zap.String("promoted", nextID))
	s.emitter.Emit(ctx, EventLayoutDefaultChanged, nextID)
	return nil
}

func (s *LayoutService) SetDefault(ctx context.Context, id string) error {
	if err := s.layouts.SetDefaultLayout(id); err != nil {
		return fmt.Errorf("set default layout: %w", err)
	}
	s.emitter.Emit(ctx, EventLayoutDefaultChanged, id)
	return nil
}
