package service

import (
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"pagebuilder/internal/compose"
	"pagebuilder/internal/curation"
	"pagebuilder/internal/domain"
)

// ─────────────────────────────────────────────────────────────
// Category Service: category CRUD and curated navigation
// ─────────────────────────────────────────────────────────────

type CategoryService struct {
	categories domain.CategoryStore
	products   domain.ProductQuery
	messages   curation.Messages
	logger     *zap.Logger
}

func NewCategoryService(categories domain.CategoryStore, products domain.ProductQuery, logger *zap.Logger) *CategoryService {
	return &CategoryService{categories: categories, products: products, messages: curation.DefaultMessages, logger: logger}
}

// SetMessages overrides the empty-state texts used by Curate.
func (s *CategoryService) SetMessages(m curation.Messages) {
	s.messages = m
}

// CreateCategory appends c at the end of the stored order. An empty ID is
// generated.
func (s *CategoryService) CreateCategory(c *domain.CategoryDetail) error {
	c.Name = strings.TrimSpace(c.Name)
	if c.Name == "" {
		return errors.New("create category: name is required")
	}
	if c.ID == "" {
		c.ID = compose.NewID()
	}
	if err := s.categories.CreateCategory(c); err != nil {
		return fmt.Errorf("create category: %w", err)
	}
	return nil
}

func (s *CategoryService) GetCategory(id string) (*domain.CategoryDetail, error) {
	return s.categories.GetCategory(id)
}

func (s *CategoryService) ListCategories() ([]domain.CategoryDetail, error) {
	return s.categories.ListCategories()
}

func (s *CategoryService) UpdateCategory(c *domain.CategoryDetail) error {
	if strings.TrimSpace(c.Name) == "" {
		return errors.New("update category: name is required")
	}
	return s.categories.UpdateCategory(c)
}

func (s *CategoryService) DeleteCategory(id string) error {
	return s.categories.DeleteCategory(id)
}

// Reorder stores ids as the new category order. ids must name every
// category exactly once.
func (s *CategoryService) Reorder(ids []string) error {
	all, err := s.categories.ListCategories()
	if err != nil {
		return err
	}
	if len(ids) != len(all) {
		return fmt.Errorf("reorder categories: got %d ids for %d categories", len(ids), len(all))
	}
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		if seen[id] {
			return fmt.Errorf("reorder categories: duplicate id %s", id)
		}
		seen[id] = true
	}
	return s.categories.ReorderCategories(ids)
}

// CurateRequest describes one interaction with the category menu.
type CurateRequest struct {
	Mode     curation.Mode `json:"mode"`
	ActiveID string        `json:"activeId,omitempty"`
	Key      string        `json:"key,omitempty"`
}

// CurateView is the rendered state of the category menu.
type CurateView struct {
	Mode     curation.Mode    `json:"mode"`
	Modes    []curation.Mode  `json:"modes"`
	ActiveID string           `json:"activeId"`
	Tabs     []curation.Tab   `json:"tabs"`
	Detail   curation.Detail  `json:"detail"`
	Entries  []curation.Entry `json:"entries"`
}

// Curate replays req against a fresh engine: the previously active
// category is restored, the mode applied, then the key handled.
func (s *CategoryService) Curate(req CurateRequest) (*CurateView, error) {
	cats, err := s.categories.ListCategories()
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	e, err := curation.New(cats, s.products, curation.WithMessages(s.messages), curation.WithLogger(s.logger))
	if err != nil {
		return nil, err
	}
	if req.ActiveID != "" {
		e.Activate(req.ActiveID)
	}
	if req.Mode != "" {
		e.SetMode(req.Mode)
	}
	if req.Key != "" {
		e.HandleKey(req.Key)
	}
	return &CurateView{
		Mode:     e.Mode(),
		Modes:    curation.Modes(),
		ActiveID: e.ActiveID(),
		Tabs:     e.Tabs(),
		Detail:   e.Detail(),
		Entries:  e.List(),
	}, nil
}
