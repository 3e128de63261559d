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
	"pagebuilder/internal/generate"
	"pagebuilder/internal/guard"
)

// ─────────────────────────────────────────────────────────────
// Page Service: page lifecycle and staged block edits
// ─────────────────────────────────────────────────────────────

// PageService manages pages. Block edits are staged in memory by the
// compose package and only reach the store through SavePage or Edit.
type PageService struct {
	pages     domain.PageStore
	layouts   domain.LayoutStore
	generator *generate.Adapter
	emitter   EventEmitter
	logger    *zap.Logger

	edits guard.KeyedMutex
}

// NewPageService creates a PageService. generator may be nil when no
// provider is configured.
func NewPageService(
	pages domain.PageStore,
	layouts domain.LayoutStore,
	generator *generate.Adapter,
	emitter EventEmitter,
	logger *zap.Logger,
) *PageService {
	return &PageService{pages: pages, layouts: layouts, generator: generator, emitter: emitter, logger: logger}
}

// ErrGenerationDisabled is returned when no generation provider is configured.
var ErrGenerationDisabled = errors.New("content generation is not configured")

// CreatePage creates an empty draft. An empty slug is derived from title.
func (s *PageService) CreatePage(ctx context.Context, title, slug string) (*domain.Page, error) {
	return s.create(ctx, title, slug, []block.Block{})
}

// CreatePageFromLayout creates a draft holding a deep copy of a layout's
// blocks under fresh ids. An empty layoutID uses the default layout, and
// an empty page is created when there is none.
func (s *PageService) CreatePageFromLayout(ctx context.Context, title, slug, layoutID string) (*domain.Page, error) {
	var (
		l   *domain.Layout
		err error
	)
	if layoutID == "" {
		l, err = s.layouts.GetDefaultLayout()
		if errors.Is(err, domain.ErrNotFound) {
			return s.create(ctx, title, slug, []block.Block{})
		}
	} else {
		l, err = s.layouts.GetLayout(layoutID)
	}
	if err != nil {
		return nil, fmt.Errorf("load layout: %w", err)
	}
	return s.create(ctx, title, slug, compose.CloneAll(l.Blocks))
}

func (s *PageService) create(ctx context.Context, title, slug string, blocks []block.Block) (*domain.Page, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, errors.New("create page: title is required")
	}
	id := compose.NewID()
	slug, err := resolveSlug(s.pages, title, slug, id)
	if err != nil {
		return nil, err
	}
	p := &domain.Page{ID: id, Title: title, Slug: slug, Blocks: blocks, Status: domain.PageDraft}
	if err := s.pages.CreatePage(p); err != nil {
		return nil, fmt.Errorf("create page: %w", err)
	}
	s.logger.Info("page created", zap.String("id", p.ID), zap.String("slug", p.Slug), zap.Int("blocks", len(blocks)))
	s.emitter.Emit(ctx, EventPageSaved, p.ID)
	return p, nil
}

func (s *PageService) GetPage(id string) (*domain.Page, error) {
	return s.pages.GetPage(id)
}

func (s *PageService) GetPageBySlug(slug string) (*domain.Page, error) {
	return s.pages.GetPageBySlug(slug)
}

func (s *PageService) ListPages() ([]domain.Page, error) {
	return s.pages.ListPages()
}

// SavePage persists p as edited, refreshing UpdatedAt.
func (s *PageService) SavePage(ctx context.Context, p *domain.Page) error {
	unlock := s.edits.Lock(p.ID)
	defer unlock()
	return s.save(ctx, p)
}

func (s *PageService) save(ctx context.Context, p *domain.Page) error {
	slug, err := resolveSlug(s.pages, p.Title, p.Slug, p.ID)
	if err != nil {
		return err
	}
	p.Slug = slug
	if err := s.pages.UpdatePage(p); err != nil {
		return fmt.Errorf("save page: %w", err)
	}
	s.logger.Debug("page saved", zap.String("id", p.ID), zap.Int("blocks", len(p.Blocks)))
	s.emitter.Emit(ctx, EventPageSaved, p.ID)
	return nil
}

// update loads page id, applies fn and saves it while holding the page's
// edit lock. The stored page is untouched when fn fails.
func (s *PageService) update(ctx context.Context, id string, fn func(*domain.Page) error) (*domain.Page, error) {
	unlock := s.edits.Lock(id)
	defer unlock()

	p, err := s.pages.GetPage(id)
	if err != nil {
		return nil, err
	}
	if err := fn(p); err != nil {
		return nil, err
	}
	if err := s.save(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// Rename changes title and slug. An empty slug keeps the current one.
func (s *PageService) Rename(ctx context.Context, id, title, slug string) (*domain.Page, error) {
	return s.update(ctx, id, func(p *domain.Page) error {
		if t := strings.TrimSpace(title); t != "" {
			p.Title = t
		}
		if slug != "" {
			p.Slug = slug
		}
		return nil
	})
}

// Publish marks a page published. Every block must satisfy its schema.
func (s *PageService) Publish(ctx context.Context, id string) (*domain.Page, error) {
	return s.update(ctx, id, func(p *domain.Page) error {
		for _, b := range p.Blocks {
			if !block.IsKnown(b.Kind) {
				continue
			}
			if err := block.Validate(b); err != nil {
				return fmt.Errorf("publish page: block %s: %w", b.ID, err)
			}
		}
		p.Status = domain.PagePublished
		return nil
	})
}

func (s *PageService) Unpublish(ctx context.Context, id string) (*domain.Page, error) {
	return s.update(ctx, id, func(p *domain.Page) error {
		p.Status = domain.PageDraft
		return nil
	})
}

func (s *PageService) DeletePage(ctx context.Context, id string) error {
	if err := s.pages.DeletePage(id); err != nil {
		return fmt.Errorf("delete page: %w", err)
	}
	s.emitter.Emit(ctx, EventPageDeleted, id)
	return nil
}

// Edit loads a page, applies fn to its blocks and saves the result as one
// step. Edits of the same page are serialized, and the stored page is
// untouched when fn fails.
func (s *PageService) Edit(ctx context.Context, id string, fn func([]block.Block) ([]block.Block, error)) (*domain.Page, error) {
	return s.update(ctx, id, func(p *domain.Page) error {
		blocks, err := fn(p.Blocks)
		if err != nil {
			return err
		}
		p.Blocks = blocks
		return nil
	})
}

// GenerateIntoPage generates blocks for a page and inserts the whole
// validated batch at index (negative appends). An empty kind asks for a
// full page. The page stays claimed by the generation until the batch is
// saved, so a second request for it fails with ErrGenerationInFlight.
func (s *PageService) GenerateIntoPage(ctx context.Context, id, prompt string, kind block.Kind, index int) (*domain.Page, *generate.Result, error) {
	if s.generator == nil {
		return nil, nil, ErrGenerationDisabled
	}
	if _, err := s.pages.GetPage(id); err != nil {
		return nil, nil, err
	}
	var p *domain.Page
	merge := s.mergeInto(ctx, id, index, &p)
	var (
		res *generate.Result
		err error
	)
	if kind == "" {
		res, err = s.generator.GeneratePage(ctx, id, prompt, merge)
	} else {
		res, err = s.generator.GenerateBlock(ctx, id, prompt, kind, merge)
	}
	if err != nil {
		return nil, nil, err
	}
	return p, res, nil
}

// GenerateFromRowsIntoPage is GenerateIntoPage grounded on rows.
func (s *PageService) GenerateFromRowsIntoPage(ctx context.Context, id, prompt string, rows []map[string]any, index int) (*domain.Page, *generate.Result, error) {
	if s.generator == nil {
		return nil, nil, ErrGenerationDisabled
	}
	if _, err := s.pages.GetPage(id); err != nil {
		return nil, nil, err
	}
	var p *domain.Page
	res, err := s.generator.GenerateFromRows(ctx, id, prompt, rows, s.mergeInto(ctx, id, index, &p))
	if err != nil {
		return nil, nil, err
	}
	return p, res, nil
}

// mergeInto saves a generated batch into page id and stores the saved page
// in out.
func (s *PageService) mergeInto(ctx context.Context, id string, index int, out **domain.Page) generate.Option {
	return generate.WithApply(func(res *generate.Result) error {
		p, err := s.Edit(ctx, id, func(seq []block.Block) ([]block.Block, error) {
			if index < 0 {
				return res.Apply(seq), nil
			}
			return res.ApplyAt(seq, index), nil
		})
		if err != nil {
			return err
		}
		*out = p
		return nil
	})
}
