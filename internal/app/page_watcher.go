package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"

	"pagebuilder/internal/domain"
)

const pollInterval = 2 * time.Second

// PageLister is the read side of the page service the watcher polls.
type PageLister interface {
	ListPages() ([]domain.Page, error)
}

// PageWatcher polls the page list for changes, including those written by
// another process sharing the database, and reports changed and deleted
// pages.
type PageWatcher struct {
	pages    PageLister
	interval time.Duration
	logger   *zap.Logger

	onChange func(ctx context.Context, p domain.Page) error
	onDelete func(ctx context.Context, p domain.Page) error

	mu   sync.Mutex
	seen map[string]domain.Page // id → last reported version
}

func newPageWatcher(pages PageLister, logger *zap.Logger) *PageWatcher {
	return &PageWatcher{
		pages:    pages,
		interval: pollInterval,
		logger:   logger,
		seen:     make(map[string]domain.Page),
	}
}

// Run checks once immediately, then on every tick until ctx is done.
func (w *PageWatcher) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		if err := w.check(ctx); err != nil {
			w.logger.Warn("page watch check failed", zap.Error(err))
		}
		select {
		case <-ticker.C:
		case <-ctx.Done():
			return nil
		}
	}
}

func (w *PageWatcher) check(ctx context.Context) error {
	pages, err := w.pages.ListPages()
	if err != nil {
		return fmt.Errorf("list pages: %w", err)
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	current := make(map[string]bool, len(pages))
	for _, p := range pages {
		current[p.ID] = true
		prev, ok := w.seen[p.ID]
		if ok && prev.UpdatedAt.Equal(p.UpdatedAt) && prev.Slug == p.Slug {
			continue
		}
		if ok && prev.Slug != p.Slug && w.onDelete != nil {
			if err := w.onDelete(ctx, prev); err != nil {
				return err
			}
		}
		if w.onChange != nil {
			if err := w.onChange(ctx, p); err != nil {
				return err
			}
		}
		w.seen[p.ID] = p
	}
	for id, prev := range w.seen {
		if current[id] {
			continue
		}
		if w.onDelete != nil {
			if err := w.onDelete(ctx, prev); err != nil {
				return err
			}
		}
		delete(w.seen, id)
	}
	return nil
}

// NewPreviewWatcher returns a watcher that mirrors every page to
// dir/<slug>.html and removes the file when the page goes away.
func (a *App) NewPreviewWatcher(dir string) *PageWatcher {
	w := newPageWatcher(a.Pages, a.logger.Named("preview"))
	w.onChange = func(ctx context.Context, p domain.Page) error {
		path, err := a.WritePageHTML(ctx, &p, dir)
		if err != nil {
			return err
		}
		w.logger.Debug("preview written", zap.String("page", p.ID), zap.String("path", path))
		return nil
	}
	w.onDelete = func(ctx context.Context, p domain.Page) error {
		err := os.Remove(filepath.Join(dir, p.Slug+".html"))
		if err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("remove preview: %w", err)
		}
		return nil
	}
	return w
}
