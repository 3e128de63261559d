package app

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"pagebuilder/internal/domain"
	"pagebuilder/internal/render"
)

// FindPage looks a page up by id, then by slug.
func (a *App) FindPage(idOrSlug string) (*domain.Page, error) {
	p, err := a.Pages.GetPage(idOrSlug)
	if errors.Is(err, domain.ErrNotFound) {
		p, err = a.Pages.GetPageBySlug(idOrSlug)
	}
	if err != nil {
		return nil, fmt.Errorf("find page %s: %w", idOrSlug, err)
	}
	return p, nil
}

// RenderPage writes the HTML of p to w.
func (a *App) RenderPage(ctx context.Context, p *domain.Page, w io.Writer) error {
	if err := render.HTML(a.Renderer.RenderPage(p.Blocks)...).Render(ctx, w); err != nil {
		return fmt.Errorf("render page %s: %w", p.ID, err)
	}
	return nil
}

// WritePageHTML renders p to dir/<slug>.html and returns the file path.
// The file is replaced atomically.
func (a *App) WritePageHTML(ctx context.Context, p *domain.Page, dir string) (string, error) {
	var buf bytes.Buffer
	if err := a.RenderPage(ctx, p, &buf); err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}
	path := filepath.Join(dir, p.Slug+".html")
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, buf.Bytes(), 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return "", fmt.Errorf("rename %s: %w", tmp, err)
	}
	return path, nil
}

// RenderAll writes every page to dir. Drafts are skipped unless
// includeDrafts is set.
func (a *App) RenderAll(ctx context.Context, dir string, includeDrafts bool) ([]string, error) {
	pages, err := a.Pages.ListPages()
	if err != nil {
		return nil, fmt.Errorf("list pages: %w", err)
	}
	var paths []string
	for i := range pages {
		if pages[i].Status != domain.PagePublished && !includeDrafts {
			continue
		}
		path, err := a.WritePageHTML(ctx, &pages[i], dir)
		if err != nil {
			return paths, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}
