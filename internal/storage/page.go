package storage

import (
	"fmt"
	"time"

	"pagebuilder/internal/domain"
)

// PageStore implements domain.PageStore using SQLite.
type PageStore struct {
	db *DB
}

func NewPageStore(db *DB) *PageStore {
	return &PageStore{db: db}
}

func (s *PageStore) CreatePage(p *domain.Page) error {
	now := time.Now()
	p.CreatedAt = now
	p.UpdatedAt = now
	if p.Status == "" {
		p.Status = domain.PageDraft
	}

	tx, err := s.db.conn.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(
		`INSERT INTO pages (id, title, slug, status, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)`,
		p.ID, p.Title, p.Slug, p.Status, p.CreatedAt, p.UpdatedAt,
	); err != nil {
		return fmt.Errorf("insert page: %w", err)
	}
	if err := replaceBlocks(tx, ownerPage, p.ID, p.Blocks); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *PageStore) GetPage(id string) (*domain.Page, error) {
	return s.getPage(`WHERE id = ?`, id)
}

func (s *PageStore) GetPageBySlug(slug string) (*domain.Page, error) {
	return s.getPage(`WHERE slug = ?`, slug)
}

func (s *PageStore) getPage(where, arg string) (*domain.Page, error) {
	p := &domain.Page{}
	err := s.db.conn.QueryRow(
		`SELECT id, title, slug, status, created_at, updated_at FROM pages `+where, arg,
	).Scan(&p.ID, &p.Title, &p.Slug, &p.Status, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, notFound(err, "page", arg)
	}
	if p.Blocks, err = loadBlocks(s.db.conn, ownerPage, p.ID); err != nil {
		return nil, err
	}
	return p, nil
}

// ListPages returns pages newest first, with their blocks.
func (s *PageStore) ListPages() ([]domain.Page, error) {
	rows, err := s.db.conn.Query(`SELECT id, title, slug, status, created_at, updated_at FROM pages ORDER BY updated_at DESC`)
	if err != nil {
		return nil, err
	}
	var pages []domain.Page
	for rows.Next() {
		var p domain.Page
		if err := rows.Scan(&p.ID, &p.Title, &p.Slug, &p.Status, &p.CreatedAt, &p.UpdatedAt); err != nil {
			rows.Close()
			return nil, err
		}
		pages = append(pages, p)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// Blocks are loaded after the cursor is closed: the pool holds one connection.
	for i := range pages {
		if pages[i].Blocks, err = loadBlocks(s.db.conn, ownerPage, pages[i].ID); err != nil {
			return nil, err
		}
	}
	return pages, nil
}

// UpdatePage writes the page row and replaces its block sequence atomically.
func (s *PageStore) UpdatePage(p *domain.Page) error {
	p.UpdatedAt = time.Now()

	tx, err := s.db.conn.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.Exec(
		`UPDATE pages SET title = ?, slug = ?, status = ?, updated_at = ? WHERE id = ?`,
		p.Title, p.Slug, p.Status, p.UpdatedAt, p.ID,
	)
	if err := execOne(res, err, "page", p.ID); err != nil {
		return err
	}
	if err := replaceBlocks(tx, ownerPage, p.ID, p.Blocks); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *PageStore) DeletePage(id string) error {
	tx, err := s.db.conn.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM blocks WHERE owner_type = ? AND owner_id = ?`, ownerPage, id); err != nil {
		return fmt.Errorf("delete blocks: %w", err)
	}
	res, err := tx.Exec(`DELETE FROM pages WHERE id = ?`, id)
	if err := execOne(res, err, "page", id); err != nil {
		return err
	}
	return tx.Commit()
}

var _ domain.PageStore = (*PageStore)(nil)
