package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"pagebuilder/internal/domain"
)

// LayoutStore implements domain.LayoutStore using SQLite.
type LayoutStore struct {
	db *DB
}

func NewLayoutStore(db *DB) *LayoutStore {
	return &LayoutStore{db: db}
}

// CreateLayout inserts l. A layout created as default takes the flag from
// every other layout.
func (s *LayoutStore) CreateLayout(l *domain.Layout) error {
	now := time.Now()
	l.CreatedAt = now
	l.UpdatedAt = now

	tx, err := s.db.conn.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if l.IsDefault {
		if _, err := tx.Exec(`UPDATE layouts SET is_default = 0 WHERE is_default = 1`); err != nil {
			return fmt.Errorf("clear default: %w", err)
		}
	}
	if _, err := tx.Exec(
		`INSERT INTO layouts (id, name, description, is_default, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)`,
		l.ID, l.Name, l.Description, l.IsDefault, l.CreatedAt, l.UpdatedAt,
	); err != nil {
		return fmt.Errorf("insert layout: %w", err)
	}
	if err := replaceBlocks(tx, ownerLayout, l.ID, l.Blocks); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *LayoutStore) GetLayout(id string) (*domain.Layout, error) {
	l := &domain.Layout{}
	err := s.db.conn.QueryRow(
		`SELECT id, name, description, is_default, created_at, updated_at FROM layouts WHERE id = ?`, id,
	).Scan(&l.ID, &l.Name, &l.Description, &l.IsDefault, &l.CreatedAt, &l.UpdatedAt)
	if err != nil {
		return nil, notFound(err, "layout", id)
	}
	if l.Blocks, err = loadBlocks(s.db.conn, ownerLayout, l.ID); err != nil {
		return nil, err
	}
	return l, nil
}

// GetDefaultLayout returns the default layout, or domain.ErrNotFound when
// none is flagged.
func (s *LayoutStore) GetDefaultLayout() (*domain.Layout, error) {
	var id string
	err := s.db.conn.QueryRow(`SELECT id FROM layouts WHERE is_default = 1 LIMIT 1`).Scan(&id)
	if err != nil {
		return nil, notFound(err, "layout", "default")
	}
	return s.GetLayout(id)
}

// ListLayouts returns layouts oldest first.
func (s *LayoutStore) ListLayouts() ([]domain.Layout, error) {
	rows, err := s.db.conn.Query(
		`SELECT id, name, description, is_default, created_at, updated_at FROM layouts ORDER BY created_at ASC, id ASC`,
	)
	if err != nil {
		return nil, err
	}
	var layouts []domain.Layout
	for rows.Next() {
		var l domain.Layout
		if err := rows.Scan(&l.ID, &l.Name, &l.Description, &l.IsDefault, &l.CreatedAt, &l.UpdatedAt); err != nil {
			rows.Close()
			return nil, err
		}
		layouts = append(layouts, l)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i := range layouts {
		if layouts[i].Blocks, err = loadBlocks(s.db.conn, ownerLayout, layouts[i].ID); err != nil {
			return nil, err
		}
	}
	return layouts, nil
}

// UpdateLayout writes name, description and blocks. The default flag only
// changes through SetDefaultLayout.
func (s *LayoutStore) UpdateLayout(l *domain.Layout) error {
	l.UpdatedAt = time.Now()

	tx, err := s.db.conn.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.Exec(
		`UPDATE layouts SET name = ?, description = ?, updated_at = ? WHERE id = ?`,
		l.Name, l.Description, l.UpdatedAt, l.ID,
	)
	if err := execOne(res, err, "layout", l.ID); err != nil {
		return err
	}
	if err := replaceBlocks(tx, ownerLayout, l.ID, l.Blocks); err != nil {
		return err
	}
	if err := tx.QueryRow(`SELECT is_default FROM layouts WHERE id = ?`, l.ID).Scan(&l.IsDefault); err != nil {
		return fmt.Errorf("read default flag: %w", err)
	}
	return tx.Commit()
}

// DeleteLayout removes a layout. Deleting the default promotes the oldest
// remaining layout in the same transaction.
func (s *LayoutStore) DeleteLayout(id string) error {
	tx, err := s.db.conn.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	var wasDefault bool
	if err := tx.QueryRow(`SELECT is_default FROM layouts WHERE id = ?`, id).Scan(&wasDefault); err != nil {
		return notFound(err, "layout", id)
	}
	if _, err := tx.Exec(`DELETE FROM blocks WHERE owner_type = ? AND owner_id = ?`, ownerLayout, id); err != nil {
		return fmt.Errorf("delete blocks: %w", err)
	}
	if _, err := tx.Exec(`DELETE FROM layouts WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete layout: %w", err)
	}
	if wasDefault {
		var next string
		err := tx.QueryRow(`SELECT id FROM layouts ORDER BY created_at ASC, id ASC LIMIT 1`).Scan(&next)
		switch {
		case errors.Is(err, sql.ErrNoRows):
		case err != nil:
			return fmt.Errorf("find next default: %w", err)
		default:
			if _, err := tx.Exec(`UPDATE layouts SET is_default = 1 WHERE id = ?`, next); err != nil {
				return fmt.Errorf("promote default: %w", err)
			}
		}
	}
	return tx.Commit()
}

// SetDefaultLayout flags id as the default and clears every other layout in
// a single transaction.
func (s *LayoutStore) SetDefaultLayout(id string) error {
	tx, err := s.db.conn.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`UPDATE layouts SET is_default = 0 WHERE is_default = 1 AND id != ?`, id); err != nil {
		return fmt.Errorf("clear default: %w", err)
	}
	res, err := tx.Exec(`UPDATE layouts SET is_default = 1, updated_at = ? WHERE id = ?`, time.Now(), id)
	if err := execOne(res, err, "layout", id); err != nil {
		return err
	}
	return tx.Commit()
}

var _ domain.LayoutStore = (*LayoutStore)(nil)
