package storage

import (
	"encoding/json"
	"fmt"

	"pagebuilder/internal/domain"
)

// CategoryStore implements domain.CategoryStore using SQLite.
type CategoryStore struct {
	db *DB
}

func NewCategoryStore(db *DB) *CategoryStore {
	return &CategoryStore{db: db}
}

const categoryColumns = `id, name, icon_key, highlights_json, sub_categories_json, promo_text, promo_image, position`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCategory(r rowScanner) (domain.CategoryDetail, error) {
	var c domain.CategoryDetail
	var highlights, subs string
	if err := r.Scan(&c.ID, &c.Name, &c.IconKey, &highlights, &subs, &c.PromoText, &c.PromoImage, &c.Position); err != nil {
		return c, err
	}
	if err := json.Unmarshal([]byte(highlights), &c.Highlights); err != nil {
		return c, fmt.Errorf("decode highlights: %w", err)
	}
	if err := json.Unmarshal([]byte(subs), &c.SubCategories); err != nil {
		return c, fmt.Errorf("decode sub categories: %w", err)
	}
	return c, nil
}

func encodeCategory(c *domain.CategoryDetail) (string, string, error) {
	if c.Highlights == nil {
		c.Highlights = []domain.Highlight{}
	}
	if c.SubCategories == nil {
		c.SubCategories = []domain.SubCategory{}
	}
	highlights, err := json.Marshal(c.Highlights)
	if err != nil {
		return "", "", fmt.Errorf("encode highlights: %w", err)
	}
	subs, err := json.Marshal(c.SubCategories)
	if err != nil {
		return "", "", fmt.Errorf("encode sub categories: %w", err)
	}
	return string(highlights), string(subs), nil
}

// CreateCategory appends c after the last stored category.
func (s *CategoryStore) CreateCategory(c *domain.CategoryDetail) error {
	highlights, subs, err := encodeCategory(c)
	if err != nil {
		return err
	}
	if err := s.db.conn.QueryRow(`SELECT COALESCE(MAX(position), 0) + 1 FROM categories`).Scan(&c.Position); err != nil {
		return fmt.Errorf("next position: %w", err)
	}
	_, err = s.db.conn.Exec(
		`INSERT INTO categories (`+categoryColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.Name, c.IconKey, highlights, subs, c.PromoText, c.PromoImage, c.Position,
	)
	return err
}

func (s *CategoryStore) GetCategory(id string) (*domain.CategoryDetail, error) {
	c, err := scanCategory(s.db.conn.QueryRow(`SELECT `+categoryColumns+` FROM categories WHERE id = ?`, id))
	if err != nil {
		return nil, notFound(err, "category", id)
	}
	return &c, nil
}

// ListCategories returns categories in stored order.
func (s *CategoryStore) ListCategories() ([]domain.CategoryDetail, error) {
	rows, err := s.db.conn.Query(`SELECT ` + categoryColumns + ` FROM categories ORDER BY position ASC, name ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.CategoryDetail
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// UpdateCategory writes every field except the position.
func (s *CategoryStore) UpdateCategory(c *domain.CategoryDetail) error {
	highlights, subs, err := encodeCategory(c)
	if err != nil {
		return err
	}
	res, err := s.db.conn.Exec(
		`UPDATE categories SET name = ?, icon_key = ?, highlights_json = ?, sub_categories_json = ?, promo_text = ?, promo_image = ? WHERE id = ?`,
		c.Name, c.IconKey, highlights, subs, c.PromoText, c.PromoImage, c.ID,
	)
	return execOne(res, err, "category", c.ID)
}

func (s *CategoryStore) DeleteCategory(id string) error {
	res, err := s.db.conn.Exec(`DELETE FROM categories WHERE id = ?`, id)
	return execOne(res, err, "category", id)
}

// ReorderCategories assigns positions following ids. Categories not listed
// keep their position after the listed ones.
func (s *CategoryStore) ReorderCategories(ids []string) error {
	tx, err := s.db.conn.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`UPDATE categories SET position = position + ?`, len(ids)+1); err != nil {
		return fmt.Errorf("shift positions: %w", err)
	}

	stmt, err := tx.Prepare(`UPDATE categories SET position = ? WHERE id = ?`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i, id := range ids {
		res, err := stmt.Exec(i+1, id)
		if err := execOne(res, err, "category", id); err != nil {
			return fmt.Errorf("reorder category: %w", err)
		}
	}
	return tx.Commit()
}

var _ domain.CategoryStore = (*CategoryStore)(nil)
