package storage

import (
	"database/sql"
	"fmt"

	"pagebuilder/internal/domain"
)

// ProductStore implements domain.ProductStore using SQLite. Store order is
// ascending id.
type ProductStore struct {
	db *DB
}

func NewProductStore(db *DB) *ProductStore {
	return &ProductStore{db: db}
}

const productColumns = `id, name, category, price, discount, flash_sale, sold, image`

func (s *ProductStore) Products() ([]domain.Product, error) {
	rows, err := s.db.conn.Query(`SELECT ` + productColumns + ` FROM products ORDER BY id ASC`)
	if err != nil {
		return nil, fmt.Errorf("query products: %w", err)
	}
	return scanProducts(rows)
}

// ProductsByCategory returns up to limit products of category. A limit <= 0
// returns all of them.
func (s *ProductStore) ProductsByCategory(category string, limit int) ([]domain.Product, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.conn.Query(
		`SELECT `+productColumns+` FROM products WHERE category = ? ORDER BY id ASC LIMIT ?`,
		category, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query products: %w", err)
	}
	return scanProducts(rows)
}

func scanProducts(rows *sql.Rows) ([]domain.Product, error) {
	defer rows.Close()
	out := []domain.Product{}
	for rows.Next() {
		var p domain.Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Category, &p.Price, &p.Discount, &p.FlashSale, &p.Sold, &p.Image); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// ReplaceProducts atomically swaps the whole catalog for products.
func (s *ProductStore) ReplaceProducts(products []domain.Product) error {
	tx, err := s.db.conn.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM products`); err != nil {
		return fmt.Errorf("delete products: %w", err)
	}
	if err := insertProducts(tx, products, false); err != nil {
		return err
	}
	return tx.Commit()
}

// UpsertProducts inserts products, overwriting rows with the same id.
func (s *ProductStore) UpsertProducts(products []domain.Product) error {
	tx, err := s.db.conn.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if err := insertProducts(tx, products, true); err != nil {
		return err
	}
	return tx.Commit()
}

func insertProducts(tx *sql.Tx, products []domain.Product, upsert bool) error {
	query := `INSERT INTO products (` + productColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	if upsert {
		query += ` ON CONFLICT(id) DO UPDATE SET name = excluded.name, category = excluded.category,
			price = excluded.price, discount = excluded.discount, flash_sale = excluded.flash_sale,
			sold = excluded.sold, image = excluded.image`
	}
	stmt, err := tx.Prepare(query)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, p := range products {
		if _, err := stmt.Exec(p.ID, p.Name, p.Category, p.Price, p.Discount, p.FlashSale, p.Sold, p.Image); err != nil {
			return fmt.Errorf("insert product %d: %w", p.ID, err)
		}
	}
	return nil
}

var _ domain.ProductStore = (*ProductStore)(nil)
