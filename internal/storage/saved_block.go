package storage

import (
	"encoding/json"
	"fmt"
	"time"

	"pagebuilder/internal/domain"
)

// SavedBlockStore implements domain.SavedBlockStore using SQLite.
type SavedBlockStore struct {
	db *DB
}

func NewSavedBlockStore(db *DB) *SavedBlockStore {
	return &SavedBlockStore{db: db}
}

func (s *SavedBlockStore) CreateSavedBlock(sb *domain.SavedBlock) error {
	sb.CreatedAt = time.Now()
	raw, err := json.Marshal(sb.Block)
	if err != nil {
		return fmt.Errorf("encode saved block: %w", err)
	}
	_, err = s.db.conn.Exec(
		`INSERT INTO saved_blocks (id, name, category, kind, block_json, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		sb.ID, sb.Name, sb.Category, string(sb.Block.Kind), string(raw), sb.CreatedAt,
	)
	return err
}

func (s *SavedBlockStore) GetSavedBlock(id string) (*domain.SavedBlock, error) {
	sb := &domain.SavedBlock{}
	var raw string
	err := s.db.conn.QueryRow(
		`SELECT id, name, category, block_json, created_at FROM saved_blocks WHERE id = ?`, id,
	).Scan(&sb.ID, &sb.Name, &sb.Category, &raw, &sb.CreatedAt)
	if err != nil {
		return nil, notFound(err, "saved block", id)
	}
	if err := json.Unmarshal([]byte(raw), &sb.Block); err != nil {
		return nil, fmt.Errorf("decode saved block %s: %w", id, err)
	}
	return sb, nil
}

// ListSavedBlocks returns the library grouped by category, then by name.
func (s *SavedBlockStore) ListSavedBlocks() ([]domain.SavedBlock, error) {
	rows, err := s.db.conn.Query(
		`SELECT id, name, category, block_json, created_at FROM saved_blocks ORDER BY category ASC, name ASC, created_at ASC`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.SavedBlock
	for rows.Next() {
		var sb domain.SavedBlock
		var raw string
		if err := rows.Scan(&sb.ID, &sb.Name, &sb.Category, &raw, &sb.CreatedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(raw), &sb.Block); err != nil {
			return nil, fmt.Errorf("decode saved block %s: %w", sb.ID, err)
		}
		out = append(out, sb)
	}
	return out, rows.Err()
}

func (s *SavedBlockStore) DeleteSavedBlock(id string) error {
	res, err := s.db.conn.Exec(`DELETE FROM saved_blocks WHERE id = ?`, id)
	return execOne(res, err, "saved block", id)
}

var _ domain.SavedBlockStore = (*SavedBlockStore)(nil)
