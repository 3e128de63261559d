package storage

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"pagebuilder/internal/block"
)

const (
	ownerPage   = "page"
	ownerLayout = "layout"
)

type querier interface {
	Query(query string, args ...any) (*sql.Rows, error)
}

type execer interface {
	Exec(query string, args ...any) (sql.Result, error)
}

// replaceBlocks replaces every block of an owner with seq, keeping seq order.
func replaceBlocks(tx execer, ownerType, ownerID string, seq []block.Block) error {
	if _, err := tx.Exec(`DELETE FROM blocks WHERE owner_type = ? AND owner_id = ?`, ownerType, ownerID); err != nil {
		return fmt.Errorf("delete blocks: %w", err)
	}
	for i, b := range seq {
		raw, err := json.Marshal(b)
		if err != nil {
			return fmt.Errorf("encode block %s: %w", b.ID, err)
		}
		if _, err := tx.Exec(
			`INSERT INTO blocks (owner_type, owner_id, id, position, kind, block_json) VALUES (?, ?, ?, ?, ?, ?)`,
			ownerType, ownerID, b.ID, i, string(b.Kind), string(raw),
		); err != nil {
			return fmt.Errorf("insert block %s: %w", b.ID, err)
		}
	}
	return nil
}

func loadBlocks(q querier, ownerType, ownerID string) ([]block.Block, error) {
	rows, err := q.Query(
		`SELECT block_json FROM blocks WHERE owner_type = ? AND owner_id = ? ORDER BY position ASC`,
		ownerType, ownerID,
	)
	if err != nil {
		return nil, fmt.Errorf("load blocks: %w", err)
	}
	defer rows.Close()

	seq := []block.Block{}
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, err
		}
		var b block.Block
		if err := json.Unmarshal([]byte(raw), &b); err != nil {
			return nil, fmt.Errorf("decode block: %w", err)
		}
		seq = append(seq, b)
	}
	return seq, rows.Err()
}
