package catalog

import (
	"context"
	"errors"
	"fmt"

	"pagebuilder/internal/dbclient"
)

// ── Database Source ────────────────────────────────────────
// Reads products from a configured external database connection.

type databaseSource struct {
	rows RowsProvider
}

func (s *databaseSource) Spec() SourceSpec {
	return SourceSpec{
		Type:  "database",
		Label: "Database Query",
		ConfigFields: []ConfigField{
			{Key: "connectionId", Label: "Connection", Required: true, Help: "ID of a configured database connection"},
			{Key: "query", Label: "Query", Required: true, Help: "Read query; for MongoDB a find or aggregate command"},
		},
	}
}

func (s *databaseSource) Read(ctx context.Context, cfg SourceConfig) (<-chan Record, <-chan error) {
	return streamFrom(ctx, func() ([]Record, error) {
		connID, _ := cfg["connectionId"].(string)
		query, _ := cfg["query"].(string)
		if connID == "" || query == "" {
			return nil, errors.New("connectionId and query are required")
		}
		rows, err := s.rows.Rows(ctx, connID, query, dbclient.MaxLimit)
		if err != nil {
			return nil, fmt.Errorf("execute: %w", err)
		}
		if rows.Truncated {
			return nil, fmt.Errorf("query returned more than %d rows", dbclient.MaxLimit)
		}
		records := make([]Record, len(rows.Records))
		for i, r := range rows.Records {
			records[i] = Record{Data: r}
		}
		return records, nil
	})
}
