// Package dbclient reads rows from external databases. Rows ground content
// generation and feed catalog imports; connectors never write.
package dbclient

import (
	"context"
	"errors"
	"fmt"

	"pagebuilder/internal/domain"
)

const (
	DefaultLimit = 50
	MaxLimit     = 500
)

// ErrWriteQuery is returned for statements that are not reads.
var ErrWriteQuery = errors.New("only read queries are allowed")

// Rows is a bounded result set. Records are keyed by column name.
type Rows struct {
	Columns   []string         `json:"columns"`
	Records   []map[string]any `json:"records"`
	Truncated bool             `json:"truncated"` // more rows existed beyond the limit
}

// SchemaInfo describes the tables or collections of a database.
type SchemaInfo struct {
	Tables []TableInfo `json:"tables"`
}

type TableInfo struct {
	Name    string       `json:"name"`
	Columns []ColumnInfo `json:"columns"`
}

type ColumnInfo struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// Connector abstracts read access to an external database.
type Connector interface {
	// TestConnection verifies connectivity.
	TestConnection(ctx context.Context) error

	// Query runs a read query and returns at most limit rows.
	Query(ctx context.Context, query string, limit int) (*Rows, error)

	// Introspect returns the tables and columns.
	Introspect(ctx context.Context) (*SchemaInfo, error)

	Close() error
}

// NewConnector creates a Connector for conn. The password comes from a
// secret store, never from the connection record.
func NewConnector(conn *domain.DatabaseConnection, password string) (Connector, error) {
	switch conn.Driver {
	case domain.DatabaseDriverSQLite:
		return newSQLiteConnector(conn)
	case domain.DatabaseDriverMySQL:
		return newSQLConnector("mysql", buildMySQLDSN(conn, password))
	case domain.DatabaseDriverPostgres:
		return newSQLConnector("postgres", buildPostgresDSN(conn, password))
	case domain.DatabaseDriverMongoDB:
		return newMongoConnector(conn, password)
	default:
		return nil, fmt.Errorf("unsupported driver: %s", conn.Driver)
	}
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return DefaultLimit
	}
	return min(limit, MaxLimit)
}
