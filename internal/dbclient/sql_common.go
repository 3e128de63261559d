package dbclient

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"
)

// sqlConnector is the shared implementation for MySQL, Postgres and SQLite.
type sqlConnector struct {
	driverName string
	db         *sql.DB
	// txOptions is nil for SQLite, whose DSN already sets query_only.
	txOptions *sql.TxOptions
}

func newSQLConnector(driverName, dsn string) (*sqlConnector, error) {
	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driverName, err)
	}
	db.SetMaxOpenConns(5)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(10 * time.Minute)

	c := &sqlConnector{driverName: driverName, db: db}
	if driverName != "sqlite" {
		c.txOptions = &sql.TxOptions{ReadOnly: true}
	}
	return c, nil
}

func (c *sqlConnector) TestConnection(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	return c.db.PingContext(ctx)
}

// isReadQuery detects if a query is a read (SELECT, WITH, SHOW, DESCRIBE, EXPLAIN).
func isReadQuery(query string) bool {
	q := strings.ToUpper(strings.TrimSpace(query))
	for _, prefix := range []string{"SELECT", "WITH", "SHOW", "DESCRIBE", "EXPLAIN"} {
		if strings.HasPrefix(q, prefix) {
			return true
		}
	}
	return false
}

func (c *sqlConnector) Query(ctx context.Context, query string, limit int) (*Rows, error) {
	if !isReadQuery(query) {
		return nil, ErrWriteQuery
	}
	limit = clampLimit(limit)

	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	tx, err := c.db.BeginTx(ctx, c.txOptions)
	if err != nil {
		return nil, fmt.Errorf("begin read tx: %w", err)
	}
	defer tx.Rollback()

	rows, err := tx.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("columns: %w", err)
	}

	out := &Rows{Columns: cols, Records: []map[string]any{}}
	for rows.Next() {
		if len(out.Records) == limit {
			out.Truncated = true
			break
		}
		values := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for j := range values {
			ptrs[j] = &values[j]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		rec := make(map[string]any, len(cols))
		for j, col := range cols {
			rec[col] = formatValue(values[j])
		}
		out.Records = append(out.Records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate: %w", err)
	}
	return out, nil
}

// formatValue converts a database value to a JSON-friendly one.
func formatValue(v any) any {
	switch val := v.(type) {
	case nil:
		return nil
	case []byte:
		return string(val)
	case time.Time:
		return val.Format(time.RFC3339)
	default:
		return val
	}
}

func (c *sqlConnector) Introspect(ctx context.Context) (*SchemaInfo, error) {
	ctx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	switch c.driverName {
	case "sqlite":
		return c.introspectSQLite(ctx)
	default:
		return c.introspectInfoSchema(ctx)
	}
}

// introspectInfoSchema works for MySQL and Postgres via INFORMATION_SCHEMA.
func (c *sqlConnector) introspectInfoSchema(ctx context.Context) (*SchemaInfo, error) {
	query := `SELECT TABLE_NAME FROM INFORMATION_SCHEMA.TABLES WHERE TABLE_SCHEMA = DATABASE() ORDER BY TABLE_NAME`
	colQuery := `SELECT COLUMN_NAME, DATA_TYPE FROM INFORMATION_SCHEMA.COLUMNS WHERE TABLE_NAME = ? ORDER BY ORDINAL_POSITION`
	if c.driverName == "postgres" {
		query = `SELECT table_name FROM information_schema.tables WHERE table_schema = current_schema() ORDER BY table_name`
		colQuery = `SELECT column_name, data_type FROM information_schema.columns WHERE table_name = $1 ORDER BY ordinal_position`
	}
	tables, err := c.stringColumn(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list tables: %w", err)
	}

	return c.describeTables(tables, func(tbl string) ([]ColumnInfo, error) {
		return c.columns(ctx, func(r *sql.Rows) (ColumnInfo, error) {
			var ci ColumnInfo
			err := r.Scan(&ci.Name, &ci.Type)
			return ci, err
		}, colQuery, tbl)
	})
}

// introspectSQLite uses sqlite_master + PRAGMA table_info.
func (c *sqlConnector) introspectSQLite(ctx context.Context) (*SchemaInfo, error) {
	tables, err := c.stringColumn(ctx, `SELECT name FROM sqlite_master WHERE type='table' AND name NOT LIKE 'sqlite_%' ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list tables: %w", err)
	}

	return c.describeTables(tables, func(tbl string) ([]ColumnInfo, error) {
		pragma := fmt.Sprintf("PRAGMA table_info('%s')", strings.ReplaceAll(tbl, "'", "''"))
		return c.columns(ctx, func(r *sql.Rows) (ColumnInfo, error) {
			var cid, notNull, pk int
			var name, colType string
			var dflt sql.NullString
			err := r.Scan(&cid, &name, &colType, &notNull, &dflt, &pk)
			return ColumnInfo{Name: name, Type: colType}, err
		}, pragma)
	})
}

func (c *sqlConnector) describeTables(tables []string, columnsOf func(string) ([]ColumnInfo, error)) (*SchemaInfo, error) {
	schema := &SchemaInfo{Tables: make([]TableInfo, 0, len(tables))}
	for _, tbl := range tables {
		cols, err := columnsOf(tbl)
		if err != nil {
			return nil, fmt.Errorf("describe %s: %w", tbl, err)
		}
		schema.Tables = append(schema.Tables, TableInfo{Name: tbl, Columns: cols})
	}
	return schema, nil
}

func (c *sqlConnector) columns(ctx context.Context, scan func(*sql.Rows) (ColumnInfo, error), query string, args ...any) ([]ColumnInfo, error) {
	rows, err := c.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ColumnInfo
	for rows.Next() {
		ci, err := scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, ci)
	}
	return out, rows.Err()
}

func (c *sqlConnector) stringColumn(ctx context.Context, query string) ([]string, error) {
	rows, err := c.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (c *sqlConnector) Close() error {
	return c.db.Close()
}
