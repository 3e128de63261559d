package dbclient

import (
	_ "modernc.org/sqlite"

	"pagebuilder/internal/domain"
)

// newSQLiteConnector opens an external SQLite file. query_only makes the
// engine itself refuse writes.
func newSQLiteConnector(conn *domain.DatabaseConnection) (*sqlConnector, error) {
	dsn := conn.Host + "?_pragma=busy_timeout(5000)&_pragma=query_only(1)"
	return newSQLConnector("sqlite", dsn)
}
