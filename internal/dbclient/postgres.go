package dbclient

import (
	"net"
	"net/url"
	"strconv"

	_ "github.com/lib/pq"

	"pagebuilder/internal/domain"
)

// buildPostgresDSN returns a URL DSN whose sessions default to read-only
// transactions. Credentials are escaped by url.URL.
func buildPostgresDSN(conn *domain.DatabaseConnection, password string) string {
	port := conn.Port
	if port == 0 {
		port = 5432
	}
	sslMode := conn.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	q := url.Values{}
	q.Set("sslmode", sslMode)
	q.Set("options", "-c default_transaction_read_only=on")
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(conn.Username, password),
		Host:     net.JoinHostPort(conn.Host, strconv.Itoa(port)),
		Path:     "/" + conn.Database,
		RawQuery: q.Encode(),
	}
	return u.String()
}
