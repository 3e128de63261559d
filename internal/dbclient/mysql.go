package dbclient

import (
	"net"
	"strconv"

	"github.com/go-sql-driver/mysql"

	"pagebuilder/internal/domain"
)

// buildMySQLDSN returns a DSN whose sessions start read-only.
func buildMySQLDSN(conn *domain.DatabaseConnection, password string) string {
	port := conn.Port
	if port == 0 {
		port = 3306
	}
	cfg := mysql.NewConfig()
	cfg.User = conn.Username
	cfg.Passwd = password
	cfg.Net = "tcp"
	cfg.Addr = net.JoinHostPort(conn.Host, strconv.Itoa(port))
	cfg.DBName = conn.Database
	cfg.ParseTime = true
	cfg.Params = map[string]string{
		"charset":               "utf8mb4",
		"transaction_read_only": "1",
	}
	if conn.SSLMode == "require" {
		cfg.TLSConfig = "true"
	}
	return cfg.FormatDSN()
}
