package domain

// DatabaseDriver represents the type of database engine.
type DatabaseDriver string

const (
	DatabaseDriverMySQL    DatabaseDriver = "mysql"
	DatabaseDriverPostgres DatabaseDriver = "postgres"
	DatabaseDriverMongoDB  DatabaseDriver = "mongodb"
	DatabaseDriverSQLite   DatabaseDriver = "sqlite"
)

// DatabaseConnection describes an external database used as a grounding
// source for generation or as a catalog import source. The password is held
// separately in a secret.Store under the connection ID.
type DatabaseConnection struct {
	ID        string         `json:"id" yaml:"id"`
	Name      string         `json:"name" yaml:"name"`
	Driver    DatabaseDriver `json:"driver" yaml:"driver"`
	Host      string         `json:"host" yaml:"host"`         // hostname or file path (sqlite)
	Port      int            `json:"port" yaml:"port"`         // 0 for sqlite
	Database  string         `json:"database" yaml:"database"` // db name or empty for sqlite
	Username  string         `json:"username" yaml:"username"`
	SSLMode   string         `json:"sslMode" yaml:"ssl_mode"`
	ExtraJSON string         `json:"extraJson" yaml:"extra_json"` // driver-specific options
}
