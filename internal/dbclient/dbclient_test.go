package dbclient

import (
	"context"
	"database/sql"
	"net/url"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"

	"pagebuilder/internal/domain"
)

func seedSQLite(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "shop.db")
	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	defer db.Close()

	_, err = db.Exec(`CREATE TABLE products (id INTEGER PRIMARY KEY, name TEXT, sold INTEGER)`)
	require.NoError(t, err)
	for i, name := range []string{"Phone", "Laptop", "Tablet"} {
		_, err = db.Exec(`INSERT INTO products (id, name, sold) VALUES (?, ?, ?)`, i+1, name, (i+1)*10)
		require.NoError(t, err)
	}
	return path
}

func TestSQLiteConnector_QueryAndLimit(t *testing.T) {
	c, err := NewConnector(&domain.DatabaseConnection{Driver: domain.DatabaseDriverSQLite, Host: seedSQLite(t)}, "")
	require.NoError(t, err)
	defer c.Close()

	ctx := context.Background()
	require.NoError(t, c.TestConnection(ctx))

	rows, err := c.Query(ctx, "SELECT id, name, sold FROM products ORDER BY id", 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"id", "name", "sold"}, rows.Columns)
	require.Len(t, rows.Records, 2)
	assert.True(t, rows.Truncated)
	assert.Equal(t, "Phone", rows.Records[0]["name"])

	rows, err = c.Query(ctx, "SELECT name FROM products", 10)
	require.NoError(t, err)
	assert.Len(t, rows.Records, 3)
	assert.False(t, rows.Truncated)
}

func TestSQLiteConnector_RejectsWrites(t *testing.T) {
	c, err := NewConnector(&domain.DatabaseConnection{Driver: domain.DatabaseDriverSQLite, Host: seedSQLite(t)}, "")
	require.NoError(t, err)
	defer c.Close()

	_, err = c.Query(context.Background(), "DELETE FROM products", 10)
	assert.ErrorIs(t, err, ErrWriteQuery)
}

func TestSQLiteConnector_Introspect(t *testing.T) {
	c, err := NewConnector(&domain.DatabaseConnection{Driver: domain.DatabaseDriverSQLite, Host: seedSQLite(t)}, "")
	require.NoError(t, err)
	defer c.Close()

	schema, err := c.Introspect(context.Background())
	require.NoError(t, err)
	require.Len(t, schema.Tables, 1)
	assert.Equal(t, "products", schema.Tables[0].Name)
	assert.Len(t, schema.Tables[0].Columns, 3)
}

func TestNewConnector_UnsupportedDriver(t *testing.T) {
	_, err := NewConnector(&domain.DatabaseConnection{Driver: "oracle"}, "")
	assert.Error(t, err)
}

func TestIsReadQuery(t *testing.T) {
	tests := []struct {
		query string
		want  bool
	}{
		{"SELECT 1", true},
		{"  with x as (select 1) select * from x", true},
		{"SHOW TABLES", true},
		{"INSERT INTO t VALUES (1)", false},
		{"drop table t", false},
		{"PRAGMA writable_schema = 1", false},
	}
	for _, tt := range tests {
		if got := isReadQuery(tt.query); got != tt.want {
			t.Errorf("isReadQuery(%q) = %v, want %v", tt.query, got, tt.want)
		}
	}
}

func TestClampLimit(t *testing.T) {
	assert.Equal(t, DefaultLimit, clampLimit(0))
	assert.Equal(t, 10, clampLimit(10))
	assert.Equal(t, MaxLimit, clampLimit(MaxLimit+1))
}

func TestBuildMySQLDSN(t *testing.T) {
	conn := &domain.DatabaseConnection{Host: "db.local", Database: "shop", Username: "app", SSLMode: "require"}
	cfg, err := mysql.ParseDSN(buildMySQLDSN(conn, "p@ss"))
	require.NoError(t, err)
	assert.Equal(t, "app", cfg.User)
	assert.Equal(t, "p@ss", cfg.Passwd)
	assert.Equal(t, "db.local:3306", cfg.Addr)
	assert.Equal(t, "shop", cfg.DBName)
	assert.True(t, cfg.ParseTime)
	assert.Equal(t, "true", cfg.TLSConfig)
	assert.Equal(t, "1", cfg.Params["transaction_read_only"])
}

func TestBuildPostgresDSN(t *testing.T) {
	conn := &domain.DatabaseConnection{Host: "db.local", Port: 6543, Database: "shop", Username: "app"}
	u, err := url.Parse(buildPostgresDSN(conn, "p@ss word"))
	require.NoError(t, err)
	assert.Equal(t, "postgres", u.Scheme)
	assert.Equal(t, "db.local:6543", u.Host)
	assert.Equal(t, "/shop", u.Path)
	pw, _ := u.User.Password()
	assert.Equal(t, "p@ss word", pw)
	assert.Equal(t, "disable", u.Query().Get("sslmode"))
	assert.Equal(t, "-c default_transaction_read_only=on", u.Query().Get("options"))
}

func TestMongoURI(t *testing.T) {
	uri, db := mongoURI(&domain.DatabaseConnection{Host: "mongo.local", Username: "app", ExtraJSON: `{"authSource":"admin"}`}, "pw")
	assert.Equal(t, "mongodb://app:pw@mongo.local:27017/?authSource=admin", uri)
	assert.Equal(t, "test", db)

	uri, db = mongoURI(&domain.DatabaseConnection{Host: "mongodb+srv://app:<password>@cluster.example.net/catalog?retryWrites=true"}, "pw")
	assert.Equal(t, "mongodb+srv://app:pw@cluster.example.net/catalog?retryWrites=true", uri)
	assert.Equal(t, "catalog", db)
}

func TestNormalizeBSON(t *testing.T) {
	oid := bson.NewObjectID()
	when := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	got := normalizeBSON(bson.D{
		{Key: "_id", Value: oid},
		{Key: "at", Value: bson.NewDateTimeFromTime(when)},
		{Key: "tags", Value: bson.A{"a", bson.D{{Key: "n", Value: int32(1)}}}},
	})
	want := map[string]any{
		"_id":  oid.Hex(),
		"at":   "2024-05-01T12:00:00Z",
		"tags": []any{"a", map[string]any{"n": int32(1)}},
	}
	assert.Equal(t, want, got)
}

func TestSortColumns(t *testing.T) {
	cols := []string{"name", "_id", "age"}
	sortColumns(cols)
	assert.Equal(t, []string{"_id", "age", "name"}, cols)
}
