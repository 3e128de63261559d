package service

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"go.uber.org/zap"

	"pagebuilder/internal/dbclient"
	"pagebuilder/internal/domain"
	"pagebuilder/internal/secret"
)

// ─────────────────────────────────────────────────────────────
// Grounding Service: read-only rows for generation and import
// ─────────────────────────────────────────────────────────────

// DefaultConnectorIdle is how long an unused connector stays open.
const DefaultConnectorIdle = 10 * time.Minute

// GroundingService reads rows from the configured external databases.
// Connectors are opened on first use and closed after IdleTimeout without
// use.
type GroundingService struct {
	IdleTimeout time.Duration

	connections []domain.DatabaseConnection
	secrets     secret.SecretStore
	logger      *zap.Logger

	connect func(*domain.DatabaseConnection, string) (dbclient.Connector, error)
	now     func() time.Time

	mu   sync.Mutex
	pool map[string]*pooledConnector
}

type pooledConnector struct {
	dbclient.Connector
	lastUsed time.Time
}

// NewGroundingService creates a GroundingService over a fixed list of
// connections. Passwords are looked up under secret.DBKey.
func NewGroundingService(connections []domain.DatabaseConnection, secrets secret.SecretStore, logger *zap.Logger) *GroundingService {
	return &GroundingService{
		IdleTimeout: DefaultConnectorIdle,
		connections: slices.Clone(connections),
		secrets:     secrets,
		logger:      logger,
		connect:     dbclient.NewConnector,
		now:         time.Now,
		pool:        make(map[string]*pooledConnector),
	}
}

func (s *GroundingService) ListConnections() []domain.DatabaseConnection {
	return slices.Clone(s.connections)
}

func (s *GroundingService) TestConnection(ctx context.Context, id string) error {
	c, err := s.connector(id)
	if err != nil {
		return err
	}
	if err := c.TestConnection(ctx); err != nil {
		return fmt.Errorf("test connection %s: %w", id, err)
	}
	return nil
}

func (s *GroundingService) Introspect(ctx context.Context, id string) (*dbclient.SchemaInfo, error) {
	c, err := s.connector(id)
	if err != nil {
		return nil, err
	}
	info, err := c.Introspect(ctx)
	if err != nil {
		return nil, fmt.Errorf("introspect %s: %w", id, err)
	}
	return info, nil
}

// Rows runs a read query against a connection.
func (s *GroundingService) Rows(ctx context.Context, id, query string, limit int) (*dbclient.Rows, error) {
	c, err := s.connector(id)
	if err != nil {
		return nil, err
	}
	rows, err := c.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", id, err)
	}
	s.logger.Debug("grounding rows",
		zap.String("connection", id),
		zap.Int("rows", len(rows.Records)),
		zap.Bool("truncated", rows.Truncated))
	return rows, nil
}

// Close closes every open connector.
func (s *GroundingService) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, pc := range s.pool {
		s.closeConnector(id, pc)
	}
}

// OpenConnectors returns the ids with a live connector.
func (s *GroundingService) OpenConnectors() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make([]string, 0, len(s.pool))
	for id := range s.pool {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// ── Connector Pool ─────────────────────────────────────────

// connector returns the pooled connector for id, opening it when needed.
// The pool lock is held while opening; connector constructors only parse
// the DSN and never dial.
func (s *GroundingService) connector(id string) (dbclient.Connector, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	s.evictIdle(now, id)
	if pc, ok := s.pool[id]; ok {
		pc.lastUsed = now
		return pc.Connector, nil
	}

	idx := slices.IndexFunc(s.connections, func(c domain.DatabaseConnection) bool { return c.ID == id })
	if idx < 0 {
		return nil, fmt.Errorf("connection %s: %w", id, domain.ErrNotFound)
	}
	conn := s.connections[idx]

	c, err := s.connect(&conn, s.password(id))
	if err != nil {
		return nil, fmt.Errorf("open connection %s: %w", id, err)
	}
	s.pool[id] = &pooledConnector{Connector: c, lastUsed: now}
	s.logger.Debug("connector opened", zap.String("connection", id), zap.String("driver", string(conn.Driver)))
	return c, nil
}

// evictIdle closes connectors unused for IdleTimeout, except keep.
func (s *GroundingService) evictIdle(now time.Time, keep string) {
	if s.IdleTimeout <= 0 {
		return
	}
	for id, pc := range s.pool {
		if id != keep && now.Sub(pc.lastUsed) > s.IdleTimeout {
			s.closeConnector(id, pc)
		}
	}
}

func (s *GroundingService) closeConnector(id string, pc *pooledConnector) {
	if err := pc.Close(); err != nil {
		s.logger.Warn("close connector", zap.String("connection", id), zap.Error(err))
	}
	delete(s.pool, id)
}

func (s *GroundingService) password(id string) string {
	if s.secrets == nil {
		return ""
	}
	pw, err := s.secrets.Get(secret.DBKey(id))
	if err != nil {
		s.logger.Warn("read connection password", zap.String("connection", id), zap.Error(err))
		return ""
	}
	return string(pw)
}
