package service

import (
	"time"

	"pagebuilder/internal/dbclient"
	"pagebuilder/internal/domain"
)

// SetConnectorFactory replaces how connectors are opened and the clock used
// for idle eviction.
func (s *GroundingService) SetConnectorFactory(connect func(*domain.DatabaseConnection, string) (dbclient.Connector, error), now func() time.Time) {
	s.connect = connect
	s.now = now
}
