package secret

import (
	"os"
	"strings"
	"sync"
)

// SecretStore holds sensitive values such as database passwords, keyed by
// "db:<connection id>" or a provider name.
type SecretStore interface {
	// Set stores a secret value under the given key.
	Set(key string, value []byte) error

	// Get retrieves the secret value for the given key.
	// Returns empty slice and nil error if key does not exist.
	Get(key string) ([]byte, error)

	// Delete removes the secret for the given key.
	Delete(key string) error
}

// DBKey is the key under which a connection password is stored.
func DBKey(connectionID string) string {
	return "db:" + connectionID
}

// MemoryStore keeps secrets in process memory.
type MemoryStore struct {
	mu     sync.RWMutex
	values map[string][]byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{values: make(map[string][]byte)}
}

func (m *MemoryStore) Set(key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = append([]byte(nil), value...)
	return nil
}

func (m *MemoryStore) Get(key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.values[key]
	if !ok {
		return nil, nil
	}
	return append([]byte(nil), v...), nil
}

func (m *MemoryStore) Delete(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.values, key)
	return nil
}

// EnvStore reads secrets from environment variables named Prefix followed by
// the upper-cased key, with every non-alphanumeric rune replaced by '_'.
// "db:shop" with prefix "PAGEBUILDER_SECRET_" reads PAGEBUILDER_SECRET_DB_SHOP.
// Values set at runtime shadow the environment for this process only.
type EnvStore struct {
	Prefix    string
	overrides MemoryStore
}

func NewEnvStore(prefix string) *EnvStore {
	return &EnvStore{Prefix: prefix, overrides: MemoryStore{values: make(map[string][]byte)}}
}

// EnvName returns the variable consulted for key.
func (e *EnvStore) EnvName(key string) string {
	return e.Prefix + strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z':
			return r - 'a' + 'A'
		case r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		default:
			return '_'
		}
	}, key)
}

func (e *EnvStore) Set(key string, value []byte) error {
	return e.overrides.Set(key, value)
}

func (e *EnvStore) Get(key string) ([]byte, error) {
	if v, _ := e.overrides.Get(key); v != nil {
		return v, nil
	}
	if v, ok := os.LookupEnv(e.EnvName(key)); ok {
		return []byte(v), nil
	}
	return nil, nil
}

func (e *EnvStore) Delete(key string) error {
	return e.overrides.Delete(key)
}
