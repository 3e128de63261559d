package secret_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pagebuilder/internal/secret"
)

func TestMemoryStore(t *testing.T) {
	s := secret.NewMemoryStore()
	require.NoError(t, s.Set("db:shop", []byte("pw")))

	v, err := s.Get("db:shop")
	require.NoError(t, err)
	assert.Equal(t, "pw", string(v))

	require.NoError(t, s.Delete("db:shop"))
	v, err = s.Get("db:shop")
	require.NoError(t, err)
	assert.Nil(t, v)
}

func TestEnvStore(t *testing.T) {
	s := secret.NewEnvStore("PAGEBUILDER_SECRET_")
	assert.Equal(t, "PAGEBUILDER_SECRET_DB_SHOP_1", s.EnvName(secret.DBKey("shop-1")))

	t.Setenv("PAGEBUILDER_SECRET_DB_SHOP_1", "from-env")
	v, err := s.Get("db:shop-1")
	require.NoError(t, err)
	assert.Equal(t, "from-env", string(v))

	require.NoError(t, s.Set("db:shop-1", []byte("override")))
	v, _ = s.Get("db:shop-1")
	assert.Equal(t, "override", string(v))

	require.NoError(t, s.Delete("db:shop-1"))
	v, _ = s.Get("db:shop-1")
	assert.Equal(t, "from-env", string(v))

	v, err = s.Get("db:missing")
	require.NoError(t, err)
	assert.Nil(t, v)
}
