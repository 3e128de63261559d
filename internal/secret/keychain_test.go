package secret

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeSecurity mimics security(1) over an in-memory item map.
type fakeSecurity struct {
	items map[string]string
	calls [][]string
	fail  error
}

func (f *fakeSecurity) run(args ...string) ([]byte, error) {
	f.calls = append(f.calls, args)
	if f.fail != nil {
		return nil, f.fail
	}
	flag := func(name string) string {
		for i := 0; i < len(args)-1; i++ {
			if args[i] == name {
				return args[i+1]
			}
		}
		return ""
	}
	id := flag("-s") + "/" + flag("-a")
	switch args[0] {
	case "add-generic-password":
		f.items[id] = flag("-w")
		return nil, nil
	case "find-generic-password":
		v, ok := f.items[id]
		if !ok {
			return nil, errItemNotFound
		}
		return []byte(v + "\n"), nil
	case "delete-generic-password":
		if _, ok := f.items[id]; !ok {
			return nil, errItemNotFound
		}
		delete(f.items, id)
		return nil, nil
	}
	return nil, errors.New("unexpected command")
}

func newFakeKeychain() (*KeychainStore, *fakeSecurity) {
	f := &fakeSecurity{items: map[string]string{}}
	return &KeychainStore{Service: keychainService, run: f.run}, f
}

func TestKeychainStore_RoundTrip(t *testing.T) {
	k, f := newFakeKeychain()

	v, err := k.Get(DBKey("shop"))
	require.NoError(t, err)
	assert.Nil(t, v)

	require.NoError(t, k.Set(DBKey("shop"), []byte("pw")))
	require.NoError(t, k.Set(DBKey("shop"), []byte("pw2")))
	v, err = k.Get(DBKey("shop"))
	require.NoError(t, err)
	assert.Equal(t, "pw2", string(v))
	assert.Equal(t, []string{"add-generic-password", "-U", "-a", "db:shop", "-s", "pagebuilder", "-w", "pw"}, f.calls[1])

	require.NoError(t, k.Delete(DBKey("shop")))
	require.NoError(t, k.Delete(DBKey("shop")))
	v, err = k.Get(DBKey("shop"))
	require.NoError(t, err)
	assert.Nil(t, v)
}

func TestKeychainStore_Failure(t *testing.T) {
	k, f := newFakeKeychain()
	f.fail = errors.New("keychain locked")

	_, err := k.Get("db:shop")
	assert.ErrorContains(t, err, "keychain locked")
	assert.Error(t, k.Set("db:shop", []byte("pw")))
	assert.Error(t, k.Delete("db:shop"))
}
