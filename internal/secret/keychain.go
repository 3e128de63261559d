package secret

import (
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

const keychainService = "pagebuilder"

// exit status of security(1) when no matching item exists
const securityItemNotFound = 44

var errItemNotFound = errors.New("keychain item not found")

// KeychainStore keeps secrets in the macOS login keychain through the
// security CLI. Each key is stored as the account of a generic password
// under Service.
type KeychainStore struct {
	Service string
	run     func(args ...string) ([]byte, error)
}

func NewKeychainStore() *KeychainStore {
	return &KeychainStore{Service: keychainService, run: runSecurity}
}

func runSecurity(args ...string) ([]byte, error) {
	out, err := exec.Command("security", args...).Output()
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		if exitErr.ExitCode() == securityItemNotFound {
			return nil, errItemNotFound
		}
		return nil, fmt.Errorf("%s: %w", strings.TrimSpace(string(exitErr.Stderr)), err)
	}
	return out, err
}

// Set stores value under key, replacing any existing entry.
func (k *KeychainStore) Set(key string, value []byte) error {
	_, err := k.run("add-generic-password", "-U", "-a", key, "-s", k.Service, "-w", string(value))
	if err != nil {
		return fmt.Errorf("keychain set %s: %w", key, err)
	}
	return nil
}

// Get returns nil and no error when key has no entry.
func (k *KeychainStore) Get(key string) ([]byte, error) {
	out, err := k.run("find-generic-password", "-a", key, "-s", k.Service, "-w")
	if errors.Is(err, errItemNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("keychain get %s: %w", key, err)
	}
	return []byte(strings.TrimRight(string(out), "\n")), nil
}

func (k *KeychainStore) Delete(key string) error {
	_, err := k.run("delete-generic-password", "-a", key, "-s", k.Service)
	if err != nil && !errors.Is(err, errItemNotFound) {
		return fmt.Errorf("keychain delete %s: %w", key, err)
	}
	return nil
}
