// Copyright (c) 2025 askdb
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package keychain provides centralized, thread-safe keychain operations for askdb.
// It stores the secrets the CLI needs between runs: the database DSN, the
// administrator account (user name and bcrypt hash, never the password) and the
// API key of the translation model.
//
// The OS credential store is used on every platform: macOS Keychain, Windows
// Credential Manager, and Secret Service, KWallet or pass on Linux. There is no
// plain-file fallback.
package keychain

import (
	"errors"
	"runtime"
	"sync"

	"github.com/99designs/keyring"
)

// Global keychain manager instance
var (
	globalManager *Manager
	globalError   error
	mu            sync.Mutex
)

// ErrNotFound is returned when a secret has not been stored.
var ErrNotFound = errors.New("secret not found in keychain")

// Manager provides centralized, thread-safe operations for the OS keychain.
type Manager struct {
	mu   sync.RWMutex
	ring keyring.Keyring
}

// ServiceName identifies our keychain/credential store namespace.
const ServiceName = "askdb"

// Keys used for storing secrets in the OS keychain.
const (
	KeyDBDSN     = "db_dsn"
	KeyAdminUser = "admin_user"
	KeyAdminHash = "admin_hash"
	KeyLLMAPIKey = "llm_api_key"
)

var allKeys = []string{KeyDBDSN, KeyAdminUser, KeyAdminHash, KeyLLMAPIKey}

// NewManager creates a new keychain manager with the OS keyring initialized.
func NewManager() (*Manager, error) {
	ring, err := openRing()
	if err != nil {
		return nil, err
	}
	return &Manager{ring: ring}, nil
}

// NewWithRing wraps an already opened keyring, e.g. keyring.NewArrayKeyring in tests.
func NewWithRing(ring keyring.Keyring) *Manager {
	return &Manager{ring: ring}
}

// GetManager returns the global keychain manager instance.
// If not initialized, it will be created on first call.
// If initialization fails, it will retry on subsequent calls.
func GetManager() (*Manager, error) {
	mu.Lock()
	defer mu.Unlock()

	if globalManager != nil {
		return globalManager, nil
	}

	globalManager, globalError = NewManager()
	if globalError != nil {
		return nil, globalError
	}
	return globalManager, nil
}

// backendsFor lists the native credential stores tried on goos, in order.
func backendsFor(goos string) []keyring.BackendType {
	switch goos {
	case "darwin":
		// pass is the fallback when the Keychain refuses unsigned binaries
		return []keyring.BackendType{keyring.KeychainBackend, keyring.PassBackend}
	case "windows":
		return []keyring.BackendType{keyring.WinCredBackend}
	case "linux", "freebsd", "openbsd":
		return []keyring.BackendType{keyring.SecretServiceBackend, keyring.KWalletBackend, keyring.PassBackend}
	}
	return nil
}

// openRing opens the OS keyring using native platform backends only.
func openRing() (keyring.Keyring, error) {
	allowed := backendsFor(runtime.GOOS)
	if len(allowed) == 0 {
		return nil, errors.New("secure storage is not supported on " + runtime.GOOS)
	}

	cfg := keyring.Config{
		ServiceName:             ServiceName,
		AllowedBackends:         allowed,
		PassPrefix:              ServiceName,
		WinCredPrefix:           ServiceName,
		LibSecretCollectionName: ServiceName,
		KWalletAppID:            ServiceName,
		KWalletFolder:           ServiceName,
	}

	ring, err := keyring.Open(cfg)
	if err != nil {
		switch runtime.GOOS {
		case "darwin":
			return nil, errors.New("macOS Keychain unavailable. Install 'pass': brew install pass gnupg && gpg --generate-key && pass init <gpg-key-id>")
		case "linux":
			return nil, errors.New("no credential store found. Start a Secret Service provider (gnome-keyring, KWallet) or install 'pass'; alternatively set ASKDB_DSN")
		}
		return nil, err
	}
	return ring, nil
}

func (m *Manager) set(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ring.Set(keyring.Item{Key: key, Data: []byte(value), Label: ServiceName + " " + key})
}

func (m *Manager) get(key string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	it, err := m.ring.Get(key)
	if err != nil {
		if errors.Is(err, keyring.ErrKeyNotFound) {
			return "", ErrNotFound
		}
		return "", err
	}
	if len(it.Data) == 0 {
		return "", ErrNotFound
	}
	return string(it.Data), nil
}

func (m *Manager) remove(keys ...string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, k := range keys {
		_ = m.ring.Remove(k)
	}
}

// SaveDBDSN stores the database DSN in the keychain.
func (m *Manager) SaveDBDSN(dsn string) error { return m.set(KeyDBDSN, dsn) }

// LoadDBDSN retrieves the database DSN from the keychain.
func (m *Manager) LoadDBDSN() (string, error) { return m.get(KeyDBDSN) }

// ClearDB removes DB-related secrets from the keychain.
func (m *Manager) ClearDB() error {
	m.remove(KeyDBDSN)
	return nil
}

// SaveAdmin stores the administrator user name and bcrypt password hash.
func (m *Manager) SaveAdmin(user string, hash []byte) error {
	if err := m.set(KeyAdminUser, user); err != nil {
		return err
	}
	return m.set(KeyAdminHash, string(hash))
}

// LoadAdmin returns the stored administrator user name and password hash.
func (m *Manager) LoadAdmin() (string, []byte, error) {
	user, err := m.get(KeyAdminUser)
	if err != nil {
		return "", nil, err
	}
	hash, err := m.get(KeyAdminHash)
	if err != nil {
		return "", nil, err
	}
	return user, []byte(hash), nil
}

// ClearAdmin removes the administrator account.
func (m *Manager) ClearAdmin() error {
	m.remove(KeyAdminUser, KeyAdminHash)
	return nil
}

// SaveLLMAPIKey stores the translation model API key.
func (m *Manager) SaveLLMAPIKey(key string) error { return m.set(KeyLLMAPIKey, key) }

// LoadLLMAPIKey retrieves the translation model API key.
func (m *Manager) LoadLLMAPIKey() (string, error) { return m.get(KeyLLMAPIKey) }

// ClearAll removes all askdb secrets from the keychain.
func (m *Manager) ClearAll() error {
	m.remove(allKeys...)
	return nil
}
