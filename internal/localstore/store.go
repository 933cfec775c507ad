// Package localstore implements the persistent key-value storage used as
// the fallback when the remote store is unreachable. The layout mirrors
// the browser storage of the original web client: a handful of well-known
// keys, with the transaction list serialized as a whole under one key.
package localstore

import "fmt"

// Well-known keys.
const (
	KeyAuthToken       = "authToken"
	KeyIsAuthenticated = "isAuthenticated"
	KeyExpenses        = "expenses"
)

// Store is a persistent string key-value store. Get reports presence
// separately from errors so an absent key is not a failure.
type Store interface {
	Get(key string) (value string, ok bool, err error)
	Set(key, value string) error
	Delete(key string) error
	Close() error
}

// Backend selects the storage driver.
type Backend string

const (
	FileBackend   Backend = "file"
	SQLiteBackend Backend = "sqlite"
)

// IsValid returns true if the backend type is known.
func (b Backend) IsValid() bool {
	switch b {
	case FileBackend, SQLiteBackend:
		return true
	default:
		return false
	}
}

// Config holds driver selection and driver-specific settings.
type Config struct {
	Backend    Backend
	DataDir    string // file backend
	SQLitePath string // sqlite backend
}

// Open creates the store described by the config.
func Open(cfg Config) (Store, error) {
	switch cfg.Backend {
	case FileBackend:
		return NewFileStore(cfg.DataDir)
	case SQLiteBackend:
		return NewSQLiteStore(cfg.SQLitePath)
	default:
		return nil, fmt.Errorf("invalid local store backend: %s", cfg.Backend)
	}
}
