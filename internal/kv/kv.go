// Package kv provides the opaque key-value snapshot storage used by the
// engine and state container. Values are serialized blobs; the store
// never interprets them.
package kv

import (
	"context"
	"errors"
	"fmt"
	"os"
)

// Well-known snapshot keys.
const (
	// KeyDataset holds the serialized financial dataset.
	KeyDataset = "finance_data"
	// KeyScenarios holds the serialized scenario map.
	KeyScenarios = "finance_scenarios"
)

// ErrClosed is returned by operations on a closed store.
var ErrClosed = errors.New("kv: store closed")

// Store is a minimal abstraction over durable key-value backends.
type Store interface {
	// Get returns the value for key and whether the key was present.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set writes the value for key, replacing any previous value.
	Set(ctx context.Context, key string, value []byte) error
	// Delete removes key; deleting an absent key is a no-op.
	Delete(ctx context.Context, key string) error
	// Close releases backend resources.
	Close() error
}

// Driver identifies a concrete storage implementation.
type Driver string

const (
	DriverMemory   Driver = "memory"   // in-memory only (tests / ephemeral)
	DriverSQLite   Driver = "sqlite"   // embedded sqlite file
	DriverPostgres Driver = "postgres" // PostgreSQL server
)

// Open selects a backend using environment variables. Defaults to sqlite
// when unset.
//
//	BISTROCORE_STORAGE_DRIVER: memory|sqlite|postgres (default sqlite)
//	BISTROCORE_SQLITE_PATH: path to sqlite file (default ./bistrocore.db)
//	BISTROCORE_POSTGRES_DSN: postgres DSN when driver=postgres
func Open() (Store, error) {
	driver := os.Getenv("BISTROCORE_STORAGE_DRIVER")
	if driver == "" {
		driver = string(DriverSQLite)
	}
	switch Driver(driver) {
	case DriverMemory:
		return NewMemory(), nil
	case DriverSQLite:
		return NewSQLite(os.Getenv("BISTROCORE_SQLITE_PATH"))
	case DriverPostgres:
		return NewPostgres(os.Getenv("BISTROCORE_POSTGRES_DSN"))
	default:
		return nil, fmt.Errorf("unknown storage driver %s", driver)
	}
}
