package storage

import (
	"context"
	"errors"
	"fmt"
)

// ErrNotFound is returned by KV.Get for a key that was never set.
var ErrNotFound = errors.New("key not found")

// KV is an opaque get/set-by-key store of JSON blobs.
type KV interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Close() error
}

// Supported KV drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// Options selects and configures a KV backend.
type Options struct {
	Driver string
	// Path is the SQLite database file.
	Path string
	// DSN and MigrationsPath configure the PostgreSQL backend.
	DSN            string
	MigrationsPath string
}

// Open creates the KV backend named by opts.Driver.
func Open(ctx context.Context, opts Options) (KV, error) {
	switch opts.Driver {
	case DriverSQLite, "":
		kv, err := OpenSQLite(ctx, opts.Path)
		if err != nil {
			return nil, err
		}
		return kv, nil
	case DriverPostgres:
		if err := RunMigrations(opts.DSN, opts.MigrationsPath); err != nil {
			return nil, err
		}
		kv, err := NewPostgres(ctx, opts.DSN)
		if err != nil {
			return nil, err
		}
		return kv, nil
	case DriverMemory:
		return NewMemory(), nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", opts.Driver)
	}
}
