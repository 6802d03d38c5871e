// file: internal/database/store.go
// version: 3.0.0
// guid: 8a9b0c1d-2e3f-4a5b-6c7d-8e9f0a1b2c3d

package database

import (
	"context"
	"fmt"
)

// Store defines the catalog operations the search service depends on.
// PebbleDB is the default backend; SQLite (opt-in) and PostgreSQL are also
// supported.
type Store interface {
	// Lifecycle
	Close() error

	// Products
	CreateProduct(ctx context.Context, product *Product) (*Product, error) // Generates ULID if ID is empty
	GetProductByID(ctx context.Context, id string) (*Product, error)
	ListProducts(ctx context.Context, filter ProductFilter) ([]Product, error)
	DeleteProduct(ctx context.Context, id string) error
	CountProducts(ctx context.Context) (int, error)

	// Categories
	ListCategories(ctx context.Context) ([]string, error)
}

// Options selects and configures a backend.
type Options struct {
	Type         string // "pebble" (default), "sqlite", "postgres"
	Path         string // pebble directory or sqlite file
	PostgresDSN  string
	EnableSQLite bool // safety flag, SQLite must be explicitly enabled
}

// GlobalStore is the process-wide store used by commands and the server.
var GlobalStore Store

// OpenStore opens the backend described by opts.
func OpenStore(opts Options) (Store, error) {
	switch opts.Type {
	case "sqlite", "sqlite3":
		if !opts.EnableSQLite {
			return nil, fmt.Errorf("SQLite3 is not enabled. To use SQLite3, you must explicitly enable it with --enable-sqlite3-i-know-the-risks or set 'enable_sqlite3_i_know_the_risks: true' in your config file")
		}
		store, err := NewSQLiteStore(opts.Path)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize SQLite store: %w", err)
		}
		return store, nil
	case "postgres", "postgresql":
		if opts.PostgresDSN == "" {
			return nil, fmt.Errorf("postgres_dsn is required for the postgres backend")
		}
		store, err := NewPostgresStore(opts.PostgresDSN)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize PostgreSQL store: %w", err)
		}
		return store, nil
	case "pebble", "":
		store, err := NewPebbleStore(opts.Path)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize PebbleDB store: %w", err)
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unsupported database type: %s (supported: pebble, sqlite, postgres)", opts.Type)
	}
}

// InitializeStore opens the configured backend into GlobalStore.
func InitializeStore(opts Options) error {
	store, err := OpenStore(opts)
	if err != nil {
		return err
	}
	GlobalStore = store
	return nil
}

// CloseStore closes the global store
func CloseStore() error {
	if GlobalStore == nil {
		return nil
	}
	err := GlobalStore.Close()
	GlobalStore = nil
	return err
}
