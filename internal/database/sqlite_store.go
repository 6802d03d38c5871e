// file: internal/database/sqlite_store.go
// version: 2.0.0
// guid: 8b9c0d1e-2f3a-4b5c-6d7e-8f9a0b1c2d3e

package database

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

var sqliteMigrations = []Migration{
	{
		Version:     1,
		Description: "Initial products schema",
		Statements: []string{
			`CREATE TABLE IF NOT EXISTS products (
				id TEXT PRIMARY KEY,
				title TEXT NOT NULL,
				description TEXT NOT NULL DEFAULT '',
				price REAL NOT NULL DEFAULT 0,
				category TEXT NOT NULL DEFAULT '',
				seller_id TEXT NOT NULL DEFAULT '',
				condition TEXT NOT NULL DEFAULT '',
				brand TEXT,
				model TEXT NOT NULL DEFAULT '',
				images TEXT NOT NULL DEFAULT '[]',
				is_sold BOOLEAN NOT NULL DEFAULT 0,
				created_at TIMESTAMP NOT NULL
			)`,
			`CREATE INDEX IF NOT EXISTS idx_products_created_at ON products(created_at)`,
		},
	},
	{
		Version:     2,
		Description: "Index brand and category for listing filters",
		Statements: []string{
			`CREATE INDEX IF NOT EXISTS idx_products_brand ON products(brand)`,
			`CREATE INDEX IF NOT EXISTS idx_products_category ON products(category)`,
		},
	},
}

// SQLiteStore implements the Store interface using SQLite3
type SQLiteStore struct {
	db *sql.DB
	sqlProducts
}

// NewSQLiteStore creates a new SQLite store
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}

	// Test connection
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping SQLite database: %w", err)
	}

	if err := runMigrations(context.Background(), db, sqliteMigrations, sqliteDialect); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &SQLiteStore{db: db, sqlProducts: sqlProducts{db: db, d: sqliteDialect}}, nil
}

// Close closes the database
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) CreateProduct(ctx context.Context, product *Product) (*Product, error) {
	return s.create(ctx, product)
}

func (s *SQLiteStore) GetProductByID(ctx context.Context, id string) (*Product, error) {
	return s.get(ctx, id)
}

func (s *SQLiteStore) ListProducts(ctx context.Context, filter ProductFilter) ([]Product, error) {
	return s.list(ctx, filter)
}

func (s *SQLiteStore) DeleteProduct(ctx context.Context, id string) error {
	return s.delete(ctx, id)
}

func (s *SQLiteStore) CountProducts(ctx context.Context) (int, error) {
	return s.count(ctx)
}

func (s *SQLiteStore) ListCategories(ctx context.Context) ([]string, error) {
	return s.categories(ctx)
}
