// file: internal/database/postgres_store.go
// version: 1.0.0
// guid: f46c7f64-f199-4a50-9046-2b2f0bbab89e

package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"
)

var postgresMigrations = []Migration{
	{
		Version:     1,
		Description: "Initial products schema",
		Statements: []string{
			`CREATE TABLE IF NOT EXISTS products (
				id TEXT PRIMARY KEY,
				title VARCHAR(255) NOT NULL,
				description TEXT NOT NULL DEFAULT '',
				price DOUBLE PRECISION NOT NULL DEFAULT 0,
				category VARCHAR(100) NOT NULL DEFAULT '',
				seller_id TEXT NOT NULL DEFAULT '',
				condition VARCHAR(50) NOT NULL DEFAULT '',
				brand VARCHAR(100),
				model VARCHAR(100) NOT NULL DEFAULT '',
				images TEXT NOT NULL DEFAULT '[]',
				is_sold BOOLEAN NOT NULL DEFAULT FALSE,
				created_at TIMESTAMPTZ NOT NULL
			)`,
			`CREATE INDEX IF NOT EXISTS idx_products_created_at ON products(created_at)`,
		},
	},
	{
		Version:     2,
		Description: "Index brand and category for listing filters",
		Statements: []string{
			`CREATE INDEX IF NOT EXISTS idx_products_brand ON products(LOWER(brand))`,
			`CREATE INDEX IF NOT EXISTS idx_products_category ON products(category)`,
		},
	},
}

// PostgresStore implements the Store interface on PostgreSQL, the schema
// used by the marketplace API.
type PostgresStore struct {
	db *sql.DB
	sqlProducts
}

// NewPostgresStore connects to dsn, verifies the connection and migrates.
func NewPostgresStore(dsn string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres: %w", err)
	}

	db.SetMaxOpenConns(20)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)
	db.SetConnMaxIdleTime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping postgres: %w", err)
	}

	store, err := newPostgresStoreFromDB(ctx, db)
	if err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}

// newPostgresStoreFromDB wraps an open connection pool and migrates it.
func newPostgresStoreFromDB(ctx context.Context, db *sql.DB) (*PostgresStore, error) {
	if err := runMigrations(ctx, db, postgresMigrations, postgresDialect); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	return &PostgresStore{db: db, sqlProducts: sqlProducts{db: db, d: postgresDialect}}, nil
}

// Close closes the connection pool
func (s *PostgresStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func (s *PostgresStore) CreateProduct(ctx context.Context, product *Product) (*Product, error) {
	return s.create(ctx, product)
}

func (s *PostgresStore) GetProductByID(ctx context.Context, id string) (*Product, error) {
	return s.get(ctx, id)
}

func (s *PostgresStore) ListProducts(ctx context.Context, filter ProductFilter) ([]Product, error) {
	return s.list(ctx, filter)
}

func (s *PostgresStore) DeleteProduct(ctx context.Context, id string) error {
	return s.delete(ctx, id)
}

func (s *PostgresStore) CountProducts(ctx context.Context) (int, error) {
	return s.count(ctx)
}

func (s *PostgresStore) ListCategories(ctx context.Context) ([]string, error) {
	return s.categories(ctx)
}
