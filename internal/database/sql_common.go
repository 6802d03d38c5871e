// file: internal/database/sql_common.go
// version: 1.1.0
// guid: e0ddabc1-80ab-41a7-b673-90d768cf55c6

package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"
)

type rowScanner interface {
	Scan(dest ...interface{}) error
}

const productSelectColumns = `id, title, description, price, category, seller_id, condition, brand, model, images, is_sold, created_at`

func scanProduct(scanner rowScanner, p *Product) error {
	var brand sql.NullString
	var images string
	if err := scanner.Scan(
		&p.ID, &p.Title, &p.Description, &p.Price, &p.Category, &p.SellerID,
		&p.Condition, &brand, &p.Model, &images, &p.IsSold, &p.CreatedAt,
	); err != nil {
		return err
	}
	if brand.Valid && brand.String != "" {
		b := brand.String
		p.Brand = &b
	}
	if images != "" {
		if err := json.Unmarshal([]byte(images), &p.Images); err != nil {
			return fmt.Errorf("failed to decode images: %w", err)
		}
	}
	return nil
}

func encodeImages(images []string) (string, error) {
	if len(images) == 0 {
		return "[]", nil
	}
	data, err := json.Marshal(images)
	if err != nil {
		return "", fmt.Errorf("failed to encode images: %w", err)
	}
	return string(data), nil
}

// dialect captures the syntax differences between the SQL backends.
type dialect struct {
	// placeholder renders the n-th (1-based) bind parameter.
	placeholder func(n int) string
	// unlimited is emitted before OFFSET when no LIMIT was requested.
	unlimited string
}

func (d dialect) placeholders(n int) string {
	parts := make([]string, n)
	for i := range parts {
		parts[i] = d.placeholder(i + 1)
	}
	return strings.Join(parts, ", ")
}

var sqliteDialect = dialect{
	placeholder: func(int) string { return "?" },
	unlimited:   " LIMIT -1",
}

var postgresDialect = dialect{
	placeholder: func(n int) string { return fmt.Sprintf("$%d", n) },
}

// buildListQuery mirrors the marketplace listing query: optional filters,
// newest first, then LIMIT/OFFSET.
func buildListQuery(filter ProductFilter, d dialect) (string, []interface{}) {
	var b strings.Builder
	b.WriteString("SELECT ")
	b.WriteString(productSelectColumns)
	b.WriteString(" FROM products WHERE 1=1")

	var args []interface{}
	next := func(v interface{}) string {
		args = append(args, v)
		return d.placeholder(len(args))
	}

	if filter.Category != "" {
		fmt.Fprintf(&b, " AND LOWER(category) LIKE %s"+likeEscape, next(likePattern(filter.Category)))
	}
	if filter.MinPrice != nil {
		fmt.Fprintf(&b, " AND price >= %s", next(*filter.MinPrice))
	}
	if filter.MaxPrice != nil {
		fmt.Fprintf(&b, " AND price <= %s", next(*filter.MaxPrice))
	}
	if filter.Condition != "" {
		fmt.Fprintf(&b, " AND condition = %s", next(filter.Condition))
	}
	if filter.Search != "" {
		p := next(likePattern(filter.Search))
		fmt.Fprintf(&b, " AND (LOWER(title) LIKE %[1]s%[2]s OR LOWER(description) LIKE %[1]s%[2]s OR LOWER(COALESCE(brand, '')) LIKE %[1]s%[2]s)", p, likeEscape)
	}
	if filter.IsSold != nil {
		fmt.Fprintf(&b, " AND is_sold = %s", next(*filter.IsSold))
	}

	b.WriteString(" ORDER BY created_at DESC, id DESC")

	if filter.Limit > 0 {
		fmt.Fprintf(&b, " LIMIT %s", next(filter.Limit))
	}
	if filter.Offset > 0 {
		if filter.Limit <= 0 {
			b.WriteString(d.unlimited)
		}
		fmt.Fprintf(&b, " OFFSET %s", next(filter.Offset))
	}
	return b.String(), args
}

// likeEscape makes the backslash the LIKE escape character on both backends.
const likeEscape = ` ESCAPE '\'`

var likeEscaper = strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`)

// likePattern builds a contains pattern that treats % and _ in s literally.
func likePattern(s string) string {
	return "%" + likeEscaper.Replace(strings.ToLower(s)) + "%"
}

// sqlDB is the subset of *sql.DB shared by the SQL backends.
type sqlDB interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// Migration is a versioned schema change for the SQL backends.
type Migration struct {
	Version     int
	Description string
	Statements  []string
}

// runMigrations applies every migration newer than the recorded schema
// version, each inside its own transaction.
func runMigrations(ctx context.Context, db *sql.DB, migrations []Migration, d dialect) error {
	if _, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS schema_migrations (
		version INTEGER PRIMARY KEY,
		description TEXT NOT NULL,
		applied_at TIMESTAMP NOT NULL
	)`); err != nil {
		return fmt.Errorf("failed to create schema_migrations: %w", err)
	}

	var current int
	if err := db.QueryRowContext(ctx, `SELECT COALESCE(MAX(version), 0) FROM schema_migrations`).Scan(&current); err != nil {
		return fmt.Errorf("failed to get current version: %w", err)
	}

	for _, m := range migrations {
		if m.Version <= current {
			continue
		}
		log.Printf("Applying migration %d: %s", m.Version, m.Description)
		tx, err := db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("failed to begin migration %d: %w", m.Version, err)
		}
		for _, stmt := range m.Statements {
			if _, err := tx.ExecContext(ctx, stmt); err != nil {
				tx.Rollback()
				return fmt.Errorf("migration %d failed: %w", m.Version, err)
			}
		}
		insert := fmt.Sprintf(`INSERT INTO schema_migrations (version, description, applied_at) VALUES (%s)`, d.placeholders(3))
		if _, err := tx.ExecContext(ctx, insert, m.Version, m.Description, time.Now().UTC()); err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to record migration %d: %w", m.Version, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("failed to commit migration %d: %w", m.Version, err)
		}
	}
	return nil
}

// sqlProducts implements the product operations shared by the SQL backends.
type sqlProducts struct {
	db sqlDB
	d  dialect
}

func (s sqlProducts) create(ctx context.Context, product *Product) (*Product, error) {
	p := *product
	prepareProduct(&p)
	images, err := encodeImages(p.Images)
	if err != nil {
		return nil, err
	}
	var brand interface{}
	if p.Brand != nil {
		brand = *p.Brand
	}
	query := fmt.Sprintf(`INSERT INTO products (%s) VALUES (%s)`, productSelectColumns, s.d.placeholders(12))
	if _, err := s.db.ExecContext(ctx, query,
		p.ID, p.Title, p.Description, p.Price, p.Category, p.SellerID,
		p.Condition, brand, p.Model, images, p.IsSold, p.CreatedAt,
	); err != nil {
		return nil, fmt.Errorf("failed to insert product: %w", err)
	}
	return &p, nil
}

func (s sqlProducts) get(ctx context.Context, id string) (*Product, error) {
	query := fmt.Sprintf(`SELECT %s FROM products WHERE id = %s`, productSelectColumns, s.d.placeholder(1))
	var p Product
	if err := scanProduct(s.db.QueryRowContext(ctx, query, id), &p); err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get product %s: %w", id, err)
	}
	return &p, nil
}

func (s sqlProducts) list(ctx context.Context, filter ProductFilter) ([]Product, error) {
	query, args := buildListQuery(filter, s.d)
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	defer rows.Close()

	products := []Product{}
	for rows.Next() {
		var p Product
		if err := scanProduct(rows, &p); err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

func (s sqlProducts) delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, fmt.Sprintf(`DELETE FROM products WHERE id = %s`, s.d.placeholder(1)), id)
	if err != nil {
		return fmt.Errorf("failed to delete product %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete product %s: %w", id, err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s sqlProducts) count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM products`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count products: %w", err)
	}
	return n, nil
}

func (s sqlProducts) categories(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT DISTINCT category FROM products WHERE category <> '' ORDER BY category`)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	defer rows.Close()

	categories := []string{}
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}
