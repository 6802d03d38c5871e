// file: internal/database/postgres_store_test.go
// version: 1.0.0
// guid: da556d10-e41b-49d9-89e9-497f5408580d

package database

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var productColumns = []string{"id", "title", "description", "price", "category", "seller_id", "condition", "brand", "model", "images", "is_sold", "created_at"}

func setupPostgresMock(t *testing.T, schemaVersion int) (*PostgresStore, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS schema_migrations").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")).
		WillReturnRows(sqlmock.NewRows([]string{"coalesce"}).AddRow(schemaVersion))

	for _, m := range postgresMigrations {
		if m.Version <= schemaVersion {
			continue
		}
		mock.ExpectBegin()
		for _, stmt := range m.Statements {
			mock.ExpectExec(regexp.QuoteMeta(stmt)).WillReturnResult(sqlmock.NewResult(0, 0))
		}
		mock.ExpectExec(regexp.QuoteMeta("INSERT INTO schema_migrations (version, description, applied_at) VALUES ($1, $2, $3)")).
			WithArgs(m.Version, m.Description, sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(1, 1))
		mock.ExpectCommit()
	}

	store, err := newPostgresStoreFromDB(context.Background(), db)
	require.NoError(t, err)
	return store, mock
}

func TestPostgresStore_Migrations(t *testing.T) {
	_, mock := setupPostgresMock(t, 0)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_MigrationsUpToDate(t *testing.T) {
	_, mock := setupPostgresMock(t, len(postgresMigrations))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_CreateProduct(t *testing.T) {
	store, mock := setupPostgresMock(t, len(postgresMigrations))

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO products (" + productSelectColumns + ") VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)")).
		WithArgs(sqlmock.AnyArg(), "Galaxy S23", "", 50000.0, "Electronics", "seller-1", "new", "Samsung", "S23", `["a.jpg"]`, false, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	created, err := store.CreateProduct(context.Background(), &Product{
		Title:     "Galaxy S23",
		Price:     50000,
		Category:  "Electronics",
		SellerID:  "seller-1",
		Condition: "new",
		Brand:     StringPtr("Samsung"),
		Model:     "S23",
		Images:    []string{"a.jpg"},
	})
	require.NoError(t, err)
	assert.Len(t, created.ID, 26)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_ListProducts(t *testing.T) {
	store, mock := setupPostgresMock(t, len(postgresMigrations))

	filter := ProductFilter{Category: "Electronics", MaxPrice: floatPtr(60000), Limit: 20}
	query, _ := buildListQuery(filter, postgresDialect)
	created := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta(query)).
		WithArgs("%electronics%", 60000.0, 20).
		WillReturnRows(sqlmock.NewRows(productColumns).
			AddRow("01HX", "Galaxy S23", "", 50000.0, "Electronics", "s1", "new", "Samsung", "", `["a.jpg","b.jpg"]`, false, created).
			AddRow("01HY", "Charger", "", 900.0, "Electronics", "s2", "new", nil, "", "[]", false, created))

	products, err := store.ListProducts(context.Background(), filter)
	require.NoError(t, err)
	require.Len(t, products, 2)
	assert.Equal(t, "Samsung", BrandName(products[0]))
	assert.Equal(t, []string{"a.jpg", "b.jpg"}, products[0].Images)
	assert.Nil(t, products[1].Brand)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_GetProductNotFound(t *testing.T) {
	store, mock := setupPostgresMock(t, len(postgresMigrations))

	mock.ExpectQuery(regexp.QuoteMeta("SELECT " + productSelectColumns + " FROM products WHERE id = $1")).
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows(productColumns))

	_, err := store.GetProductByID(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_DeleteProduct(t *testing.T) {
	store, mock := setupPostgresMock(t, len(postgresMigrations))

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM products WHERE id = $1")).
		WithArgs("01HX").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM products WHERE id = $1")).
		WithArgs("01HZ").
		WillReturnResult(sqlmock.NewResult(0, 0))

	assert.NoError(t, store.DeleteProduct(context.Background(), "01HX"))
	assert.ErrorIs(t, store.DeleteProduct(context.Background(), "01HZ"), ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_CountAndCategories(t *testing.T) {
	store, mock := setupPostgresMock(t, len(postgresMigrations))

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM products")).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(42))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT DISTINCT category FROM products")).
		WillReturnRows(sqlmock.NewRows([]string{"category"}).AddRow("Electronics").AddRow("Footwear"))

	n, err := store.CountProducts(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 42, n)

	categories, err := store.ListCategories(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"Electronics", "Footwear"}, categories)
	assert.NoError(t, mock.ExpectationsWereMet())
}
