// file: internal/database/mock_store.go
// version: 2.0.0
// guid: b2c3d4e5-f6a7-8b9c-0d1e-2f3a4b5c6d7e

package database

import (
	"context"
	"sort"
	"sync"
)

// MockStore is an in-memory Store for tests. Any *Func field that is set
// overrides the in-memory behavior of that method.
type MockStore struct {
	mu       sync.Mutex
	products []Product
	closed   bool

	CreateProductFunc  func(ctx context.Context, product *Product) (*Product, error)
	GetProductByIDFunc func(ctx context.Context, id string) (*Product, error)
	ListProductsFunc   func(ctx context.Context, filter ProductFilter) ([]Product, error)
	DeleteProductFunc  func(ctx context.Context, id string) error
	CountProductsFunc  func(ctx context.Context) (int, error)
	ListCategoriesFunc func(ctx context.Context) ([]string, error)
}

// NewMockStore returns a mock seeded with products.
func NewMockStore(products ...Product) *MockStore {
	m := &MockStore{}
	for i := range products {
		p := products[i]
		prepareProduct(&p)
		m.products = append(m.products, p)
	}
	return m
}

// Closed reports whether Close has been called.
func (m *MockStore) Closed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

func (m *MockStore) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

func (m *MockStore) CreateProduct(ctx context.Context, product *Product) (*Product, error) {
	if m.CreateProductFunc != nil {
		return m.CreateProductFunc(ctx, product)
	}
	p := *product
	prepareProduct(&p)
	m.mu.Lock()
	m.products = append(m.products, p)
	m.mu.Unlock()
	return &p, nil
}

func (m *MockStore) GetProductByID(ctx context.Context, id string) (*Product, error) {
	if m.GetProductByIDFunc != nil {
		return m.GetProductByIDFunc(ctx, id)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.products {
		if p.ID == id {
			found := p
			return &found, nil
		}
	}
	return nil, ErrNotFound
}

func (m *MockStore) ListProducts(ctx context.Context, filter ProductFilter) ([]Product, error) {
	if m.ListProductsFunc != nil {
		return m.ListProductsFunc(ctx, filter)
	}
	m.mu.Lock()
	snapshot := append([]Product(nil), m.products...)
	m.mu.Unlock()
	return filter.apply(snapshot), nil
}

func (m *MockStore) DeleteProduct(ctx context.Context, id string) error {
	if m.DeleteProductFunc != nil {
		return m.DeleteProductFunc(ctx, id)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, p := range m.products {
		if p.ID == id {
			m.products = append(m.products[:i], m.products[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

func (m *MockStore) CountProducts(ctx context.Context) (int, error) {
	if m.CountProductsFunc != nil {
		return m.CountProductsFunc(ctx)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.products), nil
}

func (m *MockStore) ListCategories(ctx context.Context) ([]string, error) {
	if m.ListCategoriesFunc != nil {
		return m.ListCategoriesFunc(ctx)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	seen := make(map[string]struct{})
	categories := []string{}
	for _, p := range m.products {
		if _, ok := seen[p.Category]; ok || p.Category == "" {
			continue
		}
		seen[p.Category] = struct{}{}
		categories = append(categories, p.Category)
	}
	sort.Strings(categories)
	return categories, nil
}

var _ Store = (*MockStore)(nil)
var _ Store = (*PebbleStore)(nil)
var _ Store = (*SQLiteStore)(nil)
var _ Store = (*PostgresStore)(nil)
