// file: internal/database/pebble_store.go
// version: 2.0.0
// guid: 0c1d2e3f-4a5b-6c7d-8e9f-0a1b2c3d4e5f

package database

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/cockroachdb/pebble/v2"
)

// PebbleStore implements the Store interface using PebbleDB (LSM key-value store)
//
// Key Schema:
// - product:<id>  -> Product JSON
//
// ULIDs sort by creation time, so a forward scan of the product keyspace
// yields oldest-first order.
type PebbleStore struct {
	db *pebble.DB
}

const productPrefix = "product:"

// NewPebbleStore creates a new PebbleDB store
func NewPebbleStore(path string) (*PebbleStore, error) {
	db, err := pebble.Open(path, &pebble.Options{})
	if err != nil {
		return nil, fmt.Errorf("failed to open PebbleDB: %w", err)
	}
	return &PebbleStore{db: db}, nil
}

// Close closes the database
func (p *PebbleStore) Close() error {
	return p.db.Close()
}

func productKey(id string) []byte {
	return []byte(productPrefix + id)
}

// scanProducts decodes every product in key order.
func (p *PebbleStore) scanProducts(ctx context.Context) ([]Product, error) {
	iter, err := p.db.NewIter(&pebble.IterOptions{
		LowerBound: []byte(productPrefix),
		UpperBound: []byte("product;"),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create iterator: %w", err)
	}
	defer iter.Close()

	var products []Product
	for iter.First(); iter.Valid(); iter.Next() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		var product Product
		if err := json.Unmarshal(iter.Value(), &product); err != nil {
			return nil, fmt.Errorf("failed to decode %s: %w", iter.Key(), err)
		}
		products = append(products, product)
	}
	return products, iter.Error()
}

func (p *PebbleStore) CreateProduct(ctx context.Context, product *Product) (*Product, error) {
	created := *product
	prepareProduct(&created)

	data, err := json.Marshal(created)
	if err != nil {
		return nil, fmt.Errorf("failed to encode product: %w", err)
	}
	if err := p.db.Set(productKey(created.ID), data, pebble.Sync); err != nil {
		return nil, fmt.Errorf("failed to store product: %w", err)
	}
	return &created, nil
}

func (p *PebbleStore) GetProductByID(ctx context.Context, id string) (*Product, error) {
	value, closer, err := p.db.Get(productKey(id))
	if errors.Is(err, pebble.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get product %s: %w", id, err)
	}
	defer closer.Close()

	var product Product
	if err := json.Unmarshal(value, &product); err != nil {
		return nil, fmt.Errorf("failed to decode product %s: %w", id, err)
	}
	return &product, nil
}

func (p *PebbleStore) ListProducts(ctx context.Context, filter ProductFilter) ([]Product, error) {
	products, err := p.scanProducts(ctx)
	if err != nil {
		return nil, err
	}
	return filter.apply(products), nil
}

func (p *PebbleStore) DeleteProduct(ctx context.Context, id string) error {
	if _, err := p.GetProductByID(ctx, id); err != nil {
		return err
	}
	if err := p.db.Delete(productKey(id), pebble.Sync); err != nil {
		return fmt.Errorf("failed to delete product %s: %w", id, err)
	}
	return nil
}

func (p *PebbleStore) CountProducts(ctx context.Context) (int, error) {
	products, err := p.scanProducts(ctx)
	if err != nil {
		return 0, err
	}
	return len(products), nil
}

func (p *PebbleStore) ListCategories(ctx context.Context) ([]string, error) {
	products, err := p.scanProducts(ctx)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]struct{})
	categories := []string{}
	for _, product := range products {
		if product.Category == "" {
			continue
		}
		if _, ok := seen[product.Category]; ok {
			continue
		}
		seen[product.Category] = struct{}{}
		categories = append(categories, product.Category)
	}
	sort.Strings(categories)
	return categories, nil
}
