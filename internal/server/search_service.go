// file: internal/server/search_service.go
// version: 1.1.0
// guid: 3e8b2f6a-0d1c-4a97-b5e2-6f9c1d8a7e40

package server

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jdfalk/brandmatch/internal/cache"
	"github.com/jdfalk/brandmatch/internal/database"
	"github.com/jdfalk/brandmatch/internal/matcher"
	"github.com/jdfalk/brandmatch/internal/metrics"
)

// SearchRequest describes one product search.
type SearchRequest struct {
	Query     string
	Threshold *float64 // nil uses the configured threshold
	Limit     int      // 0 uses the configured limit
	Fuzzy     bool
	Filter    database.ProductFilter // non-brand criteria
}

// SuggestRequest describes one brand suggestion lookup.
type SuggestRequest struct {
	Query     string
	Threshold *float64
	Limit     int // 0 uses the configured suggestion limit
	Filter    database.ProductFilter
}

// SearchService layers brand matching over the catalog store.
type SearchService struct {
	store        database.Store
	cfg          matcher.Config
	suggestLimit int
	suggestions  cache.Store[[]matcher.BrandSuggestion]
}

// NewSearchService creates a search service. suggestions may be nil to
// disable caching.
func NewSearchService(store database.Store, cfg matcher.Config, suggestLimit int, suggestions cache.Store[[]matcher.BrandSuggestion]) *SearchService {
	return &SearchService{
		store:        store,
		cfg:          cfg,
		suggestLimit: suggestLimit,
		suggestions:  suggestions,
	}
}

// Config returns the base matcher configuration.
func (s *SearchService) Config() matcher.Config {
	return s.cfg
}

func (s *SearchService) configFor(threshold *float64, limit int) matcher.Config {
	cfg := s.cfg
	if threshold != nil {
		cfg.Options = cfg.Options.WithThreshold(*threshold)
	}
	if limit > 0 {
		cfg.Options = cfg.Options.WithLimit(limit)
	}
	return cfg
}

// candidates fetches products matching the non-brand criteria, unpaged.
func (s *SearchService) candidates(ctx context.Context, filter database.ProductFilter) ([]database.Product, error) {
	filter.Search = ""
	filter.Limit = 0
	filter.Offset = 0
	products, err := s.store.ListProducts(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to load candidates: %w", err)
	}
	return products, nil
}

// Search runs a fuzzy brand search, or a literal text search when
// req.Fuzzy is false.
func (s *SearchService) Search(ctx context.Context, req SearchRequest) ([]ProductMatch, error) {
	start := time.Now()
	mode := metrics.ModeFuzzy
	if !req.Fuzzy {
		mode = metrics.ModeLiteral
	}

	var (
		matches []ProductMatch
		err     error
	)
	if req.Fuzzy {
		matches, err = s.fuzzySearch(ctx, req)
	} else {
		matches, err = s.literalSearch(ctx, req)
	}
	if err != nil {
		return nil, err
	}

	metrics.IncSearches(mode)
	metrics.ObserveSearchDuration(mode, time.Since(start))
	metrics.ObserveSearchResults(len(matches))
	return matches, nil
}

func (s *SearchService) fuzzySearch(ctx context.Context, req SearchRequest) ([]ProductMatch, error) {
	products, err := s.candidates(ctx, req.Filter)
	if err != nil {
		return nil, err
	}

	hits := matcher.Search(products, database.BrandName, req.Query, s.configFor(req.Threshold, req.Limit))
	matches := make([]ProductMatch, 0, len(hits))
	for _, h := range hits {
		matches = append(matches, ProductMatch{
			Product:     h.Candidate,
			SearchScore: h.Score,
			FuzzyMatch:  h.Matched,
		})
	}
	return matches, nil
}

func (s *SearchService) literalSearch(ctx context.Context, req SearchRequest) ([]ProductMatch, error) {
	filter := req.Filter
	filter.Search = strings.TrimSpace(req.Query)
	filter.Offset = 0
	filter.Limit = 0
	if limit := s.configFor(nil, req.Limit).Options.Limit; limit > 0 {
		filter.Limit = limit
	}

	products, err := s.store.ListProducts(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to search products: %w", err)
	}
	matches := make([]ProductMatch, 0, len(products))
	for _, p := range products {
		matches = append(matches, ProductMatch{Product: p})
	}
	return matches, nil
}

// Suggest returns distinct brand suggestions. The second return value
// reports whether the result came from the cache.
func (s *SearchService) Suggest(ctx context.Context, req SuggestRequest) ([]matcher.BrandSuggestion, bool, error) {
	metrics.IncSuggestions()

	cfg := s.configFor(req.Threshold, 0)
	cfg.Options = cfg.Options.WithLimit(s.suggestLimit)
	if req.Limit > 0 {
		cfg.Options = cfg.Options.WithLimit(req.Limit)
	}

	key := suggestionKey(req.Query, cfg, req.Filter)
	if s.suggestions != nil {
		if cached, ok := s.suggestions.Get(key); ok {
			metrics.IncSuggestionCache(true)
			return cached, true, nil
		}
		metrics.IncSuggestionCache(false)
	}

	products, err := s.candidates(ctx, req.Filter)
	if err != nil {
		return nil, false, err
	}
	suggestions := matcher.Suggest(products, database.BrandName, req.Query, cfg)

	if s.suggestions != nil {
		s.suggestions.Set(key, suggestions)
	}
	return suggestions, false, nil
}

// Score explains how query scores against a single brand.
func (s *SearchService) Score(query, brand string) matcher.Breakdown {
	return matcher.Explain(query, brand, s.cfg)
}

// InvalidateSuggestions drops cached suggestions after the catalog changes.
func (s *SearchService) InvalidateSuggestions() {
	if s.suggestions != nil {
		s.suggestions.InvalidateAll()
	}
}

// PruneSuggestions drops expired suggestions from caches that do not expire
// entries on their own.
func (s *SearchService) PruneSuggestions() {
	if p, ok := s.suggestions.(cache.Pruner); ok {
		p.Prune()
	}
}

// suggestionKey identifies a suggestion result. The query is normalized the
// same way the matcher does so equivalent queries share an entry.
func suggestionKey(query string, cfg matcher.Config, f database.ProductFilter) string {
	q := strings.TrimSpace(query)
	if !cfg.Options.CaseSensitive {
		q = strings.ToLower(q)
	}
	parts := []string{
		strconv.Quote(q),
		strconv.FormatFloat(cfg.Options.Threshold, 'f', -1, 64),
		strconv.Itoa(cfg.Options.Limit),
		strconv.Quote(strings.ToLower(f.Category)),
		strconv.Quote(f.Condition),
		floatKey(f.MinPrice),
		floatKey(f.MaxPrice),
		boolKey(f.IsSold),
	}
	return strings.Join(parts, "|")
}

func floatKey(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

func boolKey(v *bool) string {
	if v == nil {
		return ""
	}
	return strconv.FormatBool(*v)
}
