// file: internal/server/response_types.go
// version: 2.0.0
// guid: 7f8a9b0c-1d2e-3f4a-5b6c-7d8e9f0a1b2c

package server

import (
	"github.com/jdfalk/brandmatch/internal/database"
	"github.com/jdfalk/brandmatch/internal/matcher"
)

// ListResponse provides a consistent format for paginated list responses
type ListResponse struct {
	Items  any `json:"items"`
	Count  int `json:"count"`
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
	Total  int `json:"total,omitempty"`
}

// DeleteResponse provides a consistent format for deletion responses
type DeleteResponse struct {
	Deleted bool   `json:"deleted"`
	ID      string `json:"id"`
}

// BulkResponse provides a consistent format for bulk operation responses
type BulkResponse struct {
	Total     int        `json:"total"`
	Succeeded int        `json:"succeeded"`
	Failed    int        `json:"failed"`
	Results   []BulkItem `json:"results"`
}

// BulkItem represents a single item in a bulk operation response
type BulkItem struct {
	ID     string `json:"id,omitempty"`
	Status string `json:"status"` // "success", "failed"
	Error  string `json:"error,omitempty"`
}

// StatusResponse provides a consistent format for status check responses
type StatusResponse struct {
	Status string `json:"status"` // "ok", "degraded", "error"
	Code   string `json:"code,omitempty"`
	Data   any    `json:"data,omitempty"`
}

// ProductMatch is one search hit. SearchScore is 0 for literal matches.
type ProductMatch struct {
	Product     database.Product `json:"product"`
	SearchScore int              `json:"search_score"`
	FuzzyMatch  bool             `json:"fuzzy_match"`
}

// SearchResponse is returned by the product search endpoint.
type SearchResponse struct {
	Items     []ProductMatch `json:"items"`
	Count     int            `json:"count"`
	Query     string         `json:"query"`
	Fuzzy     bool           `json:"fuzzy"`
	Threshold float64        `json:"threshold"`
	Category  string         `json:"category,omitempty"` // resolved category filter
}

// SuggestResponse is returned by the brand suggestion endpoint.
type SuggestResponse struct {
	Items []matcher.BrandSuggestion `json:"items"`
	Count int                       `json:"count"`
	Query string                    `json:"query"`
}

// ScoreResponse explains how a query scores against one brand.
type ScoreResponse struct {
	Query         string  `json:"query"`
	Brand         string  `json:"brand"`
	Score         int     `json:"score"`
	Similarity    float64 `json:"similarity"`
	Transposition float64 `json:"transposition"`
	Edit          float64 `json:"edit"`
	Substring     float64 `json:"substring"`
	Exact         bool    `json:"exact"`
	Matched       bool    `json:"matched"`
}

// PaginationParams holds common pagination parameters
type PaginationParams struct {
	Limit  int
	Offset int
	Search string
}

// NewListResponse creates a new ListResponse with pagination info
func NewListResponse(items any, count int, limit int, offset int) *ListResponse {
	return &ListResponse{
		Items:  items,
		Count:  count,
		Limit:  limit,
		Offset: offset,
		Total:  count,
	}
}

// NewListResponseWithTotal creates a new ListResponse with a distinct total
func NewListResponseWithTotal(items any, count int, limit int, offset int, total int) *ListResponse {
	return &ListResponse{
		Items:  items,
		Count:  count,
		Limit:  limit,
		Offset: offset,
		Total:  total,
	}
}

// NewBulkResponse creates a new BulkResponse
func NewBulkResponse(results []BulkItem) *BulkResponse {
	succeeded := 0
	failed := 0
	for _, item := range results {
		switch item.Status {
		case "success":
			succeeded++
		case "failed":
			failed++
		}
	}
	return &BulkResponse{
		Total:     len(results),
		Succeeded: succeeded,
		Failed:    failed,
		Results:   results,
	}
}

// NewStatusResponse creates a new StatusResponse
func NewStatusResponse(status string, data any) *StatusResponse {
	return &StatusResponse{
		Status: status,
		Data:   data,
	}
}

// NewScoreResponse flattens a matcher breakdown for the wire.
func NewScoreResponse(query, brand string, b matcher.Breakdown, threshold float64) ScoreResponse {
	return ScoreResponse{
		Query:         query,
		Brand:         brand,
		Score:         matcher.Percent(b.Combined),
		Similarity:    b.Combined,
		Transposition: b.Transposition,
		Edit:          b.Edit,
		Substring:     b.Substring,
		Exact:         b.Exact,
		Matched:       b.Combined > 0 && b.Combined >= threshold,
	}
}
