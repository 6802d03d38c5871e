// file: internal/server/search_handlers.go
// version: 1.0.0
// guid: f1c7b3e9-2a84-4d6f-b0e5-8c3a9d17f2b6

package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/jdfalk/brandmatch/internal/database"
)

// resolveCategory maps a user-typed category onto a known one so small typos
// still filter. Unknown input is passed through unchanged.
func (s *Server) resolveCategory(c *gin.Context, filter *database.ProductFilter) {
	if filter.Category == "" {
		return
	}
	known, err := s.store.ListCategories(c.Request.Context())
	if err != nil {
		operationFor(c, "resolveCategory").LogWarning("failed to list categories: " + err.Error())
		return
	}
	if resolved, ok := database.ResolveCategory(filter.Category, known); ok {
		filter.Category = resolved
	}
}

func (s *Server) searchProducts(c *gin.Context) {
	op := operationFor(c, "searchProducts")
	op.LogStart()

	q := strings.TrimSpace(c.Query("q"))
	if err := ValidateQuery(q); err != nil {
		respondWithValidation(c, err)
		return
	}
	threshold, err := ParseThreshold(c.Query("threshold"), s.search.Config().Options.Threshold)
	if err != nil {
		respondWithValidation(c, err)
		return
	}
	limit, err := ParseLimit(c.Query("limit"), 0)
	if err != nil {
		respondWithValidation(c, err)
		return
	}
	filter, err := parseProductFilter(c)
	if err != nil {
		respondWithValidation(c, err)
		return
	}
	s.resolveCategory(c, &filter)

	req := SearchRequest{
		Query:     q,
		Threshold: &threshold,
		Limit:     limit,
		Fuzzy:     ParseQueryBool(c, "fuzzy", true),
		Filter:    filter,
	}
	matches, err := s.search.Search(c.Request.Context(), req)
	if err != nil {
		op.LogError(http.StatusInternalServerError, err)
		RespondWithInternalError(c, "failed to search products")
		return
	}

	op.AddDetail("query", q)
	op.AddDetail("fuzzy", req.Fuzzy)
	op.AddDetail("results", len(matches))
	op.LogSuccess(http.StatusOK)
	c.JSON(http.StatusOK, SearchResponse{
		Items:     matches,
		Count:     len(matches),
		Query:     q,
		Fuzzy:     req.Fuzzy,
		Threshold: threshold,
		Category:  filter.Category,
	})
}

func (s *Server) suggestBrands(c *gin.Context) {
	op := operationFor(c, "suggestBrands")
	op.LogStart()

	q := strings.TrimSpace(c.Query("q"))
	if err := ValidateQuery(q); err != nil {
		respondWithValidation(c, err)
		return
	}
	threshold, err := ParseThreshold(c.Query("threshold"), s.search.Config().Options.Threshold)
	if err != nil {
		respondWithValidation(c, err)
		return
	}
	limit, err := ParseLimit(c.Query("limit"), 0)
	if err != nil {
		respondWithValidation(c, err)
		return
	}
	filter, err := parseProductFilter(c)
	if err != nil {
		respondWithValidation(c, err)
		return
	}
	s.resolveCategory(c, &filter)

	suggestions, cached, err := s.search.Suggest(c.Request.Context(), SuggestRequest{
		Query:     q,
		Threshold: &threshold,
		Limit:     limit,
		Filter:    filter,
	})
	if err != nil {
		op.LogError(http.StatusInternalServerError, err)
		RespondWithInternalError(c, "failed to suggest brands")
		return
	}

	op.AddDetail("cached", cached)
	op.AddDetail("results", len(suggestions))
	op.LogSuccess(http.StatusOK)
	c.JSON(http.StatusOK, SuggestResponse{
		Items: suggestions,
		Count: len(suggestions),
		Query: q,
	})
}

func (s *Server) scoreBrand(c *gin.Context) {
	q := strings.TrimSpace(c.Query("q"))
	if err := ValidateQuery(q); err != nil {
		respondWithValidation(c, err)
		return
	}
	brand := strings.TrimSpace(c.Query("brand"))
	if brand == "" {
		RespondWithValidationError(c, "brand", "brand is required")
		return
	}
	if err := ValidateMaxLength(brand, "brand", maxBrandLength); err != nil {
		respondWithValidation(c, err)
		return
	}

	b := s.search.Score(q, brand)
	c.JSON(http.StatusOK, NewScoreResponse(q, brand, b, s.search.Config().Options.Threshold))
}
