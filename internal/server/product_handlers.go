// file: internal/server/product_handlers.go
// version: 1.0.0
// guid: a6d0e1f4-9b3c-4c2e-8f71-5e2b0a9c4d13

package server

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/jdfalk/brandmatch/internal/database"
)

const maxBatchSize = 1000

// ProductInput is a product as submitted by clients and catalog imports.
type ProductInput struct {
	Title       string   `json:"title" yaml:"title"`
	Description string   `json:"description" yaml:"description"`
	Price       float64  `json:"price" yaml:"price"`
	Category    string   `json:"category" yaml:"category"`
	SellerID    string   `json:"seller_id" yaml:"seller_id"`
	Condition   string   `json:"condition" yaml:"condition"`
	Brand       *string  `json:"brand" yaml:"brand"`
	Model       string   `json:"model" yaml:"model"`
	Images      []string `json:"images" yaml:"images"`
	IsSold      bool     `json:"is_sold" yaml:"is_sold"`
}

// ToProduct trims the input into a product ready for validation.
func (r ProductInput) ToProduct() *database.Product {
	return &database.Product{
		Title:       strings.TrimSpace(r.Title),
		Description: strings.TrimSpace(r.Description),
		Price:       r.Price,
		Category:    strings.TrimSpace(r.Category),
		SellerID:    strings.TrimSpace(r.SellerID),
		Condition:   strings.ToLower(strings.TrimSpace(r.Condition)),
		Brand:       r.Brand,
		Model:       strings.TrimSpace(r.Model),
		Images:      r.Images,
		IsSold:      r.IsSold,
	}
}

// respondWithValidation maps a ValidationError onto the error envelope.
func respondWithValidation(c *gin.Context, err error) {
	var ve ValidationError
	if errors.As(err, &ve) {
		RespondWithError(c, http.StatusBadRequest, ve.Error(), ve.Code)
		return
	}
	RespondWithBadRequest(c, err.Error())
}

// parseProductFilter reads the non-brand listing criteria from the query.
func parseProductFilter(c *gin.Context) (database.ProductFilter, error) {
	var f database.ProductFilter
	var err error

	f.Category = strings.TrimSpace(c.Query("category"))
	f.Condition = strings.ToLower(strings.TrimSpace(c.Query("condition")))
	if f.Condition != "" {
		if err := ValidateStringInList(f.Condition, "condition", ProductConditions); err != nil {
			return f, err
		}
	}
	if f.MinPrice, err = ParsePrice(c.Query("min_price"), "min_price"); err != nil {
		return f, err
	}
	if f.MaxPrice, err = ParsePrice(c.Query("max_price"), "max_price"); err != nil {
		return f, err
	}
	if f.MinPrice != nil && f.MaxPrice != nil && *f.MinPrice > *f.MaxPrice {
		return f, ValidationError{
			Field:   "min_price",
			Message: "min_price must not exceed max_price",
			Code:    "PRICE_RANGE_INVALID",
		}
	}
	if raw := c.Query("is_sold"); raw != "" {
		sold := ParseQueryBool(c, "is_sold", false)
		f.IsSold = &sold
	}
	return f, nil
}

func (s *Server) listProducts(c *gin.Context) {
	op := operationFor(c, "listProducts")
	op.LogStart()

	filter, err := parseProductFilter(c)
	if err != nil {
		respondWithValidation(c, err)
		return
	}
	page := ParsePaginationParams(c)
	filter.Search = strings.TrimSpace(page.Search)
	filter.Limit = page.Limit
	filter.Offset = page.Offset

	products, err := s.store.ListProducts(c.Request.Context(), filter)
	if err != nil {
		op.LogError(http.StatusInternalServerError, err)
		RespondWithInternalError(c, "failed to list products")
		return
	}
	if products == nil {
		products = []database.Product{}
	}

	op.AddDetail("count", len(products))
	op.LogSuccess(http.StatusOK)
	RespondWithList(c, products, len(products), page.Limit, page.Offset)
}

func (s *Server) getProduct(c *gin.Context) {
	op := operationFor(c, "getProduct")
	id := c.Param("id")
	op.SetResourceID(id)

	if err := ValidateID(id); err != nil {
		respondWithValidation(c, err)
		return
	}

	product, err := s.store.GetProductByID(c.Request.Context(), id)
	if errors.Is(err, database.ErrNotFound) {
		RespondWithNotFound(c, "product", id)
		return
	}
	if err != nil {
		op.LogError(http.StatusInternalServerError, err)
		RespondWithInternalError(c, "failed to load product")
		return
	}

	op.LogSuccess(http.StatusOK)
	RespondWithOK(c, product)
}

func (s *Server) createProduct(c *gin.Context) {
	op := operationFor(c, "createProduct")
	op.LogStart()

	var req ProductInput
	if HandleBindError(c, c.ShouldBindJSON(&req)) {
		return
	}
	product := req.ToProduct()
	if err := ValidateProduct(product); err != nil {
		respondWithValidation(c, err)
		return
	}

	created, err := s.store.CreateProduct(c.Request.Context(), product)
	if err != nil {
		op.LogError(http.StatusInternalServerError, err)
		RespondWithInternalError(c, "failed to create product")
		return
	}
	s.catalogChanged(c)

	op.SetResourceID(created.ID)
	op.LogSuccess(http.StatusCreated)
	RespondWithCreated(c, created)
}

// batchCreateProducts creates each valid product and reports per-item
// results. Invalid items do not abort the batch.
func (s *Server) batchCreateProducts(c *gin.Context) {
	op := operationFor(c, "batchCreateProducts")
	op.LogStart()

	var reqs []ProductInput
	if HandleBindError(c, c.ShouldBindJSON(&reqs)) {
		return
	}
	if len(reqs) == 0 {
		RespondWithValidationError(c, "request body", "at least one product is required")
		return
	}
	if len(reqs) > maxBatchSize {
		RespondWithValidationError(c, "request body", fmt.Sprintf("at most %d products per batch", maxBatchSize))
		return
	}

	results := make([]BulkItem, 0, len(reqs))
	created := 0
	for _, req := range reqs {
		product := req.ToProduct()
		if err := ValidateProduct(product); err != nil {
			results = append(results, BulkItem{Status: "failed", Error: err.Error()})
			continue
		}
		p, err := s.store.CreateProduct(c.Request.Context(), product)
		if err != nil {
			op.LogWarning("batch item failed: " + err.Error())
			results = append(results, BulkItem{Status: "failed", Error: "failed to create product"})
			continue
		}
		created++
		results = append(results, BulkItem{ID: p.ID, Status: "success"})
	}
	if created > 0 {
		s.catalogChanged(c)
	}

	status := http.StatusCreated
	if created == 0 {
		status = http.StatusBadRequest
	}
	op.AddDetail("created", created)
	op.LogSuccess(status)
	c.JSON(status, NewBulkResponse(results))
}

func (s *Server) deleteProduct(c *gin.Context) {
	op := operationFor(c, "deleteProduct")
	id := c.Param("id")
	op.SetResourceID(id)

	if err := ValidateID(id); err != nil {
		respondWithValidation(c, err)
		return
	}

	err := s.store.DeleteProduct(c.Request.Context(), id)
	if errors.Is(err, database.ErrNotFound) {
		RespondWithNotFound(c, "product", id)
		return
	}
	if err != nil {
		op.LogError(http.StatusInternalServerError, err)
		RespondWithInternalError(c, "failed to delete product")
		return
	}
	s.catalogChanged(c)

	op.LogSuccess(http.StatusOK)
	c.JSON(http.StatusOK, DeleteResponse{Deleted: true, ID: id})
}

func (s *Server) listCategories(c *gin.Context) {
	categories, err := s.store.ListCategories(c.Request.Context())
	if err != nil {
		operationFor(c, "listCategories").LogError(http.StatusInternalServerError, err)
		RespondWithInternalError(c, "failed to list categories")
		return
	}
	if categories == nil {
		categories = []string{}
	}
	RespondWithList(c, categories, len(categories), len(categories), 0)
}

// catalogChanged drops cached suggestions and refreshes the product gauge.
func (s *Server) catalogChanged(c *gin.Context) {
	s.search.InvalidateSuggestions()
	s.refreshProductCount(c.Request.Context())
}
