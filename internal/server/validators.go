// file: internal/server/validators.go
// version: 2.0.0
// guid: 9b0c1d2e-3f4a-5b6c-7d8e-9f0a1b2c3d4e

package server

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/jdfalk/brandmatch/internal/database"
)

// ProductConditions lists the accepted condition values.
var ProductConditions = []string{"new", "like new", "good", "fair", "poor"}

const (
	minTitleLength       = 3
	maxTitleLength       = 255
	maxDescriptionLength = 2000
	maxBrandLength       = 100
	maxModelLength       = 100
	minPrice             = 0.01
	maxImages            = 10
	maxQueryLength       = 200
)

// ValidationError represents a validation error with code
type ValidationError struct {
	Field   string
	Message string
	Code    string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateTitle validates that a title is non-empty and has reasonable length
func ValidateTitle(title string, minLength int, maxLength int) error {
	title = strings.TrimSpace(title)
	if title == "" {
		return ValidationError{
			Field:   "title",
			Message: "title is required",
			Code:    "TITLE_REQUIRED",
		}
	}
	n := utf8.RuneCountInString(title)
	if minLength > 0 && n < minLength {
		return ValidationError{
			Field:   "title",
			Message: fmt.Sprintf("title must be at least %d characters", minLength),
			Code:    "TITLE_TOO_SHORT",
		}
	}
	if maxLength > 0 && n > maxLength {
		return ValidationError{
			Field:   "title",
			Message: fmt.Sprintf("title must not exceed %d characters", maxLength),
			Code:    "TITLE_TOO_LONG",
		}
	}
	return nil
}

// ValidateID validates that an ID is non-empty and has reasonable format
func ValidateID(id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return ValidationError{
			Field:   "id",
			Message: "id is required",
			Code:    "ID_REQUIRED",
		}
	}
	if len(id) > 256 {
		return ValidationError{
			Field:   "id",
			Message: "id is too long",
			Code:    "ID_TOO_LONG",
		}
	}
	return nil
}

// ValidateMaxLength rejects values longer than maxLength runes.
func ValidateMaxLength(value string, fieldName string, maxLength int) error {
	if utf8.RuneCountInString(value) > maxLength {
		return ValidationError{
			Field:   fieldName,
			Message: fmt.Sprintf("%s must not exceed %d characters", fieldName, maxLength),
			Code:    fmt.Sprintf("%s_TOO_LONG", strings.ToUpper(fieldName)),
		}
	}
	return nil
}

// ValidatePrice requires a finite price of at least one cent.
func ValidatePrice(price float64) error {
	if math.IsNaN(price) || math.IsInf(price, 0) || price < minPrice {
		return ValidationError{
			Field:   "price",
			Message: "price must be a positive number",
			Code:    "PRICE_INVALID",
		}
	}
	return nil
}

// ValidateStringInList validates that a string is one of the allowed values
func ValidateStringInList(value string, fieldName string, allowed []string) error {
	value = strings.TrimSpace(value)
	for _, allowed := range allowed {
		if value == allowed {
			return nil
		}
	}
	return ValidationError{
		Field:   fieldName,
		Message: fmt.Sprintf("%s must be one of: %v", fieldName, allowed),
		Code:    fmt.Sprintf("%s_INVALID_VALUE", strings.ToUpper(fieldName)),
	}
}

// ValidateImageRef accepts absolute http(s) URLs and upload paths.
func ValidateImageRef(ref string) error {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return ValidationError{
			Field:   "images",
			Message: "image reference is empty",
			Code:    "IMAGES_INVALID",
		}
	}
	if !strings.HasPrefix(ref, "http://") && !strings.HasPrefix(ref, "https://") && !strings.HasPrefix(ref, "/uploads/") {
		return ValidationError{
			Field:   "images",
			Message: "image must be an http(s) URL or an /uploads/ path",
			Code:    "IMAGES_INVALID",
		}
	}
	if len(ref) > 2048 {
		return ValidationError{
			Field:   "images",
			Message: "image reference is too long",
			Code:    "IMAGES_TOO_LONG",
		}
	}
	return nil
}

// ValidateProduct applies the listing rules to a new product.
func ValidateProduct(p *database.Product) error {
	if err := ValidateTitle(p.Title, minTitleLength, maxTitleLength); err != nil {
		return err
	}
	if err := ValidateMaxLength(p.Description, "description", maxDescriptionLength); err != nil {
		return err
	}
	if err := ValidatePrice(p.Price); err != nil {
		return err
	}
	if err := ValidateStringInList(p.Condition, "condition", ProductConditions); err != nil {
		return err
	}
	if p.Brand != nil {
		if err := ValidateMaxLength(strings.TrimSpace(*p.Brand), "brand", maxBrandLength); err != nil {
			return err
		}
	}
	if err := ValidateMaxLength(p.Model, "model", maxModelLength); err != nil {
		return err
	}
	if len(p.Images) > maxImages {
		return ValidationError{
			Field:   "images",
			Message: fmt.Sprintf("images must not have more than %d items", maxImages),
			Code:    "IMAGES_TOO_LONG",
		}
	}
	for _, img := range p.Images {
		if err := ValidateImageRef(img); err != nil {
			return err
		}
	}
	return nil
}

// ParseThreshold parses an optional similarity threshold in [0, 1]. An empty
// string yields fallback.
func ParseThreshold(raw string, fallback float64) (float64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || v < 0 || v > 1 {
		return 0, ValidationError{
			Field:   "threshold",
			Message: "threshold must be a number between 0 and 1",
			Code:    "THRESHOLD_INVALID",
		}
	}
	return v, nil
}

// ParseLimit parses an optional non-negative result limit. An empty string
// yields fallback; 0 keeps the engine default.
func ParseLimit(raw string, fallback int) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return 0, ValidationError{
			Field:   "limit",
			Message: "limit must be a non-negative integer",
			Code:    "LIMIT_INVALID",
		}
	}
	return v, nil
}

// ParsePrice parses an optional non-negative price bound.
func ParsePrice(raw string, fieldName string) (*float64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return nil, ValidationError{
			Field:   fieldName,
			Message: fmt.Sprintf("%s must be a non-negative number", fieldName),
			Code:    fmt.Sprintf("%s_INVALID", strings.ToUpper(fieldName)),
		}
	}
	return &v, nil
}

// ValidateQuery requires a non-blank query of bounded length.
func ValidateQuery(q string) error {
	q = strings.TrimSpace(q)
	if q == "" {
		return ValidationError{
			Field:   "q",
			Message: "query is required",
			Code:    "QUERY_REQUIRED",
		}
	}
	if utf8.RuneCountInString(q) > maxQueryLength {
		return ValidationError{
			Field:   "q",
			Message: fmt.Sprintf("query must not exceed %d characters", maxQueryLength),
			Code:    "QUERY_TOO_LONG",
		}
	}
	return nil
}
