// file: internal/server/validators_test.go
// version: 2.0.0
// guid: 0c1d2e3f-4a5b-6c7d-8e9f-0a1b2c3d4e5f

package server

import (
	"math"
	"strings"
	"testing"

	"github.com/jdfalk/brandmatch/internal/database"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateTitle_Valid(t *testing.T) {
	err := ValidateTitle("Galaxy S21", 3, 255)
	if err != nil {
		t.Errorf("expected no error for valid title, got %v", err)
	}
}

func TestValidateTitle_Empty(t *testing.T) {
	err := ValidateTitle("   ", 0, 0)
	if err == nil {
		t.Fatal("expected error for empty title")
	}
	ve := err.(ValidationError)
	if ve.Code != "TITLE_REQUIRED" {
		t.Errorf("expected TITLE_REQUIRED code, got %q", ve.Code)
	}
}

func TestValidateTitle_CountsRunes(t *testing.T) {
	// three runes, six bytes
	assert.NoError(t, ValidateTitle("äöü", 3, 3))
	assert.Error(t, ValidateTitle("äöüß", 3, 3))
}

func TestValidateID(t *testing.T) {
	assert.NoError(t, ValidateID("01HXYZ"))
	assert.Error(t, ValidateID(""))
	assert.Error(t, ValidateID(strings.Repeat("a", 257)))
}

func TestValidatePrice(t *testing.T) {
	assert.NoError(t, ValidatePrice(0.01))
	assert.NoError(t, ValidatePrice(999.99))
	assert.Error(t, ValidatePrice(0))
	assert.Error(t, ValidatePrice(-5))
	assert.Error(t, ValidatePrice(math.NaN()))
	assert.Error(t, ValidatePrice(math.Inf(1)))
}

func TestValidateStringInList(t *testing.T) {
	assert.NoError(t, ValidateStringInList("like new", "condition", ProductConditions))
	err := ValidateStringInList("broken", "condition", ProductConditions)
	require.Error(t, err)
	assert.Equal(t, "CONDITION_INVALID_VALUE", err.(ValidationError).Code)
}

func TestValidateImageRef(t *testing.T) {
	assert.NoError(t, ValidateImageRef("https://cdn.example.com/a.jpg"))
	assert.NoError(t, ValidateImageRef("/uploads/products/a.jpg"))
	assert.Error(t, ValidateImageRef("ftp://example.com/a.jpg"))
	assert.Error(t, ValidateImageRef(""))
}

func TestValidateProduct(t *testing.T) {
	valid := func() *database.Product {
		return &database.Product{
			Title:     "Galaxy S21",
			Price:     499,
			Condition: "good",
			Brand:     database.StringPtr("Samsung"),
			Images:    []string{"/uploads/products/s21.jpg"},
		}
	}
	require.NoError(t, ValidateProduct(valid()))

	tests := []struct {
		name   string
		mutate func(p *database.Product)
		code   string
	}{
		{"short title", func(p *database.Product) { p.Title = "ab" }, "TITLE_TOO_SHORT"},
		{"free item", func(p *database.Product) { p.Price = 0 }, "PRICE_INVALID"},
		{"unknown condition", func(p *database.Product) { p.Condition = "mint" }, "CONDITION_INVALID_VALUE"},
		{"long brand", func(p *database.Product) { p.Brand = database.StringPtr(strings.Repeat("b", 101)) }, "BRAND_TOO_LONG"},
		{"long description", func(p *database.Product) { p.Description = strings.Repeat("d", 2001) }, "DESCRIPTION_TOO_LONG"},
		{"bad image", func(p *database.Product) { p.Images = []string{"file:///etc/passwd"} }, "IMAGES_INVALID"},
		{"too many images", func(p *database.Product) { p.Images = make([]string, 11) }, "IMAGES_TOO_LONG"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := valid()
			tt.mutate(p)
			err := ValidateProduct(p)
			require.Error(t, err)
			assert.Equal(t, tt.code, err.(ValidationError).Code)
		})
	}

	t.Run("brand is optional", func(t *testing.T) {
		p := valid()
		p.Brand = nil
		assert.NoError(t, ValidateProduct(p))
	})
}

func TestParseThreshold(t *testing.T) {
	v, err := ParseThreshold("", 0.3)
	require.NoError(t, err)
	assert.Equal(t, 0.3, v)

	v, err = ParseThreshold(" 0.75 ", 0.3)
	require.NoError(t, err)
	assert.Equal(t, 0.75, v)

	for _, bad := range []string{"abc", "-0.1", "1.01", "NaN"} {
		_, err := ParseThreshold(bad, 0.3)
		assert.Error(t, err, bad)
	}
}

func TestParseLimit(t *testing.T) {
	v, err := ParseLimit("", 7)
	require.NoError(t, err)
	assert.Equal(t, 7, v)

	v, err = ParseLimit("0", 7)
	require.NoError(t, err)
	assert.Equal(t, 0, v)

	_, err = ParseLimit("-1", 7)
	assert.Error(t, err)
	_, err = ParseLimit("ten", 7)
	assert.Error(t, err)
}

func TestParsePrice(t *testing.T) {
	v, err := ParsePrice("", "min_price")
	require.NoError(t, err)
	assert.Nil(t, v)

	v, err = ParsePrice("19.5", "min_price")
	require.NoError(t, err)
	require.NotNil(t, v)
	assert.Equal(t, 19.5, *v)

	_, err = ParsePrice("-1", "max_price")
	require.Error(t, err)
	assert.Equal(t, "MAX_PRICE_INVALID", err.(ValidationError).Code)
}

func TestValidateQuery(t *testing.T) {
	assert.NoError(t, ValidateQuery("Sam"))
	assert.Error(t, ValidateQuery("  "))
	assert.Error(t, ValidateQuery(strings.Repeat("q", 201)))
}
