// file: cmd/commands_test.go
// version: 2.0.0
// guid: 6f5b7d78-11d8-4c1a-a150-96d2c4a1a885

package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/jdfalk/brandmatch/internal/config"
	"github.com/jdfalk/brandmatch/internal/database"
	"github.com/jdfalk/brandmatch/internal/matcher"
	"github.com/jdfalk/brandmatch/internal/server"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupCmdTest loads default configuration pointing at a fresh pebble
// directory and restores global state afterwards.
func setupCmdTest(t *testing.T) string {
	t.Helper()

	origConfig := config.AppConfig
	viper.Reset()
	config.InitConfig()
	config.AppConfig.DatabaseType = "pebble"
	config.AppConfig.DatabasePath = filepath.Join(t.TempDir(), "catalog.pebble")
	config.AppConfig.CacheBackend = "memory"

	t.Cleanup(func() {
		_ = database.CloseStore()
		config.AppConfig = origConfig
		viper.Reset()
	})
	return config.AppConfig.DatabasePath
}

func seedCatalog(t *testing.T, products ...database.Product) {
	t.Helper()
	store, err := database.NewPebbleStore(config.AppConfig.DatabasePath)
	require.NoError(t, err)
	for i := range products {
		_, err := store.CreateProduct(context.Background(), &products[i])
		require.NoError(t, err)
	}
	require.NoError(t, store.Close())
}

func catalogFixture() []database.Product {
	base := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	mk := func(id, title, brand, category string, price float64, minutes int) database.Product {
		p := database.Product{
			ID:        id,
			Title:     title,
			Price:     price,
			Category:  category,
			Condition: "good",
			CreatedAt: base.Add(time.Duration(minutes) * time.Minute),
		}
		if brand != "" {
			p.Brand = database.StringPtr(brand)
		}
		return p
	}
	return []database.Product{
		mk("p1", "Galaxy S21", "Samsung", "Phones", 499, 1),
		mk("p2", "iPhone 13", "Apple", "Phones", 599, 2),
		mk("p3", "WH-1000XM4", "Sony", "Audio", 199, 3),
		mk("p4", "Galaxy Buds", "Samsung", "Audio", 99, 4),
		mk("p5", "Vintage Lamp", "", "Home", 25, 5),
	}
}

// runCommand runs c's RunE with the given flags and returns its output.
// Flags are reset to their defaults afterwards.
func runCommand(t *testing.T, c *cobra.Command, flags map[string]string, args ...string) (string, error) {
	t.Helper()
	for name, value := range flags {
		require.NoError(t, c.Flags().Set(name, value), name)
	}
	t.Cleanup(func() {
		c.Flags().VisitAll(func(f *pflag.Flag) {
			_ = f.Value.Set(f.DefValue)
			f.Changed = false
		})
		c.SetOut(nil)
		c.SetErr(nil)
	})

	var out bytes.Buffer
	c.SetOut(&out)
	c.SetErr(io.Discard)
	err := c.RunE(c, args)
	return out.String(), err
}

func TestParseCatalog(t *testing.T) {
	yamlDoc := []byte(`
- title: Galaxy S21
  price: 499
  condition: good
  brand: Samsung
- title: Unbranded Mug
  price: 5
  condition: new
`)
	inputs, err := parseCatalog(yamlDoc, "yaml", "")
	require.NoError(t, err)
	require.Len(t, inputs, 2)
	require.NotNil(t, inputs[0].Brand)
	assert.Equal(t, "Samsung", *inputs[0].Brand)
	assert.Nil(t, inputs[1].Brand)

	inputs, err = parseCatalog([]byte(`[{"title":"Galaxy S21","price":499,"condition":"good","brand":"Samsung"}]`), "json", "")
	require.NoError(t, err)
	require.Len(t, inputs, 1)
	assert.Equal(t, 499.0, inputs[0].Price)

	inputs, err = parseCatalog([]byte(`{"title":"Solo","price":1,"condition":"new"}`), "json", "")
	require.NoError(t, err)
	require.Len(t, inputs, 1)
	assert.Equal(t, "Solo", inputs[0].Title)

	wrapped := []byte(`{"data":{"products":[{"title":"A1"},{"title":"B2"}],"total":2}}`)
	inputs, err = parseCatalog(wrapped, "json", "data.products")
	require.NoError(t, err)
	assert.Len(t, inputs, 2)

	_, err = parseCatalog(wrapped, "json", "data.items")
	assert.ErrorContains(t, err, "not found")

	_, err = parseCatalog(wrapped, "json", "data.total")
	assert.Error(t, err)

	_, err = parseCatalog(yamlDoc, "yaml", "data.products")
	assert.ErrorContains(t, err, "--json-path")

	_, err = parseCatalog([]byte(`{"title":`), "json", "")
	assert.Error(t, err)

	_, err = parseCatalog(yamlDoc, "csv", "")
	assert.ErrorContains(t, err, "unsupported format")
}

func TestDetectFormat(t *testing.T) {
	assert.Equal(t, "json", detectFormat("catalog.JSON", nil))
	assert.Equal(t, "yaml", detectFormat("catalog.yml", nil))
	assert.Equal(t, "json", detectFormat("export.txt", []byte("  [{\"title\":\"x\"}]")))
	assert.Equal(t, "yaml", detectFormat("export.txt", []byte("- title: x\n")))
}

func TestImportProducts(t *testing.T) {
	store := database.NewMockStore()
	bar := newImportBar(3, io.Discard)
	inputs := []server.ProductInput{
		{Title: "Galaxy S21", Price: 499, Condition: "Good", Brand: database.StringPtr("Samsung")},
		{Title: "x", Price: 1, Condition: "new"},
		{Title: "Desk Lamp", Price: 20, Condition: "fair"},
	}

	result, err := importProducts(context.Background(), store, inputs, bar, true)
	require.NoError(t, err)
	assert.Equal(t, importResult{Valid: 2, Invalid: 1, Errors: result.Errors}, result)
	n, _ := store.CountProducts(context.Background())
	assert.Zero(t, n, "dry run must not write")

	result, err = importProducts(context.Background(), store, inputs, newImportBar(3, io.Discard), false)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Created)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "item 2")

	n, _ = store.CountProducts(context.Background())
	assert.Equal(t, 2, n)
}

func TestImportProductsCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := importProducts(ctx, database.NewMockStore(), []server.ProductInput{{Title: "Galaxy S21"}}, newImportBar(1, io.Discard), false)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestImportCommand(t *testing.T) {
	setupCmdTest(t)

	file := filepath.Join(t.TempDir(), "export.json")
	require.NoError(t, os.WriteFile(file, []byte(`{"data":{"products":[
		{"title":"Galaxy S21","price":499,"condition":"good","brand":"Samsung","category":"Phones"},
		{"title":"Galaxy Buds","price":99,"condition":"new","brand":"Samsung","category":"Audio"},
		{"title":"?","price":0,"condition":"mint"}
	]}}`), 0o644))

	out, err := runCommand(t, importCmd, map[string]string{"json-path": "data.products", "no-progress": "true"}, file)
	require.NoError(t, err)
	assert.Contains(t, out, "Imported 2 products (1 skipped)")
	assert.Contains(t, out, "Skipped item 3")

	out, err = runCommand(t, searchCmd, nil, "Samsng")
	require.NoError(t, err)
	assert.Equal(t, 3, strings.Count(out, "\n"), out)
}

func TestImportCommandMissingFile(t *testing.T) {
	setupCmdTest(t)
	_, err := runCommand(t, importCmd, nil, filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorContains(t, err, "failed to read")
}

func TestSearchCommand(t *testing.T) {
	setupCmdTest(t)
	seedCatalog(t, catalogFixture()...)

	out, err := runCommand(t, searchCmd, nil, "Sam")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3, out)
	assert.True(t, strings.HasPrefix(lines[0], " 68%  Samsung"), lines[0])
	assert.Contains(t, lines[0], "p4")
	assert.Contains(t, lines[1], "p1")
	assert.Equal(t, "2 result(s)", lines[2])

	out, err = runCommand(t, searchCmd, map[string]string{"json": "true", "category": "audio"}, "Sam")
	require.NoError(t, err)
	var resp server.SearchResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	require.Len(t, resp.Items, 1)
	assert.Equal(t, "p4", resp.Items[0].Product.ID)
	assert.True(t, resp.Fuzzy)

	out, err = runCommand(t, searchCmd, map[string]string{"literal": "true"}, "galaxy")
	require.NoError(t, err)
	assert.Contains(t, out, "   -  Samsung")
	assert.Contains(t, out, "2 result(s)")

	out, err = runCommand(t, searchCmd, nil, "Zz")
	require.NoError(t, err)
	assert.Contains(t, out, `No products match "Zz"`)
}

func TestSearchCommandInvalidInput(t *testing.T) {
	setupCmdTest(t)
	seedCatalog(t, catalogFixture()...)

	tests := []struct {
		name  string
		flags map[string]string
		query string
	}{
		{"blank query", nil, "   "},
		{"threshold out of range", map[string]string{"threshold": "1.5"}, "Sam"},
		{"negative limit", map[string]string{"limit": "-1"}, "Sam"},
		{"unknown condition", map[string]string{"condition": "mint"}, "Sam"},
		{"inverted price range", map[string]string{"min-price": "10", "max-price": "5"}, "Sam"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := runCommand(t, searchCmd, tt.flags, tt.query)
			assert.Error(t, err)
		})
	}
}

func TestSuggestCommand(t *testing.T) {
	setupCmdTest(t)
	seedCatalog(t, catalogFixture()...)

	out, err := runCommand(t, suggestCmd, nil, "Sam")
	require.NoError(t, err)
	assert.Equal(t, " 68%  Samsung\n", out)

	out, err = runCommand(t, suggestCmd, map[string]string{"json": "true", "threshold": "0"}, "Sam")
	require.NoError(t, err)
	var resp server.SuggestResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, []matcher.BrandSuggestion{
		{Brand: "Samsung", Score: 68},
		{Brand: "Sony", Score: 29},
		{Brand: "Apple", Score: 20},
	}, resp.Items)
}

func TestScoreCommand(t *testing.T) {
	setupCmdTest(t)

	out, err := runCommand(t, scoreCmd, nil, "Sam", "Samsung")
	require.NoError(t, err)
	assert.Contains(t, out, "Score:         68%")
	assert.Contains(t, out, "Matched:       true")

	out, err = runCommand(t, scoreCmd, map[string]string{"json": "true"}, "samsung", "Samsung")
	require.NoError(t, err)
	var resp server.ScoreResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.True(t, resp.Exact)
	assert.Equal(t, 100, resp.Score)

	_, err = runCommand(t, scoreCmd, nil, "Sam", "  ")
	assert.Error(t, err)
}

func TestScoreCommandRejectsInvalidWeights(t *testing.T) {
	setupCmdTest(t)
	config.AppConfig.Search.Weights = matcher.Weights{}

	_, err := runCommand(t, scoreCmd, nil, "Sam", "Samsung")
	assert.ErrorContains(t, err, "invalid configuration")
}

func TestOpenCatalogErrors(t *testing.T) {
	setupCmdTest(t)

	config.AppConfig.DatabaseType = "mongo"
	_, err := openCatalog()
	assert.ErrorContains(t, err, "invalid configuration")

	config.AppConfig.DatabaseType = "sqlite"
	config.AppConfig.EnableSQLite = false
	_, err = openCatalog()
	assert.ErrorContains(t, err, "failed to initialize database")
}

func TestNewSuggestionCache(t *testing.T) {
	setupCmdTest(t)

	c, closeCache, err := newSuggestionCache(context.Background())
	require.NoError(t, err)
	closeCache()
	c.Set("k", []matcher.BrandSuggestion{{Brand: "Sony", Score: 100}})
	got, ok := c.Get("k")
	assert.True(t, ok)
	assert.Len(t, got, 1)

	mr := miniredis.RunT(t)
	config.AppConfig.CacheBackend = "redis"
	config.AppConfig.RedisAddr = mr.Addr()
	c, closeCache, err = newSuggestionCache(context.Background())
	require.NoError(t, err)
	defer closeCache()
	c.Set("k", []matcher.BrandSuggestion{{Brand: "Sony", Score: 100}})
	assert.True(t, mr.Exists(suggestionCachePrefix+"k"))

	invalidateSharedSuggestions(context.Background())
	assert.False(t, mr.Exists(suggestionCachePrefix+"k"))

	mr.Close()
	_, _, err = newSuggestionCache(context.Background())
	assert.Error(t, err)
}

func TestServerConfigFromFlags(t *testing.T) {
	setupCmdTest(t)
	config.AppConfig.Host = "127.0.0.1"
	config.AppConfig.Port = 9090

	require.NoError(t, serveCmd.Flags().Set("read-timeout", "5s"))
	t.Cleanup(func() { _ = serveCmd.Flags().Set("read-timeout", "15s") })

	cfg, err := serverConfigFromFlags(serveCmd)
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1", cfg.Host)
	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, 5*time.Second, cfg.ReadTimeout)
	assert.Equal(t, 30*time.Second, cfg.ShutdownTimeout)

	require.NoError(t, serveCmd.Flags().Set("read-timeout", "0s"))
	_, err = serverConfigFromFlags(serveCmd)
	assert.Error(t, err)
}

func TestServeCommandInvalidConfig(t *testing.T) {
	setupCmdTest(t)
	config.AppConfig.CacheBackend = "memcached"

	err := serveCmd.RunE(serveCmd, nil)
	assert.ErrorContains(t, err, "cache_backend")
}

func TestConfigInitAndShow(t *testing.T) {
	setupCmdTest(t)
	config.AppConfig.Search.Threshold = 0.45
	config.AppConfig.APIKey = "do-not-write"

	path := filepath.Join(t.TempDir(), "brandmatch.yaml")
	out, err := runCommand(t, configInitCmd, nil, path)
	require.NoError(t, err)
	assert.Contains(t, out, "Wrote "+path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "threshold: 0.45")
	assert.NotContains(t, string(data), "do-not-write")

	_, err = runCommand(t, configInitCmd, nil, path)
	assert.ErrorContains(t, err, "already exists")

	_, err = runCommand(t, configInitCmd, map[string]string{"force": "true"}, path)
	assert.NoError(t, err)

	out, err = runCommand(t, configShowCmd, nil)
	require.NoError(t, err)
	assert.Contains(t, out, "database_type: pebble")
}
