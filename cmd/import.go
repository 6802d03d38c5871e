// file: cmd/import.go
// version: 1.0.0
// guid: 4d8b2f6a-0c3e-4a71-9b5d-7e1f3a6c2d98

package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/jdfalk/brandmatch/internal/config"
	"github.com/jdfalk/brandmatch/internal/database"
	"github.com/jdfalk/brandmatch/internal/logger"
	"github.com/jdfalk/brandmatch/internal/server"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Import products from a YAML or JSON file",
	Long: `Import products from a YAML list or a JSON document.

JSON exports that wrap the product list, such as {"data":{"products":[...]}},
can be imported with --json-path data.products.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		format, _ := cmd.Flags().GetString("format")
		jsonPath, _ := cmd.Flags().GetString("json-path")
		dryRun, _ := cmd.Flags().GetBool("dry-run")
		quiet, _ := cmd.Flags().GetBool("no-progress")

		inputs, err := loadCatalogFile(args[0], format, jsonPath)
		if err != nil {
			return err
		}

		closeStore, err := openCatalog()
		if err != nil {
			return err
		}
		defer closeStore()

		progress := cmd.ErrOrStderr()
		if quiet {
			progress = io.Discard
		}
		result, err := importProducts(cmd.Context(), database.GlobalStore, inputs, newImportBar(len(inputs), progress), dryRun)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		for _, msg := range result.Errors {
			fmt.Fprintf(out, "Skipped %s\n", msg)
		}
		if dryRun {
			fmt.Fprintf(out, "Dry run: %d valid, %d invalid products in %s\n", result.Valid, result.Invalid, args[0])
			return nil
		}
		fmt.Fprintf(out, "Imported %d products (%d skipped) from %s\n", result.Created, result.Invalid, args[0])

		if result.Created > 0 {
			invalidateSharedSuggestions(cmd.Context())
		}
		return nil
	},
}

func init() {
	importCmd.Flags().String("format", "auto", "input format: auto, yaml or json")
	importCmd.Flags().String("json-path", "", "gjson path to the product array inside a JSON document")
	importCmd.Flags().Bool("dry-run", false, "validate the file without writing products")
	importCmd.Flags().Bool("no-progress", false, "do not render a progress bar")
}

// importResult summarizes an import run.
type importResult struct {
	Valid   int
	Created int
	Invalid int
	Errors  []string
}

// loadCatalogFile reads and decodes a catalog file.
func loadCatalogFile(path, format, jsonPath string) ([]server.ProductInput, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	if format == "" || format == "auto" {
		format = detectFormat(path, data)
	}
	inputs, err := parseCatalog(data, format, jsonPath)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return inputs, nil
}

// detectFormat picks json or yaml from the extension, then from the content.
func detectFormat(path string, data []byte) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return "json"
	case ".yaml", ".yml":
		return "yaml"
	}
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && (trimmed[0] == '[' || trimmed[0] == '{') && gjson.ValidBytes(trimmed) {
		return "json"
	}
	return "yaml"
}

// parseCatalog decodes products from data. JSON input may select the product
// array with a gjson path; a single JSON object is treated as one product.
func parseCatalog(data []byte, format, jsonPath string) ([]server.ProductInput, error) {
	switch strings.ToLower(format) {
	case "json":
		if !gjson.ValidBytes(data) {
			return nil, fmt.Errorf("invalid JSON document")
		}
		doc := gjson.ParseBytes(data)
		if jsonPath != "" {
			doc = gjson.GetBytes(data, jsonPath)
			if !doc.Exists() {
				return nil, fmt.Errorf("json path %q not found", jsonPath)
			}
		}
		var inputs []server.ProductInput
		switch {
		case doc.IsArray():
			if err := json.Unmarshal([]byte(doc.Raw), &inputs); err != nil {
				return nil, err
			}
		case doc.IsObject():
			var one server.ProductInput
			if err := json.Unmarshal([]byte(doc.Raw), &one); err != nil {
				return nil, err
			}
			inputs = append(inputs, one)
		default:
			return nil, fmt.Errorf("expected a product array or object, got %s", doc.Type)
		}
		return inputs, nil
	case "yaml", "yml":
		if jsonPath != "" {
			return nil, fmt.Errorf("--json-path requires JSON input")
		}
		var inputs []server.ProductInput
		if err := yaml.Unmarshal(data, &inputs); err != nil {
			return nil, err
		}
		return inputs, nil
	default:
		return nil, fmt.Errorf("unsupported format %q (supported: auto, yaml, json)", format)
	}
}

func newImportBar(total int, w io.Writer) *progressbar.ProgressBar {
	return progressbar.NewOptions(total,
		progressbar.OptionSetWriter(w),
		progressbar.OptionSetDescription("importing"),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
	)
}

// importProducts validates every input and creates the valid ones. Invalid
// items are reported and skipped; a store failure aborts the import.
func importProducts(ctx context.Context, store database.Store, inputs []server.ProductInput, bar *progressbar.ProgressBar, dryRun bool) (importResult, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	var result importResult
	defer bar.Finish()

	for i, in := range inputs {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		product := in.ToProduct()
		if err := server.ValidateProduct(product); err != nil {
			result.Invalid++
			result.Errors = append(result.Errors, fmt.Sprintf("item %d (%s): %v", i+1, in.Title, err))
			bar.Add(1)
			continue
		}
		result.Valid++
		if !dryRun {
			if _, err := store.CreateProduct(ctx, product); err != nil {
				return result, fmt.Errorf("failed to create item %d: %w", i+1, err)
			}
			result.Created++
		}
		bar.Add(1)
	}
	return result, nil
}

// invalidateSharedSuggestions drops suggestions cached in Redis so running
// servers see the imported brands. The in-memory cache is process-local and
// needs nothing.
func invalidateSharedSuggestions(ctx context.Context) {
	if config.AppConfig.CacheBackend != "redis" {
		return
	}
	if ctx == nil {
		ctx = context.Background()
	}
	suggestions, closeCache, err := newSuggestionCache(ctx)
	if err != nil {
		logger.L().Warn("could not invalidate suggestion cache", zap.Error(err))
		return
	}
	defer closeCache()
	suggestions.InvalidateAll()
}
