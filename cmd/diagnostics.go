// file: cmd/diagnostics.go
// version: 2.0.0
// guid: c8f6a0d4-2a8b-48cf-9d08-02cc9915d9fc

package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/cockroachdb/pebble/v2"
	"github.com/jdfalk/brandmatch/internal/config"
	"github.com/jdfalk/brandmatch/internal/database"
	"github.com/jdfalk/brandmatch/internal/server"
	"github.com/spf13/cobra"
)

var (
	diagnosticsCmd = &cobra.Command{
		Use:   "diagnostics",
		Short: "Debugging and cleanup helpers",
		Long:  "Diagnostic utilities for inspecting and repairing the product catalog.",
	}

	cleanupCmd = &cobra.Command{
		Use:   "cleanup-invalid",
		Short: "Remove products that fail validation",
		RunE: func(cmd *cobra.Command, args []string) error {
			force, _ := cmd.Flags().GetBool("yes")
			dryRun, _ := cmd.Flags().GetBool("dry-run")
			return runCleanupInvalidProducts(cmd.OutOrStdout(), os.Stdin, force, dryRun)
		},
	}

	queryCmd = &cobra.Command{
		Use:   "query",
		Short: "Inspect stored product records",
		RunE: func(cmd *cobra.Command, args []string) error {
			limit, _ := cmd.Flags().GetInt("limit")
			prefix, _ := cmd.Flags().GetString("prefix")
			raw, _ := cmd.Flags().GetBool("raw")
			return runDiagnosticsQuery(cmd.OutOrStdout(), limit, prefix, raw)
		},
	}

	brandsCmd = &cobra.Command{
		Use:   "brands",
		Short: "List distinct brands with product counts",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBrandReport(cmd.OutOrStdout())
		},
	}
)

func init() {
	cleanupCmd.Flags().Bool("yes", false, "Skip confirmation prompt")
	cleanupCmd.Flags().Bool("dry-run", false, "List invalid records without deleting")

	queryCmd.Flags().Int("limit", 5, "Number of records to display")
	queryCmd.Flags().String("prefix", "product:", "Key prefix to inspect when --raw is set")
	queryCmd.Flags().Bool("raw", false, "Show raw Pebble key/value data (Pebble only)")

	diagnosticsCmd.AddCommand(cleanupCmd)
	diagnosticsCmd.AddCommand(queryCmd)
	diagnosticsCmd.AddCommand(brandsCmd)
}

func runCleanupInvalidProducts(out io.Writer, in io.Reader, force, dryRun bool) error {
	closer, err := openCatalog()
	if err != nil {
		return err
	}
	defer closer()

	fmt.Fprintf(out, "Inspecting products in %s (%s)\n", config.AppConfig.DatabasePath, config.AppConfig.DatabaseType)

	ctx := context.Background()
	products, err := database.GlobalStore.ListProducts(ctx, database.ProductFilter{})
	if err != nil {
		return fmt.Errorf("failed to fetch products: %w", err)
	}

	type invalidProduct struct {
		product database.Product
		reason  error
	}
	var invalid []invalidProduct
	for _, p := range products {
		if err := server.ValidateProduct(&p); err != nil {
			invalid = append(invalid, invalidProduct{product: p, reason: err})
		}
	}

	if len(invalid) == 0 {
		fmt.Fprintln(out, "No invalid product records detected.")
		return nil
	}

	fmt.Fprintf(out, "Found %d invalid records:\n", len(invalid))
	for i, item := range invalid {
		fmt.Fprintf(out, "%2d. ID: %s\n", i+1, item.product.ID)
		fmt.Fprintf(out, "    Title:  %s\n", truncateString(item.product.Title, 80))
		fmt.Fprintf(out, "    Reason: %v\n", item.reason)
	}

	if dryRun {
		fmt.Fprintln(out, "Dry run enabled; no deletions were performed.")
		return nil
	}

	if !force {
		confirmed, err := promptYesNo(out, in, fmt.Sprintf("Delete %d records", len(invalid)))
		if err != nil {
			return err
		}
		if !confirmed {
			fmt.Fprintln(out, "Aborted. No records deleted.")
			return nil
		}
	}

	deleted := 0
	for _, item := range invalid {
		if err := database.GlobalStore.DeleteProduct(ctx, item.product.ID); err != nil {
			fmt.Fprintf(out, "Failed to delete %s: %v\n", item.product.ID, err)
			continue
		}
		deleted++
	}

	fmt.Fprintf(out, "Deleted %d invalid records.\n", deleted)
	if deleted > 0 {
		invalidateSharedSuggestions(ctx)
	}
	return nil
}

func runDiagnosticsQuery(out io.Writer, limit int, prefix string, raw bool) error {
	if limit <= 0 {
		return errors.New("limit must be positive")
	}

	if raw {
		if config.AppConfig.DatabaseType != "pebble" {
			return fmt.Errorf("raw inspection is only available for Pebble databases")
		}
		return runRawPebbleQuery(out, limit, prefix)
	}

	closer, err := openCatalog()
	if err != nil {
		return err
	}
	defer closer()

	products, err := database.GlobalStore.ListProducts(context.Background(), database.ProductFilter{Limit: limit})
	if err != nil {
		return fmt.Errorf("failed to fetch products: %w", err)
	}
	if len(products) == 0 {
		fmt.Fprintln(out, "No products found.")
		return nil
	}

	for i, p := range products {
		fmt.Fprintf(out, "%2d. ID: %s\n", i+1, p.ID)
		fmt.Fprintf(out, "    Title: %s\n", p.Title)
		if brand := database.BrandName(p); brand != "" {
			fmt.Fprintf(out, "    Brand: %s\n", brand)
		}
		fmt.Fprintf(out, "    Category: %s\n", p.Category)
		fmt.Fprintf(out, "    Price: %.2f (%s)\n", p.Price, p.Condition)
		fmt.Fprintf(out, "    Created: %s\n", p.CreatedAt.Format("2006-01-02 15:04:05"))
		fmt.Fprintln(out, "---")
	}

	return nil
}

func runRawPebbleQuery(out io.Writer, limit int, prefix string) error {
	db, err := pebble.Open(config.AppConfig.DatabasePath, &pebble.Options{
		FormatMajorVersion: pebble.FormatNewest,
	})
	if err != nil {
		return fmt.Errorf("failed to open Pebble database: %w", err)
	}
	defer db.Close()

	iterOpts := &pebble.IterOptions{}
	if prefix != "" {
		iterOpts.LowerBound = []byte(prefix)
		iterOpts.UpperBound = append([]byte(prefix), 0xFF)
	}

	iter, err := db.NewIter(iterOpts)
	if err != nil {
		return fmt.Errorf("failed to create iterator: %w", err)
	}
	defer iter.Close()

	count := 0
	for ok := iter.First(); ok && iter.Valid(); ok = iter.Next() {
		fmt.Fprintf(out, "Key: %s\n", string(iter.Key()))
		val := iter.Value()
		fmt.Fprintf(out, "Value length: %d bytes\n", len(val))
		fmt.Fprintf(out, "Value preview: %s\n", truncateString(string(val), 500))
		fmt.Fprintln(out, "---")

		count++
		if count >= limit {
			break
		}
	}

	if err := iter.Error(); err != nil {
		return fmt.Errorf("iterator error: %w", err)
	}

	if count == 0 {
		fmt.Fprintln(out, "No keys matched the requested prefix.")
	}

	return nil
}

// brandCount is one row of the brand report.
type brandCount struct {
	Brand    string
	Products int
}

// countBrands groups products by trimmed brand text, keeping the first
// spelling seen. Products without a brand are not counted.
func countBrands(products []database.Product) []brandCount {
	index := make(map[string]int)
	var counts []brandCount
	for _, p := range products {
		brand := strings.TrimSpace(database.BrandName(p))
		if brand == "" {
			continue
		}
		if i, ok := index[brand]; ok {
			counts[i].Products++
			continue
		}
		index[brand] = len(counts)
		counts = append(counts, brandCount{Brand: brand, Products: 1})
	}
	sort.SliceStable(counts, func(i, j int) bool {
		return counts[i].Products > counts[j].Products
	})
	return counts
}

func runBrandReport(out io.Writer) error {
	closer, err := openCatalog()
	if err != nil {
		return err
	}
	defer closer()

	products, err := database.GlobalStore.ListProducts(context.Background(), database.ProductFilter{})
	if err != nil {
		return fmt.Errorf("failed to fetch products: %w", err)
	}
	counts := countBrands(products)
	if len(counts) == 0 {
		fmt.Fprintln(out, "No branded products found.")
		return nil
	}
	for _, c := range counts {
		fmt.Fprintf(out, "%6d  %s\n", c.Products, c.Brand)
	}
	fmt.Fprintf(out, "%d brands across %d products\n", len(counts), len(products))
	return nil
}

func promptYesNo(out io.Writer, in io.Reader, action string) (bool, error) {
	fmt.Fprintf(out, "%s? Type 'yes' to confirm: ", action)
	reader := bufio.NewReader(in)
	response, err := reader.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return false, err
	}
	response = strings.TrimSpace(strings.ToLower(response))
	return response == "yes", nil
}

func truncateString(in string, max int) string {
	if len(in) <= max {
		return in
	}
	return in[:max] + "..."
}
