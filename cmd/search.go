// file: cmd/search.go
// version: 1.0.0
// guid: 9f3a1c7e-4b2d-4f86-8e05-d6a2b1c4e790

package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/jdfalk/brandmatch/internal/config"
	"github.com/jdfalk/brandmatch/internal/database"
	"github.com/jdfalk/brandmatch/internal/matcher"
	"github.com/jdfalk/brandmatch/internal/server"
	"github.com/spf13/cobra"
)

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search products by brand",
	Long: `Search the catalog for products whose brand resembles the query.
Use --literal to fall back to a plain case-insensitive text search.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSearchService(func(svc *server.SearchService) error {
			return runSearch(cmd, svc, strings.Join(args, " "))
		})
	},
}

var suggestCmd = &cobra.Command{
	Use:   "suggest <query>",
	Short: "Suggest distinct brands for a query",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSearchService(func(svc *server.SearchService) error {
			return runSuggest(cmd, svc, strings.Join(args, " "))
		})
	},
}

var scoreCmd = &cobra.Command{
	Use:   "score <query> <brand>",
	Short: "Explain how a query scores against a brand",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := searchConfig()
		if err != nil {
			return err
		}
		return runScore(cmd, cfg, args[0], args[1])
	},
}

func init() {
	for _, c := range []*cobra.Command{searchCmd, suggestCmd} {
		c.Flags().String("threshold", "", "minimum similarity between 0 and 1 (default from config)")
		c.Flags().Int("limit", 0, "maximum number of results (0 uses the configured default)")
		c.Flags().String("category", "", "only consider products in this category")
		c.Flags().String("condition", "", "only consider products in this condition")
		c.Flags().String("min-price", "", "minimum price (inclusive)")
		c.Flags().String("max-price", "", "maximum price (inclusive)")
		c.Flags().Bool("json", false, "print results as JSON")
	}
	searchCmd.Flags().Bool("literal", false, "plain text search instead of fuzzy brand matching")
	scoreCmd.Flags().Bool("json", false, "print the breakdown as JSON")
}

// withSearchService opens the catalog, builds an in-process search service
// and passes it to fn.
func withSearchService(fn func(*server.SearchService) error) error {
	closeStore, err := openCatalog()
	if err != nil {
		return err
	}
	defer closeStore()

	// One-shot commands gain nothing from a shared cache.
	svc, err := newSearchService(database.GlobalStore, nil)
	if err != nil {
		return err
	}
	return fn(svc)
}

// searchFlags holds the criteria shared by search and suggest.
type searchFlags struct {
	threshold float64
	limit     int
	filter    database.ProductFilter
	json      bool
}

func parseSearchFlags(cmd *cobra.Command, defaultThreshold float64) (searchFlags, error) {
	var sf searchFlags
	var err error

	raw, _ := cmd.Flags().GetString("threshold")
	if sf.threshold, err = server.ParseThreshold(raw, defaultThreshold); err != nil {
		return sf, err
	}
	sf.limit, _ = cmd.Flags().GetInt("limit")
	if sf.limit < 0 {
		return sf, fmt.Errorf("--limit must not be negative")
	}

	sf.filter.Category, _ = cmd.Flags().GetString("category")
	condition, _ := cmd.Flags().GetString("condition")
	sf.filter.Condition = strings.ToLower(strings.TrimSpace(condition))
	if sf.filter.Condition != "" {
		if err := server.ValidateStringInList(sf.filter.Condition, "condition", server.ProductConditions); err != nil {
			return sf, err
		}
	}
	minRaw, _ := cmd.Flags().GetString("min-price")
	if sf.filter.MinPrice, err = server.ParsePrice(minRaw, "min_price"); err != nil {
		return sf, err
	}
	maxRaw, _ := cmd.Flags().GetString("max-price")
	if sf.filter.MaxPrice, err = server.ParsePrice(maxRaw, "max_price"); err != nil {
		return sf, err
	}
	if sf.filter.MinPrice != nil && sf.filter.MaxPrice != nil && *sf.filter.MinPrice > *sf.filter.MaxPrice {
		return sf, fmt.Errorf("--min-price must not exceed --max-price")
	}
	sf.json, _ = cmd.Flags().GetBool("json")
	return sf, nil
}

func runSearch(cmd *cobra.Command, svc *server.SearchService, query string) error {
	query = strings.TrimSpace(query)
	if err := server.ValidateQuery(query); err != nil {
		return err
	}
	sf, err := parseSearchFlags(cmd, svc.Config().Options.Threshold)
	if err != nil {
		return err
	}
	literal, _ := cmd.Flags().GetBool("literal")

	matches, err := svc.Search(context.Background(), server.SearchRequest{
		Query:     query,
		Threshold: &sf.threshold,
		Limit:     sf.limit,
		Fuzzy:     !literal,
		Filter:    sf.filter,
	})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if sf.json {
		return writeJSON(out, server.SearchResponse{
			Items:     matches,
			Count:     len(matches),
			Query:     query,
			Fuzzy:     !literal,
			Threshold: sf.threshold,
			Category:  sf.filter.Category,
		})
	}
	if len(matches) == 0 {
		fmt.Fprintf(out, "No products match %q.\n", query)
		return nil
	}
	for _, m := range matches {
		brand := database.BrandName(m.Product)
		if brand == "" {
			brand = "-"
		}
		score := "   -"
		if m.FuzzyMatch {
			score = fmt.Sprintf("%3d%%", m.SearchScore)
		}
		fmt.Fprintf(out, "%s  %-20s %-40s %10.2f  %s\n", score, brand, m.Product.Title, m.Product.Price, m.Product.ID)
	}
	fmt.Fprintf(out, "%d result(s)\n", len(matches))
	return nil
}

func runSuggest(cmd *cobra.Command, svc *server.SearchService, query string) error {
	query = strings.TrimSpace(query)
	if err := server.ValidateQuery(query); err != nil {
		return err
	}
	sf, err := parseSearchFlags(cmd, svc.Config().Options.Threshold)
	if err != nil {
		return err
	}

	suggestions, _, err := svc.Suggest(context.Background(), server.SuggestRequest{
		Query:     query,
		Threshold: &sf.threshold,
		Limit:     sf.limit,
		Filter:    sf.filter,
	})
	if err != nil {
		return err
	}
	if suggestions == nil {
		suggestions = []matcher.BrandSuggestion{}
	}

	out := cmd.OutOrStdout()
	if sf.json {
		return writeJSON(out, server.SuggestResponse{Items: suggestions, Count: len(suggestions), Query: query})
	}
	if len(suggestions) == 0 {
		fmt.Fprintf(out, "No brands match %q.\n", query)
		return nil
	}
	for _, s := range suggestions {
		fmt.Fprintf(out, "%3d%%  %s\n", s.Score, s.Brand)
	}
	return nil
}

// searchConfig validates the configuration without opening a store.
func searchConfig() (matcher.Config, error) {
	if err := config.Validate(); err != nil {
		return matcher.Config{}, fmt.Errorf("invalid configuration: %w", err)
	}
	return config.SearchConfig()
}

func runScore(cmd *cobra.Command, cfg matcher.Config, query, brand string) error {
	query = strings.TrimSpace(query)
	brand = strings.TrimSpace(brand)
	if err := server.ValidateQuery(query); err != nil {
		return err
	}
	if brand == "" {
		return fmt.Errorf("brand is required")
	}

	resp := server.NewScoreResponse(query, brand, matcher.Explain(query, brand, cfg), cfg.Options.Threshold)
	out := cmd.OutOrStdout()
	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		return writeJSON(out, resp)
	}

	fmt.Fprintf(out, "Query:         %s\n", resp.Query)
	fmt.Fprintf(out, "Brand:         %s\n", resp.Brand)
	fmt.Fprintf(out, "Score:         %d%%\n", resp.Score)
	fmt.Fprintf(out, "Exact:         %t\n", resp.Exact)
	fmt.Fprintf(out, "Transposition: %.4f\n", resp.Transposition)
	fmt.Fprintf(out, "Edit:          %.4f\n", resp.Edit)
	fmt.Fprintf(out, "Substring:     %.4f\n", resp.Substring)
	fmt.Fprintf(out, "Matched:       %t (threshold %.2f)\n", resp.Matched, cfg.Options.Threshold)
	return nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
