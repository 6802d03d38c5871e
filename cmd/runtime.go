// file: cmd/runtime.go
// version: 1.0.0
// guid: 2e7c4b9a-5d1f-4a38-b6e0-93c1f7a2d845

package cmd

import (
	"context"
	"fmt"

	"github.com/jdfalk/brandmatch/internal/cache"
	"github.com/jdfalk/brandmatch/internal/config"
	"github.com/jdfalk/brandmatch/internal/database"
	"github.com/jdfalk/brandmatch/internal/logger"
	"github.com/jdfalk/brandmatch/internal/matcher"
	"github.com/jdfalk/brandmatch/internal/server"
	"go.uber.org/zap"
)

// suggestionCachePrefix namespaces suggestion entries in a shared Redis.
const suggestionCachePrefix = "brandmatch:suggest:"

func storeOptions() database.Options {
	return database.Options{
		Type:         config.AppConfig.DatabaseType,
		Path:         config.AppConfig.DatabasePath,
		PostgresDSN:  config.AppConfig.PostgresDSN,
		EnableSQLite: config.AppConfig.EnableSQLite,
	}
}

// openCatalog validates the configuration and opens the global store. The
// returned func closes it.
func openCatalog() (func(), error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	if err := database.InitializeStore(storeOptions()); err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	cleanup := func() {
		if err := database.CloseStore(); err != nil {
			logger.L().Warn("failed to close store", zap.Error(err))
		}
	}
	return cleanup, nil
}

// newSuggestionCache builds the configured suggestion cache backend. The
// returned func releases its connections.
func newSuggestionCache(ctx context.Context) (cache.Store[[]matcher.BrandSuggestion], func(), error) {
	ttl := config.AppConfig.CacheTTL
	switch config.AppConfig.CacheBackend {
	case "redis":
		client, err := cache.NewRedisClient(ctx, config.AppConfig.RedisAddr, config.AppConfig.RedisPassword, config.AppConfig.RedisDB)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to redis at %s: %w", config.AppConfig.RedisAddr, err)
		}
		logger.L().Info("suggestion cache: redis", zap.String("addr", config.AppConfig.RedisAddr), zap.Duration("ttl", ttl))
		return cache.NewRedis[[]matcher.BrandSuggestion](client, suggestionCachePrefix, ttl), func() { client.Close() }, nil
	default:
		logger.L().Info("suggestion cache: memory", zap.Duration("ttl", ttl))
		return cache.New[[]matcher.BrandSuggestion](ttl), func() {}, nil
	}
}

// newSearchService wires the store and cache into a SearchService using the
// configured matcher settings.
func newSearchService(store database.Store, suggestions cache.Store[[]matcher.BrandSuggestion]) (*server.SearchService, error) {
	cfg, err := config.SearchConfig()
	if err != nil {
		return nil, err
	}
	return server.NewSearchService(store, cfg, config.SuggestLimit(), suggestions), nil
}
