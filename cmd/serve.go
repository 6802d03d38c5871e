// file: cmd/serve.go
// version: 1.0.0
// guid: 0c5d9e2a-7f4b-4e61-a3d8-1b6f2c9e0a57

package cmd

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/jdfalk/brandmatch/internal/config"
	"github.com/jdfalk/brandmatch/internal/database"
	"github.com/jdfalk/brandmatch/internal/logger"
	"github.com/jdfalk/brandmatch/internal/server"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	Long:  `Start the HTTP server exposing catalog, search and brand suggestion endpoints.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		closeStore, err := openCatalog()
		if err != nil {
			return err
		}
		defer closeStore()

		logger.L().Info("using database",
			zap.String("type", config.AppConfig.DatabaseType),
			zap.String("path", config.AppConfig.DatabasePath))

		suggestions, closeCache, err := newSuggestionCache(context.Background())
		if err != nil {
			return err
		}
		defer closeCache()

		search, err := newSearchService(database.GlobalStore, suggestions)
		if err != nil {
			return err
		}

		srv := server.NewServer(database.GlobalStore, search, server.Options{
			RateLimitPerMinute: config.AppConfig.RateLimitPerMinute,
			RateLimitBurst:     config.AppConfig.RateLimitBurst,
			APIKey:             config.AppConfig.APIKey,
		})
		if config.AppConfig.APIKey == "" {
			logger.L().Warn("api_key is not set; catalog writes are unauthenticated")
		}

		cfg, err := serverConfigFromFlags(cmd)
		if err != nil {
			return err
		}
		return srv.Start(cfg)
	},
}

// serverConfigFromFlags overlays the configured address and the timeout
// flags on the server defaults.
func serverConfigFromFlags(cmd *cobra.Command) (server.ServerConfig, error) {
	cfg := server.GetDefaultServerConfig()
	cfg.Host = config.AppConfig.Host
	cfg.Port = strconv.Itoa(config.AppConfig.Port)

	for name, target := range map[string]*time.Duration{
		"read-timeout":     &cfg.ReadTimeout,
		"write-timeout":    &cfg.WriteTimeout,
		"idle-timeout":     &cfg.IdleTimeout,
		"shutdown-timeout": &cfg.ShutdownTimeout,
	} {
		d, err := cmd.Flags().GetDuration(name)
		if err != nil {
			return cfg, err
		}
		if d <= 0 {
			return cfg, fmt.Errorf("--%s must be positive", name)
		}
		*target = d
	}
	return cfg, nil
}

func init() {
	serveCmd.Flags().Int("port", 8080, "port to run the web server on")
	serveCmd.Flags().String("host", "0.0.0.0", "host to bind the web server to")
	serveCmd.Flags().Duration("read-timeout", 15*time.Second, "read timeout (e.g. 15s, 1m)")
	serveCmd.Flags().Duration("write-timeout", 15*time.Second, "write timeout (e.g. 15s, 1m)")
	serveCmd.Flags().Duration("idle-timeout", 60*time.Second, "idle timeout (e.g. 60s, 2m)")
	serveCmd.Flags().Duration("shutdown-timeout", 30*time.Second, "graceful shutdown timeout")

	viper.BindPFlag("port", serveCmd.Flags().Lookup("port"))
	viper.BindPFlag("host", serveCmd.Flags().Lookup("host"))
}
