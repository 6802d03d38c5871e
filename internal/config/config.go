// file: internal/config/config.go
// version: 2.0.0
// guid: 7b8c9d0e-1f2a-3b4c-5d6e-7f8a9b0c1d2e

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/jdfalk/brandmatch/internal/matcher"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment override, e.g.
// BRANDMATCH_SEARCH_THRESHOLD.
const EnvPrefix = "BRANDMATCH"

// SearchSettings mirrors the search.* keys.
type SearchSettings struct {
	Threshold      float64
	MinQueryLength int
	CaseSensitive  bool
	Limit          int
	SuggestLimit   int
	Weights        matcher.Weights
}

// Config holds application configuration
type Config struct {
	DatabasePath string
	DatabaseType string // "pebble" (default), "sqlite" or "postgres"
	EnableSQLite bool   // Must be true to use SQLite (safety flag)
	PostgresDSN  string

	CacheBackend  string // "memory" (default) or "redis"
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	CacheTTL      time.Duration

	LogLevel  string
	LogFormat string

	Host               string
	Port               int
	RateLimitPerMinute int
	RateLimitBurst     int
	APIKey             string // guards catalog writes; empty disables

	Search SearchSettings
}

var AppConfig Config

// SetDefaults registers every default with viper.
func SetDefaults() {
	viper.SetDefault("database_type", "pebble")
	viper.SetDefault("database_path", "catalog.pebble")
	viper.SetDefault("enable_sqlite3_i_know_the_risks", false)
	viper.SetDefault("postgres_dsn", "")

	viper.SetDefault("cache_backend", "memory")
	viper.SetDefault("redis_addr", "localhost:6379")
	viper.SetDefault("redis_password", "")
	viper.SetDefault("redis_db", 0)
	viper.SetDefault("cache_ttl", 5*time.Minute)

	viper.SetDefault("log_level", "info")
	viper.SetDefault("log_format", "console")

	viper.SetDefault("host", "0.0.0.0")
	viper.SetDefault("port", 8080)
	viper.SetDefault("rate_limit_per_minute", 120)
	viper.SetDefault("rate_limit_burst", 20)
	viper.SetDefault("api_key", "")

	viper.SetDefault("search.threshold", matcher.DefaultThreshold)
	viper.SetDefault("search.min_query_length", matcher.DefaultMinQueryLength)
	viper.SetDefault("search.case_sensitive", false)
	viper.SetDefault("search.limit", 0)
	viper.SetDefault("search.suggest_limit", matcher.DefaultSuggestLimit)
	viper.SetDefault("search.weights.transposition", matcher.DefaultTranspositionWeight)
	viper.SetDefault("search.weights.edit", matcher.DefaultEditWeight)
	viper.SetDefault("search.weights.substring", matcher.DefaultSubstringWeight)
}

// LoadDotEnv loads .env style files into the process environment. Missing
// files are ignored; variables already set in the environment win.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("failed to load %s: %w", p, err)
		}
		log.Printf("[INFO] Loaded environment from %s", p)
	}
	return nil
}

// InitConfig initializes the application configuration
func InitConfig() {
	SetDefaults()
	viper.SetEnvPrefix(EnvPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	AppConfig = Config{
		DatabasePath: viper.GetString("database_path"),
		DatabaseType: strings.ToLower(viper.GetString("database_type")),
		EnableSQLite: viper.GetBool("enable_sqlite3_i_know_the_risks"),
		PostgresDSN:  viper.GetString("postgres_dsn"),

		CacheBackend:  strings.ToLower(viper.GetString("cache_backend")),
		RedisAddr:     viper.GetString("redis_addr"),
		RedisPassword: viper.GetString("redis_password"),
		RedisDB:       viper.GetInt("redis_db"),
		CacheTTL:      viper.GetDuration("cache_ttl"),

		LogLevel:  viper.GetString("log_level"),
		LogFormat: viper.GetString("log_format"),

		Host:               viper.GetString("host"),
		Port:               viper.GetInt("port"),
		RateLimitPerMinute: viper.GetInt("rate_limit_per_minute"),
		RateLimitBurst:     viper.GetInt("rate_limit_burst"),
		APIKey:             viper.GetString("api_key"),

		Search: SearchSettings{
			Threshold:      viper.GetFloat64("search.threshold"),
			MinQueryLength: viper.GetInt("search.min_query_length"),
			CaseSensitive:  viper.GetBool("search.case_sensitive"),
			Limit:          viper.GetInt("search.limit"),
			SuggestLimit:   viper.GetInt("search.suggest_limit"),
			Weights: matcher.Weights{
				Transposition: viper.GetFloat64("search.weights.transposition"),
				Edit:          viper.GetFloat64("search.weights.edit"),
				Substring:     viper.GetFloat64("search.weights.substring"),
			},
		},
	}

	// Normalize database type
	if AppConfig.DatabaseType == "sqlite3" {
		AppConfig.DatabaseType = "sqlite"
	}
	if AppConfig.DatabaseType == "postgresql" {
		AppConfig.DatabaseType = "postgres"
	}
	if AppConfig.DatabaseType == "" {
		AppConfig.DatabaseType = "pebble"
	}
	if AppConfig.CacheBackend == "" {
		AppConfig.CacheBackend = "memory"
	}
}

// SearchConfig converts the search settings into a validated matcher.Config.
func SearchConfig() (matcher.Config, error) {
	s := AppConfig.Search
	opts := matcher.Options{
		Threshold:      s.Threshold,
		Limit:          s.Limit,
		CaseSensitive:  s.CaseSensitive,
		MinQueryLength: s.MinQueryLength,
	}
	cfg, err := matcher.NewConfig(opts, s.Weights)
	if err != nil {
		return matcher.Config{}, fmt.Errorf("search configuration: %w", err)
	}
	return cfg, nil
}

// SuggestLimit returns the configured suggestion limit, falling back to the
// matcher default for zero.
func SuggestLimit() int {
	if AppConfig.Search.SuggestLimit == 0 {
		return matcher.DefaultSuggestLimit
	}
	return AppConfig.Search.SuggestLimit
}

// Validate checks settings that matcher.Config does not cover.
func Validate() error {
	switch AppConfig.DatabaseType {
	case "pebble", "sqlite", "postgres":
	default:
		return fmt.Errorf("unsupported database_type %q", AppConfig.DatabaseType)
	}
	switch AppConfig.CacheBackend {
	case "memory", "redis":
	default:
		return fmt.Errorf("unsupported cache_backend %q", AppConfig.CacheBackend)
	}
	if AppConfig.CacheTTL < 0 {
		return fmt.Errorf("cache_ttl must not be negative")
	}
	if AppConfig.RateLimitPerMinute < 0 || AppConfig.RateLimitBurst < 0 {
		return fmt.Errorf("rate limit settings must not be negative")
	}
	if AppConfig.Search.SuggestLimit < matcher.NoLimit {
		return fmt.Errorf("search.suggest_limit must be >= %d", matcher.NoLimit)
	}
	if _, err := SearchConfig(); err != nil {
		return err
	}
	return nil
}
