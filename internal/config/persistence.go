// file: internal/config/persistence.go
// version: 2.0.0
// guid: 9c8d7e6f-5a4b-3c2d-1e0f-9a8b7c6d5e4f

package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// ConfigFileName is the file written by SaveConfigToFile.
const ConfigFileName = "brandmatch.yaml"

// ConfigFilePath returns the config file viper loaded, or a brandmatch.yaml
// next to the database when none was loaded.
func ConfigFilePath() string {
	if used := viper.ConfigFileUsed(); used != "" {
		return used
	}
	if AppConfig.DatabasePath != "" {
		return filepath.Join(filepath.Dir(AppConfig.DatabasePath), ConfigFileName)
	}
	return ConfigFileName
}

type fileSearchWeights struct {
	Transposition float64 `yaml:"transposition"`
	Edit          float64 `yaml:"edit"`
	Substring     float64 `yaml:"substring"`
}

type fileSearch struct {
	Threshold      float64           `yaml:"threshold"`
	MinQueryLength int               `yaml:"min_query_length"`
	CaseSensitive  bool              `yaml:"case_sensitive"`
	Limit          int               `yaml:"limit"`
	SuggestLimit   int               `yaml:"suggest_limit"`
	Weights        fileSearchWeights `yaml:"weights"`
}

// fileConfig is the on-disk layout. Secrets (postgres_dsn, redis_password,
// api_key) are never written.
type fileConfig struct {
	DatabaseType       string     `yaml:"database_type"`
	DatabasePath       string     `yaml:"database_path"`
	CacheBackend       string     `yaml:"cache_backend"`
	RedisAddr          string     `yaml:"redis_addr"`
	CacheTTL           string     `yaml:"cache_ttl"`
	LogLevel           string     `yaml:"log_level"`
	LogFormat          string     `yaml:"log_format"`
	Host               string     `yaml:"host"`
	Port               int        `yaml:"port"`
	RateLimitPerMinute int        `yaml:"rate_limit_per_minute"`
	RateLimitBurst     int        `yaml:"rate_limit_burst"`
	Search             fileSearch `yaml:"search"`
}

func toFileConfig(c Config) fileConfig {
	return fileConfig{
		DatabaseType:       c.DatabaseType,
		DatabasePath:       c.DatabasePath,
		CacheBackend:       c.CacheBackend,
		RedisAddr:          c.RedisAddr,
		CacheTTL:           c.CacheTTL.String(),
		LogLevel:           c.LogLevel,
		LogFormat:          c.LogFormat,
		Host:               c.Host,
		Port:               c.Port,
		RateLimitPerMinute: c.RateLimitPerMinute,
		RateLimitBurst:     c.RateLimitBurst,
		Search: fileSearch{
			Threshold:      c.Search.Threshold,
			MinQueryLength: c.Search.MinQueryLength,
			CaseSensitive:  c.Search.CaseSensitive,
			Limit:          c.Search.Limit,
			SuggestLimit:   c.Search.SuggestLimit,
			Weights: fileSearchWeights{
				Transposition: c.Search.Weights.Transposition,
				Edit:          c.Search.Weights.Edit,
				Substring:     c.Search.Weights.Substring,
			},
		},
	}
}

// LoadConfigFromFile merges a YAML config file into viper and rebuilds
// AppConfig. Environment variables keep precedence over file values.
func LoadConfigFromFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read config file: %w", err)
	}

	var values map[string]any
	if err := yaml.Unmarshal(data, &values); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	if err := viper.MergeConfigMap(values); err != nil {
		return fmt.Errorf("failed to merge config file %s: %w", path, err)
	}

	InitConfig()
	log.Printf("[INFO] Loaded configuration from %s", path)
	return nil
}

// MarshalConfig renders the current configuration as YAML without secrets.
func MarshalConfig() ([]byte, error) {
	data, err := yaml.Marshal(toFileConfig(AppConfig))
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config: %w", err)
	}
	return data, nil
}

// SaveConfigToFile writes the current configuration to path as YAML.
func SaveConfigToFile(path string) error {
	if path == "" {
		return fmt.Errorf("cannot determine config file path")
	}

	data, err := MarshalConfig()
	if err != nil {
		return err
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create config dir: %w", err)
		}
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	log.Printf("Configuration saved to file: %s", path)
	return nil
}
