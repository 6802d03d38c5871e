// file: cmd/root_test.go
// version: 2.0.0
// guid: 7eae8d0c-7fda-4f45-8f73-5d1e0c7c9f1a

package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/jdfalk/brandmatch/internal/config"
	"github.com/jdfalk/brandmatch/internal/logger"
	"github.com/spf13/viper"
)

func TestInitConfigCreatesDatabaseDirectory(t *testing.T) {
	tempDir := t.TempDir()
	dbPath := filepath.Join(tempDir, "db", "catalog.pebble")

	origCfgFile := cfgFile
	origConfig := config.AppConfig
	defer func() {
		cfgFile = origCfgFile
		config.AppConfig = origConfig
		viper.Reset()
	}()

	viper.Reset()
	cfgFile = filepath.Join(tempDir, "brandmatch.yaml")
	t.Setenv("BRANDMATCH_DATABASE_PATH", dbPath)

	initConfig()

	if config.AppConfig.DatabasePath != dbPath {
		t.Fatalf("expected database path %q, got %q", dbPath, config.AppConfig.DatabasePath)
	}
	if _, err := os.Stat(filepath.Dir(dbPath)); err != nil {
		t.Fatalf("expected database directory to exist: %v", err)
	}
}

func TestInitConfigReadsConfigFile(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "brandmatch.yaml")
	content := "search:\n  threshold: 0.6\nlog_level: debug\n"
	if err := os.WriteFile(configPath, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	origCfgFile := cfgFile
	origConfig := config.AppConfig
	defer func() {
		cfgFile = origCfgFile
		config.AppConfig = origConfig
		logger.Set(nil)
		viper.Reset()
	}()

	viper.Reset()
	cfgFile = configPath
	t.Setenv("BRANDMATCH_DATABASE_PATH", filepath.Join(tempDir, "catalog.pebble"))

	initConfig()

	if config.AppConfig.Search.Threshold != 0.6 {
		t.Fatalf("expected threshold 0.6 from file, got %v", config.AppConfig.Search.Threshold)
	}
	if !logger.L().Core().Enabled(-1) {
		t.Fatal("expected debug logging to be enabled")
	}
}

func TestInitConfigLoadsEnvFile(t *testing.T) {
	tempDir := t.TempDir()
	envPath := filepath.Join(tempDir, "test.env")
	if err := os.WriteFile(envPath, []byte("BRANDMATCH_SEARCH_SUGGEST_LIMIT=3\n"), 0o644); err != nil {
		t.Fatalf("failed to write env file: %v", err)
	}

	origCfgFile := cfgFile
	origEnvFile := envFile
	origConfig := config.AppConfig
	defer func() {
		cfgFile = origCfgFile
		envFile = origEnvFile
		config.AppConfig = origConfig
		os.Unsetenv("BRANDMATCH_SEARCH_SUGGEST_LIMIT")
		viper.Reset()
	}()

	viper.Reset()
	cfgFile = filepath.Join(tempDir, "missing.yaml")
	envFile = envPath
	t.Setenv("BRANDMATCH_DATABASE_PATH", filepath.Join(tempDir, "catalog.pebble"))

	initConfig()

	if config.AppConfig.Search.SuggestLimit != 3 {
		t.Fatalf("expected suggest limit 3 from env file, got %d", config.AppConfig.Search.SuggestLimit)
	}
}

func TestExecuteHelp(t *testing.T) {
	tempDir := t.TempDir()

	origCfg := cfgFile
	origConfig := config.AppConfig
	defer func() {
		cfgFile = origCfg
		config.AppConfig = origConfig
	}()

	cfgFile = filepath.Join(tempDir, "config.yaml")
	dbPath := filepath.Join(tempDir, "catalog.pebble")

	rootCmd.SetArgs([]string{"--db", dbPath, "--help"})
	defer rootCmd.SetArgs(nil)

	if err := Execute(); err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
}

func TestCommandsRegistered(t *testing.T) {
	want := []string{"serve", "search", "suggest", "score", "import", "config", "diagnostics"}
	for _, name := range want {
		found := false
		for _, c := range rootCmd.Commands() {
			if c.Name() == name {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("expected %q command to be registered", name)
		}
	}
}
