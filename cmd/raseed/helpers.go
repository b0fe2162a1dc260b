package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/raseed-app/raseed/internal/advisory"
	"github.com/raseed-app/raseed/internal/config"
	"github.com/raseed-app/raseed/internal/insights"
	"github.com/raseed-app/raseed/internal/storage"
	"github.com/spf13/viper"
)

// databasePath resolves the configured database location, defaulting to
// the standard data directory.
func databasePath() (string, error) {
	if dbPath := viper.GetString("database.path"); dbPath != "" {
		return config.ExpandPath(dbPath), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".local", "share", "raseed", "raseed.db"), nil
}

// openStorage opens the SQLite store. Callers own closing it.
func openStorage() (*storage.SQLiteStorage, error) {
	dbPath, err := databasePath()
	if err != nil {
		return nil, err
	}
	store, err := storage.NewSQLiteStorage(dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return store, nil
}

// newAdvisor builds the advisory generator from config. Absent config
// yields the disabled generator so analysis still works offline.
func newAdvisor() (advisory.Generator, error) {
	cfg := advisory.Config{
		Provider:          viper.GetString("advisory.provider"),
		APIKey:            viper.GetString("advisory.api_key"),
		Model:             viper.GetString("advisory.model"),
		Temperature:       viper.GetFloat64("advisory.temperature"),
		MaxTokens:         viper.GetInt("advisory.max_tokens"),
		RequestsPerMinute: viper.GetInt("advisory.requests_per_minute"),
	}
	generator, err := advisory.NewGenerator(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create advisory generator: %w", err)
	}
	return generator, nil
}

// newEngine wires the analysis engine on top of an open store.
func newEngine(store *storage.SQLiteStorage) (*insights.Engine, error) {
	advisor, err := newAdvisor()
	if err != nil {
		return nil, err
	}
	return insights.NewEngine(store, store, advisor), nil
}
