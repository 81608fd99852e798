package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/viper"

	"github.com/ledgersage/ledgersage/internal/common"
	"github.com/ledgersage/ledgersage/internal/config"
	"github.com/ledgersage/ledgersage/internal/embedding"
	"github.com/ledgersage/ledgersage/internal/engine"
	"github.com/ledgersage/ledgersage/internal/storage"
)

// initStorage initializes the storage service with proper path expansion.
func initStorage(ctx context.Context) (*storage.SQLiteStorage, error) {
	dbPath := viper.GetString("database.path")
	if dbPath == "" {
		dbPath = "$HOME/.local/share/ledgersage/ledgersage.db"
	}

	dbPath = config.ExpandPath(dbPath)

	store, err := storage.NewSQLiteStorage(dbPath)
	if err != nil {
		return nil, err
	}

	if err := store.Migrate(ctx); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return store, nil
}

// initEmbedder constructs the embedding provider from configuration.
func initEmbedder() (embedding.Provider, error) {
	provider, err := embedding.NewProvider(embedding.Config{
		Backend: viper.GetString("embedding.backend"),
		APIKey:  viper.GetString("embedding.api_key"),
		Model:   viper.GetString("embedding.model"),
		BaseURL: viper.GetString("embedding.base_url"),
	})
	if errors.Is(err, common.ErrMissingConfig) {
		return nil, common.NewUserError(
			"Set embedding.api_key in your config file or the LEDGERSAGE_EMBEDDING_API_KEY environment variable", err)
	}
	return provider, err
}

// initEngine wires up storage, the embedding provider, and the match engine.
func initEngine(ctx context.Context) (*engine.Engine, *storage.SQLiteStorage, error) {
	store, err := initStorage(ctx)
	if err != nil {
		return nil, nil, err
	}

	embedder, err := initEmbedder()
	if err != nil {
		_ = store.Close()
		return nil, nil, err
	}

	cfg := engine.DefaultConfig()
	if viper.IsSet("matching.min_score") {
		cfg.MinScore = viper.GetFloat64("matching.min_score")
	}

	return engine.NewWithConfig(store, embedder, cfg), store, nil
}
