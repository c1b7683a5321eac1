package main

import (
	"context"
	"fmt"
	"strings"

	"eventflow/internal/config"
	"eventflow/internal/store"
	"eventflow/internal/store/postgres"
	"eventflow/internal/store/sqlite"
)

// openDB picks the backend from the DSN scheme and ensures the schema
// exists before handing the store out.
func openDB(ctx context.Context, cfg *config.ProjectConfig) (store.Store, error) {
	dsn := cfg.Database.DSN

	var db store.Store
	var err error
	switch {
	case strings.HasPrefix(dsn, "sqlite://"):
		db, err = sqlite.New(ctx, dsn)
	case strings.HasPrefix(dsn, "postgres://"), strings.HasPrefix(dsn, "postgresql://"):
		db, err = postgres.New(ctx, dsn)
	default:
		return nil, fmt.Errorf("unsupported database dsn scheme: %s", dsn)
	}
	if err != nil {
		return nil, err
	}

	if err := db.EnsureSchema(ctx); err != nil {
		db.Close(ctx)
		return nil, err
	}
	return db, nil
}

func loadConfig() (*config.ProjectConfig, error) {
	return config.LoadProjectConfig(config.DefaultFile)
}
