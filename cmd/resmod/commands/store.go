package commands

import (
	"context"
	"fmt"

	"github.com/resmod/resmod/pkg/registry"
)

// openStore opens and migrates the SQLite-backed schema store.
func openStore(ctx context.Context, path string) (*registry.SQLiteStore, error) {
	store, err := registry.NewSQLiteStore(registry.Config{Path: path})
	if err != nil {
		return nil, err
	}
	if err := store.Init(ctx); err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}
	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to migrate store: %w", err)
	}
	return store, nil
}
