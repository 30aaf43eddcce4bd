package database

import (
	"fmt"
	"path/filepath"

	"lsfd202201/internal/config"
	"lsfd202201/internal/site"
)

// NewStoreFromConfig creates a site.Store implementation based on the
// database config type.
func NewStoreFromConfig(cfg config.DatabaseConfig) (site.Store, error) {
	switch cfg.Type {
	case "sqlite":
		if cfg.DataDir == "" {
			return nil, fmt.Errorf("data_dir required for sqlite database")
		}
		dbPath := filepath.Join(cfg.DataDir, "site.db")
		return NewSQLiteDatabase(dbPath)
	case "memory":
		db, err := NewSQLiteDatabase(":memory:")
		if err != nil {
			return nil, err
		}
		// An in-memory database starts empty every run, so migrate it
		// immediately instead of asking the operator to.
		if err := db.MigrateUp(); err != nil {
			db.Close()
			return nil, fmt.Errorf("preparing in-memory database: %w", err)
		}
		return db, nil
	default:
		return nil, fmt.Errorf("unknown database type: %s", cfg.Type)
	}
}
