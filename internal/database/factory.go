package database

import (
	"fmt"
	"os"
	"path/filepath"

	"snip-go/internal/config"
	"snip-go/internal/snip"
)

// NewDatabaseFromConfig creates a Database implementation based on the
// database config type. The schema is migrated to the latest version before
// the database is returned.
func NewDatabaseFromConfig(cfg config.DatabaseConfig) (snip.Database, error) {
	var path string
	switch cfg.Type {
	case "sqlite":
		if cfg.DataDir == "" {
			return nil, fmt.Errorf("data_dir required for sqlite database")
		}
		if err := os.MkdirAll(cfg.DataDir, 0700); err != nil {
			return nil, fmt.Errorf("creating data directory: %w", err)
		}
		path = filepath.Join(cfg.DataDir, "snip.db")
	case "memory":
		path = ":memory:"
	default:
		return nil, fmt.Errorf("unknown database type: %s", cfg.Type)
	}

	db, err := NewSQLiteDatabase(path)
	if err != nil {
		return nil, err
	}

	if err := db.Migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrating database: %w", err)
	}

	return db, nil
}
