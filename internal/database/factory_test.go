package database

import (
	"os"
	"path/filepath"
	"testing"

	"snip-go/internal/config"
)

func TestNewDatabaseFromConfig(t *testing.T) {
	t.Run("memory database is migrated and usable", func(t *testing.T) {
		db, err := NewDatabaseFromConfig(config.DatabaseConfig{Type: "memory"})
		if err != nil {
			t.Fatalf("NewDatabaseFromConfig() error = %v", err)
		}
		defer db.Close()

		docs, err := db.ListDocuments()
		if err != nil {
			t.Fatalf("ListDocuments() error = %v", err)
		}
		if len(docs) != 0 {
			t.Errorf("len(docs) = %d, want 0", len(docs))
		}
	})

	t.Run("sqlite creates the data directory", func(t *testing.T) {
		dataDir := filepath.Join(t.TempDir(), "nested", "data")

		db, err := NewDatabaseFromConfig(config.DatabaseConfig{Type: "sqlite", DataDir: dataDir})
		if err != nil {
			t.Fatalf("NewDatabaseFromConfig() error = %v", err)
		}
		defer db.Close()

		if _, err := os.Stat(filepath.Join(dataDir, "snip.db")); err != nil {
			t.Errorf("database file missing: %v", err)
		}
	})

	t.Run("sqlite requires a data dir", func(t *testing.T) {
		if _, err := NewDatabaseFromConfig(config.DatabaseConfig{Type: "sqlite"}); err == nil {
			t.Error("NewDatabaseFromConfig() expected error for missing data_dir")
		}
	})

	t.Run("unknown type", func(t *testing.T) {
		if _, err := NewDatabaseFromConfig(config.DatabaseConfig{Type: "postgres"}); err == nil {
			t.Error("NewDatabaseFromConfig() expected error for unknown type")
		}
	})
}
