package datastore

import (
	"os"
	"path/filepath"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/bigearthnet-go/bencommon/internal/errors"
)

// SQLiteStore implements Interface for SQLite.
type SQLiteStore struct {
	DataStore
	Config Config
}

func validateSQLiteConfig(cfg Config) error {
	if cfg.SQLitePath == "" {
		return validationError("sqlite path must not be empty", "output.sqlite.path", cfg.SQLitePath)
	}
	return nil
}

// Open creates the database file and its parent directory if needed and
// migrates the schema.
func (store *SQLiteStore) Open() error {
	if err := validateSQLiteConfig(store.Config); err != nil {
		return err
	}

	path, err := filepath.Abs(store.Config.SQLitePath)
	if err != nil {
		return validationError("invalid sqlite path", "output.sqlite.path", store.Config.SQLitePath)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.New(err).
			Component("datastore").
			Category(errors.CategoryFileIO).
			FileContext(path).
			Build()
	}

	db, err := gorm.Open(sqlite.Open(path), gormConfig())
	if err != nil {
		return dbError(err, "open", "db_type", "SQLite", "path", path)
	}

	store.DB = db
	return performAutoMigration(db, store.Config.Debug, "SQLite", path)
}
