// Package datastore persists the patch records produced by the metadata
// builder in SQLite or MySQL through gorm, and exports them as CSV.
package datastore

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/bigearthnet-go/bencommon/internal/conf"
	"github.com/bigearthnet-go/bencommon/internal/errors"
	"github.com/bigearthnet-go/bencommon/internal/logger"
)

const (
	// TypeSQLite selects the SQLite backend.
	TypeSQLite = "sqlite"
	// TypeMySQL selects the MySQL backend.
	TypeMySQL = "mysql"

	// defaultBatchSize bounds the rows per INSERT statement.
	defaultBatchSize = 500
	slowQueryThreshold = 500 * time.Millisecond
)

// Interface abstracts the database holding builder output.
type Interface interface {
	Open() error
	Close() error
	SaveRun(ctx context.Context, run *BuildRun) error
	SaveRecords(ctx context.Context, records []PatchRecord) error
	Records(ctx context.Context, filter Filter) ([]PatchRecord, error)
	Runs(ctx context.Context) ([]BuildRun, error)
	Backend() string
}

// Config selects and configures a backend.
type Config struct {
	Type       string
	SQLitePath string
	MySQL      conf.MySQLSettings
	BatchSize  int
	Debug      bool
}

// ConfigFromSettings derives the database config from the output settings.
func ConfigFromSettings(s *conf.Settings) Config {
	return Config{
		Type:       s.Output.Type,
		SQLitePath: s.Output.SQLite.Path,
		MySQL:      s.Output.MySQL,
		Debug:      s.Debug,
	}
}

// DataStore implements Interface on a gorm connection.
type DataStore struct {
	DB        *gorm.DB
	batchSize int
	backend   string
}

// New creates an unopened store for cfg.Type.
func New(cfg Config) (Interface, error) {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = defaultBatchSize
	}
	switch cfg.Type {
	case TypeSQLite, "":
		return &SQLiteStore{DataStore: DataStore{batchSize: cfg.BatchSize, backend: TypeSQLite}, Config: cfg}, nil
	case TypeMySQL:
		return &MySQLStore{DataStore: DataStore{batchSize: cfg.BatchSize, backend: TypeMySQL}, Config: cfg}, nil
	default:
		return nil, validationError("unsupported database type", "type", cfg.Type)
	}
}

// Open creates and opens the store for cfg.
func Open(cfg Config) (Interface, error) {
	store, err := New(cfg)
	if err != nil {
		return nil, err
	}
	if err := store.Open(); err != nil {
		return nil, err
	}
	return store, nil
}

// Backend returns the backend name used in metrics and logs.
func (ds *DataStore) Backend() string { return ds.backend }

func (ds *DataStore) ready() error {
	if ds.DB == nil {
		return errors.Newf("database connection is not initialized").
			Component("datastore").
			Category(errors.CategoryDatabase).
			Build()
	}
	return nil
}

// Close closes the underlying connection pool.
func (ds *DataStore) Close() error {
	if err := ds.ready(); err != nil {
		return err
	}
	sqlDB, err := ds.DB.DB()
	if err != nil {
		return dbError(err, "close")
	}
	if err := sqlDB.Close(); err != nil {
		return dbError(err, "close")
	}
	GetLogger().Debug("database closed", logger.String("backend", ds.backend))
	return nil
}

func performAutoMigration(db *gorm.DB, debug bool, dbType, connectionInfo string) error {
	if err := db.AutoMigrate(&BuildRun{}, &PatchRecord{}); err != nil {
		return dbError(err, "auto_migrate", "db_type", dbType)
	}
	if debug {
		GetLogger().Debug("database initialized",
			logger.String("db_type", dbType),
			logger.String("connection", connectionInfo))
	}
	return nil
}

func gormConfig() *gorm.Config {
	return &gorm.Config{
		Logger: logger.NewGormLogger(GetLogger(), logger.GormOptions{SlowThreshold: slowQueryThreshold}),
	}
}

// GetLogger returns the datastore module logger.
func GetLogger() logger.Logger {
	return logger.Global().Module("datastore")
}

func dbError(err error, operation string, context ...any) error {
	b := errors.New(err).
		Component("datastore").
		Category(errors.CategoryDatabase).
		Context("operation", operation)
	for i := 0; i < len(context)-1; i += 2 {
		if key, ok := context[i].(string); ok {
			b = b.Context(key, context[i+1])
		}
	}
	return b.Build()
}

func validationError(message, field string, value any) error {
	return errors.Newf("%s: %v", message, value).
		Component("datastore").
		Category(errors.CategoryValidation).
		Context("field", field).
		Build()
}
