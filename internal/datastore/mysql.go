package datastore

import (
	"fmt"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	"github.com/bigearthnet-go/bencommon/internal/logger"
)

// MySQLStore implements Interface for MySQL.
type MySQLStore struct {
	DataStore
	Config Config
}

func validateMySQLConfig(cfg Config) error {
	switch {
	case cfg.MySQL.Host == "":
		return validationError("mysql host must not be empty", "output.mysql.host", cfg.MySQL.Host)
	case cfg.MySQL.Database == "":
		return validationError("mysql database must not be empty", "output.mysql.database", cfg.MySQL.Database)
	case cfg.MySQL.Port <= 0 || cfg.MySQL.Port > 65535:
		return validationError("mysql port out of range", "output.mysql.port", cfg.MySQL.Port)
	}
	return nil
}

// DSN builds the go-sql-driver connection string.
func (store *MySQLStore) DSN() string {
	m := store.Config.MySQL
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		m.Username, m.Password, m.Host, m.Port, m.Database)
}

// Open connects to the server and migrates the schema.
func (store *MySQLStore) Open() error {
	if err := validateMySQLConfig(store.Config); err != nil {
		return err
	}

	m := store.Config.MySQL
	db, err := gorm.Open(mysql.Open(store.DSN()), gormConfig())
	if err != nil {
		GetLogger().Error("failed to open MySQL database",
			logger.String("host", m.Host),
			logger.Int("port", m.Port),
			logger.String("database", m.Database),
			logger.Error(err))
		return dbError(err, "open",
			"db_type", "MySQL",
			"host", m.Host,
			"port", m.Port,
			"database", m.Database)
	}

	store.DB = db
	return performAutoMigration(db, store.Config.Debug, "MySQL",
		fmt.Sprintf("%s:%d/%s", m.Host, m.Port, m.Database))
}
