// Package conf loads, validates and saves bencommon settings.
package conf

import (
	"bytes"
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/bigearthnet-go/bencommon/internal/errors"
	"github.com/bigearthnet-go/bencommon/internal/logger"
)

//go:embed config.yaml
var configFiles embed.FS

// EnvPrefix is the prefix for environment variable overrides,
// e.g. BENCOMMON_RESOURCES_DIR overrides resources.dir.
const EnvPrefix = "BENCOMMON"

// Settings contains all configuration options for bencommon.
type Settings struct {
	Debug bool `yaml:"debug" mapstructure:"debug"`

	Resources ResourceSettings     `yaml:"resources" mapstructure:"resources"`
	Logging   logger.LoggingConfig `yaml:"logging" mapstructure:"logging"`
	Fetch     FetchSettings        `yaml:"fetch" mapstructure:"fetch"`
	Builder   BuilderSettings      `yaml:"builder" mapstructure:"builder"`
	Output    OutputSettings       `yaml:"output" mapstructure:"output"`
	Telemetry TelemetrySettings    `yaml:"telemetry" mapstructure:"telemetry"`
}

// ResourceSettings locates the compressed lookup tables.
type ResourceSettings struct {
	Dir string `yaml:"dir" mapstructure:"dir"` // empty selects DefaultDataDir()
}

// FetchSettings configures downloads of lookup tables and country borders.
type FetchSettings struct {
	BaseURL      string        `yaml:"base_url" mapstructure:"base_url" validate:"omitempty,url"`
	CountriesURL string        `yaml:"countries_url" mapstructure:"countries_url" validate:"required,url"`
	Timeout      time.Duration `yaml:"timeout" mapstructure:"timeout" validate:"gte=0"`
}

// BuilderSettings configures the metadata builder pipeline.
type BuilderSettings struct {
	Workers          int    `yaml:"workers" mapstructure:"workers" validate:"gte=0,lte=64"`
	TargetCRS        string `yaml:"target_crs" mapstructure:"target_crs" validate:"required,crs"`
	LocalCRS         string `yaml:"local_crs" mapstructure:"local_crs" validate:"required,crs"`
	Progress         bool   `yaml:"progress" mapstructure:"progress"`
	RemoveBadEntries bool   `yaml:"remove_bad_entries" mapstructure:"remove_bad_entries"`
}

// OutputSettings selects where built records are written.
type OutputSettings struct {
	Type   string         `yaml:"type" mapstructure:"type" validate:"oneof=sqlite mysql csv"`
	SQLite SQLiteSettings `yaml:"sqlite" mapstructure:"sqlite"`
	MySQL  MySQLSettings  `yaml:"mysql" mapstructure:"mysql"`
	CSV    CSVSettings    `yaml:"csv" mapstructure:"csv"`
}

// SQLiteSettings contains settings for the SQLite output.
type SQLiteSettings struct {
	Path string `yaml:"path" mapstructure:"path"`
}

// MySQLSettings contains settings for the MySQL output.
type MySQLSettings struct {
	Host     string `yaml:"host" mapstructure:"host"`
	Port     int    `yaml:"port" mapstructure:"port" validate:"gte=0,lte=65535"`
	Username string `yaml:"username" mapstructure:"username"`
	Password string `yaml:"password" mapstructure:"password"`
	Database string `yaml:"database" mapstructure:"database"`
}

// CSVSettings contains settings for the CSV output.
type CSVSettings struct {
	Path string `yaml:"path" mapstructure:"path"`
}

// TelemetrySettings configures optional Sentry error reporting.
type TelemetrySettings struct {
	Enabled     bool   `yaml:"enabled" mapstructure:"enabled"`
	DSN         string `yaml:"dsn" mapstructure:"dsn" validate:"required_if=Enabled true"`
	Environment string `yaml:"environment" mapstructure:"environment"`
}

// ResourceDir returns the configured resource directory or the per-user default.
func (s *Settings) ResourceDir() (string, error) {
	if s.Resources.Dir != "" {
		return s.Resources.Dir, nil
	}
	return DefaultDataDir()
}

var (
	settingsInstance *Settings
	configFileUsed   string
	settingsMutex    sync.RWMutex
)

// Load reads the embedded defaults, merges the first config file found (or
// configFile when non-empty), applies .env files and BENCOMMON_* environment
// overrides and validates the result.
func Load(configFile string) (*Settings, error) {
	settingsMutex.Lock()
	defer settingsMutex.Unlock()

	if err := loadDotEnv(); err != nil {
		return nil, err
	}

	if err := initViper(configFile); err != nil {
		return nil, err
	}

	settings := &Settings{}
	if err := viper.Unmarshal(settings); err != nil {
		return nil, errors.New(fmt.Errorf("error unmarshaling config into struct: %w", err)).
			Component("configuration").
			Category(errors.CategoryConfiguration).
			Build()
	}

	if err := ValidateSettings(settings); err != nil {
		return nil, err
	}

	settingsInstance = settings
	configFileUsed = viper.ConfigFileUsed()
	return settingsInstance, nil
}

// loadDotEnv loads .env from the working directory when present. Values
// already set in the environment win.
func loadDotEnv() error {
	if _, err := os.Stat(".env"); err != nil {
		return nil
	}
	if err := godotenv.Load(".env"); err != nil {
		return errors.New(fmt.Errorf("error loading .env: %w", err)).
			Component("configuration").
			Category(errors.CategoryConfiguration).
			Build()
	}
	return nil
}

func initViper(configFile string) error {
	viper.Reset()
	viper.SetConfigType("yaml")
	if err := viper.ReadConfig(bytes.NewReader(getDefaultConfig())); err != nil {
		return errors.New(fmt.Errorf("error reading embedded defaults: %w", err)).
			Component("configuration").
			Category(errors.CategoryConfiguration).
			Build()
	}

	viper.SetEnvPrefix(EnvPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	path := configFile
	if path == "" {
		found, err := FindConfigFile()
		if err != nil {
			// running on embedded defaults
			return nil
		}
		path = found
	}

	viper.SetConfigFile(path)
	if err := viper.MergeInConfig(); err != nil {
		return errors.New(fmt.Errorf("fatal error reading config file: %w", err)).
			Component("configuration").
			Category(errors.CategoryConfiguration).
			FileContext(path).
			Build()
	}
	return nil
}

func getDefaultConfig() []byte {
	data, err := configFiles.ReadFile("config.yaml")
	if err != nil {
		panic(fmt.Sprintf("embedded config.yaml missing: %v", err))
	}
	return data
}

// GetSettings returns the current settings instance
func GetSettings() *Settings {
	settingsMutex.RLock()
	defer settingsMutex.RUnlock()
	return settingsInstance
}

// ConfigFileUsed returns the path of the merged config file, or "" when only
// embedded defaults were used.
func ConfigFileUsed() string {
	settingsMutex.RLock()
	defer settingsMutex.RUnlock()
	return configFileUsed
}

// SaveYAMLConfig writes settings to configPath atomically.
func SaveYAMLConfig(configPath string, settings *Settings) error {
	yamlData, err := yaml.Marshal(settings)
	if err != nil {
		return errors.New(fmt.Errorf("error marshaling settings to YAML: %w", err)).
			Component("configuration").
			Category(errors.CategoryConfiguration).
			Build()
	}

	if err := os.MkdirAll(filepath.Dir(configPath), 0o755); err != nil {
		return errors.New(err).
			Component("configuration").
			Category(errors.CategoryFileIO).
			FileContext(configPath).
			Build()
	}

	tempFile, err := os.CreateTemp(filepath.Dir(configPath), "config-*.yaml")
	if err != nil {
		return errors.New(fmt.Errorf("error creating temporary file: %w", err)).
			Component("configuration").
			Category(errors.CategoryFileIO).
			Build()
	}
	tempFileName := tempFile.Name()
	defer os.Remove(tempFileName)

	if _, err := tempFile.Write(yamlData); err != nil {
		tempFile.Close()
		return errors.New(fmt.Errorf("error writing to temporary file: %w", err)).
			Component("configuration").
			Category(errors.CategoryFileIO).
			Build()
	}
	if err := tempFile.Close(); err != nil {
		return errors.New(fmt.Errorf("error closing temporary file: %w", err)).
			Component("configuration").
			Category(errors.CategoryFileIO).
			Build()
	}

	if err := os.Rename(tempFileName, configPath); err != nil {
		return errors.New(fmt.Errorf("error replacing config file: %w", err)).
			Component("configuration").
			Category(errors.CategoryFileIO).
			FileContext(configPath).
			Build()
	}
	return nil
}
