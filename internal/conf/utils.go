package conf

import (
	"os"
	"path/filepath"
	"runtime"

	"github.com/bigearthnet-go/bencommon/internal/errors"
)

const (
	osWindows = "windows"
	osDarwin  = "darwin"

	// appDirName matches the directory used by the Python tooling so both
	// share downloaded tables.
	appDirName = "bigearthnet"
)

// GetDefaultConfigPaths returns the directories searched for config.yaml,
// in priority order.
func GetDefaultConfigPaths() ([]string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, errors.New(err).
			Component("configuration").
			Category(errors.CategoryConfiguration).
			Context("operation", "get-home-directory").
			Build()
	}

	switch runtime.GOOS {
	case osWindows:
		return []string{
			".",
			filepath.Join(homeDir, "AppData", "Roaming", "bencommon"),
		}, nil
	default:
		return []string{
			".",
			filepath.Join(homeDir, ".config", "bencommon"),
			"/etc/bencommon",
		}, nil
	}
}

// FindConfigFile returns the first config.yaml in GetDefaultConfigPaths.
func FindConfigFile() (string, error) {
	configPaths, err := GetDefaultConfigPaths()
	if err != nil {
		return "", err
	}

	for _, path := range configPaths {
		configFilePath := filepath.Join(path, "config.yaml")
		if _, err := os.Stat(configFilePath); err == nil {
			return configFilePath, nil
		}
	}

	return "", errors.Newf("config file not found").
		Component("configuration").
		Category(errors.CategoryNotFound).
		Context("operation", "find-config-file").
		Build()
}

// DefaultDataDir returns the per-user data directory for downloaded tables:
// $XDG_DATA_HOME/bigearthnet (~/.local/share/bigearthnet) on Linux,
// ~/Library/Application Support/bigearthnet on macOS and
// %LOCALAPPDATA%\bigearthnet on Windows.
func DefaultDataDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", errors.New(err).
			Component("configuration").
			Category(errors.CategoryConfiguration).
			Context("operation", "get-home-directory").
			Build()
	}

	switch runtime.GOOS {
	case osWindows:
		if local := os.Getenv("LOCALAPPDATA"); local != "" {
			return filepath.Join(local, appDirName), nil
		}
		return filepath.Join(homeDir, "AppData", "Local", appDirName), nil
	case osDarwin:
		return filepath.Join(homeDir, "Library", "Application Support", appDirName), nil
	default:
		if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
			return filepath.Join(xdg, appDirName), nil
		}
		return filepath.Join(homeDir, ".local", "share", appDirName), nil
	}
}
