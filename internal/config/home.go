package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// HomeEnv overrides the tool's home directory.
const HomeEnv = "PST_HOME"

// GetHome returns the tool's home directory
// Priority order:
//  1. PST_HOME environment variable (if set)
//  2. ~/.pattern-search-tool
//
// The directory is created if it doesn't exist
func GetHome() (string, error) {
	home := os.Getenv(HomeEnv)
	if home == "" {
		userHome, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve user home directory: %w", err)
		}
		home = filepath.Join(userHome, DirName)
	}

	if err := os.MkdirAll(home, 0755); err != nil {
		return "", fmt.Errorf("create home directory: %w", err)
	}
	return home, nil
}

// GetHistoryDBPath returns the absolute path to the run history database
// Always returns: $PST_HOME/history/runs.db
func GetHistoryDBPath() (string, error) {
	home, err := GetHome()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, "history", "runs.db"), nil
}

// GetLogDir returns the default run log directory, creating it if needed
func GetLogDir() (string, error) {
	home, err := GetHome()
	if err != nil {
		return "", err
	}

	logDir := filepath.Join(home, "logs")
	if err := os.MkdirAll(logDir, 0755); err != nil {
		return "", fmt.Errorf("create log directory: %w", err)
	}
	return logDir, nil
}
