// Package config loads spice settings: database location, model
// hyper-parameters, calibration constants and the retrain schedule.
package config

import (
	"os"
	"path/filepath"
	"strings"
)

// ExpandPath expands a leading ~ and $VAR references in a path.
func ExpandPath(path string) string {
	if path == "" {
		return path
	}

	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			path = filepath.Join(home, strings.TrimPrefix(path[1:], "/"))
		}
	}

	return os.ExpandEnv(path)
}

// DataDir is where spice keeps its database: $XDG_DATA_HOME/spice, or
// ~/.local/share/spice when XDG_DATA_HOME is unset.
func DataDir() string {
	if dir := os.Getenv("XDG_DATA_HOME"); dir != "" {
		return filepath.Join(dir, "spice")
	}
	return ExpandPath("~/.local/share/spice")
}

// DefaultDatabasePath is the database used when none is configured.
func DefaultDatabasePath() string {
	return filepath.Join(DataDir(), "spice.db")
}
