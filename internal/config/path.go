// Package config loads gastos settings from viper and the environment.
package config

import (
	"os"
	"path/filepath"
	"strings"
)

// Default locations, expanded with ExpandPath before use.
const (
	DefaultConfigDir    = "$HOME/.config/gastos"
	DefaultDatabasePath = "$HOME/.local/share/gastos/gastos.db"
)

// ExpandPath expands a leading ~ and $VAR references in path.
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
