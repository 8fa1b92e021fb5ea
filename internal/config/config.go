// Package config carries the runtime knobs and the persisted sync
// settings file.
package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

type RuntimeConfig struct {
	DBPath           string
	SyncSettingsPath string
	SuggestionLimit  int
}

func DefaultRuntimeConfig() RuntimeConfig {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	base := filepath.Join(home, ".taskvault")
	return RuntimeConfig{
		DBPath:           filepath.Join(base, "taskvault.db"),
		SyncSettingsPath: filepath.Join(base, "sync.yaml"),
		SuggestionLimit:  8,
	}
}

// RuntimeConfigFromEnv overlays TASKVAULT_* environment variables on a
// base configuration. Unset or unparsable values keep the base.
func RuntimeConfigFromEnv(base RuntimeConfig) RuntimeConfig {
	cfg := base
	if v := strings.TrimSpace(os.Getenv("TASKVAULT_DB_PATH")); v != "" {
		cfg.DBPath = v
	}
	if v := strings.TrimSpace(os.Getenv("TASKVAULT_SYNC_SETTINGS")); v != "" {
		cfg.SyncSettingsPath = v
	}
	if v, ok := getEnvInt("TASKVAULT_SUGGESTION_LIMIT"); ok && v > 0 {
		cfg.SuggestionLimit = v
	}
	return cfg
}

func getEnvInt(name string) (int, bool) {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return 0, false
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return v, true
}
