package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

const (
	// AppName is the directory name used under the user config directory.
	AppName = "context-spotlight"

	defaultTriggerKey = "ctrl"
	defaultMode       = "double_press"
	defaultIntervalMS = 400
)

// Config carries the daemon-level settings resolved from the environment.
// Gesture trigger fields are startup defaults; the detector owns the live copy.
type Config struct {
	TriggerKey        string
	TriggerMode       string
	IntervalMS        int
	EnableFileLogging bool
}

func Load() (*Config, error) {
	// Load configuration from a .env next to the executable, falling back
	// to CONTEXT_SPOTLIGHT_ENV as an explicit path. Missing files are fine;
	// plain environment variables still apply.
	if envPath := resolveEnvPath(); envPath != "" {
		_ = godotenv.Load(envPath)
	}

	intervalMS := defaultIntervalMS
	if v := os.Getenv("HOTKEY_INTERVAL_MS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			intervalMS = n
		}
	}

	cfg := &Config{
		TriggerKey:        strings.ToLower(getEnvWithDefault("HOTKEY_KEY", defaultTriggerKey)),
		TriggerMode:       strings.ToLower(getEnvWithDefault("HOTKEY_MODE", defaultMode)),
		IntervalMS:        intervalMS,
		EnableFileLogging: strings.ToLower(os.Getenv("ENABLE_FILE_LOGGING")) == "true",
	}

	return cfg, nil
}

func resolveEnvPath() string {
	if execPath, err := os.Executable(); err == nil {
		exeEnv := filepath.Join(filepath.Dir(execPath), ".env")
		if _, err := os.Stat(exeEnv); err == nil {
			return exeEnv
		}
	}

	if alt := os.Getenv("CONTEXT_SPOTLIGHT_ENV"); alt != "" {
		if _, err := os.Stat(alt); err == nil {
			return alt
		}
	}

	return ""
}

func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
