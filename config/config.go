package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

const (
	DefaultUploadURL = "http://nebtown.info/ss"
	DefaultAccount   = "anon"
	DefaultHotkey    = "PrintScreen"

	// EnvPathVar optionally points at a config file when no .env sits next
	// to the executable.
	EnvPathVar = "NCSCREENIER_ENV"
)

type Config struct {
	UploadURL          string
	Account            string
	OutputDir          string
	Hotkey             string
	EnableFileLogging  bool
	UploadRetries      int
	UploadTimeoutSec   int
	SingleInstancePort int
}

// Load reads configuration from sources in priority order:
// 1) .env in the executable directory
// 2) a file named by NCSCREENIER_ENV
// 3) process environment / defaults
func Load() (*Config, error) {
	if envPath := resolveEnvPath(); envPath != "" {
		_ = godotenv.Load(envPath)
	}

	cfg := &Config{
		UploadURL:          getEnvWithDefault("UPLOAD_URL", DefaultUploadURL),
		Account:            getEnvWithDefault("ACCOUNT", DefaultAccount),
		OutputDir:          getEnvWithDefault("OUTPUT_DIR", "."),
		Hotkey:             getEnvWithDefault("HOTKEY", DefaultHotkey),
		EnableFileLogging:  strings.ToLower(os.Getenv("ENABLE_FILE_LOGGING")) == "true",
		UploadRetries:      getEnvInt("UPLOAD_RETRIES", 4),
		UploadTimeoutSec:   getEnvInt("UPLOAD_TIMEOUT_SEC", 30),
		SingleInstancePort: getEnvInt("SINGLEINSTANCE_PORT", 42873),
	}

	return cfg, nil
}

func resolveEnvPath() string {
	execPath, err := os.Executable()
	if err != nil {
		return ""
	}

	exeEnv := filepath.Join(filepath.Dir(execPath), ".env")
	if _, err := os.Stat(exeEnv); err == nil {
		return exeEnv
	}

	if alt := os.Getenv(EnvPathVar); alt != "" {
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

func getEnvInt(key string, defaultValue int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			return n
		}
	}
	return defaultValue
}
