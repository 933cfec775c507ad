package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	// HTTP Server
	Port string

	// Remote store
	APIBaseURL     string
	RequestTimeout time.Duration

	// Local store
	LocalBackend string
	LocalDataDir string
	SQLiteDBPath string

	// Web layer caches
	CacheTTL  time.Duration
	CacheSize int
}

func Load() *Config {
	return &Config{
		Port: getEnv("PORT", "8081"),

		APIBaseURL:     getEnv("API_BASE_URL", "http://localhost:5000"),
		RequestTimeout: getEnvDuration("API_REQUEST_TIMEOUT", 10*time.Second),

		LocalBackend: getEnv("LOCAL_BACKEND", "file"),
		LocalDataDir: getEnv("LOCAL_DATA_DIR", "./data"),
		SQLiteDBPath: getEnv("SQLITE_DB_PATH", "./data/expensetracker.db"),

		CacheTTL:  getEnvDuration("CACHE_TTL", 5*time.Minute),
		CacheSize: getEnvInt("CACHE_SIZE", 100),
	}
}

// Validate checks the configuration and returns every problem at once.
func (c *Config) Validate() error {
	var errors []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		errors = append(errors, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	if c.APIBaseURL == "" {
		errors = append(errors, "API base URL cannot be empty")
	} else if parsed, err := url.Parse(c.APIBaseURL); err != nil {
		errors = append(errors, fmt.Sprintf("invalid API base URL '%s': %v", c.APIBaseURL, err))
	} else if parsed.Scheme != "http" && parsed.Scheme != "https" {
		errors = append(errors, fmt.Sprintf("invalid API base URL scheme '%s': must be 'http' or 'https'", parsed.Scheme))
	}

	if c.RequestTimeout < time.Second {
		errors = append(errors, fmt.Sprintf("invalid request timeout %v: must be at least 1 second", c.RequestTimeout))
	} else if c.RequestTimeout > time.Minute {
		errors = append(errors, fmt.Sprintf("invalid request timeout %v: must be at most 1 minute", c.RequestTimeout))
	}

	switch c.LocalBackend {
	case "file":
		if c.LocalDataDir == "" {
			errors = append(errors, "local data directory cannot be empty when using file backend")
		}
	case "sqlite":
		if c.SQLiteDBPath == "" {
			errors = append(errors, "SQLite database path cannot be empty when using sqlite backend")
		} else if dir := filepath.Dir(c.SQLiteDBPath); dir != "." && dir != "" {
			if _, err := os.Stat(dir); os.IsNotExist(err) {
				if err := os.MkdirAll(dir, 0755); err != nil {
					errors = append(errors, fmt.Sprintf("cannot create SQLite database directory '%s': %v", dir, err))
				}
			}
		}
	default:
		errors = append(errors, fmt.Sprintf("invalid local backend '%s': must be one of [file sqlite]", c.LocalBackend))
	}

	if c.CacheSize < 1 {
		errors = append(errors, fmt.Sprintf("invalid cache size %d: must be at least 1", c.CacheSize))
	}
	if c.CacheTTL < time.Second {
		errors = append(errors, fmt.Sprintf("invalid cache TTL %v: must be at least 1 second", c.CacheTTL))
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}

	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
