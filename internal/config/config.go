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

// Role selects which binary the configuration is validated for.
type Role string

const (
	RoleServer Role = "server"
	RoleWorker Role = "worker"
)

type Config struct {
	// HTTP Server
	Port               string
	RateLimitPerMinute int

	// Database
	SQLiteDBPath string

	// Extraction
	GeminiAPIKey   string
	GeminiModel    string
	ExtractTimeout time.Duration

	// Dialogue sessions
	SessionTTL             time.Duration
	SessionMaxEntries      int
	SessionCleanupInterval time.Duration
	DemoUserID             string

	// AMQP
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Google Sheets mirror
	GoogleSpreadsheetID string
	GoogleSheetName     string

	LogLevel string
}

func Load() *Config {
	return &Config{
		Port:               getEnv("PORT", "8081"),
		RateLimitPerMinute: getEnvInt("RATE_LIMIT_PER_MINUTE", 60),

		SQLiteDBPath: getEnv("SQLITE_DB_PATH", "./data/expenses.db"),

		GeminiAPIKey:   getEnv("GEMINI_API_KEY", ""),
		GeminiModel:    getEnv("GEMINI_MODEL", "gemini-2.0-flash"),
		ExtractTimeout: getEnvDuration("EXTRACT_TIMEOUT", 15*time.Second),

		SessionTTL:             getEnvDuration("SESSION_TTL", time.Hour),
		SessionMaxEntries:      getEnvInt("SESSION_MAX_ENTRIES", 10000),
		SessionCleanupInterval: getEnvDuration("SESSION_CLEANUP_INTERVAL", 10*time.Minute),
		DemoUserID:             getEnv("DEMO_USER_ID", "demo-user"),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "chitieu"),
		AMQPQueue:    getEnv("AMQP_QUEUE", "transactions_saved"),

		GoogleSpreadsheetID: getEnv("GOOGLE_SPREADSHEET_ID", ""),
		GoogleSheetName:     getEnv("GOOGLE_SHEET_NAME", "Chi tiêu"),

		LogLevel: getEnv("LOG_LEVEL", "info"),
	}
}

// Validate validates the configuration for the given role and returns every
// problem found in a single error.
func (c *Config) Validate(role Role) error {
	var errors []string

	if role == RoleServer {
		if port, err := strconv.Atoi(c.Port); err != nil {
			errors = append(errors, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
		} else if port < 1 || port > 65535 {
			errors = append(errors, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
		}

		if strings.TrimSpace(c.GeminiAPIKey) == "" {
			errors = append(errors, "GEMINI_API_KEY is required")
		}
		if c.ExtractTimeout < time.Second {
			errors = append(errors, fmt.Sprintf("invalid extract timeout %v: must be at least 1 second", c.ExtractTimeout))
		}

		if c.SessionTTL < time.Minute {
			errors = append(errors, fmt.Sprintf("invalid session ttl %v: must be at least 1 minute", c.SessionTTL))
		} else if c.SessionTTL > 24*time.Hour {
			errors = append(errors, fmt.Sprintf("invalid session ttl %v: must be at most 24 hours", c.SessionTTL))
		}
		if c.SessionMaxEntries < 1 {
			errors = append(errors, fmt.Sprintf("invalid session max entries %d: must be at least 1", c.SessionMaxEntries))
		}
		if c.SessionCleanupInterval < time.Second {
			errors = append(errors, fmt.Sprintf("invalid session cleanup interval %v: must be at least 1 second", c.SessionCleanupInterval))
		}
		if strings.TrimSpace(c.DemoUserID) == "" {
			errors = append(errors, "demo user id cannot be empty")
		}
		if c.RateLimitPerMinute < 1 {
			errors = append(errors, fmt.Sprintf("invalid rate limit %d: must be at least 1 request per minute", c.RateLimitPerMinute))
		}
	}

	if c.SQLiteDBPath == "" {
		errors = append(errors, "SQLite database path cannot be empty")
	} else {
		dir := filepath.Dir(c.SQLiteDBPath)
		if dir != "." && dir != "" {
			if _, err := os.Stat(dir); os.IsNotExist(err) {
				if err := os.MkdirAll(dir, 0755); err != nil {
					errors = append(errors, fmt.Sprintf("cannot create SQLite database directory '%s': %v", dir, err))
				}
			}
		}
	}

	if role == RoleWorker && c.AMQPURL == "" {
		errors = append(errors, "AMQP URL is required for the worker")
	}
	if c.AMQPURL != "" {
		if parsedURL, err := url.Parse(c.AMQPURL); err != nil {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if parsedURL.Scheme != "amqp" && parsedURL.Scheme != "amqps" {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsedURL.Scheme))
		}
		if c.AMQPExchange == "" {
			errors = append(errors, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
		if c.AMQPQueue == "" {
			errors = append(errors, "AMQP queue name cannot be empty when AMQP URL is provided")
		}
	}

	if role == RoleWorker {
		if c.GoogleSpreadsheetID == "" {
			errors = append(errors, "Google Spreadsheet ID is required for the worker")
		}
		if c.GoogleSheetName == "" {
			errors = append(errors, "Google Sheet name is required for the worker")
		}
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}

	return nil
}

// PublishEnabled reports whether saved transactions should be announced on AMQP.
func (c *Config) PublishEnabled() bool {
	return c.AMQPURL != ""
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
