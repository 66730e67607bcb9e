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
	// Session store backend
	KVBackend    string
	SQLiteDBPath string

	// Redis (kv backend "redis")
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// AMQP (optional ledger event feed)
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Session
	LoginDelay time.Duration
	DemoEmail  string

	// Mock data generation
	MockExpenseCount int
	MockSeed         int64

	// Worker
	ReportInterval time.Duration
}

func Load() *Config {
	return &Config{
		KVBackend:    getEnv("KV_BACKEND", "memory"),
		SQLiteDBPath: getEnv("SQLITE_DB_PATH", "./data/tally.db"),

		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "tally"),
		AMQPQueue:    getEnv("AMQP_QUEUE", "ledger_events"),

		LoginDelay: getEnvDuration("LOGIN_DELAY", time.Second),
		DemoEmail:  getEnv("DEMO_EMAIL", "demo@demo.com"),

		MockExpenseCount: getEnvInt("MOCK_EXPENSE_COUNT", 50),
		MockSeed:         getEnvInt64("MOCK_SEED", 0),

		ReportInterval: getEnvDuration("REPORT_INTERVAL", 30*time.Second),
	}
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errors []string

	validBackends := []string{"memory", "sqlite", "redis"}
	isValidBackend := false
	for _, backend := range validBackends {
		if c.KVBackend == backend {
			isValidBackend = true
			break
		}
	}
	if !isValidBackend {
		errors = append(errors, fmt.Sprintf("invalid kv backend '%s': must be one of %v", c.KVBackend, validBackends))
	}

	if c.KVBackend == "sqlite" {
		if c.SQLiteDBPath == "" {
			errors = append(errors, "sqlite database path cannot be empty when using sqlite backend")
		} else {
			dir := filepath.Dir(c.SQLiteDBPath)
			if dir != "." && dir != "" {
				if _, err := os.Stat(dir); os.IsNotExist(err) {
					if err := os.MkdirAll(dir, 0755); err != nil {
						errors = append(errors, fmt.Sprintf("cannot create sqlite database directory '%s': %v", dir, err))
					}
				}
			}
		}
	}

	if c.KVBackend == "redis" {
		if c.RedisAddr == "" {
			errors = append(errors, "redis address cannot be empty when using redis backend")
		}
		if c.RedisDB < 0 || c.RedisDB > 15 {
			errors = append(errors, fmt.Sprintf("invalid redis db %d: must be between 0 and 15", c.RedisDB))
		}
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

	if c.LoginDelay < 0 {
		errors = append(errors, fmt.Sprintf("invalid login delay %v: must not be negative", c.LoginDelay))
	} else if c.LoginDelay > 30*time.Second {
		errors = append(errors, fmt.Sprintf("invalid login delay %v: must be at most 30 seconds", c.LoginDelay))
	}

	if !strings.Contains(c.DemoEmail, "@") {
		errors = append(errors, fmt.Sprintf("invalid demo email '%s'", c.DemoEmail))
	}

	if c.MockExpenseCount < 1 {
		errors = append(errors, fmt.Sprintf("invalid mock expense count %d: must be at least 1", c.MockExpenseCount))
	} else if c.MockExpenseCount > 1000 {
		errors = append(errors, fmt.Sprintf("invalid mock expense count %d: must be at most 1000", c.MockExpenseCount))
	}

	if c.ReportInterval < time.Second {
		errors = append(errors, fmt.Sprintf("invalid report interval %v: must be at least 1 second", c.ReportInterval))
	} else if c.ReportInterval > 24*time.Hour {
		errors = append(errors, fmt.Sprintf("invalid report interval %v: must be at most 24 hours", c.ReportInterval))
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

func getEnvInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.ParseInt(value, 10, 64); err == nil {
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
