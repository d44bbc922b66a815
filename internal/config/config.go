package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"caja/internal/core"
)

type Config struct {
	// HTTP Server
	Port string

	// Transaction backend
	BackendBaseURL string

	// Reports
	ReportsDir     string
	RegistryDBPath string
	IVAPercent     decimal.Decimal

	// AMQP (optional; empty URL disables async receipts)
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Worker service credentials for fetching records to render
	WorkerToken  string
	WorkerTenant string

	// Defaults and caching
	DefaultAccount core.Account
	CacheTTL       time.Duration
	CacheSize      int
}

func Load() *Config {
	return &Config{
		Port: getEnv("PORT", "8081"),

		BackendBaseURL: getEnv("BACKEND_BASE_URL", "http://localhost:3000/api"),

		ReportsDir:     getEnv("REPORTS_DIR", "./data/reportes"),
		RegistryDBPath: getEnv("REGISTRY_DB_PATH", "./data/caja.db"),
		IVAPercent:     getEnvDecimal("IVA_PERCENT", decimal.Zero),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "caja"),
		AMQPQueue:    getEnv("AMQP_QUEUE", "recibos"),

		WorkerToken:  getEnv("WORKER_TOKEN", ""),
		WorkerTenant: getEnv("WORKER_TENANT", ""),

		DefaultAccount: core.Account(getEnv("DEFAULT_ACCOUNT", string(core.AccountEfectivo))),
		CacheTTL:       getEnvDuration("CACHE_TTL", 5*time.Minute),
		CacheSize:      getEnvInt("CACHE_SIZE", 100),
	}
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errs []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		errs = append(errs, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errs = append(errs, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	if parsed, err := url.Parse(c.BackendBaseURL); err != nil {
		errs = append(errs, fmt.Sprintf("invalid backend base URL '%s': %v", c.BackendBaseURL, err))
	} else if parsed.Scheme != "http" && parsed.Scheme != "https" {
		errs = append(errs, fmt.Sprintf("invalid backend base URL scheme '%s': must be http or https", parsed.Scheme))
	}

	if c.ReportsDir == "" {
		errs = append(errs, "reports directory cannot be empty")
	} else if err := ensureDir(c.ReportsDir); err != nil {
		errs = append(errs, fmt.Sprintf("cannot create reports directory '%s': %v", c.ReportsDir, err))
	}

	if c.RegistryDBPath == "" {
		errs = append(errs, "registry database path cannot be empty")
	} else if err := ensureDir(filepath.Dir(c.RegistryDBPath)); err != nil {
		errs = append(errs, fmt.Sprintf("cannot create registry directory '%s': %v", filepath.Dir(c.RegistryDBPath), err))
	}

	if c.IVAPercent.IsNegative() || c.IVAPercent.GreaterThan(decimal.NewFromInt(100)) {
		errs = append(errs, fmt.Sprintf("invalid IVA percent %s: must be between 0 and 100", c.IVAPercent))
	}

	if c.AMQPURL != "" {
		if parsed, err := url.Parse(c.AMQPURL); err != nil {
			errs = append(errs, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if parsed.Scheme != "amqp" && parsed.Scheme != "amqps" {
			errs = append(errs, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsed.Scheme))
		}
		if c.AMQPExchange == "" {
			errs = append(errs, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
		if c.AMQPQueue == "" {
			errs = append(errs, "AMQP queue name cannot be empty when AMQP URL is provided")
		}
	}

	if !c.DefaultAccount.Valid() {
		errs = append(errs, fmt.Sprintf("invalid default account '%s': must be one of %v", c.DefaultAccount, core.Accounts))
	}

	if c.CacheTTL < time.Second {
		errs = append(errs, fmt.Sprintf("invalid cache TTL %v: must be at least 1 second", c.CacheTTL))
	}
	if c.CacheSize < 1 {
		errs = append(errs, fmt.Sprintf("invalid cache size %d: must be at least 1", c.CacheSize))
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errs, "\n- "))
	}
	return nil
}

func ensureDir(dir string) error {
	if dir == "." || dir == "" {
		return nil
	}
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return os.MkdirAll(dir, 0755)
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

func getEnvDecimal(key string, defaultValue decimal.Decimal) decimal.Decimal {
	if value := os.Getenv(key); value != "" {
		if d, err := decimal.NewFromString(value); err == nil {
			return d
		}
	}
	return defaultValue
}
