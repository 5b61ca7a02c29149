// Package config loads and validates all environment variables at startup.
// Every other package receives typed values; nothing reads os.Getenv directly.
package config

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config is the fully-parsed application configuration.
type Config struct {
	// ── Server ────────────────────────────────────────────────────────────────
	Port       string // default "8080"
	Env        string // "development" | "staging" | "production"
	LogLevel   string // "debug" | "info" | "warn" | "error"; empty = per Env
	CORSOrigin string // allowed browser origin in production, e.g. "https://investgpt.app"

	// ── Generator ─────────────────────────────────────────────────────────────
	// GeneratorCommand is split on whitespace into argv, e.g.
	// "python3 scripts/generate.py".
	GeneratorCommand         string
	GeneratorDir             string // working directory for the generator; empty = cwd
	GeneratorFallbackCommand string // optional secondary generator
	GenerationTimeout        time.Duration
	MaxConcurrentGenerations int

	// ── Circuit breaker ───────────────────────────────────────────────────────
	BreakerEnabled      bool
	BreakerFailureRatio float64
	BreakerMinRequests  int
	BreakerOpenTimeout  time.Duration

	// ── Rate limiting ─────────────────────────────────────────────────────────
	// REDIS_ADDR is optional; without it the limiter is per-process.
	RedisAddr       string
	RateLimit       int // requests per window per client; 0 disables
	RateLimitWindow time.Duration

	// ── Database ──────────────────────────────────────────────────────────────
	// Optional. When set, every generation is recorded in Postgres.
	DatabaseURL string
}

// Load reads all environment variables and returns a validated Config.
// It automatically loads a .env file from the working directory when present,
// so plain `go run ./cmd/api` works in development without any wrapper.
// Real environment variables always take precedence over .env values.
func Load() (*Config, error) {
	loadDotEnv(".env")

	c := &Config{
		Port:                     getEnv("PORT", "8080"),
		Env:                      getEnv("ENV", "development"),
		LogLevel:                 os.Getenv("LOG_LEVEL"),
		CORSOrigin:               os.Getenv("CORS_ORIGIN"),
		GeneratorCommand:         getEnv("GENERATOR_COMMAND", "python3 scripts/generate.py"),
		GeneratorDir:             os.Getenv("GENERATOR_DIR"),
		GeneratorFallbackCommand: os.Getenv("GENERATOR_FALLBACK_COMMAND"),
		GenerationTimeout:        getEnvAsDuration("GENERATION_TIMEOUT", 2*time.Minute),
		MaxConcurrentGenerations: getEnvAsInt("MAX_CONCURRENT_GENERATIONS", 4),
		BreakerEnabled:           getEnvAsBool("BREAKER_ENABLED", false),
		BreakerFailureRatio:      getEnvAsFloat("BREAKER_FAILURE_RATIO", 0.6),
		BreakerMinRequests:       getEnvAsInt("BREAKER_MIN_REQUESTS", 5),
		BreakerOpenTimeout:       getEnvAsDuration("BREAKER_OPEN_TIMEOUT", 30*time.Second),
		RedisAddr:                os.Getenv("REDIS_ADDR"),
		RateLimit:                getEnvAsInt("RATE_LIMIT", 10),
		RateLimitWindow:          getEnvAsDuration("RATE_LIMIT_WINDOW", time.Minute),
		DatabaseURL:              os.Getenv("DATABASE_URL"),
	}

	return c, c.validate()
}

// GeneratorArgv splits GeneratorCommand into an argv slice.
func (c *Config) GeneratorArgv() []string { return strings.Fields(c.GeneratorCommand) }

// FallbackArgv splits GeneratorFallbackCommand; nil when unset or blank.
func (c *Config) FallbackArgv() []string {
	argv := strings.Fields(c.GeneratorFallbackCommand)
	if len(argv) == 0 {
		return nil
	}
	return argv
}

func (c *Config) validate() error {
	var errs []error

	if len(c.GeneratorArgv()) == 0 {
		errs = append(errs, errors.New("GENERATOR_COMMAND must not be blank"))
	}

	switch c.Env {
	case "development", "staging", "production":
	default:
		errs = append(errs, fmt.Errorf("ENV must be development, staging or production, got %q", c.Env))
	}

	if c.GenerationTimeout <= 0 {
		errs = append(errs, errors.New("GENERATION_TIMEOUT must be positive"))
	}
	if c.MaxConcurrentGenerations < 0 {
		errs = append(errs, errors.New("MAX_CONCURRENT_GENERATIONS must not be negative"))
	}
	if c.RateLimit < 0 {
		errs = append(errs, errors.New("RATE_LIMIT must not be negative"))
	}
	if c.RateLimit > 0 && c.RateLimitWindow <= 0 {
		errs = append(errs, errors.New("RATE_LIMIT_WINDOW must be positive when RATE_LIMIT is set"))
	}
	if c.BreakerEnabled && (c.BreakerFailureRatio <= 0 || c.BreakerFailureRatio > 1) {
		errs = append(errs, fmt.Errorf("BREAKER_FAILURE_RATIO must be in (0, 1], got %v", c.BreakerFailureRatio))
	}

	return errors.Join(errs...)
}

// ─── DOT-ENV LOADER ──────────────────────────────────────────────────────────

// loadDotEnv reads key=value pairs from path and sets them in the environment,
// but only for keys that are not already set. This means real env vars (e.g.
// from Docker / Railway / your shell) always win over the file.
// Missing file, blank lines, and #-comments are all silently ignored.
func loadDotEnv(path string) {
	f, err := os.Open(path)
	if err != nil {
		return // file absent, that's fine
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)
		// Strip optional surrounding quotes: KEY="value" or KEY='value'
		if len(value) >= 2 {
			if (value[0] == '"' && value[len(value)-1] == '"') ||
				(value[0] == '\'' && value[len(value)-1] == '\'') {
				value = value[1 : len(value)-1]
			}
		}
		// Only set if the key isn't already present in the environment.
		if os.Getenv(key) == "" {
			_ = os.Setenv(key, value)
		}
	}
}

// ─── HELPERS ─────────────────────────────────────────────────────────────────

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	// Try a plain integer first (treated as seconds, minutes, or hours
	// depending on the variable name).
	if value, err := strconv.Atoi(valueStr); err == nil {
		switch {
		case strings.Contains(key, "HOURS"):
			return time.Duration(value) * time.Hour
		case strings.Contains(key, "MINUTES"):
			return time.Duration(value) * time.Minute
		default:
			return time.Duration(value) * time.Second
		}
	}
	// Fall back to Go duration syntax: "30s", "5m", "1h", etc.
	if duration, err := time.ParseDuration(valueStr); err == nil {
		return duration
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value, err := strconv.ParseFloat(os.Getenv(key), 64); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
