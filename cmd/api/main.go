package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nyashahama/investgpt-backend/internal/api"
	"github.com/nyashahama/investgpt-backend/internal/config"
	"github.com/nyashahama/investgpt-backend/internal/generation"
	"github.com/nyashahama/investgpt-backend/internal/logging"
	"github.com/nyashahama/investgpt-backend/internal/metrics"
	"github.com/nyashahama/investgpt-backend/internal/ratelimit"
	"github.com/nyashahama/investgpt-backend/internal/store"
)

func main() {
	// ── Config ────────────────────────────────────────────────────────────────
	// Loaded before the logger so LOG_LEVEL and ENV from .env apply to it.
	cfg, err := config.Load()
	if err != nil {
		slog.Error("fatal", "error", fmt.Errorf("config: %w", err))
		os.Exit(1)
	}

	// ── Logger ────────────────────────────────────────────────────────────────
	// JSON in production, text in development.
	logger := logging.New(os.Stdout, cfg.Env, cfg.LogLevel)
	slog.SetDefault(logger)

	if err := run(cfg, logger); err != nil {
		logger.Error("fatal", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger) error {
	logger.Info("config loaded", "env", cfg.Env, "port", cfg.Port)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	m := metrics.New()

	// ── Generator ─────────────────────────────────────────────────────────────
	gen, err := buildGenerator(cfg, m, logger)
	if err != nil {
		return fmt.Errorf("generator: %w", err)
	}

	// ── History (optional) ────────────────────────────────────────────────────
	var history store.Recorder = store.Nop{}
	if cfg.DatabaseURL != "" {
		openCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		pool, err := store.Open(openCtx, cfg.DatabaseURL)
		if err != nil {
			cancel()
			return fmt.Errorf("database: %w", err)
		}
		defer pool.Close()

		st := store.New(pool)
		err = st.Migrate(openCtx)
		cancel()
		if err != nil {
			return fmt.Errorf("database: %w", err)
		}
		history = st
		logger.Info("database connected, recording generation history")
	}

	// ── Rate limiter ──────────────────────────────────────────────────────────
	limiter, closeLimiter, err := buildLimiter(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("rate limiter: %w", err)
	}
	defer closeLimiter()

	// ── HTTP + gRPC health ────────────────────────────────────────────────────
	handler := api.NewServer(
		gen,
		history,
		limiter,
		m,
		api.Config{
			Env:        cfg.Env,
			CORSOrigin: cfg.CORSOrigin,
		},
		logger,
	)

	return serve(ctx, cfg, handler, logger)
}

// buildGenerator assembles the decorator chain, innermost first:
// process -> fallback -> breaker -> concurrency cap -> metrics.
func buildGenerator(cfg *config.Config, m *metrics.Metrics, logger *slog.Logger) (generation.Generator, error) {
	primary, err := generation.NewProcessGenerator(generation.ProcessConfig{
		Command: cfg.GeneratorArgv(),
		Dir:     cfg.GeneratorDir,
		Timeout: cfg.GenerationTimeout,
	}, logger)
	if err != nil {
		return nil, err
	}
	var gen generation.Generator = primary
	logger.Info("generation: using process generator",
		"command", cfg.GeneratorCommand,
		"timeout", cfg.GenerationTimeout,
	)

	if argv := cfg.FallbackArgv(); len(argv) > 0 {
		secondary, err := generation.NewProcessGenerator(generation.ProcessConfig{
			Command: argv,
			Dir:     cfg.GeneratorDir,
			Timeout: cfg.GenerationTimeout,
		}, logger)
		if err != nil {
			return nil, fmt.Errorf("fallback: %w", err)
		}
		gen = generation.NewFallbackGenerator(gen, secondary, logger)
		logger.Info("generation: fallback generator enabled", "command", cfg.GeneratorFallbackCommand)
	}

	if cfg.BreakerEnabled {
		gen = generation.NewBreakerGenerator(gen, generation.BreakerConfig{
			MinRequests:  uint32(max(cfg.BreakerMinRequests, 0)),
			FailureRatio: cfg.BreakerFailureRatio,
			OpenTimeout:  cfg.BreakerOpenTimeout,
		}, logger)
		logger.Info("generation: circuit breaker enabled")
	}

	gen = generation.NewLimitedGenerator(gen, cfg.MaxConcurrentGenerations)
	return m.InstrumentGenerator(gen), nil
}

// buildLimiter returns nil when rate limiting is disabled. The returned close
// func is always safe to call.
func buildLimiter(ctx context.Context, cfg *config.Config, logger *slog.Logger) (ratelimit.Limiter, func(), error) {
	if cfg.RateLimit == 0 {
		logger.Info("rate limiting disabled")
		return nil, func() {}, nil
	}

	if cfg.RedisAddr != "" {
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		client, err := ratelimit.NewRedisClient(pingCtx, cfg.RedisAddr)
		if err != nil {
			return nil, nil, err
		}
		logger.Info("rate limiting via redis", "addr", cfg.RedisAddr,
			"limit", cfg.RateLimit, "window", cfg.RateLimitWindow)
		return ratelimit.NewRedisLimiter(client, cfg.RateLimit, cfg.RateLimitWindow),
			func() { _ = client.Close() }, nil
	}

	l := ratelimit.NewMemoryLimiter(cfg.RateLimit, cfg.RateLimitWindow)
	logger.Info("rate limiting in memory", "limit", cfg.RateLimit, "window", cfg.RateLimitWindow)
	return l, l.Stop, nil
}
