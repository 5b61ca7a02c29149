package generation

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/sony/gobreaker/v2"
)

// BreakerConfig tunes the circuit breaker around a Generator.
type BreakerConfig struct {
	// MinRequests is the number of calls in the current window before the
	// failure ratio is considered. Default: 5.
	MinRequests uint32
	// FailureRatio trips the breaker when reached. Default: 0.6.
	FailureRatio float64
	// OpenTimeout is how long the breaker stays open. Default: 30s.
	OpenTimeout time.Duration
	// HalfOpenMaxCalls is the number of probes allowed while half-open.
	// Default: 1.
	HalfOpenMaxCalls uint32
}

func (c BreakerConfig) normalize() BreakerConfig {
	if c.MinRequests == 0 {
		c.MinRequests = 5
	}
	if c.FailureRatio <= 0 || c.FailureRatio > 1 {
		c.FailureRatio = 0.6
	}
	if c.OpenTimeout <= 0 {
		c.OpenTimeout = 30 * time.Second
	}
	if c.HalfOpenMaxCalls == 0 {
		c.HalfOpenMaxCalls = 1
	}
	return c
}

// breakerGenerator sheds load from a generator that keeps failing to start or
// to produce output. Generator-reported errors and caller cancellations do
// not count as failures.
type breakerGenerator struct {
	next    Generator
	breaker *gobreaker.CircuitBreaker[string]
}

// NewBreakerGenerator wraps next in a circuit breaker.
func NewBreakerGenerator(next Generator, cfg BreakerConfig, logger *slog.Logger) Generator {
	cfg = cfg.normalize()
	settings := gobreaker.Settings{
		Name:        "generator",
		MaxRequests: cfg.HalfOpenMaxCalls,
		Timeout:     cfg.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < cfg.MinRequests {
				return false
			}
			return float64(counts.TotalFailures)/float64(counts.Requests) >= cfg.FailureRatio
		},
		IsSuccessful: func(err error) bool {
			return err == nil || authoritative(err)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("generation: circuit breaker state change",
				"breaker", name,
				"from", from.String(),
				"to", to.String(),
			)
		},
	}
	return &breakerGenerator{
		next:    next,
		breaker: gobreaker.NewCircuitBreaker[string](settings),
	}
}

func (b *breakerGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	text, err := b.breaker.Execute(func() (string, error) {
		return b.next.Generate(ctx, prompt)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return "", newError(ErrUnavailable, ReasonUnavailable, err)
	}
	return text, err
}
