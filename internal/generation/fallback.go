package generation

import (
	"context"
	"log/slog"
)

// fallbackGenerator wraps two Generators. It calls the primary first; if that
// fails for a reason the secondary could fix (launch, output, timeout,
// unavailable) it logs the failure and tries the secondary. A
// generator-reported error is a real answer and is returned as is.
type fallbackGenerator struct {
	primary   Generator
	secondary Generator
	logger    *slog.Logger
}

// NewFallbackGenerator returns a Generator that calls primary and, on
// failure, falls back to secondary. If primary is nil it goes straight to
// secondary; if secondary is nil the primary's result is returned unchanged.
func NewFallbackGenerator(primary, secondary Generator, logger *slog.Logger) Generator {
	return &fallbackGenerator{
		primary:   primary,
		secondary: secondary,
		logger:    logger,
	}
}

func (f *fallbackGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	if f.primary != nil {
		text, err := f.primary.Generate(ctx, prompt)
		if err == nil || f.secondary == nil || authoritative(err) || ctx.Err() != nil {
			return text, err
		}
		f.logger.Warn("generation: primary generator failed, trying secondary",
			"error", err,
			"kind", KindOf(err),
		)
	}

	return f.secondary.Generate(ctx, prompt)
}
