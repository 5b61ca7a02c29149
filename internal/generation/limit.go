package generation

import (
	"context"

	"golang.org/x/sync/semaphore"
)

// limitedGenerator caps how many generations run at once. Callers beyond the
// cap wait for a slot until their context ends.
type limitedGenerator struct {
	next Generator
	sem  *semaphore.Weighted
}

// NewLimitedGenerator wraps next so that at most max calls run concurrently.
// A max of zero or less returns next unchanged.
func NewLimitedGenerator(next Generator, max int) Generator {
	if max <= 0 {
		return next
	}
	return &limitedGenerator{next: next, sem: semaphore.NewWeighted(int64(max))}
}

func (l *limitedGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	if err := l.sem.Acquire(ctx, 1); err != nil {
		return "", contextError(ctx)
	}
	defer l.sem.Release(1)
	return l.next.Generate(ctx, prompt)
}
