// Package generation runs prompts through a text generator and classifies the
// outcome. The api package depends only on the Generator interface; the
// concrete implementations are the out-of-process ProcessGenerator and the
// decorators in this package (fallback, circuit breaker, concurrency limit).
package generation

import (
	"context"
	"errors"
)

// Generator produces a recommendation for a prompt. A nil error is a success
// carrying the generated text; a non-nil error is a failure whose Error()
// string is the reason shown to the caller.
//
// Implementations must be safe to call concurrently.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// GeneratorFunc adapts a plain function to the Generator interface.
type GeneratorFunc func(ctx context.Context, prompt string) (string, error)

func (f GeneratorFunc) Generate(ctx context.Context, prompt string) (string, error) {
	return f(ctx, prompt)
}

// ─── FAILURE KINDS ────────────────────────────────────────────────────────────

// Failure kinds. Test with errors.Is.
var (
	// ErrLaunch: the generator could not be started or did not run to a
	// normal exit.
	ErrLaunch = errors.New("launch")
	// ErrOutput: the generator exited without a usable structured result.
	ErrOutput = errors.New("output")
	// ErrGenerator: the generator itself reported an error.
	ErrGenerator = errors.New("generator")
	// ErrTimeout: the generation deadline passed before the process exited.
	ErrTimeout = errors.New("timeout")
	// ErrCanceled: the caller went away before the process exited.
	ErrCanceled = errors.New("canceled")
	// ErrUnavailable: the generator is being shed (open circuit breaker).
	ErrUnavailable = errors.New("unavailable")
)

// Fixed failure reasons.
const (
	ReasonNoStructuredOutput = "no valid structured output produced"
	ReasonEmptyMessage       = "generator response contained neither result nor error"
	ReasonTimeout            = "generation timed out"
	ReasonCanceled           = "generation canceled"
	ReasonUnavailable        = "generator temporarily unavailable"
)

// Error is a classified generation failure. Error() returns only the reason,
// so it can be surfaced to callers as is.
type Error struct {
	Kind   error
	Reason string
	Err    error
}

func (e *Error) Error() string { return e.Reason }

// Unwrap exposes both the kind and the underlying cause to errors.Is/As.
func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

func newError(kind error, reason string, cause error) *Error {
	return &Error{Kind: kind, Reason: reason, Err: cause}
}

// contextError classifies a finished context.
func contextError(ctx context.Context) *Error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return newError(ErrTimeout, ReasonTimeout, ctx.Err())
	}
	return newError(ErrCanceled, ReasonCanceled, ctx.Err())
}

// KindOf returns a short label for err, used for metrics and the history
// store: "ok" for nil, the kind name for classified errors, "internal" for
// anything else.
func KindOf(err error) string {
	if err == nil {
		return "ok"
	}
	for _, k := range []error{ErrLaunch, ErrOutput, ErrGenerator, ErrTimeout, ErrCanceled, ErrUnavailable} {
		if errors.Is(err, k) {
			return k.Error()
		}
	}
	return "internal"
}

// authoritative reports whether err is a definitive answer that must not be
// retried elsewhere or counted against generator health.
func authoritative(err error) bool {
	return errors.Is(err, ErrGenerator) || errors.Is(err, ErrCanceled)
}
