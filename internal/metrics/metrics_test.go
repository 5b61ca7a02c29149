package metrics_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/nyashahama/investgpt-backend/internal/generation"
	"github.com/nyashahama/investgpt-backend/internal/metrics"
)

func TestInstrumentGenerator_CountsByKind(t *testing.T) {
	m := metrics.New()

	ok := m.InstrumentGenerator(generation.GeneratorFunc(func(context.Context, string) (string, error) {
		return "fine", nil
	}))
	bad := m.InstrumentGenerator(generation.GeneratorFunc(func(context.Context, string) (string, error) {
		return "", &generation.Error{Kind: generation.ErrOutput, Reason: generation.ReasonNoStructuredOutput}
	}))

	if text, err := ok.Generate(context.Background(), "p"); err != nil || text != "fine" {
		t.Fatalf("passthrough broken: %q, %v", text, err)
	}
	_, _ = ok.Generate(context.Background(), "p")
	if _, err := bad.Generate(context.Background(), "p"); !errors.Is(err, generation.ErrOutput) {
		t.Fatalf("error not passed through: %v", err)
	}

	expected := `
# HELP investgpt_generation_outcomes_total Generation outcomes by kind (ok, launch, output, generator, timeout, canceled, unavailable).
# TYPE investgpt_generation_outcomes_total counter
investgpt_generation_outcomes_total{kind="ok"} 2
investgpt_generation_outcomes_total{kind="output"} 1
`
	if err := testutil.GatherAndCompare(m.Registry(), strings.NewReader(expected), "investgpt_generation_outcomes_total"); err != nil {
		t.Error(err)
	}
}

func TestMiddleware_LabelsByRoutePattern(t *testing.T) {
	m := metrics.New()

	r := chi.NewRouter()
	r.Use(m.Middleware)
	r.Get("/api/generations/{id}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	for _, id := range []string{"a", "b", "c"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/generations/"+id, nil))
	}

	expected := `
# HELP investgpt_http_requests_total Total HTTP requests processed.
# TYPE investgpt_http_requests_total counter
investgpt_http_requests_total{method="GET",route="/api/generations/{id}",status="404"} 3
`
	if err := testutil.GatherAndCompare(m.Registry(), strings.NewReader(expected), "investgpt_http_requests_total"); err != nil {
		t.Error(err)
	}
}

func TestHandler_ServesExposition(t *testing.T) {
	m := metrics.New()
	m.RateLimited()

	rr := httptest.NewRecorder()
	m.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "investgpt_http_rate_limited_total 1") {
		t.Errorf("rate limit counter missing from exposition:\n%s", rr.Body.String())
	}
}
