package generation_test

import (
	"errors"
	"testing"

	"github.com/nyashahama/investgpt-backend/internal/generation"
)

func TestParseOutput_SkipsNoiseBeforeResult(t *testing.T) {
	text, err := generation.ParseOutput([]byte("noise line\n{\"result\":\"ok\"}\n"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text != "ok" {
		t.Errorf("got %q, want ok", text)
	}
}

func TestParseOutput_LastStructuredLineWins(t *testing.T) {
	out := "{\"result\":\"first\"}\nLoading model...\n{\"result\":\"second\"}\ntrailing log\n\n"
	text, err := generation.ParseOutput([]byte(out))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text != "second" {
		t.Errorf("got %q, want second", text)
	}
}

func TestParseOutput_NonObjectJSONAfterResultIsSkipped(t *testing.T) {
	for _, tail := range []string{"[1,2]", "42", "null"} {
		text, err := generation.ParseOutput([]byte("{\"result\":\"ok\"}\n" + tail + "\n"))
		if err != nil || text != "ok" {
			t.Errorf("tail %s: got %q, %v", tail, text, err)
		}
	}
}

func TestParseOutput_GeneratorErrorVerbatim(t *testing.T) {
	_, err := generation.ParseOutput([]byte("{\"error\":\"Failed to load model: boom\"}\n"))
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, generation.ErrGenerator) {
		t.Errorf("expected ErrGenerator, got %v", err)
	}
	if err.Error() != "Failed to load model: boom" {
		t.Errorf("reason not verbatim: %q", err.Error())
	}
}

func TestParseOutput_ErrorWinsOverResult(t *testing.T) {
	_, err := generation.ParseOutput([]byte(`{"result":"x","error":"bad"}`))
	if !errors.Is(err, generation.ErrGenerator) {
		t.Fatalf("expected ErrGenerator, got %v", err)
	}
}

func TestParseOutput_NoStructuredOutput(t *testing.T) {
	cases := map[string]string{
		"empty":       "",
		"plain text":  "hello\nworld\n",
		"broken json": "{\"result\": \n",
		"scalars":     "42\n\"text\"\nnull\n",
	}
	for name, out := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := generation.ParseOutput([]byte(out))
			if !errors.Is(err, generation.ErrOutput) {
				t.Fatalf("expected ErrOutput, got %v", err)
			}
			if err.Error() != generation.ReasonNoStructuredOutput {
				t.Errorf("reason: got %q", err.Error())
			}
		})
	}
}

func TestParseOutput_ObjectWithoutResultOrError(t *testing.T) {
	_, err := generation.ParseOutput([]byte("{\"status\":\"done\"}\n"))
	if !errors.Is(err, generation.ErrOutput) {
		t.Fatalf("expected ErrOutput, got %v", err)
	}
	if err.Error() != generation.ReasonEmptyMessage {
		t.Errorf("reason: got %q", err.Error())
	}
}

func TestParseOutput_CRLFLines(t *testing.T) {
	text, err := generation.ParseOutput([]byte("log\r\n{\"result\":\"ok\"}\r\n"))
	if err != nil || text != "ok" {
		t.Fatalf("got %q, %v", text, err)
	}
}

func TestKindOf(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{nil, "ok"},
		{&generation.Error{Kind: generation.ErrLaunch, Reason: "x"}, "launch"},
		{&generation.Error{Kind: generation.ErrTimeout, Reason: "x"}, "timeout"},
		{errors.New("something else"), "internal"},
	}
	for _, tt := range tests {
		if got := generation.KindOf(tt.err); got != tt.want {
			t.Errorf("KindOf(%v) = %q, want %q", tt.err, got, tt.want)
		}
	}
}
