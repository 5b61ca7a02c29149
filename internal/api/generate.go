package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/nyashahama/investgpt-backend/internal/generation"
	"github.com/nyashahama/investgpt-backend/internal/store"
)

// historyTimeout bounds the history insert that follows every generation.
const historyTimeout = 5 * time.Second

const msgPromptRequired = "Prompt is required."

// ─── RESPONSE TYPES ───────────────────────────────────────────────────────────

// generateResponse is the success payload. Failures use the error envelope;
// a response never carries both keys.
type generateResponse struct {
	Result string `json:"result"`
}

// ─── POST /api/generate ───────────────────────────────────────────────────────

// handleGenerate runs the generator on a caller-supplied prompt.
//
// Body: {"prompt": "<non-empty string>"}
// Returns 200 {"result": ...}, 400 when the prompt is missing, not a string or
// blank, and 500 {"error": <reason>} when generation fails.
func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	prompt, ok := readPrompt(w, r)
	if !ok {
		respondErr(w, http.StatusBadRequest, msgPromptRequired)
		return
	}

	text, err := s.generate(w, r, prompt, nil)
	if err != nil {
		respondErr(w, http.StatusInternalServerError, err.Error())
		return
	}

	respond(w, http.StatusOK, generateResponse{Result: text})
}

// readPrompt extracts body.prompt. Anything other than a JSON object with a
// non-blank string "prompt" is reported as a missing prompt; the generator is
// never started for such a request.
func readPrompt(w http.ResponseWriter, r *http.Request) (string, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	var body map[string]json.RawMessage
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		return "", false
	}
	raw, ok := body["prompt"]
	if !ok {
		return "", false
	}

	var prompt string
	if err := json.Unmarshal(raw, &prompt); err != nil {
		return "", false
	}
	if strings.TrimSpace(prompt) == "" {
		return "", false
	}
	return prompt, true
}

// ─── SHARED GENERATION PATH ───────────────────────────────────────────────────

// generate runs one generation for the request, sets X-Generation-ID and
// records the attempt in history. inputs is stored alongside the prompt when
// non-nil. The returned error's message is the failure reason to show the
// caller.
func (s *Server) generate(w http.ResponseWriter, r *http.Request, prompt string, inputs any) (string, error) {
	id := uuid.New()
	w.Header().Set("X-Generation-ID", id.String())

	start := time.Now()
	text, err := s.generator.Generate(r.Context(), prompt)
	elapsed := time.Since(start)
	kind := generation.KindOf(err)

	if err != nil {
		s.logger.Warn("generation failed",
			"generation_id", id,
			"kind", kind,
			"error", err,
			"duration_ms", elapsed.Milliseconds(),
			logField(r),
		)
	} else {
		s.logger.Info("generation complete",
			"generation_id", id,
			"duration_ms", elapsed.Milliseconds(),
			logField(r),
		)
	}

	// Record even when the client has gone away.
	ctx, cancel := context.WithTimeout(context.WithoutCancel(r.Context()), historyTimeout)
	defer cancel()
	if recErr := s.history.RecordGeneration(ctx, store.RecordParams{
		ID:       id,
		Prompt:   prompt,
		Inputs:   inputs,
		Result:   text,
		Err:      err,
		Kind:     kind,
		Duration: elapsed,
	}); recErr != nil {
		s.logger.Error("record generation failed",
			"generation_id", id,
			"error", recErr,
			logField(r),
		)
	}

	return text, err
}
