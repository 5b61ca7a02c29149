package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sqlc-dev/pqtype"
)

// ─── TYPES ────────────────────────────────────────────────────────────────────

// Generation is one persisted generation attempt. Exactly one of Result and
// Error is set.
type Generation struct {
	ID         uuid.UUID       `json:"id"`
	Prompt     string          `json:"prompt"`
	Inputs     json.RawMessage `json:"inputs,omitempty"`
	Result     string          `json:"result,omitempty"`
	Error      string          `json:"error,omitempty"`
	Kind       string          `json:"kind"`
	DurationMS int64           `json:"durationMs"`
	CreatedAt  time.Time       `json:"createdAt"`
}

// RecordParams is what the api hands over after a generation finishes.
type RecordParams struct {
	ID       uuid.UUID
	Prompt   string
	Inputs   any // marshalled to JSONB when non-nil
	Result   string
	Err      error
	Kind     string
	Duration time.Duration
}

// Recorder is the narrow interface the api package uses. *Store and Nop
// satisfy it.
type Recorder interface {
	RecordGeneration(ctx context.Context, p RecordParams) error
	GetGeneration(ctx context.Context, id uuid.UUID) (Generation, error)
}

// ErrNotFound is returned by GetGeneration for unknown IDs.
var ErrNotFound = errors.New("store: generation not found")

// ─── METHODS ──────────────────────────────────────────────────────────────────

const insertGeneration = `
INSERT INTO generations (id, prompt, inputs, result, error, kind, duration_ms)
VALUES ($1, $2, $3, $4, $5, $6, $7)`

// RecordGeneration inserts one history row.
func (s *Store) RecordGeneration(ctx context.Context, p RecordParams) error {
	inputs := pqtype.NullRawMessage{}
	if p.Inputs != nil {
		raw, err := json.Marshal(p.Inputs)
		if err != nil {
			return fmt.Errorf("RecordGeneration: marshal inputs: %w", err)
		}
		inputs = pqtype.NullRawMessage{RawMessage: raw, Valid: true}
	}

	result := sql.NullString{String: p.Result, Valid: p.Err == nil}
	errMsg := sql.NullString{}
	if p.Err != nil {
		errMsg = sql.NullString{String: p.Err.Error(), Valid: true}
	}

	if _, err := s.pool.ExecContext(ctx, insertGeneration,
		p.ID, p.Prompt, inputs, result, errMsg, p.Kind, p.Duration.Milliseconds(),
	); err != nil {
		return fmt.Errorf("RecordGeneration: insert %s: %w", p.ID, err)
	}
	return nil
}

const selectGeneration = `
SELECT id, prompt, inputs, result, error, kind, duration_ms, created_at
FROM generations
WHERE id = $1`

// GetGeneration loads one history row.
func (s *Store) GetGeneration(ctx context.Context, id uuid.UUID) (Generation, error) {
	var (
		g      Generation
		inputs pqtype.NullRawMessage
		result sql.NullString
		errMsg sql.NullString
	)
	err := s.pool.QueryRowContext(ctx, selectGeneration, id).Scan(
		&g.ID, &g.Prompt, &inputs, &result, &errMsg, &g.Kind, &g.DurationMS, &g.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return Generation{}, ErrNotFound
	}
	if err != nil {
		return Generation{}, fmt.Errorf("GetGeneration: %w", err)
	}

	if inputs.Valid {
		g.Inputs = inputs.RawMessage
	}
	g.Result = result.String
	g.Error = errMsg.String
	return g, nil
}

// ─── NOP ──────────────────────────────────────────────────────────────────────

// Nop is the Recorder used when no database is configured.
type Nop struct{}

func (Nop) RecordGeneration(context.Context, RecordParams) error { return nil }

func (Nop) GetGeneration(context.Context, uuid.UUID) (Generation, error) {
	return Generation{}, ErrNotFound
}
