package generation

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os/exec"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// stderrTailBytes bounds how much of the generator's stderr is logged.
const stderrTailBytes = 512

// ProcessConfig describes how to launch the external generator.
type ProcessConfig struct {
	// Command is the argv of the generator, e.g. ["python3", "generate.py"].
	Command []string

	// Dir is the working directory. Empty means the server's.
	Dir string

	// Env replaces the environment when non-nil.
	Env []string

	// Timeout bounds a single generation. Zero means no deadline beyond the
	// caller's context.
	Timeout time.Duration

	// WaitDelay bounds how long to wait for output pipes to close once the
	// process has exited or been killed. Default: 5s.
	WaitDelay time.Duration
}

// ProcessGenerator starts one fresh generator process per call. It holds no
// per-request state, so a single value serves any number of concurrent
// requests.
type ProcessGenerator struct {
	cfg    ProcessConfig
	logger *slog.Logger
}

// NewProcessGenerator validates cfg and returns a ProcessGenerator.
func NewProcessGenerator(cfg ProcessConfig, logger *slog.Logger) (*ProcessGenerator, error) {
	if len(cfg.Command) == 0 || cfg.Command[0] == "" {
		return nil, errors.New("generation: command is required")
	}
	if cfg.WaitDelay <= 0 {
		cfg.WaitDelay = 5 * time.Second
	}
	return &ProcessGenerator{cfg: cfg, logger: logger}, nil
}

// Generate runs the generator once for prompt.
func (g *ProcessGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	if g.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.cfg.Timeout)
		defer cancel()
	}

	s := &session{
		id:     uuid.New(),
		cfg:    g.cfg,
		logger: g.logger,
	}
	return s.run(ctx, prompt)
}

// ─── SESSION ──────────────────────────────────────────────────────────────────

// session owns one generator process and its output buffers. It is created
// per call and discarded when the outcome is known.
type session struct {
	id     uuid.UUID
	cfg    ProcessConfig
	logger *slog.Logger

	stdout bytes.Buffer
	stderr bytes.Buffer
}

type request struct {
	Prompt string `json:"prompt"`
}

func (s *session) run(ctx context.Context, prompt string) (string, error) {
	log := s.logger.With("session_id", s.id)
	start := time.Now()

	payload, err := json.Marshal(request{Prompt: prompt})
	if err != nil {
		return "", fmt.Errorf("generation: marshal request: %w", err)
	}
	payload = append(payload, '\n')

	cmd := exec.CommandContext(ctx, s.cfg.Command[0], s.cfg.Command[1:]...)
	cmd.Dir = s.cfg.Dir
	cmd.Env = s.cfg.Env
	cmd.Stdout = &s.stdout
	cmd.Stderr = &s.stderr
	cmd.WaitDelay = s.cfg.WaitDelay

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return "", newError(ErrLaunch, err.Error(), err)
	}

	if err := cmd.Start(); err != nil {
		if ctx.Err() != nil {
			return "", contextError(ctx)
		}
		log.Warn("generation: process failed to start", "error", err)
		return "", newError(ErrLaunch, err.Error(), err)
	}
	log.Debug("generation: process started", "pid", cmd.Process.Pid)

	// The request write and the wait run side by side: a generator that exits
	// without reading its input must not block us on a full pipe.
	var eg errgroup.Group
	eg.Go(func() error {
		s.writeRequest(stdin, payload, log)
		return nil
	})
	eg.Go(cmd.Wait)
	waitErr := eg.Wait()

	exitCode := -1
	if cmd.ProcessState != nil {
		exitCode = cmd.ProcessState.ExitCode()
	}
	log.Debug("generation: process exited",
		"exit_code", exitCode,
		"stdout_bytes", s.stdout.Len(),
		"stderr_bytes", s.stderr.Len(),
		"duration_ms", time.Since(start).Milliseconds(),
	)

	if ctx.Err() != nil {
		return "", contextError(ctx)
	}

	var exitErr *exec.ExitError
	switch {
	case waitErr == nil:
	case errors.As(waitErr, &exitErr), errors.Is(waitErr, exec.ErrWaitDelay):
		// The generator prints its error message before exiting non-zero, so
		// the output is still authoritative.
		log.Warn("generation: process exited abnormally",
			"error", waitErr,
			"stderr", s.stderrTail(),
		)
	default:
		log.Warn("generation: process wait failed", "error", waitErr, "stderr", s.stderrTail())
		return "", newError(ErrLaunch, waitErr.Error(), waitErr)
	}

	text, err := ParseOutput(s.stdout.Bytes())
	if err != nil && errors.Is(err, ErrOutput) {
		log.Warn("generation: unusable generator output",
			"reason", err,
			"stdout_bytes", s.stdout.Len(),
			"stderr", s.stderrTail(),
		)
	}
	return text, err
}

// writeRequest sends the single request line and closes stdin so the
// generator sees end of input. A generator that exits early makes the write
// fail; the exit status decides the outcome in that case.
func (s *session) writeRequest(stdin io.WriteCloser, payload []byte, log *slog.Logger) {
	if _, err := stdin.Write(payload); err != nil {
		log.Debug("generation: write request", "error", err)
	}
	if err := stdin.Close(); err != nil {
		log.Debug("generation: close stdin", "error", err)
	}
}

func (s *session) stderrTail() string {
	b := s.stderr.Bytes()
	if len(b) > stderrTailBytes {
		b = b[len(b)-stderrTailBytes:]
	}
	return string(bytes.TrimSpace(b))
}
