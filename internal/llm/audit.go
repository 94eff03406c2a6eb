package llm

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/pavelanni/papergen/internal/model"
)

// Recorder persists generation calls. store.Store implements it.
type Recorder interface {
	RecordCall(ctx context.Context, call model.GenerationCall) error
}

// AuditGenerator is a decorator that records every generation call.
type AuditGenerator struct {
	inner    Generator
	backend  string
	recorder Recorder
}

// WithAudit wraps a Generator so each call is recorded. A nil recorder
// returns g unchanged.
func WithAudit(g Generator, backend string, rec Recorder) Generator {
	if rec == nil {
		return g
	}
	return &AuditGenerator{inner: g, backend: backend, recorder: rec}
}

func (a *AuditGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	start := time.Now()
	text, err := a.inner.Generate(ctx, prompt)

	call := model.GenerationCall{
		ID:        uuid.NewString(),
		RequestID: model.RequestIDFromContext(ctx),
		Backend:   a.backend,
		Model:     a.inner.ModelID(),
		Prompt:    prompt,
		Response:  text,
		LatencyMs: time.Since(start).Milliseconds(),
		CreatedAt: start.UTC(),
	}
	if err != nil {
		call.Error = err.Error()
	}

	// Recording must not fail the call.
	if recErr := a.recorder.RecordCall(context.WithoutCancel(ctx), call); recErr != nil {
		slog.Warn("failed to record generation call", "error", recErr)
	}

	return text, err
}

func (a *AuditGenerator) ModelID() string {
	return a.inner.ModelID()
}
