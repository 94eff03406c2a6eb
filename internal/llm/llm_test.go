package llm

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/pavelanni/papergen/internal/model"
)

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"gemini with key", Config{Backend: BackendGemini, APIKey: "k"}, false},
		{"gemini without key", Config{Backend: BackendGemini}, true},
		{"anthropic without key", Config{Backend: BackendAnthropic}, true},
		{"openai without key", Config{Backend: BackendOpenAI}, false},
		{"mock", Config{Backend: BackendMock}, false},
		{"unknown", Config{Backend: "cohere"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestResolvedModel(t *testing.T) {
	tests := []struct {
		cfg  Config
		want string
	}{
		{Config{Backend: BackendGemini}, "gemini-1.5-pro"},
		{Config{Backend: BackendOpenAI}, "llama3.2"},
		{Config{Backend: BackendGemini, Model: "gemini-flash"}, "gemini-flash"},
		{Config{Backend: BackendMock, Model: "  "}, "mock"},
	}
	for _, tt := range tests {
		if got := tt.cfg.ResolvedModel(); got != tt.want {
			t.Errorf("ResolvedModel(%+v) = %q, want %q", tt.cfg, got, tt.want)
		}
	}
}

func TestDefaultParams(t *testing.T) {
	p := DefaultParams()
	if p.Temperature != 0.7 || p.TopK != 40 || p.TopP != 0.95 || p.MaxOutputTokens != 1024 {
		t.Errorf("unexpected defaults: %+v", p)
	}
}

func TestNewMockBackend(t *testing.T) {
	g, err := New(context.Background(), Config{Backend: BackendMock})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	text, err := g.Generate(context.Background(), "anything")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if text == "" {
		t.Error("mock backend should return its default text")
	}
}

func TestNewUnknownBackend(t *testing.T) {
	if _, err := New(context.Background(), Config{Backend: "cohere"}); err == nil {
		t.Fatal("expected error for unknown backend")
	}
}

func TestMockFIFO(t *testing.T) {
	failure := errors.New("boom")
	m := NewMock(
		MockResponse{Text: "first"},
		MockResponse{Err: failure},
	)

	if got, err := m.Generate(context.Background(), "p1"); err != nil || got != "first" {
		t.Fatalf("first call = %q, %v", got, err)
	}
	if _, err := m.Generate(context.Background(), "p2"); !errors.Is(err, failure) {
		t.Fatalf("second call error = %v, want boom", err)
	}
	_, err := m.Generate(context.Background(), "p3")
	var genErr *ErrGeneration
	if !errors.As(err, &genErr) {
		t.Fatalf("empty queue should fail with *ErrGeneration, got %v", err)
	}
	if m.CallCount() != 3 {
		t.Errorf("CallCount() = %d, want 3", m.CallCount())
	}
	if m.Prompts[1] != "p2" {
		t.Errorf("Prompts[1] = %q", m.Prompts[1])
	}
}

type memRecorder struct {
	mu    sync.Mutex
	calls []model.GenerationCall
	err   error
}

func (r *memRecorder) RecordCall(_ context.Context, c model.GenerationCall) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, c)
	return r.err
}

func TestAuditRecordsCalls(t *testing.T) {
	failure := &ErrGeneration{Backend: BackendMock, Err: errors.New("down")}
	m := NewMock(MockResponse{Text: "1. Q"}, MockResponse{Err: failure})
	rec := &memRecorder{}
	g := WithAudit(m, BackendMock, rec)

	ctx := model.ContextWithRequestID(context.Background(), "req-1")
	if text, err := g.Generate(ctx, "prompt one"); err != nil || text != "1. Q" {
		t.Fatalf("first call = %q, %v", text, err)
	}
	if _, err := g.Generate(ctx, "prompt two"); !errors.Is(err, failure) {
		t.Fatalf("second call error = %v", err)
	}

	if len(rec.calls) != 2 {
		t.Fatalf("recorded %d calls, want 2", len(rec.calls))
	}
	ok, failed := rec.calls[0], rec.calls[1]
	if ok.Prompt != "prompt one" || ok.Response != "1. Q" || ok.Error != "" {
		t.Errorf("unexpected success record %+v", ok)
	}
	if ok.RequestID != "req-1" || ok.ID == "" || ok.Model != "mock" {
		t.Errorf("unexpected record metadata %+v", ok)
	}
	if failed.Error == "" {
		t.Error("failure record should carry the error")
	}
	if ok.ID == failed.ID {
		t.Error("records should have distinct IDs")
	}
}

func TestAuditRecorderFailureDoesNotFailCall(t *testing.T) {
	m := NewMock(MockResponse{Text: "1. Q"})
	g := WithAudit(m, BackendMock, &memRecorder{err: errors.New("disk full")})

	text, err := g.Generate(context.Background(), "p")
	if err != nil || text != "1. Q" {
		t.Fatalf("Generate = %q, %v", text, err)
	}
}

func TestWithAuditNilRecorder(t *testing.T) {
	m := NewMock()
	if g := WithAudit(m, BackendMock, nil); g != Generator(m) {
		t.Error("nil recorder should return the generator unchanged")
	}
}
