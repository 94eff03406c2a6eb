package llm

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func newTestGemini(t *testing.T, handler http.HandlerFunc) *Gemini {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	cfg := DefaultConfig()
	cfg.APIKey = "test-key"
	cfg.BaseURL = server.URL
	g, err := NewGemini(context.Background(), cfg)
	if err != nil {
		t.Fatalf("NewGemini: %v", err)
	}
	return g
}

func TestGeminiModelMapping(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"gemini-flash", "gemini-2.0-flash"},
		{"gemini-pro", "gemini-1.5-pro"},
		{"gemini-1.5-pro", "gemini-1.5-pro"},
	}
	for _, tt := range tests {
		got := resolveModel(tt.input, geminiModels)
		if got != tt.expected {
			t.Errorf("resolveModel(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}

func TestGemini_RequestShape(t *testing.T) {
	var body map[string]any
	var path string
	g := newTestGemini(t, func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		data, _ := io.ReadAll(r.Body)
		if err := json.Unmarshal(data, &body); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"candidates":[{"content":{"role":"model","parts":[{"text":"1. Define a process."}]}}]}`)
	})

	text, err := g.Generate(context.Background(), "the prompt")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if text != "1. Define a process." {
		t.Errorf("text = %q", text)
	}
	if !strings.Contains(path, "gemini-1.5-pro:generateContent") {
		t.Errorf("unexpected path %q", path)
	}

	contents, _ := body["contents"].([]any)
	if len(contents) != 1 {
		t.Fatalf("expected 1 content, got %v", body["contents"])
	}
	parts, _ := contents[0].(map[string]any)["parts"].([]any)
	if len(parts) != 1 || parts[0].(map[string]any)["text"] != "the prompt" {
		t.Errorf("unexpected parts %v", parts)
	}

	gc, _ := body["generationConfig"].(map[string]any)
	if gc == nil {
		t.Fatal("missing generationConfig")
	}
	checks := map[string]float64{"topK": 40, "maxOutputTokens": 1024}
	for k, want := range checks {
		if got, _ := gc[k].(float64); got != want {
			t.Errorf("generationConfig.%s = %v, want %v", k, gc[k], want)
		}
	}
	if got, _ := gc["temperature"].(float64); got < 0.69 || got > 0.71 {
		t.Errorf("temperature = %v", gc["temperature"])
	}
	if got, _ := gc["topP"].(float64); got < 0.94 || got > 0.96 {
		t.Errorf("topP = %v", gc["topP"])
	}

	safety, _ := body["safetySettings"].([]any)
	if len(safety) != 5 {
		t.Fatalf("expected 5 safety settings, got %d", len(safety))
	}
	for _, s := range safety {
		if th := s.(map[string]any)["threshold"]; th != "BLOCK_NONE" {
			t.Errorf("threshold = %v, want BLOCK_NONE", th)
		}
	}
}

func TestGemini_MissingCandidatesGiveEmptyText(t *testing.T) {
	bodies := []string{
		`{}`,
		`{"candidates":[]}`,
		`{"candidates":[{}]}`,
		`{"candidates":[{"content":{"parts":[]}}]}`,
	}
	for _, b := range bodies {
		t.Run(b, func(t *testing.T) {
			g := newTestGemini(t, func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				io.WriteString(w, b)
			})
			text, err := g.Generate(context.Background(), "p")
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if text != "" {
				t.Errorf("text = %q, want empty", text)
			}
		})
	}
}

func TestGemini_HTTPError(t *testing.T) {
	g := newTestGemini(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusForbidden)
		io.WriteString(w, `{"error":{"code":403,"message":"API key not valid","status":"PERMISSION_DENIED"}}`)
	})

	_, err := g.Generate(context.Background(), "p")
	var genErr *ErrGeneration
	if !errors.As(err, &genErr) {
		t.Fatalf("expected *ErrGeneration, got %T: %v", err, err)
	}
	if genErr.Backend != BackendGemini {
		t.Errorf("backend = %q", genErr.Backend)
	}
}

func TestNewGemini_RequiresKey(t *testing.T) {
	if _, err := NewGemini(context.Background(), DefaultConfig()); err == nil {
		t.Fatal("expected error without API key")
	}
}
