package llm

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// Generator is the capability the question pipeline needs from a
// text-generation backend: a prompt in, raw text out.
type Generator interface {
	// Generate sends one prompt and returns the generated text. Any failure
	// is reported as *ErrGeneration.
	Generate(ctx context.Context, prompt string) (string, error)

	// ModelID returns the model identifier this generator is configured to use.
	ModelID() string
}

// Backend names accepted by New.
const (
	BackendGemini    = "gemini"
	BackendOpenAI    = "openai"
	BackendAnthropic = "anthropic"
	BackendMock      = "mock"
)

// Params are the decoding parameters sent with every prompt.
type Params struct {
	Temperature     float32
	TopK            int
	TopP            float32
	MaxOutputTokens int
}

// DefaultParams returns the fixed decoding parameters used for question
// generation.
func DefaultParams() Params {
	return Params{
		Temperature:     0.7,
		TopK:            40,
		TopP:            0.95,
		MaxOutputTokens: 1024,
	}
}

// Config holds the settings for one generation backend. It is built once at
// startup and passed to New.
type Config struct {
	// Backend selects the implementation: gemini, openai, anthropic or mock.
	Backend string
	APIKey  string
	// Model is a model ID or a friendly alias. Empty means the backend default.
	Model string
	// BaseURL overrides the backend endpoint. Empty means the SDK default.
	BaseURL string
	// Timeout bounds a single HTTP call to the backend. Zero means no limit.
	Timeout time.Duration
	Params  Params
}

var defaultModels = map[string]string{
	BackendGemini:    "gemini-1.5-pro",
	BackendOpenAI:    "llama3.2",
	BackendAnthropic: "claude-haiku",
	BackendMock:      "mock",
}

// DefaultConfig returns a Gemini config with the default parameters.
func DefaultConfig() Config {
	return Config{
		Backend: BackendGemini,
		Timeout: 60 * time.Second,
		Params:  DefaultParams(),
	}
}

// Validate checks that the selected backend has what it needs.
func (c Config) Validate() error {
	switch c.Backend {
	case BackendGemini, BackendAnthropic:
		if c.APIKey == "" {
			return fmt.Errorf("an API key is required for the %s backend", c.Backend)
		}
	case BackendOpenAI, BackendMock:
		// OpenAI-compatible local servers such as Ollama accept any key.
	default:
		return fmt.Errorf("unknown LLM backend: %q", c.Backend)
	}
	return nil
}

// ResolvedModel returns the configured model or the backend default.
func (c Config) ResolvedModel() string {
	if m := strings.TrimSpace(c.Model); m != "" {
		return m
	}
	return defaultModels[c.Backend]
}

func (c Config) httpClient() *http.Client {
	return &http.Client{Timeout: c.Timeout}
}

// New creates the Generator selected by cfg.Backend.
func New(ctx context.Context, cfg Config) (Generator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.Params == (Params{}) {
		cfg.Params = DefaultParams()
	}

	var (
		g   Generator
		err error
	)
	switch cfg.Backend {
	case BackendGemini:
		g, err = NewGemini(ctx, cfg)
	case BackendOpenAI:
		g, err = NewOpenAI(cfg)
	case BackendAnthropic:
		g, err = NewAnthropic(cfg)
	case BackendMock:
		m := NewMock()
		m.Default = mockDefaultText
		g = m
	}
	if err != nil {
		return nil, fmt.Errorf("initializing %s backend: %w", cfg.Backend, err)
	}
	return g, nil
}

// resolveModel maps a friendly model name to a provider model ID.
func resolveModel(name string, models map[string]string) string {
	if id, ok := models[name]; ok {
		return id
	}
	return name
}
