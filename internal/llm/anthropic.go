package llm

import (
	"context"
	"errors"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// anthropicModels maps friendly names to Anthropic model IDs.
var anthropicModels = map[string]string{
	"claude-sonnet": "claude-sonnet-4-20250514",
	"claude-haiku":  "claude-haiku-4-5-20251001",
}

// Anthropic implements Generator using the Anthropic SDK.
type Anthropic struct {
	client *anthropic.Client
	model  string
	params Params
}

// NewAnthropic creates an Anthropic generator.
func NewAnthropic(cfg Config) (*Anthropic, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("anthropic API key is required")
	}

	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithHTTPClient(cfg.httpClient()),
		option.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	client := anthropic.NewClient(opts...)
	return &Anthropic{
		client: &client,
		model:  resolveModel(cfg.ResolvedModel(), anthropicModels),
		params: cfg.Params,
	}, nil
}

// Generate sends the prompt as a single user message. Recent Claude models
// reject temperature and top_p together, so top_p is not sent.
func (a *Anthropic) Generate(ctx context.Context, prompt string) (string, error) {
	msg, err := a.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(a.model),
		MaxTokens: int64(a.params.MaxOutputTokens),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
		Temperature: anthropic.Float(float64(a.params.Temperature)),
		TopK:        anthropic.Int(int64(a.params.TopK)),
	})
	if err != nil {
		return "", mapAnthropicError(err)
	}

	for _, block := range msg.Content {
		if block.Type == "text" {
			return block.Text, nil
		}
	}
	return "", nil
}

func (a *Anthropic) ModelID() string {
	return a.model
}

func mapAnthropicError(err error) error {
	genErr := &ErrGeneration{Backend: BackendAnthropic, Err: err}
	var apiErr *anthropic.Error
	if errors.As(err, &apiErr) {
		genErr.Status = apiErr.StatusCode
	}
	return genErr
}
