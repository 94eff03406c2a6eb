package llm

import (
	"context"
	"errors"

	openai "github.com/sashabaranov/go-openai"
)

// OpenAI implements Generator for any OpenAI-compatible API, including
// local servers such as Ollama.
type OpenAI struct {
	api    *openai.Client
	model  string
	params Params
}

// NewOpenAI creates an OpenAI-compatible generator.
func NewOpenAI(cfg Config) (*OpenAI, error) {
	key := cfg.APIKey
	if key == "" {
		key = "ollama"
	}
	config := openai.DefaultConfig(key)
	if cfg.BaseURL != "" {
		config.BaseURL = cfg.BaseURL
	}
	config.HTTPClient = cfg.httpClient()

	return &OpenAI{
		api:    openai.NewClientWithConfig(config),
		model:  cfg.ResolvedModel(),
		params: cfg.Params,
	}, nil
}

func (o *OpenAI) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := o.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: o.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		Temperature: o.params.Temperature,
		TopP:        o.params.TopP,
		MaxTokens:   o.params.MaxOutputTokens,
	})
	if err != nil {
		return "", mapOpenAIError(err)
	}

	if len(resp.Choices) == 0 {
		return "", nil
	}
	return resp.Choices[0].Message.Content, nil
}

func (o *OpenAI) ModelID() string {
	return o.model
}

func mapOpenAIError(err error) error {
	genErr := &ErrGeneration{Backend: BackendOpenAI, Err: err}

	var apiErr *openai.APIError
	var reqErr *openai.RequestError
	switch {
	case errors.As(err, &apiErr):
		genErr.Status = apiErr.HTTPStatusCode
		genErr.Payload = apiErr.Message
	case errors.As(err, &reqErr):
		genErr.Status = reqErr.HTTPStatusCode
		genErr.Payload = string(reqErr.Body)
	}
	return genErr
}
