package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"google.golang.org/genai"
)

// geminiModels maps friendly names to Gemini model IDs.
var geminiModels = map[string]string{
	"gemini-flash": "gemini-2.0-flash",
	"gemini-pro":   "gemini-1.5-pro",
}

// safetyCategories are the harm categories sent with every request. All of
// them use BLOCK_NONE (threshold value 4) so syllabus topics such as
// "security threats" are not filtered.
var safetyCategories = []genai.HarmCategory{
	genai.HarmCategoryHateSpeech,
	genai.HarmCategorySexuallyExplicit,
	genai.HarmCategoryDangerousContent,
	genai.HarmCategoryHarassment,
	genai.HarmCategoryCivicIntegrity,
}

// Gemini implements Generator using the Google Gemini SDK.
type Gemini struct {
	client *genai.Client
	model  string
	params Params
}

// NewGemini creates a Gemini generator.
func NewGemini(ctx context.Context, cfg Config) (*Gemini, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:      cfg.APIKey,
		Backend:     genai.BackendGeminiAPI,
		HTTPClient:  cfg.httpClient(),
		HTTPOptions: genai.HTTPOptions{BaseURL: cfg.BaseURL},
	})
	if err != nil {
		return nil, fmt.Errorf("create Gemini client: %w", err)
	}

	return &Gemini{
		client: client,
		model:  resolveModel(cfg.ResolvedModel(), geminiModels),
		params: cfg.Params,
	}, nil
}

func (g *Gemini) Generate(ctx context.Context, prompt string) (string, error) {
	result, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), geminiConfig(g.params))
	if err != nil {
		return "", mapGeminiError(err)
	}
	return firstCandidateText(result), nil
}

func (g *Gemini) ModelID() string {
	return g.model
}

func geminiConfig(p Params) *genai.GenerateContentConfig {
	settings := make([]*genai.SafetySetting, len(safetyCategories))
	for i, c := range safetyCategories {
		settings[i] = &genai.SafetySetting{
			Category:  c,
			Threshold: genai.HarmBlockThresholdBlockNone,
		}
	}
	return &genai.GenerateContentConfig{
		Temperature:     genai.Ptr(p.Temperature),
		TopK:            genai.Ptr(float32(p.TopK)),
		TopP:            genai.Ptr(p.TopP),
		MaxOutputTokens: int32(p.MaxOutputTokens),
		SafetySettings:  settings,
	}
}

// firstCandidateText returns the first text part of the first candidate.
// Any missing level of the response yields "".
func firstCandidateText(result *genai.GenerateContentResponse) string {
	if result == nil || len(result.Candidates) == 0 {
		return ""
	}
	c := result.Candidates[0]
	if c == nil || c.Content == nil {
		return ""
	}
	for _, part := range c.Content.Parts {
		if part != nil && part.Text != "" {
			return part.Text
		}
	}
	return ""
}

func mapGeminiError(err error) error {
	genErr := &ErrGeneration{Backend: BackendGemini, Err: err}
	var apiErr *genai.APIError
	if errors.As(err, &apiErr) {
		genErr.Status = apiErr.Code
		genErr.Payload = apiErr.Message
		if len(apiErr.Details) > 0 {
			if details, mErr := json.Marshal(apiErr.Details); mErr == nil {
				genErr.Payload += " " + string(details)
			}
		}
	}
	return genErr
}
