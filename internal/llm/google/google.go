package google

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/genai"

	"github.com/OliwiaLewandowska/som-monitor/internal/llm"
)

// Provider implements the llm.Provider interface for Google AI.
type Provider struct {
	apiKey string
	client *genai.Client
}

// New creates a new Google provider.
func New(creds llm.Credentials) (llm.Provider, error) {
	client, err := genai.NewClient(context.Background(), &genai.ClientConfig{
		APIKey:  creds.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Google client: %w", err)
	}

	return &Provider{apiKey: creds.APIKey, client: client}, nil
}

// Name returns the provider name.
func (p *Provider) Name() string {
	return "google"
}

// Query sends a prompt to Google AI and returns the response text.
func (p *Provider) Query(ctx context.Context, prompt, model string, opts llm.Options) (string, error) {
	content := []*genai.Content{
		{
			Parts: []*genai.Part{
				{Text: prompt},
			},
		},
	}

	temperature := float32(opts.Temperature)
	maxTokens := int32(opts.MaxTokens)
	generationConfig := &genai.GenerateContentConfig{
		Temperature:     &temperature,
		MaxOutputTokens: maxTokens,
	}

	result, err := p.client.Models.GenerateContent(ctx, model, content, generationConfig)
	if err != nil {
		return "", p.classify(ctx, err)
	}

	if len(result.Candidates) == 0 || result.Candidates[0].Content == nil || len(result.Candidates[0].Content.Parts) == 0 {
		return "", llm.NewError(p.Name(), llm.KindFatal, fmt.Errorf("no candidates returned from API"))
	}

	return result.Candidates[0].Content.Parts[0].Text, nil
}

func (p *Provider) classify(ctx context.Context, err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return llm.NewError(p.Name(), llm.ClassifyStatus(apiErr.Code), err)
	}
	if ctx.Err() != nil {
		return llm.NewError(p.Name(), llm.KindTransient, ctx.Err())
	}
	return llm.NewError(p.Name(), llm.KindTransient, err)
}
