package openai

import (
	"context"
	"errors"
	"fmt"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"github.com/OliwiaLewandowska/som-monitor/internal/llm"
)

// Provider implements the llm.Provider interface for OpenAI using the
// official SDK.
type Provider struct {
	client openai.Client
}

// New creates a new OpenAI provider.
func New(creds llm.Credentials) (llm.Provider, error) {
	opts := []option.RequestOption{option.WithAPIKey(creds.APIKey)}
	if creds.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(creds.BaseURL))
	}

	return &Provider{client: openai.NewClient(opts...)}, nil
}

// Name returns the provider name.
func (p *Provider) Name() string {
	return "openai"
}

// Query sends a prompt to OpenAI and returns the response text.
func (p *Provider) Query(ctx context.Context, prompt, model string, opts llm.Options) (string, error) {
	completion, err := p.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		},
		Model:       openai.ChatModel(model),
		Temperature: openai.Float(opts.Temperature),
		MaxTokens:   openai.Int(int64(opts.MaxTokens)),
	})
	if err != nil {
		return "", p.classify(ctx, err)
	}

	if len(completion.Choices) == 0 {
		return "", llm.NewError(p.Name(), llm.KindFatal, fmt.Errorf("no choices returned from API"))
	}

	return completion.Choices[0].Message.Content, nil
}

func (p *Provider) classify(ctx context.Context, err error) error {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		return llm.NewError(p.Name(), llm.ClassifyStatus(apiErr.StatusCode), err)
	}
	if ctx.Err() != nil {
		return llm.NewError(p.Name(), llm.KindTransient, ctx.Err())
	}
	return llm.NewError(p.Name(), llm.KindTransient, err)
}
