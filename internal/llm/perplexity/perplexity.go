package perplexity

import (
	"context"
	"fmt"
	"strings"

	pplx "github.com/sgaunet/perplexity-go/v2"

	"github.com/OliwiaLewandowska/som-monitor/internal/llm"
)

// Provider implements the llm.Provider interface for Perplexity.
type Provider struct {
	client *pplx.Client
}

// New creates a new Perplexity provider.
func New(creds llm.Credentials) (llm.Provider, error) {
	return &Provider{client: pplx.NewClient(creds.APIKey)}, nil
}

// Name returns the provider name.
func (p *Provider) Name() string {
	return "perplexity"
}

// Query sends a prompt to Perplexity and returns the response text.
func (p *Provider) Query(ctx context.Context, prompt, model string, opts llm.Options) (string, error) {
	messages := []pplx.Message{
		{Role: "user", Content: prompt},
	}

	req := pplx.NewCompletionRequest(
		pplx.WithMessages(messages),
		pplx.WithModel(model),
		pplx.WithTemperature(opts.Temperature),
		pplx.WithMaxTokens(opts.MaxTokens),
	)

	resp, err := p.client.SendCompletionRequest(req)
	if err != nil {
		return "", p.classify(ctx, err)
	}

	content := resp.GetLastContent()
	if content == "" {
		return "", llm.NewError(p.Name(), llm.KindFatal, fmt.Errorf("no content returned from API"))
	}

	return content, nil
}

func (p *Provider) classify(ctx context.Context, err error) error {
	if ctx.Err() != nil {
		return llm.NewError(p.Name(), llm.KindTransient, ctx.Err())
	}

	// The SDK surfaces HTTP failures as plain errors; recognize the two
	// kinds that change survey behavior by message.
	msg := err.Error()
	switch {
	case strings.Contains(msg, "401") || strings.Contains(msg, "403"):
		return llm.NewError(p.Name(), llm.KindAuth, err)
	case strings.Contains(msg, "429"):
		return llm.NewError(p.Name(), llm.KindRateLimit, err)
	}
	return llm.NewError(p.Name(), llm.KindTransient, err)
}
