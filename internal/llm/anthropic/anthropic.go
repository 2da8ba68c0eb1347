package anthropic

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/OliwiaLewandowska/som-monitor/internal/llm"
)

// Provider implements the llm.Provider interface for Anthropic.
type Provider struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

// New creates a new Anthropic provider.
func New(creds llm.Credentials) (llm.Provider, error) {
	baseURL := creds.BaseURL
	if baseURL == "" {
		baseURL = "https://api.anthropic.com/v1"
	}

	return &Provider{
		apiKey:  creds.APIKey,
		baseURL: baseURL,
		client: &http.Client{
			Timeout: 60 * time.Second,
		},
	}, nil
}

// Name returns the provider name.
func (p *Provider) Name() string {
	return "anthropic"
}

// Query sends a prompt to Anthropic and returns the response text.
func (p *Provider) Query(ctx context.Context, prompt, model string, opts llm.Options) (string, error) {
	requestBody := map[string]interface{}{
		"model": model,
		"messages": []map[string]string{
			{"role": "user", "content": prompt},
		},
		"temperature": opts.Temperature,
		"max_tokens":  opts.MaxTokens,
	}

	jsonBody, err := json.Marshal(requestBody)
	if err != nil {
		return "", llm.NewError(p.Name(), llm.KindFatal, fmt.Errorf("failed to marshal request: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, "POST", p.baseURL+"/messages", bytes.NewBuffer(jsonBody))
	if err != nil {
		return "", llm.NewError(p.Name(), llm.KindFatal, fmt.Errorf("failed to create request: %w", err))
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", p.apiKey)
	req.Header.Set("anthropic-version", "2023-06-01")

	resp, err := p.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			err = ctx.Err()
		}
		return "", llm.NewError(p.Name(), llm.KindTransient, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", llm.NewError(p.Name(), llm.KindTransient, fmt.Errorf("failed to read response: %w", err))
	}

	if resp.StatusCode != http.StatusOK {
		return "", llm.StatusError(p.Name(), resp.StatusCode, string(body))
	}

	var anthropicResp struct {
		Content []struct {
			Text string `json:"text"`
		} `json:"content"`
	}

	if err := json.Unmarshal(body, &anthropicResp); err != nil {
		return "", llm.NewError(p.Name(), llm.KindFatal, fmt.Errorf("failed to unmarshal response: %w", err))
	}

	if len(anthropicResp.Content) == 0 {
		return "", llm.NewError(p.Name(), llm.KindFatal, fmt.Errorf("no content returned from API"))
	}

	return anthropicResp.Content[0].Text, nil
}
