// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package infer

import (
	"context"
	"fmt"
	"net/http"
)

const anthropicDefaultURL = "https://api.anthropic.com"

// AnthropicBackend calls the Claude Messages API.
type AnthropicBackend struct {
	APIKey     string
	BaseURL    string
	Client     *http.Client
	MaxRetries int
}

// anthropicRequest is the request body for the Claude Messages API.
type anthropicRequest struct {
	Model     string             `json:"model"`
	MaxTokens int                `json:"max_tokens"`
	System    string             `json:"system,omitempty"`
	Messages  []anthropicMessage `json:"messages"`
}

// anthropicMessage is a single message in the Claude API conversation.
type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// anthropicResponse is the response body from the Claude Messages API.
type anthropicResponse struct {
	Content []anthropicContent `json:"content"`
}

// anthropicContent is a content block in the Claude API response.
type anthropicContent struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// Name implements Backend.
func (a *AnthropicBackend) Name() string { return ProviderAnthropic }

// Complete sends the system prompt and user message and returns the first
// text block of the answer.
func (a *AnthropicBackend) Complete(ctx context.Context, req Request) (string, error) {
	body := anthropicRequest{
		Model:     req.Model,
		MaxTokens: req.MaxTokens,
		System:    req.System,
		Messages: []anthropicMessage{
			{Role: "user", Content: req.User},
		},
	}

	headers := map[string]string{
		"x-api-key":         a.APIKey,
		"anthropic-version": "2023-06-01",
	}

	var resp anthropicResponse
	url := baseOr(a.BaseURL, anthropicDefaultURL) + "/v1/messages"
	if err := postJSON(ctx, a.Client, url, headers, body, &resp, a.MaxRetries); err != nil {
		return "", fmt.Errorf("calling Claude API: %w", err)
	}

	for _, block := range resp.Content {
		if block.Type == "text" {
			return block.Text, nil
		}
	}
	return "", fmt.Errorf("%w: no text content in Claude API response", ErrEmptyResponse)
}
