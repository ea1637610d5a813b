// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package infer

import (
	"context"
	"fmt"
	"net/http"
)

const (
	openAIDefaultURL     = "https://api.openai.com/v1"
	perplexityDefaultURL = "https://api.perplexity.ai"
)

// OpenAIBackend calls an OpenAI-compatible Chat Completions endpoint. The
// same wire format serves OpenAI and Perplexity; only the base URL and the
// reported name differ.
type OpenAIBackend struct {
	APIKey     string
	BaseURL    string
	Client     *http.Client
	MaxRetries int
	// Provider is the name reported by Name; empty means "openai".
	Provider string
}

type openAIRequest struct {
	Model       string          `json:"model"`
	MaxTokens   int             `json:"max_tokens,omitempty"`
	Temperature float64         `json:"temperature"`
	Messages    []openAIMessage `json:"messages"`
}

type openAIMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type openAIResponse struct {
	Choices []struct {
		Message openAIMessage `json:"message"`
	} `json:"choices"`
}

// Name implements Backend.
func (o *OpenAIBackend) Name() string {
	if o.Provider != "" {
		return o.Provider
	}
	return ProviderOpenAI
}

// Complete sends a system and a user message and returns the first choice.
func (o *OpenAIBackend) Complete(ctx context.Context, req Request) (string, error) {
	var messages []openAIMessage
	if req.System != "" {
		messages = append(messages, openAIMessage{Role: "system", Content: req.System})
	}
	messages = append(messages, openAIMessage{Role: "user", Content: req.User})

	body := openAIRequest{
		Model:     req.Model,
		MaxTokens: req.MaxTokens,
		Messages:  messages,
	}
	headers := map[string]string{"Authorization": "Bearer " + o.APIKey}

	def := openAIDefaultURL
	if o.Provider == ProviderPerplexity {
		def = perplexityDefaultURL
	}

	var resp openAIResponse
	url := baseOr(o.BaseURL, def) + "/chat/completions"
	if err := postJSON(ctx, o.Client, url, headers, body, &resp, o.MaxRetries); err != nil {
		return "", fmt.Errorf("calling %s API: %w", o.Name(), err)
	}

	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "", fmt.Errorf("%w: %s returned no choices", ErrEmptyResponse, o.Name())
	}
	return resp.Choices[0].Message.Content, nil
}
