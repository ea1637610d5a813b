// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package infer

import (
	"context"
	"fmt"
	"net/http"
)

const ollamaDefaultURL = "http://localhost:11434"

// OllamaBackend calls a local Ollama server. No credential is needed.
type OllamaBackend struct {
	BaseURL    string
	Client     *http.Client
	MaxRetries int
}

type ollamaRequest struct {
	Model   string         `json:"model"`
	System  string         `json:"system,omitempty"`
	Prompt  string         `json:"prompt"`
	Format  string         `json:"format"`
	Stream  bool           `json:"stream"`
	Options map[string]any `json:"options,omitempty"`
}

type ollamaResponse struct {
	Response string `json:"response"`
}

// Name implements Backend.
func (o *OllamaBackend) Name() string { return ProviderOllama }

// Complete asks for a single non-streamed JSON answer.
func (o *OllamaBackend) Complete(ctx context.Context, req Request) (string, error) {
	body := ollamaRequest{
		Model:  req.Model,
		System: req.System,
		Prompt: req.User,
		Format: "json",
		Options: map[string]any{
			"temperature": 0,
			"num_predict": req.MaxTokens,
		},
	}

	var resp ollamaResponse
	url := baseOr(o.BaseURL, ollamaDefaultURL) + "/api/generate"
	if err := postJSON(ctx, o.Client, url, nil, body, &resp, o.MaxRetries); err != nil {
		return "", fmt.Errorf("calling Ollama: %w", err)
	}
	if resp.Response == "" {
		return "", fmt.Errorf("%w: Ollama returned an empty response", ErrEmptyResponse)
	}
	return resp.Response, nil
}
