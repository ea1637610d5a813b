// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package infer

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

const geminiDefaultURL = "https://generativelanguage.googleapis.com/v1beta"

// GeminiBackend calls the Generative Language generateContent endpoint with
// an API key.
type GeminiBackend struct {
	APIKey     string
	BaseURL    string
	Client     *http.Client
	MaxRetries int
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiGenerationConfig struct {
	Temperature      float64 `json:"temperature"`
	MaxOutputTokens  int     `json:"maxOutputTokens,omitempty"`
	ResponseMIMEType string  `json:"responseMimeType,omitempty"`
}

type geminiRequest struct {
	SystemInstruction *geminiContent         `json:"systemInstruction,omitempty"`
	Contents          []geminiContent        `json:"contents"`
	GenerationConfig  geminiGenerationConfig `json:"generationConfig"`
}

type geminiResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
}

// Name implements Backend.
func (g *GeminiBackend) Name() string { return ProviderGemini }

// Complete requests a JSON answer and concatenates the text parts of the
// first candidate.
func (g *GeminiBackend) Complete(ctx context.Context, req Request) (string, error) {
	body := geminiRequest{
		Contents: []geminiContent{
			{Role: "user", Parts: []geminiPart{{Text: req.User}}},
		},
		GenerationConfig: geminiGenerationConfig{
			MaxOutputTokens:  req.MaxTokens,
			ResponseMIMEType: "application/json",
		},
	}
	if req.System != "" {
		body.SystemInstruction = &geminiContent{Parts: []geminiPart{{Text: req.System}}}
	}

	headers := map[string]string{"x-goog-api-key": g.APIKey}
	endpoint := fmt.Sprintf("%s/models/%s:generateContent",
		baseOr(g.BaseURL, geminiDefaultURL), url.PathEscape(req.Model))

	var resp geminiResponse
	if err := postJSON(ctx, g.Client, endpoint, headers, body, &resp, g.MaxRetries); err != nil {
		return "", fmt.Errorf("calling Gemini API: %w", err)
	}

	if len(resp.Candidates) == 0 {
		return "", fmt.Errorf("%w: Gemini returned no candidates", ErrEmptyResponse)
	}
	var b strings.Builder
	for _, p := range resp.Candidates[0].Content.Parts {
		b.WriteString(p.Text)
	}
	if b.Len() == 0 {
		return "", fmt.Errorf("%w: Gemini candidate has no text", ErrEmptyResponse)
	}
	return b.String(), nil
}
