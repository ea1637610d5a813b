// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package infer

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/pdiddy/pdf-renamer/internal/httputil"
	"github.com/pdiddy/pdf-renamer/pkg/types"
)

// Provider names accepted by --provider.
const (
	ProviderAnthropic  = "anthropic"
	ProviderOpenAI     = "openai"
	ProviderGemini     = "gemini"
	ProviderPerplexity = "perplexity"
	ProviderOllama     = "ollama"
)

// DefaultModel is used when no model is configured.
const DefaultModel = "claude-3-haiku-20240307"

var (
	// ErrEmptyResponse is returned when the endpoint answers without text.
	ErrEmptyResponse = errors.New("empty model response")
	// ErrUnknownProvider is returned for a provider name outside the list above.
	ErrUnknownProvider = errors.New("unknown provider")
)

// Request is one completion call: a system prompt and a user message.
type Request struct {
	Model     string
	System    string
	User      string
	MaxTokens int
}

// Backend is a completion endpoint. Implementations only move text over the
// wire; prompt assembly and parsing live in Client.
type Backend interface {
	Complete(ctx context.Context, req Request) (string, error)
	Name() string
}

// StatusError reports a non-200 answer from a completion endpoint.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("API returned %d: %s", e.Code, e.Body)
}

// knownModels maps model identifiers to their provider.
var knownModels = map[string]string{
	"claude-3-haiku-20240307":  ProviderAnthropic,
	"claude-3-sonnet-20240229": ProviderAnthropic,
	"claude-3-opus-20240229":   ProviderAnthropic,
	"gpt-4-turbo":              ProviderOpenAI,
	"gpt-4":                    ProviderOpenAI,
	"gpt-3.5-turbo":            ProviderOpenAI,
	"gemini-pro":               ProviderGemini,
	"pplx-70b-online":          ProviderPerplexity,
	"llama-2-70b":              ProviderOllama,
}

// modelPrefixes is consulted, in order, for models not in knownModels.
var modelPrefixes = []struct {
	prefix   string
	provider string
}{
	{"claude", ProviderAnthropic},
	{"gpt", ProviderOpenAI},
	{"o1", ProviderOpenAI},
	{"o3", ProviderOpenAI},
	{"o4", ProviderOpenAI},
	{"gemini", ProviderGemini},
	{"pplx", ProviderPerplexity},
	{"sonar", ProviderPerplexity},
	{"llama", ProviderOllama},
	{"mistral", ProviderOllama},
	{"qwen", ProviderOllama},
	{"phi", ProviderOllama},
}

// keyEnvVars maps providers to the environment variable holding their key.
var keyEnvVars = map[string]string{
	ProviderAnthropic:  "ANTHROPIC_API_KEY",
	ProviderOpenAI:     "OPENAI_API_KEY",
	ProviderGemini:     "GEMINI_API_KEY",
	ProviderPerplexity: "PERPLEXITY_API_KEY",
}

// ResolveProvider picks the provider for model. An explicit provider wins;
// otherwise the model name decides, falling back to Anthropic.
func ResolveProvider(model, explicit string) (string, error) {
	if explicit != "" {
		p := strings.ToLower(strings.TrimSpace(explicit))
		if p == ProviderOllama {
			return p, nil
		}
		if _, ok := keyEnvVars[p]; !ok {
			return "", fmt.Errorf("%w: %q", ErrUnknownProvider, explicit)
		}
		return p, nil
	}

	m := strings.ToLower(strings.TrimSpace(model))
	if p, ok := knownModels[m]; ok {
		return p, nil
	}
	for _, mp := range modelPrefixes {
		if strings.HasPrefix(m, mp.prefix) {
			return mp.provider, nil
		}
	}
	return ProviderAnthropic, nil
}

// KeyEnvVar returns the environment variable that holds provider's API key,
// or "" when the provider needs none.
func KeyEnvVar(provider string) string {
	return keyEnvVars[provider]
}

// NewBackend builds the Backend for provider from cfg.
func NewBackend(provider string, cfg types.RenameConfig, client *http.Client) (Backend, error) {
	switch provider {
	case ProviderAnthropic:
		return &AnthropicBackend{APIKey: cfg.APIKey, BaseURL: cfg.BaseURL, Client: client, MaxRetries: cfg.MaxRetries}, nil
	case ProviderOpenAI, ProviderPerplexity:
		return &OpenAIBackend{APIKey: cfg.APIKey, BaseURL: cfg.BaseURL, Client: client, MaxRetries: cfg.MaxRetries, Provider: provider}, nil
	case ProviderGemini:
		return &GeminiBackend{APIKey: cfg.APIKey, BaseURL: cfg.BaseURL, Client: client, MaxRetries: cfg.MaxRetries}, nil
	case ProviderOllama:
		return &OllamaBackend{BaseURL: cfg.BaseURL, Client: client, MaxRetries: cfg.MaxRetries}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, provider)
	}
}

// postJSON marshals body, POSTs it to url and decodes a 200 answer into out.
func postJSON(ctx context.Context, client *http.Client, url string, headers map[string]string, body, out any, maxRetries int) error {
	bodyBytes, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(bodyBytes))
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	if client == nil {
		client = http.DefaultClient
	}

	resp, err := httputil.DoWithRetry(ctx, client, req, maxRetries)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &StatusError{Code: resp.StatusCode, Body: strings.TrimSpace(string(data))}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}

func baseOr(base, def string) string {
	if base == "" {
		return def
	}
	return strings.TrimRight(base, "/")
}
