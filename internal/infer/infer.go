// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package infer turns the leading text of a document into a bibliographic
// triple by asking a language model.
package infer

import (
	"bytes"
	"context"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"
	"text/template"

	"github.com/pdiddy/pdf-renamer/pkg/types"
)

// DefaultPrompt is the instruction used when no prompt file is available.
//
//go:embed prompt.txt
var DefaultPrompt string

// ErrPromptMissing is returned by LoadPrompt when the file does not exist.
var ErrPromptMissing = errors.New("prompt file not found")

// Inferrer guesses the bibliographic triple of a document from its text.
// The pipeline depends only on this capability, so providers can be swapped.
type Inferrer interface {
	Infer(ctx context.Context, text string) (types.Triple, error)
}

// userMessageTmpl wraps the document text sent as the user turn.
var userMessageTmpl = template.Must(template.New("user").Parse(`Leading text of the document:

"""
{{.Text}}
"""

Reply with the JSON object only.`))

// Client implements Inferrer on top of a completion Backend.
type Client struct {
	Backend   Backend
	Model     string
	Prompt    string
	MaxTokens int
}

// NewClient returns a Client; an empty prompt falls back to DefaultPrompt.
func NewClient(b Backend, model, prompt string, maxTokens int) *Client {
	if strings.TrimSpace(prompt) == "" {
		prompt = DefaultPrompt
	}
	if model == "" {
		model = DefaultModel
	}
	return &Client{Backend: b, Model: model, Prompt: prompt, MaxTokens: maxTokens}
}

// Infer sends text to the backend and parses the answer. Blank text is not
// sent; it yields the all-Unknown triple. On error the returned triple is
// all-Unknown as well.
func (c *Client) Infer(ctx context.Context, text string) (types.Triple, error) {
	if strings.TrimSpace(text) == "" {
		return types.UnknownTriple(), nil
	}

	user, err := renderUserMessage(text)
	if err != nil {
		return types.UnknownTriple(), fmt.Errorf("rendering prompt: %w", err)
	}

	raw, err := c.Backend.Complete(ctx, Request{
		Model:     c.Model,
		System:    c.Prompt,
		User:      user,
		MaxTokens: c.MaxTokens,
	})
	if err != nil {
		return types.UnknownTriple(), err
	}

	t, err := ParseTriple(raw)
	if err != nil {
		return types.UnknownTriple(), err
	}
	return t, nil
}

// LoadPrompt reads the prompt file at path.
func LoadPrompt(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("%w: %s", ErrPromptMissing, path)
		}
		return "", fmt.Errorf("reading prompt %s: %w", path, err)
	}
	return string(data), nil
}

func renderUserMessage(text string) (string, error) {
	var buf bytes.Buffer
	if err := userMessageTmpl.Execute(&buf, struct{ Text string }{Text: text}); err != nil {
		return "", err
	}
	return buf.String(), nil
}
