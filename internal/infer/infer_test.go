// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package infer

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/pdf-renamer/pkg/types"
)

// stubBackend records requests and returns a canned answer.
type stubBackend struct {
	reply string
	err   error
	calls []Request
}

func (s *stubBackend) Complete(_ context.Context, req Request) (string, error) {
	s.calls = append(s.calls, req)
	return s.reply, s.err
}

func (s *stubBackend) Name() string { return "stub" }

func TestClientInfer(t *testing.T) {
	b := &stubBackend{reply: `{"author": "Jane Doe", "title": "Systems Design", "pubdate": "2021"}`}
	c := NewClient(b, "", "custom prompt", 256)

	got, err := c.Infer(context.Background(), "Systems Design\nJane Doe\n2021")
	require.NoError(t, err)
	assert.Equal(t, types.Triple{Author: "Jane Doe", Title: "Systems Design", Date: "2021"}, got)

	require.Len(t, b.calls, 1)
	req := b.calls[0]
	assert.Equal(t, DefaultModel, req.Model)
	assert.Equal(t, "custom prompt", req.System)
	assert.Equal(t, 256, req.MaxTokens)
	assert.Contains(t, req.User, "Systems Design\nJane Doe\n2021")
}

func TestClientInfer_BlankTextSkipsBackend(t *testing.T) {
	b := &stubBackend{}
	c := NewClient(b, "gpt-4", "", 0)

	got, err := c.Infer(context.Background(), "  \n\t ")
	require.NoError(t, err)
	assert.Equal(t, types.UnknownTriple(), got)
	assert.Empty(t, b.calls)
}

func TestClientInfer_BackendError(t *testing.T) {
	boom := errors.New("connection refused")
	c := NewClient(&stubBackend{err: boom}, "", "", 0)

	got, err := c.Infer(context.Background(), "some text")
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, types.UnknownTriple(), got)
}

func TestClientInfer_UnparseableAnswer(t *testing.T) {
	c := NewClient(&stubBackend{reply: "Sorry, I cannot tell."}, "", "", 0)

	got, err := c.Infer(context.Background(), "some text")
	assert.ErrorIs(t, err, ErrUnparseable)
	assert.Equal(t, types.UnknownTriple(), got)
}

func TestNewClient_DefaultPrompt(t *testing.T) {
	c := NewClient(&stubBackend{}, "", "   ", 0)
	assert.Equal(t, DefaultPrompt, c.Prompt)
	assert.NotEmpty(t, DefaultPrompt)
	assert.Contains(t, DefaultPrompt, "pubdate")
}

func TestLoadPrompt(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "prompt.txt")
	require.NoError(t, os.WriteFile(path, []byte("be brief"), 0o644))

	got, err := LoadPrompt(path)
	require.NoError(t, err)
	assert.Equal(t, "be brief", got)

	_, err = LoadPrompt(filepath.Join(dir, "missing.txt"))
	assert.ErrorIs(t, err, ErrPromptMissing)
}
