// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package secrets

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	tests := []struct {
		name   string
		setup  func(t *testing.T) string
		want   map[string]string
		errMsg string
	}{
		{
			name: "reads key files and trims whitespace",
			setup: func(t *testing.T) string {
				dir := t.TempDir()
				writeFile(t, dir, "anthropic-api-key", "  ak_abc123  \n")
				writeFile(t, dir, "openai-api-key", "sk_xyz789")
				writeFile(t, dir, "gemini-api-key", "gk_456\n")
				return dir
			},
			want: map[string]string{
				"anthropic-api-key": "ak_abc123",
				"openai-api-key":    "sk_xyz789",
				"gemini-api-key":    "gk_456",
			},
		},
		{
			name: "returns empty map for nonexistent directory",
			setup: func(t *testing.T) string {
				return filepath.Join(t.TempDir(), "does-not-exist")
			},
			want: map[string]string{},
		},
		{
			name: "skips empty files",
			setup: func(t *testing.T) string {
				dir := t.TempDir()
				writeFile(t, dir, "anthropic-api-key", "valid-key")
				writeFile(t, dir, "empty-key", "")
				writeFile(t, dir, "whitespace-only", "   \n\t  ")
				return dir
			},
			want: map[string]string{
				"anthropic-api-key": "valid-key",
			},
		},
		{
			name: "skips dotfiles",
			setup: func(t *testing.T) string {
				dir := t.TempDir()
				writeFile(t, dir, ".gitkeep", "")
				writeFile(t, dir, ".hidden-key", "secret")
				writeFile(t, dir, "perplexity-api-key", "pk_real")
				return dir
			},
			want: map[string]string{
				"perplexity-api-key": "pk_real",
			},
		},
		{
			name: "skips subdirectories",
			setup: func(t *testing.T) string {
				dir := t.TempDir()
				writeFile(t, dir, "anthropic-api-key", "ak_123")
				require.NoError(t, os.Mkdir(filepath.Join(dir, "subdir"), 0o755))
				return dir
			},
			want: map[string]string{
				"anthropic-api-key": "ak_123",
			},
		},
		{
			name: "returns empty map for empty directory",
			setup: func(t *testing.T) string {
				return t.TempDir()
			},
			want: map[string]string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := tt.setup(t)
			got, err := Load(dir)
			if tt.errMsg != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLoadUnreadableFile(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("root ignores file permissions")
	}
	dir := t.TempDir()
	writeFile(t, dir, "good-key", "value123")

	// Create a file then remove read permission.
	badPath := filepath.Join(dir, "bad-key")
	require.NoError(t, os.WriteFile(badPath, []byte("secret"), 0o000))
	t.Cleanup(func() { os.Chmod(badPath, 0o644) })

	got, err := Load(dir)
	require.NoError(t, err)
	// The good file should still be returned; the bad file is skipped with a warning.
	assert.Equal(t, "value123", got["good-key"])
	_, hasBad := got["bad-key"]
	assert.False(t, hasBad, "unreadable file should not appear in result")
}

func TestKey(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "openai-api-key", "sk_from_file")

	t.Run("environment wins", func(t *testing.T) {
		t.Setenv("OPENAI_API_KEY", "sk_from_env")
		got, err := Key("openai", "OPENAI_API_KEY", dir)
		require.NoError(t, err)
		assert.Equal(t, "sk_from_env", got)
	})

	t.Run("falls back to file", func(t *testing.T) {
		t.Setenv("OPENAI_API_KEY", "")
		got, err := Key("openai", "OPENAI_API_KEY", dir)
		require.NoError(t, err)
		assert.Equal(t, "sk_from_file", got)
	})

	t.Run("missing everywhere", func(t *testing.T) {
		t.Setenv("GEMINI_API_KEY", "")
		_, err := Key("gemini", "GEMINI_API_KEY", dir)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrMissingKey)
		assert.Contains(t, err.Error(), "GEMINI_API_KEY")
	})
}

func TestLoadEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	writeFile(t, dir, ".env", "PDF_RENAMER_TEST_KEY=from-dotenv\nPDF_RENAMER_TEST_KEPT=from-dotenv\n")

	t.Setenv("PDF_RENAMER_TEST_KEY", "")
	os.Unsetenv("PDF_RENAMER_TEST_KEY")
	t.Setenv("PDF_RENAMER_TEST_KEPT", "from-env")

	require.NoError(t, LoadEnv(path))
	t.Cleanup(func() { os.Unsetenv("PDF_RENAMER_TEST_KEY") })
	assert.Equal(t, "from-dotenv", os.Getenv("PDF_RENAMER_TEST_KEY"))
	assert.Equal(t, "from-env", os.Getenv("PDF_RENAMER_TEST_KEPT"), "existing variables are not overridden")

	assert.NoError(t, LoadEnv(filepath.Join(dir, "missing.env")))
	assert.NoError(t, LoadEnv(""))
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}
