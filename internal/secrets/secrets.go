// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package secrets resolves provider API keys. Keys come from the process
// environment, from a dotenv file merged into it, or from a directory of
// plain-text files where the filename is the key name and the trimmed
// contents are the value.
//
// Supported key files: anthropic-api-key, openai-api-key, gemini-api-key,
// perplexity-api-key.
package secrets

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
)

// ErrMissingKey is returned when no source provides a required key.
var ErrMissingKey = errors.New("missing API key")

// Load reads all files in dir and returns a map of filename to trimmed contents.
// A missing directory or missing files are not errors; Load returns an empty map.
// Unreadable files are logged as warnings but do not abort.
func Load(dir string) (map[string]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("reading secrets directory %s: %w", dir, err)
	}

	secrets := make(map[string]string)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}

		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			slog.Warn("could not read secret", "name", name, "error", err)
			continue
		}

		value := strings.TrimSpace(string(data))
		if value != "" {
			secrets[name] = value
		}
	}

	return secrets, nil
}

// LoadEnv merges the dotenv file at path into the process environment.
// Variables already set are left alone. A missing file is not an error.
func LoadEnv(path string) error {
	if path == "" {
		return nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("loading %s: %w", path, err)
	}
	return nil
}

// FileName returns the secrets-directory filename for provider's key.
func FileName(provider string) string {
	return provider + "-api-key"
}

// Key returns the API key for provider. The environment variable envVar is
// consulted first, then the file FileName(provider) in dir.
func Key(provider, envVar, dir string) (string, error) {
	if envVar != "" {
		if v := strings.TrimSpace(os.Getenv(envVar)); v != "" {
			return v, nil
		}
	}

	files, err := Load(dir)
	if err != nil {
		return "", err
	}
	if v := files[FileName(provider)]; v != "" {
		return v, nil
	}

	return "", fmt.Errorf("%w for %s: set %s or create %s",
		ErrMissingKey, provider, envVar, filepath.Join(dir, FileName(provider)))
}
