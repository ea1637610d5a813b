// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// HTTPConfig holds HTTP settings for calls to the completion endpoint.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`
	// MaxRetries is the number of retries on HTTP 429. Zero disables retries.
	MaxRetries int `json:"max_retries" yaml:"max_retries"`
}

// AIConfig holds settings for the language model call.
type AIConfig struct {
	// Model is the model identifier (e.g. "claude-3-haiku-20240307").
	Model string `json:"model" yaml:"model"`
	// Provider overrides provider detection from the model name.
	Provider string `json:"provider,omitempty" yaml:"provider,omitempty"`
	// APIKey is the credential for the provider. Never serialized.
	APIKey string `json:"-" yaml:"-"`
	// BaseURL overrides the provider endpoint (used for local or proxy servers).
	BaseURL string `json:"base_url,omitempty" yaml:"base_url,omitempty"`
	// MaxTokens caps the length of the model answer.
	MaxTokens int `json:"max_tokens" yaml:"max_tokens"`
}

// RenameConfig groups every setting of a renaming run.
type RenameConfig struct {
	AIConfig   `yaml:",inline"`
	HTTPConfig `yaml:",inline"`

	// Directory is the folder whose PDFs are renamed.
	Directory string `json:"directory" yaml:"directory"`
	// PromptPath is the externally editable prompt file.
	PromptPath string `json:"prompt" yaml:"prompt"`
	// Pages is the number of leading pages to extract (default 5).
	Pages int `json:"pages" yaml:"pages"`
	// MaxChars caps the extracted text sent to the model (default 12000).
	MaxChars int `json:"max_chars" yaml:"max_chars"`
	// NameLimit caps the filename stem length in bytes (default 200).
	NameLimit int `json:"name_limit" yaml:"name_limit"`
	// DryRun computes new names without touching any file.
	DryRun bool `json:"dry_run" yaml:"dry_run"`
	// Force reprocesses files the journal already recorded.
	Force bool `json:"force" yaml:"force"`
	// HistoryDB is the journal path; empty disables the journal.
	HistoryDB string `json:"history_db,omitempty" yaml:"history_db,omitempty"`
}

const (
	DefaultPages     = 5
	DefaultMaxChars  = 12000
	DefaultNameLimit = 200
	DefaultMaxTokens = 512
	DefaultTimeout   = 120 * time.Second
)

// WithDefaults fills zero values with the defaults above.
func (c RenameConfig) WithDefaults() RenameConfig {
	if c.Pages <= 0 {
		c.Pages = DefaultPages
	}
	if c.MaxChars <= 0 {
		c.MaxChars = DefaultMaxChars
	}
	if c.NameLimit <= 0 {
		c.NameLimit = DefaultNameLimit
	}
	if c.MaxTokens <= 0 {
		c.MaxTokens = DefaultMaxTokens
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	return c
}
