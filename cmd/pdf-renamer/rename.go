// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/pdf-renamer/internal/extract"
	"github.com/pdiddy/pdf-renamer/internal/history"
	"github.com/pdiddy/pdf-renamer/internal/infer"
	"github.com/pdiddy/pdf-renamer/internal/pipeline"
	"github.com/pdiddy/pdf-renamer/internal/scan"
	"github.com/pdiddy/pdf-renamer/internal/secrets"
	"github.com/pdiddy/pdf-renamer/pkg/types"
)

const defaultPromptPath = "prompt.txt"

func init() {
	f := rootCmd.Flags()
	f.String("model", infer.DefaultModel, "model identifier; the provider is inferred from it")
	f.String("provider", "", "provider override: anthropic, openai, gemini, perplexity, ollama")
	f.String("base-url", "", "override the provider endpoint")
	f.String("prompt", defaultPromptPath, "prompt file sent as the system instruction")
	f.Int("pages", types.DefaultPages, "number of leading pages to read (0 reads all)")
	f.Int("max-chars", types.DefaultMaxChars, "maximum characters of text sent to the model")
	f.Int("max-tokens", types.DefaultMaxTokens, "maximum tokens in the model answer")
	f.Int("name-limit", types.DefaultNameLimit, "maximum filename length in bytes, before the extension")
	f.Bool("dry-run", false, "print the new names without touching any file")
	f.Bool("force", false, "reprocess files the journal already recorded")
	f.Bool("no-history", false, "do not read or write the rename journal")
	f.Duration("timeout", types.DefaultTimeout, "HTTP timeout for each model call")
	f.Int("max-retries", 0, "retries on HTTP 429 with exponential backoff (0 disables)")

	if err := viper.BindPFlags(f); err != nil {
		panic(err)
	}
}

// renameConfig gathers the run settings from flags, config file, and
// environment.
func renameConfig(args []string) (types.RenameConfig, error) {
	dir := viper.GetString("directory")
	if len(args) > 0 {
		dir = args[0]
	}
	if dir == "" {
		return types.RenameConfig{}, errors.New("directory required: pdf-renamer <directory>")
	}

	cfg := types.RenameConfig{
		AIConfig: types.AIConfig{
			Model:     viper.GetString("model"),
			Provider:  viper.GetString("provider"),
			BaseURL:   viper.GetString("base-url"),
			MaxTokens: viper.GetInt("max-tokens"),
		},
		HTTPConfig: types.HTTPConfig{
			Timeout:    viper.GetDuration("timeout"),
			MaxRetries: viper.GetInt("max-retries"),
		},
		Directory:  dir,
		PromptPath: viper.GetString("prompt"),
		Pages:      viper.GetInt("pages"),
		MaxChars:   viper.GetInt("max-chars"),
		NameLimit:  viper.GetInt("name-limit"),
		DryRun:     viper.GetBool("dry-run"),
		Force:      viper.GetBool("force"),
	}
	if cfg.Model == "" {
		cfg.Model = infer.DefaultModel
	}
	if !viper.GetBool("no-history") {
		cfg.HistoryDB = viper.GetString("history-db")
		if cfg.HistoryDB == "" {
			cfg.HistoryDB = history.DefaultPath(dir)
		}
	}

	pages := cfg.Pages
	cfg = cfg.WithDefaults()
	if pages == 0 {
		cfg.Pages = 0
	}
	return cfg, nil
}

// loadPrompt reads the prompt file. A missing file at the default path falls
// back to the built-in prompt; a missing file the user named is an error.
func loadPrompt(path string) (string, error) {
	prompt, err := infer.LoadPrompt(path)
	if err == nil {
		return prompt, nil
	}
	if errors.Is(err, infer.ErrPromptMissing) && !viper.IsSet("prompt") {
		slog.Debug("prompt file not found, using built-in prompt", "path", path)
		return infer.DefaultPrompt, nil
	}
	return "", err
}

// resolveCredentials fills cfg.APIKey (or the Ollama base URL) for provider.
func resolveCredentials(cfg *types.RenameConfig) error {
	if cfg.Provider == infer.ProviderOllama {
		if cfg.BaseURL == "" {
			cfg.BaseURL = os.Getenv("OLLAMA_URL")
		}
		return nil
	}
	key, err := secrets.Key(cfg.Provider, infer.KeyEnvVar(cfg.Provider), secretsDir)
	if err != nil {
		return err
	}
	cfg.APIKey = key
	return nil
}

func runRename(cmd *cobra.Command, args []string) error {
	cfg, err := renameConfig(args)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Nothing to infer: report the empty batch without asking for a key.
	candidates, _, err := scan.PDFs(cfg.Directory)
	if err != nil {
		return err
	}
	if len(candidates) == 0 {
		_, err := pipeline.Run(ctx, cfg.Directory, pipeline.Deps{}, cfg, cmd.OutOrStdout())
		return err
	}

	cfg.Provider, err = infer.ResolveProvider(cfg.Model, cfg.Provider)
	if err != nil {
		return err
	}
	if err := resolveCredentials(&cfg); err != nil {
		return err
	}

	prompt, err := loadPrompt(cfg.PromptPath)
	if err != nil {
		return err
	}

	backend, err := infer.NewBackend(cfg.Provider, cfg, &http.Client{Timeout: cfg.Timeout})
	if err != nil {
		return err
	}

	runID := uuid.NewString()
	logger := slog.Default().With("run", runID)
	logger.Debug("starting run", "dir", cfg.Directory, "model", cfg.Model, "provider", cfg.Provider, "dry_run", cfg.DryRun)

	deps := pipeline.Deps{
		Extractor: &extract.Extractor{Pages: cfg.Pages, Logger: logger},
		Inferrer:  infer.NewClient(backend, cfg.Model, prompt, cfg.MaxTokens),
		RunID:     runID,
		Logger:    logger,
	}

	if cfg.HistoryDB != "" && !cfg.DryRun {
		if fi, err := os.Stat(cfg.Directory); err == nil && fi.IsDir() {
			store, err := history.Open(cfg.HistoryDB)
			if err != nil {
				return fmt.Errorf("opening rename journal: %w", err)
			}
			defer store.Close()
			deps.Journal = store
		}
	}

	result, err := pipeline.Run(ctx, cfg.Directory, deps, cfg, cmd.OutOrStdout())
	if err != nil {
		return err
	}
	if result.HasFailures() {
		logger.Warn("some files were not renamed", "failed", result.Failed, "inconsistent", result.Inconsistent)
	}
	return nil
}
