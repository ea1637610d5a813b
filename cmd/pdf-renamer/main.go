// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the pdf-renamer CLI.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/pdf-renamer/internal/secrets"
)

// version is set at build time via ldflags.
var version = "dev"

const secretsDir = ".secrets/"

// rootCmd renames the PDFs of a directory; history and version are
// subcommands.
var rootCmd = &cobra.Command{
	Use:   "pdf-renamer <directory>",
	Short: "Rename PDFs after their author, title, and publication date",
	Long: `pdf-renamer reads the first pages of every PDF in a directory, asks a
language model for the document's author, title, and publication date, and
renames each file to "Author - Title (Date).pdf". The same fields are written
into the PDF's document information dictionary.

API keys are taken from ANTHROPIC_API_KEY, OPENAI_API_KEY, GEMINI_API_KEY or
PERPLEXITY_API_KEY, from a .env file, or from .secrets/<provider>-api-key.
Ollama models need no key; set OLLAMA_URL to reach a remote server.`,
	Args:          cobra.MaximumNArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		setupLogging(viper.GetBool("verbose"))
		return secrets.LoadEnv(viper.GetString("env-file"))
	},
	RunE: runRename,
}

func init() {
	cobra.OnInitialize(initConfig)

	pf := rootCmd.PersistentFlags()
	pf.String("config", "", "config file (default: ./pdf-renamer.yaml or ~/.config/pdf-renamer/pdf-renamer.yaml)")
	pf.BoolP("verbose", "v", false, "log debug details to stderr")
	pf.String("env-file", ".env", "dotenv file merged into the environment")
	pf.String("history-db", "", "rename journal path (default: <directory>/.pdf-renamer/history.db)")

	if err := viper.BindPFlags(pf); err != nil {
		panic(err)
	}
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("pdf-renamer")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "pdf-renamer"))
		}
	}

	viper.SetEnvPrefix("PDF_RENAMER")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func setupLogging(verbose bool) {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
