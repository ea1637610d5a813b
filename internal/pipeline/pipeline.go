// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pipeline runs the rename stages over a directory: enumerate PDFs,
// extract their leading text, infer a triple, rename and rewrite metadata,
// and journal the outcome. Files are handled one at a time.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pdiddy/pdf-renamer/internal/extract"
	"github.com/pdiddy/pdf-renamer/internal/infer"
	"github.com/pdiddy/pdf-renamer/internal/rename"
	"github.com/pdiddy/pdf-renamer/internal/scan"
	"github.com/pdiddy/pdf-renamer/pkg/types"
)

// TextExtractor reads the leading text of a PDF.
type TextExtractor interface {
	LeadingText(path string) (string, error)
}

// Journal remembers processed files. *history.Store implements it.
type Journal interface {
	Record(ctx context.Context, e types.HistoryEntry) error
	Processed(ctx context.Context, path string, size int64, modTime time.Time) (bool, error)
}

// Deps are the collaborators of a run.
type Deps struct {
	Extractor TextExtractor
	Inferrer  infer.Inferrer
	// Journal is optional; nil disables skip detection and recording.
	Journal Journal
	// RunID tags journal entries.
	RunID string
	// Logger receives per-file diagnostics. Nil uses slog.Default().
	Logger *slog.Logger
}

func (d Deps) logger() *slog.Logger {
	if d.Logger != nil {
		return d.Logger
	}
	return slog.Default()
}

// BatchResult holds the outcome of a run.
type BatchResult struct {
	Renamed      int
	Unchanged    int
	Planned      int
	Skipped      int
	Failed       int
	Inconsistent int
	Documents    []types.Document
}

// Total returns the number of files handled.
func (r BatchResult) Total() int {
	return r.Renamed + r.Unchanged + r.Planned + r.Skipped + r.Failed + r.Inconsistent
}

// HasFailures reports whether any file failed or was left inconsistent.
func (r BatchResult) HasFailures() bool {
	return r.Failed > 0 || r.Inconsistent > 0
}

func (r *BatchResult) add(doc types.Document) {
	switch doc.Status {
	case types.StatusRenamed:
		r.Renamed++
	case types.StatusUnchanged:
		r.Unchanged++
	case types.StatusPlanned:
		r.Planned++
	case types.StatusSkipped:
		r.Skipped++
	case types.StatusInconsistent:
		r.Inconsistent++
	default:
		r.Failed++
	}
	r.Documents = append(r.Documents, doc)
}

// Run processes every PDF in dir in scan order and writes one status line
// per file to w, followed by a batch summary. Only an unusable directory or
// a cancelled context end the run early with an error; per-file problems
// are counted and reported.
func Run(ctx context.Context, dir string, deps Deps, cfg types.RenameConfig, w io.Writer) (BatchResult, error) {
	cfg = cfg.WithDefaults()
	logger := deps.logger()

	candidates, scanErrs, err := scan.PDFs(dir)
	if err != nil {
		return BatchResult{}, err
	}

	var result BatchResult
	for _, serr := range scanErrs {
		fmt.Fprintf(w, "failed:  %v\n", serr)
		logger.Warn("skipping directory entry", "error", serr)
		result.Failed++
	}

	if len(candidates) == 0 {
		fmt.Fprintf(w, "no PDF files in %s\n", dir)
	}

	for _, c := range candidates {
		if err := ctx.Err(); err != nil {
			writeSummary(w, result, cfg.DryRun)
			return result, err
		}

		doc := ProcessFile(ctx, c, deps, cfg)
		writeStatus(w, doc)
		result.add(doc)
	}

	writeSummary(w, result, cfg.DryRun)
	return result, nil
}

// ProcessFile takes one PDF through extraction, inference, renaming and
// journaling. Errors are recorded on the returned Document, never returned.
func ProcessFile(ctx context.Context, c scan.Candidate, deps Deps, cfg types.RenameConfig) types.Document {
	cfg = cfg.WithDefaults()
	logger := deps.logger().With("file", c.Path)
	doc := types.Document{Path: c.Path, NewPath: c.Path, Triple: types.UnknownTriple()}

	if deps.Journal != nil && !cfg.Force {
		done, err := deps.Journal.Processed(ctx, c.Path, c.Size, c.ModTime)
		if err != nil {
			logger.Warn("history lookup failed", "error", err)
		} else if done {
			logger.Debug("already processed")
			return skip(doc, "already processed")
		}
	}

	text, err := deps.Extractor.LeadingText(c.Path)
	if err != nil {
		logger.Error("text extraction failed", "error", err)
		return fail(doc, err)
	}
	doc.Text = extract.Truncate(text, cfg.MaxChars)

	if strings.TrimSpace(doc.Text) == "" {
		logger.Info("no extractable text")
		return skip(doc, "no text found")
	}

	triple, err := deps.Inferrer.Infer(ctx, doc.Text)
	if err != nil {
		logger.Error("inference failed", "error", err)
		return fail(doc, err)
	}
	doc.Triple = triple.Normalize()
	logger.Debug("inferred", "author", doc.Triple.Author, "title", doc.Triple.Title, "date", doc.Triple.Date)

	if !doc.Triple.Renamable() {
		doc = skip(doc, "author or title unknown")
		record(ctx, deps, cfg, doc, logger)
		return doc
	}

	newPath, status, err := rename.Apply(c.Path, doc.Triple, rename.Options{
		NameLimit: cfg.NameLimit,
		DryRun:    cfg.DryRun,
		Logger:    logger,
	})
	doc.NewPath = newPath
	doc.Status = status
	if err != nil {
		doc.Err = err
		doc.Reason = err.Error()
		if status == types.StatusFailed {
			logger.Error("rename failed", "error", err)
		}
	}

	record(ctx, deps, cfg, doc, logger)
	return doc
}

func skip(doc types.Document, reason string) types.Document {
	doc.Status = types.StatusSkipped
	doc.Reason = reason
	return doc
}

func fail(doc types.Document, err error) types.Document {
	doc.Status = types.StatusFailed
	doc.Err = err
	doc.Reason = err.Error()
	return doc
}

// record writes doc to the journal. Dry runs leave no trace.
func record(ctx context.Context, deps Deps, cfg types.RenameConfig, doc types.Document, logger *slog.Logger) {
	if deps.Journal == nil || cfg.DryRun {
		return
	}

	e := types.HistoryEntry{
		RunID:   deps.RunID,
		OldPath: doc.Path,
		NewPath: doc.NewPath,
		Triple:  doc.Triple,
		Model:   cfg.Model,
		Status:  doc.Status,
	}
	if fi, err := os.Stat(doc.NewPath); err == nil {
		e.Size = fi.Size()
		e.ModTime = fi.ModTime()
	} else if !errors.Is(err, os.ErrNotExist) {
		logger.Warn("stat after rename failed", "error", err)
	}

	if err := deps.Journal.Record(ctx, e); err != nil {
		logger.Warn("history record failed", "error", err)
	}
}

func writeStatus(w io.Writer, doc types.Document) {
	oldName := filepath.Base(doc.Path)
	newName := filepath.Base(doc.NewPath)

	switch doc.Status {
	case types.StatusRenamed:
		fmt.Fprintf(w, "renamed: %s -> %s\n", oldName, newName)
	case types.StatusPlanned:
		fmt.Fprintf(w, "would rename: %s -> %s\n", oldName, newName)
	case types.StatusUnchanged:
		fmt.Fprintf(w, "unchanged: %s\n", oldName)
	case types.StatusSkipped:
		fmt.Fprintf(w, "skipped: %s (%s)\n", oldName, doc.Reason)
	case types.StatusInconsistent:
		fmt.Fprintf(w, "inconsistent: %s -> %s (%s)\n", oldName, newName, doc.Reason)
	default:
		fmt.Fprintf(w, "failed:  %s (%s)\n", oldName, doc.Reason)
	}
}

func writeSummary(w io.Writer, r BatchResult, dryRun bool) {
	if dryRun {
		fmt.Fprintf(w, "\nBatch summary (dry run): %d would be renamed, %d unchanged, %d skipped, %d failed (total: %d)\n",
			r.Planned, r.Unchanged, r.Skipped, r.Failed, r.Total())
		return
	}
	fmt.Fprintf(w, "\nBatch summary: %d renamed, %d unchanged, %d skipped, %d failed, %d inconsistent (total: %d)\n",
		r.Renamed, r.Unchanged, r.Skipped, r.Failed, r.Inconsistent, r.Total())
}
