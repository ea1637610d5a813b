// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package rename turns a bibliographic triple into a filesystem-safe name,
// moves the PDF to it, and writes the same triple into the Info dictionary.
package rename

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/pdiddy/pdf-renamer/pkg/types"
)

var (
	// ErrNotRenamable is returned by Apply for a triple without a known
	// author and title.
	ErrNotRenamable = errors.New("triple lacks author or title")
	// ErrMetadata wraps failures to write the Info dictionary.
	ErrMetadata = errors.New("writing PDF metadata")
)

const pdfExt = ".pdf"

// forbidden matches everything except letters, combining marks, digits,
// underscore, whitespace, parentheses, hyphen, and ampersand.
var (
	forbidden  = regexp.MustCompile(`[^\p{L}\p{M}\p{N}_\s()\-&]`)
	whitespace = regexp.MustCompile(`\s+`)
)

// Sanitize strips characters that are unsafe or noisy in filenames, collapses
// runs of whitespace to one space, trims, and caps the result at limit bytes
// without splitting a rune. A non-positive limit disables the cap.
func Sanitize(raw string, limit int) string {
	s := forbidden.ReplaceAllString(raw, "")
	s = strings.TrimSpace(whitespace.ReplaceAllString(s, " "))
	if limit <= 0 || len(s) <= limit {
		return s
	}
	cut := limit
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return strings.TrimSpace(s[:cut])
}

// FileName renders "Author - Title (Date).pdf". The date part is left out
// when the date is unknown. The stem is sanitized and capped at limit bytes.
func FileName(t types.Triple, limit int) string {
	t = t.Normalize()
	stem := t.Author + " - " + t.Title
	if !types.IsUnknown(t.Date) {
		stem += " (" + t.Date + ")"
	}
	stem = Sanitize(stem, limit)
	if stem == "" {
		stem = types.Unknown
	}
	return stem + pdfExt
}

// Destination returns the path in dir where a file named name should go.
// The name is used as is when nothing occupies it or when the occupant is
// current itself; otherwise _1, _2, ... is inserted before the extension
// until a free or identical slot is found.
func Destination(dir, name, current string) (string, error) {
	var curInfo os.FileInfo
	if current != "" {
		fi, err := os.Stat(current)
		if err != nil {
			return "", fmt.Errorf("stat %s: %w", current, err)
		}
		curInfo = fi
	}

	ext := filepath.Ext(name)
	stem := strings.TrimSuffix(name, ext)

	candidate := filepath.Join(dir, name)
	for n := 1; ; n++ {
		fi, err := os.Lstat(candidate)
		switch {
		case errors.Is(err, os.ErrNotExist):
			return candidate, nil
		case err != nil:
			return "", fmt.Errorf("stat %s: %w", candidate, err)
		case curInfo != nil && os.SameFile(fi, curInfo):
			return candidate, nil
		}
		candidate = filepath.Join(dir, fmt.Sprintf("%s_%d%s", stem, n, ext))
	}
}

// Options control Apply.
type Options struct {
	// NameLimit caps the filename stem in bytes.
	NameLimit int
	// DryRun computes the destination without touching the file.
	DryRun bool
	// Logger receives the inconsistent-state warning. Nil uses slog.Default().
	Logger *slog.Logger
}

// Apply renames the PDF at path after t and then writes t into its Info
// dictionary. It returns the resulting path and status:
//
//   - StatusRenamed or StatusUnchanged (name already correct) on success;
//   - StatusPlanned or StatusUnchanged in dry-run mode;
//   - StatusFailed when nothing was changed on disk;
//   - StatusInconsistent when the rename succeeded but the metadata write
//     did not. The rename is not rolled back.
func Apply(path string, t types.Triple, opts Options) (string, types.DocumentStatus, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if !t.Renamable() {
		return path, types.StatusSkipped, ErrNotRenamable
	}

	limit := opts.NameLimit
	if limit <= 0 {
		limit = types.DefaultNameLimit
	}

	dest, err := Destination(filepath.Dir(path), FileName(t, limit), path)
	if err != nil {
		return path, types.StatusFailed, err
	}
	same := filepath.Clean(dest) == filepath.Clean(path)

	if opts.DryRun {
		if same {
			return path, types.StatusUnchanged, nil
		}
		return dest, types.StatusPlanned, nil
	}

	if !same {
		if err := os.Rename(path, dest); err != nil {
			return path, types.StatusFailed, fmt.Errorf("renaming %s: %w", filepath.Base(path), err)
		}
	}

	if err := WriteMetadata(dest, t); err != nil {
		if same {
			return dest, types.StatusFailed, err
		}
		logger.Warn("renamed but metadata not written",
			"file", path, "new_path", dest, "error", err)
		return dest, types.StatusInconsistent, err
	}

	if same {
		return dest, types.StatusUnchanged, nil
	}
	return dest, types.StatusRenamed, nil
}
