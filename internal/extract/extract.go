// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package extract reads the leading text of PDF files.
package extract

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"
)

// ErrUnreadable wraps failures to open or parse a PDF (corrupt, encrypted,
// not a PDF at all).
var ErrUnreadable = errors.New("unreadable PDF")

// Extractor pulls plain text from the first Pages pages of a PDF.
type Extractor struct {
	// Pages is the number of leading pages to read.
	Pages int
	// Logger receives per-page warnings. Nil uses slog.Default().
	Logger *slog.Logger
}

// LeadingText returns the text of the first e.Pages pages of the PDF at path,
// joining non-empty pages with a blank line. A PDF with no extractable text
// returns "" and no error. Pages that fail to decode are logged and skipped.
func (e *Extractor) LeadingText(path string) (string, error) {
	logger := e.Logger
	if logger == nil {
		logger = slog.Default()
	}

	f, r, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrUnreadable, path, err)
	}
	defer f.Close()

	n := r.NumPage()
	if e.Pages > 0 && e.Pages < n {
		n = e.Pages
	}

	var texts []string
	for i := 1; i <= n; i++ {
		text, err := pageText(r, i)
		if err != nil {
			logger.Warn("skipping page", "file", path, "page", i, "error", err)
			continue
		}
		if text = strings.TrimSpace(text); text != "" {
			texts = append(texts, text)
		}
	}

	return strings.Join(texts, "\n\n"), nil
}

// baselineTolerance is how far, in points, the baseline may drift before
// glyphs are taken to start a new line.
const baselineTolerance = 1.0

// pageText extracts one page. The PDF library panics on some malformed
// content streams, so panics are turned into errors here.
func pageText(r *pdf.Reader, num int) (text string, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("decoding page %d: %v", num, rec)
		}
	}()

	page := r.Page(num)
	if page.V.IsNull() {
		return "", nil
	}
	if text, ok := lineText(page); ok {
		return text, nil
	}
	return page.GetPlainText(nil)
}

// lineText lays out the page glyphs one line per baseline, in content
// stream order. It reports false when the page has no positioned glyphs or
// the layout pass fails.
func lineText(page pdf.Page) (text string, ok bool) {
	defer func() {
		if recover() != nil {
			text, ok = "", false
		}
	}()

	glyphs := page.Content().Text
	if len(glyphs) == 0 {
		return "", false
	}

	var lines []string
	var b strings.Builder
	flush := func() {
		if line := strings.TrimSpace(b.String()); line != "" {
			lines = append(lines, line)
		}
		b.Reset()
	}
	lastY := glyphs[0].Y
	for _, g := range glyphs {
		if math.Abs(g.Y-lastY) > baselineTolerance {
			flush()
		}
		lastY = g.Y
		b.WriteString(g.S)
	}
	flush()
	return strings.Join(lines, "\n"), true
}

// Truncate shortens text to at most maxChars runes. A non-positive maxChars
// leaves text unchanged.
func Truncate(text string, maxChars int) string {
	if maxChars <= 0 || utf8.RuneCountInString(text) <= maxChars {
		return text
	}
	i := 0
	for pos := range text {
		if i == maxChars {
			return text[:pos]
		}
		i++
	}
	return text
}
