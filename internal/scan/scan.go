// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package scan enumerates the candidate PDF files of a directory.
package scan

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// ErrNotDirectory is returned when the target cannot be used as a directory.
var ErrNotDirectory = errors.New("not a readable directory")

// Candidate is a PDF found in the target directory.
type Candidate struct {
	Path    string
	Size    int64
	ModTime time.Time
}

// IsPDF reports whether name has a .pdf extension, ignoring case.
func IsPDF(name string) bool {
	return strings.EqualFold(filepath.Ext(name), ".pdf")
}

// PDFs lists the PDF files directly inside dir, most recently modified first
// with ties broken by name. Entries whose info cannot be read are returned in
// skipped and left out of the list. Only a directory that cannot be opened is
// a fatal error.
func PDFs(dir string) (pdfs []Candidate, skipped []error, err error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %s: %v", ErrNotDirectory, dir, err)
	}
	if !info.IsDir() {
		return nil, nil, fmt.Errorf("%w: %s", ErrNotDirectory, dir)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %s: %v", ErrNotDirectory, dir, err)
	}

	for _, entry := range entries {
		name := entry.Name()
		if strings.HasPrefix(name, ".") || !IsPDF(name) {
			continue
		}

		path := filepath.Join(dir, name)
		fi, err := os.Stat(path)
		if err != nil {
			skipped = append(skipped, fmt.Errorf("stat %s: %w", path, err))
			continue
		}
		if !fi.Mode().IsRegular() {
			continue
		}

		pdfs = append(pdfs, Candidate{
			Path:    path,
			Size:    fi.Size(),
			ModTime: fi.ModTime(),
		})
	}

	sort.SliceStable(pdfs, func(i, j int) bool {
		if !pdfs[i].ModTime.Equal(pdfs[j].ModTime) {
			return pdfs[i].ModTime.After(pdfs[j].ModTime)
		}
		return pdfs[i].Path < pdfs[j].Path
	})

	return pdfs, skipped, nil
}
