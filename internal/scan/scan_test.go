// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package scan

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func touch(t *testing.T, path string, mod time.Time) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte("%PDF-1.4"), 0o644))
	require.NoError(t, os.Chtimes(path, mod, mod))
}

func TestIsPDF(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{"paper.pdf", true},
		{"PAPER.PDF", true},
		{"paper.Pdf", true},
		{"paper.pdf.txt", false},
		{"paper", false},
		{"pdf", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsPDF(tt.name))
		})
	}
}

func TestPDFs_FiltersAndOrders(t *testing.T) {
	dir := t.TempDir()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	touch(t, filepath.Join(dir, "old.pdf"), base)
	touch(t, filepath.Join(dir, "new.PDF"), base.Add(2*time.Hour))
	touch(t, filepath.Join(dir, "b-tie.pdf"), base.Add(time.Hour))
	touch(t, filepath.Join(dir, "a-tie.pdf"), base.Add(time.Hour))
	touch(t, filepath.Join(dir, "notes.txt"), base.Add(3*time.Hour))
	touch(t, filepath.Join(dir, ".hidden.pdf"), base.Add(3*time.Hour))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "folder.pdf"), 0o755))

	pdfs, skipped, err := PDFs(dir)
	require.NoError(t, err)
	assert.Empty(t, skipped)

	var names []string
	for _, c := range pdfs {
		names = append(names, filepath.Base(c.Path))
	}
	assert.Equal(t, []string{"new.PDF", "a-tie.pdf", "b-tie.pdf", "old.pdf"}, names)
}

func TestPDFs_EmptyDirectory(t *testing.T) {
	pdfs, skipped, err := PDFs(t.TempDir())
	require.NoError(t, err)
	assert.Empty(t, pdfs)
	assert.Empty(t, skipped)
}

func TestPDFs_InvalidTarget(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "file.pdf")
	touch(t, file, time.Now())

	tests := []struct {
		name string
		path string
	}{
		{"missing", filepath.Join(dir, "missing")},
		{"regular file", file},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := PDFs(tt.path)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrNotDirectory)
		})
	}
}

func TestPDFs_SkipsDanglingSymlink(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "real.pdf"), time.Now())
	if err := os.Symlink(filepath.Join(dir, "gone.pdf"), filepath.Join(dir, "link.pdf")); err != nil {
		t.Skipf("symlinks unsupported: %v", err)
	}

	pdfs, skipped, err := PDFs(dir)
	require.NoError(t, err)
	require.Len(t, pdfs, 1)
	assert.Equal(t, "real.pdf", filepath.Base(pdfs[0].Path))
	require.Len(t, skipped, 1)
	assert.Contains(t, skipped[0].Error(), "link.pdf")
}
