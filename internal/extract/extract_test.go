// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/pdf-renamer/internal/pdftest"
)

func TestLeadingText(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name        string
		pages       []string
		limit       int
		wantContain []string
		wantAbsent  []string
	}{
		{
			name:        "single page",
			pages:       []string{"Title: Systems Design"},
			limit:       5,
			wantContain: []string{"Systems Design"},
		},
		{
			name:        "only leading pages are read",
			pages:       []string{"first page", "second page", "third page"},
			limit:       2,
			wantContain: []string{"first page", "second page"},
			wantAbsent:  []string{"third page"},
		},
		{
			name:        "zero limit reads every page",
			pages:       []string{"alpha", "omega"},
			limit:       0,
			wantContain: []string{"alpha", "omega"},
		},
		{
			name:        "blank pages are dropped",
			pages:       []string{"", "content after a blank page"},
			limit:       5,
			wantContain: []string{"content after a blank page"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, tt.name+".pdf")
			pdftest.Write(t, path, tt.pages, nil)

			e := &Extractor{Pages: tt.limit}
			text, err := e.LeadingText(path)
			require.NoError(t, err)
			for _, want := range tt.wantContain {
				assert.Contains(t, text, want)
			}
			for _, absent := range tt.wantAbsent {
				assert.NotContains(t, text, absent)
			}
		})
	}
}

func TestLeadingText_KeepsLinesApart(t *testing.T) {
	path := filepath.Join(t.TempDir(), "paper.pdf")
	pdftest.Write(t, path, []string{"Systems Design\nJane Doe\n2021"}, nil)

	text, err := (&Extractor{Pages: 1}).LeadingText(path)
	require.NoError(t, err)
	assert.Equal(t, "Systems Design\nJane Doe\n2021", text)
}

func TestLeadingText_NoText(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scan.pdf")
	pdftest.Write(t, path, []string{"", ""}, nil)

	text, err := (&Extractor{Pages: 5}).LeadingText(path)
	require.NoError(t, err)
	assert.Empty(t, text)
}

func TestLeadingText_Unreadable(t *testing.T) {
	dir := t.TempDir()
	corrupt := filepath.Join(dir, "corrupt.pdf")
	require.NoError(t, os.WriteFile(corrupt, []byte("this is not a pdf"), 0o644))

	tests := []struct {
		name string
		path string
	}{
		{"corrupt", corrupt},
		{"missing", filepath.Join(dir, "missing.pdf")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := (&Extractor{Pages: 5}).LeadingText(tt.path)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrUnreadable)
		})
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		name string
		in   string
		max  int
		want string
	}{
		{"shorter than limit", "abc", 5, "abc"},
		{"exact limit", "abcde", 5, "abcde"},
		{"cut", "abcdef", 3, "abc"},
		{"no limit", "abcdef", 0, "abcdef"},
		{"multibyte", "héllo wörld", 4, "héll"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Truncate(tt.in, tt.max))
		})
	}
}
