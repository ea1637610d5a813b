// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package rename

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sync"
	"time"

	"github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"github.com/pdiddy/pdf-renamer/pkg/types"
)

// PublicationDateKey is the custom Info entry that keeps the date exactly as
// inferred, since CreationDate only holds a normalized timestamp.
const PublicationDateKey = "PublicationDate"

// Metadata is the subset of the Info dictionary this tool writes.
type Metadata struct {
	Title           string
	Author          string
	PublicationDate string
	CreationDate    string
}

var configOnce sync.Once

func pdfConfig() *model.Configuration {
	configOnce.Do(api.DisableConfigDir)
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	// Plain xref tables keep the output readable by older PDF readers.
	conf.WriteObjectStream = false
	conf.WriteXRefStream = false
	return conf
}

// WriteMetadata sets Title, Author, PublicationDate and, when the date
// parses, CreationDate in the Info dictionary of the PDF at path. An
// unparseable date keeps the CreationDate the file already had. The
// document is rewritten into a temporary file next to path which then
// replaces it, so a failure leaves the original bytes in place.
func WriteMetadata(path string, t types.Triple) error {
	props := map[string]string{
		"Title":            t.Title,
		"Author":           t.Author,
		PublicationDateKey: t.Date,
	}
	creation, ok := CreationDate(t.Date)
	if !ok {
		if md, err := ReadMetadata(path); err == nil {
			creation = md.CreationDate
		}
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("%w: creating temp file: %v", ErrMetadata, err)
	}
	tmpPath := tmp.Name()
	tmp.Close()

	if err := api.AddPropertiesFile(path, tmpPath, props, pdfConfig()); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("%w: %s: %v", ErrMetadata, filepath.Base(path), err)
	}

	// The writer stamps CreationDate with the current time.
	if creation != "" {
		if err := appendInfoUpdate(tmpPath, map[string]string{"CreationDate": creation}); err != nil {
			os.Remove(tmpPath)
			return fmt.Errorf("%w: %s: setting creation date: %v", ErrMetadata, filepath.Base(path), err)
		}
	}

	if fi, err := os.Stat(path); err == nil {
		os.Chmod(tmpPath, fi.Mode().Perm())
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("%w: replacing %s: %v", ErrMetadata, filepath.Base(path), err)
	}
	return nil
}

// ReadMetadata reads the Info dictionary entries written by WriteMetadata.
// Missing entries come back empty.
func ReadMetadata(path string) (Metadata, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return Metadata{}, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	info := r.Trailer().Key("Info")
	return Metadata{
		Title:           info.Key("Title").Text(),
		Author:          info.Key("Author").Text(),
		PublicationDate: info.Key(PublicationDateKey).Text(),
		CreationDate:    info.Key("CreationDate").Text(),
	}, nil
}

var dateLayouts = []string{"2006-01-02", "2006-01", "2006/01/02", "2006/01", "2006"}

var yearPattern = regexp.MustCompile(`\b(1[5-9]\d{2}|20\d{2})\b`)

// CreationDate converts an inferred date into a PDF date string
// "D:YYYYMMDD000000Z". Year-only and year-month dates default the missing
// parts to 01. Free-form dates fall back to the first plausible year found.
// It reports false for unknown or unparseable dates.
func CreationDate(date string) (string, bool) {
	if types.IsUnknown(date) {
		return "", false
	}
	for _, layout := range dateLayouts {
		if d, err := time.Parse(layout, date); err == nil {
			return d.Format("D:20060102") + "000000Z", true
		}
	}
	if y := yearPattern.FindString(date); y != "" {
		return "D:" + y + "0101000000Z", true
	}
	return "", false
}
