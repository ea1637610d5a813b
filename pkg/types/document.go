// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "strings"

// Unknown is the placeholder used for any bibliographic field the model could
// not determine.
const Unknown = "Unknown"

// Triple is the bibliographic (author, title, publication date) guess for one
// document. Empty fields are never stored; they hold Unknown instead.
type Triple struct {
	// Author is the primary author or author list as the model reported it.
	Author string `json:"author" yaml:"author"`
	// Title is the document title.
	Title string `json:"title" yaml:"title"`
	// Date is the publication date as reported (usually a year, "2021").
	Date string `json:"date" yaml:"date"`
}

// UnknownTriple returns a Triple with every field set to Unknown.
func UnknownTriple() Triple {
	return Triple{Author: Unknown, Title: Unknown, Date: Unknown}
}

// Normalize trims each field and replaces empty values with Unknown.
func (t Triple) Normalize() Triple {
	return Triple{
		Author: orUnknown(t.Author),
		Title:  orUnknown(t.Title),
		Date:   orUnknown(t.Date),
	}
}

// IsUnknown reports whether a single field value is the placeholder.
func IsUnknown(v string) bool {
	return v == "" || strings.EqualFold(strings.TrimSpace(v), Unknown)
}

// Renamable reports whether the triple carries enough to name a file:
// both author and title must be known.
func (t Triple) Renamable() bool {
	return !IsUnknown(t.Author) && !IsUnknown(t.Title)
}

func orUnknown(v string) string {
	v = strings.TrimSpace(v)
	if IsUnknown(v) {
		return Unknown
	}
	return v
}

// DocumentStatus is the outcome of processing one PDF.
type DocumentStatus string

const (
	// StatusRenamed means the file was renamed and its metadata rewritten.
	StatusRenamed DocumentStatus = "renamed"
	// StatusUnchanged means the computed name equals the current name; only
	// metadata was rewritten.
	StatusUnchanged DocumentStatus = "unchanged"
	// StatusSkipped means nothing was written (no text, unusable guess, or
	// already processed).
	StatusSkipped DocumentStatus = "skipped"
	// StatusFailed means a recoverable per-file error left the file untouched.
	StatusFailed DocumentStatus = "failed"
	// StatusInconsistent means the rename succeeded but the metadata write did
	// not, so the filename and the embedded fields disagree.
	StatusInconsistent DocumentStatus = "inconsistent"
	// StatusPlanned is used in dry-run mode for a rename that would happen.
	StatusPlanned DocumentStatus = "planned"
)

// Document is the per-file record that flows through the pipeline. It is
// discarded once the file has been handled.
type Document struct {
	// Path is the file path when processing started.
	Path string `json:"path" yaml:"path"`
	// NewPath is the path after renaming (equal to Path when not renamed).
	NewPath string `json:"new_path,omitempty" yaml:"new_path,omitempty"`
	// Text is the extracted leading text.
	Text string `json:"-" yaml:"-"`
	// Triple is the inferred bibliographic triple.
	Triple Triple `json:"triple" yaml:"triple"`
	// Status is the processing outcome.
	Status DocumentStatus `json:"status" yaml:"status"`
	// Reason explains a skip or failure.
	Reason string `json:"reason,omitempty" yaml:"reason,omitempty"`
	// Err holds the error behind a failed or inconsistent outcome.
	Err error `json:"-" yaml:"-"`
}
