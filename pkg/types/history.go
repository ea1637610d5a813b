// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// HistoryEntry is one row of the rename journal.
type HistoryEntry struct {
	// RunID identifies the invocation that produced the entry.
	RunID string `json:"run_id" yaml:"run_id"`
	// OldPath is the path before processing.
	OldPath string `json:"old_path" yaml:"old_path"`
	// NewPath is the path after processing.
	NewPath string `json:"new_path" yaml:"new_path"`
	// Triple is the inferred metadata written into the file.
	Triple Triple `json:"triple" yaml:"triple"`
	// Model is the model identifier used for inference.
	Model string `json:"model" yaml:"model"`
	// Status is the processing outcome.
	Status DocumentStatus `json:"status" yaml:"status"`
	// Size and ModTime describe NewPath after processing; they let a re-run
	// recognise a file it already handled.
	Size    int64     `json:"size" yaml:"size"`
	ModTime time.Time `json:"mod_time" yaml:"mod_time"`
	// ProcessedAt is when the entry was written.
	ProcessedAt time.Time `json:"processed_at" yaml:"processed_at"`
}
