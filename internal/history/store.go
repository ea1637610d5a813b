// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package history keeps a SQLite journal of renamed files so a re-run can
// skip work it already did and the user can review what changed.
package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/pdf-renamer/pkg/types"
)

const (
	// DirName is the per-directory folder holding the journal.
	DirName = ".pdf-renamer"
	dbFile  = "history.db"
)

// DefaultPath returns the journal location for a target directory.
func DefaultPath(dir string) string {
	return filepath.Join(dir, DirName, dbFile)
}

// Store manages the journal database.
type Store struct {
	db *sql.DB
}

// Open opens or creates the journal at path, creating parent directories
// and the schema as needed.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating history directory: %w", err)
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{db: db}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS entries (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id TEXT NOT NULL,
			old_path TEXT NOT NULL,
			new_path TEXT NOT NULL,
			author TEXT,
			title TEXT,
			date TEXT,
			model TEXT,
			status TEXT NOT NULL,
			size INTEGER,
			mod_time TEXT,
			processed_at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_entries_run_id ON entries(run_id)`,
		`CREATE TABLE IF NOT EXISTS file_status (
			path TEXT PRIMARY KEY,
			size INTEGER NOT NULL,
			mod_time TEXT NOT NULL
		)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

// Record appends e to the journal. Renamed and unchanged files are also
// remembered by path, size, and modification time so Processed can
// recognise them later.
func (s *Store) Record(ctx context.Context, e types.HistoryEntry) error {
	if e.ProcessedAt.IsZero() {
		e.ProcessedAt = time.Now()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO entries (run_id, old_path, new_path, author, title, date, model, status, size, mod_time, processed_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.RunID, e.OldPath, e.NewPath, e.Triple.Author, e.Triple.Title, e.Triple.Date,
		e.Model, string(e.Status), e.Size, formatTime(e.ModTime), formatTime(e.ProcessedAt),
	)
	if err != nil {
		return fmt.Errorf("inserting entry: %w", err)
	}

	if e.Status == types.StatusRenamed || e.Status == types.StatusUnchanged {
		if e.OldPath != e.NewPath {
			if _, err := tx.ExecContext(ctx, `DELETE FROM file_status WHERE path = ?`, e.OldPath); err != nil {
				return fmt.Errorf("clearing old file status: %w", err)
			}
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO file_status (path, size, mod_time) VALUES (?, ?, ?)
			 ON CONFLICT(path) DO UPDATE SET size=excluded.size, mod_time=excluded.mod_time`,
			e.NewPath, e.Size, formatTime(e.ModTime),
		)
		if err != nil {
			return fmt.Errorf("updating file status: %w", err)
		}
	}

	return tx.Commit()
}

// Processed reports whether path was handled before and has not changed
// since, judged by size and modification time.
func (s *Store) Processed(ctx context.Context, path string, size int64, modTime time.Time) (bool, error) {
	var storedSize int64
	var storedMod string
	err := s.db.QueryRowContext(ctx,
		`SELECT size, mod_time FROM file_status WHERE path = ?`, path,
	).Scan(&storedSize, &storedMod)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("querying file status: %w", err)
	}
	return storedSize == size && storedMod == formatTime(modTime), nil
}

// ListOptions filters List.
type ListOptions struct {
	// RunID restricts results to one run.
	RunID string
	// Limit caps the number of entries; zero means no limit.
	Limit int
}

// List returns journal entries, most recent first.
func (s *Store) List(ctx context.Context, opts ListOptions) ([]types.HistoryEntry, error) {
	query := `SELECT run_id, old_path, new_path, author, title, date, model, status, size, mod_time, processed_at
		FROM entries`
	var args []any
	if opts.RunID != "" {
		query += ` WHERE run_id = ?`
		args = append(args, opts.RunID)
	}
	query += ` ORDER BY id DESC`
	if opts.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, opts.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying entries: %w", err)
	}
	defer rows.Close()

	var entries []types.HistoryEntry
	for rows.Next() {
		var (
			e                          types.HistoryEntry
			author, title, date, model sql.NullString
			status                     string
			size                       sql.NullInt64
			modTime                    sql.NullString
			processedAt                string
		)
		if err := rows.Scan(&e.RunID, &e.OldPath, &e.NewPath, &author, &title, &date,
			&model, &status, &size, &modTime, &processedAt); err != nil {
			return nil, fmt.Errorf("scanning entry: %w", err)
		}
		e.Triple = types.Triple{Author: author.String, Title: title.String, Date: date.String}
		e.Model = model.String
		e.Status = types.DocumentStatus(status)
		e.Size = size.Int64
		e.ModTime = parseTime(modTime.String)
		e.ProcessedAt = parseTime(processedAt)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
