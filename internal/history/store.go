// Package history keeps a SQLite record of past lint runs and their findings.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// Finding kinds besides the mismatch labels.
const (
	KindAlbumDuplicate  = "album-duplicate"
	KindArtistDuplicate = "artist-duplicate"
	KindUntitledTrack   = "untitled-track"
)

// Store manages the history database.
type Store struct {
	db *sql.DB
}

// Run is one lint pass over one library section.
type Run struct {
	ID         string
	Section    string
	StartedAt  time.Time
	FinishedAt time.Time
	// Local is set when tags were read from disk.
	Local bool

	AlbumDuplicates        int
	ArtistDuplicates       int
	UntitledTracks         int
	ArtistMismatch         int
	VariousArtistsMismatch int
	AlbumArtistSortSet     int
	TagErrors              int
	TerminatedEarly        bool

	// Findings is only written by Record; List leaves it empty.
	Findings []Finding
}

// Finding is one reported problem.
type Finding struct {
	Kind   string
	Title  string
	Album  string
	Artist string
	Path   string
	Detail string
}

// Open opens or creates the history database at path.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 10000",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA journal_mode = WAL",
		"PRAGMA temp_store = MEMORY",
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to set pragma: %w", err)
		}
	}

	schema := `
		CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			section TEXT NOT NULL,
			started_at INTEGER NOT NULL,
			finished_at INTEGER NOT NULL,
			local BOOLEAN NOT NULL DEFAULT 0,
			album_duplicates INTEGER NOT NULL DEFAULT 0,
			artist_duplicates INTEGER NOT NULL DEFAULT 0,
			untitled_tracks INTEGER NOT NULL DEFAULT 0,
			artist_mismatch INTEGER NOT NULL DEFAULT 0,
			various_artists_mismatch INTEGER NOT NULL DEFAULT 0,
			albumartistsort_set INTEGER NOT NULL DEFAULT 0,
			tag_errors INTEGER NOT NULL DEFAULT 0,
			terminated_early BOOLEAN NOT NULL DEFAULT 0
		);

		CREATE TABLE IF NOT EXISTS findings (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
			kind TEXT NOT NULL,
			title TEXT,
			album TEXT,
			artist TEXT,
			path TEXT,
			detail TEXT
		);

		CREATE INDEX IF NOT EXISTS idx_runs_section ON runs(section, started_at);
		CREATE INDEX IF NOT EXISTS idx_findings_run ON findings(run_id);
	`

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Record stores a run and its findings and returns the run ID. A new UUID is
// assigned when run.ID is empty.
func (s *Store) Record(ctx context.Context, run Run) (string, error) {
	if run.ID == "" {
		run.ID = uuid.NewString()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO runs (
			id, section, started_at, finished_at, local,
			album_duplicates, artist_duplicates, untitled_tracks,
			artist_mismatch, various_artists_mismatch, albumartistsort_set,
			tag_errors, terminated_early
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		run.ID,
		run.Section,
		run.StartedAt.Unix(),
		run.FinishedAt.Unix(),
		run.Local,
		run.AlbumDuplicates,
		run.ArtistDuplicates,
		run.UntitledTracks,
		run.ArtistMismatch,
		run.VariousArtistsMismatch,
		run.AlbumArtistSortSet,
		run.TagErrors,
		run.TerminatedEarly,
	)
	if err != nil {
		return "", fmt.Errorf("failed to insert run: %w", err)
	}

	if len(run.Findings) > 0 {
		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO findings (run_id, kind, title, album, artist, path, detail)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`)
		if err != nil {
			return "", fmt.Errorf("failed to prepare statement: %w", err)
		}
		defer stmt.Close()

		for _, f := range run.Findings {
			if _, err := stmt.ExecContext(ctx, run.ID, f.Kind, f.Title, f.Album, f.Artist, f.Path, f.Detail); err != nil {
				return "", fmt.Errorf("failed to insert finding: %w", err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("failed to commit transaction: %w", err)
	}

	return run.ID, nil
}

// List returns recorded runs, newest first. An empty section matches every
// section; limit <= 0 means no limit.
func (s *Store) List(ctx context.Context, section string, limit int) ([]Run, error) {
	query := `
		SELECT id, section, started_at, finished_at, local,
			album_duplicates, artist_duplicates, untitled_tracks,
			artist_mismatch, various_artists_mismatch, albumartistsort_set,
			tag_errors, terminated_early
		FROM runs
	`
	var args []interface{}
	if section != "" {
		query += " WHERE section = ?"
		args = append(args, section)
	}
	query += " ORDER BY started_at DESC, rowid DESC"
	if limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		var started, finished int64

		err := rows.Scan(
			&r.ID,
			&r.Section,
			&started,
			&finished,
			&r.Local,
			&r.AlbumDuplicates,
			&r.ArtistDuplicates,
			&r.UntitledTracks,
			&r.ArtistMismatch,
			&r.VariousArtistsMismatch,
			&r.AlbumArtistSortSet,
			&r.TagErrors,
			&r.TerminatedEarly,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}

		r.StartedAt = time.Unix(started, 0)
		r.FinishedAt = time.Unix(finished, 0)
		runs = append(runs, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating runs: %w", err)
	}

	return runs, nil
}

// Findings returns the findings of one run in the order they were recorded.
func (s *Store) Findings(ctx context.Context, runID string) ([]Finding, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT kind, COALESCE(title, ''), COALESCE(album, ''), COALESCE(artist, ''),
			COALESCE(path, ''), COALESCE(detail, '')
		FROM findings
		WHERE run_id = ?
		ORDER BY id ASC
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query findings: %w", err)
	}
	defer rows.Close()

	var findings []Finding
	for rows.Next() {
		var f Finding
		if err := rows.Scan(&f.Kind, &f.Title, &f.Album, &f.Artist, &f.Path, &f.Detail); err != nil {
			return nil, fmt.Errorf("failed to scan finding: %w", err)
		}
		findings = append(findings, f)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating findings: %w", err)
	}

	return findings, nil
}

// Cleanup removes runs started more than maxAge ago, with their findings.
func (s *Store) Cleanup(ctx context.Context, maxAge time.Duration) (int64, error) {
	cutoff := time.Now().Add(-maxAge).Unix()

	result, err := s.db.ExecContext(ctx, "DELETE FROM runs WHERE started_at < ?", cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to cleanup old runs: %w", err)
	}

	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return deleted, nil
}
