// Package summarystore caches per-article summaries so an interrupted
// summarization phase does not repeat generation calls when resumed.
package summarystore

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/lizzypokerface/news-hub-aggregator/internal/digest"
)

// FileName is the database file created inside a run workspace.
const FileName = "summaries.db"

//go:embed schema.sql
var schemaSQL string

const schemaVersion = 1

// ErrSchemaMismatch indicates the database was written by a different schema.
var ErrSchemaMismatch = errors.New("schema version mismatch")

// Store is a sqlite-backed brief cache keyed by digest date and URL.
type Store struct {
	db   *sql.DB
	path string
}

// Open creates or connects to the cache database at path.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create summary store directory: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	// a single connection keeps pragmas applied for every statement
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: path}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Path returns the database file location.
func (s *Store) Path() string { return s.path }

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) initSchema(ctx context.Context) error {
	var tableExists int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(1) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	).Scan(&tableExists)
	if err != nil {
		return fmt.Errorf("check schema_version table: %w", err)
	}
	if tableExists == 0 {
		return s.createSchema(ctx)
	}

	var version int
	if err := s.db.QueryRowContext(ctx, "SELECT version FROM schema_version LIMIT 1").Scan(&version); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	if version != schemaVersion {
		return fmt.Errorf("%w: database has version %d, expected %d (delete %s)",
			ErrSchemaMismatch, version, schemaVersion, s.path)
	}
	return nil
}

func (s *Store) createSchema(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "INSERT INTO schema_version (version) VALUES (?)", schemaVersion); err != nil {
		return fmt.Errorf("record schema version: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema: %w", err)
	}
	return nil
}

// Get returns the cached brief for url, or nil when none is stored.
// Failed briefs are never returned so a resumed run tries them again.
func (s *Store) Get(ctx context.Context, date time.Time, url string) (*digest.Brief, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT title, source, url, status, summary, collected_at
         FROM briefs WHERE digest_date = ? AND url = ? AND status != ?`,
		dateKey(date), url, string(digest.BriefFailed),
	)
	var (
		brief       digest.Brief
		title       sql.NullString
		source      sql.NullString
		status      string
		collectedAt string
	)
	err := row.Scan(&title, &source, &brief.URL, &status, &brief.Summary, &collectedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get brief: %w", err)
	}
	brief.Title = title.String
	brief.Source = source.String
	brief.Status = digest.BriefStatus(status)
	if ts, parseErr := time.Parse(time.RFC3339Nano, collectedAt); parseErr == nil {
		brief.CollectedAt = ts
	}
	return &brief, nil
}

// Put stores or replaces the brief for its URL.
func (s *Store) Put(ctx context.Context, date time.Time, runID string, brief digest.Brief) error {
	collected := brief.CollectedAt
	if collected.IsZero() {
		collected = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO briefs (digest_date, url, run_id, title, source, status, summary, collected_at)
         VALUES (?, ?, ?, ?, ?, ?, ?, ?)
         ON CONFLICT(digest_date, url) DO UPDATE SET
             run_id = excluded.run_id,
             title = excluded.title,
             source = excluded.source,
             status = excluded.status,
             summary = excluded.summary,
             collected_at = excluded.collected_at`,
		dateKey(date),
		brief.URL,
		nullableString(runID),
		nullableString(brief.Title),
		nullableString(brief.Source),
		string(brief.Status),
		brief.Summary,
		collected.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("put brief: %w", err)
	}
	return nil
}

// Counts tallies stored briefs by status for date.
func (s *Store) Counts(ctx context.Context, date time.Time) (map[digest.BriefStatus]int, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT status, COUNT(1) FROM briefs WHERE digest_date = ? GROUP BY status`,
		dateKey(date),
	)
	if err != nil {
		return nil, fmt.Errorf("count briefs: %w", err)
	}
	defer rows.Close()

	counts := map[digest.BriefStatus]int{}
	for rows.Next() {
		var (
			status string
			n      int
		)
		if err := rows.Scan(&status, &n); err != nil {
			return nil, fmt.Errorf("scan brief count: %w", err)
		}
		counts[digest.BriefStatus(status)] = n
	}
	return counts, rows.Err()
}

func dateKey(date time.Time) string {
	return date.Format("2006-01-02")
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}
