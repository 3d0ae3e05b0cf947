// Package sqlite keeps every saved version of the institute document in a
// local SQLite database. Load returns the newest revision.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/alem-hub/institute-hub/internal/domain/institute"
	"github.com/alem-hub/institute-hub/internal/infrastructure/persistence/document"
)

var _ institute.Repository = (*Store)(nil)

// ══════════════════════════════════════════════════════════════════════════════
// SCHEMA
// ══════════════════════════════════════════════════════════════════════════════

const schema = `
CREATE TABLE IF NOT EXISTS institute_revisions (
    seq INTEGER PRIMARY KEY AUTOINCREMENT,
    id TEXT NOT NULL UNIQUE,
    institute_name TEXT NOT NULL,
    format TEXT NOT NULL,
    body BLOB NOT NULL,
    digest TEXT NOT NULL,
    saved_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_institute_revisions_saved_at ON institute_revisions (saved_at);
`

const (
	selectLatest = `SELECT id, institute_name, format, body, digest, saved_at FROM institute_revisions ORDER BY seq DESC LIMIT 1`

	selectLatestDigest = `SELECT digest FROM institute_revisions ORDER BY seq DESC LIMIT 1`

	insertRevision = `INSERT INTO institute_revisions (id, institute_name, format, body, digest, saved_at) VALUES (?, ?, ?, ?, ?, ?)`

	selectHistory = `SELECT id, institute_name, format, body, digest, saved_at FROM institute_revisions ORDER BY seq DESC LIMIT ?`
)

// ══════════════════════════════════════════════════════════════════════════════
// STORE
// ══════════════════════════════════════════════════════════════════════════════

// Store is a revision history over database/sql.
type Store struct {
	db    *sql.DB
	codec document.Codec
	now   func() time.Time
}

// Open connects to the SQLite database at dsn and creates the schema.
func Open(ctx context.Context, dsn string, codec document.Codec) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open %s: %w", dsn, err)
	}
	// An in-memory database exists only on its own connection.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite: ping: %w", err)
	}

	s := NewStore(db, codec)
	if err := s.Migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// NewStore wraps an open database. A nil codec means JSON.
func NewStore(db *sql.DB, codec document.Codec) *Store {
	if codec == nil {
		codec = document.JSON{}
	}
	return &Store{db: db, codec: codec, now: time.Now}
}

// Migrate creates the revisions table if it does not exist.
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("sqlite: migrate: %w", err)
	}
	return nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Load decodes the newest revision.
func (s *Store) Load(ctx context.Context) (*institute.Institute, error) {
	rev, err := scanRevision(s.db.QueryRowContext(ctx, selectLatest))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, institute.ErrDocumentNotFound
		}
		return nil, fmt.Errorf("sqlite: load latest revision: %w", err)
	}
	return rev.Decode()
}

// Save appends a revision unless its digest matches the newest one.
func (s *Store) Save(ctx context.Context, inst *institute.Institute) error {
	_, _, err := s.SaveRevision(ctx, inst)
	return err
}

// SaveRevision is Save that also reports the revision. The returned bool is
// false when the content was unchanged and nothing was written.
func (s *Store) SaveRevision(ctx context.Context, inst *institute.Institute) (document.Revision, bool, error) {
	rev, err := document.NewRevision(s.codec, inst, s.now())
	if err != nil {
		return document.Revision{}, false, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return document.Revision{}, false, fmt.Errorf("sqlite: begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var latest string
	switch err := tx.QueryRowContext(ctx, selectLatestDigest).Scan(&latest); {
	case errors.Is(err, sql.ErrNoRows):
	case err != nil:
		return document.Revision{}, false, fmt.Errorf("sqlite: read latest digest: %w", err)
	}
	if latest == rev.Digest {
		return rev, false, nil
	}

	if _, err := tx.ExecContext(ctx, insertRevision,
		rev.ID,
		rev.InstituteName,
		rev.Format,
		rev.Body,
		rev.Digest,
		rev.SavedAt.Format(time.RFC3339Nano),
	); err != nil {
		return document.Revision{}, false, fmt.Errorf("sqlite: insert revision: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return document.Revision{}, false, fmt.Errorf("sqlite: commit: %w", err)
	}
	return rev, true, nil
}

// History returns up to limit revisions, newest first.
func (s *Store) History(ctx context.Context, limit int) ([]document.Revision, error) {
	if limit <= 0 {
		return nil, nil
	}

	rows, err := s.db.QueryContext(ctx, selectHistory, limit)
	if err != nil {
		return nil, fmt.Errorf("sqlite: query history: %w", err)
	}
	defer rows.Close()

	var revisions []document.Revision
	for rows.Next() {
		rev, err := scanRevision(rows)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scan revision: %w", err)
		}
		revisions = append(revisions, rev)
	}
	return revisions, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRevision(row scanner) (document.Revision, error) {
	var (
		rev     document.Revision
		savedAt string
	)
	if err := row.Scan(&rev.ID, &rev.InstituteName, &rev.Format, &rev.Body, &rev.Digest, &savedAt); err != nil {
		return rev, err
	}
	t, err := time.Parse(time.RFC3339Nano, savedAt)
	if err != nil {
		return rev, fmt.Errorf("parse saved_at %q: %w", savedAt, err)
	}
	rev.SavedAt = t
	return rev, nil
}
