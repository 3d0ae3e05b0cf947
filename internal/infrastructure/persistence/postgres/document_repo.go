package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/alem-hub/institute-hub/internal/domain/institute"
	"github.com/alem-hub/institute-hub/internal/infrastructure/persistence/document"
)

var _ institute.Repository = (*DocumentRepository)(nil)

// ══════════════════════════════════════════════════════════════════════════════
// DOCUMENT REPOSITORY IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

const (
	selectLatestRevision = `
		SELECT id::text, institute_name, format, body, digest, saved_at
		FROM institute_revisions
		ORDER BY seq DESC
		LIMIT 1
	`

	lockRevisions = `LOCK TABLE institute_revisions IN SHARE ROW EXCLUSIVE MODE`

	// Inserts only when the newest stored digest differs from $5.
	insertRevisionIfChanged = `
		INSERT INTO institute_revisions (id, institute_name, format, body, digest, saved_at)
		SELECT $1::uuid, $2::varchar, $3::varchar, $4::bytea, $5::text, $6::timestamptz
		WHERE NOT EXISTS (
			SELECT 1 FROM (
				SELECT digest FROM institute_revisions ORDER BY seq DESC LIMIT 1
			) latest
			WHERE latest.digest = $5::text
		)
	`

	selectRevisionHistory = `
		SELECT id::text, institute_name, format, body, digest, saved_at
		FROM institute_revisions
		ORDER BY seq DESC
		LIMIT $1
	`
)

// DocumentRepository implements institute.Repository as an append-only
// revision history.
type DocumentRepository struct {
	conn  txQuerier
	codec document.Codec
	now   func() time.Time
}

// NewDocumentRepository creates a repository that encodes with codec. A nil
// codec means JSON.
func NewDocumentRepository(conn *Connection, codec document.Codec) *DocumentRepository {
	return newDocumentRepository(conn, codec)
}

func newDocumentRepository(conn txQuerier, codec document.Codec) *DocumentRepository {
	if codec == nil {
		codec = document.JSON{}
	}
	return &DocumentRepository{conn: conn, codec: codec, now: time.Now}
}

// Load decodes the newest revision.
func (r *DocumentRepository) Load(ctx context.Context) (*institute.Institute, error) {
	rev, err := scanRevision(r.conn.QueryRow(ctx, selectLatestRevision))
	if err != nil {
		if IsNoRows(err) {
			return nil, institute.ErrDocumentNotFound
		}
		return nil, fmt.Errorf("failed to load latest revision: %w", err)
	}
	return rev.Decode()
}

// Save appends a revision unless the content is unchanged.
func (r *DocumentRepository) Save(ctx context.Context, inst *institute.Institute) error {
	_, err := r.SaveRevision(ctx, inst)
	return err
}

// SaveRevision stores a new revision inside a transaction that holds off
// concurrent writers. It reports whether a row was written.
func (r *DocumentRepository) SaveRevision(ctx context.Context, inst *institute.Institute) (bool, error) {
	rev, err := document.NewRevision(r.codec, inst, r.now())
	if err != nil {
		return false, err
	}

	var written bool
	err = r.conn.WithTx(ctx, func(tx Querier) error {
		if _, err := tx.Exec(ctx, lockRevisions); err != nil {
			return fmt.Errorf("failed to lock revisions: %w", err)
		}

		tag, err := tx.Exec(ctx, insertRevisionIfChanged,
			rev.ID,
			rev.InstituteName,
			rev.Format,
			rev.Body,
			rev.Digest,
			rev.SavedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to insert revision: %w", err)
		}
		written = tag.RowsAffected() == 1
		return nil
	})
	if err != nil {
		return false, err
	}
	return written, nil
}

// History returns up to limit revisions, newest first.
func (r *DocumentRepository) History(ctx context.Context, limit int) ([]document.Revision, error) {
	if limit <= 0 {
		return nil, nil
	}

	rows, err := r.conn.Query(ctx, selectRevisionHistory, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query revision history: %w", err)
	}
	defer rows.Close()

	var revisions []document.Revision
	for rows.Next() {
		rev, err := scanRevision(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan revision: %w", err)
		}
		revisions = append(revisions, rev)
	}

	return revisions, rows.Err()
}

// ─────────────────────────────────────────────────────────────────────────────
// Helper Functions
// ─────────────────────────────────────────────────────────────────────────────

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRevision(row rowScanner) (document.Revision, error) {
	var rev document.Revision
	err := row.Scan(
		&rev.ID,
		&rev.InstituteName,
		&rev.Format,
		&rev.Body,
		&rev.Digest,
		&rev.SavedAt,
	)
	if err != nil {
		return document.Revision{}, err
	}
	rev.SavedAt = rev.SavedAt.UTC()
	return rev, nil
}
