package institute

import (
	"context"

	"github.com/alem-hub/institute-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// REPOSITORY INTERFACE
// The institute is persisted as one document; implementations live in
// infrastructure/persistence.
// ══════════════════════════════════════════════════════════════════════════════

// ErrDocumentNotFound is returned by Load when nothing has been saved yet.
var ErrDocumentNotFound = shared.NewDomainError("institute", "Load", shared.ErrNotFound, "no saved institute document")

// Repository loads and saves the whole institute tree.
type Repository interface {
	// Load returns the last saved institute.
	// Returns ErrDocumentNotFound when there is none, an shared.ErrInvalidFormat
	// error when the stored document cannot be decoded, and the domain error
	// unchanged when the document decodes into an invalid tree.
	Load(ctx context.Context) (*Institute, error)

	// Save replaces the stored document with the institute's snapshot.
	Save(ctx context.Context, inst *Institute) error
}
