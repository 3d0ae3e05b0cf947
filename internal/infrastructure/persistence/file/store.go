// Package file keeps the institute document in a single file on disk.
package file

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/alem-hub/institute-hub/internal/domain/institute"
	"github.com/alem-hub/institute-hub/internal/infrastructure/persistence/document"
)

var _ institute.Repository = (*Store)(nil)

// Store reads and writes the document at Path.
type Store struct {
	path  string
	codec document.Codec
}

// NewStore returns a store for path. A nil codec is chosen from the file
// extension.
func NewStore(path string, codec document.Codec) *Store {
	if codec == nil {
		codec = document.ForPath(path)
	}
	return &Store{path: path, codec: codec}
}

// Path returns the document path.
func (s *Store) Path() string {
	return s.path
}

// Load reads and decodes the document. A missing file yields
// institute.ErrDocumentNotFound.
func (s *Store) Load(ctx context.Context) (*institute.Institute, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, institute.ErrDocumentNotFound
		}
		return nil, fmt.Errorf("file: read %s: %w", s.path, err)
	}

	return document.Decode(s.codec, data)
}

// Save encodes the institute and replaces the file. The new content is
// written to a temporary file in the same directory and renamed over the old
// one, so a crash never leaves a half-written document.
func (s *Store) Save(ctx context.Context, inst *institute.Institute) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := document.Encode(s.codec, inst)
	if err != nil {
		return err
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("file: create directory %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("file: create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) // no-op after a successful rename

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("file: write %s: %w", tmpName, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("file: sync %s: %w", tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("file: close %s: %w", tmpName, err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return fmt.Errorf("file: chmod %s: %w", tmpName, err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("file: replace %s: %w", s.path, err)
	}
	return nil
}
