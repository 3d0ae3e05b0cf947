package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/alem-hub/institute-hub/internal/domain/institute"
	"github.com/alem-hub/institute-hub/internal/domain/shared"
	"github.com/alem-hub/institute-hub/internal/infrastructure/persistence/document"
)

var _ institute.Repository = (*Store)(nil)

// Hash fields of the stored document.
const (
	fieldID      = "id"
	fieldName    = "institute_name"
	fieldFormat  = "format"
	fieldDigest  = "digest"
	fieldBody    = "body"
	fieldSavedAt = "saved_at"
)

// hashClient is the subset of *redis.Client the store uses.
type hashClient interface {
	HGet(ctx context.Context, key, field string) *redis.StringCmd
	HGetAll(ctx context.Context, key string) *redis.MapStringStringCmd
	HSet(ctx context.Context, key string, values ...any) *redis.IntCmd
}

// Store keeps the latest revision of the document in one hash without a TTL.
type Store struct {
	client hashClient
	key    string
	codec  document.Codec
	now    func() time.Time
}

// NewStore returns a store writing to key. A nil codec means JSON.
func NewStore(client *redis.Client, key string, codec document.Codec) (*Store, error) {
	return newStore(client, key, codec)
}

func newStore(client hashClient, key string, codec document.Codec) (*Store, error) {
	if key == "" {
		return nil, ErrKeyEmpty
	}
	if codec == nil {
		codec = document.JSON{}
	}
	return &Store{client: client, key: key, codec: codec, now: time.Now}, nil
}

// Key returns the hash key.
func (s *Store) Key() string {
	return s.key
}

// Load decodes the stored document. A missing hash yields
// institute.ErrDocumentNotFound.
func (s *Store) Load(ctx context.Context) (*institute.Institute, error) {
	fields, err := s.client.HGetAll(ctx, s.key).Result()
	if err != nil {
		return nil, fmt.Errorf("redis: read %s: %w", s.key, err)
	}
	if len(fields) == 0 {
		return nil, institute.ErrDocumentNotFound
	}

	body, ok := fields[fieldBody]
	if !ok {
		return nil, shared.Decodef("redis", "%s has no %s field", s.key, fieldBody)
	}
	rev := document.Revision{
		ID:            fields[fieldID],
		InstituteName: fields[fieldName],
		Format:        fields[fieldFormat],
		Digest:        fields[fieldDigest],
		Body:          []byte(body),
	}
	return rev.Decode()
}

// Save replaces the stored document unless its digest is unchanged.
func (s *Store) Save(ctx context.Context, inst *institute.Institute) error {
	rev, err := document.NewRevision(s.codec, inst, s.now())
	if err != nil {
		return err
	}

	current, err := s.client.HGet(ctx, s.key, fieldDigest).Result()
	switch {
	case errors.Is(err, redis.Nil):
	case err != nil:
		return fmt.Errorf("redis: read digest of %s: %w", s.key, err)
	case current == rev.Digest:
		return nil
	}

	err = s.client.HSet(ctx, s.key,
		fieldID, rev.ID,
		fieldName, rev.InstituteName,
		fieldFormat, rev.Format,
		fieldDigest, rev.Digest,
		fieldBody, rev.Body,
		fieldSavedAt, rev.SavedAt.Format(time.RFC3339Nano),
	).Err()
	if err != nil {
		return fmt.Errorf("redis: write %s: %w", s.key, err)
	}
	return nil
}
