package document

import (
	"time"

	"github.com/google/uuid"

	"github.com/alem-hub/institute-hub/internal/domain/institute"
	"github.com/alem-hub/institute-hub/internal/domain/shared"
)

// Revision is one saved version of the document in a history-keeping store.
type Revision struct {
	ID            string
	InstituteName string
	Format        string
	Digest        string
	Body          []byte
	SavedAt       time.Time
}

// NewRevision encodes inst with codec and stamps the result with a fresh ID,
// its digest and savedAt.
func NewRevision(codec Codec, inst *institute.Institute, savedAt time.Time) (Revision, error) {
	body, err := Encode(codec, inst)
	if err != nil {
		return Revision{}, err
	}
	return Revision{
		ID:            uuid.NewString(),
		InstituteName: inst.Name(),
		Format:        codec.Name(),
		Digest:        Digest(body),
		Body:          body,
		SavedAt:       savedAt.UTC(),
	}, nil
}

// Decode rebuilds the institute with the codec named by the revision's own
// format, not the store's current one.
func (r Revision) Decode() (*institute.Institute, error) {
	codec, err := ByName(r.Format)
	if err != nil {
		return nil, shared.WrapError("document", "Decode", shared.ErrInvalidFormat, "unknown revision format", err)
	}
	return Decode(codec, r.Body)
}
