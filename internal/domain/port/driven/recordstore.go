package driven

import (
	"context"

	"github.com/D-EdTech/lti-iib-credentials/internal/domain/model"
)

// RecordStore is the driven port for the durable record store.
type RecordStore interface {
	// Load reads the persisted store. A missing file yields an empty set
	// (first run); malformed content yields model.ErrStoreCorrupt.
	Load(ctx context.Context) (*model.RecordSet, error)

	// Persist writes the full set back as a complete overwrite. On error
	// the in-memory set remains the source of truth and the caller must
	// surface the failure rather than continue silently.
	Persist(ctx context.Context, set *model.RecordSet) error
}
