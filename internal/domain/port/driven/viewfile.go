package driven

import (
	"context"

	"github.com/D-EdTech/lti-iib-credentials/internal/domain/model"
)

// ViewFile is the driven port for the operator's tabular control surface.
type ViewFile interface {
	// Regenerate rewrites the whole view from the record store, one row
	// per record in store order.
	Regenerate(ctx context.Context, set *model.RecordSet) error

	// Rows reads the operator-editable fields back, one entry per data
	// row in file order. A missing file yields model.ErrViewMissing.
	Rows(ctx context.Context) ([]model.ViewRow, error)
}
