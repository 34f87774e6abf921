package driven

import (
	"context"

	"github.com/D-EdTech/lti-iib-credentials/internal/domain/model"
)

// ExamClient is the driven port for the assessment platform receiving
// synchronized credentials.
type ExamClient interface {
	// LookupAccount finds an existing platform account by identity key.
	// Returns nil with a nil error when no account exists — absence is a
	// legitimate outcome. A non-nil error means a transport or auth fault
	// and the caller cannot tell whether the account exists.
	LookupAccount(ctx context.Context, uuid string) (*model.ExamAccount, error)

	// UpdateAccount pushes credential and profile changes for an existing
	// account. The platform may echo back an authoritative username.
	UpdateAccount(ctx context.Context, update model.AccountUpdate) (*model.UpdateResult, error)
}
