package model

import (
	"fmt"
	"strings"
)

// ViewColumns is the tabular view's fixed header, in order. The view is
// always regenerated in full from the record store; it is never patched in
// place.
var ViewColumns = []string{
	"uuid",
	"exam_username",
	"last_fetched_at",
	"name_given",
	"name_family",
	"contact_email",
	"last_synced_at",
	"sync_approved",
	"exam_password",
}

// ApprovalAbsent is rendered in the sync_approved column when a record
// carries no flag. Note the capital F: parsing lowercases, so the rendered
// default round-trips as a valid "false".
const ApprovalAbsent = "False"

// ViewRow carries the operator-editable fields read back from the tabular
// view. Only these fields ever flow from the view into the store; the rest
// of the row is display-only.
type ViewRow struct {
	// Index is the 1-based data row number, used in operator-facing
	// messages so edits can be located in the file.
	Index int
	UUID  string
	// SyncApproved is the raw column value; normalize with ParseApproval
	// before use.
	SyncApproved string
	ExamPassword string
}

// ParseApproval normalizes an approval flag: trim whitespace, lowercase.
// Exactly "true" and "false" are valid; anything else, including empty, is
// ErrInvalidApproval. Empty is deliberately not defaulted to false: an
// operator who blanked the column gets a warning, not a silent skip.
func ParseApproval(raw string) (string, error) {
	normalized := strings.ToLower(strings.TrimSpace(raw))
	switch normalized {
	case "true", "false":
		return normalized, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidApproval, raw)
	}
}
