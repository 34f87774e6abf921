package model

import "errors"

// Fatal-to-pass conditions. Per-item conditions (invalid flag, missing
// account, push failure) are reported and counted, not raised.
var (
	// ErrCourseNotFound means the roster source resolved the external
	// course id to nothing; the fetch pass aborts without touching the
	// store.
	ErrCourseNotFound = errors.New("course not found in roster source")

	// ErrStoreCorrupt means the record store file exists but is not a
	// well-formed JSON object.
	ErrStoreCorrupt = errors.New("record store is corrupt")

	// ErrViewMissing means the tabular view file does not exist at sync
	// pass start.
	ErrViewMissing = errors.New("tabular view file missing")

	// ErrInvalidApproval means a row's approval flag is neither "true" nor
	// "false" after normalization; empty counts as invalid, not false.
	ErrInvalidApproval = errors.New("invalid approval flag")
)
