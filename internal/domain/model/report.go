package model

// FetchReport summarizes one fetch pass.
type FetchReport struct {
	// UsersFound is the number of student enrollments listed by the roster
	// source for the course.
	UsersFound int
	// RecordsMerged is the number of records created or updated in the
	// store.
	RecordsMerged int
	// DetailFailures counts students whose detail lookup failed and were
	// skipped without aborting the batch.
	DetailFailures int
}

// SyncReport summarizes one sync pass.
type SyncReport struct {
	// Attempted counts rows that reached a push attempt.
	Attempted int
	// Succeeded counts pushes the platform confirmed.
	Succeeded int
	// Failed counts pushes that errored or were rejected.
	Failed int
	// Skipped counts rows passed over with a warning: invalid flag,
	// missing or unknown identity key, no matching exam account, or a
	// failed lookup. Unapproved rows are skipped silently and not counted.
	Skipped int
}
