// Package model contains the domain types shared by the record store, the
// tabular view, and the two sync passes.
package model

// Sentinel values carried in Record fields. They are part of the durable
// format, not just display strings, so they must never be localized or
// reworded.
const (
	// ExamUsernameUnknown marks a record whose exam-platform username has
	// not yet been confirmed by a successful sync.
	ExamUsernameUnknown = "UNKNOWN"

	// NeverSynced marks a record that has not been pushed to the exam
	// platform since it was first seen.
	NeverSynced = "NEVER"

	// SyncFailed marks a record whose most recent push attempt failed.
	SyncFailed = "LAST UPDATE FAILED"
)

// TimestampLayout is the wall-clock layout used for last_fetched_at and
// last_synced_at in both the JSON store and the tabular view.
const TimestampLayout = "2006-01-02 15:04:05"

// Record is one student's entry in the record store, keyed by the stable
// cross-system identity key (uuid). Roster-owned fields are overwritten on
// every fetch pass; exam-owned fields are only ever touched by the sync
// pass.
type Record struct {
	UUID           string `json:"uuid"`
	RosterUsername string `json:"roster_username"`
	NameGiven      string `json:"name_given"`
	NameFamily     string `json:"name_family"`
	ContactEmail   string `json:"contact_email"`
	SourceCourseID string `json:"source_course_id"`
	LastFetchedAt  string `json:"last_fetched_at"`

	ExamUsername string `json:"exam_username"`
	ExamPassword string `json:"exam_password"`
	LastSyncedAt string `json:"last_synced_at"`

	// SyncApproved holds the operator's approval flag as its external
	// "true"/"false" string form. It is absent until an operator sets it;
	// neither pass mutates it.
	SyncApproved string `json:"sync_approved,omitempty"`
}

// NewRecord returns a Record for a first-sighted identity key with
// exam-owned fields at their documented defaults.
func NewRecord(uuid string) Record {
	return Record{
		UUID:         uuid,
		ExamUsername: ExamUsernameUnknown,
		ExamPassword: "",
		LastSyncedAt: NeverSynced,
	}
}
