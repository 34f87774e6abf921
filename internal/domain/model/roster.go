package model

// Enrollment is one membership row from the roster source's course-users
// listing. Only the role is inspected before the full detail fetch.
type Enrollment struct {
	UserID string
	Role   string
}

// RoleStudent is the roster source role consumed by the fetch pass; all
// other roles are ignored.
const RoleStudent = "Student"

// RosterStudent is the per-user detail fetched from the roster source.
// UUID is the stable cross-system identity key; a student without one
// cannot be tracked and is dropped by the merge.
type RosterStudent struct {
	UUID       string
	Username   string
	GivenName  string
	FamilyName string
	Email      string
}
