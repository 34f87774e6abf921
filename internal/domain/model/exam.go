package model

// ExamAccount is an existing account on the exam platform, looked up by
// LTI external id. The platform's username is authoritative; the sync pass
// never overwrites it from local data.
type ExamAccount struct {
	Username  string
	FirstName string
	LastName  string
	Email     string
}

// AccountUpdate is the payload pushed to the exam platform for one student.
// Username must be the platform's existing value.
type AccountUpdate struct {
	Username  string
	FirstName string
	LastName  string
	Email     string
	Password  string
}

// UpdateResult is the exam platform's response to an account update.
type UpdateResult struct {
	Success bool
	// Username is the authoritative username echoed back by the platform;
	// may be empty.
	Username string
}
