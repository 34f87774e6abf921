// Package driven defines the driven ports: interfaces the application core
// depends on, implemented by adapters.
package driven

import (
	"context"

	"github.com/D-EdTech/lti-iib-credentials/internal/domain/model"
)

// RosterClient is the driven port for the course-management system that
// supplies enrollment and profile data.
type RosterClient interface {
	// ResolveCourseID maps an external course identifier to the roster
	// source's internal course id. Returns "" with a nil error when the
	// course does not exist; that is a legitimate outcome, not a transport
	// failure.
	ResolveCourseID(ctx context.Context, externalID string) (string, error)

	// ListStudents returns the course's enrollments already filtered to
	// the Student role.
	ListStudents(ctx context.Context, courseID string) ([]model.Enrollment, error)

	// FetchStudentDetail returns the full profile for one enrollment,
	// including the identity key.
	FetchStudentDetail(ctx context.Context, userID string) (*model.RosterStudent, error)
}
