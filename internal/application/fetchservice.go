// Package application contains the two batch passes that move roster data
// between the record store and the remote systems.
package application

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/D-EdTech/lti-iib-credentials/internal/domain/model"
	"github.com/D-EdTech/lti-iib-credentials/internal/domain/port/driven"
)

// FetchService runs the fetch pass: pull enrolled students from the roster
// source, merge them into the record store, and regenerate the tabular
// view. The pass is idempotent; re-running it refreshes roster-owned fields
// and never touches exam-owned ones.
type FetchService struct {
	roster driven.RosterClient
	store  driven.RecordStore
	view   driven.ViewFile
}

// NewFetchService creates a FetchService with all required dependencies.
func NewFetchService(roster driven.RosterClient, store driven.RecordStore, view driven.ViewFile) *FetchService {
	return &FetchService{roster: roster, store: store, view: view}
}

// Run executes one fetch pass for the given external course id.
//
// Setup failures (course not found, store unreadable) abort the pass before
// any mutation. A failed per-student detail lookup is logged and skipped
// without aborting the batch. Persistence failure is the pass's terminal
// error; the view is only regenerated from a successfully persisted store.
func (s *FetchService) Run(ctx context.Context, courseExternalID string) (model.FetchReport, error) {
	var report model.FetchReport

	courseID, err := s.roster.ResolveCourseID(ctx, courseExternalID)
	if err != nil {
		return report, fmt.Errorf("resolving course %q: %w", courseExternalID, err)
	}
	if courseID == "" {
		return report, fmt.Errorf("%w: %q", model.ErrCourseNotFound, courseExternalID)
	}

	enrollments, err := s.roster.ListStudents(ctx, courseID)
	if err != nil {
		return report, fmt.Errorf("listing students for course %q: %w", courseExternalID, err)
	}
	report.UsersFound = len(enrollments)
	slog.Info("roster students listed", "course", courseExternalID, "students", len(enrollments))

	set, err := s.store.Load(ctx)
	if err != nil {
		return report, err
	}

	students := make([]model.RosterStudent, 0, len(enrollments))
	for _, e := range enrollments {
		if ctx.Err() != nil {
			return report, ctx.Err()
		}
		detail, err := s.roster.FetchStudentDetail(ctx, e.UserID)
		if err != nil {
			slog.Warn("student detail fetch failed, skipping user",
				"course", courseExternalID, "user_id", e.UserID, "error", err)
			report.DetailFailures++
			continue
		}
		if detail.UUID == "" {
			// Untrackable without an identity key; the merge would drop it
			// anyway.
			continue
		}
		students = append(students, *detail)
	}

	// One timestamp for the whole batch, not per record.
	fetchedAt := time.Now().Format(model.TimestampLayout)
	report.RecordsMerged = set.MergeFetched(students, courseExternalID, fetchedAt)

	if err := s.store.Persist(ctx, set); err != nil {
		return report, err
	}
	if err := s.view.Regenerate(ctx, set); err != nil {
		return report, err
	}

	slog.Info("fetch pass complete",
		"course", courseExternalID,
		"users_found", report.UsersFound,
		"records_merged", report.RecordsMerged,
		"detail_failures", report.DetailFailures,
	)
	return report, nil
}
