package application

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/D-EdTech/lti-iib-credentials/internal/domain/model"
	"github.com/D-EdTech/lti-iib-credentials/internal/domain/port/driven"
)

// SyncService runs the sync pass: read operator intent from the tabular
// view, reconcile against the record store, and push approved records to
// the exam platform. The pass never creates store records and never
// provisions platform accounts; it only updates what already exists on both
// sides.
type SyncService struct {
	exam  driven.ExamClient
	store driven.RecordStore
	view  driven.ViewFile
}

// NewSyncService creates a SyncService with all required dependencies.
func NewSyncService(exam driven.ExamClient, store driven.RecordStore, view driven.ViewFile) *SyncService {
	return &SyncService{exam: exam, store: store, view: view}
}

// Run executes one sync pass over every view row, in row order.
//
// Row-level problems (invalid flag, unknown identity key, missing platform
// account, push failure) are logged with the row number and counted, never
// raised. Only setup failures (unreadable store, missing view) and the
// final persistence are fatal. Re-running with an unchanged view re-attempts
// every approved row without rotating passwords.
func (s *SyncService) Run(ctx context.Context) (model.SyncReport, error) {
	var report model.SyncReport

	set, err := s.store.Load(ctx)
	if err != nil {
		return report, err
	}
	rows, err := s.view.Rows(ctx)
	if err != nil {
		return report, err
	}

	syncedAt := time.Now().Format(model.TimestampLayout)

	for _, row := range rows {
		if ctx.Err() != nil {
			return report, ctx.Err()
		}

		flag, err := model.ParseApproval(row.SyncApproved)
		if err != nil {
			slog.Warn("invalid approval flag, skipping row",
				"row", row.Index, "value", row.SyncApproved)
			report.Skipped++
			continue
		}
		if flag != "true" {
			continue
		}

		if row.UUID == "" {
			slog.Warn("missing identity key, skipping row", "row", row.Index)
			report.Skipped++
			continue
		}
		rec, ok := set.Get(row.UUID)
		if !ok {
			slog.Warn("identity key not in record store, skipping row",
				"row", row.Index, "uuid", row.UUID)
			report.Skipped++
			continue
		}

		password, err := s.choosePassword(set, rec, row)
		if err != nil {
			slog.Warn("password generation failed, skipping row",
				"row", row.Index, "uuid", row.UUID, "error", err)
			report.Skipped++
			continue
		}

		account, err := s.exam.LookupAccount(ctx, row.UUID)
		if err != nil {
			// Transport or auth fault: we cannot tell whether the account
			// exists, so the row is skipped without touching the record.
			slog.Warn("exam account lookup failed, skipping row",
				"row", row.Index, "uuid", row.UUID, "error", err)
			report.Skipped++
			continue
		}
		if account == nil {
			slog.Warn("no exam account for identity key, skipping row",
				"row", row.Index, "uuid", row.UUID)
			report.Skipped++
			continue
		}

		report.Attempted++
		result, err := s.exam.UpdateAccount(ctx, model.AccountUpdate{
			// The platform's username is authoritative and never taken
			// from the local record.
			Username:  account.Username,
			FirstName: rec.NameGiven,
			LastName:  rec.NameFamily,
			Email:     rec.ContactEmail,
			Password:  password,
		})
		if err != nil || !result.Success {
			set.ApplySyncOutcome(row.UUID, model.SyncOutcome{Success: false})
			report.Failed++
			slog.Warn("exam account update failed",
				"row", row.Index, "uuid", row.UUID, "error", err)
			continue
		}

		set.ApplySyncOutcome(row.UUID, model.SyncOutcome{
			Success:   true,
			Timestamp: syncedAt,
			Username:  result.Username,
		})
		report.Succeeded++
		slog.Info("exam account updated", "row", row.Index, "uuid", row.UUID)
	}

	if err := s.store.Persist(ctx, set); err != nil {
		return report, err
	}
	if err := s.view.Regenerate(ctx, set); err != nil {
		return report, err
	}

	slog.Info("sync pass complete",
		"attempted", report.Attempted,
		"succeeded", report.Succeeded,
		"failed", report.Failed,
		"skipped", report.Skipped,
	)
	return report, nil
}

// choosePassword applies the password precedence for one approved row: a
// non-empty view column wins and is stored; otherwise the record's existing
// password is reused; only when both are empty is a new one generated and
// stored. Repeated passes therefore never rotate a password unless the
// operator clears the column.
func (s *SyncService) choosePassword(set *model.RecordSet, rec model.Record, row model.ViewRow) (string, error) {
	if viewPassword := strings.TrimSpace(row.ExamPassword); viewPassword != "" {
		set.SetPassword(rec.UUID, viewPassword)
		return viewPassword, nil
	}
	if rec.ExamPassword != "" {
		return rec.ExamPassword, nil
	}
	generated, err := GeneratePassword()
	if err != nil {
		return "", err
	}
	set.SetPassword(rec.UUID, generated)
	return generated, nil
}
