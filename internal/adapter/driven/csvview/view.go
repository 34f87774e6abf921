// Package csvview implements the ViewFile port on a delimited tabular file.
//
// The view is the operator's control surface: it is regenerated in full
// from the record store after every pass, and only the approval flag and
// password column ever flow back from it.
package csvview

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/natefinch/atomic"

	"github.com/D-EdTech/lti-iib-credentials/internal/domain/model"
	"github.com/D-EdTech/lti-iib-credentials/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.ViewFile = (*View)(nil)

// View reads and regenerates the tabular view at a fixed path.
type View struct {
	path string
}

// New returns a View backed by the given file path.
func New(path string) *View {
	return &View{path: path}
}

// Path returns the backing file path.
func (v *View) Path() string {
	return v.path
}

// Regenerate rewrites the whole view from the record set: fixed header,
// one row per record in store order. Missing fields render empty except
// sync_approved, which renders its documented default.
func (v *View) Regenerate(_ context.Context, set *model.RecordSet) error {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(model.ViewColumns); err != nil {
		return fmt.Errorf("writing view header: %w", err)
	}
	for _, rec := range set.Records() {
		if err := w.Write(renderRow(rec)); err != nil {
			return fmt.Errorf("writing view row for %s: %w", rec.UUID, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("writing view: %w", err)
	}

	if dir := filepath.Dir(v.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating view directory %s: %w", dir, err)
		}
	}

	if err := atomic.WriteFile(v.path, &buf); err != nil {
		return fmt.Errorf("writing view %s: %w", v.path, err)
	}
	return nil
}

// renderRow flattens one record into the fixed column order.
func renderRow(rec model.Record) []string {
	approved := rec.SyncApproved
	if approved == "" {
		approved = model.ApprovalAbsent
	}
	return []string{
		rec.UUID,
		rec.ExamUsername,
		rec.LastFetchedAt,
		rec.NameGiven,
		rec.NameFamily,
		rec.ContactEmail,
		rec.LastSyncedAt,
		approved,
		rec.ExamPassword,
	}
}

// Rows reads the operator-editable fields back from the view. Columns are
// located by header name, so an operator reordering columns in a
// spreadsheet does not corrupt the read. A missing file is fatal to the
// sync pass.
func (v *View) Rows(_ context.Context) ([]model.ViewRow, error) {
	f, err := os.Open(v.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", model.ErrViewMissing, v.path)
	}
	if err != nil {
		return nil, fmt.Errorf("opening view %s: %w", v.path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("reading view header: %w", err)
	}
	col := make(map[string]int, len(header))
	for i, name := range header {
		col[strings.TrimSpace(name)] = i
	}

	field := func(row []string, name string) string {
		i, ok := col[name]
		if !ok || i >= len(row) {
			return ""
		}
		return row[i]
	}

	var rows []model.ViewRow
	index := 0
	for {
		raw, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading view row: %w", err)
		}
		index++
		rows = append(rows, model.ViewRow{
			Index:        index,
			UUID:         field(raw, "uuid"),
			SyncApproved: field(raw, "sync_approved"),
			ExamPassword: field(raw, "exam_password"),
		})
	}
	return rows, nil
}
