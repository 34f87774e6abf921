// Package jsonstore implements the RecordStore port on a single JSON file.
//
// The durable form is one JSON object mapping identity key to record.
// Writes are complete-file overwrites through a temp-file rename, so a
// crashed pass leaves either the old store or the new one, never a torn
// file.
package jsonstore

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/natefinch/atomic"

	"github.com/D-EdTech/lti-iib-credentials/internal/domain/model"
	"github.com/D-EdTech/lti-iib-credentials/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.RecordStore = (*Store)(nil)

// Store persists a model.RecordSet at a fixed path.
type Store struct {
	path string
}

// New returns a Store backed by the given file path.
func New(path string) *Store {
	return &Store{path: path}
}

// Path returns the backing file path.
func (s *Store) Path() string {
	return s.path
}

// Load reads the persisted record set. A missing file is a first run and
// yields an empty set; unreadable or malformed content yields
// model.ErrStoreCorrupt so the pass aborts before mutating anything.
func (s *Store) Load(_ context.Context) (*model.RecordSet, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return model.NewRecordSet(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading record store %s: %w", s.path, err)
	}

	set := model.NewRecordSet()
	if err := json.Unmarshal(data, set); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", model.ErrStoreCorrupt, s.path, err)
	}
	return set, nil
}

// Persist writes the set back as a complete overwrite. The write is
// atomic; on error the caller's in-memory set remains the source of truth.
func (s *Store) Persist(_ context.Context, set *model.RecordSet) error {
	raw, err := json.Marshal(set)
	if err != nil {
		return fmt.Errorf("encoding record store: %w", err)
	}

	var pretty bytes.Buffer
	if err := json.Indent(&pretty, raw, "", "  "); err != nil {
		return fmt.Errorf("encoding record store: %w", err)
	}
	pretty.WriteByte('\n')

	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating store directory %s: %w", dir, err)
		}
	}

	if err := atomic.WriteFile(s.path, &pretty); err != nil {
		return fmt.Errorf("writing record store %s: %w", s.path, err)
	}
	return nil
}
