package model

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// RecordSet is the in-memory form of the record store: a mapping from
// identity key to Record that preserves insertion order. Order matters
// because the tabular view's row order is defined as the store's order, and
// the view must be byte-stable across passes that change nothing.
type RecordSet struct {
	records map[string]Record
	order   []string
}

// NewRecordSet returns an empty RecordSet.
func NewRecordSet() *RecordSet {
	return &RecordSet{records: make(map[string]Record)}
}

// Len returns the number of records in the set.
func (s *RecordSet) Len() int {
	return len(s.order)
}

// Get returns the record for the given identity key, if present.
func (s *RecordSet) Get(uuid string) (Record, bool) {
	rec, ok := s.records[uuid]
	return rec, ok
}

// Put inserts or replaces the record under its identity key. First
// insertion fixes the record's position; replacements keep it.
func (s *RecordSet) Put(rec Record) {
	if _, ok := s.records[rec.UUID]; !ok {
		s.order = append(s.order, rec.UUID)
	}
	s.records[rec.UUID] = rec
}

// UUIDs returns the identity keys in insertion order.
func (s *RecordSet) UUIDs() []string {
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

// Records returns the records in insertion order.
func (s *RecordSet) Records() []Record {
	out := make([]Record, 0, len(s.order))
	for _, uuid := range s.order {
		out = append(out, s.records[uuid])
	}
	return out
}

// MergeFetched merges a batch of freshly fetched roster students into the
// set. Roster-owned fields are overwritten; exam-owned fields and the
// operator's approval flag are preserved as-is. Students with an empty
// identity key are dropped silently. Records absent from the batch are left
// untouched. The same fetchedAt timestamp is stamped on every record of the
// batch. Returns the number of records created or updated.
func (s *RecordSet) MergeFetched(students []RosterStudent, courseExternalID, fetchedAt string) int {
	var merged int
	for _, st := range students {
		if st.UUID == "" {
			continue
		}
		rec, ok := s.records[st.UUID]
		if !ok {
			rec = NewRecord(st.UUID)
		}
		rec.RosterUsername = st.Username
		rec.NameGiven = st.GivenName
		rec.NameFamily = st.FamilyName
		rec.ContactEmail = st.Email
		rec.SourceCourseID = courseExternalID
		rec.LastFetchedAt = fetchedAt
		s.Put(rec)
		merged++
	}
	return merged
}

// SyncOutcome describes the result of one push attempt against the exam
// platform.
type SyncOutcome struct {
	Success   bool
	Timestamp string
	// Username is the authoritative username returned by the platform on
	// success; empty means the platform returned none.
	Username string
}

// ApplySyncOutcome records a push attempt's result on the given record. On
// success last_synced_at is set to the outcome's timestamp and
// exam_username adopts the platform-returned value when present; on failure
// last_synced_at is set to the failure sentinel. The password is left as
// already set by the caller. Returns false if the identity key is unknown.
func (s *RecordSet) ApplySyncOutcome(uuid string, outcome SyncOutcome) bool {
	rec, ok := s.records[uuid]
	if !ok {
		return false
	}
	if outcome.Success {
		rec.LastSyncedAt = outcome.Timestamp
		if outcome.Username != "" {
			rec.ExamUsername = outcome.Username
		}
	} else {
		rec.LastSyncedAt = SyncFailed
	}
	s.records[uuid] = rec
	return true
}

// SetPassword stores a password on the given record. Returns false if the
// identity key is unknown.
func (s *RecordSet) SetPassword(uuid, password string) bool {
	rec, ok := s.records[uuid]
	if !ok {
		return false
	}
	rec.ExamPassword = password
	s.records[uuid] = rec
	return true
}

// MarshalJSON encodes the set as a single JSON object whose keys appear in
// insertion order.
func (s *RecordSet) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, uuid := range s.order {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(uuid)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		val, err := json.Marshal(s.records[uuid])
		if err != nil {
			return nil, err
		}
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes a JSON object into the set, keeping keys in the
// order they appear in the document. Anything other than a top-level object
// is an error.
func (s *RecordSet) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return fmt.Errorf("reading record store: %w", err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("record store must be a JSON object, got %v", tok)
	}

	s.records = make(map[string]Record)
	s.order = nil

	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return fmt.Errorf("reading record key: %w", err)
		}
		uuid, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("record key is not a string: %v", keyTok)
		}

		var rec Record
		if err := dec.Decode(&rec); err != nil {
			return fmt.Errorf("decoding record %q: %w", uuid, err)
		}
		// The mapping key is authoritative for identity.
		rec.UUID = uuid
		s.Put(rec)
	}

	if _, err := dec.Token(); err != nil {
		return fmt.Errorf("reading record store: %w", err)
	}
	return nil
}
