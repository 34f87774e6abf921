package model_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/D-EdTech/lti-iib-credentials/internal/domain/model"
)

func TestMergeFetched_NewRecordDefaults(t *testing.T) {
	set := model.NewRecordSet()

	merged := set.MergeFetched([]model.RosterStudent{
		{UUID: "u1", Username: "amb001", GivenName: "Alice", FamilyName: "Berg", Email: "alice@example.edu"},
	}, "COURSE_X", "2026-01-10 09:00:00")

	assert.Equal(t, 1, merged)

	rec, ok := set.Get("u1")
	require.True(t, ok)
	assert.Equal(t, "amb001", rec.RosterUsername)
	assert.Equal(t, "Alice", rec.NameGiven)
	assert.Equal(t, "Berg", rec.NameFamily)
	assert.Equal(t, "alice@example.edu", rec.ContactEmail)
	assert.Equal(t, "COURSE_X", rec.SourceCourseID)
	assert.Equal(t, "2026-01-10 09:00:00", rec.LastFetchedAt)

	assert.Equal(t, model.ExamUsernameUnknown, rec.ExamUsername)
	assert.Equal(t, "", rec.ExamPassword)
	assert.Equal(t, model.NeverSynced, rec.LastSyncedAt)
}

func TestMergeFetched_PreservesExamOwnedFields(t *testing.T) {
	set := model.NewRecordSet()
	rec := model.NewRecord("u1")
	rec.ExamUsername = "alice123"
	rec.ExamPassword = "Xk9mQ2pL"
	rec.LastSyncedAt = "2026-01-09 12:30:00"
	rec.SyncApproved = "true"
	set.Put(rec)

	set.MergeFetched([]model.RosterStudent{
		{UUID: "u1", Username: "amb001-renamed", GivenName: "Alice", FamilyName: "Berg", Email: "new@example.edu"},
	}, "COURSE_X", "2026-01-10 09:00:00")

	got, ok := set.Get("u1")
	require.True(t, ok)
	assert.Equal(t, "alice123", got.ExamUsername)
	assert.Equal(t, "Xk9mQ2pL", got.ExamPassword)
	assert.Equal(t, "2026-01-09 12:30:00", got.LastSyncedAt)
	assert.Equal(t, "true", got.SyncApproved)

	assert.Equal(t, "amb001-renamed", got.RosterUsername)
	assert.Equal(t, "new@example.edu", got.ContactEmail)
}

func TestMergeFetched_DropsStudentsWithoutIdentityKey(t *testing.T) {
	set := model.NewRecordSet()

	merged := set.MergeFetched([]model.RosterStudent{
		{UUID: "", Username: "ghost"},
		{UUID: "u1", Username: "amb001"},
	}, "COURSE_X", "2026-01-10 09:00:00")

	assert.Equal(t, 1, merged)
	assert.Equal(t, 1, set.Len())
	_, ok := set.Get("u1")
	assert.True(t, ok)
}

func TestMergeFetched_KeepsRecordsAbsentFromBatch(t *testing.T) {
	set := model.NewRecordSet()
	set.Put(model.NewRecord("gone-student"))

	set.MergeFetched([]model.RosterStudent{
		{UUID: "u1", Username: "amb001"},
	}, "COURSE_X", "2026-01-10 09:00:00")

	assert.Equal(t, 2, set.Len())
	_, ok := set.Get("gone-student")
	assert.True(t, ok)
}

func TestMergeFetched_SharedBatchTimestamp(t *testing.T) {
	set := model.NewRecordSet()

	set.MergeFetched([]model.RosterStudent{
		{UUID: "u1"},
		{UUID: "u2"},
		{UUID: "u3"},
	}, "COURSE_X", "2026-01-10 09:00:00")

	for _, rec := range set.Records() {
		assert.Equal(t, "2026-01-10 09:00:00", rec.LastFetchedAt)
	}
}

func TestApplySyncOutcome(t *testing.T) {
	t.Run("success sets timestamp and adopts returned username", func(t *testing.T) {
		set := model.NewRecordSet()
		set.Put(model.NewRecord("u1"))

		ok := set.ApplySyncOutcome("u1", model.SyncOutcome{
			Success:   true,
			Timestamp: "2026-01-10 10:00:00",
			Username:  "u1_exam",
		})
		require.True(t, ok)

		rec, _ := set.Get("u1")
		assert.Equal(t, "2026-01-10 10:00:00", rec.LastSyncedAt)
		assert.Equal(t, "u1_exam", rec.ExamUsername)
	})

	t.Run("success without returned username keeps existing", func(t *testing.T) {
		set := model.NewRecordSet()
		rec := model.NewRecord("u1")
		rec.ExamUsername = "existing"
		set.Put(rec)

		set.ApplySyncOutcome("u1", model.SyncOutcome{Success: true, Timestamp: "2026-01-10 10:00:00"})

		got, _ := set.Get("u1")
		assert.Equal(t, "existing", got.ExamUsername)
	})

	t.Run("failure sets sentinel and leaves username", func(t *testing.T) {
		set := model.NewRecordSet()
		rec := model.NewRecord("u1")
		rec.ExamUsername = "existing"
		set.Put(rec)

		set.ApplySyncOutcome("u1", model.SyncOutcome{Success: false})

		got, _ := set.Get("u1")
		assert.Equal(t, model.SyncFailed, got.LastSyncedAt)
		assert.Equal(t, "existing", got.ExamUsername)
	})

	t.Run("unknown identity key", func(t *testing.T) {
		set := model.NewRecordSet()
		assert.False(t, set.ApplySyncOutcome("nobody", model.SyncOutcome{Success: true}))
	})
}

func TestRecordSet_JSONRoundTripPreservesOrder(t *testing.T) {
	set := model.NewRecordSet()
	for _, uuid := range []string{"u3", "u1", "u2"} {
		set.Put(model.NewRecord(uuid))
	}

	data, err := json.Marshal(set)
	require.NoError(t, err)

	decoded := model.NewRecordSet()
	require.NoError(t, json.Unmarshal(data, decoded))
	assert.Equal(t, []string{"u3", "u1", "u2"}, decoded.UUIDs())

	// A second round trip is byte-identical.
	again, err := json.Marshal(decoded)
	require.NoError(t, err)
	assert.Equal(t, data, again)
}

func TestRecordSet_UnmarshalMappingKeyWins(t *testing.T) {
	// The mapping key is the identity; a diverging uuid field inside the
	// record body is overridden.
	raw := `{"u1": {"uuid": "other", "exam_username": "UNKNOWN", "exam_password": "", "last_synced_at": "NEVER"}}`

	set := model.NewRecordSet()
	require.NoError(t, json.Unmarshal([]byte(raw), set))

	rec, ok := set.Get("u1")
	require.True(t, ok)
	assert.Equal(t, "u1", rec.UUID)
}

func TestRecordSet_UnmarshalRejectsNonObject(t *testing.T) {
	set := model.NewRecordSet()
	assert.Error(t, json.Unmarshal([]byte(`["u1"]`), set))
	assert.Error(t, json.Unmarshal([]byte(`"u1"`), set))
}

func TestRecordSet_PutReplacementKeepsPosition(t *testing.T) {
	set := model.NewRecordSet()
	set.Put(model.NewRecord("u1"))
	set.Put(model.NewRecord("u2"))

	rec, _ := set.Get("u1")
	rec.ExamUsername = "changed"
	set.Put(rec)

	assert.Equal(t, []string{"u1", "u2"}, set.UUIDs())
}
