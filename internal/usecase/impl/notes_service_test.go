package impl

import (
	"context"
	"testing"
	"time"

	"echotrail/internal/domain/entity"
	"echotrail/internal/domain/repository"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type notesFixture struct {
	svc       *notesService
	noteStore *fakeNoteStore
	pending   *fakePendingRepo
	source    *fakeNoteSource
	dedupRepo *fakeDedupRepo
}

func newNotesFixture(t *testing.T) *notesFixture {
	t.Helper()

	f := &notesFixture{
		noteStore: &fakeNoteStore{},
		pending:   &fakePendingRepo{},
		source:    &fakeNoteSource{},
		dedupRepo: &fakeDedupRepo{},
	}

	cfg := testConfig()
	svc := NewNotesService(f.noteStore, f.pending, f.source, f.dedupRepo, cfg)
	f.svc = svc.(*notesService)

	return f
}

func TestSyncNotes_UpsertsFetchedSet(t *testing.T) {
	f := newNotesFixture(t)
	f.source.notes = []*entity.Note{
		{ID: "a", Latitude: baseLat, Longitude: baseLon},
		{ID: "b", Latitude: baseLat, Longitude: baseLon},
	}

	count, err := f.svc.SyncNotes(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, count)
	assert.Equal(t, 2, f.noteStore.upserted)
}

func TestSyncNotes_FetchFailureLeavesCacheUntouched(t *testing.T) {
	f := newNotesFixture(t)
	f.source.fetchErr = errors.New("api down")

	_, err := f.svc.SyncNotes(context.Background())
	require.Error(t, err)
	assert.Zero(t, f.noteStore.upserted)
}

func TestConsumePendingRecord_ReturnsAndClears(t *testing.T) {
	f := newNotesFixture(t)
	f.pending.record = &entity.PendingNotificationRecord{
		TriggeredNoteIDs: []string{"a"},
		Count:            1,
		Timestamp:        time.Now(),
	}

	record, err := f.svc.ConsumePendingRecord(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, record.TriggeredNoteIDs)

	// Second read finds nothing; consuming is destructive.
	_, err = f.svc.ConsumePendingRecord(context.Background())
	require.ErrorIs(t, err, repository.ErrNoPendingRecord)
}

func TestConsumePendingRecord_DiscardsStaleRecord(t *testing.T) {
	f := newNotesFixture(t)
	f.pending.record = &entity.PendingNotificationRecord{
		TriggeredNoteIDs: []string{"a"},
		Count:            1,
		Timestamp:        time.Now().Add(-time.Hour),
	}

	_, err := f.svc.ConsumePendingRecord(context.Background())
	require.ErrorIs(t, err, repository.ErrNoPendingRecord)

	// The stale record was cleared, not left behind.
	assert.Nil(t, f.pending.record)
	assert.Equal(t, 1, f.pending.clears)
}

func TestConsumeNote_ResetsDedupAndEvicts(t *testing.T) {
	f := newNotesFixture(t)
	f.noteStore.notes = []*entity.Note{
		{ID: "a", Latitude: baseLat, Longitude: baseLon},
	}
	f.dedupRepo.state = entity.NewDedupState()
	f.dedupRepo.state.MarkNotified([]string{"a"}, time.Now())

	require.NoError(t, f.svc.ConsumeNote(context.Background(), "a"))

	assert.False(t, f.dedupRepo.state.Notified("a"))
	active, err := f.noteStore.LoadActiveNotes(context.Background())
	require.NoError(t, err)
	assert.Empty(t, active)
}

func TestConsumeNote_UnknownID(t *testing.T) {
	f := newNotesFixture(t)
	f.noteStore.notes = []*entity.Note{
		{ID: "a", Latitude: baseLat, Longitude: baseLon},
	}

	err := f.svc.ConsumeNote(context.Background(), "never-seen")
	require.ErrorIs(t, err, repository.ErrNoteNotFound)
}

func TestConsumeNote_PurgedButNotified(t *testing.T) {
	f := newNotesFixture(t)
	f.dedupRepo.state = entity.NewDedupState()
	f.dedupRepo.state.MarkNotified([]string{"gone"}, time.Now())

	// The note was purged on discovery, but the user can still play it
	// from the notification payload.
	require.NoError(t, f.svc.ConsumeNote(context.Background(), "gone"))
	assert.False(t, f.dedupRepo.state.Notified("gone"))
}

func TestActiveNotes_ExcludesDiscovered(t *testing.T) {
	f := newNotesFixture(t)
	f.noteStore.notes = []*entity.Note{
		{ID: "a", Latitude: baseLat, Longitude: baseLon},
		{ID: "b", Latitude: baseLat, Longitude: baseLon, Discovered: true},
	}

	notes, err := f.svc.ActiveNotes(context.Background())
	require.NoError(t, err)
	require.Len(t, notes, 1)
	assert.Equal(t, "a", notes[0].ID)
}
