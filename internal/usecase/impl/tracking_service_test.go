package impl

import (
	"context"
	"testing"
	"time"

	"echotrail/internal/domain/entity"
	"echotrail/internal/usecase"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type trackingFixture struct {
	svc       *trackingService
	noteStore *fakeNoteStore
	dedupRepo *fakeDedupRepo
	pending   *fakePendingRepo
	settings  *fakeSettingsRepo
	devices   *fakeDeviceRepo
	gateway   *fakeGateway
	publisher *fakePublisher
}

func newTrackingFixture(t *testing.T) *trackingFixture {
	t.Helper()

	f := &trackingFixture{
		noteStore: &fakeNoteStore{},
		dedupRepo: &fakeDedupRepo{},
		pending:   &fakePendingRepo{},
		settings:  &fakeSettingsRepo{enabled: true},
		devices:   &fakeDeviceRepo{tokens: []string{"token-1"}},
		gateway:   &fakeGateway{},
		publisher: &fakePublisher{},
	}

	cfg := testConfig()
	evaluator := NewProximityService(cfg, testLogger())
	dedup := NewDedupService(f.dedupRepo, cfg)

	svc := NewTrackingService(
		f.noteStore, f.pending, f.settings, f.devices,
		evaluator, dedup, f.gateway, f.publisher,
		testLogger(),
	)
	f.svc = svc.(*trackingService)

	return f
}

func TestRunCycle_TriggersAndCommits(t *testing.T) {
	f := newTrackingFixture(t)
	f.noteStore.notes = []*entity.Note{
		{ID: "near", Title: "found me", Latitude: baseLat, Longitude: baseLon},
		{ID: "far", Title: "not yet", Latitude: baseLat + 0.1, Longitude: baseLon},
	}

	result, err := f.svc.RunCycle(context.Background(), fixAt(baseLat, baseLon))
	require.NoError(t, err)

	assert.False(t, result.Skipped)
	assert.Equal(t, 2, result.Evaluated)
	require.Len(t, result.Triggered, 1)
	assert.Equal(t, []string{"near"}, result.Alerted)

	// Notification went out with the triggered events.
	require.Len(t, f.gateway.calls, 1)
	assert.Equal(t, []string{"token-1"}, f.gateway.calls[0])

	// Discovered notes are purged from the working set.
	active, err := f.noteStore.LoadActiveNotes(context.Background())
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "far", active[0].ID)

	// Dedup state, pending record and discovery event all committed.
	assert.True(t, f.dedupRepo.state.Notified("near"))
	require.NotNil(t, f.pending.record)
	assert.Equal(t, []string{"near"}, f.pending.record.TriggeredNoteIDs)
	require.Len(t, f.publisher.events, 1)
	assert.Equal(t, []string{"near"}, f.publisher.events[0].NoteIDs)
}

func TestRunCycle_SkipsWhenTrackingDisabled(t *testing.T) {
	f := newTrackingFixture(t)
	f.settings.enabled = false
	f.noteStore.notes = []*entity.Note{
		{ID: "near", Latitude: baseLat, Longitude: baseLon},
	}

	result, err := f.svc.RunCycle(context.Background(), fixAt(baseLat, baseLon))
	require.NoError(t, err)
	assert.True(t, result.Skipped)
	assert.Empty(t, f.gateway.calls)
}

func TestRunCycle_SkipsOverlappingInvocation(t *testing.T) {
	f := newTrackingFixture(t)
	f.svc.inFlight.Store(true)

	result, err := f.svc.RunCycle(context.Background(), fixAt(baseLat, baseLon))
	require.NoError(t, err)
	assert.True(t, result.Skipped)
}

func TestRunCycle_NoRepeatAlertAcrossWakeups(t *testing.T) {
	f := newTrackingFixture(t)
	f.noteStore.notes = []*entity.Note{
		{ID: "near", Latitude: baseLat, Longitude: baseLon},
	}

	first, err := f.svc.RunCycle(context.Background(), fixAt(baseLat, baseLon))
	require.NoError(t, err)
	require.Equal(t, []string{"near"}, first.Alerted)

	// The user lingers in range; the next wake-up must stay silent. The
	// note was purged on discovery, so nothing even triggers.
	second, err := f.svc.RunCycle(context.Background(), fixAt(baseLat, baseLon))
	require.NoError(t, err)
	assert.Empty(t, second.Alerted)
	assert.Len(t, f.gateway.calls, 1)
	assert.Equal(t, 1, f.pending.saves)
}

func TestRunCycle_DedupFiltersResurrectedNote(t *testing.T) {
	f := newTrackingFixture(t)
	f.noteStore.notes = []*entity.Note{
		{ID: "near", Latitude: baseLat, Longitude: baseLon},
	}

	_, err := f.svc.RunCycle(context.Background(), fixAt(baseLat, baseLon))
	require.NoError(t, err)

	// A sync brings the same id back undiscovered. Dedup still knows it.
	f.noteStore.notes = []*entity.Note{
		{ID: "near", Latitude: baseLat, Longitude: baseLon},
	}
	f.svc.now = func() time.Time { return time.Now().Add(5 * time.Minute) }

	result, err := f.svc.RunCycle(context.Background(), fixAt(baseLat, baseLon))
	require.NoError(t, err)
	require.Len(t, result.Triggered, 1)
	assert.Empty(t, result.Alerted)
	assert.Len(t, f.gateway.calls, 1)
}

func TestRunCycle_EmissionFailureCommitsNothing(t *testing.T) {
	f := newTrackingFixture(t)
	f.gateway.sendErr = errors.New("fcm unavailable")
	f.noteStore.notes = []*entity.Note{
		{ID: "near", Latitude: baseLat, Longitude: baseLon},
	}

	result, err := f.svc.RunCycle(context.Background(), fixAt(baseLat, baseLon))
	require.NoError(t, err)
	require.Len(t, result.Triggered, 1)
	assert.Empty(t, result.Alerted)

	// No alert went out, so the note stays active and eligible to retry.
	active, loadErr := f.noteStore.LoadActiveNotes(context.Background())
	require.NoError(t, loadErr)
	assert.Len(t, active, 1)
	assert.False(t, f.dedupRepo.state.Notified("near"))
	assert.Nil(t, f.pending.record)
	assert.Empty(t, f.publisher.events)
}

func TestRunCycle_NoDevicesStillCommits(t *testing.T) {
	f := newTrackingFixture(t)
	f.devices.tokens = nil
	f.noteStore.notes = []*entity.Note{
		{ID: "near", Latitude: baseLat, Longitude: baseLon},
	}

	result, err := f.svc.RunCycle(context.Background(), fixAt(baseLat, baseLon))
	require.NoError(t, err)

	// The pending record remains the foreground handoff even with no
	// push targets registered.
	assert.Equal(t, []string{"near"}, result.Alerted)
	require.NotNil(t, f.pending.record)
	assert.Empty(t, f.gateway.calls)
}

func TestRunCycle_PrunesInvalidTokens(t *testing.T) {
	f := newTrackingFixture(t)
	f.devices.tokens = []string{"good", "stale"}
	f.gateway.invalidTokens = []string{"stale"}
	f.noteStore.notes = []*entity.Note{
		{ID: "near", Latitude: baseLat, Longitude: baseLon},
	}

	_, err := f.svc.RunCycle(context.Background(), fixAt(baseLat, baseLon))
	require.NoError(t, err)
	assert.Equal(t, []string{"stale"}, f.devices.removed)
}

func TestRunCycle_StorageReadFailureAborts(t *testing.T) {
	f := newTrackingFixture(t)
	f.noteStore.loadErr = errors.New("disk gone")

	_, err := f.svc.RunCycle(context.Background(), fixAt(baseLat, baseLon))
	require.Error(t, err)
	assert.Empty(t, f.gateway.calls)
	assert.Nil(t, f.pending.record)

	// The single-flight latch is released for the next wake-up.
	assert.False(t, f.svc.inFlight.Load())
}

func TestRunCycle_NoTriggersNoSideEffects(t *testing.T) {
	f := newTrackingFixture(t)
	f.noteStore.notes = []*entity.Note{
		{ID: "far", Latitude: baseLat + 0.1, Longitude: baseLon},
	}

	result, err := f.svc.RunCycle(context.Background(), fixAt(baseLat, baseLon))
	require.NoError(t, err)
	assert.Empty(t, result.Triggered)
	assert.Empty(t, f.gateway.calls)
	assert.Zero(t, f.dedupRepo.saves)
	assert.Nil(t, f.pending.record)
}

func TestSetTrackingEnabled_RoundTrip(t *testing.T) {
	f := newTrackingFixture(t)
	ctx := context.Background()

	require.NoError(t, f.svc.SetTrackingEnabled(ctx, false))
	enabled, err := f.svc.TrackingEnabled(ctx)
	require.NoError(t, err)
	assert.False(t, enabled)

	var _ usecase.TrackingUsecase = f.svc
}
