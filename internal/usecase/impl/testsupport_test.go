package impl

import (
	"context"
	"io"
	"log/slog"
	"time"

	"echotrail/config"
	"echotrail/internal/domain/entity"
	"echotrail/internal/domain/repository"
	"echotrail/internal/domain/service"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Proximity = &config.ProximityConfig{
		DefaultRadiusMeters: config.DefaultRadiusMeters,
		MaxRadiusMeters:     config.DefaultMaxRadiusMeters,
		CooldownWindow:      config.DefaultCooldownWindow,
		PendingRecordTTL:    config.DefaultPendingRecordTTL,
	}

	return cfg
}

// fakeNoteStore is an in-memory NoteStore preserving insertion order.
type fakeNoteStore struct {
	notes    []*entity.Note
	loadErr  error
	markErr  error
	upserted int
}

func (f *fakeNoteStore) LoadActiveNotes(ctx context.Context) ([]*entity.Note, error) {
	if f.loadErr != nil {
		return nil, f.loadErr
	}

	active := make([]*entity.Note, 0, len(f.notes))
	for _, note := range f.notes {
		if !note.Discovered {
			active = append(active, note)
		}
	}

	return active, nil
}

func (f *fakeNoteStore) UpsertNotes(ctx context.Context, notes []*entity.Note) error {
	f.upserted += len(notes)
	f.notes = append(f.notes, notes...)

	return nil
}

func (f *fakeNoteStore) MarkDiscovered(ctx context.Context, noteID string) error {
	if f.markErr != nil {
		return f.markErr
	}
	for _, note := range f.notes {
		if note.ID == noteID {
			note.Discovered = true
		}
	}

	return nil
}

func (f *fakeNoteStore) RemoveDiscovered(ctx context.Context) error {
	kept := f.notes[:0]
	for _, note := range f.notes {
		if !note.Discovered {
			kept = append(kept, note)
		}
	}
	f.notes = kept

	return nil
}

// fakeDedupRepo keeps the dedup state in memory.
type fakeDedupRepo struct {
	state   *entity.DedupState
	loadErr error
	saves   int
}

func (f *fakeDedupRepo) LoadDedupState(ctx context.Context) (*entity.DedupState, error) {
	if f.loadErr != nil {
		return nil, f.loadErr
	}
	if f.state == nil {
		f.state = entity.NewDedupState()
	}

	return f.state, nil
}

func (f *fakeDedupRepo) SaveDedupState(ctx context.Context, state *entity.DedupState) error {
	f.saves++
	f.state = state

	return nil
}

// fakePendingRepo keeps at most one pending record.
type fakePendingRepo struct {
	record *entity.PendingNotificationRecord
	saves  int
	clears int
}

func (f *fakePendingRepo) SavePendingRecord(ctx context.Context, record *entity.PendingNotificationRecord) error {
	f.saves++
	f.record = record

	return nil
}

func (f *fakePendingRepo) LoadPendingRecord(ctx context.Context) (*entity.PendingNotificationRecord, error) {
	if f.record == nil {
		return nil, repository.ErrNoPendingRecord
	}

	return f.record, nil
}

func (f *fakePendingRepo) ClearPendingRecord(ctx context.Context) error {
	f.clears++
	f.record = nil

	return nil
}

// fakeSettingsRepo holds the tracking flag.
type fakeSettingsRepo struct {
	enabled bool
	readErr error
}

func (f *fakeSettingsRepo) TrackingEnabled(ctx context.Context) (bool, error) {
	if f.readErr != nil {
		return false, f.readErr
	}

	return f.enabled, nil
}

func (f *fakeSettingsRepo) SetTrackingEnabled(ctx context.Context, enabled bool) error {
	f.enabled = enabled

	return nil
}

// fakeDeviceRepo serves a fixed token list.
type fakeDeviceRepo struct {
	tokens  []string
	removed []string
}

func (f *fakeDeviceRepo) RegisterDevice(ctx context.Context, device *entity.UserDevice) error {
	f.tokens = append(f.tokens, device.FCMToken)

	return nil
}

func (f *fakeDeviceRepo) ActiveTokens(ctx context.Context) ([]string, error) {
	return f.tokens, nil
}

func (f *fakeDeviceRepo) RemoveTokens(ctx context.Context, tokens []string) error {
	f.removed = append(f.removed, tokens...)

	return nil
}

// fakeGateway records every send and can fail on demand.
type fakeGateway struct {
	sendErr       error
	invalidTokens []string
	calls         [][]string
	lastEvents    []*entity.TriggerEvent
}

func (f *fakeGateway) SendProximityNotification(ctx context.Context, tokens []string, events []*entity.TriggerEvent) (int, int, []string, error) {
	f.calls = append(f.calls, tokens)
	f.lastEvents = events
	if f.sendErr != nil {
		return 0, len(tokens), nil, f.sendErr
	}

	return len(tokens), 0, f.invalidTokens, nil
}

// fakePublisher records published discovery events.
type fakePublisher struct {
	events []*service.DiscoveryEvent
	pubErr error
}

func (f *fakePublisher) PublishDiscoveryEvent(ctx context.Context, event *service.DiscoveryEvent) error {
	if f.pubErr != nil {
		return f.pubErr
	}
	f.events = append(f.events, event)

	return nil
}

func (f *fakePublisher) Close() error {
	return nil
}

// fakeNoteSource serves a fixed remote note set.
type fakeNoteSource struct {
	notes    []*entity.Note
	fetchErr error
}

func (f *fakeNoteSource) FetchNotes(ctx context.Context) ([]*entity.Note, error) {
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}

	return f.notes, nil
}

func fixAt(lat, lon float64) *entity.PositionFix {
	return &entity.PositionFix{Latitude: lat, Longitude: lon, Timestamp: time.Now()}
}
