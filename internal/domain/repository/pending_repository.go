package repository

import (
	"context"

	"echotrail/internal/domain/entity"

	"github.com/pkg/errors"
)

// ErrNoPendingRecord is returned when no unconsumed pending record exists.
var ErrNoPendingRecord = errors.New("no pending notification record")

// PendingRecordRepository persists the single handoff record between the
// background cycle and the foreground app.
type PendingRecordRepository interface {
	// SavePendingRecord replaces the unconsumed record. At most one
	// unconsumed record exists at a time.
	SavePendingRecord(ctx context.Context, record *entity.PendingNotificationRecord) error

	// LoadPendingRecord returns the unconsumed record, or
	// ErrNoPendingRecord when there is none.
	LoadPendingRecord(ctx context.Context) (*entity.PendingNotificationRecord, error)

	// ClearPendingRecord removes the record. Clearing an absent record is
	// a no-op.
	ClearPendingRecord(ctx context.Context) error
}

// SettingsRepository persists small process-wide flags, currently only the
// background-tracking gate. The foreground toggles it; the tracking cycle
// checks it at entry.
type SettingsRepository interface {
	// TrackingEnabled reports whether background evaluation is active.
	// Defaults to true when the flag has never been written.
	TrackingEnabled(ctx context.Context) (bool, error)

	// SetTrackingEnabled writes the flag through to durable storage.
	SetTrackingEnabled(ctx context.Context, enabled bool) error
}
