package usecase

import (
	"context"

	"echotrail/internal/domain/entity"
)

// NotesUsecase covers the foreground surface over the local note cache:
// reading the active set, forcing a resync, consuming the pending record
// and consuming (playing) a discovered note.
type NotesUsecase interface {
	// ActiveNotes returns the cached undiscovered notes.
	ActiveNotes(ctx context.Context) ([]*entity.Note, error)

	// SyncNotes fetches the remote note set and replaces the local cache
	// entries. Returns the number of notes upserted.
	SyncNotes(ctx context.Context) (int, error)

	// ConsumePendingRecord returns the unconsumed pending record and
	// clears it. Stale records are discarded, returning
	// repository.ErrNoPendingRecord instead of an outdated alert.
	ConsumePendingRecord(ctx context.Context) (*entity.PendingNotificationRecord, error)

	// ConsumeNote marks a note as played: it resets the dedup state for
	// the id and evicts the discovered entry from the working set.
	ConsumeNote(ctx context.Context, noteID string) error
}

// RegisterDeviceInput carries a device registration from the client.
type RegisterDeviceInput struct {
	DeviceID string `json:"device_id" validate:"required"`
	FCMToken string `json:"fcm_token" validate:"required"`
	Platform string `json:"platform" validate:"required,oneof=ios android"`
}

// DeviceUsecase manages the devices targeted by proximity alerts.
type DeviceUsecase interface {
	// RegisterDevice inserts or refreshes a device registration.
	RegisterDevice(ctx context.Context, input *RegisterDeviceInput) (*entity.UserDevice, error)
}
