package sqlite

import (
	"context"
	"log/slog"

	"echotrail/internal/domain/constants"
	"echotrail/internal/domain/entity"
	"echotrail/internal/domain/repository"

	"gorm.io/gorm"
)

// dedupStateRepository implements repository.DedupStateRepository.
type dedupStateRepository struct {
	kv *kvStore
}

// NewDedupStateRepository is the constructor for the dedup state store.
func NewDedupStateRepository(db *gorm.DB, logger *slog.Logger) repository.DedupStateRepository {
	return &dedupStateRepository{kv: newKVStore(db, logger)}
}

// LoadDedupState returns the persisted state, or an empty state when
// nothing usable is stored.
func (r *dedupStateRepository) LoadDedupState(ctx context.Context) (*entity.DedupState, error) {
	state := entity.NewDedupState()
	found, err := r.kv.get(ctx, constants.StorageKeyDedupState, state)
	if err != nil {
		return nil, err
	}
	if !found || state.NotifiedNoteIDs == nil {
		return entity.NewDedupState(), nil
	}

	return state, nil
}

// SaveDedupState writes the state through to durable storage.
func (r *dedupStateRepository) SaveDedupState(ctx context.Context, state *entity.DedupState) error {
	return r.kv.put(ctx, constants.StorageKeyDedupState, state)
}

// pendingRecordRepository implements repository.PendingRecordRepository.
type pendingRecordRepository struct {
	kv *kvStore
}

// NewPendingRecordRepository is the constructor for the pending record store.
func NewPendingRecordRepository(db *gorm.DB, logger *slog.Logger) repository.PendingRecordRepository {
	return &pendingRecordRepository{kv: newKVStore(db, logger)}
}

// SavePendingRecord replaces the single unconsumed record.
func (r *pendingRecordRepository) SavePendingRecord(ctx context.Context, record *entity.PendingNotificationRecord) error {
	return r.kv.put(ctx, constants.StorageKeyPendingRecord, record)
}

// LoadPendingRecord returns the unconsumed record if one exists.
func (r *pendingRecordRepository) LoadPendingRecord(ctx context.Context) (*entity.PendingNotificationRecord, error) {
	var record entity.PendingNotificationRecord
	found, err := r.kv.get(ctx, constants.StorageKeyPendingRecord, &record)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, repository.ErrNoPendingRecord
	}

	return &record, nil
}

// ClearPendingRecord removes the record; clearing an absent one is a no-op.
func (r *pendingRecordRepository) ClearPendingRecord(ctx context.Context) error {
	return r.kv.delete(ctx, constants.StorageKeyPendingRecord)
}

// settingsRepository implements repository.SettingsRepository.
type settingsRepository struct {
	kv *kvStore
}

// NewSettingsRepository is the constructor for the settings store.
func NewSettingsRepository(db *gorm.DB, logger *slog.Logger) repository.SettingsRepository {
	return &settingsRepository{kv: newKVStore(db, logger)}
}

// TrackingEnabled reports the background-tracking flag; the gate defaults
// to enabled until the user has explicitly toggled it.
func (r *settingsRepository) TrackingEnabled(ctx context.Context) (bool, error) {
	var enabled bool
	found, err := r.kv.get(ctx, constants.StorageKeyTrackingEnabled, &enabled)
	if err != nil {
		return false, err
	}
	if !found {
		return true, nil
	}

	return enabled, nil
}

// SetTrackingEnabled writes the flag through to durable storage.
func (r *settingsRepository) SetTrackingEnabled(ctx context.Context, enabled bool) error {
	return r.kv.put(ctx, constants.StorageKeyTrackingEnabled, enabled)
}

// deviceRepository implements repository.DeviceRepository. The full device
// list lives under one key, matching the other collections.
type deviceRepository struct {
	kv *kvStore
}

// NewDeviceRepository is the constructor for the device store.
func NewDeviceRepository(db *gorm.DB, logger *slog.Logger) repository.DeviceRepository {
	return &deviceRepository{kv: newKVStore(db, logger)}
}

func (r *deviceRepository) load(ctx context.Context) ([]*entity.UserDevice, error) {
	var devices []*entity.UserDevice
	found, err := r.kv.get(ctx, constants.StorageKeyDevices, &devices)
	if err != nil {
		return nil, err
	}
	if !found {
		return []*entity.UserDevice{}, nil
	}

	return devices, nil
}

// RegisterDevice inserts or refreshes a device by its client-side id.
func (r *deviceRepository) RegisterDevice(ctx context.Context, device *entity.UserDevice) error {
	devices, err := r.load(ctx)
	if err != nil {
		return err
	}

	replaced := false
	for i, existing := range devices {
		if existing.DeviceID == device.DeviceID {
			devices[i] = device
			replaced = true

			break
		}
	}
	if !replaced {
		devices = append(devices, device)
	}

	return r.kv.put(ctx, constants.StorageKeyDevices, devices)
}

// ActiveTokens returns the push tokens of all registered devices.
func (r *deviceRepository) ActiveTokens(ctx context.Context) ([]string, error) {
	devices, err := r.load(ctx)
	if err != nil {
		return nil, err
	}

	tokens := make([]string, 0, len(devices))
	for _, device := range devices {
		if device.FCMToken != "" {
			tokens = append(tokens, device.FCMToken)
		}
	}

	return tokens, nil
}

// RemoveTokens drops the devices holding the given tokens.
func (r *deviceRepository) RemoveTokens(ctx context.Context, tokens []string) error {
	if len(tokens) == 0 {
		return nil
	}

	devices, err := r.load(ctx)
	if err != nil {
		return err
	}

	dead := make(map[string]struct{}, len(tokens))
	for _, token := range tokens {
		dead[token] = struct{}{}
	}

	kept := make([]*entity.UserDevice, 0, len(devices))
	for _, device := range devices {
		if _, ok := dead[device.FCMToken]; !ok {
			kept = append(kept, device)
		}
	}
	if len(kept) == len(devices) {
		return nil
	}

	return r.kv.put(ctx, constants.StorageKeyDevices, kept)
}
