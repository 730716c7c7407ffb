package repository

import (
	"context"

	"echotrail/internal/domain/entity"
)

// DedupStateRepository persists the notification-deduplication state.
// The state is loaded at cycle entry and written back after the
// notification batch is confirmed emitted, never in between.
type DedupStateRepository interface {
	// LoadDedupState returns the persisted state, or an empty state when
	// nothing has been persisted yet or the stored value is unreadable.
	LoadDedupState(ctx context.Context) (*entity.DedupState, error)

	// SaveDedupState writes the state through to durable storage.
	SaveDedupState(ctx context.Context, state *entity.DedupState) error
}
