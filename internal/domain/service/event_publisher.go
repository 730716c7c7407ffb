package service

import (
	"context"
	"time"

	"echotrail/internal/domain/entity"
)

// DiscoveryEvent announces that a cycle surfaced notes to the user. It is
// published after the discovery state has been committed, for downstream
// consumers (activity feed, analytics) that must not sit on the hot path.
type DiscoveryEvent struct {
	RequestID      string    `json:"request_id,omitempty"` // For distributed tracing.
	NoteIDs        []string  `json:"note_ids"`
	Latitude       float64   `json:"latitude"`
	Longitude      float64   `json:"longitude"`
	DiscoveredAt   time.Time `json:"discovered_at"`
	TriggeredCount int       `json:"triggered_count"`
}

// NoteSource is the remote API collaborator the local cache syncs from.
type NoteSource interface {
	// FetchNotes returns the caller's reachable notes, already normalized
	// and validated. Notes with malformed geometry are dropped per-note,
	// never failing the whole batch.
	FetchNotes(ctx context.Context) ([]*entity.Note, error)
}

// EventPublisher defines the interface for publishing events to a message queue.
type EventPublisher interface {
	// PublishDiscoveryEvent publishes a discovery event for async processing.
	PublishDiscoveryEvent(ctx context.Context, event *DiscoveryEvent) error

	// Close releases any resources held by the publisher.
	Close() error
}
