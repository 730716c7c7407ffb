// Package repository defines the interfaces for the persistence layer.
package repository

import (
	"context"

	"echotrail/internal/domain/entity"

	"github.com/pkg/errors"
)

// Domain-specific errors for note persistence.
var (
	// ErrNoteNotFound is returned when a note is not in the local cache.
	ErrNoteNotFound = errors.New("note not found")
)

// NoteStore is the durable local cache of geofenced notes. Every mutating
// operation writes through to storage before returning, so a process kill
// immediately after return cannot lose the update.
type NoteStore interface {
	// LoadActiveNotes returns all cached notes with Discovered == false.
	// Order is unspecified.
	LoadActiveNotes(ctx context.Context) ([]*entity.Note, error)

	// UpsertNotes replaces or inserts entries by id, used after a
	// successful sync with the remote API.
	UpsertNotes(ctx context.Context, notes []*entity.Note) error

	// MarkDiscovered sets Discovered = true and persists. Idempotent.
	MarkDiscovered(ctx context.Context, noteID string) error

	// RemoveDiscovered drops all discovered entries from the working set.
	RemoveDiscovered(ctx context.Context) error
}
