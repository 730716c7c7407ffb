package sqlite

import (
	"context"
	"log/slog"

	"echotrail/internal/domain/constants"
	"echotrail/internal/domain/entity"
	"echotrail/internal/domain/repository"

	"gorm.io/gorm"
)

// noteStore implements repository.NoteStore over the key/value store. The
// whole note collection lives under one key and is replaced per write, so
// every mutation is durable before the call returns.
type noteStore struct {
	kv *kvStore
}

// NewNoteStore is the constructor for the local note cache.
func NewNoteStore(db *gorm.DB, logger *slog.Logger) repository.NoteStore {
	return &noteStore{kv: newKVStore(db, logger)}
}

func (s *noteStore) load(ctx context.Context) ([]*entity.Note, error) {
	var notes []*entity.Note
	found, err := s.kv.get(ctx, constants.StorageKeySavedNotes, &notes)
	if err != nil {
		return nil, err
	}
	if !found {
		return []*entity.Note{}, nil
	}

	return notes, nil
}

// LoadActiveNotes returns all cached notes with Discovered == false.
func (s *noteStore) LoadActiveNotes(ctx context.Context) ([]*entity.Note, error) {
	notes, err := s.load(ctx)
	if err != nil {
		return nil, err
	}

	active := make([]*entity.Note, 0, len(notes))
	for _, note := range notes {
		if !note.Discovered {
			active = append(active, note)
		}
	}

	return active, nil
}

// UpsertNotes replaces or inserts entries by id and persists the whole
// collection. Local discovery state wins over the remote copy, so a sync
// can never resurrect an already-discovered note.
func (s *noteStore) UpsertNotes(ctx context.Context, incoming []*entity.Note) error {
	notes, err := s.load(ctx)
	if err != nil {
		return err
	}

	byID := make(map[string]int, len(notes))
	for i, note := range notes {
		byID[note.ID] = i
	}

	for _, note := range incoming {
		if idx, ok := byID[note.ID]; ok {
			preserved := notes[idx].Discovered
			notes[idx] = note
			notes[idx].Discovered = preserved

			continue
		}
		notes = append(notes, note)
	}

	return s.kv.put(ctx, constants.StorageKeySavedNotes, notes)
}

// MarkDiscovered sets Discovered = true and persists. Idempotent: marking
// an already-discovered or absent note changes nothing.
func (s *noteStore) MarkDiscovered(ctx context.Context, noteID string) error {
	notes, err := s.load(ctx)
	if err != nil {
		return err
	}

	changed := false
	for _, note := range notes {
		if note.ID == noteID && !note.Discovered {
			note.Discovered = true
			changed = true
		}
	}
	if !changed {
		return nil
	}

	return s.kv.put(ctx, constants.StorageKeySavedNotes, notes)
}

// RemoveDiscovered evicts all discovered entries from the working set.
func (s *noteStore) RemoveDiscovered(ctx context.Context) error {
	notes, err := s.load(ctx)
	if err != nil {
		return err
	}

	kept := make([]*entity.Note, 0, len(notes))
	for _, note := range notes {
		if !note.Discovered {
			kept = append(kept, note)
		}
	}
	if len(kept) == len(notes) {
		return nil
	}

	return s.kv.put(ctx, constants.StorageKeySavedNotes, kept)
}
