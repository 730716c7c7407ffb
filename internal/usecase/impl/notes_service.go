package impl

import (
	"context"
	"time"

	"echotrail/config"
	"echotrail/internal/domain/entity"
	"echotrail/internal/domain/repository"
	"echotrail/internal/domain/service"
	"echotrail/internal/usecase"

	"github.com/pkg/errors"
)

type notesService struct {
	noteStore   repository.NoteStore
	pendingRepo repository.PendingRecordRepository
	noteSource  service.NoteSource
	dedupRepo   repository.DedupStateRepository
	pendingTTL  time.Duration

	now func() time.Time
}

// NewNotesService creates the foreground note cache service.
func NewNotesService(
	noteStore repository.NoteStore,
	pendingRepo repository.PendingRecordRepository,
	noteSource service.NoteSource,
	dedupRepo repository.DedupStateRepository,
	cfg *config.Config,
) usecase.NotesUsecase {
	ttl := config.DefaultPendingRecordTTL
	if cfg.Proximity != nil && cfg.Proximity.PendingRecordTTL > 0 {
		ttl = cfg.Proximity.PendingRecordTTL
	}

	return &notesService{
		noteStore:   noteStore,
		pendingRepo: pendingRepo,
		noteSource:  noteSource,
		dedupRepo:   dedupRepo,
		pendingTTL:  ttl,
		now:         time.Now,
	}
}

// ActiveNotes returns the cached undiscovered notes.
func (s *notesService) ActiveNotes(ctx context.Context) ([]*entity.Note, error) {
	notes, err := s.noteStore.LoadActiveNotes(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "load active notes")
	}

	return notes, nil
}

// SyncNotes pulls the remote note set and upserts it into the cache.
func (s *notesService) SyncNotes(ctx context.Context) (int, error) {
	notes, err := s.noteSource.FetchNotes(ctx)
	if err != nil {
		return 0, errors.Wrap(err, "fetch remote notes")
	}

	if err := s.noteStore.UpsertNotes(ctx, notes); err != nil {
		return 0, errors.Wrap(err, "upsert notes")
	}

	return len(notes), nil
}

// ConsumePendingRecord hands the last cycle's findings to the foreground
// and clears them. A record older than the staleness window is discarded
// rather than surfaced as an outdated alert.
func (s *notesService) ConsumePendingRecord(ctx context.Context) (*entity.PendingNotificationRecord, error) {
	record, err := s.pendingRepo.LoadPendingRecord(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.pendingRepo.ClearPendingRecord(ctx); err != nil {
		return nil, errors.Wrap(err, "clear pending record")
	}

	if record.Stale(s.now(), s.pendingTTL) {
		return nil, repository.ErrNoPendingRecord
	}

	return record, nil
}

// ConsumeNote marks a note as played: the dedup entry is reset so the id
// may alert again if the note ever reappears, and discovered entries are
// evicted from the working set. The id must be a cached note or a note
// that has already alerted; anything else is ErrNoteNotFound.
func (s *notesService) ConsumeNote(ctx context.Context, noteID string) error {
	state, err := s.dedupRepo.LoadDedupState(ctx)
	if err != nil {
		return errors.Wrap(err, "load dedup state")
	}

	cached, err := s.cachedNote(ctx, noteID)
	if err != nil {
		return err
	}
	if !cached && !state.Notified(noteID) {
		return repository.ErrNoteNotFound
	}

	if state.Notified(noteID) {
		state.Reset([]string{noteID})
		if err := s.dedupRepo.SaveDedupState(ctx, state); err != nil {
			return errors.Wrap(err, "save dedup state")
		}
	}

	if cached {
		if err := s.noteStore.MarkDiscovered(ctx, noteID); err != nil {
			return errors.Wrap(err, "mark note discovered")
		}
	}

	if err := s.noteStore.RemoveDiscovered(ctx); err != nil {
		return errors.Wrap(err, "purge discovered notes")
	}

	return nil
}

func (s *notesService) cachedNote(ctx context.Context, noteID string) (bool, error) {
	notes, err := s.noteStore.LoadActiveNotes(ctx)
	if err != nil {
		return false, errors.Wrap(err, "load active notes")
	}

	for _, note := range notes {
		if note.ID == noteID {
			return true, nil
		}
	}

	return false, nil
}
