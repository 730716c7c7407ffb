package entity

import "time"

// DedupState is the persisted notification-deduplication state. A note id
// present in NotifiedNoteIDs has already produced a user-visible alert and
// stays suppressed until the user consumes the note or the history is reset.
// The state lives from app install to app data reset and must survive
// process restarts, task kills and reboots.
type DedupState struct {
	NotifiedNoteIDs      map[string]struct{} `json:"notified_note_ids"`
	LastNotificationTime time.Time           `json:"last_notification_time"`
}

// NewDedupState returns an empty state with every note id Fresh.
func NewDedupState() *DedupState {
	return &DedupState{NotifiedNoteIDs: make(map[string]struct{})}
}

// Notified reports whether the given note id has already been alerted.
func (s *DedupState) Notified(noteID string) bool {
	_, ok := s.NotifiedNoteIDs[noteID]

	return ok
}

// MarkNotified transitions the given ids to Notified and stamps the
// notification time.
func (s *DedupState) MarkNotified(noteIDs []string, now time.Time) {
	if s.NotifiedNoteIDs == nil {
		s.NotifiedNoteIDs = make(map[string]struct{}, len(noteIDs))
	}
	for _, id := range noteIDs {
		s.NotifiedNoteIDs[id] = struct{}{}
	}
	s.LastNotificationTime = now
}

// Reset transitions the given ids back to Fresh. Ids cycle indefinitely;
// there is no terminal state.
func (s *DedupState) Reset(noteIDs []string) {
	for _, id := range noteIDs {
		delete(s.NotifiedNoteIDs, id)
	}
}
