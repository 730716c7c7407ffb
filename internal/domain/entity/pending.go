package entity

import "time"

// PendingNotificationRecord is the durable handoff between the background
// cycle and the foreground app: it records what the last cycle surfaced so
// the UI can show it on next launch even if the platform notification was
// dismissed. At most one unconsumed record exists at a time.
type PendingNotificationRecord struct {
	TriggeredNoteIDs []string  `json:"triggered_note_ids"`
	Count            int       `json:"count"`
	Timestamp        time.Time `json:"timestamp"`
}

// Stale reports whether the record is too old to surface. Stale records are
// discarded on consumption rather than shown as outdated alerts.
func (r *PendingNotificationRecord) Stale(now time.Time, ttl time.Duration) bool {
	return now.Sub(r.Timestamp) > ttl
}
