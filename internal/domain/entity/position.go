package entity

import "time"

// PositionFix is a single location report from a device. It is ephemeral:
// a fix lives for exactly one evaluation cycle and is never persisted.
type PositionFix struct {
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	Timestamp time.Time `json:"timestamp"`
}

// TriggerEvent is the evaluator's output for one note that has just become
// reachable. Consumed by the notification gateway and folded into the
// pending record; callers must not depend on event order.
type TriggerEvent struct {
	NoteID         string  `json:"note_id"`
	Title          string  `json:"title"`
	DistanceMeters float64 `json:"distance_meters"` // Rounded to whole meters.
}
