// Package entity contains the core business objects of the project.
package entity

import (
	"time"

	"echotrail/internal/domain/geo"

	"github.com/pkg/errors"
)

// ErrMissingNoteID is returned when a note arrives without an identifier.
var ErrMissingNoteID = errors.New("note is missing an id")

// Note represents a geotagged audio note cached locally for proximity
// evaluation. Notes are created on upload success, mutated only by the
// tracking cycle, and evicted from the working set once discovered.
type Note struct {
	ID           string     `json:"id"`                     // Opaque stable identifier assigned by the remote API.
	Title        string     `json:"title"`                  // Display title shown in the notification.
	Latitude     float64    `json:"latitude"`               // WGS-84 latitude in degrees.
	Longitude    float64    `json:"longitude"`              // WGS-84 longitude in degrees.
	RadiusMeters float64    `json:"radius_meters"`          // Trigger distance threshold; 0 means "use the configured default".
	AudioFile    string     `json:"audio_file,omitempty"`   // Recording file name as stored by the remote API.
	HiddenUntil  *time.Time `json:"hidden_until,omitempty"` // Time-lock; the note cannot trigger before this instant.
	Discovered   bool       `json:"discovered"`             // Once true the note never triggers again.
	CreatedAt    time.Time  `json:"created_at"`             // Timestamp of when the note was recorded.
}

// Validate rejects notes that must never enter the candidate set.
// Invalid coordinates are a hard failure at ingestion, not at evaluation.
func (n *Note) Validate() error {
	if n.ID == "" {
		return ErrMissingNoteID
	}
	if !geo.ValidCoordinate(n.Latitude, n.Longitude) {
		return errors.Wrapf(geo.ErrInvalidCoordinate, "note %s at (%f, %f)", n.ID, n.Latitude, n.Longitude)
	}

	return nil
}

// EffectiveRadius returns the trigger radius, falling back to the supplied
// default when the note does not carry one. The legacy code mixed a meter
// constant with a degree threshold here; the meter constant is canonical.
func (n *Note) EffectiveRadius(defaultRadiusMeters float64) float64 {
	if n.RadiusMeters > 0 {
		return n.RadiusMeters
	}

	return defaultRadiusMeters
}

// TimeLocked reports whether the note's hidden-until gate is still closed.
func (n *Note) TimeLocked(now time.Time) bool {
	return n.HiddenUntil != nil && now.Before(*n.HiddenUntil)
}
