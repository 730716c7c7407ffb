package impl

import (
	"log/slog"
	"math"
	"time"

	"echotrail/config"
	"echotrail/internal/domain/entity"
	"echotrail/internal/domain/geo"
	"echotrail/internal/usecase"
)

type proximityService struct {
	defaultRadiusMeters float64
	maxRadiusMeters     float64
	logger              *slog.Logger
}

// NewProximityService creates the trigger evaluator.
func NewProximityService(cfg *config.Config, logger *slog.Logger) usecase.ProximityUsecase {
	proximity := cfg.Proximity
	if proximity == nil {
		proximity = &config.ProximityConfig{
			DefaultRadiusMeters: config.DefaultRadiusMeters,
			MaxRadiusMeters:     config.DefaultMaxRadiusMeters,
		}
	}

	return &proximityService{
		defaultRadiusMeters: proximity.DefaultRadiusMeters,
		maxRadiusMeters:     proximity.MaxRadiusMeters,
		logger:              logger,
	}
}

// Evaluate produces a trigger event for every note the fix has just made
// reachable. Discovered notes never re-trigger; time-locked notes are
// ineligible regardless of distance; a note with bad geometry is dropped
// without disturbing the rest of the set.
func (s *proximityService) Evaluate(fix *entity.PositionFix, notes []*entity.Note, now time.Time) []*entity.TriggerEvent {
	events := make([]*entity.TriggerEvent, 0)

	for _, note := range notes {
		if note.Discovered {
			continue
		}
		if note.TimeLocked(now) {
			continue
		}

		distance, err := geo.DistanceMeters(fix.Latitude, fix.Longitude, note.Latitude, note.Longitude)
		if err != nil {
			s.logger.Warn("Skipping note with invalid geometry",
				slog.String("note_id", note.ID),
				slog.Any("error", err),
			)

			continue
		}

		if distance > s.effectiveRadius(note) {
			continue
		}

		events = append(events, &entity.TriggerEvent{
			NoteID:         note.ID,
			Title:          note.Title,
			DistanceMeters: math.Round(distance),
		})
	}

	return events
}

// effectiveRadius resolves the note radius against the configured default
// and clamps it to the configured maximum.
func (s *proximityService) effectiveRadius(note *entity.Note) float64 {
	radius := note.EffectiveRadius(s.defaultRadiusMeters)
	if s.maxRadiusMeters > 0 && radius > s.maxRadiusMeters {
		radius = s.maxRadiusMeters
	}

	return radius
}
