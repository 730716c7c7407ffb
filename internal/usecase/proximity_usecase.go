package usecase

import (
	"time"

	"echotrail/internal/domain/entity"
)

// ProximityUsecase is the pure trigger-evaluation core. For a fixed fix,
// note set and clock value the output is fully deterministic; no note's
// evaluation depends on another's result.
type ProximityUsecase interface {
	// Evaluate returns the trigger events for every undiscovered,
	// unlocked note whose effective radius contains the fix. Notes with
	// invalid geometry are skipped without aborting the rest. Event
	// order is unspecified.
	Evaluate(fix *entity.PositionFix, notes []*entity.Note, now time.Time) []*entity.TriggerEvent
}
