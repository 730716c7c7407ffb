package usecase

import (
	"context"

	"echotrail/internal/domain/entity"
)

// CycleResult summarizes one background evaluation cycle.
type CycleResult struct {
	// Skipped is true when the cycle did not run (tracking disabled or
	// another cycle already in flight).
	Skipped bool `json:"skipped"`

	// SkipReason names why the cycle was skipped.
	SkipReason string `json:"skip_reason,omitempty"`

	// Evaluated is the number of active notes considered.
	Evaluated int `json:"evaluated"`

	// Triggered holds the events produced by the evaluator.
	Triggered []*entity.TriggerEvent `json:"triggered"`

	// Alerted holds the note ids that actually produced a notification
	// after dedup filtering.
	Alerted []string `json:"alerted"`
}

// TrackingUsecase is the background location task: one call per location
// wake-up, orchestrating store, evaluator, dedup and gateway. Failures are
// logged and absorbed; they never propagate to the host process.
type TrackingUsecase interface {
	// RunCycle runs one read-evaluate-notify-persist cycle for the fix.
	// Invocations are mutually exclusive; an overlapping call is skipped.
	RunCycle(ctx context.Context, fix *entity.PositionFix) (*CycleResult, error)

	// TrackingEnabled reports the durable background-tracking gate.
	TrackingEnabled(ctx context.Context) (bool, error)

	// SetTrackingEnabled toggles the gate.
	SetTrackingEnabled(ctx context.Context, enabled bool) error
}
