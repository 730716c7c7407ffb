package usecase

import (
	"context"
	"time"
)

// DedupDecision is the outcome of a ShouldNotify call.
type DedupDecision struct {
	// Allow holds the candidate ids still in Fresh state, in input order.
	Allow []string `json:"allow"`

	// CooldownActive reports that the global cooldown gate suppressed the
	// whole batch.
	CooldownActive bool `json:"cooldown_active"`
}

// DedupUsecase tracks which notes have already produced a user-visible
// alert. Evaluation and commit are split on purpose: ShouldNotify never
// transitions state, so a crash between evaluation and emission cannot
// silently suppress a future legitimate notification.
type DedupUsecase interface {
	// ShouldNotify filters candidate ids down to those that may alert now.
	ShouldNotify(ctx context.Context, candidateIDs []string, now time.Time) (*DedupDecision, error)

	// MarkNotified commits the Fresh -> Notified transition after the
	// notification was confirmed emitted.
	MarkNotified(ctx context.Context, noteIDs []string, now time.Time) error

	// Reset transitions ids back to Fresh, used when the user consumes a
	// note or an operator clears the history.
	Reset(ctx context.Context, noteIDs []string) error
}
