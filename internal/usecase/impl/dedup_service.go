package impl

import (
	"context"
	"time"

	"echotrail/config"
	"echotrail/internal/domain/repository"
	"echotrail/internal/usecase"

	"github.com/pkg/errors"
)

type dedupService struct {
	dedupRepo      repository.DedupStateRepository
	cooldownWindow time.Duration
}

// NewDedupService creates the notification deduplicator.
func NewDedupService(dedupRepo repository.DedupStateRepository, cfg *config.Config) usecase.DedupUsecase {
	cooldown := config.DefaultCooldownWindow
	if cfg.Proximity != nil && cfg.Proximity.CooldownWindow > 0 {
		cooldown = cfg.Proximity.CooldownWindow
	}

	return &dedupService{
		dedupRepo:      dedupRepo,
		cooldownWindow: cooldown,
	}
}

// ShouldNotify filters candidates against the persisted dedup state. Ids
// already Notified are filtered out regardless of cooldown, which prevents
// duplicate alerts for the same note across independent wake-ups. The
// global cooldown only matters when every candidate is already Notified:
// that combination is the signature of a rapid repeated wake-up, and
// suppressing it guards against notification storms.
func (s *dedupService) ShouldNotify(ctx context.Context, candidateIDs []string, now time.Time) (*usecase.DedupDecision, error) {
	state, err := s.dedupRepo.LoadDedupState(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "load dedup state")
	}

	allow := make([]string, 0, len(candidateIDs))
	for _, id := range candidateIDs {
		if !state.Notified(id) {
			allow = append(allow, id)
		}
	}

	cooldownActive := now.Sub(state.LastNotificationTime) < s.cooldownWindow
	if cooldownActive && len(allow) == 0 {
		return &usecase.DedupDecision{Allow: nil, CooldownActive: true}, nil
	}

	return &usecase.DedupDecision{Allow: allow, CooldownActive: false}, nil
}

// MarkNotified commits the Fresh -> Notified transition and persists it.
func (s *dedupService) MarkNotified(ctx context.Context, noteIDs []string, now time.Time) error {
	if len(noteIDs) == 0 {
		return nil
	}

	state, err := s.dedupRepo.LoadDedupState(ctx)
	if err != nil {
		return errors.Wrap(err, "load dedup state")
	}

	state.MarkNotified(noteIDs, now)

	if err := s.dedupRepo.SaveDedupState(ctx, state); err != nil {
		return errors.Wrap(err, "save dedup state")
	}

	return nil
}

// Reset transitions ids back to Fresh and persists the change.
func (s *dedupService) Reset(ctx context.Context, noteIDs []string) error {
	if len(noteIDs) == 0 {
		return nil
	}

	state, err := s.dedupRepo.LoadDedupState(ctx)
	if err != nil {
		return errors.Wrap(err, "load dedup state")
	}

	state.Reset(noteIDs)

	if err := s.dedupRepo.SaveDedupState(ctx, state); err != nil {
		return errors.Wrap(err, "save dedup state")
	}

	return nil
}
