package impl

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	deliverycontext "echotrail/internal/delivery/context"
	"echotrail/internal/domain/entity"
	"echotrail/internal/domain/repository"
	"echotrail/internal/domain/service"
	"echotrail/internal/usecase"

	"github.com/pkg/errors"
)

const (
	// Firebase batch size limit
	gatewayBatchSize = 500

	skipReasonInFlight = "cycle already in flight"
	skipReasonDisabled = "background tracking disabled"
)

type trackingService struct {
	noteStore    repository.NoteStore
	pendingRepo  repository.PendingRecordRepository
	settingsRepo repository.SettingsRepository
	deviceRepo   repository.DeviceRepository
	evaluator    usecase.ProximityUsecase
	dedup        usecase.DedupUsecase
	gateway      service.NotificationGateway
	publisher    service.EventPublisher
	logger       *slog.Logger

	// inFlight serializes cycles. The storage layer has no cross-process
	// locking, so the whole read-evaluate-write sequence is treated as a
	// single-writer critical section and overlapping wake-ups are skipped.
	inFlight atomic.Bool

	now func() time.Time
}

// NewTrackingService creates the background location task orchestrator.
func NewTrackingService(
	noteStore repository.NoteStore,
	pendingRepo repository.PendingRecordRepository,
	settingsRepo repository.SettingsRepository,
	deviceRepo repository.DeviceRepository,
	evaluator usecase.ProximityUsecase,
	dedup usecase.DedupUsecase,
	gateway service.NotificationGateway,
	publisher service.EventPublisher,
	logger *slog.Logger,
) usecase.TrackingUsecase {
	return &trackingService{
		noteStore:    noteStore,
		pendingRepo:  pendingRepo,
		settingsRepo: settingsRepo,
		deviceRepo:   deviceRepo,
		evaluator:    evaluator,
		dedup:        dedup,
		gateway:      gateway,
		publisher:    publisher,
		logger:       logger,
		now:          time.Now,
	}
}

// log returns a request-scoped logger if available, otherwise falls back to the service's logger.
func (s *trackingService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, s.logger)
}

// RunCycle runs one evaluation cycle: load notes, evaluate the fix, filter
// through dedup, emit the notification batch, then commit discovered and
// notified state. Ordering matters: state is committed only after emission
// is confirmed, so a crash mid-cycle can at worst repeat an alert, never
// swallow one.
func (s *trackingService) RunCycle(ctx context.Context, fix *entity.PositionFix) (*usecase.CycleResult, error) {
	if !s.inFlight.CompareAndSwap(false, true) {
		s.log(ctx).Info("Skipping wake-up, cycle already in flight")

		return &usecase.CycleResult{Skipped: true, SkipReason: skipReasonInFlight}, nil
	}
	defer s.inFlight.Store(false)

	enabled, err := s.settingsRepo.TrackingEnabled(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "read tracking flag")
	}
	if !enabled {
		return &usecase.CycleResult{Skipped: true, SkipReason: skipReasonDisabled}, nil
	}

	notes, err := s.noteStore.LoadActiveNotes(ctx)
	if err != nil {
		// Abort with no side effects; the next scheduled wake-up is the
		// retry mechanism.
		return nil, errors.Wrap(err, "load active notes")
	}

	now := s.now()
	result := &usecase.CycleResult{Evaluated: len(notes)}

	result.Triggered = s.evaluator.Evaluate(fix, notes, now)
	if len(result.Triggered) == 0 {
		return result, nil
	}

	candidateIDs := make([]string, 0, len(result.Triggered))
	eventsByID := make(map[string]*entity.TriggerEvent, len(result.Triggered))
	for _, event := range result.Triggered {
		candidateIDs = append(candidateIDs, event.NoteID)
		eventsByID[event.NoteID] = event
	}

	decision, err := s.dedup.ShouldNotify(ctx, candidateIDs, now)
	if err != nil {
		return nil, errors.Wrap(err, "dedup filter")
	}
	if decision.CooldownActive {
		s.log(ctx).Debug("Cooldown active, suppressing batch",
			slog.Int("candidates", len(candidateIDs)),
		)

		return result, nil
	}
	if len(decision.Allow) == 0 {
		return result, nil
	}

	allowedEvents := make([]*entity.TriggerEvent, 0, len(decision.Allow))
	for _, id := range decision.Allow {
		allowedEvents = append(allowedEvents, eventsByID[id])
	}

	if !s.emitNotifications(ctx, allowedEvents) {
		// Nothing was emitted, so nothing is committed. The notes stay
		// Fresh and the next wake-up retries the alert.
		return result, nil
	}

	s.commitCycle(ctx, fix, decision.Allow, allowedEvents, now)
	result.Alerted = decision.Allow

	return result, nil
}

// emitNotifications sends the batch through the gateway in platform-sized
// chunks. Reports whether at least one notification went out; per-batch
// failures are logged and do not block the remaining chunks.
func (s *trackingService) emitNotifications(ctx context.Context, events []*entity.TriggerEvent) bool {
	tokens, err := s.deviceRepo.ActiveTokens(ctx)
	if err != nil {
		s.log(ctx).Error("Failed to load device tokens", slog.Any("error", err))

		return false
	}
	if len(tokens) == 0 {
		// No registered devices; the pending record is still the handoff
		// the foreground reads, so the cycle counts as emitted.
		return true
	}

	emitted := false
	var invalidTokens []string

	for i := 0; i < len(tokens); i += gatewayBatchSize {
		end := min(i+gatewayBatchSize, len(tokens))
		batch := tokens[i:end]

		successCount, failureCount, batchInvalid, sendErr := s.gateway.SendProximityNotification(ctx, batch, events)
		if sendErr != nil {
			s.log(ctx).Error("Notification batch failed",
				slog.Int("batch_start", i),
				slog.Int("batch_size", len(batch)),
				slog.Any("error", sendErr),
			)

			continue
		}

		if successCount > 0 {
			emitted = true
		}
		if failureCount > 0 {
			s.log(ctx).Warn("Partial notification failures",
				slog.Int("failed", failureCount),
			)
		}
		invalidTokens = append(invalidTokens, batchInvalid...)
	}

	if len(invalidTokens) > 0 {
		if err := s.deviceRepo.RemoveTokens(ctx, invalidTokens); err != nil {
			s.log(ctx).Warn("Failed to prune invalid device tokens", slog.Any("error", err))
		}
	}

	return emitted
}

// commitCycle persists every state change of a successful emission. Each
// step is isolated: a failing write is logged and the remaining commits
// still run, so one bad key cannot wedge the whole cycle.
func (s *trackingService) commitCycle(ctx context.Context, fix *entity.PositionFix, alertedIDs []string, events []*entity.TriggerEvent, now time.Time) {
	for _, id := range alertedIDs {
		if err := s.noteStore.MarkDiscovered(ctx, id); err != nil {
			s.log(ctx).Error("Failed to mark note discovered",
				slog.String("note_id", id),
				slog.Any("error", err),
			)
		}
	}

	if err := s.noteStore.RemoveDiscovered(ctx); err != nil {
		s.log(ctx).Error("Failed to purge discovered notes", slog.Any("error", err))
	}

	if err := s.dedup.MarkNotified(ctx, alertedIDs, now); err != nil {
		s.log(ctx).Error("Failed to commit dedup state", slog.Any("error", err))
	}

	record := &entity.PendingNotificationRecord{
		TriggeredNoteIDs: alertedIDs,
		Count:            len(alertedIDs),
		Timestamp:        now,
	}
	if err := s.pendingRepo.SavePendingRecord(ctx, record); err != nil {
		s.log(ctx).Error("Failed to write pending record", slog.Any("error", err))
	}

	event := &service.DiscoveryEvent{
		NoteIDs:        alertedIDs,
		Latitude:       fix.Latitude,
		Longitude:      fix.Longitude,
		DiscoveredAt:   now,
		TriggeredCount: len(events),
	}
	if err := s.publisher.PublishDiscoveryEvent(ctx, event); err != nil {
		s.log(ctx).Warn("Failed to publish discovery event", slog.Any("error", err))
	}
}

// TrackingEnabled reports the durable background-tracking gate.
func (s *trackingService) TrackingEnabled(ctx context.Context) (bool, error) {
	enabled, err := s.settingsRepo.TrackingEnabled(ctx)
	if err != nil {
		return false, errors.Wrap(err, "read tracking flag")
	}

	return enabled, nil
}

// SetTrackingEnabled toggles the gate.
func (s *trackingService) SetTrackingEnabled(ctx context.Context, enabled bool) error {
	if err := s.settingsRepo.SetTrackingEnabled(ctx, enabled); err != nil {
		return errors.Wrap(err, "write tracking flag")
	}

	return nil
}
