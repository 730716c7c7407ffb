package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"echotrail/config"
	"echotrail/internal/delivery"
	"echotrail/internal/delivery/api"
	apihandler "echotrail/internal/delivery/api/router/handler"
	"echotrail/internal/delivery/worker"
	workerhandler "echotrail/internal/delivery/worker/handler"
	"echotrail/internal/domain/constants"
	"echotrail/internal/domain/service"
	logs "echotrail/internal/infra/log"
	"echotrail/internal/infra/notesync"
	"echotrail/internal/infra/notification"
	"echotrail/internal/infra/persistence/sqlite"
	"echotrail/internal/infra/pubsub"
	"echotrail/internal/infra/scheduler"
	"echotrail/internal/usecase"
	"echotrail/internal/usecase/impl"

	"go.uber.org/fx"
)

type startServerParams struct {
	fx.In
	fx.Lifecycle
	fx.Shutdowner

	Deliveries []delivery.Delivery `group:"deliveries"`
}

func main() {
	fx.New(
		injectInfra(),
		injectRepo(),
		injectService(),
		injectUsecase(),
		injectHandler(),
		injectDelivery(),
		fx.Invoke(
			registerNoteSync,
			startServer,
		),
	).Run()
}

func injectInfra() fx.Option {
	return fx.Provide(
		config.New,
		logs.New,
		context.Background,
		sqlite.New,
		scheduler.New,
	)
}

func injectRepo() fx.Option {
	return fx.Options(
		fx.Provide(
			sqlite.NewNoteStore,
			sqlite.NewDedupStateRepository,
			sqlite.NewPendingRecordRepository,
			sqlite.NewSettingsRepository,
			sqlite.NewDeviceRepository,
		),
	)
}

func injectService() fx.Option {
	return fx.Options(
		fx.Provide(
			newNotificationGateway,
			newNoteSource,
		),
		pubsub.Module,
	)
}

// newNotificationGateway creates the push gateway with dependency injection
func newNotificationGateway(ctx context.Context, cfg *config.Config, logger *slog.Logger) (service.NotificationGateway, error) {
	if cfg.Firebase == nil || cfg.Firebase.CredentialsPath == "" {
		logger.Info("Firebase not configured, using noop notification gateway")

		return notification.NewNoopGateway(logger), nil
	}

	gateway, err := notification.NewFirebaseGateway(ctx, cfg.Firebase.CredentialsPath)
	if err != nil {
		return nil, fmt.Errorf("failed to create Firebase gateway: %w", err)
	}

	return gateway, nil
}

// newNoteSource creates the remote note API client
func newNoteSource(cfg *config.Config, logger *slog.Logger) (service.NoteSource, error) {
	if cfg.NoteSync == nil || cfg.NoteSync.BaseURL == "" {
		return nil, fmt.Errorf("noteSync.baseUrl is required")
	}

	return notesync.New(cfg.NoteSync, logger), nil
}

func injectUsecase() fx.Option {
	return fx.Options(
		fx.Provide(
			impl.NewProximityService,
			impl.NewDedupService,
			impl.NewTrackingService,
			impl.NewNotesService,
			impl.NewDeviceService,
		),
	)
}

func injectHandler() fx.Option {
	return fx.Options(
		fx.Provide(
			apihandler.NewTrailHandler,
			apihandler.NewDeviceHandler,
			workerhandler.NewFixHandler,
		),
	)
}

func injectDelivery() fx.Option {
	return fx.Options(
		fx.Provide(
			fx.Annotate(
				api.NewServer,
				fx.ResultTags(`group:"deliveries"`),
			),
			fx.Annotate(
				worker.NewServer,
				fx.ResultTags(`group:"deliveries"`),
			),
		),
	)
}

// registerNoteSync binds the periodic cache resync under its stable task
// name. Registration is idempotent, re-running startup never doubles the
// ticker.
func registerNoteSync(s *scheduler.Scheduler, cfg *config.Config, notesUC usecase.NotesUsecase, logger *slog.Logger) error {
	if cfg.NoteSync == nil {
		return nil
	}

	_, err := s.Register(constants.BackgroundTaskName, cfg.NoteSync.SyncInterval, func(ctx context.Context) error {
		count, syncErr := notesUC.SyncNotes(ctx)
		if syncErr != nil {
			return syncErr
		}
		logger.Info("Note cache resynced", slog.Int("count", count))

		return nil
	})

	return err
}

func startServer(ctx context.Context, params startServerParams) {
	for _, delivery := range params.Deliveries {
		go func() {
			if err := delivery.Serve(ctx); err != nil {
				slog.Error("Failed to start server", slog.Any("error", err))

				// Trigger graceful shutdown to execute all OnStop hooks
				if shutdownErr := params.Shutdown(); shutdownErr != nil {
					slog.Error("Failed to shutdown gracefully", slog.Any("error", shutdownErr))
					os.Exit(1)
				}
			}
		}()
	}
}
