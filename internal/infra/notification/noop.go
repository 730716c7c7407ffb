package notification

import (
	"context"
	"log/slog"

	"echotrail/internal/domain/entity"
	"echotrail/internal/domain/service"
)

type noopGateway struct {
	logger *slog.Logger
}

// NewNoopGateway returns a gateway that logs triggers instead of pushing.
// Used when Firebase is not configured, typically in local development.
func NewNoopGateway(logger *slog.Logger) service.NotificationGateway {
	return &noopGateway{logger: logger}
}

func (s *noopGateway) SendProximityNotification(ctx context.Context, tokens []string, events []*entity.TriggerEvent) (int, int, []string, error) {
	title, body := ProximityContent(events)
	s.logger.InfoContext(ctx, "proximity notification suppressed (noop gateway)",
		slog.String("title", title),
		slog.String("body", body),
		slog.Int("tokens", len(tokens)),
		slog.Int("events", len(events)))

	return len(tokens), 0, nil, nil
}
