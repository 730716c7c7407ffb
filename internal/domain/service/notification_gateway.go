package service

import (
	"context"

	"echotrail/internal/domain/entity"
)

// ProximityPayloadType tags the data payload of proximity notifications so
// a tap can hand the note ids straight back to the foreground, bypassing
// the generic pending-record path.
const ProximityPayloadType = "proximity"

// NotificationGateway is the platform push collaborator. Implementations
// deliver a notification batch carrying the typed proximity payload.
type NotificationGateway interface {
	// SendProximityNotification emits one notification for the batch of
	// trigger events to every registered device token. It returns success
	// and failure counts plus the tokens the platform reported as invalid
	// or unregistered.
	SendProximityNotification(ctx context.Context, tokens []string, events []*entity.TriggerEvent) (successCount, failureCount int, invalidTokens []string, err error)
}
