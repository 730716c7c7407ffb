package repository

import (
	"context"

	"echotrail/internal/domain/entity"
)

// DeviceRepository persists the user's registered devices. Tokens the push
// platform reports as invalid are pruned so later batches stop targeting
// dead installs.
type DeviceRepository interface {
	// RegisterDevice inserts or refreshes a device by its client-side id.
	RegisterDevice(ctx context.Context, device *entity.UserDevice) error

	// ActiveTokens returns the push tokens of all registered devices.
	ActiveTokens(ctx context.Context) ([]string, error)

	// RemoveTokens drops the devices holding the given tokens.
	RemoveTokens(ctx context.Context, tokens []string) error
}
