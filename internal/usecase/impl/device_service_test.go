package impl

import (
	"context"
	"testing"

	"echotrail/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterDevice_StoresToken(t *testing.T) {
	repo := &fakeDeviceRepo{}
	svc := NewDeviceService(repo)

	device, err := svc.RegisterDevice(context.Background(), &usecase.RegisterDeviceInput{
		DeviceID: "dev-1",
		FCMToken: "token-1",
		Platform: "android",
	})
	require.NoError(t, err)

	assert.Equal(t, "dev-1", device.DeviceID)
	assert.False(t, device.RegisteredAt.IsZero())
	assert.Equal(t, []string{"token-1"}, repo.tokens)
}
