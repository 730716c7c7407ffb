package impl

import (
	"context"
	"time"

	"echotrail/internal/domain/entity"
	"echotrail/internal/domain/repository"
	"echotrail/internal/usecase"

	"github.com/pkg/errors"
)

type deviceService struct {
	deviceRepo repository.DeviceRepository
}

// NewDeviceService creates the device registration service.
func NewDeviceService(deviceRepo repository.DeviceRepository) usecase.DeviceUsecase {
	return &deviceService{deviceRepo: deviceRepo}
}

// RegisterDevice inserts or refreshes a device registration by client id.
func (s *deviceService) RegisterDevice(ctx context.Context, input *usecase.RegisterDeviceInput) (*entity.UserDevice, error) {
	device := &entity.UserDevice{
		DeviceID:     input.DeviceID,
		FCMToken:     input.FCMToken,
		Platform:     input.Platform,
		RegisteredAt: time.Now(),
	}

	if err := s.deviceRepo.RegisterDevice(ctx, device); err != nil {
		return nil, errors.Wrap(err, "register device")
	}

	return device, nil
}
