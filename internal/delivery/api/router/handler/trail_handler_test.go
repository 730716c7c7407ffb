package handler

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"echotrail/internal/delivery/api/validator"
	"echotrail/internal/domain/entity"
	"echotrail/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubTrackingUsecase records the fix handed to RunCycle.
type stubTrackingUsecase struct {
	lastFix *entity.PositionFix
	enabled bool
}

func (s *stubTrackingUsecase) RunCycle(ctx context.Context, fix *entity.PositionFix) (*usecase.CycleResult, error) {
	s.lastFix = fix

	return &usecase.CycleResult{}, nil
}

func (s *stubTrackingUsecase) TrackingEnabled(ctx context.Context) (bool, error) {
	return s.enabled, nil
}

func (s *stubTrackingUsecase) SetTrackingEnabled(ctx context.Context, enabled bool) error {
	s.enabled = enabled

	return nil
}

func newRefreshContext(t *testing.T, body string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()

	e := echo.New()
	e.Validator = validator.New()

	req := httptest.NewRequest(http.MethodPost, "/trail/refresh", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()

	return e.NewContext(req, rec), rec
}

func newTestTrailHandler(tracking usecase.TrackingUsecase) *TrailHandler {
	return &TrailHandler{
		trackingUC: tracking,
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

func TestRefresh_AcceptsZeroCoordinates(t *testing.T) {
	tracking := &stubTrackingUsecase{}
	h := newTestTrailHandler(tracking)

	// (0, 0) is a valid WGS-84 position and must not be rejected as an
	// absent field.
	c, rec := newRefreshContext(t, `{"latitude": 0, "longitude": 0}`)
	require.NoError(t, h.Refresh(c))

	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, tracking.lastFix)
	assert.Zero(t, tracking.lastFix.Latitude)
	assert.Zero(t, tracking.lastFix.Longitude)
}

func TestRefresh_RejectsMissingCoordinates(t *testing.T) {
	tracking := &stubTrackingUsecase{}
	h := newTestTrailHandler(tracking)

	c, rec := newRefreshContext(t, `{"longitude": 121.5654}`)
	require.NoError(t, h.Refresh(c))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Nil(t, tracking.lastFix)
}

func TestRefresh_RejectsOutOfRangeCoordinates(t *testing.T) {
	tracking := &stubTrackingUsecase{}
	h := newTestTrailHandler(tracking)

	c, rec := newRefreshContext(t, `{"latitude": 95, "longitude": 0}`)
	require.NoError(t, h.Refresh(c))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Nil(t, tracking.lastFix)
}
