package handler

import (
	"log/slog"
	"net/http"
	"time"

	"echotrail/internal/delivery/api/response"
	"echotrail/internal/domain/entity"
	"echotrail/internal/domain/repository"
	"echotrail/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"go.uber.org/fx"
)

// TrailHandlerParams holds dependencies for TrailHandler, injected by Fx.
type TrailHandlerParams struct {
	fx.In

	NotesUC    usecase.NotesUsecase
	TrackingUC usecase.TrackingUsecase
	Logger     *slog.Logger
}

// TrailHandler exposes the foreground surface of the proximity engine:
// manual refresh, the cached note set and the pending-notification record.
type TrailHandler struct {
	notesUC    usecase.NotesUsecase
	trackingUC usecase.TrackingUsecase
	logger     *slog.Logger
}

// NewTrailHandler is the constructor for TrailHandler
func NewTrailHandler(params TrailHandlerParams) *TrailHandler {
	return &TrailHandler{
		notesUC:    params.NotesUC,
		trackingUC: params.TrackingUC,
		logger:     params.Logger,
	}
}

// RefreshRequest carries a manually reported position. The coordinates
// are pointers so that 0 (equator, prime meridian) passes the required
// check.
type RefreshRequest struct {
	Latitude   *float64   `json:"latitude" validate:"required,gte=-90,lte=90"`
	Longitude  *float64   `json:"longitude" validate:"required,gte=-180,lte=180"`
	RecordedAt *time.Time `json:"recorded_at"`
}

// TrackingRequest toggles the background tracking gate
type TrackingRequest struct {
	Enabled *bool `json:"enabled" validate:"required"`
}

// Refresh runs one evaluation cycle for a caller-supplied position.
// The foreground "am I near anything right now" path shares the exact
// cycle the background wake-up runs, including dedup and persistence.
func (h *TrailHandler) Refresh(c echo.Context) error {
	var req RefreshRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid position input")
	}

	if err := c.Validate(&req); err != nil {
		return response.BadRequest(c, "VALIDATION_ERROR", err.Error())
	}

	recordedAt := time.Now()
	if req.RecordedAt != nil {
		recordedAt = *req.RecordedAt
	}

	fix := &entity.PositionFix{
		Latitude:  *req.Latitude,
		Longitude: *req.Longitude,
		Timestamp: recordedAt,
	}

	result, err := h.trackingUC.RunCycle(c.Request().Context(), fix)
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, result)
}

// ActiveNotes returns the cached undiscovered notes
func (h *TrailHandler) ActiveNotes(c echo.Context) error {
	notes, err := h.notesUC.ActiveNotes(c.Request().Context())
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, notes)
}

// SyncNotes forces a resync of the local cache from the remote note API
func (h *TrailHandler) SyncNotes(c echo.Context) error {
	count, err := h.notesUC.SyncNotes(c.Request().Context())
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, map[string]int{"synced": count})
}

// ConsumePendingRecord returns the pending notification record and clears
// it. Stale or absent records answer 404 so the client shows nothing.
func (h *TrailHandler) ConsumePendingRecord(c echo.Context) error {
	record, err := h.notesUC.ConsumePendingRecord(c.Request().Context())
	if err != nil {
		if errors.Is(err, repository.ErrNoPendingRecord) {
			return response.NotFound(c, "NO_PENDING_RECORD", "No pending notification record")
		}

		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, record)
}

// ClearPendingRecord discards the pending record without reading it
func (h *TrailHandler) ClearPendingRecord(c echo.Context) error {
	_, err := h.notesUC.ConsumePendingRecord(c.Request().Context())
	if err != nil && !errors.Is(err, repository.ErrNoPendingRecord) {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, map[string]string{"message": "Pending record cleared"})
}

// TrackingStatus reports the durable background-tracking gate
func (h *TrailHandler) TrackingStatus(c echo.Context) error {
	enabled, err := h.trackingUC.TrackingEnabled(c.Request().Context())
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, map[string]bool{"enabled": enabled})
}

// SetTracking toggles the background-tracking gate
func (h *TrailHandler) SetTracking(c echo.Context) error {
	var req TrackingRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid tracking input")
	}

	if err := c.Validate(&req); err != nil {
		return response.BadRequest(c, "VALIDATION_ERROR", err.Error())
	}

	if err := h.trackingUC.SetTrackingEnabled(c.Request().Context(), *req.Enabled); err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, map[string]bool{"enabled": *req.Enabled})
}

// ConsumeNote marks a discovered note as played and clears its dedup entry
func (h *TrailHandler) ConsumeNote(c echo.Context) error {
	noteID := c.Param("id")
	if noteID == "" {
		return response.BadRequest(c, "INVALID_ID", "Missing note ID")
	}

	if err := h.notesUC.ConsumeNote(c.Request().Context(), noteID); err != nil {
		if errors.Is(err, repository.ErrNoteNotFound) {
			return response.NotFound(c, "NOTE_NOT_FOUND", "Note not found")
		}

		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, map[string]string{"message": "Note consumed"})
}
