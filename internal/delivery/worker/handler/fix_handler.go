package handler

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"echotrail/config"
	deliverycontext "echotrail/internal/delivery/context"
	"echotrail/internal/domain/constants"
	"echotrail/internal/domain/entity"
	"echotrail/internal/usecase"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"go.uber.org/fx"
	"google.golang.org/api/idtoken"
)

// PubSubMessage represents the structure of a Pub/Sub push message
type PubSubMessage struct {
	Message struct {
		Data        string            `json:"data"`
		Attributes  map[string]string `json:"attributes,omitempty"`
		MessageID   string            `json:"messageId"`
		PublishTime string            `json:"publishTime"`
	} `json:"message"`
	Subscription string `json:"subscription"`
}

// FixEvent is the location wake-up payload carried inside a push message.
// One event per reported device position.
type FixEvent struct {
	RequestID  string     `json:"request_id,omitempty"`
	DeviceID   string     `json:"device_id,omitempty"`
	Latitude   float64    `json:"latitude"`
	Longitude  float64    `json:"longitude"`
	RecordedAt *time.Time `json:"recorded_at,omitempty"`
}

// FixHandler handles Pub/Sub push messages carrying location fixes
type FixHandler struct {
	verifyPushAuth bool
	logger         *slog.Logger
	trackingUC     usecase.TrackingUsecase
}

// FixHandlerParams holds dependencies for the FixHandler
type FixHandlerParams struct {
	fx.In

	Config     *config.Config
	Logger     *slog.Logger
	TrackingUC usecase.TrackingUsecase
}

// NewFixHandler creates a new Pub/Sub push handler
func NewFixHandler(params FixHandlerParams) *FixHandler {
	// Determine if we need to verify push auth based on config
	verifyPushAuth := params.Config.PubSub != nil &&
		params.Config.PubSub.Provider == constants.PubSubProviderGoogle &&
		params.Config.Env.Env != constants.EnvDevelop

	return &FixHandler{
		verifyPushAuth: verifyPushAuth,
		logger:         params.Logger,
		trackingUC:     params.TrackingUC,
	}
}

// HandleFix handles incoming Pub/Sub push messages
func (h *FixHandler) HandleFix(c echo.Context) error {
	ctx := c.Request().Context()

	// Verify Pub/Sub token in production for Google provider
	if h.verifyPushAuth {
		if err := verifyPubSubToken(c.Request()); err != nil {
			h.logger.Warn("[Worker] Invalid Pub/Sub token", slog.Any("error", err))

			return c.NoContent(http.StatusUnauthorized)
		}
	}

	// Parse Pub/Sub message
	var pushMsg PubSubMessage
	if err := c.Bind(&pushMsg); err != nil {
		h.logger.Error("[Worker] Failed to parse push message", slog.Any("error", err))

		return c.NoContent(http.StatusBadRequest)
	}

	// Decode base64 message data
	data, err := base64.StdEncoding.DecodeString(pushMsg.Message.Data)
	if err != nil {
		h.logger.Error("[Worker] Failed to decode message data", slog.Any("error", err))

		return c.NoContent(http.StatusBadRequest)
	}

	// Parse fix event
	var event FixEvent
	if err := json.Unmarshal(data, &event); err != nil {
		h.logger.Error("[Worker] Failed to parse fix event", slog.Any("error", err))

		return c.NoContent(http.StatusBadRequest)
	}

	// Extract request_id for distributed tracing
	// Priority: message attributes > event field > existing context
	requestID := h.extractRequestID(ctx, &pushMsg, &event)

	// Create request-scoped logger with request_id
	reqLogger := h.logger.With(slog.String("request_id", requestID))

	// Update context with request_id and logger
	ctx = deliverycontext.WithRequestID(ctx, requestID)
	ctx = deliverycontext.WithLogger(ctx, reqLogger)

	reqLogger.Info("[Worker] Processing location fix",
		slog.String("device_id", event.DeviceID),
		slog.Float64("latitude", event.Latitude),
		slog.Float64("longitude", event.Longitude),
	)

	recordedAt := time.Now()
	if event.RecordedAt != nil {
		recordedAt = *event.RecordedAt
	}

	fix := &entity.PositionFix{
		Latitude:  event.Latitude,
		Longitude: event.Longitude,
		Timestamp: recordedAt,
	}

	result, err := h.trackingUC.RunCycle(ctx, fix)
	if err != nil {
		reqLogger.Error("[Worker] Evaluation cycle failed",
			slog.Any("error", err),
			slog.Bool("retryable", true),
		)
		// Cycle errors are pre-side-effect aborts (storage reads), so a
		// Pub/Sub redelivery is safe. Return 503 to trigger the retry.
		return c.NoContent(http.StatusServiceUnavailable)
	}

	if result.Skipped {
		// Disabled tracking and overlapping cycles are terminal outcomes;
		// acknowledging prevents infinite redelivery.
		reqLogger.Info("[Worker] Cycle skipped", slog.String("reason", result.SkipReason))

		return c.NoContent(http.StatusOK)
	}

	reqLogger.Info("[Worker] Cycle completed",
		slog.Int("evaluated", result.Evaluated),
		slog.Int("triggered", len(result.Triggered)),
		slog.Int("alerted", len(result.Alerted)),
	)

	return c.NoContent(http.StatusOK)
}

// extractRequestID extracts request_id from message attributes, event, or generates a new one
func (h *FixHandler) extractRequestID(ctx context.Context, pushMsg *PubSubMessage, event *FixEvent) string {
	// 1. Try message attributes (from Pub/Sub)
	if requestID, ok := pushMsg.Message.Attributes["request_id"]; ok && requestID != "" {
		return requestID
	}

	// 2. Try event field (from JSON payload)
	if event.RequestID != "" {
		return event.RequestID
	}

	// 3. Try existing context (from RequestIDMiddleware via X-Request-Id header)
	if requestID := deliverycontext.GetRequestIDFromContext(ctx); requestID != "" {
		return requestID
	}

	// 4. Generate new UUID as fallback
	return uuid.New().String()
}

// verifyPubSubToken verifies the JWT token from Google Pub/Sub push requests
// Reference: https://cloud.google.com/pubsub/docs/push#authenticating_standard_push_requests
func verifyPubSubToken(req *http.Request) error {
	// Get the Authorization header
	authHeader := req.Header.Get("Authorization")
	if authHeader == "" {
		return errors.New("missing authorization header")
	}

	// Extract Bearer token
	const bearerPrefix = "Bearer "
	if !strings.HasPrefix(authHeader, bearerPrefix) {
		return errors.New("invalid authorization header format")
	}
	token := strings.TrimPrefix(authHeader, bearerPrefix)

	// Construct the expected audience (the push endpoint URL)
	// The audience should be the URL of this endpoint
	scheme := "https"
	if req.TLS == nil {
		scheme = "http" // For local development
	}
	audience := fmt.Sprintf("%s://%s%s", scheme, req.Host, req.URL.Path)

	// Validate the token using Google's ID token validator
	ctx := req.Context()
	payload, err := idtoken.Validate(ctx, token, audience)
	if err != nil {
		return errors.Wrap(err, "failed to validate token")
	}

	// Verify the token is from Google Pub/Sub
	// The issuer should be accounts.google.com
	if payload.Issuer != "accounts.google.com" && payload.Issuer != "https://accounts.google.com" {
		return errors.Errorf("invalid issuer: %s", payload.Issuer)
	}

	// Verify email is verified (if email claim exists)
	if emailVerified, ok := payload.Claims["email_verified"].(bool); ok && !emailVerified {
		return errors.New("email not verified")
	}

	return nil
}
