// Package context carries request-scoped values (request ID, logger)
// across the delivery and usecase layers without leaking Echo types
// into the services.
package context

import (
	"context"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// ContextKey is a private key type so values set here cannot collide
// with keys from other packages.
type ContextKey string

const (
	// KeyRequestID stores the per-request correlation ID.
	KeyRequestID ContextKey = "request_id"

	// KeyLogger stores the request-scoped logger.
	KeyLogger ContextKey = "logger"

	// HeaderXRequestID is the header clients use to propagate an
	// existing correlation ID.
	HeaderXRequestID = "X-Request-Id"
)

// GetRequestID returns the request ID stored in the Echo context. A
// fresh UUID is minted when none was set, so responses always carry a
// usable correlation ID.
func GetRequestID(c echo.Context) string {
	if id, ok := c.Get(string(KeyRequestID)).(string); ok && id != "" {
		return id
	}

	return uuid.New().String()
}

// SetRequestID stores the request ID in the Echo context.
func SetRequestID(c echo.Context, requestID string) {
	c.Set(string(KeyRequestID), requestID)
}

// WithRequestID attaches the request ID to a standard context.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, KeyRequestID, requestID)
}

// GetRequestIDFromContext returns the request ID from a standard
// context, or "" when none was attached.
func GetRequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(KeyRequestID).(string)

	return id
}
