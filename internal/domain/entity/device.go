package entity

import "time"

// UserDevice represents a device registered for proximity push alerts.
type UserDevice struct {
	DeviceID     string    `json:"device_id"`     // Unique device identifier from the client.
	FCMToken     string    `json:"fcm_token"`     // Firebase Cloud Messaging token.
	Platform     string    `json:"platform"`      // Device platform (ios, android).
	RegisteredAt time.Time `json:"registered_at"` // Timestamp of registration or last token refresh.
}
