package notification

import (
	"context"
	"fmt"
	"strings"

	"echotrail/internal/domain/entity"
	"echotrail/internal/domain/service"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"google.golang.org/api/option"
)

const multicastTokenLimit = 500

type firebaseGateway struct {
	client *messaging.Client
}

// NewFirebaseGateway creates a push gateway backed by Firebase Cloud Messaging
func NewFirebaseGateway(ctx context.Context, credentialsPath string) (service.NotificationGateway, error) {
	opt := option.WithCredentialsFile(credentialsPath)
	app, err := firebase.NewApp(ctx, nil, opt)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Firebase app: %w", err)
	}

	client, err := app.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get messaging client: %w", err)
	}

	return &firebaseGateway{
		client: client,
	}, nil
}

// SendProximityNotification sends one summarizing notification for the trigger
// batch to every given token (max 500 tokens per request)
func (s *firebaseGateway) SendProximityNotification(ctx context.Context, tokens []string, events []*entity.TriggerEvent) (successCount, failureCount int, invalidTokens []string, err error) {
	if len(tokens) == 0 || len(events) == 0 {
		return 0, 0, nil, nil
	}

	if len(tokens) > multicastTokenLimit {
		return 0, 0, nil, fmt.Errorf("token count exceeds limit: %d (max %d)", len(tokens), multicastTokenLimit)
	}

	title, body := ProximityContent(events)

	message := &messaging.MulticastMessage{
		Tokens: tokens,
		Notification: &messaging.Notification{
			Title: title,
			Body:  body,
		},
		Data: ProximityPayload(events),
	}

	response, err := s.client.SendEachForMulticast(ctx, message)
	if err != nil {
		return 0, 0, nil, fmt.Errorf("failed to send multicast notification: %w", err)
	}

	successCount = response.SuccessCount
	failureCount = response.FailureCount

	// Collect invalid tokens
	invalidTokens = make([]string, 0)
	for idx, sendResponse := range response.Responses {
		if sendResponse.Error != nil {
			// Check if error is due to invalid or unregistered token
			if messaging.IsInvalidArgument(sendResponse.Error) ||
				messaging.IsUnregistered(sendResponse.Error) {
				invalidTokens = append(invalidTokens, tokens[idx])
			}
		}
	}

	return successCount, failureCount, invalidTokens, nil
}

// ProximityContent builds the visible notification text. A single trigger
// surfaces the note's title, a batch collapses into a count.
func ProximityContent(events []*entity.TriggerEvent) (title, body string) {
	if len(events) == 1 {
		return "You've discovered a note!", fmt.Sprintf("%q is nearby", events[0].Title)
	}

	return fmt.Sprintf("You've discovered %d notes!", len(events)), "Open the app to listen to them"
}

// ProximityPayload builds the data payload carried alongside the visible
// notification so a tap can route straight to the triggered notes.
func ProximityPayload(events []*entity.TriggerEvent) map[string]string {
	ids := make([]string, 0, len(events))
	for _, event := range events {
		ids = append(ids, event.NoteID)
	}

	return map[string]string{
		"type":     service.ProximityPayloadType,
		"note_ids": strings.Join(ids, ","),
		"count":    fmt.Sprintf("%d", len(events)),
	}
}
