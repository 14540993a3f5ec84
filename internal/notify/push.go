package notify

import (
	"context"
	"fmt"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"google.golang.org/api/option"

	"github.com/mmynk/todosponen/internal/models"
)

// ProfileLookup resolves a user's contact details.
type ProfileLookup interface {
	Profile(ctx context.Context, userID string) (models.Profile, error)
}

// Sender is the part of *messaging.Client the push notifier uses.
type Sender interface {
	Send(ctx context.Context, message *messaging.Message) (string, error)
}

// Push sends events as Firebase Cloud Messaging notifications to the user's
// registered device token.
type Push struct {
	client   Sender
	profiles ProfileLookup
}

// NewPush creates a push notifier from a Firebase service account file.
func NewPush(ctx context.Context, credentialsFile string, profiles ProfileLookup) (*Push, error) {
	app, err := firebase.NewApp(ctx, nil, option.WithCredentialsFile(credentialsFile))
	if err != nil {
		return nil, fmt.Errorf("failed to init firebase app: %w", err)
	}
	client, err := app.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get messaging client: %w", err)
	}
	return NewPushWithSender(client, profiles), nil
}

// NewPushWithSender creates a push notifier around an existing sender.
func NewPushWithSender(client Sender, profiles ProfileLookup) *Push {
	return &Push{client: client, profiles: profiles}
}

// Notify implements Notifier. Users without a device token are skipped.
func (p *Push) Notify(ctx context.Context, event Event) error {
	profile, err := p.profiles.Profile(ctx, event.UserID)
	if err != nil {
		return fmt.Errorf("failed to look up push token: %w", err)
	}
	if profile.PushToken == "" {
		return nil
	}

	data := make(map[string]string, len(event.Data)+1)
	for k, v := range event.Data {
		data[k] = v
	}
	data["type"] = string(event.Kind)

	msg := &messaging.Message{
		Notification: &messaging.Notification{
			Title: event.Title(),
			Body:  event.Body(),
		},
		Data:  data,
		Token: profile.PushToken,
		Android: &messaging.AndroidConfig{
			Priority: "high",
			Notification: &messaging.AndroidNotification{
				Sound: "default",
			},
		},
		APNS: &messaging.APNSConfig{
			Payload: &messaging.APNSPayload{
				Aps: &messaging.Aps{
					Sound: "default",
				},
			},
		},
	}
	if _, err := p.client.Send(ctx, msg); err != nil {
		return fmt.Errorf("failed to send push: %w", err)
	}
	return nil
}
