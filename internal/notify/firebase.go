package notify

import (
	"context"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"github.com/pkg/errors"
	"google.golang.org/api/option"

	"repairhub/internal/models"
)

// FirebasePusher delivers pushes through Firebase Cloud Messaging. The
// destination is the device registration token stored on the user.
type FirebasePusher struct {
	client *messaging.Client
}

func NewFirebasePusher(ctx context.Context, credentialsPath string) (*FirebasePusher, error) {
	app, err := firebase.NewApp(ctx, nil, option.WithCredentialsFile(credentialsPath))
	if err != nil {
		return nil, errors.Wrap(err, "initialize firebase app")
	}
	client, err := app.Messaging(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "firebase messaging client")
	}
	return &FirebasePusher{client: client}, nil
}

func (p *FirebasePusher) Send(ctx context.Context, msg models.PushMessage) error {
	_, err := p.client.Send(ctx, &messaging.Message{
		Token: msg.To,
		Notification: &messaging.Notification{
			Title: msg.Title,
			Body:  msg.Body,
		},
	})
	if err != nil {
		return errors.Wrap(err, "firebase send")
	}
	return nil
}
