package notification

import (
	"context"
	"fmt"

	"clinicore/models"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"go.uber.org/zap"
	"google.golang.org/api/option"
)

// Notifier publishes platform events to the operations team.
type Notifier interface {
	ClinicOnboarded(ctx context.Context, clinic *models.Clinic) error
}

// FCMNotifier implements Notifier over Firebase Cloud Messaging topics.
type FCMNotifier struct {
	client *messaging.Client
	topic  string
	logger *zap.Logger
}

// NewFCMNotifier initializes the Firebase app and messaging client.
func NewFCMNotifier(credentialsPath, topic string, logger *zap.Logger) (*FCMNotifier, error) {
	ctx := context.Background()
	opt := option.WithCredentialsFile(credentialsPath)

	app, err := firebase.NewApp(ctx, nil, opt)
	if err != nil {
		return nil, fmt.Errorf("notification: error initializing firebase app: %w", err)
	}
	client, err := app.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("notification: error getting messaging client: %w", err)
	}

	return &FCMNotifier{client: client, topic: topic, logger: logger}, nil
}

// ClinicOnboarded publishes the completed-onboarding event to the ops topic.
func (n *FCMNotifier) ClinicOnboarded(ctx context.Context, clinic *models.Clinic) error {
	msg := &messaging.Message{
		Topic: n.topic,
		Notification: &messaging.Notification{
			Title: "New clinic onboarded",
			Body:  fmt.Sprintf("%s (%s) completed onboarding and is pending review", clinic.Name, clinic.ClinicType),
		},
		Data: map[string]string{
			"clinicId": clinic.ID,
			"status":   clinic.Status,
		},
	}

	id, err := n.client.Send(ctx, msg)
	if err != nil {
		return fmt.Errorf("notification: failed to publish onboarding event: %w", err)
	}
	n.logger.Debug("published onboarding event", zap.String("messageID", id))
	return nil
}
