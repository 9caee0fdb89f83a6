package notification

import (
	"context"

	"meetpoint/utils"

	"go.uber.org/zap"
)

// NotificationService is the outbound-delivery boundary. Actual transports
// (push, mail) live in a separate system; this service only defines the
// hand-off.
type NotificationService interface {
	SendUserNotification(ctx context.Context, userID, title, body string, data map[string]string) error
}

// LogNotificationService is the default implementation: it records the
// hand-off so deliveries are observable without a transport wired in.
type LogNotificationService struct{}

func (LogNotificationService) SendUserNotification(ctx context.Context, userID, title, body string, data map[string]string) error {
	utils.GetLogger().Info("notification hand-off",
		zap.String("userID", userID),
		zap.String("title", title),
		zap.String("body", body),
		zap.Any("data", data))
	return nil
}
