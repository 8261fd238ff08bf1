package notification

import (
	"context"
	"fmt"

	"jamb/utils"

	"firebase.google.com/go/v4/messaging"
	"go.uber.org/zap"
)

// SendUserPushNotification looks up a user's FCM token and sends a push. Users without a
// registered device, and deployments without FCM, are skipped silently.
func (s *DefaultNotificationService) SendUserPushNotification(
	ctx context.Context,
	userID, title, body string,
	data map[string]string,
) error {
	if s.Sender == nil {
		return nil
	}
	u, err := s.Users.GetByID(userID)
	if err != nil {
		return fmt.Errorf("SendUserPushNotification: could not find user %s: %w", userID, err)
	}
	if u.FCMToken == "" {
		utils.GetLogger().Debug("Skipping push, user has no device", zap.String("userID", userID))
		return nil
	}

	msg := &messaging.Message{
		Token: u.FCMToken,
		Notification: &messaging.Notification{
			Title: title,
			Body:  body,
		},
		Data: data,
		Android: &messaging.AndroidConfig{
			Priority: "high",
			Notification: &messaging.AndroidNotification{
				ChannelID: "orders",
				Sound:     "default",
			},
		},
		APNS: &messaging.APNSConfig{
			Headers: map[string]string{"apns-priority": "10"},
			Payload: &messaging.APNSPayload{Aps: &messaging.Aps{Sound: "default"}},
		},
	}

	id, err := s.Sender.Send(ctx, msg)
	if err != nil {
		return fmt.Errorf("SendUserPushNotification: failed to send FCM message: %w", err)
	}
	utils.GetLogger().Info("Push notification sent", zap.String("userID", userID), zap.String("messageID", id))
	return nil
}
