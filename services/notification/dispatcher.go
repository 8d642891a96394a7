package notification

import (
	"context"
	"fmt"

	"parcel-delivery/httpServices/push"
	"parcel-delivery/logger"
	"parcel-delivery/models/user"

	"gorm.io/gorm"
)

// Dispatcher delivers user notifications. Calls are fire-and-forget: the
// booking core launches them in a goroutine and never inspects the result.
type Dispatcher interface {
	Notify(ctx context.Context, userID uint, title, body string, data map[string]interface{})
}

// PushDispatcher resolves the user's device token and hands the message to
// the push provider. Failures are logged and dropped.
type PushDispatcher struct {
	DB     *gorm.DB
	Client *push.PushClient
}

func NewPushDispatcher(db *gorm.DB, client *push.PushClient) *PushDispatcher {
	return &PushDispatcher{
		DB:     db,
		Client: client,
	}
}

func (d *PushDispatcher) Notify(ctx context.Context, userID uint, title, body string, data map[string]interface{}) {
	var u user.User
	if err := d.DB.WithContext(ctx).First(&u, userID).Error; err != nil {
		logger.Error(fmt.Sprintf("Notification skipped, user %d not found", userID), err)
		return
	}

	if u.DeviceToken == nil || *u.DeviceToken == "" {
		logger.Debug(fmt.Sprintf("Notification skipped, user %d has no device token", userID))
		return
	}

	if err := d.Client.Send(ctx, *u.DeviceToken, title, body, data); err != nil {
		logger.Error(fmt.Sprintf("Failed to push notification to user %d", userID), err)
		return
	}

	logger.Info(fmt.Sprintf("Notification pushed to user %d: %s", userID, title))
}
