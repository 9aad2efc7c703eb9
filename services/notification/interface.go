package notification

import (
	"context"
	"fmt"

	"hestia/models"
	"hestia/services/tasks"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// NotificationService enqueues internal staff alerts. Delivery (FCM push,
// WhatsApp message to the ops number) happens in the async worker so the
// guest-facing reply path never waits on it.
type NotificationService interface {
	NotifyInternal(ctx context.Context, event string, payload models.NotifyPayload)
}

// DefaultNotificationService is the production implementation.
type DefaultNotificationService struct {
	Client *asynq.Client
	Logger *zap.Logger
}

func NewDefaultNotificationService(client *asynq.Client, logger *zap.Logger) (*DefaultNotificationService, error) {
	if client == nil {
		return nil, fmt.Errorf("notification service initialization error: asynq client is nil")
	}
	return &DefaultNotificationService{Client: client, Logger: logger}, nil
}

// NotifyInternal enqueues the event for the notify worker. Enqueue failures
// are logged and swallowed: an alert must never break a guest conversation.
func (s *DefaultNotificationService) NotifyInternal(ctx context.Context, event string, payload models.NotifyPayload) {
	payload.Event = event

	task, opts, err := tasks.NewInternalNotifyTask(payload)
	if err != nil {
		s.warn("failed to build notify task", event, err)
		return
	}

	if _, err := s.Client.EnqueueContext(ctx, task, opts...); err != nil {
		s.warn("failed to enqueue notify task", event, err)
		return
	}

	if s.Logger != nil {
		s.Logger.Debug("internal notification enqueued",
			zap.String("event", event),
			zap.String("waId", payload.WaID))
	}
}

func (s *DefaultNotificationService) warn(msg, event string, err error) {
	if s.Logger != nil {
		s.Logger.Warn(msg, zap.String("event", event), zap.Error(err))
	}
}
