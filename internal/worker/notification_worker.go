package worker

import (
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-service/internal/service"
)

// StartNotificationWorker wires the notification service into the
// event stream. Handlers run inline on publish; the worker exists so
// startup logs show exactly which events have a consumer.
func StartNotificationWorker(notificationService *service.NotificationService, logger *zap.Logger) {
	if notificationService == nil {
		return
	}
	registered := notificationService.RegisterHandlers()
	for _, eventType := range registered {
		logger.Debug("notification handler registered", zap.String("event", string(eventType)))
	}
	logger.Info("notification worker started", zap.Int("handlers", len(registered)))
}
