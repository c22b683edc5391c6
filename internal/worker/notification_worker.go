package worker

import (
	"github.com/spec-kit/ticketapp/internal/events"
	"github.com/spec-kit/ticketapp/internal/observability"
	"github.com/spec-kit/ticketapp/internal/service"
)

// StartNotificationWorker registers the audit log handlers and, when metrics
// are enabled, counts every event.
func StartNotificationWorker(dispatcher events.Dispatcher, notificationService *service.NotificationService, metrics *observability.Metrics) {
	if notificationService != nil {
		notificationService.RegisterHandlers()
	}
	if dispatcher == nil || metrics == nil {
		return
	}
	dispatcher.SubscribeAll(metrics.RecordEvent)
}
