package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/spec-kit/ticketapp/internal/events"
)

// NotificationService logs domain events as structured audit lines.
type NotificationService struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// NewNotificationService creates the service.
func NewNotificationService(dispatcher events.Dispatcher, logger *zap.Logger) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationService{
		dispatcher: dispatcher,
		logger:     logger,
	}
}

// RegisterHandlers subscribes to events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventUserSignedUp, n.handleAccount)
	n.dispatcher.Subscribe(events.EventUserLoggedIn, n.handleAccount)
	n.dispatcher.Subscribe(events.EventUserLoggedOut, n.handleAccount)
	n.dispatcher.Subscribe(events.EventLoginFailed, n.handleLoginFailed)
	n.dispatcher.Subscribe(events.EventTicketCreated, n.handleTicket)
	n.dispatcher.Subscribe(events.EventTicketUpdated, n.handleTicket)
	n.dispatcher.Subscribe(events.EventTicketDeleted, n.handleTicket)
	n.dispatcher.Subscribe(events.EventStoreConflict, n.handleStoreConflict)
}

func (n *NotificationService) handleAccount(ctx context.Context, event events.Event) error {
	n.logger.Info(string(event.Type),
		zap.String("profile_id", event.ProfileID),
		zap.String("user_id", event.UserID))
	return nil
}

func (n *NotificationService) handleLoginFailed(ctx context.Context, event events.Event) error {
	n.logger.Warn(string(event.Type), zap.String("profile_id", event.ProfileID))
	return nil
}

func (n *NotificationService) handleTicket(ctx context.Context, event events.Event) error {
	n.logger.Info(string(event.Type),
		zap.String("profile_id", event.ProfileID),
		zap.String("ticket_id", event.TicketID),
		zap.Any("payload", event.Payload))
	return nil
}

func (n *NotificationService) handleStoreConflict(ctx context.Context, event events.Event) error {
	n.logger.Warn(string(event.Type),
		zap.String("profile_id", event.ProfileID),
		zap.Any("payload", event.Payload))
	return nil
}
