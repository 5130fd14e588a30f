package service

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-service/internal/config"
	"github.com/spec-kit/helpdesk-service/internal/events"
)

// NotificationService handles emitting notifications for domain events.
// Raw reset and verification tokens arrive inside event payloads and
// must only ever appear in the rendered link, never in log output.
type NotificationService struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
	cfg        config.NotificationConfig
}

// NewNotificationService creates the service.
func NewNotificationService(dispatcher events.Dispatcher, logger *zap.Logger, cfg config.NotificationConfig) *NotificationService {
	return &NotificationService{
		dispatcher: dispatcher,
		logger:     logger,
		cfg:        cfg,
	}
}

// RegisterHandlers subscribes to events and returns the event types it
// registered for.
func (n *NotificationService) RegisterHandlers() []events.EventType {
	if n.dispatcher == nil {
		return nil
	}
	subscriptions := []struct {
		eventType events.EventType
		handler   events.EventHandler
	}{
		{events.EventTicketCreated, n.handleTicketCreated},
		{events.EventTicketStatusChanged, n.handleTicketStatusChanged},
		{events.EventTicketAssigned, n.handleTicketAssigned},
		{events.EventTicketCommentAdded, n.handleTicketCommentAdded},
		{events.EventUserRegistered, n.handleUserRegistered},
		{events.EventPasswordResetAsked, n.handlePasswordResetAsked},
	}

	registered := make([]events.EventType, 0, len(subscriptions))
	for _, sub := range subscriptions {
		n.dispatcher.Subscribe(sub.eventType, sub.handler)
		registered = append(registered, sub.eventType)
	}
	return registered
}

func (n *NotificationService) handleTicketCreated(ctx context.Context, event events.Event) error {
	n.logger.Info("TicketCreated", zap.String("ticket_id", event.TicketID), zap.Any("payload", event.Payload))
	n.sendEmailNotificationStub(ctx, event)
	n.sendWebhookNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) handleTicketStatusChanged(ctx context.Context, event events.Event) error {
	n.logger.Info("TicketStatusChanged", zap.String("ticket_id", event.TicketID), zap.Any("payload", event.Payload))
	n.sendWebhookNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) handleTicketAssigned(ctx context.Context, event events.Event) error {
	n.logger.Info("TicketAssigned", zap.String("ticket_id", event.TicketID), zap.Any("payload", event.Payload))
	n.sendWebhookNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) handleTicketCommentAdded(ctx context.Context, event events.Event) error {
	n.logger.Info("TicketCommentAdded", zap.String("ticket_id", event.TicketID), zap.Any("payload", event.Payload))
	n.sendEmailNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) handleUserRegistered(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.UserRegisteredPayload)
	if !ok {
		return nil
	}
	// Payload logging stays safe here: the token field is json-omitted.
	n.logger.Info("UserRegistered", zap.String("email", payload.Email))
	link := fmt.Sprintf("%s/verify-email?token=%s", strings.TrimRight(n.cfg.BaseURL, "/"), payload.VerifyToken)
	n.sendAccountEmailStub(ctx, payload.Email, "verify your helpdesk account", link)
	return nil
}

func (n *NotificationService) handlePasswordResetAsked(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.PasswordResetPayload)
	if !ok {
		return nil
	}
	n.logger.Info("PasswordResetRequested", zap.String("email", payload.Email))
	link := fmt.Sprintf("%s/reset-password?token=%s", strings.TrimRight(n.cfg.BaseURL, "/"), payload.ResetToken)
	n.sendAccountEmailStub(ctx, payload.Email, "reset your helpdesk password", link)
	return nil
}

func (n *NotificationService) sendEmailNotificationStub(ctx context.Context, event events.Event) {
	if strings.TrimSpace(n.cfg.EmailFrom) == "" {
		return
	}
	n.logger.Debug("sendEmailNotificationStub",
		zap.String("from", n.cfg.EmailFrom),
		zap.String("ticket_id", event.TicketID),
		zap.String("event_type", string(event.Type)))
}

func (n *NotificationService) sendAccountEmailStub(ctx context.Context, to, subject, link string) {
	if strings.TrimSpace(n.cfg.EmailFrom) == "" {
		return
	}
	// The link carries the raw token; log the recipient and subject only.
	_ = link
	n.logger.Debug("sendAccountEmailStub",
		zap.String("from", n.cfg.EmailFrom),
		zap.String("to", to),
		zap.String("subject", subject))
}

func (n *NotificationService) sendWebhookNotificationStub(ctx context.Context, event events.Event) {
	if strings.TrimSpace(n.cfg.WebhookURL) == "" {
		return
	}
	n.logger.Debug("sendWebhookNotificationStub",
		zap.String("url", n.cfg.WebhookURL),
		zap.String("ticket_id", event.TicketID),
		zap.String("event_type", string(event.Type)))
}
