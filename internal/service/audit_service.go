package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/helpdesk-kit/ticket-bot/internal/events"
)

// AuditService records every lifecycle event to the structured log.
type AuditService struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// NewAuditService creates the service.
func NewAuditService(dispatcher events.Dispatcher, logger *zap.Logger) *AuditService {
	return &AuditService{dispatcher: dispatcher, logger: logger}
}

// RegisterHandlers subscribes to events.
func (a *AuditService) RegisterHandlers() {
	if a.dispatcher == nil {
		return
	}
	for _, eventType := range []events.EventType{
		events.EventTicketCreated,
		events.EventTicketClaimed,
		events.EventTicketUnclaimed,
		events.EventTicketAssigned,
		events.EventTicketPriorityChanged,
		events.EventTicketEscalated,
		events.EventTicketClosed,
		events.EventTicketAutoClosed,
		events.EventReminderScheduled,
	} {
		a.dispatcher.Subscribe(eventType, a.handle)
	}
}

func (a *AuditService) handle(ctx context.Context, event events.Event) error {
	a.logger.Info("ticket event",
		zap.String("event_type", string(event.Type)),
		zap.String("ticket_id", event.TicketID),
		zap.Int64("guild_id", event.GuildID),
		zap.Int64("actor_id", event.ActorID),
		zap.Any("payload", event.Payload))
	return nil
}
