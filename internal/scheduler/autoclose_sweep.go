package scheduler

import (
	"context"

	"go.uber.org/zap"

	"github.com/helpdesk-kit/ticket-bot/internal/domain"
	"github.com/helpdesk-kit/ticket-bot/internal/repository"
)

// InactiveCloser closes a ticket on the inactivity path. Implemented by
// the ticket service; the sweep only decides which tickets qualify.
type InactiveCloser interface {
	AutoClose(ctx context.Context, ticket *domain.Ticket) error
}

// AutoCloseSweep closes tickets whose guild enables auto-close and whose
// last activity exceeds the guild threshold.
type AutoCloseSweep struct {
	tickets repository.TicketRepository
	closer  InactiveCloser
	logger  *zap.Logger
}

// NewAutoCloseSweep builds the sweep.
func NewAutoCloseSweep(tickets repository.TicketRepository, closer InactiveCloser, logger *zap.Logger) *AutoCloseSweep {
	return &AutoCloseSweep{tickets: tickets, closer: closer, logger: logger}
}

// Run executes one pass. Each ticket is closed independently so one
// failure does not block the rest.
func (s *AutoCloseSweep) Run(ctx context.Context) error {
	inactive, err := s.tickets.ListInactive(ctx)
	if err != nil {
		return err
	}
	for i := range inactive {
		ticket := &inactive[i]
		if err := s.closer.AutoClose(ctx, ticket); err != nil {
			s.logger.Error("auto-close failed",
				zap.String("ticket_id", ticket.ID),
				zap.Int64("channel_id", ticket.ChannelID),
				zap.Error(err))
		}
	}
	return nil
}
