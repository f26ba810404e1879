package scheduler

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/helpdesk-kit/ticket-bot/internal/config"
	"github.com/helpdesk-kit/ticket-bot/internal/platform"
	"github.com/helpdesk-kit/ticket-bot/internal/repository"
)

// EscalationSweep re-pings support staff for escalated tickets that have
// gone unanswered. An escalation ends when its ticket is claimed or gone.
type EscalationSweep struct {
	escalations repository.EscalationRepository
	tickets     repository.TicketRepository
	guilds      repository.GuildRepository
	messenger   platform.Messenger
	logger      *zap.Logger
	staleAfter  time.Duration
}

// NewEscalationSweep builds the sweep.
func NewEscalationSweep(
	escalations repository.EscalationRepository,
	tickets repository.TicketRepository,
	guilds repository.GuildRepository,
	messenger platform.Messenger,
	logger *zap.Logger,
	cfg config.SchedulerConfig,
) *EscalationSweep {
	return &EscalationSweep{
		escalations: escalations,
		tickets:     tickets,
		guilds:      guilds,
		messenger:   messenger,
		logger:      logger,
		staleAfter:  cfg.EscalationStaleAfter,
	}
}

// Run executes one pass.
func (s *EscalationSweep) Run(ctx context.Context) error {
	active, err := s.escalations.ListActive(ctx)
	if err != nil {
		return err
	}

	cutoff := time.Now().Add(-s.staleAfter)
	for _, esc := range active {
		if esc.LastPingAt.After(cutoff) {
			continue
		}

		ticket, err := s.tickets.GetByID(ctx, esc.TicketID)
		if err != nil {
			// Ticket deleted out from under the escalation; retire it.
			if derr := s.escalations.Deactivate(ctx, esc.TicketID); derr != nil {
				s.logger.Error("escalation deactivate failed", zap.String("ticket_id", esc.TicketID), zap.Error(derr))
			}
			continue
		}
		if ticket.IsClaimed() {
			if derr := s.escalations.Deactivate(ctx, esc.TicketID); derr != nil {
				s.logger.Error("escalation deactivate failed", zap.String("ticket_id", esc.TicketID), zap.Error(derr))
			}
			continue
		}

		s.notifySupport(ctx, ticket.GuildID, fmt.Sprintf(
			"Escalated ticket #%d (<#%d>) still needs attention!", ticket.TicketNumber, ticket.ChannelID))

		if err := s.escalations.UpdatePingTime(ctx, esc.TicketID); err != nil {
			s.logger.Error("escalation ping time update failed", zap.String("ticket_id", esc.TicketID), zap.Error(err))
		}
	}
	return nil
}

func (s *EscalationSweep) notifySupport(ctx context.Context, guildID int64, content string) {
	roles, err := s.guilds.SupportRoles(ctx, guildID)
	if err != nil {
		s.logger.Warn("support roles lookup failed", zap.Int64("guild_id", guildID), zap.Error(err))
		return
	}
	seen := make(map[int64]struct{})
	for _, roleID := range roles {
		members, err := s.messenger.MembersWithRole(ctx, guildID, roleID)
		if err != nil {
			continue
		}
		for _, memberID := range members {
			if _, dup := seen[memberID]; dup {
				continue
			}
			seen[memberID] = struct{}{}
			// DM failures (closed DMs, left guild) are expected noise.
			_ = s.messenger.SendDirect(ctx, memberID, content)
		}
	}
}
