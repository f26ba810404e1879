package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/helpdesk-kit/ticket-bot/internal/config"
	"github.com/helpdesk-kit/ticket-bot/internal/domain"
	"github.com/helpdesk-kit/ticket-bot/internal/events"
	"github.com/helpdesk-kit/ticket-bot/internal/platform"
	"github.com/helpdesk-kit/ticket-bot/internal/repository"
	"github.com/helpdesk-kit/ticket-bot/pkg/util"
)

// PriorityNotifier is the scheduler surface the ticket workflows need:
// starting a ping task when a priority is set and tearing it down when
// the priority resets or the ticket closes.
type PriorityNotifier interface {
	Start(ctx context.Context, ticket *domain.Ticket, priority domain.TicketPriority) error
	CancelLease(ctx context.Context, ticketID string) error
}

// TicketService coordinates ticket workflows.
type TicketService struct {
	tickets     repository.TicketRepository
	messages    repository.TicketMessageRepository
	guilds      repository.GuildRepository
	escalations repository.EscalationRepository
	blacklist   repository.BlacklistRepository
	notifier    PriorityNotifier
	messenger   platform.Messenger
	transcripts platform.Transcripts
	dispatcher  events.Dispatcher
	logger      *zap.Logger
	cfg         config.SchedulerConfig
}

// TicketDependencies bundles collaborators for the ticket service.
type TicketDependencies struct {
	TicketRepo     repository.TicketRepository
	MessageRepo    repository.TicketMessageRepository
	GuildRepo      repository.GuildRepository
	EscalationRepo repository.EscalationRepository
	BlacklistRepo  repository.BlacklistRepository
	Notifier       PriorityNotifier
	Messenger      platform.Messenger
	Transcripts    platform.Transcripts
	Dispatcher     events.Dispatcher
	Logger         *zap.Logger
	Scheduler      config.SchedulerConfig
}

// NewTicketService creates the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	return &TicketService{
		tickets:     deps.TicketRepo,
		messages:    deps.MessageRepo,
		guilds:      deps.GuildRepo,
		escalations: deps.EscalationRepo,
		blacklist:   deps.BlacklistRepo,
		notifier:    deps.Notifier,
		messenger:   deps.Messenger,
		transcripts: deps.Transcripts,
		dispatcher:  deps.Dispatcher,
		logger:      deps.Logger,
		cfg:         deps.Scheduler,
	}
}

// TicketCreateInput describes ticket creation payload.
type TicketCreateInput struct {
	GuildID          int64
	ChannelID        int64
	OwnerID          int64
	CategoryID       *string
	OpeningMessageID *int64
}

// CreateTicket opens a ticket after blacklist and per-user limit checks.
func (s *TicketService) CreateTicket(ctx context.Context, input TicketCreateInput) (*domain.Ticket, error) {
	blocked, err := s.blacklist.IsBlacklisted(ctx, input.OwnerID, domain.BlacklistTargetUser)
	if err != nil {
		return nil, util.MapError(err)
	}
	if !blocked {
		blocked, err = s.blacklist.IsBlacklisted(ctx, input.GuildID, domain.BlacklistTargetGuild)
		if err != nil {
			return nil, util.MapError(err)
		}
	}
	if blocked {
		return nil, util.NewForbidden("you are blacklisted from opening tickets")
	}

	guild, err := s.guilds.GetOrCreate(ctx, input.GuildID)
	if err != nil {
		return nil, util.MapError(err)
	}

	open, err := s.tickets.CountOpenByOwner(ctx, input.GuildID, input.OwnerID)
	if err != nil {
		return nil, util.MapError(err)
	}
	if open >= guild.TicketLimit() {
		return nil, util.NewConflict("open ticket limit reached", map[string]any{
			"limit": guild.TicketLimit(),
			"open":  open,
		})
	}

	ticket := &domain.Ticket{
		GuildID:          input.GuildID,
		ChannelID:        input.ChannelID,
		OwnerID:          input.OwnerID,
		CategoryID:       input.CategoryID,
		OpeningMessageID: input.OpeningMessageID,
	}
	if err := s.tickets.Create(ctx, ticket); err != nil {
		return nil, util.MapError(err)
	}

	if guild.DMOnCreate != nil && *guild.DMOnCreate {
		_ = s.messenger.SendDirect(ctx, ticket.OwnerID,
			fmt.Sprintf("Your ticket #%d has been created.", ticket.TicketNumber))
	}

	s.publish(ctx, events.EventTicketCreated, ticket.ID, ticket.GuildID, ticket.OwnerID, events.TicketCreatedPayload{
		TicketNumber: ticket.TicketNumber,
		OwnerID:      ticket.OwnerID,
		ChannelID:    ticket.ChannelID,
	})
	return ticket, nil
}

// GetByID fetches a ticket.
func (s *TicketService) GetByID(ctx context.Context, id string) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, id)
	if err != nil {
		return nil, util.MapError(err)
	}
	return ticket, nil
}

// GetByChannel resolves the ticket bound to a channel.
func (s *TicketService) GetByChannel(ctx context.Context, channelID int64) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByChannel(ctx, channelID)
	if err != nil {
		return nil, util.MapError(err)
	}
	return ticket, nil
}

// ListOpen returns every open ticket.
func (s *TicketService) ListOpen(ctx context.Context) ([]domain.Ticket, error) {
	tickets, err := s.tickets.ListOpen(ctx)
	if err != nil {
		return nil, util.MapError(err)
	}
	return tickets, nil
}

// Claim marks the ticket as handled by a support member. Claiming ends
// any active escalation but deliberately leaves the priority ping task
// running: a claimed high-priority ticket still deserves pings.
func (s *TicketService) Claim(ctx context.Context, ticketID string, claimerID int64, memberRoles []int64) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return nil, util.MapError(err)
	}

	isSupport, err := s.hasSupportRole(ctx, ticket.GuildID, memberRoles)
	if err != nil {
		return nil, util.MapError(err)
	}
	if !isSupport {
		return nil, util.NewForbidden("only support staff can claim tickets")
	}
	if ticket.IsClaimed() {
		return nil, util.NewConflict("ticket is already claimed", map[string]any{
			"claimed_by": *ticket.ClaimedBy,
		})
	}

	if err := s.tickets.Claim(ctx, ticket.ID, claimerID); err != nil {
		return nil, util.MapError(err)
	}
	if err := s.escalations.Deactivate(ctx, ticket.ID); err != nil {
		s.logger.Warn("escalation deactivate on claim failed", zap.String("ticket_id", ticket.ID), zap.Error(err))
	}

	ticket.ClaimedBy = &claimerID
	s.publish(ctx, events.EventTicketClaimed, ticket.ID, ticket.GuildID, claimerID, events.TicketClaimedPayload{
		ClaimedBy: claimerID,
	})
	return ticket, nil
}

// Unclaim releases a claimed ticket.
func (s *TicketService) Unclaim(ctx context.Context, ticketID string, actorID int64) error {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return util.MapError(err)
	}
	if !ticket.IsClaimed() {
		return util.NewConflict("ticket is not claimed", nil)
	}
	if err := s.tickets.Unclaim(ctx, ticket.ID); err != nil {
		return util.MapError(err)
	}
	s.publish(ctx, events.EventTicketUnclaimed, ticket.ID, ticket.GuildID, actorID, nil)
	return nil
}

// Assign hands a ticket to a specific support member.
func (s *TicketService) Assign(ctx context.Context, ticketID string, assigneeID int64, actorID int64) error {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return util.MapError(err)
	}
	if err := s.tickets.Assign(ctx, ticket.ID, &assigneeID); err != nil {
		return util.MapError(err)
	}
	_ = s.messenger.SendDirect(ctx, assigneeID,
		fmt.Sprintf("You have been assigned ticket #%d.", ticket.TicketNumber))
	s.publish(ctx, events.EventTicketAssigned, ticket.ID, ticket.GuildID, actorID, events.TicketAssignedPayload{
		AssigneeID: assigneeID,
	})
	return nil
}

// SetPriority updates the ticket's priority label and swaps its ping
// task accordingly. "reset" and "normal" clear the lease and stop the
// pings; low, high and urgent (re)start the task.
func (s *TicketService) SetPriority(ctx context.Context, ticketID string, label string, actorID int64) error {
	priority, ok := domain.ParsePriority(label)
	if !ok {
		return util.NewValidationError("unknown priority", map[string]any{"priority": label})
	}

	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return util.MapError(err)
	}
	oldPriority := ticket.Priority

	if err := s.tickets.SetPriority(ctx, ticket.ID, priority); err != nil {
		return util.MapError(err)
	}

	if priority == domain.TicketPriorityNormal {
		if err := s.notifier.CancelLease(ctx, ticket.ID); err != nil {
			return util.MapError(err)
		}
	} else {
		if err := s.notifier.Start(ctx, ticket, priority); err != nil {
			return util.MapError(err)
		}
	}

	s.publish(ctx, events.EventTicketPriorityChanged, ticket.ID, ticket.GuildID, actorID, events.TicketPriorityChangedPayload{
		OldPriority: oldPriority,
		NewPriority: priority,
	})
	return nil
}

// Escalate flags an unanswered ticket for direct staff attention. A
// ticket that already has a conversation is past the point of
// escalation; so is a claimed one.
func (s *TicketService) Escalate(ctx context.Context, ticketID string, requestedBy int64) error {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return util.MapError(err)
	}
	if ticket.IsClaimed() {
		return util.NewConflict("ticket is already claimed", nil)
	}
	if ticket.HasMessages {
		return util.NewConflict("ticket already has responses", nil)
	}

	if err := s.escalations.Create(ctx, ticket.ID, requestedBy); err != nil {
		return util.MapError(err)
	}

	notified := s.dmSupport(ctx, ticket.GuildID, fmt.Sprintf(
		"Ticket #%d (<#%d>) has been escalated and needs attention!", ticket.TicketNumber, ticket.ChannelID))
	_ = s.messenger.SendToChannel(ctx, ticket.ChannelID, "This ticket has been escalated to the support team.")

	s.publish(ctx, events.EventTicketEscalated, ticket.ID, ticket.GuildID, requestedBy, events.TicketEscalatedPayload{
		RequestedBy: requestedBy,
		NotifiedN:   notified,
	})
	return nil
}

// Close runs the user-initiated close: transcript to the owner, history
// purge, lease teardown, audit log, row delete and channel removal
// after a grace delay.
func (s *TicketService) Close(ctx context.Context, ticketID string, closedBy int64, reason string) error {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return util.MapError(err)
	}
	return s.close(ctx, ticket, closeOptions{
		closedBy:     closedBy,
		reason:       reason,
		dmTranscript: true,
		grace:        s.cfg.CloseGraceDelay,
		eventType:    events.EventTicketClosed,
	})
}

// AutoClose closes a ticket on the inactivity path. No transcript is
// sent; the owner abandoned the conversation.
func (s *TicketService) AutoClose(ctx context.Context, ticket *domain.Ticket) error {
	_ = s.messenger.SendToChannel(ctx, ticket.ChannelID, "This ticket has been closed due to inactivity.")
	return s.close(ctx, ticket, closeOptions{
		reason:       "inactivity",
		dmTranscript: false,
		grace:        s.cfg.AutoCloseChannelDelay,
		eventType:    events.EventTicketAutoClosed,
	})
}

type closeOptions struct {
	closedBy     int64
	reason       string
	dmTranscript bool
	grace        time.Duration
	eventType    events.EventType
}

// close is the shared teardown. Ordering matters: the transcript must
// render before the message purge, and the row delete must precede the
// channel delete so a crash never leaves a closed row pointing at a
// live channel.
func (s *TicketService) close(ctx context.Context, ticket *domain.Ticket, opts closeOptions) error {
	transcriptSent := false
	if opts.dmTranscript {
		transcriptSent = s.sendTranscript(ctx, ticket)
	}

	if err := s.messages.DeleteByTicket(ctx, ticket.ID); err != nil {
		return util.MapError(err)
	}
	if err := s.notifier.CancelLease(ctx, ticket.ID); err != nil {
		s.logger.Warn("lease teardown on close failed", zap.String("ticket_id", ticket.ID), zap.Error(err))
	}
	if err := s.escalations.Deactivate(ctx, ticket.ID); err != nil {
		s.logger.Warn("escalation deactivate on close failed", zap.String("ticket_id", ticket.ID), zap.Error(err))
	}

	s.logClose(ctx, ticket, opts)

	if err := s.tickets.Delete(ctx, ticket.ID); err != nil {
		return util.MapError(err)
	}

	if opts.grace > 0 {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(opts.grace):
		}
	}
	if err := s.messenger.DeleteChannel(ctx, ticket.ChannelID); err != nil {
		s.logger.Warn("channel delete on close failed",
			zap.String("ticket_id", ticket.ID),
			zap.Int64("channel_id", ticket.ChannelID),
			zap.Error(err))
	}

	s.publish(ctx, opts.eventType, ticket.ID, ticket.GuildID, opts.closedBy, events.TicketClosedPayload{
		ClosedBy:       opts.closedBy,
		TranscriptSent: transcriptSent,
	})
	return nil
}

func (s *TicketService) sendTranscript(ctx context.Context, ticket *domain.Ticket) bool {
	history, err := s.messages.ListByTicket(ctx, ticket.ID)
	if err != nil {
		s.logger.Warn("transcript history fetch failed", zap.String("ticket_id", ticket.ID), zap.Error(err))
		return false
	}
	rendered, err := s.transcripts.Render(ctx, ticket, history)
	if err != nil || rendered == "" {
		return false
	}
	if err := s.messenger.SendDirect(ctx, ticket.OwnerID,
		fmt.Sprintf("Transcript for ticket #%d: %s", ticket.TicketNumber, rendered)); err != nil {
		return false
	}
	return true
}

func (s *TicketService) logClose(ctx context.Context, ticket *domain.Ticket, opts closeOptions) {
	guild, err := s.guilds.GetOrCreate(ctx, ticket.GuildID)
	if err != nil || guild.LogChannelID == nil {
		return
	}
	msg := fmt.Sprintf("Ticket #%d closed", ticket.TicketNumber)
	if opts.reason != "" {
		msg = fmt.Sprintf("%s (%s)", msg, opts.reason)
	}
	_ = s.messenger.SendToChannel(ctx, *guild.LogChannelID, msg)
}

// AddMessage archives a channel message into the ticket history and
// refreshes the activity clock.
func (s *TicketService) AddMessage(ctx context.Context, msg *domain.TicketMessage) error {
	if err := s.messages.Create(ctx, msg); err != nil {
		return util.MapError(err)
	}
	if err := s.tickets.MarkHasMessages(ctx, msg.TicketID); err != nil {
		return util.MapError(err)
	}
	if err := s.tickets.TouchActivity(ctx, msg.TicketID); err != nil {
		return util.MapError(err)
	}
	return nil
}

// TouchActivity records non-message activity in the ticket channel.
func (s *TicketService) TouchActivity(ctx context.Context, ticketID string) error {
	return util.MapError(s.tickets.TouchActivity(ctx, ticketID))
}

// Blacklist blocks a user or guild from opening tickets.
func (s *TicketService) Blacklist(ctx context.Context, targetID int64, targetType domain.BlacklistTargetType, reason *string, actorID int64) error {
	return util.MapError(s.blacklist.Add(ctx, targetID, targetType, reason, actorID))
}

// Unblacklist removes a blacklist entry.
func (s *TicketService) Unblacklist(ctx context.Context, targetID int64) error {
	return util.MapError(s.blacklist.Remove(ctx, targetID))
}

// Stats summarizes the live workload.
type Stats struct {
	OpenTickets       int `json:"open_tickets"`
	ActiveEscalations int `json:"active_escalations"`
}

// GetStats returns current workload counters.
func (s *TicketService) GetStats(ctx context.Context) (*Stats, error) {
	open, err := s.tickets.CountOpen(ctx)
	if err != nil {
		return nil, util.MapError(err)
	}
	active, err := s.escalations.ListActive(ctx)
	if err != nil {
		return nil, util.MapError(err)
	}
	return &Stats{OpenTickets: open, ActiveEscalations: len(active)}, nil
}

func (s *TicketService) hasSupportRole(ctx context.Context, guildID int64, memberRoles []int64) (bool, error) {
	roles, err := s.guilds.SupportRoles(ctx, guildID)
	if err != nil {
		return false, err
	}
	set := make(map[int64]struct{}, len(roles))
	for _, r := range roles {
		set[r] = struct{}{}
	}
	for _, r := range memberRoles {
		if _, ok := set[r]; ok {
			return true, nil
		}
	}
	return false, nil
}

func (s *TicketService) dmSupport(ctx context.Context, guildID int64, content string) int {
	roles, err := s.guilds.SupportRoles(ctx, guildID)
	if err != nil {
		return 0
	}
	notified := 0
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
			if err := s.messenger.SendDirect(ctx, memberID, content); err == nil {
				notified++
			}
		}
	}
	return notified
}

func (s *TicketService) publish(ctx context.Context, eventType events.EventType, ticketID string, guildID, actorID int64, payload any) {
	if s.dispatcher == nil {
		return
	}
	_ = s.dispatcher.Publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		TicketID:  ticketID,
		GuildID:   guildID,
		ActorID:   actorID,
		Timestamp: time.Now().UTC(),
		Payload:   payload,
	})
}
