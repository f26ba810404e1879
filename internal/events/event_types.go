package events

import (
	"time"

	"github.com/helpdesk-kit/ticket-bot/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTicketCreated         EventType = "ticket_created"
	EventTicketClaimed         EventType = "ticket_claimed"
	EventTicketUnclaimed       EventType = "ticket_unclaimed"
	EventTicketAssigned        EventType = "ticket_assigned"
	EventTicketPriorityChanged EventType = "ticket_priority_changed"
	EventTicketEscalated       EventType = "ticket_escalated"
	EventTicketClosed          EventType = "ticket_closed"
	EventTicketAutoClosed      EventType = "ticket_auto_closed"
	EventReminderScheduled     EventType = "reminder_scheduled"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	TicketID  string      `json:"ticket_id,omitempty"`
	GuildID   int64       `json:"guild_id,omitempty"`
	ActorID   int64       `json:"actor_id,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// TicketCreatedPayload payload.
type TicketCreatedPayload struct {
	TicketNumber int32 `json:"ticket_number"`
	OwnerID      int64 `json:"owner_id"`
	ChannelID    int64 `json:"channel_id"`
}

// TicketClaimedPayload payload.
type TicketClaimedPayload struct {
	ClaimedBy int64 `json:"claimed_by"`
}

// TicketAssignedPayload payload.
type TicketAssignedPayload struct {
	AssigneeID int64 `json:"assignee_id"`
}

// TicketPriorityChangedPayload payload.
type TicketPriorityChangedPayload struct {
	OldPriority *domain.TicketPriority `json:"old_priority,omitempty"`
	NewPriority domain.TicketPriority  `json:"new_priority"`
}

// TicketEscalatedPayload payload.
type TicketEscalatedPayload struct {
	RequestedBy int64 `json:"requested_by"`
	NotifiedN   int   `json:"notified_n"`
}

// TicketClosedPayload payload.
type TicketClosedPayload struct {
	ClosedBy       int64 `json:"closed_by,omitempty"`
	TranscriptSent bool  `json:"transcript_sent"`
}

// ReminderScheduledPayload payload.
type ReminderScheduledPayload struct {
	ReminderID string    `json:"reminder_id"`
	RemindAt   time.Time `json:"remind_at"`
}
