package domain

import "time"

// TicketStatus enumerates lifecycle states for tickets.
type TicketStatus string

const (
	TicketStatusOpen   TicketStatus = "open"
	TicketStatusClosed TicketStatus = "closed"
)

// TicketPriority enumerates notification urgency.
type TicketPriority string

const (
	TicketPriorityLow    TicketPriority = "low"
	TicketPriorityNormal TicketPriority = "normal"
	TicketPriorityHigh   TicketPriority = "high"
	TicketPriorityUrgent TicketPriority = "urgent"
)

// ParsePriority validates a priority label. "reset" is accepted and maps
// to normal, matching the priority command's reset choice.
func ParsePriority(s string) (TicketPriority, bool) {
	switch TicketPriority(s) {
	case TicketPriorityLow, TicketPriorityNormal, TicketPriorityHigh, TicketPriorityUrgent:
		return TicketPriority(s), true
	}
	if s == "reset" {
		return TicketPriorityNormal, true
	}
	return "", false
}

// Ticket is the aggregate for a single support conversation. A ticket's
// channel id is unique among open tickets; the row is deleted on close.
type Ticket struct {
	ID               string
	GuildID          int64
	ChannelID        int64
	TicketNumber     int32
	OwnerID          int64
	CategoryID       *string
	ClaimedBy        *int64
	AssignedTo       *int64
	Status           TicketStatus
	Priority         *TicketPriority
	CreatedAt        time.Time
	ClosedAt         *time.Time
	LastActivity     time.Time
	OpeningMessageID *int64
	HasMessages      bool
}

// IsClaimed reports whether a staff member has claimed the ticket.
func (t *Ticket) IsClaimed() bool {
	return t.ClaimedBy != nil
}

// IsOpen reports whether the ticket is still open.
func (t *Ticket) IsOpen() bool {
	return t.Status == TicketStatusOpen
}
