package domain

import "time"

// Escalation flags an unanswered ticket for recurring staff attention.
// At most one exists per ticket; it is deactivated on claim or close.
type Escalation struct {
	ID          string
	TicketID    string
	RequestedBy int64
	Active      bool
	LastPingAt  time.Time
	CreatedAt   time.Time
}
