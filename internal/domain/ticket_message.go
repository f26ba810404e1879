package domain

import "time"

// TicketMessage is one archived message in a ticket's channel. Rows are
// purged when the ticket closes; the transcript artifact is the only
// surviving record.
type TicketMessage struct {
	ID           string
	TicketID     string
	MessageID    int64
	AuthorID     int64
	AuthorName   string
	AuthorAvatar *string
	Content      string
	Attachments  []byte
	CreatedAt    time.Time
}
