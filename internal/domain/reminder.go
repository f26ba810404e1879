package domain

import "time"

// Reminder is a user-scheduled one-shot notification. Delivery is
// at-least-once: the completed flag is only set after delivery.
type Reminder struct {
	ID        string
	UserID    int64
	ChannelID int64
	GuildID   *int64
	MessageID *int64
	Reason    string
	RemindAt  time.Time
	Completed bool
	CreatedAt time.Time
}
