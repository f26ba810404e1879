package domain

import "time"

// Guild holds per-guild configuration consulted by commands and sweeps.
type Guild struct {
	GuildID             int64
	TicketCategoryID    *int64
	LogChannelID        *int64
	TranscriptChannelID *int64
	PingRoleID          *int64
	AutoCloseHours      *int32
	TicketLimitPerUser  *int32
	ClaimButtonsEnabled *bool
	DMOnCreate          *bool
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// TicketLimit returns the configured open-ticket limit per user, default 1.
func (g *Guild) TicketLimit() int {
	if g.TicketLimitPerUser != nil && *g.TicketLimitPerUser > 0 {
		return int(*g.TicketLimitPerUser)
	}
	return 1
}

// SupportRole marks a platform role whose members act as support staff.
type SupportRole struct {
	ID        string
	GuildID   int64
	RoleID    int64
	CreatedAt time.Time
}

// BlacklistTargetType discriminates blacklist entries.
type BlacklistTargetType string

const (
	BlacklistTargetUser  BlacklistTargetType = "user"
	BlacklistTargetGuild BlacklistTargetType = "guild"
)

// BlacklistEntry blocks a user or guild from opening tickets.
type BlacklistEntry struct {
	ID            string
	TargetID      int64
	TargetType    BlacklistTargetType
	Reason        *string
	BlacklistedBy int64
	CreatedAt     time.Time
}
