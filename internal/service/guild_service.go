package service

import (
	"context"

	"github.com/helpdesk-kit/ticket-bot/internal/domain"
	"github.com/helpdesk-kit/ticket-bot/internal/repository"
	"github.com/helpdesk-kit/ticket-bot/pkg/util"
)

// GuildService manages per-guild settings and the support role set.
type GuildService struct {
	guilds repository.GuildRepository
}

// NewGuildService creates the service.
func NewGuildService(guilds repository.GuildRepository) *GuildService {
	return &GuildService{guilds: guilds}
}

// Settings returns the guild configuration, creating defaults on first use.
func (s *GuildService) Settings(ctx context.Context, guildID int64) (*domain.Guild, error) {
	guild, err := s.guilds.GetOrCreate(ctx, guildID)
	if err != nil {
		return nil, util.MapError(err)
	}
	return guild, nil
}

// SetPingRole sets or clears the role mentioned by priority pings.
func (s *GuildService) SetPingRole(ctx context.Context, guildID int64, roleID *int64) error {
	if err := s.ensure(ctx, guildID); err != nil {
		return err
	}
	return util.MapError(s.guilds.SetPingRole(ctx, guildID, roleID))
}

// SetLogChannel sets or clears the audit log channel.
func (s *GuildService) SetLogChannel(ctx context.Context, guildID int64, channelID *int64) error {
	if err := s.ensure(ctx, guildID); err != nil {
		return err
	}
	return util.MapError(s.guilds.SetLogChannel(ctx, guildID, channelID))
}

// SetAutoCloseHours sets or clears the inactivity threshold. Nil or zero
// disables auto-close for the guild.
func (s *GuildService) SetAutoCloseHours(ctx context.Context, guildID int64, hours *int32) error {
	if hours != nil && *hours < 0 {
		return util.NewValidationError("auto close hours must be positive", nil)
	}
	if err := s.ensure(ctx, guildID); err != nil {
		return err
	}
	return util.MapError(s.guilds.SetAutoCloseHours(ctx, guildID, hours))
}

// SetTicketLimit sets or clears the per-user open ticket limit.
func (s *GuildService) SetTicketLimit(ctx context.Context, guildID int64, limit *int32) error {
	if limit != nil && *limit < 1 {
		return util.NewValidationError("ticket limit must be at least 1", nil)
	}
	if err := s.ensure(ctx, guildID); err != nil {
		return err
	}
	return util.MapError(s.guilds.SetTicketLimit(ctx, guildID, limit))
}

// AddSupportRole registers a role as support staff.
func (s *GuildService) AddSupportRole(ctx context.Context, guildID, roleID int64) error {
	if err := s.ensure(ctx, guildID); err != nil {
		return err
	}
	return util.MapError(s.guilds.AddSupportRole(ctx, guildID, roleID))
}

// RemoveSupportRole drops a role from the support set.
func (s *GuildService) RemoveSupportRole(ctx context.Context, guildID, roleID int64) error {
	return util.MapError(s.guilds.RemoveSupportRole(ctx, guildID, roleID))
}

func (s *GuildService) ensure(ctx context.Context, guildID int64) error {
	if _, err := s.guilds.GetOrCreate(ctx, guildID); err != nil {
		return util.MapError(err)
	}
	return nil
}
