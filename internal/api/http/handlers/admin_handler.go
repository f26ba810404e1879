package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/helpdesk-kit/ticket-bot/internal/service"
	"github.com/helpdesk-kit/ticket-bot/pkg/util"
)

// AdminHandler exposes guild configuration and reminder scheduling.
// Settings updates run under the operator's edit-session lock so two
// concurrent edits by the same operator cannot interleave.
type AdminHandler struct {
	guilds    *service.GuildService
	sessions  *service.SessionService
	reminders *service.ReminderService
}

// NewAdminHandler returns a new handler instance.
func NewAdminHandler(guilds *service.GuildService, sessions *service.SessionService, reminders *service.ReminderService) *AdminHandler {
	return &AdminHandler{guilds: guilds, sessions: sessions, reminders: reminders}
}

type guildSettingsRequest struct {
	OperatorID        int64  `json:"operator_id"`
	PingRoleID        *int64 `json:"ping_role_id"`
	LogChannelID      *int64 `json:"log_channel_id"`
	AutoCloseHours    *int32 `json:"auto_close_hours"`
	TicketLimit       *int32 `json:"ticket_limit_per_user"`
	AddSupportRole    *int64 `json:"add_support_role"`
	RemoveSupportRole *int64 `json:"remove_support_role"`
}

// GetGuildSettings returns the guild configuration.
func (h *AdminHandler) GetGuildSettings(c *fiber.Ctx) error {
	guildID, err := parseSnowflake(c.Params("guildId"))
	if err != nil {
		return err
	}
	guild, err := h.guilds.Settings(c.UserContext(), guildID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"guild": guild})
}

// UpdateGuildSettings applies configuration changes under the
// operator's edit-session lock.
func (h *AdminHandler) UpdateGuildSettings(c *fiber.Ctx) error {
	guildID, err := parseSnowflake(c.Params("guildId"))
	if err != nil {
		return err
	}

	var req guildSettingsRequest
	if err := c.BodyParser(&req); err != nil {
		return util.NewValidationError("invalid request body", nil)
	}
	if req.OperatorID == 0 {
		return util.NewValidationError("operator_id is required", nil)
	}

	ctx := c.UserContext()
	if err := h.sessions.Acquire(ctx, req.OperatorID); err != nil {
		return err
	}
	defer func() { _ = h.sessions.Release(ctx, req.OperatorID) }()

	if req.PingRoleID != nil {
		if err := h.guilds.SetPingRole(ctx, guildID, req.PingRoleID); err != nil {
			return err
		}
	}
	if req.LogChannelID != nil {
		if err := h.guilds.SetLogChannel(ctx, guildID, req.LogChannelID); err != nil {
			return err
		}
	}
	if req.AutoCloseHours != nil {
		if err := h.guilds.SetAutoCloseHours(ctx, guildID, req.AutoCloseHours); err != nil {
			return err
		}
	}
	if req.TicketLimit != nil {
		if err := h.guilds.SetTicketLimit(ctx, guildID, req.TicketLimit); err != nil {
			return err
		}
	}
	if req.AddSupportRole != nil {
		if err := h.guilds.AddSupportRole(ctx, guildID, *req.AddSupportRole); err != nil {
			return err
		}
	}
	if req.RemoveSupportRole != nil {
		if err := h.guilds.RemoveSupportRole(ctx, guildID, *req.RemoveSupportRole); err != nil {
			return err
		}
	}

	guild, err := h.guilds.Settings(ctx, guildID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"guild": guild})
}

type reminderRequest struct {
	UserID    int64  `json:"user_id"`
	ChannelID int64  `json:"channel_id"`
	GuildID   *int64 `json:"guild_id"`
	Reason    string `json:"reason"`
	Delay     string `json:"delay"`
}

// CreateReminder schedules a reminder.
func (h *AdminHandler) CreateReminder(c *fiber.Ctx) error {
	var req reminderRequest
	if err := c.BodyParser(&req); err != nil {
		return util.NewValidationError("invalid request body", nil)
	}
	if req.UserID == 0 || req.ChannelID == 0 || req.Reason == "" {
		return util.NewValidationError("user_id, channel_id and reason are required", nil)
	}

	reminder, err := h.reminders.Schedule(c.UserContext(), service.ReminderInput{
		UserID:    req.UserID,
		ChannelID: req.ChannelID,
		GuildID:   req.GuildID,
		Reason:    req.Reason,
		Delay:     req.Delay,
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"reminder": reminder})
}

func parseSnowflake(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, util.NewValidationError("invalid id", map[string]any{"id": raw})
	}
	return id, nil
}
