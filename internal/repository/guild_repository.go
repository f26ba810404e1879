package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/helpdesk-kit/ticket-bot/internal/domain"
)

// GuildRepository manages per-guild configuration and support roles.
type GuildRepository interface {
	GetOrCreate(ctx context.Context, guildID int64) (*domain.Guild, error)
	PingRole(ctx context.Context, guildID int64) (*int64, error)
	SetPingRole(ctx context.Context, guildID int64, roleID *int64) error
	SetLogChannel(ctx context.Context, guildID int64, channelID *int64) error
	SetAutoCloseHours(ctx context.Context, guildID int64, hours *int32) error
	SetTicketLimit(ctx context.Context, guildID int64, limit *int32) error
	SupportRoles(ctx context.Context, guildID int64) ([]int64, error)
	AddSupportRole(ctx context.Context, guildID, roleID int64) error
	RemoveSupportRole(ctx context.Context, guildID, roleID int64) error
}

type guildRepository struct {
	pool *pgxpool.Pool
}

// NewGuildRepository builds repository.
func NewGuildRepository(pool *pgxpool.Pool) GuildRepository {
	return &guildRepository{pool: pool}
}

// GetOrCreate upserts the guild row so settings reads never fail on a
// guild the bot has not seen before.
func (r *guildRepository) GetOrCreate(ctx context.Context, guildID int64) (*domain.Guild, error) {
	const query = `
        INSERT INTO guilds (guild_id) VALUES ($1)
        ON CONFLICT (guild_id) DO UPDATE SET guild_id = guilds.guild_id
        RETURNING guild_id, ticket_category_id, log_channel_id, transcript_channel_id,
                  ping_role_id, auto_close_hours, ticket_limit_per_user,
                  claim_buttons_enabled, dm_on_create, created_at, updated_at`
	var guild domain.Guild
	if err := r.pool.QueryRow(ctx, query, guildID).Scan(
		&guild.GuildID,
		&guild.TicketCategoryID,
		&guild.LogChannelID,
		&guild.TranscriptChannelID,
		&guild.PingRoleID,
		&guild.AutoCloseHours,
		&guild.TicketLimitPerUser,
		&guild.ClaimButtonsEnabled,
		&guild.DMOnCreate,
		&guild.CreatedAt,
		&guild.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &guild, nil
}

func (r *guildRepository) PingRole(ctx context.Context, guildID int64) (*int64, error) {
	const query = `SELECT ping_role_id FROM guilds WHERE guild_id=$1`
	var roleID *int64
	if err := r.pool.QueryRow(ctx, query, guildID).Scan(&roleID); err != nil {
		return nil, err
	}
	return roleID, nil
}

func (r *guildRepository) SetPingRole(ctx context.Context, guildID int64, roleID *int64) error {
	const query = `UPDATE guilds SET ping_role_id=$1, updated_at=NOW() WHERE guild_id=$2`
	_, err := r.pool.Exec(ctx, query, roleID, guildID)
	return err
}

func (r *guildRepository) SetLogChannel(ctx context.Context, guildID int64, channelID *int64) error {
	const query = `UPDATE guilds SET log_channel_id=$1, updated_at=NOW() WHERE guild_id=$2`
	_, err := r.pool.Exec(ctx, query, channelID, guildID)
	return err
}

func (r *guildRepository) SetAutoCloseHours(ctx context.Context, guildID int64, hours *int32) error {
	const query = `UPDATE guilds SET auto_close_hours=$1, updated_at=NOW() WHERE guild_id=$2`
	_, err := r.pool.Exec(ctx, query, hours, guildID)
	return err
}

func (r *guildRepository) SetTicketLimit(ctx context.Context, guildID int64, limit *int32) error {
	const query = `UPDATE guilds SET ticket_limit_per_user=$1, updated_at=NOW() WHERE guild_id=$2`
	_, err := r.pool.Exec(ctx, query, limit, guildID)
	return err
}

func (r *guildRepository) SupportRoles(ctx context.Context, guildID int64) ([]int64, error) {
	const query = `SELECT role_id FROM support_roles WHERE guild_id=$1`
	rows, err := r.pool.Query(ctx, query, guildID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []int64
	for rows.Next() {
		var roleID int64
		if err := rows.Scan(&roleID); err != nil {
			return nil, err
		}
		result = append(result, roleID)
	}
	return result, rows.Err()
}

func (r *guildRepository) AddSupportRole(ctx context.Context, guildID, roleID int64) error {
	const query = `
        INSERT INTO support_roles (guild_id, role_id) VALUES ($1, $2)
        ON CONFLICT (guild_id, role_id) DO NOTHING`
	_, err := r.pool.Exec(ctx, query, guildID, roleID)
	return err
}

func (r *guildRepository) RemoveSupportRole(ctx context.Context, guildID, roleID int64) error {
	const query = `DELETE FROM support_roles WHERE guild_id=$1 AND role_id=$2`
	_, err := r.pool.Exec(ctx, query, guildID, roleID)
	return err
}
