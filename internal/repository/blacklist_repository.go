package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/helpdesk-kit/ticket-bot/internal/domain"
)

// BlacklistRepository manages users and guilds blocked from the workflow.
type BlacklistRepository interface {
	Add(ctx context.Context, targetID int64, targetType domain.BlacklistTargetType, reason *string, blacklistedBy int64) error
	Remove(ctx context.Context, targetID int64) error
	IsBlacklisted(ctx context.Context, targetID int64, targetType domain.BlacklistTargetType) (bool, error)
}

type blacklistRepository struct {
	pool *pgxpool.Pool
}

// NewBlacklistRepository builds repository.
func NewBlacklistRepository(pool *pgxpool.Pool) BlacklistRepository {
	return &blacklistRepository{pool: pool}
}

func (r *blacklistRepository) Add(ctx context.Context, targetID int64, targetType domain.BlacklistTargetType, reason *string, blacklistedBy int64) error {
	const query = `
        INSERT INTO blacklist (target_id, target_type, reason, blacklisted_by)
        VALUES ($1,$2,$3,$4)`
	_, err := r.pool.Exec(ctx, query, targetID, targetType, reason, blacklistedBy)
	return err
}

func (r *blacklistRepository) Remove(ctx context.Context, targetID int64) error {
	const query = `DELETE FROM blacklist WHERE target_id=$1`
	_, err := r.pool.Exec(ctx, query, targetID)
	return err
}

func (r *blacklistRepository) IsBlacklisted(ctx context.Context, targetID int64, targetType domain.BlacklistTargetType) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM blacklist WHERE target_id=$1 AND target_type=$2)`
	var exists bool
	if err := r.pool.QueryRow(ctx, query, targetID, targetType).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}
