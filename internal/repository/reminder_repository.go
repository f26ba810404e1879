package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/helpdesk-kit/ticket-bot/internal/domain"
)

// ReminderRepository manages user-scheduled reminders.
type ReminderRepository interface {
	Create(ctx context.Context, reminder *domain.Reminder) error
	ListDue(ctx context.Context) ([]domain.Reminder, error)
	MarkCompleted(ctx context.Context, id string) error
}

type reminderRepository struct {
	pool *pgxpool.Pool
}

// NewReminderRepository builds repository.
func NewReminderRepository(pool *pgxpool.Pool) ReminderRepository {
	return &reminderRepository{pool: pool}
}

func (r *reminderRepository) Create(ctx context.Context, reminder *domain.Reminder) error {
	if reminder.ID == "" {
		reminder.ID = uuid.NewString()
	}
	const query = `
        INSERT INTO reminders (id, user_id, channel_id, guild_id, message_id, reason, remind_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7)
        RETURNING created_at`
	return r.pool.QueryRow(ctx, query,
		reminder.ID,
		reminder.UserID,
		reminder.ChannelID,
		reminder.GuildID,
		reminder.MessageID,
		reminder.Reason,
		reminder.RemindAt,
	).Scan(&reminder.CreatedAt)
}

func (r *reminderRepository) ListDue(ctx context.Context) ([]domain.Reminder, error) {
	const query = `
        SELECT id, user_id, channel_id, guild_id, message_id, reason, remind_at, completed, created_at
        FROM reminders WHERE NOT completed AND remind_at <= NOW() ORDER BY remind_at ASC`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Reminder
	for rows.Next() {
		var rem domain.Reminder
		if err := rows.Scan(
			&rem.ID,
			&rem.UserID,
			&rem.ChannelID,
			&rem.GuildID,
			&rem.MessageID,
			&rem.Reason,
			&rem.RemindAt,
			&rem.Completed,
			&rem.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, rem)
	}
	return result, rows.Err()
}

func (r *reminderRepository) MarkCompleted(ctx context.Context, id string) error {
	const query = `UPDATE reminders SET completed=TRUE WHERE id=$1`
	_, err := r.pool.Exec(ctx, query, id)
	return err
}
