package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/helpdesk-kit/ticket-bot/internal/domain"
)

// TicketMessageRepository archives ticket channel messages. History is
// purged wholesale when the ticket closes.
type TicketMessageRepository interface {
	Create(ctx context.Context, msg *domain.TicketMessage) error
	ListByTicket(ctx context.Context, ticketID string) ([]domain.TicketMessage, error)
	DeleteByTicket(ctx context.Context, ticketID string) error
}

type ticketMessageRepository struct {
	pool *pgxpool.Pool
}

// NewTicketMessageRepository builds repository.
func NewTicketMessageRepository(pool *pgxpool.Pool) TicketMessageRepository {
	return &ticketMessageRepository{pool: pool}
}

func (r *ticketMessageRepository) Create(ctx context.Context, msg *domain.TicketMessage) error {
	attachments := msg.Attachments
	if len(attachments) == 0 {
		attachments = []byte("[]")
	}
	const query = `
        INSERT INTO ticket_messages (ticket_id, message_id, author_id, author_name, author_avatar_url, content, attachments)
        VALUES ($1,$2,$3,$4,$5,$6,$7)
        RETURNING id, created_at`
	return r.pool.QueryRow(ctx, query,
		msg.TicketID,
		msg.MessageID,
		msg.AuthorID,
		msg.AuthorName,
		msg.AuthorAvatar,
		msg.Content,
		attachments,
	).Scan(&msg.ID, &msg.CreatedAt)
}

func (r *ticketMessageRepository) ListByTicket(ctx context.Context, ticketID string) ([]domain.TicketMessage, error) {
	const query = `
        SELECT id, ticket_id, message_id, author_id, author_name, author_avatar_url, content, attachments, created_at
        FROM ticket_messages WHERE ticket_id=$1 ORDER BY created_at ASC`
	rows, err := r.pool.Query(ctx, query, ticketID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.TicketMessage
	for rows.Next() {
		var msg domain.TicketMessage
		if err := rows.Scan(
			&msg.ID,
			&msg.TicketID,
			&msg.MessageID,
			&msg.AuthorID,
			&msg.AuthorName,
			&msg.AuthorAvatar,
			&msg.Content,
			&msg.Attachments,
			&msg.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, msg)
	}
	return result, rows.Err()
}

func (r *ticketMessageRepository) DeleteByTicket(ctx context.Context, ticketID string) error {
	const query = `DELETE FROM ticket_messages WHERE ticket_id=$1`
	_, err := r.pool.Exec(ctx, query, ticketID)
	return err
}
