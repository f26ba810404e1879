package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/helpdesk-kit/ticket-bot/internal/domain"
)

// EscalationRepository manages escalation records. An escalation is tied
// 1:1 to its ticket; re-escalating an existing record reactivates it.
type EscalationRepository interface {
	Create(ctx context.Context, ticketID string, requestedBy int64) error
	Deactivate(ctx context.Context, ticketID string) error
	ListActive(ctx context.Context) ([]domain.Escalation, error)
	UpdatePingTime(ctx context.Context, ticketID string) error
}

type escalationRepository struct {
	pool *pgxpool.Pool
}

// NewEscalationRepository builds repository.
func NewEscalationRepository(pool *pgxpool.Pool) EscalationRepository {
	return &escalationRepository{pool: pool}
}

func (r *escalationRepository) Create(ctx context.Context, ticketID string, requestedBy int64) error {
	const query = `
        INSERT INTO escalations (ticket_id, requested_by)
        VALUES ($1, $2)
        ON CONFLICT (ticket_id) DO UPDATE
        SET active = TRUE, requested_by = $2, last_ping_at = NOW()`
	_, err := r.pool.Exec(ctx, query, ticketID, requestedBy)
	return err
}

func (r *escalationRepository) Deactivate(ctx context.Context, ticketID string) error {
	const query = `UPDATE escalations SET active=FALSE WHERE ticket_id=$1`
	_, err := r.pool.Exec(ctx, query, ticketID)
	return err
}

func (r *escalationRepository) ListActive(ctx context.Context) ([]domain.Escalation, error) {
	const query = `
        SELECT id, ticket_id, requested_by, active, last_ping_at, created_at
        FROM escalations WHERE active ORDER BY last_ping_at ASC`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Escalation
	for rows.Next() {
		var esc domain.Escalation
		if err := rows.Scan(
			&esc.ID,
			&esc.TicketID,
			&esc.RequestedBy,
			&esc.Active,
			&esc.LastPingAt,
			&esc.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, esc)
	}
	return result, rows.Err()
}

func (r *escalationRepository) UpdatePingTime(ctx context.Context, ticketID string) error {
	const query = `UPDATE escalations SET last_ping_at=NOW() WHERE ticket_id=$1`
	_, err := r.pool.Exec(ctx, query, ticketID)
	return err
}
