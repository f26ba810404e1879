package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/helpdesk-kit/ticket-bot/internal/domain"
	"github.com/helpdesk-kit/ticket-bot/internal/observability"
	"github.com/helpdesk-kit/ticket-bot/internal/service"
)

// OpsHandler exposes a read-only operator view of the live workload.
type OpsHandler struct {
	tickets *service.TicketService
	metrics *observability.Metrics
}

// NewOpsHandler returns a new handler instance.
func NewOpsHandler(tickets *service.TicketService, metrics *observability.Metrics) *OpsHandler {
	return &OpsHandler{tickets: tickets, metrics: metrics}
}

type ticketView struct {
	ID           string  `json:"id"`
	GuildID      int64   `json:"guild_id"`
	ChannelID    int64   `json:"channel_id"`
	TicketNumber int32   `json:"ticket_number"`
	OwnerID      int64   `json:"owner_id"`
	ClaimedBy    *int64  `json:"claimed_by,omitempty"`
	AssignedTo   *int64  `json:"assigned_to,omitempty"`
	Status       string  `json:"status"`
	Priority     *string `json:"priority,omitempty"`
	CreatedAt    string  `json:"created_at"`
	LastActivity string  `json:"last_activity"`
}

// ListTickets returns every open ticket.
func (h *OpsHandler) ListTickets(c *fiber.Ctx) error {
	tickets, err := h.tickets.ListOpen(c.UserContext())
	if err != nil {
		return err
	}
	views := make([]ticketView, 0, len(tickets))
	for i := range tickets {
		views = append(views, toTicketView(&tickets[i]))
	}
	return c.JSON(fiber.Map{"tickets": views})
}

// GetTicket returns one ticket by id.
func (h *OpsHandler) GetTicket(c *fiber.Ctx) error {
	ticket, err := h.tickets.GetByID(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"ticket": toTicketView(ticket)})
}

// GetStats returns workload counters plus process metrics.
func (h *OpsHandler) GetStats(c *fiber.Ctx) error {
	stats, err := h.tickets.GetStats(c.UserContext())
	if err != nil {
		return err
	}
	requests, errors, sweeps, pings := h.metrics.Snapshot()
	return c.JSON(fiber.Map{
		"open_tickets":       stats.OpenTickets,
		"active_escalations": stats.ActiveEscalations,
		"requests":           requests,
		"errors":             errors,
		"sweeps":             sweeps,
		"priority_pings":     pings,
	})
}

func toTicketView(t *domain.Ticket) ticketView {
	view := ticketView{
		ID:           t.ID,
		GuildID:      t.GuildID,
		ChannelID:    t.ChannelID,
		TicketNumber: t.TicketNumber,
		OwnerID:      t.OwnerID,
		ClaimedBy:    t.ClaimedBy,
		AssignedTo:   t.AssignedTo,
		Status:       string(t.Status),
		CreatedAt:    t.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		LastActivity: t.LastActivity.Format("2006-01-02T15:04:05Z07:00"),
	}
	if t.Priority != nil {
		p := string(*t.Priority)
		view.Priority = &p
	}
	return view
}
