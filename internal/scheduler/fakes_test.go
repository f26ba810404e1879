package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/helpdesk-kit/ticket-bot/internal/domain"
)

type fakeTicketRepo struct {
	mu       sync.Mutex
	tickets  map[string]*domain.Ticket
	inactive []domain.Ticket
}

func newFakeTicketRepo() *fakeTicketRepo {
	return &fakeTicketRepo{tickets: make(map[string]*domain.Ticket)}
}

func (f *fakeTicketRepo) put(t *domain.Ticket) {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *t
	f.tickets[t.ID] = &cp
}

func (f *fakeTicketRepo) remove(id string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.tickets, id)
}

func (f *fakeTicketRepo) Create(ctx context.Context, ticket *domain.Ticket) error {
	f.put(ticket)
	return nil
}

func (f *fakeTicketRepo) GetByID(ctx context.Context, id string) (*domain.Ticket, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.tickets[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	cp := *t
	return &cp, nil
}

func (f *fakeTicketRepo) GetByChannel(ctx context.Context, channelID int64) (*domain.Ticket, error) {
	return nil, pgx.ErrNoRows
}

func (f *fakeTicketRepo) ListOpenByGuild(ctx context.Context, guildID int64) ([]domain.Ticket, error) {
	return nil, nil
}

func (f *fakeTicketRepo) ListOpen(ctx context.Context) ([]domain.Ticket, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Ticket
	for _, t := range f.tickets {
		out = append(out, *t)
	}
	return out, nil
}

func (f *fakeTicketRepo) CountOpen(ctx context.Context) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.tickets), nil
}

func (f *fakeTicketRepo) CountOpenByOwner(ctx context.Context, guildID, ownerID int64) (int, error) {
	return 0, nil
}

func (f *fakeTicketRepo) Claim(ctx context.Context, id string, claimerID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.tickets[id]
	if !ok {
		return pgx.ErrNoRows
	}
	t.ClaimedBy = &claimerID
	return nil
}

func (f *fakeTicketRepo) Unclaim(ctx context.Context, id string) error { return nil }

func (f *fakeTicketRepo) Assign(ctx context.Context, id string, assigneeID *int64) error {
	return nil
}

func (f *fakeTicketRepo) SetPriority(ctx context.Context, id string, priority domain.TicketPriority) error {
	return nil
}

func (f *fakeTicketRepo) MarkHasMessages(ctx context.Context, id string) error { return nil }

func (f *fakeTicketRepo) TouchActivity(ctx context.Context, id string) error { return nil }

func (f *fakeTicketRepo) ListInactive(ctx context.Context) ([]domain.Ticket, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]domain.Ticket{}, f.inactive...), nil
}

func (f *fakeTicketRepo) Delete(ctx context.Context, id string) error {
	f.remove(id)
	return nil
}

type fakeGuildRepo struct {
	mu           sync.Mutex
	pingRoles    map[int64]*int64
	supportRoles map[int64][]int64
}

func newFakeGuildRepo() *fakeGuildRepo {
	return &fakeGuildRepo{
		pingRoles:    make(map[int64]*int64),
		supportRoles: make(map[int64][]int64),
	}
}

func (f *fakeGuildRepo) GetOrCreate(ctx context.Context, guildID int64) (*domain.Guild, error) {
	return &domain.Guild{GuildID: guildID}, nil
}

func (f *fakeGuildRepo) PingRole(ctx context.Context, guildID int64) (*int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.pingRoles[guildID], nil
}

func (f *fakeGuildRepo) SetPingRole(ctx context.Context, guildID int64, roleID *int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pingRoles[guildID] = roleID
	return nil
}

func (f *fakeGuildRepo) SetLogChannel(ctx context.Context, guildID int64, channelID *int64) error {
	return nil
}

func (f *fakeGuildRepo) SetAutoCloseHours(ctx context.Context, guildID int64, hours *int32) error {
	return nil
}

func (f *fakeGuildRepo) SetTicketLimit(ctx context.Context, guildID int64, limit *int32) error {
	return nil
}

func (f *fakeGuildRepo) SupportRoles(ctx context.Context, guildID int64) ([]int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]int64{}, f.supportRoles[guildID]...), nil
}

func (f *fakeGuildRepo) AddSupportRole(ctx context.Context, guildID, roleID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.supportRoles[guildID] = append(f.supportRoles[guildID], roleID)
	return nil
}

func (f *fakeGuildRepo) RemoveSupportRole(ctx context.Context, guildID, roleID int64) error {
	return nil
}

type fakeEscalationRepo struct {
	mu          sync.Mutex
	escalations map[string]*domain.Escalation
}

func newFakeEscalationRepo() *fakeEscalationRepo {
	return &fakeEscalationRepo{escalations: make(map[string]*domain.Escalation)}
}

func (f *fakeEscalationRepo) add(esc domain.Escalation) {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := esc
	f.escalations[esc.TicketID] = &cp
}

func (f *fakeEscalationRepo) Create(ctx context.Context, ticketID string, requestedBy int64) error {
	f.add(domain.Escalation{TicketID: ticketID, RequestedBy: requestedBy, Active: true, LastPingAt: time.Now()})
	return nil
}

func (f *fakeEscalationRepo) Deactivate(ctx context.Context, ticketID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if e, ok := f.escalations[ticketID]; ok {
		e.Active = false
	}
	return nil
}

func (f *fakeEscalationRepo) ListActive(ctx context.Context) ([]domain.Escalation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Escalation
	for _, e := range f.escalations {
		if e.Active {
			out = append(out, *e)
		}
	}
	return out, nil
}

func (f *fakeEscalationRepo) UpdatePingTime(ctx context.Context, ticketID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if e, ok := f.escalations[ticketID]; ok {
		e.LastPingAt = time.Now()
	}
	return nil
}

func (f *fakeEscalationRepo) isActive(ticketID string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	e, ok := f.escalations[ticketID]
	return ok && e.Active
}

func (f *fakeEscalationRepo) lastPing(ticketID string) time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	if e, ok := f.escalations[ticketID]; ok {
		return e.LastPingAt
	}
	return time.Time{}
}

type fakeReminderRepo struct {
	mu        sync.Mutex
	reminders map[string]*domain.Reminder
	markErr   error
}

func newFakeReminderRepo() *fakeReminderRepo {
	return &fakeReminderRepo{reminders: make(map[string]*domain.Reminder)}
}

func (f *fakeReminderRepo) add(r domain.Reminder) {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := r
	f.reminders[r.ID] = &cp
}

func (f *fakeReminderRepo) Create(ctx context.Context, reminder *domain.Reminder) error {
	f.add(*reminder)
	return nil
}

func (f *fakeReminderRepo) ListDue(ctx context.Context) ([]domain.Reminder, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Reminder
	now := time.Now()
	for _, r := range f.reminders {
		if !r.Completed && !r.RemindAt.After(now) {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (f *fakeReminderRepo) MarkCompleted(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.markErr != nil {
		return f.markErr
	}
	if r, ok := f.reminders[id]; ok {
		r.Completed = true
	}
	return nil
}

func (f *fakeReminderRepo) isCompleted(id string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.reminders[id]
	return ok && r.Completed
}

type sentMessage struct {
	target  int64
	content string
}

type fakeMessenger struct {
	mu              sync.Mutex
	channelMessages []sentMessage
	directMessages  []sentMessage
	deletedChannels []int64
	membersByRole   map[int64][]int64
}

func newFakeMessenger() *fakeMessenger {
	return &fakeMessenger{membersByRole: make(map[int64][]int64)}
}

func (f *fakeMessenger) SendToChannel(ctx context.Context, channelID int64, content string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.channelMessages = append(f.channelMessages, sentMessage{channelID, content})
	return nil
}

func (f *fakeMessenger) SendDirect(ctx context.Context, userID int64, content string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.directMessages = append(f.directMessages, sentMessage{userID, content})
	return nil
}

func (f *fakeMessenger) MembersWithRole(ctx context.Context, guildID, roleID int64) ([]int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]int64{}, f.membersByRole[roleID]...), nil
}

func (f *fakeMessenger) DeleteChannel(ctx context.Context, channelID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deletedChannels = append(f.deletedChannels, channelID)
	return nil
}

func (f *fakeMessenger) channelCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.channelMessages)
}

func (f *fakeMessenger) directCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.directMessages)
}

func (f *fakeMessenger) lastChannelMessage() (sentMessage, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.channelMessages) == 0 {
		return sentMessage{}, false
	}
	return f.channelMessages[len(f.channelMessages)-1], true
}

type fakeCloser struct {
	mu     sync.Mutex
	closed []string
	err    error
}

func (f *fakeCloser) AutoClose(ctx context.Context, ticket *domain.Ticket) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.closed = append(f.closed, ticket.ID)
	return nil
}

func (f *fakeCloser) closedIDs() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string{}, f.closed...)
}
