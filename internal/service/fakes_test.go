package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/helpdesk-kit/ticket-bot/internal/domain"
)

type fakeTicketRepo struct {
	mu      sync.Mutex
	tickets map[string]*domain.Ticket
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

func (f *fakeTicketRepo) Create(ctx context.Context, ticket *domain.Ticket) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if ticket.ID == "" {
		ticket.ID = uuid.NewString()
	}
	var max int32
	for _, t := range f.tickets {
		if t.GuildID == ticket.GuildID && t.TicketNumber > max {
			max = t.TicketNumber
		}
	}
	ticket.TicketNumber = max + 1
	ticket.Status = domain.TicketStatusOpen
	ticket.CreatedAt = time.Now()
	ticket.LastActivity = ticket.CreatedAt
	cp := *ticket
	f.tickets[ticket.ID] = &cp
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
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, t := range f.tickets {
		if t.ChannelID == channelID {
			cp := *t
			return &cp, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeTicketRepo) ListOpenByGuild(ctx context.Context, guildID int64) ([]domain.Ticket, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Ticket
	for _, t := range f.tickets {
		if t.GuildID == guildID && t.Status == domain.TicketStatusOpen {
			out = append(out, *t)
		}
	}
	return out, nil
}

func (f *fakeTicketRepo) ListOpen(ctx context.Context) ([]domain.Ticket, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Ticket
	for _, t := range f.tickets {
		if t.Status == domain.TicketStatusOpen {
			out = append(out, *t)
		}
	}
	return out, nil
}

func (f *fakeTicketRepo) CountOpen(ctx context.Context) (int, error) {
	open, _ := f.ListOpen(ctx)
	return len(open), nil
}

func (f *fakeTicketRepo) CountOpenByOwner(ctx context.Context, guildID, ownerID int64) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	count := 0
	for _, t := range f.tickets {
		if t.GuildID == guildID && t.OwnerID == ownerID && t.Status == domain.TicketStatusOpen {
			count++
		}
	}
	return count, nil
}

func (f *fakeTicketRepo) update(id string, fn func(*domain.Ticket)) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.tickets[id]
	if !ok {
		return pgx.ErrNoRows
	}
	fn(t)
	return nil
}

func (f *fakeTicketRepo) Claim(ctx context.Context, id string, claimerID int64) error {
	return f.update(id, func(t *domain.Ticket) { t.ClaimedBy = &claimerID })
}

func (f *fakeTicketRepo) Unclaim(ctx context.Context, id string) error {
	return f.update(id, func(t *domain.Ticket) { t.ClaimedBy = nil })
}

func (f *fakeTicketRepo) Assign(ctx context.Context, id string, assigneeID *int64) error {
	return f.update(id, func(t *domain.Ticket) { t.AssignedTo = assigneeID })
}

func (f *fakeTicketRepo) SetPriority(ctx context.Context, id string, priority domain.TicketPriority) error {
	return f.update(id, func(t *domain.Ticket) { t.Priority = &priority })
}

func (f *fakeTicketRepo) MarkHasMessages(ctx context.Context, id string) error {
	return f.update(id, func(t *domain.Ticket) { t.HasMessages = true })
}

func (f *fakeTicketRepo) TouchActivity(ctx context.Context, id string) error {
	return f.update(id, func(t *domain.Ticket) { t.LastActivity = time.Now() })
}

func (f *fakeTicketRepo) ListInactive(ctx context.Context) ([]domain.Ticket, error) {
	return nil, nil
}

func (f *fakeTicketRepo) Delete(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.tickets[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(f.tickets, id)
	return nil
}

type fakeMessageRepo struct {
	mu       sync.Mutex
	messages map[string][]domain.TicketMessage
}

func newFakeMessageRepo() *fakeMessageRepo {
	return &fakeMessageRepo{messages: make(map[string][]domain.TicketMessage)}
}

func (f *fakeMessageRepo) Create(ctx context.Context, msg *domain.TicketMessage) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	msg.ID = uuid.NewString()
	msg.CreatedAt = time.Now()
	f.messages[msg.TicketID] = append(f.messages[msg.TicketID], *msg)
	return nil
}

func (f *fakeMessageRepo) ListByTicket(ctx context.Context, ticketID string) ([]domain.TicketMessage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]domain.TicketMessage{}, f.messages[ticketID]...), nil
}

func (f *fakeMessageRepo) DeleteByTicket(ctx context.Context, ticketID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.messages, ticketID)
	return nil
}

type fakeGuildRepo struct {
	mu           sync.Mutex
	guilds       map[int64]*domain.Guild
	supportRoles map[int64][]int64
}

func newFakeGuildRepo() *fakeGuildRepo {
	return &fakeGuildRepo{
		guilds:       make(map[int64]*domain.Guild),
		supportRoles: make(map[int64][]int64),
	}
}

func (f *fakeGuildRepo) GetOrCreate(ctx context.Context, guildID int64) (*domain.Guild, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	g, ok := f.guilds[guildID]
	if !ok {
		g = &domain.Guild{GuildID: guildID, CreatedAt: time.Now(), UpdatedAt: time.Now()}
		f.guilds[guildID] = g
	}
	cp := *g
	return &cp, nil
}

func (f *fakeGuildRepo) PingRole(ctx context.Context, guildID int64) (*int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	g, ok := f.guilds[guildID]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return g.PingRoleID, nil
}

func (f *fakeGuildRepo) setGuild(g *domain.Guild) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.guilds[g.GuildID] = g
}

func (f *fakeGuildRepo) SetPingRole(ctx context.Context, guildID int64, roleID *int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if g, ok := f.guilds[guildID]; ok {
		g.PingRoleID = roleID
	}
	return nil
}

func (f *fakeGuildRepo) SetLogChannel(ctx context.Context, guildID int64, channelID *int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if g, ok := f.guilds[guildID]; ok {
		g.LogChannelID = channelID
	}
	return nil
}

func (f *fakeGuildRepo) SetAutoCloseHours(ctx context.Context, guildID int64, hours *int32) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if g, ok := f.guilds[guildID]; ok {
		g.AutoCloseHours = hours
	}
	return nil
}

func (f *fakeGuildRepo) SetTicketLimit(ctx context.Context, guildID int64, limit *int32) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if g, ok := f.guilds[guildID]; ok {
		g.TicketLimitPerUser = limit
	}
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
	f.mu.Lock()
	defer f.mu.Unlock()
	roles := f.supportRoles[guildID]
	for i, r := range roles {
		if r == roleID {
			f.supportRoles[guildID] = append(roles[:i], roles[i+1:]...)
			break
		}
	}
	return nil
}

type fakeEscalationRepo struct {
	mu     sync.Mutex
	active map[string]domain.Escalation
}

func newFakeEscalationRepo() *fakeEscalationRepo {
	return &fakeEscalationRepo{active: make(map[string]domain.Escalation)}
}

func (f *fakeEscalationRepo) Create(ctx context.Context, ticketID string, requestedBy int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.active[ticketID] = domain.Escalation{
		ID:          uuid.NewString(),
		TicketID:    ticketID,
		RequestedBy: requestedBy,
		Active:      true,
		LastPingAt:  time.Now(),
		CreatedAt:   time.Now(),
	}
	return nil
}

func (f *fakeEscalationRepo) Deactivate(ctx context.Context, ticketID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.active, ticketID)
	return nil
}

func (f *fakeEscalationRepo) ListActive(ctx context.Context) ([]domain.Escalation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Escalation
	for _, e := range f.active {
		out = append(out, e)
	}
	return out, nil
}

func (f *fakeEscalationRepo) UpdatePingTime(ctx context.Context, ticketID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if e, ok := f.active[ticketID]; ok {
		e.LastPingAt = time.Now()
		f.active[ticketID] = e
	}
	return nil
}

func (f *fakeEscalationRepo) isActive(ticketID string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.active[ticketID]
	return ok
}

type fakeReminderRepo struct {
	mu        sync.Mutex
	reminders map[string]*domain.Reminder
}

func newFakeReminderRepo() *fakeReminderRepo {
	return &fakeReminderRepo{reminders: make(map[string]*domain.Reminder)}
}

func (f *fakeReminderRepo) Create(ctx context.Context, reminder *domain.Reminder) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if reminder.ID == "" {
		reminder.ID = uuid.NewString()
	}
	reminder.CreatedAt = time.Now()
	cp := *reminder
	f.reminders[reminder.ID] = &cp
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
	if r, ok := f.reminders[id]; ok {
		r.Completed = true
	}
	return nil
}

type fakeBlacklistRepo struct {
	mu      sync.Mutex
	entries map[int64]domain.BlacklistTargetType
}

func newFakeBlacklistRepo() *fakeBlacklistRepo {
	return &fakeBlacklistRepo{entries: make(map[int64]domain.BlacklistTargetType)}
}

func (f *fakeBlacklistRepo) Add(ctx context.Context, targetID int64, targetType domain.BlacklistTargetType, reason *string, blacklistedBy int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries[targetID] = targetType
	return nil
}

func (f *fakeBlacklistRepo) Remove(ctx context.Context, targetID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.entries, targetID)
	return nil
}

func (f *fakeBlacklistRepo) IsBlacklisted(ctx context.Context, targetID int64, targetType domain.BlacklistTargetType) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	got, ok := f.entries[targetID]
	return ok && got == targetType, nil
}

type fakeNotifier struct {
	mu        sync.Mutex
	started   []domain.TicketPriority
	cancelled []string
}

func (f *fakeNotifier) Start(ctx context.Context, ticket *domain.Ticket, priority domain.TicketPriority) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.started = append(f.started, priority)
	return nil
}

func (f *fakeNotifier) CancelLease(ctx context.Context, ticketID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cancelled = append(f.cancelled, ticketID)
	return nil
}

func (f *fakeNotifier) startCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.started)
}

func (f *fakeNotifier) cancelCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.cancelled)
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

func (f *fakeMessenger) directCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.directMessages)
}

type fakeTranscripts struct{}

func (fakeTranscripts) Render(ctx context.Context, ticket *domain.Ticket, messages []domain.TicketMessage) (string, error) {
	return fmt.Sprintf("transcript with %d messages", len(messages)), nil
}
