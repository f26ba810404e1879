package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/helpdesk-kit/ticket-bot/internal/cache"
	"github.com/helpdesk-kit/ticket-bot/internal/config"
	"github.com/helpdesk-kit/ticket-bot/internal/domain"
	"github.com/helpdesk-kit/ticket-bot/internal/observability"
	"github.com/helpdesk-kit/ticket-bot/internal/platform"
	"github.com/helpdesk-kit/ticket-bot/internal/repository"
)

// PriorityScheduler runs one ping task per prioritized ticket. Each task
// is guarded by a TTL lease in Redis; the lease doubles as the
// cancellation flag so tasks die on their own after a restart even when
// nobody cancels them explicitly.
type PriorityScheduler struct {
	leases    *cache.LeaseStore
	tickets   repository.TicketRepository
	guilds    repository.GuildRepository
	messenger platform.Messenger
	logger    *zap.Logger
	metrics   *observability.Metrics
	cfg       config.SchedulerConfig

	mu    sync.Mutex
	tasks map[string]*pingTask
	wg    sync.WaitGroup
}

// pingTask is the registry handle for one running ping loop.
type pingTask struct {
	ctx    context.Context
	cancel context.CancelFunc
}

// NewPriorityScheduler builds the scheduler.
func NewPriorityScheduler(
	leases *cache.LeaseStore,
	tickets repository.TicketRepository,
	guilds repository.GuildRepository,
	messenger platform.Messenger,
	logger *zap.Logger,
	metrics *observability.Metrics,
	cfg config.SchedulerConfig,
) *PriorityScheduler {
	return &PriorityScheduler{
		leases:    leases,
		tickets:   tickets,
		guilds:    guilds,
		messenger: messenger,
		logger:    logger,
		metrics:   metrics,
		cfg:       cfg,
		tasks:     make(map[string]*pingTask),
	}
}

// Start writes the ticket's lease and launches its ping task. A task
// already running for the same ticket is cancelled first, so repeated
// priority changes never stack pings.
func (s *PriorityScheduler) Start(ctx context.Context, ticket *domain.Ticket, priority domain.TicketPriority) error {
	key := cache.PriorityLeaseKey(ticket.ID)
	if err := s.leases.Set(ctx, key, string(priority), s.cfg.PriorityLeaseTTL); err != nil {
		return err
	}

	handle := s.register(ticket.ID)
	s.wg.Add(1)
	go s.run(handle.ctx, handle, ticket.ID, priority)
	return nil
}

// register replaces any running task for the ticket with a fresh handle.
func (s *PriorityScheduler) register(ticketID string) *pingTask {
	taskCtx, cancel := context.WithCancel(context.Background())
	handle := &pingTask{ctx: taskCtx, cancel: cancel}

	s.mu.Lock()
	if prev, ok := s.tasks[ticketID]; ok {
		prev.cancel()
	}
	s.tasks[ticketID] = handle
	s.mu.Unlock()
	return handle
}

// CancelLease deletes the ticket's lease and cancels its running task,
// if any. Safe to call for tickets that were never prioritized.
func (s *PriorityScheduler) CancelLease(ctx context.Context, ticketID string) error {
	s.mu.Lock()
	if task, ok := s.tasks[ticketID]; ok {
		task.cancel()
		delete(s.tasks, ticketID)
	}
	s.mu.Unlock()
	return s.leases.Delete(ctx, cache.PriorityLeaseKey(ticketID))
}

// Resume relaunches tasks for leases that survived a restart. Tickets
// whose lease vanished while the process was down simply stay silent.
func (s *PriorityScheduler) Resume(ctx context.Context, tickets []domain.Ticket) {
	for i := range tickets {
		t := &tickets[i]
		if t.Priority == nil {
			continue
		}
		p := *t.Priority
		if p != domain.TicketPriorityLow && p != domain.TicketPriorityHigh && p != domain.TicketPriorityUrgent {
			continue
		}
		_, found, err := s.leases.Get(ctx, cache.PriorityLeaseKey(t.ID))
		if err != nil || !found {
			continue
		}

		handle := s.register(t.ID)
		s.wg.Add(1)
		go s.runLoop(handle.ctx, handle, t.ID, p, s.pingInterval(p))
	}
}

// Stop cancels every running task and waits for them to drain. Leases
// are left in place so a restarted process can resume the tasks.
func (s *PriorityScheduler) Stop() {
	s.mu.Lock()
	for id, task := range s.tasks {
		task.cancel()
		delete(s.tasks, id)
	}
	s.mu.Unlock()
	s.wg.Wait()
}

func (s *PriorityScheduler) pingInterval(priority domain.TicketPriority) time.Duration {
	if priority == domain.TicketPriorityLow {
		return s.cfg.PriorityLowInterval
	}
	return s.cfg.PriorityHighInterval
}

func (s *PriorityScheduler) run(ctx context.Context, handle *pingTask, ticketID string, priority domain.TicketPriority) {
	// High and urgent tickets get an attention ping right away; low
	// priority waits for the first interval.
	if priority == domain.TicketPriorityHigh || priority == domain.TicketPriorityUrgent {
		s.pingImmediate(ctx, ticketID, priority)
	}
	s.runLoop(ctx, handle, ticketID, priority, s.pingInterval(priority))
}

func (s *PriorityScheduler) runLoop(ctx context.Context, handle *pingTask, ticketID string, priority domain.TicketPriority, interval time.Duration) {
	defer s.wg.Done()
	defer s.unregister(ticketID, handle)

	timer := time.NewTimer(interval)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
		}

		// The lease is re-checked on every wake. Cancellation through
		// the registry is the fast path; the lease check catches
		// deletions made by another process or an expired TTL.
		_, found, err := s.leases.Get(ctx, cache.PriorityLeaseKey(ticketID))
		if err != nil {
			s.logger.Warn("priority lease check failed", zap.String("ticket_id", ticketID), zap.Error(err))
			timer.Reset(interval)
			continue
		}
		if !found {
			return
		}

		ticket, err := s.tickets.GetByID(ctx, ticketID)
		if err != nil {
			// Ticket gone or unreadable: drop the lease so the task
			// does not restart after the next boot.
			_ = s.leases.Delete(ctx, cache.PriorityLeaseKey(ticketID))
			return
		}

		s.pingChannel(ctx, ticket, fmt.Sprintf("This %s priority ticket still needs attention!", priority))
		timer.Reset(interval)
	}
}

func (s *PriorityScheduler) pingImmediate(ctx context.Context, ticketID string, priority domain.TicketPriority) {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return
	}
	label := "High"
	if priority == domain.TicketPriorityUrgent {
		label = "URGENT"
	}
	s.pingChannel(ctx, ticket, fmt.Sprintf("%s priority ticket requires attention!", label))
}

func (s *PriorityScheduler) pingChannel(ctx context.Context, ticket *domain.Ticket, text string) {
	content := text
	roleID, err := s.guilds.PingRole(ctx, ticket.GuildID)
	if err == nil && roleID != nil {
		content = fmt.Sprintf("<@&%d> %s", *roleID, text)
	}
	if err := s.messenger.SendToChannel(ctx, ticket.ChannelID, content); err == nil {
		s.metrics.RecordPing()
	} else {
		s.logger.Warn("priority ping delivery failed",
			zap.String("ticket_id", ticket.ID),
			zap.Int64("channel_id", ticket.ChannelID),
			zap.Error(err))
	}
}

// unregister removes the entry only if it still belongs to this task; a
// replaced task must not evict its successor.
func (s *PriorityScheduler) unregister(ticketID string, handle *pingTask) {
	s.mu.Lock()
	if current, ok := s.tasks[ticketID]; ok && current == handle {
		delete(s.tasks, ticketID)
	}
	s.mu.Unlock()
}
