package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/helpdesk-kit/ticket-bot/internal/domain"
	"github.com/helpdesk-kit/ticket-bot/internal/events"
	"github.com/helpdesk-kit/ticket-bot/internal/repository"
	"github.com/helpdesk-kit/ticket-bot/pkg/util"
)

// ReminderService schedules user reminders.
type ReminderService struct {
	reminders  repository.ReminderRepository
	dispatcher events.Dispatcher
}

// NewReminderService creates the service.
func NewReminderService(reminders repository.ReminderRepository, dispatcher events.Dispatcher) *ReminderService {
	return &ReminderService{reminders: reminders, dispatcher: dispatcher}
}

// ReminderInput describes a reminder request. Delay uses the compact
// command syntax, e.g. "30s", "10m", "2h", "1d", "1w".
type ReminderInput struct {
	UserID    int64
	ChannelID int64
	GuildID   *int64
	MessageID *int64
	Reason    string
	Delay     string
}

// Schedule stores a reminder due Delay from now.
func (s *ReminderService) Schedule(ctx context.Context, input ReminderInput) (*domain.Reminder, error) {
	delay, err := ParseDelay(input.Delay)
	if err != nil {
		return nil, util.NewValidationError(err.Error(), map[string]any{"delay": input.Delay})
	}

	reminder := &domain.Reminder{
		UserID:    input.UserID,
		ChannelID: input.ChannelID,
		GuildID:   input.GuildID,
		MessageID: input.MessageID,
		Reason:    input.Reason,
		RemindAt:  time.Now().UTC().Add(delay),
	}
	if err := s.reminders.Create(ctx, reminder); err != nil {
		return nil, util.MapError(err)
	}

	if s.dispatcher != nil {
		_ = s.dispatcher.Publish(ctx, events.Event{
			ID:        uuid.NewString(),
			Type:      events.EventReminderScheduled,
			ActorID:   input.UserID,
			Timestamp: time.Now().UTC(),
			Payload: events.ReminderScheduledPayload{
				ReminderID: reminder.ID,
				RemindAt:   reminder.RemindAt,
			},
		})
	}
	return reminder, nil
}

// ParseDelay parses the compact delay syntax: an integer followed by one
// of s, m, h, d or w.
func ParseDelay(input string) (time.Duration, error) {
	trimmed := strings.TrimSpace(strings.ToLower(input))
	if len(trimmed) < 2 {
		return 0, fmt.Errorf("invalid delay %q", input)
	}

	unit := trimmed[len(trimmed)-1]
	amount, err := strconv.Atoi(trimmed[:len(trimmed)-1])
	if err != nil || amount <= 0 {
		return 0, fmt.Errorf("invalid delay %q", input)
	}

	switch unit {
	case 's':
		return time.Duration(amount) * time.Second, nil
	case 'm':
		return time.Duration(amount) * time.Minute, nil
	case 'h':
		return time.Duration(amount) * time.Hour, nil
	case 'd':
		return time.Duration(amount) * 24 * time.Hour, nil
	case 'w':
		return time.Duration(amount) * 7 * 24 * time.Hour, nil
	}
	return 0, fmt.Errorf("invalid delay unit %q", string(unit))
}
