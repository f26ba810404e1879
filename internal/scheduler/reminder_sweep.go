package scheduler

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/helpdesk-kit/ticket-bot/internal/platform"
	"github.com/helpdesk-kit/ticket-bot/internal/repository"
)

// ReminderSweep delivers due reminders. Delivery happens before the
// completion mark, so a crash between the two redelivers rather than
// drops; reminders are at-least-once.
type ReminderSweep struct {
	reminders repository.ReminderRepository
	messenger platform.Messenger
	logger    *zap.Logger
}

// NewReminderSweep builds the sweep.
func NewReminderSweep(reminders repository.ReminderRepository, messenger platform.Messenger, logger *zap.Logger) *ReminderSweep {
	return &ReminderSweep{reminders: reminders, messenger: messenger, logger: logger}
}

// Run executes one pass.
func (s *ReminderSweep) Run(ctx context.Context) error {
	due, err := s.reminders.ListDue(ctx)
	if err != nil {
		return err
	}
	for _, rem := range due {
		content := fmt.Sprintf("Reminder: %s", rem.Reason)

		_ = s.messenger.SendDirect(ctx, rem.UserID, content)
		_ = s.messenger.SendToChannel(ctx, rem.ChannelID, fmt.Sprintf("<@%d> %s", rem.UserID, content))

		if err := s.reminders.MarkCompleted(ctx, rem.ID); err != nil {
			// Left incomplete: the next pass redelivers.
			s.logger.Error("reminder completion mark failed", zap.String("reminder_id", rem.ID), zap.Error(err))
		}
	}
	return nil
}
