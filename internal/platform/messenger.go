package platform

import (
	"context"

	"go.uber.org/zap"

	"github.com/helpdesk-kit/ticket-bot/internal/domain"
)

// Messenger is the chat-platform delivery contract consumed by the core.
// Callers on best-effort paths ignore returned errors by design.
type Messenger interface {
	SendToChannel(ctx context.Context, channelID int64, content string) error
	SendDirect(ctx context.Context, userID int64, content string) error
	MembersWithRole(ctx context.Context, guildID, roleID int64) ([]int64, error)
	DeleteChannel(ctx context.Context, channelID int64) error
}

// Transcripts renders a closed ticket's history into a transcript
// artifact and returns a reference to it (a URL or file path).
type Transcripts interface {
	Render(ctx context.Context, ticket *domain.Ticket, messages []domain.TicketMessage) (string, error)
}

// LogMessenger is a Messenger that only logs. It stands in for the real
// gateway in local runs and keeps delivery observable.
type LogMessenger struct {
	logger *zap.Logger
}

// NewLogMessenger builds a logging messenger.
func NewLogMessenger(logger *zap.Logger) *LogMessenger {
	return &LogMessenger{logger: logger}
}

func (m *LogMessenger) SendToChannel(ctx context.Context, channelID int64, content string) error {
	m.logger.Info("send to channel", zap.Int64("channel_id", channelID), zap.String("content", content))
	return nil
}

func (m *LogMessenger) SendDirect(ctx context.Context, userID int64, content string) error {
	m.logger.Info("send direct", zap.Int64("user_id", userID), zap.String("content", content))
	return nil
}

func (m *LogMessenger) MembersWithRole(ctx context.Context, guildID, roleID int64) ([]int64, error) {
	return nil, nil
}

func (m *LogMessenger) DeleteChannel(ctx context.Context, channelID int64) error {
	m.logger.Info("delete channel", zap.Int64("channel_id", channelID))
	return nil
}

// NoopTranscripts satisfies Transcripts when no renderer is attached.
type NoopTranscripts struct{}

func (NoopTranscripts) Render(ctx context.Context, ticket *domain.Ticket, messages []domain.TicketMessage) (string, error) {
	return "", nil
}
