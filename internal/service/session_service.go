package service

import (
	"context"
	"time"

	"github.com/helpdesk-kit/ticket-bot/internal/cache"
	"github.com/helpdesk-kit/ticket-bot/pkg/util"
)

// SessionService guards panel edit sessions with a per-operator TTL
// lock. The TTL bounds how long an abandoned session can block the next
// one; an operator who walks away mid-edit is unblocked automatically.
type SessionService struct {
	leases *cache.LeaseStore
	ttl    time.Duration
}

// NewSessionService creates the service.
func NewSessionService(leases *cache.LeaseStore, ttl time.Duration) *SessionService {
	return &SessionService{leases: leases, ttl: ttl}
}

// Acquire takes the operator's edit lock. Acquisition is atomic; two
// concurrent attempts cannot both succeed.
func (s *SessionService) Acquire(ctx context.Context, operatorID int64) error {
	acquired, err := s.leases.SetIfAbsent(ctx, cache.EditSessionKey(operatorID), "active", s.ttl)
	if err != nil {
		return util.MapError(err)
	}
	if !acquired {
		return util.NewConflict("an edit session is already active", map[string]any{
			"operator_id": operatorID,
		})
	}
	return nil
}

// Release drops the operator's edit lock. Releasing an expired or never
// acquired lock is a no-op.
func (s *SessionService) Release(ctx context.Context, operatorID int64) error {
	return util.MapError(s.leases.Delete(ctx, cache.EditSessionKey(operatorID)))
}
