package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Lease key namespaces. Presence of a key is the signal of interest;
// values are informational only.
const (
	priorityLeasePrefix = "priority_ping:"
	editSessionPrefix   = "panel_edit_session:"
)

// PriorityLeaseKey returns the lease key guarding a ticket's priority
// ping task.
func PriorityLeaseKey(ticketID string) string {
	return priorityLeasePrefix + ticketID
}

// EditSessionKey returns the lock key for an operator's panel edit session.
func EditSessionKey(operatorID int64) string {
	return fmt.Sprintf("%s%d", editSessionPrefix, operatorID)
}

// LeaseStore exposes the ephemeral lease cache: TTL-bounded keys used as
// cancellation flags and advisory locks. It is never authoritative; the
// durable store remains the source of truth for entity state.
type LeaseStore struct {
	client *redis.Client
}

// NewLeaseStore wraps a redis client.
func NewLeaseStore(client *redis.Client) *LeaseStore {
	return &LeaseStore{client: client}
}

// Set stores a lease unconditionally, replacing any previous value and TTL.
func (s *LeaseStore) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	return s.client.Set(ctx, key, value, ttl).Err()
}

// SetIfAbsent atomically acquires a lease only when the key does not
// exist. It reports whether the lease was acquired.
func (s *LeaseStore) SetIfAbsent(ctx context.Context, key, value string, ttl time.Duration) (bool, error) {
	return s.client.SetNX(ctx, key, value, ttl).Result()
}

// Get returns the lease value and whether the key exists.
func (s *LeaseStore) Get(ctx context.Context, key string) (string, bool, error) {
	val, err := s.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return val, true, nil
}

// Delete removes a lease. Deleting an absent key is a no-op.
func (s *LeaseStore) Delete(ctx context.Context, key string) error {
	return s.client.Del(ctx, key).Err()
}
