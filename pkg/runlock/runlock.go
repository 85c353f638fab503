// Package runlock serializes reconciliation runs across processes with a
// Redis lease. Concurrent runs against the same stores would invalidate the
// anomaly gate's percentage math and double-spend the platform rate limit.
package runlock

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	redis "github.com/redis/go-redis/v9"
)

// ErrNotHeld indicates a release attempt for a lock this process does not hold.
var ErrNotHeld = errors.New("run lock not held")

// releaseScript deletes the key only when it still carries our token, so an
// expired lease taken over by another process is never released by us.
const releaseScript = `
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
else
	return 0
end
`

// Lock is a single-holder lease on one reconciliation workflow.
type Lock struct {
	client redis.UniversalClient
	key    string
	ttl    time.Duration
	token  string
	logger *slog.Logger
}

// New creates a lock for the given workflow key. The TTL bounds how long a
// crashed holder can block the next run.
func New(client redis.UniversalClient, logger *slog.Logger, key string, ttl time.Duration) *Lock {
	return &Lock{
		client: client,
		key:    "stocksync:lock:" + key,
		ttl:    ttl,
		logger: logger.With("module", "runlock", "key", key),
	}
}

// Acquire attempts to take the lease. It returns false without error when
// another holder has it.
func (l *Lock) Acquire(ctx context.Context) (bool, error) {
	token := uuid.NewString()

	acquired, err := l.client.SetNX(ctx, l.key, token, l.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to acquire run lock: %w", err)
	}

	if !acquired {
		return false, nil
	}

	l.token = token
	l.logger.DebugContext(ctx, "Run lock acquired", "ttl", l.ttl)

	return true, nil
}

// Release returns the lease if this process still holds it.
func (l *Lock) Release(ctx context.Context) error {
	if l.token == "" {
		return ErrNotHeld
	}

	deleted, err := l.client.Eval(ctx, releaseScript, []string{l.key}, l.token).Int64()
	if err != nil {
		return fmt.Errorf("failed to release run lock: %w", err)
	}

	l.token = ""

	if deleted == 0 {
		return ErrNotHeld
	}

	return nil
}
