package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	bootstrapLockKey = "lock:role-bootstrap"
	lockTTL          = 10 * time.Second
	lockRetry        = 50 * time.Millisecond
)

// releaseScript deletes the key only when it still holds our token.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// ErrLockLost is returned by release when the lock expired and was taken by
// another holder before we released it.
var ErrLockLost = errors.New("bootstrap lock lost before release")

// BootstrapLock is a SET NX lock guarding the first-registration role
// bootstrap across replicas.
type BootstrapLock struct {
	client redis.UniversalClient
	key    string
	ttl    time.Duration
}

// NewBootstrapLock creates a BootstrapLock wrapping the given Redis client.
func NewBootstrapLock(client redis.UniversalClient) *BootstrapLock {
	return &BootstrapLock{client: client, key: bootstrapLockKey, ttl: lockTTL}
}

// Acquire polls until the lock is taken or ctx ends.
func (l *BootstrapLock) Acquire(ctx context.Context) (func(context.Context) error, error) {
	token := uuid.NewString()

	ticker := time.NewTicker(lockRetry)
	defer ticker.Stop()

	for {
		ok, err := l.client.SetNX(ctx, l.key, token, l.ttl).Result()
		if err != nil {
			return nil, fmt.Errorf("bootstrap lock: %w", err)
		}
		if ok {
			return func(ctx context.Context) error { return l.release(ctx, token) }, nil
		}

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("bootstrap lock: %w", ctx.Err())
		case <-ticker.C:
		}
	}
}

func (l *BootstrapLock) release(ctx context.Context, token string) error {
	n, err := releaseScript.Run(ctx, l.client, []string{l.key}, token).Int()
	if err != nil {
		return fmt.Errorf("bootstrap lock release: %w", err)
	}
	if n == 0 {
		return ErrLockLost
	}
	return nil
}
