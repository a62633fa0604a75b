// File: internal/infra/redis/lock.go
package redis

import (
	"context"
	"fmt"
	"time"

	"smart-support-router/internal/domain"
	"smart-support-router/internal/domain/ports/repository"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
)

var _ repository.Locker = (*LeaseLocker)(nil)

// LeaseLocker implements lease-based mutual exclusion on Redis. Each lock
// key holds a random token for its lease duration; only the holder of the
// token can release it, and an expired lease releases itself.
type LeaseLocker struct {
	cli *redis.Client
}

func NewLocker(c *Client) *LeaseLocker {
	return &LeaseLocker{cli: c.cli}
}

func (l *LeaseLocker) TryLock(ctx context.Context, key string, ttl time.Duration) (string, bool, error) {
	token := uuid.NewString()
	ok, err := l.cli.SetNX(ctx, key, token, ttl).Result()
	if err != nil {
		return "", false, fmt.Errorf("%w: setnx %s: %v", domain.ErrStoreUnavailable, key, err)
	}
	if !ok {
		return "", false, nil
	}
	return token, true, nil
}

// Delete the key only while it still holds our token, so an expired lease
// re-acquired by another holder is never clobbered.
var luaUnlock = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
else
	return 0
end`)

func (l *LeaseLocker) Unlock(ctx context.Context, key, token string) (bool, error) {
	res, err := luaUnlock.Run(ctx, l.cli, []string{key}, token).Result()
	if err != nil {
		return false, fmt.Errorf("%w: unlock %s: %v", domain.ErrStoreUnavailable, key, err)
	}
	n, _ := res.(int64)
	return n == 1, nil
}
