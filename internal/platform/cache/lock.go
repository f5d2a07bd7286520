package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ErrLockHeld is returned when another holder owns the lock.
var ErrLockHeld = errors.New("platform/cache: lock held")

var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// Locker hands out short-lived exclusive locks stored in redis.
type Locker struct {
	client redis.UniversalClient
}

// NewLocker constructs a Locker. A nil client yields a Locker that always succeeds.
func NewLocker(client redis.UniversalClient) *Locker {
	return &Locker{client: client}
}

// Lock is a held lock; Release frees it if still owned.
type Lock struct {
	client redis.UniversalClient
	key    string
	token  string
}

// Acquire takes key for ttl or returns ErrLockHeld.
func (l *Locker) Acquire(ctx context.Context, key string, ttl time.Duration) (*Lock, error) {
	if l == nil || l.client == nil {
		return &Lock{key: key}, nil
	}
	token := uuid.NewString()
	ok, err := l.client.SetNX(ctx, key, token, ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("platform/cache: acquire %s: %w", key, err)
	}
	if !ok {
		return nil, ErrLockHeld
	}
	return &Lock{client: l.client, key: key, token: token}, nil
}

// Release deletes the lock key when the token still matches.
func (k *Lock) Release(ctx context.Context) error {
	if k == nil || k.client == nil {
		return nil
	}
	if err := releaseScript.Run(ctx, k.client, []string{k.key}, k.token).Err(); err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("platform/cache: release %s: %w", k.key, err)
	}
	return nil
}

// Versions tracks monotonically increasing counters used to invalidate cached payloads.
type Versions struct {
	client redis.UniversalClient
}

// NewVersions constructs Versions.
func NewVersions(client redis.UniversalClient) *Versions {
	return &Versions{client: client}
}

// Current returns the counter value, zero when unset.
func (v *Versions) Current(ctx context.Context, key string) (int64, error) {
	if v == nil || v.client == nil {
		return 0, nil
	}
	n, err := v.client.Get(ctx, key).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return n, err
}

// Bump increments the counter.
func (v *Versions) Bump(ctx context.Context, key string) (int64, error) {
	if v == nil || v.client == nil {
		return 0, nil
	}
	return v.client.Incr(ctx, key).Result()
}
