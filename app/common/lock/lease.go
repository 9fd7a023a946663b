package lock

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/zeromicro/go-zero/core/logx"
	"github.com/zeromicro/go-zero/core/stores/redis"
)

const defaultRetryInterval = 50 * time.Millisecond

var ErrLeaseReleased = errors.New("lease already released")

type (
	// Locker hands out leases on shared redis keys.
	Locker struct {
		store         *redis.Redis
		retryInterval time.Duration
	}

	// Lease is a held lock. Only the holder's token can release it, so a lease that
	// expired and was taken by someone else is never deleted by the old holder.
	Lease struct {
		key      string
		ttl      time.Duration
		lock     *redis.RedisLock
		released bool
	}
)

func NewLocker(store *redis.Redis) *Locker {
	return &Locker{
		store:         store,
		retryInterval: defaultRetryInterval,
	}
}

// TryAcquire makes a single attempt. ok is false when somebody else holds the key.
func (l *Locker) TryAcquire(ctx context.Context, key string, ttl time.Duration) (*Lease, bool, error) {
	rl := redis.NewRedisLock(l.store, key)
	rl.SetExpire(ttlSeconds(ttl))
	ok, err := rl.AcquireCtx(ctx)
	if err != nil || !ok {
		return nil, false, err
	}
	return &Lease{key: key, ttl: ttl, lock: rl}, true, nil
}

// Acquire polls until the lease is taken or wait elapses.
func (l *Locker) Acquire(ctx context.Context, key string, ttl, wait time.Duration) (*Lease, bool, error) {
	deadline := time.Now().Add(wait)
	for {
		lease, ok, err := l.TryAcquire(ctx, key, ttl)
		if err != nil || ok {
			return lease, ok, err
		}
		if !time.Now().Add(l.retryInterval).Before(deadline) {
			return nil, false, nil
		}

		select {
		case <-ctx.Done():
			return nil, false, ctx.Err()
		case <-time.After(l.retryInterval):
		}
	}
}

// Release deletes the key only if it still carries this lease's token.
// false means the lease had already expired.
func (l *Lease) Release(ctx context.Context) (bool, error) {
	if l == nil || l.released {
		return false, ErrLeaseReleased
	}
	l.released = true
	return l.lock.ReleaseCtx(ctx)
}

// ReleaseQuietly is for defer sites: failures are logged, never returned.
func (l *Lease) ReleaseQuietly(ctx context.Context) {
	if l == nil {
		return
	}
	ok, err := l.Release(ctx)
	if err != nil {
		logx.WithContext(ctx).Errorw("release lease failed", logx.Field("key", l.key), logx.Field("err", err))
		return
	}
	if !ok {
		logx.WithContext(ctx).Slowf("lease %s expired before release, ttl %s", l.key, l.ttl)
	}
}

func ttlSeconds(ttl time.Duration) int {
	secs := int(math.Ceil(ttl.Seconds()))
	if secs < 1 {
		return 1
	}
	return secs
}
