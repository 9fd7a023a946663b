package lock

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zeromicro/go-zero/core/stores/redis"
)

func newTestLocker(t *testing.T) (*Locker, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)
	return NewLocker(redis.New(mr.Addr())), mr
}

func TestTryAcquireIsExclusive(t *testing.T) {
	locker, _ := newTestLocker(t)
	ctx := context.Background()

	first, ok, err := locker.TryAcquire(ctx, "lock:trip:1", 10*time.Second)
	require.NoError(t, err)
	require.True(t, ok)

	_, ok, err = locker.TryAcquire(ctx, "lock:trip:1", 10*time.Second)
	require.NoError(t, err)
	assert.False(t, ok)

	released, err := first.Release(ctx)
	require.NoError(t, err)
	assert.True(t, released)

	_, ok, err = locker.TryAcquire(ctx, "lock:trip:1", 10*time.Second)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestExpiredLeaseDoesNotReleaseNewHolder(t *testing.T) {
	locker, mr := newTestLocker(t)
	ctx := context.Background()

	stale, ok, err := locker.TryAcquire(ctx, "lock:seckill:order:9", time.Second)
	require.NoError(t, err)
	require.True(t, ok)

	mr.FastForward(3 * time.Second)

	_, ok, err = locker.TryAcquire(ctx, "lock:seckill:order:9", 10*time.Second)
	require.NoError(t, err)
	require.True(t, ok)

	released, err := stale.Release(ctx)
	require.NoError(t, err)
	assert.False(t, released)
	assert.True(t, mr.Exists("lock:seckill:order:9"))
}

func TestReleaseTwice(t *testing.T) {
	locker, _ := newTestLocker(t)
	ctx := context.Background()

	lease, ok, err := locker.TryAcquire(ctx, "lock:x", time.Second)
	require.NoError(t, err)
	require.True(t, ok)

	_, err = lease.Release(ctx)
	require.NoError(t, err)
	_, err = lease.Release(ctx)
	assert.ErrorIs(t, err, ErrLeaseReleased)
}

func TestAcquireGivesUpAfterWait(t *testing.T) {
	locker, _ := newTestLocker(t)
	ctx := context.Background()

	_, ok, err := locker.TryAcquire(ctx, "lock:busy", 10*time.Second)
	require.NoError(t, err)
	require.True(t, ok)

	start := time.Now()
	_, ok, err = locker.Acquire(ctx, "lock:busy", 5*time.Second, 200*time.Millisecond)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestAcquireWaitsForRelease(t *testing.T) {
	locker, _ := newTestLocker(t)
	ctx := context.Background()

	held, ok, err := locker.TryAcquire(ctx, "lock:handoff", 10*time.Second)
	require.NoError(t, err)
	require.True(t, ok)

	go func() {
		time.Sleep(100 * time.Millisecond)
		_, _ = held.Release(ctx)
	}()

	lease, ok, err := locker.Acquire(ctx, "lock:handoff", 5*time.Second, 2*time.Second)
	require.NoError(t, err)
	require.True(t, ok)
	ok, err = lease.Release(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
}
