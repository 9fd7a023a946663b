package idgen

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zeromicro/go-zero/core/logx/logtest"
	"github.com/zeromicro/go-zero/core/stores/redis"
)

func newTestWorker(t *testing.T) (*RedisIdWorker, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)
	return NewRedisIdWorker(redis.New(mr.Addr())), mr
}

func TestNextIdStrictlyIncreasing(t *testing.T) {
	w, _ := newTestWorker(t)
	ctx := context.Background()

	prev, err := w.NextId(ctx, "order")
	require.NoError(t, err)
	for i := 0; i < 200; i++ {
		id, err := w.NextId(ctx, "order")
		require.NoError(t, err)
		assert.Greater(t, id, prev)
		prev = id
	}
}

func TestNextIdLayout(t *testing.T) {
	w, mr := newTestWorker(t)
	fixed := time.Date(2024, 3, 9, 12, 0, 0, 0, time.UTC)
	w.now = func() time.Time { return fixed }

	id, err := w.NextId(context.Background(), "order")
	require.NoError(t, err)

	assert.Equal(t, int64(1), id&0xFFFFFFFF)
	assert.Equal(t, fixed, Timestamp(id))

	val, err := mr.Get("icr:order:2024:03:09")
	require.NoError(t, err)
	assert.Equal(t, "1", val)
	assert.Equal(t, counterTTL, mr.TTL("icr:order:2024:03:09"))
}

func TestNextIdUniqueUnderConcurrency(t *testing.T) {
	w, _ := newTestWorker(t)
	ctx := context.Background()

	const n = 200
	ids := make(chan int64, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			id, err := w.NextId(ctx, "order")
			if err == nil {
				ids <- id
			}
		}()
	}
	wg.Wait()
	close(ids)

	seen := make(map[int64]struct{}, n)
	for id := range ids {
		_, dup := seen[id]
		assert.False(t, dup)
		seen[id] = struct{}{}
	}
	assert.Len(t, seen, n)
}

func TestNextIdPrefixesAreIndependent(t *testing.T) {
	w, mr := newTestWorker(t)
	ctx := context.Background()

	_, err := w.NextId(ctx, "order")
	require.NoError(t, err)
	_, err = w.NextId(ctx, "payment")
	require.NoError(t, err)

	keys := mr.Keys()
	assert.Len(t, keys, 2)
}

type expireFailingStore struct {
	*redis.Redis
}

func (expireFailingStore) ExpireCtx(context.Context, string, int) error {
	return errors.New("readonly replica")
}

func TestNextIdLogsCounterExpireFailure(t *testing.T) {
	logs := logtest.NewCollector(t)
	mr := miniredis.RunT(t)
	w := &RedisIdWorker{store: expireFailingStore{redis.New(mr.Addr())}, now: time.Now}

	id, err := w.NextId(context.Background(), "order")
	require.NoError(t, err)
	assert.Equal(t, int64(1), id&(1<<countBits-1))
	assert.Contains(t, logs.String(), "expire id counter failed")
	assert.Contains(t, logs.String(), "readonly replica")
}
