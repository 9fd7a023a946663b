package idgen

import (
	"context"
	"time"

	"github.com/zeromicro/go-zero/core/logx"
	"github.com/zeromicro/go-zero/core/stores/redis"
)

const (
	// 2022-01-01T00:00:00Z
	beginTimestamp = 1640995200
	countBits      = 32
	keyPrefix      = "icr:"
	counterTTL     = 48 * time.Hour
)

type (
	counterStore interface {
		IncrCtx(ctx context.Context, key string) (int64, error)
		ExpireCtx(ctx context.Context, key string, seconds int) error
	}

	// RedisIdWorker builds ids as (seconds since 2022 << 32) | per-prefix daily sequence.
	// Ids of one prefix are strictly increasing within a UTC day and unique across processes.
	RedisIdWorker struct {
		store counterStore
		now   func() time.Time
	}
)

func NewRedisIdWorker(store *redis.Redis) *RedisIdWorker {
	return &RedisIdWorker{
		store: store,
		now:   time.Now,
	}
}

func (w *RedisIdWorker) NextId(ctx context.Context, prefix string) (int64, error) {
	now := w.now().UTC()
	timestamp := now.Unix() - beginTimestamp

	key := keyPrefix + prefix + ":" + now.Format("2006:01:02")
	count, err := w.store.IncrCtx(ctx, key)
	if err != nil {
		return 0, err
	}
	if count == 1 {
		// yesterday's counter is never read again
		if err := w.store.ExpireCtx(ctx, key, int(counterTTL/time.Second)); err != nil {
			logx.WithContext(ctx).Errorw("expire id counter failed", logx.Field("key", key), logx.Field("err", err))
		}
	}

	return timestamp<<countBits | count, nil
}

// Timestamp recovers the generation second encoded in id.
func Timestamp(id int64) time.Time {
	return time.Unix((id>>countBits)+beginTimestamp, 0).UTC()
}
