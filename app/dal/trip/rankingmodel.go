package trip

import (
	"context"
	_ "embed"
	"time"

	"TripHub/app/common/snowflake"

	"github.com/zeromicro/go-zero/core/logx"
	"github.com/zeromicro/go-zero/core/stores/redis"
)

const (
	rankStagingTTL = 10 * time.Minute
	rankBatchSize  = 500
)

//go:embed swap.lua
var swapLua string

var swapScript = redis.NewScript(swapLua)

type (
	// RankingModel reads and rebuilds leaderboard sorted sets.
	RankingModel interface {
		Top(ctx context.Context, key string, n int64) ([]redis.Pair, error)
		// Replace swaps entries in under key atomically; no entries deletes key.
		Replace(ctx context.Context, key string, entries []redis.Pair) error
	}

	defaultRankingModel struct {
		redis *redis.Redis
	}
)

func NewRankingModel(r *redis.Redis) RankingModel {
	return &defaultRankingModel{redis: r}
}

func (m *defaultRankingModel) Top(ctx context.Context, key string, n int64) ([]redis.Pair, error) {
	if n <= 0 {
		return nil, ErrInvalidParam
	}
	return m.redis.ZrevrangeWithScoresCtx(ctx, key, 0, n-1)
}

func (m *defaultRankingModel) Replace(ctx context.Context, key string, entries []redis.Pair) error {
	if len(entries) == 0 {
		_, err := m.redis.DelCtx(ctx, key)
		return err
	}

	staging := key + ":staging:" + snowflake.NextString()
	for start := 0; start < len(entries); start += rankBatchSize {
		end := min(start+rankBatchSize, len(entries))
		if _, err := m.redis.ZaddsCtx(ctx, staging, entries[start:end]...); err != nil {
			m.dropStaging(ctx, staging)
			return err
		}
	}
	if err := m.redis.ExpireCtx(ctx, staging, int(rankStagingTTL/time.Second)); err != nil {
		m.dropStaging(ctx, staging)
		return err
	}

	if _, err := m.redis.ScriptRunCtx(ctx, swapScript, []string{staging, key}); err != nil {
		m.dropStaging(ctx, staging)
		return err
	}
	return nil
}

func (m *defaultRankingModel) dropStaging(ctx context.Context, staging string) {
	if _, err := m.redis.DelCtx(ctx, staging); err != nil {
		logx.WithContext(ctx).Errorw("drop ranking staging failed", logx.Field("key", staging), logx.Field("err", err))
	}
}
