package trip

import (
	"context"
	_ "embed"
	"fmt"
	"strconv"
	"time"

	"TripHub/app/common/consts/biz"

	"github.com/zeromicro/go-zero/core/logx"
	"github.com/zeromicro/go-zero/core/stores/redis"
)

//go:embed drain.lua
var drainLua string

var drainScript = redis.NewScript(drainLua)

type (
	// TripViewModel buffers view counts in redis until they are flushed to mysql.
	TripViewModel interface {
		// RecordView counts one view; a logged-in user is counted once per dedup window.
		// Only public trips reach the leaderboards.
		RecordView(ctx context.Context, t *Trip, userId int64, now time.Time) (bool, error)
		PendingDelta(ctx context.Context, tripId int64) (int64, error)
		// DrainDeltas atomically takes and clears all buffered deltas.
		DrainDeltas(ctx context.Context) (map[int64]int64, error)
		// RestoreDeltas puts deltas back after a failed flush.
		RestoreDeltas(ctx context.Context, deltas map[int64]int64) error
	}

	defaultTripViewModel struct {
		redis *redis.Redis
	}
)

func NewTripViewModel(r *redis.Redis) TripViewModel {
	return &defaultTripViewModel{redis: r}
}

// DayRankKey appends the yyyyMMdd of now to a daily board prefix.
func DayRankKey(prefix string, now time.Time) string {
	return prefix + now.Format("20060102")
}

// WeekRankKey appends the ISO year and week of now, e.g. 2024W18.
func WeekRankKey(prefix string, now time.Time) string {
	year, week := now.ISOWeek()
	return fmt.Sprintf("%s%dW%02d", prefix, year, week)
}

func (m *defaultTripViewModel) RecordView(ctx context.Context, t *Trip, userId int64, now time.Time) (bool, error) {
	member := strconv.FormatInt(t.Id, 10)
	if userId > 0 {
		dedupKey := fmt.Sprintf("%s%d:%d", biz.TripViewDedupKey, t.Id, userId)
		fresh, err := m.redis.SetnxExCtx(ctx, dedupKey, "1", int(biz.TripViewDedupTTL/time.Second))
		if err != nil {
			return false, err
		}
		if !fresh {
			return false, nil
		}
	}

	err := m.redis.PipelinedCtx(ctx, func(pipe redis.Pipeliner) error {
		pipe.HIncrBy(ctx, biz.TripViewDeltaKey, member, 1)
		// 仅公开行程进入榜单，与重建口径一致
		if t.Visibility != biz.TripVisibilityPublic {
			return nil
		}
		incrBoards(ctx, pipe, member, now, biz.HotTripKey, biz.HotTripDayKey, biz.HotTripWeekKey)
		if t.DestinationCity != "" {
			incrBoards(ctx, pipe, t.DestinationCity, now, biz.HotDestinationKey, biz.HotDestDayKey, biz.HotDestWeekKey)
		}
		return nil
	})
	if err != nil {
		return false, err
	}
	return true, nil
}

func incrBoards(ctx context.Context, pipe redis.Pipeliner, member string, now time.Time, allKey, dayPrefix, weekPrefix string) {
	dayKey, weekKey := DayRankKey(dayPrefix, now), WeekRankKey(weekPrefix, now)
	pipe.ZIncrBy(ctx, allKey, 1, member)
	pipe.ZIncrBy(ctx, dayKey, 1, member)
	pipe.Expire(ctx, dayKey, biz.HotTripDayTTL)
	pipe.ZIncrBy(ctx, weekKey, 1, member)
	pipe.Expire(ctx, weekKey, biz.HotTripWeekTTL)
}

func (m *defaultTripViewModel) PendingDelta(ctx context.Context, tripId int64) (int64, error) {
	raw, err := m.redis.HgetCtx(ctx, biz.TripViewDeltaKey, strconv.FormatInt(tripId, 10))
	if err != nil {
		if err == redis.Nil {
			return 0, nil
		}
		return 0, err
	}
	if raw == "" {
		return 0, nil
	}
	return strconv.ParseInt(raw, 10, 64)
}

func (m *defaultTripViewModel) DrainDeltas(ctx context.Context) (map[int64]int64, error) {
	result, err := m.redis.ScriptRunCtx(ctx, drainScript, []string{biz.TripViewDeltaKey})
	if err != nil {
		return nil, err
	}
	pairs, ok := result.([]any)
	if !ok {
		return map[int64]int64{}, nil
	}

	deltas := make(map[int64]int64, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		id, idErr := strconv.ParseInt(fmt.Sprint(pairs[i]), 10, 64)
		delta, deltaErr := strconv.ParseInt(fmt.Sprint(pairs[i+1]), 10, 64)
		if idErr != nil || deltaErr != nil {
			logx.WithContext(ctx).Errorw("skip malformed view delta",
				logx.Field("field", pairs[i]), logx.Field("value", pairs[i+1]))
			continue
		}
		deltas[id] += delta
	}
	return deltas, nil
}

func (m *defaultTripViewModel) RestoreDeltas(ctx context.Context, deltas map[int64]int64) error {
	for id, delta := range deltas {
		if _, err := m.redis.HincrbyCtx(ctx, biz.TripViewDeltaKey, strconv.FormatInt(id, 10), int(delta)); err != nil {
			return err
		}
	}
	return nil
}
