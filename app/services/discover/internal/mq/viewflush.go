package mq

import (
	"context"

	tripdal "TripHub/app/dal/trip"

	"github.com/zeromicro/go-zero/core/logx"
)

type viewCountStore interface {
	IncrViewCount(ctx context.Context, id, delta int64) error
}

// FlushViewCounts moves buffered view deltas into trip.view_count.
// Deltas whose update fails are put back for the next run.
func FlushViewCounts(ctx context.Context, views tripdal.TripViewModel, trips viewCountStore) (int, error) {
	logger := logx.WithContext(ctx)

	deltas, err := views.DrainDeltas(ctx)
	if err != nil {
		return 0, err
	}
	if len(deltas) == 0 {
		return 0, nil
	}

	failed := make(map[int64]int64)
	flushed := 0
	for id, delta := range deltas {
		if delta <= 0 {
			continue
		}
		if err := trips.IncrViewCount(ctx, id, delta); err != nil {
			logger.Errorw("flush view count failed", logx.Field("trip_id", id), logx.Field("delta", delta), logx.Field("err", err))
			failed[id] = delta
			continue
		}
		flushed++
	}

	if len(failed) > 0 {
		if err := views.RestoreDeltas(ctx, failed); err != nil {
			// 回滚失败只能丢弃这部分增量
			logger.Errorw("restore view deltas failed", logx.Field("trips", len(failed)), logx.Field("err", err))
			return flushed, err
		}
	}
	logger.Infow("view counts flushed", logx.Field("flushed", flushed), logx.Field("restored", len(failed)))
	return flushed, nil
}
