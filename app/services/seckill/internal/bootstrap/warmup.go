package bootstrap

import (
	"context"

	"TripHub/app/services/seckill/internal/svc"

	"github.com/zeromicro/go-zero/core/logx"
)

// WarmUpStock seeds the redis counter of every open activity that has none yet.
// Existing counters are left alone: they already reflect admissions.
func WarmUpStock(ctx context.Context, sc *svc.ServiceContext) (int, error) {
	activities, err := sc.Activities.ListOpen(ctx, sc.Now())
	if err != nil {
		return 0, err
	}

	seeded := 0
	for _, a := range activities {
		if a.Stock <= 0 {
			continue
		}
		ok, err := sc.Stock.WarmUp(ctx, a.Id, a.Stock)
		if err != nil {
			logx.WithContext(ctx).Errorw("warm up stock failed", logx.Field("activity_id", a.Id), logx.Field("err", err))
			continue
		}
		if ok {
			seeded++
		}
	}
	logx.WithContext(ctx).Infow("seckill stock warmed up", logx.Field("open", len(activities)), logx.Field("seeded", seeded))
	return seeded, nil
}
