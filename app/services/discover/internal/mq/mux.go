package mq

import (
	"context"

	"TripHub/app/services/discover/internal/svc"

	"github.com/hibiken/asynq"
	"github.com/zeromicro/go-zero/core/logx"
)

// NewAsynqMux registers handlers for periodic tasks.
func NewAsynqMux(sc *svc.ServiceContext) *asynq.ServeMux {
	mux := asynq.NewServeMux()
	mux.HandleFunc(TaskFlushViewCount, func(ctx context.Context, t *asynq.Task) error {
		_, err := FlushViewCounts(ctx, sc.Views, sc.Trips)
		return err
	})
	mux.HandleFunc(TaskRefreshBloom, func(ctx context.Context, t *asynq.Task) error {
		n, err := svc.BloomPreheat(ctx, sc.Bloom, sc.Trips)
		if err != nil {
			return err
		}
		logx.WithContext(ctx).Infow("trip bloom refreshed", logx.Field("ids", n))
		return nil
	})
	return mux
}
