package mq

import (
	"context"
	"time"

	"TripHub/app/common/consts/biz"
	"TripHub/app/common/lock"
	"TripHub/app/services/reconcile/internal/job"
	"TripHub/app/services/reconcile/internal/svc"

	"github.com/hibiken/asynq"
	"github.com/zeromicro/go-zero/core/logx"
)

// NewAsynqMux registers the reconciliation handlers. Each run holds a lease named after its
// task type so overlapping workers skip instead of rebuilding the same keys twice.
func NewAsynqMux(sc *svc.ServiceContext) *asynq.ServeMux {
	audit := job.NewSeckillAuditJob(sc.Activities, sc.Orders, sc.Stock, sc.Now)
	ranking := job.NewRankingRebuildJob(sc.Trips, sc.Rankings, sc.Config.Schedule.RankingTopN)

	mux := asynq.NewServeMux()
	mux.HandleFunc(TaskSeckillAudit, exclusive(sc.Locker, TaskSeckillAudit, sc.Config.Schedule.AuditLease,
		func(ctx context.Context) error {
			_, err := audit.Run(ctx)
			return err
		}))
	mux.HandleFunc(TaskRankingRebuild, exclusive(sc.Locker, TaskRankingRebuild, sc.Config.Schedule.RankingLease,
		ranking.Run))
	return mux
}

func exclusive(locker *lock.Locker, name string, lease time.Duration, run func(ctx context.Context) error) asynq.HandlerFunc {
	return func(ctx context.Context, _ *asynq.Task) error {
		held, ok, err := locker.TryAcquire(ctx, biz.ReconcileLockKey+name, lease)
		if err != nil {
			return err
		}
		if !ok {
			logx.WithContext(ctx).Infow("reconcile task already running elsewhere, skipped", logx.Field("task", name))
			return nil
		}
		defer held.ReleaseQuietly(context.WithoutCancel(ctx))

		return run(ctx)
	}
}
