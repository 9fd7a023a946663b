package job

import (
	"context"
	"errors"
	"time"

	seckilldal "TripHub/app/dal/seckill"

	"github.com/zeromicro/go-zero/core/logx"
)

type (
	activityReader interface {
		ListActive(ctx context.Context, now time.Time) ([]*seckilldal.SeckillActivity, error)
		FindOneNoCache(ctx context.Context, id int64) (*seckilldal.SeckillActivity, error)
	}

	orderReader interface {
		CountByActivity(ctx context.Context, activityId int64) (int64, error)
		ListUserIdsByActivity(ctx context.Context, activityId int64) ([]int64, error)
	}

	// AuditReport summarizes one audit pass.
	AuditReport struct {
		Checked  int
		Drifted  int
		Repaired int
		Failed   int
	}

	// SeckillAuditJob compares the redis admission state of active activities with mysql
	// and rebuilds redis when it could admit more than mysql allows.
	SeckillAuditJob struct {
		activities activityReader
		orders     orderReader
		stock      seckilldal.SeckillStockModel
		now        func() time.Time
	}
)

func NewSeckillAuditJob(activities activityReader, orders orderReader, stock seckilldal.SeckillStockModel, now func() time.Time) *SeckillAuditJob {
	return &SeckillAuditJob{activities: activities, orders: orders, stock: stock, now: now}
}

func (j *SeckillAuditJob) Run(ctx context.Context) (AuditReport, error) {
	var report AuditReport
	logger := logx.WithContext(ctx)

	activities, err := j.activities.ListActive(ctx, j.now())
	if err != nil {
		return report, err
	}

	for _, a := range activities {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		report.Checked++

		drifted, repaired, err := j.audit(ctx, a)
		if drifted {
			report.Drifted++
		}
		if repaired {
			report.Repaired++
		}
		if err != nil {
			report.Failed++
			logger.Errorw("seckill audit failed", logx.Field("activity_id", a.Id), logx.Field("err", err))
		}
	}

	logger.Infow("seckill audit finished",
		logx.Field("checked", report.Checked), logx.Field("drifted", report.Drifted),
		logx.Field("repaired", report.Repaired), logx.Field("failed", report.Failed))
	return report, nil
}

func (j *SeckillAuditJob) audit(ctx context.Context, a *seckilldal.SeckillActivity) (drifted, repaired bool, err error) {
	snap, err := j.stock.Snapshot(ctx, a.Id)
	if err != nil {
		return false, false, err
	}
	durableOrders, err := j.orders.CountByActivity(ctx, a.Id)
	if err != nil {
		return false, false, err
	}

	stockDrift := (snap.StockExists && snap.Stock != a.Stock) || (!snap.StockExists && a.Stock > 0)
	orderDrift := snap.Orders != durableOrders
	if !stockDrift && !orderDrift {
		return false, false, nil
	}

	fields := []logx.LogField{
		logx.Field("activity_id", a.Id),
		logx.Field("redis_stock", snap.Stock), logx.Field("redis_stock_exists", snap.StockExists),
		logx.Field("durable_stock", a.Stock),
		logx.Field("redis_orders", snap.Orders), logx.Field("durable_orders", durableOrders),
	}

	// redis ahead of mysql is the normal async window; only the oversell direction is repaired
	if !needsRepair(snap, a.Stock, durableOrders) {
		logx.WithContext(ctx).Infow("seckill drift in safe direction", fields...)
		return true, false, nil
	}
	logx.WithContext(ctx).Errorw("seckill drift in unsafe direction, rebuilding", fields...)

	if err := j.rebuild(ctx, a.Id); err != nil {
		return true, false, err
	}
	return true, true, nil
}

func needsRepair(snap *seckilldal.StockSnapshot, durableStock, durableOrders int64) bool {
	return (snap.StockExists && snap.Stock > durableStock) ||
		(!snap.StockExists && durableStock > 0) ||
		snap.Orders < durableOrders
}

func (j *SeckillAuditJob) rebuild(ctx context.Context, activityId int64) error {
	latest, err := j.activities.FindOneNoCache(ctx, activityId)
	if errors.Is(err, seckilldal.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	userIds, err := j.orders.ListUserIdsByActivity(ctx, activityId)
	if err != nil {
		return err
	}
	if err := j.stock.Rebuild(ctx, activityId, latest.Stock, userIds); err != nil {
		return err
	}

	logx.WithContext(ctx).Infow("seckill redis state rebuilt",
		logx.Field("activity_id", activityId), logx.Field("stock", latest.Stock), logx.Field("users", len(userIds)))
	return nil
}
