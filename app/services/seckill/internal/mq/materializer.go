package mq

import (
	"context"
	"errors"
	"strconv"
	"time"

	"TripHub/app/common/consts/biz"
	"TripHub/app/common/lock"
	orderdal "TripHub/app/dal/order"
	seckilldal "TripHub/app/dal/seckill"
	"TripHub/app/services/seckill/internal/config"
	"TripHub/app/services/seckill/internal/svc"

	"github.com/zeromicro/go-zero/core/logx"
)

const defaultPublishTimeout = time.Second

// ErrLockBusy means another worker holds the user's lease; the message should be retried.
var ErrLockBusy = errors.New("order lease busy")

type (
	orderStore interface {
		ExistsByUserActivity(ctx context.Context, userId, activityId int64) (bool, error)
		InsertIfAbsent(ctx context.Context, data *orderdal.Orders) error
	}

	activityStore interface {
		FindOneNoCache(ctx context.Context, id int64) (*seckilldal.SeckillActivity, error)
		DecrStock(ctx context.Context, id int64) error
	}

	OrderMaterializer struct {
		locker     *lock.Locker
		orders     orderStore
		activities activityStore
		conf       config.MaterializerConf
		now        func() time.Time
	}
)

func NewOrderMaterializer(sc *svc.ServiceContext) *OrderMaterializer {
	return &OrderMaterializer{
		locker:     sc.Locker,
		orders:     sc.Orders,
		activities: sc.Activities,
		conf:       sc.Config.Materializer,
		now:        sc.Now,
	}
}

// Handle turns one intent into at most one pending order per (user, activity).
// Redelivery of an already materialized intent is a no-op.
func (m *OrderMaterializer) Handle(ctx context.Context, intent OrderIntent) error {
	logger := logx.WithContext(ctx)
	key := biz.SeckillOrderLockKey + strconv.FormatInt(intent.UserId, 10)

	lease, ok, err := m.locker.Acquire(ctx, key, m.conf.LockLease, m.conf.LockWait)
	if err != nil {
		return err
	}
	if !ok {
		return ErrLockBusy
	}
	defer lease.ReleaseQuietly(context.WithoutCancel(ctx))

	exists, err := m.orders.ExistsByUserActivity(ctx, intent.UserId, intent.ActivityId)
	if err != nil {
		return err
	}
	if exists {
		logger.Infow("order already materialized",
			logx.Field("order_id", intent.OrderId), logx.Field("user_id", intent.UserId),
			logx.Field("activity_id", intent.ActivityId))
		return nil
	}

	if _, err := m.activities.FindOneNoCache(ctx, intent.ActivityId); err != nil {
		if errors.Is(err, seckilldal.ErrNotFound) {
			logger.Errorw("activity gone, drop order intent",
				logx.Field("order_id", intent.OrderId), logx.Field("activity_id", intent.ActivityId))
			return nil
		}
		return err
	}

	err = m.orders.InsertIfAbsent(ctx, &orderdal.Orders{
		Id:                intent.OrderId,
		UserId:            intent.UserId,
		SeckillActivityId: intent.ActivityId,
		Status:            biz.OrderPending,
		OrderTime:         m.now(),
	})
	if errors.Is(err, orderdal.ErrDuplicateOrder) {
		return nil
	}
	if err != nil {
		return err
	}

	if err := m.activities.DecrStock(ctx, intent.ActivityId); err != nil {
		if !errors.Is(err, seckilldal.ErrRowsAffectedIsZero) {
			return err
		}
		// durable stock already at zero; reconciliation reports the gap
		logger.Errorw("durable stock exhausted while materializing",
			logx.Field("order_id", intent.OrderId), logx.Field("activity_id", intent.ActivityId))
	}
	return nil
}
