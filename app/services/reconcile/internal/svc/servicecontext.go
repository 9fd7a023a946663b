package svc

import (
	"time"

	"TripHub/app/common/lock"
	"TripHub/app/common/snowflake"
	orderdal "TripHub/app/dal/order"
	seckilldal "TripHub/app/dal/seckill"
	tripdal "TripHub/app/dal/trip"
	"TripHub/app/services/reconcile/internal/config"

	"github.com/zeromicro/go-zero/core/logx"
	"github.com/zeromicro/go-zero/core/stores/redis"
	"github.com/zeromicro/go-zero/core/stores/sqlx"
)

// ServiceContext only holds readers of mysql; reconciliation repairs redis and nothing else.
type ServiceContext struct {
	Config config.Config

	Redis  *redis.Redis
	Locker *lock.Locker

	Activities seckilldal.SeckillActivityModel
	Orders     orderdal.OrdersModel
	Stock      seckilldal.SeckillStockModel

	Trips    tripdal.TripModel
	Rankings tripdal.RankingModel

	Now func() time.Time
}

func NewServiceContext(c config.Config) *ServiceContext {
	c.MustSetUp()
	if err := snowflake.SetNodeID(c.NodeId); err != nil {
		logx.Errorw("set snowflake node failed", logx.Field("err", err))
	}

	rds := redis.MustNewRedis(c.RedisConf)
	db := sqlx.MustNewConn(c.MysqlConf)

	return &ServiceContext{
		Config:     c,
		Redis:      rds,
		Locker:     lock.NewLocker(rds),
		Activities: seckilldal.NewSeckillActivityModel(db, c.CacheConf),
		Orders:     orderdal.NewOrdersModel(db),
		Stock:      seckilldal.NewSeckillStockModel(rds),
		Trips:      tripdal.NewTripModel(db),
		Rankings:   tripdal.NewRankingModel(rds),
		Now:        time.Now,
	}
}
