package svc

import (
	"context"
	"strconv"
	"time"

	"TripHub/app/common/cache"
	"TripHub/app/common/consts/biz"
	"TripHub/app/common/middleware"
	seckilldal "TripHub/app/dal/seckill"
	tripdal "TripHub/app/dal/trip"
	"TripHub/app/services/discover/internal/config"

	"github.com/zeromicro/go-zero/core/bloom"
	"github.com/zeromicro/go-zero/core/logx"
	"github.com/zeromicro/go-zero/core/stores/redis"
	"github.com/zeromicro/go-zero/core/stores/sqlx"
	"github.com/zeromicro/go-zero/rest"
)

type ServiceContext struct {
	Config config.Config

	OptionalAuth rest.Middleware

	Redis *redis.Redis
	Cache *cache.Client
	Bloom *bloom.Filter

	Trips      tripdal.TripModel
	Views      tripdal.TripViewModel
	Rankings   tripdal.RankingModel
	Activities seckilldal.SeckillActivityModel
	Stock      seckilldal.SeckillStockModel

	Now func() time.Time
}

func NewServiceContext(c config.Config) *ServiceContext {
	logx.MustSetup(c.LogConf)

	rds := redis.MustNewRedis(c.RedisConf)
	db := sqlx.MustNewConn(c.MysqlConf)
	trips := tripdal.NewTripModel(db)

	bf := bloom.New(rds, biz.TRIP_CHECK_BLOOM, biz.TRIP_CHECK_BLOOM_BIT)
	if _, err := BloomPreheat(context.Background(), bf, trips); err != nil {
		logx.Errorw("trip bloom preheat failed", logx.Field("err", err))
	}

	return &ServiceContext{
		Config:       c,
		OptionalAuth: middleware.NewOptionalAuthMiddleware(c.Auth.AccessSecret).Handle,
		Redis:        rds,
		Cache: cache.NewClient(rds,
			cache.WithRebuildPool(cache.NewRebuildPool(c.Cache.RebuildWorkers, c.Cache.RebuildQueue))),
		Bloom:      bf,
		Trips:      trips,
		Views:      tripdal.NewTripViewModel(rds),
		Rankings:   tripdal.NewRankingModel(rds),
		Activities: seckilldal.NewSeckillActivityModel(db, c.CacheConf),
		Stock:      seckilldal.NewSeckillStockModel(rds),
		Now:        time.Now,
	}
}

// BloomPreheat adds every trip id to bf. Adding is idempotent, so it doubles as a refresh.
func BloomPreheat(ctx context.Context, bf *bloom.Filter, trips tripdal.TripModel) (int, error) {
	ids, err := trips.FindAllIds(ctx)
	if err != nil {
		return 0, err
	}

	for _, id := range ids {
		if err := bf.AddCtx(ctx, []byte(strconv.FormatInt(id, 10))); err != nil {
			return 0, err
		}
	}
	return len(ids), nil
}

func (sc *ServiceContext) Close() {
	sc.Cache.Close()
}
