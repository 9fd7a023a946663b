package svc

import (
	"context"
	"time"

	"TripHub/app/common/idgen"
	"TripHub/app/common/lock"
	"TripHub/app/common/middleware"
	"TripHub/app/common/ratelimit"
	"TripHub/app/common/snowflake"
	orderdal "TripHub/app/dal/order"
	seckilldal "TripHub/app/dal/seckill"
	"TripHub/app/services/seckill/internal/config"

	"github.com/segmentio/kafka-go"
	"github.com/zeromicro/go-zero/core/logx"
	"github.com/zeromicro/go-zero/core/stores/cache"
	"github.com/zeromicro/go-zero/core/stores/redis"
	"github.com/zeromicro/go-zero/core/stores/sqlx"
	"github.com/zeromicro/go-zero/rest"
)

const activityCacheExpiry = time.Minute

type (
	// MessageWriter is satisfied by *kafka.Writer.
	MessageWriter interface {
		WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	}

	IdGenerator interface {
		NextId(ctx context.Context, prefix string) (int64, error)
	}

	Limiter interface {
		Allow(ctx context.Context, identity string) bool
	}
)

type ServiceContext struct {
	Config config.Config

	AuthMiddleware rest.Middleware

	Redis      *redis.Redis
	Activities seckilldal.SeckillActivityModel
	Stock      seckilldal.SeckillStockModel
	Orders     orderdal.OrdersModel

	IdWorker    IdGenerator
	Locker      *lock.Locker
	IpLimiter   Limiter
	UserLimiter Limiter

	KafkaWriter      MessageWriter
	DeadLetterWriter MessageWriter

	Now func() time.Time

	closers []func() error
}

func NewServiceContext(c config.Config) *ServiceContext {
	logx.MustSetup(c.LogConf)
	if err := snowflake.SetNodeID(c.NodeId); err != nil {
		logx.Errorw("set snowflake node failed", logx.Field("err", err))
	}

	rds := redis.MustNewRedis(c.RedisConf)
	db := sqlx.MustNewConn(c.MysqlConf)

	sc := &ServiceContext{
		Config:         c,
		AuthMiddleware: middleware.NewAuthMiddleware(c.Auth.AccessSecret).Handle,
		Redis:          rds,
		Activities:     seckilldal.NewSeckillActivityModel(db, c.CacheConf, cache.WithExpiry(activityCacheExpiry)),
		Stock:          seckilldal.NewSeckillStockModel(rds),
		Orders:         orderdal.NewOrdersModel(db),
		IdWorker:       idgen.NewRedisIdWorker(rds),
		Locker:         lock.NewLocker(rds),
		IpLimiter: ratelimit.NewLimiter(rds, ratelimit.Rule{
			Biz:     "seckill:ip",
			Quota:   c.RateLimit.IpQuota,
			Period:  c.RateLimit.Period,
			Timeout: c.RateLimit.Timeout,
		}),
		UserLimiter: ratelimit.NewLimiter(rds, ratelimit.Rule{
			Biz:     "seckill:user",
			Quota:   c.RateLimit.UserQuota,
			Period:  c.RateLimit.Period,
			Timeout: c.RateLimit.Timeout,
		}),
		Now: time.Now,
	}

	// Reusable writers to keep per-message overhead low
	if len(c.KafkaConf.Broker) > 0 && c.KafkaConf.OrderTopic != "" {
		kw := newWriter(c.KafkaConf.Broker, c.KafkaConf.OrderTopic)
		sc.KafkaWriter = kw
		sc.closers = append(sc.closers, kw.Close)
	}
	if len(c.KafkaConf.Broker) > 0 && c.KafkaConf.DeadLetterTopic != "" {
		dw := newWriter(c.KafkaConf.Broker, c.KafkaConf.DeadLetterTopic)
		sc.DeadLetterWriter = dw
		sc.closers = append(sc.closers, dw.Close)
	}

	return sc
}

func newWriter(brokers []string, topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		RequiredAcks:           kafka.RequireOne,
		Balancer:               &kafka.Hash{},
		AllowAutoTopicCreation: true,
		BatchTimeout:           5 * time.Millisecond,
	}
}

// Close flushes and closes kafka writers.
func (sc *ServiceContext) Close() {
	for _, closeFn := range sc.closers {
		if err := closeFn(); err != nil {
			logx.Errorw("close kafka writer failed", logx.Field("err", err))
		}
	}
}
