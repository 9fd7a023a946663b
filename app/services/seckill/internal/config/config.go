package config

import (
	"time"

	"github.com/zeromicro/go-zero/core/logx"
	"github.com/zeromicro/go-zero/core/stores/cache"
	"github.com/zeromicro/go-zero/core/stores/redis"
	"github.com/zeromicro/go-zero/core/stores/sqlx"
	"github.com/zeromicro/go-zero/rest"
	"github.com/zeromicro/zero-contrib/zrpc/registry/consul"
)

type Config struct {
	rest.RestConf

	Consul consul.Conf `json:",optional"`

	Auth AuthConf

	RedisConf redis.RedisConf
	MysqlConf sqlx.SqlConf
	CacheConf cache.CacheConf

	LogConf logx.LogConf

	KafkaConf KafkaConf

	RateLimit RateLimitConf

	Materializer MaterializerConf

	// snowflake node id (0-1023)
	NodeId int64 `json:",default=1"`
}

type AuthConf struct {
	AccessSecret string
}

type KafkaConf struct {
	Broker          []string
	Group           string
	OrderTopic      string
	DeadLetterTopic string        `json:",optional"`
	PublishTimeout  time.Duration `json:",default=1s"`
}

// RateLimitConf bounds admission calls per activity, per client ip and per user.
type RateLimitConf struct {
	IpQuota   int           `json:",default=50"`
	UserQuota int           `json:",default=10"`
	Period    time.Duration `json:",default=1s"`
	Timeout   time.Duration `json:",default=200ms"`
}

type MaterializerConf struct {
	LockWait      time.Duration `json:",default=1s"`
	LockLease     time.Duration `json:",default=5s"`
	MaxRetries    int           `json:",default=3"`
	RetryInterval time.Duration `json:",default=200ms"`
}
