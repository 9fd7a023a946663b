package config

import (
	"time"

	"github.com/zeromicro/go-zero/core/service"
	"github.com/zeromicro/go-zero/core/stores/cache"
	"github.com/zeromicro/go-zero/core/stores/redis"
	"github.com/zeromicro/go-zero/core/stores/sqlx"
)

type Config struct {
	service.ServiceConf

	RedisConf redis.RedisConf
	MysqlConf sqlx.SqlConf
	CacheConf cache.CacheConf

	AsynqConf       AsynqConf
	AsynqServerConf AsynqServerConf

	Schedule Schedule

	// snowflake node id (0-1023), used for staging key suffixes
	NodeId int64 `json:",default=2"`
}

type AsynqConf struct {
	Addr     string `json:",optional"`
	Password string `json:",optional"`
	DB       int    `json:",default=0"`
}

type AsynqServerConf struct {
	Concurrency     int            `json:",default=2"`
	Queues          map[string]int `json:",optional"`
	ShutdownTimeout time.Duration  `json:",default=10s"`
}

type Schedule struct {
	SeckillAudit   string        `json:",default=@every 5m"`
	RankingRebuild string        `json:",default=0 * * * *"`
	AuditLease     time.Duration `json:",default=4m"`
	RankingLease   time.Duration `json:",default=10m"`
	RankingTopN    int64         `json:",default=100"`
}
