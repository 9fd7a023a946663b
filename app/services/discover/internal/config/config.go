package config

import (
	"time"

	"github.com/zeromicro/go-zero/core/logx"
	"github.com/zeromicro/go-zero/core/stores/cache"
	"github.com/zeromicro/go-zero/core/stores/redis"
	"github.com/zeromicro/go-zero/core/stores/sqlx"
	"github.com/zeromicro/go-zero/rest"
)

type Config struct {
	rest.RestConf

	Auth AuthConf

	RedisConf redis.RedisConf
	MysqlConf sqlx.SqlConf
	CacheConf cache.CacheConf

	LogConf logx.LogConf

	Cache CacheTuning

	AsynqConf       AsynqConf
	AsynqServerConf AsynqServerConf

	// cron specs for background tasks
	ViewFlushSpec    string `json:",default=@every 10s"`
	BloomRefreshSpec string `json:",default=@every 10m"`
}

type AuthConf struct {
	AccessSecret string
}

type CacheTuning struct {
	RebuildWorkers int `json:",default=4"`
	RebuildQueue   int `json:",default=256"`
}

type AsynqConf struct {
	Addr     string `json:",optional"`
	Password string `json:",optional"`
	DB       int    `json:",default=0"`
}

type AsynqServerConf struct {
	Concurrency     int            `json:",default=2"`
	Queues          map[string]int `json:",optional"`
	ShutdownTimeout time.Duration  `json:",default=5s"`
}
