package metrics

import "github.com/zeromicro/go-zero/core/metric"

const namespace = "triphub"

var (
	cacheRequests = metric.NewCounterVec(&metric.CounterVecOpts{
		Namespace: namespace,
		Subsystem: "cache",
		Name:      "requests_total",
		Help:      "cache lookups by key prefix and outcome.",
		Labels:    []string{"prefix", "outcome"},
	})

	cacheRebuilds = metric.NewCounterVec(&metric.CounterVecOpts{
		Namespace: namespace,
		Subsystem: "cache",
		Name:      "rebuilds_total",
		Help:      "background rebuilds by key prefix and result.",
		Labels:    []string{"prefix", "result"},
	})

	seckillAdmissions = metric.NewCounterVec(&metric.CounterVecOpts{
		Namespace: namespace,
		Subsystem: "seckill",
		Name:      "admissions_total",
		Help:      "admission attempts by result.",
		Labels:    []string{"result"},
	})

	rankingRebuilds = metric.NewCounterVec(&metric.CounterVecOpts{
		Namespace: namespace,
		Subsystem: "ranking",
		Name:      "rebuilds_total",
		Help:      "leaderboard rebuilds by board and result.",
		Labels:    []string{"board", "result"},
	})
)

func CacheHit(prefix string) {
	cacheRequests.Inc(prefix, "hit")
}

func CacheMiss(prefix string) {
	cacheRequests.Inc(prefix, "miss")
}

func CacheNullHit(prefix string) {
	cacheRequests.Inc(prefix, "null")
}

func CacheStale(prefix string) {
	cacheRequests.Inc(prefix, "stale")
}

func CacheRebuild(prefix, result string) {
	cacheRebuilds.Inc(prefix, result)
}

func SeckillAdmission(result string) {
	seckillAdmissions.Inc(result)
}

func RankingRebuild(board, result string) {
	rankingRebuilds.Inc(board, result)
}
