package biz

import "time"

type CtxKey string

const (
	USER_KEY CtxKey = "user_id"

	REFRESHTOKEN = "refresh_token"
	ACCESSTOKEN  = "access_token"
)

// redis key prefixes
const (
	CacheTripKey     = "cache:trip:"
	LockTripKey      = "lock:trip:"
	CacheActivityKey = "cache:seckill:activity:"

	SeckillStockKey     = "seckill:stock:"
	SeckillOrderKey     = "seckill:order:"
	SeckillOrderLockKey = "lock:seckill:order:"

	HotTripKey        = "hot:trip"
	HotTripDayKey     = "hot:trip:day:"
	HotTripWeekKey    = "hot:trip:week:"
	HotDestinationKey = "hot:dest"
	HotDestDayKey     = "hot:dest:day:"
	HotDestWeekKey    = "hot:dest:week:"

	TripViewDeltaKey = "trip:view:delta"
	TripViewDedupKey = "trip:view:dedup:"

	ReconcileLockKey = "lock:reconcile:"

	TRIP_CHECK_BLOOM     = "bloom:trip:id"
	TRIP_CHECK_BLOOM_BIT = 1 << 24
)

const (
	CacheNullTTL     = 2 * time.Minute
	CacheTripTTL     = 30 * time.Minute
	CacheActivityTTL = 10 * time.Minute

	TripViewDedupTTL = 10 * time.Minute
	HotTripDayTTL    = 2 * 24 * time.Hour
	HotTripWeekTTL   = 14 * 24 * time.Hour
)

const (
	ActivityInactive int64 = 0
	ActivityActive   int64 = 1
	ActivityEnded    int64 = 2
)

const (
	OrderPending  int64 = 0
	OrderPaid     int64 = 1
	OrderCanceled int64 = 2
	OrderOngoing  int64 = 3
	OrderFinished int64 = 4
)

const TripVisibilityPublic int64 = 1
