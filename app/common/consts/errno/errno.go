package errno

const (
	StatusOK           = 10000
	StatusTokenFreshed = 10001
)

const (
	TokenEmpty = 40000 + iota
	AccessTokenExpired
	RefreshTokenExpired
	TokenInvalid
	TooManyRequests
)

const (
	InternalError = 50000 + iota
	InvalidParam
	TripNotFound
	ActivityNotFound
)

// 秒杀相关
const (
	SeckillNotActive = 60000 + iota
	SeckillStockNotEnough
	SeckillDuplicate
)
