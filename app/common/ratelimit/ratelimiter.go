package ratelimit

import (
	"context"
	"time"

	"github.com/zeromicro/go-zero/core/limit"
	"github.com/zeromicro/go-zero/core/logx"
	"github.com/zeromicro/go-zero/core/stores/redis"
)

const (
	keyPrefix       = "rl:"
	unknownIdentity = "unknown"
	defaultTimeout  = 200 * time.Millisecond
)

type (
	// Rule is one fixed window: at most Quota calls per identity every Period.
	Rule struct {
		Biz     string
		Quota   int
		Period  time.Duration
		Timeout time.Duration `json:",optional"`
	}

	// Limiter counts calls per identity in redis. Any store failure denies the call.
	Limiter struct {
		rule    Rule
		period  *limit.PeriodLimit
		timeout time.Duration
	}
)

func NewLimiter(store *redis.Redis, rule Rule) *Limiter {
	seconds := int(rule.Period / time.Second)
	if seconds < 1 {
		seconds = 1
	}
	timeout := rule.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Limiter{
		rule:    rule,
		period:  limit.NewPeriodLimit(seconds, rule.Quota, store, keyPrefix+rule.Biz+":"),
		timeout: timeout,
	}
}

// Allow reports whether identity may proceed in the current window.
func (l *Limiter) Allow(ctx context.Context, identity string) bool {
	if identity == "" {
		identity = unknownIdentity
	}

	tctx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()

	code, err := l.period.TakeCtx(tctx, identity)
	if err != nil {
		logx.WithContext(ctx).Errorw("rate limiter unavailable, denying",
			logx.Field("biz", l.rule.Biz), logx.Field("identity", identity), logx.Field("err", err))
		return false
	}

	switch code {
	case limit.Allowed, limit.HitQuota:
		return true
	case limit.OverQuota:
		return false
	default:
		logx.WithContext(ctx).Errorw("rate limiter returned unknown state, denying",
			logx.Field("biz", l.rule.Biz), logx.Field("code", code))
		return false
	}
}
