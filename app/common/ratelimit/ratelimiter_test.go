package ratelimit

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/zeromicro/go-zero/core/stores/redis"
)

func TestLimiterFixedWindow(t *testing.T) {
	mr := miniredis.RunT(t)
	l := NewLimiter(redis.New(mr.Addr()), Rule{Biz: "seckill:user", Quota: 3, Period: time.Second})
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		assert.True(t, l.Allow(ctx, "1:42"), "call %d", i)
	}
	assert.False(t, l.Allow(ctx, "1:42"))
	assert.True(t, l.Allow(ctx, "1:43"), "other identities have their own window")
	assert.True(t, mr.Exists("rl:seckill:user:1:42"))

	mr.FastForward(2 * time.Second)
	assert.True(t, l.Allow(ctx, "1:42"))
}

func TestLimiterEmptyIdentity(t *testing.T) {
	mr := miniredis.RunT(t)
	l := NewLimiter(redis.New(mr.Addr()), Rule{Biz: "seckill:ip", Quota: 1, Period: time.Second})

	assert.True(t, l.Allow(context.Background(), ""))
	assert.False(t, l.Allow(context.Background(), ""))
	assert.True(t, mr.Exists("rl:seckill:ip:unknown"))
}

func TestLimiterFailsClosed(t *testing.T) {
	mr := miniredis.RunT(t)
	l := NewLimiter(redis.New(mr.Addr()), Rule{Biz: "seckill:ip", Quota: 100, Period: time.Second, Timeout: 100 * time.Millisecond})

	mr.SetError("connection lost")
	for i := 0; i < 3; i++ {
		assert.False(t, l.Allow(context.Background(), fmt.Sprintf("10.0.0.%d", i)))
	}
}
