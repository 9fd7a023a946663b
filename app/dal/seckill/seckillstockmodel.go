package seckill

import (
	"context"
	_ "embed"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"TripHub/app/common/snowflake"

	"github.com/zeromicro/go-zero/core/logx"
	"github.com/zeromicro/go-zero/core/stores/redis"
)

const (
	stockKeyPattern    = "seckill:stock:%d"
	orderSetKeyPattern = "seckill:order:%d"

	stagingTTL     = 10 * time.Minute
	stageBatchSize = 500
)

//go:embed seckill.lua
var reserveScript string

//go:embed rebuild.lua
var rebuildScript string

// ReserveResult is the code returned by the admission script.
type ReserveResult int64

const (
	Reserved       ReserveResult = 0
	SoldOut        ReserveResult = 1
	AlreadyOrdered ReserveResult = 2
)

func (r ReserveResult) String() string {
	switch r {
	case Reserved:
		return "reserved"
	case SoldOut:
		return "sold_out"
	case AlreadyOrdered:
		return "already_ordered"
	default:
		return "unknown(" + strconv.FormatInt(int64(r), 10) + ")"
	}
}

type (
	// StockSnapshot is the redis side of one activity.
	StockSnapshot struct {
		Stock       int64
		StockExists bool
		Orders      int64
	}

	// SeckillStockModel owns the redis stock counter and order set of every activity.
	SeckillStockModel interface {
		// WarmUp writes stock only if no counter exists yet.
		WarmUp(ctx context.Context, activityId, stock int64) (bool, error)
		// Reserve atomically checks stock and the order set, then takes one unit for userId.
		Reserve(ctx context.Context, activityId, userId int64) (ReserveResult, error)
		Snapshot(ctx context.Context, activityId int64) (*StockSnapshot, error)
		// Rebuild replaces counter and order set in one step; a negative stock drops the counter.
		Rebuild(ctx context.Context, activityId, stock int64, userIds []int64) error
	}

	defaultSeckillStockModel struct {
		redis      *redis.Redis
		reserveSha string
		rebuildSha string
		mu         sync.Mutex
	}
)

// ScriptError carries an unexpected lua reply.
type ScriptError struct {
	code string
}

func (e *ScriptError) Error() string {
	return fmt.Sprintf("seckill script error: %s", e.code)
}

func (e *ScriptError) Code() string {
	return e.code
}

func (e *ScriptError) Is(target error) bool {
	other, ok := target.(*ScriptError)
	if !ok {
		return false
	}
	return e.code == other.code
}

func StockKey(activityId int64) string {
	return fmt.Sprintf(stockKeyPattern, activityId)
}

func OrderSetKey(activityId int64) string {
	return fmt.Sprintf(orderSetKeyPattern, activityId)
}

func NewSeckillStockModel(r *redis.Redis) SeckillStockModel {
	return &defaultSeckillStockModel{
		redis: r,
	}
}

func (m *defaultSeckillStockModel) WarmUp(ctx context.Context, activityId, stock int64) (bool, error) {
	return m.redis.SetnxCtx(ctx, StockKey(activityId), strconv.FormatInt(stock, 10))
}

func (m *defaultSeckillStockModel) Reserve(ctx context.Context, activityId, userId int64) (ReserveResult, error) {
	keys := []string{StockKey(activityId), OrderSetKey(activityId)}
	result, err := m.evalScript(ctx, &m.reserveSha, reserveScript, keys, strconv.FormatInt(userId, 10))
	if err != nil {
		return 0, err
	}

	code, err := decodeCode(result)
	if err != nil {
		return 0, err
	}
	switch ReserveResult(code) {
	case Reserved, SoldOut, AlreadyOrdered:
		return ReserveResult(code), nil
	default:
		return 0, &ScriptError{code: strconv.FormatInt(code, 10)}
	}
}

func (m *defaultSeckillStockModel) Snapshot(ctx context.Context, activityId int64) (*StockSnapshot, error) {
	snap := &StockSnapshot{}

	raw, err := m.redis.GetCtx(ctx, StockKey(activityId))
	if err != nil {
		return nil, err
	}
	if raw != "" {
		stock, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, &ScriptError{code: "BAD_STOCK_VALUE"}
		}
		snap.Stock = stock
		snap.StockExists = true
	}

	orders, err := m.redis.ScardCtx(ctx, OrderSetKey(activityId))
	if err != nil {
		return nil, err
	}
	snap.Orders = orders
	return snap, nil
}

func (m *defaultSeckillStockModel) Rebuild(ctx context.Context, activityId, stock int64, userIds []int64) error {
	orderKey := OrderSetKey(activityId)
	staging := orderKey + ":staging:" + snowflake.NextString()

	if len(userIds) > 0 {
		if err := m.stage(ctx, staging, userIds); err != nil {
			m.dropStaging(ctx, staging)
			return err
		}
	}

	keys := []string{StockKey(activityId), orderKey, staging}
	if _, err := m.evalScript(ctx, &m.rebuildSha, rebuildScript, keys, strconv.FormatInt(stock, 10)); err != nil {
		m.dropStaging(ctx, staging)
		return err
	}
	return nil
}

func (m *defaultSeckillStockModel) stage(ctx context.Context, staging string, userIds []int64) error {
	for start := 0; start < len(userIds); start += stageBatchSize {
		end := min(start+stageBatchSize, len(userIds))
		members := make([]any, 0, end-start)
		for _, uid := range userIds[start:end] {
			members = append(members, strconv.FormatInt(uid, 10))
		}
		if _, err := m.redis.SaddCtx(ctx, staging, members...); err != nil {
			return err
		}
	}
	// an abandoned staging set must not live forever; the swap script persists it
	return m.redis.ExpireCtx(ctx, staging, int(stagingTTL/time.Second))
}

func (m *defaultSeckillStockModel) dropStaging(ctx context.Context, staging string) {
	if _, err := m.redis.DelCtx(ctx, staging); err != nil {
		logx.WithContext(ctx).Errorw("drop staging set failed", logx.Field("key", staging), logx.Field("err", err))
	}
}

func (m *defaultSeckillStockModel) evalScript(ctx context.Context, shaRef *string, script string, keys []string, args ...any) (any, error) {
	m.mu.Lock()
	sha := *shaRef
	m.mu.Unlock()

	if sha == "" {
		if err := m.loadScript(ctx, shaRef, script, ""); err != nil {
			return nil, err
		}
		m.mu.Lock()
		sha = *shaRef
		m.mu.Unlock()
	}

	result, err := m.redis.EvalShaCtx(ctx, sha, keys, args...)
	if err != nil && strings.Contains(err.Error(), "NOSCRIPT") {
		logx.WithContext(ctx).Slowf("redis script hash lost (%s), reloading", sha)
		if loadErr := m.loadScript(ctx, shaRef, script, sha); loadErr != nil {
			return nil, loadErr
		}
		m.mu.Lock()
		sha = *shaRef
		m.mu.Unlock()
		result, err = m.redis.EvalShaCtx(ctx, sha, keys, args...)
	}
	return result, err
}

// loadScript replaces *shaRef unless another goroutine already moved it past stale.
func (m *defaultSeckillStockModel) loadScript(ctx context.Context, shaRef *string, script, stale string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if *shaRef != "" && *shaRef != stale {
		return nil
	}

	hash, err := m.redis.ScriptLoadCtx(ctx, script)
	if err != nil {
		return err
	}
	*shaRef = hash
	return nil
}

func decodeCode(result any) (int64, error) {
	switch v := result.(type) {
	case int64:
		return v, nil
	case string:
		code, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return 0, &ScriptError{code: v}
		}
		return code, nil
	case nil:
		return 0, &ScriptError{code: "NIL"}
	default:
		return 0, &ScriptError{code: fmt.Sprint(v)}
	}
}
