package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"TripHub/app/common/lock"
	"TripHub/app/common/metrics"

	"github.com/zeromicro/go-zero/core/jsonx"
	"github.com/zeromicro/go-zero/core/logx"
	"github.com/zeromicro/go-zero/core/stores/redis"
	"github.com/zeromicro/go-zero/core/syncx"
)

const (
	// DefaultNullTTL applies to "not found" markers written by the logical-expiry path.
	DefaultNullTTL = 2 * time.Minute
	// DefaultLockTTL bounds a single background rebuild.
	DefaultLockTTL = 30 * time.Second

	physicalTTLFactor = 5
	physicalTTLFloor  = 60 * time.Second
	physicalTTLCap    = 7 * 24 * time.Hour

	defaultOpTimeout      = 500 * time.Millisecond
	defaultRebuildTimeout = 10 * time.Second
)

// ErrNotFound is returned when the loader proved the value absent, or the cached blob is unusable.
var ErrNotFound = errors.New("cache: not found")

type (
	// Loader reads the source of truth. A nil value with a nil error means absent.
	Loader[ID any, T any] func(ctx context.Context, id ID) (*T, error)

	// Entry is the blob stored by the logical-expiry policy.
	Entry[T any] struct {
		Data     T         `json:"data"`
		ExpireAt time.Time `json:"expire_at"`
	}

	Client struct {
		rds            *redis.Redis
		locker         *lock.Locker
		pool           *RebuildPool
		flight         syncx.SingleFlight
		now            func() time.Time
		nullTTL        time.Duration
		lockTTL        time.Duration
		opTimeout      time.Duration
		rebuildTimeout time.Duration
	}

	Option func(*Client)
)

func WithRebuildPool(pool *RebuildPool) Option {
	return func(c *Client) {
		c.pool = pool
	}
}

func WithClock(now func() time.Time) Option {
	return func(c *Client) {
		c.now = now
	}
}

func WithNullTTL(ttl time.Duration) Option {
	return func(c *Client) {
		c.nullTTL = ttl
	}
}

func WithLockTTL(ttl time.Duration) Option {
	return func(c *Client) {
		c.lockTTL = ttl
	}
}

func NewClient(rds *redis.Redis, opts ...Option) *Client {
	c := &Client{
		rds:            rds,
		locker:         lock.NewLocker(rds),
		flight:         syncx.NewSingleFlight(),
		now:            time.Now,
		nullTTL:        DefaultNullTTL,
		lockTTL:        DefaultLockTTL,
		opTimeout:      defaultOpTimeout,
		rebuildTimeout: defaultRebuildTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.pool == nil {
		c.pool = NewRebuildPool(defaultRebuildWorkers, defaultRebuildQueue)
	}
	return c
}

// Close stops the rebuild workers.
func (c *Client) Close() {
	c.pool.Stop()
}

// Set stores value as JSON with a physical ttl.
func (c *Client) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	payload, err := jsonx.MarshalToString(value)
	if err != nil {
		return err
	}
	return c.setex(ctx, key, payload, ttl)
}

// SetWithLogicalExpire writes an Entry whose freshness deadline is now+logicalTTL.
func SetWithLogicalExpire[T any](ctx context.Context, c *Client, key string, value *T, logicalTTL time.Duration) error {
	entry := Entry[T]{
		Data:     *value,
		ExpireAt: c.now().Add(logicalTTL),
	}
	payload, err := jsonx.MarshalToString(entry)
	if err != nil {
		return err
	}
	return c.setex(ctx, key, payload, PhysicalTTL(logicalTTL))
}

// QueryWithPassThrough reads key prefix+id and falls back to loader on a miss. Absent values are
// remembered for nullTTL so repeated lookups of a missing id never reach the loader.
func QueryWithPassThrough[T any, ID any](ctx context.Context, c *Client, keyPrefix string, id ID,
	loader Loader[ID, T], ttl, nullTTL time.Duration) (*T, error) {
	key := keyPrefix + fmt.Sprint(id)
	logger := logx.WithContext(ctx)

	payload, cached, err := c.get(ctx, key)
	if err != nil {
		logger.Errorw("cache read failed, falling back to loader", logx.Field("key", key), logx.Field("err", err))
	}
	if cached {
		if payload == "" {
			metrics.CacheNullHit(keyPrefix)
			return nil, ErrNotFound
		}
		var value T
		if err := jsonx.UnmarshalFromString(payload, &value); err != nil {
			logger.Errorw("cache payload undecodable", logx.Field("key", key), logx.Field("err", err))
			return nil, ErrNotFound
		}
		metrics.CacheHit(keyPrefix)
		return &value, nil
	}

	metrics.CacheMiss(keyPrefix)
	shared, err := c.flight.Do(key, func() (any, error) {
		value, err := loader(ctx, id)
		if err != nil {
			return nil, err
		}
		if value == nil {
			if err := c.setex(ctx, key, "", nullTTL); err != nil {
				logger.Errorw("cache null marker write failed", logx.Field("key", key), logx.Field("err", err))
			}
			return nil, ErrNotFound
		}
		if err := c.Set(ctx, key, value, ttl); err != nil {
			logger.Errorw("cache write failed", logx.Field("key", key), logx.Field("err", err))
		}
		return value, nil
	})
	if err != nil {
		return nil, err
	}
	return clone(shared.(*T)), nil
}

// QueryWithLogicalExpire serves entries past their logical deadline and refreshes them in the
// background. Only the caller that wins lockPrefix+id schedules a rebuild; everyone else gets the
// stale value straight away.
func QueryWithLogicalExpire[T any, ID any](ctx context.Context, c *Client, keyPrefix string, id ID,
	loader Loader[ID, T], logicalTTL time.Duration, lockPrefix string) (*T, error) {
	key := keyPrefix + fmt.Sprint(id)
	logger := logx.WithContext(ctx)

	payload, cached, err := c.get(ctx, key)
	if err != nil {
		logger.Errorw("cache read failed, falling back to loader", logx.Field("key", key), logx.Field("err", err))
	}
	if !cached {
		metrics.CacheMiss(keyPrefix)
		shared, err := c.flight.Do(key, func() (any, error) {
			return loadLogical(ctx, c, key, id, loader, logicalTTL)
		})
		if err != nil {
			return nil, err
		}
		return clone(shared.(*T)), nil
	}

	if payload == "" {
		metrics.CacheNullHit(keyPrefix)
		return nil, ErrNotFound
	}

	var entry Entry[T]
	if err := jsonx.UnmarshalFromString(payload, &entry); err != nil {
		logger.Errorw("cache entry undecodable", logx.Field("key", key), logx.Field("err", err))
		return nil, ErrNotFound
	}
	if c.now().Before(entry.ExpireAt) {
		metrics.CacheHit(keyPrefix)
		return &entry.Data, nil
	}

	metrics.CacheStale(keyPrefix)
	c.scheduleRebuild(ctx, keyPrefix, lockPrefix+fmt.Sprint(id), func(rctx context.Context) {
		rebuildLogical(rctx, c, keyPrefix, key, id, loader, logicalTTL)
	})
	return &entry.Data, nil
}

func loadLogical[T any, ID any](ctx context.Context, c *Client, key string, id ID,
	loader Loader[ID, T], logicalTTL time.Duration) (*T, error) {
	value, err := loader(ctx, id)
	if err != nil {
		return nil, err
	}
	if value == nil {
		if err := c.setex(ctx, key, "", c.nullTTL); err != nil {
			logx.WithContext(ctx).Errorw("cache null marker write failed", logx.Field("key", key), logx.Field("err", err))
		}
		return nil, ErrNotFound
	}
	if err := SetWithLogicalExpire(ctx, c, key, value, logicalTTL); err != nil {
		logx.WithContext(ctx).Errorw("cache write failed", logx.Field("key", key), logx.Field("err", err))
	}
	return value, nil
}

func rebuildLogical[T any, ID any](ctx context.Context, c *Client, keyPrefix, key string, id ID,
	loader Loader[ID, T], logicalTTL time.Duration) {
	logger := logx.WithContext(ctx)

	// someone may have refreshed the key between our stale read and the lock
	payload, cached, err := c.get(ctx, key)
	if err == nil && cached {
		if payload == "" {
			metrics.CacheRebuild(keyPrefix, "skipped")
			return
		}
		var entry Entry[T]
		if jsonx.UnmarshalFromString(payload, &entry) == nil && c.now().Before(entry.ExpireAt) {
			metrics.CacheRebuild(keyPrefix, "skipped")
			return
		}
	}

	value, err := loader(ctx, id)
	if err != nil {
		metrics.CacheRebuild(keyPrefix, "failed")
		logger.Errorw("cache rebuild load failed", logx.Field("key", key), logx.Field("err", err))
		return
	}
	if value == nil {
		// deleted at the source: never keep serving the old entry
		if err := c.setex(ctx, key, "", c.nullTTL); err != nil {
			logger.Errorw("cache null marker write failed", logx.Field("key", key), logx.Field("err", err))
		}
		metrics.CacheRebuild(keyPrefix, "absent")
		return
	}
	if err := SetWithLogicalExpire(ctx, c, key, value, logicalTTL); err != nil {
		metrics.CacheRebuild(keyPrefix, "failed")
		logger.Errorw("cache rebuild write failed", logx.Field("key", key), logx.Field("err", err))
		return
	}
	metrics.CacheRebuild(keyPrefix, "ok")
}

func (c *Client) scheduleRebuild(ctx context.Context, keyPrefix, lockKey string, rebuild func(context.Context)) {
	logger := logx.WithContext(ctx)

	lease, ok, err := c.locker.TryAcquire(ctx, lockKey, c.lockTTL)
	if err != nil {
		logger.Errorw("cache rebuild lock failed", logx.Field("lock", lockKey), logx.Field("err", err))
		return
	}
	if !ok {
		return
	}

	// the rebuild outlives the request
	bg := context.WithoutCancel(ctx)
	submitted := c.pool.Submit(func() {
		defer lease.ReleaseQuietly(bg)
		rctx, cancel := context.WithTimeout(bg, c.rebuildTimeout)
		defer cancel()
		rebuild(rctx)
	})
	if !submitted {
		metrics.CacheRebuild(keyPrefix, "dropped")
		logger.Infow("cache rebuild dropped, pool is full", logx.Field("lock", lockKey))
		lease.ReleaseQuietly(ctx)
	}
}

// get distinguishes the empty null marker from a missing key.
func (c *Client) get(ctx context.Context, key string) (string, bool, error) {
	tctx, cancel := context.WithTimeout(ctx, c.opTimeout)
	defer cancel()

	payload, err := c.rds.GetCtx(tctx, key)
	if err != nil {
		return "", false, err
	}
	if payload != "" {
		return payload, true, nil
	}
	exists, err := c.rds.ExistsCtx(tctx, key)
	if err != nil {
		return "", false, err
	}
	return "", exists, nil
}

func (c *Client) setex(ctx context.Context, key, payload string, ttl time.Duration) error {
	tctx, cancel := context.WithTimeout(ctx, c.opTimeout)
	defer cancel()
	return c.rds.SetexCtx(tctx, key, payload, seconds(ttl))
}

// PhysicalTTL keeps logical entries in redis long enough to be served stale,
// but never forever: min(max(ttl*5, ttl+60s), 7d).
func PhysicalTTL(logicalTTL time.Duration) time.Duration {
	ttl := logicalTTL * physicalTTLFactor
	if floor := logicalTTL + physicalTTLFloor; ttl < floor {
		ttl = floor
	}
	if ttl > physicalTTLCap {
		ttl = physicalTTLCap
	}
	return ttl
}

func seconds(ttl time.Duration) int {
	secs := int(ttl / time.Second)
	if secs < 1 {
		return 1
	}
	return secs
}

func clone[T any](v *T) *T {
	if v == nil {
		return nil
	}
	cp := *v
	return &cp
}
