package mq

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"TripHub/app/common/consts/biz"
	"TripHub/app/common/lock"
	orderdal "TripHub/app/dal/order"
	seckilldal "TripHub/app/dal/seckill"
	"TripHub/app/services/seckill/internal/config"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zeromicro/go-zero/core/stores/redis"
)

type fakeOrders struct {
	mu      sync.Mutex
	rows    map[int64]*orderdal.Orders
	failErr error
}

func newFakeOrders() *fakeOrders {
	return &fakeOrders{rows: make(map[int64]*orderdal.Orders)}
}

func (f *fakeOrders) ExistsByUserActivity(_ context.Context, userId, activityId int64) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failErr != nil {
		return false, f.failErr
	}
	for _, o := range f.rows {
		if o.UserId == userId && o.SeckillActivityId == activityId {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeOrders) InsertIfAbsent(_ context.Context, data *orderdal.Orders) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.rows[data.Id]; ok {
		return orderdal.ErrDuplicateOrder
	}
	cp := *data
	f.rows[data.Id] = &cp
	return nil
}

func (f *fakeOrders) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.rows)
}

type fakeActivities struct {
	mu    sync.Mutex
	stock map[int64]int64
}

func (f *fakeActivities) FindOneNoCache(_ context.Context, id int64) (*seckilldal.SeckillActivity, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.stock[id]
	if !ok {
		return nil, seckilldal.ErrNotFound
	}
	return &seckilldal.SeckillActivity{Id: id, Stock: s, Status: biz.ActivityActive}, nil
}

func (f *fakeActivities) DecrStock(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.stock[id] <= 0 {
		return seckilldal.ErrRowsAffectedIsZero
	}
	f.stock[id]--
	return nil
}

func (f *fakeActivities) left(id int64) int64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.stock[id]
}

func newTestMaterializer(t *testing.T) (*OrderMaterializer, *miniredis.Miniredis, *fakeOrders, *fakeActivities) {
	mr := miniredis.RunT(t)
	orders := newFakeOrders()
	activities := &fakeActivities{stock: map[int64]int64{1: 3}}
	m := &OrderMaterializer{
		locker:     lock.NewLocker(redis.New(mr.Addr())),
		orders:     orders,
		activities: activities,
		conf: config.MaterializerConf{
			LockWait:  20 * time.Millisecond,
			LockLease: 5 * time.Second,
		},
		now: time.Now,
	}
	return m, mr, orders, activities
}

func TestHandleCreatesPendingOrder(t *testing.T) {
	m, mr, orders, activities := newTestMaterializer(t)

	require.NoError(t, m.Handle(context.Background(), OrderIntent{OrderId: 100, UserId: 7, ActivityId: 1}))

	require.Equal(t, 1, orders.count())
	got := orders.rows[100]
	assert.Equal(t, int64(7), got.UserId)
	assert.Equal(t, int64(1), got.SeckillActivityId)
	assert.Equal(t, biz.OrderPending, got.Status)
	assert.False(t, got.OrderTime.IsZero())
	assert.Equal(t, int64(2), activities.left(1))
	assert.False(t, mr.Exists(biz.SeckillOrderLockKey+"7"))
}

func TestHandleRedeliveryIsIdempotent(t *testing.T) {
	m, _, orders, activities := newTestMaterializer(t)
	intent := OrderIntent{OrderId: 100, UserId: 7, ActivityId: 1}

	for i := 0; i < 3; i++ {
		require.NoError(t, m.Handle(context.Background(), intent))
	}
	assert.Equal(t, 1, orders.count())
	assert.Equal(t, int64(2), activities.left(1))
}

func TestHandleConcurrentDuplicates(t *testing.T) {
	m, _, orders, activities := newTestMaterializer(t)
	m.conf.LockWait = 2 * time.Second

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			// distinct ids, same user and activity: still one order
			assert.NoError(t, m.Handle(context.Background(), OrderIntent{OrderId: int64(200 + i), UserId: 8, ActivityId: 1}))
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 1, orders.count())
	assert.Equal(t, int64(2), activities.left(1))
}

func TestHandleLockBusy(t *testing.T) {
	m, mr, orders, _ := newTestMaterializer(t)
	require.NoError(t, mr.Set(biz.SeckillOrderLockKey+"9", "other-worker"))

	err := m.Handle(context.Background(), OrderIntent{OrderId: 1, UserId: 9, ActivityId: 1})
	assert.ErrorIs(t, err, ErrLockBusy)
	assert.Zero(t, orders.count())
}

func TestHandleActivityGone(t *testing.T) {
	m, _, orders, _ := newTestMaterializer(t)

	require.NoError(t, m.Handle(context.Background(), OrderIntent{OrderId: 1, UserId: 9, ActivityId: 404}))
	assert.Zero(t, orders.count())
}

func TestHandleDurableStockExhausted(t *testing.T) {
	m, _, orders, activities := newTestMaterializer(t)
	activities.stock[1] = 0

	require.NoError(t, m.Handle(context.Background(), OrderIntent{OrderId: 5, UserId: 3, ActivityId: 1}))
	assert.Equal(t, 1, orders.count())
	assert.Zero(t, activities.left(1))
}

func TestHandleStoreErrorReleasesLease(t *testing.T) {
	m, mr, orders, _ := newTestMaterializer(t)
	orders.failErr = errors.New("mysql gone")

	err := m.Handle(context.Background(), OrderIntent{OrderId: 5, UserId: 3, ActivityId: 1})
	assert.Error(t, err)
	assert.False(t, mr.Exists(fmt.Sprintf("%s%d", biz.SeckillOrderLockKey, 3)))
}
