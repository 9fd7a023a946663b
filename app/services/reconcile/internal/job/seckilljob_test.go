package job

import (
	"context"
	"regexp"
	"testing"
	"time"

	orderdal "TripHub/app/dal/order"
	seckilldal "TripHub/app/dal/seckill"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zeromicro/go-zero/core/stores/cache"
	"github.com/zeromicro/go-zero/core/stores/redis"
	"github.com/zeromicro/go-zero/core/stores/sqlx"
)

var activityColumns = []string{"id", "title", "place_id", "stock", "begin_time", "end_time", "status", "create_time", "update_time"}

var (
	listActiveQuery = regexp.QuoteMeta("from `seckill_activity` where `status` = ? and `begin_time` <= ? and `end_time` >= ?")
	findOneQuery    = regexp.QuoteMeta("from `seckill_activity` where `id` = ? limit 1")
	countQuery      = regexp.QuoteMeta("select count(1) from `orders` where `seckill_activity_id` = ?")
	userIdsQuery    = regexp.QuoteMeta("select distinct `user_id` from `orders` where `seckill_activity_id` = ?")
)

type auditEnv struct {
	job  *SeckillAuditJob
	mock sqlmock.Sqlmock
	mr   *miniredis.Miniredis
	now  time.Time
}

// newAuditEnv wires real models onto sqlmock, so any write to mysql fails the test.
func newAuditEnv(t *testing.T) *auditEnv {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	mr := miniredis.RunT(t)
	conn := sqlx.NewSqlConnFromDB(db)
	cacheConf := cache.CacheConf{{RedisConf: redis.RedisConf{Host: mr.Addr(), Type: redis.NodeType}, Weight: 100}}
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	j := NewSeckillAuditJob(
		seckilldal.NewSeckillActivityModel(conn, cacheConf),
		orderdal.NewOrdersModel(conn),
		seckilldal.NewSeckillStockModel(redis.New(mr.Addr())),
		func() time.Time { return now },
	)
	return &auditEnv{job: j, mock: mock, mr: mr, now: now}
}

func (e *auditEnv) activityRow(id, stock int64) *sqlmock.Rows {
	return sqlmock.NewRows(activityColumns).
		AddRow(id, "Lantern festival", int64(3), stock, e.now.Add(-time.Hour), e.now.Add(time.Hour), int64(1), e.now, e.now)
}

func (e *auditEnv) expectActive(id, stock int64) {
	e.mock.ExpectQuery(listActiveQuery).WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnRows(e.activityRow(id, stock))
}

func (e *auditEnv) expectCount(id, count int64) {
	e.mock.ExpectQuery(countQuery).WithArgs(id).WillReturnRows(sqlmock.NewRows([]string{"count(1)"}).AddRow(count))
}

func (e *auditEnv) expectRebuildReads(id, stock int64, userIds ...int64) {
	e.mock.ExpectQuery(findOneQuery).WithArgs(id).WillReturnRows(e.activityRow(id, stock))
	rows := sqlmock.NewRows([]string{"user_id"})
	for _, uid := range userIds {
		rows.AddRow(uid)
	}
	e.mock.ExpectQuery(userIdsQuery).WithArgs(id).WillReturnRows(rows)
}

func TestAuditRepairsRedisAheadOfDurableStock(t *testing.T) {
	e := newAuditEnv(t)
	require.NoError(t, e.mr.Set(seckilldal.StockKey(1), "10"))
	_, err := e.mr.SAdd(seckilldal.OrderSetKey(1), "7")
	require.NoError(t, err)

	e.expectActive(1, 7)
	e.expectCount(1, 3)
	e.expectRebuildReads(1, 7, 7, 8, 9)

	report, err := e.job.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, AuditReport{Checked: 1, Drifted: 1, Repaired: 1}, report)

	stock, err := e.mr.Get(seckilldal.StockKey(1))
	require.NoError(t, err)
	assert.Equal(t, "7", stock)
	members, err := e.mr.Members(seckilldal.OrderSetKey(1))
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"7", "8", "9"}, members)
	assert.NoError(t, e.mock.ExpectationsWereMet())
}

func TestAuditRestoresMissingCounter(t *testing.T) {
	e := newAuditEnv(t)

	e.expectActive(2, 5)
	e.expectCount(2, 0)
	e.expectRebuildReads(2, 5)

	report, err := e.job.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, report.Repaired)

	stock, err := e.mr.Get(seckilldal.StockKey(2))
	require.NoError(t, err)
	assert.Equal(t, "5", stock)
	assert.False(t, e.mr.Exists(seckilldal.OrderSetKey(2)))
	assert.NoError(t, e.mock.ExpectationsWereMet())
}

func TestAuditRestoresLostOrderSetMembers(t *testing.T) {
	e := newAuditEnv(t)
	require.NoError(t, e.mr.Set(seckilldal.StockKey(3), "4"))

	e.expectActive(3, 4)
	e.expectCount(3, 2)
	e.expectRebuildReads(3, 4, 11, 12)

	report, err := e.job.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, report.Repaired)

	members, err := e.mr.Members(seckilldal.OrderSetKey(3))
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"11", "12"}, members)
	assert.NoError(t, e.mock.ExpectationsWereMet())
}

func TestAuditLeavesSafeDriftAlone(t *testing.T) {
	e := newAuditEnv(t)
	// admissions not yet materialized: redis has less stock and more users than mysql
	require.NoError(t, e.mr.Set(seckilldal.StockKey(4), "3"))
	_, err := e.mr.SAdd(seckilldal.OrderSetKey(4), "1", "2", "3", "4")
	require.NoError(t, err)

	e.expectActive(4, 5)
	e.expectCount(4, 2)

	report, err := e.job.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, AuditReport{Checked: 1, Drifted: 1}, report)

	stock, err := e.mr.Get(seckilldal.StockKey(4))
	require.NoError(t, err)
	assert.Equal(t, "3", stock)
	members, err := e.mr.Members(seckilldal.OrderSetKey(4))
	require.NoError(t, err)
	assert.Len(t, members, 4)
	assert.NoError(t, e.mock.ExpectationsWereMet())
}

func TestAuditConsistentActivity(t *testing.T) {
	e := newAuditEnv(t)
	require.NoError(t, e.mr.Set(seckilldal.StockKey(5), "2"))
	_, err := e.mr.SAdd(seckilldal.OrderSetKey(5), "1")
	require.NoError(t, err)

	e.expectActive(5, 2)
	e.expectCount(5, 1)

	report, err := e.job.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, AuditReport{Checked: 1}, report)
	assert.NoError(t, e.mock.ExpectationsWereMet())
}

func TestAuditIsIdempotent(t *testing.T) {
	e := newAuditEnv(t)
	require.NoError(t, e.mr.Set(seckilldal.StockKey(6), "9"))

	e.expectActive(6, 1)
	e.expectCount(6, 1)
	e.expectRebuildReads(6, 1, 21)
	e.expectActive(6, 1)
	e.expectCount(6, 1)

	first, err := e.job.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, first.Repaired)

	second, err := e.job.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, AuditReport{Checked: 1}, second)
	assert.NoError(t, e.mock.ExpectationsWereMet())
}

func TestNeedsRepair(t *testing.T) {
	cases := []struct {
		name          string
		snap          seckilldal.StockSnapshot
		durableStock  int64
		durableOrders int64
		want          bool
	}{
		{"redis stock above durable", seckilldal.StockSnapshot{Stock: 5, StockExists: true}, 4, 0, true},
		{"redis stock below durable", seckilldal.StockSnapshot{Stock: 3, StockExists: true}, 4, 0, false},
		{"counter missing, stock left", seckilldal.StockSnapshot{}, 4, 0, true},
		{"counter missing, sold out", seckilldal.StockSnapshot{}, 0, 0, false},
		{"order set lost users", seckilldal.StockSnapshot{Stock: 0, StockExists: true, Orders: 1}, 0, 2, true},
		{"order set ahead", seckilldal.StockSnapshot{Stock: 0, StockExists: true, Orders: 3}, 0, 2, false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			snap := c.snap
			assert.Equal(t, c.want, needsRepair(&snap, c.durableStock, c.durableOrders))
		})
	}
}
