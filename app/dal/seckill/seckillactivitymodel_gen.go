package seckill

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/zeromicro/go-zero/core/stores/builder"
	"github.com/zeromicro/go-zero/core/stores/cache"
	"github.com/zeromicro/go-zero/core/stores/sqlc"
	"github.com/zeromicro/go-zero/core/stores/sqlx"
)

var (
	seckillActivityFieldNames = builder.RawFieldNames(&SeckillActivity{})
	seckillActivityRows       = strings.Join(seckillActivityFieldNames, ",")

	cacheSeckillActivityIdPrefix = "cache:seckillActivity:id:"
)

type (
	seckillActivityModel interface {
		FindOne(ctx context.Context, id int64) (*SeckillActivity, error)
	}

	defaultSeckillActivityModel struct {
		sqlc.CachedConn
		table string
	}

	SeckillActivity struct {
		Id         int64     `db:"id"`
		Title      string    `db:"title"`
		PlaceId    int64     `db:"place_id"`
		Stock      int64     `db:"stock"`
		BeginTime  time.Time `db:"begin_time"`
		EndTime    time.Time `db:"end_time"`
		Status     int64     `db:"status"` // 0 inactive, 1 active, 2 ended
		CreateTime time.Time `db:"create_time"`
		UpdateTime time.Time `db:"update_time"`
	}
)

func newSeckillActivityModel(conn sqlx.SqlConn, c cache.CacheConf, opts ...cache.Option) *defaultSeckillActivityModel {
	return &defaultSeckillActivityModel{
		CachedConn: sqlc.NewConn(conn, c, opts...),
		table:      "`seckill_activity`",
	}
}

func (m *defaultSeckillActivityModel) FindOne(ctx context.Context, id int64) (*SeckillActivity, error) {
	seckillActivityIdKey := fmt.Sprintf("%s%v", cacheSeckillActivityIdPrefix, id)
	var resp SeckillActivity
	err := m.QueryRowCtx(ctx, &resp, seckillActivityIdKey, func(ctx context.Context, conn sqlx.SqlConn, v any) error {
		query := fmt.Sprintf("select %s from %s where `id` = ? limit 1", seckillActivityRows, m.table)
		return conn.QueryRowCtx(ctx, v, query, id)
	})
	switch err {
	case nil:
		return &resp, nil
	case sqlc.ErrNotFound:
		return nil, ErrNotFound
	default:
		return nil, err
	}
}

func (m *defaultSeckillActivityModel) formatPrimary(primary any) string {
	return fmt.Sprintf("%s%v", cacheSeckillActivityIdPrefix, primary)
}

func (m *defaultSeckillActivityModel) exec(ctx context.Context, id int64, query string, args ...any) (sql.Result, error) {
	return m.ExecCtx(ctx, func(ctx context.Context, conn sqlx.SqlConn) (sql.Result, error) {
		return conn.ExecCtx(ctx, query, args...)
	}, m.formatPrimary(id))
}

func (m *defaultSeckillActivityModel) tableName() string {
	return m.table
}
