package seckill

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/zeromicro/go-zero/core/stores/cache"
	"github.com/zeromicro/go-zero/core/stores/sqlx"
)

var _ SeckillActivityModel = (*customSeckillActivityModel)(nil)

type (
	// SeckillActivityModel is an interface to be customized, add more methods here,
	// and implement the added methods in customSeckillActivityModel.
	SeckillActivityModel interface {
		seckillActivityModel
		// FindOneNoCache reads the row straight from mysql, for paths that must see durable truth.
		FindOneNoCache(ctx context.Context, id int64) (*SeckillActivity, error)
		// ListActive returns activities with status active whose window contains now.
		ListActive(ctx context.Context, now time.Time) ([]*SeckillActivity, error)
		// ListOpen returns active activities that have not ended yet, including upcoming ones.
		ListOpen(ctx context.Context, now time.Time) ([]*SeckillActivity, error)
		// DecrStock takes one unit if any is left; ErrRowsAffectedIsZero when stock is already 0.
		DecrStock(ctx context.Context, id int64) error
	}

	customSeckillActivityModel struct {
		*defaultSeckillActivityModel
	}
)

// NewSeckillActivityModel returns a model for the database table.
func NewSeckillActivityModel(conn sqlx.SqlConn, c cache.CacheConf, opts ...cache.Option) SeckillActivityModel {
	return &customSeckillActivityModel{
		defaultSeckillActivityModel: newSeckillActivityModel(conn, c, opts...),
	}
}

func (m *customSeckillActivityModel) FindOneNoCache(ctx context.Context, id int64) (*SeckillActivity, error) {
	var resp SeckillActivity
	query := fmt.Sprintf("select %s from %s where `id` = ? limit 1", seckillActivityRows, m.table)
	if err := m.QueryRowNoCacheCtx(ctx, &resp, query, id); err != nil {
		if err == sqlx.ErrNotFound {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &resp, nil
}

func (m *customSeckillActivityModel) ListActive(ctx context.Context, now time.Time) ([]*SeckillActivity, error) {
	var rows []*SeckillActivity
	query := fmt.Sprintf("select %s from %s where `status` = ? and `begin_time` <= ? and `end_time` >= ?", seckillActivityRows, m.table)
	if err := m.QueryRowsNoCacheCtx(ctx, &rows, query, 1, now, now); err != nil {
		return nil, err
	}
	return rows, nil
}

func (m *customSeckillActivityModel) ListOpen(ctx context.Context, now time.Time) ([]*SeckillActivity, error) {
	var rows []*SeckillActivity
	query := fmt.Sprintf("select %s from %s where `status` = ? and `end_time` >= ?", seckillActivityRows, m.table)
	if err := m.QueryRowsNoCacheCtx(ctx, &rows, query, 1, now); err != nil {
		return nil, err
	}
	return rows, nil
}

func (m *customSeckillActivityModel) DecrStock(ctx context.Context, id int64) error {
	q := fmt.Sprintf("update %s set `stock` = `stock` - 1 where `id` = ? and `stock` > 0", m.table)
	res, err := m.exec(ctx, id, q, id)
	if err != nil {
		return err
	}
	return ensureRows(res)
}

func ensureRows(res sql.Result) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrRowsAffectedIsZero
	}
	return nil
}
