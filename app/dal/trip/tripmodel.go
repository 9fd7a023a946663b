package trip

import (
	"context"
	"fmt"

	"github.com/zeromicro/go-zero/core/stores/sqlx"
)

var _ TripModel = (*customTripModel)(nil)

type (
	// TripModel is an interface to be customized, add more methods here,
	// and implement the added methods in customTripModel.
	TripModel interface {
		tripModel
		FindAllIds(ctx context.Context) ([]int64, error)
		// ListTopPublic returns public trips ordered by view_count desc.
		ListTopPublic(ctx context.Context, limit int64) ([]*Trip, error)
		IncrViewCount(ctx context.Context, id, delta int64) error
	}

	customTripModel struct {
		*defaultTripModel
	}
)

// NewTripModel returns a model for the database table.
func NewTripModel(conn sqlx.SqlConn) TripModel {
	return &customTripModel{
		defaultTripModel: newTripModel(conn),
	}
}

func (m *customTripModel) FindAllIds(ctx context.Context) ([]int64, error) {
	var ids []int64
	q := fmt.Sprintf("select `id` from %s", m.table)
	if err := m.conn.QueryRowsCtx(ctx, &ids, q); err != nil {
		return nil, err
	}
	return ids, nil
}

func (m *customTripModel) ListTopPublic(ctx context.Context, limit int64) ([]*Trip, error) {
	if limit <= 0 {
		return nil, ErrInvalidParam
	}
	var rows []*Trip
	q := fmt.Sprintf("select %s from %s where `visibility` = 1 order by `view_count` desc limit ?", tripRows, m.table)
	if err := m.conn.QueryRowsCtx(ctx, &rows, q, limit); err != nil {
		return nil, err
	}
	return rows, nil
}

func (m *customTripModel) IncrViewCount(ctx context.Context, id, delta int64) error {
	if delta <= 0 {
		return ErrInvalidParam
	}
	q := fmt.Sprintf("update %s set `view_count` = `view_count` + ? where `id` = ?", m.table)
	_, err := m.conn.ExecCtx(ctx, q, delta, id)
	return err
}
