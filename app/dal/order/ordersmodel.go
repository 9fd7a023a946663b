package order

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/go-sql-driver/mysql"
	"github.com/zeromicro/go-zero/core/stores/sqlx"
)

const mysqlDuplicateEntry = 1062

var _ OrdersModel = (*customOrdersModel)(nil)

type (
	// OrdersModel is an interface to be customized, add more methods here,
	// and implement the added methods in customOrdersModel.
	// Orders are never cached: every read here must see what the materializer wrote.
	OrdersModel interface {
		ordersModel
		// InsertIfAbsent maps a primary/unique key clash to ErrDuplicateOrder.
		InsertIfAbsent(ctx context.Context, data *Orders) error
		ExistsByUserActivity(ctx context.Context, userId, activityId int64) (bool, error)
		CountByActivity(ctx context.Context, activityId int64) (int64, error)
		ListUserIdsByActivity(ctx context.Context, activityId int64) ([]int64, error)
	}

	customOrdersModel struct {
		*defaultOrdersModel
	}
)

// NewOrdersModel returns a model for the database table.
func NewOrdersModel(conn sqlx.SqlConn) OrdersModel {
	return &customOrdersModel{
		defaultOrdersModel: newOrdersModel(conn),
	}
}

func (m *customOrdersModel) InsertIfAbsent(ctx context.Context, data *Orders) error {
	_, err := m.Insert(ctx, data)
	if err == nil {
		return nil
	}
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) && myErr.Number == mysqlDuplicateEntry {
		return ErrDuplicateOrder
	}
	return err
}

func (m *customOrdersModel) ExistsByUserActivity(ctx context.Context, userId, activityId int64) (bool, error) {
	var id int64
	q := fmt.Sprintf("select `id` from %s where `user_id` = ? and `seckill_activity_id` = ? limit 1", m.table)
	err := m.conn.QueryRowCtx(ctx, &id, q, userId, activityId)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, sql.ErrNoRows):
		return false, nil
	default:
		return false, err
	}
}

func (m *customOrdersModel) CountByActivity(ctx context.Context, activityId int64) (int64, error) {
	var total int64
	q := fmt.Sprintf("select count(1) from %s where `seckill_activity_id` = ?", m.table)
	if err := m.conn.QueryRowCtx(ctx, &total, q, activityId); err != nil {
		return 0, err
	}
	return total, nil
}

func (m *customOrdersModel) ListUserIdsByActivity(ctx context.Context, activityId int64) ([]int64, error) {
	var ids []int64
	q := fmt.Sprintf("select distinct `user_id` from %s where `seckill_activity_id` = ?", m.table)
	if err := m.conn.QueryRowsCtx(ctx, &ids, q, activityId); err != nil {
		return nil, err
	}
	return ids, nil
}
