package order

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/zeromicro/go-zero/core/stores/builder"
	"github.com/zeromicro/go-zero/core/stores/sqlx"
)

var (
	ordersFieldNames = builder.RawFieldNames(&Orders{})
	ordersRows       = strings.Join(ordersFieldNames, ",")
)

type (
	ordersModel interface {
		Insert(ctx context.Context, data *Orders) (sql.Result, error)
		FindOne(ctx context.Context, id int64) (*Orders, error)
	}

	defaultOrdersModel struct {
		conn  sqlx.SqlConn
		table string
	}

	Orders struct {
		Id                int64         `db:"id"`
		UserId            int64         `db:"user_id"`
		TripId            sql.NullInt64 `db:"trip_id"`
		SeckillActivityId int64         `db:"seckill_activity_id"`
		Status            int64         `db:"status"` // 0 pending, 1 paid, 2 canceled, 3 ongoing, 4 finished
		Amount            int64         `db:"amount"` // cents
		OrderTime         time.Time     `db:"order_time"`
		PayTime           sql.NullTime  `db:"pay_time"`
		CancelTime        sql.NullTime  `db:"cancel_time"`
	}
)

func newOrdersModel(conn sqlx.SqlConn) *defaultOrdersModel {
	return &defaultOrdersModel{
		conn:  conn,
		table: "`orders`",
	}
}

func (m *defaultOrdersModel) FindOne(ctx context.Context, id int64) (*Orders, error) {
	query := fmt.Sprintf("select %s from %s where `id` = ? limit 1", ordersRows, m.table)
	var resp Orders
	err := m.conn.QueryRowCtx(ctx, &resp, query, id)
	switch err {
	case nil:
		return &resp, nil
	case sqlx.ErrNotFound:
		return nil, ErrNotFound
	default:
		return nil, err
	}
}

// Insert writes the row with its caller-assigned id.
func (m *defaultOrdersModel) Insert(ctx context.Context, data *Orders) (sql.Result, error) {
	query := fmt.Sprintf("insert into %s (%s) values (?, ?, ?, ?, ?, ?, ?, ?, ?)", m.table, ordersRows)
	return m.conn.ExecCtx(ctx, query, data.Id, data.UserId, data.TripId, data.SeckillActivityId,
		data.Status, data.Amount, data.OrderTime, data.PayTime, data.CancelTime)
}

func (m *defaultOrdersModel) tableName() string {
	return m.table
}
