package trip

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/zeromicro/go-zero/core/stores/builder"
	"github.com/zeromicro/go-zero/core/stores/sqlx"
)

var (
	tripFieldNames = builder.RawFieldNames(&Trip{})
	tripRows       = strings.Join(tripFieldNames, ",")
)

type (
	tripModel interface {
		FindOne(ctx context.Context, id int64) (*Trip, error)
	}

	defaultTripModel struct {
		conn  sqlx.SqlConn
		table string
	}

	Trip struct {
		Id              int64     `db:"id" json:"id"`
		UserId          int64     `db:"user_id" json:"user_id"`
		Title           string    `db:"title" json:"title"`
		DestinationCity string    `db:"destination_city" json:"destination_city"`
		Days            int64     `db:"days" json:"days"`
		Visibility      int64     `db:"visibility" json:"visibility"` // 0 private, 1 public
		ViewCount       int64     `db:"view_count" json:"view_count"`
		CreateTime      time.Time `db:"create_time" json:"create_time"`
		UpdateTime      time.Time `db:"update_time" json:"update_time"`
	}
)

func newTripModel(conn sqlx.SqlConn) *defaultTripModel {
	return &defaultTripModel{
		conn:  conn,
		table: "`trip`",
	}
}

func (m *defaultTripModel) FindOne(ctx context.Context, id int64) (*Trip, error) {
	query := fmt.Sprintf("select %s from %s where `id` = ? limit 1", tripRows, m.table)
	var resp Trip
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
