package trip

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zeromicro/go-zero/core/stores/sqlx"
)

func newTestTripModel(t *testing.T) (TripModel, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewTripModel(sqlx.NewSqlConnFromDB(db)), mock
}

func TestListTopPublic(t *testing.T) {
	m, mock := newTestTripModel(t)
	now := time.Now()
	cols := []string{"id", "user_id", "title", "destination_city", "days", "visibility", "view_count", "create_time", "update_time"}

	mock.ExpectQuery(regexp.QuoteMeta("where `visibility` = 1 order by `view_count` desc limit ?")).
		WithArgs(int64(100)).
		WillReturnRows(sqlmock.NewRows(cols).
			AddRow(int64(1), int64(9), "Alps", "Zermatt", int64(5), int64(1), int64(120), now, now).
			AddRow(int64(2), int64(9), "Coast", "Porto", int64(3), int64(1), int64(40), now, now))

	rows, err := m.ListTopPublic(context.Background(), 100)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Zermatt", rows[0].DestinationCity)
	assert.NoError(t, mock.ExpectationsWereMet())

	_, err = m.ListTopPublic(context.Background(), 0)
	assert.ErrorIs(t, err, ErrInvalidParam)
}

func TestIncrViewCount(t *testing.T) {
	m, mock := newTestTripModel(t)

	mock.ExpectExec(regexp.QuoteMeta("update `trip` set `view_count` = `view_count` + ? where `id` = ?")).
		WithArgs(int64(4), int64(2)).WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, m.IncrViewCount(context.Background(), 2, 4))
	assert.ErrorIs(t, m.IncrViewCount(context.Background(), 2, 0), ErrInvalidParam)
	assert.NoError(t, mock.ExpectationsWereMet())
}
