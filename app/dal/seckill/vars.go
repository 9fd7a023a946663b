package seckill

import (
	"errors"

	"github.com/zeromicro/go-zero/core/stores/sqlx"
)

var ErrNotFound = sqlx.ErrNotFound
var ErrRowsAffectedIsZero = errors.New("affected rows is zero")
