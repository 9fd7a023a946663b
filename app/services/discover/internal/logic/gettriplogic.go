package logic

import (
	"context"
	"errors"
	"strconv"

	"TripHub/app/common/cache"
	"TripHub/app/common/consts/biz"
	"TripHub/app/common/consts/errno"
	"TripHub/app/common/util"
	"TripHub/app/services/discover/internal/svc"
	"TripHub/app/services/discover/internal/types"

	"github.com/zeromicro/go-zero/core/logx"
	xerrors "github.com/zeromicro/x/errors"
)

type GetTripLogic struct {
	logx.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

func NewGetTripLogic(ctx context.Context, svcCtx *svc.ServiceContext) *GetTripLogic {
	return &GetTripLogic{
		Logger: logx.WithContext(ctx),
		ctx:    ctx,
		svcCtx: svcCtx,
	}
}

// 行程详情：逻辑过期缓存 + 未落库浏览量
func (l *GetTripLogic) GetTrip(req *types.GetTripReq) (*types.GetTripResp, error) {
	if req == nil || req.Id <= 0 {
		return nil, xerrors.New(errno.InvalidParam, "invalid trip id")
	}

	if exist, err := l.svcCtx.Bloom.ExistsCtx(l.ctx, []byte(strconv.FormatInt(req.Id, 10))); err != nil {
		l.Errorf("trip bloom exists failed: %v", err)
	} else if !exist {
		return nil, xerrors.New(errno.TripNotFound, "trip not found")
	}

	record, err := queryTrip(l.ctx, l.svcCtx, req.Id)
	if errors.Is(err, cache.ErrNotFound) {
		return nil, xerrors.New(errno.TripNotFound, "trip not found")
	}
	if err != nil {
		l.Errorw("query trip failed", logx.Field("trip_id", req.Id), logx.Field("err", err))
		return nil, xerrors.New(errno.InternalError, "internal error")
	}

	// 匿名访问可选
	userId, _ := util.UserIdFromCtx(l.ctx)
	if record.Visibility != biz.TripVisibilityPublic && record.UserId != userId {
		return nil, xerrors.New(errno.TripNotFound, "trip not found")
	}

	trip := toTrip(record)
	if delta, err := l.svcCtx.Views.PendingDelta(l.ctx, record.Id); err != nil {
		l.Errorw("read pending view delta failed", logx.Field("trip_id", record.Id), logx.Field("err", err))
	} else {
		trip.ViewCount += delta
	}

	counted, err := l.svcCtx.Views.RecordView(l.ctx, record, userId, l.svcCtx.Now())
	if err != nil {
		l.Errorw("record trip view failed", logx.Field("trip_id", record.Id), logx.Field("err", err))
	} else if counted {
		trip.ViewCount++
	}

	return &types.GetTripResp{
		StatusCode: errno.StatusOK,
		StatusMsg:  "ok",
		Trip:       &trip,
	}, nil
}
