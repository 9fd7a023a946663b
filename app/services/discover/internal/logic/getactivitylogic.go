package logic

import (
	"context"
	"errors"

	"TripHub/app/common/cache"
	"TripHub/app/common/consts/biz"
	"TripHub/app/common/consts/errno"
	seckilldal "TripHub/app/dal/seckill"
	"TripHub/app/services/discover/internal/svc"
	"TripHub/app/services/discover/internal/types"

	"github.com/zeromicro/go-zero/core/logx"
	xerrors "github.com/zeromicro/x/errors"
)

type GetActivityLogic struct {
	logx.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

func NewGetActivityLogic(ctx context.Context, svcCtx *svc.ServiceContext) *GetActivityLogic {
	return &GetActivityLogic{
		Logger: logx.WithContext(ctx),
		ctx:    ctx,
		svcCtx: svcCtx,
	}
}

// GetActivity serves activity details through the pass-through cache. Stock is the live redis
// counter when one exists, since the cached row lags behind admissions.
func (l *GetActivityLogic) GetActivity(req *types.GetActivityReq) (*types.GetActivityResp, error) {
	if req == nil || req.Id <= 0 {
		return nil, xerrors.New(errno.InvalidParam, "invalid activity id")
	}

	record, err := cache.QueryWithPassThrough(l.ctx, l.svcCtx.Cache, biz.CacheActivityKey, req.Id,
		activityLoader(l.svcCtx), biz.CacheActivityTTL, biz.CacheNullTTL)
	if errors.Is(err, cache.ErrNotFound) {
		return nil, xerrors.New(errno.ActivityNotFound, "activity not found")
	}
	if err != nil {
		l.Errorw("query activity failed", logx.Field("activity_id", req.Id), logx.Field("err", err))
		return nil, xerrors.New(errno.InternalError, "internal error")
	}

	activity := toActivity(record)
	if snap, err := l.svcCtx.Stock.Snapshot(l.ctx, record.Id); err != nil {
		l.Errorw("read stock snapshot failed", logx.Field("activity_id", record.Id), logx.Field("err", err))
	} else if snap.StockExists {
		activity.Stock = max(snap.Stock, 0)
	}

	return &types.GetActivityResp{
		StatusCode: errno.StatusOK,
		StatusMsg:  "ok",
		Activity:   activity,
	}, nil
}

func toActivity(a *seckilldal.SeckillActivity) *types.Activity {
	return &types.Activity{
		Id:        a.Id,
		Title:     a.Title,
		PlaceId:   a.PlaceId,
		Stock:     a.Stock,
		BeginTime: a.BeginTime.Unix(),
		EndTime:   a.EndTime.Unix(),
		Status:    a.Status,
	}
}
