package logic

import (
	"context"

	"TripHub/app/common/consts/biz"
	"TripHub/app/common/consts/errno"
	tripdal "TripHub/app/dal/trip"
	"TripHub/app/services/discover/internal/svc"
	"TripHub/app/services/discover/internal/types"

	"github.com/zeromicro/go-zero/core/logx"
	xerrors "github.com/zeromicro/x/errors"
)

type HotDestinationsLogic struct {
	logx.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

func NewHotDestinationsLogic(ctx context.Context, svcCtx *svc.ServiceContext) *HotDestinationsLogic {
	return &HotDestinationsLogic{
		Logger: logx.WithContext(ctx),
		ctx:    ctx,
		svcCtx: svcCtx,
	}
}

func (l *HotDestinationsLogic) HotDestinations(req *types.HotDestinationsReq) (*types.HotDestinationsResp, error) {
	resp := &types.HotDestinationsResp{
		StatusCode:   errno.StatusOK,
		StatusMsg:    "ok",
		Destinations: []types.HotDestination{},
	}
	if req == nil || req.Limit <= 0 {
		return resp, nil
	}

	key := biz.HotDestinationKey
	switch req.Period {
	case "day":
		key = tripdal.DayRankKey(biz.HotDestDayKey, l.svcCtx.Now())
	case "week":
		key = tripdal.WeekRankKey(biz.HotDestWeekKey, l.svcCtx.Now())
	}

	pairs, err := l.svcCtx.Rankings.Top(l.ctx, key, clampLimit(req.Limit))
	if err != nil {
		l.Errorw("read hot destinations failed", logx.Field("period", req.Period), logx.Field("err", err))
		return nil, xerrors.New(errno.InternalError, "internal error")
	}
	for _, p := range pairs {
		resp.Destinations = append(resp.Destinations, types.HotDestination{City: p.Key, Score: p.Score})
	}
	return resp, nil
}
