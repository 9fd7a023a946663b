package logic

import (
	"context"
	"errors"
	"strconv"

	"TripHub/app/common/cache"
	"TripHub/app/common/consts/biz"
	"TripHub/app/common/consts/errno"
	tripdal "TripHub/app/dal/trip"
	"TripHub/app/services/discover/internal/svc"
	"TripHub/app/services/discover/internal/types"

	"github.com/zeromicro/go-zero/core/logx"
	xerrors "github.com/zeromicro/x/errors"
)

type HotTripsLogic struct {
	logx.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

func NewHotTripsLogic(ctx context.Context, svcCtx *svc.ServiceContext) *HotTripsLogic {
	return &HotTripsLogic{
		Logger: logx.WithContext(ctx),
		ctx:    ctx,
		svcCtx: svcCtx,
	}
}

// 热门行程榜单
func (l *HotTripsLogic) HotTrips(req *types.HotTripsReq) (*types.HotTripsResp, error) {
	resp := &types.HotTripsResp{
		StatusCode: errno.StatusOK,
		StatusMsg:  "ok",
		Trips:      []types.HotTrip{},
	}
	if req == nil || req.Limit <= 0 {
		return resp, nil
	}

	pairs, err := l.svcCtx.Rankings.Top(l.ctx, hotTripKey(req.Period, l.svcCtx), clampLimit(req.Limit))
	if err != nil {
		l.Errorw("read hot trips failed", logx.Field("period", req.Period), logx.Field("err", err))
		return nil, xerrors.New(errno.InternalError, "internal error")
	}

	for _, p := range pairs {
		id, err := strconv.ParseInt(p.Key, 10, 64)
		if err != nil {
			continue
		}
		record, err := queryTrip(l.ctx, l.svcCtx, id)
		if err != nil {
			if !errors.Is(err, cache.ErrNotFound) {
				l.Errorw("load hot trip failed", logx.Field("trip_id", id), logx.Field("err", err))
			}
			continue
		}
		// 榜单可能滞后于可见性变更
		if record.Visibility != biz.TripVisibilityPublic {
			continue
		}

		trip := toTrip(record)
		if delta, err := l.svcCtx.Views.PendingDelta(l.ctx, id); err == nil {
			trip.ViewCount += delta
		}
		resp.Trips = append(resp.Trips, types.HotTrip{Trip: trip, Score: p.Score})
	}
	return resp, nil
}

func hotTripKey(period string, svcCtx *svc.ServiceContext) string {
	switch period {
	case "day":
		return tripdal.DayRankKey(biz.HotTripDayKey, svcCtx.Now())
	case "week":
		return tripdal.WeekRankKey(biz.HotTripWeekKey, svcCtx.Now())
	default:
		return biz.HotTripKey
	}
}
