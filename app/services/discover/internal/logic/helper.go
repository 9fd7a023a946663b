package logic

import (
	"context"
	"errors"

	"TripHub/app/common/cache"
	"TripHub/app/common/consts/biz"
	seckilldal "TripHub/app/dal/seckill"
	tripdal "TripHub/app/dal/trip"
	"TripHub/app/services/discover/internal/svc"
	"TripHub/app/services/discover/internal/types"
)

const maxBoardLimit = 50

// tripLoader adapts the model to the cache loader contract: nil, nil for a missing row.
func tripLoader(svcCtx *svc.ServiceContext) cache.Loader[int64, tripdal.Trip] {
	return func(ctx context.Context, id int64) (*tripdal.Trip, error) {
		t, err := svcCtx.Trips.FindOne(ctx, id)
		if errors.Is(err, tripdal.ErrNotFound) {
			return nil, nil
		}
		return t, err
	}
}

func activityLoader(svcCtx *svc.ServiceContext) cache.Loader[int64, seckilldal.SeckillActivity] {
	return func(ctx context.Context, id int64) (*seckilldal.SeckillActivity, error) {
		a, err := svcCtx.Activities.FindOneNoCache(ctx, id)
		if errors.Is(err, seckilldal.ErrNotFound) {
			return nil, nil
		}
		return a, err
	}
}

func queryTrip(ctx context.Context, svcCtx *svc.ServiceContext, id int64) (*tripdal.Trip, error) {
	return cache.QueryWithLogicalExpire(ctx, svcCtx.Cache, biz.CacheTripKey, id,
		tripLoader(svcCtx), biz.CacheTripTTL, biz.LockTripKey)
}

func toTrip(t *tripdal.Trip) types.Trip {
	return types.Trip{
		Id:              t.Id,
		UserId:          t.UserId,
		Title:           t.Title,
		DestinationCity: t.DestinationCity,
		Days:            t.Days,
		Visibility:      t.Visibility,
		ViewCount:       t.ViewCount,
		CreateTime:      t.CreateTime.Unix(),
	}
}

func clampLimit(limit int64) int64 {
	if limit > maxBoardLimit {
		return maxBoardLimit
	}
	return limit
}
