package job

import (
	"context"
	"sort"
	"strconv"

	"TripHub/app/common/consts/biz"
	"TripHub/app/common/metrics"
	tripdal "TripHub/app/dal/trip"

	"github.com/zeromicro/go-zero/core/logx"
	"github.com/zeromicro/go-zero/core/stores/redis"
)

const defaultTopN = 100

type (
	topTripReader interface {
		ListTopPublic(ctx context.Context, limit int64) ([]*tripdal.Trip, error)
	}

	// RankingRebuildJob rebuilds the all-time trip and destination boards from trip.view_count.
	RankingRebuildJob struct {
		trips    topTripReader
		rankings tripdal.RankingModel
		topN     int64
	}
)

func NewRankingRebuildJob(trips topTripReader, rankings tripdal.RankingModel, topN int64) *RankingRebuildJob {
	if topN <= 0 {
		topN = defaultTopN
	}
	return &RankingRebuildJob{trips: trips, rankings: rankings, topN: topN}
}

func (j *RankingRebuildJob) Run(ctx context.Context) error {
	trips, err := j.trips.ListTopPublic(ctx, j.topN)
	if err != nil {
		return err
	}

	tripEntries, destEntries := boardEntries(trips)
	if err := j.replace(ctx, "trip", biz.HotTripKey, tripEntries); err != nil {
		return err
	}
	if err := j.replace(ctx, "dest", biz.HotDestinationKey, destEntries); err != nil {
		return err
	}

	logx.WithContext(ctx).Infow("hot rankings rebuilt",
		logx.Field("trips", len(tripEntries)), logx.Field("destinations", len(destEntries)))
	return nil
}

func (j *RankingRebuildJob) replace(ctx context.Context, board, key string, entries []redis.Pair) error {
	if err := j.rankings.Replace(ctx, key, entries); err != nil {
		metrics.RankingRebuild(board, "error")
		return err
	}
	if len(entries) == 0 {
		metrics.RankingRebuild(board, "cleared")
	} else {
		metrics.RankingRebuild(board, "ok")
	}
	return nil
}

// boardEntries scores trips by view_count and destinations by the sum of their trips' views,
// each trip contributing at least 1 so a listed destination never scores zero.
func boardEntries(trips []*tripdal.Trip) (tripEntries, destEntries []redis.Pair) {
	destScores := make(map[string]int64)
	for _, t := range trips {
		if t == nil || t.Id <= 0 {
			continue
		}
		tripEntries = append(tripEntries, redis.Pair{Key: strconv.FormatInt(t.Id, 10), Score: t.ViewCount})
		if t.DestinationCity != "" {
			destScores[t.DestinationCity] += max(t.ViewCount, 1)
		}
	}

	for city, score := range destScores {
		destEntries = append(destEntries, redis.Pair{Key: city, Score: score})
	}
	sort.Slice(destEntries, func(i, k int) bool {
		return destEntries[i].Score > destEntries[k].Score
	})
	return tripEntries, destEntries
}
