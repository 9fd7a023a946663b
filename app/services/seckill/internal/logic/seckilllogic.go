package logic

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"TripHub/app/common/consts/biz"
	"TripHub/app/common/consts/errno"
	"TripHub/app/common/metrics"
	"TripHub/app/common/util"
	seckilldal "TripHub/app/dal/seckill"
	"TripHub/app/services/seckill/internal/mq"
	"TripHub/app/services/seckill/internal/svc"
	"TripHub/app/services/seckill/internal/types"

	"github.com/zeromicro/go-zero/core/logx"
	xerrors "github.com/zeromicro/x/errors"
)

type SeckillLogic struct {
	logx.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

func NewSeckillLogic(ctx context.Context, svcCtx *svc.ServiceContext) *SeckillLogic {
	return &SeckillLogic{
		Logger: logx.WithContext(ctx),
		ctx:    ctx,
		svcCtx: svcCtx,
	}
}

// 秒杀下单：限流 -> 原子扣减 -> 投递消息
func (l *SeckillLogic) Seckill(req *types.SeckillReq, clientIp string) (*types.SeckillResp, error) {
	if req == nil || req.ActivityId <= 0 {
		return nil, xerrors.New(errno.InvalidParam, "invalid activity id")
	}

	userId, err := util.UserIdFromCtx(l.ctx)
	if err != nil {
		return nil, err
	}

	if !l.svcCtx.IpLimiter.Allow(l.ctx, fmt.Sprintf("%d:%s", req.ActivityId, clientIp)) ||
		!l.svcCtx.UserLimiter.Allow(l.ctx, fmt.Sprintf("%d:%d", req.ActivityId, userId)) {
		metrics.SeckillAdmission("rate_limited")
		return &types.SeckillResp{
			StatusCode: errno.TooManyRequests,
			StatusMsg:  "too many requests",
		}, nil
	}

	admission, err := l.Admit(req.ActivityId, userId)
	if err != nil {
		metrics.SeckillAdmission("error")
		l.Errorw("seckill admission failed",
			logx.Field("activity_id", req.ActivityId), logx.Field("user_id", userId), logx.Field("err", err))
		return nil, xerrors.New(errno.InternalError, "seckill unavailable, try again later")
	}

	metrics.SeckillAdmission(admission.Reason().String())
	if orderId, ok := admission.OrderId(); ok {
		return &types.SeckillResp{
			StatusCode: errno.StatusOK,
			StatusMsg:  "ok",
			OrderId:    strconv.FormatInt(orderId, 10),
		}, nil
	}

	switch admission.Reason() {
	case InsufficientStock:
		return &types.SeckillResp{StatusCode: errno.SeckillStockNotEnough, StatusMsg: "sold out"}, nil
	case DuplicateAdmission:
		return &types.SeckillResp{StatusCode: errno.SeckillDuplicate, StatusMsg: "already ordered"}, nil
	default:
		return &types.SeckillResp{StatusCode: errno.SeckillNotActive, StatusMsg: "activity not active"}, nil
	}
}

// Admit reserves one unit of activityId for userId. A non-nil error means redis or mysql failed
// and nothing can be said about the reservation; rejections are values, not errors.
func (l *SeckillLogic) Admit(activityId, userId int64) (Admission, error) {
	// 不走行缓存，活动下线要立即生效
	activity, err := l.svcCtx.Activities.FindOneNoCache(l.ctx, activityId)
	if errors.Is(err, seckilldal.ErrNotFound) {
		return rejected(NotActive), nil
	}
	if err != nil {
		return Admission{}, err
	}

	now := l.svcCtx.Now()
	if activity.Status != biz.ActivityActive || now.Before(activity.BeginTime) || now.After(activity.EndTime) {
		return rejected(NotActive), nil
	}

	res, err := l.svcCtx.Stock.Reserve(l.ctx, activityId, userId)
	if err != nil {
		return Admission{}, err
	}
	switch res {
	case seckilldal.SoldOut:
		return rejected(InsufficientStock), nil
	case seckilldal.AlreadyOrdered:
		return rejected(DuplicateAdmission), nil
	}

	orderId, err := l.svcCtx.IdWorker.NextId(l.ctx, "order")
	if err != nil {
		// the unit stays reserved in redis; reconciliation only ever narrows this
		return Admission{}, err
	}

	intent := mq.OrderIntent{OrderId: orderId, UserId: userId, ActivityId: activityId}
	if err := mq.PublishOrderIntent(l.ctx, l.svcCtx, intent); err != nil {
		// no rollback: the reservation is kept and the gap is left to reconciliation
		l.Errorw("publish order intent failed",
			logx.Field("order_id", orderId), logx.Field("activity_id", activityId),
			logx.Field("user_id", userId), logx.Field("err", err))
	}

	return admitted(orderId), nil
}
