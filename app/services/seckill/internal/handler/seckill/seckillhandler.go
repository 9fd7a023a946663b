package seckill

import (
	"net/http"

	"TripHub/app/common/util"
	"TripHub/app/services/seckill/internal/logic"
	"TripHub/app/services/seckill/internal/svc"
	"TripHub/app/services/seckill/internal/types"

	"github.com/zeromicro/go-zero/rest/httpx"
)

func SeckillHandler(svcCtx *svc.ServiceContext) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req types.SeckillReq
		if err := httpx.Parse(r, &req); err != nil {
			httpx.ErrorCtx(r.Context(), w, err)
			return
		}

		l := logic.NewSeckillLogic(r.Context(), svcCtx)
		resp, err := l.Seckill(&req, util.ClientIp(r))
		if err != nil {
			httpx.ErrorCtx(r.Context(), w, err)
		} else {
			httpx.OkJsonCtx(r.Context(), w, resp)
		}
	}
}
