package discover

import (
	"net/http"

	"TripHub/app/services/discover/internal/logic"
	"TripHub/app/services/discover/internal/svc"
	"TripHub/app/services/discover/internal/types"

	"github.com/zeromicro/go-zero/rest/httpx"
)

func GetTripHandler(svcCtx *svc.ServiceContext) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req types.GetTripReq
		if err := httpx.Parse(r, &req); err != nil {
			httpx.ErrorCtx(r.Context(), w, err)
			return
		}

		l := logic.NewGetTripLogic(r.Context(), svcCtx)
		resp, err := l.GetTrip(&req)
		if err != nil {
			httpx.ErrorCtx(r.Context(), w, err)
		} else {
			httpx.OkJsonCtx(r.Context(), w, resp)
		}
	}
}
