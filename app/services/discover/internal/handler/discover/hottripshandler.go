package discover

import (
	"net/http"

	"TripHub/app/services/discover/internal/logic"
	"TripHub/app/services/discover/internal/svc"
	"TripHub/app/services/discover/internal/types"

	"github.com/zeromicro/go-zero/rest/httpx"
)

func HotTripsHandler(svcCtx *svc.ServiceContext) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req types.HotTripsReq
		if err := httpx.Parse(r, &req); err != nil {
			httpx.ErrorCtx(r.Context(), w, err)
			return
		}

		l := logic.NewHotTripsLogic(r.Context(), svcCtx)
		resp, err := l.HotTrips(&req)
		if err != nil {
			httpx.ErrorCtx(r.Context(), w, err)
		} else {
			httpx.OkJsonCtx(r.Context(), w, resp)
		}
	}
}
