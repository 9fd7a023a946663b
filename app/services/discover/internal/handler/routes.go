package handler

import (
	"net/http"

	discover "TripHub/app/services/discover/internal/handler/discover"
	"TripHub/app/services/discover/internal/svc"

	"github.com/zeromicro/go-zero/rest"
)

func RegisterHandlers(server *rest.Server, serverCtx *svc.ServiceContext) {
	server.AddRoutes(
		rest.WithMiddlewares(
			[]rest.Middleware{serverCtx.OptionalAuth},
			[]rest.Route{
				{
					Method:  http.MethodGet,
					Path:    "/trips/:id",
					Handler: discover.GetTripHandler(serverCtx),
				},
			}...,
		),
		rest.WithPrefix("/api/v1"),
	)

	server.AddRoutes(
		[]rest.Route{
			{
				Method:  http.MethodGet,
				Path:    "/seckill/activities/:id",
				Handler: discover.GetActivityHandler(serverCtx),
			},
			{
				Method:  http.MethodGet,
				Path:    "/discover/hot-trips",
				Handler: discover.HotTripsHandler(serverCtx),
			},
			{
				Method:  http.MethodGet,
				Path:    "/discover/hot-destinations",
				Handler: discover.HotDestinationsHandler(serverCtx),
			},
		},
		rest.WithPrefix("/api/v1"),
	)
}
