package main

import (
	"flag"
	"fmt"

	"TripHub/app/common/response"
	boot "TripHub/app/services/discover/internal/bootstrap"
	"TripHub/app/services/discover/internal/config"
	"TripHub/app/services/discover/internal/handler"
	"TripHub/app/services/discover/internal/svc"

	"github.com/zeromicro/go-zero/core/conf"
	"github.com/zeromicro/go-zero/rest"
	"github.com/zeromicro/go-zero/rest/httpx"
)

var configFile = flag.String("f", "etc/discover.yaml", "the config file")

func main() {
	flag.Parse()

	var c config.Config
	conf.MustLoad(*configFile, &c)

	server := rest.MustNewServer(c.RestConf)
	defer server.Stop()

	ctx := svc.NewServiceContext(c)
	defer ctx.Close()

	httpx.SetErrorHandlerCtx(response.ErrorHandler)
	handler.RegisterHandlers(server, ctx)

	// 浏览量回刷与布隆过滤器刷新
	if stop := boot.StartAsynq(ctx); stop != nil {
		defer stop()
	}

	fmt.Printf("Starting server at %s:%d...\n", c.Host, c.Port)
	server.Start()
}
