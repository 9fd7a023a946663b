package main

import (
	"context"
	"flag"
	"fmt"

	"TripHub/app/common/response"
	boot "TripHub/app/services/seckill/internal/bootstrap"
	"TripHub/app/services/seckill/internal/config"
	"TripHub/app/services/seckill/internal/handler"
	"TripHub/app/services/seckill/internal/svc"

	"github.com/zeromicro/go-zero/core/conf"
	"github.com/zeromicro/go-zero/core/logx"
	"github.com/zeromicro/go-zero/rest"
	"github.com/zeromicro/go-zero/rest/httpx"
	"github.com/zeromicro/zero-contrib/zrpc/registry/consul"
)

var configFile = flag.String("f", "etc/seckill.yaml", "the config file")

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

	// 预热库存，已存在的计数器不覆盖
	if _, err := boot.WarmUpStock(context.Background(), ctx); err != nil {
		logx.Errorw("warm up seckill stock failed", logx.Field("err", err))
	}

	if stop := boot.StartKafka(ctx); stop != nil {
		defer stop()
	}

	if c.Consul.Host != "" {
		if err := consul.RegisterService(fmt.Sprintf("%s:%d", c.Host, c.Port), c.Consul); err != nil {
			logx.Errorw("register service error", logx.Field("err", err))
			panic(err)
		}
	}

	fmt.Printf("Starting server at %s:%d...\n", c.Host, c.Port)
	server.Start()
}
