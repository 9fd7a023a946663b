package main

import (
	"flag"
	"fmt"

	boot "TripHub/app/services/reconcile/internal/bootstrap"
	"TripHub/app/services/reconcile/internal/config"
	"TripHub/app/services/reconcile/internal/svc"

	"github.com/zeromicro/go-zero/core/conf"
	"github.com/zeromicro/go-zero/core/service"
)

var configFile = flag.String("f", "etc/reconcile.yaml", "the config file")

func main() {
	flag.Parse()

	var c config.Config
	conf.MustLoad(*configFile, &c)

	ctx := svc.NewServiceContext(c)

	group := service.NewServiceGroup()
	defer group.Stop()
	group.Add(boot.NewAsynqService(ctx))

	fmt.Printf("Starting reconcile worker %s...\n", c.Name)
	group.Start()
}
