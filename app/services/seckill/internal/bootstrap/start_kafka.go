package bootstrap

import (
	"context"

	"TripHub/app/services/seckill/internal/mq"
	"TripHub/app/services/seckill/internal/svc"

	"github.com/zeromicro/go-zero/core/logx"
	"github.com/zeromicro/go-zero/core/threading"
)

// StartKafka starts the order intent consumer; returns a stop func.
func StartKafka(sc *svc.ServiceContext) func() {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	// kafka 消费者
	threading.GoSafe(func() {
		defer close(done)
		if err := mq.StartOrderConsumer(ctx, sc); err != nil {
			logx.Errorw("order consumer stopped", logx.Field("err", err))
		}
	})

	return func() {
		cancel()
		<-done
	}
}
