package bootstrap

import (
	"time"

	"TripHub/app/services/discover/internal/mq"
	"TripHub/app/services/discover/internal/svc"

	"github.com/hibiken/asynq"
	"github.com/zeromicro/go-zero/core/logx"
	"github.com/zeromicro/go-zero/core/threading"
)

const taskQueue = "discover"

// StartAsynq starts the periodic task scheduler and its worker; returns a stop func.
func StartAsynq(sc *svc.ServiceContext) func() {
	redisOpt := RedisOpt(sc)

	srv := asynq.NewServer(redisOpt, asynq.Config{
		Concurrency:     sc.Config.AsynqServerConf.Concurrency,
		Queues:          queues(sc.Config.AsynqServerConf.Queues),
		ShutdownTimeout: sc.Config.AsynqServerConf.ShutdownTimeout,
	})
	mux := mq.NewAsynqMux(sc)
	threading.GoSafe(func() {
		if err := srv.Run(mux); err != nil {
			logx.Errorw("asynq server stopped", logx.Field("err", err))
		}
	})

	// 多实例部署时 Unique 保证每个周期只入队一次
	scheduler := asynq.NewScheduler(redisOpt, &asynq.SchedulerOpts{Location: time.Local})
	register(scheduler, sc.Config.ViewFlushSpec, mq.TaskFlushViewCount, 9*time.Second)
	register(scheduler, sc.Config.BloomRefreshSpec, mq.TaskRefreshBloom, 5*time.Minute)
	if err := scheduler.Start(); err != nil {
		logx.Errorw("asynq scheduler start failed", logx.Field("err", err))
	}

	return func() {
		scheduler.Shutdown()
		srv.Shutdown()
	}
}

func RedisOpt(sc *svc.ServiceContext) asynq.RedisClientOpt {
	addr := sc.Config.AsynqConf.Addr
	if addr == "" {
		addr = sc.Config.RedisConf.Host
	}
	return asynq.RedisClientOpt{
		Addr:     addr,
		Password: sc.Config.AsynqConf.Password,
		DB:       sc.Config.AsynqConf.DB,
	}
}

func register(s *asynq.Scheduler, spec, taskType string, unique time.Duration) {
	if spec == "" {
		return
	}
	if _, err := s.Register(spec, asynq.NewTask(taskType, nil),
		asynq.Queue(taskQueue), asynq.Unique(unique), asynq.MaxRetry(0)); err != nil {
		logx.Errorw("register periodic task failed", logx.Field("task", taskType), logx.Field("spec", spec), logx.Field("err", err))
	}
}

func queues(q map[string]int) map[string]int {
	if len(q) == 0 {
		return map[string]int{taskQueue: 1}
	}
	return q
}
