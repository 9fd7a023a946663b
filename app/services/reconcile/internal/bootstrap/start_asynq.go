package bootstrap

import (
	"time"

	"TripHub/app/services/reconcile/internal/mq"
	"TripHub/app/services/reconcile/internal/svc"

	"github.com/hibiken/asynq"
	"github.com/zeromicro/go-zero/core/logx"
)

const taskQueue = "reconcile"

// AsynqService runs the reconciliation scheduler and worker as a go-zero service.
type AsynqService struct {
	sc        *svc.ServiceContext
	server    *asynq.Server
	scheduler *asynq.Scheduler
	done      chan struct{}
}

func NewAsynqService(sc *svc.ServiceContext) *AsynqService {
	redisOpt := redisOpt(sc)
	return &AsynqService{
		sc: sc,
		server: asynq.NewServer(redisOpt, asynq.Config{
			Concurrency:     sc.Config.AsynqServerConf.Concurrency,
			Queues:          queues(sc.Config.AsynqServerConf.Queues),
			ShutdownTimeout: sc.Config.AsynqServerConf.ShutdownTimeout,
		}),
		scheduler: asynq.NewScheduler(redisOpt, &asynq.SchedulerOpts{Location: time.Local}),
		done:      make(chan struct{}),
	}
}

// Start blocks until Stop is called.
func (s *AsynqService) Start() {
	if err := s.server.Start(mq.NewAsynqMux(s.sc)); err != nil {
		logx.Errorw("asynq server start failed", logx.Field("err", err))
		return
	}

	// Unique 避免多个调度实例在同一周期重复入队
	sched := s.sc.Config.Schedule
	s.register(sched.SeckillAudit, mq.TaskSeckillAudit, sched.AuditLease)
	s.register(sched.RankingRebuild, mq.TaskRankingRebuild, sched.RankingLease)
	if err := s.scheduler.Start(); err != nil {
		logx.Errorw("asynq scheduler start failed", logx.Field("err", err))
	}

	<-s.done
}

func (s *AsynqService) Stop() {
	s.scheduler.Shutdown()
	s.server.Shutdown()
	close(s.done)
}

func (s *AsynqService) register(spec, taskType string, unique time.Duration) {
	if spec == "" {
		return
	}
	if unique < time.Second {
		unique = time.Minute
	}
	if _, err := s.scheduler.Register(spec, asynq.NewTask(taskType, nil),
		asynq.Queue(taskQueue), asynq.Unique(unique), asynq.MaxRetry(1)); err != nil {
		logx.Errorw("register periodic task failed", logx.Field("task", taskType), logx.Field("spec", spec), logx.Field("err", err))
	}
}

func redisOpt(sc *svc.ServiceContext) asynq.RedisClientOpt {
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

func queues(q map[string]int) map[string]int {
	if len(q) == 0 {
		return map[string]int{taskQueue: 1}
	}
	return q
}
