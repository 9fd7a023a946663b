package mq

// Asynq task types for reconciliation
const (
	TaskSeckillAudit   = "reconcile:seckill:audit"
	TaskRankingRebuild = "reconcile:ranking:rebuild"
)
