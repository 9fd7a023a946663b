package mq

// Asynq task types for discover background work
const (
	TaskFlushViewCount = "discover:view_count:flush"
	TaskRefreshBloom   = "discover:bloom:refresh"
)
