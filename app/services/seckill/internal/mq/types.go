package mq

// OrderIntent is published once per admission and materialized into one pending order.
type OrderIntent struct {
	OrderId    int64 `json:"order_id"`
	UserId     int64 `json:"user_id"`
	ActivityId int64 `json:"activity_id"`
}
