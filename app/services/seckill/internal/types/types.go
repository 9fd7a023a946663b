package types

type SeckillReq struct {
	ActivityId int64 `path:"activityId"`
}

type SeckillResp struct {
	StatusCode int32  `json:"status_code"`
	StatusMsg  string `json:"status_msg"`
	// string: ids exceed the 53 bits a JS number can hold
	OrderId string `json:"order_id,omitempty"`
}
