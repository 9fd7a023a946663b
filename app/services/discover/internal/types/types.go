package types

type GetTripReq struct {
	Id int64 `path:"id"`
}

type Trip struct {
	Id              int64  `json:"id"`
	UserId          int64  `json:"user_id"`
	Title           string `json:"title"`
	DestinationCity string `json:"destination_city"`
	Days            int64  `json:"days"`
	Visibility      int64  `json:"visibility"`
	ViewCount       int64  `json:"view_count"`
	CreateTime      int64  `json:"create_time"`
}

type GetTripResp struct {
	StatusCode int32  `json:"status_code"`
	StatusMsg  string `json:"status_msg"`
	Trip       *Trip  `json:"trip,omitempty"`
}

type GetActivityReq struct {
	Id int64 `path:"id"`
}

type Activity struct {
	Id        int64  `json:"id"`
	Title     string `json:"title"`
	PlaceId   int64  `json:"place_id"`
	Stock     int64  `json:"stock"`
	BeginTime int64  `json:"begin_time"`
	EndTime   int64  `json:"end_time"`
	Status    int64  `json:"status"`
}

type GetActivityResp struct {
	StatusCode int32     `json:"status_code"`
	StatusMsg  string    `json:"status_msg"`
	Activity   *Activity `json:"activity,omitempty"`
}

type HotTripsReq struct {
	Limit  int64  `form:"limit,default=10"`
	Period string `form:"period,default=all,options=all|day|week"`
}

type HotTrip struct {
	Trip
	Score int64 `json:"score"`
}

type HotTripsResp struct {
	StatusCode int32     `json:"status_code"`
	StatusMsg  string    `json:"status_msg"`
	Trips      []HotTrip `json:"trips"`
}

type HotDestinationsReq struct {
	Limit  int64  `form:"limit,default=10"`
	Period string `form:"period,default=all,options=all|day|week"`
}

type HotDestination struct {
	City  string `json:"city"`
	Score int64  `json:"score"`
}

type HotDestinationsResp struct {
	StatusCode   int32            `json:"status_code"`
	StatusMsg    string           `json:"status_msg"`
	Destinations []HotDestination `json:"destinations"`
}
