package response

import (
	"context"
	"errors"
	"net/http"

	"TripHub/app/common/consts/errno"

	"github.com/zeromicro/go-zero/core/logx"
	xerrors "github.com/zeromicro/x/errors"
)

type Response struct {
	StatusCode int    `json:"code"`
	StatusMsg  string `json:"msg"`
}

type ResponseWithData struct {
	StatusCode int         `json:"code"`
	StatusMsg  string      `json:"msg"`
	Data       interface{} `json:"data,omitempty"`
}

func NewResponse(statusCode int, statusMsg string) Response {
	return Response{
		StatusCode: statusCode,
		StatusMsg:  statusMsg,
	}
}

func NewResponseWithData(statusCode int, statusMsg string, data interface{}) ResponseWithData {
	return ResponseWithData{
		StatusCode: statusCode,
		StatusMsg:  statusMsg,
		Data:       data,
	}
}

func Ok(data interface{}) ResponseWithData {
	return NewResponseWithData(errno.StatusOK, "ok", data)
}

// ErrorHandler renders coded errors as a regular envelope so clients always read "code".
func ErrorHandler(ctx context.Context, err error) (int, any) {
	var codeMsg *xerrors.CodeMsg
	if errors.As(err, &codeMsg) {
		return http.StatusOK, NewResponse(codeMsg.Code, codeMsg.Msg)
	}
	logx.WithContext(ctx).Errorw("unhandled request error", logx.Field("err", err))
	return http.StatusOK, NewResponse(errno.InternalError, "internal error")
}
