package util

import (
	"TripHub/app/common/consts/biz"
	"TripHub/app/common/consts/errno"
	"context"
	"net"
	"net/http"
	"strings"

	"github.com/zeromicro/x/errors"
)

func UserIdFromCtx(ctx context.Context) (int64, error) {
	if ctx == nil {
		return 0, errors.New(int(errno.TokenEmpty), "missing context")
	}

	switch val := ctx.Value(biz.USER_KEY).(type) {
	case int64:
		if val > 0 {
			return val, nil
		}
	}

	return 0, errors.New(int(errno.TokenEmpty), "unauthorized")
}

// WithUserId returns a child context carrying the caller identity.
func WithUserId(ctx context.Context, userId int64) context.Context {
	return context.WithValue(ctx, biz.USER_KEY, userId)
}

func InjectUserId2Ctx(r *http.Request, userId int64) {
	*r = *r.WithContext(WithUserId(r.Context(), userId))
}

// ClientIp prefers the first X-Forwarded-For hop, then X-Real-IP, then the peer address.
func ClientIp(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		if first := strings.TrimSpace(strings.Split(fwd, ",")[0]); first != "" {
			return first
		}
	}
	if real := strings.TrimSpace(r.Header.Get("X-Real-IP")); real != "" {
		return real
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
