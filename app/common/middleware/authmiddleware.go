package middleware

import (
	"errors"
	"net/http"
	"strings"

	"TripHub/app/common/consts/biz"
	"TripHub/app/common/consts/errno"
	"TripHub/app/common/util"

	"github.com/golang-jwt/jwt/v4"
	"github.com/zeromicro/go-zero/core/logx"
	"github.com/zeromicro/go-zero/rest/httpx"
	xerrors "github.com/zeromicro/x/errors"
)

// AuthMiddleware validates the access token locally and puts the caller id into the request context.
type AuthMiddleware struct {
	secret   string
	optional bool
}

func NewAuthMiddleware(secret string) *AuthMiddleware {
	return &AuthMiddleware{secret: secret}
}

// NewOptionalAuthMiddleware lets anonymous requests through; a valid token still identifies the caller.
func NewOptionalAuthMiddleware(secret string) *AuthMiddleware {
	return &AuthMiddleware{secret: secret, optional: true}
}

func (m *AuthMiddleware) Handle(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		accessToken := tokenFromRequest(r)
		if accessToken == "" {
			if m.optional {
				next(w, r)
				return
			}
			httpx.ErrorCtx(r.Context(), w, xerrors.New(int(errno.TokenEmpty), "token is null"))
			return
		}

		claims, err := parseToken(accessToken, m.secret)
		if err != nil {
			if m.optional {
				next(w, r)
				return
			}
			var ve *jwt.ValidationError
			if errors.As(err, &ve) && ve.Errors&jwt.ValidationErrorExpired != 0 {
				httpx.ErrorCtx(r.Context(), w, xerrors.New(int(errno.AccessTokenExpired), "access token expired"))
				return
			}
			logx.WithContext(r.Context()).Infow("reject invalid token", logx.Field("err", err))
			httpx.ErrorCtx(r.Context(), w, xerrors.New(int(errno.TokenInvalid), "invalid token"))
			return
		}

		util.InjectUserId2Ctx(r, claims.UserID)
		next(w, r)
	}
}

func tokenFromRequest(r *http.Request) string {
	if cookie, err := r.Cookie(biz.ACCESSTOKEN); err == nil && cookie.Value != "" {
		return cookie.Value
	}
	if headerToken := r.Header.Get(biz.ACCESSTOKEN); headerToken != "" {
		return headerToken
	}
	if bearer := r.Header.Get("Authorization"); strings.HasPrefix(bearer, "Bearer ") {
		return strings.TrimPrefix(bearer, "Bearer ")
	}
	return ""
}
