package middleware

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/unimart/pkg/tokens"
)

const (
	UserIDKey = "user_id"
	RoleKey   = "role"
)

// Pair is a freshly issued access/refresh token pair.
type Pair struct {
	AccessToken  string
	RefreshToken string
	AccessExp    time.Time
	RefreshExp   time.Time
}

// RefreshFunc rotates a refresh token into a new pair.
type RefreshFunc func(ctx context.Context, refreshToken string) (*Pair, error)

// AutoRefreshMiddleware authenticates by the accessToken cookie (or a Bearer
// header) and, when the access token has expired, rotates the refreshToken
// cookie transparently.
type AutoRefreshMiddleware struct {
	JWTSecret []byte
	Refresh   RefreshFunc
}

func NewAutoRefreshMiddleware(secret []byte, refresh RefreshFunc) *AutoRefreshMiddleware {
	return &AutoRefreshMiddleware{JWTSecret: secret, Refresh: refresh}
}

func (m *AutoRefreshMiddleware) RequireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		access := accessToken(c)
		if access == "" {
			return echo.NewHTTPError(http.StatusUnauthorized, "missing access token")
		}

		claims, err := tokens.AccessClaimsFromToken(access, m.JWTSecret)
		if err != nil {
			if !errors.Is(err, jwt.ErrTokenExpired) || m.Refresh == nil {
				clearAuthCookies(c)
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid access token")
			}
			if claims, err = m.refresh(c); err != nil {
				clearAuthCookies(c)
				return err
			}
		}

		if err := setUserContext(c, claims); err != nil {
			return err
		}
		return next(c)
	}
}

func (m *AutoRefreshMiddleware) refresh(c echo.Context) (*tokens.AccessClaims, error) {
	refreshCookie, err := c.Cookie(tokens.RefreshCookie)
	if err != nil || refreshCookie.Value == "" {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "refresh token missing")
	}

	pair, err := m.Refresh(c.Request().Context(), refreshCookie.Value)
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "refresh failed")
	}
	c.SetCookie(tokens.CreateCookie(tokens.AccessCookie, pair.AccessToken, "/", pair.AccessExp))
	c.SetCookie(tokens.CreateCookie(tokens.RefreshCookie, pair.RefreshToken, "/", pair.RefreshExp))

	claims, err := tokens.AccessClaimsFromToken(pair.AccessToken, m.JWTSecret)
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "new access token invalid")
	}
	return claims, nil
}

func accessToken(c echo.Context) string {
	if ck, err := c.Cookie(tokens.AccessCookie); err == nil && ck.Value != "" {
		return ck.Value
	}
	if h := c.Request().Header.Get(echo.HeaderAuthorization); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimPrefix(h, "Bearer ")
	}
	return ""
}

func clearAuthCookies(c echo.Context) {
	c.SetCookie(tokens.DeleteCookie(tokens.AccessCookie, "/"))
	c.SetCookie(tokens.DeleteCookie(tokens.RefreshCookie, "/"))
}

func setUserContext(c echo.Context, claims *tokens.AccessClaims) error {
	id, err := strconv.ParseUint(claims.Subject, 10, 64)
	if err != nil || id == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid subject")
	}
	c.Set(UserIDKey, uint(id))
	c.Set(RoleKey, claims.Role)
	return nil
}

// UserID returns the principal set by RequireAuth.
func UserID(c echo.Context) (uint, bool) {
	id, ok := c.Get(UserIDKey).(uint)
	return id, ok && id != 0
}
