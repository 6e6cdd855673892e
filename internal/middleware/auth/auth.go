package auth

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/kmoroz/storefront/internal/models"
	"github.com/kmoroz/storefront/internal/tokens"
)

const (
	CtxUserID = "user_id"
	CtxEmail  = "email"
	CtxRole   = "role"
)

// Middleware is the request gate: it accepts identity only from an
// `Authorization: Bearer <token>` header and attaches the verified claims
// to the request context.
func Middleware(codec *tokens.Codec) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get(echo.HeaderAuthorization)
			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || token == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "Authentication required")
			}

			claims, err := codec.Parse(token)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "Invalid token")
			}

			c.Set(CtxUserID, claims.Subject)
			c.Set(CtxEmail, claims.Email)
			c.Set(CtxRole, claims.Role)

			return next(c)
		}
	}
}

// RequireRole permits continuation only when the attached identity holds
// the required role. A missing identity is a deny, not a server error.
func RequireRole(required string) echo.MiddlewareFunc {
	msg := "Customer access required"
	if required == models.RoleAdmin {
		msg = "Admin access required"
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			role, _ := c.Get(CtxRole).(string)
			if role != required {
				return echo.NewHTTPError(http.StatusForbidden, msg)
			}
			return next(c)
		}
	}
}
