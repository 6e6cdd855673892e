package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/kmoroz/storefront/internal/models"
	"github.com/kmoroz/storefront/internal/tokens"
)

// AdminGuard is the edge gate for admin navigation. It is a coarse duplicate
// of the API's own checks: its only job is to redirect before an admin page
// shell is ever rendered. Cookie first, Authorization header as fallback.
func AdminGuard(codec *tokens.Codec) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token := ""
			if cookie, err := c.Cookie("token"); err == nil {
				token = cookie.Value
			}
			if token == "" {
				header := c.Request().Header.Get(echo.HeaderAuthorization)
				if t, ok := strings.CutPrefix(header, "Bearer "); ok {
					token = t
				}
			}
			if token == "" {
				return c.Redirect(http.StatusFound, "/login")
			}

			claims, err := codec.Parse(token)
			if err != nil {
				return c.Redirect(http.StatusFound, "/login")
			}
			if claims.Role != models.RoleAdmin {
				return c.Redirect(http.StatusFound, "/unauthorized")
			}

			return next(c)
		}
	}
}
