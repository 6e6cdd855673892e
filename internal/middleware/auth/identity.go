package auth

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
)

// UserID returns the authenticated user's id from the request context.
func UserID(c echo.Context) (uint, error) {
	sub, _ := c.Get(CtxUserID).(string)
	id, err := strconv.ParseUint(sub, 10, 64)
	if err != nil || id == 0 {
		return 0, echo.NewHTTPError(http.StatusUnauthorized, "Authentication required")
	}
	return uint(id), nil
}
