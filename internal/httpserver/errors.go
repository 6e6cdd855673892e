package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/kmoroz/storefront/internal/logging"
)

// HTTPErrorHandler renders every error as {"error": "<message>"}. Anything
// that is not an echo.HTTPError becomes a 500 with a generic body; the real
// cause stays in the server log.
func HTTPErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	code := http.StatusInternalServerError
	msg := "Internal server error"

	if he, ok := err.(*echo.HTTPError); ok {
		code = he.Code
		if m, ok := he.Message.(string); ok {
			msg = m
		} else {
			msg = http.StatusText(code)
		}
	} else {
		logging.FromContext(c.Request().Context()).Error("unhandled error", "error", err)
	}

	if c.Request().Method == http.MethodHead {
		_ = c.NoContent(code)
		return
	}
	_ = c.JSON(code, map[string]string{"error": msg})
}
