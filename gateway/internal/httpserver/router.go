package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/kmoroz/storefront/gateway/internal/middleware"
	"github.com/kmoroz/storefront/internal/tokens"
)

type Deps struct {
	WebURL string
	APIURL string
	Codec  *tokens.Codec
}

func Register(e *echo.Echo, d *Deps) error {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	for _, m := range middleware.Common() {
		e.Use(m)
	}

	apiProxy, err := newProxy(d.APIURL, "")
	if err != nil {
		return err
	}
	webProxy, err := newProxy(d.WebURL, "")
	if err != nil {
		return err
	}

	e.Any("/api/*", apiProxy)

	// Admin pages never render for anyone the API would reject anyway.
	admin := e.Group("/admin", middleware.AdminGuard(d.Codec))
	admin.Any("", webProxy)
	admin.Any("/*", webProxy)

	e.Any("/*", webProxy)

	return nil
}
