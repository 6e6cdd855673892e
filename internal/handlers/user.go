package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/kmoroz/storefront/internal/repo"
	"github.com/kmoroz/storefront/internal/service"
	"github.com/kmoroz/storefront/internal/util"
)

// UserAdminHandler covers the admin-gated user management surface.
type UserAdminHandler struct {
	Repo *repo.Repo
	Svc  *service.AuthService
}

func (h *UserAdminHandler) ListUsers(c echo.Context) error {
	page := parseIntDefault(c.QueryParam("page"), 1)
	size := parseIntDefault(c.QueryParam("size"), util.DefaultPageSize)
	offset, limit := util.Calculate(page, size)

	users, total, err := h.Repo.ListUsers(c.Request().Context(), offset, limit)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, map[string]any{
		"data": users,
		"meta": pageMeta(page, limit, offset, total),
	})
}

func (h *UserAdminHandler) ChangeRole(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}

	var req struct {
		Role string `json:"role"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	user, err := h.Svc.ChangeRole(c.Request().Context(), id, req.Role)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUnknownRole):
			return echo.NewHTTPError(http.StatusBadRequest, "unknown role")
		case errors.Is(err, repo.ErrNotFound):
			return echo.NewHTTPError(http.StatusNotFound, "user not found")
		}
		return err
	}
	return c.JSON(http.StatusOK, user)
}

func (h *UserAdminHandler) ChangeStatus(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}

	var req struct {
		Status string `json:"status"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	user, err := h.Svc.ChangeStatus(c.Request().Context(), id, req.Status)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUnknownStatus):
			return echo.NewHTTPError(http.StatusBadRequest, "unknown status")
		case errors.Is(err, repo.ErrNotFound):
			return echo.NewHTTPError(http.StatusNotFound, "user not found")
		}
		return err
	}
	return c.JSON(http.StatusOK, user)
}
