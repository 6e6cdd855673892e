package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/kmoroz/storefront/internal/events"
	"github.com/kmoroz/storefront/internal/logging"
	mwauth "github.com/kmoroz/storefront/internal/middleware/auth"
	"github.com/kmoroz/storefront/internal/models"
	"github.com/kmoroz/storefront/internal/repo"
	"github.com/kmoroz/storefront/internal/util"
)

type OrderHandler struct {
	Repo     *repo.Repo
	Producer *events.Producer
}

func (h *OrderHandler) GetMyOrders(c echo.Context) error {
	userID, err := mwauth.UserID(c)
	if err != nil {
		return err
	}

	orders, err := h.Repo.ListOrdersByUser(c.Request().Context(), userID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, orders)
}

func (h *OrderHandler) GetMyOrder(c echo.Context) error {
	userID, err := mwauth.UserID(c)
	if err != nil {
		return err
	}
	id, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}

	order, items, err := h.Repo.FindOrder(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "order not found")
		}
		return err
	}
	// Another customer's order id yields the same 404 as a missing one.
	if order.UserID != userID {
		return echo.NewHTTPError(http.StatusNotFound, "order not found")
	}

	return c.JSON(http.StatusOK, echo.Map{"order": order, "items": items})
}

func (h *OrderHandler) ListOrders(c echo.Context) error {
	page := parseIntDefault(c.QueryParam("page"), 1)
	size := parseIntDefault(c.QueryParam("size"), util.DefaultPageSize)
	offset, limit := util.Calculate(page, size)

	orders, total, err := h.Repo.ListOrders(c.Request().Context(), offset, limit)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, map[string]any{
		"data": orders,
		"meta": pageMeta(page, limit, offset, total),
	})
}

func (h *OrderHandler) UpdateStatus(c echo.Context) error {
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
	if !models.ValidOrderStatus(req.Status) {
		return echo.NewHTTPError(http.StatusBadRequest, "unknown order status")
	}

	order, err := h.Repo.UpdateOrderStatus(c.Request().Context(), id, req.Status)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "order not found")
		}
		return err
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := h.Producer.PublishEvent(ctx, events.TopicOrderEvents, fmt.Sprint(order.ID), map[string]any{
		"type":     "order_status_changed",
		"order_id": order.ID,
		"status":   order.Status,
	}); err != nil {
		logging.FromContext(c.Request().Context()).Warn("event publish failed", "error", err)
	}

	return c.JSON(http.StatusOK, order)
}
