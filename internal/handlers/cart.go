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
	"github.com/kmoroz/storefront/internal/repo"
)

type CartHandler struct {
	Repo     *repo.Repo
	Producer *events.Producer
}

func (h *CartHandler) publish(c echo.Context, topic, key string, event map[string]any) {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := h.Producer.PublishEvent(ctx, topic, key, event); err != nil {
		logging.FromContext(c.Request().Context()).Warn("event publish failed", "error", err)
	}
}

func (h *CartHandler) GetCart(c echo.Context) error {
	userID, err := mwauth.UserID(c)
	if err != nil {
		return err
	}

	items, err := h.Repo.GetCart(c.Request().Context(), userID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, items)
}

func (h *CartHandler) AddToCart(c echo.Context) error {
	userID, err := mwauth.UserID(c)
	if err != nil {
		return err
	}

	var req struct {
		ProductID uint `json:"product_id"`
		Quantity  uint `json:"quantity"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if req.ProductID == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "product_id is required")
	}

	if _, err := h.Repo.FindProductByID(c.Request().Context(), req.ProductID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "product not found")
		}
		return err
	}

	item, err := h.Repo.AddToCart(c.Request().Context(), userID, req.ProductID, req.Quantity)
	if err != nil {
		return err
	}

	h.publish(c, events.TopicOrderEvents, fmt.Sprint(userID), map[string]any{
		"type":       "cart_item_added",
		"user_id":    userID,
		"product_id": req.ProductID,
		"quantity":   item.Quantity,
	})

	return c.JSON(http.StatusOK, item)
}

func (h *CartHandler) DeleteOneFromCart(c echo.Context) error {
	userID, err := mwauth.UserID(c)
	if err != nil {
		return err
	}
	id, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}

	item, gone, err := h.Repo.RemoveOneFromCart(c.Request().Context(), userID, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "item not found")
		}
		return err
	}

	if gone {
		h.publish(c, events.TopicOrderEvents, fmt.Sprint(userID), map[string]any{
			"type":    "cart_item_deleted",
			"user_id": userID,
			"item_id": id,
		})
		return c.JSON(http.StatusOK, map[string]any{"deleted_item": id})
	}

	h.publish(c, events.TopicOrderEvents, fmt.Sprint(userID), map[string]any{
		"type":         "cart_item_decremented",
		"user_id":      userID,
		"item_id":      id,
		"new_quantity": item.Quantity,
	})
	return c.JSON(http.StatusOK, item)
}

func (h *CartHandler) DeleteAllFromCart(c echo.Context) error {
	userID, err := mwauth.UserID(c)
	if err != nil {
		return err
	}
	id, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}

	if err := h.Repo.RemoveItemFromCart(c.Request().Context(), userID, id); err != nil {
		return err
	}

	remaining, err := h.Repo.GetCart(c.Request().Context(), userID)
	if err != nil {
		return err
	}

	h.publish(c, events.TopicOrderEvents, fmt.Sprint(userID), map[string]any{
		"type":    "cart_item_deleted",
		"user_id": userID,
		"item_id": id,
	})

	return c.JSON(http.StatusOK, remaining)
}

func (h *CartHandler) MakeOrder(c echo.Context) error {
	userID, err := mwauth.UserID(c)
	if err != nil {
		return err
	}

	order, items, err := h.Repo.MakeOrder(c.Request().Context(), userID)
	if err != nil {
		switch {
		case errors.Is(err, repo.ErrEmptyCart):
			return echo.NewHTTPError(http.StatusBadRequest, "no items in cart")
		case errors.Is(err, repo.ErrNotFound):
			return echo.NewHTTPError(http.StatusBadRequest, "product not found")
		}
		return err
	}

	h.publish(c, events.TopicOrderEvents, fmt.Sprint(order.ID), map[string]any{
		"type":     "order_created",
		"user_id":  userID,
		"order_id": order.ID,
		"total":    order.Total,
	})

	return c.JSON(http.StatusCreated, echo.Map{
		"order_id": order.ID,
		"total":    order.Total,
		"status":   order.Status,
		"items":    items,
	})
}
