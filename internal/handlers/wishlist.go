package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	mwauth "github.com/kmoroz/storefront/internal/middleware/auth"
	"github.com/kmoroz/storefront/internal/repo"
)

type WishlistHandler struct {
	Repo *repo.Repo
}

func (h *WishlistHandler) GetWishlist(c echo.Context) error {
	userID, err := mwauth.UserID(c)
	if err != nil {
		return err
	}

	items, err := h.Repo.GetWishlist(c.Request().Context(), userID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, items)
}

func (h *WishlistHandler) AddToWishlist(c echo.Context) error {
	userID, err := mwauth.UserID(c)
	if err != nil {
		return err
	}

	var req struct {
		ProductID uint `json:"product_id"`
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

	item, err := h.Repo.AddToWishlist(c.Request().Context(), userID, req.ProductID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, item)
}

func (h *WishlistHandler) RemoveFromWishlist(c echo.Context) error {
	userID, err := mwauth.UserID(c)
	if err != nil {
		return err
	}
	id, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}

	if err := h.Repo.RemoveFromWishlist(c.Request().Context(), userID, id); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "item not found")
		}
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
