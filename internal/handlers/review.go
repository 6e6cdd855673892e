package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	mwauth "github.com/kmoroz/storefront/internal/middleware/auth"
	"github.com/kmoroz/storefront/internal/models"
	"github.com/kmoroz/storefront/internal/repo"
)

type ReviewHandler struct {
	Repo *repo.Repo
}

type reviewRequest struct {
	Rating  int    `json:"rating" validate:"required,min=1,max=5"`
	Comment string `json:"comment"`
}

func (h *ReviewHandler) GetReviews(c echo.Context) error {
	productID, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}

	reviews, err := h.Repo.ListReviewsByProduct(c.Request().Context(), productID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, reviews)
}

func (h *ReviewHandler) CreateReview(c echo.Context) error {
	userID, err := mwauth.UserID(c)
	if err != nil {
		return err
	}
	productID, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}

	var req reviewRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "rating must be between 1 and 5")
	}

	if _, err := h.Repo.FindProductByID(c.Request().Context(), productID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "product not found")
		}
		return err
	}

	review := models.Review{
		ProductID: productID,
		UserID:    userID,
		Rating:    req.Rating,
		Comment:   req.Comment,
	}
	if err := h.Repo.CreateReview(c.Request().Context(), &review); err != nil {
		if errors.Is(err, repo.ErrDuplicateReview) {
			return echo.NewHTTPError(http.StatusConflict, "product already reviewed")
		}
		return err
	}

	return c.JSON(http.StatusCreated, review)
}

func (h *ReviewHandler) DeleteReview(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}

	if err := h.Repo.DeleteReview(c.Request().Context(), id); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "review not found")
		}
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
