package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/kmoroz/storefront/internal/es"
	"github.com/kmoroz/storefront/internal/events"
	"github.com/kmoroz/storefront/internal/logging"
	"github.com/kmoroz/storefront/internal/models"
	"github.com/kmoroz/storefront/internal/repo"
	"github.com/kmoroz/storefront/internal/util"
)

type ProductHandler struct {
	Repo     *repo.Repo
	Producer *events.Producer
	Indexer  *es.Indexer
}

type productRequest struct {
	Name        string  `json:"name"        validate:"required"`
	Description string  `json:"description" validate:"required"`
	Price       float64 `json:"price"       validate:"required,gt=0"`
	Count       uint    `json:"count"`
	CategoryID  uint    `json:"category_id"`
	ImageURL    string  `json:"image_url"`
}

func (h *ProductHandler) publish(c echo.Context, key string, event map[string]any) {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := h.Producer.PublishEvent(ctx, events.TopicProductEvents, key, event); err != nil {
		logging.FromContext(c.Request().Context()).Warn("event publish failed", "error", err)
	}
}

func (h *ProductHandler) reindex(c echo.Context, p *models.Product) {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := h.Indexer.IndexProduct(ctx, p); err != nil {
		logging.FromContext(c.Request().Context()).Warn("product index failed", "product_id", p.ID, "error", err)
	}
}

func (h *ProductHandler) GetProduct(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}

	product, err := h.Repo.FindProductByID(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "product not found")
		}
		return err
	}
	return c.JSON(http.StatusOK, product)
}

func (h *ProductHandler) GetProducts(c echo.Context) error {
	page := parseIntDefault(c.QueryParam("page"), 1)
	size := parseIntDefault(c.QueryParam("size"), util.DefaultPageSize)
	categoryID := uint(parseIntDefault(c.QueryParam("category"), 0))

	offset, limit := util.Calculate(page, size)

	items, total, err := h.Repo.ListProducts(c.Request().Context(), categoryID, offset, limit)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, map[string]any{
		"data": items,
		"meta": pageMeta(page, limit, offset, total),
	})
}

func (h *ProductHandler) CreateProduct(c echo.Context) error {
	var req productRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "name, description and a positive price are required")
	}

	prod := models.Product{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Count:       req.Count,
		CategoryID:  req.CategoryID,
		ImageURL:    req.ImageURL,
	}
	if err := h.Repo.CreateProduct(c.Request().Context(), &prod); err != nil {
		return err
	}

	h.publish(c, fmt.Sprint(prod.ID), map[string]any{
		"type":       "product_created",
		"product_id": prod.ID,
		"name":       prod.Name,
	})
	h.reindex(c, &prod)

	return c.JSON(http.StatusCreated, prod)
}

func (h *ProductHandler) PatchProduct(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}

	var req productRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "name, description and a positive price are required")
	}

	prod, err := h.Repo.FindProductByID(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "product not found")
		}
		return err
	}

	prod.Name = req.Name
	prod.Description = req.Description
	prod.Price = req.Price
	prod.Count = req.Count
	prod.CategoryID = req.CategoryID
	prod.ImageURL = req.ImageURL

	if err := h.Repo.SaveProduct(c.Request().Context(), prod); err != nil {
		return err
	}

	h.publish(c, fmt.Sprint(prod.ID), map[string]any{
		"type":       "product_updated",
		"product_id": prod.ID,
		"name":       prod.Name,
	})
	h.reindex(c, prod)

	return c.JSON(http.StatusOK, prod)
}

func (h *ProductHandler) DeleteProduct(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}

	if err := h.Repo.DeleteProduct(c.Request().Context(), id); err != nil {
		return err
	}

	h.publish(c, fmt.Sprint(id), map[string]any{
		"type":       "product_deleted",
		"product_id": id,
	})

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := h.Indexer.DeleteProduct(ctx, id); err != nil {
		logging.FromContext(c.Request().Context()).Warn("product index delete failed", "product_id", id, "error", err)
	}

	return c.NoContent(http.StatusNoContent)
}
