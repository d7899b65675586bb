package handler

import (
	"net/http"

	"chuks-kitchen/internal/dto"
	"chuks-kitchen/internal/service"

	"github.com/labstack/echo/v4"
)

type CatalogHandler struct {
	catalogService service.CatalogService
}

func NewCatalogHandler(catalogService service.CatalogService) *CatalogHandler {
	return &CatalogHandler{
		catalogService: catalogService,
	}
}

func (h *CatalogHandler) CreateFood(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.CreateFoodRequest
	if err := c.Bind(&req); err != nil {
		return bindError()
	}

	food, err := h.catalogService.CreateFood(ctx, &req)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, food)
}

// ListFoods returns available foods; ?all=true includes unavailable ones.
func (h *CatalogHandler) ListFoods(c echo.Context) error {
	ctx := c.Request().Context()

	foods, err := h.catalogService.ListFoods(ctx, c.QueryParam("all") != "true")
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, foods)
}

func (h *CatalogHandler) GetFood(c echo.Context) error {
	ctx := c.Request().Context()

	foodID, err := uintParam(c, "id")
	if err != nil {
		return err
	}

	food, err := h.catalogService.GetFood(ctx, foodID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, food)
}

func (h *CatalogHandler) AdjustStock(c echo.Context) error {
	ctx := c.Request().Context()

	foodID, err := uintParam(c, "id")
	if err != nil {
		return err
	}

	var req dto.AdjustStockRequest
	if err := c.Bind(&req); err != nil {
		return bindError()
	}

	food, err := h.catalogService.AdjustStock(ctx, foodID, req.Delta)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, food)
}
