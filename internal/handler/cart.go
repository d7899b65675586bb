package handler

import (
	"net/http"

	"chuks-kitchen/internal/dto"
	"chuks-kitchen/internal/middleware"
	"chuks-kitchen/internal/service"

	"github.com/labstack/echo/v4"
)

type CartHandler struct {
	cartService service.CartService
}

func NewCartHandler(cartService service.CartService) *CartHandler {
	return &CartHandler{
		cartService: cartService,
	}
}

func (h *CartHandler) AddItem(c echo.Context) error {
	ctx := c.Request().Context()

	userID, err := middleware.UserID(c)
	if err != nil {
		return err
	}

	var req dto.CartItemRequest
	if err := c.Bind(&req); err != nil {
		return bindError()
	}

	line, err := h.cartService.AddItem(ctx, userID, req.FoodID, req.Quantity)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, line)
}

func (h *CartHandler) UpdateQuantity(c echo.Context) error {
	ctx := c.Request().Context()

	userID, err := middleware.UserID(c)
	if err != nil {
		return err
	}

	foodID, err := uintParam(c, "foodID")
	if err != nil {
		return err
	}

	var req dto.CartItemRequest
	if err := c.Bind(&req); err != nil {
		return bindError()
	}

	line, err := h.cartService.UpdateQuantity(ctx, userID, foodID, req.Quantity)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, line)
}

func (h *CartHandler) RemoveItem(c echo.Context) error {
	ctx := c.Request().Context()

	userID, err := middleware.UserID(c)
	if err != nil {
		return err
	}

	foodID, err := uintParam(c, "foodID")
	if err != nil {
		return err
	}

	if err := h.cartService.RemoveItem(ctx, userID, foodID); err != nil {
		return err
	}

	return c.NoContent(http.StatusNoContent)
}

func (h *CartHandler) Clear(c echo.Context) error {
	ctx := c.Request().Context()

	userID, err := middleware.UserID(c)
	if err != nil {
		return err
	}

	if err := h.cartService.Clear(ctx, userID); err != nil {
		return err
	}

	return c.NoContent(http.StatusNoContent)
}

func (h *CartHandler) View(c echo.Context) error {
	ctx := c.Request().Context()

	userID, err := middleware.UserID(c)
	if err != nil {
		return err
	}

	view, err := h.cartService.View(ctx, userID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, view)
}
