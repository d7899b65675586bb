package handler

import (
	"net/http"

	"chuks-kitchen/internal/middleware"
	"chuks-kitchen/internal/service"

	"github.com/labstack/echo/v4"
)

type OrderHandler struct {
	orderService service.OrderService
}

func NewOrderHandler(orderService service.OrderService) *OrderHandler {
	return &OrderHandler{
		orderService: orderService,
	}
}

func (h *OrderHandler) Create(c echo.Context) error {
	ctx := c.Request().Context()

	userID, err := middleware.UserID(c)
	if err != nil {
		return err
	}

	order, err := h.orderService.Create(ctx, userID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, order)
}

func (h *OrderHandler) Cancel(c echo.Context) error {
	ctx := c.Request().Context()

	userID, err := middleware.UserID(c)
	if err != nil {
		return err
	}

	orderID, err := uintParam(c, "id")
	if err != nil {
		return err
	}

	order, err := h.orderService.Cancel(ctx, userID, orderID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, order)
}

func (h *OrderHandler) List(c echo.Context) error {
	ctx := c.Request().Context()

	userID, err := middleware.UserID(c)
	if err != nil {
		return err
	}

	orders, err := h.orderService.List(ctx, userID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, orders)
}

func (h *OrderHandler) Get(c echo.Context) error {
	ctx := c.Request().Context()

	userID, err := middleware.UserID(c)
	if err != nil {
		return err
	}

	orderID, err := uintParam(c, "id")
	if err != nil {
		return err
	}

	order, err := h.orderService.Get(ctx, userID, orderID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, order)
}
