package handler

import (
	"net/http"

	"chuks-kitchen/internal/dto"
	"chuks-kitchen/internal/middleware"
	"chuks-kitchen/internal/service"

	"github.com/labstack/echo/v4"
)

type PaymentHandler struct {
	paymentService service.PaymentService
}

func NewPaymentHandler(paymentService service.PaymentService) *PaymentHandler {
	return &PaymentHandler{
		paymentService: paymentService,
	}
}

func (h *PaymentHandler) Pay(c echo.Context) error {
	ctx := c.Request().Context()

	userID, err := middleware.UserID(c)
	if err != nil {
		return err
	}

	orderID, err := uintParam(c, "id")
	if err != nil {
		return err
	}

	var req dto.PayRequest
	if err := c.Bind(&req); err != nil {
		return bindError()
	}

	receipt, err := h.paymentService.Pay(ctx, userID, orderID, req.PaymentMethod)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, receipt)
}

func (h *PaymentHandler) GetPayment(c echo.Context) error {
	ctx := c.Request().Context()

	userID, err := middleware.UserID(c)
	if err != nil {
		return err
	}

	payment, err := h.paymentService.GetPayment(ctx, userID, c.Param("ref"))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, payment)
}
