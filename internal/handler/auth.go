package handler

import (
	"net/http"

	"chuks-kitchen/internal/dto"
	"chuks-kitchen/internal/service"

	"github.com/labstack/echo/v4"
)

type AuthHandler struct {
	authService service.AuthService
}

func NewAuthHandler(authService service.AuthService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
	}
}

func (h *AuthHandler) Signup(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.SignupRequest
	if err := c.Bind(&req); err != nil {
		return bindError()
	}

	resp, err := h.authService.Signup(ctx, &req)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, resp)
}

func (h *AuthHandler) Login(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.LoginRequest
	if err := c.Bind(&req); err != nil {
		return bindError()
	}

	resp, err := h.authService.Login(ctx, &req)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, resp)
}

func (h *AuthHandler) Verify(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.VerifyRequest
	if err := c.Bind(&req); err != nil {
		return bindError()
	}

	resp, err := h.authService.Verify(ctx, &req)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, resp)
}
