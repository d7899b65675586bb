package handler

import (
	"errors"
	"net/http"
	"strconv"

	"chuks-kitchen/internal/apperr"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

type errorBody struct {
	Kind    apperr.Kind `json:"kind"`
	Message string      `json:"message"`
}

type errorResponse struct {
	Error errorBody `json:"error"`
}

func statusFor(kind apperr.Kind) int {
	switch kind {
	case apperr.KindNotFound:
		return http.StatusNotFound
	case apperr.KindUnverified, apperr.KindForbidden:
		return http.StatusForbidden
	case apperr.KindInvalidInput:
		return http.StatusBadRequest
	case apperr.KindUnavailable:
		return http.StatusUnprocessableEntity
	case apperr.KindInsufficientStock, apperr.KindConflict, apperr.KindInvalidState:
		return http.StatusConflict
	case apperr.KindUnauthenticated:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// kindForStatus classifies echo's own errors (bad routes, bind failures).
func kindForStatus(status int) apperr.Kind {
	switch status {
	case http.StatusNotFound, http.StatusMethodNotAllowed:
		return apperr.KindNotFound
	case http.StatusUnauthorized:
		return apperr.KindUnauthenticated
	case http.StatusForbidden:
		return apperr.KindForbidden
	}
	if status >= 400 && status < 500 {
		return apperr.KindInvalidInput
	}
	return apperr.KindInternal
}

// NewErrorHandler turns apperr kinds into JSON rejections. Anything that is
// not a classified business error is logged and reported as internal.
func NewErrorHandler(logger *zap.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		var (
			status int
			body   errorBody
		)

		var appErr *apperr.Error
		var httpErr *echo.HTTPError
		switch {
		case errors.As(err, &appErr):
			status = statusFor(appErr.Kind)
			body = errorBody{Kind: appErr.Kind, Message: appErr.Message}
		case errors.As(err, &httpErr):
			status = httpErr.Code
			body = errorBody{Kind: kindForStatus(status), Message: http.StatusText(status)}
			if msg, ok := httpErr.Message.(string); ok {
				body.Message = msg
			}
		default:
			status = http.StatusInternalServerError
			body = errorBody{Kind: apperr.KindInternal, Message: "internal server error"}
		}

		if status >= http.StatusInternalServerError {
			logger.Error("request failed",
				zap.String("method", c.Request().Method),
				zap.String("path", c.Path()),
				zap.Error(err))
		}

		if c.Request().Method == http.MethodHead {
			err = c.NoContent(status)
		} else {
			err = c.JSON(status, errorResponse{Error: body})
		}
		if err != nil {
			logger.Error("write error response", zap.Error(err))
		}
	}
}

func bindError() error {
	return apperr.InvalidInput("invalid request body")
}

func uintParam(c echo.Context, name string) (uint, error) {
	v, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || v == 0 {
		return 0, apperr.Newf(apperr.KindInvalidInput, "invalid %s", name)
	}
	return uint(v), nil
}
