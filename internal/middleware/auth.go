package middleware

import (
	"context"
	"slices"
	"strings"

	"chuks-kitchen/internal/apperr"
	"chuks-kitchen/internal/model"
	"chuks-kitchen/internal/security"

	"github.com/labstack/echo/v4"
)

const userIDKey = "user_id"

var (
	errMissingToken    = apperr.New(apperr.KindUnauthenticated, "missing or invalid bearer token")
	errNotCatalogAdmin = apperr.Forbidden("user may not manage the catalog")
)

type UserFinder interface {
	FindUserByID(ctx context.Context, userID uint) (*model.User, error)
}

// AuthMiddleware accepts "Authorization: Bearer <jwt>" and stores the token's
// user id on the context.
func AuthMiddleware(tokens security.TokenIssuer) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get(echo.HeaderAuthorization)
			raw, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || strings.TrimSpace(raw) == "" {
				return errMissingToken
			}

			claims, err := tokens.Parse(strings.TrimSpace(raw))
			if err != nil {
				return errMissingToken
			}

			c.Set(userIDKey, claims.UserID)
			return next(c)
		}
	}
}

// UserID returns the id set by AuthMiddleware.
func UserID(c echo.Context) (uint, error) {
	id, ok := c.Get(userIDKey).(uint)
	if !ok || id == 0 {
		return 0, errMissingToken
	}
	return id, nil
}

// RequireCatalogAdmin runs after AuthMiddleware. It admits verified users,
// and only those whose email is in admins when admins is not empty.
func RequireCatalogAdmin(users UserFinder, admins []string) echo.MiddlewareFunc {
	allowed := make([]string, 0, len(admins))
	for _, email := range admins {
		if email = strings.ToLower(strings.TrimSpace(email)); email != "" {
			allowed = append(allowed, email)
		}
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			userID, err := UserID(c)
			if err != nil {
				return err
			}

			user, err := users.FindUserByID(c.Request().Context(), userID)
			if err != nil {
				return err
			}
			if !user.IsVerified {
				return apperr.ErrUnverified
			}
			if len(allowed) > 0 && !slices.Contains(allowed, user.Email) {
				return errNotCatalogAdmin
			}

			return next(c)
		}
	}
}
