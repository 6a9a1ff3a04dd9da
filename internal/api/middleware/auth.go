package middleware

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/videotube/account-service/internal/core/domain"
	"github.com/videotube/account-service/internal/core/ports"
)

// ContextUserKey is the echo.Context key holding the authenticated *domain.User.
const ContextUserKey = "user"

const accessCookie = "accessToken"

// UserLoader resolves the user a verified token belongs to.
type UserLoader interface {
	FindByID(ctx context.Context, id string) (*domain.User, error)
}

// Auth validates the access token and attaches the user to the context.
// The token is read from the accessToken cookie first, then from an
// "Authorization: Bearer" header.
func Auth(tokens ports.TokenService, users UserLoader) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw, err := accessToken(c)
			if err != nil {
				return err
			}

			userID, err := tokens.VerifyAccess(raw)
			if err != nil {
				return err
			}

			user, err := users.FindByID(c.Request().Context(), userID)
			if err != nil {
				if errors.Is(err, domain.ErrNotFound) {
					return domain.NewError(domain.ErrUnauthorized, "invalid access token")
				}
				return fmt.Errorf("load session user: %w", err)
			}

			c.Set(ContextUserKey, user.Public())
			return next(c)
		}
	}
}

func accessToken(c echo.Context) (string, error) {
	if ck, err := c.Cookie(accessCookie); err == nil && ck.Value != "" {
		return ck.Value, nil
	}

	authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
	if authHeader == "" {
		return "", domain.ErrMissingToken
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || strings.TrimSpace(parts[1]) == "" {
		return "", domain.NewError(domain.ErrUnauthorized, "invalid authorization header")
	}
	return strings.TrimSpace(parts[1]), nil
}
