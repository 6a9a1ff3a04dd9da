package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/videotube/account-service/internal/api/middleware"
	"github.com/videotube/account-service/internal/core/domain"
)

// currentUser returns the user attached by the session middleware. A missing
// user means the route was mounted without the middleware; treat it as an
// unauthenticated request.
func currentUser(c echo.Context) (*domain.User, error) {
	user, ok := c.Get(middleware.ContextUserKey).(*domain.User)
	if !ok || user == nil {
		return nil, domain.ErrMissingToken
	}
	return user, nil
}
