package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/inotebook/backend/internal/api/middleware"
	"github.com/inotebook/backend/internal/core/domain"
)

// currentUserID returns the id resolved by middleware.FetchUser. A missing
// id means the route was registered without the middleware; fail closed.
func currentUserID(c echo.Context) (string, error) {
	if id, ok := middleware.UserIDFromContext(c.Request().Context()); ok {
		return id, nil
	}
	if id, _ := c.Get(middleware.UserIDKey).(string); id != "" {
		return id, nil
	}
	return "", domain.ErrUnauthenticated
}
