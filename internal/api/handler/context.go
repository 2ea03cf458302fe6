package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/edulearn/learner-gateway/internal/api/middleware"
	"github.com/edulearn/learner-gateway/internal/core/domain"
)

// currentUser returns the signed-in user the Session middleware stored.
// Guarded routes never reach a handler without one, so a missing user here
// means the route was mounted without its guard.
func currentUser(c echo.Context) (*domain.AuthenticatedUser, error) {
	user := middleware.CurrentUser(c)
	if user == nil {
		return nil, domain.ErrUnauthenticated
	}
	return user, nil
}

// bindValid binds the request into req and validates it.
func bindValid(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	return c.Validate(req)
}

// intParam parses a positive integer path parameter.
func intParam(c echo.Context, name string) (int, error) {
	v, err := strconv.Atoi(c.Param(name))
	if err != nil || v <= 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid "+name)
	}
	return v, nil
}
