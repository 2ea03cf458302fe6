package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/edulearn/learner-gateway/internal/core/domain"
)

// AuthState reports whether session restoration has finished.
type AuthState interface {
	Initialized() bool
}

// Guard restricts a route to the allowed role. Before auth is initialized
// it answers 503 so that clients retry instead of being redirected; a denied
// request is redirected to the login page or the user's own landing page.
func Guard(allowed domain.AllowedRole, auth AuthState, loginPath string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			d := domain.Decide(CurrentUser(c), auth.Initialized(), allowed, loginPath)
			switch d.State {
			case domain.GuardInitializing:
				c.Response().Header().Set("Retry-After", "1")
				return c.JSON(http.StatusServiceUnavailable, map[string]string{"status": string(d.State)})
			case domain.GuardRedirecting:
				return c.Redirect(http.StatusFound, d.RedirectTo)
			}
			return next(c)
		}
	}
}
