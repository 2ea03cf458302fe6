package middleware

import (
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/edulearn/learner-gateway/internal/core/ports"
)

// Activity forwards one activity ping per signed-in request to sink.
// Ping failures never fail the request.
func Activity(sink ports.ActivitySink, log zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			err := next(c)
			if user := CurrentUser(c); user != nil {
				if _, perr := sink.Ping(c.Request().Context(), user.Username); perr != nil {
					log.Warn().Err(perr).Str("username", user.Username).Msg("activity ping failed")
				}
			}
			return err
		}
	}
}
