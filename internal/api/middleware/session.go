package middleware

import (
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"github.com/edulearn/learner-gateway/internal/core/domain"
)

const userKey = "user"

// Session reads the gateway session token, when one is sent, and stores the
// signed-in user in the context. Requests without a valid token continue
// anonymously; the route guards decide what an anonymous request may see.
func Session(jwtSecret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw, ok := bearerToken(c.Request().Header.Get(echo.HeaderAuthorization))
			if !ok {
				return next(c)
			}
			if user, err := ParseSession(jwtSecret, raw); err == nil {
				c.Set(userKey, user)
			}
			return next(c)
		}
	}
}

// CurrentUser returns the user Session stored, or nil.
func CurrentUser(c echo.Context) *domain.AuthenticatedUser {
	user, _ := c.Get(userKey).(*domain.AuthenticatedUser)
	return user
}

// ParseSession validates a gateway session token and rebuilds its user.
func ParseSession(jwtSecret, raw string) (*domain.AuthenticatedUser, error) {
	claims := jwt.MapClaims{}
	tkn, err := jwt.ParseWithClaims(raw, claims, func(token *jwt.Token) (interface{}, error) {
		if token.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return []byte(jwtSecret), nil
	})
	if err != nil {
		return nil, err
	}
	if !tkn.Valid {
		return nil, jwt.ErrTokenInvalidClaims
	}

	user := &domain.AuthenticatedUser{
		Username: claimString(claims, "username"),
		Email:    claimString(claims, "email"),
		Role:     claimString(claims, "role"),
		StaffID:  claimString(claims, "staff_id"),
		Token:    claimString(claims, "upstream_token"),
	}
	if user.Username == "" {
		return nil, jwt.ErrTokenInvalidClaims
	}
	return user, nil
}

func bearerToken(header string) (string, bool) {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}

func claimString(claims jwt.MapClaims, key string) string {
	s, _ := claims[key].(string)
	return s
}
