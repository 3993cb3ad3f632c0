package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/99minutos/task-api/internal/pkg/metrics"
	"github.com/99minutos/task-api/internal/core/domain"
)

const authFailedMessage = "Please authenticate."

// Authenticator resolves a raw bearer token to the user holding it.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*domain.User, error)
}

// Auth requires a bearer token that verifies and is still one of the user's
// live sessions. On success the user and the raw token are stored under the
// "user" and "token" context keys. Every failure gets the same 401 body.
func Auth(auth Authenticator) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get("Authorization")
			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || strings.TrimSpace(parts[1]) == "" {
				return reject(c)
			}
			token := strings.TrimSpace(parts[1])

			user, err := auth.Authenticate(c.Request().Context(), token)
			if err != nil || user == nil {
				return reject(c)
			}

			c.Set("user", user)
			c.Set("token", token)

			return next(c)
		}
	}
}

func reject(c echo.Context) error {
	metrics.AuthRejectionsTotal.Inc()
	return c.JSON(http.StatusUnauthorized, map[string]string{"error": authFailedMessage})
}
