package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/99minutos/task-api/internal/core/domain"
)

// ctxUser returns the user the Auth middleware bound to the request. A missing
// user means the route was registered without the middleware.
func ctxUser(c echo.Context) (*domain.User, error) {
	user, _ := c.Get("user").(*domain.User)
	if user == nil || user.ID == "" {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "Please authenticate.")
	}
	return user, nil
}

// ctxToken returns the raw bearer token of the current request.
func ctxToken(c echo.Context) string {
	token, _ := c.Get("token").(string)
	return token
}
