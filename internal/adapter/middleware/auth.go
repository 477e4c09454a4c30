package middleware

import (
	"net/http"
	"strings"

	"agrolend-backend/internal/domain/user"

	"github.com/labstack/echo/v4"
)

// Auth resolves the Bearer token through the user directory and stores
// the identity under "identity" for handlers to pick up.
func Auth(dir user.Directory) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get("Authorization")
			if header == "" {
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": "missing Authorization header"})
			}
			parts := strings.SplitN(header, " ", 2)
			if len(parts) != 2 || parts[0] != "Bearer" {
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": "invalid Authorization header format"})
			}

			ident, err := dir.ResolveSession(c.Request().Context(), parts[1])
			if err != nil {
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": "session invalid or expired"})
			}
			c.Set("identity", ident)
			return next(c)
		}
	}
}
