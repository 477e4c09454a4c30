package http

import (
	"errors"
	"strings"

	"agrolend-backend/internal/apperr"
	"agrolend-backend/internal/domain/user"

	"github.com/labstack/echo/v4"
	stdhttp "net/http"
)

// identityKey is where the auth middleware stores the resolved identity.
const identityKey = "identity"

func CurrentIdentity(c echo.Context) *user.Identity {
	ident, _ := c.Get(identityKey).(*user.Identity)
	return ident
}

// writeError maps an AppError to its status code; everything else is a 500.
func writeError(c echo.Context, err error) error {
	var ae *apperr.AppError
	if errors.As(err, &ae) {
		return c.JSON(ae.StatusCode, ErrorResponse{Error: ae.Message, Code: ae.Code})
	}
	return c.JSON(stdhttp.StatusInternalServerError, ErrorResponse{Error: "internal error"})
}

// ---- test helpers ----

func containsFieldMsg(list []FieldError, field, substr string) bool {
	for _, e := range list {
		if e.Field == field && strings.Contains(e.Message, substr) {
			return true
		}
	}
	return false
}
