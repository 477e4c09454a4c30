package http

import (
	"net/http"

	"agrolend-backend/internal/usecase/dashboard"

	"github.com/labstack/echo/v4"
)

type DashboardHandler struct{ uc *dashboard.Usecase }

func NewDashboardHandler(uc *dashboard.Usecase) *DashboardHandler {
	return &DashboardHandler{uc: uc}
}

func (h *DashboardHandler) Producer(c echo.Context) error {
	view, err := h.uc.Producer(c.Request().Context(), CurrentIdentity(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, view)
}

func (h *DashboardHandler) Investor(c echo.Context) error {
	view, err := h.uc.Investor(c.Request().Context(), CurrentIdentity(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, view)
}
