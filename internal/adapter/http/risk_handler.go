package http

import (
	"net/http"

	riskuc "agrolend-backend/internal/usecase/risk"

	"github.com/labstack/echo/v4"
)

type RiskHandler struct{ engine *riskuc.Engine }

func NewRiskHandler(engine *riskuc.Engine) *RiskHandler { return &RiskHandler{engine: engine} }

func (h *RiskHandler) ListAlerts(c echo.Context) error {
	alerts, err := h.engine.ListOpenAlerts(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, alerts)
}

func (h *RiskHandler) Resolve(c echo.Context) error {
	alert, err := h.engine.Resolve(c.Request().Context(), c.Param("alert_id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, alert)
}

// Monitor runs the risk sweep over the active book. Re-running against an
// unchanged book creates fresh alerts; deduplication is the operator's
// concern.
func (h *RiskHandler) Monitor(c echo.Context) error {
	alerts := h.engine.MonitorActive(c.Request().Context())
	return c.JSON(http.StatusOK, map[string]any{
		"alerts": alerts,
		"count":  len(alerts),
	})
}

func (h *RiskHandler) Portfolio(c echo.Context) error {
	stats, err := h.engine.Portfolio(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, stats)
}
