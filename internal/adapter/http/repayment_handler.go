package http

import (
	"net/http"
	"strconv"

	repayuc "agrolend-backend/internal/usecase/repayment"

	"github.com/labstack/echo/v4"
)

type RepaymentHandler struct{ sched *repayuc.Scheduler }

func NewRepaymentHandler(sched *repayuc.Scheduler) *RepaymentHandler {
	return &RepaymentHandler{sched: sched}
}

func (h *RepaymentHandler) GetSchedule(c echo.Context) error {
	sched, err := h.sched.Schedule(c.Request().Context(), c.Param("loan_id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, sched)
}

type paymentReq struct {
	Amount      float64 `json:"amount" validate:"required,gt=0,dec2"`
	Method      string  `json:"method" validate:"required,oneof=pix transfer token"`
	ExternalRef string  `json:"external_ref"`
}

func (h *RepaymentHandler) ProcessPayment(c echo.Context) error {
	var req paymentReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error:   "validation failed",
			Details: ToFieldErrors(err),
		})
	}
	res, err := h.sched.ProcessPayment(c.Request().Context(), c.Param("loan_id"), req.Amount, req.Method, req.ExternalRef)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, res)
}

// SweepOverdue is the explicit command form of overdue detection.
func (h *RepaymentHandler) SweepOverdue(c echo.Context) error {
	overdue := h.sched.SweepOverdue(c.Request().Context())
	return c.JSON(http.StatusOK, map[string]any{
		"overdue": overdue,
		"count":   len(overdue),
	})
}

func (h *RepaymentHandler) ListOverdue(c echo.Context) error {
	overdue, err := h.sched.ListOverdue(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, overdue)
}

func (h *RepaymentHandler) DefaultReport(c echo.Context) error {
	return c.JSON(http.StatusOK, h.sched.BuildDefaultReport(c.Request().Context()))
}

func (h *RepaymentHandler) Upcoming(c echo.Context) error {
	days := 7
	if v := c.QueryParam("days"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			days = n
		}
	}
	due, err := h.sched.UpcomingDueDates(c.Request().Context(), days)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, due)
}
