package http

import (
	"net/http"

	"agrolend-backend/internal/usecase/marketplace"

	"github.com/labstack/echo/v4"
)

type MarketplaceHandler struct{ uc *marketplace.Usecase }

func NewMarketplaceHandler(uc *marketplace.Usecase) *MarketplaceHandler {
	return &MarketplaceHandler{uc: uc}
}

type createLoanReq struct {
	RequestedAmount   float64 `json:"requested_amount" validate:"required,gt=0,dec2"`
	TermMonths        int     `json:"term_months" validate:"required,gte=1,lte=60"`
	MaxInterestRate   float64 `json:"max_interest_rate" validate:"required,gt=0,dec2"`
	CollateralAmount  float64 `json:"collateral_amount" validate:"required,gt=0,dec2"`
	CollateralType    string  `json:"collateral_type" validate:"required,commodity"`
	UnitPrice         float64 `json:"unit_price" validate:"required,gt=0,dec2"`
	WarehouseLocation string  `json:"warehouse_location" validate:"required"`
}

func (h *MarketplaceHandler) CreateLoan(c echo.Context) error {
	var req createLoanReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error:   "validation failed",
			Details: ToFieldErrors(err),
		})
	}
	dto, err := h.uc.CreateLoanRequest(c.Request().Context(), CurrentIdentity(c), marketplace.CreateLoanInput{
		RequestedAmount:   req.RequestedAmount,
		TermMonths:        req.TermMonths,
		MaxInterestRate:   req.MaxInterestRate,
		CollateralAmount:  req.CollateralAmount,
		CollateralType:    req.CollateralType,
		UnitPrice:         req.UnitPrice,
		WarehouseLocation: req.WarehouseLocation,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, dto)
}

func (h *MarketplaceHandler) ListLoans(c echo.Context) error {
	loans, err := h.uc.ListOpen(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, loans)
}

func (h *MarketplaceHandler) GetLoan(c echo.Context) error {
	dto, err := h.uc.Get(c.Request().Context(), c.Param("loan_id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

type investReq struct {
	Amount float64 `json:"amount" validate:"required,gt=0,dec2"`
}

func (h *MarketplaceHandler) Invest(c echo.Context) error {
	var req investReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error:   "validation failed",
			Details: ToFieldErrors(err),
		})
	}
	res, err := h.uc.Invest(c.Request().Context(), c.Param("loan_id"), CurrentIdentity(c), req.Amount)
	if err != nil {
		return writeError(c, err)
	}
	if !res.Accepted {
		// Business rejection: state untouched, render the reason.
		return c.JSON(http.StatusUnprocessableEntity, res)
	}
	return c.JSON(http.StatusCreated, res)
}

func (h *MarketplaceHandler) Position(c echo.Context) error {
	pos, err := h.uc.Position(c.Request().Context(), c.Param("loan_id"), CurrentIdentity(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, pos)
}

func (h *MarketplaceHandler) Stats(c echo.Context) error {
	stats, err := h.uc.MarketStats(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, stats)
}

type liquidateReq struct {
	Reason string `json:"reason" validate:"required"`
}

func (h *MarketplaceHandler) Liquidate(c echo.Context) error {
	var req liquidateReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error:   "validation failed",
			Details: ToFieldErrors(err),
		})
	}
	dto, err := h.uc.Liquidate(c.Request().Context(), c.Param("loan_id"), req.Reason)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}
