package http

import (
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Handlers struct {
	Base        *Handler
	Auth        *AuthHandler
	Marketplace *MarketplaceHandler
	Repayment   *RepaymentHandler
	Risk        *RiskHandler
	Dashboard   *DashboardHandler
	Collateral  *CollateralHandler
}

// RegisterRoutes wires every endpoint. authMW must resolve identities;
// idemMW guards mutating marketplace routes and expects auth to have run.
func RegisterRoutes(e *echo.Echo, h Handlers, authMW, idemMW echo.MiddlewareFunc) {
	e.GET("/health", h.Base.Health)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	e.POST("/auth/register", h.Auth.Register)
	e.POST("/auth/login", h.Auth.Login)

	m := e.Group("/marketplace", authMW)
	m.POST("/loans", h.Marketplace.CreateLoan, idemMW)
	m.GET("/loans", h.Marketplace.ListLoans)
	m.GET("/loans/:loan_id", h.Marketplace.GetLoan)
	m.POST("/loans/:loan_id/investments", h.Marketplace.Invest, idemMW)
	m.GET("/loans/:loan_id/position", h.Marketplace.Position)
	m.GET("/stats", h.Marketplace.Stats)
	m.POST("/loans/:loan_id/liquidate", h.Marketplace.Liquidate)

	d := e.Group("/dashboard", authMW)
	d.GET("/producer", h.Dashboard.Producer)
	d.GET("/investor", h.Dashboard.Investor)

	r := e.Group("/repayments", authMW)
	r.GET("/:loan_id/schedule", h.Repayment.GetSchedule)
	r.POST("/:loan_id/payments", h.Repayment.ProcessPayment)
	r.POST("/sweep-overdue", h.Repayment.SweepOverdue)
	r.GET("/overdue", h.Repayment.ListOverdue)
	r.GET("/upcoming", h.Repayment.Upcoming)
	r.GET("/default-report", h.Repayment.DefaultReport)

	rk := e.Group("/risk", authMW)
	rk.GET("/alerts", h.Risk.ListAlerts)
	rk.POST("/alerts/:alert_id/resolve", h.Risk.Resolve)
	rk.POST("/monitor", h.Risk.Monitor)
	rk.GET("/portfolio", h.Risk.Portfolio)

	e.POST("/collateral/documents", h.Collateral.SubmitDocument, authMW)
}
