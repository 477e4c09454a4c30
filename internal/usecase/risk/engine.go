package risk

import (
	"context"
	"errors"
	"fmt"

	"agrolend-backend/internal/apperr"
	"agrolend-backend/internal/domain/loan"
	domainRisk "agrolend-backend/internal/domain/risk"
	"agrolend-backend/internal/logger"
	"agrolend-backend/internal/metrics"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Level string

const (
	LevelLow      Level = "LOW"
	LevelMedium   Level = "MEDIUM"
	LevelHigh     Level = "HIGH"
	LevelCritical Level = "CRITICAL"
)

// maxHealthFactor is the sentinel for loans with no active debt.
const maxHealthFactor = 999

type Assessment struct {
	LoanID          string   `json:"loan_id"`
	HealthFactor    float64  `json:"health_factor"`
	Level           Level    `json:"risk_level"`
	Recommendations []string `json:"recommendations"`
}

// HealthFactor is collateral value over outstanding debt. Below 1 means
// the position is undercollateralized.
func HealthFactor(l *loan.LoanRequest) float64 {
	if l.CurrentFunding <= 0 {
		return maxHealthFactor
	}
	return l.CollateralValue() / l.CurrentFunding
}

// Assess computes the health factor, buckets it into a risk level, and
// collects operator recommendations. LTV above 80% adds a recommendation
// regardless of the health bucket.
func Assess(l *loan.LoanRequest) Assessment {
	hf := HealthFactor(l)
	a := Assessment{LoanID: l.LoanID, HealthFactor: hf}

	switch {
	case hf >= 1.5:
		a.Level = LevelLow
	case hf >= 1.3:
		a.Level = LevelMedium
		a.Recommendations = append(a.Recommendations,
			"Monitor commodity prices for further drops")
	case hf >= 1.1:
		a.Level = LevelHigh
		a.Recommendations = append(a.Recommendations,
			"Ask the producer to add collateral",
			"Consider reducing exposure to this loan")
	default:
		a.Level = LevelCritical
		a.Recommendations = append(a.Recommendations,
			"Position is at liquidation risk; act immediately",
			"Initiate liquidation review or demand additional collateral")
	}

	if l.LTV() > 80 {
		a.Recommendations = append(a.Recommendations,
			"LTV above 80%: tighten collateral requirements")
	}
	return a
}

// Notifier pushes critical alerts out-of-band. Failures are logged, never
// propagated.
type Notifier interface {
	NotifyCritical(ctx context.Context, a *domainRisk.Alert) error
}

type Engine struct {
	loans    loan.Repository
	alerts   domainRisk.Repository
	notifier Notifier
}

func NewEngine(loans loan.Repository, alerts domainRisk.Repository, notifier Notifier) *Engine {
	return &Engine{loans: loans, alerts: alerts, notifier: notifier}
}

// MonitorActive sweeps funded and repaying loans and persists an alert for
// each HIGH or CRITICAL assessment. The sweep is not deduplicated: a loan
// whose risk state has not changed gets a fresh alert on every run. Errors
// degrade to an empty result rather than failing the caller.
func (e *Engine) MonitorActive(ctx context.Context) []domainRisk.Alert {
	loans, err := e.loans.ListByStatus(ctx, loan.StatusFunded, loan.StatusRepaying)
	if err != nil {
		logger.Get().Errorw("risk sweep: listing active loans failed", "err", err)
		return []domainRisk.Alert{}
	}

	out := make([]domainRisk.Alert, 0)
	for i := range loans {
		l := &loans[i]
		assessment := Assess(l)

		var alert *domainRisk.Alert
		switch assessment.Level {
		case LevelCritical:
			alert = &domainRisk.Alert{
				AlertID:  uuid.NewString(),
				LoanID:   l.LoanID,
				Type:     domainRisk.AlertLiquidationWarning,
				Severity: domainRisk.SeverityCritical,
				Message: fmt.Sprintf("loan %s health factor %.2f: liquidation risk",
					l.LoanID, assessment.HealthFactor),
			}
		case LevelHigh:
			alert = &domainRisk.Alert{
				AlertID:  uuid.NewString(),
				LoanID:   l.LoanID,
				Type:     domainRisk.AlertLTVHigh,
				Severity: domainRisk.SeverityHigh,
				Message: fmt.Sprintf("loan %s health factor %.2f: high LTV exposure",
					l.LoanID, assessment.HealthFactor),
			}
		default:
			continue
		}

		if err := e.alerts.Create(ctx, alert); err != nil {
			logger.Get().Errorw("risk sweep: persisting alert failed",
				"loan_id", l.LoanID, "err", err)
			continue
		}
		metrics.AlertsRaised.WithLabelValues(string(alert.Severity)).Inc()

		if alert.Severity == domainRisk.SeverityCritical && e.notifier != nil {
			if err := e.notifier.NotifyCritical(ctx, alert); err != nil {
				logger.Get().Warnw("risk sweep: notifier failed",
					"loan_id", l.LoanID, "err", err)
			}
		}
		out = append(out, *alert)
	}
	return out
}

type PortfolioStats struct {
	TotalExposure   float64        `json:"total_exposure"`
	AvgHealthFactor float64        `json:"avg_health_factor"`
	TierCounts      map[string]int `json:"tier_counts"`
	CriticalLoans   int            `json:"critical_loans"`
}

// Portfolio aggregates risk over the active book.
func (e *Engine) Portfolio(ctx context.Context) (*PortfolioStats, error) {
	loans, err := e.loans.ListByStatus(ctx, loan.StatusFunded, loan.StatusRepaying)
	if err != nil {
		return nil, err
	}

	stats := &PortfolioStats{TierCounts: map[string]int{"A": 0, "B": 0, "C": 0}}
	var hfSum float64
	for i := range loans {
		l := &loans[i]
		stats.TotalExposure += l.CurrentFunding
		a := Assess(l)
		hfSum += a.HealthFactor
		stats.TierCounts[string(l.RiskTier())]++
		if a.Level == LevelCritical {
			stats.CriticalLoans++
		}
	}
	if len(loans) > 0 {
		stats.AvgHealthFactor = hfSum / float64(len(loans))
	}
	return stats, nil
}

// ListOpenAlerts returns unresolved alerts.
func (e *Engine) ListOpenAlerts(ctx context.Context) ([]domainRisk.Alert, error) {
	return e.alerts.ListOpen(ctx)
}

// Resolve marks an alert as handled. Resolving twice is a no-op.
func (e *Engine) Resolve(ctx context.Context, alertID string) (*domainRisk.Alert, error) {
	a, err := e.alerts.GetByAlertID(ctx, alertID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.ErrAlertNotFound
		}
		return nil, err
	}
	if a.Resolved {
		return a, nil
	}
	a.Resolved = true
	now := nowUTC()
	a.ResolvedAt = &now
	if err := e.alerts.Save(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}
