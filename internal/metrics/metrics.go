// Package metrics registers the Prometheus collectors for the lending
// engine. Exposed on GET /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	InvestmentsAccepted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "agrolend_investments_accepted_total",
		Help: "Investments that passed validation and settled on the ledger.",
	})

	InvestmentsRejected = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "agrolend_investments_rejected_total",
		Help: "Investments rejected by business rules, labelled by reason code.",
	}, []string{"reason"})

	DisbursementsFired = promauto.NewCounter(prometheus.CounterOpts{
		Name: "agrolend_disbursements_fired_total",
		Help: "One-time disbursements attempted at the funded transition.",
	})

	DisbursementsFailed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "agrolend_disbursements_failed_total",
		Help: "Disbursement transfers that failed and await reconciliation.",
	})

	PaymentsApplied = promauto.NewCounter(prometheus.CounterOpts{
		Name: "agrolend_payments_applied_total",
		Help: "Repayment transactions recorded.",
	})

	AlertsRaised = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "agrolend_risk_alerts_raised_total",
		Help: "Risk alerts created by the monitoring sweep, labelled by severity.",
	}, []string{"severity"})

	ActiveLoans = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "agrolend_active_loans",
		Help: "Loans currently open or funding.",
	})
)
