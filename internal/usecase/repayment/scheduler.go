package repayment

import (
	"context"
	"errors"
	"math"
	"time"

	"agrolend-backend/internal/apperr"
	"agrolend-backend/internal/domain/loan"
	domainRepay "agrolend-backend/internal/domain/repayment"
	"agrolend-backend/internal/metrics"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Scheduler struct {
	repo domainRepay.Repository
	now  func() time.Time
}

func NewScheduler(repo domainRepay.Repository) *Scheduler {
	return &Scheduler{repo: repo, now: func() time.Time { return time.Now().UTC() }}
}

// BuildSchedule creates the amortization schedule for a funded loan.
// Interest compounds monthly over the term; the monthly payment is the
// flat equal split totalAmount/months, with principal and interest parts
// as flat fractions of their totals (not a declining-balance split).
// Callers must invoke this exactly once per loan, at the funded
// transition; the scheduler does not enforce uniqueness.
func (s *Scheduler) BuildSchedule(ctx context.Context, l *loan.LoanRequest, annualRatePct float64) (*domainRepay.Schedule, error) {
	if l.TermMonths <= 0 || l.CurrentFunding <= 0 {
		return nil, apperr.WithMessage(apperr.ErrInvalidInput, "loan has no funded principal or term")
	}

	principal := l.CurrentFunding
	months := l.TermMonths
	monthlyRate := annualRatePct / 100 / 12

	totalInterest := principal*math.Pow(1+monthlyRate, float64(months)) - principal
	totalAmount := principal + totalInterest
	installmentAmount := totalAmount / float64(months)

	start := s.now()
	sched := &domainRepay.Schedule{
		LoanID:        l.LoanID,
		Principal:     principal,
		AnnualRate:    annualRatePct,
		TotalInterest: totalInterest,
		TotalAmount:   totalAmount,
		FinalDueDate:  start.AddDate(0, months, 0),
	}
	for i := 1; i <= months; i++ {
		sched.Installments = append(sched.Installments, domainRepay.Installment{
			LoanID:        l.LoanID,
			Seq:           i,
			Amount:        installmentAmount,
			PrincipalPart: principal / float64(months),
			InterestPart:  totalInterest / float64(months),
			DueDate:       start.AddDate(0, i, 0),
			Status:        domainRepay.InstallmentPending,
		})
	}

	if err := s.repo.CreateSchedule(ctx, sched); err != nil {
		return nil, err
	}
	return sched, nil
}

// Schedule returns the schedule for a loan with installments preloaded.
func (s *Scheduler) Schedule(ctx context.Context, loanID string) (*domainRepay.Schedule, error) {
	sched, err := s.repo.GetScheduleByLoanID(ctx, loanID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.ErrScheduleNotFound
		}
		return nil, err
	}
	return sched, nil
}

type PaymentResult struct {
	Transaction         *domainRepay.Transaction `json:"transaction"`
	InstallmentsSettled int                      `json:"installments_settled"`
	RemainingBalance    float64                  `json:"remaining_balance"`
	Message             string                   `json:"message"`
}

// ProcessPayment applies a payment FIFO over pending installments ordered
// by due date. An installment flips to PAID only when the running amount
// fully covers it; the first one it cannot cover stops the loop and any
// remainder is not credited against an installment. The transaction is
// recorded for the full requested amount either way, and the remaining
// balance is totalAmount minus every transaction ever recorded, floored
// at zero.
func (s *Scheduler) ProcessPayment(ctx context.Context, loanID string, amount float64, method, externalRef string) (*PaymentResult, error) {
	if amount <= 0 {
		return nil, apperr.ErrInvalidAmount
	}
	sched, err := s.Schedule(ctx, loanID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	remaining := amount
	settled := 0
	for i := range sched.Installments {
		inst := &sched.Installments[i]
		if inst.Status == domainRepay.InstallmentPaid {
			continue
		}
		if remaining < inst.Amount {
			break
		}
		remaining -= inst.Amount
		inst.Status = domainRepay.InstallmentPaid
		paidAt := now
		inst.PaidAt = &paidAt
		if err := s.repo.SaveInstallment(ctx, inst); err != nil {
			return nil, err
		}
		settled++
	}

	tx := &domainRepay.Transaction{
		TxRef:       uuid.NewString(),
		LoanID:      loanID,
		Amount:      amount,
		Method:      method,
		ExternalRef: externalRef,
		PaidAt:      now,
	}
	if err := s.repo.CreateTransaction(ctx, tx); err != nil {
		return nil, err
	}
	metrics.PaymentsApplied.Inc()

	txs, err := s.repo.ListTransactionsByLoanID(ctx, loanID)
	if err != nil {
		return nil, err
	}
	var paidTotal float64
	for _, t := range txs {
		paidTotal += t.Amount
	}
	balance := sched.TotalAmount - paidTotal
	msg := "payment applied"
	if balance <= 0 {
		balance = 0
		msg = "loan fully repaid"
	}

	return &PaymentResult{
		Transaction:         tx,
		InstallmentsSettled: settled,
		RemainingBalance:    balance,
		Message:             msg,
	}, nil
}

// SweepOverdue transitions past-due PENDING installments to OVERDUE and
// returns every currently-overdue installment, newly swept or not. The
// sweep is the explicit command form of overdue detection; ListOverdue is
// the pure query. Errors degrade to an empty result.
func (s *Scheduler) SweepOverdue(ctx context.Context) []domainRepay.Installment {
	due, err := s.repo.ListPendingDueBefore(ctx, s.now())
	if err != nil {
		return []domainRepay.Installment{}
	}
	for i := range due {
		due[i].Status = domainRepay.InstallmentOverdue
		if err := s.repo.SaveInstallment(ctx, &due[i]); err != nil {
			return []domainRepay.Installment{}
		}
	}
	overdue, err := s.repo.ListInstallmentsByStatus(ctx, domainRepay.InstallmentOverdue)
	if err != nil {
		return []domainRepay.Installment{}
	}
	return overdue
}

// ListOverdue returns installments already marked OVERDUE without
// transitioning anything.
func (s *Scheduler) ListOverdue(ctx context.Context) ([]domainRepay.Installment, error) {
	return s.repo.ListInstallmentsByStatus(ctx, domainRepay.InstallmentOverdue)
}

type DefaultReport struct {
	TotalOverdue    int      `json:"total_overdue"`
	OverdueAmount   float64  `json:"overdue_amount"`
	OverdueLoans    []string `json:"overdue_loans"`
	AverageDaysLate float64  `json:"average_days_late"`
}

// BuildDefaultReport sweeps first, then aggregates the overdue book.
func (s *Scheduler) BuildDefaultReport(ctx context.Context) *DefaultReport {
	overdue := s.SweepOverdue(ctx)

	report := &DefaultReport{OverdueLoans: []string{}}
	now := s.now()
	seen := map[string]bool{}
	var daysSum float64
	for i := range overdue {
		inst := &overdue[i]
		report.TotalOverdue++
		report.OverdueAmount += inst.Amount
		daysSum += now.Sub(inst.DueDate).Hours() / 24
		if !seen[inst.LoanID] {
			seen[inst.LoanID] = true
			report.OverdueLoans = append(report.OverdueLoans, inst.LoanID)
		}
	}
	if report.TotalOverdue > 0 {
		report.AverageDaysLate = daysSum / float64(report.TotalOverdue)
	}
	return report
}

// UpcomingDueDates returns PENDING installments due within daysAhead days,
// soonest first.
func (s *Scheduler) UpcomingDueDates(ctx context.Context, daysAhead int) ([]domainRepay.Installment, error) {
	if daysAhead <= 0 {
		daysAhead = 7
	}
	now := s.now()
	return s.repo.ListPendingDueBetween(ctx, now, now.AddDate(0, 0, daysAhead))
}
