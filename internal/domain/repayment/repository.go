package repayment

import (
	"context"
	"time"
)

type Repository interface {
	CreateSchedule(ctx context.Context, s *Schedule) error
	// GetScheduleByLoanID loads the schedule with installments preloaded,
	// ordered by due date ascending.
	GetScheduleByLoanID(ctx context.Context, loanID string) (*Schedule, error)
	ListSchedules(ctx context.Context) ([]Schedule, error)

	SaveInstallment(ctx context.Context, i *Installment) error
	ListInstallmentsByStatus(ctx context.Context, status InstallmentStatus) ([]Installment, error)
	ListPendingDueBefore(ctx context.Context, cutoff time.Time) ([]Installment, error)
	ListPendingDueBetween(ctx context.Context, from, to time.Time) ([]Installment, error)

	CreateTransaction(ctx context.Context, t *Transaction) error
	ListTransactionsByLoanID(ctx context.Context, loanID string) ([]Transaction, error)
}
