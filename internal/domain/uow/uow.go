package uow

import (
	"context"

	"agrolend-backend/internal/domain/loan"
	"agrolend-backend/internal/domain/repayment"
	"agrolend-backend/internal/domain/risk"
)

type Repos struct {
	Loans      loan.Repository
	Repayments repayment.Repository
	Alerts     risk.Repository
}

type UnitOfWork interface {
	WithinTx(ctx context.Context, fn func(r Repos) error) error
	// WithinLoanTx locks the loan row up-front so concurrent investments
	// against the same loan serialize on the funding accumulator.
	WithinLoanTx(ctx context.Context, loanID string, fn func(r Repos, l *loan.LoanRequest) error) error
}
