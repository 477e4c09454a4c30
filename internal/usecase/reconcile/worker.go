// Package reconcile retries disbursements that failed at the funded
// transition. Funding state is never rolled back on transfer failure, so
// a loan can sit funded with no funds moved; this worker closes that gap.
package reconcile

import (
	"context"
	"time"

	domainLedger "agrolend-backend/internal/domain/ledger"
	domainLoan "agrolend-backend/internal/domain/loan"
	"agrolend-backend/internal/domain/uow"
	"agrolend-backend/internal/domain/user"
	"agrolend-backend/internal/logger"
)

type Worker struct {
	loans     domainLoan.Repository
	uow       uow.UnitOfWork
	directory user.Directory
	ledger    domainLedger.Ledger
	interval  time.Duration
}

func NewWorker(loans domainLoan.Repository, tx uow.UnitOfWork, dir user.Directory, lg domainLedger.Ledger, interval time.Duration) *Worker {
	if interval <= 0 {
		interval = time.Minute
	}
	return &Worker{loans: loans, uow: tx, directory: dir, ledger: lg, interval: interval}
}

// Run ticks until the context is cancelled.
func (w *Worker) Run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.Sweep(ctx)
		}
	}
}

// Sweep retries every failed disbursement once. Returns the number of
// transfers that succeeded this pass.
func (w *Worker) Sweep(ctx context.Context) int {
	loans, err := w.loans.ListByStatus(ctx, domainLoan.StatusFunded, domainLoan.StatusRepaying)
	if err != nil {
		logger.Get().Errorw("reconcile: listing loans failed", "err", err)
		return 0
	}

	recovered := 0
	for i := range loans {
		if loans[i].DisbursementStatus != domainLoan.DisbursementFailed {
			continue
		}
		loanID := loans[i].LoanID
		err := w.uow.WithinLoanTx(ctx, loanID, func(r uow.Repos, l *domainLoan.LoanRequest) error {
			// Re-check under the lock; another pass may have won.
			if l.DisbursementStatus != domainLoan.DisbursementFailed {
				return nil
			}
			producer, err := w.directory.Resolve(ctx, l.ProducerID)
			if err != nil {
				return err
			}
			txRef, err := w.ledger.Transfer(ctx, producer.CollateralAccount, l.RequestedAmount)
			if err != nil {
				return err
			}
			l.DisbursementStatus = domainLoan.DisbursementSucceeded
			l.DisbursementTxRef = txRef
			recovered++
			return r.Loans.Save(ctx, l)
		})
		if err != nil {
			logger.Get().Warnw("reconcile: disbursement retry failed",
				"loan_id", loanID, "err", err)
		}
	}
	return recovered
}
