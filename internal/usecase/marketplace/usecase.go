// Package marketplace implements the funding state machine: loan request
// creation, investment validation and settlement, funding accumulation,
// and the one-time disbursement at the funded transition.
package marketplace

import (
	"context"
	"errors"
	"fmt"
	"time"

	"agrolend-backend/internal/apperr"
	domainLedger "agrolend-backend/internal/domain/ledger"
	domainLoan "agrolend-backend/internal/domain/loan"
	domainRisk "agrolend-backend/internal/domain/risk"
	"agrolend-backend/internal/domain/uow"
	"agrolend-backend/internal/domain/user"
	"agrolend-backend/internal/logger"
	"agrolend-backend/internal/metrics"
	repayuc "agrolend-backend/internal/usecase/repayment"
	"agrolend-backend/pkg/id"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// collateralFactor is the over-collateralization requirement: every
// invested unit must be backed by 1.5 units of collateral-token balance.
const collateralFactor = 1.5

const requestLifetime = 30 * 24 * time.Hour

type Usecase struct {
	loans     domainLoan.Repository
	uow       uow.UnitOfWork
	directory user.Directory
	ledger    domainLedger.Ledger
	now       func() time.Time
}

func NewUsecase(loans domainLoan.Repository, tx uow.UnitOfWork, dir user.Directory, lg domainLedger.Ledger) *Usecase {
	return &Usecase{
		loans:     loans,
		uow:       tx,
		directory: dir,
		ledger:    lg,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// CreateLoanRequest allocates a new open loan request for a producer.
// Pure allocation: no ledger interaction happens here.
func (u *Usecase) CreateLoanRequest(ctx context.Context, ident *user.Identity, in CreateLoanInput) (*LoanDTO, error) {
	if ident == nil || ident.Role != user.RoleProducer {
		return nil, apperr.ErrProducerRole
	}
	if in.RequestedAmount <= 0 || in.TermMonths <= 0 || in.MaxInterestRate <= 0 ||
		in.CollateralAmount <= 0 || in.CollateralType == "" || in.WarehouseLocation == "" {
		return nil, apperr.WithMessage(apperr.ErrInvalidInput,
			"requested amount, term, rate, collateral and warehouse are all required and positive")
	}

	now := u.now()
	l := &domainLoan.LoanRequest{
		LoanID:             id.NewID32(),
		MarketID:           "mkt-" + uuid.NewString(),
		ProducerID:         ident.UserID,
		RequestedAmount:    in.RequestedAmount,
		TermMonths:         in.TermMonths,
		MaxInterestRate:    in.MaxInterestRate,
		CollateralAmount:   in.CollateralAmount,
		CollateralType:     in.CollateralType,
		UnitPrice:          in.UnitPrice,
		WarehouseLocation:  in.WarehouseLocation,
		CurrentFunding:     0,
		Status:             domainLoan.StatusOpen,
		DisbursementStatus: domainLoan.DisbursementNone,
		ExpiresAt:          now.Add(requestLifetime),
		StatusUpdatedAt:    now,
	}
	if err := u.loans.Create(ctx, l); err != nil {
		return nil, apperr.Wrap(apperr.ErrInternal, err)
	}
	return toDTO(l), nil
}

func rejection(reason *apperr.AppError, message string, l *domainLoan.LoanRequest) *InvestResult {
	metrics.InvestmentsRejected.WithLabelValues(reason.Code).Inc()
	res := &InvestResult{Accepted: false, Reason: reason.Code, Message: message}
	if l != nil {
		res.Loan = toDTO(l)
	}
	return res
}

// Invest runs the full validation chain, settles the position on the
// ledger, and accumulates funding under a per-loan row lock. Business
// rejections come back inside the result; authorization, lookup, and
// settlement failures are errors. The disbursement fires at most once,
// on the transition into funded, and its failure does not roll back the
// committed funding.
func (u *Usecase) Invest(ctx context.Context, loanID string, ident *user.Identity, amount float64) (*InvestResult, error) {
	if ident == nil || ident.Role != user.RoleInvestor {
		return nil, apperr.ErrInvestorRole
	}

	var result *InvestResult
	err := u.uow.WithinLoanTx(ctx, loanID, func(r uow.Repos, l *domainLoan.LoanRequest) error {
		now := u.now()

		if !l.Investable(now) {
			result = rejection(apperr.ErrLoanNotInvestable,
				fmt.Sprintf("loan %s is %s and not open for investment", l.LoanID, l.Status), l)
			return nil
		}
		if l.CurrentFunding+amount > l.RequestedAmount {
			result = rejection(apperr.ErrOverfundingRejected,
				fmt.Sprintf("investment of %.2f would exceed remaining need of %.2f",
					amount, l.RequestedAmount-l.CurrentFunding), l)
			return nil
		}
		if amount <= 0 {
			result = rejection(apperr.ErrInvalidAmount, "investment amount must be positive", l)
			return nil
		}

		producer, err := u.directory.Resolve(ctx, l.ProducerID)
		if err != nil {
			return apperr.Wrap(apperr.ErrInternal, err)
		}

		required := amount * collateralFactor
		balance, err := u.ledger.GetCollateralBalance(ctx, producer.CollateralAccount)
		if err != nil {
			return apperr.Wrap(apperr.ErrLedgerUnavailable, err)
		}
		if balance < required {
			result = rejection(apperr.ErrInsufficientCollateral,
				fmt.Sprintf("producer collateral %.2f is short of the required %.2f (shortfall %.2f)",
					balance, required, required-balance), l)
			return nil
		}

		txRef, err := u.ledger.OpenLendingPosition(ctx, domainLedger.PositionRequest{
			Lender:     ident.UserID,
			Borrower:   l.ProducerID,
			Principal:  amount,
			Collateral: required,
			Rate:       l.MaxInterestRate,
			TermMonths: l.TermMonths,
		})
		if err != nil {
			// Abort atomically: the row lock rolls back with the tx.
			return apperr.Wrap(apperr.ErrSettlementFailed, err)
		}

		l.CurrentFunding += amount
		if err := r.Loans.AddContribution(ctx, &domainLoan.Contribution{
			LoanRef:    l.ID,
			LoanID:     l.LoanID,
			InvestorID: ident.UserID,
			Amount:     amount,
			TxRef:      txRef,
		}); err != nil {
			return apperr.Wrap(apperr.ErrInternal, err)
		}

		if l.CurrentFunding >= l.RequestedAmount {
			if l.Status != domainLoan.StatusFunded {
				l.Status = domainLoan.StatusFunded
				l.StatusUpdatedAt = now
				u.onFunded(ctx, r, l, producer)
			}
		} else {
			l.Status = domainLoan.StatusFunding
			l.StatusUpdatedAt = now
		}

		if err := r.Loans.Save(ctx, l); err != nil {
			return apperr.Wrap(apperr.ErrInternal, err)
		}

		metrics.InvestmentsAccepted.Inc()
		result = &InvestResult{Accepted: true, TxRef: txRef, Loan: toDTO(l)}
		return nil
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.ErrLoanNotFound
		}
		return nil, err
	}
	return result, nil
}

// onFunded fires the side effects of the funded transition: schedule
// creation and the one-time disbursement. The DisbursementNone guard plus
// the row lock give at-most-once semantics; a failed transfer is recorded
// for the reconcile worker, never rolled back and never surfaced to the
// investor.
func (u *Usecase) onFunded(ctx context.Context, r uow.Repos, l *domainLoan.LoanRequest, producer *user.Identity) {
	if _, err := repayuc.NewScheduler(r.Repayments).BuildSchedule(ctx, l, l.MaxInterestRate); err != nil {
		logger.Get().Errorw("funded transition: schedule creation failed",
			"loan_id", l.LoanID, "err", err)
	}

	if l.DisbursementStatus != domainLoan.DisbursementNone {
		return
	}
	l.DisbursementStatus = domainLoan.DisbursementPending
	metrics.DisbursementsFired.Inc()

	txRef, err := u.ledger.Transfer(ctx, producer.CollateralAccount, l.RequestedAmount)
	if err != nil {
		l.DisbursementStatus = domainLoan.DisbursementFailed
		metrics.DisbursementsFailed.Inc()
		logger.Get().Errorw("disbursement transfer failed; queued for reconciliation",
			"loan_id", l.LoanID, "amount", l.RequestedAmount, "err", err)
		return
	}
	l.DisbursementStatus = domainLoan.DisbursementSucceeded
	l.DisbursementTxRef = txRef
}

// Get returns a loan by public id.
func (u *Usecase) Get(ctx context.Context, loanID string) (*LoanDTO, error) {
	l, err := u.loans.GetByLoanID(ctx, loanID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.ErrLoanNotFound
		}
		return nil, err
	}
	return toDTO(l), nil
}

// ListOpen returns requests still accepting investment.
func (u *Usecase) ListOpen(ctx context.Context) ([]LoanDTO, error) {
	loans, err := u.loans.ListByStatus(ctx, domainLoan.StatusOpen, domainLoan.StatusFunding)
	if err != nil {
		return nil, err
	}
	out := make([]LoanDTO, 0, len(loans))
	for i := range loans {
		out = append(out, *toDTO(&loans[i]))
	}
	return out, nil
}

// Position classifies the caller against a loan. Unknown loans yield
// position none / status not_found; this read never errors on lookup.
func (u *Usecase) Position(ctx context.Context, loanID string, ident *user.Identity) (*Position, error) {
	l, err := u.loans.GetByLoanID(ctx, loanID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &Position{LoanID: loanID, Position: "none", Status: "not_found"}, nil
		}
		return nil, err
	}

	if ident != nil && l.ProducerID == ident.UserID {
		return &Position{LoanID: loanID, Position: "borrower", Status: string(l.Status), Amount: l.RequestedAmount}, nil
	}

	if ident != nil {
		contribs, err := u.loans.ListContributions(ctx, loanID)
		if err != nil {
			return nil, err
		}
		var total float64
		for _, c := range contribs {
			if c.InvestorID == ident.UserID {
				total += c.Amount
			}
		}
		if total > 0 {
			return &Position{LoanID: loanID, Position: "lender", Status: string(l.Status), Amount: total}, nil
		}
	}
	return &Position{LoanID: loanID, Position: "none", Status: string(l.Status)}, nil
}

// MarketStats aggregates the whole book.
func (u *Usecase) MarketStats(ctx context.Context) (*Stats, error) {
	loans, err := u.loans.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	stats := &Stats{TotalLoans: len(loans)}
	var rateSum float64
	for i := range loans {
		l := &loans[i]
		stats.TotalFunding += l.CurrentFunding
		rateSum += l.MaxInterestRate
		if l.Status == domainLoan.StatusOpen || l.Status == domainLoan.StatusFunding {
			stats.ActiveLoans++
		}
	}
	if stats.TotalLoans > 0 {
		stats.AverageInterestRate = rateSum / float64(stats.TotalLoans)
	}
	metrics.ActiveLoans.Set(float64(stats.ActiveLoans))
	return stats, nil
}

// Liquidate transitions a loan with live exposure to defaulted and leaves
// a resolved liquidation alert as the audit trail.
func (u *Usecase) Liquidate(ctx context.Context, loanID, reason string) (*LoanDTO, error) {
	var dto *LoanDTO
	err := u.uow.WithinLoanTx(ctx, loanID, func(r uow.Repos, l *domainLoan.LoanRequest) error {
		switch l.Status {
		case domainLoan.StatusFunding, domainLoan.StatusFunded, domainLoan.StatusRepaying:
		default:
			return apperr.ErrInvalidTransition
		}
		now := u.now()
		l.Status = domainLoan.StatusDefaulted
		l.StatusUpdatedAt = now
		if err := r.Loans.Save(ctx, l); err != nil {
			return apperr.Wrap(apperr.ErrInternal, err)
		}

		resolvedAt := now
		trail := &domainRisk.Alert{
			AlertID:    uuid.NewString(),
			LoanID:     l.LoanID,
			Type:       domainRisk.AlertLiquidationWarning,
			Severity:   domainRisk.SeverityCritical,
			Message:    "loan liquidated: " + reason,
			Resolved:   true,
			ResolvedAt: &resolvedAt,
		}
		if err := r.Alerts.Create(ctx, trail); err != nil {
			return apperr.Wrap(apperr.ErrInternal, err)
		}
		dto = toDTO(l)
		return nil
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.ErrLoanNotFound
		}
		return nil, err
	}
	return dto, nil
}

// MarkRepaying is the external trigger moving a funded loan into its
// repayment phase.
func (u *Usecase) MarkRepaying(ctx context.Context, loanID string) (*LoanDTO, error) {
	return u.transition(ctx, loanID, domainLoan.StatusFunded, domainLoan.StatusRepaying)
}

// MarkCompleted closes out a fully repaid loan.
func (u *Usecase) MarkCompleted(ctx context.Context, loanID string) (*LoanDTO, error) {
	return u.transition(ctx, loanID, domainLoan.StatusRepaying, domainLoan.StatusCompleted)
}

func (u *Usecase) transition(ctx context.Context, loanID string, from, to domainLoan.Status) (*LoanDTO, error) {
	var dto *LoanDTO
	err := u.uow.WithinLoanTx(ctx, loanID, func(r uow.Repos, l *domainLoan.LoanRequest) error {
		if l.Status != from {
			return apperr.ErrInvalidTransition
		}
		l.Status = to
		l.StatusUpdatedAt = u.now()
		if err := r.Loans.Save(ctx, l); err != nil {
			return apperr.Wrap(apperr.ErrInternal, err)
		}
		dto = toDTO(l)
		return nil
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.ErrLoanNotFound
		}
		return nil, err
	}
	return dto, nil
}
