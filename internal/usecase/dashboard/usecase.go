// Package dashboard exposes the producer and investor views over the
// same loan store the marketplace engine mutates.
package dashboard

import (
	"context"
	"errors"

	"agrolend-backend/internal/apperr"
	domainLoan "agrolend-backend/internal/domain/loan"
	domainRepay "agrolend-backend/internal/domain/repayment"
	"agrolend-backend/internal/domain/user"

	"gorm.io/gorm"
)

// Expected annual return is the 12% base plus a risk-tier premium.
const baseAnnualReturn = 12.0

var tierPremium = map[domainLoan.RiskTier]float64{
	domainLoan.TierA: 0,
	domainLoan.TierB: 3,
	domainLoan.TierC: 6,
}

// ExpectedReturn returns the annual percentage an investor earns on a
// loan of the given risk tier.
func ExpectedReturn(tier domainLoan.RiskTier) float64 {
	return baseAnnualReturn + tierPremium[tier]
}

type Usecase struct {
	loans      domainLoan.Repository
	repayments domainRepay.Repository
}

func NewUsecase(loans domainLoan.Repository, repayments domainRepay.Repository) *Usecase {
	return &Usecase{loans: loans, repayments: repayments}
}

type ProducerLoan struct {
	LoanID           string  `json:"loan_id"`
	Status           string  `json:"status"`
	RequestedAmount  float64 `json:"requested_amount"`
	CurrentFunding   float64 `json:"current_funding"`
	LTV              float64 `json:"ltv"`
	RiskTier         string  `json:"risk_tier"`
	InstallmentsPaid int     `json:"installments_paid"`
	InstallmentsDue  int     `json:"installments_due"`
}

type ProducerView struct {
	ProducerID     string         `json:"producer_id"`
	Loans          []ProducerLoan `json:"loans"`
	TotalRequested float64        `json:"total_requested"`
	TotalFunded    float64        `json:"total_funded"`
}

func (u *Usecase) Producer(ctx context.Context, ident *user.Identity) (*ProducerView, error) {
	if ident == nil || ident.Role != user.RoleProducer {
		return nil, apperr.ErrProducerRole
	}
	loans, err := u.loans.ListByProducer(ctx, ident.UserID)
	if err != nil {
		return nil, err
	}

	view := &ProducerView{ProducerID: ident.UserID, Loans: []ProducerLoan{}}
	for i := range loans {
		l := &loans[i]
		row := ProducerLoan{
			LoanID:          l.LoanID,
			Status:          string(l.Status),
			RequestedAmount: l.RequestedAmount,
			CurrentFunding:  l.CurrentFunding,
			LTV:             l.LTV(),
			RiskTier:        string(l.RiskTier()),
		}
		if sched, err := u.repayments.GetScheduleByLoanID(ctx, l.LoanID); err == nil {
			for _, inst := range sched.Installments {
				if inst.Status == domainRepay.InstallmentPaid {
					row.InstallmentsPaid++
				} else {
					row.InstallmentsDue++
				}
			}
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		view.Loans = append(view.Loans, row)
		view.TotalRequested += l.RequestedAmount
		view.TotalFunded += l.CurrentFunding
	}
	return view, nil
}

type InvestorHolding struct {
	LoanID         string  `json:"loan_id"`
	Status         string  `json:"status"`
	Invested       float64 `json:"invested"`
	RiskTier       string  `json:"risk_tier"`
	ExpectedReturn float64 `json:"expected_annual_return"`
}

type InvestorView struct {
	InvestorID    string            `json:"investor_id"`
	Holdings      []InvestorHolding `json:"holdings"`
	TotalInvested float64           `json:"total_invested"`
}

// Investor aggregates duplicate contributions per loan into one holding.
func (u *Usecase) Investor(ctx context.Context, ident *user.Identity) (*InvestorView, error) {
	if ident == nil || ident.Role != user.RoleInvestor {
		return nil, apperr.ErrInvestorRole
	}
	contribs, err := u.loans.ListContributionsByInvestor(ctx, ident.UserID)
	if err != nil {
		return nil, err
	}

	byLoan := map[string]float64{}
	order := []string{}
	for _, c := range contribs {
		if _, seen := byLoan[c.LoanID]; !seen {
			order = append(order, c.LoanID)
		}
		byLoan[c.LoanID] += c.Amount
	}

	view := &InvestorView{InvestorID: ident.UserID, Holdings: []InvestorHolding{}}
	for _, loanID := range order {
		l, err := u.loans.GetByLoanID(ctx, loanID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				continue
			}
			return nil, err
		}
		tier := l.RiskTier()
		view.Holdings = append(view.Holdings, InvestorHolding{
			LoanID:         loanID,
			Status:         string(l.Status),
			Invested:       byLoan[loanID],
			RiskTier:       string(tier),
			ExpectedReturn: ExpectedReturn(tier),
		})
		view.TotalInvested += byLoan[loanID]
	}
	return view, nil
}
