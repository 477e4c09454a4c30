package dashboard

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"agrolend-backend/internal/apperr"
	domainLoan "agrolend-backend/internal/domain/loan"
	domainRepay "agrolend-backend/internal/domain/repayment"
	"agrolend-backend/internal/domain/user"
	"agrolend-backend/internal/testutil/memstore"
)

var (
	producerIdent = &user.Identity{UserID: strings.Repeat("p", 32), Role: user.RoleProducer}
	investorIdent = &user.Identity{UserID: strings.Repeat("i", 32), Role: user.RoleInvestor}
)

func seedLoan(t *testing.T, loans *memstore.Loans, loanID string, requested, funding float64, status domainLoan.Status) *domainLoan.LoanRequest {
	t.Helper()

	l := &domainLoan.LoanRequest{
		LoanID:           loanID,
		ProducerID:       producerIdent.UserID,
		RequestedAmount:  requested,
		CurrentFunding:   funding,
		TermMonths:       6,
		MaxInterestRate:  12,
		CollateralAmount: 200,
		UnitPrice:        300,
		CollateralType:   "soy",
		Status:           status,
	}
	if err := loans.Create(context.Background(), l); err != nil {
		t.Fatalf("seed loan: %v", err)
	}
	return l
}

func TestExpectedReturn(t *testing.T) {
	cases := map[domainLoan.RiskTier]float64{
		domainLoan.TierA: 12,
		domainLoan.TierB: 15,
		domainLoan.TierC: 18,
	}
	for tier, want := range cases {
		if got := ExpectedReturn(tier); got != want {
			t.Fatalf("tier %s: got %v, want %v", tier, got, want)
		}
	}
}

func TestProducerView(t *testing.T) {
	loans := memstore.NewLoans()
	repay := memstore.NewRepayments()
	uc := NewUsecase(loans, repay)
	ctx := context.Background()

	seedLoan(t, loans, strings.Repeat("a", 32), 30_000, 30_000, domainLoan.StatusRepaying)
	seedLoan(t, loans, strings.Repeat("b", 32), 20_000, 5_000, domainLoan.StatusFunding)

	paidAt := time.Now().UTC()
	sched := &domainRepay.Schedule{
		LoanID:      strings.Repeat("a", 32),
		Principal:   30_000,
		TotalAmount: 31_000,
		Installments: []domainRepay.Installment{
			{LoanID: strings.Repeat("a", 32), Seq: 1, Amount: 5_166.67, Status: domainRepay.InstallmentPaid, PaidAt: &paidAt},
			{LoanID: strings.Repeat("a", 32), Seq: 2, Amount: 5_166.67, Status: domainRepay.InstallmentPending},
			{LoanID: strings.Repeat("a", 32), Seq: 3, Amount: 5_166.67, Status: domainRepay.InstallmentOverdue},
		},
	}
	if err := repay.CreateSchedule(ctx, sched); err != nil {
		t.Fatalf("seed schedule: %v", err)
	}

	view, err := uc.Producer(ctx, producerIdent)
	if err != nil {
		t.Fatalf("Producer err: %v", err)
	}
	if len(view.Loans) != 2 {
		t.Fatalf("loans=%d", len(view.Loans))
	}
	if view.TotalRequested != 50_000 || view.TotalFunded != 35_000 {
		t.Fatalf("requested=%v funded=%v", view.TotalRequested, view.TotalFunded)
	}

	first := view.Loans[0]
	if first.InstallmentsPaid != 1 || first.InstallmentsDue != 2 {
		t.Fatalf("paid=%d due=%d", first.InstallmentsPaid, first.InstallmentsDue)
	}
	// no schedule yet for the second loan
	second := view.Loans[1]
	if second.InstallmentsPaid != 0 || second.InstallmentsDue != 0 {
		t.Fatalf("second paid=%d due=%d", second.InstallmentsPaid, second.InstallmentsDue)
	}
}

func TestProducerView_RejectsInvestor(t *testing.T) {
	uc := NewUsecase(memstore.NewLoans(), memstore.NewRepayments())

	if _, err := uc.Producer(context.Background(), investorIdent); !errors.Is(err, apperr.ErrProducerRole) {
		t.Fatalf("want ErrProducerRole, got %v", err)
	}
}

func TestInvestorView_AggregatesRepeatContributions(t *testing.T) {
	loans := memstore.NewLoans()
	uc := NewUsecase(loans, memstore.NewRepayments())
	ctx := context.Background()

	a := seedLoan(t, loans, strings.Repeat("a", 32), 30_000, 30_000, domainLoan.StatusFunded) // LTV 50 -> A
	b := seedLoan(t, loans, strings.Repeat("b", 32), 20_000, 5_000, domainLoan.StatusFunding)
	b.CollateralAmount = 50 // LTV 20000/(50*300)=133 -> C
	if err := loans.Save(ctx, b); err != nil {
		t.Fatalf("resize collateral: %v", err)
	}

	for _, c := range []domainLoan.Contribution{
		{LoanRef: a.ID, LoanID: a.LoanID, InvestorID: investorIdent.UserID, Amount: 10_000},
		{LoanRef: b.ID, LoanID: b.LoanID, InvestorID: investorIdent.UserID, Amount: 3_000},
		{LoanRef: a.ID, LoanID: a.LoanID, InvestorID: investorIdent.UserID, Amount: 5_000},
		{LoanRef: a.ID, LoanID: a.LoanID, InvestorID: strings.Repeat("o", 32), Amount: 15_000},
	} {
		cc := c
		if err := loans.AddContribution(ctx, &cc); err != nil {
			t.Fatalf("seed contribution: %v", err)
		}
	}

	view, err := uc.Investor(ctx, investorIdent)
	if err != nil {
		t.Fatalf("Investor err: %v", err)
	}
	if len(view.Holdings) != 2 {
		t.Fatalf("holdings=%d", len(view.Holdings))
	}
	if view.TotalInvested != 18_000 {
		t.Fatalf("total invested=%v", view.TotalInvested)
	}

	// first-seen order: loan a then loan b
	if view.Holdings[0].LoanID != a.LoanID || view.Holdings[0].Invested != 15_000 {
		t.Fatalf("holding[0]=%+v", view.Holdings[0])
	}
	if view.Holdings[0].ExpectedReturn != 12 {
		t.Fatalf("tier A return=%v", view.Holdings[0].ExpectedReturn)
	}
	if view.Holdings[1].LoanID != b.LoanID || view.Holdings[1].ExpectedReturn != 18 {
		t.Fatalf("holding[1]=%+v", view.Holdings[1])
	}
}

func TestInvestorView_RejectsProducer(t *testing.T) {
	uc := NewUsecase(memstore.NewLoans(), memstore.NewRepayments())

	if _, err := uc.Investor(context.Background(), producerIdent); !errors.Is(err, apperr.ErrInvestorRole) {
		t.Fatalf("want ErrInvestorRole, got %v", err)
	}
}
