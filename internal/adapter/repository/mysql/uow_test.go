package mysql

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	loanDomain "agrolend-backend/internal/domain/loan"
	riskDomain "agrolend-backend/internal/domain/risk"
	"agrolend-backend/internal/domain/uow"
	"agrolend-backend/internal/testutil"
)

// WithinLoanTx takes a SELECT ... FOR UPDATE row lock, which SQLite does
// not parse; its serialization semantics are covered by the usecase tests
// against the keyed-mutex unit of work. These tests cover commit and
// rollback of WithinTx.

func TestGormUoW_WithinTx_Commit(t *testing.T) {
	db := testutil.SetupTestDB(t)
	guow := NewGormUoW(db)
	ctx := context.Background()

	err := guow.WithinTx(ctx, func(r uow.Repos) error {
		l := makeLoan(strings.Repeat("a", 32), loanDomain.StatusFunding)
		if err := r.Loans.Create(ctx, l); err != nil {
			return err
		}
		return r.Alerts.Create(ctx, &riskDomain.Alert{
			AlertID:  "alert-1",
			LoanID:   l.LoanID,
			Type:     riskDomain.AlertLTVHigh,
			Severity: riskDomain.SeverityHigh,
			Message:  "x",
		})
	})
	if err != nil {
		t.Fatalf("WithinTx: %v", err)
	}

	loans := NewLoanRepository(db)
	if _, err := loans.GetByLoanID(ctx, strings.Repeat("a", 32)); err != nil {
		t.Fatalf("loan not committed: %v", err)
	}
	alerts := NewRiskRepository(db)
	if _, err := alerts.GetByAlertID(ctx, "alert-1"); err != nil {
		t.Fatalf("alert not committed: %v", err)
	}
}

func TestGormUoW_WithinTx_RollbackOnError(t *testing.T) {
	db := testutil.SetupTestDB(t)
	guow := NewGormUoW(db)
	ctx := context.Background()

	boom := errors.New("boom")
	err := guow.WithinTx(ctx, func(r uow.Repos) error {
		if err := r.Loans.Create(ctx, makeLoan(strings.Repeat("a", 32), loanDomain.StatusOpen)); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("WithinTx err: %v", err)
	}

	loans := NewLoanRepository(db)
	if _, err := loans.GetByLoanID(ctx, strings.Repeat("a", 32)); err == nil {
		t.Fatalf("loan survived rollback")
	}
}

func TestGormUoW_WithinTx_ReposShareTheTransaction(t *testing.T) {
	db := testutil.SetupTestDB(t)
	guow := NewGormUoW(db)
	ctx := context.Background()

	err := guow.WithinTx(ctx, func(r uow.Repos) error {
		l := makeLoan(strings.Repeat("a", 32), loanDomain.StatusFunding)
		if err := r.Loans.Create(ctx, l); err != nil {
			return err
		}
		// visible inside the same tx before commit
		got, err := r.Loans.GetByLoanID(ctx, l.LoanID)
		if err != nil {
			return err
		}
		got.CurrentFunding = 5_000
		got.StatusUpdatedAt = time.Now().UTC()
		return r.Loans.Save(ctx, got)
	})
	if err != nil {
		t.Fatalf("WithinTx: %v", err)
	}

	got, err := NewLoanRepository(db).GetByLoanID(ctx, strings.Repeat("a", 32))
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if got.CurrentFunding != 5_000 {
		t.Fatalf("funding = %v", got.CurrentFunding)
	}
}
