package memstore

import (
	"context"
	"sync"

	"agrolend-backend/internal/domain/loan"
	"agrolend-backend/internal/domain/uow"
)

// UoW serializes WithinLoanTx calls per loan id with a keyed mutex,
// mirroring the row lock the gorm unit of work takes. It has no rollback
// semantics; callers that need atomicity assertions check state directly.
type UoW struct {
	Loans      *Loans
	Repayments *Repayments
	Alerts     *Alerts

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewUoW(loans *Loans, repayments *Repayments, alerts *Alerts) *UoW {
	return &UoW{
		Loans:      loans,
		Repayments: repayments,
		Alerts:     alerts,
		locks:      map[string]*sync.Mutex{},
	}
}

func (u *UoW) repos() uow.Repos {
	return uow.Repos{Loans: u.Loans, Repayments: u.Repayments, Alerts: u.Alerts}
}

func (u *UoW) lockFor(loanID string) *sync.Mutex {
	u.mu.Lock()
	defer u.mu.Unlock()
	m, ok := u.locks[loanID]
	if !ok {
		m = &sync.Mutex{}
		u.locks[loanID] = m
	}
	return m
}

func (u *UoW) WithinTx(_ context.Context, fn func(r uow.Repos) error) error {
	return fn(u.repos())
}

func (u *UoW) WithinLoanTx(ctx context.Context, loanID string, fn func(r uow.Repos, l *loan.LoanRequest) error) error {
	m := u.lockFor(loanID)
	m.Lock()
	defer m.Unlock()

	l, err := u.Loans.GetByLoanIDForUpdate(ctx, loanID)
	if err != nil {
		return err
	}
	return fn(u.repos(), l)
}
