// Package ledgermock is a function-backed test double for the ledger
// collaborator.
package ledgermock

import (
	"context"
	"errors"
	"sync/atomic"

	"agrolend-backend/internal/domain/ledger"
)

type Ledger struct {
	GetCollateralBalanceFn func(ctx context.Context, accountRef string) (float64, error)
	OpenLendingPositionFn  func(ctx context.Context, req ledger.PositionRequest) (string, error)
	TransferFn             func(ctx context.Context, to string, amount float64) (string, error)

	Transfers atomic.Int64
	Positions atomic.Int64
}

func (m *Ledger) GetCollateralBalance(ctx context.Context, accountRef string) (float64, error) {
	if m.GetCollateralBalanceFn != nil {
		return m.GetCollateralBalanceFn(ctx, accountRef)
	}
	return 0, errors.New("not implemented")
}

func (m *Ledger) OpenLendingPosition(ctx context.Context, req ledger.PositionRequest) (string, error) {
	m.Positions.Add(1)
	if m.OpenLendingPositionFn != nil {
		return m.OpenLendingPositionFn(ctx, req)
	}
	return "pos-mock", nil
}

func (m *Ledger) Transfer(ctx context.Context, to string, amount float64) (string, error) {
	m.Transfers.Add(1)
	if m.TransferFn != nil {
		return m.TransferFn(ctx, to, amount)
	}
	return "tx-mock", nil
}
