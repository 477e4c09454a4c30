// Package ledger defines the contract against the external settlement
// system. Chain specifics stay behind this interface; the engine only
// cares about collateral balances, lending positions, and transfers.
package ledger

import "context"

type PositionRequest struct {
	Lender     string  `json:"lender"`
	Borrower   string  `json:"borrower"`
	Principal  float64 `json:"principal"`
	Collateral float64 `json:"collateral"`
	Rate       float64 `json:"rate"`
	TermMonths int     `json:"term_months"`
}

type Ledger interface {
	GetCollateralBalance(ctx context.Context, accountRef string) (float64, error)
	// OpenLendingPosition records a collateralized position. Failure must
	// abort the enclosing investment atomically.
	OpenLendingPosition(ctx context.Context, req PositionRequest) (txRef string, err error)
	// Transfer moves funds best-effort; callers decide whether failure is
	// fatal (settlement) or recorded for retry (disbursement).
	Transfer(ctx context.Context, to string, amount float64) (txRef string, err error)
}
