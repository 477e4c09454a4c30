package risk

import "context"

type Repository interface {
	Create(ctx context.Context, a *Alert) error
	GetByAlertID(ctx context.Context, alertID string) (*Alert, error)
	ListOpen(ctx context.Context) ([]Alert, error)
	ListByLoanID(ctx context.Context, loanID string) ([]Alert, error)
	Save(ctx context.Context, a *Alert) error
}
