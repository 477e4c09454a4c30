package loan

import "context"

type Repository interface {
	Create(ctx context.Context, l *LoanRequest) error
	GetByLoanID(ctx context.Context, loanID string) (*LoanRequest, error)
	// GetByLoanIDForUpdate locks the row for the duration of the enclosing
	// transaction. Funding mutations must go through this.
	GetByLoanIDForUpdate(ctx context.Context, loanID string) (*LoanRequest, error)
	Save(ctx context.Context, l *LoanRequest) error

	ListByStatus(ctx context.Context, statuses ...Status) ([]LoanRequest, error)
	ListByProducer(ctx context.Context, producerID string) ([]LoanRequest, error)
	ListAll(ctx context.Context) ([]LoanRequest, error)

	AddContribution(ctx context.Context, c *Contribution) error
	ListContributions(ctx context.Context, loanID string) ([]Contribution, error)
	ListContributionsByInvestor(ctx context.Context, investorID string) ([]Contribution, error)
}
