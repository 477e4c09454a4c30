package mysql

import (
	"context"

	loanDomain "agrolend-backend/internal/domain/loan"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type LoanRepository struct{ db *gorm.DB }

func NewLoanRepository(db *gorm.DB) *LoanRepository { return &LoanRepository{db: db} }

func (r *LoanRepository) Create(ctx context.Context, l *loanDomain.LoanRequest) error {
	return r.db.WithContext(ctx).Create(l).Error
}

func (r *LoanRepository) Save(ctx context.Context, l *loanDomain.LoanRequest) error {
	return r.db.WithContext(ctx).Save(l).Error
}

func (r *LoanRepository) GetByLoanID(ctx context.Context, loanID string) (*loanDomain.LoanRequest, error) {
	var out loanDomain.LoanRequest
	res := r.db.WithContext(ctx).Where("loan_id = ?", loanID).First(&out)
	return &out, res.Error
}

// GetByLoanIDForUpdate takes a row lock; only meaningful inside a
// transaction-bound repository.
func (r *LoanRepository) GetByLoanIDForUpdate(ctx context.Context, loanID string) (*loanDomain.LoanRequest, error) {
	var out loanDomain.LoanRequest
	res := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("loan_id = ?", loanID).
		First(&out)
	return &out, res.Error
}

func (r *LoanRepository) ListByStatus(ctx context.Context, statuses ...loanDomain.Status) ([]loanDomain.LoanRequest, error) {
	var out []loanDomain.LoanRequest
	res := r.db.WithContext(ctx).
		Where("status IN ?", statuses).
		Order("created_at DESC").
		Find(&out)
	return out, res.Error
}

func (r *LoanRepository) ListByProducer(ctx context.Context, producerID string) ([]loanDomain.LoanRequest, error) {
	var out []loanDomain.LoanRequest
	res := r.db.WithContext(ctx).
		Where("producer_id = ?", producerID).
		Order("created_at DESC").
		Find(&out)
	return out, res.Error
}

func (r *LoanRepository) ListAll(ctx context.Context) ([]loanDomain.LoanRequest, error) {
	var out []loanDomain.LoanRequest
	res := r.db.WithContext(ctx).Order("created_at DESC").Find(&out)
	return out, res.Error
}

func (r *LoanRepository) AddContribution(ctx context.Context, c *loanDomain.Contribution) error {
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *LoanRepository) ListContributions(ctx context.Context, loanID string) ([]loanDomain.Contribution, error) {
	var out []loanDomain.Contribution
	res := r.db.WithContext(ctx).
		Where("loan_id = ?", loanID).
		Order("created_at ASC, id ASC").
		Find(&out)
	return out, res.Error
}

func (r *LoanRepository) ListContributionsByInvestor(ctx context.Context, investorID string) ([]loanDomain.Contribution, error) {
	var out []loanDomain.Contribution
	res := r.db.WithContext(ctx).
		Where("investor_id = ?", investorID).
		Order("created_at ASC, id ASC").
		Find(&out)
	return out, res.Error
}
