package mysql

import (
	"context"
	"time"

	repayDomain "agrolend-backend/internal/domain/repayment"

	"gorm.io/gorm"
)

type RepaymentRepository struct{ db *gorm.DB }

func NewRepaymentRepository(db *gorm.DB) *RepaymentRepository { return &RepaymentRepository{db: db} }

func (r *RepaymentRepository) CreateSchedule(ctx context.Context, s *repayDomain.Schedule) error {
	return r.db.WithContext(ctx).Create(s).Error
}

func (r *RepaymentRepository) GetScheduleByLoanID(ctx context.Context, loanID string) (*repayDomain.Schedule, error) {
	var out repayDomain.Schedule
	res := r.db.WithContext(ctx).
		Preload("Installments", func(db *gorm.DB) *gorm.DB {
			return db.Order("due_date ASC, seq ASC")
		}).
		Where("loan_id = ?", loanID).
		First(&out)
	return &out, res.Error
}

func (r *RepaymentRepository) ListSchedules(ctx context.Context) ([]repayDomain.Schedule, error) {
	var out []repayDomain.Schedule
	res := r.db.WithContext(ctx).
		Preload("Installments", func(db *gorm.DB) *gorm.DB {
			return db.Order("due_date ASC, seq ASC")
		}).
		Find(&out)
	return out, res.Error
}

func (r *RepaymentRepository) SaveInstallment(ctx context.Context, i *repayDomain.Installment) error {
	return r.db.WithContext(ctx).Save(i).Error
}

func (r *RepaymentRepository) ListInstallmentsByStatus(ctx context.Context, status repayDomain.InstallmentStatus) ([]repayDomain.Installment, error) {
	var out []repayDomain.Installment
	res := r.db.WithContext(ctx).
		Where("status = ?", status).
		Order("due_date ASC, seq ASC").
		Find(&out)
	return out, res.Error
}

func (r *RepaymentRepository) ListPendingDueBefore(ctx context.Context, cutoff time.Time) ([]repayDomain.Installment, error) {
	var out []repayDomain.Installment
	res := r.db.WithContext(ctx).
		Where("status = ? AND due_date < ?", repayDomain.InstallmentPending, cutoff).
		Order("due_date ASC, seq ASC").
		Find(&out)
	return out, res.Error
}

func (r *RepaymentRepository) ListPendingDueBetween(ctx context.Context, from, to time.Time) ([]repayDomain.Installment, error) {
	var out []repayDomain.Installment
	res := r.db.WithContext(ctx).
		Where("status = ? AND due_date >= ? AND due_date <= ?", repayDomain.InstallmentPending, from, to).
		Order("due_date ASC, seq ASC").
		Find(&out)
	return out, res.Error
}

func (r *RepaymentRepository) CreateTransaction(ctx context.Context, t *repayDomain.Transaction) error {
	return r.db.WithContext(ctx).Create(t).Error
}

func (r *RepaymentRepository) ListTransactionsByLoanID(ctx context.Context, loanID string) ([]repayDomain.Transaction, error) {
	var out []repayDomain.Transaction
	res := r.db.WithContext(ctx).
		Where("loan_id = ?", loanID).
		Order("paid_at ASC, id ASC").
		Find(&out)
	return out, res.Error
}
