package mysql

import (
	"context"

	riskDomain "agrolend-backend/internal/domain/risk"

	"gorm.io/gorm"
)

type RiskRepository struct{ db *gorm.DB }

func NewRiskRepository(db *gorm.DB) *RiskRepository { return &RiskRepository{db: db} }

func (r *RiskRepository) Create(ctx context.Context, a *riskDomain.Alert) error {
	return r.db.WithContext(ctx).Create(a).Error
}

func (r *RiskRepository) GetByAlertID(ctx context.Context, alertID string) (*riskDomain.Alert, error) {
	var out riskDomain.Alert
	res := r.db.WithContext(ctx).Where("alert_id = ?", alertID).First(&out)
	return &out, res.Error
}

func (r *RiskRepository) ListOpen(ctx context.Context) ([]riskDomain.Alert, error) {
	var out []riskDomain.Alert
	res := r.db.WithContext(ctx).
		Where("resolved = ?", false).
		Order("created_at DESC").
		Find(&out)
	return out, res.Error
}

func (r *RiskRepository) ListByLoanID(ctx context.Context, loanID string) ([]riskDomain.Alert, error) {
	var out []riskDomain.Alert
	res := r.db.WithContext(ctx).
		Where("loan_id = ?", loanID).
		Order("created_at DESC").
		Find(&out)
	return out, res.Error
}

func (r *RiskRepository) Save(ctx context.Context, a *riskDomain.Alert) error {
	return r.db.WithContext(ctx).Save(a).Error
}
