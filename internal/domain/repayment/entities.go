package repayment

import "time"

type InstallmentStatus string

const (
	InstallmentPending InstallmentStatus = "PENDING"
	InstallmentPaid    InstallmentStatus = "PAID"
	InstallmentOverdue InstallmentStatus = "OVERDUE"
)

// Schedule is built exactly once per loan, at the funded transition.
// The layer does not enforce uniqueness itself; the marketplace engine is
// the single invocation point.
type Schedule struct {
	ID     uint64 `gorm:"primaryKey;column:id" json:"-"`
	LoanID string `gorm:"size:32;index:idx_schedules_loan" json:"loan_id"`

	Principal     float64 `gorm:"type:decimal(18,2)" json:"principal"`
	AnnualRate    float64 `gorm:"type:decimal(6,2)" json:"annual_rate"`
	TotalInterest float64 `gorm:"type:decimal(18,2)" json:"total_interest"`
	TotalAmount   float64 `gorm:"type:decimal(18,2)" json:"total_amount"`

	Installments []Installment `gorm:"foreignKey:ScheduleRef;references:ID" json:"installments,omitempty"`

	FinalDueDate time.Time `json:"final_due_date"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Schedule) TableName() string { return "repayment_schedules" }

// Installment amounts are an equal-payment simplification: amount is
// totalAmount/months and the principal/interest parts are flat fractions
// of the respective totals, not a declining-balance split.
type Installment struct {
	ID          uint64 `gorm:"primaryKey;column:id" json:"-"`
	ScheduleRef uint64 `gorm:"column:schedule_ref;index" json:"-"`
	LoanID      string `gorm:"size:32;index:idx_installments_loan" json:"loan_id"`

	Seq           int     `json:"seq"`
	Amount        float64 `gorm:"type:decimal(18,2)" json:"amount"`
	PrincipalPart float64 `gorm:"type:decimal(18,2)" json:"principal_part"`
	InterestPart  float64 `gorm:"type:decimal(18,2)" json:"interest_part"`

	DueDate time.Time         `gorm:"index" json:"due_date"`
	Status  InstallmentStatus `gorm:"size:12;default:'PENDING';index" json:"status"`
	PaidAt  *time.Time        `json:"paid_at,omitempty"`
}

func (Installment) TableName() string { return "repayment_installments" }

// Transaction records every payment attempt at its full requested amount,
// independent of how many installments it actually settled.
type Transaction struct {
	ID     uint64 `gorm:"primaryKey;column:id" json:"-"`
	TxRef  string `gorm:"size:64;uniqueIndex" json:"tx_ref"`
	LoanID string `gorm:"size:32;index:idx_repayment_txs_loan" json:"loan_id"`

	Amount      float64   `gorm:"type:decimal(18,2)" json:"amount"`
	Method      string    `gorm:"size:32" json:"method"`
	ExternalRef string    `gorm:"size:128" json:"external_ref,omitempty"`
	PaidAt      time.Time `json:"paid_at"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (Transaction) TableName() string { return "repayment_transactions" }
