package loan

import (
	"time"

	"gorm.io/gorm"
)

type Status string

const (
	StatusOpen      Status = "open"
	StatusFunding   Status = "funding"
	StatusFunded    Status = "funded"
	StatusRepaying  Status = "repaying"
	StatusCompleted Status = "completed"
	StatusDefaulted Status = "defaulted"
)

// DisbursementStatus tracks the one-time transfer of the requested amount
// to the producer after full funding. A failed disbursement keeps the loan
// funded; the reconcile worker retries the transfer.
type DisbursementStatus string

const (
	DisbursementNone      DisbursementStatus = "none"
	DisbursementPending   DisbursementStatus = "pending"
	DisbursementSucceeded DisbursementStatus = "succeeded"
	DisbursementFailed    DisbursementStatus = "failed"
)

type RiskTier string

const (
	TierA RiskTier = "A"
	TierB RiskTier = "B"
	TierC RiskTier = "C"
)

type LoanRequest struct {
	ID       uint64 `gorm:"primaryKey;column:id" json:"-"`
	LoanID   string `gorm:"size:32;uniqueIndex:ux_loan_requests_loan_id" json:"loan_id"`
	MarketID string `gorm:"size:48;index" json:"market_id"`

	ProducerID string `gorm:"size:32;index:idx_loan_requests_producer" json:"producer_id"`

	RequestedAmount   float64 `gorm:"type:decimal(18,2)" json:"requested_amount"`
	TermMonths        int     `json:"term_months"`
	MaxInterestRate   float64 `gorm:"type:decimal(6,2)" json:"max_interest_rate"`
	CollateralAmount  float64 `gorm:"type:decimal(18,2)" json:"collateral_amount"`
	CollateralType    string  `gorm:"size:32" json:"collateral_type"`
	UnitPrice         float64 `gorm:"type:decimal(18,2)" json:"unit_price"`
	WarehouseLocation string  `gorm:"size:128" json:"warehouse_location"`

	CurrentFunding float64 `gorm:"type:decimal(18,2)" json:"current_funding"`
	Status         Status  `gorm:"size:16;default:'open';index" json:"status"`

	DisbursementStatus DisbursementStatus `gorm:"size:16;default:'none'" json:"disbursement_status"`
	DisbursementTxRef  string             `gorm:"size:64" json:"disbursement_tx_ref,omitempty"`

	Contributions []Contribution `gorm:"foreignKey:LoanRef;references:ID" json:"contributions,omitempty"`

	ExpiresAt       time.Time      `json:"expires_at"`
	StatusUpdatedAt time.Time      `gorm:"autoCreateTime" json:"status_updated_at"`
	CreatedAt       time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`
}

func (LoanRequest) TableName() string { return "loan_requests" }

// Contribution is one investor ledger entry against a loan. Repeat
// contributions by the same investor stay distinct rows and are summed
// only at reporting time.
type Contribution struct {
	ID         uint64    `gorm:"primaryKey;column:id" json:"-"`
	LoanRef    uint64    `gorm:"column:loan_ref;index" json:"-"`
	LoanID     string    `gorm:"size:32;index:idx_contributions_loan" json:"loan_id"`
	InvestorID string    `gorm:"size:32;index:idx_contributions_investor" json:"investor_id"`
	Amount     float64   `gorm:"type:decimal(18,2)" json:"amount"`
	TxRef      string    `gorm:"size:64" json:"tx_ref"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (Contribution) TableName() string { return "loan_contributions" }

// CollateralValue is the mark-to-market value of the pledged commodity.
func (l *LoanRequest) CollateralValue() float64 {
	return l.CollateralAmount * l.UnitPrice
}

// LTV returns loan-to-value as a percentage: requested amount over
// collateral value. Zero collateral value yields 0 rather than Inf.
func (l *LoanRequest) LTV() float64 {
	cv := l.CollateralValue()
	if cv <= 0 {
		return 0
	}
	return l.RequestedAmount / cv * 100
}

// RiskTier buckets the loan by LTV: <=50 A, <=70 B, else C.
func (l *LoanRequest) RiskTier() RiskTier {
	ltv := l.LTV()
	switch {
	case ltv <= 50:
		return TierA
	case ltv <= 70:
		return TierB
	default:
		return TierC
	}
}

// Investable reports whether the loan can still accept investments.
func (l *LoanRequest) Investable(now time.Time) bool {
	if l.Status != StatusOpen && l.Status != StatusFunding {
		return false
	}
	return l.ExpiresAt.IsZero() || now.Before(l.ExpiresAt)
}

// Active reports whether the loan carries live debt (funded or repaying).
func (l *LoanRequest) Active() bool {
	return l.Status == StatusFunded || l.Status == StatusRepaying
}
