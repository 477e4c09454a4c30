package marketplace

import (
	"time"

	"agrolend-backend/internal/domain/loan"
)

type CreateLoanInput struct {
	RequestedAmount   float64 `json:"requested_amount"`
	TermMonths        int     `json:"term_months"`
	MaxInterestRate   float64 `json:"max_interest_rate"`
	CollateralAmount  float64 `json:"collateral_amount"`
	CollateralType    string  `json:"collateral_type"`
	UnitPrice         float64 `json:"unit_price"`
	WarehouseLocation string  `json:"warehouse_location"`
}

type LoanDTO struct {
	LoanID             string    `json:"loan_id"`
	MarketID           string    `json:"market_id"`
	ProducerID         string    `json:"producer_id"`
	RequestedAmount    float64   `json:"requested_amount"`
	TermMonths         int       `json:"term_months"`
	MaxInterestRate    float64   `json:"max_interest_rate"`
	CollateralAmount   float64   `json:"collateral_amount"`
	CollateralType     string    `json:"collateral_type"`
	UnitPrice          float64   `json:"unit_price"`
	WarehouseLocation  string    `json:"warehouse_location"`
	CurrentFunding     float64   `json:"current_funding"`
	Status             string    `json:"status"`
	DisbursementStatus string    `json:"disbursement_status"`
	LTV                float64   `json:"ltv"`
	RiskTier           string    `json:"risk_tier"`
	ExpiresAt          time.Time `json:"expires_at"`
	CreatedAt          time.Time `json:"created_at"`
}

func toDTO(l *loan.LoanRequest) *LoanDTO {
	return &LoanDTO{
		LoanID:             l.LoanID,
		MarketID:           l.MarketID,
		ProducerID:         l.ProducerID,
		RequestedAmount:    l.RequestedAmount,
		TermMonths:         l.TermMonths,
		MaxInterestRate:    l.MaxInterestRate,
		CollateralAmount:   l.CollateralAmount,
		CollateralType:     l.CollateralType,
		UnitPrice:          l.UnitPrice,
		WarehouseLocation:  l.WarehouseLocation,
		CurrentFunding:     l.CurrentFunding,
		Status:             string(l.Status),
		DisbursementStatus: string(l.DisbursementStatus),
		LTV:                l.LTV(),
		RiskTier:           string(l.RiskTier()),
		ExpiresAt:          l.ExpiresAt,
		CreatedAt:          l.CreatedAt,
	}
}

// InvestResult carries business-rule rejections as data, not errors, so
// the HTTP layer renders them without special-casing. Accepted==false
// means the loan state is untouched.
type InvestResult struct {
	Accepted bool     `json:"accepted"`
	Reason   string   `json:"reason,omitempty"`
	Message  string   `json:"message,omitempty"`
	TxRef    string   `json:"tx_ref,omitempty"`
	Loan     *LoanDTO `json:"loan,omitempty"`
}

type Position struct {
	LoanID   string  `json:"loan_id"`
	Position string  `json:"position"` // borrower | lender | none
	Status   string  `json:"status"`
	Amount   float64 `json:"amount,omitempty"`
}

type Stats struct {
	TotalLoans          int     `json:"total_loans"`
	TotalFunding        float64 `json:"total_funding"`
	AverageInterestRate float64 `json:"average_interest_rate"`
	ActiveLoans         int     `json:"active_loans"`
}
