package risk

import "time"

type AlertType string

const (
	AlertLTVHigh            AlertType = "LTV_HIGH"
	AlertPriceDrop          AlertType = "PRICE_DROP"
	AlertLiquidationWarning AlertType = "LIQUIDATION_WARNING"
)

type Severity string

const (
	SeverityLow      Severity = "LOW"
	SeverityMedium   Severity = "MEDIUM"
	SeverityHigh     Severity = "HIGH"
	SeverityCritical Severity = "CRITICAL"
)

// Alert never expires on its own; it stays open until explicitly resolved.
type Alert struct {
	ID      uint64 `gorm:"primaryKey;column:id" json:"-"`
	AlertID string `gorm:"size:36;uniqueIndex" json:"alert_id"`
	LoanID  string `gorm:"size:32;index:idx_risk_alerts_loan" json:"loan_id"`

	Type     AlertType `gorm:"size:24" json:"type"`
	Severity Severity  `gorm:"size:12" json:"severity"`
	Message  string    `gorm:"type:text" json:"message"`

	Resolved   bool       `gorm:"default:false;index" json:"resolved"`
	ResolvedAt *time.Time `json:"resolved_at,omitempty"`
	CreatedAt  time.Time  `gorm:"autoCreateTime" json:"created_at"`
}

func (Alert) TableName() string { return "risk_alerts" }
