// Package apperr provides the sentinel error catalogue for the API.
// Usecase errors wrap these so the HTTP boundary can map them to status
// codes without leaking internals to clients.
package apperr

import "net/http"

type AppError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	StatusCode int    `json:"-"`
	Internal   error  `json:"-"`
}

func (e *AppError) Error() string { return e.Message }

func (e *AppError) Unwrap() error { return e.Internal }

// Is lets errors.Is match wrapped copies of a sentinel by code.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	return ok && t.Code == e.Code
}

// Wrap keeps the sentinel's code/message/status and attaches an internal error.
func Wrap(sentinel *AppError, internal error) *AppError {
	return &AppError{
		Code:       sentinel.Code,
		Message:    sentinel.Message,
		StatusCode: sentinel.StatusCode,
		Internal:   internal,
	}
}

// WithMessage keeps the sentinel's code/status and replaces the message.
func WithMessage(sentinel *AppError, message string) *AppError {
	return &AppError{
		Code:       sentinel.Code,
		Message:    message,
		StatusCode: sentinel.StatusCode,
		Internal:   sentinel.Internal,
	}
}

// Authentication & authorization.
var (
	ErrInvalidSession     = &AppError{Code: "INVALID_SESSION", Message: "Session token is invalid or expired", StatusCode: http.StatusUnauthorized}
	ErrInvalidCredentials = &AppError{Code: "INVALID_CREDENTIALS", Message: "Invalid email or password", StatusCode: http.StatusUnauthorized}
	ErrProducerRole       = &AppError{Code: "PRODUCER_ROLE_REQUIRED", Message: "Only producers can perform this action", StatusCode: http.StatusForbidden}
	ErrInvestorRole       = &AppError{Code: "INVESTOR_ROLE_REQUIRED", Message: "Only investors can perform this action", StatusCode: http.StatusForbidden}
)

// Validation & lookup.
var (
	ErrInvalidInput     = &AppError{Code: "INVALID_INPUT", Message: "Invalid input", StatusCode: http.StatusBadRequest}
	ErrLoanNotFound     = &AppError{Code: "LOAN_NOT_FOUND", Message: "Loan request not found", StatusCode: http.StatusNotFound}
	ErrScheduleNotFound = &AppError{Code: "SCHEDULE_NOT_FOUND", Message: "Repayment schedule not found", StatusCode: http.StatusNotFound}
	ErrAlertNotFound    = &AppError{Code: "ALERT_NOT_FOUND", Message: "Risk alert not found", StatusCode: http.StatusNotFound}
	ErrUserNotFound     = &AppError{Code: "USER_NOT_FOUND", Message: "User not found", StatusCode: http.StatusNotFound}
	ErrDuplicateEmail   = &AppError{Code: "DUPLICATE_EMAIL", Message: "A user with this email already exists", StatusCode: http.StatusConflict}
)

// Business rules.
var (
	ErrLoanNotInvestable      = &AppError{Code: "LOAN_NOT_INVESTABLE", Message: "Loan is not open for investment", StatusCode: http.StatusConflict}
	ErrOverfundingRejected    = &AppError{Code: "OVERFUNDING_REJECTED", Message: "Investment would exceed the requested amount", StatusCode: http.StatusConflict}
	ErrInvalidAmount          = &AppError{Code: "INVALID_AMOUNT", Message: "Investment amount must be positive", StatusCode: http.StatusBadRequest}
	ErrInsufficientCollateral = &AppError{Code: "INSUFFICIENT_COLLATERAL", Message: "Producer collateral balance does not cover the required pledge", StatusCode: http.StatusConflict}
	ErrInvalidTransition      = &AppError{Code: "INVALID_TRANSITION", Message: "Loan state does not allow this transition", StatusCode: http.StatusConflict}
)

// Collaborators.
var (
	ErrSettlementFailed   = &AppError{Code: "SETTLEMENT_FAILED", Message: "Ledger settlement failed", StatusCode: http.StatusBadGateway}
	ErrLedgerUnavailable  = &AppError{Code: "LEDGER_UNAVAILABLE", Message: "Ledger is unreachable", StatusCode: http.StatusBadGateway}
	ErrDocValidatorFailed = &AppError{Code: "DOC_VALIDATOR_FAILED", Message: "Document validation service failed", StatusCode: http.StatusBadGateway}
	ErrInternal           = &AppError{Code: "INTERNAL_ERROR", Message: "An internal error occurred", StatusCode: http.StatusInternalServerError}
)
