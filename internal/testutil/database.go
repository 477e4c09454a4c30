// Package testutil provides shared test helpers.
package testutil

import (
	"testing"

	loanDomain "agrolend-backend/internal/domain/loan"
	repayDomain "agrolend-backend/internal/domain/repayment"
	riskDomain "agrolend-backend/internal/domain/risk"
	userDomain "agrolend-backend/internal/domain/user"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

var allModels = []interface{}{
	&userDomain.User{},
	&loanDomain.LoanRequest{},
	&loanDomain.Contribution{},
	&repayDomain.Schedule{},
	&repayDomain.Installment{},
	&repayDomain.Transaction{},
	&riskDomain.Alert{},
}

// SetupTestDB creates an in-memory SQLite database with all models migrated.
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	if err := db.AutoMigrate(allModels...); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}
	return db
}
