package mysql

import (
	"context"
	"errors"
	"strings"
	"testing"

	userDomain "agrolend-backend/internal/domain/user"
	"agrolend-backend/internal/testutil"

	"gorm.io/gorm"
)

func TestUserRepository(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	u := &userDomain.User{
		UserID:            strings.Repeat("p", 32),
		Email:             "maria@fazenda.example",
		PasswordHash:      "$2a$10$notarealhash",
		Name:              "Maria",
		Role:              userDomain.RoleProducer,
		CollateralAccount: "acct-maria",
	}
	if err := repo.Create(ctx, u); err != nil {
		t.Fatalf("Create: %v", err)
	}

	byID, err := repo.GetByUserID(ctx, u.UserID)
	if err != nil {
		t.Fatalf("GetByUserID: %v", err)
	}
	if byID.Email != u.Email || byID.Role != userDomain.RoleProducer {
		t.Fatalf("byID = %+v", byID)
	}

	byEmail, err := repo.GetByEmail(ctx, u.Email)
	if err != nil {
		t.Fatalf("GetByEmail: %v", err)
	}
	if byEmail.UserID != u.UserID {
		t.Fatalf("byEmail = %+v", byEmail)
	}

	_, err = repo.GetByEmail(ctx, "nobody@fazenda.example")
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("missing user: %v", err)
	}

	// email uniqueness is enforced at the index level
	dup := &userDomain.User{
		UserID: strings.Repeat("q", 32),
		Email:  u.Email,
		Role:   userDomain.RoleInvestor,
	}
	if err := repo.Create(ctx, dup); err == nil {
		t.Fatalf("duplicate email accepted")
	}
}
