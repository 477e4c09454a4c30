package user

import (
	"context"
	"time"

	"gorm.io/gorm"
)

type Role string

const (
	RoleProducer Role = "producer"
	RoleInvestor Role = "investor"
)

type User struct {
	ID     uint64 `gorm:"primaryKey;column:id" json:"-"`
	UserID string `gorm:"size:32;uniqueIndex:ux_users_user_id" json:"user_id"`

	Email        string `gorm:"size:128;uniqueIndex:ux_users_email" json:"email"`
	PasswordHash string `gorm:"size:128" json:"-"`
	Name         string `gorm:"size:128" json:"name"`
	Role         Role   `gorm:"size:16" json:"role"`

	// CollateralAccount is the ledger account holding the user's
	// collateral-token balance.
	CollateralAccount string `gorm:"size:64" json:"collateral_account"`

	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (User) TableName() string { return "users" }

type Repository interface {
	Create(ctx context.Context, u *User) error
	GetByUserID(ctx context.Context, userID string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
}

// Identity is the session-resolved view of a user.
type Identity struct {
	UserID            string `json:"user_id"`
	Role              Role   `json:"role"`
	CollateralAccount string `json:"collateral_account"`
}

// Directory resolves session tokens to identities. Implemented by the
// JWT-backed directory usecase; mocked in tests.
type Directory interface {
	ResolveSession(ctx context.Context, token string) (*Identity, error)
	Resolve(ctx context.Context, userID string) (*Identity, error)
}
