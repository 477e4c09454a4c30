// Package directory implements the user directory: registration, login,
// and JWT session resolution to an identity with a role and collateral
// account reference.
package directory

import (
	"context"
	"errors"
	"fmt"
	"time"

	"agrolend-backend/internal/apperr"
	"agrolend-backend/internal/domain/user"
	"agrolend-backend/pkg/id"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const sessionExpiry = 24 * time.Hour

type Claims struct {
	UserID string `json:"user_id"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

type Usecase struct {
	users  user.Repository
	secret []byte
}

func NewUsecase(users user.Repository, jwtSecret string) *Usecase {
	return &Usecase{users: users, secret: []byte(jwtSecret)}
}

type RegisterInput struct {
	Email             string    `json:"email"`
	Password          string    `json:"password"`
	Name              string    `json:"name"`
	Role              user.Role `json:"role"`
	CollateralAccount string    `json:"collateral_account"`
}

func (u *Usecase) Register(ctx context.Context, in RegisterInput) (*user.User, error) {
	if in.Role != user.RoleProducer && in.Role != user.RoleInvestor {
		return nil, apperr.WithMessage(apperr.ErrInvalidInput, "role must be producer or investor")
	}
	if _, err := u.users.GetByEmail(ctx, in.Email); err == nil {
		return nil, apperr.ErrDuplicateEmail
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.Wrap(apperr.ErrInternal, err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperr.Wrap(apperr.ErrInternal, err)
	}
	usr := &user.User{
		UserID:            id.NewID32(),
		Email:             in.Email,
		PasswordHash:      string(hash),
		Name:              in.Name,
		Role:              in.Role,
		CollateralAccount: in.CollateralAccount,
	}
	if err := u.users.Create(ctx, usr); err != nil {
		return nil, apperr.Wrap(apperr.ErrInternal, err)
	}
	return usr, nil
}

// Login verifies credentials and issues a session token.
func (u *Usecase) Login(ctx context.Context, email, password string) (string, *user.User, error) {
	usr, err := u.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil, apperr.ErrInvalidCredentials
		}
		return "", nil, apperr.Wrap(apperr.ErrInternal, err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(usr.PasswordHash), []byte(password)); err != nil {
		return "", nil, apperr.ErrInvalidCredentials
	}

	now := time.Now()
	claims := &Claims{
		UserID: usr.UserID,
		Role:   string(usr.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(sessionExpiry)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    "agrolend-api",
			Subject:   usr.UserID,
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(u.secret)
	if err != nil {
		return "", nil, apperr.Wrap(apperr.ErrInternal, err)
	}
	return token, usr, nil
}

// ResolveSession validates a token and loads the current identity.
func (u *Usecase) ResolveSession(ctx context.Context, token string) (*user.Identity, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return u.secret, nil
	})
	if err != nil || !parsed.Valid {
		return nil, apperr.ErrInvalidSession
	}
	return u.Resolve(ctx, claims.UserID)
}

// Resolve loads an identity by user id.
func (u *Usecase) Resolve(ctx context.Context, userID string) (*user.Identity, error) {
	usr, err := u.users.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.ErrInvalidSession
		}
		return nil, apperr.Wrap(apperr.ErrInternal, err)
	}
	return &user.Identity{
		UserID:            usr.UserID,
		Role:              usr.Role,
		CollateralAccount: usr.CollateralAccount,
	}, nil
}
