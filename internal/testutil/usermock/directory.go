// Package usermock is a function-backed test double for the user
// directory.
package usermock

import (
	"context"

	"agrolend-backend/internal/apperr"
	"agrolend-backend/internal/domain/user"
)

type Directory struct {
	ResolveSessionFn func(ctx context.Context, token string) (*user.Identity, error)
	ResolveFn        func(ctx context.Context, userID string) (*user.Identity, error)

	// Users short-circuits Resolve when set: userID -> identity.
	Users map[string]*user.Identity
}

func (m *Directory) ResolveSession(ctx context.Context, token string) (*user.Identity, error) {
	if m.ResolveSessionFn != nil {
		return m.ResolveSessionFn(ctx, token)
	}
	if ident, ok := m.Users[token]; ok {
		return ident, nil
	}
	return nil, apperr.ErrInvalidSession
}

func (m *Directory) Resolve(ctx context.Context, userID string) (*user.Identity, error) {
	if m.ResolveFn != nil {
		return m.ResolveFn(ctx, userID)
	}
	if ident, ok := m.Users[userID]; ok {
		return ident, nil
	}
	return nil, apperr.ErrInvalidSession
}
