package memstore

import (
	"context"
	"sync"

	"agrolend-backend/internal/domain/risk"

	"gorm.io/gorm"
)

type Alerts struct {
	mu     sync.RWMutex
	nextID uint64
	items  []risk.Alert
}

func NewAlerts() *Alerts { return &Alerts{} }

func (s *Alerts) Create(_ context.Context, a *risk.Alert) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	a.ID = s.nextID
	s.items = append(s.items, *a)
	return nil
}

func (s *Alerts) GetByAlertID(_ context.Context, alertID string) (*risk.Alert, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, a := range s.items {
		if a.AlertID == alertID {
			cp := a
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *Alerts) ListOpen(_ context.Context) ([]risk.Alert, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []risk.Alert
	for _, a := range s.items {
		if !a.Resolved {
			out = append(out, a)
		}
	}
	return out, nil
}

func (s *Alerts) ListByLoanID(_ context.Context, loanID string) ([]risk.Alert, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []risk.Alert
	for _, a := range s.items {
		if a.LoanID == loanID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (s *Alerts) Save(_ context.Context, a *risk.Alert) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.items {
		if s.items[i].AlertID == a.AlertID {
			s.items[i] = *a
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}
