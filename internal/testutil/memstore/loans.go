// Package memstore provides thread-safe in-memory implementations of the
// domain repositories for tests.
package memstore

import (
	"context"
	"sort"
	"sync"

	"agrolend-backend/internal/domain/loan"

	"gorm.io/gorm"
)

type Loans struct {
	mu       sync.RWMutex
	nextID   uint64
	byLoanID map[string]loan.LoanRequest
	contribs []loan.Contribution
}

func NewLoans() *Loans {
	return &Loans{byLoanID: map[string]loan.LoanRequest{}}
}

func (s *Loans) Create(_ context.Context, l *loan.LoanRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	l.ID = s.nextID
	cp := *l
	cp.Contributions = nil
	s.byLoanID[l.LoanID] = cp
	return nil
}

func (s *Loans) get(loanID string) (*loan.LoanRequest, error) {
	l, ok := s.byLoanID[loanID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := l
	return &cp, nil
}

func (s *Loans) GetByLoanID(_ context.Context, loanID string) (*loan.LoanRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.get(loanID)
}

// GetByLoanIDForUpdate has no lock semantics here; the memstore UoW
// serializes callers instead.
func (s *Loans) GetByLoanIDForUpdate(_ context.Context, loanID string) (*loan.LoanRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.get(loanID)
}

func (s *Loans) Save(_ context.Context, l *loan.LoanRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byLoanID[l.LoanID]; !ok {
		return gorm.ErrRecordNotFound
	}
	cp := *l
	cp.Contributions = nil
	s.byLoanID[l.LoanID] = cp
	return nil
}

func (s *Loans) ListByStatus(_ context.Context, statuses ...loan.Status) ([]loan.LoanRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	want := map[loan.Status]bool{}
	for _, st := range statuses {
		want[st] = true
	}
	var out []loan.LoanRequest
	for _, l := range s.byLoanID {
		if want[l.Status] {
			out = append(out, l)
		}
	}
	sortLoans(out)
	return out, nil
}

func (s *Loans) ListByProducer(_ context.Context, producerID string) ([]loan.LoanRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []loan.LoanRequest
	for _, l := range s.byLoanID {
		if l.ProducerID == producerID {
			out = append(out, l)
		}
	}
	sortLoans(out)
	return out, nil
}

func (s *Loans) ListAll(_ context.Context) ([]loan.LoanRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]loan.LoanRequest, 0, len(s.byLoanID))
	for _, l := range s.byLoanID {
		out = append(out, l)
	}
	sortLoans(out)
	return out, nil
}

func (s *Loans) AddContribution(_ context.Context, c *loan.Contribution) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.contribs = append(s.contribs, *c)
	return nil
}

func (s *Loans) ListContributions(_ context.Context, loanID string) ([]loan.Contribution, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []loan.Contribution
	for _, c := range s.contribs {
		if c.LoanID == loanID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (s *Loans) ListContributionsByInvestor(_ context.Context, investorID string) ([]loan.Contribution, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []loan.Contribution
	for _, c := range s.contribs {
		if c.InvestorID == investorID {
			out = append(out, c)
		}
	}
	return out, nil
}

func sortLoans(ls []loan.LoanRequest) {
	sort.Slice(ls, func(i, j int) bool { return ls[i].ID < ls[j].ID })
}
