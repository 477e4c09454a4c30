package memstore

import (
	"context"
	"sort"
	"sync"
	"time"

	"agrolend-backend/internal/domain/repayment"

	"gorm.io/gorm"
)

type Repayments struct {
	mu        sync.RWMutex
	nextID    uint64
	schedules map[string]repayment.Schedule // keyed by loan id
	txs       []repayment.Transaction
}

func NewRepayments() *Repayments {
	return &Repayments{schedules: map[string]repayment.Schedule{}}
}

func (s *Repayments) CreateSchedule(_ context.Context, sched *repayment.Schedule) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	sched.ID = s.nextID
	for i := range sched.Installments {
		s.nextID++
		sched.Installments[i].ID = s.nextID
		sched.Installments[i].ScheduleRef = sched.ID
	}
	s.schedules[sched.LoanID] = cloneSchedule(sched)
	return nil
}

func (s *Repayments) GetScheduleByLoanID(_ context.Context, loanID string) (*repayment.Schedule, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sched, ok := s.schedules[loanID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := cloneSchedule(&sched)
	sortInstallments(cp.Installments)
	return &cp, nil
}

func (s *Repayments) ListSchedules(_ context.Context) ([]repayment.Schedule, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]repayment.Schedule, 0, len(s.schedules))
	for _, sched := range s.schedules {
		cp := cloneSchedule(&sched)
		sortInstallments(cp.Installments)
		out = append(out, cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *Repayments) SaveInstallment(_ context.Context, inst *repayment.Installment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for loanID, sched := range s.schedules {
		for i := range sched.Installments {
			if sched.Installments[i].ID == inst.ID {
				sched.Installments[i] = *inst
				s.schedules[loanID] = sched
				return nil
			}
		}
	}
	return gorm.ErrRecordNotFound
}

func (s *Repayments) ListInstallmentsByStatus(_ context.Context, status repayment.InstallmentStatus) ([]repayment.Installment, error) {
	return s.filter(func(i *repayment.Installment) bool { return i.Status == status }), nil
}

func (s *Repayments) ListPendingDueBefore(_ context.Context, cutoff time.Time) ([]repayment.Installment, error) {
	return s.filter(func(i *repayment.Installment) bool {
		return i.Status == repayment.InstallmentPending && i.DueDate.Before(cutoff)
	}), nil
}

func (s *Repayments) ListPendingDueBetween(_ context.Context, from, to time.Time) ([]repayment.Installment, error) {
	return s.filter(func(i *repayment.Installment) bool {
		return i.Status == repayment.InstallmentPending &&
			!i.DueDate.Before(from) && !i.DueDate.After(to)
	}), nil
}

func (s *Repayments) CreateTransaction(_ context.Context, t *repayment.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	t.ID = s.nextID
	s.txs = append(s.txs, *t)
	return nil
}

func (s *Repayments) ListTransactionsByLoanID(_ context.Context, loanID string) ([]repayment.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []repayment.Transaction
	for _, t := range s.txs {
		if t.LoanID == loanID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (s *Repayments) filter(keep func(*repayment.Installment) bool) []repayment.Installment {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []repayment.Installment
	for _, sched := range s.schedules {
		for i := range sched.Installments {
			if keep(&sched.Installments[i]) {
				out = append(out, sched.Installments[i])
			}
		}
	}
	sortInstallments(out)
	return out
}

func cloneSchedule(s *repayment.Schedule) repayment.Schedule {
	cp := *s
	cp.Installments = append([]repayment.Installment(nil), s.Installments...)
	return cp
}

func sortInstallments(is []repayment.Installment) {
	sort.Slice(is, func(a, b int) bool {
		if is[a].DueDate.Equal(is[b].DueDate) {
			return is[a].Seq < is[b].Seq
		}
		return is[a].DueDate.Before(is[b].DueDate)
	})
}
