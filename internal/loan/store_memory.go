package loan

import (
	"context"
	"sort"
	"sync"

	dErrors "fundgate/pkg/domain-errors"
)

// InMemoryStore keeps loans, payments, and counters in mutex-guarded maps.
// It is the default store for development and tests.
type InMemoryStore struct {
	mu       sync.RWMutex
	loans    map[string]Loan
	payments map[string]Payment
	counters map[string]uint64
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		loans:    make(map[string]Loan),
		payments: make(map[string]Payment),
		counters: make(map[string]uint64),
	}
}

func (s *InMemoryStore) NextID(_ context.Context, kind string) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.counters[kind]++
	return s.counters[kind], nil
}

func (s *InMemoryStore) GetLoan(_ context.Context, id string) (Loan, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if l, ok := s.loans[id]; ok {
		return l, nil
	}
	return Loan{}, dErrors.Newf(dErrors.CodeNotFound, "loan %s not found", id)
}

func (s *InMemoryStore) SaveLoan(_ context.Context, l Loan) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loans[l.ID] = l
	return nil
}

func (s *InMemoryStore) ListLoans(_ context.Context) ([]Loan, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Loan, 0, len(s.loans))
	for _, l := range s.loans {
		out = append(out, l)
	}
	sortLoans(out)
	return out, nil
}

func (s *InMemoryStore) ListLoansByBorrower(_ context.Context, borrowerID string) ([]Loan, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []Loan
	for _, l := range s.loans {
		if l.BorrowerID == borrowerID {
			out = append(out, l)
		}
	}
	sortLoans(out)
	return out, nil
}

func (s *InMemoryStore) GetPayment(_ context.Context, id string) (Payment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if p, ok := s.payments[id]; ok {
		return p, nil
	}
	return Payment{}, dErrors.Newf(dErrors.CodeNotFound, "payment %s not found", id)
}

func (s *InMemoryStore) SavePayment(_ context.Context, p Payment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.payments[p.ID] = p
	return nil
}

func (s *InMemoryStore) ListPaymentsByLoan(_ context.Context, loanID string) ([]Payment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []Payment
	for _, p := range s.payments {
		if p.LoanID == loanID {
			out = append(out, p)
		}
	}
	sortPayments(out)
	return out, nil
}

func (s *InMemoryStore) ListPaymentsByPayer(_ context.Context, payerID string) ([]Payment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []Payment
	for _, p := range s.payments {
		if p.PayerID == payerID {
			out = append(out, p)
		}
	}
	sortPayments(out)
	return out, nil
}

// IDs are zero-padded counter values, so lexical order is creation order.
func sortLoans(loans []Loan) {
	sort.Slice(loans, func(i, j int) bool { return loans[i].ID < loans[j].ID })
}

func sortPayments(payments []Payment) {
	sort.Slice(payments, func(i, j int) bool { return payments[i].ID < payments[j].ID })
}
