package loan

import "context"

// Store persists loans, payments, and the ID counters. Implementations do
// not enforce referential integrity; the service does.
type Store interface {
	// NextID increments and returns the counter for an entity kind.
	NextID(ctx context.Context, kind string) (uint64, error)

	GetLoan(ctx context.Context, id string) (Loan, error)
	SaveLoan(ctx context.Context, l Loan) error
	ListLoans(ctx context.Context) ([]Loan, error)
	ListLoansByBorrower(ctx context.Context, borrowerID string) ([]Loan, error)

	GetPayment(ctx context.Context, id string) (Payment, error)
	SavePayment(ctx context.Context, p Payment) error
	ListPaymentsByLoan(ctx context.Context, loanID string) ([]Payment, error)
	ListPaymentsByPayer(ctx context.Context, payerID string) ([]Payment, error)
}
