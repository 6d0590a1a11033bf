//go:build integration

package loan_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"fundgate/internal/loan"
	dErrors "fundgate/pkg/domain-errors"
	"fundgate/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *loan.PostgresStore
}

func TestPostgresStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	s.postgres = containers.NewPostgresContainer(s.T())
	s.store = loan.NewPostgres(s.postgres.DB)
	s.Require().NoError(s.store.Migrate(context.Background()))
}

func (s *PostgresStoreSuite) SetupTest() {
	s.Require().NoError(s.postgres.TruncateTables(context.Background(), "loans", "payments", "counters"))
}

func newTestLoan(seq uint64, borrowerID string) loan.Loan {
	now := time.Now().UTC().Truncate(time.Microsecond)
	return loan.Loan{
		ID:                loan.FormatLoanID(seq),
		BorrowerID:        borrowerID,
		OriginalAmount:    100_000,
		CurrentBalance:    100_000,
		InterestRate:      0.05,
		TermMonths:        12,
		MonthlyPayment:    8_561,
		OriginationFee:    1_000,
		Status:            loan.StatusActive,
		CreatedAt:         now,
		FirstPaymentDue:   now.Add(30 * 24 * time.Hour),
		Purpose:           "tuition",
		CosignerID:        "cosigner-1",
		SpecialConditions: []string{"no_prepayment_penalty"},
	}
}

func newTestPayment(seq uint64, loanID, payerID string) loan.Payment {
	now := time.Now().UTC().Truncate(time.Microsecond)
	processed := now.Add(time.Second)
	return loan.Payment{
		ID:               loan.FormatPaymentID(seq),
		LoanID:           loanID,
		PayerID:          payerID,
		Amount:           9_000,
		PrincipalPortion: 8_500,
		InterestPortion:  500,
		Type:             loan.PaymentRegular,
		Method:           loan.MethodBankTransfer,
		Status:           loan.PaymentCompleted,
		CreatedAt:        now,
		ProcessedAt:      &processed,
	}
}

func (s *PostgresStoreSuite) TestNextID() {
	ctx := context.Background()
	for want := uint64(1); want <= 3; want++ {
		got, err := s.store.NextID(ctx, loan.CounterLoan)
		s.Require().NoError(err)
		s.Equal(want, got)
	}

	got, err := s.store.NextID(ctx, loan.CounterPayment)
	s.Require().NoError(err)
	s.Equal(uint64(1), got)
}

func (s *PostgresStoreSuite) TestSaveAndGetLoan() {
	ctx := context.Background()
	want := newTestLoan(1, "borrower-1")
	s.Require().NoError(s.store.SaveLoan(ctx, want))

	got, err := s.store.GetLoan(ctx, want.ID)
	s.Require().NoError(err)
	s.Equal(want.BorrowerID, got.BorrowerID)
	s.Equal(want.CurrentBalance, got.CurrentBalance)
	s.Equal(want.Status, got.Status)
	s.Equal(want.CosignerID, got.CosignerID)
	s.Equal(want.SpecialConditions, got.SpecialConditions)
	s.Nil(got.LastPaymentAt)
	s.WithinDuration(want.FirstPaymentDue, got.FirstPaymentDue, time.Millisecond)
}

func (s *PostgresStoreSuite) TestSaveLoanUpserts() {
	ctx := context.Background()
	l := newTestLoan(1, "borrower-1")
	s.Require().NoError(s.store.SaveLoan(ctx, l))

	now := time.Now().UTC().Truncate(time.Microsecond)
	l.CurrentBalance = 91_000
	l.Status = loan.StatusLate
	l.PaymentsMade = 1
	l.LatePayments = 1
	l.LastPaymentAt = &now
	l.LastAccrualAt = &now
	s.Require().NoError(s.store.SaveLoan(ctx, l))

	got, err := s.store.GetLoan(ctx, l.ID)
	s.Require().NoError(err)
	s.Equal(int64(91_000), got.CurrentBalance)
	s.Equal(loan.StatusLate, got.Status)
	s.Equal(1, got.PaymentsMade)
	s.Equal(1, got.LatePayments)
	s.Require().NotNil(got.LastPaymentAt)
	s.WithinDuration(now, *got.LastPaymentAt, time.Millisecond)
}

func (s *PostgresStoreSuite) TestGetMissingLoan() {
	_, err := s.store.GetLoan(context.Background(), "LOAN-99999999")
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
}

func (s *PostgresStoreSuite) TestListLoans() {
	ctx := context.Background()
	s.Require().NoError(s.store.SaveLoan(ctx, newTestLoan(2, "borrower-2")))
	s.Require().NoError(s.store.SaveLoan(ctx, newTestLoan(1, "borrower-1")))
	s.Require().NoError(s.store.SaveLoan(ctx, newTestLoan(3, "borrower-1")))

	all, err := s.store.ListLoans(ctx)
	s.Require().NoError(err)
	s.Require().Len(all, 3)
	s.Equal("LOAN-00000001", all[0].ID)
	s.Equal("LOAN-00000003", all[2].ID)

	mine, err := s.store.ListLoansByBorrower(ctx, "borrower-1")
	s.Require().NoError(err)
	s.Require().Len(mine, 2)
	s.Equal("LOAN-00000001", mine[0].ID)
	s.Equal("LOAN-00000003", mine[1].ID)
}

func (s *PostgresStoreSuite) TestSaveAndGetPayment() {
	ctx := context.Background()
	want := newTestPayment(1, "LOAN-00000001", "borrower-1")
	s.Require().NoError(s.store.SavePayment(ctx, want))

	got, err := s.store.GetPayment(ctx, want.ID)
	s.Require().NoError(err)
	s.Equal(want.Amount, got.Amount)
	s.Equal(want.PrincipalPortion, got.PrincipalPortion)
	s.Equal(want.Type, got.Type)
	s.Equal(want.Method, got.Method)
	s.Equal(want.Status, got.Status)
	s.Require().NotNil(got.ProcessedAt)
	s.WithinDuration(*want.ProcessedAt, *got.ProcessedAt, time.Millisecond)
}

func (s *PostgresStoreSuite) TestSavePaymentUpserts() {
	ctx := context.Background()
	p := newTestPayment(1, "LOAN-00000001", "borrower-1")
	p.Status = loan.PaymentPending
	p.ProcessedAt = nil
	s.Require().NoError(s.store.SavePayment(ctx, p))

	now := time.Now().UTC().Truncate(time.Microsecond)
	p.Status = loan.PaymentCompleted
	p.ProcessedAt = &now
	s.Require().NoError(s.store.SavePayment(ctx, p))

	got, err := s.store.GetPayment(ctx, p.ID)
	s.Require().NoError(err)
	s.Equal(loan.PaymentCompleted, got.Status)
	s.Require().NotNil(got.ProcessedAt)
}

func (s *PostgresStoreSuite) TestListPayments() {
	ctx := context.Background()
	s.Require().NoError(s.store.SavePayment(ctx, newTestPayment(1, "LOAN-00000001", "borrower-1")))
	s.Require().NoError(s.store.SavePayment(ctx, newTestPayment(2, "LOAN-00000002", "borrower-2")))
	s.Require().NoError(s.store.SavePayment(ctx, newTestPayment(3, "LOAN-00000001", "cosigner-1")))

	byLoan, err := s.store.ListPaymentsByLoan(ctx, "LOAN-00000001")
	s.Require().NoError(err)
	s.Require().Len(byLoan, 2)
	s.Equal("PAY-00000001", byLoan[0].ID)
	s.Equal("PAY-00000003", byLoan[1].ID)

	byPayer, err := s.store.ListPaymentsByPayer(ctx, "borrower-2")
	s.Require().NoError(err)
	s.Require().Len(byPayer, 1)
	s.Equal("PAY-00000002", byPayer[0].ID)
}
