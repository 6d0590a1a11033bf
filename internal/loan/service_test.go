package loan

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"fundgate/internal/platform/metrics"
	"fundgate/internal/treasury"
	dErrors "fundgate/pkg/domain-errors"
)

type ServiceSuite struct {
	suite.Suite
	service  *Service
	store    *InMemoryStore
	treasury *treasury.Service
	tstore   *treasury.InMemoryStore
	ctx      context.Context
	now      time.Time
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.ctx = context.Background()
	s.now = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	s.tstore = treasury.NewInMemoryStore()
	s.treasury = treasury.NewService(s.tstore, logger,
		treasury.WithClock(func() time.Time { return s.now }))
	s.Require().NoError(s.treasury.Bootstrap(s.ctx))

	s.store = NewInMemoryStore()
	s.service = NewService(s.store, s.treasury, metrics.NewForTest(), logger,
		WithClock(func() time.Time { return s.now }))
}

func (s *ServiceSuite) loanTreasury() treasury.Treasury {
	t, err := s.tstore.Get(s.ctx, treasury.PurposeLoan)
	s.Require().NoError(err)
	return t
}

func (s *ServiceSuite) createLoan(req CreateLoanRequest) Loan {
	if req.BorrowerID == "" {
		req.BorrowerID = "borrower-1"
	}
	if req.Amount == 0 {
		req.Amount = 100_000
	}
	if req.TermMonths == 0 {
		req.TermMonths = 12
	}
	l, err := s.service.CreateLoan(s.ctx, req)
	s.Require().NoError(err)
	return l
}

func (s *ServiceSuite) advance(d time.Duration) {
	s.now = s.now.Add(d)
}

func (s *ServiceSuite) TestCreateLoan() {
	s.Run("allocates treasury funds and persists the loan", func() {
		before := s.loanTreasury()
		l := s.createLoan(CreateLoanRequest{Amount: 50_000, InterestRate: 0.05})

		s.Equal("LOAN-00000001", l.ID)
		s.Equal(int64(50_000), l.OriginalAmount)
		s.Equal(int64(50_000), l.CurrentBalance)
		s.Equal(int64(500), l.OriginationFee)
		s.Equal(StatusActive, l.Status)
		s.Equal(s.now, l.FirstPaymentDue)

		after := s.loanTreasury()
		s.Equal(before.AvailableFunds-50_000, after.AvailableFunds)
		s.Equal(before.ReservedFunds+50_000, after.ReservedFunds)
	})

	s.Run("grace period loans start in grace", func() {
		l := s.createLoan(CreateLoanRequest{InterestRate: 0.05, GracePeriodMonths: 6})
		s.Equal(StatusInGracePeriod, l.Status)
		s.Equal(s.now.Add(6*30*24*time.Hour), l.FirstPaymentDue)
	})

	s.Run("rejects out-of-bounds terms", func() {
		_, err := s.service.CreateLoan(s.ctx, CreateLoanRequest{
			BorrowerID: "borrower-1", Amount: 1, InterestRate: 0.05, TermMonths: 12,
		})
		s.True(dErrors.HasCode(err, dErrors.CodeBadRequest))

		_, err = s.service.CreateLoan(s.ctx, CreateLoanRequest{
			BorrowerID: "borrower-1", Amount: 100_000, InterestRate: 0.50, TermMonths: 12,
		})
		s.True(dErrors.HasCode(err, dErrors.CodeBadRequest))

		_, err = s.service.CreateLoan(s.ctx, CreateLoanRequest{
			BorrowerID: "borrower-1", Amount: 100_000, InterestRate: 0.05, TermMonths: 3,
		})
		s.True(dErrors.HasCode(err, dErrors.CodeBadRequest))
	})

	s.Run("fails when the treasury cannot cover the amount", func() {
		s.Require().NoError(s.tstore.Save(s.ctx, treasury.Treasury{
			Purpose:                treasury.PurposeLoan,
			TotalFunds:             100_000,
			AvailableFunds:         30_000,
			ReservedFunds:          70_000,
			MinimumReserveRatio:    0.15,
			MaximumAllocationRatio: 0.85,
		}))
		_, err := s.service.CreateLoan(s.ctx, CreateLoanRequest{
			BorrowerID: "borrower-2", Amount: 50_000, InterestRate: 0.05, TermMonths: 12,
		})
		s.True(dErrors.HasCode(err, dErrors.CodeInsufficientFunds))
	})
}

func (s *ServiceSuite) TestProcessPayment() {
	s.Run("splits payment and credits the treasury", func() {
		l := s.createLoan(CreateLoanRequest{Amount: 100_000, InterestRate: 0.12})
		before := s.loanTreasury()

		p, err := s.service.ProcessPayment(s.ctx, l.ID, l.BorrowerID, 10_000, MethodBankTransfer)
		s.Require().NoError(err)

		// One month of interest on 100,000 at 12% is 1,000.
		s.Equal(int64(1_000), p.InterestPortion)
		s.Equal(int64(9_000), p.PrincipalPortion)
		s.Equal(PaymentCompleted, p.Status)
		s.Equal(p.Amount, p.PrincipalPortion+p.InterestPortion+p.LateFee)
		s.NotNil(p.ProcessedAt)

		got, err := s.service.Get(s.ctx, l.ID)
		s.Require().NoError(err)
		s.Equal(int64(91_000), got.CurrentBalance)
		s.Equal(1, got.PaymentsMade)

		after := s.loanTreasury()
		s.Equal(before.ReservedFunds-9_000, after.ReservedFunds)
		s.Equal(before.AvailableFunds+10_000, after.AvailableFunds)
		s.Equal(before.TotalFunds+1_000, after.TotalFunds)
	})

	s.Run("cosigner may pay", func() {
		l := s.createLoan(CreateLoanRequest{InterestRate: 0.05, CosignerID: "cosigner-1"})
		_, err := s.service.ProcessPayment(s.ctx, l.ID, "cosigner-1", 5_000, MethodCard)
		s.NoError(err)
	})

	s.Run("strangers may not pay", func() {
		l := s.createLoan(CreateLoanRequest{InterestRate: 0.05})
		_, err := s.service.ProcessPayment(s.ctx, l.ID, "someone-else", 5_000, MethodCard)
		s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})

	s.Run("final payment zeroes the balance and pays off", func() {
		l := s.createLoan(CreateLoanRequest{Amount: 10_000, InterestRate: 0})
		p, err := s.service.ProcessPayment(s.ctx, l.ID, l.BorrowerID, 20_000, MethodBankTransfer)
		s.Require().NoError(err)
		s.Equal(int64(10_000), p.PrincipalPortion)
		s.Equal(int64(10_000), p.InterestPortion) // overpayment lands as revenue

		got, err := s.service.Get(s.ctx, l.ID)
		s.Require().NoError(err)
		s.Equal(int64(0), got.CurrentBalance)
		s.Equal(StatusPaidOff, got.Status)
	})

	s.Run("paid off loans reject payments", func() {
		l := s.createLoan(CreateLoanRequest{Amount: 10_000, InterestRate: 0})
		_, err := s.service.ProcessPayment(s.ctx, l.ID, l.BorrowerID, 10_000, MethodBankTransfer)
		s.Require().NoError(err)
		_, err = s.service.ProcessPayment(s.ctx, l.ID, l.BorrowerID, 1_000, MethodBankTransfer)
		s.True(dErrors.HasCode(err, dErrors.CodeBadRequest))
	})

	s.Run("unknown loan", func() {
		_, err := s.service.ProcessPayment(s.ctx, "LOAN-99999999", "borrower-1", 1_000, MethodCard)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}

func (s *ServiceSuite) TestEarlyPayoff() {
	s.Run("charges two percent penalty", func() {
		l := s.createLoan(CreateLoanRequest{Amount: 10_000, InterestRate: 0.05})
		before := s.loanTreasury()

		quote, err := s.service.Quote(s.ctx, l.ID)
		s.Require().NoError(err)
		s.Equal(int64(10_000), quote.RemainingBalance)
		s.Equal(int64(200), quote.PrepaymentPenalty)
		s.Equal(int64(10_200), quote.TotalPayoffAmount)
		s.True(quote.Eligible)

		p, err := s.service.EarlyPayoff(s.ctx, l.ID, l.BorrowerID, MethodBankTransfer)
		s.Require().NoError(err)
		s.Equal(int64(10_200), p.Amount)
		s.Equal(PaymentFullPayoff, p.Type)
		s.Equal(p.Amount, p.PrincipalPortion+p.InterestPortion+p.LateFee)

		got, err := s.service.Get(s.ctx, l.ID)
		s.Require().NoError(err)
		s.Equal(int64(0), got.CurrentBalance)
		s.Equal(StatusPaidOff, got.Status)

		after := s.loanTreasury()
		s.Equal(before.AvailableFunds+10_200, after.AvailableFunds)
		s.Equal(before.TotalFunds+200, after.TotalFunds)
	})

	s.Run("no-penalty condition waives the penalty", func() {
		l := s.createLoan(CreateLoanRequest{
			Amount:            10_000,
			InterestRate:      0.05,
			SpecialConditions: []string{ConditionNoPrepaymentPenalty},
		})
		quote, err := s.service.Quote(s.ctx, l.ID)
		s.Require().NoError(err)
		s.Equal(int64(0), quote.PrepaymentPenalty)
		s.Equal(int64(10_000), quote.TotalPayoffAmount)
	})

	s.Run("paid off loans are not eligible", func() {
		l := s.createLoan(CreateLoanRequest{Amount: 10_000, InterestRate: 0})
		_, err := s.service.ProcessPayment(s.ctx, l.ID, l.BorrowerID, 10_000, MethodBankTransfer)
		s.Require().NoError(err)
		_, err = s.service.EarlyPayoff(s.ctx, l.ID, l.BorrowerID, MethodBankTransfer)
		s.True(dErrors.HasCode(err, dErrors.CodeBadRequest))
	})
}

func (s *ServiceSuite) TestLateFeeIdempotency() {
	l := s.createLoan(CreateLoanRequest{Amount: 100_000, InterestRate: 0.05})
	s.advance(40 * 24 * time.Hour)

	s.Require().NoError(s.service.AssessLateFee(s.ctx, l.ID))
	s.Require().NoError(s.service.AssessLateFee(s.ctx, l.ID))

	payments, err := s.store.ListPaymentsByLoan(s.ctx, l.ID)
	s.Require().NoError(err)

	var fees []Payment
	for _, p := range payments {
		if p.Type == PaymentLateFee {
			fees = append(fees, p)
		}
	}
	s.Require().Len(fees, 1, "same due period must produce exactly one fee")
	s.Equal(PaymentPending, fees[0].Status)
	s.Equal(fees[0].Amount, fees[0].LateFee)

	// 5% of the monthly payment or the floor, whichever is larger.
	want := int64(float64(l.MonthlyPayment) * 0.05)
	if want < 2_500 {
		want = 2_500
	}
	s.Equal(want, fees[0].Amount)
}

func (s *ServiceSuite) TestApplyTransition() {
	s.Run("late transition assesses a fee and counts it", func() {
		l := s.createLoan(CreateLoanRequest{Amount: 100_000, InterestRate: 0.05})
		s.advance(10 * 24 * time.Hour)

		change, err := s.service.ApplyTransition(s.ctx, l.ID)
		s.Require().NoError(err)
		s.Require().NotNil(change)
		s.Equal(StatusActive, change.From)
		s.Equal(StatusLate, change.To)

		got, err := s.service.Get(s.ctx, l.ID)
		s.Require().NoError(err)
		s.Equal(StatusLate, got.Status)
		s.Equal(1, got.LatePayments)

		payments, err := s.store.ListPaymentsByLoan(s.ctx, l.ID)
		s.Require().NoError(err)
		s.Len(payments, 1)
		s.Equal(PaymentLateFee, payments[0].Type)
	})

	s.Run("crossing ninety days defaults and debits the treasury once", func() {
		s.Require().NoError(s.tstore.Save(s.ctx, treasury.Treasury{
			Purpose:                treasury.PurposeLoan,
			TotalFunds:             100_000,
			AvailableFunds:         80_000,
			ReservedFunds:          20_000,
			MinimumReserveRatio:    0.15,
			MaximumAllocationRatio: 0.85,
		}))
		l := s.createLoan(CreateLoanRequest{BorrowerID: "borrower-def", Amount: 10_000, InterestRate: 0.05})

		// Drop the balance to 5,000 with a zero-interest-style payment.
		monthlyInterest := float64(10_000) * 0.05 / 12
		p, err := s.service.ProcessPayment(s.ctx, l.ID, "borrower-def", 5_000+int64(monthlyInterest), MethodBankTransfer)
		s.Require().NoError(err)
		s.Equal(int64(5_000), p.PrincipalPortion)

		beforeDefault := s.loanTreasury()
		s.advance(121 * 24 * time.Hour)

		change, err := s.service.ApplyTransition(s.ctx, l.ID)
		s.Require().NoError(err)
		s.Require().NotNil(change)
		s.Equal(StatusDefault, change.To)

		after := s.loanTreasury()
		s.Equal(beforeDefault.ReservedFunds-5_000, after.ReservedFunds)
		s.Equal(beforeDefault.TotalFunds-5_000, after.TotalFunds)

		// A second sweep pass must not debit again.
		change, err = s.service.ApplyTransition(s.ctx, l.ID)
		s.Require().NoError(err)
		s.Nil(change)
		s.Equal(after, s.loanTreasury())
	})

	s.Run("nothing to do returns nil", func() {
		l := s.createLoan(CreateLoanRequest{BorrowerID: "borrower-noop", Amount: 10_000, InterestRate: 0.05})
		change, err := s.service.ApplyTransition(s.ctx, l.ID)
		s.Require().NoError(err)
		s.Nil(change)
	})
}

func (s *ServiceSuite) TestAccrueInterest() {
	l := s.createLoan(CreateLoanRequest{Amount: 100_000, InterestRate: 0.0365})

	s.Require().NoError(s.service.AccrueInterest(s.ctx, l.ID))
	got, err := s.service.Get(s.ctx, l.ID)
	s.Require().NoError(err)
	// One day at 3.65% annual is 0.01% of the balance.
	s.Equal(int64(100_010), got.CurrentBalance)

	// Re-running within the same day must not compound again.
	s.Require().NoError(s.service.AccrueInterest(s.ctx, l.ID))
	got, err = s.service.Get(s.ctx, l.ID)
	s.Require().NoError(err)
	s.Equal(int64(100_010), got.CurrentBalance)

	s.advance(25 * time.Hour)
	s.Require().NoError(s.service.AccrueInterest(s.ctx, l.ID))
	got, err = s.service.Get(s.ctx, l.ID)
	s.Require().NoError(err)
	s.Equal(int64(100_020), got.CurrentBalance)
}

func (s *ServiceSuite) TestOverdueAndSweepable() {
	onTime := s.createLoan(CreateLoanRequest{BorrowerID: "b1", InterestRate: 0.05, GracePeriodMonths: 3})
	late := s.createLoan(CreateLoanRequest{BorrowerID: "b2", InterestRate: 0.05})
	paid := s.createLoan(CreateLoanRequest{BorrowerID: "b3", Amount: 10_000, InterestRate: 0})
	_, err := s.service.ProcessPayment(s.ctx, paid.ID, "b3", 10_000, MethodBankTransfer)
	s.Require().NoError(err)

	s.advance(10 * 24 * time.Hour)

	overdue, err := s.service.Overdue(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(overdue, 1)
	s.Equal(late.ID, overdue[0].ID)

	sweepable, err := s.service.Sweepable(s.ctx)
	s.Require().NoError(err)
	ids := make([]string, 0, len(sweepable))
	for _, l := range sweepable {
		ids = append(ids, l.ID)
	}
	s.ElementsMatch(ids, []string{onTime.ID, late.ID})
}

func (s *ServiceSuite) TestPortfolioStats() {
	a := s.createLoan(CreateLoanRequest{BorrowerID: "b1", Amount: 100_000, InterestRate: 0.12})
	b := s.createLoan(CreateLoanRequest{BorrowerID: "b2", Amount: 50_000, InterestRate: 0.05})
	_, err := s.service.ProcessPayment(s.ctx, a.ID, "b1", 10_000, MethodBankTransfer)
	s.Require().NoError(err)
	_, err = s.service.UpdateStatus(s.ctx, b.ID, StatusDefault)
	s.Require().NoError(err)

	stats, err := s.service.PortfolioStats(s.ctx)
	s.Require().NoError(err)
	s.Equal(int64(150_000), stats.TotalDisbursed)
	s.Equal(int64(91_000), stats.TotalOutstanding)
	s.Equal(int64(50_000), stats.TotalDefaults)
	s.Equal(1, stats.ActiveLoanCount)
	s.InDelta(0.5, stats.DefaultRate, 1e-9)
	s.Equal(int64(75_000), stats.AverageLoanSize)
	s.Equal(int64(10_000), stats.TotalPaymentsReceived)
	s.Equal(int64(1_000), stats.TotalInterestEarned)
}

func (s *ServiceSuite) TestBorrowerStats() {
	a := s.createLoan(CreateLoanRequest{BorrowerID: "b1", Amount: 10_000, InterestRate: 0})
	_, err := s.service.ProcessPayment(s.ctx, a.ID, "b1", 10_000, MethodBankTransfer)
	s.Require().NoError(err)
	s.createLoan(CreateLoanRequest{BorrowerID: "b1", Amount: 50_000, InterestRate: 0.05})

	stats, err := s.service.StatsFor(s.ctx, "b1")
	s.Require().NoError(err)
	s.Equal(int64(60_000), stats.TotalBorrowed)
	s.Equal(int64(50_000), stats.CurrentBalance)
	s.Equal(int64(10_000), stats.TotalPaid)
	s.Equal(1, stats.ActiveLoans)
	s.Equal(1, stats.CompletedLoans)
	s.Equal(1, stats.OnTimePayments)
	// One paid-off loan (+10) and one on-time payment (+2).
	s.Equal(12, stats.CreditScoreImpact)
}
