package treasury

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	dErrors "fundgate/pkg/domain-errors"
)

type ServiceSuite struct {
	suite.Suite
	service *Service
	store   *InMemoryStore
	ctx     context.Context
	now     time.Time
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.ctx = context.Background()
	s.now = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	s.store = NewInMemoryStore()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s.service = NewService(s.store, logger, WithClock(func() time.Time { return s.now }))
	s.Require().NoError(s.service.Bootstrap(s.ctx))
}

func (s *ServiceSuite) seed(t Treasury) {
	s.Require().NoError(s.store.Save(s.ctx, t))
}

func (s *ServiceSuite) get(purpose Purpose) Treasury {
	t, err := s.store.Get(s.ctx, purpose)
	s.Require().NoError(err)
	return t
}

func (s *ServiceSuite) TestBootstrap() {
	s.Run("creates all three treasuries with default capitalization", func() {
		loan := s.get(PurposeLoan)
		s.Equal(int64(100_000_000), loan.TotalFunds)
		s.Equal(int64(80_000_000), loan.AvailableFunds)
		s.Equal(int64(20_000_000), loan.ReservedFunds)
		s.False(loan.GovernanceRequired)
		s.True(loan.AutoRebalance)

		scholarship := s.get(PurposeScholarship)
		s.Equal(int64(50_000_000), scholarship.TotalFunds)
		s.True(scholarship.GovernanceRequired)

		protocol := s.get(PurposeProtocol)
		s.Equal(int64(20_000_000), protocol.TotalFunds)
		s.Equal(int64(15_000_000), protocol.AvailableFunds)
	})

	s.Run("does not overwrite existing records", func() {
		loan := s.get(PurposeLoan)
		loan.TotalFunds = 42
		s.seed(loan)
		s.Require().NoError(s.service.Bootstrap(s.ctx))
		s.Equal(int64(42), s.get(PurposeLoan).TotalFunds)
	})
}

func (s *ServiceSuite) TestCheckEligibility() {
	s.Run("ok within limits", func() {
		s.NoError(s.service.CheckEligibility(s.ctx, PurposeLoan, 1_000_000, false))
	})

	s.Run("rejects non-positive amount", func() {
		err := s.service.CheckEligibility(s.ctx, PurposeLoan, 0, false)
		s.True(dErrors.HasCode(err, dErrors.CodeBadRequest))
	})

	s.Run("governance required for scholarship treasury", func() {
		err := s.service.CheckEligibility(s.ctx, PurposeScholarship, 1_000_000, false)
		s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
		s.NoError(s.service.CheckEligibility(s.ctx, PurposeScholarship, 1_000_000, true))
	})

	s.Run("rejects amount over available funds", func() {
		err := s.service.CheckEligibility(s.ctx, PurposeLoan, 80_000_001, false)
		s.True(dErrors.HasCode(err, dErrors.CodeInsufficientFunds))
	})

	s.Run("rejects allocation beyond maximum ratio", func() {
		// Loan treasury: reserved 20M of 100M, max ratio 0.85. Allocating
		// 70M would push reserved to 90% even though 80M is available.
		err := s.service.CheckEligibility(s.ctx, PurposeLoan, 70_000_000, false)
		s.True(dErrors.HasCode(err, dErrors.CodeInsufficientFunds))
	})

	s.Run("rejects allocation that breaks the reserve floor", func() {
		// Dropping available below 15% of total violates the reserve.
		err := s.service.CheckEligibility(s.ctx, PurposeLoan, 66_000_000, false)
		s.True(dErrors.HasCode(err, dErrors.CodeInsufficientFunds))
	})
}

func (s *ServiceSuite) TestAllocate() {
	s.Run("moves funds from available to reserved", func() {
		s.seed(Treasury{
			Purpose:                PurposeLoan,
			TotalFunds:             1_000_000,
			AvailableFunds:         800_000,
			ReservedFunds:          200_000,
			MinimumReserveRatio:    0.15,
			MaximumAllocationRatio: 0.85,
		})
		s.Require().NoError(s.service.Allocate(s.ctx, PurposeLoan, 50_000, "loan origination", false))

		loan := s.get(PurposeLoan)
		s.Equal(int64(1_000_000), loan.TotalFunds)
		s.Equal(int64(750_000), loan.AvailableFunds)
		s.Equal(int64(250_000), loan.ReservedFunds)
		s.Equal(s.now, loan.LastUpdated)
	})

	s.Run("failed allocation leaves treasury untouched", func() {
		before := s.get(PurposeScholarship)
		err := s.service.Allocate(s.ctx, PurposeScholarship, 1_000_000, "grant", false)
		s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
		s.Equal(before, s.get(PurposeScholarship))
	})

	s.Run("conserves total funds", func() {
		before := s.get(PurposeLoan)
		s.Require().NoError(s.service.Allocate(s.ctx, PurposeLoan, 5_000, "loan origination", false))
		after := s.get(PurposeLoan)
		s.Equal(before.TotalFunds, after.TotalFunds)
		s.Equal(before.AvailableFunds+before.ReservedFunds, after.AvailableFunds+after.ReservedFunds)
	})
}

func (s *ServiceSuite) TestAddFunds() {
	before := s.get(PurposeLoan)
	s.Require().NoError(s.service.AddFunds(s.ctx, PurposeLoan, 1_000_000, "donation"))
	after := s.get(PurposeLoan)
	s.Equal(before.TotalFunds+1_000_000, after.TotalFunds)
	s.Equal(before.AvailableFunds+1_000_000, after.AvailableFunds)
	s.Equal(before.ReservedFunds, after.ReservedFunds)

	err := s.service.AddFunds(s.ctx, PurposeLoan, -5, "donation")
	s.True(dErrors.HasCode(err, dErrors.CodeBadRequest))
}

func (s *ServiceSuite) TestReturnFunds() {
	s.Run("principal releases reserve, revenue grows the pool", func() {
		before := s.get(PurposeLoan)
		s.Require().NoError(s.service.ReturnFunds(s.ctx, PurposeLoan, 10_000, 500))
		after := s.get(PurposeLoan)
		s.Equal(before.TotalFunds+500, after.TotalFunds)
		s.Equal(before.AvailableFunds+10_500, after.AvailableFunds)
		s.Equal(before.ReservedFunds-10_000, after.ReservedFunds)
	})

	s.Run("reserved funds saturate at zero", func() {
		s.seed(Treasury{Purpose: PurposeLoan, TotalFunds: 100_000, AvailableFunds: 99_000, ReservedFunds: 500})
		s.Require().NoError(s.service.ReturnFunds(s.ctx, PurposeLoan, 1_000, 0))
		s.Equal(int64(0), s.get(PurposeLoan).ReservedFunds)
	})
}

func (s *ServiceSuite) TestHandleDefault() {
	s.Run("writes the balance off reserved and total", func() {
		s.seed(Treasury{Purpose: PurposeLoan, TotalFunds: 100_000, AvailableFunds: 80_000, ReservedFunds: 20_000})
		s.Require().NoError(s.service.HandleDefault(s.ctx, PurposeLoan, 5_000))
		loan := s.get(PurposeLoan)
		s.Equal(int64(95_000), loan.TotalFunds)
		s.Equal(int64(15_000), loan.ReservedFunds)
		s.Equal(int64(80_000), loan.AvailableFunds)
	})

	s.Run("saturates at zero", func() {
		s.seed(Treasury{Purpose: PurposeLoan, TotalFunds: 1_000, AvailableFunds: 0, ReservedFunds: 1_000})
		s.Require().NoError(s.service.HandleDefault(s.ctx, PurposeLoan, 50_000))
		loan := s.get(PurposeLoan)
		s.Equal(int64(0), loan.TotalFunds)
		s.Equal(int64(0), loan.ReservedFunds)
	})
}

func (s *ServiceSuite) TestTransfer() {
	s.Run("requires governance approval", func() {
		err := s.service.Transfer(s.ctx, PurposeScholarship, PurposeLoan, 1_000, false)
		s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})

	s.Run("moves total and available funds between pools", func() {
		srcBefore := s.get(PurposeScholarship)
		dstBefore := s.get(PurposeLoan)
		s.Require().NoError(s.service.Transfer(s.ctx, PurposeScholarship, PurposeLoan, 1_000_000, true))
		src := s.get(PurposeScholarship)
		dst := s.get(PurposeLoan)
		s.Equal(srcBefore.TotalFunds-1_000_000, src.TotalFunds)
		s.Equal(srcBefore.AvailableFunds-1_000_000, src.AvailableFunds)
		s.Equal(dstBefore.TotalFunds+1_000_000, dst.TotalFunds)
		s.Equal(dstBefore.AvailableFunds+1_000_000, dst.AvailableFunds)
	})

	s.Run("rejects transfer to the same treasury", func() {
		err := s.service.Transfer(s.ctx, PurposeLoan, PurposeLoan, 1_000, true)
		s.True(dErrors.HasCode(err, dErrors.CodeBadRequest))
	})

	s.Run("rejects transfer over available funds", func() {
		err := s.service.Transfer(s.ctx, PurposeProtocol, PurposeLoan, 15_000_001, true)
		s.True(dErrors.HasCode(err, dErrors.CodeInsufficientFunds))
	})
}

func (s *ServiceSuite) TestRebalance() {
	s.Run("redistributes around outstanding balance", func() {
		// Loan treasury defaults: reserve 0.15, emergency 0.10, interest
		// 0.05 of 100M total leaves 70M lendable.
		s.Require().NoError(s.service.Rebalance(s.ctx, PurposeLoan, 30_000_000))
		loan := s.get(PurposeLoan)
		s.Equal(int64(30_000_000), loan.ReservedFunds)
		s.Equal(int64(40_000_000), loan.AvailableFunds)
		s.Equal(s.now, loan.LastRebalance)
	})

	s.Run("available saturates at zero when overextended", func() {
		s.Require().NoError(s.service.Rebalance(s.ctx, PurposeLoan, 90_000_000))
		loan := s.get(PurposeLoan)
		s.Equal(int64(0), loan.AvailableFunds)
		s.Equal(int64(90_000_000), loan.ReservedFunds)
	})

	s.Run("no-op when auto-rebalance disabled", func() {
		before := s.get(PurposeScholarship)
		s.Require().NoError(s.service.Rebalance(s.ctx, PurposeScholarship, 1_000))
		s.Equal(before, s.get(PurposeScholarship))
	})
}
