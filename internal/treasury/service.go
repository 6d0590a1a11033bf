package treasury

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	dErrors "fundgate/pkg/domain-errors"
)

// Clock supplies the current time; injected for testability.
type Clock func() time.Time

// Service is the treasury ledger. Every operation is validate-then-mutate
// under one mutex, so no caller ever observes a partially updated treasury
// and failed validations leave the record untouched.
type Service struct {
	mu     sync.Mutex
	store  Store
	logger *slog.Logger
	clock  Clock
	tracer trace.Tracer
}

// Option configures a Service.
type Option func(*Service)

// WithClock sets the clock function for testability.
func WithClock(clock Clock) Option {
	return func(s *Service) {
		if clock != nil {
			s.clock = clock
		}
	}
}

func NewService(store Store, logger *slog.Logger, opts ...Option) *Service {
	s := &Service{
		store:  store,
		logger: logger,
		clock:  time.Now,
		tracer: otel.Tracer("fundgate/treasury"),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// Bootstrap creates any missing treasury with its default capitalization.
// Existing records are never overwritten.
func (s *Service) Bootstrap(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.clock()
	for _, purpose := range Purposes() {
		if _, err := s.store.Get(ctx, purpose); err == nil {
			continue
		} else if !dErrors.HasCode(err, dErrors.CodeNotFound) {
			return err
		}
		if err := s.store.Save(ctx, defaultTreasury(purpose, now)); err != nil {
			return err
		}
		s.logger.InfoContext(ctx, "treasury initialized", "purpose", purpose)
	}
	return nil
}

// Get returns one treasury record.
func (s *Service) Get(ctx context.Context, purpose Purpose) (Treasury, error) {
	return s.store.Get(ctx, purpose)
}

// List returns all treasury records in purpose order.
func (s *Service) List(ctx context.Context) ([]Treasury, error) {
	return s.store.List(ctx)
}

// CheckEligibility verifies that an allocation of amount would respect the
// treasury's governance, balance, and ratio constraints without mutating it.
func (s *Service) CheckEligibility(ctx context.Context, purpose Purpose, amount int64, governanceApproved bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, err := s.store.Get(ctx, purpose)
	if err != nil {
		return err
	}
	return checkEligibility(t, amount, governanceApproved)
}

func checkEligibility(t Treasury, amount int64, governanceApproved bool) error {
	if amount <= 0 {
		return dErrors.New(dErrors.CodeBadRequest, "amount must be positive")
	}
	if t.GovernanceRequired && !governanceApproved {
		return dErrors.Newf(dErrors.CodeUnauthorized, "governance approval required for %s treasury allocations", t.Purpose)
	}
	if amount > t.AvailableFunds {
		return dErrors.Newf(dErrors.CodeInsufficientFunds, "insufficient funds in %s treasury", t.Purpose)
	}
	if t.TotalFunds > 0 {
		newReserved := t.ReservedFunds + amount
		if float64(newReserved)/float64(t.TotalFunds) > t.MaximumAllocationRatio {
			return dErrors.Newf(dErrors.CodeInsufficientFunds, "allocation would exceed maximum ratio for %s treasury", t.Purpose)
		}
		remaining := t.AvailableFunds - amount
		if float64(remaining)/float64(t.TotalFunds) < t.MinimumReserveRatio {
			return dErrors.Newf(dErrors.CodeInsufficientFunds, "allocation would violate reserve requirements for %s treasury", t.Purpose)
		}
	}
	return nil
}

// Allocate moves amount from available to reserved funds after re-running the
// eligibility checks.
func (s *Service) Allocate(ctx context.Context, purpose Purpose, amount int64, reason string, governanceApproved bool) error {
	ctx, span := s.tracer.Start(ctx, "treasury.Allocate")
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()
	t, err := s.store.Get(ctx, purpose)
	if err != nil {
		return err
	}
	if err := checkEligibility(t, amount, governanceApproved); err != nil {
		return err
	}
	t.AvailableFunds -= amount
	t.ReservedFunds += amount
	t.LastUpdated = s.clock()
	if err := s.store.Save(ctx, t); err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "treasury allocation",
		"purpose", purpose, "amount", amount, "reason", reason)
	return nil
}

// AddFunds grows a treasury: both total and available increase.
func (s *Service) AddFunds(ctx context.Context, purpose Purpose, amount int64, source string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if amount <= 0 {
		return dErrors.New(dErrors.CodeBadRequest, "amount must be positive")
	}
	t, err := s.store.Get(ctx, purpose)
	if err != nil {
		return err
	}
	t.TotalFunds += amount
	t.AvailableFunds += amount
	t.LastUpdated = s.clock()
	if err := s.store.Save(ctx, t); err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "treasury funds added",
		"purpose", purpose, "amount", amount, "source", source)
	return nil
}

// ReturnFunds releases reserved principal back to available and books revenue
// (interest, fees) as pool growth.
func (s *Service) ReturnFunds(ctx context.Context, purpose Purpose, principal, revenue int64) error {
	ctx, span := s.tracer.Start(ctx, "treasury.ReturnFunds")
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()
	if principal < 0 || revenue < 0 {
		return dErrors.New(dErrors.CodeBadRequest, "principal and revenue must be non-negative")
	}
	t, err := s.store.Get(ctx, purpose)
	if err != nil {
		return err
	}
	t.AvailableFunds += principal
	if t.ReservedFunds < principal {
		t.ReservedFunds = 0
	} else {
		t.ReservedFunds -= principal
	}
	if revenue > 0 {
		t.TotalFunds += revenue
		t.AvailableFunds += revenue
	}
	t.LastUpdated = s.clock()
	if err := s.store.Save(ctx, t); err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "treasury funds returned",
		"purpose", purpose, "principal", principal, "revenue", revenue)
	return nil
}

// HandleDefault writes a defaulted balance off the pool. Losses shrink both
// reserved and total funds, saturating at zero.
func (s *Service) HandleDefault(ctx context.Context, purpose Purpose, remainingBalance int64) error {
	ctx, span := s.tracer.Start(ctx, "treasury.HandleDefault")
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()
	if remainingBalance < 0 {
		return dErrors.New(dErrors.CodeBadRequest, "remaining balance must be non-negative")
	}
	t, err := s.store.Get(ctx, purpose)
	if err != nil {
		return err
	}
	t.ReservedFunds -= min64(t.ReservedFunds, remainingBalance)
	t.TotalFunds -= min64(t.TotalFunds, remainingBalance)
	t.LastUpdated = s.clock()
	if err := s.store.Save(ctx, t); err != nil {
		return err
	}
	s.logger.WarnContext(ctx, "treasury absorbed default",
		"purpose", purpose, "written_off", remainingBalance)
	return nil
}

// Transfer moves funds between treasuries. Always requires governance
// approval regardless of the source treasury's own flag.
func (s *Service) Transfer(ctx context.Context, from, to Purpose, amount int64, governanceApproved bool) error {
	ctx, span := s.tracer.Start(ctx, "treasury.Transfer")
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()
	if !governanceApproved {
		return dErrors.New(dErrors.CodeUnauthorized, "governance approval required for inter-treasury transfers")
	}
	if amount <= 0 {
		return dErrors.New(dErrors.CodeBadRequest, "amount must be positive")
	}
	if from == to {
		return dErrors.New(dErrors.CodeBadRequest, "source and destination treasuries must differ")
	}
	src, err := s.store.Get(ctx, from)
	if err != nil {
		return err
	}
	dst, err := s.store.Get(ctx, to)
	if err != nil {
		return err
	}
	if amount > src.AvailableFunds {
		return dErrors.Newf(dErrors.CodeInsufficientFunds, "insufficient funds in %s treasury", from)
	}
	now := s.clock()
	src.TotalFunds -= amount
	src.AvailableFunds -= amount
	src.LastUpdated = now
	dst.TotalFunds += amount
	dst.AvailableFunds += amount
	dst.LastUpdated = now
	if err := s.store.Save(ctx, src); err != nil {
		return err
	}
	if err := s.store.Save(ctx, dst); err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "treasury transfer",
		"from", from, "to", to, "amount", amount)
	return nil
}

// Rebalance redistributes the loan treasury's available and reserved funds
// against the actual outstanding balance, honoring the configured reserve
// targets. A no-op when auto-rebalance is disabled.
func (s *Service) Rebalance(ctx context.Context, purpose Purpose, outstanding int64) error {
	ctx, span := s.tracer.Start(ctx, "treasury.Rebalance")
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()
	t, err := s.store.Get(ctx, purpose)
	if err != nil {
		return err
	}
	if !t.AutoRebalance {
		return nil
	}
	targetReserve := int64(float64(t.TotalFunds) * t.MinimumReserveRatio)
	targetEmergency := int64(float64(t.TotalFunds) * t.EmergencyFundRatio)
	targetInterest := int64(float64(t.TotalFunds) * t.InterestReserveRatio)
	reservesNeeded := targetReserve + targetEmergency + targetInterest

	availableForLoans := t.TotalFunds - reservesNeeded
	if availableForLoans < 0 {
		availableForLoans = 0
	}
	available := availableForLoans - outstanding
	if available < 0 {
		available = 0
	}
	t.AvailableFunds = available
	t.ReservedFunds = outstanding
	now := s.clock()
	t.LastRebalance = now
	t.LastUpdated = now
	if err := s.store.Save(ctx, t); err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "treasury rebalanced",
		"purpose", purpose, "outstanding", outstanding, "available", available)
	return nil
}

func min64(a, b int64) int64 {
	if a < b {
		return a
	}
	return b
}
