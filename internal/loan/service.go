package loan

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"fundgate/internal/amortize"
	"fundgate/internal/platform/metrics"
	"fundgate/internal/treasury"
	dErrors "fundgate/pkg/domain-errors"
)

// Late fees are 5% of the scheduled payment with a floor, assessed at most
// once per due period.
const (
	lateFeeRate    = 0.05
	lateFeeMinimum int64 = 2_500
)

// prepaymentPenaltyRate applies to early payoffs unless the loan carries the
// no-penalty condition.
const prepaymentPenaltyRate = 0.02

// accrualInterval is the minimum spacing between daily interest accruals for
// one loan. Sweeping more often than daily must not compound faster.
const accrualInterval = 24 * time.Hour

// Clock supplies the current time; injected for testability.
type Clock func() time.Time

// Ledger is the slice of the treasury service the loan domain drives.
type Ledger interface {
	CheckEligibility(ctx context.Context, purpose treasury.Purpose, amount int64, governanceApproved bool) error
	Allocate(ctx context.Context, purpose treasury.Purpose, amount int64, reason string, governanceApproved bool) error
	ReturnFunds(ctx context.Context, purpose treasury.Purpose, principal, revenue int64) error
	HandleDefault(ctx context.Context, purpose treasury.Purpose, remainingBalance int64) error
}

// Service owns loan origination, payment processing, and the lifecycle
// mutations the automation sweep applies. All mutating operations are
// serialized under one mutex, so no caller observes a partially updated loan
// and the sweep never races a payment.
type Service struct {
	mu      sync.Mutex
	store   Store
	ledger  Ledger
	metrics *metrics.Metrics
	logger  *slog.Logger
	clock   Clock
	tracer  trace.Tracer
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

func NewService(store Store, ledger Ledger, m *metrics.Metrics, logger *slog.Logger, opts ...Option) *Service {
	s := &Service{
		store:   store,
		ledger:  ledger,
		metrics: m,
		logger:  logger,
		clock:   time.Now,
		tracer:  otel.Tracer("fundgate/loan"),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// CreateLoanRequest carries validated origination inputs.
type CreateLoanRequest struct {
	BorrowerID        string
	Amount            int64
	InterestRate      float64
	TermMonths        int
	GracePeriodMonths int
	Purpose           string
	CollateralFlag    bool
	CosignerID        string
	SpecialConditions []string
}

// CreateLoan validates the terms, reserves treasury funds, and persists the
// new loan. The treasury allocation and the loan write happen under one
// critical section so a failed allocation never leaves an orphan loan.
func (s *Service) CreateLoan(ctx context.Context, req CreateLoanRequest) (Loan, error) {
	ctx, span := s.tracer.Start(ctx, "loan.CreateLoan")
	defer span.End()

	if req.BorrowerID == "" {
		return Loan{}, dErrors.New(dErrors.CodeBadRequest, "borrower id is required")
	}
	if err := ValidateTerms(req.Amount, req.InterestRate, req.TermMonths, req.GracePeriodMonths); err != nil {
		return Loan{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ledger.CheckEligibility(ctx, treasury.PurposeLoan, req.Amount, false); err != nil {
		return Loan{}, err
	}

	now := s.clock()
	monthlyPayment := amortize.MonthlyPayment(req.Amount, req.InterestRate, req.TermMonths)
	originationFee := int64(float64(req.Amount) * OriginationFeeRate)

	seq, err := s.store.NextID(ctx, CounterLoan)
	if err != nil {
		return Loan{}, err
	}

	l := Loan{
		ID:                FormatLoanID(seq),
		BorrowerID:        req.BorrowerID,
		OriginalAmount:    req.Amount,
		CurrentBalance:    req.Amount,
		InterestRate:      req.InterestRate,
		TermMonths:        req.TermMonths,
		MonthlyPayment:    monthlyPayment,
		GracePeriodMonths: req.GracePeriodMonths,
		OriginationFee:    originationFee,
		CreatedAt:         now,
		FirstPaymentDue:   now.Add(time.Duration(req.GracePeriodMonths) * oneMonth),
		Purpose:           req.Purpose,
		CollateralFlag:    req.CollateralFlag,
		CosignerID:        req.CosignerID,
		SpecialConditions: req.SpecialConditions,
	}
	l.Status = DetermineStatus(l, now)

	if err := s.ledger.Allocate(ctx, treasury.PurposeLoan, req.Amount, "loan "+l.ID, false); err != nil {
		return Loan{}, err
	}
	if err := s.store.SaveLoan(ctx, l); err != nil {
		return Loan{}, err
	}

	s.metrics.LoansCreated.Inc()
	s.logger.InfoContext(ctx, "loan created",
		"loan_id", l.ID, "borrower_id", l.BorrowerID,
		"amount", l.OriginalAmount, "monthly_payment", l.MonthlyPayment,
		"status", l.Status)
	return l, nil
}

// Get returns one loan.
func (s *Service) Get(ctx context.Context, id string) (Loan, error) {
	return s.store.GetLoan(ctx, id)
}

// ListByBorrower returns every loan held by a borrower in creation order.
func (s *Service) ListByBorrower(ctx context.Context, borrowerID string) ([]Loan, error) {
	return s.store.ListLoansByBorrower(ctx, borrowerID)
}

// Overdue returns every loan past its next payment due date.
func (s *Service) Overdue(ctx context.Context) ([]Loan, error) {
	loans, err := s.store.ListLoans(ctx)
	if err != nil {
		return nil, err
	}
	now := s.clock()
	var out []Loan
	for _, l := range loans {
		if !l.Status.Terminal() && l.Status != StatusInGracePeriod && DaysOverdue(l, now) > 0 {
			out = append(out, l)
		}
	}
	return out, nil
}

// Sweepable returns the loans the automation sweep should visit: everything
// time can still move.
func (s *Service) Sweepable(ctx context.Context) ([]Loan, error) {
	loans, err := s.store.ListLoans(ctx)
	if err != nil {
		return nil, err
	}
	var out []Loan
	for _, l := range loans {
		switch l.Status {
		case StatusInGracePeriod, StatusActive, StatusLate:
			out = append(out, l)
		}
	}
	return out, nil
}

// Payments returns the payment history for a loan.
func (s *Service) Payments(ctx context.Context, loanID string) ([]Payment, error) {
	if _, err := s.store.GetLoan(ctx, loanID); err != nil {
		return nil, err
	}
	return s.store.ListPaymentsByLoan(ctx, loanID)
}

// ProcessPayment applies a payment from the borrower or co-signer, splits it
// into principal and interest, credits the treasury, and records the payment.
func (s *Service) ProcessPayment(ctx context.Context, loanID, payerID string, amount int64, method PaymentMethod) (Payment, error) {
	ctx, span := s.tracer.Start(ctx, "loan.ProcessPayment")
	defer span.End()

	if amount <= 0 {
		return Payment{}, dErrors.New(dErrors.CodeBadRequest, "amount must be positive")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	l, err := s.store.GetLoan(ctx, loanID)
	if err != nil {
		return Payment{}, err
	}
	if !l.AuthorizedPayer(payerID) {
		return Payment{}, dErrors.New(dErrors.CodeUnauthorized, "not authorized to make payments on this loan")
	}
	if !l.Status.Payable() {
		return Payment{}, dErrors.New(dErrors.CodeBadRequest, "loan is not in a payable state")
	}

	breakdown := amortize.Split(l.CurrentBalance, l.InterestRate, amount)
	now := s.clock()

	seq, err := s.store.NextID(ctx, CounterPayment)
	if err != nil {
		return Payment{}, err
	}
	p := Payment{
		ID:               FormatPaymentID(seq),
		LoanID:           l.ID,
		PayerID:          payerID,
		Amount:           amount,
		PrincipalPortion: breakdown.PrincipalPortion,
		InterestPortion:  breakdown.InterestPortion,
		Type:             PaymentRegular,
		Method:           method,
		Status:           PaymentCompleted,
		CreatedAt:        now,
		ProcessedAt:      &now,
	}

	l.CurrentBalance = breakdown.RemainingBalance
	l.PaymentsMade++
	l.LastPaymentAt = &now
	if l.CurrentBalance == 0 {
		l.Status = StatusPaidOff
	}

	if err := s.ledger.ReturnFunds(ctx, treasury.PurposeLoan, breakdown.PrincipalPortion, breakdown.InterestPortion); err != nil {
		return Payment{}, err
	}
	if err := s.store.SaveLoan(ctx, l); err != nil {
		return Payment{}, err
	}
	if err := s.store.SavePayment(ctx, p); err != nil {
		return Payment{}, err
	}

	s.metrics.PaymentsProcessed.Inc()
	s.logger.InfoContext(ctx, "payment processed",
		"payment_id", p.ID, "loan_id", l.ID,
		"principal", p.PrincipalPortion, "interest", p.InterestPortion,
		"remaining_balance", l.CurrentBalance)
	return p, nil
}

// Quote computes the early payoff terms for a loan without mutating it.
func (s *Service) Quote(ctx context.Context, loanID string) (PayoffQuote, error) {
	l, err := s.store.GetLoan(ctx, loanID)
	if err != nil {
		return PayoffQuote{}, err
	}
	return quoteFor(l), nil
}

func quoteFor(l Loan) PayoffQuote {
	penalty := int64(0)
	if !l.HasCondition(ConditionNoPrepaymentPenalty) {
		penalty = int64(float64(l.CurrentBalance) * prepaymentPenaltyRate)
	}
	savings := l.ScheduledTotalInterest() - l.TotalInterestPaid()
	if savings < 0 {
		savings = 0
	}
	return PayoffQuote{
		RemainingBalance:  l.CurrentBalance,
		PrepaymentPenalty: penalty,
		TotalPayoffAmount: l.CurrentBalance + penalty,
		InterestSavings:   savings,
		Eligible:          l.Status.Payable(),
	}
}

// EarlyPayoff settles the loan's entire balance plus any prepayment penalty.
// The balance always reaches zero and the loan is PaidOff regardless of the
// penalty.
func (s *Service) EarlyPayoff(ctx context.Context, loanID, payerID string, method PaymentMethod) (Payment, error) {
	ctx, span := s.tracer.Start(ctx, "loan.EarlyPayoff")
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	l, err := s.store.GetLoan(ctx, loanID)
	if err != nil {
		return Payment{}, err
	}
	if !l.AuthorizedPayer(payerID) {
		return Payment{}, dErrors.New(dErrors.CodeUnauthorized, "not authorized to make payments on this loan")
	}
	quote := quoteFor(l)
	if !quote.Eligible {
		return Payment{}, dErrors.New(dErrors.CodeBadRequest, "loan is not eligible for early payoff")
	}

	now := s.clock()
	seq, err := s.store.NextID(ctx, CounterPayment)
	if err != nil {
		return Payment{}, err
	}
	p := Payment{
		ID:               FormatPaymentID(seq),
		LoanID:           l.ID,
		PayerID:          payerID,
		Amount:           quote.TotalPayoffAmount,
		PrincipalPortion: quote.RemainingBalance,
		LateFee:          quote.PrepaymentPenalty,
		Type:             PaymentFullPayoff,
		Method:           method,
		Status:           PaymentCompleted,
		CreatedAt:        now,
		ProcessedAt:      &now,
	}

	l.CurrentBalance = 0
	l.Status = StatusPaidOff
	l.LastPaymentAt = &now

	if err := s.ledger.ReturnFunds(ctx, treasury.PurposeLoan, quote.RemainingBalance, quote.PrepaymentPenalty); err != nil {
		return Payment{}, err
	}
	if err := s.store.SaveLoan(ctx, l); err != nil {
		return Payment{}, err
	}
	if err := s.store.SavePayment(ctx, p); err != nil {
		return Payment{}, err
	}

	s.metrics.PaymentsProcessed.Inc()
	s.logger.InfoContext(ctx, "early payoff processed",
		"payment_id", p.ID, "loan_id", l.ID,
		"amount", p.Amount, "penalty", quote.PrepaymentPenalty)
	return p, nil
}

// StatusChange records one lifecycle transition applied by the sweep.
type StatusChange struct {
	LoanID     string
	BorrowerID string
	From       Status
	To         Status
}

// ApplyTransition recomputes a loan's status and applies the transition's
// side effects. Returns the change, or nil when time moved nothing.
func (s *Service) ApplyTransition(ctx context.Context, loanID string) (*StatusChange, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	l, err := s.store.GetLoan(ctx, loanID)
	if err != nil {
		return nil, err
	}
	now := s.clock()
	next, effects := Transition(l, now)
	if next == l.Status {
		return nil, nil
	}

	change := &StatusChange{LoanID: l.ID, BorrowerID: l.BorrowerID, From: l.Status, To: next}
	if next == StatusLate {
		l.LatePayments++
	}
	l.Status = next
	if err := s.store.SaveLoan(ctx, l); err != nil {
		return nil, err
	}

	for _, effect := range effects {
		switch effect {
		case EffectTreasuryDefault:
			if err := s.ledger.HandleDefault(ctx, treasury.PurposeLoan, l.CurrentBalance); err != nil {
				return change, err
			}
			s.metrics.DefaultsHandled.Inc()
		case EffectAssessLateFee:
			if err := s.assessLateFee(ctx, l, now); err != nil {
				return change, err
			}
		}
	}

	s.logger.InfoContext(ctx, "loan status changed",
		"loan_id", l.ID, "from", change.From, "to", change.To)
	return change, nil
}

// AssessLateFee evaluates the idempotent late fee for a loan's current due
// period.
func (s *Service) AssessLateFee(ctx context.Context, loanID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	l, err := s.store.GetLoan(ctx, loanID)
	if err != nil {
		return err
	}
	return s.assessLateFee(ctx, l, s.clock())
}

// assessLateFee creates at most one LateFee record per due period. The fee
// is an assessment, not a transfer: the record stays Pending and the
// treasury is only credited when the borrower actually pays.
func (s *Service) assessLateFee(ctx context.Context, l Loan, now time.Time) error {
	payments, err := s.store.ListPaymentsByLoan(ctx, l.ID)
	if err != nil {
		return err
	}
	periodStart := NextPaymentDue(l).Add(-oneMonth)
	for _, p := range payments {
		if p.Type == PaymentLateFee && !p.CreatedAt.Before(periodStart) {
			return nil
		}
	}

	fee := int64(float64(l.MonthlyPayment) * lateFeeRate)
	if fee < lateFeeMinimum {
		fee = lateFeeMinimum
	}
	seq, err := s.store.NextID(ctx, CounterPayment)
	if err != nil {
		return err
	}
	p := Payment{
		ID:        FormatPaymentID(seq),
		LoanID:    l.ID,
		PayerID:   l.BorrowerID,
		Amount:    fee,
		LateFee:   fee,
		Type:      PaymentLateFee,
		Method:    MethodOther,
		Status:    PaymentPending,
		CreatedAt: now,
	}
	if err := s.store.SavePayment(ctx, p); err != nil {
		return err
	}

	s.metrics.LateFeesAssessed.Inc()
	s.logger.InfoContext(ctx, "late fee assessed",
		"loan_id", l.ID, "payment_id", p.ID, "fee", fee)
	return nil
}

// AccrueInterest compounds one day of interest onto a loan's balance. A
// no-op when the loan is not accruing or accrued within the last day, so
// sweeping more often than daily stays idempotent.
func (s *Service) AccrueInterest(ctx context.Context, loanID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	l, err := s.store.GetLoan(ctx, loanID)
	if err != nil {
		return err
	}
	if l.Status != StatusActive && l.Status != StatusLate {
		return nil
	}
	now := s.clock()
	if l.LastAccrualAt != nil && now.Sub(*l.LastAccrualAt) < accrualInterval {
		return nil
	}

	daily := int64(float64(l.CurrentBalance) * l.InterestRate / 365)
	l.CurrentBalance += daily
	l.LastAccrualAt = &now
	return s.store.SaveLoan(ctx, l)
}

// UpdateStatus is the administrative override. Moving a loan into Default
// still debits the treasury exactly once.
func (s *Service) UpdateStatus(ctx context.Context, loanID string, status Status) (Loan, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	l, err := s.store.GetLoan(ctx, loanID)
	if err != nil {
		return Loan{}, err
	}
	if l.Status == status {
		return l, nil
	}
	if status == StatusDefault {
		if err := s.ledger.HandleDefault(ctx, treasury.PurposeLoan, l.CurrentBalance); err != nil {
			return Loan{}, err
		}
		s.metrics.DefaultsHandled.Inc()
	}
	old := l.Status
	l.Status = status
	if err := s.store.SaveLoan(ctx, l); err != nil {
		return Loan{}, err
	}
	s.logger.InfoContext(ctx, "loan status overridden",
		"loan_id", l.ID, "from", old, "to", status)
	return l, nil
}

// PortfolioStats summarizes the whole loan book for treasury health and
// rebalancing.
func (s *Service) PortfolioStats(ctx context.Context) (treasury.PortfolioStats, error) {
	loans, err := s.store.ListLoans(ctx)
	if err != nil {
		return treasury.PortfolioStats{}, err
	}

	var stats treasury.PortfolioStats
	var defaulted int
	for _, l := range loans {
		stats.TotalDisbursed += l.OriginalAmount
		switch l.Status {
		case StatusActive, StatusLate:
			stats.TotalOutstanding += l.CurrentBalance
			stats.ActiveLoanCount++
		case StatusDefault:
			stats.TotalDefaults += l.CurrentBalance
			defaulted++
		}

		payments, err := s.store.ListPaymentsByLoan(ctx, l.ID)
		if err != nil {
			return treasury.PortfolioStats{}, err
		}
		for _, p := range payments {
			if p.Status == PaymentCompleted {
				stats.TotalPaymentsReceived += p.Amount
				stats.TotalInterestEarned += p.InterestPortion
			}
		}
	}
	if len(loans) > 0 {
		stats.DefaultRate = float64(defaulted) / float64(len(loans))
		stats.AverageLoanSize = stats.TotalDisbursed / int64(len(loans))
	}
	return stats, nil
}

// StatsFor summarizes one borrower's loans and payment history.
func (s *Service) StatsFor(ctx context.Context, borrowerID string) (BorrowerStats, error) {
	loans, err := s.store.ListLoansByBorrower(ctx, borrowerID)
	if err != nil {
		return BorrowerStats{}, err
	}
	payments, err := s.store.ListPaymentsByPayer(ctx, borrowerID)
	if err != nil {
		return BorrowerStats{}, err
	}

	var stats BorrowerStats
	for _, l := range loans {
		stats.TotalBorrowed += l.OriginalAmount
		stats.CurrentBalance += l.CurrentBalance
		stats.LatePayments += l.LatePayments
		switch l.Status {
		case StatusActive, StatusLate:
			stats.ActiveLoans++
		case StatusPaidOff:
			stats.CompletedLoans++
		}
	}
	for _, p := range payments {
		if p.Status == PaymentCompleted {
			stats.TotalPaid += p.Amount
		}
		if p.Type == PaymentRegular {
			stats.OnTimePayments++
		}
	}
	stats.CreditScoreImpact = creditImpact(loans, stats.OnTimePayments)
	return stats, nil
}

// creditImpact scores loan history: completed loans and on-time payments
// help, late payments and defaults hurt.
func creditImpact(loans []Loan, onTimePayments int) int {
	impact := 0
	for _, l := range loans {
		switch l.Status {
		case StatusPaidOff:
			impact += 10
		case StatusDefault:
			impact -= 50
		}
		impact -= l.LatePayments * 5
	}
	impact += onTimePayments * 2
	return impact
}
