// Package scheduler runs the periodic automation sweep: status transitions,
// overdue escalation, payment reminders, treasury rebalancing, and daily
// interest accrual. One sweep at a time; per-loan failures are recorded and
// skipped so a single bad record never stalls the book.
package scheduler

//go:generate mockgen -source=scheduler.go -destination=mocks/mocks.go -package=mocks LoanBook,Treasurer,Notifier

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/singleflight"

	"fundgate/internal/loan"
	"fundgate/internal/notification"
	"fundgate/internal/platform/metrics"
	"fundgate/internal/treasury"
)

// upcomingWindow is how far ahead of a due date the reminder goes out.
const upcomingWindow = 7 * 24 * time.Hour

// LoanBook is the slice of the loan service the sweep drives.
type LoanBook interface {
	Sweepable(ctx context.Context) ([]loan.Loan, error)
	Overdue(ctx context.Context) ([]loan.Loan, error)
	ApplyTransition(ctx context.Context, loanID string) (*loan.StatusChange, error)
	AssessLateFee(ctx context.Context, loanID string) error
	AccrueInterest(ctx context.Context, loanID string) error
	PortfolioStats(ctx context.Context) (treasury.PortfolioStats, error)
}

// Treasurer is the slice of the treasury service the sweep drives.
type Treasurer interface {
	Rebalance(ctx context.Context, purpose treasury.Purpose, outstanding int64) error
}

// Notifier hands borrower notices to the configured sink.
type Notifier interface {
	Notify(ctx context.Context, n notification.Notification) error
}

// Config carries the sweep policy.
type Config struct {
	SweepInterval time.Duration
	AutoRebalance bool
}

// Clock supplies the current time; injected for testability.
type Clock func() time.Time

// Scheduler owns the automation sweep.
type Scheduler struct {
	loans      LoanBook
	treasuries Treasurer
	notifier   Notifier
	metrics    *metrics.Metrics
	logger     *slog.Logger
	clock      Clock
	tracer     trace.Tracer
	config     Config
	group      singleflight.Group
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithClock sets the clock function for testability.
func WithClock(clock Clock) Option {
	return func(s *Scheduler) {
		if clock != nil {
			s.clock = clock
		}
	}
}

func New(loans LoanBook, treasuries Treasurer, notifier Notifier, m *metrics.Metrics, logger *slog.Logger, config Config, opts ...Option) *Scheduler {
	if config.SweepInterval <= 0 {
		config.SweepInterval = time.Hour
	}
	s := &Scheduler{
		loans:      loans,
		treasuries: treasuries,
		notifier:   notifier,
		metrics:    m,
		logger:     logger,
		clock:      time.Now,
		tracer:     otel.Tracer("fundgate/scheduler"),
		config:     config,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// Run executes the sweep on the configured interval until the context is
// cancelled. The first sweep runs immediately.
func (s *Scheduler) Run(ctx context.Context) {
	ticker := time.NewTicker(s.config.SweepInterval)
	defer ticker.Stop()

	if err := s.RunOnce(ctx); err != nil {
		s.logger.ErrorContext(ctx, "automation sweep failed", "error", err)
	}
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := s.RunOnce(ctx); err != nil {
				s.logger.ErrorContext(ctx, "automation sweep failed", "error", err)
			}
		}
	}
}

// RunOnce executes one full sweep. Concurrent callers (the ticker and the
// manual trigger endpoint) coalesce into a single run.
func (s *Scheduler) RunOnce(ctx context.Context) error {
	_, err, _ := s.group.Do("sweep", func() (any, error) {
		return nil, s.sweep(ctx)
	})
	return err
}

func (s *Scheduler) sweep(ctx context.Context) error {
	ctx, span := s.tracer.Start(ctx, "scheduler.Sweep")
	defer span.End()

	start := time.Now()
	err := errors.Join(
		s.sweepStatuses(ctx),
		s.escalateOverdue(ctx),
		s.remindUpcoming(ctx),
		s.rebalance(ctx),
		s.accrueInterest(ctx),
	)

	s.metrics.SweepRuns.Inc()
	s.metrics.SweepDuration.Observe(time.Since(start).Seconds())
	s.logger.InfoContext(ctx, "automation sweep complete", "duration", time.Since(start))
	return err
}

// sweepStatuses recomputes every live loan's status. A loan crossing into
// default gets written off by the transition itself; the sweep adds the
// borrower notice.
func (s *Scheduler) sweepStatuses(ctx context.Context) error {
	loans, err := s.loans.Sweepable(ctx)
	if err != nil {
		return err
	}
	for _, l := range loans {
		change, err := s.loans.ApplyTransition(ctx, l.ID)
		if err != nil {
			s.metrics.SweepFailures.Inc()
			s.logger.ErrorContext(ctx, "status transition failed", "loan_id", l.ID, "error", err)
			continue
		}
		if change != nil && change.To == loan.StatusDefault {
			s.send(ctx, notification.Notification{
				BorrowerID: change.BorrowerID,
				LoanID:     change.LoanID,
				Kind:       notification.KindDefault,
			})
		}
	}
	return nil
}

// escalateOverdue walks the overdue book and applies the severity ladder.
func (s *Scheduler) escalateOverdue(ctx context.Context) error {
	overdue, err := s.loans.Overdue(ctx)
	if err != nil {
		return err
	}
	now := s.clock()
	for _, l := range overdue {
		days := loan.DaysOverdue(l, now)
		var kind notification.Kind
		switch loan.EscalationFor(days) {
		case loan.BandReminder:
			kind = notification.KindPaymentReminder
		case loan.BandLateFee:
			if err := s.loans.AssessLateFee(ctx, l.ID); err != nil {
				s.metrics.SweepFailures.Inc()
				s.logger.ErrorContext(ctx, "late fee assessment failed", "loan_id", l.ID, "error", err)
			}
			kind = notification.KindLateFee
		case loan.BandUrgentNotice:
			kind = notification.KindUrgentNotice
		case loan.BandFinalNotice:
			kind = notification.KindFinalNotice
		default:
			// Past the final band the status sweep owns the write-off.
			continue
		}
		s.send(ctx, notification.Notification{
			BorrowerID:  l.BorrowerID,
			LoanID:      l.ID,
			Kind:        kind,
			DaysOverdue: days,
			AmountDue:   l.MonthlyPayment,
		})
	}
	return nil
}

// remindUpcoming nudges borrowers whose next payment falls due within the
// reminder window.
func (s *Scheduler) remindUpcoming(ctx context.Context) error {
	loans, err := s.loans.Sweepable(ctx)
	if err != nil {
		return err
	}
	now := s.clock()
	for _, l := range loans {
		until := loan.NextPaymentDue(l).Sub(now)
		if until > 0 && until <= upcomingWindow {
			s.send(ctx, notification.Notification{
				BorrowerID: l.BorrowerID,
				LoanID:     l.ID,
				Kind:       notification.KindUpcomingPayment,
				AmountDue:  l.MonthlyPayment,
			})
		}
	}
	return nil
}

func (s *Scheduler) rebalance(ctx context.Context) error {
	if !s.config.AutoRebalance {
		return nil
	}
	stats, err := s.loans.PortfolioStats(ctx)
	if err != nil {
		return err
	}
	return s.treasuries.Rebalance(ctx, treasury.PurposeLoan, stats.TotalOutstanding)
}

func (s *Scheduler) accrueInterest(ctx context.Context) error {
	loans, err := s.loans.Sweepable(ctx)
	if err != nil {
		return err
	}
	for _, l := range loans {
		if err := s.loans.AccrueInterest(ctx, l.ID); err != nil {
			s.metrics.SweepFailures.Inc()
			s.logger.ErrorContext(ctx, "interest accrual failed", "loan_id", l.ID, "error", err)
		}
	}
	return nil
}

func (s *Scheduler) send(ctx context.Context, n notification.Notification) {
	n.CreatedAt = s.clock()
	if err := s.notifier.Notify(ctx, n); err != nil {
		s.logger.WarnContext(ctx, "notification delivery failed",
			"loan_id", n.LoanID, "kind", n.Kind, "error", err)
		return
	}
	s.metrics.NotificationsSent.WithLabelValues(string(n.Kind)).Inc()
}
