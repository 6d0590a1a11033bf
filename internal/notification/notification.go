// Package notification delivers borrower-facing notices produced by the
// automation sweep. Sinks are pluggable: a structured-log sink for
// development and a kafka sink for production, both optionally wrapped in a
// TTL throttle so escalating loans do not spam borrowers on every sweep.
package notification

import (
	"context"
	"log/slog"
	"time"
)

// Kind identifies the notice being sent.
type Kind string

const (
	KindUpcomingPayment Kind = "upcoming_payment"
	KindPaymentReminder Kind = "payment_reminder"
	KindLateFee         Kind = "late_fee"
	KindUrgentNotice    Kind = "urgent_notice"
	KindFinalNotice     Kind = "final_notice"
	KindDefault         Kind = "default"
)

// Notification is one notice addressed to a borrower about one loan.
type Notification struct {
	BorrowerID  string    `json:"borrower_id"`
	LoanID      string    `json:"loan_id"`
	Kind        Kind      `json:"kind"`
	DaysOverdue int       `json:"days_overdue,omitempty"`
	AmountDue   int64     `json:"amount_due,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// Notifier hands a notification to a delivery sink.
type Notifier interface {
	Notify(ctx context.Context, n Notification) error
}

// LogNotifier writes notifications to the structured log. It is the default
// sink when no kafka brokers are configured.
type LogNotifier struct {
	logger *slog.Logger
}

func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) Notify(ctx context.Context, msg Notification) error {
	n.logger.InfoContext(ctx, "notification",
		"kind", msg.Kind, "loan_id", msg.LoanID, "borrower_id", msg.BorrowerID,
		"days_overdue", msg.DaysOverdue, "amount_due", msg.AmountDue)
	return nil
}
