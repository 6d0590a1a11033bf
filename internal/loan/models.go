package loan

import (
	"fmt"
	"slices"
	"time"

	dErrors "fundgate/pkg/domain-errors"
)

// Validation bounds for loan origination. Amounts are integer minor currency
// units.
const (
	MinLoanAmount        int64 = 10_000
	MaxLoanAmount        int64 = 5_000_000
	MaxInterestRate            = 0.25
	MinTermMonths              = 6
	MaxTermMonths              = 120
	MinGracePeriodMonths       = 0
	MaxGracePeriodMonths       = 12
)

// OriginationFeeRate is charged on the principal at loan creation.
const OriginationFeeRate = 0.01

// Status is the loan lifecycle state.
type Status string

const (
	StatusInGracePeriod Status = "in_grace_period"
	StatusActive        Status = "active"
	StatusLate          Status = "late"
	StatusDefault       Status = "default"
	StatusPaidOff       Status = "paid_off"
	StatusDeferred      Status = "deferred"
	StatusCancelled     Status = "cancelled"
)

// ParseStatus validates a status supplied over the wire.
func ParseStatus(raw string) (Status, error) {
	switch Status(raw) {
	case StatusInGracePeriod, StatusActive, StatusLate, StatusDefault,
		StatusPaidOff, StatusDeferred, StatusCancelled:
		return Status(raw), nil
	}
	return "", dErrors.Newf(dErrors.CodeBadRequest, "unknown loan status %q", raw)
}

// Terminal reports whether a status can never be left again.
func (s Status) Terminal() bool {
	switch s {
	case StatusDefault, StatusPaidOff, StatusCancelled:
		return true
	}
	return false
}

// Payable reports whether payments are accepted against a loan in this
// status.
func (s Status) Payable() bool {
	return s != StatusPaidOff && s != StatusCancelled
}

// ConditionNoPrepaymentPenalty waives the early payoff penalty when present
// in a loan's special conditions.
const ConditionNoPrepaymentPenalty = "no_prepayment_penalty"

// Loan is one originated loan. Never deleted; terminal states are retained.
type Loan struct {
	ID                string     `json:"id"`
	BorrowerID        string     `json:"borrower_id"`
	OriginalAmount    int64      `json:"original_amount"`
	CurrentBalance    int64      `json:"current_balance"`
	InterestRate      float64    `json:"interest_rate"`
	TermMonths        int        `json:"term_months"`
	MonthlyPayment    int64      `json:"monthly_payment"`
	GracePeriodMonths int        `json:"grace_period_months"`
	OriginationFee    int64      `json:"origination_fee"`
	Status            Status     `json:"status"`
	CreatedAt         time.Time  `json:"created_at"`
	FirstPaymentDue   time.Time  `json:"first_payment_due"`
	LastPaymentAt     *time.Time `json:"last_payment_at,omitempty"`
	LastAccrualAt     *time.Time `json:"last_accrual_at,omitempty"`
	PaymentsMade      int        `json:"payments_made"`
	LatePayments      int        `json:"late_payments"`
	Purpose           string     `json:"purpose"`
	CollateralFlag    bool       `json:"collateral_flag"`
	CosignerID        string     `json:"cosigner_id,omitempty"`
	SpecialConditions []string   `json:"special_conditions,omitempty"`
}

// HasCondition reports whether the loan carries the given condition tag.
func (l Loan) HasCondition(tag string) bool {
	return slices.Contains(l.SpecialConditions, tag)
}

// AuthorizedPayer reports whether the given identity may pay on this loan.
func (l Loan) AuthorizedPayer(id string) bool {
	if id == "" {
		return false
	}
	return id == l.BorrowerID || (l.CosignerID != "" && id == l.CosignerID)
}

// TotalInterestPaid estimates interest paid so far from the scheduled
// payment amount.
func (l Loan) TotalInterestPaid() int64 {
	totalPaid := l.MonthlyPayment * int64(l.PaymentsMade)
	principalPaid := l.OriginalAmount - l.CurrentBalance
	if totalPaid < principalPaid {
		return 0
	}
	return totalPaid - principalPaid
}

// ScheduledTotalInterest is the interest the full payment schedule would
// collect.
func (l Loan) ScheduledTotalInterest() int64 {
	total := l.MonthlyPayment * int64(l.TermMonths)
	if total < l.OriginalAmount {
		return 0
	}
	return total - l.OriginalAmount
}

// PaymentType classifies a payment record.
type PaymentType string

const (
	PaymentRegular    PaymentType = "regular"
	PaymentEarly      PaymentType = "early_payment"
	PaymentLate       PaymentType = "late_payment"
	PaymentPartial    PaymentType = "partial_payment"
	PaymentFullPayoff PaymentType = "full_payoff"
	PaymentLateFee    PaymentType = "late_fee"
)

// PaymentMethod is how a payment was funded.
type PaymentMethod string

const (
	MethodBankTransfer PaymentMethod = "bank_transfer"
	MethodCard         PaymentMethod = "card"
	MethodWallet       PaymentMethod = "wallet"
	MethodOther        PaymentMethod = "other"
)

// ParsePaymentMethod validates a payment method supplied over the wire.
func ParsePaymentMethod(raw string) (PaymentMethod, error) {
	switch PaymentMethod(raw) {
	case MethodBankTransfer, MethodCard, MethodWallet, MethodOther:
		return PaymentMethod(raw), nil
	}
	return "", dErrors.Newf(dErrors.CodeBadRequest, "unknown payment method %q", raw)
}

// PaymentStatus is the processing state of a payment record.
type PaymentStatus string

const (
	PaymentPending    PaymentStatus = "pending"
	PaymentProcessing PaymentStatus = "processing"
	PaymentCompleted  PaymentStatus = "completed"
	PaymentFailed     PaymentStatus = "failed"
	PaymentCancelled  PaymentStatus = "cancelled"
	PaymentRefunded   PaymentStatus = "refunded"
)

// Payment is one payment attempt against a loan. Immutable once completed.
// For completed payments PrincipalPortion + InterestPortion + LateFee ==
// Amount.
type Payment struct {
	ID               string        `json:"id"`
	LoanID           string        `json:"loan_id"`
	PayerID          string        `json:"payer_id"`
	Amount           int64         `json:"amount"`
	PrincipalPortion int64         `json:"principal_portion"`
	InterestPortion  int64         `json:"interest_portion"`
	LateFee          int64         `json:"late_fee"`
	Type             PaymentType   `json:"type"`
	Method           PaymentMethod `json:"method"`
	Status           PaymentStatus `json:"status"`
	CreatedAt        time.Time     `json:"created_at"`
	ProcessedAt      *time.Time    `json:"processed_at,omitempty"`
}

// Counter kinds for identifier generation.
const (
	CounterLoan    = "loan"
	CounterPayment = "payment"
)

// FormatLoanID renders a counter value as a stable, sortable loan ID.
func FormatLoanID(n uint64) string {
	return fmt.Sprintf("LOAN-%08d", n)
}

// FormatPaymentID renders a counter value as a stable, sortable payment ID.
func FormatPaymentID(n uint64) string {
	return fmt.Sprintf("PAY-%08d", n)
}

// ValidateTerms checks origination inputs against the platform bounds.
func ValidateTerms(amount int64, rate float64, termMonths, graceMonths int) error {
	if amount < MinLoanAmount || amount > MaxLoanAmount {
		return dErrors.Newf(dErrors.CodeBadRequest,
			"amount must be between %d and %d", MinLoanAmount, MaxLoanAmount)
	}
	if rate < 0 || rate > MaxInterestRate {
		return dErrors.Newf(dErrors.CodeBadRequest,
			"interest rate must be between 0 and %.2f", MaxInterestRate)
	}
	if termMonths < MinTermMonths || termMonths > MaxTermMonths {
		return dErrors.Newf(dErrors.CodeBadRequest,
			"term must be between %d and %d months", MinTermMonths, MaxTermMonths)
	}
	if graceMonths < MinGracePeriodMonths || graceMonths > MaxGracePeriodMonths {
		return dErrors.Newf(dErrors.CodeBadRequest,
			"grace period must be between %d and %d months", MinGracePeriodMonths, MaxGracePeriodMonths)
	}
	return nil
}

// BorrowerStats summarizes one borrower's loan history.
type BorrowerStats struct {
	TotalBorrowed     int64 `json:"total_borrowed"`
	CurrentBalance    int64 `json:"current_balance"`
	TotalPaid         int64 `json:"total_paid"`
	ActiveLoans       int   `json:"active_loans"`
	CompletedLoans    int   `json:"completed_loans"`
	OnTimePayments    int   `json:"on_time_payments"`
	LatePayments      int   `json:"late_payments"`
	CreditScoreImpact int   `json:"credit_score_impact"`
}

// PayoffQuote describes what an early payoff would cost right now.
type PayoffQuote struct {
	RemainingBalance  int64 `json:"remaining_balance"`
	PrepaymentPenalty int64 `json:"prepayment_penalty"`
	TotalPayoffAmount int64 `json:"total_payoff_amount"`
	InterestSavings   int64 `json:"interest_savings"`
	Eligible          bool  `json:"eligible"`
}
