package loan

import "time"

// The schedule uses a fixed 30-day month approximation.
const (
	oneDay   = 24 * time.Hour
	oneMonth = 30 * oneDay
)

// Days-overdue thresholds for the escalation ladder.
const (
	reminderBandEnd = 7
	lateFeeBandEnd  = 30
	urgentBandEnd   = 60
	defaultAfterDay = 90
)

// NextPaymentDue is when the loan's next scheduled payment falls due.
func NextPaymentDue(l Loan) time.Time {
	return l.FirstPaymentDue.Add(time.Duration(l.PaymentsMade) * oneMonth)
}

// DaysOverdue is how many whole days the loan is past its next due date,
// zero when not past due.
func DaysOverdue(l Loan, now time.Time) int {
	due := NextPaymentDue(l)
	if !now.After(due) {
		return 0
	}
	return int(now.Sub(due) / oneDay)
}

// DetermineStatus computes the lifecycle state a loan should be in at the
// given time. Administrative states (Deferred, Cancelled) are sticky and
// never produced here.
func DetermineStatus(l Loan, now time.Time) Status {
	if now.Before(l.FirstPaymentDue) {
		return StatusInGracePeriod
	}
	if l.CurrentBalance == 0 {
		return StatusPaidOff
	}
	switch days := DaysOverdue(l, now); {
	case days > defaultAfterDay:
		return StatusDefault
	case days > 0:
		return StatusLate
	}
	return StatusActive
}

// Effect is a side-effect intent produced by a status transition. The caller
// applies effects; computing a transition never mutates anything.
type Effect int

const (
	// EffectTreasuryDefault writes the remaining balance off the loan
	// treasury.
	EffectTreasuryDefault Effect = iota + 1
	// EffectAssessLateFee evaluates an idempotent late fee for the current
	// due period.
	EffectAssessLateFee
)

// Transition computes the status a loan should move to and the side effects
// that move implies. Returns the current status and no effects when nothing
// changes. Administrative states are left alone; time only drives the
// InGracePeriod/Active/Late/Default/PaidOff states.
func Transition(l Loan, now time.Time) (Status, []Effect) {
	if l.Status.Terminal() || l.Status == StatusDeferred {
		return l.Status, nil
	}
	next := DetermineStatus(l, now)
	if next == l.Status {
		return l.Status, nil
	}
	var effects []Effect
	switch next {
	case StatusDefault:
		// Guarded by the old/new comparison above so the treasury is
		// debited exactly once per transition.
		effects = append(effects, EffectTreasuryDefault)
	case StatusLate:
		effects = append(effects, EffectAssessLateFee)
	}
	return next, effects
}

// EscalationBand is the overdue severity bucket driving notifications.
type EscalationBand int

const (
	BandNone EscalationBand = iota
	BandReminder
	BandLateFee
	BandUrgentNotice
	BandFinalNotice
	BandDefault
)

// EscalationFor maps days overdue to its escalation band.
func EscalationFor(daysOverdue int) EscalationBand {
	switch {
	case daysOverdue <= 0:
		return BandNone
	case daysOverdue <= reminderBandEnd:
		return BandReminder
	case daysOverdue <= lateFeeBandEnd:
		return BandLateFee
	case daysOverdue <= urgentBandEnd:
		return BandUrgentNotice
	case daysOverdue <= defaultAfterDay:
		return BandFinalNotice
	default:
		return BandDefault
	}
}
