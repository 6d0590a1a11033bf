// Package amortize provides the pure loan math used by origination, payment
// processing, and the automation sweep. Amounts are integer minor currency
// units; rates are annual fractions (0.05 == 5%).
package amortize

import "math"

// Breakdown is the split of a single payment against a balance.
type Breakdown struct {
	Amount           int64 `json:"amount"`
	PrincipalPortion int64 `json:"principal_portion"`
	InterestPortion  int64 `json:"interest_portion"`
	RemainingBalance int64 `json:"remaining_balance"`
}

// MonthlyPayment computes the fixed payment for a standard amortized loan.
// Rounds up so the scheduled payments always cover the full balance; the
// split clamp in Split keeps the final payment from overshooting.
func MonthlyPayment(principal int64, annualRate float64, termMonths int) int64 {
	if termMonths <= 0 || principal <= 0 {
		return 0
	}
	if annualRate == 0 {
		n := int64(termMonths)
		return (principal + n - 1) / n
	}
	monthlyRate := annualRate / 12
	factor := math.Pow(1+monthlyRate, float64(termMonths))
	payment := (float64(principal) * monthlyRate * factor) / (factor - 1)
	return int64(math.Ceil(payment))
}

// Split divides a payment amount into interest and principal portions against
// the current balance. Interest accrues first; principal is clamped to the
// outstanding balance so a final or oversized payment cannot drive it
// negative.
func Split(balance int64, annualRate float64, amount int64) Breakdown {
	interestDue := int64(float64(balance) * annualRate / 12)
	principal := amount - interestDue
	if principal < 0 {
		principal = 0
	}
	if principal > balance {
		principal = balance
	}
	return Breakdown{
		Amount:           amount,
		PrincipalPortion: principal,
		InterestPortion:  amount - principal,
		RemainingBalance: balance - principal,
	}
}

// RemainingBalance computes the scheduled balance after a number of payments,
// independent of actual payment history.
func RemainingBalance(principal, monthlyPayment int64, annualRate float64, paymentsMade int) int64 {
	if paymentsMade <= 0 {
		return principal
	}
	if annualRate == 0 {
		remaining := principal - monthlyPayment*int64(paymentsMade)
		if remaining < 0 {
			return 0
		}
		return remaining
	}
	monthlyRate := annualRate / 12
	factor := math.Pow(1+monthlyRate, float64(paymentsMade))
	remaining := float64(principal)*factor - float64(monthlyPayment)*((factor-1)/monthlyRate)
	if remaining < 0 {
		return 0
	}
	return int64(remaining)
}
