package treasury

import (
	"time"

	dErrors "fundgate/pkg/domain-errors"
)

// Purpose scopes a treasury to one funding concern. Each purpose owns exactly
// one treasury record for the life of the system.
type Purpose string

const (
	PurposeLoan        Purpose = "loan"
	PurposeScholarship Purpose = "scholarship"
	PurposeProtocol    Purpose = "protocol"
)

// Purposes lists every treasury purpose in bootstrap order.
func Purposes() []Purpose {
	return []Purpose{PurposeLoan, PurposeScholarship, PurposeProtocol}
}

// ParsePurpose validates a purpose supplied over the wire.
func ParsePurpose(raw string) (Purpose, error) {
	switch Purpose(raw) {
	case PurposeLoan, PurposeScholarship, PurposeProtocol:
		return Purpose(raw), nil
	}
	return "", dErrors.Newf(dErrors.CodeBadRequest, "unknown treasury purpose %q", raw)
}

// Treasury is a pooled reserve of funds with allocation and reserve
// constraints. Amounts are integer minor currency units. Invariant:
// AvailableFunds + ReservedFunds <= TotalFunds.
type Treasury struct {
	Purpose        Purpose   `json:"purpose"`
	TotalFunds     int64     `json:"total_funds"`
	AvailableFunds int64     `json:"available_funds"`
	ReservedFunds  int64     `json:"reserved_funds"`

	MinimumReserveRatio    float64 `json:"minimum_reserve_ratio"`
	MaximumAllocationRatio float64 `json:"maximum_allocation_ratio"`
	GovernanceRequired     bool    `json:"governance_required"`

	// Rebalance policy, only meaningful for the loan treasury.
	InterestReserveRatio float64 `json:"interest_reserve_ratio"`
	EmergencyFundRatio   float64 `json:"emergency_fund_ratio"`
	AutoRebalance        bool    `json:"auto_rebalance"`

	CreatedAt     time.Time `json:"created_at"`
	LastUpdated   time.Time `json:"last_updated"`
	LastRebalance time.Time `json:"last_rebalance"`
}

// defaultTreasury returns the bootstrap record for a purpose. Figures match
// the platform's initial capitalization.
func defaultTreasury(purpose Purpose, now time.Time) Treasury {
	switch purpose {
	case PurposeScholarship:
		return Treasury{
			Purpose:                purpose,
			TotalFunds:             50_000_000,
			AvailableFunds:         50_000_000,
			ReservedFunds:          0,
			MinimumReserveRatio:    0.05,
			MaximumAllocationRatio: 0.95,
			GovernanceRequired:     true,
			CreatedAt:              now,
			LastUpdated:            now,
		}
	case PurposeProtocol:
		return Treasury{
			Purpose:                purpose,
			TotalFunds:             20_000_000,
			AvailableFunds:         15_000_000,
			ReservedFunds:          5_000_000,
			MinimumReserveRatio:    0.10,
			MaximumAllocationRatio: 0.90,
			GovernanceRequired:     true,
			CreatedAt:              now,
			LastUpdated:            now,
		}
	default: // PurposeLoan
		return Treasury{
			Purpose:                PurposeLoan,
			TotalFunds:             100_000_000,
			AvailableFunds:         80_000_000,
			ReservedFunds:          20_000_000,
			MinimumReserveRatio:    0.15,
			MaximumAllocationRatio: 0.85,
			GovernanceRequired:     false,
			InterestReserveRatio:   0.05,
			EmergencyFundRatio:     0.10,
			AutoRebalance:          true,
			CreatedAt:              now,
			LastUpdated:            now,
			LastRebalance:          now,
		}
	}
}

// PortfolioStats summarizes the loan book from the treasury's point of view.
// Produced by the loan domain; consumed read-only here for health reporting
// and rebalancing.
type PortfolioStats struct {
	TotalOutstanding      int64   `json:"total_outstanding"`
	TotalDisbursed        int64   `json:"total_disbursed"`
	TotalPaymentsReceived int64   `json:"total_payments_received"`
	TotalInterestEarned   int64   `json:"total_interest_earned"`
	TotalDefaults         int64   `json:"total_defaults"`
	ActiveLoanCount       int     `json:"active_loan_count"`
	DefaultRate           float64 `json:"default_rate"`
	AverageLoanSize       int64   `json:"average_loan_size"`
}

// HealthStatus buckets a health score for operators.
type HealthStatus string

const (
	HealthExcellent HealthStatus = "excellent"
	HealthGood      HealthStatus = "good"
	HealthFair      HealthStatus = "fair"
	HealthPoor      HealthStatus = "poor"
	HealthCritical  HealthStatus = "critical"
)

// Health is the advisory report for one treasury. Read-only; computing it
// never mutates the ledger.
type Health struct {
	Purpose         Purpose      `json:"purpose"`
	TotalFunds      int64        `json:"total_funds"`
	AvailableFunds  int64        `json:"available_funds"`
	ReservedFunds   int64        `json:"reserved_funds"`
	ReserveRatio    float64      `json:"reserve_ratio"`
	LoanToFundRatio float64      `json:"loan_to_fund_ratio"`
	UtilizationRate float64      `json:"utilization_rate"`
	DefaultRate     float64      `json:"default_rate"`
	Score           float64      `json:"score"`
	Status          HealthStatus `json:"status"`
	Recommendations []string     `json:"recommendations"`
}

// MultiHealth aggregates health across all treasuries.
type MultiHealth struct {
	Loan            Health   `json:"loan"`
	Scholarship     Health   `json:"scholarship"`
	Protocol        Health   `json:"protocol"`
	TotalFunds      int64    `json:"total_funds"`
	OverallScore    float64  `json:"overall_score"`
	Recommendations []string `json:"recommendations"`
}
