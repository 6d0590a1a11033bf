package treasury

import "context"

// Weights for blending per-treasury scores into the platform-wide score.
const (
	loanHealthWeight        = 0.5
	scholarshipHealthWeight = 0.3
	protocolHealthWeight    = 0.2
)

// Health computes the advisory health report for one treasury. Portfolio
// stats inform the loan treasury's score; the other pools score on their
// ratios alone.
func (s *Service) Health(ctx context.Context, purpose Purpose, stats PortfolioStats) (Health, error) {
	t, err := s.store.Get(ctx, purpose)
	if err != nil {
		return Health{}, err
	}
	return computeHealth(t, stats), nil
}

// MultiHealth aggregates the three treasuries into one weighted report.
func (s *Service) MultiHealth(ctx context.Context, stats PortfolioStats) (MultiHealth, error) {
	loan, err := s.Health(ctx, PurposeLoan, stats)
	if err != nil {
		return MultiHealth{}, err
	}
	scholarship, err := s.Health(ctx, PurposeScholarship, PortfolioStats{})
	if err != nil {
		return MultiHealth{}, err
	}
	protocol, err := s.Health(ctx, PurposeProtocol, PortfolioStats{})
	if err != nil {
		return MultiHealth{}, err
	}

	return MultiHealth{
		Loan:        loan,
		Scholarship: scholarship,
		Protocol:    protocol,
		TotalFunds:  loan.TotalFunds + scholarship.TotalFunds + protocol.TotalFunds,
		OverallScore: loan.Score*loanHealthWeight +
			scholarship.Score*scholarshipHealthWeight +
			protocol.Score*protocolHealthWeight,
		Recommendations: crossRecommendations(loan, scholarship, protocol),
	}, nil
}

func computeHealth(t Treasury, stats PortfolioStats) Health {
	var reserveRatio, utilization float64
	if t.TotalFunds > 0 {
		reserveRatio = float64(t.AvailableFunds) / float64(t.TotalFunds)
		utilization = float64(t.TotalFunds-t.AvailableFunds) / float64(t.TotalFunds)
	}

	// Non-loan treasuries have no loan book; utilization stands in for
	// loan exposure there.
	loanToFund := utilization
	defaultRate := 0.0
	if t.Purpose == PurposeLoan && t.TotalFunds > 0 {
		loanToFund = float64(stats.TotalOutstanding) / float64(t.TotalFunds)
		defaultRate = stats.DefaultRate
	}

	score := healthScore(reserveRatio, loanToFund, defaultRate, utilization)
	return Health{
		Purpose:         t.Purpose,
		TotalFunds:      t.TotalFunds,
		AvailableFunds:  t.AvailableFunds,
		ReservedFunds:   t.ReservedFunds,
		ReserveRatio:    reserveRatio,
		LoanToFundRatio: loanToFund,
		UtilizationRate: utilization,
		DefaultRate:     defaultRate,
		Score:           score,
		Status:          healthStatus(score),
		Recommendations: recommendations(t, stats, reserveRatio, loanToFund, utilization),
	}
}

// healthScore starts at 1.0 and deducts for each unhealthy ratio, clamped to
// [0, 1].
func healthScore(reserveRatio, loanToFund, defaultRate, utilization float64) float64 {
	score := 1.0
	if reserveRatio < 0.15 {
		score -= (0.15 - reserveRatio) * 2.0
	}
	if loanToFund > 0.80 {
		score -= (loanToFund - 0.80) * 3.0
	}
	score -= defaultRate * 5.0
	if utilization > 0.90 {
		score -= (utilization - 0.90) * 2.0
	} else if utilization < 0.30 {
		score -= (0.30 - utilization) * 1.0
	}
	if score < 0 {
		return 0
	}
	if score > 1 {
		return 1
	}
	return score
}

func healthStatus(score float64) HealthStatus {
	switch {
	case score >= 0.8:
		return HealthExcellent
	case score >= 0.6:
		return HealthGood
	case score >= 0.4:
		return HealthFair
	case score >= 0.2:
		return HealthPoor
	default:
		return HealthCritical
	}
}

func recommendations(t Treasury, stats PortfolioStats, reserveRatio, loanToFund, utilization float64) []string {
	var recs []string
	switch t.Purpose {
	case PurposeLoan:
		if reserveRatio < 0.15 {
			recs = append(recs, "Increase treasury reserves to maintain liquidity")
		}
		if loanToFund > 0.80 {
			recs = append(recs, "Reduce new loan originations to manage risk")
		}
		if stats.DefaultRate > 0.05 {
			recs = append(recs, "Review credit policies to reduce default rate")
		}
		if stats.ActiveLoanCount < 10 {
			recs = append(recs, "Increase marketing to grow loan portfolio")
		}
		if t.TotalFunds < 50_000_000 {
			recs = append(recs, "Consider fundraising to increase treasury capacity")
		}
	case PurposeScholarship:
		if utilization < 0.30 {
			recs = append(recs, "Consider creating more scholarship opportunities")
		}
		if t.TotalFunds < 10_000_000 {
			recs = append(recs, "Seek additional scholarship funding sources")
		}
	case PurposeProtocol:
		if reserveRatio < 0.20 {
			recs = append(recs, "Maintain higher protocol treasury reserves")
		}
		if t.TotalFunds < 5_000_000 {
			recs = append(recs, "Ensure adequate protocol operational funds")
		}
	}
	return recs
}

func crossRecommendations(loan, scholarship, protocol Health) []string {
	var recs []string
	total := loan.TotalFunds + scholarship.TotalFunds + protocol.TotalFunds
	if total == 0 {
		return recs
	}
	if float64(loan.TotalFunds)/float64(total) > 0.80 {
		recs = append(recs, "Consider rebalancing funds to increase scholarship treasury")
	}
	if float64(scholarship.TotalFunds)/float64(total) < 0.10 {
		recs = append(recs, "Scholarship treasury may be underfunded relative to platform size")
	}
	if loan.Score < 0.5 && scholarship.AvailableFunds > scholarship.TotalFunds/2 {
		recs = append(recs, "Consider temporary transfer from scholarship to loan treasury")
	}
	return recs
}
