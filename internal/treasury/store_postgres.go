package treasury

import (
	"context"
	"database/sql"
	"fmt"

	dErrors "fundgate/pkg/domain-errors"
)

// PostgresStore persists treasury records in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed treasury store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Migrate creates the treasuries table if it does not exist.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	query := `
		CREATE TABLE IF NOT EXISTS treasuries (
			purpose TEXT PRIMARY KEY,
			total_funds BIGINT NOT NULL,
			available_funds BIGINT NOT NULL,
			reserved_funds BIGINT NOT NULL,
			minimum_reserve_ratio DOUBLE PRECISION NOT NULL,
			maximum_allocation_ratio DOUBLE PRECISION NOT NULL,
			governance_required BOOLEAN NOT NULL,
			interest_reserve_ratio DOUBLE PRECISION NOT NULL DEFAULT 0,
			emergency_fund_ratio DOUBLE PRECISION NOT NULL DEFAULT 0,
			auto_rebalance BOOLEAN NOT NULL DEFAULT FALSE,
			created_at TIMESTAMPTZ NOT NULL,
			last_updated TIMESTAMPTZ NOT NULL,
			last_rebalance TIMESTAMPTZ
		)
	`
	if _, err := s.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("migrate treasuries: %w", err)
	}
	return nil
}

const treasuryColumns = `purpose, total_funds, available_funds, reserved_funds,
	minimum_reserve_ratio, maximum_allocation_ratio, governance_required,
	interest_reserve_ratio, emergency_fund_ratio, auto_rebalance,
	created_at, last_updated, last_rebalance`

func (s *PostgresStore) Get(ctx context.Context, purpose Purpose) (Treasury, error) {
	query := `SELECT ` + treasuryColumns + ` FROM treasuries WHERE purpose = $1`
	t, err := scanTreasury(s.db.QueryRowContext(ctx, query, string(purpose)))
	if err != nil {
		if err == sql.ErrNoRows {
			return Treasury{}, dErrors.Newf(dErrors.CodeNotFound, "treasury %s not found", purpose)
		}
		return Treasury{}, fmt.Errorf("get treasury: %w", err)
	}
	return t, nil
}

func (s *PostgresStore) Save(ctx context.Context, t Treasury) error {
	query := `
		INSERT INTO treasuries (` + treasuryColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		ON CONFLICT (purpose) DO UPDATE SET
			total_funds = EXCLUDED.total_funds,
			available_funds = EXCLUDED.available_funds,
			reserved_funds = EXCLUDED.reserved_funds,
			minimum_reserve_ratio = EXCLUDED.minimum_reserve_ratio,
			maximum_allocation_ratio = EXCLUDED.maximum_allocation_ratio,
			governance_required = EXCLUDED.governance_required,
			interest_reserve_ratio = EXCLUDED.interest_reserve_ratio,
			emergency_fund_ratio = EXCLUDED.emergency_fund_ratio,
			auto_rebalance = EXCLUDED.auto_rebalance,
			last_updated = EXCLUDED.last_updated,
			last_rebalance = EXCLUDED.last_rebalance
	`
	lastRebalance := sql.NullTime{}
	if !t.LastRebalance.IsZero() {
		lastRebalance = sql.NullTime{Time: t.LastRebalance, Valid: true}
	}
	_, err := s.db.ExecContext(ctx, query,
		string(t.Purpose), t.TotalFunds, t.AvailableFunds, t.ReservedFunds,
		t.MinimumReserveRatio, t.MaximumAllocationRatio, t.GovernanceRequired,
		t.InterestReserveRatio, t.EmergencyFundRatio, t.AutoRebalance,
		t.CreatedAt, t.LastUpdated, lastRebalance,
	)
	if err != nil {
		return fmt.Errorf("save treasury: %w", err)
	}
	return nil
}

func (s *PostgresStore) List(ctx context.Context) ([]Treasury, error) {
	query := `SELECT ` + treasuryColumns + ` FROM treasuries ORDER BY purpose`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list treasuries: %w", err)
	}
	defer rows.Close()

	var treasuries []Treasury
	for rows.Next() {
		t, err := scanTreasury(rows)
		if err != nil {
			return nil, fmt.Errorf("list treasuries: %w", err)
		}
		treasuries = append(treasuries, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list treasuries: %w", err)
	}
	return treasuries, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTreasury(row rowScanner) (Treasury, error) {
	var t Treasury
	var purpose string
	var lastRebalance sql.NullTime
	err := row.Scan(
		&purpose, &t.TotalFunds, &t.AvailableFunds, &t.ReservedFunds,
		&t.MinimumReserveRatio, &t.MaximumAllocationRatio, &t.GovernanceRequired,
		&t.InterestReserveRatio, &t.EmergencyFundRatio, &t.AutoRebalance,
		&t.CreatedAt, &t.LastUpdated, &lastRebalance,
	)
	if err != nil {
		return Treasury{}, err
	}
	t.Purpose = Purpose(purpose)
	if lastRebalance.Valid {
		t.LastRebalance = lastRebalance.Time
	}
	return t, nil
}
