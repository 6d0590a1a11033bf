package loan

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/lib/pq"

	dErrors "fundgate/pkg/domain-errors"
)

// PostgresStore persists loans, payments, and counters in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed loan store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Migrate creates the loan tables if they do not exist.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS loans (
			id TEXT PRIMARY KEY,
			borrower_id TEXT NOT NULL,
			original_amount BIGINT NOT NULL,
			current_balance BIGINT NOT NULL,
			interest_rate DOUBLE PRECISION NOT NULL,
			term_months INTEGER NOT NULL,
			monthly_payment BIGINT NOT NULL,
			grace_period_months INTEGER NOT NULL,
			origination_fee BIGINT NOT NULL,
			status TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL,
			first_payment_due TIMESTAMPTZ NOT NULL,
			last_payment_at TIMESTAMPTZ,
			last_accrual_at TIMESTAMPTZ,
			payments_made INTEGER NOT NULL,
			late_payments INTEGER NOT NULL,
			purpose TEXT NOT NULL,
			collateral_flag BOOLEAN NOT NULL,
			cosigner_id TEXT NOT NULL DEFAULT '',
			special_conditions TEXT[] NOT NULL DEFAULT '{}'
		)`,
		`CREATE INDEX IF NOT EXISTS loans_borrower_idx ON loans (borrower_id)`,
		`CREATE INDEX IF NOT EXISTS loans_status_idx ON loans (status)`,
		`CREATE TABLE IF NOT EXISTS payments (
			id TEXT PRIMARY KEY,
			loan_id TEXT NOT NULL,
			payer_id TEXT NOT NULL,
			amount BIGINT NOT NULL,
			principal_portion BIGINT NOT NULL,
			interest_portion BIGINT NOT NULL,
			late_fee BIGINT NOT NULL,
			payment_type TEXT NOT NULL,
			payment_method TEXT NOT NULL,
			status TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL,
			processed_at TIMESTAMPTZ
		)`,
		`CREATE INDEX IF NOT EXISTS payments_loan_idx ON payments (loan_id)`,
		`CREATE INDEX IF NOT EXISTS payments_payer_idx ON payments (payer_id)`,
		`CREATE TABLE IF NOT EXISTS counters (
			kind TEXT PRIMARY KEY,
			value BIGINT NOT NULL
		)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate loan tables: %w", err)
		}
	}
	return nil
}

func (s *PostgresStore) NextID(ctx context.Context, kind string) (uint64, error) {
	query := `
		INSERT INTO counters (kind, value) VALUES ($1, 1)
		ON CONFLICT (kind) DO UPDATE SET value = counters.value + 1
		RETURNING value
	`
	var value uint64
	if err := s.db.QueryRowContext(ctx, query, kind).Scan(&value); err != nil {
		return 0, fmt.Errorf("next %s id: %w", kind, err)
	}
	return value, nil
}

const loanColumns = `id, borrower_id, original_amount, current_balance, interest_rate,
	term_months, monthly_payment, grace_period_months, origination_fee, status,
	created_at, first_payment_due, last_payment_at, last_accrual_at,
	payments_made, late_payments, purpose, collateral_flag, cosigner_id,
	special_conditions`

func (s *PostgresStore) GetLoan(ctx context.Context, id string) (Loan, error) {
	query := `SELECT ` + loanColumns + ` FROM loans WHERE id = $1`
	l, err := scanLoan(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return Loan{}, dErrors.Newf(dErrors.CodeNotFound, "loan %s not found", id)
		}
		return Loan{}, fmt.Errorf("get loan: %w", err)
	}
	return l, nil
}

func (s *PostgresStore) SaveLoan(ctx context.Context, l Loan) error {
	query := `
		INSERT INTO loans (` + loanColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20)
		ON CONFLICT (id) DO UPDATE SET
			current_balance = EXCLUDED.current_balance,
			status = EXCLUDED.status,
			last_payment_at = EXCLUDED.last_payment_at,
			last_accrual_at = EXCLUDED.last_accrual_at,
			payments_made = EXCLUDED.payments_made,
			late_payments = EXCLUDED.late_payments
	`
	_, err := s.db.ExecContext(ctx, query,
		l.ID, l.BorrowerID, l.OriginalAmount, l.CurrentBalance, l.InterestRate,
		l.TermMonths, l.MonthlyPayment, l.GracePeriodMonths, l.OriginationFee, string(l.Status),
		l.CreatedAt, l.FirstPaymentDue, nullTime(l.LastPaymentAt), nullTime(l.LastAccrualAt),
		l.PaymentsMade, l.LatePayments, l.Purpose, l.CollateralFlag, l.CosignerID,
		pq.Array(l.SpecialConditions),
	)
	if err != nil {
		return fmt.Errorf("save loan: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListLoans(ctx context.Context) ([]Loan, error) {
	query := `SELECT ` + loanColumns + ` FROM loans ORDER BY id`
	return s.queryLoans(ctx, query)
}

func (s *PostgresStore) ListLoansByBorrower(ctx context.Context, borrowerID string) ([]Loan, error) {
	query := `SELECT ` + loanColumns + ` FROM loans WHERE borrower_id = $1 ORDER BY id`
	return s.queryLoans(ctx, query, borrowerID)
}

func (s *PostgresStore) queryLoans(ctx context.Context, query string, args ...any) ([]Loan, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list loans: %w", err)
	}
	defer rows.Close()

	var loans []Loan
	for rows.Next() {
		l, err := scanLoan(rows)
		if err != nil {
			return nil, fmt.Errorf("list loans: %w", err)
		}
		loans = append(loans, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list loans: %w", err)
	}
	return loans, nil
}

const paymentColumns = `id, loan_id, payer_id, amount, principal_portion,
	interest_portion, late_fee, payment_type, payment_method, status,
	created_at, processed_at`

func (s *PostgresStore) GetPayment(ctx context.Context, id string) (Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE id = $1`
	p, err := scanPayment(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return Payment{}, dErrors.Newf(dErrors.CodeNotFound, "payment %s not found", id)
		}
		return Payment{}, fmt.Errorf("get payment: %w", err)
	}
	return p, nil
}

func (s *PostgresStore) SavePayment(ctx context.Context, p Payment) error {
	query := `
		INSERT INTO payments (` + paymentColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (id) DO UPDATE SET
			status = EXCLUDED.status,
			processed_at = EXCLUDED.processed_at
	`
	_, err := s.db.ExecContext(ctx, query,
		p.ID, p.LoanID, p.PayerID, p.Amount, p.PrincipalPortion,
		p.InterestPortion, p.LateFee, string(p.Type), string(p.Method), string(p.Status),
		p.CreatedAt, nullTime(p.ProcessedAt),
	)
	if err != nil {
		return fmt.Errorf("save payment: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListPaymentsByLoan(ctx context.Context, loanID string) ([]Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE loan_id = $1 ORDER BY id`
	return s.queryPayments(ctx, query, loanID)
}

func (s *PostgresStore) ListPaymentsByPayer(ctx context.Context, payerID string) ([]Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE payer_id = $1 ORDER BY id`
	return s.queryPayments(ctx, query, payerID)
}

func (s *PostgresStore) queryPayments(ctx context.Context, query string, args ...any) ([]Payment, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list payments: %w", err)
	}
	defer rows.Close()

	var payments []Payment
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, fmt.Errorf("list payments: %w", err)
		}
		payments = append(payments, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list payments: %w", err)
	}
	return payments, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanLoan(row rowScanner) (Loan, error) {
	var l Loan
	var status string
	var lastPayment, lastAccrual sql.NullTime
	var conditions pq.StringArray
	err := row.Scan(
		&l.ID, &l.BorrowerID, &l.OriginalAmount, &l.CurrentBalance, &l.InterestRate,
		&l.TermMonths, &l.MonthlyPayment, &l.GracePeriodMonths, &l.OriginationFee, &status,
		&l.CreatedAt, &l.FirstPaymentDue, &lastPayment, &lastAccrual,
		&l.PaymentsMade, &l.LatePayments, &l.Purpose, &l.CollateralFlag, &l.CosignerID,
		&conditions,
	)
	if err != nil {
		return Loan{}, err
	}
	l.Status = Status(status)
	l.LastPaymentAt = timePtr(lastPayment)
	l.LastAccrualAt = timePtr(lastAccrual)
	l.SpecialConditions = []string(conditions)
	return l, nil
}

func scanPayment(row rowScanner) (Payment, error) {
	var p Payment
	var ptype, method, status string
	var processedAt sql.NullTime
	err := row.Scan(
		&p.ID, &p.LoanID, &p.PayerID, &p.Amount, &p.PrincipalPortion,
		&p.InterestPortion, &p.LateFee, &ptype, &method, &status,
		&p.CreatedAt, &processedAt,
	)
	if err != nil {
		return Payment{}, err
	}
	p.Type = PaymentType(ptype)
	p.Method = PaymentMethod(method)
	p.Status = PaymentStatus(status)
	p.ProcessedAt = timePtr(processedAt)
	return p, nil
}

func nullTime(value *time.Time) sql.NullTime {
	if value == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *value, Valid: true}
}

func timePtr(value sql.NullTime) *time.Time {
	if !value.Valid {
		return nil
	}
	t := value.Time
	return &t
}
