package handler

import (
	"strings"

	"fundgate/internal/loan"
	dErrors "fundgate/pkg/domain-errors"
)

// CreateLoanRequest is the HTTP request body for POST /loans.
type CreateLoanRequest struct {
	BorrowerID        string   `json:"borrower_id"`
	Amount            int64    `json:"amount"`
	InterestRate      float64  `json:"interest_rate"`
	TermMonths        int      `json:"term_months"`
	GracePeriodMonths int      `json:"grace_period_months"`
	Purpose           string   `json:"purpose"`
	CollateralFlag    bool     `json:"collateral_flag"`
	CosignerID        string   `json:"cosigner_id"`
	SpecialConditions []string `json:"special_conditions"`
}

// Validate validates and normalizes the request.
func (r *CreateLoanRequest) Validate() error {
	r.BorrowerID = strings.TrimSpace(r.BorrowerID)
	if r.BorrowerID == "" {
		return dErrors.New(dErrors.CodeBadRequest, "borrower_id is required")
	}
	r.CosignerID = strings.TrimSpace(r.CosignerID)
	r.Purpose = strings.TrimSpace(r.Purpose)
	return loan.ValidateTerms(r.Amount, r.InterestRate, r.TermMonths, r.GracePeriodMonths)
}

// Domain converts the request into the service's input type.
func (r *CreateLoanRequest) Domain() loan.CreateLoanRequest {
	return loan.CreateLoanRequest{
		BorrowerID:        r.BorrowerID,
		Amount:            r.Amount,
		InterestRate:      r.InterestRate,
		TermMonths:        r.TermMonths,
		GracePeriodMonths: r.GracePeriodMonths,
		Purpose:           r.Purpose,
		CollateralFlag:    r.CollateralFlag,
		CosignerID:        r.CosignerID,
		SpecialConditions: r.SpecialConditions,
	}
}

// ProcessPaymentRequest is the HTTP request body for POST /loans/{id}/payments.
type ProcessPaymentRequest struct {
	Amount int64  `json:"amount"`
	Method string `json:"method"`

	parsedMethod loan.PaymentMethod
}

// Validate validates and parses the request.
func (r *ProcessPaymentRequest) Validate() error {
	if r.Amount <= 0 {
		return dErrors.New(dErrors.CodeBadRequest, "amount must be positive")
	}
	method, err := loan.ParsePaymentMethod(strings.TrimSpace(r.Method))
	if err != nil {
		return err
	}
	r.parsedMethod = method
	return nil
}

// ParsedMethod returns the validated payment method.
func (r *ProcessPaymentRequest) ParsedMethod() loan.PaymentMethod {
	return r.parsedMethod
}

// EarlyPayoffRequest is the HTTP request body for POST /loans/{id}/payoff.
type EarlyPayoffRequest struct {
	Method string `json:"method"`

	parsedMethod loan.PaymentMethod
}

// Validate validates and parses the request.
func (r *EarlyPayoffRequest) Validate() error {
	method, err := loan.ParsePaymentMethod(strings.TrimSpace(r.Method))
	if err != nil {
		return err
	}
	r.parsedMethod = method
	return nil
}

// ParsedMethod returns the validated payment method.
func (r *EarlyPayoffRequest) ParsedMethod() loan.PaymentMethod {
	return r.parsedMethod
}

// UpdateStatusRequest is the HTTP request body for PUT /loans/{id}/status.
type UpdateStatusRequest struct {
	Status string `json:"status"`

	parsedStatus loan.Status
}

// Validate validates and parses the request.
func (r *UpdateStatusRequest) Validate() error {
	status, err := loan.ParseStatus(strings.TrimSpace(r.Status))
	if err != nil {
		return err
	}
	r.parsedStatus = status
	return nil
}

// ParsedStatus returns the validated loan status.
func (r *UpdateStatusRequest) ParsedStatus() loan.Status {
	return r.parsedStatus
}
