package handler

import "fundgate/internal/loan"

// LoanListResponse is the HTTP response body for loan list endpoints.
type LoanListResponse struct {
	Loans []loan.Loan `json:"loans"`
}

// PaymentListResponse is the HTTP response body for GET /loans/{id}/payments.
type PaymentListResponse struct {
	Payments []loan.Payment `json:"payments"`
}
