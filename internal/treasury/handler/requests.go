package handler

import (
	"strings"

	"fundgate/internal/treasury"
	dErrors "fundgate/pkg/domain-errors"
)

// AddFundsRequest is the HTTP request body for POST /treasuries/{purpose}/funds.
type AddFundsRequest struct {
	Amount int64  `json:"amount"`
	Source string `json:"source"`
}

// Validate validates and normalizes the request.
func (r *AddFundsRequest) Validate() error {
	if r.Amount <= 0 {
		return dErrors.New(dErrors.CodeBadRequest, "amount must be positive")
	}
	r.Source = strings.TrimSpace(r.Source)
	if r.Source == "" {
		return dErrors.New(dErrors.CodeBadRequest, "source is required")
	}
	return nil
}

// AllocateRequest is the HTTP request body for POST /treasuries/{purpose}/allocations.
type AllocateRequest struct {
	Amount             int64  `json:"amount"`
	Reason             string `json:"reason"`
	GovernanceApproved bool   `json:"governance_approved"`
}

// Validate validates and normalizes the request.
func (r *AllocateRequest) Validate() error {
	if r.Amount <= 0 {
		return dErrors.New(dErrors.CodeBadRequest, "amount must be positive")
	}
	r.Reason = strings.TrimSpace(r.Reason)
	if r.Reason == "" {
		return dErrors.New(dErrors.CodeBadRequest, "reason is required")
	}
	return nil
}

// TransferRequest is the HTTP request body for POST /treasuries/transfers.
type TransferRequest struct {
	From               string `json:"from"`
	To                 string `json:"to"`
	Amount             int64  `json:"amount"`
	GovernanceApproved bool   `json:"governance_approved"`

	// Parsed values (populated by Validate)
	from treasury.Purpose
	to   treasury.Purpose
}

// Validate validates and parses the request.
func (r *TransferRequest) Validate() error {
	if r.Amount <= 0 {
		return dErrors.New(dErrors.CodeBadRequest, "amount must be positive")
	}
	from, err := treasury.ParsePurpose(strings.TrimSpace(r.From))
	if err != nil {
		return err
	}
	to, err := treasury.ParsePurpose(strings.TrimSpace(r.To))
	if err != nil {
		return err
	}
	if from == to {
		return dErrors.New(dErrors.CodeBadRequest, "source and destination treasuries must differ")
	}
	r.from = from
	r.to = to
	return nil
}
